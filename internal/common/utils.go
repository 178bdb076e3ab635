package common

import "strings"

// HasAny returns true if any of the fields contains sub.
func HasAny(sub string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(f, sub) {
			return true
		}
	}
	return false
}
