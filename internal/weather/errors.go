package weather

import "fmt"

// FetchError reports a failed request to the dashboard API: a transport
// failure, a non-2xx status, an undecodable body or an open circuit.
type FetchError struct {
	Op      string // national, locations or detail
	Status  int    // 0 when no response was received
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s fetch failed: %s (status %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("%s fetch failed: %s", e.Op, e.Message)
}

func (e *FetchError) Unwrap() error { return e.Err }
