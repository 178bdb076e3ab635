package weather

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Zip is a postal code as served by the dashboard API. Upstream data carries
// it either as a JSON number or a string; both decode to the decimal text.
type Zip string

func (z *Zip) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*z = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*z = Zip(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("zip: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*z = Zip(strconv.FormatInt(i, 10))
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("zip: %w", err)
	}
	// 89501.0 reads as "89501".
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		*z = Zip(strconv.FormatInt(int64(f), 10))
		return nil
	}
	*z = Zip(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

func (z Zip) String() string { return string(z) }

// Conditions are the current readings attached to a location.
type Conditions struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  float64 `json:"humidity"`
	Wind      float64 `json:"wind"`
}

// Location is one city tracked by the dashboard API. ID is its identity.
type Location struct {
	ID        int        `json:"id"`
	City      string     `json:"city"`
	State     string     `json:"state"`
	Zip       Zip        `json:"zip"`
	Image     string     `json:"image"`
	Condition string     `json:"condition"`
	Current   Conditions `json:"current"`
}

// HourlyEntry is one step of the short-term forecast.
type HourlyEntry struct {
	Time      string  `json:"time"`
	Temp      float64 `json:"temp"`
	Condition string  `json:"condition"`
}

// DailyEntry is one day of the multi-day forecast.
type DailyEntry struct {
	Date      string  `json:"date"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Condition string  `json:"condition"`
}

// LocationDetail is a Location plus its hourly and daily forecasts.
type LocationDetail struct {
	Location
	Hourly []HourlyEntry `json:"hourly"`
	Daily  []DailyEntry  `json:"daily"`
}

// NationalSummary holds the nationwide aggregate shown in the banner.
type NationalSummary struct {
	AvgTemp  float64  `json:"avgTemp"`
	Hotspots []string `json:"hotspots"`
	Updated  string   `json:"updated"`
}

const (
	// DefaultLimit is the list size fetched on boot.
	DefaultLimit = 50
	// LoadAllLimit is the list size fetched by "load all".
	LoadAllLimit = 200
	// PreviewCount is how many tiles an empty search or a shuffle shows.
	PreviewCount = 20
)
