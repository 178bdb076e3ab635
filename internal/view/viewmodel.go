package view

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	imagesPrefix = "/images/"
	// PlaceholderImage is the universal image fallback.
	PlaceholderImage = "placeholder.jpg"
	// HourlyRows is how many hourly entries the detail view shows.
	HourlyRows = 8
)

// NationalView is the national banner.
type NationalView struct {
	AvgTemp  int
	Hotspots string
	Updated  string
}

// Tile is the compact form of one location in the list.
type Tile struct {
	ID          int
	Title       string
	Meta        string
	ImageURL    string
	FallbackURL string
	Alt         string
	ActionURL   string
}

// LocationsView is the rendered tile list.
type LocationsView struct {
	Tiles []Tile
}

// ImageTag is a hint naming an image file the list refers to.
type ImageTag struct {
	Name string
	Hint string
}

// HourRow is one hourly forecast line.
type HourRow struct {
	Time      string
	Temp      int
	Condition string
}

// DayRow is one daily forecast line.
type DayRow struct {
	Date      string
	High      int
	Low       int
	Condition string
}

// DetailView is the detail panel for one location.
type DetailView struct {
	Title       string
	ImageURL    string
	FallbackURL string
	Alt         string
	Condition   string
	Temp        int
	FeelsLike   int
	Humidity    string
	Wind        string
	Hourly      []HourRow
	Daily       []DayRow
}

// PreviewView shows a locally selected file.
type PreviewView struct {
	URL         string
	Name        string
	ContentType string
	Caption     string
}

// Round rounds half up like the dashboard always has (2.5 -> 3, -2.5 -> -2).
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Degrees formats a temperature for display, e.g. "72°F".
func Degrees(v float64) string {
	return strconv.Itoa(Round(v)) + "°F"
}

// ImageURL returns the URL of an image file, or the placeholder when name is blank.
func ImageURL(name string) string {
	if strings.TrimSpace(name) == "" {
		return imagesPrefix + PlaceholderImage
	}
	return imagesPrefix + url.PathEscape(name)
}

// FallbackURL is the image shown when a referenced image fails to load.
func FallbackURL() string {
	return imagesPrefix + PlaceholderImage
}

// Condition prepares an upstream condition label for display. The label is
// shown as served; only its Unicode form is normalized (NFC).
func Condition(c string) string {
	return norm.NFC.String(c)
}

// NewNationalView shapes the national banner.
func NewNationalView(s weather.NationalSummary) NationalView {
	return NationalView{
		AvgTemp:  Round(s.AvgTemp),
		Hotspots: strings.Join(s.Hotspots, ", "),
		Updated:  s.Updated,
	}
}

// NewLocationsPanel shapes the tile list; an empty list becomes an explicit
// "No results" panel.
func NewLocationsPanel(list []weather.Location) Panel[LocationsView] {
	if len(list) == 0 {
		return Empty[LocationsView](MsgNoResults)
	}
	tiles := make([]Tile, 0, len(list))
	for _, l := range list {
		tiles = append(tiles, NewTile(l))
	}
	return Ready(LocationsView{Tiles: tiles})
}

// NewTile shapes one location tile.
func NewTile(l weather.Location) Tile {
	return Tile{
		ID:          l.ID,
		Title:       fmt.Sprintf("%s, %s", l.City, l.State),
		Meta:        fmt.Sprintf("%s · %s", Condition(l.Condition), Degrees(l.Current.Temp)),
		ImageURL:    ImageURL(l.Image),
		FallbackURL: FallbackURL(),
		Alt:         l.City + " image",
		ActionURL:   "/actions/detail/" + strconv.Itoa(l.ID),
	}
}

// NewImageTags lists the distinct non-empty image names referenced by list,
// in order of first occurrence.
func NewImageTags(list []weather.Location) []ImageTag {
	seen := make(map[string]struct{}, len(list))
	tags := make([]ImageTag, 0)
	for _, l := range list {
		if l.Image == "" {
			continue
		}
		if _, ok := seen[l.Image]; ok {
			continue
		}
		seen[l.Image] = struct{}{}
		tags = append(tags, ImageTag{
			Name: l.Image,
			Hint: fmt.Sprintf("put your file in /images/%s", l.Image),
		})
	}
	return tags
}

// NewDetailView shapes the detail panel. Only the first HourlyRows hourly
// entries are kept; every daily entry is kept.
func NewDetailView(d weather.LocationDetail) DetailView {
	hourly := d.Hourly
	if len(hourly) > HourlyRows {
		hourly = hourly[:HourlyRows]
	}

	v := DetailView{
		Title:       fmt.Sprintf("%s, %s", d.City, d.State),
		ImageURL:    ImageURL(d.Image),
		FallbackURL: FallbackURL(),
		Alt:         d.City,
		Condition:   Condition(d.Condition),
		Temp:        Round(d.Current.Temp),
		FeelsLike:   Round(d.Current.FeelsLike),
		Humidity:    formatNumber(d.Current.Humidity),
		Wind:        formatNumber(d.Current.Wind),
		Hourly:      make([]HourRow, 0, len(hourly)),
		Daily:       make([]DayRow, 0, len(d.Daily)),
	}
	for _, h := range hourly {
		v.Hourly = append(v.Hourly, HourRow{Time: h.Time, Temp: Round(h.Temp), Condition: Condition(h.Condition)})
	}
	for _, day := range d.Daily {
		v.Daily = append(v.Daily, DayRow{
			Date:      day.Date,
			High:      Round(day.High),
			Low:       Round(day.Low),
			Condition: Condition(day.Condition),
		})
	}
	return v
}

// NewPreviewView shapes the preview area for a selected file.
func NewPreviewView(src, name, contentType string) PreviewView {
	return PreviewView{
		URL:         src,
		Name:        name,
		ContentType: contentType,
		Caption:     name + " (local preview only)",
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
