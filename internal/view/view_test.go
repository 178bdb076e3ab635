package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

func mustRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func TestRound(t *testing.T) {
	cases := map[float64]int{72.4: 72, 72.5: 73, 71.6: 72, -2.5: -2, -2.6: -3, 0: 0}
	for in, want := range cases {
		if got := Round(in); got != want {
			t.Errorf("Round(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestNationalBanner(t *testing.T) {
	r := mustRenderer(t)
	v := NewNationalView(weather.NationalSummary{AvgTemp: 72.4, Hotspots: []string{"Austin", "Miami"}, Updated: "2024-01-01"})

	var buf bytes.Buffer
	if err := r.Fragment(&buf, FragmentNational, Ready(v)); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"72°F", "Austin, Miami", "2024-01-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("banner missing %q:\n%s", want, out)
		}
	}
}

func TestEmptyLocationsShowsNoResults(t *testing.T) {
	r := mustRenderer(t)
	p := NewLocationsPanel(nil)
	if p.State != StateEmpty {
		t.Fatalf("expected empty state, got %s", p.State)
	}

	var buf bytes.Buffer
	if err := r.Fragment(&buf, FragmentLocations, p); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No results") {
		t.Fatalf("expected no-results message:\n%s", buf.String())
	}
}

func TestTilesRenderWithOneShotFallback(t *testing.T) {
	r := mustRenderer(t)
	list := []weather.Location{
		{ID: 1, City: "Reno", State: "NV", Zip: "89501", Image: "reno.jpg", Condition: "sunny", Current: weather.Conditions{Temp: 71.6}},
		{ID: 2, City: "Austin", State: "TX", Image: "", Condition: "Hot", Current: weather.Conditions{Temp: 98.2}},
	}
	p := NewLocationsPanel(list)
	if len(p.View.Tiles) != 2 {
		t.Fatalf("expected 2 tiles, got %d", len(p.View.Tiles))
	}
	tile := p.View.Tiles[0]
	if tile.Title != "Reno, NV" || tile.Meta != "sunny · 72°F" || tile.ImageURL != "/images/reno.jpg" {
		t.Fatalf("unexpected tile: %+v", tile)
	}
	if p.View.Tiles[1].ImageURL != "/images/placeholder.jpg" {
		t.Fatalf("blank image should use placeholder, got %q", p.View.Tiles[1].ImageURL)
	}

	var buf bytes.Buffer
	if err := r.Fragment(&buf, FragmentLocations, p); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if n := strings.Count(out, `class="location-tile"`); n != 2 {
		t.Fatalf("expected 2 rendered tiles, got %d", n)
	}
	// The handler clears itself before swapping so a broken placeholder cannot loop.
	if n := strings.Count(out, "this.onerror=null"); n != 2 {
		t.Fatalf("expected one-shot fallback per tile, got %d", n)
	}
}

func TestImageTagsAreDistinct(t *testing.T) {
	list := []weather.Location{
		{ID: 1, Image: "a.jpg"}, {ID: 2, Image: "b.jpg"}, {ID: 3, Image: "a.jpg"}, {ID: 4, Image: ""}, {ID: 5, Image: "b.jpg"},
	}
	tags := NewImageTags(list)
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d: %+v", len(tags), tags)
	}
	seen := map[string]bool{}
	for _, tag := range tags {
		if seen[tag.Name] {
			t.Fatalf("duplicate tag %q", tag.Name)
		}
		seen[tag.Name] = true
		if !strings.Contains(tag.Hint, "/images/"+tag.Name) {
			t.Fatalf("unexpected hint %q", tag.Hint)
		}
	}
}

func TestDetailViewKeepsEightHours(t *testing.T) {
	d := weather.LocationDetail{
		Location: weather.Location{ID: 1, City: "Reno", State: "NV", Image: "reno.jpg", Condition: "Clear",
			Current: weather.Conditions{Temp: 60.5, FeelsLike: 58.4, Humidity: 20, Wind: 5.5}},
	}
	for i := 0; i < 12; i++ {
		d.Hourly = append(d.Hourly, weather.HourlyEntry{Time: "h", Temp: 60.4, Condition: "Clear"})
	}
	for i := 0; i < 7; i++ {
		d.Daily = append(d.Daily, weather.DailyEntry{Date: "d", High: 70.5, Low: 40.4, Condition: "Clear"})
	}

	v := NewDetailView(d)
	if len(v.Hourly) != 8 || len(v.Daily) != 7 {
		t.Fatalf("expected 8 hourly and 7 daily rows, got %d and %d", len(v.Hourly), len(v.Daily))
	}
	if v.Temp != 61 || v.FeelsLike != 58 || v.Daily[0].High != 71 || v.Daily[0].Low != 40 || v.Hourly[0].Temp != 60 {
		t.Fatalf("temperatures not rounded: %+v", v)
	}
	if v.Humidity != "20" || v.Wind != "5.5" {
		t.Fatalf("unexpected humidity/wind: %q %q", v.Humidity, v.Wind)
	}

	r := mustRenderer(t)
	var buf bytes.Buffer
	region := DetailRegion{Title: v.Title, Body: Ready(v)}
	if err := r.Fragment(&buf, FragmentDetail, region); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Reno, NV") || !strings.Contains(out, "H: 71°F L: 40°F") {
		t.Fatalf("unexpected detail output:\n%s", out)
	}
}

func TestPageRendersAllRegions(t *testing.T) {
	r := mustRenderer(t)
	p := Page{
		National:  Failed[NationalView](PrefixNationalErr + "boom"),
		Locations: Loading[LocationsView](MsgLoading),
		Detail:    IdleDetail(),
		Preview:   Empty[PreviewView](MsgNoPreview),
	}
	var buf bytes.Buffer
	if err := r.Page(&buf, p); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Could not load national data: boom", "Loading…", "Select a city", "No preview"} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestUnknownFragment(t *testing.T) {
	r := mustRenderer(t)
	if err := r.Fragment(&bytes.Buffer{}, "nope", nil); err == nil {
		t.Fatal("expected error for unknown fragment")
	}
}

func TestConditionIsShownVerbatim(t *testing.T) {
	cases := map[string]string{
		"partly cloudy": "partly cloudy",
		"Clear":         "Clear",
		"THUNDER":       "THUNDER",
		// Decomposed "é" is composed; the text reads the same.
		"brume\u0301e": "brum\u00e9e",
	}
	for in, want := range cases {
		if got := Condition(in); got != want {
			t.Errorf("Condition(%q) = %q, want %q", in, got, want)
		}
	}
}
