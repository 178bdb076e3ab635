package weather

import (
	"encoding/json"
	"sync"
	"testing"
)

func TestZipAcceptsNumberOrString(t *testing.T) {
	var locs []Location
	data := `[{"id":1,"zip":89501},{"id":2,"zip":"02108"},{"id":3,"zip":null},{"id":4},{"id":5,"zip":89501.0},{"id":6,"zip":8.9501e4},{"id":7,"zip":895.25}]`
	if err := json.Unmarshal([]byte(data), &locs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []Zip{"89501", "02108", "", "", "89501", "89501", "895.25"}
	for i, l := range locs {
		if l.Zip != want[i] {
			t.Errorf("location %d: zip %q, want %q", l.ID, l.Zip, want[i])
		}
	}

	var bad Location
	if err := json.Unmarshal([]byte(`{"zip":true}`), &bad); err == nil {
		t.Fatal("expected error for boolean zip")
	}
}

func TestDetailEmbedsLocation(t *testing.T) {
	var d LocationDetail
	data := `{"id":9,"city":"Reno","zip":89501,"current":{"temp":1.5,"feels_like":2},"hourly":[{"time":"1","temp":3}],"daily":[{"date":"d","high":4,"low":5}]}`
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.ID != 9 || d.City != "Reno" || d.Zip != "89501" || d.Current.FeelsLike != 2 || len(d.Hourly) != 1 || d.Daily[0].Low != 5 {
		t.Fatalf("unexpected detail: %+v", d)
	}
}

func TestFilterLocations(t *testing.T) {
	list := []Location{
		{ID: 1, City: "Reno", State: "NV", Zip: "89501"},
		{ID: 2, City: "Austin", State: "TX", Zip: "73301"},
		{ID: 3, City: "Carson City", State: "NV", Zip: "89701"},
	}

	got := FilterLocations(list, "  nV ")
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("unexpected result: %+v", got)
	}

	got = FilterLocations(list, "89501")
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected only Reno, got %+v", got)
	}

	if got := FilterLocations(list, "seattle"); len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestFilterEmptyQueryCaps(t *testing.T) {
	list := make([]Location, 25)
	for i := range list {
		list[i].ID = i
	}
	got := FilterLocations(list, "")
	if len(got) != PreviewCount {
		t.Fatalf("expected %d, got %d", PreviewCount, len(got))
	}
	got[0].ID = 100
	if list[0].ID != 0 {
		t.Fatal("result shares memory with the input")
	}

	if got := FilterLocations(list[:3], ""); len(got) != 3 {
		t.Fatalf("expected 3, got %d", len(got))
	}
}

func TestSequencerRejectsStaleTokens(t *testing.T) {
	s := NewSequencer()
	a := s.Issue(ViewDetail)
	b := s.Issue(ViewDetail)
	other := s.Issue(ViewNational)

	if s.Current(ViewDetail, a) {
		t.Fatal("older token still current")
	}
	if !s.Current(ViewDetail, b) || !s.Current(ViewNational, other) {
		t.Fatal("latest tokens should be current")
	}

	ran := false
	if s.Apply(ViewDetail, a, func() { ran = true }) || ran {
		t.Fatal("stale apply ran")
	}
	if !s.Apply(ViewDetail, b, func() { ran = true }) || !ran {
		t.Fatal("current apply did not run")
	}
}

func TestSequencerApplyWithReportsOtherView(t *testing.T) {
	s := NewSequencer()
	fetch := s.Issue(ViewLocationList)
	tiles := s.Issue(ViewLocations)

	var owns bool
	if !s.ApplyWith(ViewLocationList, fetch, ViewLocations, tiles, func(current bool) { owns = current }) || !owns {
		t.Fatal("expected fetch to apply while owning the tiles")
	}

	s.Issue(ViewLocations)
	if !s.ApplyWith(ViewLocationList, fetch, ViewLocations, tiles, func(current bool) { owns = current }) || owns {
		t.Fatal("expected fetch to apply without owning the tiles")
	}

	s.Issue(ViewLocationList)
	if s.ApplyWith(ViewLocationList, fetch, ViewLocations, tiles, func(bool) { t.Fatal("stale fetch applied") }) {
		t.Fatal("stale fetch reported as applied")
	}
}

func TestSequencerConcurrentIssue(t *testing.T) {
	s := NewSequencer()
	var wg sync.WaitGroup
	seen := make(chan Token, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- s.Issue(ViewLocations)
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[Token]bool)
	var max Token
	for tok := range seen {
		if unique[tok] {
			t.Fatalf("token %d issued twice", tok)
		}
		unique[tok] = true
		if tok > max {
			max = tok
		}
	}
	if !s.Current(ViewLocations, max) || max != 100 {
		t.Fatalf("expected token 100 to be current, max=%d", max)
	}
}

func TestFetchErrorMessage(t *testing.T) {
	e := &FetchError{Op: "detail", Status: 404, Message: "Not Found"}
	if e.Error() != "detail fetch failed: Not Found (status 404)" {
		t.Fatalf("unexpected message %q", e.Error())
	}
	e = &FetchError{Op: "national", Message: "connection refused"}
	if e.Error() != "national fetch failed: connection refused" {
		t.Fatalf("unexpected message %q", e.Error())
	}
}
