package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DashboardAPI implements weather.Source against the dashboard REST API
// (GET /national, /locations?_limit=N, /locations/<id>).
type DashboardAPI struct {
	baseURL  string
	httpCfg  HTTPClientConfig
	national *gobreaker.CircuitBreaker
	list     *gobreaker.CircuitBreaker
	detail   *gobreaker.CircuitBreaker
}

// NewDashboardAPI creates a client for the API rooted at baseURL.
func NewDashboardAPI(client *http.Client, baseURL string, backoff BackoffConfig) *DashboardAPI {
	return &DashboardAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		national: newBreaker("dashboard-national"),
		list:     newBreaker("dashboard-locations"),
		detail:   newBreaker("dashboard-detail"),
	}
}

// FetchNational retrieves the nationwide summary.
func (p *DashboardAPI) FetchNational(ctx context.Context) (weather.NationalSummary, error) {
	var out weather.NationalSummary
	err := p.getJSON(ctx, "national", p.national, p.baseURL+"/national", &out)
	return out, err
}

// LoadLocations retrieves up to limit locations. A non-positive limit means
// weather.DefaultLimit.
func (p *DashboardAPI) LoadLocations(ctx context.Context, limit int) ([]weather.Location, error) {
	if limit <= 0 {
		limit = weather.DefaultLimit
	}
	values := url.Values{}
	values.Set("_limit", strconv.Itoa(limit))

	var out []weather.Location
	if err := p.getJSON(ctx, "locations", p.list, p.baseURL+"/locations?"+values.Encode(), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []weather.Location{}
	}
	return out, nil
}

// FetchDetail retrieves one location with its hourly and daily forecasts.
func (p *DashboardAPI) FetchDetail(ctx context.Context, id int) (weather.LocationDetail, error) {
	var out weather.LocationDetail
	u := fmt.Sprintf("%s/locations/%s", p.baseURL, url.PathEscape(strconv.Itoa(id)))
	err := p.getJSON(ctx, "detail", p.detail, u, &out)
	return out, err
}

func (p *DashboardAPI) getJSON(ctx context.Context, op string, cb *gobreaker.CircuitBreaker, u string, target any) error {
	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, cb, buildRequest)
	if err != nil {
		return toFetchError(op, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return &weather.FetchError{
			Op:      op,
			Status:  resp.StatusCode,
			Message: "invalid response body",
			Err:     err,
		}
	}
	return nil
}

func toFetchError(op string, err error) *weather.FetchError {
	fe := &weather.FetchError{Op: op, Err: err}

	var se *statusError
	switch {
	case errors.As(err, &se):
		fe.Status = se.code
		fe.Message = http.StatusText(se.code)
		if fe.Message == "" {
			fe.Message = "unexpected status"
		}
	case errors.Is(err, errCircuitOpen):
		fe.Message = "upstream temporarily unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		fe.Message = "request timed out"
	case errors.Is(err, context.Canceled):
		fe.Message = "request canceled"
	default:
		fe.Message = err.Error()
	}
	return fe
}
