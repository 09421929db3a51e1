package dataprovider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Compile-time interface guard.
var _ Provider = (*RESTProvider)(nil)

// RESTConfig configures a RESTProvider.
type RESTConfig struct {
	BaseURL string
	Timeout time.Duration
	Headers map[string]string
	Retries int
}

// RESTProvider talks to a "simple REST" backend:
//
//	GET {base}/{resource}?sort=["title","ASC"]&range=[0,24]&filter={"q":"go"}
//
// The response body is a JSON array of records and the total comes from the
// Content-Range header ("posts 0-24/319"), or X-Total-Count when absent.
type RESTProvider struct {
	client *resty.Client
}

// NewRESTProvider creates a RESTProvider.
func NewRESTProvider(cfg RESTConfig) *RESTProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.Retries).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= http.StatusInternalServerError
		})
	for k, v := range cfg.Headers {
		client.SetHeader(k, v)
	}
	return &RESTProvider{client: client}
}

// GetList fetches one page of resource.
func (p *RESTProvider) GetList(ctx context.Context, resource string, params GetListParams) (*GetListResult, error) {
	params = normalizeParams(params)

	sortJSON, _ := json.Marshal([]string{params.Sort.Field, string(params.Sort.Order)})
	start := params.Pagination.Offset()
	end := start + params.Pagination.PerPage - 1
	rangeJSON, _ := json.Marshal([]int{start, end})
	filter := params.Filter
	if filter == nil {
		filter = map[string]any{}
	}
	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}

	var records []Record
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("sort", string(sortJSON)).
		SetQueryParam("range", string(rangeJSON)).
		SetQueryParam("filter", string(filterJSON)).
		SetResult(&records).
		Get("/" + resource)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", resource, err)
	}
	if resp.IsError() {
		return nil, &HTTPError{Status: resp.StatusCode(), Body: strings.TrimSpace(resp.String())}
	}

	result := &GetListResult{
		IDs:  make([]Identifier, 0, len(records)),
		Data: make(map[Identifier]Record, len(records)),
	}
	for _, rec := range records {
		id := ToIdentifier(rec["id"])
		result.IDs = append(result.IDs, id)
		result.Data[id] = rec
	}

	total, ok := parseTotal(resp.Header())
	if !ok {
		return nil, fmt.Errorf("get %s: %w", resource, ErrMissingTotal)
	}
	result.Total = IntPtr(total)
	return result, nil
}

// ErrMissingTotal is returned when a REST response carries no total count.
var ErrMissingTotal = errors.New("response has neither Content-Range nor X-Total-Count header")

// HTTPError is a non-2xx response from a REST backend.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http %d: %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Body)
}

func parseTotal(h http.Header) (int, bool) {
	if cr := h.Get("Content-Range"); cr != "" {
		if i := strings.LastIndex(cr, "/"); i >= 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(cr[i+1:])); err == nil {
				return n, true
			}
		}
	}
	if tc := h.Get("X-Total-Count"); tc != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(tc)); err == nil {
			return n, true
		}
	}
	return 0, false
}
