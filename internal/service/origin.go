package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"eversoul.dev/stageguide/internal/app/appconfig"
	"eversoul.dev/stageguide/internal/pkg/flog"
	"eversoul.dev/stageguide/internal/pkg/observability"
)

var ErrMalformedTable = errors.New("malformed table")

// OriginError is returned when the origin answers a table request with a
// non-2xx status.
type OriginError struct {
	StatusCode int
	URL        string
}

func (e *OriginError) Error() string {
	return fmt.Sprintf("HTTP %d: %s - URL: %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// Origin downloads raw tables from the game data mirror. It never retries.
type Origin struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

func NewOrigin(conf *appconfig.Config) *Origin {
	return &Origin{
		client: &http.Client{
			Timeout: conf.OriginTimeout,
		},
		baseURL:   strings.TrimRight(conf.OriginBaseURL, "/"),
		userAgent: conf.OriginUserAgent,
	}
}

func (s *Origin) URL(source, table string) string {
	return s.baseURL + "/" + url.PathEscape(source) + "/" + url.PathEscape(table) + ".json"
}

// Fetch returns the rows of one table. A {"json": [...]} envelope is
// unwrapped to the inner array.
func (s *Origin) Fetch(ctx context.Context, source, table string) (json.RawMessage, error) {
	u := s.URL(source, table)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)

	res, err := s.client.Do(req)
	if err != nil {
		observability.OriginFetchDuration.WithLabelValues(source, "error").Observe(time.Since(start).Seconds())
		return nil, errors.Wrapf(err, "fetch %s", u)
	}
	defer res.Body.Close()

	observability.OriginFetchDuration.WithLabelValues(source, strconv.Itoa(res.StatusCode)).Observe(time.Since(start).Seconds())

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &OriginError{StatusCode: res.StatusCode, URL: u}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", u)
	}

	rows, err := NormalizeTable(body)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", u)
	}

	flog.Debug(ctx).
		Str("evt.name", "origin.fetch").
		Str("source", source).
		Str("table", table).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("fetched table from origin")

	return rows, nil
}

// NormalizeTable validates body as JSON and unwraps the optional envelope.
func NormalizeTable(body []byte) (json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformedTable
	}

	r := gjson.ParseBytes(body)
	if r.IsObject() {
		if inner := r.Get("json"); inner.IsArray() {
			return json.RawMessage(inner.Raw), nil
		}
	}
	return json.RawMessage(body), nil
}
