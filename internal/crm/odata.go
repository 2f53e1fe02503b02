package crm

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Query carries the OData system query options of a request.
type Query struct {
	Filter  string
	Select  []string
	Expand  string
	OrderBy string
	Top     int
}

// Encode renders the options as a query string, including the leading
// "?", or "" when no option is set. Spaces are encoded as %20.
func (q Query) Encode() string {
	var parts []string
	add := func(name, value string) {
		if value == "" {
			return
		}
		parts = append(parts, name+"="+strings.ReplaceAll(url.QueryEscape(value), "+", "%20"))
	}

	add("$filter", q.Filter)
	add("$select", strings.Join(q.Select, ","))
	add("$expand", q.Expand)
	add("$orderby", q.OrderBy)
	if q.Top > 0 {
		add("$top", strconv.Itoa(q.Top))
	}

	if len(parts) == 0 {
		return ""
	}
	return "?" + strings.Join(parts, "&")
}

// Error is a non-2xx answer from the entity API.
type Error struct {
	StatusCode int
	Code       string
	Message    string
	Path       string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("crm %s: %d %s: %s", e.Path, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("crm %s: %d: %s", e.Path, e.StatusCode, e.Message)
}

// AuthError wraps a failed token request.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return "crm token request failed: " + e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode == http.StatusNotFound
}

// ErrInvalidKey is returned for identifiers that are not GUIDs.
var ErrInvalidKey = errors.New("invalid record key")

func readError(resp *http.Response, path string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	e := &Error{
		StatusCode: resp.StatusCode,
		Path:       path,
		Code:       gjson.GetBytes(body, "error.code").String(),
		Message:    gjson.GetBytes(body, "error.message").String(),
	}
	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}

// key normalises a record id so it can be embedded in paths and filters.
func key(id string) (string, error) {
	parsed, err := uuid.Parse(strings.Trim(id, "{}"))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, id)
	}
	return parsed.String(), nil
}

// DateTime accepts both Edm.DateTimeOffset and date-only values.
type DateTime struct {
	time.Time
}

func (d *DateTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognised date %q", s)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.UTC().Format(time.RFC3339) + `"`), nil
}

// Ptr returns the wrapped time or nil.
func (d *DateTime) Ptr() *time.Time {
	if d == nil || d.Time.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

func odataTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
