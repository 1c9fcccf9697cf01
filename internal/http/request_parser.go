package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"paymonth/internal/calendar"
	"paymonth/internal/core"
)

const maxBodyBytes = 1 << 20

// userID returns the caller from the X-User-ID header, or the configured
// default user.
func (s *Server) userID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if id == "" {
		return s.opts.DefaultUserID, nil
	}
	if len(id) > maxUserIDLen {
		return "", core.ValidationErrors{"userId": fmt.Sprintf("must be at most %d characters", maxUserIDLen)}
	}
	return id, nil
}

// decodeJSON reads a single JSON object from the request body, rejecting
// unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", core.ErrInvalidArgument)
		}
		return fmt.Errorf("%w: malformed JSON: %v", core.ErrInvalidArgument, err)
	}
	return nil
}

// parseDate accepts an RFC 3339 instant, YYYY-MM-DD or MM/DD. Date-only
// values resolve to midnight in the server's location.
func (s *Server) parseDate(raw string) (time.Time, bool) {
	return calendar.ParseAbsoluteDate(raw, s.opts.Location, s.opts.Now())
}

func isDateOnly(raw string) bool {
	return !strings.ContainsAny(raw, "T:")
}

type queryReader struct {
	s    *Server
	q    map[string][]string
	errs core.ValidationErrors
}

func (s *Server) query(r *http.Request) *queryReader {
	return &queryReader{s: s, q: r.URL.Query(), errs: core.ValidationErrors{}}
}

func (qr *queryReader) get(key string) string {
	if v := qr.q[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

// date parses key as a date. A date-only endOfDay value is moved to the last
// millisecond of that day.
func (qr *queryReader) date(key string, endOfDay bool) *time.Time {
	raw := qr.get(key)
	if raw == "" {
		return nil
	}
	t, ok := qr.s.parseDate(raw)
	if !ok {
		qr.errs[key] = "invalid date"
		return nil
	}
	if endOfDay && isDateOnly(raw) {
		t = t.AddDate(0, 0, 1).Add(-time.Millisecond)
	}
	return &t
}

func (qr *queryReader) anchor() time.Time {
	if t := qr.date("anchorDate", false); t != nil {
		return *t
	}
	return qr.s.opts.Now()
}

func (qr *queryReader) count(key string, def int) int {
	raw := qr.get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		qr.errs[key] = "must be a non-negative integer"
		return def
	}
	return n
}

func (qr *queryReader) flag(key string) *bool {
	raw := qr.get(key)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		qr.errs[key] = "must be true or false"
		return nil
	}
	return &b
}

func (qr *queryReader) txType(key string) *core.TransactionType {
	raw := qr.get(key)
	if raw == "" {
		return nil
	}
	t, err := core.ParseTransactionType(raw)
	if err != nil {
		qr.errs[key] = err.Error()
		return nil
	}
	return &t
}

func (qr *queryReader) err() error {
	if len(qr.errs) == 0 {
		return nil
	}
	return qr.errs
}
