package admin

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"fleet-crm/internal/domain"
	errs "fleet-crm/pkg/errors"
	"fleet-crm/pkg/logging"
)

const maxBodyBytes = 1 << 20

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// listBody wraps a page of records with the total before pagination.
type listBody[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps typed errors to status codes. 5xx details are logged, not returned.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.StatusCode(err)
	body := errorBody{Message: err.Error(), Errors: errs.FieldErrors(err)}
	if status >= http.StatusInternalServerError {
		s.log.WithContext(r.Context()).Error("request failed", err,
			logging.String("method", r.Method), logging.String("path", r.URL.Path))
		if status == http.StatusInternalServerError {
			body.Message = "internal error"
		}
	}
	writeJSON(w, status, body)
}

// decodeJSON reads a single JSON document into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.NewValidation("decode", "empty body", nil)
		}
		return errs.NewValidation("decode", "invalid JSON", err)
	}
	return nil
}

// listFilter reads q, state, limit and offset from the query string.
func listFilter(r *http.Request) (domain.ListFilter, error) {
	q := r.URL.Query()
	f := domain.ListFilter{
		Search: strings.TrimSpace(q.Get("q")),
		State:  strings.ToUpper(strings.TrimSpace(q.Get("state"))),
	}
	var err error
	if f.Limit, err = intParam(q.Get("limit"), 50); err != nil {
		return f, errs.NewValidation("listFilter", "invalid limit", err)
	}
	if f.Offset, err = intParam(q.Get("offset"), 0); err != nil {
		return f, errs.NewValidation("listFilter", "invalid offset", err)
	}
	if f.Limit > 500 {
		f.Limit = 500
	}
	return f, nil
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("must be a non-negative integer")
	}
	return n, nil
}
