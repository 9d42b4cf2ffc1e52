package util

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/videotube-app/videotube/internal/paging"
)

// APIError represents a structured error response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the top-level error envelope.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes a structured error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{
		Error: APIError{Code: code, Message: message},
	})
}

// ParseLimit reads the limit query parameter. An absent limit yields
// defaultLimit; anything else must be an integer in [paging.MinLimit,
// paging.MaxLimit].
func ParseLimit(r *http.Request, defaultLimit int) (int, error) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < paging.MinLimit || n > paging.MaxLimit {
		return 0, paging.ErrInvalidLimit
	}
	return n, nil
}

// ParseCursor decodes the opaque cursor query parameter with codec.
func ParseCursor(r *http.Request, codec paging.Codec) (*paging.Cursor, error) {
	return codec.Decode(r.URL.Query().Get("cursor"))
}

// ParsePageRequest combines ParseLimit and ParseCursor.
func ParsePageRequest(r *http.Request, codec paging.Codec, defaultLimit int) (paging.Request, error) {
	limit, err := ParseLimit(r, defaultLimit)
	if err != nil {
		return paging.Request{}, err
	}
	cur, err := ParseCursor(r, codec)
	if err != nil {
		return paging.Request{}, err
	}
	return paging.Request{Cursor: cur, Limit: limit}, nil
}

// DecodeJSON reads a JSON body of at most maxBytes into v. The body must hold
// exactly one JSON value.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return bodyError(err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return errors.New("invalid JSON body")
		}
		return bodyError(err)
	}
	return nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errors.New("request body too large")
	}
	return errors.New("invalid JSON body")
}
