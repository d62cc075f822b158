// pkg/middleware/jsonbody.go
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/aleka07/hello-api/pkg/response"
)

var (
	ErrBodyTooLarge       = errors.New("request entity too large")
	ErrUnsupportedCharset = errors.New("unsupported charset")
	ErrMalformedJSON      = errors.New("malformed JSON body")
)

type bodyKey struct{}

// Body returns the JSON payload parsed by JSONBody. Requests that carried no JSON
// get an empty object.
func Body(r *http.Request) any {
	if v, ok := r.Context().Value(bodyKey{}).(bodyValue); ok {
		return v.v
	}
	return map[string]any{}
}

// bodyValue wraps the payload so a JSON null still counts as "parsed".
type bodyValue struct{ v any }

// JSONBody parses application/json request bodies of at most limit bytes and
// stores the result on the request context. Bodies of other types pass through
// untouched. Malformed or oversized bodies are answered here and never reach
// the next handler.
func JSONBody(limit int64, logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isJSON(r) || r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
				next.ServeHTTP(w, withBody(r, map[string]any{}))
				return
			}

			v, raw, err := parseJSON(w, r, limit)
			if err != nil {
				status := statusFor(err)
				logger.WithError(err).WithField("status", status).Debug("rejecting request body")
				response.Error(w, status, err.Error())
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(raw))
			next.ServeHTTP(w, withBody(r, v))
		})
	}
}

func withBody(r *http.Request, v any) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), bodyKey{}, bodyValue{v: v}))
}

func isJSON(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

func parseJSON(w http.ResponseWriter, r *http.Request, limit int64) (any, []byte, error) {
	_, params, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if cs, ok := params["charset"]; ok && !strings.EqualFold(cs, "utf-8") {
		return nil, nil, fmt.Errorf("%w %q", ErrUnsupportedCharset, strings.ToUpper(cs))
	}

	if r.ContentLength > limit {
		return nil, nil, ErrBodyTooLarge
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, ErrBodyTooLarge
		}
		return nil, nil, fmt.Errorf("reading request body: %w", err)
	}

	// chunked requests have no length up front
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return map[string]any{}, raw, nil
	}

	// strict mode: only objects and arrays at the top level
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return nil, nil, fmt.Errorf("%w: unexpected token %q at top level", ErrMalformedJSON, trimmed[0])
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return v, raw, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUnsupportedCharset):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusBadRequest
	}
}
