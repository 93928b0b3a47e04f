package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/churchsite/backend/internal/apperrors"
	"go.uber.org/zap"
)

// Source selects where the middleware reads raw input from
type Source int

const (
	// JSON reads a JSON object body
	JSON Source = iota
	// Form reads urlencoded or multipart form values
	Form
	// Query reads URL query parameters
	Query
	// Body reads a JSON body or form values depending on Content-Type
	Body
)

// MultipartMemory is the in-memory part of a parsed multipart form; larger files spill to disk
const MultipartMemory = 8 << 20

// Middleware evaluates set against the request input and short-circuits with 400 and every
// violation when any rule fails. Normalized values are stored in the request context.
func (v *Validator) Middleware(set RuleSet, source Source, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			in, err := readInput(r, source)
			if err != nil {
				apperrors.Write(w, logger, err)
				return
			}

			values, result, err := v.Evaluate(set, in)
			if err != nil {
				apperrors.Write(w, logger, apperrors.Internal(err))
				return
			}
			if !result.OK() {
				apperrors.Write(w, logger, apperrors.Invalid(result.Violations))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithValues(r.Context(), values)))
		})
	}
}

func readInput(r *http.Request, source Source) (Input, error) {
	if source == Body {
		source = Form
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			source = JSON
		}
	}

	switch source {
	case JSON:
		return readJSON(r)
	case Form:
		return readForm(r)
	default:
		in := Input{}
		for key, vals := range r.URL.Query() {
			if len(vals) > 0 {
				in[key] = vals[0]
			}
		}
		return in, nil
	}
}

func readJSON(r *http.Request) (Input, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, apperrors.Upload(http.StatusRequestEntityTooLarge, "request body too large")
		}
		return nil, apperrors.BadRequest("failed to read request body")
	}
	// Handlers may decode the body again
	r.Body = io.NopCloser(bytes.NewReader(body))

	in := Input{}
	if len(bytes.TrimSpace(body)) == 0 {
		return in, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&in); err != nil {
		return nil, apperrors.BadRequest("invalid request body")
	}
	return in, nil
}

func readForm(r *http.Request) (Input, error) {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(MultipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, apperrors.Upload(http.StatusRequestEntityTooLarge, "request body too large")
		}
		return nil, apperrors.BadRequest("invalid form data")
	}

	in := Input{}
	for key, vals := range r.PostForm {
		if len(vals) > 0 {
			in[key] = vals[0]
		}
	}
	return in, nil
}
