package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"outreach/internal/core"
)

const (
	maxJSONBody   = 1 << 20
	maxUploadBody = 10 << 20
)

// decodeJSON reads a single JSON value from the request body and rejects
// unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty request body")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// queryDate parses the named query parameter as YYYY-MM-DD. An empty
// value gives nil.
func queryDate(q url.Values, name string) (*core.Date, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s date %q", name, v)
	}
	return &d, nil
}

// queryRange reads the start and end parameters.
func queryRange(q url.Values) (start, end *core.Date, err error) {
	if start, err = queryDate(q, "start"); err != nil {
		return nil, nil, err
	}
	if end, err = queryDate(q, "end"); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

// uploadedFile returns the "file" part of a multipart upload and whether
// it is a workbook, judged by its extension.
func uploadedFile(w http.ResponseWriter, r *http.Request) (io.ReadCloser, bool, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		return nil, false, fmt.Errorf("invalid upload: %w", err)
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return nil, false, fmt.Errorf("missing file: %w", err)
	}
	name := strings.ToLower(hdr.Filename)
	return f, strings.HasSuffix(name, ".xlsx"), nil
}
