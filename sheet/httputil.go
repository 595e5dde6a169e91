package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// contains http utils to deal with the spreadsheet endpoint

// errStatus is returned for non 2xx responses.
type errStatus struct {
	code   int
	status string
	body   string
}

func (e *errStatus) Error() string {
	if e.body == "" {
		return e.status
	}
	return fmt.Sprintf("%s: %s", e.status, e.body)
}

// jwget performs an HTTP GET request and decodes the JSON response into data.
// Numbers are kept as json.Number so that no precision is lost before parsing.
func jwget(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	return jdo(client, req, data)
}

// jwpost performs an HTTP POST request with a JSON body and decodes the JSON
// response into data, if not nil.
func jwpost(ctx context.Context, client *http.Client, addr string, body, data any) error {
	content, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr, bytes.NewReader(content))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return jdo(client, req, data)
}

func jdo(client *http.Client, req *http.Request, data any) error {
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	log.Debug().
		Str("method", req.Method).
		Str("host", req.URL.Host).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("sheet request")

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &errStatus{code: resp.StatusCode, status: resp.Status, body: string(bytes.TrimSpace(content))}
	}
	if data == nil || len(bytes.TrimSpace(content)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()
	return dec.Decode(data)
}
