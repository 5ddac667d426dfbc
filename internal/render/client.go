// Package render turns student records into LaTeX and sends them to the
// LaTeX-to-PDF conversion service.
package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ImageFileName is the name the conversion service expects for the photo;
// the template refers to it.
const ImageFileName = "student-passport-photo.jpg"

const maxErrorBody = 4 << 10

// RemoteError is returned when the service answers with a non-2xx status.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.Status, e.Body)
}

// Client posts LaTeX sources to the conversion service.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient constructs a Client for endpoint.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{endpoint: endpoint, http: &http.Client{Timeout: timeout}}
}

// Render sends latex and the photo as a multipart form and returns the PDF
// bytes.
func (c *Client) Render(ctx context.Context, latex string, image []byte) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("latex", latex); err != nil {
		return nil, fmt.Errorf("write latex field: %w", err)
	}
	part, err := mw.CreateFormFile("image", ImageFileName)
	if err != nil {
		return nil, fmt.Errorf("create image part: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("write image part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("build render request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &RemoteError{Status: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read render response: %w", err)
	}
	return data, nil
}
