// Package backend is the remote data client: one download of the listing
// feed and one upload of a new listing. Every call is a single attempt.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joeblew999/plat-stay/internal/listing"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

// Config configures a Client.
type Config struct {
	DataURL   string
	SubmitURL string
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Client talks to the listing data and submit endpoints.
type Client struct {
	dataURL    string
	submitURL  string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client. Zero timeout means DefaultTimeout.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		dataURL:    cfg.DataURL,
		submitURL:  cfg.SubmitURL,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     cfg.Logger.With("component", "backend"),
	}
}

// Download fetches the listing feed.
func (c *Client) Download(ctx context.Context) ([]listing.Listing, error) {
	log := c.logger.With("method", "Download", "url", c.dataURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.dataURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		log.Warn("download failed", "error", err)
		return nil, err
	}

	if err := ValidateListings(body); err != nil {
		log.Warn("download returned malformed data", "error", err)
		return nil, payloadError(err)
	}
	var ads []listing.Listing
	if err := json.Unmarshal(body, &ads); err != nil {
		log.Warn("download returned undecodable data", "error", err)
		return nil, payloadError(err)
	}

	log.Debug("download complete", "listings", len(ads))
	return ads, nil
}

// Upload posts the form fields as multipart data and returns the raw
// response text.
func (c *Client) Upload(ctx context.Context, fields map[string][]string) (string, error) {
	log := c.logger.With("method", "Upload", "url", c.submitURL)

	payload, contentType, err := encodeMultipart(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.submitURL, payload)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	body, err := c.do(req)
	if err != nil {
		log.Warn("upload failed", "error", err)
		return "", err
	}

	log.Debug("upload complete", "bytes", len(body))
	return string(body), nil
}

// do runs req once and maps every failure onto *Error.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); errors.Is(ctxErr, context.Canceled) {
			return nil, ctxErr
		}
		if isTimeout(err) {
			return nil, timeoutError(c.timeout, err)
		}
		return nil, connectionError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, statusError(resp.StatusCode, statusText(resp))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, timeoutError(c.timeout, err)
		}
		return nil, connectionError(err)
	}
	return body, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// statusText returns the reason phrase the server sent, falling back to the
// standard text for the code.
func statusText(resp *http.Response) string {
	text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))
	text = strings.TrimSpace(text)
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func encodeMultipart(fields map[string][]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		for _, v := range fields[k] {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", err
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
