package layout

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// maxDocumentSize bounds a downloaded layout document.
const maxDocumentSize = 64 << 20

type Downloader struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewDownloader(url string, logger *slog.Logger) *Downloader {
	return &Downloader{
		url: url,
		client: &http.Client{
			Timeout: 2 * time.Minute,
		},
		logger: logger.With("component", "layout_downloader"),
	}
}

func (d *Downloader) Download(ctx context.Context) ([]byte, error) {
	start := time.Now()
	d.logger.Info("starting layout download", "url", d.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		d.logger.Error("failed to create request", "error", err)
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", "Commuter-Backend/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Error("failed to download layout",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("download layout: %w", err)
	}
	defer resp.Body.Close()

	d.logger.Debug("received HTTP response",
		"status_code", resp.StatusCode,
		"content_length", resp.ContentLength,
		"content_type", resp.Header.Get("Content-Type"),
	)

	if resp.StatusCode != http.StatusOK {
		d.logger.Error("unexpected HTTP status",
			"status_code", resp.StatusCode,
			"status", resp.Status,
		)
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("layout document exceeds %d bytes", maxDocumentSize)
	}

	d.logger.Info("layout download completed",
		"size_bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return data, nil
}

// Source reads a layout document from a file, an http(s) URL, or the
// built-in demo network when location is empty.
type Source struct {
	location   string
	downloader *Downloader
}

func NewSource(location string, logger *slog.Logger) *Source {
	s := &Source{location: location}
	if isURL(location) {
		s.downloader = NewDownloader(location, logger)
	}
	return s
}

func (s *Source) String() string {
	if s.location == "" {
		return "demo"
	}
	return s.location
}

func (s *Source) Read(ctx context.Context) ([]byte, error) {
	switch {
	case s.location == "":
		return Demo(), nil
	case s.downloader != nil:
		return s.downloader.Download(ctx)
	default:
		data, err := os.ReadFile(s.location)
		if err != nil {
			return nil, fmt.Errorf("read layout file: %w", err)
		}
		return data, nil
	}
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
