package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"bharatbus.in/internal/logging"
)

// EmbeddedSource names the built-in catalog in import metadata.
const EmbeddedSource = "embedded:catalog.json"

const maxCatalogSize = 200 * 1024 * 1024

//go:embed catalog.json
var defaultCatalog []byte

var catalogHTTPClient = &http.Client{
	Timeout: 5 * time.Minute,
	Transport: &http.Transport{
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		IdleConnTimeout:       90 * time.Second,
	},
}

func isHTTPSource(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// rawCatalogData returns the source bytes and the name recorded for them.
func rawCatalogData(ctx context.Context, config Config) ([]byte, string, error) {
	source := config.CatalogURL
	if source == "" {
		return defaultCatalog, EmbeddedSource, nil
	}

	if !isHTTPSource(source) {
		b, err := os.ReadFile(source)
		if err != nil {
			return nil, source, fmt.Errorf("error reading local catalog file: %w", err)
		}
		return b, source, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, source, fmt.Errorf("error creating catalog request: %w", err)
	}
	if config.AuthHeaderKey != "" && config.AuthHeaderValue != "" {
		req.Header.Set(config.AuthHeaderKey, config.AuthHeaderValue)
	}

	resp, err := catalogHTTPClient.Do(req)
	if err != nil {
		return nil, source, fmt.Errorf("error downloading catalog: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "catalog_downloader")),
		"http_response_body")

	if resp.StatusCode != http.StatusOK {
		return nil, source, fmt.Errorf("failed to download catalog: received HTTP status %s", resp.Status)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogSize+1))
	if err != nil {
		return nil, source, fmt.Errorf("error reading catalog: %w", err)
	}
	if int64(len(b)) > maxCatalogSize {
		return nil, source, fmt.Errorf("catalog response exceeds size limit of %d bytes", maxCatalogSize)
	}
	return b, source, nil
}
