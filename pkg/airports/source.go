package airports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"
)

// FileSource reads the reference table from a local JSON array.
type FileSource struct {
	Path string
}

// Load reads and parses the JSON file.
func (s FileSource) Load(ctx context.Context) ([]Record, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read airport file: %w", err)
	}
	return decodeRecords(data)
}

// HTTPSource fetches the reference table from a JSON endpoint.
type HTTPSource struct {
	URL        string
	HTTPClient *http.Client
}

// NewHTTPSource creates an HTTP source with a 10 second timeout.
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		URL:        url,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Load performs a GET and parses the JSON body.
func (s *HTTPSource) Load(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build airport request: %w", err)
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch airport data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("airport source returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read airport data: %w", err)
	}
	return decodeRecords(data)
}

func decodeRecords(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse airport data: %w", err)
	}
	return records, nil
}

// Loader keeps the current directory and refreshes it from a Source.
// The zero directory is empty, so lookups fall back to bare codes until the
// first successful load.
type Loader struct {
	source  Source
	logger  *slog.Logger
	current atomic.Pointer[Directory]
}

// NewLoader creates a loader with an empty directory.
func NewLoader(source Source, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{source: source, logger: logger}
	l.current.Store(NewDirectory(nil))
	return l
}

// Directory returns the most recently loaded directory.
func (l *Loader) Directory() *Directory {
	return l.current.Load()
}

// Refresh reloads the directory.
// On failure the previous directory stays in place and the error is logged
// and returned for callers that want to count it.
func (l *Loader) Refresh(ctx context.Context) error {
	records, err := l.source.Load(ctx)
	if err != nil {
		l.logger.Error("airport directory refresh failed",
			slog.Any("err", err),
			slog.Int("kept", l.Directory().Len()))
		return err
	}

	dir := NewDirectory(records)
	l.current.Store(dir)
	l.logger.Info("airport directory refreshed", slog.Int("airports", dir.Len()))
	return nil
}
