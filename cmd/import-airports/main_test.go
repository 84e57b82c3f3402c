package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/unklstewy/arrivals-board/pkg/airports"
	"github.com/unklstewy/arrivals-board/pkg/config"
)

type stubSource struct {
	records []airports.Record
	err     error
}

func (s stubSource) Load(ctx context.Context) ([]airports.Record, error) {
	return s.records, s.err
}

func TestRunDryRun(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	src := stubSource{records: []airports.Record{{ICAO: "RJAA", KoreanName: "나리타", EnglishName: "Narita"}}}

	if err := run(context.Background(), config.DefaultConfig(), src, true, logger); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
}

func TestRunSourceError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sentinel := errors.New("no such file")

	err := run(context.Background(), config.DefaultConfig(), stubSource{err: sentinel}, true, logger)
	if !errors.Is(err, sentinel) {
		t.Errorf("Expected wrapped source error, got: %v", err)
	}
}
