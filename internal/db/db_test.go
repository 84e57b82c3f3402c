package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/unklstewy/arrivals-board/pkg/airports"
	"github.com/unklstewy/arrivals-board/pkg/config"
)

// TestConnectionString tests DSN construction.
func TestConnectionString(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Username: "board",
		Password: "secret",
		Database: "arrivals",
		SSLMode:  "disable",
	}

	want := "host='localhost' port=5432 user='board' password='secret' dbname='arrivals' sslmode='disable'"
	if got := ConnectionString(cfg); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	cfg.Password = `it's\`
	want = `host='localhost' port=5432 user='board' password='it\'s\\' dbname='arrivals' sslmode='disable'`
	if got := ConnectionString(cfg); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

// TestConnectUnreachable tests that a dead server fails fast with a wrapped error.
func TestConnectUnreachable(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "127.0.0.1",
		Port:     1,
		Username: "board",
		Database: "arrivals",
		SSLMode:  "disable",
	}

	db, err := Connect(context.Background(), cfg)
	if err == nil {
		db.Close()
		t.Fatal("Expected error connecting to closed port, got nil")
	}
}

// TestReconnectWithRetryGivesUp tests the retry limit.
func TestReconnectWithRetryGivesUp(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "127.0.0.1", Port: 1, SSLMode: "disable"}

	start := time.Now()
	_, err := ReconnectWithRetry(context.Background(), cfg, 2, 10*time.Millisecond, nil)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if time.Since(start) > 15*time.Second {
		t.Errorf("Expected retries to give up quickly, took %v", time.Since(start))
	}
}

// TestReconnectWithRetryCancelled tests context cancellation between attempts.
func TestReconnectWithRetryCancelled(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "127.0.0.1", Port: 1, SSLMode: "disable"}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if _, err := ReconnectWithRetry(ctx, cfg, 0, time.Hour, nil); err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestHealthCheckNil(t *testing.T) {
	if err := HealthCheck(context.Background(), nil); err == nil {
		t.Error("Expected error for nil connection")
	}
}

// TestNormalizeRecords tests code cleanup before upsert.
func TestNormalizeRecords(t *testing.T) {
	in := []airports.Record{
		{ICAO: " rjaa ", KoreanName: "나리타", EnglishName: "Narita"},
		{ICAO: "", KoreanName: "빈칸"},
		{ICAO: "RKPK", KoreanName: "김해", EnglishName: "Gimhae"},
		{ICAO: "RJAA", KoreanName: "나리타", EnglishName: "Tokyo Narita"},
	}

	got := normalizeRecords(in)
	if len(got) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(got))
	}
	if got[0].ICAO != "RJAA" || got[0].EnglishName != "Tokyo Narita" {
		t.Errorf("Expected last RJAA record first, got %+v", got[0])
	}
	if got[1].ICAO != "RKPK" {
		t.Errorf("Expected RKPK second, got %+v", got[1])
	}
}

// TestAirportRepository runs against a real database when
// ARRIVALS_BOARD_TEST_DB_HOST is set.
func TestAirportRepository(t *testing.T) {
	host := os.Getenv("ARRIVALS_BOARD_TEST_DB_HOST")
	if host == "" {
		t.Skip("ARRIVALS_BOARD_TEST_DB_HOST not set")
	}

	cfg := config.DefaultConfig().Database
	cfg.Host = host
	cfg.Password = os.Getenv("ARRIVALS_BOARD_TEST_DB_PASSWORD")

	ctx := context.Background()
	db, err := Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := HealthCheck(ctx, db); err != nil {
		t.Fatalf("Expected healthy database, got: %v", err)
	}

	repo := NewAirportRepository(db)
	n, err := repo.Upsert(ctx, []airports.Record{{ICAO: "ZZZZ", KoreanName: "시험", EnglishName: "Test"}})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 record written, got %d", n)
	}
	defer db.ExecContext(ctx, `DELETE FROM airports WHERE icao = 'ZZZZ'`)

	records, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	dir := airports.NewDirectory(records)
	if got := dir.Lookup("ZZZZ"); got.International != "Test" {
		t.Errorf("Expected Test, got %+v", got)
	}

	stats, err := db.GetStats(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if stats["airports"].(int) < 1 {
		t.Errorf("Expected at least 1 airport, got %v", stats["airports"])
	}
}
