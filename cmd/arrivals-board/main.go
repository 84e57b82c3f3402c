// Arrivals Board
// Shows live inbound flights for one airport from the VATSIM network feed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/unklstewy/arrivals-board/internal/board"
	"github.com/unklstewy/arrivals-board/internal/db"
	"github.com/unklstewy/arrivals-board/internal/httpapi"
	"github.com/unklstewy/arrivals-board/internal/logging"
	"github.com/unklstewy/arrivals-board/pkg/airports"
	"github.com/unklstewy/arrivals-board/pkg/arrivals"
	"github.com/unklstewy/arrivals-board/pkg/config"
	"github.com/unklstewy/arrivals-board/pkg/coordinates"
	"github.com/unklstewy/arrivals-board/pkg/vatsim"
)

var (
	// Version information (set by build flags)
	version = "dev"
	commit  = "unknown"
)

// recentLogLines is the size of the on-screen log panel backlog
const recentLogLines = 200

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	ui := flag.String("ui", "", "Board renderer: tview, tea or none (default: from config)")
	once := flag.Bool("once", false, "Fetch one cycle, print the board and exit")
	locale := flag.String("locale", "ko", "Language of the -once printout: ko or en")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("arrivals-board version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *ui != "" {
		cfg.Display.UI = *ui
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}
	}

	loc := arrivals.LocaleKorean
	switch *locale {
	case "ko":
	case "en":
		loc = arrivals.LocaleEnglish
	default:
		log.Fatalf("Unknown locale %q", *locale)
	}

	if err := run(cfg, *once, loc); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles everything the renderers need.
type app struct {
	cfg    *config.Config
	board  *board.Board
	poller *board.Poller
	loader *airports.Loader
	logger *logging.Logger

	// locale of the -once printout
	locale arrivals.Locale
}

func run(cfg *config.Config, once bool, locale arrivals.Locale) error {
	// Full-screen renderers own the terminal, so only headless runs log to stderr.
	console := once || cfg.Display.UI == "none"
	lg, err := logging.New(cfg.Logging, logging.Options{Console: console, RecentLines: recentLogLines})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer lg.Close()
	slog.SetDefault(lg.Logger)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	store, err := openAirportStore(ctx, cfg, lg.Logger)
	if err != nil {
		return err
	}
	defer store.close()

	policy, err := arrivals.NewPolicy(cfg.Policy)
	if err != nil {
		return err
	}

	client := vatsim.NewClient(vatsim.ClientConfig{
		URL:         cfg.Feed.URL,
		Timeout:     time.Duration(cfg.Feed.TimeoutSeconds) * time.Second,
		MinInterval: time.Duration(cfg.Feed.RateLimitSeconds * float64(time.Second)),
	})
	defer client.Close()

	retry := vatsim.DefaultRetryConfig()
	retry.MaxRetries = cfg.Feed.MaxRetries
	retry.Logger = lg.Logger

	a := &app{
		cfg:    cfg,
		board:  board.New(),
		loader: airports.NewLoader(store.source, lg.Logger),
		logger: lg,
		locale: locale,
	}
	a.poller = board.NewPoller(board.PollerConfig{
		Source:   client,
		Airports: a.loader,
		Pipeline: &arrivals.Pipeline{
			Destination: cfg.Destination.Code,
			Location: coordinates.Geographic{
				Latitude:  cfg.Destination.Latitude,
				Longitude: cfg.Destination.Longitude,
			},
			TimeZone: cfg.Destination.Location(),
			Policy:   policy,
			Logger:   lg.Logger,
		},
		Board:           a.board,
		Stabilizer:      board.NewStabilizer(cfg.Display.HysteresisCycles),
		Retry:           retry,
		PollInterval:    cfg.Feed.PollInterval(),
		RefreshInterval: cfg.Directory.RefreshInterval(),
		TickInterval:    cfg.Display.Tick(),
		Logger:          lg.Logger,
	})

	lg.Info("arrivals board starting",
		slog.String("version", version),
		slog.String("destination", cfg.Destination.Code),
		slog.String("policy", policy.Name),
		slog.String("ui", cfg.Display.UI),
		slog.String("directory", cfg.Directory.Source))

	if once {
		return a.printOnce(ctx, os.Stdout)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return a.poller.Run(ctx)
	})

	if cfg.Server.Enabled {
		srv := httpapi.New(httpapi.Options{
			Board:       a.board,
			Airports:    a.loader,
			Destination: cfg.Destination.Code,
			Policy:      policy.Name,
			RowsPerPage: cfg.Display.RowsPerPage,
			Health:      store.health,
			Logger:      lg.Logger,
		})
		addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
		eg.Go(func() error {
			return srv.ListenAndServe(ctx, addr)
		})
	}

	switch cfg.Display.UI {
	case "tview":
		eg.Go(func() error {
			defer cancel()
			return a.runTview(ctx)
		})
	case "tea":
		eg.Go(func() error {
			defer cancel()
			return a.runTea(ctx)
		})
	}

	err = eg.Wait()
	lg.Info("arrivals board stopped")
	return err
}

// airportStore is the configured directory source. health is only set
// for the postgres store.
type airportStore struct {
	source airports.Source
	health func(ctx context.Context) error
	close  func()
}

// openAirportStore builds the configured directory source.
func openAirportStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*airportStore, error) {
	switch cfg.Directory.Source {
	case "http":
		return &airportStore{source: airports.NewHTTPSource(cfg.Directory.URL), close: func() {}}, nil

	case "postgres":
		database, err := db.ReconnectWithRetry(ctx, cfg.Database, 5, time.Second, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.InitSchema(ctx); err != nil {
			database.Close()
			return nil, err
		}
		return &airportStore{
			source: db.NewAirportRepository(database),
			health: func(ctx context.Context) error { return db.HealthCheck(ctx, database) },
			close:  func() { database.Close() },
		}, nil

	default:
		return &airportStore{source: airports.FileSource{Path: cfg.Directory.Path}, close: func() {}}, nil
	}
}
