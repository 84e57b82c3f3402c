package board

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/unklstewy/arrivals-board/pkg/airports"
	"github.com/unklstewy/arrivals-board/pkg/arrivals"
	"github.com/unklstewy/arrivals-board/pkg/vatsim"
)

// PollerConfig wires a Poller to its collaborators.
type PollerConfig struct {
	Source   vatsim.DataSource
	Airports *airports.Loader
	Pipeline *arrivals.Pipeline
	Board    *Board

	// Stabilizer is optional
	Stabilizer *Stabilizer

	// Retry applies to both feed fetches and directory refreshes
	Retry vatsim.RetryConfig

	PollInterval    time.Duration
	RefreshInterval time.Duration
	TickInterval    time.Duration

	Logger *slog.Logger

	// Now defaults to time.Now
	Now func() time.Time
}

// Poller runs the three periodic board activities: feed polling, airport
// directory refresh and the display tick. A failed cycle is logged and
// leaves the previous frame in place.
type Poller struct {
	cfg     PollerConfig
	logger  *slog.Logger
	refresh chan struct{}
}

func NewPoller(cfg PollerConfig) *Poller {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "poller")),
		refresh: make(chan struct{}, 1),
	}
}

// Refresh asks the feed loop to poll now instead of waiting for its ticker.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Run loads the airport directory once, then runs all loops until ctx is
// cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.RefreshDirectory(ctx)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		p.Poll(ctx)
		return p.loop(ctx, p.cfg.PollInterval, p.refresh, func() { p.Poll(ctx) })
	})
	eg.Go(func() error {
		return p.loop(ctx, p.cfg.RefreshInterval, nil, func() { p.RefreshDirectory(ctx) })
	})
	eg.Go(func() error {
		return p.loop(ctx, p.cfg.TickInterval, nil, func() { p.cfg.Board.Advance() })
	})
	return eg.Wait()
}

func (p *Poller) loop(ctx context.Context, interval time.Duration, kick <-chan struct{}, fn func()) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fn()
		case <-kick:
			fn()
			ticker.Reset(interval)
		}
	}
}

// Poll runs one feed cycle and publishes the resulting frame.
func (p *Poller) Poll(ctx context.Context) error {
	snap, err := vatsim.RetryWithBackoffResult(ctx, p.cfg.Retry, func() (*vatsim.Snapshot, error) {
		return p.cfg.Source.Fetch(ctx)
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err = fmt.Errorf("feed poll: %w", err)
		p.logger.Error("poll cycle failed, keeping previous board", slog.Any("err", err))
		p.cfg.Board.Fail(err)
		return err
	}

	var dir *airports.Directory
	if p.cfg.Airports != nil {
		dir = p.cfg.Airports.Directory()
	}

	now := p.cfg.Now()
	rows := p.cfg.Pipeline.Build(snap.Pilots, dir, now)
	rows = p.cfg.Stabilizer.Apply(rows)

	f := p.cfg.Board.Publish(rows, now, snap.UpdatedAt)
	p.logger.Debug("board updated",
		slog.Uint64("cycle", f.Cycle),
		slog.Int("pilots", len(snap.Pilots)),
		slog.Int("rows", len(rows)))
	return nil
}

// RefreshDirectory reloads the airport directory, keeping the old one on failure.
func (p *Poller) RefreshDirectory(ctx context.Context) error {
	if p.cfg.Airports == nil {
		return nil
	}
	return vatsim.RetryWithBackoff(ctx, p.cfg.Retry, func() error {
		return p.cfg.Airports.Refresh(ctx)
	})
}
