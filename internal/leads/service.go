// Package leads exposes the scrape and export operations for one process.
package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/jimezsa/leadscout/internal/browser"
	"github.com/jimezsa/leadscout/internal/config"
	"github.com/jimezsa/leadscout/internal/driver"
	"github.com/jimezsa/leadscout/internal/export"
	"github.com/jimezsa/leadscout/internal/models"
	"github.com/jimezsa/leadscout/internal/network"
	"github.com/jimezsa/leadscout/internal/orchestrator"
	"github.com/jimezsa/leadscout/internal/scraper"
	"github.com/jimezsa/leadscout/internal/session"
	"github.com/rs/zerolog"
)

// Timing groups the fixed waits of every stage.
type Timing struct {
	Session   session.Delays
	Paginator scraper.PaginatorDelays
	Extractor scraper.ExtractorDelays
}

func DefaultTiming() Timing {
	return Timing{
		Session:   session.DefaultDelays(),
		Paginator: scraper.DefaultPaginatorDelays(),
		Extractor: scraper.DefaultExtractorDelays(),
	}
}

type Options struct {
	Config      config.Config
	Credentials models.Credentials
	Rotator     *network.Rotator
	Logger      zerolog.Logger
	Observer    func(orchestrator.Transition)

	// Resolver and Launcher default to the rod provisioner and chromedp.
	Resolver orchestrator.Resolver
	Launcher browser.Launcher
	Timing   *Timing
	Now      func() time.Time
}

// Service runs scrape jobs one at a time and writes exports.
type Service struct {
	exportDir string
	worker    *orchestrator.Worker
	logger    zerolog.Logger
	now       func() time.Time
}

func New(opts Options) *Service {
	cfg := opts.Config
	logger := opts.Logger

	timing := DefaultTiming()
	if opts.Timing != nil {
		timing = *opts.Timing
	}

	resolver := opts.Resolver
	if resolver == nil {
		resolver = driver.NewResolver(
			driver.NewRodProvisioner(),
			logger.With().Str("component", "driver").Logger(),
			driver.WithExplicitPath(cfg.BrowserPath),
		)
	}

	sessions := session.NewManager(session.Config{
		Launcher: opts.Launcher,
		Rotator:  opts.Rotator,
		Delays:   timing.Session,
		Logger:   logger.With().Str("component", "session").Logger(),
	})

	jitterMin, jitterMax := cfg.JitterRange()
	orch := orchestrator.New(orchestrator.Config{
		Resolver:    resolver,
		Sessions:    sessions,
		Paginator:   scraper.NewPaginator(timing.Paginator, logger.With().Str("component", "paginator").Logger()),
		Extractor:   scraper.NewExtractor(timing.Extractor, logger.With().Str("component", "extractor").Logger()),
		Credentials: opts.Credentials,
		JitterMin:   jitterMin,
		JitterMax:   jitterMax,
		Logger:      logger,
		Observer:    opts.Observer,
	})

	worker := orchestrator.NewWorker(orch, logger)
	worker.Start()

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		exportDir: cfg.ExportDir,
		worker:    worker,
		logger:    logger,
		now:       now,
	}
}

// Scrape runs a full job with the configured credentials and blocks until
// it finishes.
func (s *Service) Scrape(ctx context.Context, keywords []string, limit int, headless bool) ([]models.Lead, error) {
	return s.ScrapeAs(ctx, keywords, limit, headless, models.Credentials{})
}

// ScrapeAs is Scrape with caller-supplied credentials. Missing parts fall
// back to the configured ones.
func (s *Service) ScrapeAs(ctx context.Context, keywords []string, limit int, headless bool, creds models.Credentials) ([]models.Lead, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero, got %d", limit)
	}
	job := orchestrator.NewJob(keywords, limit, headless)
	return s.worker.Submit(ctx, job, creds)
}

// Export writes records as leads_<timestamp>.csv into the export directory
// and returns the file path.
func (s *Service) Export(records []models.Lead) (string, error) {
	path, err := export.WriteCSVFile(s.exportDir, records, s.now())
	if err != nil {
		return "", fmt.Errorf("export leads: %w", err)
	}
	s.logger.Info().Str("path", path).Int("records", len(records)).Msg("leads exported")
	return path, nil
}

// Close stops the worker after any running job.
func (s *Service) Close() {
	s.worker.Stop()
}
