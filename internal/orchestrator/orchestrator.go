// Package orchestrator runs scrape jobs end to end: resolve the browser,
// log in, search, extract each profile, and always tear the session down.
package orchestrator

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jimezsa/leadscout/internal/browser"
	"github.com/jimezsa/leadscout/internal/models"
	"github.com/jimezsa/leadscout/internal/session"
	"github.com/rs/zerolog"
)

type Resolver interface {
	Resolve(ctx context.Context) (string, error)
}

type Sessions interface {
	SetExecPath(path string)
	Launch(ctx context.Context, headless bool) (*session.Session, error)
	Login(ctx context.Context, s *session.Session, creds models.Credentials) error
	Close(s *session.Session) error
}

type Searcher interface {
	Search(ctx context.Context, page browser.Page, query models.SearchQuery, limit int) []string
}

type ProfileReader interface {
	Extract(ctx context.Context, page browser.Page, profileURL string) models.Lead
}

// Transition is reported to the observer on every state change.
type Transition struct {
	JobID string
	From  models.State
	To    models.State
	Err   error
	At    time.Time
}

type Config struct {
	Resolver    Resolver
	Sessions    Sessions
	Paginator   Searcher
	Extractor   ProfileReader
	Credentials models.Credentials
	JitterMin   time.Duration
	JitterMax   time.Duration
	Rand        *rand.Rand
	Logger      zerolog.Logger
	Observer    func(Transition)
}

type Orchestrator struct {
	resolver  Resolver
	sessions  Sessions
	paginator Searcher
	extractor ProfileReader
	creds     models.Credentials
	jitterMin time.Duration
	jitterMax time.Duration
	logger    zerolog.Logger
	observer  func(Transition)

	mu  sync.Mutex
	rng *rand.Rand
}

func New(cfg Config) *Orchestrator {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Orchestrator{
		resolver:  cfg.Resolver,
		sessions:  cfg.Sessions,
		paginator: cfg.Paginator,
		extractor: cfg.Extractor,
		creds:     cfg.Credentials,
		jitterMin: cfg.JitterMin,
		jitterMax: cfg.JitterMax,
		logger:    cfg.Logger,
		observer:  cfg.Observer,
		rng:       rng,
	}
}

// NewJob builds a job with a fresh ID.
func NewJob(keywords []string, limit int, headless bool) models.ScrapeJob {
	return models.ScrapeJob{
		ID:        uuid.NewString(),
		Keywords:  models.SearchQuery(keywords),
		Limit:     limit,
		Headless:  headless,
		CreatedAt: time.Now(),
	}
}

// run holds the state of one job while it executes.
type run struct {
	o     *Orchestrator
	job   models.ScrapeJob
	state models.State
	log   zerolog.Logger
}

func (r *run) to(next models.State, err error) {
	prev := r.state
	r.state = next

	ev := r.log.Info()
	if next == models.StateFailed {
		ev = r.log.Error().Err(err)
	}
	ev.Str("from", string(prev)).Str("state", string(next)).Msg("job state changed")

	if r.o.observer != nil {
		r.o.observer(Transition{JobID: r.job.ID, From: prev, To: next, Err: err, At: time.Now()})
	}
}

func (r *run) fail(err error) ([]models.Lead, error) {
	r.to(models.StateFailed, err)
	return nil, err
}

// Run executes job with creds, falling back to the configured credentials
// for missing parts. The browser session is closed exactly once before Run
// returns, whatever the outcome. The result never holds more than
// job.Limit records.
func (o *Orchestrator) Run(ctx context.Context, job models.ScrapeJob, creds models.Credentials) ([]models.Lead, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	r := &run{
		o:     o,
		job:   job,
		state: models.StateInit,
		log:   o.logger.With().Str("job_id", job.ID).Logger(),
	}
	r.log.Info().
		Str("keywords", job.Keywords.String()).
		Int("limit", job.Limit).
		Bool("headless", job.Headless).
		Msg("job started")

	var sess *session.Session
	defer func() {
		if err := o.sessions.Close(sess); err != nil {
			r.log.Warn().Err(err).Msg("session close failed")
		}
	}()

	if err := job.Validate(); err != nil {
		return r.fail(err)
	}

	path, err := o.resolver.Resolve(ctx)
	if err != nil {
		return r.fail(err)
	}
	o.sessions.SetExecPath(path)
	r.to(models.StateDriverReady, nil)

	sess, err = o.sessions.Launch(ctx, job.Headless)
	if err != nil {
		return r.fail(&session.AuthenticationError{Reason: "browser launch failed", Err: err})
	}
	if err := o.sessions.Login(ctx, sess, creds.Or(o.creds)); err != nil {
		var authErr *session.AuthenticationError
		if !errors.As(err, &authErr) {
			err = &session.AuthenticationError{Reason: "login failed", Err: err}
		}
		return r.fail(err)
	}
	r.to(models.StateAuthenticated, nil)

	r.to(models.StateSearching, nil)
	urls := o.paginator.Search(ctx, sess.Page, job.Keywords, job.Limit)
	if len(urls) > job.Limit {
		urls = urls[:job.Limit]
	}
	if len(urls) == 0 {
		r.log.Info().Msg("search returned no profiles")
		r.to(models.StateDone, nil)
		return []models.Lead{}, nil
	}

	// Once extraction starts the batch runs to the end; cancelling ctx no
	// longer interrupts it.
	r.to(models.StateExtracting, nil)
	extractCtx := context.WithoutCancel(ctx)
	leads := make([]models.Lead, 0, len(urls))
	for i, profileURL := range urls {
		if i > 0 {
			_ = browser.Pause(extractCtx, o.jitter())
		}
		lead := o.extractor.Extract(extractCtx, sess.Page, profileURL).Normalized()
		leads = append(leads, lead)
		r.log.Info().
			Int("index", i+1).
			Int("total", len(urls)).
			Str("profile", profileURL).
			Msg("profile extracted")
	}

	r.to(models.StateDone, nil)
	return leads, nil
}

// jitter returns a uniform delay in [jitterMin, jitterMax].
func (o *Orchestrator) jitter() time.Duration {
	lo, hi := o.jitterMin, o.jitterMax
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi <= 0 {
		return 0
	}
	if hi == lo {
		return lo
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return lo + time.Duration(o.rng.Int63n(int64(hi-lo)+1))
}
