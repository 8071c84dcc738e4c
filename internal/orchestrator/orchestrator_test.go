package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/jimezsa/leadscout/internal/browser"
	"github.com/jimezsa/leadscout/internal/browser/browsertest"
	"github.com/jimezsa/leadscout/internal/driver"
	"github.com/jimezsa/leadscout/internal/models"
	"github.com/jimezsa/leadscout/internal/scraper"
	"github.com/jimezsa/leadscout/internal/session"
	"github.com/rs/zerolog"
)

const loginForm = `<html><body><form>
<input id="username"><input id="password"><button type="submit">Sign in</button>
</form></body></html>`

var creds = models.Credentials{Identity: "me@example.com", Secret: "pw"}

type fakeResolver struct {
	path string
	err  error
}

func (f fakeResolver) Resolve(ctx context.Context) (string, error) {
	return f.path, f.err
}

type countingSessions struct {
	*session.Manager
	closes int
}

func (c *countingSessions) Close(s *session.Session) error {
	c.closes++
	return c.Manager.Close(s)
}

type fixedSearcher struct {
	urls []string
}

func (f fixedSearcher) Search(ctx context.Context, page browser.Page, q models.SearchQuery, limit int) []string {
	return f.urls
}

type countingExtractor struct {
	calls []string
}

func (c *countingExtractor) Extract(ctx context.Context, page browser.Page, profileURL string) models.Lead {
	c.calls = append(c.calls, profileURL)
	return models.Lead{Name: "Lead " + profileURL, Title: "", URL: profileURL}
}

type harness struct {
	page     *browsertest.Page
	launcher *browsertest.Launcher
	sessions *countingSessions
	states   []models.State
}

func newHarness(landing string, docs map[string]string) *harness {
	all := map[string]string{session.LoginURL: loginForm}
	for k, v := range docs {
		all[k] = v
	}
	page := browsertest.New(all)
	page.ClickTargets = map[string]string{"button[type='submit']": landing}
	launcher := &browsertest.Launcher{Page: page}
	manager := session.NewManager(session.Config{
		Launcher: launcher,
		Rand:     rand.New(rand.NewSource(7)),
		Logger:   zerolog.Nop(),
	})
	return &harness{page: page, launcher: launcher, sessions: &countingSessions{Manager: manager}}
}

func (h *harness) orchestrator(resolver Resolver, search Searcher, extract ProfileReader) *Orchestrator {
	return New(Config{
		Resolver:  resolver,
		Sessions:  h.sessions,
		Paginator: search,
		Extractor: extract,
		Rand:      rand.New(rand.NewSource(1)),
		Logger:    zerolog.Nop(),
		Observer: func(tr Transition) {
			h.states = append(h.states, tr.To)
		},
	})
}

func assertStates(t *testing.T, got []models.State, want ...models.State) {
	t.Helper()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("states = %v, want %v", got, want)
	}
}

func TestRunEndToEnd(t *testing.T) {
	paginator := scraper.NewPaginator(scraper.PaginatorDelays{}, zerolog.Nop())
	query := models.SearchQuery{"food business", "dubai"}
	h := newHarness("https://www.linkedin.com/feed/", map[string]string{
		paginator.PageURL(query, 0): `<html><body>
  <a href="https://www.linkedin.com/in/amal?trk=1">Amal</a>
  <div data-chameleon-result-urn="urn:1"><a href="/in/omar/">Omar</a></div>
</body></html>`,
		"https://www.linkedin.com/in/amal": `<html><body><h1>Amal Haddad</h1>
  <div class="text-body-medium break-words">Owner at Falafel House</div>
  <span class="text-body-small">Dubai, United Arab Emirates</span></body></html>`,
		"https://www.linkedin.com/in/omar/": `<html><body><h1>Omar Said</h1>
  <div class="text-body-medium break-words">Chef</div></body></html>`,
	})
	extractor := scraper.NewExtractor(scraper.ExtractorDelays{}, zerolog.Nop())
	o := h.orchestrator(fakeResolver{path: "/opt/chrome"}, paginator, extractor)

	job := NewJob(query, 10, true)
	leads, err := o.Run(context.Background(), job, creds)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(leads) != 2 {
		t.Fatalf("expected 2 leads, got %+v", leads)
	}
	if leads[0].Company != "Falafel House" || leads[0].Location != "Dubai, United Arab Emirates" {
		t.Fatalf("unexpected first lead: %+v", leads[0])
	}
	if leads[1].Name != "Omar Said" || leads[1].Company != models.Sentinel || leads[1].Location != models.Sentinel {
		t.Fatalf("unexpected second lead: %+v", leads[1])
	}
	assertStates(t, h.states, models.StateDriverReady, models.StateAuthenticated,
		models.StateSearching, models.StateExtracting, models.StateDone)
	if h.sessions.closes != 1 || h.page.Closed() != 1 {
		t.Fatalf("teardown calls = %d, page closes = %d", h.sessions.closes, h.page.Closed())
	}
	if h.launcher.Options[0].ExecPath != "/opt/chrome" {
		t.Fatalf("resolved path not used: %+v", h.launcher.Options[0])
	}
}

func TestRunTruncatesToLimit(t *testing.T) {
	var urls []string
	for i := 0; i < 12; i++ {
		urls = append(urls, fmt.Sprintf("https://www.linkedin.com/in/p%d", i))
	}
	h := newHarness("https://www.linkedin.com/feed/", nil)
	extractor := &countingExtractor{}
	o := h.orchestrator(fakeResolver{path: "/opt/chrome"}, fixedSearcher{urls: urls}, extractor)

	leads, err := o.Run(context.Background(), NewJob([]string{"cto"}, 5, true), creds)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(leads) != 5 || len(extractor.calls) != 5 {
		t.Fatalf("expected 5 leads and 5 extractions, got %d and %d", len(leads), len(extractor.calls))
	}
	for _, lead := range leads {
		if lead.Title != models.Sentinel {
			t.Fatalf("blank field not normalised: %+v", lead)
		}
	}
	if h.states[len(h.states)-1] != models.StateDone || h.sessions.closes != 1 {
		t.Fatalf("states = %v, closes = %d", h.states, h.sessions.closes)
	}
}

// cancellingExtractor cancels the caller's context while the first profile
// is being read, so the next jitter pause starts on a cancelled context.
type cancellingExtractor struct {
	countingExtractor
	cancel  context.CancelFunc
	ctxErrs []error
}

func (c *cancellingExtractor) Extract(ctx context.Context, page browser.Page, profileURL string) models.Lead {
	c.cancel()
	c.ctxErrs = append(c.ctxErrs, ctx.Err())
	return c.countingExtractor.Extract(ctx, page, profileURL)
}

func TestRunExtractionIgnoresCallerCancellation(t *testing.T) {
	urls := []string{
		"https://www.linkedin.com/in/a",
		"https://www.linkedin.com/in/b",
		"https://www.linkedin.com/in/c",
	}
	h := newHarness("https://www.linkedin.com/feed/", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	extractor := &cancellingExtractor{cancel: cancel}

	o := New(Config{
		Resolver:  fakeResolver{path: "/opt/chrome"},
		Sessions:  h.sessions,
		Paginator: fixedSearcher{urls: urls},
		Extractor: extractor,
		JitterMin: time.Millisecond,
		JitterMax: 5 * time.Millisecond,
		Rand:      rand.New(rand.NewSource(1)),
		Logger:    zerolog.Nop(),
		Observer: func(tr Transition) {
			h.states = append(h.states, tr.To)
		},
	})

	leads, err := o.Run(ctx, NewJob([]string{"cto"}, 3, true), creds)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(leads) != 3 || len(extractor.calls) != 3 {
		t.Fatalf("expected 3 leads and 3 extractions, got %d and %d", len(leads), len(extractor.calls))
	}
	for i, ctxErr := range extractor.ctxErrs {
		if ctxErr != nil {
			t.Fatalf("extraction %d saw cancelled context: %v", i, ctxErr)
		}
	}
	assertStates(t, h.states, models.StateDriverReady, models.StateAuthenticated,
		models.StateSearching, models.StateExtracting, models.StateDone)
	if h.sessions.closes != 1 || h.page.Closed() != 1 {
		t.Fatalf("teardown calls = %d, page closes = %d", h.sessions.closes, h.page.Closed())
	}
}

func TestRunAuthenticationFailure(t *testing.T) {
	h := newHarness("https://www.linkedin.com/checkpoint/challenge", nil)
	extractor := &countingExtractor{}
	o := h.orchestrator(fakeResolver{path: "/opt/chrome"}, fixedSearcher{urls: []string{"x"}}, extractor)

	leads, err := o.Run(context.Background(), NewJob([]string{"cto"}, 5, true), creds)
	var authErr *session.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("Run() error = %v, want AuthenticationError", err)
	}
	if leads != nil || len(extractor.calls) != 0 {
		t.Fatalf("expected no work after failed login")
	}
	assertStates(t, h.states, models.StateDriverReady, models.StateFailed)
	if h.sessions.closes != 1 || h.page.Closed() != 1 {
		t.Fatalf("teardown calls = %d, page closes = %d", h.sessions.closes, h.page.Closed())
	}
}

func TestRunDriverNotFound(t *testing.T) {
	h := newHarness("https://www.linkedin.com/feed/", nil)
	notFound := &driver.DriverNotFoundError{Trail: []string{"chrome not on PATH"}}
	o := h.orchestrator(fakeResolver{err: notFound}, fixedSearcher{}, &countingExtractor{})

	_, err := o.Run(context.Background(), NewJob([]string{"cto"}, 5, true), creds)
	var target *driver.DriverNotFoundError
	if !errors.As(err, &target) {
		t.Fatalf("Run() error = %v, want DriverNotFoundError", err)
	}
	assertStates(t, h.states, models.StateFailed)
	if h.sessions.closes != 1 {
		t.Fatalf("teardown calls = %d, want 1", h.sessions.closes)
	}
	if len(h.launcher.Options) != 0 {
		t.Fatalf("browser launched despite missing driver")
	}
}

func TestRunLaunchFailureIsAuthenticationError(t *testing.T) {
	h := newHarness("https://www.linkedin.com/feed/", nil)
	h.launcher.Err = errors.New("chrome crashed")
	o := h.orchestrator(fakeResolver{path: "/opt/chrome"}, fixedSearcher{}, &countingExtractor{})

	_, err := o.Run(context.Background(), NewJob([]string{"cto"}, 5, true), creds)
	var authErr *session.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("Run() error = %v, want AuthenticationError", err)
	}
	assertStates(t, h.states, models.StateDriverReady, models.StateFailed)
	if h.sessions.closes != 1 {
		t.Fatalf("teardown calls = %d, want 1", h.sessions.closes)
	}
}

func TestRunEmptySearchIsDone(t *testing.T) {
	h := newHarness("https://www.linkedin.com/feed/", nil)
	extractor := &countingExtractor{}
	o := h.orchestrator(fakeResolver{path: "/opt/chrome"}, fixedSearcher{}, extractor)

	leads, err := o.Run(context.Background(), NewJob([]string{"nobody"}, 5, true), creds)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if leads == nil || len(leads) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", leads)
	}
	assertStates(t, h.states, models.StateDriverReady, models.StateAuthenticated,
		models.StateSearching, models.StateDone)
	if h.sessions.closes != 1 || h.page.Closed() != 1 {
		t.Fatalf("teardown calls = %d, page closes = %d", h.sessions.closes, h.page.Closed())
	}
}

func TestRunInvalidJobFails(t *testing.T) {
	h := newHarness("https://www.linkedin.com/feed/", nil)
	o := h.orchestrator(fakeResolver{path: "/opt/chrome"}, fixedSearcher{}, &countingExtractor{})

	if _, err := o.Run(context.Background(), NewJob([]string{"cto"}, 0, true), creds); err == nil {
		t.Fatalf("expected error for zero limit")
	}
	assertStates(t, h.states, models.StateFailed)
	if h.sessions.closes != 1 {
		t.Fatalf("teardown calls = %d, want 1", h.sessions.closes)
	}
}

func TestRunUsesConfiguredCredentials(t *testing.T) {
	h := newHarness("https://www.linkedin.com/feed/", nil)
	o := New(Config{
		Resolver:    fakeResolver{path: "/opt/chrome"},
		Sessions:    h.sessions,
		Paginator:   fixedSearcher{},
		Extractor:   &countingExtractor{},
		Credentials: creds,
		Logger:      zerolog.Nop(),
	})

	if _, err := o.Run(context.Background(), NewJob([]string{"cto"}, 1, true), models.Credentials{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if h.page.Typed["#username"] != creds.Identity {
		t.Fatalf("configured identity not used: %v", h.page.Typed)
	}
}

func TestJitterBounds(t *testing.T) {
	o := New(Config{
		JitterMin: 2 * time.Second,
		JitterMax: 4 * time.Second,
		Rand:      rand.New(rand.NewSource(3)),
		Logger:    zerolog.Nop(),
	})
	for i := 0; i < 500; i++ {
		d := o.jitter()
		if d < 2*time.Second || d > 4*time.Second {
			t.Fatalf("jitter %v outside [2s, 4s]", d)
		}
	}

	if d := New(Config{Logger: zerolog.Nop()}).jitter(); d != 0 {
		t.Fatalf("expected zero jitter without bounds, got %v", d)
	}
}

func TestNewJobAssignsUniqueIDs(t *testing.T) {
	a := NewJob([]string{"x"}, 1, true)
	b := NewJob([]string{"x"}, 1, true)
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct ids, got %q and %q", a.ID, b.ID)
	}
}
