package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/jimezsa/leadscout/internal/browser"
	"github.com/jimezsa/leadscout/internal/models"
	"github.com/jimezsa/leadscout/internal/network"
	"github.com/rs/zerolog"
)

const (
	LoginURL = "https://www.linkedin.com/login"

	identitySelector = "#username"
	secretSelector   = "#password"
	submitSelector   = "button[type='submit']"
)

// successMarkers are URL fragments that only appear once logged in.
var successMarkers = []string{"/feed", "linkedin.com/in/"}

// checkpointMarker appears when the site challenges the login.
const checkpointMarker = "/checkpoint"

var ErrSessionBusy = errors.New("a browser session is already open")

// AuthenticationError reports a failed login. The session has been or will
// be torn down by the owner before the error reaches the caller.
type AuthenticationError struct {
	Reason string
	URL    string
	Err    error
}

func (e *AuthenticationError) Error() string {
	msg := "authentication failed: " + e.Reason
	if e.URL != "" {
		msg += " (at " + e.URL + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Delays are the fixed waits of the login protocol.
type Delays struct {
	BeforeForm  time.Duration
	FormTimeout time.Duration
	Settle      time.Duration
}

func DefaultDelays() Delays {
	return Delays{
		BeforeForm:  2 * time.Second,
		FormTimeout: 10 * time.Second,
		Settle:      5 * time.Second,
	}
}

// Session is one live browser process. Only its Manager closes it.
type Session struct {
	ID        string
	Page      browser.Page
	UserAgent string
	Proxy     string
	OpenedAt  time.Time

	proxy *url.URL
	once  sync.Once
}

// Manager opens and closes browser sessions. At most one session per
// Manager is open at a time.
type Manager struct {
	launcher browser.Launcher
	execPath string
	rotator  *network.Rotator
	delays   Delays
	logger   zerolog.Logger

	mu   sync.Mutex
	rng  *rand.Rand
	busy chan struct{}
}

type Config struct {
	Launcher browser.Launcher
	ExecPath string
	Rotator  *network.Rotator
	Delays   Delays
	Rand     *rand.Rand
	Logger   zerolog.Logger
}

func NewManager(cfg Config) *Manager {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	launcher := cfg.Launcher
	if launcher == nil {
		launcher = browser.ChromeLauncher{}
	}
	return &Manager{
		launcher: launcher,
		execPath: cfg.ExecPath,
		rotator:  cfg.Rotator,
		delays:   cfg.Delays,
		logger:   cfg.Logger,
		rng:      rng,
		busy:     make(chan struct{}, 1),
	}
}

// SetExecPath sets the browser executable used by later launches.
func (m *Manager) SetExecPath(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.execPath = path
}

// Open launches a browser and logs in. On login failure the session is
// closed before the error is returned.
func (m *Manager) Open(ctx context.Context, headless bool, creds models.Credentials) (*Session, error) {
	s, err := m.Launch(ctx, headless)
	if err != nil {
		return nil, err
	}
	if err := m.Login(ctx, s, creds); err != nil {
		_ = m.Close(s)
		return nil, err
	}
	return s, nil
}

// Launch starts a configured browser process without logging in.
func (m *Manager) Launch(ctx context.Context, headless bool) (*Session, error) {
	select {
	case m.busy <- struct{}{}:
	default:
		return nil, ErrSessionBusy
	}

	m.mu.Lock()
	opts := browser.Options{
		ExecPath:  m.execPath,
		Headless:  headless,
		UserAgent: browser.PickUserAgent(m.rng),
		Width:     browser.DefaultWidth,
		Height:    browser.DefaultHeight,
	}
	m.mu.Unlock()

	var proxy *url.URL
	if m.rotator != nil {
		if next, err := m.rotator.Next(); err == nil && next != nil {
			proxy = next
			opts.Proxy = next.String()
		}
	}

	page, err := m.launcher.Launch(ctx, opts)
	if err != nil {
		<-m.busy
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	s := &Session{
		ID:        fmt.Sprintf("%x", m.nextID()),
		Page:      page,
		UserAgent: opts.UserAgent,
		Proxy:     opts.Proxy,
		OpenedAt:  time.Now(),
		proxy:     proxy,
	}
	m.logger.Info().
		Str("session", s.ID).
		Bool("headless", headless).
		Str("user_agent", opts.UserAgent).
		Bool("proxy", opts.Proxy != "").
		Msg("browser session opened")
	return s, nil
}

// Login submits creds on the login form and checks where the browser lands.
func (m *Manager) Login(ctx context.Context, s *Session, creds models.Credentials) error {
	if s == nil {
		return &AuthenticationError{Reason: "no session"}
	}
	if !creds.Complete() {
		return &AuthenticationError{Reason: "missing credentials"}
	}

	page := s.Page
	if err := page.Navigate(ctx, LoginURL); err != nil {
		return &AuthenticationError{Reason: "login page unreachable", Err: err}
	}
	_ = browser.Pause(ctx, m.delays.BeforeForm)

	if err := page.WaitReady(ctx, identitySelector, m.delays.FormTimeout); err != nil {
		return &AuthenticationError{Reason: "login form did not render", Err: err}
	}
	if err := page.SendKeys(ctx, identitySelector, creds.Identity); err != nil {
		return &AuthenticationError{Reason: "could not type identity", Err: err}
	}
	if err := page.SendKeys(ctx, secretSelector, creds.Secret); err != nil {
		return &AuthenticationError{Reason: "could not type secret", Err: err}
	}
	if err := page.Click(ctx, submitSelector); err != nil {
		return &AuthenticationError{Reason: "could not submit login form", Err: err}
	}

	_ = browser.Pause(ctx, m.delays.Settle)

	current, err := page.URL(ctx)
	if err != nil {
		return &AuthenticationError{Reason: "could not read post-login URL", Err: err}
	}
	if !LoggedIn(current) {
		if strings.Contains(current, checkpointMarker) && s.proxy != nil {
			// A challenged proxy sits out like one answered with 429.
			m.rotator.Report(s.proxy, fhttp.StatusTooManyRequests)
			m.logger.Warn().Str("session", s.ID).Msg("login challenged, proxy benched")
		}
		return &AuthenticationError{Reason: "landing page not recognised", URL: current}
	}

	m.logger.Info().Str("session", s.ID).Msg("login verified")
	return nil
}

// Close releases the browser. It is safe on nil and on closed sessions.
func (m *Manager) Close(s *Session) error {
	if s == nil {
		return nil
	}
	var err error
	s.once.Do(func() {
		err = s.Page.Close()
		<-m.busy
		m.logger.Info().
			Str("session", s.ID).
			Dur("open_for", time.Since(s.OpenedAt)).
			Msg("browser session closed")
	})
	return err
}

func (m *Manager) nextID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Int63()
}

// LoggedIn reports whether url is a post-login landing page.
func LoggedIn(url string) bool {
	for _, marker := range successMarkers {
		if strings.Contains(url, marker) {
			return true
		}
	}
	return false
}
