package network

import (
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"sync"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	fhttpcookiejar "github.com/bogdanfinn/fhttp/cookiejar"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/jimezsa/leadscout/internal/browser"
)

var ErrRequestFailed = errors.New("request failed")

const DefaultTimeoutSeconds = 30

// Doer is the subset of Client used by API callers.
type Doer interface {
	Do(req *fhttp.Request) (*fhttp.Response, error)
}

// Client sends requests with a browser TLS fingerprint, rotating the user
// agent and, when a Rotator is set, the outbound proxy.
type Client struct {
	http       tls_client.HttpClient
	rotator    *Rotator
	userAgents []string

	mu   sync.Mutex
	rand *rand.Rand
}

func NewClient(rotator *Rotator) (*Client, error) {
	return NewClientWithTimeout(rotator, DefaultTimeoutSeconds)
}

func NewClientWithTimeout(rotator *Rotator, seconds int) (*Client, error) {
	jar, _ := fhttpcookiejar.New(nil)

	client, err := tls_client.NewHttpClient(
		tls_client.NewNoopLogger(),
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithTimeoutSeconds(seconds),
		tls_client.WithCookieJar(jar),
	)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:       client,
		rotator:    rotator,
		userAgents: browser.UserAgents(),
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Do sends req. With a Rotator configured it never falls back to a direct
// connection: when every proxy is benched the request fails.
func (c *Client) Do(req *fhttp.Request) (*fhttp.Response, error) {
	proxy, err := c.rotateProxy()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.randomUA())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if proxy != nil {
		c.rotator.Report(proxy, resp.StatusCode)
	}
	return resp, nil
}

func (c *Client) rotateProxy() (*url.URL, error) {
	if c.rotator == nil {
		return nil, nil
	}
	proxy, err := c.rotator.Next()
	if err != nil {
		return nil, err
	}

	if proxy != nil {
		_ = c.http.SetProxy(proxy.String())
	}
	return proxy, nil
}

func (c *Client) randomUA() string {
	if len(c.userAgents) == 0 {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userAgents[c.rand.Intn(len(c.userAgents))]
}
