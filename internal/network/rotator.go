package network

import (
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
)

var ErrNoProxies = errors.New("no proxies available")

// Rotator hands out proxies round-robin and benches the ones that were
// answered with 403 or 429 for banDuration.
type Rotator struct {
	proxies     []*url.URL
	banDuration time.Duration
	bannedUntil map[string]time.Time
	index       int
	now         func() time.Time
	mu          sync.Mutex
}

func NewRotator(raw []string, banDuration time.Duration) (*Rotator, error) {
	rotator := &Rotator{
		banDuration: banDuration,
		bannedUntil: map[string]time.Time{},
		now:         time.Now,
	}

	for _, proxy := range raw {
		proxy = strings.TrimSpace(proxy)
		if proxy == "" {
			continue
		}
		u, err := url.Parse(proxy)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, errors.New("proxy must be scheme://host:port: " + proxy)
		}
		rotator.proxies = append(rotator.proxies, u)
	}

	return rotator, nil
}

// Len returns the number of configured proxies.
func (r *Rotator) Len() int {
	if r == nil {
		return 0
	}
	return len(r.proxies)
}

// Next returns the next proxy that is not benched. A nil Rotator has no
// proxies.
func (r *Rotator) Next() (*url.URL, error) {
	if r == nil {
		return nil, ErrNoProxies
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for tried := 0; tried < len(r.proxies); tried++ {
		proxy := r.proxies[r.index]
		r.index = (r.index + 1) % len(r.proxies)
		if !r.isBanned(proxy) {
			return proxy, nil
		}
	}
	return nil, ErrNoProxies
}

func (r *Rotator) Report(proxy *url.URL, status int) {
	if r == nil || proxy == nil || !blocked(status) {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.bannedUntil[proxy.String()] = r.now().Add(r.banDuration)
}

func blocked(status int) bool {
	return status == fhttp.StatusForbidden || status == fhttp.StatusTooManyRequests
}

func (r *Rotator) isBanned(proxy *url.URL) bool {
	until, ok := r.bannedUntil[proxy.String()]
	if !ok {
		return false
	}
	if r.now().After(until) {
		delete(r.bannedUntil, proxy.String())
		return false
	}
	return true
}
