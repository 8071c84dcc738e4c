package driver

import (
	"context"

	"github.com/go-rod/rod/lib/launcher"
)

// RodProvisioner downloads a pinned Chromium build into the rod browser
// cache, or reuses one already there.
type RodProvisioner struct {
	browser *launcher.Browser
}

func NewRodProvisioner() *RodProvisioner {
	return &RodProvisioner{browser: launcher.NewBrowser()}
}

func (p *RodProvisioner) Provision(ctx context.Context) (string, error) {
	p.browser.Context = ctx
	return p.browser.Get()
}

func (p *RodProvisioner) CacheRoot() string {
	return p.browser.RootDir
}
