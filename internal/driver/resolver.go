package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
)

const (
	maxWalkDepth   = 8
	maxWalkEntries = 20000
)

var errWalkLimit = errors.New("walk limit reached")

// DriverNotFoundError is returned when every search step failed. Trail
// lists what was tried, in order.
type DriverNotFoundError struct {
	Trail []string
}

func (e *DriverNotFoundError) Error() string {
	if len(e.Trail) == 0 {
		return "browser driver not found"
	}
	return fmt.Sprintf("browser driver not found after %d checks: %s", len(e.Trail), strings.Join(e.Trail, "; "))
}

// Provisioner downloads or locates a browser build and reports where its
// cache lives.
type Provisioner interface {
	Provision(ctx context.Context) (string, error)
	CacheRoot() string
}

// Resolver finds a browser executable. It never trusts a single answer:
// every candidate is checked before use and each miss degrades to a wider
// search.
type Resolver struct {
	provisioner Provisioner
	explicit    string
	goos        string
	wellKnown   []string
	lookPath    func(string) (string, error)
	logger      zerolog.Logger
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithExplicitPath makes path the first candidate.
func WithExplicitPath(path string) Option {
	return func(r *Resolver) { r.explicit = strings.TrimSpace(path) }
}

// WithPlatform overrides the host OS used for name and extension checks.
func WithPlatform(goos string) Option {
	return func(r *Resolver) { r.goos = goos }
}

// WithWellKnownPaths replaces the fixed installation path list.
func WithWellKnownPaths(paths []string) Option {
	return func(r *Resolver) { r.wellKnown = paths }
}

// WithLookPath replaces exec.LookPath.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(r *Resolver) { r.lookPath = fn }
}

func NewResolver(provisioner Provisioner, logger zerolog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		provisioner: provisioner,
		goos:        runtime.GOOS,
		lookPath:    exec.LookPath,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.wellKnown == nil {
		r.wellKnown = WellKnownPaths(r.goos)
	}
	return r
}

// Resolve returns the absolute path of a usable browser executable.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	var trail []string
	note := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		trail = append(trail, msg)
		r.logger.Debug().Str("step", msg).Msg("driver search")
	}

	if r.explicit != "" {
		if r.Plausible(r.explicit) {
			return r.found(r.explicit, "explicit")
		}
		note("explicit path %s rejected", r.explicit)
	}

	var candidate string
	if r.provisioner != nil {
		path, err := r.provisioner.Provision(ctx)
		switch {
		case err != nil:
			note("provisioning failed: %v", err)
		case r.Plausible(path):
			return r.found(path, "provisioned")
		default:
			note("provisioned path %s rejected", path)
			candidate = path
		}
	}

	if candidate != "" {
		if path, ok := r.searchSiblings(candidate, note); ok {
			return r.found(path, "sibling")
		}
	}

	if r.provisioner != nil {
		if root := r.provisioner.CacheRoot(); root != "" {
			if path, ok := r.walk(root, note); ok {
				return r.found(path, "cache walk")
			}
		}
	}

	for _, path := range r.wellKnown {
		if r.Plausible(path) {
			return r.found(path, "well-known")
		}
		note("well-known %s missing", path)
	}

	for _, name := range ExecutableNames(r.goos) {
		path, err := r.lookPath(name)
		if err != nil {
			note("%s not on PATH", name)
			continue
		}
		if r.Plausible(path) {
			return r.found(path, "PATH")
		}
		note("PATH entry %s rejected", path)
	}

	return "", &DriverNotFoundError{Trail: trail}
}

func (r *Resolver) found(path string, source string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	r.logger.Info().Str("path", abs).Str("source", source).Msg("browser driver resolved")
	return abs, nil
}

// Plausible reports whether path exists, is a regular file, has the host's
// executable form and is not a known non-executable artifact.
func (r *Resolver) Plausible(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	if isArtifact(filepath.Base(path)) {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if r.goos == "windows" {
		return strings.EqualFold(filepath.Ext(path), ".exe")
	}
	return info.Mode().Perm()&0o111 != 0
}

func (r *Resolver) searchSiblings(candidate string, note func(string, ...any)) (string, bool) {
	base := filepath.Dir(candidate)
	parent := filepath.Dir(base)

	dirs := []string{base}
	for _, variant := range platformDirs {
		dirs = append(dirs, filepath.Join(parent, variant), filepath.Join(base, variant))
	}

	for _, dir := range dirs {
		for _, name := range ExecutableNames(r.goos) {
			path := filepath.Join(dir, name)
			if r.Plausible(path) {
				return path, true
			}
		}
	}
	note("no executable in %s or its platform siblings", base)
	return "", false
}

func (r *Resolver) walk(root string, note func(string, ...any)) (string, bool) {
	names := map[string]struct{}{}
	for _, name := range ExecutableNames(r.goos) {
		names[filepath.Base(name)] = struct{}{}
	}

	rootDepth := strings.Count(filepath.Clean(root), string(filepath.Separator))
	entries := 0
	var found string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		entries++
		if entries > maxWalkEntries {
			return errWalkLimit
		}
		if d.IsDir() {
			if strings.Count(filepath.Clean(path), string(filepath.Separator))-rootDepth >= maxWalkDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := names[d.Name()]; !ok {
			return nil
		}
		if r.Plausible(path) {
			found = path
			return filepath.SkipAll
		}
		return nil
	})

	if found != "" {
		return found, true
	}
	if errors.Is(err, errWalkLimit) {
		note("walk of %s stopped after %d entries", root, maxWalkEntries)
	} else {
		note("walk of %s found nothing", root)
	}
	return "", false
}

func isArtifact(name string) bool {
	upper := strings.ToUpper(name)
	for _, marker := range artifactMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}
