// Package bootstrap turns a "path#name" configuration URI into the live
// objects an interactive session works with.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ZebulonRouseFrantzich/appshell/internal/config"
	"github.com/ZebulonRouseFrantzich/appshell/internal/env"
	"github.com/ZebulonRouseFrantzich/appshell/internal/logging"
	"github.com/ZebulonRouseFrantzich/appshell/internal/webapp"
)

// DefaultAppName is used when the URI has no "#name" part.
const DefaultAppName = "main"

// DefaultBaseURL is the URL of the request object handed to the shell.
const DefaultBaseURL = "http://localhost/"

// ErrEmptyURI is returned by ParseURI for an empty URI or an empty path.
var ErrEmptyURI = errors.New("configuration URI has no file path")

// ParseURI splits uri at the first '#' into a file path and application
// name. The name defaults to DefaultAppName.
func ParseURI(uri string) (path, name string, err error) {
	path, name, _ = strings.Cut(uri, "#")
	if strings.TrimSpace(path) == "" {
		return "", "", ErrEmptyURI
	}
	if name == "" {
		name = DefaultAppName
	}
	return path, name, nil
}

// Result holds the objects produced by Bootstrap.
type Result struct {
	App         *webapp.App
	Root        *webapp.Root
	Registry    *webapp.Registry
	Request     *http.Request
	RootFactory webapp.RootFactory
}

// Seed returns the result as the initial environment values.
func (r *Result) Seed() env.Seed {
	return env.Seed{
		App:         r.App,
		Root:        r.Root,
		Registry:    r.Registry,
		Request:     r.Request,
		RootFactory: r.RootFactory,
	}
}

// Loader bootstraps applications from configuration files.
type Loader struct {
	configs *config.Loader
	baseURL string
	logger  logging.Logger
}

// NewLoader creates a bootstrap loader reading files through configs.
func NewLoader(configs *config.Loader, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Loader{configs: configs, baseURL: DefaultBaseURL, logger: logger}
}

// WithBaseURL sets the URL of the bootstrapped request.
func (l *Loader) WithBaseURL(u string) *Loader {
	l.baseURL = u
	return l
}

// Bootstrap loads the application named by uri. The returned closer cancels
// the request context and releases the configuration's Lua state; it is
// non-nil whenever err is nil and is safe to call more than once.
func (l *Loader) Bootstrap(ctx context.Context, uri string) (*Result, func(), error) {
	path, name, err := ParseURI(uri)
	if err != nil {
		return nil, nil, err
	}

	f, err := l.configs.Load(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	app, err := f.App(name)
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	reg := webapp.NewRegistry(app)
	rf := webapp.NewRootFactory(app.Root)
	wa, err := webapp.New(reg, rf)
	if err != nil {
		f.Close()
		return nil, nil, &config.ValidationError{Field: "apps." + name + ".routes", Message: err.Error()}
	}

	reqCtx, cancel := context.WithCancel(ctx)
	closer := func() {
		cancel()
		f.Close()
	}

	req, err := webapp.NewRequest(reqCtx, l.baseURL)
	if err != nil {
		closer()
		return nil, nil, fmt.Errorf("bootstrap %s: %w", uri, err)
	}

	res := &Result{
		App:         wa,
		Root:        rf(req),
		Registry:    reg,
		Request:     req,
		RootFactory: rf,
	}

	l.logger.Debug("application bootstrapped", "uri", uri, "app", name, "routes", len(app.Routes))
	return res, closer, nil
}
