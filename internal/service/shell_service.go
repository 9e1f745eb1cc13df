package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZebulonRouseFrantzich/appshell/internal/bootstrap"
	"github.com/ZebulonRouseFrantzich/appshell/internal/config"
	"github.com/ZebulonRouseFrantzich/appshell/internal/env"
	"github.com/ZebulonRouseFrantzich/appshell/internal/logging"
	"github.com/ZebulonRouseFrantzich/appshell/internal/shell"
)

// SectionReader reads a named section from a configuration file.
type SectionReader interface {
	ReadSection(ctx context.Context, path, name string) (*config.Section, error)
}

// Bootstrapper loads an application from a "path#name" URI. The closer is
// non-nil whenever the error is nil.
type Bootstrapper interface {
	Bootstrap(ctx context.Context, uri string) (*bootstrap.Result, func(), error)
}

// StartupRunner runs a startup script into an environment.
type StartupRunner interface {
	Run(ctx context.Context, e *env.Env) (func(), error)
}

// ShellService orchestrates an interactive session: it reads the
// configuration section, bootstraps the application, assembles the
// environment, picks a shell and runs it.
type ShellService struct {
	sections SectionReader
	boot     Bootstrapper
	selector *shell.Selector
	startup  StartupRunner
	out      func(string)
	logger   logging.Logger
	clock    Clock
}

// NewShellService creates a shell service. out receives user-facing
// diagnostics; startup may be nil.
func NewShellService(
	sections SectionReader,
	boot Bootstrapper,
	selector *shell.Selector,
	startup StartupRunner,
	out func(string),
	logger logging.Logger,
) *ShellService {
	if out == nil {
		out = func(string) {}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &ShellService{
		sections: sections,
		boot:     boot,
		selector: selector,
		startup:  startup,
		out:      out,
		logger:   logger,
		clock:    RealClock{},
	}
}

// WithClock replaces the clock used to time sessions.
func (s *ShellService) WithClock(c Clock) *ShellService {
	s.clock = c
	return s
}

// Request contains the parameters of one session.
type Request struct {
	// ConfigURI is "path#name"; the name defaults to "main".
	ConfigURI string
	// Shell is the preferred shell name. Empty picks the best available.
	Shell string
	// SetupExpr is a Lua expression, evaluated in the configuration file,
	// naming the setup function to use instead of the section's `setup`.
	SetupExpr string
	// Setup overrides both SetupExpr and the section's `setup`.
	Setup env.SetupFunc
	// Launcher bypasses shell selection.
	Launcher shell.Shell
}

// Run executes a session and returns the exit status. A non-nil error is
// always accompanied by a non-zero status.
func (s *ShellService) Run(ctx context.Context, req Request) (int, error) {
	path, name, err := bootstrap.ParseURI(req.ConfigURI)
	if err != nil {
		return s.configError(req.ConfigURI, err)
	}

	section, err := s.sections.ReadSection(ctx, path, config.SectionName)
	if err != nil {
		return s.configError(req.ConfigURI, err)
	}
	defer section.Close()

	res, closer, err := s.boot.Bootstrap(ctx, req.ConfigURI)
	if err != nil {
		return s.configError(req.ConfigURI, err)
	}
	defer closer()
	s.logger.Debug("bootstrapped", "uri", req.ConfigURI, "app", name)

	override, err := s.override(req, section)
	if err != nil {
		return s.configError(req.ConfigURI, err)
	}

	e, err := env.Assemble(res.Seed(), section.Items, override)
	if err != nil {
		return StatusFailure, err
	}

	help := BuildHelp(section.Items)

	sh := req.Launcher
	if sh == nil {
		sh, err = s.selector.Select(req.Shell)
		if err != nil {
			var nf *shell.NotFoundError
			if errors.As(err, &nf) {
				s.out(nf.Error())
				return StatusShellNotFound, err
			}
			return StatusFailure, err
		}
	}

	if s.startup != nil {
		release, err := s.startup.Run(ctx, e)
		if release != nil {
			defer release()
		}
		if err != nil {
			return StatusFailure, fmt.Errorf("startup script: %w", err)
		}
	}

	start := s.clock.Now()
	s.logger.Debug("starting shell", "shell", fmt.Sprintf("%T", sh), "variables", e.Keys())
	err = sh.Run(ctx, e, help)
	s.logger.Debug("shell exited", "duration", since(s.clock, start))
	if err != nil {
		return StatusFailure, fmt.Errorf("shell: %w", err)
	}
	return StatusOK, nil
}

// override resolves the option-level setup override, if any.
func (s *ShellService) override(req Request, section *config.Section) (env.SetupFunc, error) {
	if req.Setup != nil {
		return req.Setup, nil
	}
	if req.SetupExpr == "" {
		return nil, nil
	}

	v, err := section.Resolve(req.SetupExpr)
	if err != nil {
		return nil, fmt.Errorf("resolve setup %q: %w", req.SetupExpr, err)
	}
	fn, ok := env.AsSetup(v)
	if !ok {
		return nil, fmt.Errorf("setup %q is not callable", req.SetupExpr)
	}
	return fn, nil
}

func (s *ShellService) configError(uri string, err error) (int, error) {
	cerr := &ConfigError{URI: uri, Err: err}
	s.out(cerr.Error())
	return StatusUsage, cerr
}
