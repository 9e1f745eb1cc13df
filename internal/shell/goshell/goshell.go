//go:build !noyaegi

// Package goshell implements an interactive Go shell on top of the yaegi
// interpreter. Every environment variable whose name is a Go identifier is
// declared as a package-level variable, typed when its type is known to the
// interpreter. The full map is also available as appshell.Env.
package goshell

import (
	"context"
	"fmt"
	"go/token"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/ZebulonRouseFrantzich/appshell/internal/env"
	"github.com/ZebulonRouseFrantzich/appshell/internal/shell"
	"github.com/ZebulonRouseFrantzich/appshell/internal/webapp"
)

// Shell is an interactive Go session.
type Shell struct {
	io shell.IO
}

// New returns a Go shell using streams.
func New(streams shell.IO) *Shell {
	return &Shell{io: streams}
}

// Factory returns a factory that yields a Go shell only when both input and
// output are terminals.
func Factory(streams shell.IO) shell.Factory {
	return func() shell.Shell {
		if !streams.IsTerminal() {
			return nil
		}
		return New(streams)
	}
}

// Run blocks in the interpreter's REPL until end of input or until ctx is
// cancelled.
func (s *Shell) Run(ctx context.Context, e *env.Env, help string) error {
	i, err := s.prepare(e)
	if err != nil {
		return err
	}

	fmt.Fprintln(s.io.Out, "appshell Go shell (yaegi). Press Ctrl-D to leave.")
	fmt.Fprintln(s.io.Out, help)
	fmt.Fprintln(s.io.Out, "\nAll variables are also available as appshell.Env[\"name\"].")

	// yaegi's REPL cannot be interrupted while it waits for input. On
	// cancellation Run returns and the goroutine stays parked on the read;
	// appshell only cancels the context when the process is exiting, and
	// the goroutine ends when the input is closed.
	done := make(chan error, 1)
	go func() {
		_, err := i.REPL()
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return nil
	}
}

// typed maps Go types the interpreter knows about to their source spelling
// and the import they need.
var typed = map[reflect.Type]struct{ expr, pkg string }{
	reflect.TypeOf((*webapp.App)(nil)):      {"*webapp.App", "appshell/webapp"},
	reflect.TypeOf((*webapp.Registry)(nil)): {"*webapp.Registry", "appshell/webapp"},
	reflect.TypeOf((*webapp.Root)(nil)):     {"*webapp.Root", "appshell/webapp"},
	reflect.TypeOf((*webapp.Response)(nil)): {"*webapp.Response", "appshell/webapp"},
	reflect.TypeOf(webapp.RootFactory(nil)): {"webapp.RootFactory", "appshell/webapp"},
	reflect.TypeOf((*http.Request)(nil)):    {"*http.Request", "net/http"},
	reflect.TypeOf(""):                      {"string", ""},
	reflect.TypeOf(0):                       {"int", ""},
	reflect.TypeOf(0.0):                     {"float64", ""},
	reflect.TypeOf(false):                   {"bool", ""},
	reflect.TypeOf(map[string]any(nil)):     {"map[string]interface{}", ""},
	reflect.TypeOf([]any(nil)):              {"[]interface{}", ""},
}

func symbols() interp.Exports {
	return interp.Exports{
		"appshell/webapp/webapp": {
			"App":         reflect.ValueOf((*webapp.App)(nil)),
			"Registry":    reflect.ValueOf((*webapp.Registry)(nil)),
			"Root":        reflect.ValueOf((*webapp.Root)(nil)),
			"Response":    reflect.ValueOf((*webapp.Response)(nil)),
			"RootFactory": reflect.ValueOf((*webapp.RootFactory)(nil)),
			"NewRequest":  reflect.ValueOf(webapp.NewRequest),
		},
	}
}

// prepare builds an interpreter whose globals mirror e.
func (s *Shell) prepare(e *env.Env) (*interp.Interpreter, error) {
	i := interp.New(interp.Options{Stdin: s.io.In, Stdout: s.io.Out, Stderr: s.io.Err})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("failed to load stdlib: %w", err)
	}
	if err := i.Use(symbols()); err != nil {
		return nil, fmt.Errorf("failed to load appshell symbols: %w", err)
	}

	vars := e.Map()
	if err := i.Use(interp.Exports{
		"appshell/appshell": {"Env": reflect.ValueOf(&vars).Elem()},
	}); err != nil {
		return nil, fmt.Errorf("failed to export environment: %w", err)
	}

	imports := map[string]bool{"appshell": true}
	var decls []string
	for _, name := range e.Keys() {
		if !token.IsIdentifier(name) {
			continue
		}
		decl := fmt.Sprintf("var %s = appshell.Env[%q]", name, name)
		if v := vars[name]; v != nil {
			if t, ok := typed[reflect.TypeOf(v)]; ok {
				decl += ".(" + t.expr + ")"
				if t.pkg != "" {
					imports[t.pkg] = true
				}
			}
		}
		decls = append(decls, decl)
	}

	pkgs := make([]string, 0, len(imports))
	for p := range imports {
		pkgs = append(pkgs, fmt.Sprintf("%q", p))
	}
	sort.Strings(pkgs)
	if _, err := i.Eval("import (\n" + strings.Join(pkgs, "\n") + "\n)"); err != nil {
		return nil, fmt.Errorf("import environment: %w", err)
	}
	for _, d := range decls {
		if _, err := i.Eval(d); err != nil {
			return nil, fmt.Errorf("declare %s: %w", d, err)
		}
	}
	return i, nil
}
