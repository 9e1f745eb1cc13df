package env

import (
	"fmt"
)

// Names of the variables seeded from the bootstrap result.
const (
	NameApp         = "app"
	NameRoot        = "root"
	NameRegistry    = "registry"
	NameRequest     = "request"
	NameRootFactory = "root_factory"

	// NameSetup is the reserved item name for a setup hook.
	NameSetup = "setup"
)

// SeedNames lists the seeded variable names in seeding order.
var SeedNames = []string{NameApp, NameRoot, NameRegistry, NameRequest, NameRootFactory}

// Seed carries the five objects produced by bootstrapping an application.
type Seed struct {
	App         any
	Root        any
	Registry    any
	Request     any
	RootFactory any
}

// Item is a single named value read from a configuration section.
type Item struct {
	Name  string
	Value any
}

// SetupFunc receives the assembled Env and may change it in place.
type SetupFunc func(e *Env) error

// Callable is implemented by values that can be invoked from Go, such as
// functions bridged from a scripting runtime.
type Callable interface {
	Call(args ...any) ([]any, error)
}

// AsSetup converts v into a SetupFunc if v is callable.
func AsSetup(v any) (SetupFunc, bool) {
	switch fn := v.(type) {
	case nil:
		return nil, false
	case SetupFunc:
		return fn, fn != nil
	case func(*Env) error:
		return fn, fn != nil
	case func(*Env):
		if fn == nil {
			return nil, false
		}
		return func(e *Env) error {
			fn(e)
			return nil
		}, true
	case Callable:
		return func(e *Env) error {
			_, err := fn.Call(e)
			return err
		}, true
	default:
		return nil, false
	}
}

func (s Seed) values() map[string]any {
	return map[string]any{
		NameApp:         s.App,
		NameRoot:        s.Root,
		NameRegistry:    s.Registry,
		NameRequest:     s.Request,
		NameRootFactory: s.RootFactory,
	}
}

// Assemble builds the shell namespace. The seed objects go in first, then
// every item except callable setup hooks, in order. The override, or failing
// that the last callable setup item, runs last and may change any variable.
func Assemble(seed Seed, items []Item, override SetupFunc) (*Env, error) {
	e := fromMap(SeedNames, seed.values())

	var (
		lastSetup any
		hasSetup  bool
	)
	for _, item := range items {
		if item.Name != NameSetup {
			e.Set(item.Name, item.Value)
			continue
		}
		lastSetup, hasSetup = item.Value, true
		// A setup value that cannot be called is plain data.
		if _, ok := AsSetup(item.Value); !ok {
			e.Set(item.Name, item.Value)
		}
	}

	setup := override
	if setup == nil && hasSetup {
		setup, _ = AsSetup(lastSetup)
	}
	if setup == nil {
		return e, nil
	}
	if err := setup(e); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	return e, nil
}
