package shell

import (
	"errors"
)

// ErrNoDefault is returned when no named shell is available and the
// selector has no usable default.
var ErrNoDefault = errors.New("no default shell available")

// Selector chooses a shell from a registry.
type Selector struct {
	// Registry holds the named shells. A nil registry has no named shells.
	Registry *Registry
	// Preferred lists names tried first when no shell is requested.
	// Nil means DefaultPreferred.
	Preferred []string
	// Default is used when no named shell is available.
	Default Factory
}

// Select returns the shell named by preference, or the best available shell
// when preference is empty.
//
// Names are matched case-insensitively. An explicit preference never falls
// back: if the named factory is missing, nil, or returns nil, Select fails
// with *NotFoundError so the user learns their choice was not honoured.
// Without a preference the search order is:
//  1. Preferred (or DefaultPreferred), skipping names that are not registered
//  2. The remaining registered names, in registration order
//  3. Default
//
// ErrNoDefault is returned when all of these come up empty.
func (s *Selector) Select(preference string) (Shell, error) {
	if name := normalizeName(preference); name != "" {
		if s.Registry != nil {
			if f, ok := s.Registry.Lookup(name); ok && f != nil {
				if sh := f(); sh != nil {
					return sh, nil
				}
			}
		}
		return nil, &NotFoundError{Name: preference}
	}

	for _, name := range s.order() {
		f, _ := s.Registry.Lookup(name)
		if f == nil {
			continue
		}
		// A factory returning nil means "not usable here", e.g. no terminal
		if sh := f(); sh != nil {
			return sh, nil
		}
	}

	if s.Default != nil {
		if sh := s.Default(); sh != nil {
			return sh, nil
		}
	}
	return nil, ErrNoDefault
}

// Available reports every registered shell in priority order.
// Each factory is called once to check availability, so factories should be
// cheap and free of side effects.
func (s *Selector) Available() []Availability {
	var out []Availability
	for _, name := range s.order() {
		f, _ := s.Registry.Lookup(name)
		out = append(out, Availability{Name: name, Available: f != nil && f() != nil})
	}
	return out
}

// order returns the registered names, preferred names first. Each name
// appears once even if Preferred repeats it.
func (s *Selector) order() []string {
	if s.Registry == nil {
		return nil
	}

	preferred := s.Preferred
	if preferred == nil {
		preferred = DefaultPreferred
	}

	registered := s.Registry.Names()
	seen := make(map[string]bool, len(registered))
	out := make([]string, 0, len(registered))
	for _, name := range preferred {
		name = normalizeName(name)
		if seen[name] {
			continue
		}
		if _, ok := s.Registry.Lookup(name); ok {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, name := range registered {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
