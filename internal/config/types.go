package config

import (
	"fmt"
	"net/http"
	"strings"
)

// AppConfig describes one web application declared under `apps`.
//
// A configuration file declares applications as tables:
//
//	apps = {
//	  main = {
//	    settings = { debug = true },
//	    routes = {
//	      { name = "home", path = "/", body = "hello" },
//	      { path = "/users/{id}", method = "get", status = 200 },
//	    },
//	    root = { greeting = "hi" },
//	  },
//	}
//
// Settings and Root are converted to Go values; Lua functions inside them
// stay callable for as long as the owning File is open.
type AppConfig struct {
	Name     string
	Settings map[string]any
	Routes   []Route
	Root     map[string]any
}

// Route is a static route served by the application.
type Route struct {
	Name   string
	Path   string
	Method string // defaults to GET
	Status int    // defaults to 200
	Body   string
}

// Validate checks the application's routes.
//
// Checks performed, in order, for every route:
//   - path starts with '/' and is a pattern the router can register
//   - method is a known HTTP method
//   - status is in the 100-599 range
//   - name, when set, is unique within the application
//
// The first failure is returned as a ValidationError whose Field points at
// the offending route (1-based, like the Lua table).
func (a *AppConfig) Validate() error {
	if len(a.Routes) > MaxRouteCount {
		return &ValidationError{
			Field:   "routes",
			Message: fmt.Sprintf("too many routes (%d), maximum is %d", len(a.Routes), MaxRouteCount),
		}
	}

	seen := make(map[string]bool, len(a.Routes))
	for i, r := range a.Routes {
		field := fmt.Sprintf("apps.%s.routes[%d]", a.Name, i+1)
		if !strings.HasPrefix(r.Path, "/") {
			return &ValidationError{Field: field + ".path", Message: fmt.Sprintf("path must start with '/' (got %q)", r.Path)}
		}
		if err := checkPattern(r.Path); err != nil {
			return &ValidationError{Field: field + ".path", Message: fmt.Sprintf("invalid route pattern %q: %v", r.Path, err)}
		}
		if !knownMethods[r.Method] {
			return &ValidationError{Field: field + ".method", Message: fmt.Sprintf("unsupported HTTP method %q", r.Method)}
		}
		if r.Status < 100 || r.Status > 599 {
			return &ValidationError{Field: field + ".status", Message: fmt.Sprintf("invalid HTTP status %d", r.Status)}
		}
		if r.Name != "" {
			if seen[r.Name] {
				return &ValidationError{Field: field + ".name", Message: fmt.Sprintf("duplicate route name %q", r.Name)}
			}
			seen[r.Name] = true
		}
	}
	return nil
}

// knownMethods are the methods the router accepts from configuration.
// CONNECT and TRACE are not accepted.
var knownMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
}

// ValidationError represents a config validation error.
// Field is a dotted path into the configuration, e.g. "apps.main.routes[2].path",
// and may be empty for errors about the file as a whole.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

func (r *Route) applyDefaults() {
	if r.Method == "" {
		r.Method = http.MethodGet
	}
	r.Method = strings.ToUpper(r.Method)
	if r.Status == 0 {
		r.Status = http.StatusOK
	}
}
