package webapp

import (
	"fmt"
	"net/http"
)

// Root is the root of the default resource tree.
type Root struct {
	Attrs   map[string]any
	Request *http.Request
}

// Get returns the named attribute.
func (r *Root) Get(name string) any {
	return r.Attrs[name]
}

func (r *Root) String() string {
	if title, ok := r.Attrs["title"].(string); ok {
		return fmt.Sprintf("root %q", title)
	}
	return "root"
}

// RootFactory creates the root resource for a request.
type RootFactory func(*http.Request) *Root

// NewRootFactory returns a factory whose roots carry a copy of attrs.
func NewRootFactory(attrs map[string]any) RootFactory {
	return func(req *http.Request) *Root {
		cp := make(map[string]any, len(attrs))
		for k, v := range attrs {
			cp[k] = v
		}
		return &Root{Attrs: cp, Request: req}
	}
}

// DefaultRootFactory creates roots without attributes.
var DefaultRootFactory = NewRootFactory(nil)
