package shell

import (
	"context"
	"fmt"

	"github.com/ZebulonRouseFrantzich/appshell/internal/env"
)

// Shell runs an interactive session over a namespace.
//
// Implementations must:
//   - block in Run until the session ends (end of input or an exit command)
//   - expose every name in e to the user, with its value
//   - print help verbatim in the banner shown before the first prompt
//   - return nil for a normal exit; an error only when the session could
//     not run at all
//
// Run may return early when ctx is cancelled, but is not required to
// interrupt a blocked read.
type Shell interface {
	Run(ctx context.Context, e *env.Env, help string) error
}

// Func adapts an ordinary function to the Shell interface.
type Func func(ctx context.Context, e *env.Env, help string) error

// Run calls f.
func (f Func) Run(ctx context.Context, e *env.Env, help string) error {
	return f(ctx, e, help)
}

// Factory creates a shell. It returns nil when the shell is not usable in
// the current process.
type Factory func() Shell

// Availability reports whether a registered shell can currently run.
type Availability struct {
	Name      string
	Available bool
}

// NotFoundError is returned when a requested shell is unknown or unavailable.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not find a shell named %q", e.Name)
}
