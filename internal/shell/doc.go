// Package shell selects the interactive shell appshell hands its namespace to.
//
// This package handles:
//   - The Shell interface every interactive shell implements
//   - A Registry of named shell factories, in registration order
//   - Choosing a shell by explicit preference or by priority
//   - Detecting whether the process is attached to a terminal
//
// # Selection
//
// A Factory returns nil when its shell cannot run in the current process
// (for example a line-editing shell when stdin is a pipe). Selection follows
// these rules:
//  1. An explicit preference must name a registered factory that yields a
//     shell, otherwise selection fails with *NotFoundError
//  2. Without a preference, the Preferred names are tried first, then the
//     rest of the registry in registration order
//  3. If no named shell is available, the Default factory is used
//
// # Example Usage
//
//	reg := shell.NewRegistry()
//	reg.Register(shell.NameReadline, luashell.ReadlineFactory(stdio))
//	reg.Register(shell.NameLua, luashell.Factory(stdio))
//
//	sel := &shell.Selector{Registry: reg, Default: luashell.Factory(stdio)}
//	sh, err := sel.Select(preference)
package shell
