// Package luashell implements the interactive Lua shells. The plain variant
// reads lines from any reader and is the default shell; the readline variant
// adds line editing and history and needs a terminal.
package luashell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/ZebulonRouseFrantzich/appshell/internal/env"
	"github.com/ZebulonRouseFrantzich/appshell/internal/luabridge"
	"github.com/ZebulonRouseFrantzich/appshell/internal/platform"
	"github.com/ZebulonRouseFrantzich/appshell/internal/shell"
)

const (
	promptFirst = "> "
	promptMore  = ">> "
)

// Shell is an interactive Lua session.
type Shell struct {
	io        shell.IO
	platform  *platform.Info
	newReader func(names []string) (LineReader, error)
}

// Option configures a Shell.
type Option func(*Shell)

// WithPlatform adds the host description to the banner.
func WithPlatform(info *platform.Info) Option {
	return func(s *Shell) { s.platform = info }
}

// New returns a plain Lua shell that works on any streams.
func New(streams shell.IO, opts ...Option) *Shell {
	s := &Shell{io: streams}
	s.newReader = func([]string) (LineReader, error) {
		return newPlainReader(streams.In, streams.Out), nil
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewReadline returns a Lua shell with line editing and history.
func NewReadline(streams shell.IO, opts ...Option) *Shell {
	s := New(streams, opts...)
	s.newReader = func(names []string) (LineReader, error) {
		return newReadlineReader(streams.In, streams.Out, streams.Err, names)
	}
	return s
}

// Factory returns a factory for the plain shell. It always yields a shell.
func Factory(streams shell.IO, opts ...Option) shell.Factory {
	return func() shell.Shell { return New(streams, opts...) }
}

// ReadlineFactory returns a factory for the readline shell. It yields nil
// unless both input and output are terminals.
func ReadlineFactory(streams shell.IO, opts ...Option) shell.Factory {
	return func() shell.Shell {
		if !streams.IsTerminal() {
			return nil
		}
		return NewReadline(streams, opts...)
	}
}

// session is the state of one Run.
type session struct {
	L    *lua.LState
	out  io.Writer
	errw io.Writer
	done bool
}

// Run starts the REPL with every entry of e as a global and blocks until
// end of input, exit(), or ctx is cancelled.
func (s *Shell) Run(ctx context.Context, e *env.Env, help string) error {
	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)

	ss := &session{L: L, out: s.io.Out, errw: s.io.Err}
	if ss.errw == nil {
		ss.errw = s.io.Out
	}
	ss.installBuiltins(help)

	e.Range(func(name string, value any) bool {
		L.SetGlobal(name, luabridge.ToLua(L, value))
		return true
	})

	r, err := s.newReader(e.Keys())
	if err != nil {
		return err
	}
	defer r.Close()

	fmt.Fprintln(ss.out, s.banner())
	fmt.Fprintln(ss.out, help)

	var pending string
	for !ss.done {
		if ctx.Err() != nil {
			return nil
		}

		prompt := promptFirst
		if pending != "" {
			prompt = promptMore
		}
		line, err := r.ReadLine(prompt)
		switch {
		case errors.Is(err, errInterrupt):
			pending = ""
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(ss.out)
			return nil
		case err != nil:
			return fmt.Errorf("read input: %w", err)
		}

		src := line
		if pending != "" {
			src = pending + "\n" + line
		}
		if strings.TrimSpace(src) == "" {
			continue
		}

		fn, incomplete, err := ss.compile(src)
		if err != nil && pending != "" {
			// The buffered lines cannot be finished by this one. Report
			// them and read the line as fresh input.
			fmt.Fprintln(ss.errw, formatError(err))
			src = line
			fn, incomplete, err = ss.compile(src)
		}
		pending = ""
		switch {
		case incomplete:
			pending = src
		case err != nil:
			fmt.Fprintln(ss.errw, formatError(err))
		default:
			if err := ss.run(fn); err != nil {
				fmt.Fprintln(ss.errw, formatError(err))
			}
		}
	}
	return nil
}

func (s *Shell) banner() string {
	b := "appshell Lua shell (" + lua.LuaVersion + ")"
	if s.platform != nil {
		b += " on " + s.platform.String()
	}
	return b + ". Type exit() or press Ctrl-D to leave."
}

// installBuiltins replaces print and os.exit so output goes to the shell's
// writer and leaving the shell does not end the process.
func (ss *session) installBuiltins(help string) {
	L := ss.L

	exit := L.NewFunction(func(L *lua.LState) int {
		ss.done = true
		return 0
	})
	L.SetGlobal("exit", exit)
	if osTable, ok := L.GetGlobal("os").(*lua.LTable); ok {
		osTable.RawSetString("exit", exit)
	}

	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		fmt.Fprintln(ss.out, strings.Join(parts, "\t"))
		return 0
	}))

	L.SetGlobal("help", L.NewFunction(func(L *lua.LState) int {
		fmt.Fprintln(ss.out, help)
		return 0
	}))
}

// compile parses src as an expression if possible, else as a statement.
// incomplete is true when src needs more lines.
func (ss *session) compile(src string) (fn *lua.LFunction, incomplete bool, err error) {
	if fn, err := ss.L.LoadString("return " + src); err == nil {
		return fn, false, nil
	}
	fn, err = ss.L.LoadString(src)
	if err != nil {
		if isIncomplete(err) {
			return nil, true, nil
		}
		return nil, false, err
	}
	return fn, false, nil
}

// run calls fn and prints whatever it returns.
func (ss *session) run(fn *lua.LFunction) error {
	L := ss.L
	top := L.GetTop()
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		L.SetTop(top)
		return err
	}

	n := L.GetTop() - top
	if n > 0 {
		parts := make([]string, n)
		for i := 0; i < n; i++ {
			parts[i] = L.ToStringMeta(L.Get(top + 1 + i)).String()
		}
		fmt.Fprintln(ss.out, strings.Join(parts, "\t"))
	}
	L.SetTop(top)
	return nil
}

// continuable lists the lexer errors at end of input that more lines can
// fix. Other lexer errors, such as an unterminated quoted string, cannot.
var continuable = map[string]bool{
	"unterminated multiline string": true,
	"invalid multiline comment":     true,
}

// isIncomplete reports whether src failed to compile only because the
// input ended early, as with an unclosed block or call.
func isIncomplete(err error) bool {
	var apiErr *lua.ApiError
	if !errors.As(err, &apiErr) {
		return false
	}
	var perr *parse.Error
	if !errors.As(apiErr.Cause, &perr) || perr.Pos.Line != parse.EOF {
		return false
	}
	return strings.HasPrefix(perr.Message, "syntax error") ||
		perr.Message == "parse error" ||
		continuable[perr.Message]
}

// formatError drops the stack traceback from Lua errors.
func formatError(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, "stack traceback"); idx > 0 {
		msg = strings.TrimSpace(msg[:idx])
	}
	return msg
}
