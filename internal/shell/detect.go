package shell

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IO holds the streams an interactive shell reads from and writes to.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdIO returns the process standard streams.
func StdIO() IO {
	return IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// IsTerminal reports whether both the input and the output are terminals.
// Line-editing shells need this; the plain shells do not.
func (s IO) IsTerminal() bool {
	return isTerminal(s.In) && isTerminal(s.Out)
}

func isTerminal(v interface{}) bool {
	f, ok := v.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
