package luashell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
)

// EnvHistory overrides the readline history file.
const EnvHistory = "APPSHELL_HISTORY"

// errInterrupt is returned by a LineReader when the user pressed Ctrl-C.
var errInterrupt = errors.New("interrupt")

// LineReader reads one line of input after showing prompt.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// plainReader reads lines from any io.Reader and echoes prompts to out.
type plainReader struct {
	in  *bufio.Reader
	out io.Writer
}

func newPlainReader(in io.Reader, out io.Writer) *plainReader {
	return &plainReader{in: bufio.NewReader(in), out: out}
}

func (r *plainReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	line, err := r.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *plainReader) Close() error { return nil }

// readlineReader provides line editing, history and completion of the
// environment's names.
type readlineReader struct {
	rl *readline.Instance
}

func newReadlineReader(in io.Reader, out, errOut io.Writer, names []string) (*readlineReader, error) {
	items := make([]readline.PrefixCompleterInterface, 0, len(names))
	for _, n := range names {
		items = append(items, readline.PcItem(n))
	}

	stdin, ok := in.(io.ReadCloser)
	if !ok {
		stdin = io.NopCloser(in)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            promptFirst,
		HistoryFile:       HistoryFile(),
		AutoComplete:      readline.NewPrefixCompleter(items...),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		Stdin:             stdin,
		Stdout:            out,
		Stderr:            errOut,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline instance: %w", err)
	}
	return &readlineReader{rl: rl}, nil
}

func (r *readlineReader) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", errInterrupt
	}
	return line, err
}

func (r *readlineReader) Close() error {
	return r.rl.Close()
}

// HistoryFile returns $APPSHELL_HISTORY, or ~/.appshell_history.
func HistoryFile() string {
	if p := os.Getenv(EnvHistory); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".appshell_history")
	}
	return filepath.Join(home, ".appshell_history")
}
