package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/ZebulonRouseFrantzich/appshell/internal/platform"
)

// DefaultTimeout bounds evaluation of a configuration file when the caller's
// context has no deadline.
const DefaultTimeout = 5 * time.Second

// Loader evaluates Lua configuration files.
type Loader struct {
	detector platform.Detector
	logger   Logger
}

// NewLoader creates a loader. A nil detector skips the `platform` table.
func NewLoader(detector platform.Detector) *Loader {
	return &Loader{detector: detector, logger: defaultLogger()}
}

// WithLogger sets the logger used for loader diagnostics.
func (l *Loader) WithLogger(logger Logger) *Loader {
	if logger == nil {
		logger = defaultLogger()
	}
	l.logger = logger
	return l
}

// Load reads and evaluates the configuration file at path.
//
// Files larger than MaxConfigSize are rejected with a ValidationError before
// they are read. Everything else is delegated to LoadString.
func (l *Loader) Load(ctx context.Context, path string) (*File, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("read config: %s is a directory", path)
	}
	if st.Size() > MaxConfigSize {
		return nil, &ValidationError{
			Message: fmt.Sprintf("config file too large (%d bytes, maximum is %d)", st.Size(), MaxConfigSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return l.LoadString(ctx, path, string(data))
}

// LoadString evaluates code as a configuration file called name.
//
// Evaluation happens in a sandboxed Lua VM (see sandboxLuaVM) in this order:
//  1. Detect the host platform and inject the read-only `platform` table
//  2. Scan the source for values that look like secrets and warn about them
//  3. Compile the chunk; syntax errors become a ParseError
//  4. Run the chunk under ctx, or under DefaultTimeout when ctx has no deadline
//
// On success the returned File owns the VM and must be closed. On any error
// the VM is closed before returning.
func (l *Loader) LoadString(ctx context.Context, name, code string) (*File, error) {
	L := newSandboxedVM()

	// Platform detection failing is fatal here: the file may branch on
	// platform.os and would silently take the wrong path without it.
	if l.detector != nil {
		info, err := l.detector.Detect(ctx)
		if err != nil {
			L.Close()
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, info); err != nil {
			L.Close()
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	// Secrets are only reported, never rejected.
	for _, f := range DetectSensitiveData(code) {
		l.logger.Warn("possible secret in configuration file",
			"file", name, "line", f.Line, "kind", f.PatternName, "preview", f.Preview)
	}

	fn, err := L.Load(strings.NewReader(code), name)
	if err != nil {
		L.Close()
		return nil, &ParseError{Message: "Lua syntax error", Detail: err.Error()}
	}

	// A config file that loops forever must not hang the launcher
	runCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	// The context only applies while the chunk runs. Sections are
	// evaluated later under the caller's own context.
	L.SetContext(runCtx)
	L.Push(fn)
	err = L.PCall(0, lua.MultRet, nil)
	L.RemoveContext()
	L.SetTop(0)
	if err != nil {
		L.Close()
		return nil, &ParseError{Message: "configuration evaluation failed", Detail: err.Error()}
	}

	l.logger.Debug("configuration loaded", "file", name)
	return &File{Path: name, L: L, logger: l.logger}, nil
}

// ReadSection loads path and returns the section called name. The section
// owns the file's Lua state; callers must Close it.
func (l *Loader) ReadSection(ctx context.Context, path, name string) (*Section, error) {
	f, err := l.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	s, err := f.Section(name)
	if err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}
