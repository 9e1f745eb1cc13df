package service

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZebulonRouseFrantzich/appshell/internal/bootstrap"
	"github.com/ZebulonRouseFrantzich/appshell/internal/config"
	"github.com/ZebulonRouseFrantzich/appshell/internal/env"
	"github.com/ZebulonRouseFrantzich/appshell/internal/shell"
	"github.com/ZebulonRouseFrantzich/appshell/internal/startup"
	"github.com/ZebulonRouseFrantzich/appshell/internal/testutil"
	"github.com/ZebulonRouseFrantzich/appshell/internal/webapp"
)

const testURI = "/foo/bar/myapp.lua#myapp"

// fakeSections implements SectionReader for testing.
type fakeSections struct {
	items []env.Item
	err   error

	path, name string
	section    *config.Section
}

func (f *fakeSections) ReadSection(ctx context.Context, path, name string) (*config.Section, error) {
	f.path, f.name = path, name
	if f.err != nil {
		return nil, f.err
	}
	f.section = config.NewSection(name, f.items)
	return f.section, nil
}

// fakeBootstrap implements Bootstrapper for testing.
type fakeBootstrap struct {
	result *bootstrap.Result
	err    error

	uris   []string
	closed int
}

func newFakeBootstrap() *fakeBootstrap {
	reg := webapp.NewRegistry(&config.AppConfig{Name: "myapp"})
	rf := webapp.NewRootFactory(nil)
	req, _ := http.NewRequest(http.MethodGet, "http://localhost/", nil)
	app, _ := webapp.New(reg, rf)
	return &fakeBootstrap{result: &bootstrap.Result{
		App:         app,
		Root:        rf(req),
		Registry:    reg,
		Request:     req,
		RootFactory: rf,
	}}
}

func (f *fakeBootstrap) Bootstrap(ctx context.Context, uri string) (*bootstrap.Result, func(), error) {
	f.uris = append(f.uris, uri)
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.result, func() { f.closed++ }, nil
}

// seedMap is what the environment holds when nothing overrides the seed.
func (f *fakeBootstrap) seedMap() map[string]any {
	return map[string]any{
		"app":          f.result.App,
		"root":         f.result.Root,
		"registry":     f.result.Registry,
		"request":      f.result.Request,
		"root_factory": f.result.RootFactory,
	}
}

// recordingShell captures what it was launched with.
type recordingShell struct {
	env    map[string]any
	help   string
	called bool
	err    error
}

func (r *recordingShell) Run(ctx context.Context, e *env.Env, help string) error {
	r.called = true
	r.env = e.Map()
	r.help = help
	return r.err
}

// assertEnv compares environments, matching func values by identity.
func assertEnv(t *testing.T, want, got map[string]any) {
	t.Helper()
	require.ElementsMatch(t, keysOf(want), keysOf(got))
	for name, w := range want {
		g := got[name]
		if reflect.TypeOf(w) != nil && reflect.TypeOf(w).Kind() == reflect.Func {
			require.IsType(t, w, g, name)
			assert.Equal(t, reflect.ValueOf(w).Pointer(), reflect.ValueOf(g).Pointer(), name)
			continue
		}
		assert.Equal(t, w, g, name)
	}
}

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type harness struct {
	sections *fakeSections
	boot     *fakeBootstrap
	registry *shell.Registry
	dflt     *recordingShell
	out      []string
	svc      *ShellService
}

func newHarness(t *testing.T, startupRunner StartupRunner) *harness {
	t.Helper()
	h := &harness{
		sections: &fakeSections{},
		boot:     newFakeBootstrap(),
		registry: shell.NewRegistry(),
		dflt:     &recordingShell{},
	}
	selector := &shell.Selector{
		Registry: h.registry,
		Default:  func() shell.Shell { return h.dflt },
	}
	h.svc = NewShellService(h.sections, h.boot, selector, startupRunner,
		func(msg string) { h.out = append(h.out, msg) }, nil).
		WithClock(fixedClock{t: time.Unix(0, 0)})
	return h
}

func (h *harness) assertBootstrapped(t *testing.T) {
	t.Helper()
	assert.Equal(t, "/foo/bar/myapp.lua", h.sections.path)
	assert.Equal(t, config.SectionName, h.sections.name)
	assert.Equal(t, []string{testURI}, h.boot.uris)
	assert.Equal(t, 1, h.boot.closed)
}

func TestShellService_LoadsDefaultShell(t *testing.T) {
	h := newHarness(t, nil)
	h.registry.Register("yaegi", func() shell.Shell { return nil })
	h.registry.Register("readline", func() shell.Shell { return nil })

	status, err := h.svc.Run(context.Background(), Request{ConfigURI: testURI})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)

	h.assertBootstrapped(t)
	assert.True(t, h.dflt.called)
	assertEnv(t, h.boot.seedMap(), h.dflt.env)
	assert.Contains(t, h.dflt.help, "Environment:")
}

func TestShellService_UnknownShell(t *testing.T) {
	h := newHarness(t, nil)
	bad := &recordingShell{}
	h.registry.Register("yaegi", func() shell.Shell { return bad })
	h.registry.Register("readline", func() shell.Shell { return bad })

	status, err := h.svc.Run(context.Background(), Request{ConfigURI: testURI, Shell: "unknown_shell"})

	var nf *shell.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, StatusShellNotFound, status)
	assert.Equal(t, []string{`could not find a shell named "unknown_shell"`}, h.out)
	h.assertBootstrapped(t)
	assert.False(t, bad.called)
	assert.False(t, h.dflt.called)
}

func TestShellService_LoadsNamedShell(t *testing.T) {
	h := newHarness(t, nil)
	named := &recordingShell{}
	h.registry.Register("yaegi", func() shell.Shell { return named })
	h.registry.Register("readline", func() shell.Shell { return &recordingShell{} })

	status, err := h.svc.Run(context.Background(), Request{ConfigURI: testURI, Shell: "yaegi"})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)

	h.assertBootstrapped(t)
	assert.True(t, named.called)
	assertEnv(t, h.boot.seedMap(), named.env)
	assert.NotEmpty(t, named.help)
}

func TestShellService_LoadsCustomItems(t *testing.T) {
	h := newHarness(t, nil)
	model := &struct{ Name string }{Name: "model"}
	h.sections.items = []env.Item{{Name: "m", Value: model}}
	sh := &recordingShell{}

	_, err := h.svc.Run(context.Background(), Request{ConfigURI: testURI, Launcher: sh})
	require.NoError(t, err)

	want := h.boot.seedMap()
	want["m"] = model
	assertEnv(t, want, sh.env)
	h.assertBootstrapped(t)
	assert.Contains(t, sh.help, "Custom Variables:")
}

func TestShellService_Setup(t *testing.T) {
	h := newHarness(t, nil)
	h.sections.items = []env.Item{{Name: "setup", Value: func(e *env.Env) {
		e.Set("a", 1)
		e.Set("root", "root override")
	}}}
	sh := &recordingShell{}

	_, err := h.svc.Run(context.Background(), Request{ConfigURI: testURI, Launcher: sh})
	require.NoError(t, err)

	want := h.boot.seedMap()
	want["a"] = 1
	want["root"] = "root override"
	assertEnv(t, want, sh.env)
	assert.NotContains(t, sh.help, "Custom Variables:")
	h.assertBootstrapped(t)
}

func TestShellService_VariableOverrideOrder(t *testing.T) {
	h := newHarness(t, nil)
	model := &struct{}{}
	h.sections.items = []env.Item{
		{Name: "setup", Value: func(e *env.Env) {
			e.Set("a", 1)
			e.Set("m", "model override")
			e.Set("root", "root override")
		}},
		{Name: "m", Value: model},
	}
	sh := &recordingShell{}

	_, err := h.svc.Run(context.Background(), Request{ConfigURI: testURI, Launcher: sh})
	require.NoError(t, err)

	want := h.boot.seedMap()
	want["a"] = 1
	want["m"] = "model override"
	want["root"] = "root override"
	assertEnv(t, want, sh.env)
}

func TestShellService_SetupFromOptions(t *testing.T) {
	h := newHarness(t, nil)
	model := &struct{}{}
	h.sections.items = []env.Item{
		{Name: "setup", Value: "abc"},
		{Name: "m", Value: model},
	}
	sh := &recordingShell{}
	setup := func(e *env.Env) error {
		e.Set("a", 1)
		e.Set("root", "root override")
		return nil
	}

	_, err := h.svc.Run(context.Background(), Request{ConfigURI: testURI, Launcher: sh, Setup: setup})
	require.NoError(t, err)

	want := h.boot.seedMap()
	want["a"] = 1
	want["root"] = "root override"
	want["m"] = model
	want["setup"] = "abc"
	assertEnv(t, want, sh.env)
}

func TestShellService_OptionSetupBeatsSectionSetup(t *testing.T) {
	h := newHarness(t, nil)
	h.sections.items = []env.Item{{Name: "setup", Value: func(e *env.Env) { e.Set("who", "section") }}}
	sh := &recordingShell{}

	_, err := h.svc.Run(context.Background(), Request{
		ConfigURI: testURI,
		Launcher:  sh,
		Setup:     func(e *env.Env) error { e.Set("who", "option"); return nil },
	})
	require.NoError(t, err)
	assert.Equal(t, "option", sh.env["who"])
}

func TestShellService_CustomSectionOverride(t *testing.T) {
	h := newHarness(t, nil)
	dummy := &struct{}{}
	h.sections.items = []env.Item{
		{Name: "app", Value: dummy},
		{Name: "root", Value: dummy},
		{Name: "registry", Value: dummy},
		{Name: "request", Value: dummy},
	}
	sh := &recordingShell{}

	_, err := h.svc.Run(context.Background(), Request{ConfigURI: testURI, Launcher: sh})
	require.NoError(t, err)

	assertEnv(t, map[string]any{
		"app":          dummy,
		"root":         dummy,
		"registry":     dummy,
		"request":      dummy,
		"root_factory": h.boot.result.RootFactory,
	}, sh.env)
}

func TestShellService_Startup(t *testing.T) {
	testutil.SetupTestEnv(t)
	path := filepath.Join(t.TempDir(), "startup.lua")
	require.NoError(t, os.WriteFile(path, []byte("foo = 1\n"), 0o600))

	h := newHarness(t, startup.New(path, "", nil))
	sh := &recordingShell{}

	_, err := h.svc.Run(context.Background(), Request{ConfigURI: testURI, Launcher: sh})
	require.NoError(t, err)

	want := h.boot.seedMap()
	want["foo"] = 1.0
	assertEnv(t, want, sh.env)
	h.assertBootstrapped(t)
}

type failingStartup struct{}

func (failingStartup) Run(ctx context.Context, e *env.Env) (func(), error) {
	return func() {}, errors.New("bad script")
}

func TestShellService_StartupFailure(t *testing.T) {
	h := newHarness(t, failingStartup{})
	sh := &recordingShell{}

	status, err := h.svc.Run(context.Background(), Request{ConfigURI: testURI, Launcher: sh})
	assert.Equal(t, StatusFailure, status)
	assert.ErrorContains(t, err, "bad script")
	assert.False(t, sh.called)
	assert.Equal(t, 1, h.boot.closed)
}

func TestShellService_SetupError(t *testing.T) {
	h := newHarness(t, nil)
	boom := errors.New("boom")
	sh := &recordingShell{}

	status, err := h.svc.Run(context.Background(), Request{
		ConfigURI: testURI,
		Launcher:  sh,
		Setup:     func(*env.Env) error { return boom },
	})
	assert.Equal(t, StatusFailure, status)
	assert.ErrorIs(t, err, boom)
	assert.False(t, sh.called)
	assert.Equal(t, 1, h.boot.closed)
}

func TestShellService_LauncherError(t *testing.T) {
	h := newHarness(t, nil)
	boom := errors.New("tty gone")
	sh := &recordingShell{err: boom}

	status, err := h.svc.Run(context.Background(), Request{ConfigURI: testURI, Launcher: sh})
	assert.Equal(t, StatusFailure, status)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, h.boot.closed)
}

func TestShellService_ConfigErrors(t *testing.T) {
	t.Run("unreadable section", func(t *testing.T) {
		h := newHarness(t, nil)
		h.sections.err = &config.ParseError{Message: "Lua syntax error", Detail: "line 1"}

		status, err := h.svc.Run(context.Background(), Request{ConfigURI: testURI})
		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, StatusUsage, status)
		assert.Empty(t, h.boot.uris)
		require.Len(t, h.out, 1)
		assert.Contains(t, h.out[0], "Lua syntax error")
	})

	t.Run("bootstrap failure", func(t *testing.T) {
		h := newHarness(t, nil)
		h.boot.err = errors.New("no such app")

		status, err := h.svc.Run(context.Background(), Request{ConfigURI: testURI})
		assert.Equal(t, StatusUsage, status)
		assert.ErrorContains(t, err, "no such app")
		assert.Equal(t, 0, h.boot.closed)
	})

	t.Run("empty uri", func(t *testing.T) {
		h := newHarness(t, nil)

		status, err := h.svc.Run(context.Background(), Request{ConfigURI: ""})
		assert.Equal(t, StatusUsage, status)
		assert.ErrorIs(t, err, bootstrap.ErrEmptyURI)
	})

	t.Run("setup expression without file", func(t *testing.T) {
		h := newHarness(t, nil)

		status, err := h.svc.Run(context.Background(), Request{ConfigURI: testURI, SetupExpr: "helpers.setup"})
		assert.Equal(t, StatusUsage, status)
		assert.Error(t, err)
		assert.Equal(t, 1, h.boot.closed)
	})
}

func TestShellService_SetupExpression(t *testing.T) {
	path := testutil.WriteConfig(t, `
helpers = {
  setup = function(env) env.from_expr = true end,
  value = 3,
}
appshell = { greeting = "hi" }
`)
	boot := newFakeBootstrap()
	sh := &recordingShell{}
	svc := NewShellService(config.NewLoader(nil), boot, &shell.Selector{}, nil, nil, nil)

	_, err := svc.Run(context.Background(), Request{ConfigURI: path + "#main", Launcher: sh, SetupExpr: "helpers.setup"})
	require.NoError(t, err)
	assert.Equal(t, true, sh.env["from_expr"])
	assert.Equal(t, "hi", sh.env["greeting"])

	status, err := svc.Run(context.Background(), Request{ConfigURI: path + "#main", Launcher: sh, SetupExpr: "helpers.value"})
	assert.Equal(t, StatusUsage, status)
	assert.ErrorContains(t, err, "not callable")
}

func TestShellService_EndToEnd(t *testing.T) {
	path := testutil.WriteConfig(t, testutil.SampleConfig)
	configs := config.NewLoader(nil)
	svc := NewShellService(configs, bootstrap.NewLoader(configs, nil), &shell.Selector{}, nil, nil, nil)
	sh := &recordingShell{}

	status, err := svc.Run(context.Background(), Request{ConfigURI: path + "#main", Launcher: sh})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)

	assert.Equal(t, 42.0, sh.env["answer"])
	assert.Equal(t, "hello", sh.env["greeting"])
	assert.IsType(t, &webapp.App{}, sh.env["app"])
	assert.NotContains(t, sh.env, "setup")
	assert.Contains(t, sh.help, `greeting     "hello"`)
}
