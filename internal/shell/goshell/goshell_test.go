//go:build !noyaegi

package goshell

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZebulonRouseFrantzich/appshell/internal/config"
	"github.com/ZebulonRouseFrantzich/appshell/internal/env"
	"github.com/ZebulonRouseFrantzich/appshell/internal/shell"
	"github.com/ZebulonRouseFrantzich/appshell/internal/webapp"
)

func newShell() *Shell {
	return New(shell.IO{In: strings.NewReader(""), Out: &bytes.Buffer{}, Err: &bytes.Buffer{}})
}

func TestPrepare_DeclaresVariables(t *testing.T) {
	e := env.New()
	e.Set("answer", 42)
	e.Set("greeting", "hello")
	e.Set("not-an-identifier", true)

	i, err := newShell().prepare(e)
	require.NoError(t, err)

	v, err := i.Eval("answer + 1")
	require.NoError(t, err)
	assert.Equal(t, 43, v.Interface())

	v, err = i.Eval(`greeting + "!"`)
	require.NoError(t, err)
	assert.Equal(t, "hello!", v.Interface())

	v, err = i.Eval(`appshell.Env["not-an-identifier"]`)
	require.NoError(t, err)
	assert.Equal(t, true, v.Interface())
}

func TestPrepare_TypedApplicationObjects(t *testing.T) {
	reg := webapp.NewRegistry(&config.AppConfig{
		Name:   "main",
		Routes: []config.Route{{Path: "/", Method: "GET", Status: 200, Body: "Welcome"}},
	})
	app, err := webapp.New(reg, nil)
	require.NoError(t, err)
	e := env.New()
	e.Set("app", app)
	e.Set("registry", reg)

	i, err := newShell().prepare(e)
	require.NoError(t, err)

	v, err := i.Eval("registry.Name")
	require.NoError(t, err)
	assert.Equal(t, "main", v.Interface())

	v, err = i.Eval(`func() string { r, _ := app.Get("/"); return r.Body }()`)
	require.NoError(t, err)
	assert.Equal(t, "Welcome", v.Interface())
}

func TestPrepare_UntypedValue(t *testing.T) {
	type opaque struct{ n int }
	e := env.New()
	e.Set("thing", opaque{n: 1})

	i, err := newShell().prepare(e)
	require.NoError(t, err)

	v, err := i.Eval("thing != nil")
	require.NoError(t, err)
	assert.Equal(t, true, v.Interface())
}

func TestRun_ReturnsWhenCancelled(t *testing.T) {
	in, w := io.Pipe()
	t.Cleanup(func() { _ = w.Close() })
	s := New(shell.IO{In: in, Out: &bytes.Buffer{}, Err: &bytes.Buffer{}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, env.New(), "HELP") }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestFactory_RequiresTerminal(t *testing.T) {
	f := Factory(shell.IO{In: strings.NewReader(""), Out: &bytes.Buffer{}})
	assert.Nil(t, f())
}
