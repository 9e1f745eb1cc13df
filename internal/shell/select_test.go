package shell

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZebulonRouseFrantzich/appshell/internal/env"
)

// dummyShell records the namespace and help text it was run with.
type dummyShell struct {
	name string
	env  *env.Env
	help string
}

func (d *dummyShell) Run(ctx context.Context, e *env.Env, help string) error {
	d.env = e
	d.help = help
	return nil
}

func yields(sh Shell) Factory {
	return func() Shell { return sh }
}

func unavailable() Shell { return nil }

func newTestRegistry(entries map[string]Factory, order ...string) *Registry {
	r := NewRegistry()
	for _, name := range order {
		r.Register(name, entries[name])
	}
	return r
}

func TestSelector_EntryPoints(t *testing.T) {
	dshell := &dummyShell{name: "d"}
	reg := newTestRegistry(map[string]Factory{
		NameYaegi:    yields(dshell),
		NameReadline: yields(dshell),
	}, NameYaegi, NameReadline)

	sel := &Selector{Registry: reg, Default: unavailable}

	sh, err := sel.Select("")
	require.NoError(t, err)
	assert.Same(t, dshell, sh)
}

func TestSelector_Ordering(t *testing.T) {
	rlshell := &dummyShell{name: "readline"}
	yshell := &dummyShell{name: "yaegi"}
	dshell := &dummyShell{name: "default"}

	t.Run("falls back to default when nothing is available", func(t *testing.T) {
		reg := newTestRegistry(map[string]Factory{
			NameReadline: unavailable,
			NameYaegi:    unavailable,
		}, NameReadline, NameYaegi)
		sel := &Selector{Registry: reg, Default: yields(dshell)}

		sh, err := sel.Select("")
		require.NoError(t, err)
		assert.Same(t, dshell, sh)
	})

	t.Run("explicit preference for an unavailable shell fails", func(t *testing.T) {
		reg := newTestRegistry(map[string]Factory{
			NameReadline: unavailable,
			NameYaegi:    unavailable,
		}, NameReadline, NameYaegi)
		sel := &Selector{Registry: reg, Default: yields(dshell)}

		for _, name := range []string{NameYaegi, NameReadline} {
			sh, err := sel.Select(name)
			assert.Nil(t, sh)
			var nf *NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, name, nf.Name)
		}
	})

	t.Run("explicit preference picks the named shell", func(t *testing.T) {
		reg := newTestRegistry(map[string]Factory{
			NameReadline: yields(rlshell),
			NameYaegi:    yields(yshell),
			NameLua:      yields(dshell),
		}, NameReadline, NameYaegi, NameLua)
		sel := &Selector{Registry: reg, Default: unavailable}

		cases := map[string]Shell{
			NameYaegi:    yshell,
			NameReadline: rlshell,
			NameLua:      dshell,
			"YAEGI":      yshell,
		}
		for name, want := range cases {
			sh, err := sel.Select(name)
			require.NoError(t, err, name)
			assert.Same(t, want, sh, name)
		}
	})
}

func TestSelector_PriorityOverRegistrationOrder(t *testing.T) {
	rlshell := &dummyShell{name: "readline"}
	yshell := &dummyShell{name: "yaegi"}

	reg := newTestRegistry(map[string]Factory{
		NameYaegi:    yields(yshell),
		NameReadline: yields(rlshell),
	}, NameYaegi, NameReadline)
	sel := &Selector{Registry: reg}

	sh, err := sel.Select("")
	require.NoError(t, err)
	assert.Same(t, rlshell, sh)

	sel.Preferred = []string{NameYaegi}
	sh, err = sel.Select("")
	require.NoError(t, err)
	assert.Same(t, yshell, sh)
}

func TestSelector_SecondPriorityBeatsDefault(t *testing.T) {
	yshell := &dummyShell{name: "yaegi"}
	dshell := &dummyShell{name: "default"}

	reg := newTestRegistry(map[string]Factory{NameYaegi: yields(yshell)}, NameYaegi)
	sel := &Selector{Registry: reg, Default: yields(dshell)}

	sh, err := sel.Select("")
	require.NoError(t, err)
	assert.Same(t, yshell, sh)
}

func TestSelector_LowerPriorityPluginsInRegistrationOrder(t *testing.T) {
	first := &dummyShell{name: "first"}
	second := &dummyShell{name: "second"}

	reg := newTestRegistry(map[string]Factory{
		NameReadline: unavailable,
		"zz":         yields(first),
		"aa":         yields(second),
	}, NameReadline, "zz", "aa")
	sel := &Selector{Registry: reg}

	sh, err := sel.Select("")
	require.NoError(t, err)
	assert.Same(t, first, sh)
}

func TestSelector_UnknownShell(t *testing.T) {
	reg := newTestRegistry(map[string]Factory{NameLua: yields(&dummyShell{})}, NameLua)
	sel := &Selector{Registry: reg, Default: yields(&dummyShell{})}

	_, err := sel.Select("unknown_x")
	require.Error(t, err)
	assert.Equal(t, `could not find a shell named "unknown_x"`, err.Error())
}

func TestSelector_NoDefault(t *testing.T) {
	sel := &Selector{}

	_, err := sel.Select("")
	assert.True(t, errors.Is(err, ErrNoDefault))
}

func TestSelector_Available(t *testing.T) {
	reg := newTestRegistry(map[string]Factory{
		NameLua:      yields(&dummyShell{}),
		NameYaegi:    unavailable,
		NameReadline: yields(&dummyShell{}),
	}, NameLua, NameYaegi, NameReadline)
	sel := &Selector{Registry: reg}

	assert.Equal(t, []Availability{
		{Name: NameReadline, Available: true},
		{Name: NameYaegi, Available: false},
		{Name: NameLua, Available: true},
	}, sel.Available())
}

func TestFunc_Run(t *testing.T) {
	var got string
	sh := Func(func(ctx context.Context, e *env.Env, help string) error {
		got = help
		return nil
	})

	require.NoError(t, sh.Run(context.Background(), env.New(), "a help message"))
	assert.Equal(t, "a help message", got)
}

func TestIO_IsTerminal(t *testing.T) {
	s := IO{In: &bytes.Buffer{}, Out: &bytes.Buffer{}}
	assert.False(t, s.IsTerminal())
}
