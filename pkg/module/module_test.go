package module

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoModule struct {
	params *ParamSet
	runs   int
}

func newEchoModule() *echoModule {
	return &echoModule{params: NewParamSet(
		Param{Name: "range", Type: TypeString, Description: "targets"},
		Param{Name: "timeout", Type: TypeFloat, Default: 5.0},
		Param{Name: "count", Type: TypeInt, Default: 1},
		Param{Name: "verbose", Type: TypeBool, Default: false},
		Param{Name: "interface", Type: "interface", DefaultText: "<default interface>",
			DefaultFunc: func() (any, error) { return "eth0", nil },
			Parse: func(s string) (any, error) {
				if s == "missing0" {
					return nil, errors.New("no such interface")
				}
				return strings.ToUpper(s), nil
			},
		},
	)}
}

func (m *echoModule) Name() string        { return "test/echo" }
func (m *echoModule) Description() string { return "Echoes its parameters" }
func (m *echoModule) Params() *ParamSet   { return m.params }
func (m *echoModule) Run(context.Context) (bool, error) {
	m.runs++
	return true, nil
}

func TestSetCoercesByType(t *testing.T) {
	ps := newEchoModule().Params()

	require.NoError(t, ps.Set("timeout", "0.25"))
	require.NoError(t, ps.Set("count", "3"))
	require.NoError(t, ps.Set("verbose", "true"))
	require.NoError(t, ps.Set("interface", "wlan0"))

	timeout, err := ps.Seconds("timeout")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, timeout)

	count, err := ps.Int("count")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	verbose, err := ps.Bool("verbose")
	require.NoError(t, err)
	assert.True(t, verbose)

	ifc, err := ps.Value("interface")
	require.NoError(t, err)
	assert.Equal(t, "WLAN0", ifc)
}

func TestSetRejectsBadInput(t *testing.T) {
	ps := newEchoModule().Params()

	err := ps.Set("timeout", "soon")
	var coercion *CoercionError
	require.ErrorAs(t, err, &coercion)
	assert.Equal(t, "timeout", coercion.Name)
	assert.False(t, ps.IsSet("timeout"))

	require.Error(t, ps.Set("interface", "missing0"))
	require.ErrorIs(t, ps.Set("speed", "1"), ErrUnknownParam)
	require.ErrorIs(t, ps.Clear("speed"), ErrUnknownParam)
	_, err = ps.Value("speed")
	require.ErrorIs(t, err, ErrUnknownParam)
}

func TestDefaultsAndClear(t *testing.T) {
	ps := newEchoModule().Params()

	timeout, err := ps.Float64("timeout")
	require.NoError(t, err)
	assert.Equal(t, 5.0, timeout)

	ifc, err := ps.String("interface")
	require.NoError(t, err)
	assert.Equal(t, "eth0", ifc)

	require.NoError(t, ps.Set("timeout", "1.5"))
	require.NoError(t, ps.Clear("timeout"))
	timeout, err = ps.Float64("timeout")
	require.NoError(t, err)
	assert.Equal(t, 5.0, timeout)

	_, err = ps.Value("range")
	var missing *MissingParamError
	require.ErrorAs(t, err, &missing)
}

func TestInvokeRequiresParams(t *testing.T) {
	m := newEchoModule()

	ok, err := Invoke(context.Background(), m)
	assert.False(t, ok)
	var missing *MissingParamError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"range"}, missing.Names)
	assert.Zero(t, m.runs)

	require.NoError(t, m.Params().Set("range", "10.0.0.0/30"))
	ok, err = Invoke(context.Background(), m)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, m.runs)
}

func TestInfo(t *testing.T) {
	m := newEchoModule()
	require.NoError(t, m.Params().Set("range", "10.0.0.1-10.0.0.3"))

	want := "test/echo\n" +
		"Echoes its parameters\n" +
		"Options:\n" +
		"range (string): 10.0.0.1-10.0.0.3  targets\n" +
		"timeout (float): 5\n" +
		"count (int): 1\n" +
		"verbose (bool): false\n" +
		"interface (interface): <default interface>\n"
	assert.Equal(t, want, Info(m))
}

func TestRegistry(t *testing.T) {
	m := newEchoModule()
	r, err := NewRegistry(m)
	require.NoError(t, err)

	got, err := r.Get("test/echo")
	require.NoError(t, err)
	assert.Same(t, m, got)

	_, err = r.Get("test/nothing")
	require.ErrorIs(t, err, ErrUnknownModule)

	require.Error(t, r.Register(newEchoModule()), "duplicate names are rejected")
	assert.Equal(t, []string{"test/echo"}, r.Names())
}
