package doctor

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"soundviz/audio"
)

func fakeEnv(t *testing.T, ctx audio.Context, playerctl bool) (Env, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return Env{
		NewContext: func() (audio.Context, error) { return ctx, nil },
		LookPath: func(string) (string, error) {
			if playerctl {
				return "/usr/bin/playerctl", nil
			}
			return "", errors.New("not found")
		},
		Root: t.TempDir(),
		Out:  &out,
	}, &out
}

func TestDoctorPass(t *testing.T) {
	fc := audio.NewFakeContext(
		audio.FakeDevice{Info: audio.DeviceInfo{ID: "mic", Name: "Built-in Mic"}},
		audio.FakeDevice{Info: audio.DeviceInfo{ID: "mon", Name: "Monitor of Speakers", Monitor: true}, Signal: audio.Constant(0.25)},
	)
	env, out := fakeEnv(t, fc, true)

	assert.Equal(t, 0, Run(context.Background(), env))
	assert.Contains(t, out.String(), "Monitor of Speakers (monitor)")
	assert.Contains(t, out.String(), "peak 0.250")
	assert.Contains(t, out.String(), "All checks passed!")
}

func TestDoctorNoDevices(t *testing.T) {
	env, out := fakeEnv(t, audio.NewFakeContext(), true)

	assert.Equal(t, 1, Run(context.Background(), env))
	assert.Contains(t, out.String(), "no capture devices found")
}

func TestDoctorMissingPlayerctlWarns(t *testing.T) {
	fc := audio.NewFakeContext(audio.FakeDevice{Info: audio.DeviceInfo{ID: "mic", Name: "Mic"}})
	env, out := fakeEnv(t, fc, false)

	assert.Equal(t, 0, Run(context.Background(), env))
	assert.Contains(t, out.String(), "playerctl not found")
	assert.Contains(t, out.String(), "no monitor sources")
}

func TestDoctorUnwritableRoot(t *testing.T) {
	fc := audio.NewFakeContext(audio.FakeDevice{Info: audio.DeviceInfo{ID: "mic", Name: "Mic"}})
	env, out := fakeEnv(t, fc, true)
	env.Root = filepath.Join(env.Root, "missing", "dir")

	assert.Equal(t, 1, Run(context.Background(), env))
	assert.Contains(t, out.String(), "is not writable")
}

func TestDoctorContextError(t *testing.T) {
	env, out := fakeEnv(t, nil, true)
	env.NewContext = func() (audio.Context, error) { return nil, errors.New("pulse down") }

	assert.Equal(t, 1, Run(context.Background(), env))
	assert.Contains(t, out.String(), "pulse down")
}
