package glyph

import (
	"math"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blocks(t *testing.T) Theme {
	t.Helper()
	th, err := Lookup("blocks")
	require.NoError(t, err)
	return th
}

func TestBlocksWaveSilence(t *testing.T) {
	th := blocks(t)
	require.Len(t, th, 8)
	assert.Equal(t, 3, Index(len(th), ModeWave, 0, 1))
	assert.Equal(t, '▄', Map(th, ModeWave, 0, 1))
}

func TestWaveBoundaries(t *testing.T) {
	th := blocks(t)
	assert.Equal(t, ' ', Map(th, ModeWave, -1, 1))
	assert.Equal(t, '█', Map(th, ModeWave, 1, 1))
	// gain saturates both ends
	assert.Equal(t, ' ', Map(th, ModeWave, -0.5, 10))
	assert.Equal(t, '█', Map(th, ModeWave, 0.5, 10))
}

func TestWaveMatchesFormula(t *testing.T) {
	for _, n := range []int{5, 8} {
		for _, g := range []float64{1, 2.5, 6} {
			for v := -1.0; v <= 1.0; v += 0.05 {
				level := math.Min(math.Max((v*g+1)/2, 0), 1)
				want := int(math.Floor(level * float64(n-1)))
				assert.Equal(t, want, Index(n, ModeWave, v, g), "n=%d g=%v v=%v", n, g, v)
			}
		}
	}
}

func TestAbsSymmetric(t *testing.T) {
	th := blocks(t)
	for _, v := range []float64{0, 0.01, 0.1, 0.3, 0.9, 2} {
		assert.Equal(t, Map(th, ModeAbs, v, 6), Map(th, ModeAbs, -v, 6), "v=%v", v)
	}
	assert.Equal(t, ' ', Map(th, ModeAbs, 0, 6))
	assert.Equal(t, '█', Map(th, ModeAbs, -1, 1))
}

func TestLevelNaN(t *testing.T) {
	assert.Equal(t, 0.0, Level(ModeWave, math.NaN(), 1))
}

func TestRenderStride(t *testing.T) {
	th := blocks(t)
	samples := make([]float32, 128)
	for i := range samples {
		if i%8 == 0 {
			samples[i] = 1
		} else {
			samples[i] = -1
		}
	}
	out := Render(th, ModeWave, 1, samples, 16)
	assert.Equal(t, 16, utf8.RuneCountInString(out))
	assert.Equal(t, "████████████████", out)
}

func TestRenderShortBlock(t *testing.T) {
	th := blocks(t)
	out := Render(th, ModeWave, 1, []float32{0, 0, 0}, 16)
	assert.Equal(t, 3, utf8.RuneCountInString(out))
	assert.Empty(t, Render(th, ModeWave, 1, nil, 16))
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("stars")
	assert.Error(t, err)
	assert.Equal(t, []string{"blocks", "braille", "lines"}, Names())
}
