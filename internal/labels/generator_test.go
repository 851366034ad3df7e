package labels

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Label(t *testing.T) {
	tests := []struct {
		name  string
		dims  int
		k     int
		word  string
		wantK int
	}{
		{name: "even k", dims: 8000, k: 8, word: "cat", wantK: 8},
		{name: "odd k rounds up", dims: 100, k: 3, word: "dog", wantK: 4},
		{name: "k equals dims", dims: 6, k: 6, word: "tight", wantK: 6},
		{name: "empty word", dims: 500, k: 10, word: "", wantK: 10},
		{name: "unicode word", dims: 1000, k: 4, word: "日本語", wantK: 4},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := NewGenerator(test.dims, test.k)
			require.NoError(t, g.Initialize())

			v, err := g.Label(test.word)
			require.NoError(t, err)
			assert.Equal(t, test.dims, v.Dims())
			assert.Equal(t, test.wantK, v.Count())

			var pos, neg int
			for _, e := range v.Elements() {
				assert.GreaterOrEqual(t, e.Index, 0)
				assert.Less(t, e.Index, test.dims)
				switch e.Value {
				case 1:
					pos++
				case -1:
					neg++
				default:
					t.Errorf("unexpected value %v", e.Value)
				}
			}
			assert.Equal(t, test.wantK/2, pos)
			assert.Equal(t, test.wantK/2, neg)

			again, err := g.Label(test.word)
			require.NoError(t, err)
			assert.True(t, again.Equal(v), "labels must be deterministic")
		})
	}
}

func TestGenerator_DistinctWordsDiffer(t *testing.T) {
	g := NewGenerator(8000, 8)
	a, err := g.Label("apple")
	require.NoError(t, err)
	b, err := g.Label("apples")
	require.NoError(t, err)
	assert.False(t, a.Equal(b))
}

func TestGenerator_MagnitudeOfK4(t *testing.T) {
	v, err := Generate(1000, 4, "magnitude")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v.Magnitude())
}

func TestGenerator_AddSubtractExact(t *testing.T) {
	g := NewGenerator(200, 16)
	a, err := g.Label("left")
	require.NoError(t, err)
	b, err := g.Label("right")
	require.NoError(t, err)

	sum, err := a.Add(b)
	require.NoError(t, err)
	back, err := sum.Subtract(b)
	require.NoError(t, err)
	assert.True(t, back.Equal(a))
}

func TestGenerator_LabelAt(t *testing.T) {
	g := NewGenerator(1000, 8)
	want, err := g.Label("quick")
	require.NoError(t, err)

	got, err := g.LabelAt("the quick fox", 4, 5)
	require.NoError(t, err)
	assert.True(t, got.Equal(want))

	// clamped past the end of the source
	tail, err := g.LabelAt("the quick fox", 10, 50)
	require.NoError(t, err)
	fox, err := g.Label("fox")
	require.NoError(t, err)
	assert.True(t, tail.Equal(fox))

	fn := g.Func()
	viaFunc, err := fn("quick")
	require.NoError(t, err)
	assert.True(t, viaFunc.Equal(want))
}

func TestGenerator_SourceFunc(t *testing.T) {
	g := NewGenerator(1000, 8)
	at := g.SourceFunc("the cat sat", 3)

	for start, word := range map[int]string{0: "the", 4: "cat", 8: "sat"} {
		want, err := g.Label(word)
		require.NoError(t, err)
		got, err := at(start)
		require.NoError(t, err)
		assert.True(t, got.Equal(want), "start=%d", start)
	}

	// clamped at the end of the source
	tail, err := at(9)
	require.NoError(t, err)
	at2, err := g.Label("at")
	require.NoError(t, err)
	assert.True(t, tail.Equal(at2))
}

func TestGenerator_Initialize(t *testing.T) {
	assert.Error(t, NewGenerator(0, 2).Initialize())
	assert.True(t, errors.Is(NewGenerator(4, 6).Initialize(), ErrTooManyEntries))
	assert.NoError(t, NewGenerator(4, 4).Initialize())

	_, err := NewGenerator(4, 6).Label("x")
	assert.ErrorIs(t, err, ErrTooManyEntries)
}

func TestGenerator_Empty(t *testing.T) {
	e := NewGenerator(64, 4).Empty()
	assert.Equal(t, 64, e.Dims())
	assert.Equal(t, 0, e.Count())
}
