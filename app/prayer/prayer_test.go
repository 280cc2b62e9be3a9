package prayer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, p := range All() {
		got, err := Parse(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	got, err := Parse(" Xufton ")
	require.NoError(t, err)
	assert.Equal(t, Xufton, got)

	_, err = Parse("juma")
	assert.Error(t, err)
}

func TestOrderAndLabels(t *testing.T) {
	assert.Equal(t, []Type{Bomdod, Peshin, Asr, Shom, Xufton, Vitr}, All())
	assert.Equal(t, "Bomdod", Bomdod.Label())
}

func TestCounts(t *testing.T) {
	c := Counts{Bomdod: 3, Vitr: 2}
	assert.Equal(t, 0, c.Get(Asr))
	assert.Equal(t, 5, c.Total())
}
