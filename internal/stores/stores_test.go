package stores

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll(t *testing.T) {
	all := All()
	require.Len(t, all, 5)

	assert.True(t, all[0].HQ)
	assert.Equal(t, "Trekking Gurus.zoo headquarters", all[0].Name)
	assert.Equal(t, 51.1079, all[0].Latitude)
	assert.Equal(t, 17.0595, all[0].Longitude)

	for _, l := range all[1:] {
		assert.False(t, l.HQ)
	}

	// Callers must not be able to mutate the shared slice.
	all[0].Name = "mutated"
	assert.Equal(t, "Trekking Gurus.zoo headquarters", All()[0].Name)
}

func TestFind(t *testing.T) {
	l, ok := Find("store 2")
	require.True(t, ok)
	assert.Equal(t, 51.1090, l.Latitude)
	assert.Equal(t, 17.0610, l.Longitude)

	_, ok = Find("Store 9")
	assert.False(t, ok)
}
