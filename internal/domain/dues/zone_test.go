package dues

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoneDirectory(t *testing.T) {
	zones, err := NewZoneDirectory("Umum", map[string]string{"Blok  A": "Timur"})
	require.NoError(t, err)

	assert.Equal(t, Zone("timur"), zones.Resolve("Timur"))
	assert.Equal(t, Zone("timur"), zones.Resolve("  TIMUR "))
	assert.Equal(t, Zone("timur"), zones.Resolve("blok a"))
	assert.Equal(t, Zone("umum"), zones.Resolve(""))
	assert.Equal(t, Zone("umum"), zones.Resolve("   "))
	assert.Equal(t, Zone("barat daya"), zones.Resolve("Barat   Daya"))

	assert.True(t, zones.Scope("ALL").IsAll())
	assert.True(t, zones.Scope(" all ").IsAll())
	assert.Equal(t, NamedZone("timur"), zones.Scope("Blok A"))
	assert.Equal(t, NamedZone("umum"), zones.Scope(""))
}

func TestZoneDirectoryRejectsBlankDefault(t *testing.T) {
	_, err := NewZoneDirectory("  ", nil)
	assert.Error(t, err)

	_, err = NewZoneDirectory("umum", map[string]string{"x": " "})
	assert.Error(t, err)
}

func TestZoneScopeCovers(t *testing.T) {
	assert.True(t, AllZones().Covers("timur"))
	assert.True(t, NamedZone("timur").Covers("timur"))
	assert.False(t, NamedZone("timur").Covers("barat"))
	assert.Equal(t, "ALL", AllZones().String())
}
