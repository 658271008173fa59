package catalog_test

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbl-diagnostics/logscope/internal/catalog"
)

func TestGlobalCatalogCompiles(t *testing.T) {
	c := catalog.Global()
	require.NotNil(t, c)
	require.NotEmpty(t, c.Sets())
}

func TestPatternsForVersion(t *testing.T) {
	c := catalog.Global()

	v, err := catalog.ParseVersion("3.1.0")
	require.NoError(t, err)
	ps, err := c.PatternsForVersion(v)
	require.NoError(t, err)
	assert.Equal(t, "[3.0.0, 4.0.0)", ps.Range.String())

	_, ok := ps.EventByKey("IncomingrevReceived")
	assert.True(t, ok)
}

func TestVersionCoercionQuirk(t *testing.T) {
	v, err := catalog.ParseVersion("3.2")
	require.NoError(t, err)
	assert.Equal(t, "3.2.0", v.String())

	c := catalog.Global()
	ps, err := c.PatternsForVersion(v)
	require.NoError(t, err)
	assert.Equal(t, "[3.0.0, 4.0.0)", ps.Range.String())
}

func TestPatternsForVersionOutsideCatalog(t *testing.T) {
	c := catalog.Global()
	v := semver.MustParse("9.9.9")
	_, err := c.PatternsForVersion(v)
	assert.Error(t, err)
}

func TestEventRegistryIsStableAndSorted(t *testing.T) {
	c := catalog.Global()
	reg := c.Registry()

	id1, ok := reg.ID("IncomingrevReceived")
	require.True(t, ok)
	name, ok := reg.Name(id1)
	require.True(t, ok)
	assert.Equal(t, "IncomingrevReceived", name)

	all := reg.All()
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Name, all[i].Name)
	}
}
