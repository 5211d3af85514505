package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBundled_LoadsBundledData(t *testing.T) {
	cat, err := LoadBundled()
	require.NoError(t, err)
	require.NotNil(t, cat)

	lights, ok := cat.ObjectClassByCode(75)
	require.True(t, ok)
	assert.Equal(t, "LIGHTS", lights.Acronym)

	depare, ok := cat.ObjectClassByCode(42)
	require.True(t, ok)
	assert.Equal(t, "DEPARE", depare.Acronym)
}

func TestObjectClassByCode_UnknownReturnsGeneric(t *testing.T) {
	cat, err := LoadBundled()
	require.NoError(t, err)

	oc, ok := cat.ObjectClassByCode(999999)
	assert.False(t, ok)
	assert.Equal(t, uint32(999999), oc.Code)
	assert.Equal(t, "OBJL_999999", oc.Acronym)
}

func TestAttributeByAcronym_ResolvesTypeAndDomain(t *testing.T) {
	cat, err := LoadBundled()
	require.NoError(t, err)

	drval1, ok := cat.AttributeByAcronym("DRVAL1")
	require.True(t, ok)
	assert.Equal(t, AttrFloat, drval1.Type)

	catboy, ok := cat.AttributeByAcronym("CATBOY")
	require.True(t, ok)
	assert.Equal(t, AttrEnum, catboy.Type)
	assert.Equal(t, "pillar", catboy.Domain["4"])
}

func TestAttributeByAcronym_UnknownIsFalse(t *testing.T) {
	cat, err := LoadBundled()
	require.NoError(t, err)

	_, ok := cat.AttributeByAcronym("NOT_A_REAL_ATTR")
	assert.False(t, ok)
}

func TestAttributeByCode_MatchesAcronymLookup(t *testing.T) {
	cat, err := LoadBundled()
	require.NoError(t, err)

	byAcro, ok := cat.AttributeByAcronym("HEIGHT")
	require.True(t, ok)

	byCode, ok := cat.AttributeByCode(byAcro.Code)
	require.True(t, ok)
	assert.Equal(t, byAcro.Acronym, byCode.Acronym)
}

func TestLoad_BuildsIndependentCatalog(t *testing.T) {
	classes := []ObjectClass{{Code: 1, Acronym: "TESTCL", Name: "Test class"}}
	attrs := []AttributeDef{{Code: 1, Acronym: "TESTAT", Type: AttrInt, Name: "Test attr"}}

	cat, err := Load(classes, attrs)
	require.NoError(t, err)

	oc, ok := cat.ObjectClassByCode(1)
	require.True(t, ok)
	assert.Equal(t, "TESTCL", oc.Acronym)

	_, ok = cat.ObjectClassByCode(75)
	assert.False(t, ok, "a custom-loaded catalog should not see the bundled LIGHTS entry")
}
