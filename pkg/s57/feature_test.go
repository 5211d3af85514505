package s57

import (
	"testing"

	"github.com/frye/s57enc/internal/catalog"
	"github.com/frye/s57enc/internal/diagnostics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load(
		[]catalog.ObjectClass{
			{Code: 42, Acronym: "DEPARE", Name: "Depth Area"},
			{Code: 129, Acronym: "SOUNDG", Name: "Sounding"},
		},
		[]catalog.AttributeDef{
			{Code: 1, Acronym: "OBJNAM", Type: catalog.AttrString, Name: "Object Name"},
			{Code: 2, Acronym: "DRVAL1", Type: catalog.AttrFloat, Name: "Depth Range Value 1"},
			{Code: 3, Acronym: "VALSOU", Type: catalog.AttrFloat, Name: "Value of Sounding"},
		},
	)
	require.NoError(t, err)
	return cat
}

func testFOID(id uint32) FOID { return FOID{Agency: 550, FeatureID: id, Subdivision: 0} }

// storeWithNode returns a PrimitiveStore containing a single resolvable node
// at id 1, so a feature's Pointers can reference real geometry and the
// dangling-pointer warning doesn't confound attribute/label assertions.
func storeWithNode() *PrimitiveStore {
	store := NewPrimitiveStore()
	store.PutNode(Node{ID: 1, Coord: Coordinate{Lat: 47.64, Lon: -122.34}})
	return store
}

var nodePointer = []SpatialPointer{{ID: 1}}

func TestBuildFeature_MissingRequiredAttrEmitsWarning(t *testing.T) {
	cat := testCatalog(t)
	coll := newTestCollector(false, -1)
	in := featureInput{RecordID: "1", FOID: testFOID(1), OBJL: 42, RVER: 1, Pointers: nodePointer}

	f, err := buildFeature(in, cat, storeWithNode(), coll)
	require.NoError(t, err)
	assert.Equal(t, "DEPARE", f.ObjectClass.Acronym)
	assert.Equal(t, 1, coll.Count(diagnostics.Warn))
}

func TestBuildFeature_RequiredAttrPresentRaisesNoWarning(t *testing.T) {
	cat := testCatalog(t)
	coll := newTestCollector(false, -1)
	in := featureInput{
		RecordID: "1", FOID: testFOID(1), OBJL: 42, RVER: 1, Pointers: nodePointer,
		Attributes: map[string]Value{"DRVAL1": FloatValue(5)},
	}

	_, err := buildFeature(in, cat, storeWithNode(), coll)
	require.NoError(t, err)
	assert.Equal(t, 0, coll.Count(diagnostics.Warn))
}

func TestBuildFeature_UnknownObjectClassStillProducesFeature(t *testing.T) {
	cat := testCatalog(t)
	coll := newTestCollector(false, -1)
	in := featureInput{RecordID: "1", FOID: testFOID(1), OBJL: 9999, RVER: 1, Pointers: nodePointer}

	f, err := buildFeature(in, cat, storeWithNode(), coll)
	require.NoError(t, err)
	assert.False(t, f.ObjectKnown)
	assert.Equal(t, "OBJL_9999", f.ObjectClass.Acronym)
	assert.Equal(t, 1, coll.Count(diagnostics.Warn))
}

func TestBuildFeature_DepthOutOfRangeEmitsInfo(t *testing.T) {
	cat := testCatalog(t)
	coll := newTestCollector(false, -1)
	in := featureInput{
		RecordID: "1", FOID: testFOID(2), OBJL: 129, RVER: 1, Pointers: nodePointer,
		Attributes: map[string]Value{"VALSOU": FloatValue(20000)},
	}

	_, err := buildFeature(in, cat, storeWithNode(), coll)
	require.NoError(t, err)
	assert.Equal(t, 1, coll.Count(diagnostics.Info))
}

func TestBuildFeature_LabelPrefersOBJNAM(t *testing.T) {
	cat := testCatalog(t)
	coll := newTestCollector(false, -1)
	in := featureInput{
		RecordID: "1", FOID: testFOID(3), OBJL: 42, RVER: 1, Pointers: nodePointer,
		Attributes: map[string]Value{"OBJNAM": StringValue("Elliott Bay"), "DRVAL1": FloatValue(5)},
	}

	f, err := buildFeature(in, cat, storeWithNode(), coll)
	require.NoError(t, err)
	assert.Equal(t, "Elliott Bay", f.Label)
}

func TestBuildFeature_LabelFallsBackToObjectClassName(t *testing.T) {
	cat := testCatalog(t)
	coll := newTestCollector(false, -1)
	in := featureInput{
		RecordID: "1", FOID: testFOID(4), OBJL: 42, RVER: 1, Pointers: nodePointer,
		Attributes: map[string]Value{"DRVAL1": FloatValue(1)},
	}

	f, err := buildFeature(in, cat, storeWithNode(), coll)
	require.NoError(t, err)
	assert.Equal(t, "Depth Area", f.Label)
}

func TestFeature_KeyUsesFOIDWhenKnown(t *testing.T) {
	f := Feature{RecordID: "7", FOID: testFOID(9), FOIDKnown: true}
	assert.Equal(t, "550_9_0", f.Key())
}

func TestFeature_KeyFallsBackToRecordIDWhenFOIDAbsent(t *testing.T) {
	f := Feature{RecordID: "7", FOIDKnown: false}
	assert.Equal(t, "rec_7", f.Key())
}
