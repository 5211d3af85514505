package s57

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The following constants and buildRecord mirror internal/iso8211's own test
// record builder (record_builder_test.go), widened to 4-byte tags since S-57
// field tags (DSID, FRID, FOID, ...) aren't single characters. Kept local to
// this package's tests rather than exported from iso8211, since no
// production code needs to construct records — only these tests do.
const (
	isoLeaderSize       = 24
	isoFieldTerminator  = 0x1E
)

type recField struct {
	tag   string
	value []byte
}

func buildISORecord(ddr bool, fields []recField) []byte {
	const (
		tagW = 4
		lenW = 3
		posW = 4
	)
	dirEntryWidth := tagW + lenW + posW
	dirSize := len(fields)*dirEntryWidth + 1
	baseAddress := isoLeaderSize + dirSize

	var fieldArea []byte
	positions := make([]int, len(fields))
	for i, f := range fields {
		positions[i] = len(fieldArea)
		fieldArea = append(fieldArea, f.value...)
		fieldArea = append(fieldArea, isoFieldTerminator)
	}

	recordLength := baseAddress + len(fieldArea)

	id := byte('L')
	if !ddr {
		id = 'D'
	}

	buf := make([]byte, 0, recordLength)
	buf = append(buf, []byte(fmt.Sprintf("%05d", recordLength))...)
	buf = append(buf, '3')
	buf = append(buf, id)
	buf = append(buf, '1')
	buf = append(buf, []byte(fmt.Sprintf("%05d", baseAddress))...)
	buf = append(buf, []byte("   ")...)
	buf = append(buf, []byte(fmt.Sprintf("%d", lenW))...)
	buf = append(buf, []byte(fmt.Sprintf("%d", posW))...)
	buf = append(buf, '0')
	buf = append(buf, []byte(fmt.Sprintf("%d", tagW))...)
	buf = append(buf, []byte("    ")...)

	for i, f := range fields {
		tag := fmt.Sprintf("%-4s", f.tag)
		buf = append(buf, []byte(tag)...)
		buf = append(buf, []byte(fmt.Sprintf("%0*d", lenW, len(f.value)+1))...)
		buf = append(buf, []byte(fmt.Sprintf("%0*d", posW, positions[i]))...)
	}
	buf = append(buf, isoFieldTerminator)
	buf = append(buf, fieldArea...)
	return buf
}

func TestParse_MinimalPointFeature(t *testing.T) {
	ddr := buildISORecord(true, []recField{{tag: "0000", value: []byte("x")}})

	var frid []byte
	frid = append(frid, 1)
	frid = append(frid, u32le(1)...)
	frid = append(frid, 1, 0)
	frid = append(frid, u16le(129)...) // SOUNDG
	frid = append(frid, u16le(1)...)
	frid = append(frid, 1) // RUIN insert

	foid := append(append(u16le(550), u32le(1)...), u16le(0)...)

	var fspt []byte
	name := uint32(recordIsolatedNode)<<24 | uint32(1)
	fspt = append(fspt, u32le(name)...)
	fspt = append(fspt, 1, 0, 0)

	featureRec := buildISORecord(false, []recField{
		{tag: "FRID", value: frid},
		{tag: "FOID", value: foid},
		{tag: "FSPT", value: fspt},
	})

	vrid := append([]byte{}, byte(recordIsolatedNode))
	vrid = append(vrid, u32le(1)...)
	vrid = append(vrid, u16le(1)...)
	vrid = append(vrid, 1)

	var sg2d []byte
	sg2d = append(sg2d, u32le(uint32(int32(-1223400000)))...)
	sg2d = append(sg2d, u32le(uint32(int32(476400000)))...)

	nodeRec := buildISORecord(false, []recField{
		{tag: "VRID", value: vrid},
		{tag: "SG2D", value: sg2d},
	})

	data := append(append(append([]byte{}, ddr...), nodeRec...), featureRec...)

	sess, err := Parse(data, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, sess.Features.Len())

	f := sess.Features.All()[0]
	assert.Equal(t, "SOUNDG", f.ObjectClass.Acronym)
	assert.Equal(t, GeomPoint, f.Geometry.Kind)
	assert.InDelta(t, -122.34, f.Geometry.Point.Lon, 1e-6)
	assert.InDelta(t, 47.64, f.Geometry.Point.Lat, 1e-6)
}

func TestParse_TooShortDDRIsFatal(t *testing.T) {
	_, err := Parse([]byte("short"), Options{Strict: true})
	assert.Error(t, err)
}
