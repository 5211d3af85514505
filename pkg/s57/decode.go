package s57

import (
	"encoding/binary"
	"fmt"

	"github.com/frye/s57enc/internal/catalog"
	"github.com/frye/s57enc/internal/diagnostics"
)

// Vector record type codes carried in VRID's record-name subfield and
// packed into FSPT's NAME composite (see decodeFSPT). Grounded on the
// teacher's spatialType constants.
const (
	recordIsolatedNode = 110
	recordConnectedNode = 120
	recordEdge          = 130
	recordFace          = 140
)

// DatasetParams holds the per-dataset coordinate/sounding multipliers and
// datum codes decoded from DSPM, with spec-mandated defaults when DSPM is
// absent or invalid.
type DatasetParams struct {
	COMF int32
	SOMF int32
	HDAT int
	VDAT int
	SDAT int
	CSCL int32
	COUN int
}

// defaultDatasetParams returns the spec's stated fallback multipliers: COMF
// 10,000,000 and SOMF 100. The teacher's own defaultDatasetParams falls
// back to a SOMF of 10, which this module does not carry over.
func defaultDatasetParams() DatasetParams {
	return DatasetParams{COMF: 10_000_000, SOMF: 100}
}

// DatasetIdentity holds the producer/edition/cell-name fields decoded from
// DSID, used to validate that update files target the same cell as the
// base file they extend.
type DatasetIdentity struct {
	CellName string
	Edition  string
	Producer uint16
}

// decodeDSID extracts a small set of ASCII, 0x1F-delimited subfields from a
// DSID field: cell name (subfield 0), edition (1) and producer agency (3);
// subfield 2 (the update number) is skipped. The
// spec leaves DSID's exact binary layout unspecified ("DSID extraction is
// incomplete"); this decoder reads DSNM/EDTN/AGEN as delimiter-terminated
// ASCII fields in field order, which is sufficient for cell-name identity
// checks and does not need DSPM's numeric multipliers.
func decodeDSID(b []byte) DatasetIdentity {
	parts := splitSubfields(b)
	get := func(i int) string {
		if i < len(parts) {
			return trimASCII(parts[i])
		}
		return ""
	}
	var agen uint16
	if a, ok := parseInt(get(3)); ok {
		agen = uint16(a)
	}
	return DatasetIdentity{
		CellName: get(0),
		Edition:  get(1),
		Producer: agen,
	}
}

func splitSubfields(b []byte) [][]byte {
	var parts [][]byte
	start := 0
	for i, c := range b {
		if c == subfieldDelimiter {
			parts = append(parts, b[start:i])
			start = i + 1
		}
	}
	if start < len(b) {
		parts = append(parts, b[start:])
	}
	return parts
}

const subfieldDelimiter = 0x1F

// decodeDSPM reads the dataset parameter record, grounded on the teacher's
// fixed-offset layout, with the corrected SOMF default (100, not 10).
func decodeDSPM(b []byte) DatasetParams {
	params := defaultDatasetParams()
	if len(b) < 1 || b[0] != 20 {
		return params
	}
	if len(b) < 17 {
		return params
	}
	params.HDAT = int(b[5])
	params.VDAT = int(b[6])
	params.SDAT = int(b[7])
	cscl := int32(binary.LittleEndian.Uint32(b[8:12]))
	if cscl > 0 {
		params.CSCL = cscl
	}
	if len(b) >= 16 {
		params.COUN = int(b[15])
	}
	if len(b) >= 24 {
		comf := int32(binary.LittleEndian.Uint32(b[16:20]))
		if comf > 0 {
			params.COMF = comf
		}
		somf := int32(binary.LittleEndian.Uint32(b[20:24]))
		if somf > 0 {
			params.SOMF = somf
		}
	}
	return params
}

// FRIDFields is the fixed 12-byte feature-record identity portion of FRID.
type FRIDFields struct {
	RCNM byte
	RCID uint32
	PRIM byte
	GRUP byte
	OBJL uint16
	RVER uint16
	RUIN byte
}

func decodeFRID(b []byte, coll *diagnostics.Collector) (FRIDFields, error) {
	if len(b) < 12 {
		if err := warn(coll, diagnostics.SubfieldParse, diagnostics.Warn,
			fmt.Sprintf("FRID field too short: %d bytes", len(b)), "", ""); err != nil {
			return FRIDFields{}, err
		}
		return FRIDFields{}, nil
	}
	return FRIDFields{
		RCNM: b[0],
		RCID: binary.LittleEndian.Uint32(b[1:5]),
		PRIM: b[5],
		GRUP: b[6],
		OBJL: binary.LittleEndian.Uint16(b[7:9]),
		RVER: binary.LittleEndian.Uint16(b[9:11]),
		RUIN: b[11],
	}, nil
}

// FOID identifies a feature uniquely: agency, feature id, subdivision. Its
// canonical string form is "agency_featureId_subdivision".
type FOID struct {
	Agency      uint16
	FeatureID   uint32
	Subdivision uint16
}

func (f FOID) String() string {
	return fmt.Sprintf("%d_%d_%d", f.Agency, f.FeatureID, f.Subdivision)
}

func decodeFOID(b []byte, coll *diagnostics.Collector) (FOID, error) {
	if len(b) < 8 {
		if err := warn(coll, diagnostics.SubfieldParse, diagnostics.Warn,
			fmt.Sprintf("FOID field too short: %d bytes", len(b)), "", ""); err != nil {
			return FOID{}, err
		}
		return FOID{}, nil
	}
	return FOID{
		Agency:      binary.LittleEndian.Uint16(b[0:2]),
		FeatureID:   binary.LittleEndian.Uint32(b[2:6]),
		Subdivision: binary.LittleEndian.Uint16(b[6:8]),
	}, nil
}

// decodeATTF reads repeated 6-byte (ATTL u16, ATNV 4-byte ASCII) tuples,
// terminated by an ATTL sentinel of 0x2020 or the buffer end, coercing each
// ATNV through the catalog's declared type when the code is registered.
func decodeATTF(b []byte, cat *catalog.Catalog, coll *diagnostics.Collector, featureID string) (map[string]Value, error) {
	attrs := make(map[string]Value)
	i := 0
	terminated := false
	for i+2 <= len(b) {
		code := binary.LittleEndian.Uint16(b[i : i+2])
		if code == 0x2020 {
			terminated = true
			break
		}
		if i+6 > len(b) {
			break
		}
		raw := trimASCII(b[i+2 : i+6])
		i += 6

		def, known := cat.AttributeByCode(code)
		key := fmt.Sprintf("ATTR_%d", code)
		var val Value
		if known {
			key = def.Acronym
			val = coerceTyped(raw, def)
		} else {
			val = coerceScalar(raw)
		}
		attrs[key] = val
	}
	if !terminated && i < len(b) {
		if err := warn(coll, diagnostics.SubfieldParse, diagnostics.Warn,
			fmt.Sprintf("%d trailing bytes in ATTF do not form a full tuple", len(b)-i), "", featureID); err != nil {
			return attrs, err
		}
	}
	return attrs, nil
}

// coerceTyped applies the catalog's declared type for a known attribute:
// enum resolves against the domain (preserving the raw code alongside the
// label); everything else still tries int, then float, then string, so a
// catalog type mismatch against the actual bytes degrades gracefully.
func coerceTyped(raw string, def catalog.AttributeDef) Value {
	if def.Type == catalog.AttrEnum {
		label, ok := def.Domain[raw]
		return EnumValue(raw, label, ok)
	}
	return coerceScalar(raw)
}

// decodeFSPT reads repeated 7-byte (NAME u32, ORNT u8, USAG u8, MASK u8)
// tuples. NAME packs a record-type byte in its high bits and the record id
// in the low 24 bits (this module's convention for the otherwise
// unstructured u32 NAME field, echoing the AGEN+FIDN+FIDS composite used
// elsewhere in S-57 for LNAM).
func decodeFSPT(b []byte) []SpatialPointer {
	const stride = 7
	var out []SpatialPointer
	for i := 0; i+stride <= len(b); i += stride {
		name := binary.LittleEndian.Uint32(b[i : i+4])
		ornt := b[i+4]
		recType := byte(name >> 24)
		id := int64(name & 0x00FFFFFF)
		out = append(out, SpatialPointer{
			ID:      id,
			IsEdge:  recType == recordEdge,
			Reverse: ornt == 2,
		})
	}
	return out
}

// FeatureLink is a decoded FFPT tuple: a foreign feature reference plus a
// relationship indicator and optional comment, resolved lazily through the
// Feature Store (never dereferenced directly, per spec §9).
type FeatureLink struct {
	Target FOID
	RIND   byte
	Note   string
}

func decodeFFPT(b []byte) []FeatureLink {
	var out []FeatureLink
	i := 0
	for i+9 <= len(b) {
		target := FOID{
			Agency:      binary.LittleEndian.Uint16(b[i : i+2]),
			FeatureID:   binary.LittleEndian.Uint32(b[i+2 : i+6]),
			Subdivision: binary.LittleEndian.Uint16(b[i+6 : i+8]),
		}
		rind := b[i+8]
		i += 9
		note := ""
		end := i
		for end < len(b) && b[end] != subfieldDelimiter && b[end] != fieldTerminatorByte {
			end++
		}
		if end > i {
			note = trimASCII(b[i:end])
		}
		if end < len(b) && b[end] == subfieldDelimiter {
			end++
		}
		i = end
		out = append(out, FeatureLink{Target: target, RIND: rind, Note: note})
	}
	return out
}

const fieldTerminatorByte = 0x1E

// VRIDFields identifies a vector primitive record: its record type (node or
// edge kind per the record* constants), id, version, and update indicator.
type VRIDFields struct {
	RCNM byte
	RCID int64
	RVER uint16
	RUIN byte
}

func decodeVRID(b []byte) (VRIDFields, bool) {
	if len(b) < 8 {
		return VRIDFields{}, false
	}
	return VRIDFields{
		RCNM: b[0],
		RCID: int64(binary.LittleEndian.Uint32(b[1:5])),
		RVER: binary.LittleEndian.Uint16(b[5:7]),
		RUIN: b[7],
	}, true
}

// decodeSG2D reads repeated 8-byte (x, y int32) pairs, dividing by COMF.
// Per the worked spec example, x is longitude and y is latitude.
func decodeSG2D(b []byte, comf int32) []Coordinate {
	const stride = 8
	var out []Coordinate
	for i := 0; i+stride <= len(b); i += stride {
		x := int32(binary.LittleEndian.Uint32(b[i : i+4]))
		y := int32(binary.LittleEndian.Uint32(b[i+4 : i+8]))
		out = append(out, Coordinate{
			Lon: float64(x) / float64(comf),
			Lat: float64(y) / float64(comf),
		})
	}
	return out
}

// Sounding3D is an SG3D point with a depth value.
type Sounding3D struct {
	Coordinate
	Depth float64
}

func decodeSG3D(b []byte, comf, somf int32) []Sounding3D {
	const stride = 12
	var out []Sounding3D
	for i := 0; i+stride <= len(b); i += stride {
		x := int32(binary.LittleEndian.Uint32(b[i : i+4]))
		y := int32(binary.LittleEndian.Uint32(b[i+4 : i+8]))
		z := int32(binary.LittleEndian.Uint32(b[i+8 : i+12]))
		out = append(out, Sounding3D{
			Coordinate: Coordinate{
				Lon: float64(x) / float64(comf),
				Lat: float64(y) / float64(comf),
			},
			Depth: float64(z) / float64(somf),
		})
	}
	return out
}
