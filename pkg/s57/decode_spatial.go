package s57

import "encoding/binary"

// decodeVRPT reads repeated 9-byte (RCNM u8, RCID u32, ORNT u8, USAG u8,
// TOPI u8, MASK u8) vector-pointer tuples from an edge's VRID record. Not
// itemized among spec §4.3's "representative" tag decoders, but required
// to resolve an edge's start/end nodes; grounded on the teacher's
// parseVectorPointers (internal/parser/spatial.go).
type vectorPointer struct {
	RCNM int
	RCID int64
}

func decodeVRPT(b []byte) []vectorPointer {
	const stride = 9
	var out []vectorPointer
	for i := 0; i+stride <= len(b); i += stride {
		out = append(out, vectorPointer{
			RCNM: int(b[i]),
			RCID: int64(binary.LittleEndian.Uint32(b[i+1 : i+5])),
		})
	}
	return out
}
