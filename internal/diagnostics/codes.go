// Package diagnostics implements the warning/strict-mode subsystem that
// threads through every stage of S-57 parsing: the ISO 8211 reader, the
// field decoder, the geometry assembler, and the update pipeline all report
// through a single Collector instead of returning ad-hoc errors.
package diagnostics

// Code identifies a kind of parse diagnostic. The set is closed: every
// value a Collector ever sees must be one of the constants below.
type Code string

// Closed warning code set, grouped by the stage that raises them.
const (
	// ISO 8211 container reader.
	LeaderLenMismatch    Code = "LEADER_LEN_MISMATCH"
	BadBaseAddr          Code = "BAD_BASE_ADDR"
	DirTruncated         Code = "DIR_TRUNCATED"
	FieldBounds          Code = "FIELD_BOUNDS"
	SubfieldParse        Code = "SUBFIELD_PARSE"
	LeaderTruncated      Code = "LEADER_TRUNCATED"
	FieldLenMismatch     Code = "FIELD_LEN_MISMATCH"
	MissingFieldTerm     Code = "MISSING_FIELD_TERM"
	InvalidSubfieldDelim Code = "INVALID_SUBFIELD_DELIM"

	// Geometry assembler / primitive store.
	DanglingPointer    Code = "DANGLING_POINTER"
	CoordCountMismatch Code = "COORD_COUNT_MISMATCH"
	DegenerateEdge     Code = "DEGENERATE_EDGE"
	PolygonClosedAuto  Code = "POLYGON_CLOSED_AUTO"

	// Feature builder / validator.
	EmptyRequiredField  Code = "EMPTY_REQUIRED_FIELD"
	InvalidRuinCode     Code = "INVALID_RUIN_CODE"
	UnknownObjCode      Code = "UNKNOWN_OBJ_CODE"
	MissingRequiredAttr Code = "MISSING_REQUIRED_ATTR"
	DepthOutOfRange     Code = "DEPTH_OUT_OF_RANGE"

	// Update pipeline.
	UpdateGap            Code = "UPDATE_GAP"
	UpdateRverMismatch   Code = "UPDATE_RVER_MISMATCH"
	UpdateDeleteMissing  Code = "UPDATE_DELETE_MISSING"
	UpdateInsertConflict Code = "UPDATE_INSERT_CONFLICT"

	// Resource exhaustion.
	MaxWarningsExceeded Code = "MAX_WARNINGS_EXCEEDED"
)
