package s57

import (
	"fmt"

	"github.com/frye/s57enc/internal/catalog"
	"github.com/frye/s57enc/internal/diagnostics"
	"github.com/frye/s57enc/internal/iso8211"
)

// Options configures a parse session.
type Options struct {
	Strict      bool
	MaxWarnings int
	ForceLinear bool
	Catalog     *catalog.Catalog
	Logger      diagnostics.Logger

	// Path is the source file path, if any, passed through to the logger's
	// onStartFile/onFinishFile hooks (spec §4.1). Callers parsing from a
	// file should set this; it is otherwise cosmetic.
	Path string
}

// Session is the result of parsing one base cell: its feature store,
// primitive store, spatial index, dataset identity/params, and the
// diagnostics collector that accumulated every warning along the way.
type Session struct {
	Features   *FeatureStore
	Primitives *PrimitiveStore
	Index      SpatialIndex
	Identity   DatasetIdentity
	Params     DatasetParams
	Collector  *diagnostics.Collector
}

// Parse decodes a base-cell byte buffer into a Session. Strict-mode
// escalation, the collector's always-enforced 1000-warning runaway cap, and
// an invalid DDR are the only fatal outcomes; every other corruption is
// recorded as a warning and recovered from (spec §7).
func Parse(data []byte, opts Options) (*Session, error) {
	cat := opts.Catalog
	if cat == nil {
		var err error
		cat, err = catalog.LoadBundled()
		if err != nil {
			return nil, fmt.Errorf("s57: load default catalog: %w", err)
		}
	}

	coll := diagnostics.NewCollector(diagnostics.Options{
		Strict:      opts.Strict,
		MaxWarnings: opts.MaxWarnings,
		Logger:      opts.Logger,
	})

	coll.StartFile(opts.Path)
	defer coll.FinishFile(opts.Path)

	primitives := NewPrimitiveStore()
	params := defaultDatasetParams()
	identity := DatasetIdentity{}

	reader := iso8211.NewReader(data, coll)
	var features []Feature

	for {
		rec, ok, err := reader.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		if dsid, present := rec.Field("DSID"); present {
			identity = decodeDSID(dsid)
		}
		if dspm, present := rec.Field("DSPM"); present {
			params = decodeDSPM(dspm)
		}
		if vrid, present := rec.Field("VRID"); present {
			if err := ingestSpatialRecord(rec, vrid, params, primitives); err != nil {
				return nil, err
			}
		}
		if frid, present := rec.Field("FRID"); present {
			f, err := ingestFeatureRecord(rec, frid, cat, primitives, coll)
			if err != nil {
				return nil, err
			}
			if f != nil {
				features = append(features, *f)
			}
		}
	}

	store := NewFeatureStore()
	store.initializeFromBase(features)

	index := NewSpatialIndex(opts.ForceLinear)
	index.AddFeatures(store.All())

	return &Session{
		Features:   store,
		Primitives: primitives,
		Index:      index,
		Identity:   identity,
		Params:     params,
		Collector:  coll,
	}, nil
}

// ingestSpatialRecord decodes one VRID record into a Node or Edge and adds
// it to the primitive store.
func ingestSpatialRecord(rec *iso8211.Record, vrid []byte, params DatasetParams, store *PrimitiveStore) error {
	v, ok := decodeVRID(vrid)
	if !ok {
		return nil
	}

	switch int(v.RCNM) {
	case recordIsolatedNode, recordConnectedNode:
		coord := Coordinate{}
		if sg2d, present := rec.Field("SG2D"); present {
			if pts := decodeSG2D(sg2d, params.COMF); len(pts) > 0 {
				coord = pts[0]
			}
		}
		store.PutNode(Node{ID: v.RCID, Coord: coord})

	case recordEdge:
		var startID, endID int64 = -1, -1
		if vrpt, present := rec.Field("VRPT"); present {
			ptrs := decodeVRPT(vrpt)
			if len(ptrs) >= 1 {
				startID = ptrs[0].RCID
			}
			if len(ptrs) >= 2 {
				endID = ptrs[1].RCID
			}
		}
		var points []Coordinate
		if sg2d, present := rec.Field("SG2D"); present {
			points = decodeSG2D(sg2d, params.COMF)
		}
		store.PutEdge(Edge{ID: v.RCID, StartNodeID: startID, EndNodeID: endID, Points: points})
	}
	return nil
}

// ingestFeatureRecord decodes one FRID-bearing record into a Feature. It
// returns (nil, nil) if the record's FRID/FOID subfields are too short to
// be meaningful (already reported via SUBFIELD_PARSE).
func ingestFeatureRecord(rec *iso8211.Record, frid []byte, cat *catalog.Catalog, primitives *PrimitiveStore, coll *diagnostics.Collector) (*Feature, error) {
	fridFields, err := decodeFRID(frid, coll)
	if err != nil {
		return nil, err
	}
	if len(frid) < 12 {
		return nil, nil
	}

	var foid FOID
	var foidKnown bool
	if foidBytes, present := rec.Field("FOID"); present {
		foid, err = decodeFOID(foidBytes, coll)
		if err != nil {
			return nil, err
		}
		if len(foidBytes) < 8 {
			return nil, nil
		}
		foidKnown = true
	}

	attrs := map[string]Value{}
	if attf, present := rec.Field("ATTF"); present {
		attrs, err = decodeATTF(attf, cat, coll, foid.String())
		if err != nil {
			return nil, err
		}
	}

	var pointers []SpatialPointer
	if fspt, present := rec.Field("FSPT"); present {
		pointers = decodeFSPT(fspt)
	}

	in := featureInput{
		RecordID:   fmt.Sprintf("%d", fridFields.RCID),
		FOID:       foid,
		FOIDKnown:  foidKnown,
		OBJL:       uint32(fridFields.OBJL),
		RVER:       fridFields.RVER,
		Attributes: attrs,
		Pointers:   pointers,
	}

	f, err := buildFeature(in, cat, primitives, coll)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
