package s57

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/frye/s57enc/internal/catalog"
	"github.com/frye/s57enc/internal/diagnostics"
	"github.com/frye/s57enc/internal/iso8211"
)

// RuinOp is a record's update indicator, matching the real S-57 RUIN byte
// values (Insert=1, Delete=2, Modify=3).
type RuinOp byte

const (
	RuinInsert RuinOp = 1
	RuinDelete RuinOp = 2
	RuinModify RuinOp = 3
)

// RuinRecord is one decoded feature-update operation from an update file.
type RuinRecord struct {
	FOID       string
	Op         RuinOp
	NewFeature Feature
}

// UpdateDataset is one parsed `.NNN` update file.
type UpdateDataset struct {
	Filename string
	Seq      int
	CellName string
	Records  []RuinRecord
}

// UpdateSummary reports what a sequential-update run did.
type UpdateSummary struct {
	Inserted  int
	Modified  int
	Deleted   int
	Applied   []string
	FinalRVer uint16
}

// updateFilenameSeq extracts the 1-999 sequence number from an update
// filename's extension (base cell = "<CELL>.000", updates = "<CELL>.NNN").
// It returns false for anything outside that range, including the base
// file itself.
func updateFilenameSeq(path string) (int, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if len(ext) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(ext)
	if err != nil {
		return 0, false
	}
	if n < 1 || n >= 1000 {
		return 0, false
	}
	return n, true
}

// parseUpdateFile decodes one update file's bytes into an UpdateDataset,
// routing FRID-bearing records through buildFeature exactly like the base
// parse path.
func parseUpdateFile(path string, data []byte, cat *catalog.Catalog, primitives *PrimitiveStore, coll *diagnostics.Collector) (UpdateDataset, error) {
	seq, _ := updateFilenameSeq(path)
	ds := UpdateDataset{Filename: path, Seq: seq}

	coll.StartFile(path)
	defer coll.FinishFile(path)

	reader := iso8211.NewReader(data, coll)
	for {
		rec, ok, err := reader.Next()
		if err != nil {
			return ds, err
		}
		if !ok {
			break
		}

		if dsid, present := rec.Field("DSID"); present {
			ds.CellName = decodeDSID(dsid).CellName
		}

		frid, present := rec.Field("FRID")
		if !present {
			continue
		}
		fridFields, err := decodeFRID(frid, coll)
		if err != nil {
			return ds, err
		}

		op := RuinOp(fridFields.RUIN)
		if op != RuinInsert && op != RuinDelete && op != RuinModify {
			if err := warn(coll, diagnostics.InvalidRuinCode, diagnostics.Warn,
				fmt.Sprintf("unrecognized RUIN value %d", fridFields.RUIN), fmt.Sprintf("%d", fridFields.RCID), ""); err != nil {
				return ds, err
			}
			continue
		}

		f, err := ingestFeatureRecord(rec, frid, cat, primitives, coll)
		if err != nil {
			return ds, err
		}
		if f == nil {
			continue
		}
		ds.Records = append(ds.Records, RuinRecord{FOID: f.Key(), Op: op, NewFeature: *f})
	}
	return ds, nil
}

// ApplySequentialUpdates validates and applies a set of update files against
// store in order, per spec §4.7. files maps each update path to its raw
// bytes. A sequence gap or a cell-name mismatch against baseCellName is
// fatal regardless of strict mode; everything else degrades to a
// warn-and-skip.
func ApplySequentialUpdates(store *FeatureStore, primitives *PrimitiveStore, baseCellName string, files map[string][]byte, cat *catalog.Catalog, coll *diagnostics.Collector) (UpdateSummary, error) {
	type seqFile struct {
		path string
		seq  int
	}
	var ordered []seqFile
	for path := range files {
		seq, ok := updateFilenameSeq(path)
		if !ok {
			continue
		}
		ordered = append(ordered, seqFile{path: path, seq: seq})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })

	summary := UpdateSummary{}
	for i, sf := range ordered {
		expected := i + 1
		if sf.seq != expected {
			if err := warn(coll, diagnostics.UpdateGap, diagnostics.Error,
				fmt.Sprintf("expected sequence %d, found %d (%s)", expected, sf.seq, sf.path), "", ""); err != nil {
				return summary, err
			}
			return summary, fmt.Errorf("s57: update sequence gap at %s", sf.path)
		}
	}

	for _, sf := range ordered {
		ds, err := parseUpdateFile(sf.path, files[sf.path], cat, primitives, coll)
		if err != nil {
			return summary, err
		}

		if ds.CellName != "" && baseCellName != "" && ds.CellName != baseCellName {
			if err := warn(coll, diagnostics.UpdateRverMismatch, diagnostics.Error,
				fmt.Sprintf("update %s targets cell %q, base cell is %q", sf.path, ds.CellName, baseCellName), "", ""); err != nil {
				return summary, err
			}
			return summary, fmt.Errorf("s57: update %s targets wrong cell", sf.path)
		}

		for _, rec := range ds.Records {
			if err := applyRuinRecord(store, rec, coll, &summary); err != nil {
				return summary, err
			}
			summary.FinalRVer = rec.NewFeature.RecordVersion
		}
		summary.Applied = append(summary.Applied, sf.path)
	}

	return summary, nil
}

func applyRuinRecord(store *FeatureStore, rec RuinRecord, coll *diagnostics.Collector, summary *UpdateSummary) error {
	switch rec.Op {
	case RuinInsert:
		if store.Contains(rec.FOID) {
			return warn(coll, diagnostics.UpdateInsertConflict, diagnostics.Warn,
				fmt.Sprintf("FOID %s already present, skipping insert", rec.FOID), "", rec.FOID)
		}
		store.Put(rec.FOID, VersionedFeature{Feature: rec.NewFeature, Version: rec.NewFeature.RecordVersion})
		summary.Inserted++

	case RuinDelete:
		if !store.Contains(rec.FOID) {
			return warn(coll, diagnostics.UpdateDeleteMissing, diagnostics.Warn,
				fmt.Sprintf("FOID %s not present, skipping delete", rec.FOID), "", rec.FOID)
		}
		store.Remove(rec.FOID)
		summary.Deleted++

	case RuinModify:
		existing, ok := store.Get(rec.FOID)
		if !ok {
			return warn(coll, diagnostics.UpdateDeleteMissing, diagnostics.Warn,
				fmt.Sprintf("FOID %s not present, skipping modify", rec.FOID), "", rec.FOID)
		}
		merged := mergeFeature(existing.Feature, rec.NewFeature)
		store.Put(rec.FOID, VersionedFeature{Feature: merged, Version: merged.RecordVersion})
		summary.Modified++
	}
	return nil
}

// mergeFeature implements spec §4.7 step 5's MODIFY rule: attribute union
// with the update's values overriding, coordinates/object-type kept from
// the update only when the update actually supplied them.
func mergeFeature(existing, update Feature) Feature {
	attrs := make(map[string]Value, len(existing.Attributes)+len(update.Attributes))
	for k, v := range existing.Attributes {
		attrs[k] = v
	}
	for k, v := range update.Attributes {
		attrs[k] = v
	}

	// An update record without spatial pointers assembles to the synthetic
	// Point(0,0); that is not a supplied geometry.
	geom := existing.Geometry
	synthetic := update.Geometry.Kind == GeomPoint && update.Geometry.Point == (Coordinate{})
	if !synthetic && len(update.Geometry.Coordinates()) > 0 {
		geom = update.Geometry
	}

	oc := existing.ObjectClass
	known := existing.ObjectKnown
	if update.ObjectKnown {
		oc = update.ObjectClass
		known = true
	}

	return Feature{
		RecordID:      update.RecordID,
		FOID:          existing.FOID,
		FOIDKnown:     existing.FOIDKnown,
		ObjectClass:   oc,
		ObjectKnown:   known,
		Geometry:      geom,
		Attributes:    attrs,
		Label:         update.Label,
		RecordVersion: update.RecordVersion,
	}
}
