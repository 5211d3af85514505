package s57

import (
	"fmt"

	"github.com/frye/s57enc/internal/diagnostics"
)

// SpatialPointer references one vector primitive (node or edge) that
// contributes coordinates to a feature's geometry, decoded from an FSPT
// tuple.
type SpatialPointer struct {
	ID      int64
	IsEdge  bool
	Reverse bool
}

// assembleGeometry builds a Geometry from an ordered list of SpatialPointer
// against the PrimitiveStore, per spec §4.5. The returned error is non-nil
// only when strict mode escalates one of the warnings raised along the way
// to a terminal failure; the returned Geometry in that case is a partial or
// synthetic fallback value and should not be used.
func assembleGeometry(pointers []SpatialPointer, store *PrimitiveStore, coll *diagnostics.Collector, featureID string) (Geometry, error) {
	if len(pointers) == 0 {
		if err := warn(coll, diagnostics.DanglingPointer, diagnostics.Warn,
			"feature has no spatial pointers; using synthetic Point(0,0)", "", featureID); err != nil {
			return Geometry{}, err
		}
		return NewPoint(Coordinate{}), nil
	}

	if len(pointers) == 1 && !pointers[0].IsEdge {
		n, ok := store.Node(pointers[0].ID)
		if !ok {
			if err := warn(coll, diagnostics.DanglingPointer, diagnostics.Warn,
				fmt.Sprintf("node %d not found; using synthetic Point(0,0)", pointers[0].ID),
				recID(pointers[0].ID), featureID); err != nil {
				return Geometry{}, err
			}
			return NewPoint(Coordinate{}), nil
		}
		return NewPoint(n.Coord), nil
	}

	var coords []Coordinate
	for _, p := range pointers {
		chain, ok, err := resolveChain(p, store, coll, featureID)
		if err != nil {
			return Geometry{}, err
		}
		if !ok {
			continue
		}
		coords = stitch(coords, chain)
	}

	if len(coords) == 0 {
		if err := warn(coll, diagnostics.DanglingPointer, diagnostics.Warn,
			"no spatial pointer resolved to coordinates; using synthetic Point(0,0)", "", featureID); err != nil {
			return Geometry{}, err
		}
		return NewPoint(Coordinate{}), nil
	}
	if len(coords) == 1 {
		return NewPoint(coords[0]), nil
	}

	first, last := coords[0], coords[len(coords)-1]
	switch {
	case first == last && len(coords) >= 4:
		return NewPolygon([]Ring{ensureClosed(coords)}), nil
	case nearlyEqual(first, last) && len(coords) >= 4:
		if err := warn(coll, diagnostics.PolygonClosedAuto, diagnostics.Info,
			"ring endpoints differ by less than tolerance; auto-closed", "", featureID); err != nil {
			return Geometry{}, err
		}
		closed := append(append([]Coordinate{}, coords...), first)
		return NewPolygon([]Ring{closed}), nil
	default:
		return NewLine(coords), nil
	}
}

// resolveChain expands one SpatialPointer to its coordinate chain: an edge
// expands to its full node-to-node walk (reversed if requested), a node to
// a single coordinate. ok is false when the pointer could not be resolved
// and should simply be skipped (a warning has already been raised); err is
// non-nil only on strict-mode escalation.
func resolveChain(p SpatialPointer, store *PrimitiveStore, coll *diagnostics.Collector, featureID string) (chain []Coordinate, ok bool, err error) {
	if !p.IsEdge {
		n, found := store.Node(p.ID)
		if !found {
			if werr := warn(coll, diagnostics.DanglingPointer, diagnostics.Warn,
				fmt.Sprintf("node %d not found", p.ID), recID(p.ID), featureID); werr != nil {
				return nil, false, werr
			}
			return nil, false, nil
		}
		return []Coordinate{n.Coord}, true, nil
	}

	e, found := store.Edge(p.ID)
	if !found {
		if werr := warn(coll, diagnostics.DanglingPointer, diagnostics.Warn,
			fmt.Sprintf("edge %d not found", p.ID), recID(p.ID), featureID); werr != nil {
			return nil, false, werr
		}
		return nil, false, nil
	}
	if e.degenerate(store) {
		if werr := warn(coll, diagnostics.DegenerateEdge, diagnostics.Warn,
			fmt.Sprintf("edge %d has fewer than 2 resolvable nodes", p.ID), recID(p.ID), featureID); werr != nil {
			return nil, false, werr
		}
		return nil, false, nil
	}
	full, resolved := e.fullCoordinates(store)
	if !resolved {
		if werr := warn(coll, diagnostics.DanglingPointer, diagnostics.Warn,
			fmt.Sprintf("edge %d nodes not found", p.ID), recID(p.ID), featureID); werr != nil {
			return nil, false, werr
		}
		return nil, false, nil
	}
	if p.Reverse {
		full = reverseCoords(full)
	}
	return full, true, nil
}

// stitch appends next to acc, dropping next's first coordinate when it
// exactly matches acc's last (spec §4.5 rule 3).
func stitch(acc, next []Coordinate) []Coordinate {
	if len(next) == 0 {
		return acc
	}
	if len(acc) > 0 && acc[len(acc)-1] == next[0] {
		next = next[1:]
	}
	return append(acc, next...)
}

func reverseCoords(coords []Coordinate) []Coordinate {
	out := make([]Coordinate, len(coords))
	for i, c := range coords {
		out[len(coords)-1-i] = c
	}
	return out
}

func recID(id int64) string { return fmt.Sprintf("%d", id) }

func warn(coll *diagnostics.Collector, code diagnostics.Code, sev diagnostics.Severity, msg, recordID, featureID string) error {
	if coll == nil {
		return nil
	}
	return coll.Warn(code, sev, msg, recordID, featureID)
}
