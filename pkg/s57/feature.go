package s57

import (
	"fmt"

	"github.com/frye/s57enc/internal/catalog"
	"github.com/frye/s57enc/internal/diagnostics"
)

// Feature is a fully decoded S-57 feature: its identity, resolved object
// class, assembled geometry, and decoded attributes.
type Feature struct {
	RecordID      string
	FOID          FOID
	FOIDKnown     bool
	ObjectClass   catalog.ObjectClass
	ObjectKnown   bool
	Geometry      Geometry
	Attributes    map[string]Value
	Label         string
	RecordVersion uint16
}

// Key returns the Feature Store identity for f: its FOID in canonical form
// when the record carried one, or its record id in canonical form when it
// didn't (spec §4.7: "derived from its FOID field or, absent that, from
// recordId in canonical form").
func (f Feature) Key() string {
	if f.FOIDKnown {
		return f.FOID.String()
	}
	return fmt.Sprintf("rec_%s", f.RecordID)
}

// requiredAttrs is the static per-class required-attribute rule table from
// spec §4.6 step 4.
var requiredAttrs = map[string][]string{
	"DEPARE": {"DRVAL1"},
	"SOUNDG": {"VALSOU"},
	"BOYLAT": {"CATBOY"},
	"BOYISD": {"CATBOY"},
	"BOYSPP": {"CATBOY"},
}

// depthAttrs are sanity-range checked per spec §4.6 step 5.
var depthAttrs = map[string]bool{
	"VALSOU": true,
	"DRVAL1": true,
	"DRVAL2": true,
	"VALDCO": true,
}

const (
	depthMinMeters = -100.0
	depthMaxMeters = 15000.0
)

// featureInput is everything the ISO 8211 decoding stages assembled for one
// feature record, ready to be built and validated.
type featureInput struct {
	RecordID   string
	FOID       FOID
	FOIDKnown  bool
	OBJL       uint32
	RVER       uint16
	Attributes map[string]Value
	Pointers   []SpatialPointer
}

// buildFeature builds a Feature per spec §4.6, returning a non-nil error
// only on strict-mode escalation.
func buildFeature(in featureInput, cat *catalog.Catalog, store *PrimitiveStore, coll *diagnostics.Collector) (Feature, error) {
	oc, known := cat.ObjectClassByCode(in.OBJL)
	if !known {
		if err := warn(coll, diagnostics.UnknownObjCode, diagnostics.Warn,
			fmt.Sprintf("object class %d not found in catalog", in.OBJL), in.RecordID, in.FOID.String()); err != nil {
			return Feature{}, err
		}
	}

	geom, err := assembleGeometry(in.Pointers, store, coll, in.FOID.String())
	if err != nil {
		return Feature{}, err
	}

	if required, ok := requiredAttrs[oc.Acronym]; ok {
		for _, attr := range required {
			if _, present := in.Attributes[attr]; !present {
				if err := warn(coll, diagnostics.MissingRequiredAttr, diagnostics.Warn,
					fmt.Sprintf("%s requires %s", oc.Acronym, attr), in.RecordID, in.FOID.String()); err != nil {
					return Feature{}, err
				}
			}
		}
	}

	for acronym := range depthAttrs {
		v, present := in.Attributes[acronym]
		if !present {
			continue
		}
		f, ok := v.AsFloat()
		if !ok {
			continue
		}
		if f < depthMinMeters || f > depthMaxMeters {
			if err := warn(coll, diagnostics.DepthOutOfRange, diagnostics.Info,
				fmt.Sprintf("%s=%g outside [%g, %g]", acronym, f, depthMinMeters, depthMaxMeters),
				in.RecordID, in.FOID.String()); err != nil {
				return Feature{}, err
			}
		}
	}

	label := oc.Name
	if n, ok := in.Attributes["OBJNAM"]; ok && n.Kind == ValString {
		label = n.Str
	} else if oc.Name == "" {
		label = oc.Acronym
	}

	return Feature{
		RecordID:      in.RecordID,
		FOID:          in.FOID,
		FOIDKnown:     in.FOIDKnown,
		ObjectClass:   oc,
		ObjectKnown:   known,
		Geometry:      geom,
		Attributes:    in.Attributes,
		Label:         label,
		RecordVersion: in.RVER,
	}, nil
}
