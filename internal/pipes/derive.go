// Package pipes derives a pipe's geometry and crown ("clave") elevations from
// the two structures it connects.
package pipes

import (
	"errors"
	"fmt"
	"strings"

	"inspectpozo/core-go/internal/geometry"
)

// ErrEndpointGeometryMissing is returned when an endpoint structure has no
// usable POINT geometry. It is a client-input error.
var ErrEndpointGeometryMissing = errors.New("endpoint geometry missing")

// Endpoint is one end of a pipe as seen by the deriver.
type Endpoint struct {
	StructureID string
	// Point is nil when the structure has no geometry or it did not parse.
	Point *geometry.Point
	// Elevation is the structure's reference elevation (cota_estructura).
	Elevation *float64
}

// Elevations carries the caller-supplied depth and clave values for both ends.
type Elevations struct {
	DepthStart *float64
	DepthEnd   *float64
	ClaveStart *float64
	ClaveEnd   *float64
}

type Result struct {
	Geometry     geometry.LineString
	ClaveStart   *float64
	ClaveEnd     *float64
	LengthMeters float64
}

// WKT renders the derived geometry for storage.
func (r Result) WKT() string {
	return geometry.FormatLineString(r.Geometry)
}

// ResolveEndpoint builds an Endpoint from a structure's stored geometry text.
// Absent, empty, or malformed text leaves Point nil; the reason is returned
// alongside so callers can log it.
func ResolveEndpoint(structureID string, geometryText *string, elevation *float64) (Endpoint, error) {
	ep := Endpoint{StructureID: structureID, Elevation: elevation}
	if geometryText == nil || strings.TrimSpace(*geometryText) == "" {
		return ep, nil
	}
	p, err := geometry.ParsePoint(*geometryText)
	if err != nil {
		return ep, err
	}
	ep.Point = &p
	return ep, nil
}

// Derive builds the two-vertex LINESTRING start -> end and the clave
// elevation at each end. It returns no partial result on failure.
func Derive(start, end Endpoint, in Elevations) (Result, error) {
	if start.Point == nil {
		return Result{}, fmt.Errorf("%w: start structure %q", ErrEndpointGeometryMissing, start.StructureID)
	}
	if end.Point == nil {
		return Result{}, fmt.Errorf("%w: end structure %q", ErrEndpointGeometryMissing, end.StructureID)
	}

	line := geometry.LineString{*start.Point, *end.Point}
	return Result{
		Geometry:     line,
		ClaveStart:   Clave(start.Elevation, in.DepthStart, in.ClaveStart),
		ClaveEnd:     Clave(end.Elevation, in.DepthEnd, in.ClaveEnd),
		LengthMeters: line.LengthMeters(),
	}, nil
}

// Clave returns ref - depth when both are present, otherwise fallback.
func Clave(ref, depth, fallback *float64) *float64 {
	if ref == nil || depth == nil {
		return fallback
	}
	v := *ref - *depth
	return &v
}
