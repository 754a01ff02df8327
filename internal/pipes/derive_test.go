package pipes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspectpozo/core-go/internal/geometry"
)

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }

func TestDerive_ComputesClaveFromReferenceElevation(t *testing.T) {
	start := Endpoint{StructureID: "pz0001", Point: &geometry.Point{X: -75.0, Y: 6.2}, Elevation: f(100.0)}
	end := Endpoint{StructureID: "pz0002", Point: &geometry.Point{X: -75.1, Y: 6.3}, Elevation: f(95.0)}

	res, err := Derive(start, end, Elevations{DepthStart: f(2.5), DepthEnd: f(1.0)})
	require.NoError(t, err)

	require.NotNil(t, res.ClaveStart)
	require.NotNil(t, res.ClaveEnd)
	assert.Equal(t, 97.5, *res.ClaveStart)
	assert.Equal(t, 94.0, *res.ClaveEnd)
	assert.Equal(t, geometry.LineString{{X: -75.0, Y: 6.2}, {X: -75.1, Y: 6.3}}, res.Geometry)
	assert.Equal(t, "LINESTRING(-75 6.2, -75.1 6.3)", res.WKT())
	assert.Greater(t, res.LengthMeters, 0.0)
}

func TestDerive_VertexOrderFollowsCaller(t *testing.T) {
	a := Endpoint{StructureID: "a", Point: &geometry.Point{X: 1, Y: 1}}
	b := Endpoint{StructureID: "b", Point: &geometry.Point{X: 2, Y: 2}}

	res, err := Derive(b, a, Elevations{})
	require.NoError(t, err)
	assert.Equal(t, geometry.LineString{{X: 2, Y: 2}, {X: 1, Y: 1}}, res.Geometry)
}

func TestDerive_FallsBackToCallerClave(t *testing.T) {
	start := Endpoint{StructureID: "pz0001", Point: &geometry.Point{X: 0, Y: 0}}
	end := Endpoint{StructureID: "sm0001", Point: &geometry.Point{X: 0, Y: 1}, Elevation: f(50)}

	res, err := Derive(start, end, Elevations{
		DepthStart: f(1.2), // no reference elevation at start
		ClaveStart: f(88.8),
		ClaveEnd:   f(48.0), // no depth at end
	})
	require.NoError(t, err)
	assert.Equal(t, 88.8, *res.ClaveStart)
	assert.Equal(t, 48.0, *res.ClaveEnd)
}

func TestDerive_CallerClaveMayBeAbsent(t *testing.T) {
	p := &geometry.Point{X: 0, Y: 0}
	res, err := Derive(Endpoint{Point: p}, Endpoint{Point: p}, Elevations{})
	require.NoError(t, err)
	assert.Nil(t, res.ClaveStart)
	assert.Nil(t, res.ClaveEnd)
}

func TestDerive_MissingStartPoint(t *testing.T) {
	end := Endpoint{StructureID: "pz0002", Point: &geometry.Point{X: 1, Y: 1}}

	res, err := Derive(Endpoint{StructureID: "pz0001", Elevation: f(10)}, end, Elevations{DepthStart: f(1)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEndpointGeometryMissing)
	assert.Contains(t, err.Error(), "pz0001")
	assert.Equal(t, Result{}, res)
}

func TestDerive_MissingEndPoint(t *testing.T) {
	start := Endpoint{StructureID: "pz0001", Point: &geometry.Point{X: 1, Y: 1}}

	_, err := Derive(start, Endpoint{StructureID: "sm0003"}, Elevations{})
	assert.ErrorIs(t, err, ErrEndpointGeometryMissing)
	assert.Contains(t, err.Error(), "sm0003")
}

func TestResolveEndpoint(t *testing.T) {
	ep, err := ResolveEndpoint("pz0001", s("POINT(-75.0 6.2)"), f(100))
	require.NoError(t, err)
	require.NotNil(t, ep.Point)
	assert.Equal(t, geometry.Point{X: -75.0, Y: 6.2}, *ep.Point)
	assert.Equal(t, 100.0, *ep.Elevation)

	ep, err = ResolveEndpoint("pz0002", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, ep.Point)

	ep, err = ResolveEndpoint("pz0003", s("  "), nil)
	require.NoError(t, err)
	assert.Nil(t, ep.Point)

	ep, err = ResolveEndpoint("pz0004", s("POINT(abc)"), nil)
	assert.ErrorIs(t, err, geometry.ErrMalformedGeometry)
	assert.Nil(t, ep.Point)
	assert.Equal(t, "pz0004", ep.StructureID)
}

func TestClave(t *testing.T) {
	assert.Equal(t, 7.0, *Clave(f(10), f(3), nil))
	assert.Nil(t, Clave(nil, f(3), nil))
	assert.Equal(t, 5.0, *Clave(f(10), nil, f(5)))
}
