// Package geometry parses and formats the narrow WKT surface stored for
// structures (POINT) and pipes (LINESTRING). Only 2D coordinates are supported.
package geometry

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedGeometry is returned when POINT text fails strict validation.
var ErrMalformedGeometry = errors.New("malformed geometry")

const (
	pointTag      = "point("
	lineStringTag = "linestring("
)

// Point is a 2D coordinate pair. X is longitude and Y is latitude when the
// geometry is geographic.
type Point struct {
	X float64
	Y float64
}

func (p Point) Lon() float64 { return p.X }
func (p Point) Lat() float64 { return p.Y }

// LineString is an ordered sequence of points. An empty LineString is the
// "no geometry" result of ParseLineString.
type LineString []Point

// Coords returns the vertices as [x, y] pairs in storage order.
func (ls LineString) Coords() [][2]float64 {
	out := make([][2]float64, 0, len(ls))
	for _, p := range ls {
		out = append(out, [2]float64{p.X, p.Y})
	}
	return out
}

// ParsePoint parses "POINT(x y)". The coordinate separator may be whitespace
// or a comma.
func ParsePoint(text string) (Point, error) {
	txt := strings.TrimSpace(text)
	if txt == "" {
		return Point{}, fmt.Errorf("%w: empty point", ErrMalformedGeometry)
	}

	inner, ok := envelope(txt, pointTag)
	if !ok {
		return Point{}, fmt.Errorf("%w: unsupported wkt %q", ErrMalformedGeometry, txt)
	}

	parts := strings.Fields(strings.ReplaceAll(inner, ",", " "))
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("%w: point needs 2 coordinates, got %q", ErrMalformedGeometry, inner)
	}

	p, ok := parsePair(parts[0], parts[1])
	if !ok {
		return Point{}, fmt.Errorf("%w: non-numeric coordinate in %q", ErrMalformedGeometry, inner)
	}
	return p, nil
}

// ParseLineString parses "LINESTRING(x1 y1, x2 y2, ...)". It never fails:
// input that does not match the envelope yields an empty result, and vertex
// groups that are not exactly two numbers are skipped.
func ParseLineString(text string) LineString {
	txt := strings.TrimSpace(text)
	if txt == "" {
		return nil
	}

	inner, ok := envelope(txt, lineStringTag)
	if !ok {
		return nil
	}

	var out LineString
	for _, group := range strings.Split(inner, ",") {
		tokens := strings.Fields(group)
		if len(tokens) != 2 {
			continue
		}
		p, ok := parsePair(tokens[0], tokens[1])
		if !ok {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FormatPoint renders "POINT(x y)".
func FormatPoint(p Point) string {
	return "POINT(" + formatCoord(p.X) + " " + formatCoord(p.Y) + ")"
}

// FormatLineString renders "LINESTRING(x1 y1, x2 y2, ...)" using the shortest
// decimal representation that round-trips each float64.
func FormatLineString(ls LineString) string {
	var sb strings.Builder
	sb.WriteString("LINESTRING(")
	for i, p := range ls {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(formatCoord(p.X))
		sb.WriteByte(' ')
		sb.WriteString(formatCoord(p.Y))
	}
	sb.WriteByte(')')
	return sb.String()
}

// envelope checks the case-insensitive "<tag>...)" wrapper and returns the
// trimmed content between the parentheses.
func envelope(txt, tag string) (string, bool) {
	if len(txt) < len(tag)+1 {
		return "", false
	}
	if !strings.EqualFold(txt[:len(tag)], tag) || !strings.HasSuffix(txt, ")") {
		return "", false
	}
	return strings.TrimSpace(txt[len(tag) : len(txt)-1]), true
}

// parsePair rejects NaN and infinities along with non-numeric tokens.
func parsePair(xs, ys string) (Point, bool) {
	x, ok := parseCoord(xs)
	if !ok {
		return Point{}, false
	}
	y, ok := parseCoord(ys)
	if !ok {
		return Point{}, false
	}
	return Point{X: x, Y: y}, true
}

// parseCoord accepts decimal notation only; ParseFloat alone would also take
// hex floats such as 0x1p3.
func parseCoord(tok string) (float64, bool) {
	if strings.ContainsAny(tok, "xXpP") {
		return 0, false
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || !finite(v) {
		return 0, false
	}
	return v, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
