// Package geometry holds the planar and geographic helpers used to derive
// borefield footprints and connector lengths.
package geometry

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Point is an (X, Y) pair, or (longitude, latitude) in degrees for
// geographic input.
type Point [2]float64

// WGS84 radii in meters.
const (
	equatorRadius = 6378137.0
	poleRadius    = 6356752.314
)

// SignedArea returns the shoelace area of a ring. Counter-clockwise rings are
// positive. A repeated closing vertex does not change the result.
func SignedArea(ring []Point) float64 {
	var area float64
	for i, pt := range ring {
		prev := ring[(i+len(ring)-1)%len(ring)]
		area += prev[0]*pt[1] - prev[1]*pt[0]
	}
	return area / 2
}

// CounterClockwise returns ring oriented counter-clockwise. The input is not
// modified.
func CounterClockwise(ring []Point) []Point {
	out := make([]Point, len(ring))
	copy(out, ring)
	if SignedArea(out) < 0 {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// PolygonArea returns the area of the outer ring minus its holes. Every ring
// is forced counter-clockwise first, so the result does not depend on winding.
func PolygonArea(rings [][]Point) float64 {
	if len(rings) == 0 {
		return 0
	}
	area := SignedArea(CounterClockwise(rings[0]))
	for _, hole := range rings[1:] {
		area -= SignedArea(CounterClockwise(hole))
	}
	return area
}

// LowerLeft returns the lower-left corner of the bounding box.
func LowerLeft(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	lo := pts[0]
	for _, p := range pts[1:] {
		lo[0] = math.Min(lo[0], p[0])
		lo[1] = math.Min(lo[1], p[1])
	}
	return lo
}

// UpperRight returns the upper-right corner of the bounding box.
func UpperRight(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	hi := pts[0]
	for _, p := range pts[1:] {
		hi[0] = math.Max(hi[0], p[0])
		hi[1] = math.Max(hi[1], p[1])
	}
	return hi
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return floats.Distance(a[:], b[:], 2)
}

// VectorAngle returns the smallest angle between two vectors in degrees. A
// zero-length vector gives 0.
func VectorAngle(v1, v2 Point) float64 {
	m := math.Hypot(v1[0], v1[1]) * math.Hypot(v2[0], v2[1])
	if m == 0 {
		return 0
	}
	c := (v1[0]*v2[0] + v1[1]*v2[1]) / m
	c = math.Max(-1, math.Min(1, c))
	return math.Acos(c) * 180 / math.Pi
}

// VectorAngleCounterClockwise returns the counter-clockwise angle from v1 to
// v2 in degrees, in [0, 360).
func VectorAngleCounterClockwise(v1, v2 Point) float64 {
	inner := VectorAngle(v1, v2)
	if v1[0]*v2[1]-v1[1]*v2[0] >= 0 {
		return inner
	}
	return 360 - inner
}

// Rotate turns p counter-clockwise by angle degrees around origin.
func Rotate(p Point, angle float64, origin Point) Point {
	rad := angle * math.Pi / 180
	sin, cos := math.Sincos(rad)
	dx, dy := p[0]-origin[0], p[1]-origin[1]
	return Point{cos*dx - sin*dy + origin[0], sin*dx + cos*dy + origin[1]}
}

// RotateToAxes aligns a polygon with the X and Y axes when the vertex nearest
// the lower-left corner of its outer ring is a right angle. Polygons that are
// already aligned, or have no such right angle, are returned unchanged. After
// rotation every coordinate is shifted to be non-negative.
func RotateToAxes(rings [][]Point) [][]Point {
	if len(rings) == 0 || len(rings[0]) < 3 {
		return rings
	}
	bound := rings[0]
	if bound[0] == bound[len(bound)-1] {
		bound = bound[:len(bound)-1]
	}
	bound = CounterClockwise(bound)

	minPt := LowerLeft(bound)
	idx := make([]int, len(bound))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return Distance(minPt, bound[idx[a]]) < Distance(minPt, bound[idx[b]])
	})
	oi := idx[0]
	origin := bound[oi]
	if origin == minPt {
		return rings
	}
	prev := bound[(oi+len(bound)-1)%len(bound)]
	next := bound[(oi+1)%len(bound)]

	v1 := Point{next[0] - origin[0], next[1] - origin[1]}
	v2 := Point{prev[0] - origin[0], prev[1] - origin[1]}
	if a := VectorAngle(v1, v2); a <= 89 || a >= 91 {
		return rings
	}

	angle := VectorAngleCounterClockwise(v2, Point{0, 1})
	if angle > 180 {
		angle -= 360
	}

	rotated := make([][]Point, len(rings))
	var xShift, yShift float64
	for i, ring := range rings {
		rotated[i] = make([]Point, len(ring))
		for j, p := range ring {
			q := Rotate(p, angle, origin)
			rotated[i][j] = q
			if q[0] < 0 {
				xShift = math.Max(xShift, -q[0])
			}
			if q[1] < 0 {
				yShift = math.Max(yShift, -q[1])
			}
		}
	}
	for _, ring := range rotated {
		for j := range ring {
			ring[j] = Point{math.Abs(ring[j][0] + xShift), math.Abs(ring[j][1] + yShift)}
		}
	}
	return rotated
}

// MetersPerDegree returns the meters spanned by one degree of longitude and
// latitude at the origin's latitude, using WGS84 radii.
func MetersPerDegree(origin Point) (lon, lat float64) {
	phi := origin[1] * math.Pi / 180
	sin, cos := math.Sincos(phi)
	d := math.Sqrt(equatorRadius*equatorRadius*sin*sin + poleRadius*poleRadius*cos*cos)
	r := equatorRadius * poleRadius / d
	lat = 2 * math.Pi * r / 360
	lon = lat * cos
	return lon, lat
}

// LonLatToMeters projects (longitude, latitude) points onto a plane in meters
// around origin. A nil origin uses the lower-left corner of the points. A
// single conversion factor is used, which is accurate for extents up to about
// 100 km.
func LonLatToMeters(pts []Point, origin *Point) []Point {
	o := LowerLeft(pts)
	if origin != nil {
		o = *origin
	}
	mLon, mLat := MetersPerDegree(o)
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = Point{(p[0] - o[0]) * mLon, (p[1] - o[1]) * mLat}
	}
	return out
}

// MetersToLonLat is the inverse of LonLatToMeters for a given origin.
func MetersToLonLat(pts []Point, origin Point) []Point {
	mLon, mLat := MetersPerDegree(origin)
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = Point{origin[0] + p[0]/mLon, origin[1] + p[1]/mLat}
	}
	return out
}

// PolylineLength returns the length of a planar polyline.
func PolylineLength(pts []Point) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += Distance(pts[i-1], pts[i])
	}
	return total
}

// GeographicLength returns the length in meters of a (longitude, latitude)
// polyline, projected around its first vertex.
func GeographicLength(pts []Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	origin := pts[0]
	return PolylineLength(LonLatToMeters(pts, &origin))
}
