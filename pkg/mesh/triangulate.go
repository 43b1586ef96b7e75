package mesh

import (
	"fmt"

	"github.com/Faultbox/lmodkit/pkg/math"
)

// QuadMethod selects how four-vertex faces are split.
type QuadMethod int

const (
	QuadShortest  QuadMethod = iota // Split along the shorter interior diagonal
	QuadFixed                       // Always split a-c
	QuadAlternate                   // Always split b-d
)

// String returns the configuration name of the method.
func (q QuadMethod) String() string {
	switch q {
	case QuadShortest:
		return "shortest"
	case QuadFixed:
		return "fixed"
	case QuadAlternate:
		return "alternate"
	default:
		return fmt.Sprintf("Unknown(%d)", int(q))
	}
}

// ParseQuadMethod parses a configuration name.
func ParseQuadMethod(s string) (QuadMethod, error) {
	switch s {
	case "shortest", "":
		return QuadShortest, nil
	case "fixed":
		return QuadFixed, nil
	case "alternate":
		return QuadAlternate, nil
	default:
		return 0, fmt.Errorf("unknown quad method %q", s)
	}
}

// NgonMethod selects how faces with more than four vertices are split.
type NgonMethod int

const (
	NgonFan     NgonMethod = iota // Fan out from the first vertex of the loop
	NgonEarClip                   // Ear clipping on the projected loop
	NgonBeauty                    // Ear clipping, then edge flips toward wider angles
)

// String returns the configuration name of the method.
func (n NgonMethod) String() string {
	switch n {
	case NgonFan:
		return "fan"
	case NgonEarClip:
		return "earclip"
	case NgonBeauty:
		return "beauty"
	default:
		return fmt.Sprintf("Unknown(%d)", int(n))
	}
}

// ParseNgonMethod parses a configuration name.
func ParseNgonMethod(s string) (NgonMethod, error) {
	switch s {
	case "fan", "":
		return NgonFan, nil
	case "earclip":
		return NgonEarClip, nil
	case "beauty":
		return NgonBeauty, nil
	default:
		return 0, fmt.Errorf("unknown ngon method %q", s)
	}
}

// TriangulateOptions configures Triangulate. The zero value selects the
// shortest-diagonal quad split and fan n-gons.
type TriangulateOptions struct {
	Quad QuadMethod
	Ngon NgonMethod
}

// Triangulate returns a copy of m whose faces are all triangles.
// Vertices and normals are copied unchanged; a face of n vertices becomes
// n-2 triangles that keep the loop's winding. Degenerate faces are not
// inspected.
func Triangulate(m *Mesh, opts TriangulateOptions) *Mesh {
	out := &Mesh{
		Name:     m.Name,
		Vertices: append([]math.Vec3(nil), m.Vertices...),
		Normals:  append([]math.Vec3(nil), m.Normals...),
		Faces:    make([]Polygon, 0, m.TriangleCount()),
	}

	for _, f := range m.Faces {
		for _, t := range TriangulatePolygon(m.Vertices, f, opts) {
			out.Faces = append(out.Faces, t.Polygon())
		}
	}

	return out
}

// TriangulatePolygon splits one face loop into triangles.
// Loops with fewer than three vertices yield nothing.
func TriangulatePolygon(verts []math.Vec3, f Polygon, opts TriangulateOptions) []Triangle {
	switch {
	case len(f) < 3:
		return nil
	case len(f) == 3:
		return []Triangle{{f[0], f[1], f[2]}}
	case len(f) == 4:
		return splitQuad(verts, f, opts.Quad)
	case opts.Ngon == NgonEarClip:
		return earClip(verts, f)
	case opts.Ngon == NgonBeauty:
		return beauty(verts, f)
	default:
		return fan(f)
	}
}

func splitQuad(verts []math.Vec3, f Polygon, method QuadMethod) []Triangle {
	a, b, c, d := f[0], f[1], f[2], f[3]
	ac := []Triangle{{a, b, c}, {a, c, d}}
	bd := []Triangle{{a, b, d}, {b, c, d}}

	switch method {
	case QuadFixed:
		return ac
	case QuadAlternate:
		return bd
	}

	pa, pb, pc, pd := verts[a], verts[b], verts[c], verts[d]
	n := NewellNormal(verts, f)

	// On a concave quad only the diagonal through the reflex corner stays inside.
	acInside := separates(n, pa, pc, pb, pd)
	bdInside := separates(n, pb, pd, pa, pc)
	switch {
	case acInside && !bdInside:
		return ac
	case bdInside && !acInside:
		return bd
	}

	if pb.DistanceSquared(pd) < pa.DistanceSquared(pc) {
		return bd
	}
	return ac
}

// separates reports whether p and q lie strictly on opposite sides of the
// line through s and e, measured in the plane with normal n.
func separates(n, s, e, p, q math.Vec3) bool {
	dir := e.Sub(s)
	sp := n.Dot(dir.Cross(p.Sub(s)))
	sq := n.Dot(dir.Cross(q.Sub(s)))
	return (sp < 0 && sq > 0) || (sp > 0 && sq < 0)
}

func fan(f Polygon) []Triangle {
	tris := make([]Triangle, 0, len(f)-2)
	for i := 1; i < len(f)-1; i++ {
		tris = append(tris, Triangle{f[0], f[i], f[i+1]})
	}
	return tris
}

func earClip(verts []math.Vec3, f Polygon) []Triangle {
	pts, ok := projectLoop(verts, f)
	if !ok {
		return fan(f)
	}
	return loopTriangles(f, clipEars(pts))
}

func beauty(verts []math.Vec3, f Polygon) []Triangle {
	pts, ok := projectLoop(verts, f)
	if !ok {
		return fan(f)
	}
	tris := clipEars(pts)
	flipEdges(verts, f, pts, tris)
	return loopTriangles(f, tris)
}

// projectLoop projects a face loop onto its dominant plane so that the loop
// runs counter-clockwise. It fails for loops without area.
func projectLoop(verts []math.Vec3, f Polygon) ([]math.Vec2, bool) {
	n := NewellNormal(verts, f)
	if n.LengthSquared() == 0 {
		return nil, false
	}

	axis := n.DominantAxis()
	flip := n.Component(axis) < 0
	pts := make([]math.Vec2, len(f))
	for i, idx := range f {
		p := verts[idx].DropAxis(axis)
		if flip {
			p.X = -p.X
		}
		pts[i] = p
	}
	return pts, true
}

// loopTriangles maps triangles of loop positions to vertex indices.
func loopTriangles(f Polygon, tris []Triangle) []Triangle {
	out := make([]Triangle, len(tris))
	for i, t := range tris {
		out[i] = Triangle{f[t[0]], f[t[1]], f[t[2]]}
	}
	return out
}

// clipEars triangulates a counter-clockwise loop and returns triangles of
// loop positions. What is left when no ear exists is fanned.
func clipEars(pts []math.Vec2) []Triangle {
	remaining := make(Polygon, len(pts))
	for i := range remaining {
		remaining[i] = i
	}

	tris := make([]Triangle, 0, len(pts)-2)
	for len(remaining) > 3 {
		ear := findEar(pts, remaining)
		if ear < 0 {
			break
		}
		k := len(remaining)
		prev, cur, next := remaining[(ear+k-1)%k], remaining[ear], remaining[(ear+1)%k]
		tris = append(tris, Triangle{prev, cur, next})
		remaining = append(remaining[:ear], remaining[ear+1:]...)
	}
	return append(tris, fan(remaining)...)
}

// findEar returns the position in remaining of a convex corner whose
// triangle contains no other remaining point, or -1.
func findEar(pts []math.Vec2, remaining []int) int {
	k := len(remaining)
	for i := 0; i < k; i++ {
		a := pts[remaining[(i+k-1)%k]]
		b := pts[remaining[i]]
		c := pts[remaining[(i+1)%k]]
		if math.Orient(a, b, c) <= 0 {
			continue
		}

		blocked := false
		for j := 0; j < k; j++ {
			if j == i || j == (i+k-1)%k || j == (i+1)%k {
				continue
			}
			p := pts[remaining[j]]
			if p == a || p == b || p == c {
				continue
			}
			if math.InTriangle(p, a, b, c) {
				blocked = true
				break
			}
		}
		if !blocked {
			return i
		}
	}
	return -1
}

// minAngleGain is how much a flip must widen the smallest angle to apply.
const minAngleGain = 1e-9

// flipEdges replaces the diagonal shared by two triangles with the other
// diagonal of their quad whenever the quad is strictly convex and the smallest
// angle of the pair grows. Triangles hold loop positions and keep their
// counter-clockwise order.
func flipEdges(verts []math.Vec3, f Polygon, pts []math.Vec2, tris []Triangle) {
	pos := func(i int) math.Vec3 { return verts[f[i]] }

	for pass := 0; pass < len(tris)*len(tris); pass++ {
		flipped := false
		for i := 0; i < len(tris); i++ {
			for j := i + 1; j < len(tris); j++ {
				a, b, c, d, ok := sharedEdge(tris[i], tris[j])
				if !ok {
					continue
				}
				// Quad loop a, d, b, c; the diagonal a-b becomes c-d.
				if math.Orient(pts[a], pts[d], pts[b]) <= 0 ||
					math.Orient(pts[d], pts[b], pts[c]) <= 0 ||
					math.Orient(pts[b], pts[c], pts[a]) <= 0 ||
					math.Orient(pts[c], pts[a], pts[d]) <= 0 {
					continue
				}

				before := min(minAngle(pos(a), pos(b), pos(c)), minAngle(pos(b), pos(a), pos(d)))
				after := min(minAngle(pos(a), pos(d), pos(c)), minAngle(pos(d), pos(b), pos(c)))
				if after <= before+minAngleGain {
					continue
				}

				tris[i] = Triangle{a, d, c}
				tris[j] = Triangle{d, b, c}
				flipped = true
			}
		}
		if !flipped {
			return
		}
	}
}

// sharedEdge finds an edge a->b of t1 that t2 runs as b->a. c is the third
// corner of t1 and d the third corner of t2.
func sharedEdge(t1, t2 Triangle) (a, b, c, d int, ok bool) {
	for k := 0; k < 3; k++ {
		a, b, c = t1[k], t1[(k+1)%3], t1[(k+2)%3]
		for m := 0; m < 3; m++ {
			if t2[m] == b && t2[(m+1)%3] == a {
				return a, b, c, t2[(m+2)%3], true
			}
		}
	}
	return 0, 0, 0, 0, false
}

// minAngle returns the smallest interior angle of triangle (p0, p1, p2).
func minAngle(p0, p1, p2 math.Vec3) float64 {
	return min(
		p1.Sub(p0).Angle(p2.Sub(p0)),
		p2.Sub(p1).Angle(p0.Sub(p1)),
		p0.Sub(p2).Angle(p1.Sub(p2)),
	)
}
