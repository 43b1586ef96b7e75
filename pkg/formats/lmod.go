// LMOD text model writer.
package formats

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	vecmath "github.com/Faultbox/lmodkit/pkg/math"
	"github.com/Faultbox/lmodkit/pkg/mesh"
)

// LMOD grammar keywords.
const (
	LMODHeader       = "# LMOD file"
	LMODMeshKey      = "mesh:"
	LMODPositionsKey = "vertex_positions:"
	LMODNormalsKey   = "vertex_normals:"
	LMODIndicesKey   = "vertex_indices:"
)

// Coordinate formatting.
const (
	lmodDecimals       = 4
	lmodTieDenominator = 32 // ties at the fourth decimal are exactly the odd multiples of 1/32
	lmodCoordSeparator = '\t'
	lmodIndexSeparator = ' '
)

// LMODWriter streams mesh blocks into an LMOD document.
// The document header is written before the first block.
type LMODWriter struct {
	w          *bufio.Writer
	headerDone bool
	meshes     int
}

// NewLMODWriter returns a writer that emits an LMOD document to w.
// The caller owns w; Close flushes but does not close it.
func NewLMODWriter(w io.Writer) *LMODWriter {
	return &LMODWriter{w: bufio.NewWriter(w)}
}

// WriteMesh appends the block for a triangulated mesh. A mesh that fails
// validation is rejected before any of its bytes are written.
func (lw *LMODWriter) WriteMesh(m *mesh.Mesh) error {
	block, err := MarshalMesh(m)
	if err != nil {
		return err
	}
	if err := lw.writeHeader(); err != nil {
		return err
	}
	if _, err := lw.w.Write(block); err != nil {
		return fmt.Errorf("writing mesh %q: %w", m.Name, err)
	}
	lw.meshes++
	return nil
}

// Meshes returns the number of blocks written so far.
func (lw *LMODWriter) Meshes() int {
	return lw.meshes
}

// Flush writes buffered data to the underlying writer.
func (lw *LMODWriter) Flush() error {
	return lw.w.Flush()
}

// Close writes the header if no mesh was written and flushes.
func (lw *LMODWriter) Close() error {
	if err := lw.writeHeader(); err != nil {
		return err
	}
	return lw.w.Flush()
}

func (lw *LMODWriter) writeHeader() error {
	if lw.headerDone {
		return nil
	}
	if _, err := lw.w.WriteString(LMODHeader + "\n"); err != nil {
		return fmt.Errorf("writing LMOD header: %w", err)
	}
	lw.headerDone = true
	return nil
}

// EncodeLMOD writes a complete document holding meshes in order.
func EncodeLMOD(w io.Writer, meshes []*mesh.Mesh) error {
	lw := NewLMODWriter(w)
	for _, m := range meshes {
		if err := lw.WriteMesh(m); err != nil {
			return err
		}
	}
	return lw.Close()
}

// EncodeLMODFile writes a complete document to path.
func EncodeLMODFile(path string, meshes []*mesh.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating LMOD file: %w", err)
	}
	if err := EncodeLMOD(f, meshes); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// MarshalMesh returns the LMOD block for one triangulated mesh, without the
// document header.
//
// Positions and normals are moved from the Z-up source basis to the Y-up
// engine basis and every triangle is emitted in reverse order. Indices of all
// triangles share one line with no delimiter between triangles, each index
// followed by a space.
func MarshalMesh(m *mesh.Mesh) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	tris, err := m.Triangles()
	if err != nil {
		return nil, err
	}

	// ~24 bytes per coordinate line, ~6 per index.
	buf := make([]byte, 0, 64+len(m.Vertices)*48+len(tris)*18)

	buf = append(buf, LMODMeshKey...)
	buf = append(buf, ' ')
	buf = append(buf, m.Name...)
	buf = append(buf, '\n')

	buf = append(buf, LMODPositionsKey...)
	buf = append(buf, '\n')
	for _, v := range m.Vertices {
		buf = appendVec3(buf, v.ZUpToYUp())
	}

	buf = append(buf, LMODNormalsKey...)
	buf = append(buf, '\n')
	for _, n := range m.Normals {
		buf = appendVec3(buf, n.ZUpToYUp())
	}

	buf = append(buf, LMODIndicesKey...)
	buf = append(buf, '\n')
	for _, t := range tris {
		for _, idx := range t.Reversed() {
			buf = strconv.AppendInt(buf, int64(idx), 10)
			buf = append(buf, lmodIndexSeparator)
		}
	}
	buf = append(buf, '\n')

	return buf, nil
}

func appendVec3(buf []byte, v vecmath.Vec3) []byte {
	buf = AppendCoord(buf, v.X)
	buf = append(buf, lmodCoordSeparator)
	buf = AppendCoord(buf, v.Y)
	buf = append(buf, lmodCoordSeparator)
	buf = AppendCoord(buf, v.Z)
	return append(buf, '\n')
}

// AppendCoord appends v in fixed-point notation with four decimals.
// The stored value is rounded correctly; a value lying exactly halfway
// between two candidates goes away from zero. Values that round to zero are
// written without a sign.
func AppendCoord(buf []byte, v float64) []byte {
	start := len(buf)
	if isCoordTie(v) {
		buf = appendTieAwayFromZero(buf, v)
	} else {
		buf = strconv.AppendFloat(buf, v, 'f', lmodDecimals, 64)
	}

	if buf[start] == '-' && isZeroDigits(buf[start+1:]) {
		buf = append(buf[:start], buf[start+1:]...)
	}
	return buf
}

// isCoordTie reports whether v is exactly halfway between two four-decimal
// values. Such a value is k + 0.5e-4 = (2k+1)/20000, which a binary float can
// only hold when it is an odd multiple of 1/32.
func isCoordTie(v float64) bool {
	t := v * lmodTieDenominator
	if math.IsInf(t, 0) || t != math.Trunc(t) {
		return false
	}
	return math.Mod(t, 2) != 0
}

// appendTieAwayFromZero formats a tie, which has exactly five decimals ending
// in 5, and increments the fourth decimal of its magnitude.
func appendTieAwayFromZero(buf []byte, v float64) []byte {
	digits := strconv.AppendFloat(nil, math.Abs(v), 'f', lmodDecimals+1, 64)
	digits = digits[:len(digits)-1]

	carry := true
	for i := len(digits) - 1; i >= 0 && carry; i-- {
		switch digits[i] {
		case '.':
		case '9':
			digits[i] = '0'
		default:
			digits[i]++
			carry = false
		}
	}

	if v < 0 {
		buf = append(buf, '-')
	}
	if carry {
		buf = append(buf, '1')
	}
	return append(buf, digits...)
}

func isZeroDigits(b []byte) bool {
	for _, c := range b {
		if c != '0' && c != '.' {
			return false
		}
	}
	return true
}

// FormatCoord returns v formatted as in an LMOD coordinate field.
func FormatCoord(v float64) string {
	return string(AppendCoord(nil, v))
}
