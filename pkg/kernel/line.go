package kernel

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Line is the parametric line a + v·λ through two points. λ = 0 is the
// pivot and λ = 1 the second defining point.
type Line struct {
	a  v3.Vec  // pivot
	v  v3.Vec  // direction, not normalised
	qa float64 // |v|², cached for the sphere quadratic and Distance
}

// NewLine returns the line from a through b.
func NewLine(a, b v3.Vec) (Line, error) {
	v := b.Sub(a)
	qa := len2(v)
	if qa == 0 {
		return Line{}, fmt.Errorf("kernel: new line %s -> %s: %w", fmtVec(a), fmtVec(b), ErrDegenerateLine)
	}
	return Line{a: a, v: v, qa: qa}, nil
}

// MustLine is like NewLine but panics on error.
func MustLine(a, b v3.Vec) Line {
	l, err := NewLine(a, b)
	if err != nil {
		panic(err.Error())
	}
	return l
}

// Pivot returns the point at λ = 0.
func (l Line) Pivot() v3.Vec { return l.a }

// Direction returns the (unnormalised) direction vector.
func (l Line) Direction() v3.Vec { return l.v }

// DirLen2 returns the squared length of the direction vector.
func (l Line) DirLen2() float64 { return l.qa }

// Point returns the point of the line at parameter lambda.
func (l Line) Point(lambda float64) v3.Vec {
	return l.a.Add(l.v.MulScalar(lambda))
}

// Distance returns the perpendicular distance from p to the infinite line.
// |ap × v| is the area of the parallelogram spanned by ap and v; dividing
// by |v| leaves its height.
func (l Line) Distance(p v3.Vec) float64 {
	ap := p.Sub(l.a)
	return ap.Cross(l.v).Length() / math.Sqrt(l.qa)
}

func (l Line) String() string {
	return fmt.Sprintf("A %s --> V %s", fmtVec(l.a), fmtVec(l.v))
}
