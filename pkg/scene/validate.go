package scene

import (
	"fmt"
	"math"

	"github.com/chazu/raykit/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ValidationSeverity indicates whether a finding makes query results
// meaningless or is merely advisory.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // results are meaningless
	SeverityWarning                           // results are degenerate but defined
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single blocking finding.
type ValidationError struct {
	Name     string // shape name, empty if scene-level
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] shape %q: %s", e.Severity, e.Name, e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	Name    string
	Message string
}

// Validate checks the scene for shapes whose queries cannot produce
// meaningful results. The kernel constructors already reject degenerate
// lines, normals and triangles; what is left are caller contracts such as
// a positive sphere radius and finite coordinates. Read-only.
func (s *Scene) Validate() ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	for _, e := range s.entries {
		for _, p := range definingPoints(e.Shape) {
			if !finite(p) {
				errs = append(errs, ValidationError{
					Name:     e.Name,
					Message:  fmt.Sprintf("non-finite coordinate %v", p),
					Severity: SeverityError,
				})
				break
			}
		}

		sp, ok := e.Shape.(*kernel.Sphere)
		if !ok {
			continue
		}
		switch r := sp.Radius(); {
		case math.IsNaN(r) || math.IsInf(r, 0):
			errs = append(errs, ValidationError{
				Name:     e.Name,
				Message:  fmt.Sprintf("sphere radius is %v", r),
				Severity: SeverityError,
			})
		case r <= 0:
			warnings = append(warnings, ValidationWarning{
				Name:    e.Name,
				Message: fmt.Sprintf("sphere radius is %.4f, should be positive", r),
			})
		}
	}

	return errs, warnings
}

// definingPoints returns the points a shape was built from.
func definingPoints(shape kernel.Shape) []v3.Vec {
	switch sh := shape.(type) {
	case *kernel.Plane:
		return []v3.Vec{sh.Point(), sh.Normal(v3.Vec{})}
	case *kernel.Sphere:
		return []v3.Vec{sh.Center()}
	case *kernel.Triangle:
		a, b, c := sh.Vertices()
		return []v3.Vec{a, b, c}
	}
	return nil
}

func finite(v v3.Vec) bool {
	for _, f := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
