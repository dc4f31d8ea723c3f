package scene

import (
	"fmt"
	"sort"

	"github.com/chazu/raykit/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Entry is a shape registered under a user-assigned name.
type Entry struct {
	Name  string
	Shape kernel.Shape
}

// Scene is an ordered set of named shapes. Insertion order is kept and
// decides ties between equally distant hits.
type Scene struct {
	entries []Entry
	index   map[string]int
}

// New creates an empty Scene.
func New() *Scene {
	return &Scene{index: make(map[string]int)}
}

// Add registers shape under name. Names must be non-empty and unique.
func (s *Scene) Add(name string, shape kernel.Shape) error {
	if name == "" {
		return fmt.Errorf("scene: shape name must not be empty")
	}
	if shape == nil {
		return fmt.Errorf("scene: shape %q is nil", name)
	}
	if _, dup := s.index[name]; dup {
		return fmt.Errorf("scene: duplicate shape name %q", name)
	}
	s.index[name] = len(s.entries)
	s.entries = append(s.entries, Entry{Name: name, Shape: shape})
	return nil
}

// Lookup returns the shape registered under name, or nil.
func (s *Scene) Lookup(name string) kernel.Shape {
	i, ok := s.index[name]
	if !ok {
		return nil
	}
	return s.entries[i].Shape
}

// MustLookup returns the shape registered under name, or panics.
func (s *Scene) MustLookup(name string) kernel.Shape {
	shape := s.Lookup(name)
	if shape == nil {
		panic(fmt.Sprintf("scene: no shape named %q", name))
	}
	return shape
}

// Names returns the shape names in insertion order.
func (s *Scene) Names() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a copy of the registered entries in insertion order.
func (s *Scene) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// Len returns the number of shapes.
func (s *Scene) Len() int {
	return len(s.entries)
}

// Hit is an intersection resolved against the scene.
type Hit struct {
	Name  string
	Shape kernel.Shape
	kernel.Intersection
	Point  v3.Vec // line.Point(Lambda)
	Normal v3.Vec // Shape.Normal(Point)
}

// barycentric is implemented by shapes that can express a point in
// vertex weights.
type barycentric interface {
	Barycentric(p v3.Vec) v3.Vec
}

func (s *Scene) resolve(line kernel.Line, e Entry, in kernel.Intersection) Hit {
	p := line.Point(in.Lambda)
	return Hit{
		Name:         e.Name,
		Shape:        e.Shape,
		Intersection: in,
		Point:        p,
		Normal:       e.Shape.Normal(p),
	}
}

// Closest returns the first hit ahead of the line's pivot across all shapes.
func (s *Scene) Closest(line kernel.Line) (*Hit, bool) {
	shapes := make([]kernel.Shape, len(s.entries))
	for i, e := range s.entries {
		shapes[i] = e.Shape
	}
	in, idx, ok := kernel.Closest(line, shapes...)
	if !ok {
		return nil, false
	}
	hit := s.resolve(line, s.entries[idx], in)
	return &hit, true
}

// All returns every intersection of line with every shape, including the
// ones behind the pivot, ordered by λ. Equal λ keeps insertion order.
func (s *Scene) All(line kernel.Line) []Hit {
	var hits []Hit
	for _, e := range s.entries {
		for _, lambda := range e.Shape.Intersects(line) {
			in := kernel.Intersection{Lambda: lambda}
			if b, ok := e.Shape.(barycentric); ok {
				bary := b.Barycentric(line.Point(lambda))
				in.Barycentric = &bary
			}
			hits = append(hits, s.resolve(line, e, in))
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Lambda < hits[j].Lambda
	})
	return hits
}
