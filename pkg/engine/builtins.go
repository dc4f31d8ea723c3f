package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/raykit/pkg/kernel"
	"github.com/chazu/raykit/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms raykit Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: closest-hit -> closest_hit
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpLine wraps a kernel.Line so it can be returned from `line` and
// consumed by the query builtins.
type sexpLine struct {
	line kernel.Line
}

func (l *sexpLine) SexpString(ps *zygo.PrintState) string {
	a, v := l.line.Pivot(), l.line.Direction()
	return fmt.Sprintf("(line %g %g %g -> %g %g %g)", a.X, a.Y, a.Z, v.X, v.Y, v.Z)
}
func (l *sexpLine) Type() *zygo.RegisteredType { return nil }

// sexpShape wraps a kernel.Shape. Shapes registered with defshape carry
// their scene name.
type sexpShape struct {
	shape kernel.Shape
	name  string
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	if s.name != "" {
		return fmt.Sprintf("(shape %q)", s.name)
	}
	return fmt.Sprintf("(%s %v)", kernel.Kind(s.shape), s.shape)
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// arg returns the keyword argument named kw, falling back to the positional
// argument at pos.
func (pa kwArgs) arg(kw string, pos int) (zygo.Sexp, bool) {
	if v, ok := pa.kw[kw]; ok {
		return v, true
	}
	if pos < len(pa.positional) {
		return pa.positional[pos], true
	}
	return nil, false
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a v3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toLine extracts a kernel.Line from a sexpLine.
func toLine(s zygo.Sexp) (kernel.Line, error) {
	if l, ok := s.(*sexpLine); ok {
		return l.line, nil
	}
	return kernel.Line{}, fmt.Errorf("expected line, got %T (%s)", s, s.SexpString(nil))
}

// toShape extracts a kernel.Shape from a sexpShape.
func toShape(s zygo.Sexp) (kernel.Shape, error) {
	if sh, ok := s.(*sexpShape); ok {
		return sh.shape, nil
	}
	return nil, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// shapeAndLine extracts the (shape line) argument pair shared by the
// query builtins.
func shapeAndLine(fn string, args []zygo.Sexp) (kernel.Shape, kernel.Line, error) {
	if len(args) != 2 {
		return nil, kernel.Line{}, fmt.Errorf("%s requires a shape and a line, got %d arguments", fn, len(args))
	}
	shape, err := toShape(args[0])
	if err != nil {
		return nil, kernel.Line{}, fmt.Errorf("%s: %w", fn, err)
	}
	line, err := toLine(args[1])
	if err != nil {
		return nil, kernel.Line{}, fmt.Errorf("%s: %w", fn, err)
	}
	return shape, line, nil
}

// goValue converts the result of an evaluation into a plain Go value.
func goValue(s zygo.Sexp) any {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return v.Val
	case *zygo.SexpFloat:
		return v.Val
	case *zygo.SexpStr:
		return v.S
	case *zygo.SexpBool:
		return v.Val
	case *sexpVec3:
		return v.vec
	case *sexpLine:
		return v.line
	case *sexpShape:
		return v.shape
	case *zygo.SexpArray:
		out := make([]any, len(v.Val))
		for i, item := range v.Val {
			out[i] = goValue(item)
		}
		return out
	}
	return nil
}

func floatArray(env *zygo.Zlisp, fs []float64) *zygo.SexpArray {
	items := make([]zygo.Sexp, len(fs))
	for i, f := range fs {
		items[i] = &zygo.SexpFloat{Val: f}
	}
	return &zygo.SexpArray{Val: items, Env: env}
}

func hitArray(env *zygo.Zlisp, h scene.Hit) *zygo.SexpArray {
	return &zygo.SexpArray{
		Val: []zygo.Sexp{&zygo.SexpStr{S: h.Name}, &zygo.SexpFloat{Val: h.Lambda}},
		Env: env,
	}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all raykit DSL builtins into a zygomys environment.
// defshape populates the provided scene; cast and hits query it.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, sc *scene.Scene) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: v3.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (line (vec3 0 0 0) (vec3 0 0 1))
	// -----------------------------------------------------------------------
	env.AddFunction("line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("line requires two points, got %d arguments", len(args))
		}
		a, err := toVec3(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("line: from: %w", err)
		}
		b, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("line: to: %w", err)
		}
		l, err := kernel.NewLine(a, b)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("line: %w", err)
		}
		return &sexpLine{line: l}, nil
	})

	// -----------------------------------------------------------------------
	// (plane :at (vec3 0 0 0) :normal (vec3 0 0 1))
	// -----------------------------------------------------------------------
	env.AddFunction("plane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		at, ok := pa.arg("at", 0)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("plane requires :at")
		}
		a, err := toVec3(at)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane: at: %w", err)
		}
		nv, ok := pa.arg("normal", 1)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("plane requires :normal")
		}
		n, err := toVec3(nv)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane: normal: %w", err)
		}

		p, err := kernel.NewPlane(a, n)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane: %w", err)
		}
		return &sexpShape{shape: p}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere :center (vec3 0 0 5) :radius 1)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		cv, ok := pa.arg("center", 0)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("sphere requires :center")
		}
		c, err := toVec3(cv)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: center: %w", err)
		}
		rv, ok := pa.arg("radius", 1)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("sphere requires :radius")
		}
		r, err := toFloat64(rv)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
		}

		return &sexpShape{shape: kernel.NewSphere(c, r)}, nil
	})

	// -----------------------------------------------------------------------
	// (triangle (vec3 0 0 0) (vec3 1 0 0) (vec3 0 1 0))
	// -----------------------------------------------------------------------
	env.AddFunction("triangle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("triangle requires exactly 3 vertices, got %d", len(args))
		}
		var vs [3]v3.Vec
		for i, a := range args {
			v, err := toVec3(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("triangle: vertex %d: %w", i, err)
			}
			vs[i] = v
		}
		tri, err := kernel.NewTriangle(vs[0], vs[1], vs[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("triangle: %w", err)
		}
		return &sexpShape{shape: tri}, nil
	})

	// -----------------------------------------------------------------------
	// (defshape "name" (sphere ...))
	// -----------------------------------------------------------------------
	env.AddFunction("defshape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("defshape requires a name and a shape expression")
		}
		shapeName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape: name: %w", err)
		}
		shape, err := toShape(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape: %w", err)
		}
		if err := sc.Add(shapeName, shape); err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape: %w", err)
		}
		return &sexpShape{shape: shape, name: shapeName}, nil
	})

	// -----------------------------------------------------------------------
	// (shape "name")
	// -----------------------------------------------------------------------
	env.AddFunction("shape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("shape requires a name argument")
		}
		shapeName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shape: name: %w", err)
		}
		shape := sc.Lookup(shapeName)
		if shape == nil {
			return zygo.SexpNull, fmt.Errorf("shape: no shape named %q", shapeName)
		}
		return &sexpShape{shape: shape, name: shapeName}, nil
	})

	// -----------------------------------------------------------------------
	// (intersects shape line) -> [lambda ...]
	// -----------------------------------------------------------------------
	env.AddFunction("intersects", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		shape, line, err := shapeAndLine(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return floatArray(env, shape.Intersects(line)), nil
	})

	// -----------------------------------------------------------------------
	// (closest shape line) -> lambda or nil
	// -----------------------------------------------------------------------
	env.AddFunction("closest", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		shape, line, err := shapeAndLine(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		hit, ok := shape.ClosestIntersection(line)
		if !ok {
			return zygo.SexpNull, nil
		}
		return &zygo.SexpFloat{Val: hit.Lambda}, nil
	})

	// -----------------------------------------------------------------------
	// (cast line) -> ["name" lambda] or nil
	// -----------------------------------------------------------------------
	env.AddFunction("cast", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("cast requires a line argument")
		}
		line, err := toLine(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cast: %w", err)
		}
		hit, ok := sc.Closest(line)
		if !ok {
			return zygo.SexpNull, nil
		}
		return hitArray(env, *hit), nil
	})

	// -----------------------------------------------------------------------
	// (hits line) -> [["name" lambda] ...] ordered by lambda
	// -----------------------------------------------------------------------
	env.AddFunction("hits", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("hits requires a line argument")
		}
		line, err := toLine(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("hits: %w", err)
		}
		all := sc.All(line)
		items := make([]zygo.Sexp, len(all))
		for i, h := range all {
			items[i] = hitArray(env, h)
		}
		return &zygo.SexpArray{Val: items, Env: env}, nil
	})

	// -----------------------------------------------------------------------
	// (point line lambda) -> vec3
	// -----------------------------------------------------------------------
	env.AddFunction("point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("point requires a line and a lambda")
		}
		line, err := toLine(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point: %w", err)
		}
		lambda, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point: lambda: %w", err)
		}
		return &sexpVec3{vec: line.Point(lambda)}, nil
	})

	// -----------------------------------------------------------------------
	// (distance line p) -> float
	// -----------------------------------------------------------------------
	env.AddFunction("distance", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("distance requires a line and a point")
		}
		line, err := toLine(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("distance: %w", err)
		}
		p, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("distance: %w", err)
		}
		return &zygo.SexpFloat{Val: line.Distance(p)}, nil
	})

	// -----------------------------------------------------------------------
	// (barycentric tri p) -> vec3
	// -----------------------------------------------------------------------
	env.AddFunction("barycentric", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("barycentric requires a triangle and a point")
		}
		shape, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("barycentric: %w", err)
		}
		tri, ok := shape.(*kernel.Triangle)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("barycentric: expected triangle, got %s", kernel.Kind(shape))
		}
		p, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("barycentric: %w", err)
		}
		return &sexpVec3{vec: tri.Barycentric(p)}, nil
	})

	// -----------------------------------------------------------------------
	// (normal shape p) -> vec3
	// -----------------------------------------------------------------------
	env.AddFunction("normal", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("normal requires a shape and a point")
		}
		shape, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("normal: %w", err)
		}
		p, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("normal: %w", err)
		}
		return &sexpVec3{vec: shape.Normal(p)}, nil
	})
}
