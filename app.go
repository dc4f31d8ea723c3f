package main

import (
	"fmt"
	"log"

	"github.com/chazu/raykit/pkg/engine"
	"github.com/chazu/raykit/pkg/kernel"
	"github.com/chazu/raykit/pkg/kernel/sdfx"
	"github.com/chazu/raykit/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// App evaluates raykit scripts and converts the outcome into a
// JSON-serializable result.
type App struct {
	engine *engine.Engine
}

// ShapeData describes one named shape of the evaluated scene.
type ShapeData struct {
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	Description string   `json:"description"`
	Bounds      *BoxData `json:"bounds,omitempty"`
}

// BoxData is an axis-aligned bounding box.
type BoxData struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

// HitData is one ray/shape intersection.
type HitData struct {
	Shape       string      `json:"shape"`
	Lambda      float64     `json:"lambda"`
	Point       [3]float64  `json:"point"`
	Normal      [3]float64  `json:"normal"`
	Barycentric *[3]float64 `json:"barycentric,omitempty"`
	// Residual is the distance of Point from the sphere surface as measured
	// by its signed distance field. Only set for sphere hits.
	Residual *float64 `json:"residual,omitempty"`
}

// EvalErrorData is a JSON-serializable eval error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating a script.
type EvalResult struct {
	Shapes   []ShapeData     `json:"shapes"`
	Hits     []HitData       `json:"hits"`
	Value    string          `json:"value,omitempty"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates a new App with a fresh engine.
func NewApp() *App {
	return &App{engine: engine.NewEngine()}
}

// Evaluate takes Lisp source and returns the scene it builds plus the
// printed value of its last expression.
func (a *App) Evaluate(source string) EvalResult {
	result, _ := a.evaluate(source)
	return result
}

// Trace evaluates source and then intersects the line through from and to
// with every shape of the scene. Hits are ordered by λ and include the
// ones behind from.
func (a *App) Trace(source string, from, to v3.Vec) EvalResult {
	result, sc := a.evaluate(source)
	if sc == nil {
		return result
	}

	line, err := kernel.NewLine(from, to)
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	for _, h := range sc.All(line) {
		result.Hits = append(result.Hits, hitData(h))
	}
	return result
}

func (a *App) evaluate(source string) (EvalResult, *scene.Scene) {
	result := EvalResult{
		Shapes:   []ShapeData{},
		Hits:     []HitData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	res, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result, nil
	}

	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result, nil
	}

	for _, w := range res.Warnings {
		msg := w.Message
		if w.Name != "" {
			msg = fmt.Sprintf("%s: %s", w.Name, w.Message)
		}
		result.Warnings = append(result.Warnings, EvalErrorData{
			Line:    w.Line,
			Col:     w.Col,
			Message: msg,
		})
	}

	for _, e := range res.Scene.Entries() {
		result.Shapes = append(result.Shapes, shapeData(e))
	}
	if res.Value != nil {
		result.Value = res.Printed
	}
	return result, res.Scene
}

func shapeData(e scene.Entry) ShapeData {
	sd := ShapeData{
		Name:        e.Name,
		Kind:        kernel.Kind(e.Shape),
		Description: fmt.Sprint(e.Shape),
	}
	if box, ok := sdfx.Bounds(e.Shape); ok {
		sd.Bounds = &BoxData{Min: array(box.Min), Max: array(box.Max)}
	}
	return sd
}

func hitData(h scene.Hit) HitData {
	hd := HitData{
		Shape:  h.Name,
		Lambda: h.Lambda,
		Point:  array(h.Point),
		Normal: array(h.Normal),
	}
	if h.Barycentric != nil {
		b := array(*h.Barycentric)
		hd.Barycentric = &b
	}
	if s, ok := h.Shape.(*kernel.Sphere); ok {
		if field, err := sdfx.Sphere(s); err == nil {
			r := sdfx.Residual(field, h.Point)
			hd.Residual = &r
		}
	}
	return hd
}

func array(v v3.Vec) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
