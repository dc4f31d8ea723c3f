// Package engine provides the Lisp evaluation engine for raykit.
// It wraps zygomys in a sandboxed environment and builds a scene of named
// shapes from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/raykit/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Line    int
	Col     int
	Message string
	Name    string
}

// EvalResult bundles the output of a successful evaluation.
type EvalResult struct {
	// Scene holds every shape registered with defshape.
	Scene *scene.Scene
	// Value is the last top-level expression converted to a Go value:
	// float64, int64, string, bool, v3.Vec, kernel.Line, kernel.Shape,
	// []any, or nil.
	Value any
	// Printed is the zygomys rendering of the last expression.
	Printed  string
	Warnings []EvalWarning
}

// Engine wraps the zygomys interpreter for raykit evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate takes Lisp source code and produces a scene plus the value of
// the last expression. Each call creates a fresh zygomys sandbox.
//
// Return semantics:
//   - On success: returns result + nil errors + nil error
//   - On parse/eval/validation failure: returns nil result + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*EvalResult, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res, evalErrs, err := e.evaluate(source)
		ch <- evalResult{result: res, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*EvalResult, []EvalError, error) {
	sc := scene.New()

	// Empty source is a valid program that produces an empty scene.
	if strings.TrimSpace(source) == "" {
		return &EvalResult{Scene: sc}, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, sc)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}

	last, err := env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	verrs, vwarns := sc.Validate()
	if len(verrs) > 0 {
		evalErrs := make([]EvalError, 0, len(verrs))
		for _, ve := range verrs {
			evalErrs = append(evalErrs, EvalError{Message: ve.Error()})
		}
		return nil, evalErrs, nil
	}

	res := &EvalResult{Scene: sc}
	if last != nil {
		res.Value = goValue(last)
		res.Printed = last.SexpString(nil)
	}
	for _, w := range vwarns {
		res.Warnings = append(res.Warnings, EvalWarning{Message: w.Message, Name: w.Name})
	}
	return res, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
