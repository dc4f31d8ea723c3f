package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func main() {
	script := flag.String("script", "", "Path to a .ray script (reads stdin when empty)")
	ray := flag.String("ray", "", "Trace the line through two points: 'ax,ay,az,bx,by,bz'")
	asJSON := flag.Bool("json", false, "Print the result as JSON")
	flag.Parse()

	source, err := readSource(*script)
	if err != nil {
		log.Fatalf("reading script: %v", err)
	}

	app := NewApp()
	var result EvalResult
	if *ray != "" {
		from, to, err := parseRay(*ray)
		if err != nil {
			log.Fatalf("-ray: %v", err)
		}
		result = app.Trace(source, from, to)
	} else {
		result = app.Evaluate(source)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			log.Fatalf("encoding result: %v", err)
		}
	} else {
		printResult(os.Stdout, result)
	}

	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}

func readSource(path string) (string, error) {
	if path == "" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

// parseRay parses six comma-separated numbers into the two points that
// define a line.
func parseRay(s string) (v3.Vec, v3.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 6 {
		return v3.Vec{}, v3.Vec{}, fmt.Errorf("expected 6 comma-separated numbers, got %d", len(parts))
	}
	var f [6]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return v3.Vec{}, v3.Vec{}, fmt.Errorf("component %d: %w", i, err)
		}
		f[i] = v
	}
	return v3.Vec{X: f[0], Y: f[1], Z: f[2]}, v3.Vec{X: f[3], Y: f[4], Z: f[5]}, nil
}

func printResult(w io.Writer, r EvalResult) {
	for _, e := range r.Errors {
		if e.Line > 0 {
			fmt.Fprintf(w, "error: line %d: %s\n", e.Line, e.Message)
		} else {
			fmt.Fprintf(w, "error: %s\n", e.Message)
		}
	}
	for _, wn := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", wn.Message)
	}
	for _, s := range r.Shapes {
		fmt.Fprintf(w, "%-12s %-8s %s\n", s.Name, s.Kind, s.Description)
	}
	for _, h := range r.Hits {
		fmt.Fprintf(w, "hit %-8s λ=%-10g at (%g, %g, %g)", h.Shape, h.Lambda, h.Point[0], h.Point[1], h.Point[2])
		if h.Barycentric != nil {
			b := *h.Barycentric
			fmt.Fprintf(w, " bary (%g, %g, %g)", b[0], b[1], b[2])
		}
		fmt.Fprintln(w)
	}
	if r.Value != "" {
		fmt.Fprintf(w, "=> %s\n", r.Value)
	}
}
