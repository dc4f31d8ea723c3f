// Package scene holds a named, ordered collection of kernel shapes and
// answers ray queries across all of them. It performs no spatial
// acceleration: every query visits every shape.
package scene
