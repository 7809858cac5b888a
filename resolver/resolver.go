package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wkalt/ros2dyn/util/schema"
)

/*
Package resolver links the complex field types of a parsed schema to the
schemas they reference. Resolve walks references depth first in field order,
so the dependency order it records is deterministic and matches the order in
which dependencies appear in the canonical definition text.
*/

////////////////////////////////////////////////////////////////////////////////

// separator precedes each dependency in the canonical text.
var separator = strings.Repeat("=", 80)

// Graph is a root schema together with every schema it references,
// transitively. A Graph is immutable and safe for concurrent use.
type Graph struct {
	Root    *schema.Schema
	Schemas map[schema.MessageIdentifier]*schema.Schema

	// Order lists dependencies, excluding the root, in first-reached
	// depth-first order.
	Order []schema.MessageIdentifier
}

// Lookup returns the schema for id, which may be the root.
func (g *Graph) Lookup(id schema.MessageIdentifier) (*schema.Schema, bool) {
	s, ok := g.Schemas[id]
	return s, ok
}

// CanonicalText returns the root text followed by each dependency's text,
// each introduced by a line of 80 '=' characters and a "MSG: pkg/Name"
// header.
func (g *Graph) CanonicalText() string {
	sb := &strings.Builder{}
	sb.WriteString(g.Root.Text)
	for _, id := range g.Order {
		sb.WriteString("\n")
		sb.WriteString(separator)
		sb.WriteString("\nMSG: ")
		sb.WriteString(id.String())
		sb.WriteString("\n")
		sb.WriteString(g.Schemas[id].Text)
	}
	return sb.String()
}

// Resolve builds the dependency graph of root. It fails on the first
// reference that the registry cannot satisfy, and never returns a partial
// graph.
func Resolve(root *schema.Schema, registry Registry) (*Graph, error) {
	g := &Graph{
		Root:    root,
		Schemas: map[schema.MessageIdentifier]*schema.Schema{root.ID: root},
		Order:   []schema.MessageIdentifier{},
	}
	stack := []schema.MessageIdentifier{root.ID}
	if err := g.visit(root, registry, stack); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) visit(s *schema.Schema, registry Registry, stack []schema.MessageIdentifier) error {
	for _, dep := range s.Dependencies() {
		for i, id := range stack {
			if id == dep {
				path := append(append([]schema.MessageIdentifier{}, stack[i:]...), dep)
				return CyclicDependencyError{Path: path}
			}
		}
		if _, ok := g.Schemas[dep]; ok {
			continue
		}
		child, err := registry.Lookup(dep)
		if err != nil {
			if isNotFound(err) {
				return UnresolvedTypeError{ID: dep, Referrer: s.ID}
			}
			return fmt.Errorf("failed to look up %s: %w", dep, err)
		}
		g.Schemas[dep] = child
		g.Order = append(g.Order, dep)
		if err := g.visit(child, registry, append(stack, dep)); err != nil {
			return err
		}
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
