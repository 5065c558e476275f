package model

import (
	"sort"

	smithygogen "github.com/smithy-lang/smithy-gogen"
)

// Model is the immutable shape graph for one generation run. It must not be
// mutated after integration preprocessing completes.
type Model struct {
	shapes map[ShapeID]*Shape
}

// NewModel creates a model over the given shapes.
func NewModel(shapes ...*Shape) *Model {
	m := &Model{shapes: make(map[ShapeID]*Shape, len(shapes))}
	for _, s := range shapes {
		m.shapes[s.ID] = s
	}
	return m
}

// Add registers a shape, replacing any previous shape with the same ID. Only
// integration preprocessing may call this.
func (m *Model) Add(s *Shape) {
	m.shapes[s.ID] = s
}

// Remove deletes a shape. Only integration preprocessing may call this.
func (m *Model) Remove(id ShapeID) {
	delete(m.shapes, id)
}

// Shape returns the shape with the given ID, if present.
func (m *Model) Shape(id ShapeID) (*Shape, bool) {
	s, ok := m.shapes[id]
	return s, ok
}

// ExpectShape returns the shape with the given ID, failing with an
// UnknownShape codegen error when absent.
func (m *Model) ExpectShape(id ShapeID) (*Shape, error) {
	if s, ok := m.shapes[id]; ok {
		return s, nil
	}
	return nil, smithygogen.Errorf(smithygogen.ErrUnknownShape, id.String(), "shape not found in model")
}

// TargetOf resolves a member edge to its target shape.
func (m *Model) TargetOf(mem *Member) (*Shape, error) {
	s, err := m.ExpectShape(mem.Target)
	if err != nil {
		return nil, smithygogen.Errorf(smithygogen.ErrUnknownShape, mem.ID.String(), "member targets unknown shape %s", mem.Target)
	}
	return s, nil
}

// ShapeIDs returns all shape IDs sorted lexically. Iteration over the model
// always uses this order so runs are deterministic.
func (m *Model) ShapeIDs() []ShapeID {
	ids := make([]ShapeID, 0, len(m.shapes))
	for id := range m.shapes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// ShapesOfType returns all shapes of the given type in ID order.
func (m *Model) ShapesOfType(typ ShapeType) []*Shape {
	var out []*Shape
	for _, id := range m.ShapeIDs() {
		if s := m.shapes[id]; s.Type == typ {
			out = append(out, s)
		}
	}
	return out
}

// Service returns the single service shape of the model, if present.
func (m *Model) Service() (*Shape, bool) {
	for _, id := range m.ShapeIDs() {
		if s := m.shapes[id]; s.Type == ShapeTypeService {
			return s, true
		}
	}
	return nil, false
}

// OperationsOf returns the operations bound to the service in ID order.
func (m *Model) OperationsOf(service *Shape) ([]*Shape, error) {
	ids := make([]ShapeID, len(service.Operations))
	copy(ids, service.Operations)
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	out := make([]*Shape, 0, len(ids))
	for _, id := range ids {
		op, err := m.ExpectShape(id)
		if err != nil {
			return nil, err
		}
		out = append(out, op)
	}
	return out, nil
}
