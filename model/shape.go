// Package model holds the immutable Smithy shape graph the generator reads.
package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/smithy-lang/smithy-gogen/model/traits"
)

// ShapeType is a type of Smithy shape.
// See https://smithy.io/2.0/spec/idl.html#defining-shapes.
type ShapeType int

// Enumerates ShapeType per the Smithy IDL.
const (
	ShapeTypeBlob ShapeType = iota
	ShapeTypeBoolean
	ShapeTypeString
	ShapeTypeTimestamp
	ShapeTypeByte
	ShapeTypeShort
	ShapeTypeInteger
	ShapeTypeLong
	ShapeTypeFloat
	ShapeTypeDouble
	ShapeTypeBigDecimal
	ShapeTypeBigInteger
	ShapeTypeDocument
	ShapeTypeList
	ShapeTypeSet
	ShapeTypeMap
	ShapeTypeStructure
	ShapeTypeUnion
	ShapeTypeService
	ShapeTypeResource
	ShapeTypeOperation
)

var shapeTypeNames = map[ShapeType]string{
	ShapeTypeBlob:       "blob",
	ShapeTypeBoolean:    "boolean",
	ShapeTypeString:     "string",
	ShapeTypeTimestamp:  "timestamp",
	ShapeTypeByte:       "byte",
	ShapeTypeShort:      "short",
	ShapeTypeInteger:    "integer",
	ShapeTypeLong:       "long",
	ShapeTypeFloat:      "float",
	ShapeTypeDouble:     "double",
	ShapeTypeBigDecimal: "bigDecimal",
	ShapeTypeBigInteger: "bigInteger",
	ShapeTypeDocument:   "document",
	ShapeTypeList:       "list",
	ShapeTypeSet:        "set",
	ShapeTypeMap:        "map",
	ShapeTypeStructure:  "structure",
	ShapeTypeUnion:      "union",
	ShapeTypeService:    "service",
	ShapeTypeResource:   "resource",
	ShapeTypeOperation:  "operation",
}

// String returns the IDL name of the shape type.
func (t ShapeType) String() string {
	if n, ok := shapeTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("ShapeType(%d)", int(t))
}

// IsContainer reports whether the type is a list, set, or map.
func (t ShapeType) IsContainer() bool {
	return t == ShapeTypeList || t == ShapeTypeSet || t == ShapeTypeMap
}

// ShapeID fields of a Smithy shape ID.
type ShapeID struct {
	Namespace, Name, Member string
}

// ParseShapeID parses the IDL microformat "ns#Name$member".
func ParseShapeID(s string) ShapeID {
	ns, n, _ := strings.Cut(s, "#")
	n, m, _ := strings.Cut(n, "$")
	return ShapeID{Namespace: ns, Name: n, Member: m}
}

// String returns the IDL microformat for the shape ID.
func (s ShapeID) String() string {
	if s.Member == "" {
		return fmt.Sprintf("%s#%s", s.Namespace, s.Name)
	}
	return fmt.Sprintf("%s#%s$%s", s.Namespace, s.Name, s.Member)
}

// WithMember returns the member ID for the named member of this shape.
func (s ShapeID) WithMember(name string) ShapeID {
	return ShapeID{Namespace: s.Namespace, Name: s.Name, Member: name}
}

// TraitMap indexes the traits applied to a shape or member by trait ID.
type TraitMap map[string]traits.Trait

// Has reports whether the trait with the given ID is applied.
func (tm TraitMap) Has(id string) bool {
	_, ok := tm[id]
	return ok
}

// Get returns the trait with the given ID if applied.
func (tm TraitMap) Get(id string) (traits.Trait, bool) {
	t, ok := tm[id]
	return t, ok
}

// GetTrait returns the trait of type T applied to the trait map, if any.
func GetTrait[T traits.Trait](tm TraitMap) (T, bool) {
	var zero T
	opaque, ok := tm[zero.TraitID()]
	if !ok {
		return zero, false
	}
	t, ok := opaque.(T)
	return t, ok
}

// HasTrait reports whether a trait of type T is applied.
func HasTrait[T traits.Trait](tm TraitMap) bool {
	_, ok := GetTrait[T](tm)
	return ok
}

// Member is an edge in the shape graph: it names a target shape and carries
// its own traits.
type Member struct {
	ID     ShapeID
	Name   string
	Target ShapeID
	Traits TraitMap
}

// Shape is a node in the shape graph.
type Shape struct {
	ID     ShapeID
	Type   ShapeType
	Traits TraitMap

	// members in modeled order, for structure, union, list, set, and map
	// shapes. List/set shapes have the single member "member";
	// maps have "key" and "value".
	members []*Member
	byName  map[string]*Member

	// operation relationships
	Input  ShapeID
	Output ShapeID
	Errors []ShapeID

	// service relationships
	Operations []ShapeID
	Version    string
}

// NewShape creates a shape with the given members in modeled order.
func NewShape(id ShapeID, typ ShapeType, tm TraitMap, members ...*Member) *Shape {
	s := &Shape{
		ID:     id,
		Type:   typ,
		Traits: tm,
		byName: make(map[string]*Member, len(members)),
	}
	if s.Traits == nil {
		s.Traits = TraitMap{}
	}
	for _, m := range members {
		s.AddMember(m)
	}
	return s
}

// AddMember appends a member edge, assigning its member ID from the shape.
func (s *Shape) AddMember(m *Member) {
	m.ID = s.ID.WithMember(m.Name)
	if m.Traits == nil {
		m.Traits = TraitMap{}
	}
	s.members = append(s.members, m)
	s.byName[m.Name] = m
}

// Members returns the shape's members in modeled order.
func (s *Shape) Members() []*Member {
	return s.members
}

// SortedMembers returns the shape's members sorted by member name. Emission
// order for descriptors and document fields is always this order.
func (s *Shape) SortedMembers() []*Member {
	out := make([]*Member, len(s.members))
	copy(out, s.members)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Member returns the named member, if present.
func (s *Shape) Member(name string) (*Member, bool) {
	m, ok := s.byName[name]
	return m, ok
}

// ListMember returns the element member of a list or set shape.
func (s *Shape) ListMember() (*Member, bool) {
	return s.Member("member")
}

// MapValue returns the value member of a map shape.
func (s *Shape) MapValue() (*Member, bool) {
	return s.Member("value")
}

// IsSparse reports whether the container shape holds nullable entries.
func (s *Shape) IsSparse() bool {
	return HasTrait[*traits.Sparse](s.Traits)
}

// IsError reports whether the structure models an error response.
func (s *Shape) IsError() bool {
	return HasTrait[*traits.Error](s.Traits)
}
