package serde

import (
	"fmt"

	"github.com/smithy-lang/smithy-gogen/model"
	"github.com/smithy-lang/smithy-gogen/model/traits"
	"github.com/smithy-lang/smithy-gogen/symbol"
	"github.com/smithy-lang/smithy-gogen/writer"
)

// FieldDescriptor describes one emitted descriptor constant. Direct members
// get one; members targeting containers additionally get one synthetic child
// descriptor per nesting level so nested serde calls have a descriptor at
// each depth.
type FieldDescriptor struct {
	// Index is the field's position in the sorted member list. Synthetic
	// child descriptors inherit the root's index.
	Index int
	// Member is the root member this descriptor chain belongs to.
	Member *model.Member
	// Target is the shape the descriptor level describes.
	Target *model.Shape
	// SerialName is the wire name: the jsonName trait value or member name.
	SerialName string
	// Kind is the serial kind of Target.
	Kind Kind
	// VarName is the emitted descriptor variable name.
	VarName string
	// Child is the next nesting level for container targets.
	Child *FieldDescriptor
}

// Generator emits descriptors and document (de)serialization code. The
// TimestampFormat hook resolves a member's document timestamp format; it is
// supplied by the protocol's binding resolver.
type Generator struct {
	Model           *model.Model
	Symbols         symbol.Provider
	TimestampFormat func(mem *model.Member) (string, error)
}

// descPrefix is the per-struct prefix isolating descriptor variables within
// the shared transform package.
func descPrefix(structSym symbol.Symbol) string {
	return symbol.LocalName(structSym.Name)
}

// ObjDescriptorName returns the emitted object descriptor variable name for a
// struct symbol.
func ObjDescriptorName(structSym symbol.Symbol) string {
	return descPrefix(structSym) + "ObjDescriptor"
}

// BuildDescriptors computes the descriptor list for a struct or union's
// members, sorted by member name. The returned list order defines the
// runtime field indices.
func (g *Generator) BuildDescriptors(str *model.Shape, structSym symbol.Symbol) ([]*FieldDescriptor, error) {
	prefix := descPrefix(structSym)

	var out []*FieldDescriptor
	for i, mem := range str.SortedMembers() {
		target, err := g.Model.TargetOf(mem)
		if err != nil {
			return nil, err
		}
		kind, err := KindOf(target)
		if err != nil {
			return nil, err
		}

		serialName := mem.Name
		if jn, ok := model.GetTrait[*traits.JSONName](mem.Traits); ok {
			serialName = jn.Name
		}

		root := &FieldDescriptor{
			Index:      i,
			Member:     mem,
			Target:     target,
			SerialName: serialName,
			Kind:       kind,
			VarName:    prefix + symbol.FieldName(mem) + "Descriptor",
		}

		// synthetic descriptors, one per container nesting level
		parent := root
		depth := 0
		for parent.Target.Type.IsContainer() {
			elem, ok := elementMember(parent.Target)
			if !ok {
				break
			}
			elemTarget, err := g.Model.TargetOf(elem)
			if err != nil {
				return nil, err
			}
			elemKind, err := KindOf(elemTarget)
			if err != nil {
				return nil, err
			}
			child := &FieldDescriptor{
				Index:      i,
				Member:     elem,
				Target:     elemTarget,
				SerialName: serialName,
				Kind:       elemKind,
				VarName:    fmt.Sprintf("%sC%d", parent.VarName[:len(parent.VarName)-len("Descriptor")], depth) + "Descriptor",
			}
			parent.Child = child
			parent = child
			depth++
		}

		out = append(out, root)
	}
	return out, nil
}

// elementMember returns the member a container recurses through: the element
// of a list or set, the value of a map.
func elementMember(container *model.Shape) (*model.Member, bool) {
	switch container.Type {
	case model.ShapeTypeList, model.ShapeTypeSet:
		return container.ListMember()
	case model.ShapeTypeMap:
		return container.MapValue()
	default:
		return nil, false
	}
}

// EmitDescriptors writes the descriptor constants and the object descriptor
// for a struct. Runtime indices are assigned by field position in the object
// descriptor, so dispatch by descriptor index matches sorted member order.
func (g *Generator) EmitDescriptors(w *writer.Writer, str *model.Shape, structSym symbol.Symbol) ([]*FieldDescriptor, error) {
	fields, err := g.BuildDescriptors(str, structSym)
	if err != nil {
		return nil, err
	}

	w.OpenBlock("var (")
	for _, f := range fields {
		for d := f; d != nil; d = d.Child {
			w.Write("$L = $T($S, $T)", d.VarName, newFieldDescriptorSym, d.SerialName, kindSym(d.Kind))
		}
	}
	w.Blank()
	w.OpenBlock("$L = $T($S,", ObjDescriptorName(structSym), newObjectDescriptorSym, structSym.Name)
	for _, f := range fields {
		w.Write("$L,", f.VarName)
	}
	w.CloseBlock(")")
	w.CloseBlock(")")
	w.Blank()
	return fields, nil
}

func kindSym(k Kind) symbol.Symbol {
	return symbol.External(rtSerde, "Kind"+string(k))
}
