package serde

import (
	"fmt"

	smithygogen "github.com/smithy-lang/smithy-gogen"
	"github.com/smithy-lang/smithy-gogen/model"
	"github.com/smithy-lang/smithy-gogen/model/traits"
	"github.com/smithy-lang/smithy-gogen/symbol"
	"github.com/smithy-lang/smithy-gogen/writer"
)

// EmitDescriptorsFor writes descriptors for an explicit member subset, e.g.
// only the document-bound members of an operation input.
func (g *Generator) EmitDescriptorsFor(w *writer.Writer, members []*model.Member, structSym symbol.Symbol) ([]*FieldDescriptor, error) {
	sub := model.NewShape(model.ShapeID{Namespace: "synthetic", Name: structSym.Name}, model.ShapeTypeStructure, nil)
	for _, mem := range members {
		sub.AddMember(&model.Member{Name: mem.Name, Target: mem.Target, Traits: mem.Traits})
	}
	return g.EmitDescriptors(w, sub, structSym)
}

// EmitDocumentSerializer writes the standalone document serializer type for a
// structure or union shape, descriptors included.
func (g *Generator) EmitDocumentSerializer(w *writer.Writer, str *model.Shape) error {
	structSym, err := g.Symbols.SymbolOf(str)
	if err != nil {
		return err
	}
	fields, err := g.EmitDescriptors(w, str, structSym)
	if err != nil {
		return err
	}

	name := structSym.Name + "DocumentSerializer"
	w.OpenBlock("type $L struct {", name)
	if str.Type == model.ShapeTypeUnion {
		w.Write("Value $T", structSym)
	} else {
		w.Write("Value *$T", structSym)
	}
	w.CloseBlock("}")
	w.Blank()

	w.OpenBlock("func (d $L) Serialize(s $T) {", name, SerializerSym)
	defer func() {
		w.CloseBlock("}")
		w.Blank()
	}()

	if str.Type == model.ShapeTypeUnion {
		return g.emitUnionScope(w, structSym, fields)
	}
	w.Write("input := d.Value")
	return g.EmitStructScope(w, "s", structSym, fields)
}

// EmitStructScope opens a serializer scope over the object descriptor and
// serializes each field in sorted order. The value being serialized must be
// in scope as "input".
func (g *Generator) EmitStructScope(w *writer.Writer, serializerExpr string, structSym symbol.Symbol, fields []*FieldDescriptor) error {
	w.OpenBlock("$L.SerializeStruct($L, func(st *$T) {", serializerExpr, ObjDescriptorName(structSym), structWriterSym)
	defer w.CloseBlock("})")

	for _, f := range fields {
		memSym, err := g.Symbols.MemberSymbol(f.Member)
		if err != nil {
			return err
		}
		expr := "input." + symbol.FieldName(f.Member)
		if err := g.emitField(w, f, expr, memSym.Nullable); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) emitUnionScope(w *writer.Writer, structSym symbol.Symbol, fields []*FieldDescriptor) error {
	w.OpenBlock("s.SerializeStruct($L, func(st *$T) {", ObjDescriptorName(structSym), structWriterSym)
	defer w.CloseBlock("})")

	w.Write("switch v := d.Value.(type) {")
	defer w.Write("}")

	for _, f := range fields {
		variantSym := structSym
		variantSym.Name = structSym.Name + "Member" + symbol.FieldName(f.Member)
		w.Write("case *$T:", variantSym)
		w.Indent()
		err := g.emitField(w, f, "v.Value", false)
		w.Outdent()
		if err != nil {
			return err
		}
	}
	return nil
}

// emitField serializes one member into the open struct scope. Non-required
// members are null-guarded; required members are accessed unguarded.
func (g *Generator) emitField(w *writer.Writer, f *FieldDescriptor, expr string, nullable bool) error {
	if model.HasTrait[*traits.IdempotencyToken](f.Member.Traits) && f.Kind == KindString {
		// a token value is always serialized, generated when absent
		w.OpenBlock("if $L != nil {", expr)
		w.Write("st.Field($L, *$L)", f.VarName, expr)
		w.CloseBlock("} else {")
		w.Indent()
		w.Write("st.Field($L, s.Context().IdempotencyTokenProvider.GenerateToken())", f.VarName)
		w.CloseBlock("}")
		return nil
	}

	emit := func() error { return g.emitFieldValue(w, f, expr, nullable) }
	if nullable {
		w.OpenBlock("if $L != nil {", expr)
		defer w.CloseBlock("}")
	}
	return emit()
}

func (g *Generator) emitFieldValue(w *writer.Writer, f *FieldDescriptor, expr string, deref bool) error {
	star := ""
	if deref {
		star = "*"
	}

	switch {
	case f.Target.Type == model.ShapeTypeString && model.HasTrait[*traits.Enum](f.Target.Traits):
		w.Write("st.Field($L, $L.Value())", f.VarName, expr)

	case f.Kind == KindBlob:
		w.Write("st.Field($L, $T($L))", f.VarName, base64Fn("EncodeToString"), expr)

	case f.Kind == KindTimestamp:
		format, err := g.resolveTimestampFormat(f.Member)
		if err != nil {
			return err
		}
		fns := timestampFormatFns[format]
		if fns.Numeric {
			w.Write("st.RawField($L, $T($L$L))", f.VarName, timeFn(fns.Format), star, expr)
		} else {
			w.Write("st.Field($L, $T($L$L))", f.VarName, timeFn(fns.Format), star, expr)
		}

	case f.Kind == KindDocument, f.Kind == KindBigNumber:
		w.Write("st.Field($L, $L)", f.VarName, expr)

	case f.Kind == KindStruct:
		targetSym, err := g.Symbols.SymbolOf(f.Target)
		if err != nil {
			return err
		}
		w.Write("st.Field($L, $LDocumentSerializer{Value: $L})", f.VarName, targetSym.Name, expr)

	case f.Kind == KindList:
		if f.Child == nil {
			return missingChild(f)
		}
		w.OpenBlock("st.ListField($L, func(ls0 *$T) {", f.VarName, listWriterSym)
		err := g.emitListBody(w, f.Target, f.Child, expr, 0)
		w.CloseBlock("})")
		return err

	case f.Kind == KindMap:
		if f.Child == nil {
			return missingChild(f)
		}
		w.OpenBlock("st.MapField($L, func(ms0 *$T) {", f.VarName, mapWriterSym)
		err := g.emitMapBody(w, f.Target, f.Child, expr, 0)
		w.CloseBlock("})")
		return err

	default:
		w.Write("st.Field($L, $L$L)", f.VarName, star, expr)
	}
	return nil
}

func (g *Generator) resolveTimestampFormat(mem *model.Member) (string, error) {
	if g.TimestampFormat == nil {
		return traits.TimestampEpochSeconds, nil
	}
	return g.TimestampFormat(mem)
}

// emitListBody iterates the collection expression at the given depth. A
// sparse list serializes null for nil elements; a dense list skips them.
func (g *Generator) emitListBody(w *writer.Writer, container *model.Shape, desc *FieldDescriptor, expr string, depth int) error {
	elem := fmt.Sprintf("m%d", depth)
	ls := fmt.Sprintf("ls%d", depth)

	w.OpenBlock("for _, $L := range $L {", elem, expr)
	defer w.CloseBlock("}")

	if container.IsSparse() {
		w.OpenBlock("if $L == nil {", elem)
		w.Write("$L.SerializeNull($L)", ls, desc.VarName)
		w.Write("continue")
		w.CloseBlock("}")
	} else if desc.Kind == KindStruct {
		// dense containers drop null entries
		w.OpenBlock("if $L == nil {", elem)
		w.Write("continue")
		w.CloseBlock("}")
	}

	return g.emitElementValue(w, desc, elem, ls, depth, container.IsSparse())
}

// emitElementValue serializes one list element value.
func (g *Generator) emitElementValue(w *writer.Writer, desc *FieldDescriptor, elem, ls string, depth int, sparse bool) error {
	star := ""
	if sparse && desc.Kind != KindStruct && desc.Kind != KindList && desc.Kind != KindMap {
		star = "*"
	}

	switch {
	case desc.Target.Type == model.ShapeTypeString && model.HasTrait[*traits.Enum](desc.Target.Traits):
		w.Write("$L.SerializeString($L.Value())", ls, elem)

	case desc.Kind == KindBlob:
		w.Write("$L.SerializeString($T($L))", ls, base64Fn("EncodeToString"), elem)

	case desc.Kind == KindTimestamp:
		format, err := g.resolveTimestampFormat(desc.Member)
		if err != nil {
			return err
		}
		fns := timestampFormatFns[format]
		if fns.Numeric {
			w.Write("$L.SerializeRaw($T($L$L))", ls, timeFn(fns.Format), star, elem)
		} else {
			w.Write("$L.SerializeString($T($L$L))", ls, timeFn(fns.Format), star, elem)
		}

	case desc.Kind == KindStruct:
		targetSym, err := g.Symbols.SymbolOf(desc.Target)
		if err != nil {
			return err
		}
		w.Write("$L.SerializeStruct($LDocumentSerializer{Value: $L})", ls, targetSym.Name, elem)

	case desc.Kind == KindList:
		if desc.Child == nil {
			return missingChild(desc)
		}
		w.OpenBlock("$L.SerializeList($L, func(ls$L *$T) {", ls, desc.VarName, depth+1, listWriterSym)
		err := g.emitListBody(w, desc.Target, desc.Child, elem, depth+1)
		w.CloseBlock("})")
		return err

	case desc.Kind == KindMap:
		if desc.Child == nil {
			return missingChild(desc)
		}
		w.OpenBlock("$L.SerializeMap($L, func(ms$L *$T) {", ls, desc.VarName, depth+1, mapWriterSym)
		err := g.emitMapBody(w, desc.Target, desc.Child, elem, depth+1)
		w.CloseBlock("})")
		return err

	case desc.Kind == KindDocument:
		w.Write("$L.SerializeDocument($L)", ls, elem)

	default:
		w.Write("$L.Serialize$L($L$L)", ls, desc.Kind, star, elem)
	}
	return nil
}

// emitMapBody iterates the map expression at the given depth. A sparse map
// serializes a null entry for nil values; a dense map skips them.
func (g *Generator) emitMapBody(w *writer.Writer, container *model.Shape, desc *FieldDescriptor, expr string, depth int) error {
	key := fmt.Sprintf("key%d", depth)
	value := fmt.Sprintf("value%d", depth)
	ms := fmt.Sprintf("ms%d", depth)

	w.OpenBlock("for $L, $L := range $L {", key, value, expr)
	defer w.CloseBlock("}")

	if container.IsSparse() {
		w.OpenBlock("if $L == nil {", value)
		w.Write("$L.NullEntry($L)", ms, key)
		w.Write("continue")
		w.CloseBlock("}")
	} else if desc.Kind == KindStruct {
		// dense containers drop null entries
		w.OpenBlock("if $L == nil {", value)
		w.Write("continue")
		w.CloseBlock("}")
	}

	star := ""
	if container.IsSparse() && desc.Kind != KindStruct && desc.Kind != KindList && desc.Kind != KindMap {
		star = "*"
	}

	switch {
	case desc.Target.Type == model.ShapeTypeString && model.HasTrait[*traits.Enum](desc.Target.Traits):
		w.Write("$L.Entry($L, $L.Value())", ms, key, value)

	case desc.Kind == KindBlob:
		w.Write("$L.Entry($L, $T($L))", ms, key, base64Fn("EncodeToString"), value)

	case desc.Kind == KindTimestamp:
		format, err := g.resolveTimestampFormat(desc.Member)
		if err != nil {
			return err
		}
		fns := timestampFormatFns[format]
		if fns.Numeric {
			w.Write("$L.RawEntry($L, $T($L$L))", ms, key, timeFn(fns.Format), star, value)
		} else {
			w.Write("$L.Entry($L, $T($L$L))", ms, key, timeFn(fns.Format), star, value)
		}

	case desc.Kind == KindStruct:
		targetSym, err := g.Symbols.SymbolOf(desc.Target)
		if err != nil {
			return err
		}
		w.Write("$L.Entry($L, $LDocumentSerializer{Value: $L})", ms, key, targetSym.Name, value)

	case desc.Kind == KindList:
		if desc.Child == nil {
			return missingChild(desc)
		}
		w.OpenBlock("$L.ListEntry($L, $L, func(ls$L *$T) {", ms, key, desc.VarName, depth+1, listWriterSym)
		err := g.emitListBody(w, desc.Target, desc.Child, value, depth+1)
		w.CloseBlock("})")
		return err

	case desc.Kind == KindMap:
		if desc.Child == nil {
			return missingChild(desc)
		}
		w.OpenBlock("$L.MapEntry($L, $L, func(ms$L *$T) {", ms, key, desc.VarName, depth+1, mapWriterSym)
		err := g.emitMapBody(w, desc.Target, desc.Child, value, depth+1)
		w.CloseBlock("})")
		return err

	default:
		w.Write("$L.Entry($L, $L$L)", ms, key, star, value)
	}
	return nil
}

func missingChild(desc *FieldDescriptor) error {
	return smithygogen.Errorf(smithygogen.ErrUnknownShape, desc.Member.ID.String(),
		"container member has no synthetic child descriptor")
}
