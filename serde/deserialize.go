package serde

import (
	"fmt"

	"github.com/smithy-lang/smithy-gogen/model"
	"github.com/smithy-lang/smithy-gogen/model/traits"
	"github.com/smithy-lang/smithy-gogen/symbol"
	"github.com/smithy-lang/smithy-gogen/writer"
)

// EmitDocumentDeserializer writes the standalone document deserializer type
// for a structure or union shape, descriptors included.
func (g *Generator) EmitDocumentDeserializer(w *writer.Writer, str *model.Shape) error {
	structSym, err := g.Symbols.SymbolOf(str)
	if err != nil {
		return err
	}
	fields, err := g.EmitDescriptors(w, str, structSym)
	if err != nil {
		return err
	}

	name := structSym.Name + "DocumentDeserializer"
	w.Write("type $L struct{}", name)
	w.Blank()

	if str.Type == model.ShapeTypeUnion {
		w.OpenBlock("func (d $L) Deserialize(ds $T) ($T, error) {", name, DeserializerSym, structSym)
		w.Write("var result $T", structSym)
		err = g.emitStructReadLoop(w, "ds", structSym, fields, func(f *FieldDescriptor) error {
			return g.emitUnionVariantDecode(w, structSym, f)
		})
		if err != nil {
			return err
		}
		w.Write("return result, nil")
	} else {
		w.OpenBlock("func (d $L) Deserialize(ds $T) (*$T, error) {", name, DeserializerSym, structSym)
		w.Write("builder := &$T{}", structSym)
		err = g.emitStructReadLoop(w, "ds", structSym, fields, func(f *FieldDescriptor) error {
			return g.emitBuilderAssign(w, f)
		})
		if err != nil {
			return err
		}
		w.Write("return builder, nil")
	}
	w.CloseBlock("}")
	w.Blank()
	return nil
}

// EmitDeserializeStructScope emits the descriptor-dispatch read loop into an
// existing function body. The result object must be in scope as "builder";
// the enclosing function must return (T, error).
func (g *Generator) EmitDeserializeStructScope(w *writer.Writer, deserializerExpr string, structSym symbol.Symbol, fields []*FieldDescriptor) error {
	return g.emitStructReadLoop(w, deserializerExpr, structSym, fields, func(f *FieldDescriptor) error {
		return g.emitBuilderAssign(w, f)
	})
}

// emitStructReadLoop opens the struct reader and emits the index-dispatch
// loop: each known index decodes its member, the no-more-fields sentinel
// breaks, unknown indices skip the value.
func (g *Generator) emitStructReadLoop(w *writer.Writer, deserializerExpr string, structSym symbol.Symbol, fields []*FieldDescriptor, decode func(*FieldDescriptor) error) error {
	w.Write("st := $L.DeserializeStruct($L)", deserializerExpr, ObjDescriptorName(structSym))
	w.OpenBlock("for {")

	w.Write("idx := st.FindNextFieldIndex()")
	w.OpenBlock("if idx == $T {", noMoreFieldsSym)
	w.Write("break")
	w.CloseBlock("}")

	w.Write("switch idx {")
	for _, f := range fields {
		w.Write("case $L.Index():", f.VarName)
		w.Indent()
		if err := decode(f); err != nil {
			return err
		}
		w.Outdent()
	}
	w.Write("default:")
	w.Indent()
	w.Write("st.SkipValue()")
	w.Outdent()
	w.Write("}")

	w.OpenBlock("if err := st.Err(); err != nil {")
	w.Write("return nil, err")
	w.CloseBlock("}")

	w.CloseBlock("}")
	return nil
}

// emitBuilderAssign decodes one field from the open struct reader "st" into
// the builder.
func (g *Generator) emitBuilderAssign(w *writer.Writer, f *FieldDescriptor) error {
	memSym, err := g.Symbols.MemberSymbol(f.Member)
	if err != nil {
		return err
	}
	field := "builder." + symbol.FieldName(f.Member)

	return g.emitValueDecode(w, "st", f, 0, func(expr string, addressable bool) {
		if memSym.Nullable && addressable {
			w.Write("$L = &$L", field, expr)
			return
		}
		w.Write("$L = $L", field, expr)
	})
}

// emitUnionVariantDecode decodes one variant from the open struct reader and
// sets it as the union result.
func (g *Generator) emitUnionVariantDecode(w *writer.Writer, unionSym symbol.Symbol, f *FieldDescriptor) error {
	variantSym := unionSym
	variantSym.Name = unionSym.Name + "Member" + symbol.FieldName(f.Member)

	return g.emitValueDecode(w, "st", f, 0, func(expr string, addressable bool) {
		w.Write("result = &$T{Value: $L}", variantSym, expr)
	})
}

// emitValueDecode decodes the current value from the reader and hands the
// decoded expression to assign. addressable reports whether the expression
// is a local variable whose address may be taken.
func (g *Generator) emitValueDecode(w *writer.Writer, reader string, f *FieldDescriptor, depth int, assign func(expr string, addressable bool)) error {
	v := fmt.Sprintf("v%d", depth)

	switch {
	case f.Target.Type == model.ShapeTypeString && model.HasTrait[*traits.Enum](f.Target.Traits):
		fromValue, err := g.enumFromValueSym(f.Target)
		if err != nil {
			return err
		}
		w.Write("$L := $T($L.DeserializeString())", v, fromValue, reader)
		assign(v, true)

	case f.Kind == KindBlob:
		w.Write("$L, err := $T($L.DeserializeString())", v, base64Fn("DecodeString"), reader)
		w.OpenBlock("if err != nil {")
		w.Write("return nil, err")
		w.CloseBlock("}")
		assign(v, false)

	case f.Kind == KindTimestamp:
		format, err := g.resolveTimestampFormat(f.Member)
		if err != nil {
			return err
		}
		fns := timestampFormatFns[format]
		if fns.Numeric {
			w.Write("$L := $T($L.DeserializeDouble())", v, timeFn(fns.Parse), reader)
		} else {
			w.Write("$L, err := $T($L.DeserializeString())", v, timeFn(fns.Parse), reader)
			w.OpenBlock("if err != nil {")
			w.Write("return nil, err")
			w.CloseBlock("}")
		}
		assign(v, true)

	case f.Kind == KindDocument:
		assign(reader+".DeserializeDocument()", false)

	case f.Kind == KindBigNumber:
		assign(reader+".DeserializeBigNumber()", false)

	case f.Kind == KindStruct:
		targetSym, err := g.Symbols.SymbolOf(f.Target)
		if err != nil {
			return err
		}
		w.Write("$L, err := $LDocumentDeserializer{}.Deserialize($L.Deserializer())", v, targetSym.Name, reader)
		w.OpenBlock("if err != nil {")
		w.Write("return nil, err")
		w.CloseBlock("}")
		assign(v, false)

	case f.Kind == KindList:
		if f.Child == nil {
			return missingChild(f)
		}
		coll, err := g.emitListDecode(w, reader, f, depth)
		if err != nil {
			return err
		}
		assign(coll, false)

	case f.Kind == KindMap:
		if f.Child == nil {
			return missingChild(f)
		}
		coll, err := g.emitMapDecode(w, reader, f, depth)
		if err != nil {
			return err
		}
		assign(coll, false)

	default:
		w.Write("$L := $L.Deserialize$L()", v, reader, f.Kind)
		assign(v, true)
	}
	return nil
}

// emitListDecode emits the element read loop for the container level held by
// desc and returns the collection variable name. A sparse list stores nil
// for null elements; a dense list drops them and continues.
func (g *Generator) emitListDecode(w *writer.Writer, reader string, desc *FieldDescriptor, depth int) (string, error) {
	coll := fmt.Sprintf("collection%d", depth)
	ls := fmt.Sprintf("ls%d", depth)

	containerSym, err := g.Symbols.SymbolOf(desc.Target)
	if err != nil {
		return "", err
	}
	w.UseSymbol(containerSym)

	w.Write("$L := $L{}", coll, containerSym.Name)
	w.Write("$L := $L.DeserializeList($L)", ls, reader, desc.VarName)
	w.OpenBlock("for $L.HasNextElement() {", ls)

	sparse := desc.Target.IsSparse()
	if err := g.emitEntryNull(w, ls, desc, sparse, func() {
		w.Write("$L = append($L, nil)", coll, coll)
	}); err != nil {
		return "", err
	}

	err = g.emitValueDecode(w, ls, desc.Child, depth+1, func(expr string, addressable bool) {
		elemSym, symErr := g.Symbols.MemberSymbol(desc.Child.Member)
		if symErr == nil && sparse && addressable && needsPointer(elemSym) {
			w.Write("$L = append($L, &$L)", coll, coll, expr)
			return
		}
		w.Write("$L = append($L, $L)", coll, coll, expr)
	})
	if err != nil {
		return "", err
	}

	w.CloseBlock("}")
	return coll, nil
}

// emitMapDecode is the map analog of emitListDecode.
func (g *Generator) emitMapDecode(w *writer.Writer, reader string, desc *FieldDescriptor, depth int) (string, error) {
	coll := fmt.Sprintf("collection%d", depth)
	ms := fmt.Sprintf("ms%d", depth)
	key := fmt.Sprintf("key%d", depth)

	containerSym, err := g.Symbols.SymbolOf(desc.Target)
	if err != nil {
		return "", err
	}
	w.UseSymbol(containerSym)

	w.Write("$L := $L{}", coll, containerSym.Name)
	w.Write("$L := $L.DeserializeMap($L)", ms, reader, desc.VarName)
	w.OpenBlock("for $L.HasNextEntry() {", ms)
	w.Write("$L := $L.Key()", key, ms)

	sparse := desc.Target.IsSparse()
	if err := g.emitEntryNull(w, ms, desc, sparse, func() {
		w.Write("$L[$L] = nil", coll, key)
	}); err != nil {
		return "", err
	}

	err = g.emitValueDecode(w, ms, desc.Child, depth+1, func(expr string, addressable bool) {
		elemSym, symErr := g.Symbols.MemberSymbol(desc.Child.Member)
		if symErr == nil && sparse && addressable && needsPointer(elemSym) {
			w.Write("$L[$L] = &$L", coll, key, expr)
			return
		}
		w.Write("$L[$L] = $L", coll, key, expr)
	})
	if err != nil {
		return "", err
	}

	w.CloseBlock("}")
	return coll, nil
}

// emitEntryNull writes the null-entry arm. Sparse containers store the null
// via storeNil; dense containers deserialize the null and continue, dropping
// the entry.
func (g *Generator) emitEntryNull(w *writer.Writer, reader string, desc *FieldDescriptor, sparse bool, storeNil func()) error {
	w.OpenBlock("if !$L.NextHasValue() {", reader)
	w.Write("$L.DeserializeNull()", reader)
	if sparse {
		storeNil()
	}
	w.Write("continue")
	w.CloseBlock("}")
	return nil
}

// needsPointer reports whether a sparse entry of this symbol is stored
// through a pointer, as opposed to a nil-able composite.
func needsPointer(sym symbol.Symbol) bool {
	return sym.FieldRef() == "*"+sym.Qualified()
}

func (g *Generator) enumFromValueSym(target *model.Shape) (symbol.Symbol, error) {
	targetSym, err := g.Symbols.SymbolOf(target)
	if err != nil {
		return symbol.Symbol{}, err
	}
	fromValue := targetSym
	fromValue.Name = targetSym.Name + "FromValue"
	return fromValue, nil
}
