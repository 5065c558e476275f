package protocol

import (
	smithygogen "github.com/smithy-lang/smithy-gogen"
	"github.com/smithy-lang/smithy-gogen/httpbinding"
	"github.com/smithy-lang/smithy-gogen/model"
	"github.com/smithy-lang/smithy-gogen/model/traits"
	"github.com/smithy-lang/smithy-gogen/symbol"
	"github.com/smithy-lang/smithy-gogen/writer"
)

// EmitOperationDeserializer writes the response deserializer type for an
// operation with output: headers, prefix headers, response code, and the
// payload or document body.
func (g *Generator) EmitOperationDeserializer(w *writer.Writer, op *model.Shape) error {
	return wrapOperation(op, g.emitOperationDeserializer(w, op))
}

func (g *Generator) emitOperationDeserializer(w *writer.Writer, op *model.Shape) error {
	opSym, err := g.Symbols.SymbolOf(op)
	if err != nil {
		return err
	}
	_, output, err := g.operationShapes(op)
	if err != nil {
		return err
	}
	if output == nil {
		return nil
	}
	bindings, err := g.Resolver.ResponseBindings(op)
	if err != nil {
		return err
	}
	descSym := symbol.Symbol{Name: opSym.Name + "Output"}
	return g.emitResponseDeserializer(w, opSym.Name+"OperationDeserializer", "DeserializeResponse", output, descSym, bindings)
}

// EmitErrorDeserializer writes the deserializer for one modeled error
// structure.
func (g *Generator) EmitErrorDeserializer(w *writer.Writer, errShape *model.Shape) error {
	errSym, err := g.Symbols.SymbolOf(errShape)
	if err != nil {
		return err
	}
	bindings, err := g.Resolver.ResponseBindings(errShape)
	if err != nil {
		return err
	}
	descSym := symbol.Symbol{Name: errSym.Name + "Error"}
	return g.emitResponseDeserializer(w, errSym.Name+"Deserializer", "DeserializeError", errShape, descSym, bindings)
}

func (g *Generator) emitResponseDeserializer(w *writer.Writer, typeName, methodName string, target *model.Shape, descSym symbol.Symbol, bindings []httpbinding.Binding) error {
	targetSym, err := g.Symbols.SymbolOf(target)
	if err != nil {
		return err
	}

	docBindings := httpbinding.DocumentBindings(bindings)
	if len(docBindings) > 0 {
		members := make([]*model.Member, 0, len(docBindings))
		for _, b := range docBindings {
			members = append(members, b.Member)
		}
		if _, err := g.Serde.EmitDescriptorsFor(w, members, descSym); err != nil {
			return err
		}
	}

	w.Write("type $L struct{}", typeName)
	w.Blank()
	w.OpenBlock("func (d $L) $L(ctx *$T, resp *$T) (*$T, error) {", typeName, methodName, executionContextSym, responseSym, targetSym)
	defer func() {
		w.Write("return builder, nil")
		w.CloseBlock("}")
		w.Blank()
	}()

	w.Write("builder := &$T{}", targetSym)

	for _, b := range bindings {
		switch b.Location {
		case httpbinding.LocationHeader:
			if err := g.emitHeaderBinding(w, b); err != nil {
				return err
			}
		case httpbinding.LocationPrefixHeaders:
			if err := g.emitPrefixHeadersBinding(w, b); err != nil {
				return err
			}
		case httpbinding.LocationResponseCode:
			w.Blank()
			w.Write("status := int32(resp.StatusCode)")
			g.assignScalar(w, b.Member, "status", true)
		}
	}

	if payload, ok := httpbinding.PayloadBinding(bindings); ok {
		return g.emitPayloadDecode(w, payload)
	}
	if len(docBindings) > 0 {
		return g.emitDocumentDecode(w, descSym, docBindings)
	}
	return nil
}

// emitHeaderBinding parses one bound header into the builder according to
// the target shape.
func (g *Generator) emitHeaderBinding(w *writer.Writer, b httpbinding.Binding) error {
	target, err := g.Model.TargetOf(b.Member)
	if err != nil {
		return err
	}

	if target.Type == model.ShapeTypeList || target.Type == model.ShapeTypeSet {
		return g.emitHeaderListBinding(w, b, target)
	}

	w.Blank()
	w.OpenBlock("if v := resp.Headers.Get($S); v != $S {", b.LocationName, "")
	defer w.CloseBlock("}")
	return g.emitStringParse(w, b.Member, target, "v", httpbinding.LocationHeader, func(expr string, addressable bool) {
		g.assignScalar(w, b.Member, expr, addressable)
	})
}

// emitHeaderListBinding splits a comma-separated header list with the
// format-appropriate splitter and converts each element.
func (g *Generator) emitHeaderListBinding(w *writer.Writer, b httpbinding.Binding, target *model.Shape) error {
	elem, ok := target.ListMember()
	if !ok {
		return smithygogen.Errorf(smithygogen.ErrUnknownShape, b.Member.ID.String(), "collection has no member")
	}
	elemTarget, err := g.Model.TargetOf(elem)
	if err != nil {
		return err
	}

	splitter := "SplitHeaderListValues"
	if elemTarget.Type == model.ShapeTypeTimestamp {
		format, err := g.Resolver.TimestampFormat(elem, httpbinding.LocationHeader)
		if err != nil {
			return err
		}
		if format == traits.TimestampHTTPDate {
			splitter = "SplitHTTPDateHeaderListValues"
		}
	}
	split := httpSym(splitter)
	w.UseSymbol(split)

	containerSym, err := g.Symbols.SymbolOf(target)
	if err != nil {
		return err
	}
	w.UseSymbol(containerSym)

	w.Blank()
	w.OpenBlock("if vs := resp.Headers.Values($S); len(vs) != 0 {", b.LocationName)
	defer w.CloseBlock("}")

	w.Write("parts, err := $L(vs)", split.Qualified())
	w.OpenBlock("if err != nil {")
	w.Write("return nil, err")
	w.CloseBlock("}")

	w.Write("collection0 := $L{}", containerSym.Name)
	w.OpenBlock("for _, v := range parts {")
	err = g.emitStringParse(w, elem, elemTarget, "v", httpbinding.LocationHeader, func(expr string, addressable bool) {
		elemSym, symErr := g.Symbols.MemberSymbol(elem)
		if symErr == nil && target.IsSparse() && addressable && elemSym.Nullable {
			w.Write("collection0 = append(collection0, &$L)", expr)
			return
		}
		w.Write("collection0 = append(collection0, $L)", expr)
	})
	w.CloseBlock("}")
	if err != nil {
		return err
	}

	g.assignScalar(w, b.Member, "collection0", false)
	return nil
}

// emitPrefixHeadersBinding collects header names with the configured prefix,
// strips it, and populates the bound map. An empty prefix collects every
// header under its full name.
func (g *Generator) emitPrefixHeadersBinding(w *writer.Writer, b httpbinding.Binding) error {
	target, err := g.Model.TargetOf(b.Member)
	if err != nil {
		return err
	}
	containerSym, err := g.Symbols.SymbolOf(target)
	if err != nil {
		return err
	}
	w.UseSymbol(containerSym)

	w.Blank()
	w.Write("prefixed := $L{}", containerSym.Name)
	w.OpenBlock("for name, values := range resp.Headers.All() {")
	key := "name"
	if b.LocationName != "" {
		w.AddImport("strings")
		w.OpenBlock("if !strings.HasPrefix(name, $S) {", b.LocationName)
		w.Write("continue")
		w.CloseBlock("}")
		key = "strings.TrimPrefix(name, " + quoted(b.LocationName) + ")"
	}
	w.Write("prefixed[$L] = values[0]", key)
	w.CloseBlock("}")
	w.OpenBlock("if len(prefixed) > 0 {")
	g.assignScalar(w, b.Member, "prefixed", false)
	w.CloseBlock("}")
	return nil
}

func quoted(s string) string {
	return `"` + s + `"`
}

// emitStringParse converts a wire string expression into the member's Go
// value and hands it to assign.
func (g *Generator) emitStringParse(w *writer.Writer, mem *model.Member, target *model.Shape, fromExpr string, loc httpbinding.Location, assign func(expr string, addressable bool)) error {
	switch target.Type {
	case model.ShapeTypeString:
		if model.HasTrait[*traits.Enum](target.Traits) {
			fromValue, err := g.enumFromValue(target)
			if err != nil {
				return err
			}
			w.UseSymbol(fromValue)
			w.Write("e := $L($L)", fromValue.Qualified(), fromExpr)
			assign("e", true)
			return nil
		}
		assign(fromExpr, true)
		return nil

	case model.ShapeTypeByte, model.ShapeTypeShort, model.ShapeTypeInteger, model.ShapeTypeLong:
		bits := map[model.ShapeType]string{
			model.ShapeTypeByte: "8", model.ShapeTypeShort: "16",
			model.ShapeTypeInteger: "32", model.ShapeTypeLong: "64",
		}[target.Type]
		w.AddImport("strconv")
		w.Write("n, err := strconv.ParseInt($L, 10, $L)", fromExpr, bits)
		g.emitErrReturn(w)
		if target.Type == model.ShapeTypeLong {
			assign("n", true)
			return nil
		}
		conv := map[model.ShapeType]string{
			model.ShapeTypeByte: "int8", model.ShapeTypeShort: "int16", model.ShapeTypeInteger: "int32",
		}[target.Type]
		w.Write("c := $L(n)", conv)
		assign("c", true)
		return nil

	case model.ShapeTypeFloat, model.ShapeTypeDouble:
		w.AddImport("strconv")
		w.Write("f, err := strconv.ParseFloat($L, 64)", fromExpr)
		g.emitErrReturn(w)
		if target.Type == model.ShapeTypeFloat {
			w.Write("c := float32(f)")
			assign("c", true)
			return nil
		}
		assign("f", true)
		return nil

	case model.ShapeTypeBoolean:
		w.AddImport("strconv")
		w.Write("t, err := strconv.ParseBool($L)", fromExpr)
		g.emitErrReturn(w)
		assign("t", true)
		return nil

	case model.ShapeTypeBlob:
		decode := symbol.External(symbol.RuntimeModule+"/base64", "DecodeString")
		w.UseSymbol(decode)
		w.Write("b, err := $L($L)", decode.Qualified(), fromExpr)
		g.emitErrReturn(w)
		assign("b", false)
		return nil

	case model.ShapeTypeTimestamp:
		format, err := g.Resolver.TimestampFormat(mem, loc)
		if err != nil {
			return err
		}
		parse := symbol.Symbol{Namespace: symbol.RuntimeModule + "/time", Name: timestampParseFn(format), Alias: "smithytime"}
		w.UseSymbol(parse)
		if format == traits.TimestampEpochSeconds {
			w.AddImport("strconv")
			w.Write("f, err := strconv.ParseFloat($L, 64)", fromExpr)
			g.emitErrReturn(w)
			w.Write("ts := $L(f)", parse.Qualified())
		} else {
			w.Write("ts, err := $L($L)", parse.Qualified(), fromExpr)
			g.emitErrReturn(w)
		}
		assign("ts", true)
		return nil

	default:
		return smithygogen.Errorf(smithygogen.ErrInvalidBinding, mem.ID.String(),
			"cannot bind %s shape to %s", target.Type, loc)
	}
}

func (g *Generator) emitErrReturn(w *writer.Writer) {
	w.OpenBlock("if err != nil {")
	w.Write("return nil, err")
	w.CloseBlock("}")
}

// assignScalar writes the builder assignment, taking the address for
// nullable pointer members.
func (g *Generator) assignScalar(w *writer.Writer, mem *model.Member, expr string, addressable bool) {
	memSym, err := g.Symbols.MemberSymbol(mem)
	field := "builder." + symbol.FieldName(mem)
	if err == nil && memSym.Nullable && addressable {
		w.Write("$L = &$L", field, expr)
		return
	}
	w.Write("$L = $L", field, expr)
}

func (g *Generator) enumFromValue(target *model.Shape) (symbol.Symbol, error) {
	targetSym, err := g.Symbols.SymbolOf(target)
	if err != nil {
		return symbol.Symbol{}, err
	}
	fromValue := targetSym
	fromValue.Name = targetSym.Name + "FromValue"
	return fromValue, nil
}

// emitPayloadDecode reads the payload binding from the response body.
func (g *Generator) emitPayloadDecode(w *writer.Writer, payload httpbinding.Binding) error {
	target, err := g.Model.TargetOf(payload.Member)
	if err != nil {
		return err
	}

	w.Blank()
	switch {
	case target.Type == model.ShapeTypeBlob && model.HasTrait[*traits.Streaming](target.Traits):
		g.assignScalar(w, payload.Member, "resp.Body", false)
		return nil

	case target.Type == model.ShapeTypeBlob:
		readAll := httpSym("ReadAll")
		w.UseSymbol(readAll)
		w.Write("payload, err := $L(resp.Body)", readAll.Qualified())
		g.emitErrReturn(w)
		g.assignScalar(w, payload.Member, "payload", false)
		return nil

	case target.Type == model.ShapeTypeString:
		readAll := httpSym("ReadAll")
		w.UseSymbol(readAll)
		w.Write("payload, err := $L(resp.Body)", readAll.Qualified())
		g.emitErrReturn(w)
		if model.HasTrait[*traits.Enum](target.Traits) {
			fromValue, err := g.enumFromValue(target)
			if err != nil {
				return err
			}
			w.UseSymbol(fromValue)
			w.Write("e := $L(string(payload))", fromValue.Qualified())
			g.assignScalar(w, payload.Member, "e", true)
			return nil
		}
		w.Write("s := string(payload)")
		g.assignScalar(w, payload.Member, "s", true)
		return nil

	case target.Type == model.ShapeTypeStructure, target.Type == model.ShapeTypeUnion:
		targetSym, err := g.Symbols.SymbolOf(target)
		if err != nil {
			return err
		}
		readAll := httpSym("ReadAll")
		w.UseSymbol(readAll)
		w.Write("payload, err := $L(resp.Body)", readAll.Qualified())
		g.emitErrReturn(w)
		w.Write("deserializer := ctx.NewDeserializer(payload)")
		w.Write("v, err := $LDocumentDeserializer{}.Deserialize(deserializer)", targetSym.Name)
		g.emitErrReturn(w)
		g.assignScalar(w, payload.Member, "v", false)
		return nil

	default:
		return smithygogen.Errorf(smithygogen.ErrInvalidBinding, payload.Member.ID.String(),
			"httpPayload cannot target %s", target.Type)
	}
}

// emitDocumentDecode reads the full body and runs the document dispatch loop
// over the document-bound members.
func (g *Generator) emitDocumentDecode(w *writer.Writer, descSym symbol.Symbol, docBindings []httpbinding.Binding) error {
	fields, err := g.docFields(docBindings, descSym)
	if err != nil {
		return err
	}

	readAll := httpSym("ReadAll")
	w.UseSymbol(readAll)
	w.Blank()
	w.Write("payload, err := $L(resp.Body)", readAll.Qualified())
	g.emitErrReturn(w)
	w.OpenBlock("if len(payload) > 0 {")
	w.Write("deserializer := ctx.NewDeserializer(payload)")
	if err := g.Serde.EmitDeserializeStructScope(w, "deserializer", descSym, fields); err != nil {
		return err
	}
	w.CloseBlock("}")
	return nil
}
