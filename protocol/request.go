package protocol

import (
	"net/url"
	"strconv"
	"strings"

	smithygogen "github.com/smithy-lang/smithy-gogen"
	"github.com/smithy-lang/smithy-gogen/httpbinding"
	"github.com/smithy-lang/smithy-gogen/model"
	"github.com/smithy-lang/smithy-gogen/model/traits"
	"github.com/smithy-lang/smithy-gogen/serde"
	"github.com/smithy-lang/smithy-gogen/symbol"
	"github.com/smithy-lang/smithy-gogen/writer"
)

// EmitOperationSerializer writes the request serializer type for an
// operation with an http trait: method, URI labels, query, headers, and the
// payload or document body.
func (g *Generator) EmitOperationSerializer(w *writer.Writer, op *model.Shape) error {
	return wrapOperation(op, g.emitOperationSerializer(w, op))
}

func (g *Generator) emitOperationSerializer(w *writer.Writer, op *model.Shape) error {
	opSym, err := g.Symbols.SymbolOf(op)
	if err != nil {
		return err
	}
	ht, pattern, err := g.Resolver.HTTPTrait(op)
	if err != nil {
		return err
	}
	bindings, err := g.Resolver.RequestBindings(op)
	if err != nil {
		return err
	}
	input, _, err := g.operationShapes(op)
	if err != nil {
		return err
	}

	var inputSym symbol.Symbol
	// descriptors are scoped to the operation so they cannot collide with a
	// standalone document serializer for the same shape
	descSym := symbol.Symbol{Name: opSym.Name + "Input"}
	docBindings := httpbinding.DocumentBindings(bindings)
	if input != nil {
		if inputSym, err = g.Symbols.SymbolOf(input); err != nil {
			return err
		}
		if len(docBindings) > 0 {
			members := make([]*model.Member, 0, len(docBindings))
			for _, b := range docBindings {
				members = append(members, b.Member)
			}
			if _, err := g.Serde.EmitDescriptorsFor(w, members, descSym); err != nil {
				return err
			}
		}
	}

	name := opSym.Name + "OperationSerializer"
	w.Write("type $L struct{}", name)
	w.Blank()

	if input == nil {
		w.OpenBlock("func (s $L) SerializeRequest(ctx *$T, builder *$T) error {", name, executionContextSym, requestBuilderSym)
	} else {
		w.OpenBlock("func (s $L) SerializeRequest(ctx *$T, input *$T, builder *$T) error {", name, executionContextSym, inputSym, requestBuilderSym)
	}
	defer func() {
		w.Write("return nil")
		w.CloseBlock("}")
		w.Blank()
	}()

	w.Write("builder.Method = $S", ht.Method)

	if err := g.emitRequestPath(w, pattern, bindings); err != nil {
		return err
	}
	if err := g.emitRequestQuery(w, pattern, bindings); err != nil {
		return err
	}
	if err := g.emitRequestHeaders(w, bindings); err != nil {
		return err
	}

	bodySet, err := g.emitRequestBody(w, descSym, bindings, docBindings)
	if err != nil {
		return err
	}

	// content type is set last and only when a body was set
	if bodySet {
		ct, ok, err := g.Resolver.ContentType(bindings)
		if err != nil {
			return err
		}
		if ok {
			w.Blank()
			w.Write("builder.Headers.Set($S, $S)", "Content-Type", ct)
		}
	}
	return nil
}

// emitRequestPath substitutes each label segment with the bound member's
// stringified value. Literal segments are escaped at generation time.
func (g *Generator) emitRequestPath(w *writer.Writer, pattern *model.URIPattern, bindings []httpbinding.Binding) error {
	labels := map[string]httpbinding.Binding{}
	for _, b := range bindings {
		if b.Location == httpbinding.LocationLabel {
			labels[b.LocationName] = b
		}
	}

	var parts []string
	literal := ""
	for _, seg := range pattern.Segments {
		if !seg.IsLabel {
			literal += "/" + url.PathEscape(seg.Content)
			continue
		}

		b, ok := labels[seg.Content]
		if !ok {
			return smithygogen.Errorf(smithygogen.ErrInvalidBinding, "",
				"uri label %q has no httpLabel member", seg.Content)
		}
		target, err := g.Model.TargetOf(b.Member)
		if err != nil {
			return err
		}
		memSym, err := g.Symbols.MemberSymbol(b.Member)
		if err != nil {
			return err
		}

		expr := "input." + symbol.FieldName(b.Member)
		if memSym.Nullable {
			w.AddImport("fmt")
			w.OpenBlock("if $L == nil {", expr)
			w.Write("return fmt.Errorf(\"input member $L binds an http label and must not be nil\")", b.Member.Name)
			w.CloseBlock("}")
			if derefFor(target) {
				expr = "*" + expr
			}
		}

		value, err := g.stringifyValue(w, b.Member, target, expr, httpbinding.LocationLabel)
		if err != nil {
			return err
		}
		escape := httpSym("EscapePathSegment")
		if seg.Greedy {
			escape = httpSym("EscapePath")
		}
		w.UseSymbol(escape)

		parts = append(parts, strconv.Quote(literal+"/"), escape.Qualified()+"("+value+")")
		literal = ""
	}

	pathExpr := ""
	switch {
	case len(parts) == 0:
		if literal == "" {
			literal = "/"
		}
		pathExpr = strconv.Quote(literal)
	default:
		if literal != "" {
			parts = append(parts, strconv.Quote(literal))
		}
		pathExpr = strings.Join(parts, " + ")
	}
	w.Write("builder.URL.Path = $L", pathExpr)
	return nil
}

// emitRequestQuery appends the URI's literal query pairs and every query and
// queryParams binding.
func (g *Generator) emitRequestQuery(w *writer.Writer, pattern *model.URIPattern, bindings []httpbinding.Binding) error {
	for _, q := range pattern.Query {
		w.Write("builder.URL.Parameters.Add($S, $S)", q.Key, q.Value)
	}

	for _, b := range bindings {
		switch b.Location {
		case httpbinding.LocationQuery:
			if err := g.emitBoundValue(w, b, httpbinding.LocationQuery, func(value string) {
				w.Write("builder.URL.Parameters.Add($S, $L)", b.LocationName, value)
			}); err != nil {
				return err
			}

		case httpbinding.LocationQueryParams:
			target, err := g.Model.TargetOf(b.Member)
			if err != nil {
				return err
			}
			value, _ := target.MapValue()
			valueTarget, err := g.Model.TargetOf(value)
			if err != nil {
				return err
			}

			w.OpenBlock("for qk, qv := range input.$L {", symbol.FieldName(b.Member))
			if valueTarget.Type == model.ShapeTypeList || valueTarget.Type == model.ShapeTypeSet {
				elem, _ := valueTarget.ListMember()
				elemTarget, err := g.Model.TargetOf(elem)
				if err != nil {
					return err
				}
				w.OpenBlock("for _, qe := range qv {")
				str, err := g.stringifyValue(w, elem, elemTarget, "qe", httpbinding.LocationQueryParams)
				if err != nil {
					return err
				}
				w.Write("builder.URL.Parameters.Add(qk, $L)", str)
				w.CloseBlock("}")
			} else {
				str, err := g.stringifyValue(w, value, valueTarget, "qv", httpbinding.LocationQueryParams)
				if err != nil {
					return err
				}
				w.Write("builder.URL.Parameters.Add(qk, $L)", str)
			}
			w.CloseBlock("}")
		}
	}
	return nil
}

// emitRequestHeaders writes the header and prefix-headers bindings.
func (g *Generator) emitRequestHeaders(w *writer.Writer, bindings []httpbinding.Binding) error {
	for _, b := range bindings {
		switch b.Location {
		case httpbinding.LocationHeader:
			if err := g.emitBoundValue(w, b, httpbinding.LocationHeader, func(value string) {
				w.Write("builder.Headers.Add($S, $L)", b.LocationName, value)
			}); err != nil {
				return err
			}

		case httpbinding.LocationPrefixHeaders:
			target, err := g.Model.TargetOf(b.Member)
			if err != nil {
				return err
			}
			value, _ := target.MapValue()
			valueTarget, err := g.Model.TargetOf(value)
			if err != nil {
				return err
			}

			w.OpenBlock("for hk, hv := range input.$L {", symbol.FieldName(b.Member))
			str, err := g.stringifyValue(w, value, valueTarget, "hv", httpbinding.LocationHeader)
			if err != nil {
				return err
			}
			if b.LocationName == "" {
				w.Write("builder.Headers.Add(hk, $L)", str)
			} else {
				w.Write("builder.Headers.Add($S+hk, $L)", b.LocationName, str)
			}
			w.CloseBlock("}")
		}
	}
	return nil
}

// emitBoundValue emits the guarded stringification of a header or query
// bound member, handling list-typed members element-wise. Non-required
// members are null-guarded; required members with a primitive default skip
// default-equal values.
func (g *Generator) emitBoundValue(w *writer.Writer, b httpbinding.Binding, loc httpbinding.Location, write func(value string)) error {
	target, err := g.Model.TargetOf(b.Member)
	if err != nil {
		return err
	}
	memSym, err := g.Symbols.MemberSymbol(b.Member)
	if err != nil {
		return err
	}
	expr := "input." + symbol.FieldName(b.Member)

	if target.Type == model.ShapeTypeList || target.Type == model.ShapeTypeSet {
		elem, ok := target.ListMember()
		if !ok {
			return smithygogen.Errorf(smithygogen.ErrUnknownShape, b.Member.ID.String(), "collection has no member")
		}
		elemTarget, err := g.Model.TargetOf(elem)
		if err != nil {
			return err
		}

		w.OpenBlock("for _, bv := range $L {", expr)
		defer w.CloseBlock("}")

		elemExpr := "bv"
		if target.IsSparse() {
			w.OpenBlock("if bv == nil {")
			w.Write("continue")
			w.CloseBlock("}")
			elemExpr = "*bv"
		}
		str, err := g.stringifyValue(w, elem, elemTarget, elemExpr, loc)
		if err != nil {
			return err
		}
		if loc == httpbinding.LocationHeader && elemTarget.Type == model.ShapeTypeString && !model.HasTrait[*traits.Enum](elemTarget.Traits) {
			quote := httpSym("QuoteHeaderValue")
			w.UseSymbol(quote)
			str = quote.Qualified() + "(" + str + ")"
		}
		write(str)
		return nil
	}

	closeGuard := false
	switch {
	case memSym.Nullable && target.Type == model.ShapeTypeString && !model.HasTrait[*traits.Enum](target.Traits) && loc == httpbinding.LocationHeader:
		w.OpenBlock("if $L != nil && len(*$L) > 0 {", expr, expr)
		closeGuard = true
	case memSym.Nullable:
		w.OpenBlock("if $L != nil {", expr)
		closeGuard = true
	case memSym.DefaultValue != "":
		// required with a primitive default: skip default-equal values
		w.OpenBlock("if $L != $L {", expr, memSym.DefaultValue)
		closeGuard = true
	}
	if closeGuard {
		defer w.CloseBlock("}")
	}

	valueExpr := expr
	if memSym.Nullable && derefFor(target) {
		valueExpr = "*" + expr
	}
	str, err := g.stringifyValue(w, b.Member, target, valueExpr, loc)
	if err != nil {
		return err
	}
	write(str)
	return nil
}

// derefFor reports whether a nullable member of this target must be
// dereferenced before stringification. Nil-able composites, big numbers, and
// enums (whose Value method has a value receiver) are used as is.
func derefFor(target *model.Shape) bool {
	switch target.Type {
	case model.ShapeTypeBlob, model.ShapeTypeList, model.ShapeTypeSet, model.ShapeTypeMap,
		model.ShapeTypeBigInteger, model.ShapeTypeBigDecimal, model.ShapeTypeDocument,
		model.ShapeTypeStructure, model.ShapeTypeUnion:
		return false
	case model.ShapeTypeString:
		return !model.HasTrait[*traits.Enum](target.Traits)
	default:
		return true
	}
}

// emitRequestBody writes the payload or document body block. Reports whether
// a body was set.
func (g *Generator) emitRequestBody(w *writer.Writer, descSym symbol.Symbol, bindings []httpbinding.Binding, docBindings []httpbinding.Binding) (bool, error) {
	if payload, ok := httpbinding.PayloadBinding(bindings); ok {
		return true, g.emitPayloadBody(w, payload)
	}
	if len(docBindings) == 0 {
		return false, nil
	}

	fields, err := g.docFields(docBindings, descSym)
	if err != nil {
		return false, err
	}

	w.Blank()
	w.Write("serializer := ctx.NewSerializer()")
	if err := g.Serde.EmitStructScope(w, "serializer", descSym, fields); err != nil {
		return false, err
	}
	bac := httpSym("ByteArrayContent")
	w.UseSymbol(bac)
	w.Write("builder.Body = $L(serializer.Bytes())", bac.Qualified())
	return true, nil
}

// docFields rebuilds the descriptor list for the document-bound members; the
// descriptors themselves were emitted at the top of the file.
func (g *Generator) docFields(docBindings []httpbinding.Binding, structSym symbol.Symbol) ([]*serde.FieldDescriptor, error) {
	sub := model.NewShape(model.ShapeID{Namespace: "synthetic", Name: structSym.Name}, model.ShapeTypeStructure, nil)
	for _, b := range docBindings {
		sub.AddMember(&model.Member{Name: b.Member.Name, Target: b.Member.Target, Traits: b.Member.Traits})
	}
	return g.Serde.BuildDescriptors(sub, structSym)
}

func (g *Generator) emitPayloadBody(w *writer.Writer, payload httpbinding.Binding) error {
	target, err := g.Model.TargetOf(payload.Member)
	if err != nil {
		return err
	}
	memSym, err := g.Symbols.MemberSymbol(payload.Member)
	if err != nil {
		return err
	}
	expr := "input." + symbol.FieldName(payload.Member)

	w.Blank()
	switch {
	case target.Type == model.ShapeTypeBlob && model.HasTrait[*traits.Streaming](target.Traits):
		rc := httpSym("ReaderContent")
		w.UseSymbol(rc)
		w.OpenBlock("if $L != nil {", expr)
		w.Write("builder.Body = $L($L)", rc.Qualified(), expr)
		w.CloseBlock("}")

	case target.Type == model.ShapeTypeBlob:
		bac := httpSym("ByteArrayContent")
		w.UseSymbol(bac)
		w.OpenBlock("if $L != nil {", expr)
		w.Write("builder.Body = $L($L)", bac.Qualified(), expr)
		w.CloseBlock("}")

	case target.Type == model.ShapeTypeString:
		bac := httpSym("ByteArrayContent")
		w.UseSymbol(bac)
		value := expr
		if model.HasTrait[*traits.Enum](target.Traits) {
			value += ".Value()"
		} else if memSym.Nullable {
			value = "*" + expr
		}
		if memSym.Nullable {
			w.OpenBlock("if $L != nil {", expr)
			w.Write("builder.Body = $L([]byte($L))", bac.Qualified(), value)
			w.CloseBlock("}")
		} else {
			w.Write("builder.Body = $L([]byte($L))", bac.Qualified(), value)
		}

	case target.Type == model.ShapeTypeStructure, target.Type == model.ShapeTypeUnion:
		targetSym, err := g.Symbols.SymbolOf(target)
		if err != nil {
			return err
		}
		bac := httpSym("ByteArrayContent")
		w.UseSymbol(bac)
		w.OpenBlock("if $L != nil {", expr)
		w.Write("serializer := ctx.NewSerializer()")
		w.Write("$LDocumentSerializer{Value: $L}.Serialize(serializer)", targetSym.Name, expr)
		w.Write("builder.Body = $L(serializer.Bytes())", bac.Qualified())
		w.CloseBlock("}")

	default:
		return smithygogen.Errorf(smithygogen.ErrInvalidBinding, payload.Member.ID.String(),
			"httpPayload cannot target %s", target.Type)
	}
	return nil
}
