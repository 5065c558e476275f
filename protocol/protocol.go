// Package protocol emits the HTTP operation serializers, response and error
// deserializers, and the service client for an HTTP-bound protocol, weaving
// the document emitters together with URI, header, query, and payload
// handling.
package protocol

import (
	smithygogen "github.com/smithy-lang/smithy-gogen"
	"github.com/smithy-lang/smithy-gogen/httpbinding"
	"github.com/smithy-lang/smithy-gogen/model"
	"github.com/smithy-lang/smithy-gogen/model/traits"
	"github.com/smithy-lang/smithy-gogen/serde"
	"github.com/smithy-lang/smithy-gogen/symbol"
	"github.com/smithy-lang/smithy-gogen/writer"
)

// Generator emits HTTP protocol code for one service.
type Generator struct {
	Model    *model.Model
	Symbols  symbol.Provider
	Resolver *httpbinding.Resolver
	Serde    *serde.Generator

	// Middleware is the resolved protocol middleware, rendered into each
	// client operation. Integrations may customize the list before client
	// emission.
	Middleware []Middleware
}

// Middleware is one protocol middleware entry rendered into the client's
// operation stack.
type Middleware struct {
	ID     string
	Render func(w *writer.Writer)
}

// Runtime symbols referenced by emitted operation code.
var (
	rtHTTP  = symbol.RuntimeModule + "/http"
	rtSerde = symbol.RuntimeModule + "/serde"

	requestBuilderSym   = symbol.Symbol{Namespace: rtHTTP, Name: "RequestBuilder", Alias: "smithyhttp"}
	responseSym         = symbol.Symbol{Namespace: rtHTTP, Name: "Response", Alias: "smithyhttp"}
	executionContextSym = symbol.External(rtSerde, "ExecutionContext")
)

func httpSym(name string) symbol.Symbol {
	return symbol.Symbol{Namespace: rtHTTP, Name: name, Alias: "smithyhttp"}
}

// stringifyValue returns the Go expression converting a bound member value to
// its wire string. valueExpr must already be dereferenced. The conversion
// cannot fail for any supported type; unsupported types report
// InvalidBinding.
func (g *Generator) stringifyValue(w *writer.Writer, mem *model.Member, target *model.Shape, valueExpr string, loc httpbinding.Location) (string, error) {
	switch target.Type {
	case model.ShapeTypeString:
		if model.HasTrait[*traits.Enum](target.Traits) {
			return valueExpr + ".Value()", nil
		}
		return valueExpr, nil

	case model.ShapeTypeByte, model.ShapeTypeShort, model.ShapeTypeInteger, model.ShapeTypeLong:
		w.AddImport("strconv")
		return "strconv.FormatInt(int64(" + valueExpr + "), 10)", nil

	case model.ShapeTypeFloat, model.ShapeTypeDouble:
		w.AddImport("strconv")
		return "strconv.FormatFloat(float64(" + valueExpr + "), 'f', -1, 64)", nil

	case model.ShapeTypeBoolean:
		w.AddImport("strconv")
		return "strconv.FormatBool(" + valueExpr + ")", nil

	case model.ShapeTypeTimestamp:
		format, err := g.Resolver.TimestampFormat(mem, loc)
		if err != nil {
			return "", err
		}
		fn := timestampFormatFn(format)
		sym := symbol.Symbol{Namespace: symbol.RuntimeModule + "/time", Name: fn, Alias: "smithytime"}
		w.UseSymbol(sym)
		if format == traits.TimestampEpochSeconds {
			w.AddImport("strconv")
			return "strconv.FormatFloat(" + sym.Qualified() + "(" + valueExpr + "), 'f', -1, 64)", nil
		}
		return sym.Qualified() + "(" + valueExpr + ")", nil

	case model.ShapeTypeBlob:
		sym := symbol.External(symbol.RuntimeModule+"/base64", "EncodeToString")
		w.UseSymbol(sym)
		return sym.Qualified() + "(" + valueExpr + ")", nil

	case model.ShapeTypeBigInteger, model.ShapeTypeBigDecimal:
		return valueExpr + ".String()", nil

	default:
		return "", smithygogen.Errorf(smithygogen.ErrInvalidBinding, mem.ID.String(),
			"cannot bind %s shape to %s", target.Type, loc)
	}
}

func timestampFormatFn(format string) string {
	switch format {
	case traits.TimestampEpochSeconds:
		return "FormatEpochSeconds"
	case traits.TimestampHTTPDate:
		return "FormatHTTPDate"
	default:
		return "FormatDateTime"
	}
}

func timestampParseFn(format string) string {
	switch format {
	case traits.TimestampEpochSeconds:
		return "ParseEpochSeconds"
	case traits.TimestampHTTPDate:
		return "ParseHTTPDate"
	default:
		return "ParseDateTime"
	}
}

// operationShapes resolves the input and output structures of an operation.
// A zero ShapeID yields a nil shape.
func (g *Generator) operationShapes(op *model.Shape) (input, output *model.Shape, err error) {
	if op.Input != (model.ShapeID{}) {
		if input, err = g.Model.ExpectShape(op.Input); err != nil {
			return nil, nil, err
		}
	}
	if op.Output != (model.ShapeID{}) {
		if output, err = g.Model.ExpectShape(op.Output); err != nil {
			return nil, nil, err
		}
	}
	return input, output, nil
}

// wrapOperation produces the single diagnostic for the operation boundary. A
// CodegenError that names no shape gets the operation ID; one that already
// names a shape or member is returned with that ID. Any other error becomes an
// InvalidBinding error naming the operation.
func wrapOperation(op *model.Shape, err error) error {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*smithygogen.CodegenError); ok {
		if ce.ShapeID == "" {
			ce.ShapeID = op.ID.String()
		}
		return ce
	}
	return &smithygogen.CodegenError{Code: smithygogen.ErrInvalidBinding, ShapeID: op.ID.String(), Err: err}
}
