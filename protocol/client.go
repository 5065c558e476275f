package protocol

import (
	"github.com/smithy-lang/smithy-gogen/model"
	"github.com/smithy-lang/smithy-gogen/symbol"
	"github.com/smithy-lang/smithy-gogen/writer"
)

// ConfigProperty is one field of the generated client Config struct.
// Integrations contribute additional properties through the pipeline.
type ConfigProperty struct {
	Name string
	Type symbol.Symbol
	// Docs is an optional one-line comment.
	Docs string
}

// DefaultMiddleware returns the protocol middleware applied to every
// operation unless integrations customize it.
func DefaultMiddleware(sdkID, version string) []Middleware {
	ua := sdkID + "/" + version
	return []Middleware{
		{
			ID: "UserAgent",
			Render: func(w *writer.Writer) {
				w.Write("builder.Headers.Set($S, $S)", "User-Agent", ua)
			},
		},
	}
}

// EmitClient writes the Default<Service> client: the Config struct, the
// constructor, and one method per operation delegating to the transform
// serializers and deserializers.
func (g *Generator) EmitClient(w *writer.Writer, module string, service *model.Shape, ops []*model.Shape, props []ConfigProperty) error {
	serviceSym, err := g.Symbols.SymbolOf(service)
	if err != nil {
		return err
	}
	clientName := "Default" + serviceSym.Name
	transformNS := module + "/transform"

	clientSym := symbol.External(symbol.RuntimeModule+"/http", "Client")
	clientSym.Alias = "smithyhttp"
	tokenProviderSym := symbol.External(symbol.RuntimeModule+"/serde", "IdempotencyTokenProvider")

	w.Section("client-config", func(sw *writer.Writer) {
		sw.OpenBlock("type Config struct {")
		sw.Write("Endpoint string")
		sw.Write("HTTPClient $T", clientSym)
		sw.Write("IdempotencyTokenProvider $T", tokenProviderSym)
		for _, p := range props {
			if p.Docs != "" {
				sw.Write("// $L", p.Docs)
			}
			sw.Write("$L $T", p.Name, p.Type)
		}
		sw.CloseBlock("}")
		sw.Blank()
	})

	w.OpenBlock("type $L struct {", clientName)
	w.Write("config Config")
	w.Write("ctx    *$T", executionContextSym)
	w.CloseBlock("}")
	w.Blank()

	newCtxSym := symbol.External(symbol.RuntimeModule+"/serde", "NewExecutionContext")
	w.OpenBlock("func New$L(config Config) *$L {", serviceSym.Name, clientName)
	w.OpenBlock("return &$L{", clientName)
	w.Write("config: config,")
	w.Write("ctx:    $T(config.IdempotencyTokenProvider),", newCtxSym)
	w.CloseBlock("}")
	w.CloseBlock("}")
	w.Blank()

	for _, op := range ops {
		if err := g.emitClientOperation(w, transformNS, clientName, op); err != nil {
			return wrapOperation(op, err)
		}
	}
	return nil
}

func (g *Generator) emitClientOperation(w *writer.Writer, transformNS, clientName string, op *model.Shape) error {
	opSym, err := g.Symbols.SymbolOf(op)
	if err != nil {
		return err
	}
	input, output, err := g.operationShapes(op)
	if err != nil {
		return err
	}

	w.AddImport("context")
	serializerSym := symbol.External(transformNS, opSym.Name+"OperationSerializer")
	deserializerSym := symbol.External(transformNS, opSym.Name+"OperationDeserializer")
	newBuilderSym := httpSym("NewRequestBuilder")

	var inputSym, outputSym symbol.Symbol
	if input != nil {
		if inputSym, err = g.Symbols.SymbolOf(input); err != nil {
			return err
		}
	}
	if output != nil {
		if outputSym, err = g.Symbols.SymbolOf(output); err != nil {
			return err
		}
	}

	switch {
	case input != nil && output != nil:
		w.OpenBlock("func (c *$L) $L(ctx context.Context, input *$T) (*$T, error) {", clientName, opSym.Name, inputSym, outputSym)
	case input != nil:
		w.OpenBlock("func (c *$L) $L(ctx context.Context, input *$T) error {", clientName, opSym.Name, inputSym)
	case output != nil:
		w.OpenBlock("func (c *$L) $L(ctx context.Context) (*$T, error) {", clientName, opSym.Name, outputSym)
	default:
		w.OpenBlock("func (c *$L) $L(ctx context.Context) error {", clientName, opSym.Name)
	}
	defer func() {
		w.CloseBlock("}")
		w.Blank()
	}()

	errPrefix := ""
	if output != nil {
		errPrefix = "nil, "
	}

	w.Write("builder := $T(c.config.Endpoint)", newBuilderSym)
	if input != nil {
		w.OpenBlock("if err := ($T{}).SerializeRequest(c.ctx, input, builder); err != nil {", serializerSym)
	} else {
		w.OpenBlock("if err := ($T{}).SerializeRequest(c.ctx, builder); err != nil {", serializerSym)
	}
	w.Write("return $Lerr", errPrefix)
	w.CloseBlock("}")

	w.Section("operation-middleware", func(sw *writer.Writer) {
		for _, mw := range g.Middleware {
			mw.Render(sw)
		}
	})

	w.Blank()
	w.Write("resp, err := c.config.HTTPClient.Do(ctx, builder.Build())")
	w.OpenBlock("if err != nil {")
	w.Write("return $Lerr", errPrefix)
	w.CloseBlock("}")

	if output != nil {
		w.Write("return $T{}.DeserializeResponse(c.ctx, resp)", deserializerSym)
	} else {
		w.Write("_ = resp")
		w.Write("return nil")
	}
	return nil
}
