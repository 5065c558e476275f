// Package generator orchestrates a code-generation run: integration
// preprocessing, closure computation, and emission of model types, document
// serde, operation serde, and the service client.
package generator

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	smithygogen "github.com/smithy-lang/smithy-gogen"
	"github.com/smithy-lang/smithy-gogen/config"
	"github.com/smithy-lang/smithy-gogen/httpbinding"
	"github.com/smithy-lang/smithy-gogen/integration"
	"github.com/smithy-lang/smithy-gogen/logging"
	"github.com/smithy-lang/smithy-gogen/model"
	"github.com/smithy-lang/smithy-gogen/model/traits"
	"github.com/smithy-lang/smithy-gogen/protocol"
	"github.com/smithy-lang/smithy-gogen/serde"
	"github.com/smithy-lang/smithy-gogen/symbol"
	"github.com/smithy-lang/smithy-gogen/writer"
)

// Generator runs one code-generation pass for a service.
type Generator struct {
	Settings *config.Settings
	Pipeline *integration.Pipeline
	Logger   logging.Logger

	// ContentType and TimestampFormat are the protocol document defaults.
	ContentType     string
	TimestampFormat string

	// ContinueOnError keeps generating remaining operations after an
	// operation-level codegen failure, reporting the failures at the end.
	ContinueOnError bool

	// Now supplies the header timestamp; nil uses the wall clock.
	Now func() time.Time
}

// New creates a Generator with the default JSON protocol settings.
func New(settings *config.Settings, pipeline *integration.Pipeline) *Generator {
	return &Generator{
		Settings:        settings,
		Pipeline:        pipeline,
		Logger:          logging.Noop{},
		ContentType:     "application/json",
		TimestampFormat: traits.TimestampEpochSeconds,
	}
}

// header builds the generated file header. With NoHeader only the fixed
// marker line remains, so repeat runs are byte-identical.
func (g *Generator) header() string {
	header := "// Code generated by smithy-gogen. DO NOT EDIT.\n"
	if g.Settings.NoHeader {
		return header
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return header + fmt.Sprintf("// Build %s at %s.\n", uuid.NewString(), now().UTC().Format(time.RFC3339))
}

// Run generates the client for the configured service into outDir and
// returns the manifest of written files.
func (g *Generator) Run(m *model.Model, outDir string) ([]string, error) {
	delegator, err := g.Emit(m)
	if err != nil {
		return nil, err
	}
	return delegator.Flush(outDir)
}

// Emit runs generation and returns the pending delegator without touching
// disk.
func (g *Generator) Emit(m *model.Model) (*Delegator, error) {
	settings := g.Settings

	m, err := g.Pipeline.Preprocess(m, settings)
	if err != nil {
		return nil, err
	}
	// the model is immutable from here on

	symbols := g.Pipeline.DecorateSymbolProvider(settings, m, symbol.NewProvider(m, settings.Module))
	ctx := &integration.Context{Model: m, Settings: settings, Symbols: symbols}

	service, err := m.ExpectShape(settings.ServiceID())
	if err != nil {
		return nil, err
	}
	if service.Type != model.ShapeTypeService {
		return nil, smithygogen.Errorf(smithygogen.ErrUnknownShape, service.ID.String(), "settings service is a %s shape", service.Type)
	}

	resolver := httpbinding.NewResolver(m, g.ContentType, g.TimestampFormat)
	serdeGen := &serde.Generator{
		Model:   m,
		Symbols: symbols,
		TimestampFormat: func(mem *model.Member) (string, error) {
			return resolver.TimestampFormat(mem, httpbinding.LocationDocument)
		},
	}
	protoGen := &protocol.Generator{
		Model:    m,
		Symbols:  symbols,
		Resolver: resolver,
		Serde:    serdeGen,
	}
	protoGen.Middleware = g.Pipeline.CustomizeMiddleware(ctx, protoGen,
		protocol.DefaultMiddleware(settings.SdkID, settings.ModuleVersion))

	ops, unbound, err := resolver.BindingOperations(service)
	if err != nil {
		return nil, err
	}
	for _, op := range unbound {
		g.Logger.Logf(logging.Warn, "operation %s has no http trait, skipping", op.ID)
	}

	seeds, errShapes, err := g.collectSeeds(m, ops)
	if err != nil {
		return nil, err
	}
	closure := m.SerdeClosure(seeds...)
	enums, err := g.collectEnums(m, seeds)
	if err != nil {
		return nil, err
	}

	delegator := NewDelegator(settings.Module, g.header())

	if err := g.emitModelTypes(delegator, ctx, symbols, m, seeds, closure, enums); err != nil {
		return nil, err
	}
	if err := g.emitDocumentSerde(delegator, symbols, serdeGen, closure); err != nil {
		return nil, err
	}

	var opErrs []error
	for _, op := range ops {
		if err := g.emitOperation(delegator, symbols, protoGen, op); err != nil {
			if !g.ContinueOnError {
				return nil, err
			}
			g.Logger.Logf(logging.Warn, "skipping operation: %v", err)
			opErrs = append(opErrs, err)
		}
	}

	for _, errShape := range errShapes {
		errSym, err := symbols.SymbolOf(errShape)
		if err != nil {
			return nil, err
		}
		path := "transform/" + goFileName(errSym.Name, "Deserializer")
		if err := delegator.UseFileWriter(path, "transform", func(w *writer.Writer) error {
			return protoGen.EmitErrorDeserializer(w, errShape)
		}); err != nil {
			return nil, err
		}
	}

	svcSym, err := symbols.SymbolOf(service)
	if err != nil {
		return nil, err
	}
	clientPath := goFileName("Default", svcSym.Name)
	props := g.Pipeline.AdditionalConfigProps(ctx)
	if err := delegator.UseFileWriter(clientPath, settings.ClientPackage(), func(w *writer.Writer) error {
		return protoGen.EmitClient(w, settings.Module, service, ops, props)
	}); err != nil {
		return nil, err
	}

	if err := g.Pipeline.WriteAdditionalFiles(ctx, delegator); err != nil {
		return nil, err
	}

	if len(opErrs) > 0 {
		g.Logger.Logf(logging.Warn, "%d operation(s) failed generation", len(opErrs))
	}
	return delegator, nil
}

// collectSeeds resolves the input, output, and error structures of the bound
// operations. Error shapes are returned separately as they also need error
// deserializers.
func (g *Generator) collectSeeds(m *model.Model, ops []*model.Shape) (seeds, errShapes []*model.Shape, err error) {
	seen := map[model.ShapeID]bool{}
	add := func(id model.ShapeID, isErr bool) error {
		if id == (model.ShapeID{}) || seen[id] {
			return nil
		}
		shape, err := m.ExpectShape(id)
		if err != nil {
			return err
		}
		seen[id] = true
		seeds = append(seeds, shape)
		if isErr {
			errShapes = append(errShapes, shape)
		}
		return nil
	}

	for _, op := range ops {
		if err := add(op.Input, false); err != nil {
			return nil, nil, err
		}
		if err := add(op.Output, false); err != nil {
			return nil, nil, err
		}
		for _, errID := range op.Errors {
			if err := add(errID, true); err != nil {
				return nil, nil, err
			}
		}
	}
	return seeds, errShapes, nil
}

// collectEnums gathers every enum string shape reachable from the seeds.
func (g *Generator) collectEnums(m *model.Model, seeds []*model.Shape) ([]*model.Shape, error) {
	byID := map[model.ShapeID]*model.Shape{}
	for _, seed := range seeds {
		m.Walk(seed, model.SerdeEdges, func(s *model.Shape) {
			if s.Type == model.ShapeTypeString && model.HasTrait[*traits.Enum](s.Traits) {
				byID[s.ID] = s
			}
		})
	}

	var out []*model.Shape
	for _, id := range m.ShapeIDs() {
		if s, ok := byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// emitModelTypes writes one model file per seed, closure, and enum shape.
func (g *Generator) emitModelTypes(delegator *Delegator, ctx *integration.Context, symbols symbol.Provider, m *model.Model, seeds, closure, enums []*model.Shape) error {
	byID := map[model.ShapeID]*model.Shape{}
	for _, s := range seeds {
		byID[s.ID] = s
	}
	for _, s := range closure {
		byID[s.ID] = s
	}
	for _, s := range enums {
		byID[s.ID] = s
	}

	for _, id := range m.ShapeIDs() {
		shape, ok := byID[id]
		if !ok || !g.Settings.IncludeShape(id) {
			continue
		}
		sym, err := symbols.SymbolOf(shape)
		if err != nil {
			return err
		}

		err = delegator.UseFileWriter(sym.DefinitionFile, "model", func(w *writer.Writer) error {
			g.Pipeline.OnShapeWriterUse(g.Settings, m, symbols, w, shape)
			var emitErr error
			w.Section("define-shape", func(sw *writer.Writer) {
				switch {
				case shape.Type == model.ShapeTypeUnion:
					emitErr = EmitUnion(sw, symbols, m, shape, sym)
				case shape.Type == model.ShapeTypeString:
					emitErr = EmitEnum(sw, shape, sym)
				default:
					emitErr = EmitStructure(sw, symbols, shape, sym)
				}
			})
			return emitErr
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// emitDocumentSerde writes the standalone document serializer and
// deserializer pair for every closure shape.
func (g *Generator) emitDocumentSerde(delegator *Delegator, symbols symbol.Provider, serdeGen *serde.Generator, closure []*model.Shape) error {
	for _, shape := range closure {
		if !g.Settings.IncludeShape(shape.ID) {
			continue
		}
		sym, err := symbols.SymbolOf(shape)
		if err != nil {
			return err
		}

		serPath := "transform/" + goFileName(sym.Name, "DocumentSerializer")
		if err := delegator.UseFileWriter(serPath, "transform", func(w *writer.Writer) error {
			return serdeGen.EmitDocumentSerializer(w, shape)
		}); err != nil {
			return err
		}

		deserPath := "transform/" + goFileName(sym.Name, "DocumentDeserializer")
		if err := delegator.UseFileWriter(deserPath, "transform", func(w *writer.Writer) error {
			return serdeGen.EmitDocumentDeserializer(w, shape)
		}); err != nil {
			return err
		}
	}
	return nil
}

// emitOperation writes the request serializer and, when the operation has
// output, the response deserializer.
func (g *Generator) emitOperation(delegator *Delegator, symbols symbol.Provider, protoGen *protocol.Generator, op *model.Shape) error {
	opSym, err := symbols.SymbolOf(op)
	if err != nil {
		return err
	}

	serPath := "transform/" + goFileName(opSym.Name, "OperationSerializer")
	if err := delegator.UseFileWriter(serPath, "transform", func(w *writer.Writer) error {
		return protoGen.EmitOperationSerializer(w, op)
	}); err != nil {
		return err
	}

	if op.Output == (model.ShapeID{}) {
		return nil
	}
	deserPath := "transform/" + goFileName(opSym.Name, "OperationDeserializer")
	return delegator.UseFileWriter(deserPath, "transform", func(w *writer.Writer) error {
		return protoGen.EmitOperationDeserializer(w, op)
	})
}
