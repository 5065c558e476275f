// Package integration defines the extension pipeline: ordered plugins that
// may mutate the model, decorate the symbol provider, contribute client
// config properties, and customize protocol middleware.
package integration

import (
	"sort"

	"github.com/mitchellh/mapstructure"

	"github.com/smithy-lang/smithy-gogen/config"
	"github.com/smithy-lang/smithy-gogen/model"
	"github.com/smithy-lang/smithy-gogen/protocol"
	"github.com/smithy-lang/smithy-gogen/symbol"
	"github.com/smithy-lang/smithy-gogen/writer"
)

// Context carries the resolved generation state into integration hooks.
type Context struct {
	Model    *model.Model
	Settings *config.Settings
	Symbols  symbol.Provider
}

// Delegator hands out file writers to integrations that emit additional
// files. The generator owns the implementation.
type Delegator interface {
	// UseFileWriter runs body against the writer for the given path,
	// creating it with the package name on first use.
	UseFileWriter(path, pkg string, body func(w *writer.Writer) error) error
}

// Integration is one extension point. Every hook must be identity-safe:
// applying an integration that has nothing to do must not change output.
type Integration interface {
	// Name identifies the integration, also keying its settings options.
	Name() string
	// Order positions the integration in the pipeline; lower runs first,
	// ties break by stable discovery order.
	Order() int8

	// Preprocess may transform the model before any symbols are resolved.
	Preprocess(m *model.Model, settings *config.Settings) (*model.Model, error)
	// DecorateSymbolProvider may wrap the symbol provider.
	DecorateSymbolProvider(settings *config.Settings, m *model.Model, provider symbol.Provider) symbol.Provider
	// AdditionalConfigProps contributes client Config fields.
	AdditionalConfigProps(ctx *Context) []protocol.ConfigProperty
	// OnShapeWriterUse observes the writer scoped around a shape definition.
	OnShapeWriterUse(settings *config.Settings, m *model.Model, provider symbol.Provider, w *writer.Writer, shape *model.Shape)
	// CustomizeMiddleware may rewrite the resolved protocol middleware.
	CustomizeMiddleware(ctx *Context, g *protocol.Generator, resolved []protocol.Middleware) []protocol.Middleware
	// WriteAdditionalFiles may emit extra files through the delegator.
	WriteAdditionalFiles(ctx *Context, delegator Delegator) error
}

// Base is a no-op Integration for embedding; each hook is the identity.
type Base struct{}

// Order positions the integration in the middle of the pipeline.
func (Base) Order() int8 { return 0 }

// Preprocess returns the model unchanged.
func (Base) Preprocess(m *model.Model, _ *config.Settings) (*model.Model, error) { return m, nil }

// DecorateSymbolProvider returns the provider unchanged.
func (Base) DecorateSymbolProvider(_ *config.Settings, _ *model.Model, provider symbol.Provider) symbol.Provider {
	return provider
}

// AdditionalConfigProps contributes nothing.
func (Base) AdditionalConfigProps(*Context) []protocol.ConfigProperty { return nil }

// OnShapeWriterUse does nothing.
func (Base) OnShapeWriterUse(*config.Settings, *model.Model, symbol.Provider, *writer.Writer, *model.Shape) {
}

// CustomizeMiddleware returns the middleware unchanged.
func (Base) CustomizeMiddleware(_ *Context, _ *protocol.Generator, resolved []protocol.Middleware) []protocol.Middleware {
	return resolved
}

// WriteAdditionalFiles writes nothing.
func (Base) WriteAdditionalFiles(*Context, Delegator) error { return nil }

// Pipeline applies integrations in byte order with stable tie-breaking on
// registration order.
type Pipeline struct {
	integrations []Integration
}

// NewPipeline creates a pipeline over the given integrations.
func NewPipeline(integrations ...Integration) *Pipeline {
	sorted := make([]Integration, len(integrations))
	copy(sorted, integrations)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order() < sorted[j].Order() })
	return &Pipeline{integrations: sorted}
}

// Integrations returns the pipeline's integrations in application order.
func (p *Pipeline) Integrations() []Integration {
	return p.integrations
}

// Preprocess runs every integration's model transform in order.
func (p *Pipeline) Preprocess(m *model.Model, settings *config.Settings) (*model.Model, error) {
	var err error
	for _, i := range p.integrations {
		if m, err = i.Preprocess(m, settings); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// DecorateSymbolProvider chains every decorator over the base provider.
func (p *Pipeline) DecorateSymbolProvider(settings *config.Settings, m *model.Model, provider symbol.Provider) symbol.Provider {
	for _, i := range p.integrations {
		provider = i.DecorateSymbolProvider(settings, m, provider)
	}
	return provider
}

// AdditionalConfigProps concatenates contributed config properties.
func (p *Pipeline) AdditionalConfigProps(ctx *Context) []protocol.ConfigProperty {
	var out []protocol.ConfigProperty
	for _, i := range p.integrations {
		out = append(out, i.AdditionalConfigProps(ctx)...)
	}
	return out
}

// OnShapeWriterUse notifies every integration of a shape writer span.
func (p *Pipeline) OnShapeWriterUse(settings *config.Settings, m *model.Model, provider symbol.Provider, w *writer.Writer, shape *model.Shape) {
	for _, i := range p.integrations {
		i.OnShapeWriterUse(settings, m, provider, w, shape)
	}
}

// CustomizeMiddleware folds the middleware list through every integration.
func (p *Pipeline) CustomizeMiddleware(ctx *Context, g *protocol.Generator, resolved []protocol.Middleware) []protocol.Middleware {
	for _, i := range p.integrations {
		resolved = i.CustomizeMiddleware(ctx, g, resolved)
	}
	return resolved
}

// WriteAdditionalFiles runs every integration's file hook.
func (p *Pipeline) WriteAdditionalFiles(ctx *Context, delegator Delegator) error {
	for _, i := range p.integrations {
		if err := i.WriteAdditionalFiles(ctx, delegator); err != nil {
			return err
		}
	}
	return nil
}

// DecodeOptions decodes an integration's raw settings options into a typed
// struct.
func DecodeOptions(settings *config.Settings, name string, target interface{}) error {
	raw := settings.IntegrationOptions(name)
	if raw == nil {
		return nil
	}
	return mapstructure.Decode(raw, target)
}
