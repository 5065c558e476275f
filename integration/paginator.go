package integration

import (
	"fmt"

	"github.com/jmespath/go-jmespath"

	"github.com/smithy-lang/smithy-gogen/config"
	"github.com/smithy-lang/smithy-gogen/model"
	"github.com/smithy-lang/smithy-gogen/model/traits"
)

// PaginatorValidation validates the paginated trait during preprocessing:
// the items, inputToken, and outputToken path expressions must compile. By
// default invalid expressions fail generation; the "strict: false" option
// demotes them to silently ignored traits.
type PaginatorValidation struct {
	Base
}

// PaginatorOptions are the settings options for the paginator integration.
type PaginatorOptions struct {
	Strict *bool `mapstructure:"strict"`
}

// Name identifies the integration.
func (PaginatorValidation) Name() string { return "paginator" }

// Order runs validation before symbol-affecting integrations.
func (PaginatorValidation) Order() int8 { return -64 }

// Preprocess compiles every paginated trait's path expressions.
func (pv PaginatorValidation) Preprocess(m *model.Model, settings *config.Settings) (*model.Model, error) {
	opts := PaginatorOptions{}
	if err := DecodeOptions(settings, pv.Name(), &opts); err != nil {
		return nil, fmt.Errorf("paginator: failed to decode options: %w", err)
	}
	strict := opts.Strict == nil || *opts.Strict

	for _, op := range m.ShapesOfType(model.ShapeTypeOperation) {
		paginated, ok := model.GetTrait[*traits.Paginated](op.Traits)
		if !ok {
			continue
		}
		for _, expr := range []string{paginated.Items, paginated.InputToken, paginated.OutputToken} {
			if expr == "" {
				continue
			}
			if _, err := jmespath.Compile(expr); err != nil {
				if !strict {
					continue
				}
				return nil, fmt.Errorf("paginator: %s: invalid path expression %q: %w", op.ID, expr, err)
			}
		}
	}
	return m, nil
}
