package symbol

import "github.com/smithy-lang/smithy-gogen/model"

// Decorator wraps a Provider, intercepting resolution for specific shapes and
// delegating the rest. Integrations supply decorators; the pipeline applies
// them in integration order, so the last decorator sees symbols produced by
// every earlier one.
type Decorator func(base Provider) Provider

// Decorate applies decorators left to right over the base provider.
func Decorate(base Provider, decorators ...Decorator) Provider {
	p := base
	for _, d := range decorators {
		p = d(p)
	}
	return p
}

// FuncProvider adapts intercept functions into a Provider. A nil intercept
// delegates to Base unconditionally.
type FuncProvider struct {
	Base Provider

	ShapeFn  func(base Provider, shape *model.Shape) (Symbol, bool, error)
	MemberFn func(base Provider, mem *model.Member) (Symbol, bool, error)
}

// SymbolOf resolves via ShapeFn when it claims the shape, else the base.
func (f *FuncProvider) SymbolOf(shape *model.Shape) (Symbol, error) {
	if f.ShapeFn != nil {
		sym, handled, err := f.ShapeFn(f.Base, shape)
		if handled || err != nil {
			return sym, err
		}
	}
	return f.Base.SymbolOf(shape)
}

// MemberSymbol resolves via MemberFn when it claims the member, else the base.
func (f *FuncProvider) MemberSymbol(mem *model.Member) (Symbol, error) {
	if f.MemberFn != nil {
		sym, handled, err := f.MemberFn(f.Base, mem)
		if handled || err != nil {
			return sym, err
		}
	}
	return f.Base.MemberSymbol(mem)
}
