// Package symbol maps Smithy shapes to the Go symbols the generator emits.
package symbol

import "strings"

// Symbol is a reference to a Go type or function in generated code. Two equal
// symbols refer to the same generated entity.
type Symbol struct {
	// Name is the unqualified identifier, e.g. "GetFooRequest" or "[]string".
	Name string
	// Namespace is the import path of the package defining the symbol, empty
	// for builtins and composite type literals.
	Namespace string
	// Alias overrides the import alias for Namespace, for packages whose
	// final path element collides with another import.
	Alias string
	// Nullable indicates the emitted reference is a pointer (or a nil-able
	// composite) in generated struct fields.
	Nullable bool
	// DefaultValue is the zero literal for unboxed primitives, allowing
	// emitters to skip default-equal values for headers and queries.
	DefaultValue string
	// Interface marks symbols generated as Go interfaces (unions,
	// documents); their nullable references stay bare since the interface
	// itself is nil-able.
	Interface bool
	// DefinitionFile is the path of the generated file declaring the symbol,
	// relative to the output root. Empty for external and builtin symbols.
	DefinitionFile string
	// References are symbols this symbol's rendered form depends on, e.g. a
	// container's element type. Imports for them are registered alongside
	// the symbol itself.
	References []Symbol
}

// Builtin creates a symbol for a builtin Go type.
func Builtin(name, defaultValue string) Symbol {
	return Symbol{Name: name, DefaultValue: defaultValue}
}

// External creates a symbol in an external package.
func External(namespace, name string) Symbol {
	return Symbol{Namespace: namespace, Name: name}
}

// PackageAlias returns the local alias for the symbol's package: the final
// import path element.
func PackageAlias(namespace string) string {
	if i := strings.LastIndexByte(namespace, '/'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// Qualified returns the identifier as referenced from another package, e.g.
// "model.GetFooRequest". Builtins and composites render unqualified.
func (s Symbol) Qualified() string {
	if s.Namespace == "" {
		return s.Name
	}
	if s.Alias != "" {
		return s.Alias + "." + s.Name
	}
	return PackageAlias(s.Namespace) + "." + s.Name
}

// FieldRef returns the symbol as a generated struct field type: pointer when
// nullable, except composite (slice/map) types which are nil-able as is.
func (s Symbol) FieldRef() string {
	ref := s.Qualified()
	if s.Nullable && !s.Interface && !strings.HasPrefix(ref, "[]") && !strings.HasPrefix(ref, "map[") {
		return "*" + ref
	}
	return ref
}

// WithNullable returns a copy of the symbol with nullability set.
func (s Symbol) WithNullable(nullable bool) Symbol {
	s.Nullable = nullable
	return s
}
