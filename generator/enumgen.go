package generator

import (
	"github.com/iancoleman/strcase"

	"github.com/smithy-lang/smithy-gogen/model"
	"github.com/smithy-lang/smithy-gogen/model/traits"
	"github.com/smithy-lang/smithy-gogen/symbol"
	"github.com/smithy-lang/smithy-gogen/writer"
)

// EmitEnum writes the Go type for an enum string shape. Every enum carries an
// SdkUnknown constructor and a FromValue that yields it for unrecognized wire
// values, so newer service values do not fail deserialization.
func EmitEnum(w *writer.Writer, shape *model.Shape, sym symbol.Symbol) error {
	enum, _ := model.GetTrait[*traits.Enum](shape.Traits)
	name := sym.Name

	emitShapeDocs(w, shape)
	w.OpenBlock("type $L struct {", name)
	w.Write("value string")
	w.CloseBlock("}")
	w.Blank()

	w.Write("// Value returns the wire value.")
	w.Write("func (e $L) Value() string { return e.value }", name)
	w.Blank()

	w.Write("// Enumerates the known values of $L.", name)
	w.OpenBlock("var (")
	for _, v := range enum.Values {
		w.Write("$L$L = $L{value: $S}", name, enumValueName(v), name, v.Value)
	}
	w.CloseBlock(")")
	w.Blank()

	w.Write("// $LSdkUnknown wraps a value not known at generation time.", name)
	w.Write("func $LSdkUnknown(value string) $L { return $L{value: value} }", name, name, name)
	w.Blank()

	w.Write("// $LFromValue returns the $L for a wire value, yielding", name, name)
	w.Write("// $LSdkUnknown for unrecognized values.", name)
	w.OpenBlock("func $LFromValue(value string) $L {", name, name)
	w.Write("switch value {")
	for _, v := range enum.Values {
		w.Write("case $S:", v.Value)
		w.Indent()
		w.Write("return $L$L", name, enumValueName(v))
		w.Outdent()
	}
	w.Write("default:")
	w.Indent()
	w.Write("return $LSdkUnknown(value)", name)
	w.Outdent()
	w.Write("}")
	w.CloseBlock("}")
	w.Blank()
	return nil
}

// enumValueName derives the Go constant suffix for an enum entry: its
// symbolic name when modeled, else the value itself.
func enumValueName(v traits.EnumValue) string {
	if v.Name != "" {
		return strcase.ToCamel(v.Name)
	}
	return strcase.ToCamel(v.Value)
}
