package generator

import (
	"github.com/smithy-lang/smithy-gogen/model"
	"github.com/smithy-lang/smithy-gogen/symbol"
	"github.com/smithy-lang/smithy-gogen/writer"
)

// EmitUnion writes the Go type for a union shape: a sealed interface plus one
// variant struct per member. Variant values are held directly; structure and
// union targets stay pointers so variants match the document serde forms.
func EmitUnion(w *writer.Writer, symbols symbol.Provider, m *model.Model, shape *model.Shape, sym symbol.Symbol) error {
	marker := "is" + sym.Name

	emitShapeDocs(w, shape)
	w.OpenBlock("type $L interface {", sym.Name)
	w.Write("$L()", marker)
	w.CloseBlock("}")
	w.Blank()

	for _, mem := range shape.SortedMembers() {
		target, err := m.TargetOf(mem)
		if err != nil {
			return err
		}
		memSym, err := symbols.MemberSymbol(mem)
		if err != nil {
			return err
		}
		// a set variant always holds its value; only aggregate targets keep
		// the pointer form
		memSym.Nullable = target.Type == model.ShapeTypeStructure || target.Type == model.ShapeTypeUnion

		variant := sym.Name + "Member" + symbol.FieldName(mem)
		w.UseSymbol(memSym)
		w.OpenBlock("type $L struct {", variant)
		w.Write("Value $L", selfRef(memSym.FieldRef(), sym.Namespace))
		w.CloseBlock("}")
		w.Blank()
		w.Write("func (*$L) $L() {}", variant, marker)
		w.Blank()
	}
	return nil
}
