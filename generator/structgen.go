package generator

import (
	"strings"

	"github.com/smithy-lang/smithy-gogen/model"
	"github.com/smithy-lang/smithy-gogen/model/traits"
	"github.com/smithy-lang/smithy-gogen/symbol"
	"github.com/smithy-lang/smithy-gogen/writer"
)

// EmitStructure writes the Go type for a structure shape: one exported field
// per member in sorted order, pointer-typed unless the member is required.
// Error structures additionally implement the error interface.
func EmitStructure(w *writer.Writer, symbols symbol.Provider, shape *model.Shape, sym symbol.Symbol) error {
	emitShapeDocs(w, shape)
	w.OpenBlock("type $L struct {", sym.Name)
	for _, mem := range shape.SortedMembers() {
		memSym, err := symbols.MemberSymbol(mem)
		if err != nil {
			return err
		}
		w.UseSymbol(memSym)
		emitMemberDocs(w, mem)
		w.Write("$L $L", symbol.FieldName(mem), selfRef(memSym.FieldRef(), sym.Namespace))
	}
	w.CloseBlock("}")
	w.Blank()

	if shape.IsError() {
		emitErrorMethod(w, shape, sym)
	}
	return nil
}

// selfRef strips the package qualifier for references to sibling types in
// the same generated package. The writer suppresses the self-import.
func selfRef(ref, selfNamespace string) string {
	if selfNamespace == "" {
		return ref
	}
	return strings.ReplaceAll(ref, symbol.PackageAlias(selfNamespace)+".", "")
}

// emitErrorMethod implements error for a modeled error structure, folding in
// the message member when present.
func emitErrorMethod(w *writer.Writer, shape *model.Shape, sym symbol.Symbol) {
	var messageField string
	for _, mem := range shape.Members() {
		if mem.Name == "message" || mem.Name == "Message" {
			messageField = symbol.FieldName(mem)
			break
		}
	}

	w.OpenBlock("func (e *$L) Error() string {", sym.Name)
	if messageField != "" {
		w.OpenBlock("if e.$L != nil {", messageField)
		w.Write("return $S + *e.$L", sym.Name+": ", messageField)
		w.CloseBlock("}")
	}
	w.Write("return $S", sym.Name)
	w.CloseBlock("}")
	w.Blank()
}

func emitShapeDocs(w *writer.Writer, shape *model.Shape) {
	if docs, ok := model.GetTrait[*traits.Documentation](shape.Traits); ok {
		w.Write("// $L", firstSentence(docs.Text))
	}
	if dep, ok := model.GetTrait[*traits.Deprecated](shape.Traits); ok {
		msg := dep.Message
		if msg == "" {
			msg = "no longer recommended for use."
		}
		w.Write("//")
		w.Write("// Deprecated: $L", msg)
	}
}

func emitMemberDocs(w *writer.Writer, mem *model.Member) {
	if docs, ok := model.GetTrait[*traits.Documentation](mem.Traits); ok {
		w.Write("// $L", firstSentence(docs.Text))
	}
}

// firstSentence trims a documentation trait to its first sentence; full HTML
// documentation rendering is out of scope for generated comments.
func firstSentence(text string) string {
	for i := 0; i < len(text); i++ {
		if text[i] == '.' && (i+1 == len(text) || text[i+1] == ' ' || text[i+1] == '\n') {
			return text[:i+1]
		}
		if text[i] == '\n' {
			return text[:i]
		}
	}
	return text
}
