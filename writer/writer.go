// Package writer provides the buffered source emitter used by all code
// generators: line-oriented writes with format substitution, scoped
// indentation blocks, a deduplicated import table, and named-section
// interception.
package writer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	smithygogen "github.com/smithy-lang/smithy-gogen"
	"github.com/smithy-lang/smithy-gogen/symbol"
)

// SectionInterceptor rewrites a named span. It receives the text the writer
// would have emitted and returns the replacement.
type SectionInterceptor func(w *Writer, previous string) string

// Writer buffers the source of one generated file. All writes are
// append-only; only the import table is deduplicated.
type Writer struct {
	// Package is the package clause name of the generated file.
	Package string
	// SelfImport is the import path of the package being generated;
	// AddImport drops it so files never import themselves.
	SelfImport string

	buf    strings.Builder
	indent int

	// imports maps import path to local alias ("" for the default alias).
	imports map[string]string

	sections map[string][]SectionInterceptor

	// sub-writers inherit the import table of their parent.
	parent *Writer
}

// New creates a writer for a generated file in the named package.
func New(pkg string) *Writer {
	return &Writer{
		Package:  pkg,
		imports:  map[string]string{},
		sections: map[string][]SectionInterceptor{},
	}
}

// AddImport records an import of the given path. Repeat calls are collapsed.
func (w *Writer) AddImport(path string, alias ...string) {
	a := ""
	if len(alias) > 0 {
		a = alias[0]
	}
	if w.parent != nil {
		w.parent.AddImport(path, alias...)
		return
	}
	if path == w.SelfImport {
		return
	}
	if existing, ok := w.imports[path]; !ok || existing == "" {
		w.imports[path] = a
	}
}

// UseSymbol registers imports for the symbol and its references.
func (w *Writer) UseSymbol(sym symbol.Symbol) {
	if sym.Namespace != "" {
		if sym.Alias != "" {
			w.AddImport(sym.Namespace, sym.Alias)
		} else {
			w.AddImport(sym.Namespace)
		}
	}
	for _, ref := range sym.References {
		w.UseSymbol(ref)
	}
}

// Write appends one formatted line at the current indentation.
//
// Format verbs: $L writes the argument literally, $S writes it as a quoted Go
// string, $T writes a symbol.Symbol qualified reference and registers its
// imports, and $$ writes a dollar sign. A verb may be prefixed with a 1-based
// argument index ($2L); unprefixed verbs consume arguments in order.
func (w *Writer) Write(format string, args ...interface{}) {
	line := w.format(format, args...)
	for i := 0; i < w.indent; i++ {
		w.buf.WriteByte('\t')
	}
	w.buf.WriteString(line)
	w.buf.WriteByte('\n')
}

// Blank appends an empty line.
func (w *Writer) Blank() {
	w.buf.WriteByte('\n')
}

// Indent increases the indentation level without writing.
func (w *Writer) Indent() { w.indent++ }

// Outdent decreases the indentation level without writing.
func (w *Writer) Outdent() {
	if w.indent > 0 {
		w.indent--
	}
}

// OpenBlock writes the prefix line and increases indentation.
func (w *Writer) OpenBlock(format string, args ...interface{}) {
	w.Write(format, args...)
	w.indent++
}

// CloseBlock decreases indentation and writes the suffix line.
func (w *Writer) CloseBlock(format string, args ...interface{}) {
	if w.indent > 0 {
		w.indent--
	}
	w.Write(format, args...)
}

// WithBlock runs body between OpenBlock and CloseBlock. The close is applied
// on every exit path, so emitted blocks always balance.
func (w *Writer) WithBlock(prefix, suffix string, body func()) {
	w.OpenBlock("$L", prefix)
	defer w.CloseBlock("$L", suffix)
	body()
}

// WithGoBlock is WithBlock specialized to Go brace blocks: the prefix is
// formatted, the block closes with "}".
func (w *Writer) WithGoBlock(format string, args []interface{}, body func()) {
	w.OpenBlock(format, args...)
	defer w.CloseBlock("}")
	body()
}

// OnSection registers an interceptor for a named span. Interceptors stack;
// the last registered runs last and therefore wins.
func (w *Writer) OnSection(name string, fn SectionInterceptor) {
	if w.parent != nil {
		w.parent.OnSection(name, fn)
		return
	}
	w.sections[name] = append(w.sections[name], fn)
}

func (w *Writer) interceptors(name string) []SectionInterceptor {
	if w.parent != nil {
		return w.parent.interceptors(name)
	}
	return w.sections[name]
}

// Section renders a named span. The default body is rendered first; any
// registered interceptors then rewrite it in registration order.
func (w *Writer) Section(name string, body func(*Writer)) {
	sub := &Writer{
		Package:  w.Package,
		indent:   w.indent,
		parent:   w,
		sections: map[string][]SectionInterceptor{},
	}
	body(sub)
	text := sub.buf.String()

	for _, intercept := range w.interceptors(name) {
		rewrite := &Writer{Package: w.Package, indent: w.indent, parent: w, sections: map[string][]SectionInterceptor{}}
		replacement := intercept(rewrite, text)
		if rewrite.buf.Len() > 0 {
			text = rewrite.buf.String()
		} else {
			text = replacement
		}
	}
	w.buf.WriteString(text)
}

func (w *Writer) format(format string, args ...interface{}) string {
	var out strings.Builder
	next := 0

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '$' {
			out.WriteByte(c)
			continue
		}
		i++
		if i >= len(format) {
			out.WriteByte('$')
			break
		}

		// optional 1-based positional index
		idx := -1
		j := i
		for j < len(format) && format[j] >= '0' && format[j] <= '9' {
			j++
		}
		if j > i {
			n, _ := strconv.Atoi(format[i:j])
			idx = n - 1
			i = j
		}

		verb := format[i]
		if verb == '$' {
			out.WriteByte('$')
			continue
		}

		var arg interface{}
		if idx >= 0 {
			if idx < len(args) {
				arg = args[idx]
			}
		} else if next < len(args) {
			arg = args[next]
			next++
		}

		switch verb {
		case 'L':
			out.WriteString(fmt.Sprintf("%v", arg))
		case 'S':
			out.WriteString(strconv.Quote(fmt.Sprintf("%v", arg)))
		case 'T':
			sym, ok := arg.(symbol.Symbol)
			if !ok {
				out.WriteString(fmt.Sprintf("%v", arg))
				break
			}
			w.UseSymbol(sym)
			out.WriteString(sym.Qualified())
		default:
			out.WriteByte('$')
			out.WriteByte(verb)
		}
	}
	return out.String()
}

// Finish validates block balance and returns the rendered file: package
// clause, deduplicated imports, then the body. On imbalance the buffer is
// discarded and an UnbalancedEmission error returned.
func (w *Writer) Finish(header string) (string, error) {
	if w.indent != 0 {
		return "", smithygogen.Errorf(smithygogen.ErrUnbalancedEmission, w.Package,
			"%d block(s) left open at writer close", w.indent)
	}

	var out strings.Builder
	if header != "" {
		out.WriteString(header)
		if !strings.HasSuffix(header, "\n") {
			out.WriteByte('\n')
		}
	}
	fmt.Fprintf(&out, "package %s\n\n", w.Package)

	if len(w.imports) > 0 {
		paths := make([]string, 0, len(w.imports))
		for p := range w.imports {
			paths = append(paths, p)
		}
		sort.Strings(paths)

		out.WriteString("import (\n")
		for _, p := range paths {
			if alias := w.imports[p]; alias != "" {
				fmt.Fprintf(&out, "\t%s %q\n", alias, p)
			} else {
				fmt.Fprintf(&out, "\t%q\n", p)
			}
		}
		out.WriteString(")\n\n")
	}

	out.WriteString(w.buf.String())
	return out.String(), nil
}
