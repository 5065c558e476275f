package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/smithy-lang/smithy-gogen/writer"
)

// Delegator owns the writers for a generation run, one per output file. No
// file touches disk until Flush, and a file whose emission failed is
// discarded rather than flushed.
type Delegator struct {
	// module is the Go module path of the generated client, used to suppress
	// self-imports per file.
	module string
	header string

	writers map[string]*writer.Writer
}

// NewDelegator creates a delegator stamping every file with the header.
func NewDelegator(module, header string) *Delegator {
	return &Delegator{
		module:  module,
		header:  header,
		writers: map[string]*writer.Writer{},
	}
}

// UseFileWriter runs body against the writer for the given relative path,
// creating it with the package name on first use. An error from body
// discards the file's buffer entirely.
func (d *Delegator) UseFileWriter(path, pkg string, body func(w *writer.Writer) error) error {
	w, ok := d.writers[path]
	if !ok {
		w = writer.New(pkg)
		w.SelfImport = d.module
		if dir := filepath.Dir(path); dir != "." {
			w.SelfImport = d.module + "/" + filepath.ToSlash(dir)
		}
		d.writers[path] = w
	}

	if err := body(w); err != nil {
		delete(d.writers, path)
		return err
	}
	return nil
}

// Paths returns the pending file paths in sorted order.
func (d *Delegator) Paths() []string {
	paths := make([]string, 0, len(d.writers))
	for p := range d.writers {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Flush renders every pending writer under outDir and returns the manifest
// of written paths. Rendering is validated for every file before anything is
// written, so a failed run leaves no partial output.
func (d *Delegator) Flush(outDir string) ([]string, error) {
	paths := d.Paths()

	rendered := make(map[string]string, len(paths))
	for _, p := range paths {
		content, err := d.writers[p].Finish(d.header)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", p, err)
		}
		rendered[p] = content
	}

	for _, p := range paths {
		full := filepath.Join(outDir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output dir: %w", err)
		}
		if err := os.WriteFile(full, []byte(rendered[p]), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", p, err)
		}
	}
	return paths, nil
}

// RenderAll renders every pending writer in memory, keyed by path. Used by
// tests and drivers that write elsewhere.
func (d *Delegator) RenderAll() (map[string]string, error) {
	out := make(map[string]string, len(d.writers))
	for p, w := range d.writers {
		content, err := w.Finish(d.header)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", p, err)
		}
		out[p] = content
	}
	return out, nil
}

// goFileName converts a shape or operation symbol name to its file name.
func goFileName(parts ...string) string {
	return strings.Join(parts, "") + ".go"
}
