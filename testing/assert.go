// Package testing provides assertion helpers for comparing generated source
// against expected fragments.
package testing

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/pmezard/go-difflib/difflib"
)

// T provides the testing interface for capturing failures with testing assert
// utilities.
type T interface {
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Helper()
}

// SourceEqual compares two source texts and returns an error carrying a
// unified diff when they differ.
func SourceEqual(expect, actual string) error {
	if expect == actual {
		return nil
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expect),
		B:        difflib.SplitLines(actual),
		FromFile: "expect",
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("failed to diff sources: %w", err)
	}
	return fmt.Errorf("source mismatch:\n%s", diff)
}

// AssertSourceEqual compares two source texts, emitting a testing error with
// a unified diff on mismatch.
func AssertSourceEqual(t T, expect, actual string) bool {
	t.Helper()

	if err := SourceEqual(expect, actual); err != nil {
		t.Errorf("expect sources equal, %v", err)
		return false
	}
	return true
}

// AssertContainsSource asserts the fragment appears in the generated source,
// comparing with tabs stripped so fragments hold at any nesting depth.
func AssertContainsSource(t T, source, fragment string) bool {
	t.Helper()

	flatSource := strings.ReplaceAll(source, "\t", "")
	flatFragment := strings.ReplaceAll(fragment, "\t", "")
	if !strings.Contains(flatSource, flatFragment) {
		t.Errorf("expect source to contain %q, full source:\n%s", fragment, source)
		return false
	}
	return true
}

// AssertDeepEqual compares two values, emitting a testing error with the
// cmp diff on mismatch.
func AssertDeepEqual(t T, expect, actual interface{}) bool {
	t.Helper()

	if diff := cmp.Diff(expect, actual); diff != "" {
		t.Errorf("expect values equal (-expect +actual):\n%s", diff)
		return false
	}
	return true
}
