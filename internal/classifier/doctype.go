// Package classifier assigns document types to local docs using
// path- and content-based heuristic rules.
package classifier

import "fmt"

// DocType is the closed set of document categories.
type DocType string

const (
	// TypeDocumentation is the default category for anything that is
	// neither a guide nor a convention.
	TypeDocumentation DocType = "documentation"
	// TypeGuide covers tutorials, how-tos and getting-started material.
	TypeGuide DocType = "guide"
	// TypeConvention covers standards, policies and style rules.
	TypeConvention DocType = "convention"
)

// Types lists every valid DocType in a stable order.
func Types() []DocType {
	return []DocType{TypeDocumentation, TypeGuide, TypeConvention}
}

// Valid reports whether t is one of the three known categories.
func (t DocType) Valid() bool {
	switch t {
	case TypeDocumentation, TypeGuide, TypeConvention:
		return true
	}
	return false
}

// Parse converts a string into a DocType, rejecting anything outside
// the closed set.
func Parse(s string) (DocType, error) {
	t := DocType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown document type %q (want documentation, guide, or convention)", s)
	}
	return t, nil
}
