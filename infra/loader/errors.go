package loader

import (
	"fmt"
	"strings"
)

// SourceNotFoundError reports a missing input file.
type SourceNotFoundError struct {
	Path string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("parameter source %s not found", e.Path)
}

// SchemaError reports a column absent from the header of a source.
type SchemaError struct {
	Source    string
	Column    string
	Available []string
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("source %s has no column %q", e.Source, e.Column)
	if len(e.Available) > 0 {
		msg += " (columns: " + strings.Join(e.Available, ", ") + ")"
	}
	return msg
}

// LoadError wraps any other failure while reading a column.
type LoadError struct {
	Path   string
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load column %q from %s: %v", e.Column, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
