package schema

import (
	"fmt"
	"strings"
)

// FieldError describes why a single field was rejected.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError reports every rejected field of one record. Entry is the
// source location and is filled in by whoever loaded the record.
type ValidationError struct {
	Collection Collection
	Entry      string
	Fields     []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	where := string(e.Collection)
	if e.Entry != "" {
		where += " → " + e.Entry
	}
	return fmt.Sprintf("%s does not match collection schema: %s", where, strings.Join(parts, "; "))
}

// HasField reports whether field is among the rejected fields.
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// fieldErrors accumulates failures while a record is being checked.
type fieldErrors []FieldError

func (fe *fieldErrors) add(field, format string, args ...interface{}) {
	*fe = append(*fe, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (fe fieldErrors) err(c Collection) error {
	if len(fe) == 0 {
		return nil
	}
	return &ValidationError{Collection: c, Fields: fe}
}
