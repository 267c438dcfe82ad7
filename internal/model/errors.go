package model

import (
	"errors"
	"fmt"
)

// Error kinds reported by the conversion pipeline
const (
	KindMalformedXML      = "malformed_xml"
	KindStructureNotFound = "structure_not_found"
	KindBuild             = "build"
	KindIO                = "io"
)

// MalformedXMLError is returned when the input is not well-formed XML
type MalformedXMLError struct {
	Cause error
}

func (e *MalformedXMLError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed XML: %v", e.Cause)
	}
	return "malformed XML"
}

func (e *MalformedXMLError) Unwrap() error {
	return e.Cause
}

// NewMalformedXMLError creates a new malformed XML error
func NewMalformedXMLError(cause error) *MalformedXMLError {
	return &MalformedXMLError{Cause: cause}
}

// StructureNotFoundError is returned when well-formed XML lacks the NF-e
// information element
type StructureNotFoundError struct {
	Element string
}

func (e *StructureNotFoundError) Error() string {
	return fmt.Sprintf("NF-e structure not found: no <%s> element", e.Element)
}

// NewStructureNotFoundError creates a new structure error
func NewStructureNotFoundError(element string) *StructureNotFoundError {
	return &StructureNotFoundError{Element: element}
}

// BuildError represents a failure while projecting an invoice into a workbook
type BuildError struct {
	Stage string
	Cause error
}

func (e *BuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("build failed [%s]: %v", e.Stage, e.Cause)
	}
	return fmt.Sprintf("build failed [%s]", e.Stage)
}

func (e *BuildError) Unwrap() error {
	return e.Cause
}

// NewBuildError creates a new build error
func NewBuildError(stage string, cause error) *BuildError {
	return &BuildError{Stage: stage, Cause: cause}
}

// ValidationError represents validation failures
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule"`
	Message string      `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed on %s: %s (value=%v, rule=%s)", e.Field, e.Message, e.Value, e.Rule)
	}
	return fmt.Sprintf("validation failed on %s: %s (rule=%s)", e.Field, e.Message, e.Rule)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, rule, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Rule:    rule,
		Message: message,
	}
}

// Kind classifies a pipeline error. Errors outside the known kinds are
// reported as KindIO.
func Kind(err error) string {
	var malformed *MalformedXMLError
	var structure *StructureNotFoundError
	var build *BuildError

	switch {
	case errors.As(err, &malformed):
		return KindMalformedXML
	case errors.As(err, &structure):
		return KindStructureNotFound
	case errors.As(err, &build):
		return KindBuild
	default:
		return KindIO
	}
}

// UserMessage returns the human-readable status text for a pipeline error.
func UserMessage(err error) string {
	switch Kind(err) {
	case KindMalformedXML:
		return "Could not interpret the document. Check that the file is a valid XML."
	case KindStructureNotFound:
		return "NF-e structure not found. Make sure the file is an NF-e XML (layout 4.00)."
	case KindBuild:
		return "Could not generate the spreadsheet."
	default:
		return "Could not read the file."
	}
}
