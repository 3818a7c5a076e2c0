package model

import "fmt"

// Error codes returned to API clients
const (
	ErrCodeDecode     = "DECODE_ERROR"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeGeneration = "GENERATION_ERROR"
	ErrCodeFileSystem = "FILESYSTEM_ERROR"
)

// DecodeError represents a malformed or missing request field
type DecodeError struct {
	Field   string
	Message string
	Cause   error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode failed on %s: %s (%v)", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("decode failed on %s: %s", e.Field, e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Code returns the API error code
func (e *DecodeError) Code() string { return ErrCodeDecode }

// NewDecodeError creates a new decode error
func NewDecodeError(field, message string, cause error) *DecodeError {
	return &DecodeError{
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// ValidationError represents an invoice XML that failed well-formedness,
// structural or schema checks
type ValidationError struct {
	Profile string
	Errors  []string
	Cause   error
}

func (e *ValidationError) Error() string {
	msg := "XML validation failed"
	if e.Profile != "" {
		msg = fmt.Sprintf("XML validation failed for profile %s", e.Profile)
	}
	if len(e.Errors) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, e.Errors[0])
		if len(e.Errors) > 1 {
			msg = fmt.Sprintf("%s (and %d more)", msg, len(e.Errors)-1)
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Code returns the API error code
func (e *ValidationError) Code() string { return ErrCodeValidation }

// NewValidationError creates a new validation error
func NewValidationError(profile string, errors []string, cause error) *ValidationError {
	return &ValidationError{
		Profile: profile,
		Errors:  errors,
		Cause:   cause,
	}
}

// GenerationError represents a failure of the hybrid PDF generator
type GenerationError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation failed [%s]: %s (%v)", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("generation failed [%s]: %s", e.Stage, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Code returns the API error code
func (e *GenerationError) Code() string { return ErrCodeGeneration }

// NewGenerationError creates a new generation error
func NewGenerationError(stage, message string, cause error) *GenerationError {
	return &GenerationError{
		Stage:   stage,
		Message: message,
		Cause:   cause,
	}
}

// FileSystemError represents a temporary file create, write or remove failure
type FileSystemError struct {
	Op    string
	Path  string
	Cause error
}

func (e *FileSystemError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("filesystem %s %s: %v", e.Op, e.Path, e.Cause)
	}
	return fmt.Sprintf("filesystem %s: %v", e.Op, e.Cause)
}

func (e *FileSystemError) Unwrap() error {
	return e.Cause
}

// Code returns the API error code
func (e *FileSystemError) Code() string { return ErrCodeFileSystem }

// NewFileSystemError creates a new filesystem error
func NewFileSystemError(op, path string, cause error) *FileSystemError {
	return &FileSystemError{
		Op:    op,
		Path:  path,
		Cause: cause,
	}
}
