package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	TitleMinLen   = 3
	TitleMaxLen   = 50
	ContentMaxLen = 500
)

// CreateInput is the body of a create request.
type CreateInput struct {
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
	Tag     Tag    `json:"tag"`
}

// Normalize trims surrounding whitespace from title and content.
func (in CreateInput) Normalize() CreateInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	return in
}

// FieldError is one failed form constraint.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects every failed constraint of a CreateInput.
// It is handled locally and never sent to the API.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid note: " + strings.Join(parts, "; ")
}

// For returns the message for field, or "" when the field is valid.
func (e *ValidationError) For(field string) string {
	if e == nil {
		return ""
	}
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// Validate checks the form constraints. Lengths count runes, not bytes.
func (in CreateInput) Validate() error {
	var errs []FieldError

	n := utf8.RuneCountInString(in.Title)
	switch {
	case n == 0:
		errs = append(errs, FieldError{"title", "Title is required"})
	case n < TitleMinLen:
		errs = append(errs, FieldError{"title", fmt.Sprintf("Title must be at least %d characters", TitleMinLen)})
	case n > TitleMaxLen:
		errs = append(errs, FieldError{"title", fmt.Sprintf("Title must be at most %d characters", TitleMaxLen)})
	}

	if utf8.RuneCountInString(in.Content) > ContentMaxLen {
		errs = append(errs, FieldError{"content", fmt.Sprintf("Max %d characters", ContentMaxLen)})
	}

	if !in.Tag.Valid() {
		errs = append(errs, FieldError{"tag", "Tag is required"})
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
