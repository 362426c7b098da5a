package metadata

import (
	"errors"
	"fmt"
	"time"
)

// RawVideoDescriptor is one playlist entry as reported by the source provider.
type RawVideoDescriptor struct {
	ID           string
	Title        string
	Author       string
	ThumbnailURL string
	Keywords     []string
	Description  string
	PublishDate  *time.Time
}

// NormalizedMetadata is the cleaned record derived from a RawVideoDescriptor.
// It is built once by Assemble and only read afterwards.
type NormalizedMetadata struct {
	Filename   string
	Author     string
	Title      string
	ArtworkURL string
	Keywords   []string
	Comment    string
	Date       *string
	Album      *string
	Genre      *string
	Featured   string // featured artist found during assembly, "" if none
}

// ErrMalformedDescriptor marks a descriptor whose title or author is missing.
var ErrMalformedDescriptor = errors.New("malformed video descriptor")

// MalformedDescriptorError reports which field the source provider failed to supply.
type MalformedDescriptorError struct {
	ID    string
	Field string
}

func (e *MalformedDescriptorError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: missing %s", ErrMalformedDescriptor, e.Field)
	}
	return fmt.Sprintf("%s %s: missing %s", ErrMalformedDescriptor, e.ID, e.Field)
}

func (e *MalformedDescriptorError) Unwrap() error { return ErrMalformedDescriptor }

// optional returns a pointer to s, or nil when s is empty.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// deref returns the pointed-to string or "".
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
