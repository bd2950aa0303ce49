package ingest

import (
	"errors"
	"fmt"
)

var (
	ErrTitleFormat       = errors.New("title format")
	ErrTimeFormat        = errors.New("time format")
	ErrLinkIndex         = errors.New("link index")
	ErrCaseIDNotFound    = errors.New("case id not found")
	ErrDescriptionFormat = errors.New("description format")
)

// ParseError reports why a single feed item could not be turned into a
// ParsedRecord. Kind is one of the Err* sentinels above.
type ParseError struct {
	Kind   error
	Reason string
	Item   RawFeedItem
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %s (title %q)", e.Kind, e.Reason, e.Item.Title)
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

func newParseError(kind error, item RawFeedItem, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:   kind,
		Reason: fmt.Sprintf(format, args...),
		Item:   item,
	}
}
