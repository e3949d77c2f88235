package models

import (
	"fmt"
	"strconv"
)

// TransportError reports a page that could not be retrieved. StatusCode is 0
// when the request failed before any response arrived.
type TransportError struct {
	Site        string
	URL         string
	StatusCode  int
	BodyExcerpt string
	Err         error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("connection to %q failed (%s): %v", e.Site, e.URL, e.Err)
	}
	return fmt.Sprintf("connection to %q failed with status %d (%s): %s", e.Site, e.StatusCode, e.URL, e.BodyExcerpt)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FormatError reports a numeric string that does not match its grammar.
type FormatError struct {
	Input   string
	Grammar string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid format %s, expected %s", strconv.Quote(e.Input), e.Grammar)
}

// MissingFieldError reports a structural anchor absent from a listing.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q", e.Field)
}
