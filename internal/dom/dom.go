// Package dom describes the small slice of a rendered page the scraper needs:
// selector queries, text, attributes, clicks and navigation across tabs.
//
// Implementations live in subpackages: rodpage drives a real Chrome through
// go-rod, static works over fetched HTML with goquery.
package dom

import (
	"errors"
	"strings"
)

// ErrStale reports that an element went away between being found and being
// used (re-render, navigation). Callers retry instead of failing.
var ErrStale = errors.New("dom: element is no longer attached to the document")

// Scope is anything selectors can be evaluated against: a page or an element.
type Scope interface {
	FindAll(selector string) ([]Element, error)
}

// Element is a handle to one node of the live document.
type Element interface {
	Scope

	// Text returns the rendered text, line breaks preserved.
	Text() (string, error)
	// Attribute returns the raw attribute value and whether it is present.
	Attribute(name string) (string, bool, error)
	// Interactable reports whether the element is visible and not disabled.
	Interactable() (bool, error)
	Click() error
}

// Page is one browsing context (tab/window).
type Page interface {
	Scope

	URL() string
	Navigate(url string) error
	// OpenInNewContext opens url in a separate tab and returns it. The caller
	// must CloseContext it and Activate the original page afterwards.
	OpenInNewContext(url string) (Page, error)
	CloseContext() error
	Activate() error
}

// FindFirst returns the first match of selector inside scope. Query errors
// count as "no match".
func FindFirst(scope Scope, selector string) (Element, bool) {
	if scope == nil {
		return nil, false
	}
	els, err := scope.FindAll(selector)
	if err != nil || len(els) == 0 {
		return nil, false
	}
	return els[0], true
}

// TextOf returns the element text or "" if it cannot be read.
func TextOf(el Element) string {
	if el == nil {
		return ""
	}
	text, err := el.Text()
	if err != nil {
		return ""
	}
	return text
}

// AttrOf returns a trimmed attribute value or "".
func AttrOf(el Element, name string) string {
	if el == nil {
		return ""
	}
	v, ok, err := el.Attribute(name)
	if err != nil || !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

func IsStale(err error) bool {
	return errors.Is(err, ErrStale)
}
