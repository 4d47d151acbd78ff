// Package session holds per-visitor UI state: which page is showing, the last
// form inputs and the generated test.
package session

import (
	"errors"
	"fmt"
)

// Page is a top-level view.
type Page string

const (
	PageHome        Page = "home"
	PageCreateTest  Page = "create_test"
	PageTestDisplay Page = "test_display"
)

// Action is a navigation event.
type Action string

const (
	ActionCreateTest   Action = "create_test"
	ActionBackHome     Action = "back_home"
	ActionBackToCreate Action = "back_to_create"
	ActionGenerateNew  Action = "generate_new"
	ActionGenerated    Action = "generated"
	ActionViewTest     Action = "view_test"
)

// ErrInvalidTransition is returned for an action the current page does not
// offer.
var ErrInvalidTransition = errors.New("invalid page transition")

type edge struct {
	from   Page
	action Action
}

var transitions = map[edge]Page{
	{PageHome, ActionCreateTest}:          PageCreateTest,
	{PageHome, ActionViewTest}:            PageTestDisplay,
	{PageCreateTest, ActionGenerated}:     PageTestDisplay,
	{PageCreateTest, ActionViewTest}:      PageTestDisplay,
	{PageTestDisplay, ActionBackToCreate}: PageCreateTest,
	{PageTestDisplay, ActionGenerateNew}:  PageCreateTest,
}

// Transition returns the page reached from p by a. back_home is valid from
// every page. Any other pair not in the table yields ErrInvalidTransition and
// p unchanged.
func Transition(p Page, a Action) (Page, error) {
	if !p.Valid() {
		return p, fmt.Errorf("%w: unknown page %q", ErrInvalidTransition, p)
	}
	if a == ActionBackHome {
		return PageHome, nil
	}
	next, ok := transitions[edge{p, a}]
	if !ok {
		return p, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, a, p)
	}
	return next, nil
}

// Valid reports whether p is a known page.
func (p Page) Valid() bool {
	switch p {
	case PageHome, PageCreateTest, PageTestDisplay:
		return true
	}
	return false
}
