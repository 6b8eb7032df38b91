// fastview implements a builder pattern for simple server-side views:
// given an input data model, convert it to a view-model and multiplex that
// to one or more views, each of which emits element updates for the page.
package fastview

import (
	"html/template"
)

// EleUpdate is an element identifier and a set of operations to apply to its attributes/content.
type EleUpdate struct {
	// The id by which to find the element
	EleId string
	// Op keys are attribute keys or 'textContent', values are the strings to which these are set.
	// ('textContent','abc') means 'set ele.textContent to abc'.
	Ops []Op
}

// Op is a key and value. For example an html attribute and its new value.
type Op struct {
	Key   string
	Value string
}

// ViewComponent is a server-side view: Parse adds its initial form to a page template
// and Updates notifies the element updates that keep the page current.
type ViewComponent interface {
	Updates() <-chan []EleUpdate
	// Parse adds the view's template definition to the passed parent template, inheriting
	// its func-map, and returns the name to execute it by.
	Parse(*template.Template) (string, error)
}
