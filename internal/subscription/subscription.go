// Package subscription is the domain stack around tagindex: it compiles
// subscriber filter expressions into a tagindex.Index and evaluates
// published identities against all of them, so a publisher process can
// answer "which subscribers want this measurement" without re-parsing or
// re-walking every filter on every publish.
package subscription

import (
	"github.com/google/uuid"
)

// ID identifies a registered subscription. It is opaque to tagindex,
// which only requires V comparable.
type ID string

// NewID generates a fresh, random subscription identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// Subscription is a subscriber's registered interest: an id, the raw
// query text it was registered with, and (owned by the Registry, not
// here) the compiled predicate tree threaded into the index.
type Subscription struct {
	ID         ID
	Expression string
}
