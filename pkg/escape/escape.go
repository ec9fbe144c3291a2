// Package escape implements the escape-hook extension point §6 describes:
// a host-supplied primitive the 'escape' expression invokes with a raw
// payload string and gets back a single term.Term result.
//
// §9 leaves the hook's concrete behavior as an open question ("a
// conformant implementation may reject it"); this implementation takes
// that option and rejects by default via Disabled, documenting how a host
// wires a real implementation via the Hook interface.
package escape

import (
	"github.com/pkg/errors"

	"github.com/gitrdm/asteroid/pkg/term"
)

// Hook is the host collaborator §6's 'escape' expression calls through.
// Payload is the raw string carried by the escape node; the return value
// becomes the expression's result (the reference walker's __retval__
// global, reified here as an ordinary return value instead).
type Hook interface {
	Escape(payload string) (*term.Term, error)
}

type disabled struct{}

func (disabled) Escape(payload string) (*term.Term, error) {
	return nil, errors.Errorf("escape: no host hook installed, cannot execute %q", payload)
}

// Disabled returns a Hook that rejects every call. This is the walker's
// default (walker.New with no WithEscapeHook option) and the conformant
// choice this implementation makes for §9's open question.
func Disabled() Hook { return disabled{} }

// Func adapts a plain function to the Hook interface, for hosts that don't
// need any state beyond the closure itself.
type Func func(payload string) (*term.Term, error)

func (f Func) Escape(payload string) (*term.Term, error) { return f(payload) }
