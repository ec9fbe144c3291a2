package walker

import (
	"github.com/pkg/errors"

	"github.com/gitrdm/asteroid/pkg/term"
	"github.com/gitrdm/asteroid/pkg/unify"
)

// DeclareUnifiers installs every binding the unifier produced (§4.3): an
// 'id' lval enters the symbol table directly, an 'index' lval writes
// through to the addressed list/object slot, and any other lval shape is a
// walker-level error — the reference's declare_unifiers raises the same way
// for non-id/non-index lvals.
func (w *Walker) DeclareUnifiers(bindings []unify.Binding) error {
	for _, b := range bindings {
		if err := w.Bind(b.LVal, b.Value); err != nil {
			return err
		}
	}
	return nil
}

// Bind installs one binding. Exported so pkg/unify's Env.BindNow callback
// (cmatch guard evaluation) and DeclareUnifiers share one code path.
func (w *Walker) Bind(lval, value *term.Term) error {
	switch lval.Tag {
	case term.TagID:
		if lval.Name == "_" {
			return nil
		}
		w.Sym.EnterSym(lval.Name, value)
		return nil
	case term.TagIndex:
		return w.storeAtIndex(lval, value)
	default:
		return errors.Errorf("walker: only 'id' and 'index' lvals may be bound, got %q", lval.Tag)
	}
}

// BindFormalArgs enforces §4.5 step 4 (declare_formal_args): a function
// clause's formal parameters may only be plain 'id' lvals — destructuring
// patterns bind via unification itself (the clause pattern match already
// ran), so by the time we're binding formals, every lval must be a bare
// identifier.
func (w *Walker) BindFormalArgs(bindings []unify.Binding) error {
	for _, b := range bindings {
		if b.LVal.Tag != term.TagID {
			return errors.Errorf("walker: formal argument must be a plain identifier, got %q", b.LVal.Tag)
		}
		if b.LVal.Name == "_" {
			continue
		}
		w.Sym.EnterSym(b.LVal.Name, b.Value)
	}
	return nil
}
