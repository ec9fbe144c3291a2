package walker

import (
	"github.com/hashicorp/go-multierror"

	"github.com/gitrdm/asteroid/pkg/term"
)

// walkStructDef implements struct_def_stmt (§12): push a fresh scope for
// the struct's own definitions, build the member-name/memory template by
// walking each declared member ('data' introduces a none-initialized slot
// bound to its own positional index; 'unify' walks a function-exp into a
// function-val slot; 'noop' is ignored), then bind the resulting struct
// value in the enclosing scope and restore it.
//
// Multiple member-declaration errors (e.g. a duplicate member name) are
// collected with go-multierror rather than stopping at the first one, the
// way the teacher's constraint layer reports more than one violated
// constraint in a single pass.
func walkStructDef(w *Walker, node *term.Term) (*term.Term, error) {
	w.Sym.PushScope(nil)

	var names []string
	var memory []*term.Term
	var errs *multierror.Error
	seen := map[string]bool{}

	for _, member := range node.Children {
		switch member.Tag {
		case term.TagData:
			if seen[member.Name] {
				errs = multierror.Append(errs, errorsDuplicateMember(member.Name))
				continue
			}
			seen[member.Name] = true
			ix := len(names)
			w.Sym.EnterSym(member.Name, term.NewInteger(int64(ix)))
			names = append(names, member.Name)
			memory = append(memory, term.NewNone())
		case term.TagUnify:
			if seen[member.Name] {
				errs = multierror.Append(errs, errorsDuplicateMember(member.Name))
				continue
			}
			seen[member.Name] = true
			fval, err := walkFunctionExp(w, member.Children[0])
			if err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			names = append(names, member.Name)
			memory = append(memory, fval)
		case term.TagNoop:
			// ignored placeholder member
		}
	}

	scope := w.Sym.GetConfig()
	w.Sym.PopScope()

	if errs.ErrorOrNil() != nil {
		return nil, errs.ErrorOrNil()
	}

	structVal := term.NewStruct(node.Name, names, memory, scope)
	w.Sym.EnterSym(node.Name, structVal)
	return term.NewNone(), nil
}

func errorsDuplicateMember(name string) error {
	return &duplicateMemberError{name: name}
}

type duplicateMemberError struct{ name string }

func (e *duplicateMemberError) Error() string {
	return "walker: struct has a duplicate member named " + e.name
}
