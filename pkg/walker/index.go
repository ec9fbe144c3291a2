package walker

import (
	"github.com/pkg/errors"

	"github.com/gitrdm/asteroid/pkg/prologue"
	"github.com/gitrdm/asteroid/pkg/term"
)

// readAtIndex implements read_at_ix (§12 supplemented feature): evaluate
// the structure side of an index expression, then resolve the index side
// either as a positional offset into a list/tuple, a member-name lookup
// into a struct/object's memory, or a method-call-sugar apply node that
// calls the named member directly (see callMember).
func (w *Walker) readAtIndex(node *term.Term) (*term.Term, error) {
	structureVal, err := w.Walk(node.Children[0])
	if err != nil {
		return nil, err
	}
	ixNode := node.Children[1]

	if ixNode.Tag == term.TagApply {
		name := ixNode.Children[0].Name
		argVal, err := w.Walk(ixNode.Children[1])
		if err != nil {
			return nil, err
		}
		args := flattenArgs(argVal)
		return w.callMember(structureVal, name, args)
	}

	ixVal, err := w.Walk(ixNode)
	if err != nil {
		return nil, err
	}

	switch ixVal.Tag {
	case term.TagInteger:
		return indexPositional(structureVal, int(ixVal.Int))
	case term.TagString:
		return w.readMember(structureVal, ixVal.Str)
	default:
		return nil, errors.Errorf("walker: index must be an integer or a member name, got %q", ixVal.Tag)
	}
}

// storeAtIndex implements store_at_ix: the lval side of an index(structure,
// ix) binding. Only integer-positional and member-name targets are
// writable; method-call sugar never appears as an lval.
func (w *Walker) storeAtIndex(lval, value *term.Term) error {
	structureVal, err := w.Walk(lval.Children[0])
	if err != nil {
		return err
	}
	ixVal, err := w.Walk(lval.Children[1])
	if err != nil {
		return err
	}

	switch ixVal.Tag {
	case term.TagInteger:
		return storePositional(structureVal, int(ixVal.Int), value)
	case term.TagString:
		return w.storeMember(structureVal, ixVal.Str, value)
	default:
		return errors.Errorf("walker: index must be an integer or a member name, got %q", ixVal.Tag)
	}
}

func indexPositional(structureVal *term.Term, ix int) (*term.Term, error) {
	if structureVal.Tag != term.TagList && structureVal.Tag != term.TagTuple {
		return nil, errors.Errorf("walker: cannot index a term of type %q", structureVal.Tag)
	}
	if ix < 0 || ix >= len(structureVal.Children) {
		return nil, errors.Errorf("walker: index %d out of bounds (length %d)", ix, len(structureVal.Children))
	}
	return structureVal.Children[ix], nil
}

func storePositional(structureVal *term.Term, ix int, value *term.Term) error {
	if structureVal.Tag != term.TagList && structureVal.Tag != term.TagTuple {
		return errors.Errorf("walker: cannot index a term of type %q", structureVal.Tag)
	}
	if ix < 0 || ix >= len(structureVal.Children) {
		return errors.Errorf("walker: index %d out of bounds (length %d)", ix, len(structureVal.Children))
	}
	// Lists/objects are shared, mutable memory (§9's "object/struct sharing"
	// design note): writing through an index mutates the same backing array
	// every other alias sees, matching the reference's Python list semantics.
	structureVal.Children[ix] = value
	return nil
}

// readMember resolves a member-name index: for an object/struct, the
// member's declared slot (a function-val slot surfaces as a bound
// member-function-val); for a list/tuple/string, a prologue native member
// function bound the same way.
func (w *Walker) readMember(structureVal *term.Term, name string) (*term.Term, error) {
	switch structureVal.Tag {
	case term.TagObject, term.TagStruct:
		for i, n := range structureVal.MemberNames {
			if n == name {
				slot := structureVal.Memory[i]
				if slot.Tag == term.TagFunctionVal {
					return term.NewMemberFunctionVal(structureVal, slot), nil
				}
				return slot, nil
			}
		}
		return nil, errors.Errorf("walker: %q has no member %q", structureVal.Name, name)
	case term.TagList, term.TagTuple, term.TagString:
		fn, ok := prologue.Lookup(structureVal.Tag, name)
		if !ok {
			return nil, errors.Errorf("walker: %q has no such member function", name)
		}
		return term.NewMemberFunctionVal(structureVal, term.NewForeign(fn)), nil
	default:
		return nil, errors.Errorf("walker: cannot look up member %q on a term of type %q", name, structureVal.Tag)
	}
}

func (w *Walker) storeMember(structureVal *term.Term, name string, value *term.Term) error {
	if structureVal.Tag != term.TagObject && structureVal.Tag != term.TagStruct {
		return errors.Errorf("walker: cannot assign a member on a term of type %q", structureVal.Tag)
	}
	for i, n := range structureVal.MemberNames {
		if n == name {
			structureVal.Memory[i] = value
			return nil
		}
	}
	return errors.Errorf("walker: %q has no member %q", structureVal.Name, name)
}

// callMember dispatches a resolved member-function call: native member
// functions (list/string built-ins, §6) invoke directly; user-defined
// methods (struct/object members) go through ordinary handle_call with the
// receiver prepended as the first actual argument, matching the reference
// walker's member-function-val calling convention.
func (w *Walker) callMember(receiver *term.Term, name string, args []*term.Term) (*term.Term, error) {
	if receiver.Tag == term.TagObject || receiver.Tag == term.TagStruct {
		for i, n := range receiver.MemberNames {
			if n == name {
				slot := receiver.Memory[i]
				if slot.Tag != term.TagFunctionVal {
					return nil, errors.Errorf("walker: %q is not callable", name)
				}
				return w.callFunctionVal(slot, append([]*term.Term{receiver}, args...))
			}
		}
		return nil, errors.Errorf("walker: %q has no member %q", receiver.Name, name)
	}
	fn, ok := prologue.Lookup(receiver.Tag, name)
	if !ok {
		return nil, errors.Errorf("walker: %q has no such member function", name)
	}
	return fn(receiver, args)
}

// flattenArgs turns an evaluated actual-argument term into an ordered
// argument slice: a tuple spreads into its elements, 'none' means no
// arguments, anything else is a single argument (mirrors eval_actual_args'
// tuple-vs-scalar handling).
func flattenArgs(v *term.Term) []*term.Term {
	if v.Tag == term.TagTuple {
		return v.Children
	}
	if v.Tag == term.TagNone {
		return nil
	}
	return []*term.Term{v}
}
