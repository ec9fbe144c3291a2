// Package prologue registers the built-in member functions available on
// list and string values (§6): the fixed set of "prologue" bindings a
// conforming host exposes before any program code runs.
//
// Grounded on the teacher's list_ops.go registry-of-named-relations pattern
// (appendo, membero, reverso and friends registered by name in a lookup
// table gokando's relational layer consults at call time) generalized from
// "relation resolved by name" to "member function resolved by name through
// the symbol table", per §6 and §12's supplemented read_at_ix/member-
// function-val synthesis behavior.
package prologue

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/gitrdm/asteroid/pkg/term"
)

// NativeFunc is a built-in member function: given the receiver it was
// resolved against and its actual argument list, it computes a result.
type NativeFunc func(receiver *term.Term, args []*term.Term) (*term.Term, error)

var listMembers = map[string]NativeFunc{
	"length":  listLength,
	"append":  listAppend,
	"head":    listHead,
	"tail":    listTail,
	"reverse": listReverse,
}

var stringMembers = map[string]NativeFunc{
	"length":    stringLength,
	"explode":   stringExplode,
	"toupper":   stringToUpper,
	"tolower":   stringToLower,
}

// Lookup resolves a member function by receiver tag (TagList, TagTuple, or
// TagString) and name. ok is false when no such member function exists,
// which the caller (pkg/walker's index/apply handling) turns into the
// reference implementation's "has no such member" walker error.
func Lookup(receiverTag term.Tag, name string) (NativeFunc, bool) {
	switch receiverTag {
	case term.TagList, term.TagTuple:
		fn, ok := listMembers[name]
		return fn, ok
	case term.TagString:
		fn, ok := stringMembers[name]
		return fn, ok
	default:
		return nil, false
	}
}

func listLength(receiver *term.Term, args []*term.Term) (*term.Term, error) {
	if len(args) != 0 {
		return nil, errors.New("prologue: length takes no arguments")
	}
	return term.NewInteger(int64(len(receiver.Children))), nil
}

func listAppend(receiver *term.Term, args []*term.Term) (*term.Term, error) {
	if len(args) != 1 {
		return nil, errors.New("prologue: append takes exactly one argument")
	}
	elems := append(append([]*term.Term{}, receiver.Children...), args[0])
	return term.NewList(elems...), nil
}

func listHead(receiver *term.Term, args []*term.Term) (*term.Term, error) {
	if len(args) != 0 {
		return nil, errors.New("prologue: head takes no arguments")
	}
	if len(receiver.Children) == 0 {
		return nil, errors.New("prologue: head of an empty list")
	}
	return receiver.Children[0], nil
}

func listTail(receiver *term.Term, args []*term.Term) (*term.Term, error) {
	if len(args) != 0 {
		return nil, errors.New("prologue: tail takes no arguments")
	}
	if len(receiver.Children) == 0 {
		return nil, errors.New("prologue: tail of an empty list")
	}
	return term.NewList(receiver.Children[1:]...), nil
}

func listReverse(receiver *term.Term, args []*term.Term) (*term.Term, error) {
	if len(args) != 0 {
		return nil, errors.New("prologue: reverse takes no arguments")
	}
	n := len(receiver.Children)
	out := make([]*term.Term, n)
	for i, c := range receiver.Children {
		out[n-1-i] = c
	}
	return term.NewList(out...), nil
}

func stringLength(receiver *term.Term, args []*term.Term) (*term.Term, error) {
	if len(args) != 0 {
		return nil, errors.New("prologue: length takes no arguments")
	}
	return term.NewInteger(int64(len([]rune(receiver.Str)))), nil
}

// stringExplode desugars a string into a list of one-character strings, the
// same representation 'for' iteration over a string uses (§12).
func stringExplode(receiver *term.Term, args []*term.Term) (*term.Term, error) {
	if len(args) != 0 {
		return nil, errors.New("prologue: explode takes no arguments")
	}
	runes := []rune(receiver.Str)
	out := make([]*term.Term, len(runes))
	for i, r := range runes {
		out[i] = term.NewString(string(r))
	}
	return term.NewList(out...), nil
}

func stringToUpper(receiver *term.Term, args []*term.Term) (*term.Term, error) {
	if len(args) != 0 {
		return nil, errors.New("prologue: toupper takes no arguments")
	}
	return term.NewString(strings.ToUpper(receiver.Str)), nil
}

func stringToLower(receiver *term.Term, args []*term.Term) (*term.Term, error) {
	if len(args) != 0 {
		return nil, errors.New("prologue: tolower takes no arguments")
	}
	return term.NewString(strings.ToLower(receiver.Str)), nil
}
