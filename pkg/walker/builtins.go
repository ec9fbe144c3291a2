package walker

import (
	"github.com/pkg/errors"

	"github.com/gitrdm/asteroid/pkg/term"
)

// builtinNames is the fixed set of operator names handle_builtins (§4.6)
// recognizes when they appear as the callee of an apply node.
var builtinNames = map[string]bool{
	"__plus__": true, "__minus__": true, "__times__": true, "__divide__": true,
	"__eq__": true, "__ne__": true, "__le__": true, "__lt__": true,
	"__ge__": true, "__gt__": true, "__and__": true, "__or__": true,
	"__not__": true, "__uminus__": true,
}

// applyBuiltin evaluates a built-in operator call. ok is false when name
// names no built-in, so apply_exp's caller falls through to ordinary
// function/struct dispatch.
func (w *Walker) applyBuiltin(name string, args []*term.Term) (*term.Term, bool, error) {
	if !builtinNames[name] {
		return nil, false, nil
	}

	switch name {
	case "__not__":
		b, ok := term.ToBoolean(args[0])
		if !ok {
			return nil, true, errors.Errorf("walker: __not__ expects a boolean, got %q", args[0].Tag)
		}
		return term.NewBoolean(!b.Bool), true, nil
	case "__uminus__":
		v, err := negate(args[0])
		return v, true, err
	}

	a, b := args[0], args[1]

	switch name {
	case "__and__":
		av, aok := term.ToBoolean(a)
		bv, bok := term.ToBoolean(b)
		if !aok || !bok {
			return nil, true, errors.New("walker: __and__ expects two booleans")
		}
		return term.NewBoolean(av.Bool && bv.Bool), true, nil
	case "__or__":
		av, aok := term.ToBoolean(a)
		bv, bok := term.ToBoolean(b)
		if !aok || !bok {
			return nil, true, errors.New("walker: __or__ expects two booleans")
		}
		return term.NewBoolean(av.Bool || bv.Bool), true, nil
	case "__eq__":
		return term.NewBoolean(term.Equal(a, b)), true, nil
	case "__ne__":
		return term.NewBoolean(!term.Equal(a, b)), true, nil
	}

	switch name {
	case "__plus__", "__minus__", "__times__", "__divide__":
		v, err := arith(name, a, b)
		return v, true, err
	case "__le__", "__lt__", "__ge__", "__gt__":
		v, err := relational(name, a, b)
		return v, true, err
	}

	return nil, true, errors.Errorf("walker: unimplemented built-in %q", name)
}

func negate(a *term.Term) (*term.Term, error) {
	switch a.Tag {
	case term.TagInteger:
		return term.NewInteger(-a.Int), nil
	case term.TagReal:
		return term.NewReal(-a.Real), nil
	default:
		return nil, errors.Errorf("walker: __uminus__ expects a number, got %q", a.Tag)
	}
}

// arith implements the four arithmetic operators, including the int-
// truncates/real-divides split __divide__ has in the reference
// handle_builtins (§12). __plus__ additionally concatenates lists and
// tuples, and concatenates strings via stringification of both operands
// (spec.md §4.6; handle_builtins' 'list'/'string' branches of '+').
func arith(name string, a, b *term.Term) (*term.Term, error) {
	if name == "__plus__" {
		if (a.Tag == term.TagList && b.Tag == term.TagList) || (a.Tag == term.TagTuple && b.Tag == term.TagTuple) {
			elems := make([]*term.Term, 0, len(a.Children)+len(b.Children))
			elems = append(elems, a.Children...)
			elems = append(elems, b.Children...)
			if a.Tag == term.TagTuple {
				return term.NewTuple(elems...), nil
			}
			return term.NewList(elems...), nil
		}
		if a.Tag == term.TagString && b.Tag == term.TagString {
			return term.NewString(term.ToDisplayString(a) + term.ToDisplayString(b)), nil
		}
	}

	tag, ok := term.Promote(a.Tag, b.Tag)
	if !ok || (tag != term.TagInteger && tag != term.TagReal) {
		return nil, errors.Errorf("walker: %s expects two numbers, got %q and %q", name, a.Tag, b.Tag)
	}

	if tag == term.TagInteger {
		switch name {
		case "__plus__":
			return term.NewInteger(a.Int + b.Int), nil
		case "__minus__":
			return term.NewInteger(a.Int - b.Int), nil
		case "__times__":
			return term.NewInteger(a.Int * b.Int), nil
		case "__divide__":
			if b.Int == 0 {
				return nil, errors.New("walker: integer division by zero")
			}
			return term.NewInteger(a.Int / b.Int), nil
		}
	}

	av, bv := asReal(a), asReal(b)
	switch name {
	case "__plus__":
		return term.NewReal(av + bv), nil
	case "__minus__":
		return term.NewReal(av - bv), nil
	case "__times__":
		return term.NewReal(av * bv), nil
	case "__divide__":
		if bv == 0 {
			return nil, errors.New("walker: real division by zero")
		}
		return term.NewReal(av / bv), nil
	}
	return nil, errors.Errorf("walker: unreachable arith operator %q", name)
}

// relational implements the four ordering operators. Per handle_builtins,
// these accept only integer/real operands (promoted to real when mixed);
// every other combination, including string/string, is a typed error.
func relational(name string, a, b *term.Term) (*term.Term, error) {
	tag, ok := term.Promote(a.Tag, b.Tag)
	if !ok || (tag != term.TagInteger && tag != term.TagReal) {
		return nil, errors.Errorf("walker: %s expects two numbers, got %q and %q", name, a.Tag, b.Tag)
	}
	av, bv := asReal(a), asReal(b)
	switch name {
	case "__le__":
		return term.NewBoolean(av <= bv), nil
	case "__lt__":
		return term.NewBoolean(av < bv), nil
	case "__ge__":
		return term.NewBoolean(av >= bv), nil
	case "__gt__":
		return term.NewBoolean(av > bv), nil
	}
	return nil, errors.Errorf("walker: unreachable relational operator %q", name)
}

func asReal(t *term.Term) float64 {
	if t.Tag == term.TagInteger {
		return float64(t.Int)
	}
	return t.Real
}
