// Package unify implements the structural pattern matcher described in
// spec §4.2: recursively matching a term against a pattern to produce a
// list of (lval, value) bindings, with a dual subsumption mode used to
// detect redundant function clauses.
//
// The algorithm is a direct, rule-for-rule port of the reference walker's
// `unify` function (original_source/asteroid_walk.py), restructured for
// Go's static typing the way gokando's primitives.go restructures logic
// unification's recursive Python-style `unify` into a typed Term/Var
// walk: recursive structural comparison driving toward either a list of
// bindings or a typed failure, rather than Python's raise/return duality.
package unify

import (
	"fmt"
	"regexp"

	"github.com/gitrdm/asteroid/pkg/symtab"
	"github.com/gitrdm/asteroid/pkg/term"
)

// MatchFailed is the PatternMatchFailed signal (§4.2 "Failure mode"). It is
// an ordinary error value, not a panic: callers that want it as control
// flow (clause dispatch, `is`, `for`, `try`) type-assert for it explicitly.
type MatchFailed struct {
	Reason string
}

func (e *MatchFailed) Error() string { return e.Reason }

func fail(format string, args ...interface{}) error {
	return &MatchFailed{Reason: fmt.Sprintf(format, args...)}
}

// Binding pairs an lval-pattern with the value it captured.
type Binding struct {
	LVal  *term.Term
	Value *term.Term
}

// Env supplies the unifier with the two collaborators it cannot reach on
// its own: the symbol table (for `deref` lookups) and a way to evaluate
// an arbitrary expression (for `cmatch` guards). Both are satisfied by the
// walker; unify never imports walker, breaking what would otherwise be a
// walker<->unify import cycle.
type Env struct {
	SymTab *symtab.SymTab
	// Eval evaluates an expression term to a value term; used only for
	// cmatch guard conditions.
	Eval func(node *term.Term) (*term.Term, error)
	// BindNow installs a single binding into the live scope immediately;
	// used to make a cmatch pattern's captures visible while its guard is
	// evaluated, matching the reference walker's declare_unifiers-before-
	// guard-eval sequencing.
	BindNow func(lval, value *term.Term) error
}

// Unify matches term against pattern. When unifying is true this is
// ordinary pattern matching; when false it evaluates subsumption (is
// pattern at least as general as term, itself also a pattern).
func Unify(env *Env, t, p *term.Term, unifying bool) ([]Binding, error) {
	// Step 1 (subsumption normalization): named-pattern sheds its name when
	// evaluating subsumption.
	if !unifying && t.Tag == term.TagNamedPat {
		t = t.Children[0]
	}

	// Step 2: a string term matched against a string pattern is an
	// anchored regex match. (The reference walker's isinstance(term, str)
	// check only ever fires, at runtime, when the pattern is also a raw
	// string — both sides already share a 'string' tag here — so unlike
	// every other tag this one does NOT fall through to a raw scalar
	// comparison when the pattern's tag differs; see DESIGN.md.)
	if t.Tag == term.TagString && p.Tag == term.TagString {
		return matchRegex(t.Str, p.Str)
	}

	// Step 3: scalar literal equality (integer/real/boolean).
	if t.Tag == term.TagInteger && p.Tag == term.TagInteger {
		if t.Int == p.Int {
			return nil, nil
		}
		return nil, fail("%d is not the same as %d", t.Int, p.Int)
	}
	if t.Tag == term.TagReal && p.Tag == term.TagReal {
		if t.Real == p.Real {
			return nil, nil
		}
		return nil, fail("%v is not the same as %v", t.Real, p.Real)
	}
	if t.Tag == term.TagBoolean && p.Tag == term.TagBoolean {
		if t.Bool == p.Bool {
			return nil, nil
		}
		return nil, fail("%v is not the same as %v", t.Bool, p.Bool)
	}

	// Step 4: host lists — list/tuple shape matching (only when both
	// sides already agree on List vs Tuple; otherwise the pair falls
	// through to the rules below, e.g. string coercion, a variable
	// pattern, or the generic-node tag check).
	if (t.Tag == term.TagList && p.Tag == term.TagList) || (t.Tag == term.TagTuple && p.Tag == term.TagTuple) {
		if len(t.Children) != len(p.Children) {
			return nil, fail("term and pattern lists/tuples are not the same length")
		}
		return unifyChildren(env, t.Children, p.Children, unifying)
	}

	// Step 5: string pattern applied to a non-string term.
	if p.Tag == term.TagString && t.Tag != term.TagString {
		return matchRegex(term.ToDisplayString(t), p.Str)
	}

	// Step 6: conditional pattern.
	if p.Tag == term.TagCmatch {
		return unifyCmatch(env, t, p, unifying)
	}

	// Step 7: typematch.
	if p.Tag == term.TagTypematch {
		return unifyTypematch(t, p, unifying)
	}

	// Step 8: named pattern (unifying-mode path; subsumption already
	// stripped this above).
	if p.Tag == term.TagNamedPat {
		inner, err := Unify(env, t, p.Children[0], unifying)
		if err != nil {
			return nil, err
		}
		if unifying {
			inner = append(inner, Binding{LVal: term.NewID(p.Name), Value: t})
		}
		return inner, nil
	}

	// Step 9: none pattern.
	if p.Tag == term.TagNone {
		if t.Tag != term.TagNone {
			return nil, fail("expected 'none' got '%s'", t.Tag)
		}
		return nil, nil
	}

	// Step 10: disallowed terms/patterns. A disallowed term is still
	// accepted by a plain variable pattern.
	if term.UnifyNotAllowed[t.Tag] && p.Tag != term.TagID && t.Tag != term.TagFunctionVal && t.Tag != term.TagForeign {
		return nil, fail("term of type '%s' not allowed in pattern matching", t.Tag)
	}
	if term.UnifyNotAllowed[p.Tag] {
		return nil, fail("pattern of type '%s' not allowed in pattern matching", p.Tag)
	}

	// Step 11: quote stripping.
	if p.Tag == term.TagQuote {
		return Unify(env, t, p.Children[0], unifying)
	}
	if t.Tag == term.TagQuote && p.Tag != term.TagID && p.Tag != term.TagIndex {
		if unifying {
			return Unify(env, t.Children[0], p, unifying)
		}
		return Unify(env, t, p.Children[0], unifying)
	}

	// Step 12 (constructor pattern on object): object term matched against
	// an apply(id(C), arg) constructor pattern.
	if t.Tag == term.TagObject && p.Tag == term.TagApply {
		return unifyConstructorPattern(env, t, p, unifying)
	}

	// Step 13 (index lval).
	if p.Tag == term.TagIndex {
		return []Binding{{LVal: p, Value: t}}, nil
	}

	// Step 14 (forbid variable in term, unifying mode).
	if t.Tag == term.TagID && unifying {
		return nil, fail("variable '%s' in term not allowed", t.Name)
	}

	// Step 15 (variable pattern).
	if p.Tag == term.TagID {
		if p.Name == "_" {
			return nil, nil
		}
		return []Binding{{LVal: p, Value: t}}, nil
	}

	// Step 16 (head/tail).
	if p.Tag == term.TagHeadTail || p.Tag == term.TagRawHeadTail {
		return unifyHeadTail(env, t, p, unifying)
	}

	// Step 17 (deref).
	if p.Tag == term.TagDeref {
		idTerm := p.Children[0]
		looked, err := env.SymTab.LookupSym(idTerm.Name)
		if err != nil {
			return nil, fail("deref: %v", err)
		}
		resolved, ok := looked.(*term.Term)
		if !ok {
			return nil, fail("deref: %q is not a term binding", idTerm.Name)
		}
		return Unify(env, t, resolved, unifying)
	}

	// Step 18 (apply — builtin-operator-shaped patterns).
	if p.Tag == term.TagApply {
		if t.Tag != term.TagApply {
			return nil, fail("term and pattern disagree on 'apply' node")
		}
		if t.Children[0].Name != p.Children[0].Name {
			return nil, fail("term '%s' does not match pattern '%s'", t.Children[0].Name, p.Children[0].Name)
		}
		return Unify(env, t.Children[1], p.Children[1], unifying)
	}

	// Step 19 (generic node — tags and arity match, recurse elementwise).
	if t.Tag != p.Tag {
		return nil, fail("nodes '%s' and '%s' are not the same", t.Tag, p.Tag)
	}
	if len(t.Children) != len(p.Children) {
		return nil, fail("nodes '%s' and '%s' are not of the same arity", t.Tag, p.Tag)
	}
	return unifyChildren(env, t.Children, p.Children, unifying)
}

func unifyChildren(env *Env, ts, ps []*term.Term, unifying bool) ([]Binding, error) {
	var out []Binding
	for i := range ts {
		bs, err := Unify(env, ts[i], ps[i], unifying)
		if err != nil {
			return nil, err
		}
		out = append(out, bs...)
	}
	return out, nil
}

func matchRegex(s, pattern string) ([]Binding, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fail("invalid regular expression pattern %q: %v", pattern, err)
	}
	if re.MatchString(s) {
		return nil, nil
	}
	return nil, fail("regular expression %s did not match %s", pattern, s)
}

func unifyCmatch(env *Env, t, p *term.Term, unifying bool) ([]Binding, error) {
	if !unifying {
		// Subsumption over conditional patterns cannot evaluate the guard;
		// matching continues against the inner pattern without checking
		// it. No warning is emitted for the skipped guard: the walker's
		// Trace records around each Unify call carry only the outcome.
		return Unify(env, t, p.Children[0], false)
	}

	inner, guard := p.Children[0], p.Children[1]
	bindings, err := Unify(env, t, inner, true)
	if err != nil {
		return nil, err
	}
	for _, b := range bindings {
		if err := env.BindNow(b.LVal, b.Value); err != nil {
			return nil, err
		}
	}
	guardVal, err := env.Eval(guard)
	if err != nil {
		return nil, err
	}
	boolVal, ok := term.ToBoolean(guardVal)
	if !ok || !boolVal.Bool {
		return nil, fail("conditional pattern match failed")
	}
	return bindings, nil
}

var scalarTypeTags = map[string]term.Tag{
	"string": term.TagString, "real": term.TagReal, "integer": term.TagInteger,
	"list": term.TagList, "tuple": term.TagTuple, "boolean": term.TagBoolean, "none": term.TagNone,
}

func unifyTypematch(t, p *term.Term, unifying bool) ([]Binding, error) {
	typeName := p.Name

	if tag, ok := scalarTypeTags[typeName]; ok {
		actual := t.Tag
		if !unifying {
			if t.Tag == term.TagTypematch {
				actual = scalarTypeTags[t.Name]
			} else if typeName == "list" && (t.Tag == term.TagList || t.Tag == term.TagHeadTail) {
				return nil, nil
			}
		}
		if actual == tag {
			return nil, nil
		}
		return nil, fail("expected typematch %s got a term of type %s", typeName, actual)
	}

	if typeName == "function" {
		if t.Tag == term.TagFunctionVal || t.Tag == term.TagMemberFuncVal {
			return nil, nil
		}
		return nil, fail("expected typematch function got a term of type %s", t.Tag)
	}

	if t.Tag == term.TagObject {
		if t.Name == typeName {
			return nil, nil
		}
		return nil, fail("expected typematch %s got an object of type %s", typeName, t.Name)
	}

	return nil, fail("expected typematch %s got a term of type %s", typeName, t.Tag)
}

func unifyConstructorPattern(env *Env, t, p *term.Term, unifying bool) ([]Binding, error) {
	structID := t.Name
	applyID := p.Children[0].Name
	if structID != applyID {
		return nil, fail("expected type '%s' got type '%s'", applyID, structID)
	}
	arg := p.Children[1]
	var patternList []*term.Term
	if arg.Tag == term.TagTuple {
		patternList = arg.Children
	} else {
		patternList = []*term.Term{arg}
	}
	data := term.DataOnly(t.Memory)
	if len(data) != len(patternList) {
		return nil, fail("constructor pattern for '%s' expects %d data members, got %d", structID, len(data), len(patternList))
	}
	return unifyChildren(env, data, patternList, unifying)
}

func unifyHeadTail(env *Env, t, p *term.Term, unifying bool) ([]Binding, error) {
	bothHeadTail := t.Tag == term.TagHeadTail || t.Tag == term.TagRawHeadTail
	if unifying || !bothHeadTail {
		if t.Tag != term.TagList {
			return nil, fail("head-tail operator expected type 'list' got type '%s'", t.Tag)
		}
		if len(t.Children) == 0 {
			return nil, fail("head-tail operator expected a non-empty list")
		}
		head := t.Children[0]
		tail := term.NewList(t.Children[1:]...)
		var out []Binding
		hb, err := Unify(env, head, p.Children[0], unifying)
		if err != nil {
			return nil, err
		}
		out = append(out, hb...)
		tb, err := Unify(env, tail, p.Children[1], unifying)
		if err != nil {
			return nil, err
		}
		return append(out, tb...), nil
	}

	// Subsumption between two head-tail patterns (§4.2 step 16, §9's
	// documented length-2-wildcard-tail special case). HeadTailLength
	// counts head-tail nodes, so the two-element pattern h|t (head plus
	// tail) has length 1 here.
	lengthH := term.HeadTailLength(p)
	lengthL := term.HeadTailLength(t)

	if lengthH == 1 && lengthL != 1 {
		return Unify(env, t.Children[0], p.Children[0], false)
	}
	if lengthH > lengthL {
		return nil, fail("subsumption relationship broken, pattern will not be rendered redundant")
	}
	headB, err := Unify(env, t.Children[0], p.Children[0], false)
	if err != nil {
		return nil, err
	}
	tailB, err := Unify(env, t.Children[1], p.Children[1], false)
	if err != nil {
		return nil, err
	}
	return append(headB, tailB...), nil
}
