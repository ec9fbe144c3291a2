package walker

import (
	"github.com/pkg/errors"

	"github.com/gitrdm/asteroid/pkg/prologue"
	"github.com/gitrdm/asteroid/pkg/term"
	"github.com/gitrdm/asteroid/pkg/unify"
)

// expressionHandlers builds the expression half of the dispatch table
// (§4.4): one entry per expression tag, following the reference walker's
// dispatch_dict but keyed on term.Tag instead of a Python string.
func expressionHandlers() map[term.Tag]func(*Walker, *term.Term) (*term.Term, error) {
	return map[term.Tag]func(*Walker, *term.Term) (*term.Term, error){
		term.TagInteger:       passthrough,
		term.TagReal:          passthrough,
		term.TagString:        walkString,
		term.TagBoolean:       passthrough,
		term.TagNone:          passthrough,
		term.TagNil:           passthrough,
		term.TagFunctionVal:   passthrough,
		term.TagMemberFuncVal: passthrough,
		term.TagStruct:        passthrough,
		term.TagObject:        passthrough,
		term.TagForeign:       passthrough,

		term.TagID:          walkID,
		term.TagApply:       walkApply,
		term.TagIndex:       func(w *Walker, n *term.Term) (*term.Term, error) { return w.readAtIndex(n) },
		term.TagList:        walkList,
		term.TagTuple:       walkTuple,
		term.TagHeadTail:    walkHeadTail,
		term.TagRawHeadTail: walkHeadTail,
		term.TagToList:      walkToList,
		term.TagRawToList:   walkToList,
		term.TagQuote:       walkQuote,
		term.TagDeref:       walkDeref,
		term.TagNamedPat:    walkNamedPattern,
		term.TagTypematch:   walkTypematchExpr,
		term.TagCmatch:      walkCmatchExpr,
		term.TagIs:          walkIs,
		term.TagIn:          walkIn,
		term.TagIfExp:       walkIfExp,
		term.TagEscape:      walkEscape,
		term.TagSeq:         walkSeq,
		term.TagEval:        walkEval,
		term.TagFunctionExp: walkFunctionExp,
	}
}

func passthrough(w *Walker, n *term.Term) (*term.Term, error) { return n, nil }

func walkString(w *Walker, n *term.Term) (*term.Term, error) { return n, nil }

// walkID resolves an identifier through the live symbol table. Asteroid's
// walker does not distinguish "evaluate an id" from "look up a variable":
// both land here.
func walkID(w *Walker, n *term.Term) (*term.Term, error) {
	v, err := w.Sym.LookupSym(n.Name)
	if err != nil {
		return nil, errors.Wrapf(err, "walker")
	}
	t, ok := v.(*term.Term)
	if !ok {
		return nil, errors.Errorf("walker: %q is not a term binding", n.Name)
	}
	return t, nil
}

// walkApply implements apply_exp (§4.5, §12): a built-in operator callee
// short-circuits; otherwise one of three dispatch cases applies:
// member-function-val, function-val, or struct (object instantiation).
func walkApply(w *Walker, n *term.Term) (*term.Term, error) {
	calleeNode, argNode := n.Children[0], n.Children[1]

	if calleeNode.Tag == term.TagID && builtinNames[calleeNode.Name] {
		argVal, err := w.Walk(argNode)
		if err != nil {
			return nil, err
		}
		result, _, err := w.applyBuiltin(calleeNode.Name, flattenArgs(argVal))
		return result, err
	}

	calleeVal, err := w.Walk(calleeNode)
	if err != nil {
		return nil, err
	}
	argVal, err := w.Walk(argNode)
	if err != nil {
		return nil, err
	}
	args := flattenArgs(argVal)

	switch calleeVal.Tag {
	case term.TagMemberFuncVal:
		if calleeVal.FuncVal.Tag == term.TagForeign {
			fn, ok := calleeVal.FuncVal.Foreign.(prologue.NativeFunc)
			if !ok {
				return nil, errors.New("walker: member-function-val carries an unrecognized native payload")
			}
			return fn(calleeVal.Receiver, args)
		}
		return w.callFunctionVal(calleeVal.FuncVal, append([]*term.Term{calleeVal.Receiver}, args...))
	case term.TagFunctionVal:
		return w.callFunctionVal(calleeVal, args)
	case term.TagStruct:
		return w.instantiate(calleeVal, argVal, args)
	default:
		return nil, errors.Errorf("walker: term of type %q is not callable", calleeVal.Tag)
	}
}

// instantiate implements object construction (§12): a struct with an
// explicit '__init__' method delegates argument handling to it; otherwise,
// if a non-'none' argument was supplied, the default constructor assigns it
// positionally into the struct's data-only slots (arity mismatch fails); a
// bare no-argument call ('none' supplied) leaves the data slots at their
// none-initialized defaults, per the original's 'elif arg_val[0] != "none"'
// guard (spec.md §4.4's apply-expr struct case).
func (w *Walker) instantiate(structVal *term.Term, argVal *term.Term, args []*term.Term) (*term.Term, error) {
	obj := term.NewObject(structVal.Name, structVal.MemberNames, structVal.Memory)

	for i, n := range structVal.MemberNames {
		if n == "__init__" {
			init := structVal.Memory[i]
			if _, err := w.callFunctionVal(init, append([]*term.Term{obj}, args...)); err != nil {
				return nil, err
			}
			return obj, nil
		}
	}

	if argVal.Tag == term.TagNone {
		return obj, nil
	}

	dataIx := term.DataIxList(structVal.Memory)
	if len(args) != len(dataIx) {
		return nil, errors.Errorf("walker: struct %q default constructor expects %d arguments, got %d", structVal.Name, len(dataIx), len(args))
	}
	for i, ix := range dataIx {
		obj.Memory[ix] = args[i]
	}
	return obj, nil
}

func walkList(w *Walker, n *term.Term) (*term.Term, error) {
	out := make([]*term.Term, len(n.Children))
	for i, c := range n.Children {
		v, err := w.Walk(c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return term.NewList(out...), nil
}

func walkTuple(w *Walker, n *term.Term) (*term.Term, error) {
	out := make([]*term.Term, len(n.Children))
	for i, c := range n.Children {
		v, err := w.Walk(c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return term.NewTuple(out...), nil
}

// walkHeadTail builds a value-level list from an evaluated head and tail:
// the tail must itself evaluate to a list (§4.4's head-tail value rule).
func walkHeadTail(w *Walker, n *term.Term) (*term.Term, error) {
	head, err := w.Walk(n.Children[0])
	if err != nil {
		return nil, err
	}
	tail, err := w.Walk(n.Children[1])
	if err != nil {
		return nil, err
	}
	if tail.Tag != term.TagList {
		return nil, errors.Errorf("walker: head-tail tail must evaluate to a list, got %q", tail.Tag)
	}
	return term.NewList(append([]*term.Term{head}, tail.Children...)...), nil
}

// walkToList implements to-list/raw-to-list (§4.4): integer bounds only,
// inclusive on both ends, direction determined by the sign of step, a zero
// step is a walker error.
func walkToList(w *Walker, n *term.Term) (*term.Term, error) {
	startV, err := w.Walk(n.Children[0])
	if err != nil {
		return nil, err
	}
	stopV, err := w.Walk(n.Children[1])
	if err != nil {
		return nil, err
	}
	stepV, err := w.Walk(n.Children[2])
	if err != nil {
		return nil, err
	}
	if startV.Tag != term.TagInteger || stopV.Tag != term.TagInteger || stepV.Tag != term.TagInteger {
		return nil, errors.New("walker: to-list bounds and step must be integers")
	}
	if stepV.Int == 0 {
		return nil, errors.New("walker: to-list step must not be zero")
	}
	var out []*term.Term
	if stepV.Int > 0 {
		for i := startV.Int; i <= stopV.Int; i += stepV.Int {
			out = append(out, term.NewInteger(i))
		}
	} else {
		for i := startV.Int; i >= stopV.Int; i += stepV.Int {
			out = append(out, term.NewInteger(i))
		}
	}
	return term.NewList(out...), nil
}

// walkQuote implements quote's expression-position behavior: transparent
// while evaluating a quoted expression (ignore_quote is set), otherwise the
// node is returned unevaluated as data.
func walkQuote(w *Walker, n *term.Term) (*term.Term, error) {
	if w.ignoreQuote {
		return w.Walk(n.Children[0])
	}
	return n, nil
}

// walkDeref implements deref_exp: a double walk, first resolving the
// identifier to whatever it names, then walking that result as well
// (deref's entire purpose is to force one extra level of evaluation).
func walkDeref(w *Walker, n *term.Term) (*term.Term, error) {
	first, err := w.Walk(n.Children[0])
	if err != nil {
		return nil, err
	}
	return w.Walk(first)
}

// walkNamedPattern in expression position just evaluates the inner term
// and discards the name, matching the reference's named_pattern_exp.
func walkNamedPattern(w *Walker, n *term.Term) (*term.Term, error) {
	return w.Walk(n.Children[0])
}

// walkTypematchExpr: typematch may never appear in expression position
// (§4.4); this mirrors the reference's hard error in typematch_exp.
func walkTypematchExpr(w *Walker, n *term.Term) (*term.Term, error) {
	return nil, errors.New("walker: 'typematch' cannot appear in expression position")
}

// walkCmatchExpr: cmatch in expression position walks the pattern as if it
// were an ordinary expression, ignoring the guard (cmatch_exp).
func walkCmatchExpr(w *Walker, n *term.Term) (*term.Term, error) {
	return w.Walk(n.Children[0])
}

// walkIs implements is_exp: unify term against pattern; PatternMatchFailed
// yields false, success declares the bindings and yields true.
func walkIs(w *Walker, n *term.Term) (*term.Term, error) {
	t, err := w.Walk(n.Children[0])
	if err != nil {
		return nil, err
	}
	bindings, err := w.Unify(t, n.Children[1], true)
	if err != nil {
		if isMatchFailed(err) {
			return term.NewBoolean(false), nil
		}
		return nil, err
	}
	if err := w.DeclareUnifiers(bindings); err != nil {
		return nil, err
	}
	return term.NewBoolean(true), nil
}

// walkIn implements in_exp: true iff elem unifies against some element of
// list (a membership test built on the same PatternMatchFailed-as-false
// convention as 'is').
func walkIn(w *Walker, n *term.Term) (*term.Term, error) {
	elem, err := w.Walk(n.Children[0])
	if err != nil {
		return nil, err
	}
	list, err := w.Walk(n.Children[1])
	if err != nil {
		return nil, err
	}
	if list.Tag != term.TagList && list.Tag != term.TagTuple {
		return nil, errors.Errorf("walker: 'in' expects a list or tuple, got %q", list.Tag)
	}
	for _, candidate := range list.Children {
		bindings, err := w.Unify(elem, candidate, true)
		if err != nil {
			if isMatchFailed(err) {
				continue
			}
			return nil, err
		}
		if err := w.DeclareUnifiers(bindings); err != nil {
			return nil, err
		}
		return term.NewBoolean(true), nil
	}
	return term.NewBoolean(false), nil
}

// walkIfExp implements the ternary if-expression: cond must evaluate to a
// boolean (no truthy coercion, per map2boolean).
func walkIfExp(w *Walker, n *term.Term) (*term.Term, error) {
	cond, err := w.Walk(n.Children[0])
	if err != nil {
		return nil, err
	}
	b, ok := term.ToBoolean(cond)
	if !ok {
		return nil, errors.Errorf("walker: if-expression condition must be boolean, got %q", cond.Tag)
	}
	if b.Bool {
		return w.Walk(n.Children[1])
	}
	return w.Walk(n.Children[2])
}

// walkEscape invokes the host escape hook (§6) with the node's raw payload.
func walkEscape(w *Walker, n *term.Term) (*term.Term, error) {
	return w.escapeHook.Escape(n.Str)
}

func walkSeq(w *Walker, n *term.Term) (*term.Term, error) {
	if _, err := w.Walk(n.Children[0]); err != nil {
		return nil, err
	}
	return w.Walk(n.Children[1])
}

// walkEval implements eval_exp: walk the argument to expand it, then
// re-walk the result with ignore_quote set so any quoted sub-expressions
// it contains evaluate too, restoring the flag afterward regardless of
// outcome.
func walkEval(w *Walker, n *term.Term) (*term.Term, error) {
	expanded, err := w.Walk(n.Children[0])
	if err != nil {
		return nil, err
	}
	saved := w.ignoreQuote
	w.ignoreQuote = true
	defer func() { w.ignoreQuote = saved }()
	return w.Walk(expanded)
}

// walkFunctionExp captures the live symbol-table configuration into a
// function-val, the closure-capture-at-creation-time design note (§9).
func walkFunctionExp(w *Walker, n *term.Term) (*term.Term, error) {
	return term.NewFunctionVal(n.Body, w.Sym.GetConfig()), nil
}

// isMatchFailed unwraps err (walkAssert/walkUnifyStmt wrap unify failures
// with line-info context via errors.Wrapf) before checking for a
// PatternMatchFailed signal, so wrapping never hides it from the
// catch-as-control-flow call sites ('is', 'in', 'for', 'try').
func isMatchFailed(err error) bool {
	_, ok := errors.Cause(err).(*unify.MatchFailed)
	return ok
}
