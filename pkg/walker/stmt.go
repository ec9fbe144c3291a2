package walker

import (
	"github.com/pkg/errors"

	"github.com/gitrdm/asteroid/pkg/term"
	"github.com/gitrdm/asteroid/pkg/unify"
)

// statementHandlers builds the statement half of the dispatch table (§4.4).
func statementHandlers() map[term.Tag]func(*Walker, *term.Term) (*term.Term, error) {
	return map[term.Tag]func(*Walker, *term.Term) (*term.Term, error){
		term.TagLineinfo:  walkLineinfo,
		term.TagNoop:      walkNoop,
		term.TagAssert:    walkAssert,
		term.TagUnify:     walkUnifyStmt,
		term.TagWhile:     walkWhile,
		term.TagLoop:      walkLoop,
		term.TagRepeat:    walkRepeat,
		term.TagFor:       walkFor,
		term.TagGlobal:    walkGlobal,
		term.TagReturn:    walkReturn,
		term.TagBreak:     walkBreak,
		term.TagIf:        walkIfStmt,
		term.TagThrow:     walkThrow,
		term.TagTry:       walkTry,
		term.TagStructDef: walkStructDef,
	}
}

func walkLineinfo(w *Walker, n *term.Term) (*term.Term, error) {
	w.lineModule, w.lineNo = n.Module, n.Line
	return term.NewNone(), nil
}

func walkNoop(w *Walker, n *term.Term) (*term.Term, error) { return term.NewNone(), nil }

func walkAssert(w *Walker, n *term.Term) (*term.Term, error) {
	v, err := w.Walk(n.Children[0])
	if err != nil {
		return nil, w.wrapLine(err)
	}
	b, ok := term.ToBoolean(v)
	if !ok || !b.Bool {
		return nil, w.wrapLine(errors.New("walker: assertion failed"))
	}
	return term.NewNone(), nil
}

// walkUnifyStmt implements unify_stmt: evaluate the right-hand side, unify
// it against the left-hand pattern, then declare every resulting binding.
func walkUnifyStmt(w *Walker, n *term.Term) (*term.Term, error) {
	pattern, valueExpr := n.Children[0], n.Children[1]
	value, err := w.Walk(valueExpr)
	if err != nil {
		return nil, w.wrapLine(err)
	}
	bindings, err := w.Unify(value, pattern, true)
	if err != nil {
		return nil, w.wrapLine(err)
	}
	if err := w.DeclareUnifiers(bindings); err != nil {
		return nil, w.wrapLine(err)
	}
	return term.NewNone(), nil
}

func walkWhile(w *Walker, n *term.Term) (*term.Term, error) {
	cond, body := n.Children[0], n.Children[1]
	for {
		cv, err := w.Walk(cond)
		if err != nil {
			return nil, err
		}
		b, ok := term.ToBoolean(cv)
		if !ok {
			return nil, errors.Errorf("walker: while condition must be boolean, got %q", cv.Tag)
		}
		if !b.Bool {
			return term.NewNone(), nil
		}
		if err := w.WalkStmts(body); err != nil {
			if _, ok := err.(*breakSignal); ok {
				return term.NewNone(), nil
			}
			return nil, err
		}
	}
}

func walkLoop(w *Walker, n *term.Term) (*term.Term, error) {
	body := n.Children[0]
	for {
		if err := w.WalkStmts(body); err != nil {
			if _, ok := err.(*breakSignal); ok {
				return term.NewNone(), nil
			}
			return nil, err
		}
	}
}

func walkRepeat(w *Walker, n *term.Term) (*term.Term, error) {
	body, cond := n.Children[0], n.Children[1]
	for {
		if err := w.WalkStmts(body); err != nil {
			if _, ok := err.(*breakSignal); ok {
				return term.NewNone(), nil
			}
			return nil, err
		}
		cv, err := w.Walk(cond)
		if err != nil {
			return nil, err
		}
		b, ok := term.ToBoolean(cv)
		if !ok {
			return nil, errors.Errorf("walker: repeat condition must be boolean, got %q", cv.Tag)
		}
		if b.Bool {
			return term.NewNone(), nil
		}
	}
}

// walkFor implements for_stmt (§12): a string iterable desugars to its
// one-character-string elements; the loop pattern filters elements by
// unification, silently skipping any that fail to match rather than
// raising, and the body runs in the enclosing scope (no new frame per
// iteration).
func walkFor(w *Walker, n *term.Term) (*term.Term, error) {
	pattern, iterableExpr, body := n.Children[0], n.Children[1], n.Children[2]
	iterable, err := w.Walk(iterableExpr)
	if err != nil {
		return nil, err
	}

	var elems []*term.Term
	switch iterable.Tag {
	case term.TagList, term.TagTuple:
		elems = iterable.Children
	case term.TagString:
		for _, r := range iterable.Str {
			elems = append(elems, term.NewString(string(r)))
		}
	default:
		return nil, errors.Errorf("walker: 'for' expects a list, tuple, or string, got %q", iterable.Tag)
	}

	for _, elem := range elems {
		bindings, err := w.Unify(elem, pattern, true)
		if err != nil {
			if isMatchFailed(err) {
				continue
			}
			return nil, err
		}
		if err := w.DeclareUnifiers(bindings); err != nil {
			return nil, err
		}
		if err := w.WalkStmts(body); err != nil {
			if _, ok := err.(*breakSignal); ok {
				return term.NewNone(), nil
			}
			return nil, err
		}
	}
	return term.NewNone(), nil
}

func walkGlobal(w *Walker, n *term.Term) (*term.Term, error) {
	for _, id := range n.Children {
		w.Sym.EnterGlobal(id.Name)
	}
	return term.NewNone(), nil
}

func walkReturn(w *Walker, n *term.Term) (*term.Term, error) {
	v, err := w.Walk(n.Children[0])
	if err != nil {
		return nil, err
	}
	return nil, &returnSignal{value: v}
}

func walkBreak(w *Walker, n *term.Term) (*term.Term, error) {
	return nil, &breakSignal{}
}

// walkIfStmt evaluates each if-clause guard in order, running the first
// whose guard is true and stopping there (if_stmt).
func walkIfStmt(w *Walker, n *term.Term) (*term.Term, error) {
	for _, clause := range n.Children {
		guard, err := w.Walk(clause.IfClauseGuard())
		if err != nil {
			return nil, err
		}
		b, ok := term.ToBoolean(guard)
		if !ok {
			return nil, errors.Errorf("walker: if condition must be boolean, got %q", guard.Tag)
		}
		if b.Bool {
			if err := w.WalkStmts(clause.IfClauseBody()); err != nil {
				return nil, err
			}
			return term.NewNone(), nil
		}
	}
	return term.NewNone(), nil
}

func walkThrow(w *Walker, n *term.Term) (*term.Term, error) {
	v, err := w.Walk(n.Children[0])
	if err != nil {
		return nil, err
	}
	return nil, &throwSignal{value: v}
}

// walkTry implements try_stmt (§12): run the body; a caught PatternMatchFailed
// or generic walker error is reified as the reference's 2-tuple shape before
// being matched against each catch pattern in order; a caught Throw carries
// its thrown value directly; Return always propagates past try unchanged.
func walkTry(w *Walker, n *term.Term) (*term.Term, error) {
	bodyErr := w.WalkStmts(n.TryBody())
	if bodyErr == nil {
		return term.NewNone(), nil
	}

	var caught *term.Term
	switch e := bodyErr.(type) {
	case *returnSignal:
		return nil, bodyErr
	case *breakSignal:
		return nil, bodyErr
	case *throwSignal:
		caught = e.value
	default:
		// walkAssert/walkUnifyStmt attach line-info context via
		// errors.Wrapf, so a PatternMatchFailed raised inside the try body
		// must be unwrapped before the type check (§12's reification rule).
		if mf, ok := errors.Cause(bodyErr).(*unify.MatchFailed); ok {
			caught = reifyException("PatternMatchFailed", mf.Error())
		} else {
			caught = reifyException("Exception", bodyErr.Error())
		}
	}

	for _, clause := range n.TryCatches() {
		bindings, err := w.Unify(caught, clause.CatchPattern(), true)
		if err != nil {
			if isMatchFailed(err) {
				continue
			}
			return nil, err
		}
		if err := w.DeclareUnifiers(bindings); err != nil {
			return nil, err
		}
		if err := w.WalkStmts(clause.CatchBody()); err != nil {
			return nil, err
		}
		return term.NewNone(), nil
	}
	return nil, bodyErr
}

func reifyException(kind, message string) *term.Term {
	return term.NewTuple(term.NewString(kind), term.NewString(message))
}
