package walker

import (
	"github.com/pkg/errors"

	"github.com/gitrdm/asteroid/pkg/term"
	"github.com/gitrdm/asteroid/pkg/unify"
)

// callFunctionVal implements handle_call (§4.5): save the caller's symbol-
// table configuration and line info, switch to the callee's captured
// closure, try each clause's pattern against the actual-argument tuple in
// order until one matches, bind its formals, run its body catching a
// Return signal, then restore exactly what was saved — whether the call
// succeeded, returned early, or raised.
func (w *Walker) callFunctionVal(fval *term.Term, args []*term.Term) (*term.Term, error) {
	if w.maxDepth > 0 && w.depth >= w.maxDepth {
		return nil, errors.Errorf("walker: call stack exceeded max depth %d", w.maxDepth)
	}

	argsTuple := term.NewTuple(args...)

	savedConfig := w.Sym.GetConfig()
	savedModule, savedLine := w.lineModule, w.lineNo
	restore := func() {
		w.Sym.SetConfig(savedConfig)
		w.lineModule, w.lineNo = savedModule, savedLine
	}

	w.Sym.SetConfig(fval.Closure)
	w.Sym.PushScope(nil)
	w.depth++
	defer func() { w.depth-- }()

	for _, clause := range fval.Body {
		bindings, err := w.Unify(argsTuple, clause.ClausePattern(), true)
		if err != nil {
			if _, ok := err.(*unify.MatchFailed); ok {
				continue
			}
			w.Sym.PopScope()
			restore()
			return nil, err
		}

		if err := w.BindFormalArgs(bindings); err != nil {
			w.Sym.PopScope()
			restore()
			return nil, err
		}

		result := term.NewNone()
		if err := w.WalkStmts(clause.ClauseStmts()); err != nil {
			if rs, ok := err.(*returnSignal); ok {
				result = rs.value
			} else {
				w.Sym.PopScope()
				restore()
				return nil, err
			}
		}

		w.Sym.PopScope()
		restore()
		return result, nil
	}

	w.Sym.PopScope()
	restore()
	return nil, errors.New("walker: no function clause matched the given arguments")
}
