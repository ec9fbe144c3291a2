// Package walker implements the tree-walking evaluator described in spec
// §4.4–§4.6: a tag-indexed dispatch table over pkg/term's Term, the Binder
// (§4.3), function dispatch (§4.5), and the built-in operators (§4.6).
//
// # Design Philosophy
//
// The dispatch table generalizes the teacher's goal-combinator dispatch in
// gokando's pkg/minikanren/control_flow.go (Ifa/Ifte/SoftCut choosing a
// control path over a Goal) from "combine goals" to "dispatch on AST tag":
// Walk looks up node.Tag in a map[term.Tag]nodeFunc and calls it, the same
// shape as the reference asteroid_walk.py's dispatch_dict but keyed on Go's
// Tag type instead of a Python string, and returning (value, error) instead
// of raising.
//
// # Non-local control flow
//
// Return/Break/Throw (§5, §9) are modeled as typed error values rather than
// panics, the way the teacher threads cancellation through context.Context
// in Stream/Goal — here the signal is carried as a value instead of through
// a context, since the walker is single-threaded and synchronous.
package walker

import (
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	"github.com/gitrdm/asteroid/pkg/escape"
	"github.com/gitrdm/asteroid/pkg/symtab"
	"github.com/gitrdm/asteroid/pkg/term"
	"github.com/gitrdm/asteroid/pkg/unify"
)

// returnSignal, breakSignal and throwSignal are the three non-local exits a
// statement can take (§5). They are ordinary errors; catching code type-
// asserts for the one it handles and lets anything else propagate.
type returnSignal struct{ value *term.Term }

func (r *returnSignal) Error() string { return "return" }

type breakSignal struct{}

func (b *breakSignal) Error() string { return "break" }

type throwSignal struct{ value *term.Term }

func (t *throwSignal) Error() string { return "throw" }

// Options configures a Walker. New starts from the defaults (a null
// logger, an unlimited call depth, and a rejecting escape hook) before
// applying any Option — following
// the functional-options pattern the teacher uses for RunConfig-style knobs
// in pkg/minikanren/highlevel_api.go.
type Options struct {
	logger      hclog.Logger
	maxDepth    int
	escapeHook  escape.Hook
}

// Option configures a Walker at construction time.
type Option func(*Options)

// WithLogger sets the hclog.Logger the walker and unifier trace through.
func WithLogger(l hclog.Logger) Option {
	return func(o *Options) { o.logger = l }
}

// WithMaxDepth bounds recursive call-stack depth (0 means unlimited).
func WithMaxDepth(n int) Option {
	return func(o *Options) { o.maxDepth = n }
}

// WithEscapeHook installs the host primitive §6's 'escape' expression
// invokes. Without this option escape always fails (escape.Disabled()).
func WithEscapeHook(h escape.Hook) Option {
	return func(o *Options) { o.escapeHook = h }
}

// Walker is the interpreter core: a symbol table plus the handful of
// pieces of ambient state the reference implementation keeps on its global
// State object (§5's "globals threaded explicitly" design note — here as
// Walker fields instead of package globals, so multiple interpreters can
// coexist).
type Walker struct {
	Sym *symtab.SymTab

	ignoreQuote bool
	lineModule  string
	lineNo      int
	depth       int

	log        hclog.Logger
	maxDepth   int
	escapeHook escape.Hook

	stmtHandlers map[term.Tag]func(*Walker, *term.Term) (*term.Term, error)
	exprHandlers map[term.Tag]func(*Walker, *term.Term) (*term.Term, error)
}

// New constructs a Walker with a fresh global symbol table.
func New(opts ...Option) *Walker {
	cfg := &Options{
		logger:     hclog.NewNullLogger(),
		maxDepth:   0,
		escapeHook: escape.Disabled(),
	}
	for _, o := range opts {
		o(cfg)
	}

	w := &Walker{
		Sym:        symtab.New(),
		lineModule: "<input>",
		lineNo:     1,
		log:        cfg.logger,
		maxDepth:   cfg.maxDepth,
		escapeHook: cfg.escapeHook,
	}
	w.stmtHandlers = statementHandlers()
	w.exprHandlers = expressionHandlers()
	return w
}

// unifyEnv builds the unify.Env the unifier needs to call back into this
// walker for cmatch guards and immediate bindings, without pkg/unify ever
// importing pkg/walker (see pkg/unify's package doc).
func (w *Walker) unifyEnv() *unify.Env {
	return &unify.Env{
		SymTab:  w.Sym,
		Eval:    w.Walk,
		BindNow: w.bindNow,
	}
}

// Unify runs the unifier against this walker's live symbol table and
// evaluation callback, logging the outcome at Trace level (PatternMatchFailed
// is routine control flow, never logged above Trace/Debug per §10).
func (w *Walker) Unify(t, p *term.Term, unifying bool) ([]unify.Binding, error) {
	bindings, err := unify.Unify(w.unifyEnv(), t, p, unifying)
	if err != nil {
		w.log.Trace("unify failed", "reason", err.Error())
		return nil, err
	}
	w.log.Trace("unify ok", "bindings", len(bindings))
	return bindings, nil
}

// Walk is the single dispatch entry point every node-evaluating call in this
// package goes through: it looks node.Tag up in the appropriate handler
// table and calls it. Statement handlers return term.NewNone() on success;
// expression handlers return the computed value.
func (w *Walker) Walk(node *term.Term) (*term.Term, error) {
	if node == nil {
		return term.NewNone(), nil
	}
	if h, ok := w.stmtHandlers[node.Tag]; ok {
		return h(w, node)
	}
	if h, ok := w.exprHandlers[node.Tag]; ok {
		return h(w, node)
	}
	return nil, errors.Errorf("walker: no dispatch handler for tag %q", node.Tag)
}

// WalkStmts runs each statement of a stmt-list node in order, stopping (and
// propagating) at the first error or non-local signal.
func (w *Walker) WalkStmts(stmtList *term.Term) error {
	for _, s := range stmtList.Children {
		if _, err := w.Walk(s); err != nil {
			return err
		}
	}
	return nil
}

// bindNow installs a single unifier binding into the live scope immediately;
// used by cmatch (§4.2) so a pattern's captures are visible while its guard
// runs. It goes through Bind, the same path DeclareUnifiers (§4.3) uses for
// ordinary pattern bindings.
func (w *Walker) bindNow(lval, value *term.Term) error {
	return w.Bind(lval, value)
}

// wrapLine wraps err with the walker's current module:line, the way the
// reference's reportError tags errors with state.lineinfo.
func (w *Walker) wrapLine(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "%s:%d", w.lineModule, w.lineNo)
}
