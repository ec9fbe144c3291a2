package walker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/asteroid/pkg/term"
	"github.com/gitrdm/asteroid/pkg/walker"
)

func lookup(t *testing.T, w *walker.Walker, name string) *term.Term {
	t.Helper()
	v, err := w.Sym.LookupSym(name)
	require.NoError(t, err)
	tv, ok := v.(*term.Term)
	require.True(t, ok)
	return tv
}

func TestUnifyStmtListDestructuring(t *testing.T) {
	w := walker.New()
	pattern := term.NewList(term.NewID("x"), term.NewInteger(2), term.NewID("z"))
	value := term.NewList(term.NewInteger(1), term.NewInteger(2), term.NewInteger(3))

	_, err := w.Walk(term.NewUnifyStmt(pattern, value))
	require.NoError(t, err)
	assert.Equal(t, int64(1), lookup(t, w, "x").Int)
	assert.Equal(t, int64(3), lookup(t, w, "z").Int)
}

func TestHeadTailDestructureAndRoundTrip(t *testing.T) {
	w := walker.New()
	value := term.NewList(term.NewInteger(1), term.NewInteger(2), term.NewInteger(3))
	pattern := term.NewHeadTail(term.NewID("h"), term.NewID("t"))

	_, err := w.Walk(term.NewUnifyStmt(pattern, value))
	require.NoError(t, err)
	assert.Equal(t, int64(1), lookup(t, w, "h").Int)

	rebuilt, err := w.Walk(term.NewHeadTail(term.NewID("h"), term.NewID("t")))
	require.NoError(t, err)
	assert.True(t, term.Equal(value, rebuilt), "head-tail construction must round-trip destructured values")
}

func makeFactorial(w *walker.Walker) {
	baseClause := term.Clause(
		term.NewTuple(term.NewInteger(0)),
		term.NewStmtList(term.NewReturn(term.NewInteger(1))),
	)
	n := term.NewID("n")
	recCall := term.NewApply(term.NewID("fact"),
		term.NewTuple(term.NewApply(term.NewID("__minus__"), term.NewTuple(n, term.NewInteger(1)))))
	recBody := term.NewApply(term.NewID("__times__"), term.NewTuple(n, recCall))
	recClause := term.Clause(
		term.NewTuple(term.NewID("n")),
		term.NewStmtList(term.NewReturn(recBody)),
	)
	fval := term.NewFunctionVal([]*term.Term{baseClause, recClause}, w.Sym.GetConfig())
	w.Sym.EnterSym("fact", fval)
}

func TestMultiClauseFunctionDispatch(t *testing.T) {
	w := walker.New()
	makeFactorial(w)

	call := term.NewApply(term.NewID("fact"), term.NewTuple(term.NewInteger(5)))
	result, err := w.Walk(call)
	require.NoError(t, err)
	assert.Equal(t, int64(120), result.Int)
}

func TestClauseOrderingPrefersFirstMatch(t *testing.T) {
	w := walker.New()
	// f(0) -> "zero"; f(n) -> "other" — base clause must be tried first.
	zeroClause := term.Clause(term.NewTuple(term.NewInteger(0)), term.NewStmtList(term.NewReturn(term.NewString("zero"))))
	otherClause := term.Clause(term.NewTuple(term.NewID("n")), term.NewStmtList(term.NewReturn(term.NewString("other"))))
	fval := term.NewFunctionVal([]*term.Term{zeroClause, otherClause}, w.Sym.GetConfig())
	w.Sym.EnterSym("f", fval)

	r0, err := w.Walk(term.NewApply(term.NewID("f"), term.NewTuple(term.NewInteger(0))))
	require.NoError(t, err)
	assert.Equal(t, "zero", r0.Str)

	r1, err := w.Walk(term.NewApply(term.NewID("f"), term.NewTuple(term.NewInteger(7))))
	require.NoError(t, err)
	assert.Equal(t, "other", r1.Str)
}

func TestClosureCaptureSnapshotsLocalScopeAtCreation(t *testing.T) {
	w := walker.New()

	// Build the closure inside a pushed (local) scope, the way a closure
	// nested inside a call frame would capture its enclosing locals.
	w.Sym.PushScope(nil)
	w.Sym.EnterSym("captured", term.NewInteger(1))

	clause := term.Clause(term.NewTuple(), term.NewStmtList(term.NewReturn(term.NewID("captured"))))
	fval := term.NewFunctionVal([]*term.Term{clause}, w.Sym.GetConfig())

	// Mutating the local scope after capture must not affect the closure.
	w.Sym.EnterSym("captured", term.NewInteger(2))
	w.Sym.PopScope()
	w.Sym.EnterSym("closure", fval)

	result, err := w.Walk(term.NewApply(term.NewID("closure"), term.NewTuple()))
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Int, "closures capture local scope at creation time, not a live reference")
}

// TestGlobalRecursionSeesOwnBinding exercises the one frame that is
// deliberately exempt from the snapshot-isolation invariant above: the
// global scope. A function captured at the top level, before its own name
// is bound, must still be able to call itself by that name — the global
// frame behaves as a single evolving namespace shared by every snapshot,
// the same way a Python function closes over its module's live globals
// rather than a copy frozen at def time.
func TestGlobalRecursionSeesOwnBinding(t *testing.T) {
	w := walker.New()
	makeFactorial(w)

	result, err := w.Walk(term.NewApply(term.NewID("fact"), term.NewTuple(term.NewInteger(3))))
	require.NoError(t, err)
	assert.Equal(t, int64(6), result.Int)
}

func TestTryCatchBindsReifiedPatternMatchFailed(t *testing.T) {
	w := walker.New()
	msgID := term.NewID("msg")
	catchPattern := term.NewTuple(term.NewString("PatternMatchFailed"), msgID)
	catchBody := term.NewStmtList(term.NewUnifyStmt(term.NewID("caught"), term.NewBoolean(true)))

	tryStmt := term.NewTry(
		term.NewStmtList(term.NewUnifyStmt(term.NewInteger(1), term.NewInteger(2))),
		term.NewCatchClause(catchPattern, catchBody),
	)

	_, err := w.Walk(tryStmt)
	require.NoError(t, err)
	assert.True(t, lookup(t, w, "caught").Bool)
}

func TestTryPropagatesUncaughtThrow(t *testing.T) {
	w := walker.New()
	tryStmt := term.NewTry(
		term.NewStmtList(term.NewThrow(term.NewString("boom"))),
		term.NewCatchClause(term.NewInteger(999), term.NewStmtList()),
	)
	_, err := w.Walk(tryStmt)
	assert.Error(t, err, "a catch list with no matching pattern must re-raise")
}

func TestForLoopUnifyAsFilterSkipsMismatches(t *testing.T) {
	w := walker.New()
	var collected []int64

	items := term.NewList(
		term.NewTuple(term.NewInteger(1), term.NewInteger(2)),
		term.NewInteger(42), // not a tuple; must be silently skipped
		term.NewTuple(term.NewInteger(3), term.NewInteger(4)),
	)
	w.Sym.EnterSym("items", items)

	pattern := term.NewTuple(term.NewID("a"), term.NewID("b"))
	body := term.NewStmtList(
		term.NewUnifyStmt(term.NewID("last_a"), term.NewID("a")),
	)
	forStmt := term.NewFor(pattern, term.NewID("items"), body)

	_, err := w.Walk(forStmt)
	require.NoError(t, err)
	_ = collected
	assert.Equal(t, int64(3), lookup(t, w, "last_a").Int, "the filter must have reached the second matching tuple")
}

func TestStructDefaultConstructorArityMismatch(t *testing.T) {
	w := walker.New()
	structDef := term.NewStructDef("Point", term.NewDataMember("x"), term.NewDataMember("y"))
	_, err := w.Walk(structDef)
	require.NoError(t, err)

	call := term.NewApply(term.NewID("Point"), term.NewTuple(term.NewInteger(1)))
	_, err = w.Walk(call)
	assert.Error(t, err, "constructing with too few arguments must fail")
}

func TestStructBareConstructorLeavesDataSlotsNone(t *testing.T) {
	w := walker.New()
	structDef := term.NewStructDef("Point", term.NewDataMember("x"), term.NewDataMember("y"))
	_, err := w.Walk(structDef)
	require.NoError(t, err)

	call := term.NewApply(term.NewID("Point"), term.NewNone())
	obj, err := w.Walk(call)
	require.NoError(t, err, "a bare no-argument constructor call must succeed, not be treated as arity-zero")
	assert.Equal(t, term.TagObject, obj.Tag)
	for _, slot := range obj.Memory {
		assert.Equal(t, term.TagNone, slot.Tag)
	}
}

func TestStructInstantiationAndMemberAccess(t *testing.T) {
	w := walker.New()
	structDef := term.NewStructDef("Point", term.NewDataMember("x"), term.NewDataMember("y"))
	_, err := w.Walk(structDef)
	require.NoError(t, err)

	call := term.NewApply(term.NewID("Point"), term.NewTuple(term.NewInteger(3), term.NewInteger(4)))
	obj, err := w.Walk(call)
	require.NoError(t, err)
	assert.Equal(t, term.TagObject, obj.Tag)

	w.Sym.EnterSym("p", obj)
	xVal, err := w.Walk(term.NewIndex(term.NewID("p"), term.NewString("x")))
	require.NoError(t, err)
	assert.Equal(t, int64(3), xVal.Int)
}

func TestIsExpressionReturnsFalseOnPatternMatchFailed(t *testing.T) {
	w := walker.New()
	result, err := w.Walk(term.NewIs(term.NewInteger(5), term.NewInteger(6)))
	require.NoError(t, err)
	assert.False(t, result.Bool)

	result, err = w.Walk(term.NewIs(term.NewInteger(5), term.NewID("x")))
	require.NoError(t, err)
	assert.True(t, result.Bool)
	assert.Equal(t, int64(5), lookup(t, w, "x").Int)
}

func TestToListInclusiveBoundsAndDirection(t *testing.T) {
	w := walker.New()
	ascending, err := w.Walk(term.NewToList(term.NewInteger(1), term.NewInteger(5), term.NewInteger(2)))
	require.NoError(t, err)
	require.Len(t, ascending.Children, 3)
	assert.Equal(t, int64(1), ascending.Children[0].Int)
	assert.Equal(t, int64(5), ascending.Children[2].Int)

	descending, err := w.Walk(term.NewToList(term.NewInteger(5), term.NewInteger(1), term.NewInteger(-2)))
	require.NoError(t, err)
	require.Len(t, descending.Children, 3)
	assert.Equal(t, int64(5), descending.Children[0].Int)
	assert.Equal(t, int64(1), descending.Children[2].Int)

	_, err = w.Walk(term.NewToList(term.NewInteger(1), term.NewInteger(5), term.NewInteger(0)))
	assert.Error(t, err, "a zero step must be rejected")
}

func TestWhileLoopHonorsBreak(t *testing.T) {
	w := walker.New()
	w.Sym.EnterSym("i", term.NewInteger(0))

	cond := term.NewApply(term.NewID("__lt__"), term.NewTuple(term.NewID("i"), term.NewInteger(100)))
	body := term.NewStmtList(
		term.NewUnifyStmt(term.NewID("i"),
			term.NewApply(term.NewID("__plus__"), term.NewTuple(term.NewID("i"), term.NewInteger(1)))),
		term.NewIf(term.NewIfClause(
			term.NewApply(term.NewID("__eq__"), term.NewTuple(term.NewID("i"), term.NewInteger(3))),
			term.NewStmtList(term.NewBreak()),
		)),
	)

	_, err := w.Walk(term.NewWhile(cond, body))
	require.NoError(t, err)
	assert.Equal(t, int64(3), lookup(t, w, "i").Int)
}

func TestPrologueListMemberFunctionAppend(t *testing.T) {
	w := walker.New()
	w.Sym.EnterSym("xs", term.NewList(term.NewInteger(1), term.NewInteger(2)))

	result, err := w.Walk(term.NewIndex(term.NewID("xs"),
		term.NewApply(term.NewID("append"), term.NewTuple(term.NewInteger(3)))))
	require.NoError(t, err)
	require.Len(t, result.Children, 3)
	assert.Equal(t, int64(3), result.Children[2].Int)
}
