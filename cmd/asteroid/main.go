// Command asteroid is a demo/driver binary in the shape of the teacher's
// cmd/example/main.go: it builds a handful of small ASTs by hand (no parser
// is in scope — see spec.md §1's Non-goals) and runs them through the
// walker, printing results.
package main

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/gitrdm/asteroid/pkg/term"
	"github.com/gitrdm/asteroid/pkg/walker"
)

func main() {
	fmt.Println("=== Asteroid Core Examples ===")
	fmt.Println()

	listDestructuring()
	recursiveFactorial()
	tryCatchBinding()
}

// listDestructuring demonstrates let [x,2,z] = [1,2,3].
func listDestructuring() {
	fmt.Println("1. List destructuring:")

	w := walker.New(walker.WithLogger(hclog.NewNullLogger()))

	pattern := term.NewList(term.NewID("x"), term.NewInteger(2), term.NewID("z"))
	value := term.NewList(term.NewInteger(1), term.NewInteger(2), term.NewInteger(3))

	stmt := term.NewUnifyStmt(pattern, value)
	if _, err := w.Walk(stmt); err != nil {
		fmt.Println("   error:", err)
		return
	}

	x, _ := w.Sym.LookupSym("x")
	z, _ := w.Sym.LookupSym("z")
	fmt.Printf("   x = %v, z = %v\n\n", x.(*term.Term), z.(*term.Term))
}

// recursiveFactorial demonstrates multi-clause function dispatch: the base
// clause matches n=0, the recursive clause matches everything else.
func recursiveFactorial() {
	fmt.Println("2. Recursive factorial via multi-clause dispatch:")

	w := walker.New(walker.WithLogger(hclog.NewNullLogger()))

	baseClause := term.Clause(
		term.NewTuple(term.NewInteger(0)),
		term.NewStmtList(term.NewReturn(term.NewInteger(1))),
	)
	// n * fact(n - 1)
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

	call := term.NewApply(term.NewID("fact"), term.NewTuple(term.NewInteger(5)))
	result, err := w.Walk(call)
	if err != nil {
		fmt.Println("   error:", err)
		return
	}
	fmt.Printf("   fact(5) = %v\n\n", result)
}

// tryCatchBinding demonstrates catching a reified PatternMatchFailed.
func tryCatchBinding() {
	fmt.Println("3. try/catch binding a reified PatternMatchFailed:")

	w := walker.New(walker.WithLogger(hclog.NewNullLogger()))

	// unify 1 = 2 always fails; catch ('tuple', [('string','PatternMatchFailed'), msg])
	msgID := term.NewID("msg")
	catchPattern := term.NewTuple(term.NewString("PatternMatchFailed"), msgID)
	catchBody := term.NewStmtList(term.NewUnifyStmt(term.NewID("caught"), msgID))

	tryStmt := term.NewTry(
		term.NewStmtList(term.NewUnifyStmt(term.NewInteger(1), term.NewInteger(2))),
		term.NewCatchClause(catchPattern, catchBody),
	)

	if _, err := w.Walk(tryStmt); err != nil {
		fmt.Println("   error:", err)
		return
	}
	caught, _ := w.Sym.LookupSym("caught")
	fmt.Printf("   caught = %v\n", caught.(*term.Term))
}
