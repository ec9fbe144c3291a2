package unify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/asteroid/pkg/symtab"
	"github.com/gitrdm/asteroid/pkg/term"
	"github.com/gitrdm/asteroid/pkg/unify"
)

func newEnv() *unify.Env {
	return &unify.Env{SymTab: symtab.New()}
}

func TestUnifyScalarLiteralEquality(t *testing.T) {
	_, err := unify.Unify(newEnv(), term.NewInteger(3), term.NewInteger(3), true)
	require.NoError(t, err)

	_, err = unify.Unify(newEnv(), term.NewInteger(3), term.NewInteger(4), true)
	require.Error(t, err)
	assert.IsType(t, &unify.MatchFailed{}, err)
}

func TestUnifyListDestructuring(t *testing.T) {
	pattern := term.NewList(term.NewID("x"), term.NewInteger(2), term.NewID("z"))
	value := term.NewList(term.NewInteger(1), term.NewInteger(2), term.NewInteger(3))

	bindings, err := unify.Unify(newEnv(), value, pattern, true)
	require.NoError(t, err)
	require.Len(t, bindings, 2)
	assert.Equal(t, "x", bindings[0].LVal.Name)
	assert.Equal(t, int64(1), bindings[0].Value.Int)
	assert.Equal(t, "z", bindings[1].LVal.Name)
	assert.Equal(t, int64(3), bindings[1].Value.Int)
}

func TestUnifyListLengthMismatchFails(t *testing.T) {
	pattern := term.NewList(term.NewID("x"), term.NewID("y"))
	value := term.NewList(term.NewInteger(1))
	_, err := unify.Unify(newEnv(), value, pattern, true)
	require.Error(t, err)
}

func TestUnifyHeadTailDestructure(t *testing.T) {
	pattern := term.NewHeadTail(term.NewID("h"), term.NewID("t"))
	value := term.NewList(term.NewInteger(1), term.NewInteger(2), term.NewInteger(3))

	bindings, err := unify.Unify(newEnv(), value, pattern, true)
	require.NoError(t, err)
	require.Len(t, bindings, 2)
	assert.Equal(t, int64(1), bindings[0].Value.Int)
	assert.Equal(t, term.TagList, bindings[1].Value.Tag)
	assert.Len(t, bindings[1].Value.Children, 2)
}

func TestUnifyHeadTailEmptyListFails(t *testing.T) {
	pattern := term.NewHeadTail(term.NewID("h"), term.NewID("t"))
	_, err := unify.Unify(newEnv(), term.NewList(), pattern, true)
	require.Error(t, err)
}

func TestUnifyWildcardProducesNoBinding(t *testing.T) {
	bindings, err := unify.Unify(newEnv(), term.NewInteger(7), term.NewID("_"), true)
	require.NoError(t, err)
	assert.Len(t, bindings, 0)
}

func TestUnifyVariableInTermNotAllowed(t *testing.T) {
	_, err := unify.Unify(newEnv(), term.NewID("x"), term.NewInteger(1), true)
	require.Error(t, err)
}

func TestUnifyNamedPatternBindsWholeAndInner(t *testing.T) {
	pattern := term.NewNamedPattern("whole", term.NewHeadTail(term.NewID("h"), term.NewID("t")))
	value := term.NewList(term.NewInteger(1), term.NewInteger(2))

	bindings, err := unify.Unify(newEnv(), value, pattern, true)
	require.NoError(t, err)
	last := bindings[len(bindings)-1]
	assert.Equal(t, "whole", last.LVal.Name)
	assert.True(t, term.Equal(value, last.Value))
}

func TestUnifyTypematchScalar(t *testing.T) {
	_, err := unify.Unify(newEnv(), term.NewInteger(5), term.NewTypematch("integer"), true)
	require.NoError(t, err)

	_, err = unify.Unify(newEnv(), term.NewString("s"), term.NewTypematch("integer"), true)
	require.Error(t, err)
}

func TestUnifyStringRegexMatch(t *testing.T) {
	_, err := unify.Unify(newEnv(), term.NewString("hello123"), term.NewString("hello[0-9]+"), true)
	require.NoError(t, err)

	_, err = unify.Unify(newEnv(), term.NewString("nope"), term.NewString("hello[0-9]+"), true)
	require.Error(t, err)
}

func TestUnifyConstructorPattern(t *testing.T) {
	obj := term.NewObject("Point", []string{"x", "y"}, []*term.Term{term.NewInteger(1), term.NewInteger(2)})
	pattern := term.NewApply(term.NewID("Point"), term.NewTuple(term.NewID("px"), term.NewID("py")))

	bindings, err := unify.Unify(newEnv(), obj, pattern, true)
	require.NoError(t, err)
	require.Len(t, bindings, 2)
	assert.Equal(t, int64(1), bindings[0].Value.Int)
	assert.Equal(t, int64(2), bindings[1].Value.Int)
}

func TestUnifyConstructorPatternWrongStructFails(t *testing.T) {
	obj := term.NewObject("Point", []string{"x"}, []*term.Term{term.NewInteger(1)})
	pattern := term.NewApply(term.NewID("Other"), term.NewID("v"))
	_, err := unify.Unify(newEnv(), obj, pattern, true)
	require.Error(t, err)
}

func TestSubsumptionLengthTwoWildcardTail(t *testing.T) {
	// A length-2 head-tail pattern subsumes a longer head-tail pattern by
	// comparing only the heads (§9's documented special case).
	general := term.NewHeadTail(term.NewID("x"), term.NewID("xs"))
	specific := term.NewHeadTail(term.NewID("a"), term.NewHeadTail(term.NewID("b"), term.NewID("rest")))

	_, err := unify.Unify(newEnv(), specific, general, false)
	require.NoError(t, err)
}

func TestCmatchGuardEvaluation(t *testing.T) {
	env := &unify.Env{
		SymTab: symtab.New(),
		Eval: func(node *term.Term) (*term.Term, error) {
			return term.NewBoolean(node.Tag == term.TagBoolean && node.Bool), nil
		},
		BindNow: func(lval, value *term.Term) error { return nil },
	}
	pattern := term.NewCmatch(term.NewID("x"), term.NewBoolean(true))
	_, err := unify.Unify(env, term.NewInteger(1), pattern, true)
	require.NoError(t, err)

	pattern2 := term.NewCmatch(term.NewID("x"), term.NewBoolean(false))
	_, err = unify.Unify(env, term.NewInteger(1), pattern2, true)
	require.Error(t, err)
}
