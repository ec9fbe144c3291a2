package term_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/asteroid/pkg/term"
)

func TestEqualScalars(t *testing.T) {
	assert.True(t, term.Equal(term.NewInteger(3), term.NewInteger(3)))
	assert.False(t, term.Equal(term.NewInteger(3), term.NewInteger(4)))
	assert.True(t, term.Equal(term.NewString("a"), term.NewString("a")))
	assert.False(t, term.Equal(term.NewInteger(3), term.NewReal(3)))
}

func TestEqualLists(t *testing.T) {
	a := term.NewList(term.NewInteger(1), term.NewInteger(2))
	b := term.NewList(term.NewInteger(1), term.NewInteger(2))
	c := term.NewList(term.NewInteger(1), term.NewInteger(3))
	assert.True(t, term.Equal(a, b))
	assert.False(t, term.Equal(a, c))
}

func TestPromote(t *testing.T) {
	tag, ok := term.Promote(term.TagInteger, term.TagReal)
	require.True(t, ok)
	assert.Equal(t, term.TagReal, tag)

	tag, ok = term.Promote(term.TagInteger, term.TagInteger)
	require.True(t, ok)
	assert.Equal(t, term.TagInteger, tag)

	_, ok = term.Promote(term.TagInteger, term.TagString)
	assert.False(t, ok)
}

func TestToBooleanRejectsDuckTyping(t *testing.T) {
	_, ok := term.ToBoolean(term.NewInteger(1))
	assert.False(t, ok, "Asteroid booleans must not be duck-typed from truthy values")

	b, ok := term.ToBoolean(term.NewBoolean(true))
	require.True(t, ok)
	assert.True(t, b.Bool)
}

func TestDataOnlyAndDataIxList(t *testing.T) {
	memory := []*term.Term{
		term.NewNone(),
		term.NewFunctionVal(nil, nil),
		term.NewInteger(5),
	}
	data := term.DataOnly(memory)
	ix := term.DataIxList(memory)
	require.Len(t, data, 2)
	assert.Equal(t, []int{0, 2}, ix)
}

func TestHeadTailLength(t *testing.T) {
	chain := term.NewHeadTail(term.NewID("a"), term.NewHeadTail(term.NewID("b"), term.NewID("rest")))
	assert.Equal(t, 2, term.HeadTailLength(chain))

	notHeadTail := term.NewID("x")
	assert.Equal(t, 0, term.HeadTailLength(notHeadTail))
}

func TestNewObjectCopiesTemplateIndependently(t *testing.T) {
	template := []*term.Term{term.NewNone(), term.NewNone()}
	obj1 := term.NewObject("Point", []string{"x", "y"}, template)
	obj2 := term.NewObject("Point", []string{"x", "y"}, template)

	obj1.Memory[0] = term.NewInteger(1)
	assert.Equal(t, term.TagNone, obj2.Memory[0].Tag, "instances must not share memory")
}
