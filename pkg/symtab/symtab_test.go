package symtab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/asteroid/pkg/symtab"
)

func TestEnterAndLookup(t *testing.T) {
	st := symtab.New()
	st.EnterSym("x", 42)
	v, err := st.LookupSym("x")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestLookupUnbound(t *testing.T) {
	st := symtab.New()
	_, err := st.LookupSym("nope")
	assert.Error(t, err)
}

func TestScopeShadowing(t *testing.T) {
	st := symtab.New()
	st.EnterSym("x", "outer")
	st.PushScope(nil)
	st.EnterSym("x", "inner")
	v, _ := st.LookupSym("x")
	assert.Equal(t, "inner", v)
	assert.True(t, st.IsSymbolLocal("x"))

	st.PopScope()
	v, _ = st.LookupSym("x")
	assert.Equal(t, "outer", v)
}

func TestGlobalRedirectsBindingToBottomScope(t *testing.T) {
	st := symtab.New()
	st.PushScope(nil)
	st.EnterGlobal("counter")
	st.EnterSym("counter", 1)

	st.PushScope(nil)
	st.EnterGlobal("counter")
	st.EnterSym("counter", 2)
	st.PopScope()

	st.PopScope()
	v, err := st.LookupSym("counter")
	require.NoError(t, err)
	assert.Equal(t, 2, v, "global declarations must redirect writes to the bottom scope")
}

func TestConfigSnapshotIsIndependentOfLiveTable(t *testing.T) {
	st := symtab.New()
	st.EnterSym("x", "original")
	snap := st.GetConfig()

	st.EnterSym("x", "mutated")
	v, _ := st.LookupSym("x")
	assert.Equal(t, "mutated", v)

	st.SetConfig(snap)
	v, _ = st.LookupSym("x")
	assert.Equal(t, "original", v, "restoring a snapshot must not be affected by later live mutation")
}

func TestPopScopePanicsOnGlobalScope(t *testing.T) {
	st := symtab.New()
	assert.Panics(t, func() { st.PopScope() })
}

func TestPushScopeWithGivenConfigClonesFrames(t *testing.T) {
	st := symtab.New()
	st.EnterSym("shared", "captured")
	captured := st.GetConfig()

	other := symtab.New()
	other.PushScope(captured)
	v, err := other.LookupSym("shared")
	require.NoError(t, err)
	assert.Equal(t, "captured", v)

	other.EnterSym("shared", "changed-in-other")
	v, _ = other.LookupSym("shared")
	assert.Equal(t, "changed-in-other", v)

	// The original capture must be untouched by mutation in the borrower.
	v2, _ := st.LookupSym("shared")
	assert.Equal(t, "captured", v2)
}
