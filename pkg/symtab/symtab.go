// Package symtab implements the lexically scoped symbol table the core
// treats as an external collaborator (spec §4.1): a stack of scopes with
// ascending lookup, global declarations, and snapshot/restore for closure
// capture.
//
// Values are stored as interface{} rather than a concrete term type so this
// package has no dependency on pkg/term — it is the same "agnostic to what
// it stores" posture the spec assigns the standalone symbol-table module.
// Grounded on the teacher's Substitution/ConstraintStore discipline in
// gokando's pkg/minikanren/core.go and store_ops.go: bindings are written
// in place in the live frames, and snapshots clone every local frame on
// capture and on restore, so later writes do not reach a captured local
// frame. The global frame is shared by every snapshot (see Config.clone).
package symtab

import "fmt"

// scope is one lexical frame: a set of bindings plus the set of names this
// frame has declared global (so a later Enter for that name is redirected
// to the bottom-most scope instead of shadowing locally).
type scope struct {
	bindings map[string]interface{}
	globals  map[string]bool
}

func newScope() *scope {
	return &scope{bindings: make(map[string]interface{}), globals: make(map[string]bool)}
}

func (s *scope) clone() *scope {
	c := newScope()
	for k, v := range s.bindings {
		c.bindings[k] = v
	}
	for k := range s.globals {
		c.globals[k] = true
	}
	return c
}

// Config is an opaque snapshot of a symbol table's full scope stack,
// suitable for capture by a closure and later restoration.
type Config struct {
	scopes []*scope
}

// clone deep-copies every local frame so neither the snapshot nor the live
// table can mutate the other's lexical bindings after the fact — except
// frame 0, the global scope, which is shared by reference across every
// snapshot of a given symbol table.
//
// A closure capturing "fact" before "fact" itself is bound at the top level
// must still see its own binding on a recursive call, the same way a
// function defined at Python module scope resolves names against the live
// module namespace rather than a frozen one. Treating only the bottom frame
// this way keeps true lexical closures (locals captured from an enclosing
// call, §3's copy-on-write invariant) properly isolated while letting
// top-level/global definitions see each other regardless of definition
// order.
func (c *Config) clone() *Config {
	scopes := make([]*scope, len(c.scopes))
	for i, s := range c.scopes {
		if i == 0 {
			scopes[i] = s
			continue
		}
		scopes[i] = s.clone()
	}
	return &Config{scopes: scopes}
}

// SymTab is a stack of lexical scopes, bottom frame first (index 0 is the
// global scope).
type SymTab struct {
	scopes []*scope
}

// New creates a symbol table with a single (global) scope.
func New() *SymTab {
	return &SymTab{scopes: []*scope{newScope()}}
}

// PushScope opens a new lexical scope on top of the stack. A nil argument
// pushes an empty scope (the common case); a non-nil Config pushes clones
// of all that config's frames, global frame included, in place of a fresh
// empty frame.
func (t *SymTab) PushScope(given *Config) {
	if given == nil {
		t.scopes = append(t.scopes, newScope())
		return
	}
	for _, s := range given.scopes {
		t.scopes = append(t.scopes, s.clone())
	}
}

// PopScope removes the top lexical scope. Popping the last remaining scope
// is a programmer error in the walker and panics rather than silently
// corrupting global state.
func (t *SymTab) PopScope() {
	if len(t.scopes) <= 1 {
		panic("symtab: cannot pop the global scope")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// EnterSym binds name to value in the current scope, unless name has been
// declared global anywhere in the current scope chain, in which case the
// binding lands in the global (bottom) scope instead.
func (t *SymTab) EnterSym(name string, value interface{}) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if t.scopes[i].globals[name] {
			t.scopes[0].bindings[name] = value
			return
		}
	}
	top := t.scopes[len(t.scopes)-1]
	top.bindings[name] = value
}

// EnterGlobal declares name global in the current scope: subsequent
// EnterSym calls for that name target the global scope until the current
// scope is popped.
func (t *SymTab) EnterGlobal(name string) {
	top := t.scopes[len(t.scopes)-1]
	top.globals[name] = true
}

// IsSymbolLocal reports whether name is bound in the current (innermost)
// scope specifically, not merely visible via an outer scope.
func (t *SymTab) IsSymbolLocal(name string) bool {
	top := t.scopes[len(t.scopes)-1]
	_, ok := top.bindings[name]
	return ok
}

// LookupSym ascends the scope chain from innermost to outermost and returns
// the first binding found. err is non-nil if name is unbound anywhere.
func (t *SymTab) LookupSym(name string) (interface{}, error) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if v, ok := t.scopes[i].bindings[name]; ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("symtab: %q is not defined", name)
}

// GetConfig captures the entire scope stack as a snapshot: local frames are
// copied, the global frame is shared (see Config.clone).
func (t *SymTab) GetConfig() *Config {
	return (&Config{scopes: t.scopes}).clone()
}

// SetConfig replaces the live scope stack with a clone of cfg, leaving the
// table in exactly the state captured — the invariant closures rely on for
// every frame but the shared global one.
func (t *SymTab) SetConfig(cfg *Config) {
	t.scopes = cfg.clone().scopes
}

// Depth reports the number of live scopes, mostly useful for diagnostics
// and call-depth guards in the walker.
func (t *SymTab) Depth() int {
	return len(t.scopes)
}
