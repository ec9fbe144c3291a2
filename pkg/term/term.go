// Package term provides the tagged-tree value representation shared by every
// other package in this module: runtime values, patterns, and AST nodes are
// all the same Term type, distinguished only by their Tag.
//
// This generalizes the teacher repo's three-variant Term interface
// (Var/Atom/Pair in gokando's pkg/minikanren/core.go) into the single closed
// tag set a tree-walking interpreter needs, following the "single closed
// variant" design note: rather than one Go type per tag, Term stays one
// struct shaped like the tagged Python tuples the original walker operated
// on, so dispatch tables key uniformly off Tag instead of off Go's dynamic
// type.
package term

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gitrdm/asteroid/pkg/symtab"
)

// Tag discriminates the kind of a Term.
type Tag string

// Literal / value tags.
const (
	TagInteger         Tag = "integer"
	TagReal            Tag = "real"
	TagString          Tag = "string"
	TagBoolean         Tag = "boolean"
	TagNone            Tag = "none"
	TagNil             Tag = "nil"
	TagList            Tag = "list"
	TagTuple           Tag = "tuple"
	TagFunctionVal     Tag = "function-val"
	TagMemberFuncVal   Tag = "member-function-val"
	TagStruct          Tag = "struct"
	TagObject          Tag = "object"
	TagForeign         Tag = "foreign"
)

// Pattern / expression tags.
const (
	TagID          Tag = "id"
	TagApply       Tag = "apply"
	TagIndex       Tag = "index"
	TagHeadTail    Tag = "head-tail"
	TagRawHeadTail Tag = "raw-head-tail"
	TagToList      Tag = "to-list"
	TagRawToList   Tag = "raw-to-list"
	TagQuote       Tag = "quote"
	TagDeref       Tag = "deref"
	TagNamedPat    Tag = "named-pattern"
	TagTypematch   Tag = "typematch"
	TagCmatch      Tag = "cmatch"
	TagIs          Tag = "is"
	TagIn          Tag = "in"
	TagIfExp       Tag = "if-exp"
	TagEscape      Tag = "escape"
	TagSeq         Tag = "seq"
	TagEval        Tag = "eval"
	TagFunctionExp Tag = "function-exp"
)

// Statement tags.
const (
	TagLineinfo  Tag = "lineinfo"
	TagNoop      Tag = "noop"
	TagAssert    Tag = "assert"
	TagUnify     Tag = "unify"
	TagWhile     Tag = "while"
	TagLoop      Tag = "loop"
	TagRepeat    Tag = "repeat"
	TagFor       Tag = "for"
	TagGlobal    Tag = "global"
	TagReturn    Tag = "return"
	TagBreak     Tag = "break"
	TagIf        Tag = "if"
	TagThrow     Tag = "throw"
	TagTry       Tag = "try"
	TagStructDef Tag = "struct-def"

	// StmtList groups an ordered statement sequence (a clause/loop/if-arm
	// body); IfClause and CatchClause group a guard-or-pattern with its arm.
	TagStmtList    Tag = "stmt-list"
	TagIfClause    Tag = "if-clause"
	TagCatchClause Tag = "catch-clause"

	// Struct member tags: 'data' introduces a slot, 'noop' is an ignored
	// placeholder. Method members reuse TagUnify itself (the original
	// representation's `('unify', ...)` member form — see SPEC_FULL.md §12).
	TagData Tag = "data"
)

// Term is a tagged tree node: every runtime value, pattern, and AST node in
// the interpreter is a *Term. Only the fields relevant to Tag are populated;
// the rest stay at their zero value.
type Term struct {
	Tag Tag

	// Scalar payloads.
	Int  int64
	Real float64
	Str  string
	Bool bool

	// Name carries an identifier: id name, named-pattern name, struct-id,
	// or loop-pattern-adjacent bookkeeping depending on Tag.
	Name string

	// Children holds an ordered sequence of sub-terms: list/tuple
	// elements, apply(callee, arg) as [callee, arg], head-tail as
	// [head, tail], if-clause lists, catch lists, and so on.
	Children []*Term

	// Function-val payload: Body holds one Term per clause (each a
	// 2-element clause term: [pattern, stmtList]); Closure is the
	// snapshotted symbol-table configuration captured at creation time.
	Body    []*Term
	Closure *symtab.Config

	// member-function-val payload: Receiver is the bound object/list/
	// string; Closure-less Body[0] style reuse is avoided by keeping a
	// direct pointer to the underlying function-val (for a prologue
	// native member, a foreign term wrapping the native function).
	Receiver *Term
	FuncVal  *Term

	// struct / object payload.
	MemberNames []string
	Memory      []*Term
	StructScope *symtab.Config

	// foreign payload: an opaque host value threaded through unchanged.
	Foreign interface{}

	// LineInfo payload: (module, line).
	Module string
	Line   int
}

// UnifyNotAllowed names tags that may never appear as a pattern, and may
// not appear as a term unless the pattern side is a plain variable
// (function-val and foreign are the unifier's carve-outs; see §4.2 step 10).
// Objects are deliberately absent: they participate in unification via the
// dedicated object/constructor-pattern rule (§4.2 step 12), which must run
// before this policy check would otherwise reject them.
var UnifyNotAllowed = map[Tag]bool{
	TagFunctionVal:   true,
	TagMemberFuncVal: true,
	TagForeign:       true,
	TagStruct:        true,
}

// Scalar constructors.

func NewInteger(v int64) *Term  { return &Term{Tag: TagInteger, Int: v} }
func NewReal(v float64) *Term   { return &Term{Tag: TagReal, Real: v} }
func NewString(v string) *Term  { return &Term{Tag: TagString, Str: v} }
func NewBoolean(v bool) *Term   { return &Term{Tag: TagBoolean, Bool: v} }
func NewNone() *Term            { return &Term{Tag: TagNone} }
func NewNil() *Term              { return &Term{Tag: TagNil} }

// NewList builds a list term from an ordered element slice (never nil;
// an empty slice is the empty list, distinct from the 'nil' sentinel).
func NewList(elems ...*Term) *Term {
	if elems == nil {
		elems = []*Term{}
	}
	return &Term{Tag: TagList, Children: elems}
}

func NewTuple(elems ...*Term) *Term {
	if elems == nil {
		elems = []*Term{}
	}
	return &Term{Tag: TagTuple, Children: elems}
}

func NewID(name string) *Term { return &Term{Tag: TagID, Name: name} }

// NewApply builds an apply(callee, arg) node.
func NewApply(callee, arg *Term) *Term {
	return &Term{Tag: TagApply, Children: []*Term{callee, arg}}
}

// NewIndex builds an index(structure, ixExpr) lval/expr node.
func NewIndex(structure, ix *Term) *Term {
	return &Term{Tag: TagIndex, Children: []*Term{structure, ix}}
}

// NewHeadTail builds a head-tail(head, tail) node.
func NewHeadTail(head, tail *Term) *Term {
	return &Term{Tag: TagHeadTail, Children: []*Term{head, tail}}
}

// NewNamedPattern builds a named-pattern(name, inner) node.
func NewNamedPattern(name string, inner *Term) *Term {
	return &Term{Tag: TagNamedPat, Name: name, Children: []*Term{inner}}
}

// NewTypematch builds a typematch(T) node; T is an identifier such as
// "integer", "function", or a struct id.
func NewTypematch(typeName string) *Term {
	return &Term{Tag: TagTypematch, Name: typeName}
}

// NewCmatch builds a cmatch(pattern, guard) conditional-pattern node.
func NewCmatch(pattern, guard *Term) *Term {
	return &Term{Tag: TagCmatch, Children: []*Term{pattern, guard}}
}

// NewQuote wraps a term in a quote node.
func NewQuote(inner *Term) *Term { return &Term{Tag: TagQuote, Children: []*Term{inner}} }

// NewDeref builds a deref(id) node.
func NewDeref(idTerm *Term) *Term { return &Term{Tag: TagDeref, Children: []*Term{idTerm}} }

// NewFunctionVal builds a function value: body is one clause Term per
// overload, closure is the captured symbol-table snapshot.
func NewFunctionVal(body []*Term, closure *symtab.Config) *Term {
	return &Term{Tag: TagFunctionVal, Body: body, Closure: closure}
}

// NewMemberFunctionVal binds a function value to a receiver.
func NewMemberFunctionVal(receiver, fval *Term) *Term {
	return &Term{Tag: TagMemberFuncVal, Receiver: receiver, FuncVal: fval}
}

// NewStruct builds a struct term: a read-only template shared by all
// instances created from it. name is the struct id, used by the
// constructor-pattern unify rule (§4.2 step 12) and by NewObject.
func NewStruct(name string, memberNames []string, memory []*Term, scope *symtab.Config) *Term {
	return &Term{Tag: TagStruct, Name: name, MemberNames: memberNames, Memory: memory, StructScope: scope}
}

// NewObject instantiates an object by copying a struct's slot template into
// fresh, exclusively-owned memory. memberNames is shared read-only with the
// originating struct (member names never change per instance).
func NewObject(structID string, memberNames []string, template []*Term) *Term {
	memory := make([]*Term, len(template))
	copy(memory, template)
	return &Term{Tag: TagObject, Name: structID, MemberNames: memberNames, Memory: memory}
}

func NewForeign(v interface{}) *Term { return &Term{Tag: TagForeign, Foreign: v} }

// NewFunctionExp builds an unwalked function literal: walking it captures
// the live scope into a function-val (§4.4).
func NewFunctionExp(body []*Term) *Term { return &Term{Tag: TagFunctionExp, Body: body} }

// Expression node constructors used throughout the AST.

func NewToList(start, stop, step *Term) *Term {
	return &Term{Tag: TagToList, Children: []*Term{start, stop, step}}
}

func NewRawToList(start, stop, step *Term) *Term {
	return &Term{Tag: TagRawToList, Children: []*Term{start, stop, step}}
}

func NewIfExp(cond, then, els *Term) *Term {
	return &Term{Tag: TagIfExp, Children: []*Term{cond, then, els}}
}

func NewIs(t, pattern *Term) *Term { return &Term{Tag: TagIs, Children: []*Term{t, pattern}} }

func NewIn(elem, list *Term) *Term { return &Term{Tag: TagIn, Children: []*Term{elem, list}} }

func NewEval(inner *Term) *Term { return &Term{Tag: TagEval, Children: []*Term{inner}} }

func NewEscape(payload string) *Term { return &Term{Tag: TagEscape, Str: payload} }

func NewSeq(a, b *Term) *Term { return &Term{Tag: TagSeq, Children: []*Term{a, b}} }

// Statement node constructors.

func NewAssert(cond *Term) *Term { return &Term{Tag: TagAssert, Children: []*Term{cond}} }

func NewUnifyStmt(pattern, value *Term) *Term {
	return &Term{Tag: TagUnify, Children: []*Term{pattern, value}}
}

func NewWhile(cond, body *Term) *Term { return &Term{Tag: TagWhile, Children: []*Term{cond, body}} }

func NewLoop(body *Term) *Term { return &Term{Tag: TagLoop, Children: []*Term{body}} }

func NewRepeat(body, cond *Term) *Term {
	return &Term{Tag: TagRepeat, Children: []*Term{body, cond}}
}

func NewFor(pattern, iterable, body *Term) *Term {
	return &Term{Tag: TagFor, Children: []*Term{pattern, iterable, body}}
}

func NewGlobal(names ...*Term) *Term { return &Term{Tag: TagGlobal, Children: names} }

func NewReturn(value *Term) *Term { return &Term{Tag: TagReturn, Children: []*Term{value}} }

func NewBreak() *Term { return &Term{Tag: TagBreak} }

func NewIf(clauses ...*Term) *Term { return &Term{Tag: TagIf, Children: clauses} }

func NewThrow(value *Term) *Term { return &Term{Tag: TagThrow, Children: []*Term{value}} }

// NewTry builds a try statement: body is the guarded block, catches is the
// ordered list of catch-clause arms.
func NewTry(body *Term, catches ...*Term) *Term {
	children := append([]*Term{body}, catches...)
	return &Term{Tag: TagTry, Children: children}
}

func (t *Term) TryBody() *Term        { return t.Children[0] }
func (t *Term) TryCatches() []*Term   { return t.Children[1:] }

// NewStructDef builds a struct-def statement: name is the struct id,
// members is the ordered list of data/unify/noop member declarations.
func NewStructDef(name string, members ...*Term) *Term {
	return &Term{Tag: TagStructDef, Name: name, Children: members}
}

func NewNoop() *Term { return &Term{Tag: TagNoop} }

func NewLineinfo(module string, line int) *Term {
	return &Term{Tag: TagLineinfo, Module: module, Line: line}
}

// Clause builds a function-body clause: [pattern, stmtList].
func Clause(pattern, stmts *Term) *Term {
	return &Term{Tag: "clause", Children: []*Term{pattern, stmts}}
}

func (t *Term) ClausePattern() *Term { return t.Children[0] }
func (t *Term) ClauseStmts() *Term   { return t.Children[1] }

// NewStmtList groups an ordered statement sequence into one node so loop/if/
// try/clause bodies can be carried as a single *Term the way the rest of the
// AST does.
func NewStmtList(stmts ...*Term) *Term {
	if stmts == nil {
		stmts = []*Term{}
	}
	return &Term{Tag: TagStmtList, Children: stmts}
}

// NewIfClause builds one (guard, body) arm of an 'if' statement.
func NewIfClause(guard, body *Term) *Term {
	return &Term{Tag: TagIfClause, Children: []*Term{guard, body}}
}

func (t *Term) IfClauseGuard() *Term { return t.Children[0] }
func (t *Term) IfClauseBody() *Term  { return t.Children[1] }

// NewCatchClause builds one (pattern, body) arm of a 'try' statement's catch
// list.
func NewCatchClause(pattern, body *Term) *Term {
	return &Term{Tag: TagCatchClause, Children: []*Term{pattern, body}}
}

func (t *Term) CatchPattern() *Term { return t.Children[0] }
func (t *Term) CatchBody() *Term    { return t.Children[1] }

// NewDataMember builds a struct-def 'data' member slot declaration.
func NewDataMember(name string) *Term { return &Term{Tag: TagData, Name: name} }

// NewMethodMember builds a struct-def method-member declaration; it reuses
// TagUnify as its tag (see SPEC_FULL.md §12) with fn holding the unwalked
// function-exp body.
func NewMethodMember(name string, fn *Term) *Term {
	return &Term{Tag: TagUnify, Name: name, Children: []*Term{fn}}
}

// NewNoopMember builds an ignored struct-def member placeholder.
func NewNoopMember() *Term { return &Term{Tag: TagNoop} }

// IsScalar reports whether t is a bare Go-level scalar in the sense of
// §4.2 step 2/3 of the unifier: string, integer, real, or boolean.
func (t *Term) IsScalar() bool {
	switch t.Tag {
	case TagString, TagInteger, TagReal, TagBoolean:
		return true
	default:
		return false
	}
}

// String renders a Term for diagnostics and for the 'string' coercion rule
// (§4.2 step 5); it is not meant to round-trip through the parser.
func (t *Term) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Tag {
	case TagInteger:
		return strconv.FormatInt(t.Int, 10)
	case TagReal:
		return strconv.FormatFloat(t.Real, 'g', -1, 64)
	case TagString:
		return t.Str
	case TagBoolean:
		if t.Bool {
			return "true"
		}
		return "false"
	case TagNone:
		return "none"
	case TagNil:
		return "nil"
	case TagList:
		return "[" + joinTerms(t.Children) + "]"
	case TagTuple:
		return "(" + joinTerms(t.Children) + ")"
	case TagID:
		return t.Name
	case TagFunctionVal:
		return "<function>"
	case TagMemberFuncVal:
		return "<member-function>"
	case TagStruct:
		return fmt.Sprintf("<struct %s>", t.Name)
	case TagObject:
		return fmt.Sprintf("<object %s>", t.Name)
	case TagForeign:
		return fmt.Sprintf("<foreign %v>", t.Foreign)
	default:
		return fmt.Sprintf("<%s>", t.Tag)
	}
}

func joinTerms(ts []*Term) string {
	parts := make([]string, len(ts))
	for i, e := range ts {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// ToDisplayString is the term2string coercion used when a string pattern is
// applied to a non-string term (§4.2 step 5).
func ToDisplayString(t *Term) string {
	return t.String()
}

// Equal is strict scalar/tag equality, used by the __eq__/__ne__ built-in
// operators. It does not walk
// through symbol-table bindings; callers must have already resolved any
// 'id'/'deref' indirection.
func Equal(a, b *Term) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case TagInteger:
		return a.Int == b.Int
	case TagReal:
		return a.Real == b.Real
	case TagString:
		return a.Str == b.Str
	case TagBoolean:
		return a.Bool == b.Bool
	case TagNone, TagNil:
		return true
	case TagList, TagTuple:
		if len(a.Children) != len(b.Children) {
			return false
		}
		for i := range a.Children {
			if !Equal(a.Children[i], b.Children[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// Promote implements the binary-operator type-promotion table (§4.6):
// integer and real promote to real; any other matching pair keeps its tag;
// mismatched non-numeric tags have no promotion (ok=false).
func Promote(a, b Tag) (Tag, bool) {
	if a == b {
		return a, true
	}
	numeric := map[Tag]bool{TagInteger: true, TagReal: true}
	if numeric[a] && numeric[b] {
		return TagReal, true
	}
	return "", false
}

// ToBoolean implements map2boolean: booleans pass through, every other tag
// fails the coercion (Asteroid booleans are not duck-typed from truthy
// values, matching the original walker's map2boolean helper).
func ToBoolean(t *Term) (*Term, bool) {
	if t.Tag == TagBoolean {
		return t, true
	}
	return nil, false
}

// DataOnly filters a struct/object memory slice down to its data slots,
// dropping function-val slots (methods). Used by the constructor-pattern
// unify rule (§4.2 step 12).
func DataOnly(memory []*Term) []*Term {
	out := make([]*Term, 0, len(memory))
	for _, m := range memory {
		if m.Tag != TagFunctionVal {
			out = append(out, m)
		}
	}
	return out
}

// DataIxList returns the indices of memory that hold data slots (the
// positions DataOnly's output slice maps back onto), needed when writing
// default-constructor arguments back into the right memory cells.
func DataIxList(memory []*Term) []int {
	out := make([]int, 0, len(memory))
	for i, m := range memory {
		if m.Tag != TagFunctionVal {
			out = append(out, i)
		}
	}
	return out
}

// HeadTailLength walks a chain of head-tail pattern nodes and returns its
// length, treating a non-head-tail tail as the end of the chain (so the
// two-element pattern h|t has length 1). Used only by subsumption
// comparison (§4.2 step 16); the "length 2 treated as a wildcard tail"
// special case lives in package unify, not here, since it is a unification
// policy rather than a term-shape fact.
func HeadTailLength(t *Term) int {
	n := 0
	cur := t
	for cur != nil && cur.Tag == TagHeadTail {
		n++
		cur = cur.Children[1]
	}
	return n
}
