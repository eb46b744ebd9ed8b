package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/plint/internal/types"
)

func decl(name string, kind BindingKind, start int) Binding {
	return Binding{
		Name:  name,
		Kind:  kind,
		Range: types.NewRange(start, start+len(name)),
		Node:  start,
	}
}

func TestResolveAndMarkUsed(t *testing.T) {
	t.Parallel()

	g := New(0)
	mod := g.Module()
	id := g.Declare(mod, decl("os", KindImport, 7))

	ref := g.AddReference(mod, "os", types.NewRange(20, 22), 100)
	require.True(t, ref.IsValid())

	b := g.Binding(id)
	assert.True(t, b.Used())
	assert.Equal(t, id, g.ReferenceAt(100).Binding)

	g.MarkUsed(id, ref)
	assert.Len(t, b.References(), 1, "marking twice must not add a reference")
}

func TestResolveBuiltins(t *testing.T) {
	t.Parallel()

	g := New(0)
	id := g.Resolve(g.Module(), "print")
	require.True(t, id.IsValid())
	assert.Equal(t, KindBuiltin, g.Binding(id).Kind)

	assert.False(t, g.Resolve(g.Module(), "undefined_name").IsValid())
	assert.True(t, g.Resolve(g.Module(), "__name__").IsValid())
}

func TestClassScopeSkippedFromFunctions(t *testing.T) {
	t.Parallel()

	g := New(0)
	mod := g.Module()
	g.Declare(mod, decl("x", KindAssignment, 0))
	moduleX := g.Lookup(mod, "x")

	class := g.NewScope(ScopeClass, mod, 1, "A")
	classX := g.Declare(class, decl("x", KindAssignment, 10))

	method := g.NewScope(ScopeFunction, class, 2, "m")

	assert.Equal(t, classX, g.Resolve(class, "x"))
	assert.Equal(t, moduleX, g.Resolve(method, "x"))

	comp := g.NewScope(ScopeComprehension, class, 3, "")
	assert.Equal(t, classX, g.Resolve(comp, "x"))

	gen := g.NewScope(ScopeGenerator, class, 5, "")
	assert.Equal(t, classX, g.Resolve(gen, "x"))

	nested := g.NewScope(ScopeComprehension, method, 4, "")
	assert.Equal(t, moduleX, g.Resolve(nested, "x"))
	nestedGen := g.NewScope(ScopeGenerator, method, 6, "")
	assert.Equal(t, moduleX, g.Resolve(nestedGen, "x"))
	assert.True(t, g.Resolve(class, "__qualname__").IsValid())
}

func TestGlobalRedirectsToModule(t *testing.T) {
	t.Parallel()

	g := New(0)
	mod := g.Module()
	fn := g.NewScope(ScopeFunction, mod, 1, "f")

	global := g.DeclareGlobal(fn, decl("counter", KindGlobal, 5))
	id := g.Declare(fn, decl("counter", KindAssignment, 20))

	assert.Equal(t, mod, g.Binding(id).Scope)
	assert.True(t, g.Binding(global).Assigned)
	assert.Equal(t, id, g.Lookup(mod, "counter"))
	assert.Equal(t, id, g.Resolve(fn, "counter"))
}

func TestNonlocal(t *testing.T) {
	t.Parallel()

	g := New(0)
	mod := g.Module()
	outer := g.NewScope(ScopeFunction, mod, 1, "outer")
	outerX := g.Declare(outer, decl("x", KindAssignment, 10))
	inner := g.NewScope(ScopeFunction, outer, 2, "inner")

	_, ok := g.DeclareNonlocal(inner, decl("x", KindNonlocal, 30))
	require.True(t, ok)
	assert.Equal(t, outerX, g.Resolve(inner, "x"))

	rebound := g.Declare(inner, decl("x", KindAssignment, 40))
	assert.Equal(t, outer, g.Binding(rebound).Scope)

	_, ok = g.DeclareNonlocal(inner, decl("missing", KindNonlocal, 50))
	assert.False(t, ok)

	top := g.NewScope(ScopeFunction, mod, 3, "top")
	g.Declare(mod, decl("y", KindAssignment, 60))
	_, ok = g.DeclareNonlocal(top, decl("y", KindNonlocal, 70))
	assert.False(t, ok, "module bindings are not nonlocal targets")
}

func TestShadowedAndUnused(t *testing.T) {
	t.Parallel()

	g := New(0)
	mod := g.Module()
	first := g.Declare(mod, decl("f", KindFunctionDefinition, 0))
	second := g.Declare(mod, decl("f", KindFunctionDefinition, 30))
	g.Declare(mod, decl("os", KindImport, 60))

	pairs := g.Shadowed(mod)
	require.Len(t, pairs, 1)
	assert.Equal(t, first, pairs[0][0].ID)
	assert.Equal(t, second, pairs[0][1].ID)

	unused := g.Unused(mod, KindImport)
	require.Len(t, unused, 1)
	assert.Equal(t, "os", unused[0].Name)
	assert.Len(t, g.Unused(mod, KindFunctionDefinition), 2)
}

func TestUnusedDefaultKinds(t *testing.T) {
	t.Parallel()

	g := New(0)
	mod := g.Module()
	g.Declare(mod, decl("os", KindImport, 0))
	g.Declare(mod, decl("path", KindFromImport, 10))
	g.Declare(mod, decl("x", KindAssignment, 20))
	g.Declare(mod, decl("y", KindAnnotation, 30))
	g.Declare(mod, decl("f", KindFunctionDefinition, 40))
	g.Declare(mod, decl("C", KindClassDefinition, 50))
	g.Declare(mod, decl("i", KindLoopVariable, 60))
	fn := g.NewScope(ScopeFunction, mod, 1, "f")
	g.Declare(fn, decl("arg", KindParameter, 70))
	g.Declare(fn, decl("local", KindAssignment, 80))

	var names []string
	for _, b := range g.Unused(mod) {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"os", "path", "x", "y"}, names)

	unused := g.Unused(fn)
	require.Len(t, unused, 1)
	assert.Equal(t, "local", unused[0].Name)
}

func TestUnbindAndUnresolved(t *testing.T) {
	t.Parallel()

	g := New(0)
	mod := g.Module()
	g.Declare(mod, decl("x", KindAssignment, 0))
	g.Unbind(mod, "x")
	g.AddReference(mod, "x", types.NewRange(20, 21), 7)
	g.AddReference(mod, "y", types.NewRange(10, 11), 8)

	unresolved := g.Unresolved()
	require.Len(t, unresolved, 2)
	assert.Equal(t, "y", unresolved[0].Name)
	assert.Equal(t, "x", unresolved[1].Name)
}

func TestNormalization(t *testing.T) {
	t.Parallel()

	g := New(0)
	mod := g.Module()
	// U+FB01 LATIN SMALL LIGATURE FI normalizes to "fi".
	id := g.Declare(mod, decl("ﬁle", KindAssignment, 0))
	assert.Equal(t, id, g.Resolve(mod, "file"))
}

func TestExportsAndStarImport(t *testing.T) {
	t.Parallel()

	g := New(0)
	mod := g.Module()
	fn := g.NewScope(ScopeFunction, mod, 1, "f")
	g.SetStarImport(mod)
	g.AddExport("api", types.NewRange(0, 3))

	assert.True(t, g.HasStarImport(fn))
	assert.True(t, g.IsExported("api"))
	assert.False(t, g.IsExported("other"))
	assert.True(t, IsDummy("_unused"))
	assert.False(t, IsDummy("used"))
}
