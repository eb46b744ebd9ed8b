package binding

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"github.com/gnolang/plint/internal/types"
)

// Scope is a lexical scope. Scopes form a tree rooted at the module scope.
type Scope struct {
	ID     ScopeID
	Kind   ScopeKind
	Parent ScopeID
	Node   int // syntax node ID that opened the scope
	Name   string

	names     map[string]BindingID // current binding of each name
	bindings  []BindingID          // declaration order
	globals   map[string]BindingID
	nonlocals map[string]BindingID

	starImport bool
	usesLocals bool
}

// Binding is a name bound in a scope.
type Binding struct {
	ID    BindingID
	Name  string
	Kind  BindingKind
	Scope ScopeID
	// Range covers the identifier; Statement the enclosing statement.
	Range     types.Range
	Statement types.Range
	Node      int // syntax node describing the binding site
	StmtNode  int // syntax node ID of the enclosing statement
	Block     int // syntax node ID of the block holding the statement
	// QualifiedName is the imported path for import bindings.
	QualifiedName string
	// Explicit marks redundant aliases such as `import x as x`.
	Explicit bool
	// Shadows is the binding this one replaced in the same scope.
	Shadows BindingID
	// Assigned marks a global or nonlocal declaration whose name was bound
	// afterwards in the declaring scope.
	Assigned bool

	references []ReferenceID
}

// Used reports whether any reference resolved to the binding.
func (b *Binding) Used() bool { return len(b.references) > 0 }

// References returns the references resolved to the binding.
func (b *Binding) References() []ReferenceID { return b.references }

// Reference is a load of a name.
type Reference struct {
	ID      ReferenceID
	Name    string
	Scope   ScopeID
	Range   types.Range
	Node    int
	Binding BindingID // NoBinding when unresolved
}

// Graph holds every scope, binding and reference of one file.
type Graph struct {
	scopes     []Scope
	bindings   []Binding
	references []Reference
	builtins   map[string]BindingID
	byNode     map[int]ReferenceID
	exports    []Export
}

// Export is one name listed in the module's __all__.
type Export struct {
	Name  string
	Range types.Range
}

// New returns a graph holding the module scope.
func New(moduleNode int) *Graph {
	g := &Graph{
		scopes:     make([]Scope, 1, 16),
		bindings:   make([]Binding, 1, 64),
		references: make([]Reference, 1, 128),
		builtins:   make(map[string]BindingID, len(pythonBuiltins)),
		byNode:     make(map[int]ReferenceID),
	}
	g.NewScope(ScopeModule, NoScope, moduleNode, "")
	for _, name := range pythonBuiltins {
		g.builtins[name] = g.newBinding(Binding{Name: name, Kind: KindBuiltin, Node: -1, StmtNode: -1, Block: -1})
	}
	for _, name := range moduleDunders {
		g.builtins[name] = g.newBinding(Binding{Name: name, Kind: KindBuiltin, Node: -1, StmtNode: -1, Block: -1})
	}
	return g
}

func (g *Graph) newBinding(b Binding) BindingID {
	value, err := safecast.Conv[uint32](len(g.bindings))
	if err != nil {
		panic(fmt.Errorf("binding arena overflow: %w", err))
	}
	b.ID = BindingID(value)
	g.bindings = append(g.bindings, b)
	return b.ID
}

// Module returns the module scope.
func (g *Graph) Module() ScopeID { return 1 }

// NewScope opens a scope nested in parent.
func (g *Graph) NewScope(kind ScopeKind, parent ScopeID, node int, name string) ScopeID {
	value, err := safecast.Conv[uint32](len(g.scopes))
	if err != nil {
		panic(fmt.Errorf("scope arena overflow: %w", err))
	}
	id := ScopeID(value)
	g.scopes = append(g.scopes, Scope{
		ID:     id,
		Kind:   kind,
		Parent: parent,
		Node:   node,
		Name:   name,
		names:  make(map[string]BindingID),
	})
	if kind == ScopeClass {
		for _, dunder := range classDunders {
			g.Declare(id, Binding{Name: dunder, Kind: KindBuiltin, Node: -1, StmtNode: -1, Block: -1})
		}
	}
	return id
}

// Scope returns the scope or nil for an invalid ID.
func (g *Graph) Scope(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(g.scopes) {
		return nil
	}
	return &g.scopes[id]
}

// Scopes returns every scope ID in creation order.
func (g *Graph) Scopes() []ScopeID {
	out := make([]ScopeID, 0, len(g.scopes)-1)
	for i := 1; i < len(g.scopes); i++ {
		out = append(out, g.scopes[i].ID)
	}
	return out
}

// Binding returns the binding or nil for an invalid ID.
func (g *Graph) Binding(id BindingID) *Binding {
	if !id.IsValid() || int(id) >= len(g.bindings) {
		return nil
	}
	return &g.bindings[id]
}

// Reference returns the reference or nil for an invalid ID.
func (g *Graph) Reference(id ReferenceID) *Reference {
	if !id.IsValid() || int(id) >= len(g.references) {
		return nil
	}
	return &g.references[id]
}

// normalize applies NFKC normalization, which Python applies to
// identifiers.
func normalize(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] >= utf8.RuneSelf {
			return norm.NFKC.String(name)
		}
	}
	return name
}

// Declare binds b.Name in scope and returns the new binding. Names declared
// global are redirected to the module scope and names declared nonlocal to
// the enclosing binding's scope.
func (g *Graph) Declare(scope ScopeID, b Binding) BindingID {
	b.Name = normalize(b.Name)
	s := g.Scope(scope)
	if s == nil {
		panic(fmt.Errorf("declare %q: invalid scope %d", b.Name, scope))
	}
	target := scope
	if decl, ok := s.globals[b.Name]; ok {
		g.bindings[decl].Assigned = true
		target = g.Module()
	} else if decl, ok := s.nonlocals[b.Name]; ok {
		g.bindings[decl].Assigned = true
		if outer := g.Binding(g.bindings[decl].Shadows); outer != nil {
			target = outer.Scope
		}
	}
	ts := &g.scopes[target]
	b.Scope = target
	b.Shadows = ts.names[b.Name]
	id := g.newBinding(b)
	ts.names[b.Name] = id
	ts.bindings = append(ts.bindings, id)
	return id
}

// DeclareGlobal records a `global` statement for name in scope.
func (g *Graph) DeclareGlobal(scope ScopeID, b Binding) BindingID {
	b.Name = normalize(b.Name)
	b.Kind = KindGlobal
	b.Scope = scope
	id := g.newBinding(b)
	s := &g.scopes[scope]
	if s.globals == nil {
		s.globals = make(map[string]BindingID)
	}
	s.globals[b.Name] = id
	s.bindings = append(s.bindings, id)
	return id
}

// DeclareNonlocal records a `nonlocal` statement for name in scope. It
// returns false when no enclosing function scope binds the name.
func (g *Graph) DeclareNonlocal(scope ScopeID, b Binding) (BindingID, bool) {
	b.Name = normalize(b.Name)
	b.Kind = KindNonlocal
	b.Scope = scope

	var outer BindingID
	for p := g.scopes[scope].Parent; p.IsValid(); p = g.scopes[p].Parent {
		ps := &g.scopes[p]
		if ps.Kind == ScopeModule {
			break
		}
		if ps.Kind != ScopeFunction && ps.Kind != ScopeLambda {
			continue
		}
		if id, ok := ps.names[b.Name]; ok {
			outer = id
			break
		}
	}
	b.Shadows = outer
	id := g.newBinding(b)
	s := &g.scopes[scope]
	if s.nonlocals == nil {
		s.nonlocals = make(map[string]BindingID)
	}
	s.nonlocals[b.Name] = id
	s.bindings = append(s.bindings, id)
	return id, outer.IsValid()
}

// Unbind removes the current binding of name from scope, as `del` does.
func (g *Graph) Unbind(scope ScopeID, name string) {
	name = normalize(name)
	s := g.Scope(scope)
	if s == nil {
		return
	}
	if _, ok := s.globals[name]; ok {
		s = &g.scopes[g.Module()]
	}
	delete(s.names, name)
}

// Lookup returns the binding of name in scope only.
func (g *Graph) Lookup(scope ScopeID, name string) BindingID {
	s := g.Scope(scope)
	if s == nil {
		return NoBinding
	}
	return s.names[normalize(name)]
}

// Resolve finds the binding name refers to when loaded from scope. Class
// scopes are skipped once a function or lambda scope has been crossed;
// comprehensions directly in a class body still see the class bindings.
func (g *Graph) Resolve(scope ScopeID, name string) BindingID {
	name = normalize(name)
	crossedFunction := false
	for cur := scope; cur.IsValid(); cur = g.scopes[cur].Parent {
		s := &g.scopes[cur]
		if s.Kind == ScopeClass && crossedFunction {
			continue
		}
		if s.Kind == ScopeFunction || s.Kind == ScopeLambda {
			crossedFunction = true
		}
		if _, ok := s.globals[name]; ok {
			if id, ok := g.scopes[g.Module()].names[name]; ok {
				return id
			}
			return g.builtins[name]
		}
		if decl, ok := s.nonlocals[name]; ok {
			if outer := g.bindings[decl].Shadows; outer.IsValid() {
				return g.currentInScope(g.bindings[outer].Scope, name, outer)
			}
			return NoBinding
		}
		if id, ok := s.names[name]; ok && g.bindings[id].Kind != KindAnnotation {
			return id
		}
	}
	return g.builtins[name]
}

func (g *Graph) currentInScope(scope ScopeID, name string, fallback BindingID) BindingID {
	if id, ok := g.scopes[scope].names[name]; ok {
		return id
	}
	return fallback
}

// AddReference records a load of name from scope, resolves it and marks the
// resolved binding used. node identifies the loading syntax node.
func (g *Graph) AddReference(scope ScopeID, name string, rng types.Range, node int) ReferenceID {
	name = normalize(name)
	value, err := safecast.Conv[uint32](len(g.references))
	if err != nil {
		panic(fmt.Errorf("reference arena overflow: %w", err))
	}
	id := ReferenceID(value)
	target := g.Resolve(scope, name)
	g.references = append(g.references, Reference{
		ID:      id,
		Name:    name,
		Scope:   scope,
		Range:   rng,
		Node:    node,
		Binding: target,
	})
	g.byNode[node] = id
	if target.IsValid() {
		g.MarkUsed(target, id)
	}
	return id
}

// MarkUsed records that ref uses binding. Marking twice is a no-op.
func (g *Graph) MarkUsed(binding BindingID, ref ReferenceID) {
	b := g.Binding(binding)
	if b == nil {
		return
	}
	for _, r := range b.references {
		if r == ref {
			return
		}
	}
	b.references = append(b.references, ref)
}

// ReferenceAt returns the reference recorded for a syntax node.
func (g *Graph) ReferenceAt(node int) *Reference {
	return g.Reference(g.byNode[node])
}

// Unresolved returns references that resolved to no binding, in source
// order.
func (g *Graph) Unresolved() []Reference {
	var out []Reference
	for i := 1; i < len(g.references); i++ {
		if !g.references[i].Binding.IsValid() {
			out = append(out, g.references[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Range.Start < out[j].Range.Start })
	return out
}

// Bindings returns the bindings declared in scope in declaration order.
func (g *Graph) Bindings(scope ScopeID) []*Binding {
	s := g.Scope(scope)
	if s == nil {
		return nil
	}
	out := make([]*Binding, 0, len(s.bindings))
	for _, id := range s.bindings {
		out = append(out, &g.bindings[id])
	}
	return out
}

// DefaultUnusedKinds are the kinds Unused reports when none are given.
// Parameters and definitions are only reported when asked for.
var DefaultUnusedKinds = []BindingKind{
	KindImport,
	KindSubmoduleImport,
	KindFromImport,
	KindAssignment,
	KindAnnotation,
}

// Unused returns the unused bindings of scope with one of the given kinds,
// in declaration order. Without kinds, DefaultUnusedKinds apply.
func (g *Graph) Unused(scope ScopeID, kinds ...BindingKind) []*Binding {
	if len(kinds) == 0 {
		kinds = DefaultUnusedKinds
	}
	var out []*Binding
	for _, b := range g.Bindings(scope) {
		if b.Used() || !kindIn(b.Kind, kinds) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Shadowed returns pairs of (shadowed, shadowing) bindings in scope.
func (g *Graph) Shadowed(scope ScopeID) [][2]*Binding {
	var out [][2]*Binding
	for _, b := range g.Bindings(scope) {
		if prev := g.Binding(b.Shadows); prev != nil && prev.Scope == scope {
			out = append(out, [2]*Binding{prev, b})
		}
	}
	return out
}

func kindIn(k BindingKind, kinds []BindingKind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// SetStarImport marks scope as containing a wildcard import.
func (g *Graph) SetStarImport(scope ScopeID) {
	if s := g.Scope(scope); s != nil {
		s.starImport = true
	}
}

// HasStarImport reports whether scope or one of its ancestors contains a
// wildcard import.
func (g *Graph) HasStarImport(scope ScopeID) bool {
	for cur := scope; cur.IsValid(); cur = g.scopes[cur].Parent {
		if g.scopes[cur].starImport {
			return true
		}
	}
	return false
}

// SetUsesLocals marks scope as calling locals(), which reads every local.
func (g *Graph) SetUsesLocals(scope ScopeID) {
	if s := g.Scope(scope); s != nil {
		s.usesLocals = true
	}
}

func (g *Graph) UsesLocals(scope ScopeID) bool {
	s := g.Scope(scope)
	return s != nil && s.usesLocals
}

// AddExport records a name listed in __all__.
func (g *Graph) AddExport(name string, rng types.Range) {
	g.exports = append(g.exports, Export{Name: normalize(name), Range: rng})
}

// Exports returns the names listed in __all__.
func (g *Graph) Exports() []Export { return g.exports }

// IsExported reports whether name is listed in __all__.
func (g *Graph) IsExported(name string) bool {
	name = normalize(name)
	for _, e := range g.exports {
		if e.Name == name {
			return true
		}
	}
	return false
}

// IsDummy reports whether name is conventionally unused, i.e. starts with an
// underscore.
func IsDummy(name string) bool {
	return len(name) > 0 && name[0] == '_'
}
