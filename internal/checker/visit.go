package checker

import (
	"strings"

	"github.com/gnolang/plint/internal/binding"
	"github.com/gnolang/plint/internal/syntax"
)

func (c *checker) visit(n *syntax.Node) {
	if n == nil {
		return
	}
	switch {
	case n.Kind == syntax.KindComment:
		return
	case n.Kind == syntax.KindFunctionDefinition:
		c.visitFunction(n)
		return
	case n.Kind == syntax.KindLambda:
		c.visitLambda(n)
		return
	case n.Kind == syntax.KindClassDefinition:
		c.visitClass(n)
		return
	case n.Kind.Comprehension():
		c.visitComprehension(n)
		return
	case n.Kind == syntax.KindIdentifier:
		c.graph.AddReference(c.scope, c.tree.Text(n), n.Range(), n.ID)
		c.enter(n)
		c.leave(n)
		return
	}

	c.enter(n)
	c.walk(n)
	c.leave(n)
}

func (c *checker) visitAll(nodes []*syntax.Node) {
	for _, n := range nodes {
		c.visit(n)
	}
}

// walk visits the children of n, binding names where n introduces them.
func (c *checker) walk(n *syntax.Node) {
	switch n.Kind {
	case syntax.KindImport, syntax.KindImportFrom, syntax.KindFutureImport:
		c.bindImports(n)
	case syntax.KindAssignment:
		c.visitAssignment(n)
	case syntax.KindAugmentedAssignment:
		c.visitAugmentedAssignment(n)
	case syntax.KindForStatement:
		c.visitAll(n.ChildrenByField("right"))
		c.bindTarget(n.ChildByField("left"), binding.KindLoopVariable)
		c.visit(n.ChildByField("body"))
		c.visit(n.ChildByField("alternative"))
	case syntax.KindAsPattern:
		kind := binding.KindWithItem
		if n.Ancestor(syntax.KindExceptClause, syntax.KindWithItem, syntax.KindCaseClause).Is(syntax.KindExceptClause) {
			kind = binding.KindExceptHandler
		}
		for _, child := range n.Children {
			if child.Field == "alias" {
				c.bindTarget(child, kind)
				continue
			}
			c.visit(child)
		}
	case syntax.KindExceptClause:
		c.walkAliased(n, binding.KindExceptHandler)
	case syntax.KindWithItem:
		c.walkAliased(n, binding.KindWithItem)
	case syntax.KindNamedExpression:
		c.visit(n.ChildByField("value"))
		c.bindTarget(n.ChildByField("name"), binding.KindNamedExpression)
	case syntax.KindGlobalStatement:
		c.declareGlobals(n)
	case syntax.KindNonlocalStatement:
		c.declareNonlocals(n)
	case syntax.KindDeleteStatement:
		c.visitDelete(n)
	case syntax.KindAttribute:
		c.visit(n.ChildByField("object"))
	case syntax.KindKeywordArgument:
		c.visit(n.ChildByField("value"))
	case syntax.KindDottedName:
		if ids := n.NamedChildren(); len(ids) > 0 {
			c.visit(ids[0])
		}
	case syntax.KindCall:
		c.visitCall(n)
	case syntax.KindCaseClause:
		for _, child := range n.Children {
			if child.Kind == syntax.KindCasePattern {
				c.visitPattern(child)
				continue
			}
			c.visit(child)
		}
	default:
		c.visitAll(n.Children)
	}
}

// walkAliased visits the children of n, binding the target that follows an
// `as` keyword or sits in the alias field.
func (c *checker) walkAliased(n *syntax.Node, kind binding.BindingKind) {
	afterAs := false
	for _, child := range n.Children {
		switch {
		case child.Field == "alias", afterAs && child.Named:
			c.bindTarget(child, kind)
			afterAs = false
		case !child.Named && c.tree.Text(child) == "as":
			afterAs = true
		default:
			c.visit(child)
		}
	}
}

// statementOf returns the statement holding n and the block holding that
// statement. Decorated definitions are their own statement.
func statementOf(n *syntax.Node) (stmt, block *syntax.Node) {
	stmt = n.Statement()
	if stmt == nil {
		return n, n
	}
	return stmt, stmt.Parent
}

func (c *checker) newBinding(n *syntax.Node, name string, kind binding.BindingKind) binding.Binding {
	stmt, block := statementOf(n)
	return binding.Binding{
		Name:      name,
		Kind:      kind,
		Range:     n.Range(),
		Statement: stmt.Range(),
		Node:      n.ID,
		StmtNode:  stmt.ID,
		Block:     block.ID,
	}
}

// declareName binds the identifier n in the current scope. Named
// expressions bind in the closest enclosing non-comprehension scope.
func (c *checker) declareName(n *syntax.Node, kind binding.BindingKind) binding.BindingID {
	scope := c.scope
	if kind == binding.KindNamedExpression {
		for s := c.graph.Scope(scope); s != nil && s.Kind.Comprehension(); s = c.graph.Scope(s.Parent) {
			scope = s.Parent
		}
	}
	return c.graph.Declare(scope, c.newBinding(n, c.tree.Text(n), kind))
}

func unpacked(kind binding.BindingKind) binding.BindingKind {
	if kind == binding.KindAssignment {
		return binding.KindUnpackedAssignment
	}
	return kind
}

// bindTarget binds every name stored by an assignment target. Attribute
// and subscript targets load their object instead.
func (c *checker) bindTarget(n *syntax.Node, kind binding.BindingKind) {
	if n == nil {
		return
	}
	switch n.Kind {
	case syntax.KindIdentifier:
		c.declareName(n, kind)
		c.enter(n)
		c.leave(n)
	case syntax.KindPatternList, syntax.KindTuplePattern, syntax.KindListPattern,
		syntax.KindTuple, syntax.KindList, syntax.KindExpressionList:
		c.enter(n)
		for _, child := range n.NamedChildren() {
			c.bindTarget(child, unpacked(kind))
		}
		c.leave(n)
	case syntax.KindParenthesizedExpression, syntax.KindListSplatPattern,
		syntax.KindListSplat, syntax.KindAsPatternTarget:
		c.enter(n)
		for _, child := range n.NamedChildren() {
			c.bindTarget(child, kind)
		}
		c.leave(n)
	default:
		c.visit(n)
	}
}

func (c *checker) visitAssignment(n *syntax.Node) {
	right := n.ChildByField("right")
	typ := n.ChildByField("type")
	c.visit(right)
	c.visit(typ)

	left := n.ChildByField("left")
	if c.scope == c.graph.Module() && left.Is(syntax.KindIdentifier) && c.tree.Text(left) == "__all__" {
		c.collectExports(right)
	}
	kind := binding.KindAssignment
	if right == nil && typ != nil {
		kind = binding.KindAnnotation
	}
	c.bindTarget(left, kind)
}

func (c *checker) visitAugmentedAssignment(n *syntax.Node) {
	right := n.ChildByField("right")
	c.visit(right)
	left := n.ChildByField("left")
	if !left.Is(syntax.KindIdentifier) {
		c.visit(left)
		return
	}
	if c.scope == c.graph.Module() && c.tree.Text(left) == "__all__" {
		c.collectExports(right)
	}
	c.graph.AddReference(c.scope, c.tree.Text(left), left.Range(), left.ID)
	c.declareName(left, binding.KindAugmentedAssignment)
	c.enter(left)
	c.leave(left)
}

func (c *checker) visitCall(n *syntax.Node) {
	fn := n.ChildByField("function")
	switch {
	case fn.Is(syntax.KindIdentifier) && c.tree.Text(fn) == "locals":
		c.graph.SetUsesLocals(c.scope)
	case fn.Is(syntax.KindAttribute) && c.scope == c.graph.Module():
		obj := fn.ChildByField("object")
		attr := c.tree.Text(fn.ChildByField("attribute"))
		if obj.Is(syntax.KindIdentifier) && c.tree.Text(obj) == "__all__" && (attr == "extend" || attr == "append") {
			if args := n.ChildByField("arguments"); args != nil {
				for _, arg := range args.NamedChildren() {
					c.collectExports(arg)
				}
			}
		}
	}
	c.visitAll(n.Children)
}

// collectExports records the string literals of an __all__ value.
func (c *checker) collectExports(n *syntax.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case syntax.KindString:
		if name, ok := c.tree.StringLiteral(n); ok {
			c.graph.AddExport(name, n.Range())
		}
	case syntax.KindList, syntax.KindTuple, syntax.KindParenthesizedExpression:
		for _, child := range n.NamedChildren() {
			c.collectExports(child)
		}
	}
}

func (c *checker) visitDelete(n *syntax.Node) {
	for _, target := range n.NamedChildren() {
		c.deleteTarget(target)
	}
}

func (c *checker) deleteTarget(n *syntax.Node) {
	switch n.Kind {
	case syntax.KindIdentifier:
		c.visit(n)
		c.graph.Unbind(c.scope, c.tree.Text(n))
	case syntax.KindExpressionList, syntax.KindTuple, syntax.KindList, syntax.KindParenthesizedExpression:
		for _, child := range n.NamedChildren() {
			c.deleteTarget(child)
		}
	default:
		c.visit(n)
	}
}

func (c *checker) declareGlobals(n *syntax.Node) {
	for _, id := range n.NamedChildren() {
		if !id.Is(syntax.KindIdentifier) {
			continue
		}
		if c.scope != c.graph.Module() {
			c.graph.DeclareGlobal(c.scope, c.newBinding(id, c.tree.Text(id), binding.KindGlobal))
		}
		c.enter(id)
		c.leave(id)
	}
}

func (c *checker) declareNonlocals(n *syntax.Node) {
	for _, id := range n.NamedChildren() {
		if !id.Is(syntax.KindIdentifier) {
			continue
		}
		c.graph.DeclareNonlocal(c.scope, c.newBinding(id, c.tree.Text(id), binding.KindNonlocal))
		c.enter(id)
		c.leave(id)
	}
}

// bindImports binds the names introduced by an import statement.
func (c *checker) bindImports(n *syntax.Node) {
	module := ""
	kind := binding.KindImport
	switch n.Kind {
	case syntax.KindImportFrom:
		module = c.tree.Text(n.ChildByField("module_name"))
		kind = binding.KindFromImport
		if n.FirstChildOfKind(syntax.KindWildcardImport) != nil {
			c.graph.SetStarImport(c.scope)
			return
		}
	case syntax.KindFutureImport:
		module = "__future__"
		kind = binding.KindFutureImport
	}

	for _, member := range n.ChildrenByField("name") {
		var (
			path  string
			alias *syntax.Node
		)
		switch member.Kind {
		case syntax.KindAliasedImport:
			path = c.tree.Text(member.ChildByField("name"))
			alias = member.ChildByField("alias")
		case syntax.KindDottedName:
			path = c.tree.Text(member)
		default:
			continue
		}
		path = compactDotted(path)

		qualified := path
		if module != "" {
			qualified = strings.TrimSuffix(module, ".") + "." + path
			if strings.HasSuffix(module, ".") {
				qualified = module + path
			}
		}

		name := path
		bkind := kind
		explicit := false
		if alias != nil {
			name = c.tree.Text(alias)
			explicit = name == path
		} else if kind == binding.KindImport && strings.Contains(path, ".") {
			name = path[:strings.IndexByte(path, '.')]
			bkind = binding.KindSubmoduleImport
		}

		b := c.newBinding(member, name, bkind)
		b.QualifiedName = qualified
		b.Explicit = explicit
		c.graph.Declare(c.scope, b)
	}
}

// compactDotted strips the whitespace a dotted name may contain.
func compactDotted(s string) string {
	if !strings.ContainsAny(s, " \t\\\n") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ' ', '\t', '\\', '\n', '\r':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
