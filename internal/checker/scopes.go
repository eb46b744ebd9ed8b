package checker

import (
	"github.com/gnolang/plint/internal/binding"
	"github.com/gnolang/plint/internal/syntax"
)

// visitFunction binds the function name and visits the parts evaluated at
// definition time. The body is deferred.
func (c *checker) visitFunction(n *syntax.Node) {
	name := n.ChildByField("name")
	c.visitParameterDefaults(n.ChildByField("parameters"))
	c.visit(n.ChildByField("return_type"))

	scope := c.graph.NewScope(binding.ScopeFunction, c.scope, n.ID, c.tree.Text(name))
	if name != nil {
		b := c.newBinding(name, c.tree.Text(name), binding.KindFunctionDefinition)
		c.graph.Declare(c.scope, b)
	}
	c.deferred = append(c.deferred, deferredBody{node: n, scope: scope})
}

func (c *checker) visitLambda(n *syntax.Node) {
	c.visitParameterDefaults(n.ChildByField("parameters"))
	scope := c.graph.NewScope(binding.ScopeLambda, c.scope, n.ID, "")
	c.deferred = append(c.deferred, deferredBody{node: n, scope: scope})
}

// visitDeferred runs a function or lambda body in its own scope.
func (c *checker) visitDeferred(d deferredBody) {
	prev := c.scope
	c.scope = d.scope
	defer func() { c.scope = prev }()

	c.enter(d.node)
	c.bindParameters(d.node.ChildByField("parameters"))
	body := d.node.ChildByField("body")
	if d.node.Kind == syntax.KindLambda || body == nil {
		c.visit(body)
	} else {
		// The block itself is not visited as a node of the enclosing scope.
		c.enter(body)
		c.visitAll(body.Children)
		c.leave(body)
	}
	c.leave(d.node)
}

// visitParameterDefaults visits default values and annotations, which are
// evaluated in the enclosing scope.
func (c *checker) visitParameterDefaults(params *syntax.Node) {
	if params == nil {
		return
	}
	for _, p := range params.NamedChildren() {
		switch p.Kind {
		case syntax.KindDefaultParameter, syntax.KindTypedDefaultParameter, syntax.KindTypedParameter:
			c.enter(p)
			c.visit(p.ChildByField("type"))
			c.visit(p.ChildByField("value"))
			c.leave(p)
		}
	}
}

// bindParameters binds every parameter name in the current scope.
func (c *checker) bindParameters(params *syntax.Node) {
	if params == nil {
		return
	}
	for _, p := range params.NamedChildren() {
		if id := parameterName(p); id != nil {
			c.declareName(id, binding.KindParameter)
			c.enter(id)
			c.leave(id)
		}
	}
}

// parameterName returns the identifier a parameter binds.
func parameterName(p *syntax.Node) *syntax.Node {
	switch p.Kind {
	case syntax.KindIdentifier:
		return p
	case syntax.KindDefaultParameter, syntax.KindTypedDefaultParameter:
		return parameterName(p.ChildByField("name"))
	case syntax.KindTypedParameter, syntax.KindListSplatPattern, syntax.KindDictionarySplatPattern:
		for _, child := range p.NamedChildren() {
			if child.Field == "type" {
				continue
			}
			return parameterName(child)
		}
	}
	return nil
}

// visitClass runs the class body immediately in a class scope and binds the
// class name once the body is complete.
func (c *checker) visitClass(n *syntax.Node) {
	c.visit(n.ChildByField("superclasses"))

	name := n.ChildByField("name")
	scope := c.graph.NewScope(binding.ScopeClass, c.scope, n.ID, c.tree.Text(name))
	prev := c.scope
	c.scope = scope
	c.enter(n)
	if body := n.ChildByField("body"); body != nil {
		c.enter(body)
		c.visitAll(body.Children)
		c.leave(body)
	}
	c.leave(n)
	c.scope = prev

	if name != nil {
		c.graph.Declare(c.scope, c.newBinding(name, c.tree.Text(name), binding.KindClassDefinition))
	}
}

// visitComprehension evaluates the first iterable in the enclosing scope and
// everything else in a new comprehension or generator scope.
func (c *checker) visitComprehension(n *syntax.Node) {
	var clauses []*syntax.Node
	for _, child := range n.Children {
		if child.Is(syntax.KindForInClause, syntax.KindIfClause) {
			clauses = append(clauses, child)
		}
	}
	if len(clauses) > 0 && clauses[0].Kind == syntax.KindForInClause {
		c.visitAll(clauses[0].ChildrenByField("right"))
	}

	kind := binding.ScopeComprehension
	if n.Kind == syntax.KindGeneratorExpression {
		kind = binding.ScopeGenerator
	}
	scope := c.graph.NewScope(kind, c.scope, n.ID, "")
	prev := c.scope
	c.scope = scope
	c.enter(n)
	for i, clause := range clauses {
		c.enter(clause)
		if clause.Kind == syntax.KindForInClause {
			if i > 0 {
				c.visitAll(clause.ChildrenByField("right"))
			}
			c.bindTarget(clause.ChildByField("left"), binding.KindLoopVariable)
		} else {
			c.visitAll(clause.Children)
		}
		c.leave(clause)
	}
	c.visit(n.ChildByField("body"))
	c.leave(n)
	c.scope = prev
}

// visitPattern visits a match-statement pattern, binding capture names and
// loading value patterns and class names.
func (c *checker) visitPattern(n *syntax.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case syntax.KindDottedName:
		ids := n.NamedChildren()
		if len(ids) == 1 && !(n.Parent.Is(syntax.KindClassPattern) && n.Index == 0) {
			if c.tree.Text(ids[0]) != "_" {
				c.bindTarget(ids[0], binding.KindPatternCapture)
			}
			return
		}
		c.visit(n)
	case syntax.KindClassPattern:
		for _, child := range n.Children {
			if child.Kind == syntax.KindDottedName && child.Index == 0 {
				c.visit(child)
				continue
			}
			c.visitPattern(child)
		}
	case syntax.KindKeywordPattern:
		for i, child := range n.NamedChildren() {
			if i == 0 && child.Kind == syntax.KindIdentifier {
				continue
			}
			c.visitPattern(child)
		}
	case syntax.KindSplatPattern:
		for _, child := range n.NamedChildren() {
			if child.Kind == syntax.KindIdentifier && c.tree.Text(child) != "_" {
				c.bindTarget(child, binding.KindPatternCapture)
			}
		}
	case syntax.KindAsPattern:
		for _, child := range n.Children {
			if child.Field == "alias" {
				c.bindTarget(child, binding.KindPatternCapture)
				continue
			}
			c.visitPattern(child)
		}
	case syntax.KindIdentifier:
		c.bindTarget(n, binding.KindPatternCapture)
	default:
		if n.Kind.Literal() {
			c.visit(n)
			return
		}
		for _, child := range n.Children {
			c.visitPattern(child)
		}
	}
}
