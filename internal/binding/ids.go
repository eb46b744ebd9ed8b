package binding

// ScopeID identifies a scope in the graph arena.
type ScopeID uint32

// NoScope marks the absence of a scope reference.
const NoScope ScopeID = 0

func (id ScopeID) IsValid() bool { return id != NoScope }

// BindingID identifies a binding in the graph arena.
type BindingID uint32

// NoBinding marks the absence of a binding reference.
const NoBinding BindingID = 0

func (id BindingID) IsValid() bool { return id != NoBinding }

// ReferenceID identifies a name reference in the graph arena.
type ReferenceID uint32

const NoReference ReferenceID = 0

func (id ReferenceID) IsValid() bool { return id != NoReference }

// ScopeKind classifies lexical scopes.
type ScopeKind uint8

const (
	ScopeModule ScopeKind = iota
	ScopeClass
	ScopeFunction
	ScopeLambda
	ScopeComprehension
	ScopeGenerator
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeModule:
		return "module"
	case ScopeClass:
		return "class"
	case ScopeFunction:
		return "function"
	case ScopeLambda:
		return "lambda"
	case ScopeComprehension:
		return "comprehension"
	case ScopeGenerator:
		return "generator"
	default:
		return "unknown"
	}
}

// Comprehension reports whether the scope belongs to a comprehension or a
// generator expression. Both resolve names the same way.
func (k ScopeKind) Comprehension() bool {
	return k == ScopeComprehension || k == ScopeGenerator
}

// BindingKind classifies how a name was bound.
type BindingKind uint8

const (
	KindBuiltin BindingKind = iota
	KindImport
	KindSubmoduleImport
	KindFromImport
	KindFutureImport
	KindAssignment
	KindAugmentedAssignment
	KindAnnotation
	KindNamedExpression
	KindLoopVariable
	KindWithItem
	KindExceptHandler
	KindParameter
	KindFunctionDefinition
	KindClassDefinition
	KindGlobal
	KindNonlocal
	KindUnpackedAssignment
	KindPatternCapture
)

func (k BindingKind) String() string {
	switch k {
	case KindBuiltin:
		return "builtin"
	case KindImport:
		return "import"
	case KindSubmoduleImport:
		return "submodule import"
	case KindFromImport:
		return "from import"
	case KindFutureImport:
		return "future import"
	case KindAssignment:
		return "assignment"
	case KindAugmentedAssignment:
		return "augmented assignment"
	case KindAnnotation:
		return "annotation"
	case KindNamedExpression:
		return "named expression"
	case KindLoopVariable:
		return "loop variable"
	case KindWithItem:
		return "with item"
	case KindExceptHandler:
		return "exception handler"
	case KindParameter:
		return "parameter"
	case KindFunctionDefinition:
		return "function definition"
	case KindClassDefinition:
		return "class definition"
	case KindGlobal:
		return "global"
	case KindNonlocal:
		return "nonlocal"
	case KindUnpackedAssignment:
		return "unpacked assignment"
	case KindPatternCapture:
		return "pattern capture"
	default:
		return "unknown"
	}
}

// IsImport reports whether the kind binds a module or a module member.
func (k BindingKind) IsImport() bool {
	switch k {
	case KindImport, KindSubmoduleImport, KindFromImport, KindFutureImport:
		return true
	}
	return false
}

// IsDefinition reports whether the kind is an import, a function or a
// class, the kinds that may be redefined while unused.
func (k BindingKind) IsDefinition() bool {
	return k.IsImport() || k == KindFunctionDefinition || k == KindClassDefinition
}
