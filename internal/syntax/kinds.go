package syntax

// Kind is the grammar type of a node, as named by the tree-sitter python
// grammar.
type Kind string

const (
	KindModule  Kind = "module"
	KindBlock   Kind = "block"
	KindComment Kind = "comment"
	KindError   Kind = "ERROR"

	// imports
	KindImport         Kind = "import_statement"
	KindImportFrom     Kind = "import_from_statement"
	KindFutureImport   Kind = "future_import_statement"
	KindAliasedImport  Kind = "aliased_import"
	KindDottedName     Kind = "dotted_name"
	KindRelativeImport Kind = "relative_import"
	KindImportPrefix   Kind = "import_prefix"
	KindWildcardImport Kind = "wildcard_import"

	// statements
	KindExpressionStatement Kind = "expression_statement"
	KindAssignment          Kind = "assignment"
	KindAugmentedAssignment Kind = "augmented_assignment"
	KindFunctionDefinition  Kind = "function_definition"
	KindClassDefinition     Kind = "class_definition"
	KindDecoratedDefinition Kind = "decorated_definition"
	KindDecorator           Kind = "decorator"
	KindGlobalStatement     Kind = "global_statement"
	KindNonlocalStatement   Kind = "nonlocal_statement"
	KindForStatement        Kind = "for_statement"
	KindWhileStatement      Kind = "while_statement"
	KindIfStatement         Kind = "if_statement"
	KindTryStatement        Kind = "try_statement"
	KindWithStatement       Kind = "with_statement"
	KindWithClause          Kind = "with_clause"
	KindWithItem            Kind = "with_item"
	KindExceptClause        Kind = "except_clause"
	KindDeleteStatement     Kind = "delete_statement"
	KindPassStatement       Kind = "pass_statement"
	KindReturnStatement     Kind = "return_statement"

	// parameters
	KindParameters               Kind = "parameters"
	KindLambdaParameters         Kind = "lambda_parameters"
	KindTypedParameter           Kind = "typed_parameter"
	KindDefaultParameter         Kind = "default_parameter"
	KindTypedDefaultParameter    Kind = "typed_default_parameter"
	KindListSplatPattern         Kind = "list_splat_pattern"
	KindDictionarySplatPattern   Kind = "dictionary_splat_pattern"
	KindKeywordSeparator         Kind = "keyword_separator"
	KindPositionalSeparator      Kind = "positional_separator"
	KindType                     Kind = "type"
	KindLambda                   Kind = "lambda"
	KindListComprehension        Kind = "list_comprehension"
	KindSetComprehension         Kind = "set_comprehension"
	KindDictionaryComprehension  Kind = "dictionary_comprehension"
	KindGeneratorExpression      Kind = "generator_expression"
	KindForInClause              Kind = "for_in_clause"
	KindIfClause                 Kind = "if_clause"
	KindAsPattern                Kind = "as_pattern"
	KindAsPatternTarget          Kind = "as_pattern_target"
	KindNamedExpression          Kind = "named_expression"
	KindPatternList              Kind = "pattern_list"
	KindTuplePattern             Kind = "tuple_pattern"
	KindListPattern              Kind = "list_pattern"
	KindExpressionList           Kind = "expression_list"
	KindParenthesizedExpression  Kind = "parenthesized_expression"
	KindListSplat                Kind = "list_splat"
	KindDictionarySplat          Kind = "dictionary_splat"

	// expressions
	KindIdentifier         Kind = "identifier"
	KindAttribute          Kind = "attribute"
	KindSubscript          Kind = "subscript"
	KindCall               Kind = "call"
	KindArgumentList       Kind = "argument_list"
	KindKeywordArgument    Kind = "keyword_argument"
	KindComparisonOperator Kind = "comparison_operator"
	KindString             Kind = "string"
	KindStringStart        Kind = "string_start"
	KindStringEnd          Kind = "string_end"
	KindInterpolation      Kind = "interpolation"
	KindConcatenatedString Kind = "concatenated_string"
	KindTuple              Kind = "tuple"
	KindList               Kind = "list"
	KindSet                Kind = "set"
	KindDictionary         Kind = "dictionary"
	KindPair               Kind = "pair"
	KindInteger            Kind = "integer"
	KindFloat              Kind = "float"
	KindNone               Kind = "none"
	KindTrue               Kind = "true"
	KindFalse              Kind = "false"
	KindEllipsis           Kind = "ellipsis"
	KindStringContent      Kind = "string_content"

	// match statements
	KindCaseClause     Kind = "case_clause"
	KindCasePattern    Kind = "case_pattern"
	KindClassPattern   Kind = "class_pattern"
	KindKeywordPattern Kind = "keyword_pattern"
	KindSplatPattern   Kind = "splat_pattern"
)

// ScopeIntroducing reports whether nodes of this kind open a new lexical
// scope.
func (k Kind) ScopeIntroducing() bool {
	switch k {
	case KindModule, KindFunctionDefinition, KindClassDefinition, KindLambda,
		KindListComprehension, KindSetComprehension, KindDictionaryComprehension,
		KindGeneratorExpression:
		return true
	}
	return false
}

// Comprehension reports whether the kind is one of the comprehension forms.
func (k Kind) Comprehension() bool {
	switch k {
	case KindListComprehension, KindSetComprehension, KindDictionaryComprehension,
		KindGeneratorExpression:
		return true
	}
	return false
}

// Literal reports whether the kind is a literal without side effects.
func (k Kind) Literal() bool {
	switch k {
	case KindString, KindConcatenatedString, KindInteger, KindFloat, KindNone,
		KindTrue, KindFalse, KindEllipsis:
		return true
	}
	return false
}
