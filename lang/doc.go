// Package lang implements the markup template language: a markup parser, an
// expression tokenizer and AST builder, a closed value algebra, and a
// tree-walking evaluator that serializes values to HTML.
//
// # Markup
//
// A template is HTML-like markup with embedded {expression} blocks:
//
//	<ul class="items">
//	  {for item in items { <li>{item.name}</li> }}
//	</ul>
//
// Attribute values are quoted text, {expression} or absent (a bare boolean
// attribute). Elements whose tag names a registered template are components;
// resolving them is the job of the [Host].
//
// # Grammar
//
// Informal EBNF of the expression language, lowest precedence first:
//
//	Expr     → Or
//	Or       → And ('or' And)*
//	And      → Eq ('and' Eq)*
//	Eq       → Rel (('==' | '!=') Rel)*
//	Rel      → Add (('>=' | '<=' | '>' | '<') Add)*
//	Add      → Mul (('+' | '-') Mul)*
//	Mul      → Postfix (('*' | '/') Postfix)*
//	Postfix  → Primary ('.' Ident | '[' Expr ']' | '(' Args ')')*
//	Args     → (Expr (',' Expr)*)? (',' Ident '=' Expr)*
//	Primary  → Int | String | 'true' | 'false' | Ident | '(' Expr ')'
//	         | '[' (Expr (',' Expr)*)? ']' | Markup
//	         | 'if' Expr Block ('else' ('if' ... | Block))?
//	         | 'for' Ident 'in' Expr Block
//	Block    → '{' Expr '}'
//
// Source flows through three stages: [Tokenize] produces a [SyntaxToken]
// tree, [Build] folds it into an [AST], and [Evaluate] computes a [Value].
// [Compile] and [CompileMarkup] cache the first two stages by source hash.
//
// # Values
//
// Every runtime value is one of Bool, Int, Str, UniqueID, Markup, List or
// Dict. Values are immutable. [FromNative] and [ToNative] convert between
// values and ordinary Go values at the host boundary.
package lang
