package scanner

// typeKeywords is the set of tokens that may introduce a function definition.
// A function-name candidate is only accepted when the most recent type-like
// token is one of these or a pointer marker.
var typeKeywords = map[string]struct{}{
	"void": {}, "int": {}, "char": {}, "float": {}, "double": {},
	"long": {}, "short": {}, "unsigned": {}, "signed": {},
	"struct": {}, "enum": {},
	"static": {}, "inline": {}, "extern": {}, "auto": {}, "register": {},
	"const": {}, "volatile": {},
}

// nonNameKeywords can precede '(' but never name a function.
var nonNameKeywords = map[string]struct{}{
	"if": {}, "else": {}, "for": {}, "while": {}, "do": {}, "switch": {},
	"case": {}, "return": {}, "sizeof": {}, "goto": {}, "typedef": {},
	"union": {}, "default": {}, "break": {}, "continue": {},
}

// trailingQualifiers may sit between a parameter list and the body of a
// C++ member function definition.
var trailingQualifiers = map[string]struct{}{
	"const": {}, "noexcept": {}, "override": {}, "final": {},
}

// pointerMarker is the type-like token recorded for '*'.
const pointerMarker = "*"

// IsTypeKeyword reports whether word belongs to the function type-keyword set.
func IsTypeKeyword(word string) bool {
	_, ok := typeKeywords[word]
	return ok
}

// canNameFunction reports whether word may be taken as a function name.
func canNameFunction(word string) bool {
	if IsTypeKeyword(word) {
		return false
	}
	_, reserved := nonNameKeywords[word]
	return !reserved
}
