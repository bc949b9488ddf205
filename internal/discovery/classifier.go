package discovery

import (
	"path/filepath"
	"strings"
)

// Association binds a file suffix to a host language.
type Association struct {
	Suffix   string
	Language Language
}

// Associations is the fixed suffix table. Suffixes are case-sensitive, so
// .sqc is C and .sqC is C++.
var Associations = []Association{
	{Suffix: ".sqc", Language: LanguageC},
	{Suffix: ".sqC", Language: LanguageCPP},
	{Suffix: ".sqx", Language: LanguageCPP},
}

// ClassifyFile determines the host language from a file name
func ClassifyFile(filename string) Language {
	for _, a := range Associations {
		if strings.HasSuffix(filename, a.Suffix) {
			return a.Language
		}
	}
	return LanguageUnknown
}

// ClassifyPath determines the host language from a full path
func ClassifyPath(path string) Language {
	return ClassifyFile(filepath.Base(path))
}

// IsEmbeddedSQL returns true if the file has an associated suffix
func IsEmbeddedSQL(filename string) bool {
	return ClassifyFile(filename) != LanguageUnknown
}
