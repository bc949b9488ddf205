package discovery

import "time"

// DiscoveredFile represents an embedded-SQL source found during filesystem traversal
type DiscoveredFile struct {
	Path         string    // Absolute path to file
	RelativePath string    // Path relative to search root, slash separated
	Language     Language  // Host language of the file
	ModTime      time.Time // Last modification time
}

// Language is the host language of an embedded-SQL source file
type Language int

const (
	LanguageUnknown Language = iota
	LanguageC                // *.sqc
	LanguageCPP              // *.sqC, *.sqx
)

// String returns a string representation of Language
func (l Language) String() string {
	switch l {
	case LanguageC:
		return "c"
	case LanguageCPP:
		return "cpp"
	default:
		return "unknown"
	}
}

// DefaultPatterns select every associated extension anywhere below the root.
var DefaultPatterns = []string{"**/*.sqc", "**/*.sqC", "**/*.sqx"}
