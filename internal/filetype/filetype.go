// Package filetype maps file paths to language identifiers.
//
// The language identifier is the key used to look up a language server in
// the configuration and is sent verbatim in textDocument/didOpen. An unknown
// extension yields the zero FileType, which has no language server binding.
package filetype

import (
	"path/filepath"
	"strings"
)

// FileType describes the detected type of a file.
type FileType struct {
	// Name is the human-readable filetype name shown in the status line.
	Name string

	// LanguageID is the LSP language identifier (e.g. "go", "rust").
	// Empty when the filetype is unknown.
	LanguageID string
}

// Known returns true if the filetype was recognized.
func (ft FileType) Known() bool {
	return ft.LanguageID != ""
}

// Detect returns the FileType for a path based on its extension.
func Detect(path string) FileType {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".go":
		return FileType{Name: "Go", LanguageID: "go"}
	case ".rs":
		return FileType{Name: "Rust", LanguageID: "rust"}
	case ".ts":
		return FileType{Name: "TypeScript", LanguageID: "typescript"}
	case ".tsx":
		return FileType{Name: "TypeScript React", LanguageID: "typescriptreact"}
	case ".js":
		return FileType{Name: "JavaScript", LanguageID: "javascript"}
	case ".jsx":
		return FileType{Name: "JavaScript React", LanguageID: "javascriptreact"}
	case ".py":
		return FileType{Name: "Python", LanguageID: "python"}
	case ".rb":
		return FileType{Name: "Ruby", LanguageID: "ruby"}
	case ".java":
		return FileType{Name: "Java", LanguageID: "java"}
	case ".c":
		return FileType{Name: "C", LanguageID: "c"}
	case ".cpp", ".cc", ".cxx":
		return FileType{Name: "C++", LanguageID: "cpp"}
	case ".h", ".hpp":
		return FileType{Name: "C++", LanguageID: "cpp"}
	case ".cs":
		return FileType{Name: "C#", LanguageID: "csharp"}
	case ".zig":
		return FileType{Name: "Zig", LanguageID: "zig"}
	case ".lua":
		return FileType{Name: "Lua", LanguageID: "lua"}
	case ".sh", ".bash":
		return FileType{Name: "Shell", LanguageID: "shellscript"}
	case ".json":
		return FileType{Name: "JSON", LanguageID: "json"}
	case ".toml":
		return FileType{Name: "TOML", LanguageID: "toml"}
	case ".yaml", ".yml":
		return FileType{Name: "YAML", LanguageID: "yaml"}
	case ".md":
		return FileType{Name: "Markdown", LanguageID: "markdown"}
	default:
		return FileType{}
	}
}
