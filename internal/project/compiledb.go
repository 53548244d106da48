package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SourceFile is one translation unit taken from a compilation database.
type SourceFile struct {
	Name      string   `yaml:"name"`
	Path      string   `yaml:"path"`
	Directory string   `yaml:"directory"`
	Includes  []string `yaml:"includes,omitempty"`
	Defines   []string `yaml:"defines,omitempty"`
}

type compileCommand struct {
	Directory string   `json:"directory"`
	Command   string   `json:"command"`
	Arguments []string `json:"arguments"`
	File      string   `json:"file"`
}

// ParseCompileCommands reads a compile_commands.json and returns the
// deduplicated source files with their include paths and defines.
func ParseCompileCommands(path string) ([]SourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read compilation database: %w", err)
	}

	var entries []compileCommand
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse compilation database: %w", err)
	}

	seen := make(map[string]bool)
	var files []SourceFile
	for _, e := range entries {
		if e.File == "" || seen[e.File] {
			continue
		}
		seen[e.File] = true

		args := e.Arguments
		if len(args) == 0 {
			args = splitCommand(e.Command)
		}

		files = append(files, SourceFile{
			Name:      filepath.Base(e.File),
			Path:      e.File,
			Directory: e.Directory,
			Includes:  flagValues(args, "-I"),
			Defines:   flagValues(args, "-D"),
		})
	}
	return files, nil
}

// flagValues collects values of a short flag, handling both the joined
// ("-Ipath") and separated ("-I path") forms.
func flagValues(args []string, flag string) []string {
	var values []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == flag && i+1 < len(args) {
			values = append(values, args[i+1])
			i++
		} else if strings.HasPrefix(arg, flag) && len(arg) > len(flag) {
			values = append(values, arg[len(flag):])
		}
	}
	return values
}

// splitCommand tokenizes a shell command line, honoring single and
// double quotes and backslash escapes.
func splitCommand(command string) []string {
	var args []string
	var current strings.Builder
	var quote rune
	escaped := false
	inToken := false

	flush := func() {
		if inToken {
			args = append(args, current.String())
			current.Reset()
			inToken = false
		}
	}

	for _, r := range command {
		switch {
		case escaped:
			current.WriteRune(r)
			inToken = true
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inToken = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case r == ' ' || r == '\t' || r == '\n':
			flush()
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	flush()
	return args
}
