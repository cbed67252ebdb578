// Package language holds the closed set of supported languages and the
// command templates used to compile, run and version-probe each of them.
package language

import "coderun/internal/runner/workspace"

// Language is a language tag as sent by clients.
type Language string

const (
	Java   Language = "java"
	Cpp    Language = "cpp"
	Python Language = "py"
	C      Language = "c"
)

// Spec defines how to compile and run a language.
// Templates may reference {src} and {bin}; CompileCmdTpl is empty for
// languages that run straight from source.
type Spec struct {
	ID            Language
	Name          string
	SourceExt     string
	ArtifactExt   string
	CompileCmdTpl string
	RunCmdTpl     string
	VersionCmd    string
}

// Compiled reports whether the language has a compile step.
func (s Spec) Compiled() bool {
	return s.CompileCmdTpl != ""
}

// Extensions returns the file extensions the workspace needs for this language.
func (s Spec) Extensions() workspace.Extensions {
	return workspace.Extensions{Source: s.SourceExt, Artifact: s.ArtifactExt}
}

// Builtins returns the default language table in display order.
func Builtins() []Spec {
	return []Spec{
		{
			ID:         Java,
			Name:       "Java",
			SourceExt:  "java",
			RunCmdTpl:  "java {src}",
			VersionCmd: "java --version",
		},
		{
			ID:            Cpp,
			Name:          "C++",
			SourceExt:     "cpp",
			ArtifactExt:   "out",
			CompileCmdTpl: "g++ {src} -o {bin}",
			RunCmdTpl:     "{bin}",
			VersionCmd:    "g++ --version",
		},
		{
			ID:         Python,
			Name:       "Python 3",
			SourceExt:  "py",
			RunCmdTpl:  "python3 {src}",
			VersionCmd: "python3 --version",
		},
		{
			ID:            C,
			Name:          "C",
			SourceExt:     "c",
			ArtifactExt:   "out",
			CompileCmdTpl: "gcc {src} -o {bin}",
			RunCmdTpl:     "{bin}",
			VersionCmd:    "gcc --version",
		},
	}
}

// Override replaces the templates of a built-in language.
// Empty fields keep the built-in value.
type Override struct {
	ID         string `yaml:"id"`
	CompileCmd string `yaml:"compileCmd"`
	RunCmd     string `yaml:"runCmd"`
	VersionCmd string `yaml:"versionCmd"`
}
