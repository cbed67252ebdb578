package config

import (
	"path/filepath"
	"testing"

	"coderun/internal/runner/language"
	"coderun/internal/runner/workspace"
)

func workspaceUnder(t *testing.T) workspace.Layout {
	t.Helper()
	root := t.TempDir()
	return workspace.Layout{SourceDir: filepath.Join(root, "codes"), OutputDir: filepath.Join(root, "outputs")}
}

func overrideFor(id string) language.Override {
	return language.Override{ID: id, RunCmd: "run {src}"}
}
