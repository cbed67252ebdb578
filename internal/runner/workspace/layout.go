// Package workspace defines the on-disk layout of job files and manages their lifecycle.
package workspace

import (
	"os"
	"path/filepath"
)

const (
	defaultSourceDirName = "codes"
	defaultOutputDirName = "outputs"
)

// Layout describes where job sources and compiled artifacts live.
type Layout struct {
	SourceDir string `yaml:"sourceDir"`
	OutputDir string `yaml:"outputDir"`
}

// Extensions names the file extensions used by one language.
// Artifact is empty for languages that run straight from source.
type Extensions struct {
	Source   string
	Artifact string
}

// DefaultLayout places both directories under the system temp dir.
func DefaultLayout() Layout {
	return Layout{
		SourceDir: filepath.Join(os.TempDir(), defaultSourceDirName),
		OutputDir: filepath.Join(os.TempDir(), defaultOutputDirName),
	}
}

// WithDefaults fills empty directories from DefaultLayout.
func (l Layout) WithDefaults() Layout {
	defaults := DefaultLayout()
	if l.SourceDir == "" {
		l.SourceDir = defaults.SourceDir
	}
	if l.OutputDir == "" {
		l.OutputDir = defaults.OutputDir
	}
	return l
}

// SourcePath returns <SourceDir>/<jobID>.<ext>.
func (l Layout) SourcePath(jobID, ext string) string {
	return filepath.Join(l.SourceDir, jobID+"."+ext)
}

// ArtifactPath returns <OutputDir>/<jobID>.<ext>, or "" when ext is empty.
func (l Layout) ArtifactPath(jobID, ext string) string {
	if ext == "" {
		return ""
	}
	return filepath.Join(l.OutputDir, jobID+"."+ext)
}
