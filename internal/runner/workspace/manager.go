package workspace

import (
	"context"
	"errors"
	"io/fs"
	"os"

	appErr "coderun/pkg/errors"
	"coderun/pkg/utils/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Job is one submission's set of files on disk.
type Job struct {
	ID           string
	Language     string
	SourcePath   string
	ArtifactPath string
}

// Manager creates job files and removes them when the job ends.
type Manager struct {
	layout Layout
}

// NewManager creates a manager for the given layout.
func NewManager(layout Layout) *Manager {
	return &Manager{layout: layout.WithDefaults()}
}

// Layout returns the directories the manager writes into.
func (m *Manager) Layout() Layout {
	return m.layout
}

// Create writes code to a freshly named source file.
// The base directories are created on first use.
func (m *Manager) Create(ctx context.Context, language string, exts Extensions, code string) (Job, error) {
	if exts.Source == "" {
		return Job{}, appErr.ValidationError("source_extension", "required")
	}
	if err := os.MkdirAll(m.layout.SourceDir, 0755); err != nil {
		return Job{}, appErr.Wrapf(err, appErr.FileSystemError, "create source dir failed")
	}
	if exts.Artifact != "" {
		if err := os.MkdirAll(m.layout.OutputDir, 0755); err != nil {
			return Job{}, appErr.Wrapf(err, appErr.FileSystemError, "create output dir failed")
		}
	}

	jobID := uuid.NewString()
	job := Job{
		ID:           jobID,
		Language:     language,
		SourcePath:   m.layout.SourcePath(jobID, exts.Source),
		ArtifactPath: m.layout.ArtifactPath(jobID, exts.Artifact),
	}

	// O_EXCL: a job id must never land on an existing file.
	file, err := os.OpenFile(job.SourcePath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return Job{}, appErr.Wrapf(err, appErr.FileSystemError, "create source file failed").
			WithDetail("path", job.SourcePath)
	}
	if _, err := file.WriteString(code); err != nil {
		_ = file.Close()
		m.remove(ctx, job.SourcePath)
		return Job{}, appErr.Wrapf(err, appErr.FileSystemError, "write source file failed").
			WithDetail("path", job.SourcePath)
	}
	if err := file.Close(); err != nil {
		m.remove(ctx, job.SourcePath)
		return Job{}, appErr.Wrapf(err, appErr.FileSystemError, "close source file failed").
			WithDetail("path", job.SourcePath)
	}

	logger.Debug(ctx, "job file created", zap.String("job_id", jobID), zap.String("path", job.SourcePath))
	return job, nil
}

// Cleanup removes the job's source and artifact files.
// It never fails: missing files are ignored and other errors are only logged.
func (m *Manager) Cleanup(ctx context.Context, job Job) {
	if job.SourcePath != "" {
		m.remove(ctx, job.SourcePath)
	}
	if job.ArtifactPath != "" {
		m.remove(ctx, job.ArtifactPath)
	}
}

func (m *Manager) remove(ctx context.Context, path string) {
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return
	}
	logger.Warn(ctx, "remove job file failed", zap.String("path", path), zap.Error(err))
}
