package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coderun/internal/runner/language"
	"coderun/internal/runner/observer"
	"coderun/internal/runner/process"
	"coderun/internal/runner/workspace"
	appErr "coderun/pkg/errors"
	"coderun/pkg/utils/contextkey"
	"coderun/pkg/utils/logger"

	"go.uber.org/zap"
)

const (
	defaultTimeout        = 30 * time.Second
	defaultVersionTimeout = 5 * time.Second
	defaultMaxCodeBytes   = 1 << 20

	noCodeMessage      = "No code found to execute."
	versionPlaceholder = "Could not retrieve version info."
)

// Service compiles and runs submissions.
type Service struct {
	registry       *language.Registry
	workspace      *workspace.Manager
	runner         process.Runner
	metrics        observer.MetricsRecorder
	timeout        time.Duration
	versionTimeout time.Duration
	maxCodeBytes   int
}

// Config holds service dependencies and settings.
type Config struct {
	Registry       *language.Registry
	Workspace      *workspace.Manager
	Runner         process.Runner
	Metrics        observer.MetricsRecorder
	Timeout        time.Duration
	VersionTimeout time.Duration
	MaxCodeBytes   int
}

// NewService creates an execution service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("language registry is required")
	}
	if cfg.Workspace == nil {
		return nil, fmt.Errorf("workspace manager is required")
	}
	if cfg.Runner == nil {
		return nil, fmt.Errorf("process runner is required")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observer.NoopMetricsRecorder{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.VersionTimeout <= 0 {
		cfg.VersionTimeout = defaultVersionTimeout
	}
	if cfg.MaxCodeBytes <= 0 {
		cfg.MaxCodeBytes = defaultMaxCodeBytes
	}
	return &Service{
		registry:       cfg.Registry,
		workspace:      cfg.Workspace,
		runner:         cfg.Runner,
		metrics:        cfg.Metrics,
		timeout:        cfg.Timeout,
		versionTimeout: cfg.VersionTimeout,
		maxCodeBytes:   cfg.MaxCodeBytes,
	}, nil
}

// Execute validates, compiles if needed, runs, and cleans up one submission.
// Compile failures, timeouts and missing toolchains come back as a Result;
// only invalid requests and infrastructure faults are returned as errors.
func (s *Service) Execute(ctx context.Context, req Request) (result Result, err error) {
	if strings.TrimSpace(req.Code) == "" {
		return Result{}, appErr.BadRequest(noCodeMessage)
	}
	if len(req.Code) > s.maxCodeBytes {
		return Result{}, appErr.Newf(appErr.CodeTooLarge, "Code exceeds the %d byte limit.", s.maxCodeBytes)
	}
	spec, err := s.registry.Lookup(req.Language)
	if err != nil {
		return Result{}, err
	}

	job, err := s.workspace.Create(ctx, req.Language, spec.Extensions(), req.Code)
	if err != nil {
		return Result{}, err
	}
	ctx = context.WithValue(ctx, contextkey.JobID, job.ID)
	defer s.workspace.Cleanup(ctx, job)

	cmds, err := s.registry.Resolve(req.Language, job.ID)
	if err != nil {
		return Result{}, err
	}

	logger.Info(ctx, "execution started", zap.String("language", req.Language), zap.Bool("compiled", spec.Compiled()))
	logger.Debug(ctx, "job commands resolved",
		zap.String("source", cmds.SourcePath),
		zap.String("artifact", cmds.ArtifactPath),
	)
	start := time.Now()
	defer func() {
		// A panicking stage leaves both err and the status unset.
		if err != nil || result.Status == "" {
			return
		}
		logger.Info(ctx, "execution finished",
			zap.String("language", req.Language),
			zap.String("status", string(result.Status)),
			zap.Int("code", int(result.Status.Code())),
			zap.Duration("duration", time.Since(start)),
		)
	}()

	if cmds.Compile != nil {
		res, done, err := s.compile(ctx, req.Language, cmds)
		if err != nil || done {
			return res, err
		}
	}
	return s.run(ctx, req, cmds)
}

// compile returns done=true when the pipeline must stop with res.
func (s *Service) compile(ctx context.Context, lang string, cmds language.CommandSet) (res Result, done bool, err error) {
	outcome, err := s.runner.Run(ctx, process.Command{Args: cmds.Compile, Timeout: s.timeout})
	if err != nil {
		if appErr.Is(err, appErr.ToolchainUnavailable) {
			logger.Warn(ctx, "compiler unavailable", zap.String("language", lang), zap.Error(err))
			s.metrics.ObserveCompile(ctx, lang, false, 0)
			return s.toolchainUnavailable(ctx, lang, cmds, err), true, nil
		}
		return Result{}, true, err
	}

	if outcome.TimedOut {
		s.metrics.ObserveCompile(ctx, lang, false, outcome.Duration)
		return Result{
			Error:    timeoutMessage(outcome.Stderr, s.timeout),
			Language: lang,
			Info:     s.versionInfo(ctx, cmds),
			Status:   StatusTimeout,
		}, true, nil
	}

	// Any compiler diagnostics, warnings included, fail the job.
	if outcome.Stderr != "" {
		s.metrics.ObserveCompile(ctx, lang, false, outcome.Duration)
		logger.Debug(ctx, "compilation failed", zap.Int("exit_code", outcome.ExitCode))
		return Result{
			Error:    outcome.Stderr,
			Language: lang,
			Info:     s.versionInfo(ctx, cmds),
			Status:   StatusCompileError,
		}, true, nil
	}

	s.metrics.ObserveCompile(ctx, lang, true, outcome.Duration)
	return Result{}, false, nil
}

func (s *Service) run(ctx context.Context, req Request, cmds language.CommandSet) (Result, error) {
	outcome, err := s.runner.Run(ctx, process.Command{Args: cmds.Execute, Stdin: req.Input, Timeout: s.timeout})
	if err != nil {
		if appErr.Is(err, appErr.ToolchainUnavailable) {
			logger.Warn(ctx, "runtime unavailable", zap.String("language", req.Language), zap.Error(err))
			s.metrics.ObserveRun(ctx, req.Language, string(StatusToolchainUnavailable), 0)
			return s.toolchainUnavailable(ctx, req.Language, cmds, err), nil
		}
		return Result{}, err
	}

	res := Result{
		Output:   outcome.Stdout,
		Error:    outcome.Stderr,
		Language: req.Language,
		Status:   StatusOK,
	}
	switch {
	case outcome.TimedOut:
		res.Error = timeoutMessage(outcome.Stderr, s.timeout)
		res.Status = StatusTimeout
	case outcome.ExitCode != 0:
		res.Status = StatusRuntimeError
	}
	if outcome.Truncated {
		logger.Warn(ctx, "process output truncated",
			zap.String("language", req.Language),
			zap.Int("code", int(appErr.OutputLimitExceeded)),
		)
	}
	s.metrics.ObserveRun(ctx, req.Language, string(res.Status), outcome.Duration)

	res.Info = s.versionInfo(ctx, cmds)
	return res, nil
}

func (s *Service) toolchainUnavailable(ctx context.Context, lang string, cmds language.CommandSet, cause error) Result {
	msg := "Toolchain not available"
	if e := appErr.GetError(cause); e != nil {
		if command, ok := e.Details["command"].(string); ok && command != "" {
			msg = fmt.Sprintf("Toolchain not available: %s", command)
		}
	}
	return Result{
		Error:    msg,
		Language: lang,
		Info:     s.versionInfo(ctx, cmds),
		Status:   StatusToolchainUnavailable,
	}
}

// versionInfo never fails; any problem yields the placeholder text.
func (s *Service) versionInfo(ctx context.Context, cmds language.CommandSet) string {
	outcome, err := s.runner.Run(ctx, process.Command{Args: cmds.Version, Timeout: s.versionTimeout})
	if err != nil {
		logger.Debug(ctx, "version probe failed", zap.Strings("args", cmds.Version), zap.Error(err))
		return versionPlaceholder
	}
	if outcome.TimedOut {
		return versionPlaceholder
	}
	if outcome.Stdout != "" {
		return outcome.Stdout
	}
	if outcome.Stderr != "" {
		return outcome.Stderr
	}
	return versionPlaceholder
}

// Languages lists the supported languages in display order.
func (s *Service) Languages() []LanguageInfo {
	specs := s.registry.Specs()
	out := make([]LanguageInfo, 0, len(specs))
	for _, spec := range specs {
		out = append(out, LanguageInfo{
			ID:         string(spec.ID),
			Name:       spec.Name,
			Compiled:   spec.Compiled(),
			VersionCmd: spec.VersionCmd,
		})
	}
	return out
}

func timeoutMessage(stderr string, timeout time.Duration) string {
	notice := fmt.Sprintf("Process timed out after %s.", timeout)
	if stderr == "" {
		return notice
	}
	if !strings.HasSuffix(stderr, "\n") {
		stderr += "\n"
	}
	return stderr + notice
}
