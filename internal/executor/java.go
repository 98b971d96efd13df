package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"api-test-generator/internal/logger"
	"api-test-generator/internal/types"
)

const javaMissing = "Java not found. Please install JDK."

// ExecuteFunc compiles and runs one generated test class
type ExecuteFunc func(ctx context.Context, className, source string) (*types.ExecutionResult, error)

// Config holds configuration for test execution
type Config struct {
	Java       string
	Javac      string
	LibsDir    string
	WorkDir    string
	Timeout    time.Duration
	MaxWorkers int
	MaxOutput  int
	KeepFiles  bool
}

// JavaStatus reports whether a Java runtime can be started
type JavaStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

// JavaExecutor compiles generated classes with javac and runs them with the
// TestNG command line runner. Each run gets its own workspace directory.
type JavaExecutor struct {
	config Config
	runner CommandRunner
	sem    chan struct{}
	log    *zap.Logger
}

// NewJavaExecutor creates a new executor
func NewJavaExecutor(config Config, log *zap.Logger) *JavaExecutor {
	if config.Java == "" {
		config.Java = "java"
	}
	if config.Javac == "" {
		config.Javac = "javac"
	}
	if config.LibsDir == "" {
		config.LibsDir = "libs"
	}
	if abs, err := filepath.Abs(config.LibsDir); err == nil {
		config.LibsDir = abs
	}
	if config.WorkDir == "" {
		config.WorkDir = filepath.Join(os.TempDir(), "api-test-generator")
	}
	if config.MaxWorkers < 1 {
		config.MaxWorkers = 1
	}

	return &JavaExecutor{
		config: config,
		runner: execRunner{maxOutput: config.MaxOutput},
		sem:    make(chan struct{}, config.MaxWorkers),
		log:    logger.OrNop(log),
	}
}

// Execute compiles source as className and runs it. Failures of the test
// itself, of compilation or of the toolchain are reported in the result; the
// error is reserved for invalid input and callers that gave up waiting.
func (e *JavaExecutor) Execute(ctx context.Context, className, source string) (*types.ExecutionResult, error) {
	if !IsJavaIdentifier(className) {
		return nil, &types.OpError{
			Op:   "executor.execute",
			Kind: types.KindInvalidRequest,
			Err:  fmt.Errorf("%w: class name %q is not a valid Java identifier", types.ErrInvalidRequest, className),
		}
	}
	if strings.TrimSpace(source) == "" {
		return nil, &types.OpError{
			Op:   "executor.execute",
			Kind: types.KindInvalidRequest,
			Err:  fmt.Errorf("%w: java source is empty", types.ErrInvalidRequest),
		}
	}

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-e.sem }()

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	workspace, err := e.prepareWorkspace(className, source)
	if err != nil {
		return nil, &types.OpError{Op: "executor.execute", Kind: types.KindIO, Err: err}
	}
	defer e.cleanup(workspace)

	log := e.log.With(zap.String("className", className), zap.String("workspace", workspace))
	log.Info("Starting test execution")

	compile := e.compileCommand(workspace, className)
	run := e.runCommand(workspace, className)
	result := &types.ExecutionResult{
		ClassName: className,
		Command:   compile.String() + " && " + run.String(),
	}
	log.Debug("Execution commands", zap.String("command", result.Command))

	if !e.compile(ctx, compile, result) {
		log.Info("Test execution finished", zap.String("status", result.Status))
		return result, nil
	}

	start := time.Now()
	out, err := e.runner.Run(ctx, run)
	result.ExecutionTime = time.Since(start).Milliseconds()
	if err != nil {
		e.toolchainFailure(ctx, err, result)
		log.Warn("Test run did not complete", zap.Error(err))
		return result, nil
	}

	e.interpret(out, result)
	log.Info("Test execution finished",
		zap.String("status", result.Status),
		zap.Int("testsRun", result.TestsRun),
		zap.Int("failures", result.Failures),
		zap.Int64("executionTime", result.ExecutionTime))
	return result, nil
}

// compile runs javac and reports whether execution should continue
func (e *JavaExecutor) compile(ctx context.Context, cmd Command, result *types.ExecutionResult) bool {
	out, err := e.runner.Run(ctx, cmd)
	if err != nil {
		e.toolchainFailure(ctx, err, result)
		return false
	}
	if out.ExitCode != 0 {
		result.Status = types.StatusCompilationFailed
		result.CompilationStatus = "FAILED"
		result.CompilationErrors = firstNonEmpty(out.Stderr, out.Stdout)
		return false
	}
	result.CompilationStatus = "SUCCESS"
	result.Warnings = strings.TrimSpace(out.Stderr)
	return true
}

func (e *JavaExecutor) interpret(out Outcome, result *types.ExecutionResult) {
	result.Output = out.Stdout
	if warn := strings.TrimSpace(out.Stderr); warn != "" {
		result.Warnings = joinLines(result.Warnings, warn)
	}

	summary, ok := ParseSummary(out.Stdout)
	if !ok {
		result.Status = types.StatusError
		result.Error = "Failed to parse test results"
		result.RawOutput = out.Stdout
		result.RawError = out.Stderr
		return
	}

	result.TestsRun = summary.Run
	result.Failures = summary.Failures
	result.Skips = summary.Skips

	switch {
	case summary.Run == 0:
		result.Status = types.StatusTestMethodNotFound
		result.ExecutionErrors = fmt.Sprintf("No test methods found in %s", result.ClassName)
	case summary.Failures+summary.Skips > 0 || out.ExitCode != 0:
		result.Status = types.StatusFailed
		result.ExecutionErrors = firstNonEmpty(FailureDetails(out.Stdout), out.Stderr)
	default:
		result.Status = types.StatusPassed
		result.Success = true
	}
}

func (e *JavaExecutor) toolchainFailure(ctx context.Context, err error, result *types.ExecutionResult) {
	result.Status = types.StatusError
	switch {
	case errors.Is(err, exec.ErrNotFound):
		result.Error = javaMissing
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		result.Error = fmt.Sprintf("Test execution timed out after %s", e.config.Timeout)
	case ctx.Err() != nil:
		result.Error = "Test execution was canceled"
	default:
		result.Error = err.Error()
	}
}

func (e *JavaExecutor) prepareWorkspace(className, source string) (string, error) {
	workspace := filepath.Join(e.config.WorkDir, uuid.NewString())
	for _, dir := range []string{"src", "classes"} {
		if err := os.MkdirAll(filepath.Join(workspace, dir), 0755); err != nil {
			return "", fmt.Errorf("failed to create workspace: %w", err)
		}
	}
	path := filepath.Join(workspace, "src", className+".java")
	if err := os.WriteFile(path, []byte(source), 0644); err != nil {
		_ = os.RemoveAll(workspace)
		return "", fmt.Errorf("failed to write source file: %w", err)
	}
	return workspace, nil
}

func (e *JavaExecutor) cleanup(workspace string) {
	if e.config.KeepFiles {
		e.log.Info("Keeping execution workspace", zap.String("workspace", workspace))
		return
	}
	if err := os.RemoveAll(workspace); err != nil {
		e.log.Warn("Failed to remove execution workspace", zap.String("workspace", workspace), zap.Error(err))
	}
}

func (e *JavaExecutor) libsClasspath() string {
	return filepath.Join(e.config.LibsDir, "*")
}

func (e *JavaExecutor) compileCommand(workspace, className string) Command {
	return Command{
		Dir:  workspace,
		Name: e.config.Javac,
		Args: []string{
			"-d", "classes",
			"-cp", e.libsClasspath(),
			filepath.Join("src", className+".java"),
		},
	}
}

func (e *JavaExecutor) runCommand(workspace, className string) Command {
	classpath := "classes" + string(os.PathListSeparator) + e.libsClasspath()
	return Command{
		Dir:  workspace,
		Name: e.config.Java,
		Args: []string{
			"-cp", classpath,
			"org.testng.TestNG",
			"-usedefaultlisteners", "false",
			"-verbose", "2",
			"-testclass", className,
		},
	}
}

// CheckJava runs "java -version" and reports the first line it prints
func (e *JavaExecutor) CheckJava(ctx context.Context) JavaStatus {
	out, err := e.runner.Run(ctx, Command{Name: e.config.Java, Args: []string{"-version"}})
	if err != nil || out.ExitCode != 0 {
		return JavaStatus{Error: javaMissing}
	}
	version := firstNonEmpty(out.Stderr, out.Stdout)
	if i := strings.IndexByte(version, '\n'); i >= 0 {
		version = version[:i]
	}
	return JavaStatus{Available: true, Version: strings.TrimSpace(version)}
}

// IsJavaIdentifier reports whether name can be used as a Java class name
func IsJavaIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func joinLines(a, b string) string {
	if a == "" {
		return b
	}
	return a + "\n" + b
}
