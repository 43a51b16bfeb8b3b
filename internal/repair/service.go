package repair

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/condalink/internal/execshell"
	pathutils "github.com/temirov/condalink/internal/utils/path"
)

const (
	repairStartedMessageConstant       = "miniconda path repair started"
	interpreterResolvedMessageConstant = "running interpreter"
	interpreterMissingMessageConstant  = "interpreter not found on PATH"
	brokenRootReportMessageConstant    = "expected broken root"
	actualRootReportMessageConstant    = "detected actual root"
	toolResolvedMessageConstant        = "diagnostic tool resolved"
	brokenRootPresentMessageConstant   = "broken root already exists; not modifying"
	dryRunMessageConstant              = "dry-run mode; no changes made; use --apply to create the junction"
	linkCreationStartedMessageConstant = "creating junction"
	repairCompletedMessageConstant     = "repair complete"
	retryToolMessageConstant           = "try running the diagnostic tool again"
	logFieldApplyConstant              = "apply"
	logFieldInterpreterNameConstant    = "interpreter"
	logFieldPathConstant               = "path"
	logFieldLauncherConstant           = "launcher"
	logFieldStateConstant              = "state"
	logFieldToolConstant               = "tool"
	logFieldLocationConstant           = "location"
	logFieldCommandConstant            = "command"
	logFieldBrokenRootConstant         = "broken_root"
	logFieldActualRootConstant         = "actual_root"
)

// Outcome enumerates the successful endings of a repair run.
type Outcome string

// Supported outcomes.
const (
	OutcomeAlreadyPresent Outcome = "already_present"
	OutcomeDryRun         Outcome = "dry_run"
	OutcomeCreated        Outcome = "created"
)

// CommandExecutor runs the lookup and link commands.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// FileSystem exposes the filesystem queries the repair depends on.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	IsAlias(path string) bool
	LookPath(executableName string) (string, error)
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	Executor       CommandExecutor
	FileSystem     FileSystem
	Logger         *zap.Logger
	PathNormalizer *pathutils.RootNormalizer
}

// Options configure a single repair run.
type Options struct {
	BrokenRoot     string
	ActualRoot     string
	DiagnosticTool string
	Interpreter    string
	Apply          bool
}

// Result captures the outcome of a repair run.
type Result struct {
	Outcome     Outcome
	BrokenRoot  string
	ActualRoot  string
	LinkCommand string
	Diagnostics Diagnostics
}

// Service diagnoses and repairs the Miniconda root junction.
type Service struct {
	executor       CommandExecutor
	fileSystem     FileSystem
	logger         *zap.Logger
	pathNormalizer *pathutils.RootNormalizer
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pathNormalizer := dependencies.PathNormalizer
	if pathNormalizer == nil {
		pathNormalizer = pathutils.NewRootNormalizer(nil)
	}

	return &Service{
		executor:       dependencies.Executor,
		fileSystem:     dependencies.FileSystem,
		logger:         logger,
		pathNormalizer: pathNormalizer,
	}, nil
}

// Repair reports the state of both roots and, when the actual root exists and
// the broken root does not, plans or creates the junction. An existing broken
// root is left untouched whatever it points at.
func (service *Service) Repair(executionContext context.Context, options Options) (Result, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}

	interpreterName := strings.TrimSpace(options.Interpreter)
	if len(interpreterName) == 0 {
		interpreterName = defaultInterpreterNameConstant
	}

	brokenRoot := service.pathNormalizer.Normalize(options.BrokenRoot)
	if len(brokenRoot) == 0 {
		brokenRoot = defaultBrokenRootConstant
	}
	brokenRoot = absoluteRoot(brokenRoot)

	service.logger.Info(repairStartedMessageConstant, zap.Bool(logFieldApplyConstant, options.Apply))

	interpreterReport, interpreterLookupError := service.locateInterpreter(executionContext, interpreterName)
	diagnostics := Diagnostics{Interpreter: interpreterReport}
	if diagnostics.Interpreter.Found {
		service.logger.Info(
			interpreterResolvedMessageConstant,
			zap.String(logFieldPathConstant, diagnostics.Interpreter.Path),
			zap.String(logFieldLauncherConstant, diagnostics.Interpreter.Launcher),
		)
	} else {
		service.logger.Info(interpreterMissingMessageConstant, zap.String(logFieldInterpreterNameConstant, interpreterName))
	}

	actualRoot := service.pathNormalizer.Normalize(options.ActualRoot)
	if len(actualRoot) == 0 && diagnostics.Interpreter.Found {
		actualRoot = filepath.Dir(diagnostics.Interpreter.Path)
	}
	actualRoot = absoluteRoot(actualRoot)

	diagnostics.BrokenRoot = service.inspectPath(brokenRoot)
	diagnostics.ActualRoot = service.inspectPath(actualRoot)
	service.logger.Info(
		brokenRootReportMessageConstant,
		zap.String(logFieldPathConstant, brokenRoot),
		zap.String(logFieldStateConstant, diagnostics.BrokenRoot.Describe()),
	)
	service.logger.Info(
		actualRootReportMessageConstant,
		zap.String(logFieldPathConstant, actualRoot),
		zap.String(logFieldStateConstant, diagnostics.ActualRoot.Describe()),
	)

	diagnostics.Tool = service.locateTool(executionContext, strings.TrimSpace(options.DiagnosticTool))
	service.logger.Info(
		toolResolvedMessageConstant,
		zap.String(logFieldToolConstant, diagnostics.Tool.Name),
		zap.String(logFieldLocationConstant, diagnostics.Tool.Describe()),
	)

	linkCommand := buildLinkCommand(brokenRoot, actualRoot)
	result := Result{
		BrokenRoot:  brokenRoot,
		ActualRoot:  actualRoot,
		LinkCommand: describeLinkCommand(linkCommand),
		Diagnostics: diagnostics,
	}

	if !diagnostics.ActualRoot.Exists {
		missingRootError := MissingActualRootError{Path: actualRoot, Interpreter: interpreterName}
		if len(actualRoot) == 0 {
			missingRootError.Cause = interpreterLookupError
		}
		return result, missingRootError
	}

	if diagnostics.BrokenRoot.Exists {
		service.logger.Info(brokenRootPresentMessageConstant, zap.String(logFieldPathConstant, brokenRoot))
		result.Outcome = OutcomeAlreadyPresent
		return result, nil
	}

	if !options.Apply {
		service.logger.Info(dryRunMessageConstant, zap.String(logFieldCommandConstant, result.LinkCommand))
		result.Outcome = OutcomeDryRun
		return result, nil
	}

	service.logger.Info(
		linkCreationStartedMessageConstant,
		zap.String(logFieldBrokenRootConstant, brokenRoot),
		zap.String(logFieldActualRootConstant, actualRoot),
	)

	if _, executionError := service.executor.Execute(executionContext, linkCommand); executionError != nil {
		return result, LinkCreationError{
			BrokenRoot: brokenRoot,
			ActualRoot: actualRoot,
			Details:    describeLinkFailure(executionError),
			Cause:      executionError,
		}
	}

	service.logger.Info(
		repairCompletedMessageConstant,
		zap.String(logFieldBrokenRootConstant, brokenRoot),
		zap.String(logFieldActualRootConstant, actualRoot),
	)
	if len(diagnostics.Tool.Name) > 0 {
		service.logger.Info(retryToolMessageConstant, zap.String(logFieldToolConstant, diagnostics.Tool.Name))
	}

	result.Outcome = OutcomeCreated
	return result, nil
}

// absoluteRoot anchors relative roots at the working directory. Symbolic link
// targets are otherwise resolved against the link's own parent.
func absoluteRoot(root string) string {
	if len(root) == 0 {
		return root
	}
	absolutePath, absoluteError := filepath.Abs(root)
	if absoluteError != nil {
		return root
	}
	return absolutePath
}

// describeLinkFailure extracts the operating system's own explanation.
func describeLinkFailure(executionError error) string {
	var failedError execshell.CommandFailedError
	if errors.As(executionError, &failedError) {
		if standardError := strings.TrimSpace(failedError.Result.StandardError); len(standardError) > 0 {
			return standardError
		}
		if standardOutput := strings.TrimSpace(failedError.Result.StandardOutput); len(standardOutput) > 0 {
			return standardOutput
		}
		return failedError.Error()
	}

	var executionFailure execshell.CommandExecutionError
	if errors.As(executionError, &executionFailure) && executionFailure.Cause != nil {
		return executionFailure.Cause.Error()
	}

	return executionError.Error()
}
