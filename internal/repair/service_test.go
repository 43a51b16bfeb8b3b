package repair

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/condalink/internal/execshell"
	"github.com/temirov/condalink/internal/filesystem"
)

const (
	testDiagnosticToolConstant       = "cookiecutter"
	testInterpreterNameConstant      = "python"
	testToolLocationConstant         = `C:\tools\miniconda3\Scripts\cookiecutter.exe`
	testLinkRejectionTextConstant    = "You do not have sufficient privilege to perform this operation."
	testAlreadyExistsSnippetConstant = "already exists"
)

type stubExecutor struct {
	recorded           []execshell.ShellCommand
	interpreterQueries []execshell.ShellCommand
	interpreterOutput  string
	lookupResult       execshell.ExecutionResult
	lookupError        error
	linkError          error
	emulateLink        bool
}

func (executor *stubExecutor) Execute(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	if isInterpreterQuery(command) {
		executor.interpreterQueries = append(executor.interpreterQueries, command)
		if len(executor.interpreterOutput) == 0 {
			return execshell.ExecutionResult{}, execshell.CommandExecutionError{Command: command, Cause: errors.New("interpreter unavailable")}
		}
		return execshell.ExecutionResult{StandardOutput: executor.interpreterOutput}, nil
	}

	executor.recorded = append(executor.recorded, command)

	if command.Name == buildLookupCommand("").Name {
		if executor.lookupError != nil {
			return execshell.ExecutionResult{}, executor.lookupError
		}
		if executor.lookupResult.ExitCode != 0 {
			return executor.lookupResult, execshell.CommandFailedError{Command: command, Result: executor.lookupResult}
		}
		return executor.lookupResult, nil
	}

	if executor.linkError != nil {
		return execshell.ExecutionResult{}, executor.linkError
	}
	if executor.emulateLink {
		linkArguments := command.Details.Arguments
		brokenRoot := linkArguments[len(linkArguments)-1]
		actualRoot := linkArguments[len(linkArguments)-2]
		if command.Name == execshell.CommandWindowsShell {
			brokenRoot, actualRoot = actualRoot, brokenRoot
		}
		if symlinkError := os.Symlink(actualRoot, brokenRoot); symlinkError != nil {
			return execshell.ExecutionResult{ExitCode: 1, StandardError: symlinkError.Error()}, execshell.CommandFailedError{Command: command}
		}
	}
	return execshell.ExecutionResult{}, nil
}

func (executor *stubExecutor) linkCommands() []execshell.ShellCommand {
	lookupName := buildLookupCommand("").Name
	var linkCommands []execshell.ShellCommand
	for _, command := range executor.recorded {
		if command.Name != lookupName {
			linkCommands = append(linkCommands, command)
		}
	}
	return linkCommands
}

func isInterpreterQuery(command execshell.ShellCommand) bool {
	arguments := command.Details.Arguments
	return len(arguments) == 2 && arguments[0] == interpreterQueryFlagConstant
}

type stubFileSystem struct {
	filesystem.OSFileSystem
	executables map[string]string
}

func (fileSystem stubFileSystem) LookPath(executableName string) (string, error) {
	executablePath, exists := fileSystem.executables[executableName]
	if !exists {
		return "", errors.New("executable file not found in $PATH")
	}
	return executablePath, nil
}

type repairFixture struct {
	workingDirectory string
	brokenRoot       string
	actualRoot       string
}

func newRepairFixture(t *testing.T, createActual bool, createBroken bool) repairFixture {
	t.Helper()
	workingDirectory := t.TempDir()
	fixture := repairFixture{
		workingDirectory: workingDirectory,
		brokenRoot:       filepath.Join(workingDirectory, "miniconda3"),
		actualRoot:       filepath.Join(workingDirectory, "tools", "miniconda3"),
	}
	if createActual {
		require.NoError(t, os.MkdirAll(fixture.actualRoot, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(fixture.actualRoot, "python.exe"), []byte("interpreter"), 0o644))
	}
	if createBroken {
		require.NoError(t, os.MkdirAll(fixture.brokenRoot, 0o755))
	}
	return fixture
}

func newTestService(t *testing.T, executor CommandExecutor, executables map[string]string, logger *zap.Logger) *Service {
	t.Helper()
	service, serviceError := NewService(ServiceDependencies{
		Executor:   executor,
		FileSystem: stubFileSystem{executables: executables},
		Logger:     logger,
	})
	require.NoError(t, serviceError)
	return service
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	_, serviceError := NewService(ServiceDependencies{FileSystem: filesystem.NewOSFileSystem()})
	require.ErrorIs(t, serviceError, ErrExecutorNotConfigured)

	_, serviceError = NewService(ServiceDependencies{Executor: &stubExecutor{}})
	require.ErrorIs(t, serviceError, ErrFileSystemNotConfigured)

	service, serviceError := NewService(ServiceDependencies{Executor: &stubExecutor{}, FileSystem: filesystem.NewOSFileSystem()})
	require.NoError(t, serviceError)
	require.NotNil(t, service)
}

func TestRepairDecisionTable(t *testing.T) {
	testCases := []struct {
		name               string
		createActual       bool
		createBroken       bool
		apply              bool
		expectedOutcome    Outcome
		expectError        error
		expectLinkCommand  bool
		expectBrokenExists bool
	}{
		{name: "missing_actual_dry_run", createActual: false, apply: false, expectError: ErrActualRootMissing},
		{name: "missing_actual_apply", createActual: false, apply: true, expectError: ErrActualRootMissing},
		{name: "missing_actual_broken_present", createActual: false, createBroken: true, apply: true, expectError: ErrActualRootMissing, expectBrokenExists: true},
		{name: "broken_present_dry_run", createActual: true, createBroken: true, apply: false, expectedOutcome: OutcomeAlreadyPresent, expectBrokenExists: true},
		{name: "broken_present_apply", createActual: true, createBroken: true, apply: true, expectedOutcome: OutcomeAlreadyPresent, expectBrokenExists: true},
		{name: "dry_run", createActual: true, apply: false, expectedOutcome: OutcomeDryRun},
		{name: "apply", createActual: true, apply: true, expectedOutcome: OutcomeCreated, expectLinkCommand: true, expectBrokenExists: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			fixture := newRepairFixture(t, testCase.createActual, testCase.createBroken)
			executor := &stubExecutor{emulateLink: true}
			service := newTestService(t, executor, nil, zap.NewNop())

			result, repairError := service.Repair(context.Background(), Options{
				BrokenRoot:     fixture.brokenRoot,
				ActualRoot:     fixture.actualRoot,
				DiagnosticTool: testDiagnosticToolConstant,
				Apply:          testCase.apply,
			})

			if testCase.expectError != nil {
				require.ErrorIs(t, repairError, testCase.expectError)
			} else {
				require.NoError(t, repairError)
				require.Equal(t, testCase.expectedOutcome, result.Outcome)
			}

			if testCase.expectLinkCommand {
				require.Equal(t, []execshell.ShellCommand{buildLinkCommand(fixture.brokenRoot, fixture.actualRoot)}, executor.linkCommands())
			} else {
				require.Empty(t, executor.linkCommands())
			}

			_, brokenStatError := os.Lstat(fixture.brokenRoot)
			require.Equal(t, testCase.expectBrokenExists, brokenStatError == nil)
		})
	}
}

func TestRepairCreatesAliasResolvingToActualRoot(t *testing.T) {
	fixture := newRepairFixture(t, true, false)
	executor := &stubExecutor{emulateLink: true}
	service := newTestService(t, executor, nil, zap.NewNop())

	result, repairError := service.Repair(context.Background(), Options{BrokenRoot: fixture.brokenRoot, ActualRoot: fixture.actualRoot, Apply: true})
	require.NoError(t, repairError)
	require.Equal(t, OutcomeCreated, result.Outcome)

	content, readError := os.ReadFile(filepath.Join(fixture.brokenRoot, "python.exe"))
	require.NoError(t, readError)
	require.Equal(t, "interpreter", string(content))
}

func TestRepairReportsLinkRejection(t *testing.T) {
	fixture := newRepairFixture(t, true, false)
	linkCommand := buildLinkCommand(fixture.brokenRoot, fixture.actualRoot)
	executor := &stubExecutor{linkError: execshell.CommandFailedError{
		Command: linkCommand,
		Result:  execshell.ExecutionResult{ExitCode: 1, StandardError: testLinkRejectionTextConstant + "\r\n"},
	}}
	service := newTestService(t, executor, nil, zap.NewNop())

	_, repairError := service.Repair(context.Background(), Options{BrokenRoot: fixture.brokenRoot, ActualRoot: fixture.actualRoot, Apply: true})

	var linkCreationError LinkCreationError
	require.ErrorAs(t, repairError, &linkCreationError)
	require.Equal(t, testLinkRejectionTextConstant, linkCreationError.Details)
	require.Contains(t, repairError.Error(), testLinkRejectionTextConstant)

	var commandFailedError execshell.CommandFailedError
	require.ErrorAs(t, repairError, &commandFailedError)

	_, brokenStatError := os.Lstat(fixture.brokenRoot)
	require.True(t, errors.Is(brokenStatError, fs.ErrNotExist))
}

func TestRepairReportsLinkExecutionFailure(t *testing.T) {
	fixture := newRepairFixture(t, true, false)
	executor := &stubExecutor{linkError: execshell.CommandExecutionError{Cause: errors.New("access is denied")}}
	service := newTestService(t, executor, nil, zap.NewNop())

	_, repairError := service.Repair(context.Background(), Options{BrokenRoot: fixture.brokenRoot, ActualRoot: fixture.actualRoot, Apply: true})

	var linkCreationError LinkCreationError
	require.ErrorAs(t, repairError, &linkCreationError)
	require.Equal(t, "access is denied", linkCreationError.Details)
}

func TestRepairToolLookupNeverBlocks(t *testing.T) {
	testCases := []struct {
		name          string
		executor      *stubExecutor
		expectFound   bool
		expectedLabel string
	}{
		{
			name:          "found",
			executor:      &stubExecutor{lookupResult: execshell.ExecutionResult{StandardOutput: testToolLocationConstant + "\r\n"}},
			expectFound:   true,
			expectedLabel: testToolLocationConstant,
		},
		{
			name:          "non_zero_exit",
			executor:      &stubExecutor{lookupResult: execshell.ExecutionResult{ExitCode: 1, StandardError: "INFO: Could not find files for the given pattern(s)."}},
			expectedLabel: "not found",
		},
		{
			name:          "lookup_unavailable",
			executor:      &stubExecutor{lookupError: execshell.CommandExecutionError{Cause: errors.New("executable file not found")}},
			expectedLabel: "not found",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			fixture := newRepairFixture(t, true, false)
			service := newTestService(t, testCase.executor, nil, zap.NewNop())

			result, repairError := service.Repair(context.Background(), Options{
				BrokenRoot:     fixture.brokenRoot,
				ActualRoot:     fixture.actualRoot,
				DiagnosticTool: testDiagnosticToolConstant,
			})
			require.NoError(t, repairError)
			require.Equal(t, OutcomeDryRun, result.Outcome)
			require.Equal(t, testCase.expectFound, result.Diagnostics.Tool.Found)
			require.Equal(t, testCase.expectedLabel, result.Diagnostics.Tool.Describe())
			require.Equal(t, []string{testDiagnosticToolConstant}, testCase.executor.recorded[0].Details.Arguments)
		})
	}
}

func TestRepairDerivesActualRootFromInterpreter(t *testing.T) {
	fixture := newRepairFixture(t, true, false)
	executor := &stubExecutor{}
	service := newTestService(t, executor, map[string]string{
		testInterpreterNameConstant: filepath.Join(fixture.actualRoot, "python.exe"),
	}, zap.NewNop())

	result, repairError := service.Repair(context.Background(), Options{BrokenRoot: fixture.brokenRoot})
	require.NoError(t, repairError)
	require.Equal(t, OutcomeDryRun, result.Outcome)
	require.Equal(t, fixture.actualRoot, result.ActualRoot)
	require.True(t, result.Diagnostics.Interpreter.Found)
	require.Equal(t, describeLinkCommand(buildLinkCommand(fixture.brokenRoot, fixture.actualRoot)), result.LinkCommand)
}

func TestRepairPrefersInterpreterSelfReportOverShim(t *testing.T) {
	testCases := []struct {
		name               string
		interpreterOutput  string
		expectSelfReported bool
		expectShimRoot     bool
	}{
		{
			name:               "self_reported",
			interpreterOutput:  "REPORTED\r\n",
			expectSelfReported: true,
		},
		{
			name:              "relative_output_ignored",
			interpreterOutput: "python.exe\n",
			expectShimRoot:    true,
		},
		{
			name:           "query_failed",
			expectShimRoot: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			fixture := newRepairFixture(t, true, false)
			shimDirectory := filepath.Join(fixture.workingDirectory, "shims")
			require.NoError(t, os.Mkdir(shimDirectory, 0o755))
			shimPath := filepath.Join(shimDirectory, "python.exe")
			interpreterPath := filepath.Join(fixture.actualRoot, "python.exe")

			executor := &stubExecutor{interpreterOutput: strings.Replace(testCase.interpreterOutput, "REPORTED", interpreterPath, 1)}
			service := newTestService(t, executor, map[string]string{testInterpreterNameConstant: shimPath}, zap.NewNop())

			result, repairError := service.Repair(context.Background(), Options{BrokenRoot: fixture.brokenRoot})
			require.NoError(t, repairError)
			require.Equal(t, OutcomeDryRun, result.Outcome)
			require.Equal(t, shimPath, result.Diagnostics.Interpreter.Launcher)
			require.Equal(t, testCase.expectSelfReported, result.Diagnostics.Interpreter.SelfReported)
			require.Equal(t, []execshell.ShellCommand{buildInterpreterQueryCommand(shimPath)}, executor.interpreterQueries)

			if testCase.expectShimRoot {
				require.Equal(t, shimDirectory, result.ActualRoot)
			} else {
				require.Equal(t, interpreterPath, result.Diagnostics.Interpreter.Path)
				require.Equal(t, fixture.actualRoot, result.ActualRoot)
			}
		})
	}
}

func TestRepairFailsWhenInterpreterCannotBeResolved(t *testing.T) {
	fixture := newRepairFixture(t, true, false)
	service := newTestService(t, &stubExecutor{}, nil, zap.NewNop())

	result, repairError := service.Repair(context.Background(), Options{BrokenRoot: fixture.brokenRoot, Interpreter: "python3"})
	require.ErrorIs(t, repairError, ErrActualRootMissing)

	var missingRootError MissingActualRootError
	require.ErrorAs(t, repairError, &missingRootError)
	require.Equal(t, "python3", missingRootError.Interpreter)
	require.Error(t, missingRootError.Cause)
	require.Equal(t, "unresolved", result.Diagnostics.ActualRoot.Describe())
}

func TestRepairFallsBackToDefaultBrokenRoot(t *testing.T) {
	fixture := newRepairFixture(t, true, false)
	service := newTestService(t, &stubExecutor{}, nil, zap.NewNop())

	result, repairError := service.Repair(context.Background(), Options{BrokenRoot: "  ", ActualRoot: fixture.actualRoot})
	require.NoError(t, repairError)

	expectedBrokenRoot, absoluteError := filepath.Abs(defaultBrokenRootConstant)
	require.NoError(t, absoluteError)
	require.Equal(t, expectedBrokenRoot, result.BrokenRoot)
}

func TestRepairAnchorsRelativeRootsAtWorkingDirectory(t *testing.T) {
	fixture := newRepairFixture(t, true, false)
	originalWorkingDirectory, getwdError := os.Getwd()
	require.NoError(t, getwdError)
	require.NoError(t, os.Chdir(fixture.workingDirectory))
	t.Cleanup(func() { _ = os.Chdir(originalWorkingDirectory) })

	executor := &stubExecutor{emulateLink: true}
	service := newTestService(t, executor, nil, zap.NewNop())

	result, repairError := service.Repair(context.Background(), Options{
		BrokenRoot: "miniconda3",
		ActualRoot: filepath.Join("tools", "miniconda3"),
		Apply:      true,
	})
	require.NoError(t, repairError)
	require.Equal(t, OutcomeCreated, result.Outcome)

	expectedBrokenRoot, brokenAbsoluteError := filepath.Abs("miniconda3")
	require.NoError(t, brokenAbsoluteError)
	expectedActualRoot, actualAbsoluteError := filepath.Abs(filepath.Join("tools", "miniconda3"))
	require.NoError(t, actualAbsoluteError)
	require.Equal(t, expectedBrokenRoot, result.BrokenRoot)
	require.Equal(t, expectedActualRoot, result.ActualRoot)
	require.Equal(t, []execshell.ShellCommand{buildLinkCommand(expectedBrokenRoot, expectedActualRoot)}, executor.linkCommands())

	content, readError := os.ReadFile(filepath.Join("miniconda3", "python.exe"))
	require.NoError(t, readError)
	require.Equal(t, "interpreter", string(content))
}

func TestRepairLogsAlreadyExists(t *testing.T) {
	fixture := newRepairFixture(t, true, true)
	observerCore, observedLogs := observer.New(zap.InfoLevel)
	executor := &stubExecutor{}
	service := newTestService(t, executor, nil, zap.New(observerCore))

	result, repairError := service.Repair(context.Background(), Options{BrokenRoot: fixture.brokenRoot, ActualRoot: fixture.actualRoot, Apply: true})
	require.NoError(t, repairError)
	require.Equal(t, OutcomeAlreadyPresent, result.Outcome)
	require.Equal(t, "exists (directory)", result.Diagnostics.BrokenRoot.Describe())
	require.Equal(t, 1, observedLogs.FilterMessageSnippet(testAlreadyExistsSnippetConstant).Len())
	require.Empty(t, executor.linkCommands())
}

func TestRepairReportsExistingAliasAsJunction(t *testing.T) {
	fixture := newRepairFixture(t, true, false)
	otherTarget := filepath.Join(fixture.workingDirectory, "elsewhere")
	require.NoError(t, os.Mkdir(otherTarget, 0o755))
	if symlinkError := os.Symlink(otherTarget, fixture.brokenRoot); symlinkError != nil {
		t.Skipf("symbolic links unavailable: %v", symlinkError)
	}

	service := newTestService(t, &stubExecutor{}, nil, zap.NewNop())
	result, repairError := service.Repair(context.Background(), Options{BrokenRoot: fixture.brokenRoot, ActualRoot: fixture.actualRoot, Apply: true})
	require.NoError(t, repairError)
	require.Equal(t, OutcomeAlreadyPresent, result.Outcome)
	require.Equal(t, "exists (junction)", result.Diagnostics.BrokenRoot.Describe())
}

func TestPathReportDescribe(t *testing.T) {
	require.Equal(t, "unresolved", PathReport{}.Describe())
	require.Equal(t, "missing", PathReport{Path: "x"}.Describe())
	require.Equal(t, "exists (file)", PathReport{Path: "x", Exists: true}.Describe())
	require.Equal(t, "exists (directory)", PathReport{Path: "x", Exists: true, Directory: true}.Describe())
	require.Equal(t, "exists (junction)", PathReport{Path: "x", Exists: true, Directory: true, Alias: true}.Describe())
}
