package repair

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/condalink/internal/execshell"
	"github.com/temirov/condalink/internal/filesystem"
	"github.com/temirov/condalink/internal/ui"
	pathutils "github.com/temirov/condalink/internal/utils/path"
)

const (
	commandUseNameConstant               = "repair"
	commandShortDescriptionConstant      = "Create the Miniconda junction expected by cookiecutter and similar tools"
	commandLongDescriptionConstant       = "repair reports where the expected Miniconda root and the real installation live, and when the expected root is missing creates a directory junction pointing at the installation. Without --apply it only prints the command it would run."
	commandExampleConstant               = "condalink --broken-root C:\\miniconda3 --actual-root C:\\tools\\miniconda3 --apply"
	brokenRootFlagNameConstant           = "broken-root"
	brokenRootFlagUsageConstant          = "Path used by old shims (default: C:\\miniconda3)."
	actualRootFlagNameConstant           = "actual-root"
	actualRootFlagUsageConstant          = "Real Miniconda install path (default: parent directory of the python executable on PATH)."
	applyFlagNameConstant                = "apply"
	applyFlagUsageConstant               = "Apply the repair (create the junction) instead of a dry run."
	alreadyPresentOutputTemplateConstant = "SKIPPED: %s already exists\n"
	dryRunOutputTemplateConstant         = "DRY-RUN: %s\n"
	createdOutputTemplateConstant        = "CREATED: %s -> %s\n"
)

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the repair command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     CommandExecutor
	FileSystem                   FileSystem
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the repair command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseNameConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		Args:    cobra.NoArgs,
		RunE:    builder.run,
	}

	command.Flags().String(brokenRootFlagNameConstant, "", brokenRootFlagUsageConstant)
	command.Flags().String(actualRootFlagNameConstant, "", actualRootFlagUsageConstant)
	command.Flags().Bool(applyFlagNameConstant, false, applyFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	options := Options{
		BrokenRoot:     configuration.BrokenRoot,
		ActualRoot:     configuration.ActualRoot,
		DiagnosticTool: configuration.DiagnosticTool,
		Interpreter:    configuration.Interpreter,
	}

	if command.Flags().Changed(brokenRootFlagNameConstant) {
		brokenRootValue, flagError := command.Flags().GetString(brokenRootFlagNameConstant)
		if flagError != nil {
			return flagError
		}
		options.BrokenRoot = brokenRootValue
	}

	if command.Flags().Changed(actualRootFlagNameConstant) {
		actualRootValue, flagError := command.Flags().GetString(actualRootFlagNameConstant)
		if flagError != nil {
			return flagError
		}
		options.ActualRoot = actualRootValue
	}

	applyValue, applyFlagError := command.Flags().GetBool(applyFlagNameConstant)
	if applyFlagError != nil {
		return applyFlagError
	}
	options.Apply = applyValue

	logger := builder.resolveLogger()

	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	service, serviceError := NewService(ServiceDependencies{
		Executor:       executor,
		FileSystem:     builder.resolveFileSystem(),
		Logger:         logger,
		PathNormalizer: pathutils.NewRootNormalizer(nil),
	})
	if serviceError != nil {
		return serviceError
	}

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}

	result, repairError := service.Repair(executionContext, options)
	if repairError != nil {
		return repairError
	}

	output := command.OutOrStdout()
	switch result.Outcome {
	case OutcomeAlreadyPresent:
		fmt.Fprintf(output, alreadyPresentOutputTemplateConstant, result.BrokenRoot)
	case OutcomeDryRun:
		fmt.Fprintf(output, dryRunOutputTemplateConstant, result.LinkCommand)
	case OutcomeCreated:
		fmt.Fprintf(output, createdOutputTemplateConstant, result.BrokenRoot, result.ActualRoot)
	}

	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (CommandExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}

	var observers []execshell.CommandEventObserver
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		observers = append(observers, ui.NewConsoleCommandEventLogger(logger))
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), observers...)
	if executorError != nil {
		return nil, executorError
	}
	return shellExecutor, nil
}

func (builder *CommandBuilder) resolveFileSystem() FileSystem {
	if builder.FileSystem != nil {
		return builder.FileSystem
	}
	return filesystem.NewOSFileSystem()
}
