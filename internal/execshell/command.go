package execshell

import (
	"context"
	"fmt"
	"strings"
)

const (
	commandWindowsShellStringConstant           = "cmd"
	commandWhereStringConstant                  = "where"
	commandWhichStringConstant                  = "which"
	commandLinkStringConstant                   = "ln"
	commandFailedErrorTemplateConstant          = "%s exited with code %d"
	commandFailedErrorDetailsTemplateConstant   = "%s exited with code %d: %s"
	commandExecutionErrorTemplateConstant       = "%s could not be executed: %v"
	commandDisplaySeparatorConstant             = " "
	commandExecutionUnknownCauseMessageConstant = "unknown cause"
)

// CommandName identifies an executable invoked by the shell executor.
type CommandName string

// Supported command names.
const (
	CommandWindowsShell CommandName = CommandName(commandWindowsShellStringConstant)
	CommandWhere        CommandName = CommandName(commandWhereStringConstant)
	CommandWhich        CommandName = CommandName(commandWhichStringConstant)
	CommandLink         CommandName = CommandName(commandLinkStringConstant)
)

// CommandDetails describes arguments and the working directory for a command.
type CommandDetails struct {
	Arguments        []string
	WorkingDirectory string
}

// ShellCommand couples a command name with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// String renders the command as it would be typed in a shell.
func (command ShellCommand) String() string {
	commandParts := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(commandParts, commandDisplaySeparatorConstant)
}

// ExecutionResult captures the observable output of a finished command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner runs shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that ran and returned a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

func (failure CommandFailedError) Error() string {
	trimmedStandardError := strings.TrimSpace(failure.Result.StandardError)
	if len(trimmedStandardError) == 0 {
		return fmt.Sprintf(commandFailedErrorTemplateConstant, failure.Command.Name, failure.Result.ExitCode)
	}
	return fmt.Sprintf(commandFailedErrorDetailsTemplateConstant, failure.Command.Name, failure.Result.ExitCode, trimmedStandardError)
}

// CommandExecutionError reports a command that could not be started or awaited.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

func (failure CommandExecutionError) Error() string {
	var cause any = commandExecutionUnknownCauseMessageConstant
	if failure.Cause != nil {
		cause = failure.Cause
	}
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, failure.Command.Name, cause)
}

// Unwrap exposes the underlying execution failure.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}
