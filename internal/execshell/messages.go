package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	windowsShellRunFlagConstant        = "/c"
	windowsLinkSubcommandNameConstant  = "mklink"
	windowsJunctionFlagConstant        = "/J"
	symbolicLinkFlagConstant           = "-s"
	lookupResultSeparatorConstant      = ", "
	windowsLinkArgumentCountConstant   = 5
	symbolicLinkArgumentCountConstant  = 3
	windowsLinkPathArgumentIndex       = 3
	windowsLinkTargetArgumentIndex     = 4
	symbolicLinkTargetArgumentIndex    = 1
	symbolicLinkPathArgumentIndex      = 2
	lookupToolArgumentIndexConstant    = 0
	lookupOutputLineSeparatorConstant  = "\n"
	lookupOutputCarriageReturnConstant = "\r"
)

const (
	lookupStartTemplateConstant            = "Locating %s"
	lookupSuccessTemplateConstant          = "Located %s at %s"
	lookupFailureTemplateConstant          = "%s was not found (exit code %d%s)"
	lookupExecutionFailureTemplateConstant = "Unable to locate %s: %s"
	linkStartTemplateConstant              = "Creating link %s -> %s"
	linkSuccessTemplateConstant            = "Created link %s -> %s"
	linkFailureTemplateConstant            = "Failed to create link %s -> %s (exit code %d%s)"
	linkExecutionFailureTemplateConstant   = "Unable to create link %s -> %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandWhere, CommandWhich:
		return formatter.describeLookupMessage(command, result, failure, stage)
	case CommandWindowsShell:
		if linkPath, targetPath, isLink := formatter.extractWindowsLinkPaths(command.Details.Arguments); isLink {
			return formatter.describeLinkMessage(linkPath, targetPath, result, failure, stage)
		}
	case CommandLink:
		if linkPath, targetPath, isLink := formatter.extractSymbolicLinkPaths(command.Details.Arguments); isLink {
			return formatter.describeLinkMessage(linkPath, targetPath, result, failure, stage)
		}
	}
	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeLookupMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	toolName := formatter.ensureValue(formatter.argumentAtIndex(command.Details.Arguments, lookupToolArgumentIndexConstant))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(lookupStartTemplateConstant, toolName)
	case messageStageSuccess:
		return fmt.Sprintf(lookupSuccessTemplateConstant, toolName, formatter.ensureValue(formatter.joinLookupOutput(result.StandardOutput)))
	case messageStageFailure:
		return fmt.Sprintf(lookupFailureTemplateConstant, toolName, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(lookupExecutionFailureTemplateConstant, toolName, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeLinkMessage(linkPath string, targetPath string, result ExecutionResult, failure error, stage messageStage) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(linkStartTemplateConstant, linkPath, targetPath)
	case messageStageSuccess:
		return fmt.Sprintf(linkSuccessTemplateConstant, linkPath, targetPath)
	case messageStageFailure:
		return fmt.Sprintf(linkFailureTemplateConstant, linkPath, targetPath, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(linkExecutionFailureTemplateConstant, linkPath, targetPath, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := command.String() + formatter.formatWorkingDirectorySuffix(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

// extractWindowsLinkPaths recognizes "cmd /c mklink /J <link> <target>".
func (formatter CommandMessageFormatter) extractWindowsLinkPaths(arguments []string) (string, string, bool) {
	if len(arguments) != windowsLinkArgumentCountConstant {
		return emptyStringConstant, emptyStringConstant, false
	}
	if !strings.EqualFold(arguments[0], windowsShellRunFlagConstant) ||
		!strings.EqualFold(arguments[1], windowsLinkSubcommandNameConstant) ||
		!strings.EqualFold(arguments[2], windowsJunctionFlagConstant) {
		return emptyStringConstant, emptyStringConstant, false
	}
	return arguments[windowsLinkPathArgumentIndex], arguments[windowsLinkTargetArgumentIndex], true
}

// extractSymbolicLinkPaths recognizes "ln -s <target> <link>".
func (formatter CommandMessageFormatter) extractSymbolicLinkPaths(arguments []string) (string, string, bool) {
	if len(arguments) != symbolicLinkArgumentCountConstant || arguments[0] != symbolicLinkFlagConstant {
		return emptyStringConstant, emptyStringConstant, false
	}
	return arguments[symbolicLinkPathArgumentIndex], arguments[symbolicLinkTargetArgumentIndex], true
}

func (formatter CommandMessageFormatter) joinLookupOutput(standardOutput string) string {
	normalizedOutput := strings.ReplaceAll(standardOutput, lookupOutputCarriageReturnConstant, emptyStringConstant)
	locations := make([]string, 0)
	for _, line := range strings.Split(normalizedOutput, lookupOutputLineSeparatorConstant) {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 {
			continue
		}
		locations = append(locations, trimmedLine)
	}
	return strings.Join(locations, lookupResultSeparatorConstant)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[index])
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return value
}
