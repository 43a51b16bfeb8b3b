//go:build windows

package repair

import (
	"strings"

	"github.com/temirov/condalink/internal/execshell"
)

const (
	windowsShellRunFlagConstant    = "/c"
	windowsLinkSubcommandConstant  = "mklink"
	windowsJunctionFlagConstant    = "/J"
	windowsCommandDisplaySeparator = " "
)

// buildLinkCommand produces "cmd /c mklink /J <broken> <actual>".
func buildLinkCommand(brokenRoot string, actualRoot string) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name: execshell.CommandWindowsShell,
		Details: execshell.CommandDetails{
			Arguments: []string{windowsShellRunFlagConstant, windowsLinkSubcommandConstant, windowsJunctionFlagConstant, brokenRoot, actualRoot},
		},
	}
}

// describeLinkCommand renders the command as an operator would type it in cmd.exe.
func describeLinkCommand(command execshell.ShellCommand) string {
	if len(command.Details.Arguments) > 0 && strings.EqualFold(command.Details.Arguments[0], windowsShellRunFlagConstant) {
		return strings.Join(command.Details.Arguments[1:], windowsCommandDisplaySeparator)
	}
	return command.String()
}

func buildLookupCommand(toolName string) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name:    execshell.CommandWhere,
		Details: execshell.CommandDetails{Arguments: []string{toolName}},
	}
}
