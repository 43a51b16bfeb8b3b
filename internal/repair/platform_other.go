//go:build !windows

package repair

import "github.com/temirov/condalink/internal/execshell"

const (
	symbolicLinkFlagConstant = "-s"
)

// buildLinkCommand produces "ln -s <actual> <broken>"; junctions only exist on
// NTFS, so other platforms alias the directory with a symbolic link.
func buildLinkCommand(brokenRoot string, actualRoot string) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name: execshell.CommandLink,
		Details: execshell.CommandDetails{
			Arguments: []string{symbolicLinkFlagConstant, actualRoot, brokenRoot},
		},
	}
}

func describeLinkCommand(command execshell.ShellCommand) string {
	return command.String()
}

func buildLookupCommand(toolName string) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name:    execshell.CommandWhich,
		Details: execshell.CommandDetails{Arguments: []string{toolName}},
	}
}
