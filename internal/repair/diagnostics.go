package repair

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/temirov/condalink/internal/execshell"
)

const (
	pathStateMissingConstant       = "missing"
	pathStateUnresolvedConstant    = "unresolved"
	pathStateJunctionConstant      = "exists (junction)"
	pathStateDirectoryConstant     = "exists (directory)"
	pathStateFileConstant          = "exists (file)"
	toolNotFoundLabelConstant      = "not found"
	locationSeparatorConstant      = "; "
	lineSeparatorConstant          = "\n"
	interpreterQueryFlagConstant   = "-c"
	interpreterQueryScriptConstant = "import sys; print(sys.executable)"
)

// PathReport describes a root as observed on disk.
type PathReport struct {
	Path      string
	Exists    bool
	Directory bool
	Alias     bool
}

// Describe renders the observed state the way the diagnostic log prints it.
func (report PathReport) Describe() string {
	switch {
	case len(report.Path) == 0:
		return pathStateUnresolvedConstant
	case !report.Exists:
		return pathStateMissingConstant
	case report.Alias:
		return pathStateJunctionConstant
	case report.Directory:
		return pathStateDirectoryConstant
	default:
		return pathStateFileConstant
	}
}

// InterpreterReport describes the interpreter lookup. Launcher is the PATH hit,
// which may be a shim; Path is the executable the interpreter reports for itself
// and equals Launcher when it could not be asked.
type InterpreterReport struct {
	Name         string
	Launcher     string
	Path         string
	Found        bool
	SelfReported bool
}

// ToolReport describes the diagnostic tool lookup. Lookup failures are informational.
type ToolReport struct {
	Name      string
	Found     bool
	Locations []string
}

// Describe renders the resolved locations or "not found".
func (report ToolReport) Describe() string {
	if !report.Found || len(report.Locations) == 0 {
		return toolNotFoundLabelConstant
	}
	return strings.Join(report.Locations, locationSeparatorConstant)
}

// Diagnostics gathers everything reported before a decision is made.
type Diagnostics struct {
	Interpreter InterpreterReport
	BrokenRoot  PathReport
	ActualRoot  PathReport
	Tool        ToolReport
}

func (service *Service) inspectPath(path string) PathReport {
	report := PathReport{Path: path}
	if len(path) == 0 {
		return report
	}

	pathInfo, statError := service.fileSystem.Stat(path)
	if statError != nil {
		return report
	}

	report.Exists = true
	report.Directory = pathInfo.IsDir()
	report.Alias = service.fileSystem.IsAlias(path)
	return report
}

func (service *Service) locateInterpreter(executionContext context.Context, interpreterName string) (InterpreterReport, error) {
	report := InterpreterReport{Name: interpreterName}
	launcherPath, lookupError := service.fileSystem.LookPath(interpreterName)
	if lookupError != nil {
		return report, lookupError
	}

	if absolutePath, absoluteError := filepath.Abs(launcherPath); absoluteError == nil {
		launcherPath = absolutePath
	}

	report.Launcher = launcherPath
	report.Path = launcherPath
	report.Found = true

	executionResult, executionError := service.executor.Execute(executionContext, buildInterpreterQueryCommand(launcherPath))
	if executionError != nil {
		return report, nil
	}

	reportedLocations := splitLookupOutput(executionResult.StandardOutput)
	if len(reportedLocations) == 0 || !filepath.IsAbs(reportedLocations[0]) {
		return report, nil
	}

	report.Path = filepath.Clean(reportedLocations[0])
	report.SelfReported = true
	return report, nil
}

// buildInterpreterQueryCommand asks the interpreter behind launcherPath for its own executable.
func buildInterpreterQueryCommand(launcherPath string) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name: execshell.CommandName(launcherPath),
		Details: execshell.CommandDetails{
			Arguments: []string{interpreterQueryFlagConstant, interpreterQueryScriptConstant},
		},
	}
}

// locateTool asks the operating system lookup utility for the tool. Any failure means "not found".
func (service *Service) locateTool(executionContext context.Context, toolName string) ToolReport {
	report := ToolReport{Name: toolName}
	if len(toolName) == 0 {
		return report
	}

	executionResult, executionError := service.executor.Execute(executionContext, buildLookupCommand(toolName))
	if executionError != nil {
		return report
	}

	report.Locations = splitLookupOutput(executionResult.StandardOutput)
	report.Found = len(report.Locations) > 0
	return report
}

func splitLookupOutput(standardOutput string) []string {
	var locations []string
	for _, line := range strings.Split(standardOutput, lineSeparatorConstant) {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 {
			continue
		}
		locations = append(locations, trimmedLine)
	}
	return locations
}
