package repair

import "strings"

const (
	defaultBrokenRootConstant      = `C:\miniconda3`
	defaultDiagnosticToolConstant  = "cookiecutter"
	defaultInterpreterNameConstant = "python"
	brokenRootConfigurationKey     = "broken_root"
	actualRootConfigurationKey     = "actual_root"
	diagnosticToolConfigurationKey = "diagnostic_tool"
	interpreterConfigurationKey    = "interpreter"
	configurationKeyJoinerConstant = "."
)

// CommandConfiguration captures configuration values for the repair command.
type CommandConfiguration struct {
	BrokenRoot     string `mapstructure:"broken_root"`
	ActualRoot     string `mapstructure:"actual_root"`
	DiagnosticTool string `mapstructure:"diagnostic_tool"`
	Interpreter    string `mapstructure:"interpreter"`
}

// DefaultCommandConfiguration provides baseline configuration values for the repair command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		BrokenRoot:     defaultBrokenRootConstant,
		ActualRoot:     "",
		DiagnosticTool: defaultDiagnosticToolConstant,
		Interpreter:    defaultInterpreterNameConstant,
	}
}

// DefaultConfigurationValues exposes the defaults keyed for the configuration loader under the provided prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		qualifyConfigurationKey(prefix, brokenRootConfigurationKey):     defaults.BrokenRoot,
		qualifyConfigurationKey(prefix, actualRootConfigurationKey):     defaults.ActualRoot,
		qualifyConfigurationKey(prefix, diagnosticToolConfigurationKey): defaults.DiagnosticTool,
		qualifyConfigurationKey(prefix, interpreterConfigurationKey):    defaults.Interpreter,
	}
}

// Sanitize trims configuration values and restores defaults for blank tool names.
// Blank roots stay blank so the service can apply its own fallbacks.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := CommandConfiguration{
		BrokenRoot:     strings.TrimSpace(configuration.BrokenRoot),
		ActualRoot:     strings.TrimSpace(configuration.ActualRoot),
		DiagnosticTool: strings.TrimSpace(configuration.DiagnosticTool),
		Interpreter:    strings.TrimSpace(configuration.Interpreter),
	}

	if len(sanitized.DiagnosticTool) == 0 {
		sanitized.DiagnosticTool = defaultDiagnosticToolConstant
	}
	if len(sanitized.Interpreter) == 0 {
		sanitized.Interpreter = defaultInterpreterNameConstant
	}

	return sanitized
}

func qualifyConfigurationKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeyJoinerConstant + key
}
