package cli

import _ "embed"

//go:embed default_config.yaml
var embeddedDefaultConfiguration []byte

// EmbeddedDefaultConfiguration returns a copy of the bundled defaults along with their format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	configurationCopy := make([]byte, len(embeddedDefaultConfiguration))
	copy(configurationCopy, embeddedDefaultConfiguration)
	return configurationCopy, configurationTypeConstant
}
