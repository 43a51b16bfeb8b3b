// Package cli constructs the condalink command-line interface. It wires the
// repair command to the configuration loader and structured logging.
package cli
