// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the abstractions condalink uses to
// run the command lookup and link creation utilities in a testable manner.
package execshell
