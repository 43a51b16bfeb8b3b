// Package filesystem wraps the operating system primitives condalink inspects:
// path metadata, directory alias detection, and executable lookup.
package filesystem
