// Package repair restores the directory layout tools expect from a Miniconda
// installation. It reports where the expected and actual roots live, and when
// the expected root is missing it plans, or with Apply creates, a directory
// junction pointing at the real installation.
package repair
