//go:build !windows

package filesystem

func isReparsePoint(string) bool {
	return false
}
