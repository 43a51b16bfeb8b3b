package filesystem

import (
	"io/fs"
	"os"
	"os/exec"
)

// OSFileSystem implements the repair filesystem contract using operating system primitives.
type OSFileSystem struct{}

// NewOSFileSystem constructs an OSFileSystem.
func NewOSFileSystem() OSFileSystem {
	return OSFileSystem{}
}

// Stat retrieves file metadata, following links.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// IsAlias reports whether path is a symbolic link or an NTFS junction.
func (OSFileSystem) IsAlias(path string) bool {
	linkInfo, lstatError := os.Lstat(path)
	if lstatError != nil {
		return false
	}
	if linkInfo.Mode()&fs.ModeSymlink != 0 {
		return true
	}
	return isReparsePoint(path)
}

// LookPath searches the executable search path for the named program.
func (OSFileSystem) LookPath(executableName string) (string, error) {
	return exec.LookPath(executableName)
}
