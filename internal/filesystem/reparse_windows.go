//go:build windows

package filesystem

import "golang.org/x/sys/windows"

func isReparsePoint(path string) bool {
	encodedPath, encodeError := windows.UTF16PtrFromString(path)
	if encodeError != nil {
		return false
	}
	attributes, attributesError := windows.GetFileAttributes(encodedPath)
	if attributesError != nil {
		return false
	}
	return attributes&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0
}
