//go:build windows

package resolver

import "os"

// fileID identifies a file system object across hard links and symlinks.
type fileID struct {
	dev uint64
	ino uint64
}

// fileIDOf reports no identity on Windows: the file index is not exposed
// through os.FileInfo.Sys() without an open handle. Cycle detection degrades
// to the MaxDepth bound, which is acceptable since directory symlink cycles
// require elevated privileges to create there.
func fileIDOf(_ os.FileInfo) (fileID, bool) {
	return fileID{}, false
}
