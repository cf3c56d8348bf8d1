//go:build unix

package resolver

import (
	"os"
	"syscall"
)

// fileID identifies a file system object across hard links and symlinks.
type fileID struct {
	dev uint64
	ino uint64
}

// fileIDOf extracts the device/inode pair from os.FileInfo.Sys().
// On Unix systems (Linux, macOS, BSD) this is the real identity of the entry.
func fileIDOf(info os.FileInfo) (fileID, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileID{}, false
	}
	return fileID{dev: uint64(stat.Dev), ino: stat.Ino}, true
}
