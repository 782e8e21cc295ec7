// FILE: logfeeder/src/internal/source/fileid_unix.go
//go:build unix

package source

import (
	"fmt"
	"os"
	"syscall"
)

// fileKey identifies a file by device and inode, empty when unavailable
func fileKey(info os.FileInfo) string {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d:%d", st.Dev, st.Ino)
}
