// FILE: logfeeder/src/internal/source/fileid_other.go
//go:build !unix

package source

import "os"

// fileKey is not available on this platform; the head checksum alone identifies files
func fileKey(os.FileInfo) string {
	return ""
}
