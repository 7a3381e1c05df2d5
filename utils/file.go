package utils

import (
	"os"
	"path"
)

// FileExists reports whether filename is a regular file. Any stat
// failure counts as not present, including paths that run through a
// regular file instead of a directory.
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && !info.IsDir()
}

func ChangeExt(filename string, newExt string) string {
	ext := path.Ext(filename)
	return filename[0:len(filename)-len(ext)] + "." + newExt
}
