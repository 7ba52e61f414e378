//go:build !linux && !darwin

package sandfs

import "io/fs"

// fillPlatformAttrs has nothing beyond fs.FileInfo to offer here.
func fillPlatformAttrs(string, fs.FileInfo, *Attributes) {}
