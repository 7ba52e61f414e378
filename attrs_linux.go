//go:build linux

package sandfs

import (
	"io/fs"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// fillPlatformAttrs reads birth and access time with statx. Kernels or
// filesystems without birth time leave CreationTime at the mod time.
func fillPlatformAttrs(path string, fi fs.FileInfo, a *Attributes) {
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		a.UID, a.GID = st.Uid, st.Gid
		a.AccessTime = time.Unix(st.Atim.Unix())
	}

	var stx unix.Statx_t
	mask := unix.STATX_BTIME | unix.STATX_ATIME | unix.STATX_UID | unix.STATX_GID
	if err := unix.Statx(unix.AT_FDCWD, path, unix.AT_SYMLINK_NOFOLLOW, mask, &stx); err != nil {
		return
	}
	if stx.Mask&unix.STATX_ATIME != 0 {
		a.AccessTime = time.Unix(stx.Atime.Sec, int64(stx.Atime.Nsec))
	}
	if stx.Mask&unix.STATX_BTIME != 0 {
		a.CreationTime = time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec))
		a.HasCreationTime = true
	}
	if stx.Mask&unix.STATX_UID != 0 {
		a.UID = stx.Uid
	}
	if stx.Mask&unix.STATX_GID != 0 {
		a.GID = stx.Gid
	}
}
