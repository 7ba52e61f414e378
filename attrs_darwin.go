//go:build darwin

package sandfs

import (
	"io/fs"
	"syscall"
	"time"
)

func fillPlatformAttrs(_ string, fi fs.FileInfo, a *Attributes) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	a.UID, a.GID = st.Uid, st.Gid
	a.AccessTime = time.Unix(st.Atimespec.Unix())
	a.CreationTime = time.Unix(st.Birthtimespec.Unix())
	a.HasCreationTime = true
}
