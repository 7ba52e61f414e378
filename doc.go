// Package sandfs models files and directories inside an application
// sandbox as navigable nodes.
//
// A Sandbox bounds a directory tree; every Node resolved from it stays
// inside. Nodes expose recursive metadata (size, hash), read and write with
// text encodings and structured formats, copy, move and delete with
// overwrite semantics, and zip archives that may be password protected.
//
// Features:
//   - Path resolution with symlink-aware escape checks
//   - Recursive size via a concurrent read-only walk
//   - Atomic writes through a temporary sibling
//   - Zip (WinZip AES), tar.gz and tar.zst archives with progress reporting
//   - Environment roots for home, documents, library, caches and tmp
//
// Example Usage:
//
//	sb, err := sandfs.NewSandbox("/var/lib/myapp")
//	if err != nil {
//	    return err
//	}
//	notes, _ := sb.Resolve("notes")
//	if err := notes.MakeDirs(); err != nil {
//	    return err
//	}
//	if _, err := notes.WriteChildExt([]byte("hi"), "hello", "txt"); err != nil {
//	    return err
//	}
//	archive, err := notes.Zip(sandfs.WithPassword("s3cret"))
//
// All operations are synchronous. A Node records the error of its last
// fallible call in LastError and is therefore not safe for concurrent use.
package sandfs
