// Directory Structure
//
// The home sandbox root holds the two persistent areas; caches and temp are
// separate sandboxes because the host may place them elsewhere:
//
//	<home>/
//	  ├── Documents/   (backed-up persistent data)
//	  └── Library/     (persistent, excluded from backup)
//	<caches>/          (may be purged by the host, survives restarts)
//	<tmp>/             (removed when the environment is closed)
//
// Usage
//
//	p, err := paths.Normalize("notes/../todo.txt", root)
//	if !paths.Within(root, p) {
//	    // sandbox escape
//	}
package paths
