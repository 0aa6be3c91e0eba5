// Package perms provides the file and directory permissions used when gqltz writes to disk.
package perms

import "os"

const (
	// RegularFile permissions for files gqltz writes (configuration, logs).
	// Mode 0644: owner read/write, group read, others read.
	RegularFile os.FileMode = 0o644

	// RegularDir permissions for directories created to hold those files.
	// Mode 0755: owner read/write/execute, group read/execute, others read/execute.
	RegularDir os.FileMode = 0o755
)
