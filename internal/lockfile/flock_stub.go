//go:build !unix

package lockfile

import "os"

// Advisory locking is only implemented on unix; elsewhere the lock file is created but not locked.
func lockFile(_ *os.File) error { return nil }

func unlockFile(_ *os.File) error { return nil }
