package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// staleLockAge is how old a lock file must be before a new invocation may
// take it over. A turn performs at most one blocking tool call, so a lock
// older than this belongs to a crashed process.
const staleLockAge = 30 * time.Second

// Lock acquires an advisory single-writer lock for the state file and
// returns a release function.
//
// Concurrent invocations against the same session directory would otherwise
// race on load→mutate→save with last-writer-wins semantics. The lock is a
// sibling file created exclusively; a second invocation fails fast instead
// of clobbering the first one's turn. Lock files older than 30 seconds are
// treated as leftovers from a crashed process and taken over.
func (st *Store) Lock() (release func(), err error) {
	lockPath := st.path + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			fmt.Fprintf(f, "%s\n", strconv.Itoa(os.Getpid()))
			f.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to acquire state lock: %w", err)
		}

		info, statErr := os.Stat(lockPath)
		if statErr != nil {
			// Holder released between our open and stat; retry.
			continue
		}
		if time.Since(info.ModTime()) < staleLockAge {
			return nil, fmt.Errorf("state file is locked by another invocation (%s)", lockPath)
		}
		os.Remove(lockPath)
	}

	return nil, fmt.Errorf("failed to acquire state lock: %s", lockPath)
}
