package discover

import (
	"errors"
	"io/fs"
	"strings"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// countRecursive counts regular files anywhere under dir using fastwalk.
// Symlinks are not followed to avoid loops.
func countRecursive(dir, pattern string) (int, error) {
	conf := fastwalk.Config{
		Follow: false,
	}

	var count atomic.Int64
	err := fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			logger.Debug("skipping unreadable entry", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if pattern != "" && !strings.Contains(d.Name(), pattern) {
			return nil
		}
		count.Add(1)
		return nil
	})
	if err != nil && !errors.Is(err, fastwalk.ErrSkipFiles) {
		return 0, err
	}

	return int(count.Load()), nil
}
