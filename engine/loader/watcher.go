package loader

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchDir adds the directory of a requested asset to the watcher. Directories are watched
// rather than files so editors that replace a file on save keep triggering reloads.
func (l *Loader) watchDir(dir string) {
	if l.watcher == nil || l.watched[dir] {
		return
	}
	if err := l.watcher.Add(dir); err != nil {
		l.logger.Warn("cannot watch directory", "dir", dir, "error", err)
		return
	}
	l.watched[dir] = true
}

// watch queues changed paths for the next Drain. It runs on its own goroutine and only
// touches the mutex-guarded change set.
func (l *Loader) watch() {
	events, errs := l.watcher.Events, l.watcher.Errors
	for {
		select {
		case <-l.stop:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			l.mu.Lock()
			l.changed[filepath.Clean(ev.Name)] = struct{}{}
			l.mu.Unlock()
		case err, ok := <-errs:
			if !ok {
				return
			}
			l.logger.Warn("file watcher error", "error", err)
		}
	}
}
