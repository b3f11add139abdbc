package hgweb

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 250 * time.Millisecond

// Watch refreshes the route table whenever entries appear in or vanish from
// the repository root, so repositories created outside the admin API become
// routable. It blocks until ctx is cancelled.
func (a *Adapter) Watch(ctx context.Context) error {
	if err := os.MkdirAll(a.repoDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", a.repoDir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(a.repoDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", a.repoDir, err)
	}
	a.logger.Info("watching repository root", "dir", a.repoDir)

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			// hg init creates the directory before its .hg; wait for it to settle.
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				if err := a.Refresh(); err != nil {
					a.logger.Error("refresh after fs event failed", "error", err)
				}
			})
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Error("repository watcher error", "error", err)
		}
	}
}
