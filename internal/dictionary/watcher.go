package dictionary

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const defaultReloadDelay = 200 * time.Millisecond

// Watcher reloads dictionaries when one of their files changes. Bursts of
// events are coalesced into a single reload per dictionary.
type Watcher struct {
	fw     *fsnotify.Watcher
	byFile map[string][]*Dictionary
	delay  time.Duration
}

// NewWatcher watches the directories holding the files of dicts. Directories
// are watched instead of files so editors that replace files on save are seen.
func NewWatcher(delay time.Duration, dicts ...*Dictionary) (*Watcher, error) {
	if delay <= 0 {
		delay = defaultReloadDelay
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fw:     fw,
		byFile: make(map[string][]*Dictionary),
		delay:  delay,
	}
	dirs := make(map[string]struct{})
	for _, d := range dicts {
		for _, f := range d.Files() {
			f = filepath.Clean(f)
			w.byFile[f] = append(w.byFile[f], d)
			dirs[filepath.Dir(f)] = struct{}{}
		}
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Run processes file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(w.delay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := make(map[*Dictionary]struct{})
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)) {
				continue
			}
			dicts, ok := w.byFile[filepath.Clean(event.Name)]
			if !ok {
				continue
			}
			for _, d := range dicts {
				pending[d] = struct{}{}
			}
			timer.Reset(w.delay)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			logutil.GetLogger(ctx).Error("dictionary watcher error", zap.Error(err))
		case <-timer.C:
			for d := range pending {
				if err := d.Reload(ctx); err != nil {
					logutil.GetLogger(ctx).Error("reload dictionary failed, keep previous", zap.String("dict", d.Name()), zap.Error(err))
				}
				delete(pending, d)
			}
		}
	}
}

func (w *Watcher) Close() error {
	return w.fw.Close()
}
