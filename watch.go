package driftfield

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// PresetWatcher watches a preset file on disk and surfaces each edit as a parsed
// Settings value. The watch runs on its own goroutine, but results come home over a
// channel so the host applies them on the tick and the engine's single-threaded
// discipline holds.
type PresetWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	updates chan Settings
	logger  *slog.Logger
}

// WatchPreset starts watching the preset file at path. Edits that parse cleanly are
// delivered on Updates; edits that don't are logged and skipped, leaving the running
// configuration alone.
func WatchPreset(path string, logger *slog.Logger) (*PresetWatcher, error) {

	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory rather than the file: editors that write-rename would
	// otherwise drop the watch on the first save.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	pw := &PresetWatcher{
		watcher: watcher,
		path:    filepath.Clean(path),
		updates: make(chan Settings, 1),
		logger:  logger,
	}

	go pw.run()

	return pw, nil

}

// Updates delivers each cleanly parsed edit of the preset file. Only the newest
// unconsumed edit is kept.
func (pw *PresetWatcher) Updates() <-chan Settings {
	return pw.updates
}

// TryApply stages the newest pending edit, if any, into the Field. Call it once per
// tick from the host's update loop.
func (pw *PresetWatcher) TryApply(field *Field) bool {
	select {
	case settings := <-pw.updates:
		field.Apply(settings)
		return true
	default:
		return false
	}
}

// Close stops the watch.
func (pw *PresetWatcher) Close() error {
	return pw.watcher.Close()
}

func (pw *PresetWatcher) run() {

	for {
		select {

		case event, ok := <-pw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != pw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			pw.reload()

		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}
			pw.logger.Warn("preset watcher error", "error", err)

		}
	}

}

func (pw *PresetWatcher) reload() {

	data, err := os.ReadFile(pw.path)
	if err != nil {
		pw.logger.Warn("reading preset file", "path", pw.path, "error", err)
		return
	}

	settings, err := ImportSettings(data)
	if err != nil {
		pw.logger.Warn("preset file did not parse; keeping current settings", "path", pw.path, "error", err)
		return
	}

	// Keep only the newest edit.
	select {
	case <-pw.updates:
	default:
	}
	pw.updates <- settings

}
