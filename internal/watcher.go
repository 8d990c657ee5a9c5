package internal

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher surfaces new Takeout content appearing under an inbox directory.
// Archives are unpacked into the inbox in bulk, so the consumer debounces
// the Events stream and re-scans the whole inbox once a drop settles.
type Watcher struct {
	fs     *fsnotify.Watcher
	events chan string
	errs   chan error
	done   chan struct{}
}

// NewWatcher starts watching inboxDir and everything below it.
func NewWatcher(inboxDir string) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fs:     fs,
		events: make(chan string, 100),
		errs:   make(chan error, 10),
		done:   make(chan struct{}),
	}

	if err := w.watchTree(inboxDir); err != nil {
		fs.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

func (w *Watcher) watchTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.fs.Add(path)
		}
		return nil
	})
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			// Drop errors rather than block the fsnotify goroutine.
			select {
			case w.errs <- err:
			default:
			}
		case <-w.done:
			return
		}
	}
}

// handle filters raw notifications down to inbox content worth reacting to.
// Freshly unpacked subdirectories (nested album folders) are added to the
// watch; media files and sidecars are forwarded.
func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.watchTree(ev.Name)
			return
		}
	}

	if !isInboxContent(ev.Name) {
		return
	}

	select {
	case w.events <- ev.Name:
	default:
		// A full channel means a huge drop is mid-unpack; losing individual
		// events is fine since the consumer re-scans the whole inbox anyway.
	}
}

// Events delivers paths of newly appeared media files and sidecars.
func (w *Watcher) Events() <-chan string {
	return w.events
}

func (w *Watcher) Errors() <-chan error {
	return w.errs
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}

func isInboxContent(path string) bool {
	name := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(name), ".json") {
		return true
	}
	return isMediaFile(name)
}
