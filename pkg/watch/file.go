// Package watch adapts filesystem change notifications into stream
// signals. A watched file becomes a StreamSignal whose elements are
// the file contents after each write, which makes configuration reload
// and similar concerns ordinary signal subscriptions.
package watch

import (
	"context"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"

	"github.com/trinity-go/trinity/pkg/trinity"
)

// FileWatcher watches a single file and emits its contents.
type FileWatcher struct {
	path string
}

// NewFileWatcher creates a FileWatcher for the given path.
func NewFileWatcher(path string) *FileWatcher {
	return &FileWatcher{path: path}
}

// Watch starts watching and returns the content and error channels.
// The current contents are emitted immediately so subscribers start
// with a value; afterwards every write or create on the path emits the
// new contents. Both channels close when ctx is cancelled.
func (w *FileWatcher) Watch(ctx context.Context) (<-chan []byte, <-chan error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("watch: create watcher: %w", err)
	}

	if err := watcher.Add(w.path); err != nil {
		watcher.Close()
		return nil, nil, fmt.Errorf("watch: add %s: %w", w.path, err)
	}

	values := make(chan []byte)
	errs := make(chan error)

	go func() {
		defer close(values)
		defer close(errs)
		defer watcher.Close()

		// Emit initial contents.
		if data, err := os.ReadFile(w.path); err == nil {
			select {
			case values <- data:
			case <-ctx.Done():
				return
			}
		}

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				data, err := os.ReadFile(w.path)
				if err != nil {
					select {
					case errs <- err:
					case <-ctx.Done():
						return
					}
					continue
				}
				select {
				case values <- data:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				select {
				case errs <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return values, errs, nil
}

// Signal starts watching and wraps the sequence in a StreamSignal.
// The signal starts in the loading state and flips to data once the
// initial contents arrive. Cancel ctx to end the sequence; dispose the
// signal to release its subscription.
func (w *FileWatcher) Signal(ctx context.Context) (*trinity.StreamSignal[[]byte], error) {
	values, errs, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}
	return trinity.NewStreamSignal(values, errs), nil
}
