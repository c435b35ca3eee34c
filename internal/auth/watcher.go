package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// replaceCheckDelay gives atomic-rename writers time to land the new file
// before a Remove/Rename event is treated as a logout.
const replaceCheckDelay = 100 * time.Millisecond

// Watcher reloads the credential store when the backing file is modified by
// another process, so two EraLove clients sharing a credentials file stay in
// sync after either one logs in, refreshes, or logs out.
type Watcher struct {
	store   *Store
	watcher *fsnotify.Watcher

	mu       sync.Mutex
	lastHash string
}

// NewWatcher creates a watcher for the store's backing file. Call Start to
// begin processing events.
func NewWatcher(store *Store) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("eralove auth: create watcher failed: %w", err)
	}
	return &Watcher{store: store, watcher: fsWatcher}, nil
}

// Start watches the credentials file's directory until ctx is cancelled.
// The directory is watched rather than the file itself because atomic
// replaces drop the original inode.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.store.Path())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("eralove auth: create credentials dir failed: %w", err)
	}
	if errAdd := w.watcher.Add(dir); errAdd != nil {
		log.Errorf("failed to watch credentials directory %s: %v", dir, errAdd)
		return errAdd
	}
	log.Debugf("watching credentials file: %s", w.store.Path())

	w.rememberCurrentHash()

	go w.processEvents(ctx)
	return nil
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer func() { _ = w.watcher.Close() }()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case errWatch, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("credentials watcher error: %v", errWatch)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.store.Path()) {
		return
	}

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		// Atomic replace may surface as Rename before the new file is ready.
		time.Sleep(replaceCheckDelay)
		if _, statErr := os.Stat(w.store.Path()); statErr != nil {
			log.Infof("credentials file removed externally, clearing in-memory session")
			w.setHash("")
			if err := w.store.Clear(); err != nil {
				log.Errorf("failed to clear credential store: %v", err)
			}
			return
		}
	}

	if unchanged := w.fileUnchanged(); unchanged {
		log.Debugf("credentials file unchanged (hash match), skipping reload")
		return
	}
	log.Infof("credentials file changed (%s), reloading", event.Op.String())
	if err := w.store.Load(); err != nil {
		log.Errorf("failed to reload credentials: %v", err)
	}
}

// fileUnchanged compares the on-disk content hash against the last one seen
// so self-inflicted writes do not trigger a redundant reload.
func (w *Watcher) fileUnchanged() bool {
	data, errRead := os.ReadFile(w.store.Path())
	if errRead != nil {
		return false
	}
	sum := sha256.Sum256(data)
	curHash := hex.EncodeToString(sum[:])

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lastHash == curHash {
		return true
	}
	w.lastHash = curHash
	return false
}

func (w *Watcher) rememberCurrentHash() {
	if data, err := os.ReadFile(w.store.Path()); err == nil {
		sum := sha256.Sum256(data)
		w.setHash(hex.EncodeToString(sum[:]))
	}
}

func (w *Watcher) setHash(hash string) {
	w.mu.Lock()
	w.lastHash = hash
	w.mu.Unlock()
}
