/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package catalog

import (
	"fmt"
	"log"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Provider publishes the current catalog to concurrent readers. A schema
// release change is a full rebuild followed by an atomic pointer swap; the
// catalog itself is never mutated in place, so readers need no locking.
type Provider struct {
	current atomic.Pointer[Catalog]
	path    string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewProvider creates a provider serving the given catalog. path is the
// definition file the catalog was built from; empty for the embedded
// release (which never changes at runtime).
func NewProvider(cat *Catalog, path string) *Provider {
	p := &Provider{path: path}
	p.current.Store(cat)
	return p
}

// Current returns the catalog readers should use for this request
func (p *Provider) Current() *Catalog {
	return p.current.Load()
}

// Rebuild reloads the definition file, builds a fresh catalog, and swaps it
// in. On failure the previous catalog stays published.
func (p *Provider) Rebuild() error {
	if p.path == "" {
		return fmt.Errorf("no schema definition path to rebuild from")
	}
	cat, err := Load(p.path)
	if err != nil {
		return err
	}
	old := p.current.Swap(cat)
	log.Printf("[CATALOG] Rebuilt schema catalog: release %s -> %s, %d tables, %d edges",
		old.Release(), cat.Release(), len(cat.Tables()), len(cat.Edges()))
	return nil
}

// Watch starts watching the definition file and rebuilds on change.
// Watching the directory rather than the file itself handles editors that
// delete and recreate on save.
func (p *Provider) Watch() error {
	if p.path == "" {
		return fmt.Errorf("no schema definition path to watch")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	dir := filepath.Dir(p.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	p.watcher = watcher
	p.done = make(chan struct{})
	go p.watch()
	return nil
}

// Stop stops the file watcher, if one is running
func (p *Provider) Stop() {
	if p.watcher == nil {
		return
	}
	close(p.done)
	p.watcher.Close()
	p.watcher = nil
}

func (p *Provider) watch() {
	// debounce rapid successive events from a single save
	var debounce *time.Timer
	const debounceDelay = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if event.Name != p.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceDelay, func() {
					if err := p.Rebuild(); err != nil {
						log.Printf("[CATALOG] Keeping previous catalog, rebuild of %s failed: %v", p.path, err)
					}
				})
			}

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[CATALOG] Watcher error for %s: %v", p.path, err)

		case <-p.done:
			if debounce != nil {
				debounce.Stop()
			}
			return
		}
	}
}
