// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package directory

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/jeranaias/aura-tui/internal/model"
)

// Lister fetches conversation summaries, most recent first.
type Lister interface {
	ListConversations(ctx context.Context) ([]model.Summary, error)
}

// =============================================================================
// DIRECTORY
// =============================================================================

// Directory holds conversation summaries in service order.
type Directory struct {
	mu sync.RWMutex

	items       []model.Summary
	refreshedAt time.Time
	lastErr     error

	// issued numbers refreshes as they start; applied is the newest whose
	// result was stored.
	issued  uint64
	applied uint64

	listeners  map[int]func()
	nextListen int
}

// New creates an empty directory.
func New() *Directory {
	return &Directory{listeners: make(map[int]func())}
}

// Refresh fetches the list and replaces the cached items unless a newer
// refresh has already been applied.
func (d *Directory) Refresh(ctx context.Context, lister Lister) error {
	d.mu.Lock()
	d.issued++
	seq := d.issued
	d.mu.Unlock()

	items, err := lister.ListConversations(ctx)

	d.mu.Lock()
	if seq < d.applied {
		d.mu.Unlock()
		return nil
	}
	d.applied = seq
	if err != nil {
		d.lastErr = err
		d.mu.Unlock()
		return errors.Wrap(err, "refresh directory")
	}
	d.items = append([]model.Summary(nil), items...)
	d.refreshedAt = time.Now()
	d.lastErr = nil
	d.mu.Unlock()

	d.notify()
	return nil
}

// Replace sets the items directly.
func (d *Directory) Replace(items []model.Summary) {
	d.mu.Lock()
	d.items = append([]model.Summary(nil), items...)
	d.refreshedAt = time.Now()
	d.mu.Unlock()
	d.notify()
}

// Items returns a copy of the cached summaries.
func (d *Directory) Items() []model.Summary {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.Summary(nil), d.items...)
}

// Len returns the number of cached summaries.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.items)
}

// Find returns the summary with the given id.
func (d *Directory) Find(id model.ID) (model.Summary, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, s := range d.items {
		if s.ID == id {
			return s, true
		}
	}
	return model.Summary{}, false
}

// IndexOf returns the position of id, or -1.
func (d *Directory) IndexOf(id model.ID) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for i, s := range d.items {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// At returns the summary at position i.
func (d *Directory) At(i int) (model.Summary, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i < 0 || i >= len(d.items) {
		return model.Summary{}, false
	}
	return d.items[i], true
}

// RefreshedAt returns when the items were last replaced.
func (d *Directory) RefreshedAt() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.refreshedAt
}

// LastError returns the error of the most recent refresh, if it failed.
func (d *Directory) LastError() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastErr
}

// Subscribe registers fn to run after the items change.
func (d *Directory) Subscribe(fn func()) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := d.nextListen
	d.nextListen++
	d.listeners[key] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.listeners, key)
	}
}

func (d *Directory) notify() {
	d.mu.RLock()
	fns := make([]func(), 0, len(d.listeners))
	for _, fn := range d.listeners {
		fns = append(fns, fn)
	}
	d.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}
