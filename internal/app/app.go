// Package app is the controller the presentation layers talk to. It owns the
// item store, turns intents into store mutations and persists the full list
// after each one.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
	"github.com/idilsaglam/tada/internal/store/cborstore"
)

var (
	// ErrEmptyDescription is returned by AddItem for blank text.
	ErrEmptyDescription = errors.New("empty description")
	// ErrInvalidDescription is returned by AddItem for text that is not valid UTF-8.
	ErrInvalidDescription = errors.New("description is not valid UTF-8")
)

// Gateway persists a whole list to a path.
type Gateway interface {
	Load(path string) ([]model.Item, error)
	Save(items []model.Item, path string) error
}

// Options configure a Controller. Zero values pick defaults.
type Options struct {
	Path    string
	Store   *store.Store
	Gateway Gateway
	Logger  *slog.Logger
}

// Controller resolves presentation intents into state changes and writes.
// Like the store, it is driven by a single goroutine.
type Controller struct {
	path    string
	store   *store.Store
	gateway Gateway
	log     *slog.Logger
}

// New builds a Controller.
func New(opt Options) *Controller {
	c := &Controller{
		path:    opt.Path,
		store:   opt.Store,
		gateway: opt.Gateway,
		log:     opt.Logger,
	}
	if c.path == "" {
		c.path = cborstore.DefaultPath
	}
	if c.store == nil {
		c.store = store.New()
	}
	if c.gateway == nil {
		c.gateway = cborstore.New()
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// Path returns the configured data path as given, before resolution.
func (c *Controller) Path() string { return c.path }

// Store exposes the underlying store, mainly for change subscriptions.
func (c *Controller) Store() *store.Store { return c.store }

// LoadOnStartup hydrates the store from the data path. A missing or empty file
// leaves the list empty with no error. If the file cannot be decoded it is
// renamed to "<path>.corrupt" (or "<path>.corrupt.N" if that is taken), the
// list starts empty and the *CorruptError is returned for display.
func (c *Controller) LoadOnStartup() error {
	items, err := c.gateway.Load(c.path)
	if err != nil {
		c.store.ReplaceAll(nil)

		var ce *cborstore.CorruptError
		if errors.As(err, &ce) {
			backup := backupPath(ce.Path)
			if rerr := os.Rename(ce.Path, backup); rerr != nil {
				c.log.Error("could not move corrupt store aside", "path", ce.Path, "err", rerr)
			} else {
				c.log.Warn("corrupt store moved aside, starting empty", "path", ce.Path, "backup", backup, "err", ce.Err)
			}
			return err
		}
		c.log.Error("load failed", "path", c.path, "err", err)
		return fmt.Errorf("load: %w", err)
	}
	c.store.ReplaceAll(items)
	c.log.Debug("loaded", "path", c.path, "items", len(items))
	return nil
}

// Items returns the current list.
func (c *Controller) Items() []model.Item { return c.store.Snapshot() }

// backupPath returns the first of "<path>.corrupt", "<path>.corrupt.1", ...
// that does not exist yet.
func backupPath(path string) string {
	p := path + ".corrupt"
	for n := 1; ; n++ {
		if _, err := os.Lstat(p); err != nil {
			return p
		}
		p = fmt.Sprintf("%s.corrupt.%d", path, n)
	}
}

// AddItem puts a new incomplete item at the front of the list and saves.
// The description is stored as given; whitespace-only text is refused.
func (c *Controller) AddItem(description string) error {
	if strings.TrimSpace(description) == "" {
		return ErrEmptyDescription
	}
	if !utf8.ValidString(description) {
		return ErrInvalidDescription
	}
	if err := c.store.Insert(0, model.New(description)); err != nil {
		return err
	}
	return c.persist("add")
}

// ToggleItem flips the completion flag of the item at index and saves.
func (c *Controller) ToggleItem(index int) error {
	if _, err := c.store.Toggle(index); err != nil {
		return err
	}
	return c.persist("toggle")
}

// RemoveItem deletes the item at index, saves and returns the removed item.
// The item is returned even when the save fails.
func (c *Controller) RemoveItem(index int) (model.Item, error) {
	it, err := c.store.Remove(index)
	if err != nil {
		return model.Item{}, err
	}
	return it, c.persist("remove")
}

// persist writes the whole list. On failure the in-memory list stays as is
// and is rewritten by the next successful save.
func (c *Controller) persist(op string) error {
	items := c.store.Snapshot()
	if err := c.gateway.Save(items, c.path); err != nil {
		c.log.Error("save failed", "op", op, "path", c.path, "err", err)
		return err
	}
	c.log.Debug("saved", "op", op, "path", c.path, "items", len(items))
	return nil
}
