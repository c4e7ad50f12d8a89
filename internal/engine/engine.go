// Package engine provides the directory-backed templating engine the
// pipeline renders with.
//
// Templates are plain HTML template files addressed by slash-separated
// identifiers ("inventory/list" -> {dir}/inventory/list.html). Existence
// is checked against the filesystem on every call and never cached, so
// template files can be added, edited, or removed while the server runs.
// Parsed templates are cached per file and revalidated by modification
// time; an fsnotify watch loop evicts stale entries and broadcasts change
// events for the live-reload hub.
package engine

import (
	"context"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/conneroisu/veneer/internal/errors"
	"github.com/conneroisu/veneer/internal/logging"
)

// DefaultExtension is the template file extension.
const DefaultExtension = ".html"

// debounceDelay groups rapid editor write bursts into one reload event.
const debounceDelay = 150 * time.Millisecond

type parsedTemplate struct {
	tmpl    *template.Template
	modTime time.Time
}

// Engine renders templates from a directory tree.
//
// Exists and Render are safe for concurrent use from many simultaneous
// requests.
type Engine struct {
	dir    string
	ext    string
	logger logging.Logger

	mu     sync.RWMutex
	parsed map[string]parsedTemplate

	subsMu sync.Mutex
	subs   []chan string
}

// New creates an engine serving templates from dir.
func New(dir string, logger logging.Logger) *Engine {
	return NewWithExtension(dir, DefaultExtension, logger)
}

// NewWithExtension creates an engine with a custom template file
// extension. The extension must include the leading dot.
func NewWithExtension(dir, ext string, logger logging.Logger) *Engine {
	if ext == "" {
		ext = DefaultExtension
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}

	return &Engine{
		dir:    dir,
		ext:    ext,
		logger: logger.WithComponent("engine"),
		parsed: make(map[string]parsedTemplate),
	}
}

// Exists reports whether the named template exists right now. The check
// goes to the filesystem every time; existence is deliberately never
// cached so runtime template edits are visible immediately.
func (e *Engine) Exists(name string) bool {
	path, err := e.resolvePath(name)
	if err != nil {
		return false
	}

	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Render executes the named template with the given data and returns the
// rendered text. Nothing is written anywhere on failure, so callers can
// fall back without having partially mutated a response.
func (e *Engine) Render(name string, data any) (string, error) {
	path, err := e.resolvePath(name)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", errors.NewTemplateMissing(name)
	}

	tmpl, err := e.parsedFor(name, path, info.ModTime())
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.NewRenderFailure(name, err)
	}

	return buf.String(), nil
}

// parsedFor returns the cached parse of a template, reparsing when the
// file changed since it was cached.
func (e *Engine) parsedFor(name, path string, modTime time.Time) (*template.Template, error) {
	e.mu.RLock()
	entry, ok := e.parsed[name]
	e.mu.RUnlock()

	if ok && entry.modTime.Equal(modTime) {
		return entry.tmpl, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewTemplateMissing(name)
	}

	tmpl, err := template.New(filepath.Base(path)).Parse(string(raw))
	if err != nil {
		return nil, errors.NewRenderFailure(name, err)
	}

	e.mu.Lock()
	e.parsed[name] = parsedTemplate{tmpl: tmpl, modTime: modTime}
	e.mu.Unlock()

	return tmpl, nil
}

// Subscribe returns a channel receiving the identifier of every changed
// template once Watch is running, and a release func the subscriber
// must call when done with the channel. Slow subscribers drop events
// rather than block the watch loop.
func (e *Engine) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 16)

	e.subsMu.Lock()
	e.subs = append(e.subs, ch)
	e.subsMu.Unlock()

	return ch, func() { e.unsubscribe(ch) }
}

func (e *Engine) unsubscribe(ch chan string) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()

	for i, sub := range e.subs {
		if sub == ch {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			return
		}
	}
}

// Watch runs the filesystem watch loop until the context is canceled.
// Changed templates are evicted from the parse cache and broadcast to
// subscribers after a short debounce.
func (e *Engine) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.NewInternalError("creating template watcher", err)
	}
	defer watcher.Close()

	if err := e.watchTree(watcher); err != nil {
		return err
	}

	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			e.handleEvent(watcher, event)

			if name, ok := e.templateName(event.Name); ok {
				pending[name] = struct{}{}
				if timer == nil {
					timer = time.NewTimer(debounceDelay)
				} else {
					// Drain a stale tick before rearming so an already
					// fired timer cannot flush the pending set early.
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(debounceDelay)
				}
				fire = timer.C
			}

		case <-fire:
			fire = nil
			for name := range pending {
				e.invalidate(name)
				e.broadcast(name)
			}
			pending = make(map[string]struct{})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Warn(ctx, err, "template watcher error")
		}
	}
}

// handleEvent keeps the watch set aligned with the directory tree as
// subdirectories appear.
func (e *Engine) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) {
		return
	}
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		if err := watcher.Add(event.Name); err != nil {
			e.logger.Warn(context.Background(), err, "watching new template directory",
				"dir", event.Name)
		}
	}
}

func (e *Engine) watchTree(watcher *fsnotify.Watcher) error {
	err := filepath.WalkDir(e.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return errors.NewInternalError("watching template directory: "+e.dir, err)
	}

	return nil
}

func (e *Engine) invalidate(name string) {
	e.mu.Lock()
	delete(e.parsed, name)
	e.mu.Unlock()
}

func (e *Engine) broadcast(name string) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()

	for _, ch := range e.subs {
		select {
		case ch <- name:
		default:
		}
	}
}

// templateName maps an absolute file path back to a template identifier,
// or reports false for files outside the template namespace.
func (e *Engine) templateName(path string) (string, bool) {
	if !strings.HasSuffix(path, e.ext) {
		return "", false
	}

	rel, err := filepath.Rel(e.dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}

	name := strings.TrimSuffix(filepath.ToSlash(rel), e.ext)
	return name, true
}

// resolvePath maps a template identifier to its file path, rejecting
// identifiers that would escape the template directory.
func (e *Engine) resolvePath(name string) (string, error) {
	if name == "" || strings.Contains(name, "..") || strings.Contains(name, "\\") ||
		strings.HasPrefix(name, "/") {
		return "", errors.NewTemplateMissing(name)
	}

	return filepath.Join(e.dir, filepath.FromSlash(name)+e.ext), nil
}
