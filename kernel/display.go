package kernel

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mpkocher/almond/errors"
)

// DisplayData is a renderable payload.
type DisplayData struct {
	Mime string
	Data string
}

// Text builds a text/plain payload.
func Text(format string, args ...any) DisplayData {
	return DisplayData{Mime: "text/plain", Data: fmt.Sprintf(format, args...)}
}

// DisplayPayload is one in-place replacement pushed through the durable
// channel.
type DisplayPayload struct {
	ID    string
	Data  DisplayData
	Final bool
}

// Display is a registered placeholder: an identifier plus the payload the
// client should currently render for it.
type Display struct {
	id    string
	names []string
	reg   *Displays
}

// ID returns the placeholder identifier used for in-place replacement.
func (d *Display) ID() string { return d.id }

// Names returns the variable bindings this placeholder represents.
func (d *Display) Names() []string { return d.names }

// Data returns the currently registered payload.
func (d *Display) Data() DisplayData {
	d.reg.mu.Lock()
	entry := d.reg.entries[d.id]
	d.reg.mu.Unlock()
	entry.sendMu.Lock()
	defer entry.sendMu.Unlock()
	return entry.data
}

// Update replaces this display's payload. Shorthand for Displays.Update.
func (d *Display) Update(data DisplayData, final bool) error {
	return d.reg.Update(d.id, data, final)
}

type displayEntry struct {
	// sendMu serializes UpdateDisplay calls per id so updates for the same
	// id reach the client in invocation order.
	sendMu sync.Mutex
	data   DisplayData
	names  []string
	final  bool
}

// Displays is the session-lifetime async placeholder registry. Registration
// happens synchronously inside the submission that produces the initial
// payload; updates may arrive at arbitrary later times from arbitrary
// goroutines and travel only through the durable CommHandle, never through
// per-submission I/O.
type Displays struct {
	mu        sync.Mutex
	comm      CommHandle
	entries   map[string]*displayEntry
	byName    map[string]string
	renderers map[string]func(any) DisplayData
}

func newDisplays(comm CommHandle) *Displays {
	return &Displays{
		comm:      comm,
		entries:   make(map[string]*displayEntry),
		byName:    make(map[string]string),
		renderers: make(map[string]func(any) DisplayData),
	}
}

// Register creates a placeholder with an initial payload and the variable
// bindings it represents, returning it for inclusion in the registering
// submission's immediate result.
func (ds *Displays) Register(initial DisplayData, names ...string) *Display {
	id := uuid.NewString()

	ds.mu.Lock()
	ds.entries[id] = &displayEntry{data: initial, names: names}
	for _, n := range names {
		ds.byName[n] = id
	}
	ds.mu.Unlock()

	Logger().Debug("display registered",
		zap.String("id", id), zap.Strings("names", names))
	return &Display{id: id, names: names, reg: ds}
}

// Update replaces the payload for id and pushes it through the durable
// channel. Safe to call concurrently from background tasks while a
// different submission is active. Updates for the same id are delivered in
// invocation order; no ordering holds across ids. Fails with
// KindUpdateUnavailable when no durable channel is configured.
func (ds *Displays) Update(id string, data DisplayData, final bool) error {
	ds.mu.Lock()
	entry, ok := ds.entries[id]
	comm := ds.comm
	ds.mu.Unlock()

	if !ok {
		return errors.NotFound(errors.PhaseDisplay, "display "+id)
	}
	if comm == nil {
		return errors.UpdateUnavailable(id)
	}

	entry.sendMu.Lock()
	defer entry.sendMu.Unlock()
	if entry.final {
		return errors.InvalidInput(errors.PhaseDisplay, "display "+id+" is final")
	}
	entry.data = data
	entry.final = final

	if err := comm.UpdateDisplay(DisplayPayload{ID: id, Data: data, Final: final}); err != nil {
		return errors.Wrap(errors.PhaseDisplay, errors.KindUpdateUnavailable, err, "send update")
	}
	return nil
}

// IDFor resolves a variable binding to its display id.
func (ds *Displays) IDFor(name string) (string, bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	id, ok := ds.byName[name]
	return id, ok
}

// UpdateNamed replaces the payload of the display representing binding name.
func (ds *Displays) UpdateNamed(name string, data DisplayData, final bool) error {
	id, ok := ds.IDFor(name)
	if !ok {
		return errors.NotFound(errors.PhaseDisplay, "binding "+name)
	}
	return ds.Update(id, data, final)
}

// RegisterRenderer installs a renderer for values tagged tag. Rendering of
// arbitrary evaluated values dispatches through this registry with a %v
// fallback rather than open-ended reflection.
func (ds *Displays) RegisterRenderer(tag string, fn func(any) DisplayData) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.renderers[tag] = fn
}

// Render produces a payload for a value using the renderer registered for
// tag, falling back to plain text.
func (ds *Displays) Render(tag string, v any) DisplayData {
	ds.mu.Lock()
	fn := ds.renderers[tag]
	ds.mu.Unlock()
	if fn != nil {
		return fn(v)
	}
	return Text("%v", v)
}
