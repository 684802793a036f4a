package resolve

import (
	"sync"
	"time"
)

// Entry is an entity known to the batch overlay.
type Entry struct {
	ID         string
	Name       string
	ResolvedAt time.Time
}

type modelSlot struct {
	manufacturerID string
	name           NameKey
	year           int
}

type index struct {
	manufacturers map[NameKey]Entry
	productLines  map[ProductLineKey]Entry
	models        map[modelSlot]Entry
	serials       map[SerialKey]Entry
}

func newIndex() index {
	return index{
		manufacturers: map[NameKey]Entry{},
		productLines:  map[ProductLineKey]Entry{},
		models:        map[modelSlot]Entry{},
		serials:       map[SerialKey]Entry{},
	}
}

func (ix index) merge(other index) {
	for k, v := range other.manufacturers {
		ix.manufacturers[k] = v
	}
	for k, v := range other.productLines {
		ix.productLines[k] = v
	}
	for k, v := range other.models {
		ix.models[k] = v
	}
	for k, v := range other.serials {
		ix.serials[k] = v
	}
}

// Overlay indexes the entities committed by earlier submissions of the
// current batch. Entries are published only after their submission commits.
type Overlay struct {
	mu        sync.RWMutex
	committed index
}

// NewOverlay returns an empty batch overlay.
func NewOverlay() *Overlay {
	return &Overlay{committed: newIndex()}
}

// Begin opens the resolution session for one submission.
func (o *Overlay) Begin() *Session {
	return &Session{overlay: o, pending: newIndex()}
}

// Len reports the number of committed entries.
func (o *Overlay) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.committed.manufacturers) + len(o.committed.productLines) + len(o.committed.models) + len(o.committed.serials)
}

// Session is the view one submission resolves against: its own pending
// entities first, then the committed overlay. A session is used by a single
// goroutine.
type Session struct {
	overlay *Overlay
	pending index
	done    bool
}

// Commit publishes the session's entities to the overlay. Call it only after
// the submission's transaction committed.
func (s *Session) Commit() {
	if s == nil || s.done {
		return
	}
	s.done = true
	s.overlay.mu.Lock()
	s.overlay.committed.merge(s.pending)
	s.overlay.mu.Unlock()
}

// Discard drops the session's entities.
func (s *Session) Discard() {
	if s == nil {
		return
	}
	s.done = true
	s.pending = newIndex()
}

func (s *Session) RecordManufacturer(name string, e Entry) {
	s.pending.manufacturers[NewNameKey(name)] = e
}

func (s *Session) RecordProductLine(manufacturerID, name string, e Entry) {
	s.pending.productLines[ProductLineKey{ManufacturerID: manufacturerID, Name: NewNameKey(name)}] = e
}

func (s *Session) RecordModel(manufacturerID, name string, year int, e Entry) {
	s.pending.models[modelSlot{manufacturerID: manufacturerID, name: NewNameKey(name), year: year}] = e
}

func (s *Session) RecordSerial(serial string, e Entry) {
	s.pending.serials[NewSerialKey(serial)] = e
}

func lookup[K comparable](s *Session, pick func(index) map[K]Entry, key K) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	if e, ok := pick(s.pending)[key]; ok {
		return e, true
	}
	s.overlay.mu.RLock()
	defer s.overlay.mu.RUnlock()
	e, ok := pick(s.overlay.committed)[key]
	return e, ok
}

func (s *Session) manufacturer(key NameKey) (Entry, bool) {
	return lookup(s, func(ix index) map[NameKey]Entry { return ix.manufacturers }, key)
}

func (s *Session) productLine(key ProductLineKey) (Entry, bool) {
	return lookup(s, func(ix index) map[ProductLineKey]Entry { return ix.productLines }, key)
}

func (s *Session) model(key ModelKey) (Entry, bool) {
	year, ok := key.Year.Int()
	if !ok {
		return Entry{}, false
	}
	slot := modelSlot{manufacturerID: key.ManufacturerID, name: key.Name, year: year}
	return lookup(s, func(ix index) map[modelSlot]Entry { return ix.models }, slot)
}

func (s *Session) serial(key SerialKey) (Entry, bool) {
	return lookup(s, func(ix index) map[SerialKey]Entry { return ix.serials }, key)
}
