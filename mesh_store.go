package tridim

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/smasonuk/tridim/internal/logger"
)

type meshSlot struct {
	source     string
	mesh       *Mesh
	usages     int
	generation int
}

// MeshStore shares meshes between entities. Meshes are keyed by a source
// string; creating a mesh for a key that is already stored returns a handle
// to the stored mesh instead of storing a second copy. Every handle must be
// released once, a slot is freed when its last handle is released.
//
// Freed slots are reused. Each reuse bumps the slot's generation, so handles
// to the previous occupant stay stale.
type MeshStore struct {
	mu          sync.Mutex
	slots       []*meshSlot
	generations []int
	free        []int
}

func NewMeshStore() *MeshStore {
	return &MeshStore{}
}

var defaultMeshStore = NewMeshStore()

// DefaultMeshStore returns the process wide store used by NewEntity and the
// other constructors that do not take a store.
func DefaultMeshStore() *MeshStore {
	return defaultMeshStore
}

// RawSource returns the store key of an in-memory mesh.
func RawSource(name string) string {
	return "RAW:" + name
}

// FileSource returns the store key of a model file.
func FileSource(format, path string) string {
	return format + ":" + path
}

// Create returns a handle to the mesh stored for source, storing mesh when
// the key is new. mesh is owned by the store afterwards.
func (s *MeshStore) Create(source string, mesh *Mesh) *MeshHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.findSource(source); ok {
		s.slots[id].usages++
		return s.handle(id)
	}
	return s.allocate(source, mesh)
}

// ForceCreate always stores mesh in a new slot, even when source is already
// in use. Handles to the older slot keep seeing the old mesh.
func (s *MeshStore) ForceCreate(source string, mesh *Mesh) *MeshHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.allocate(source, mesh)
}

// CreateFromFile returns a handle to the mesh of a model file. The file is
// only read when no mesh is stored for it yet.
func (s *MeshStore) CreateFromFile(path string) (*MeshHandle, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	source := FileSource(format, path)

	s.mu.Lock()
	if id, ok := s.findSource(source); ok {
		s.slots[id].usages++
		handle := s.handle(id)
		s.mu.Unlock()
		return handle, nil
	}
	s.mu.Unlock()

	mesh, err := LoadMeshFile(path)
	if err != nil {
		return nil, err
	}
	return s.Create(source, mesh), nil
}

// ForceCreateFromFile reads a model file again and stores it in a new slot.
func (s *MeshStore) ForceCreateFromFile(path string) (*MeshHandle, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	mesh, err := LoadMeshFile(path)
	if err != nil {
		return nil, err
	}
	return s.ForceCreate(FileSource(format, path), mesh), nil
}

// WithMesh stores mesh for the duration of fn and releases the handle when fn
// returns.
func (s *MeshStore) WithMesh(source string, mesh *Mesh, fn func(*MeshHandle) error) error {
	handle := s.Create(source, mesh)
	defer handle.Release()
	return fn(handle)
}

// FindSource returns the id of the first live slot stored for source.
func (s *MeshStore) FindSource(source string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findSource(source)
}

// MemorySize estimates the bytes held by all live slots.
func (s *MeshStore) MemorySize() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	size := 0
	for _, slot := range s.slots {
		if slot == nil {
			continue
		}
		size += len(slot.source) + 8 + 12*len(slot.mesh.vertices) + 24*len(slot.mesh.faces)
	}
	return size
}

// Len returns the number of live slots.
func (s *MeshStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := 0
	for _, slot := range s.slots {
		if slot != nil {
			live++
		}
	}
	return live
}

func (s *MeshStore) findSource(source string) (int, bool) {
	for id, slot := range s.slots {
		if slot != nil && slot.source == source {
			return id, true
		}
	}
	return 0, false
}

// allocate stores mesh in a freed slot, or in a new one when none is free.
func (s *MeshStore) allocate(source string, mesh *Mesh) *MeshHandle {
	if mesh == nil {
		mesh = EmptyMesh()
	}

	var id int
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
		s.generations[id]++
	} else {
		id = len(s.slots)
		s.slots = append(s.slots, nil)
		s.generations = append(s.generations, 0)
	}
	s.slots[id] = &meshSlot{source: source, mesh: mesh, usages: 1, generation: s.generations[id]}

	logger.Debug("stored mesh",
		zap.String("source", source),
		zap.Int("slot", id),
		zap.Int("generation", s.generations[id]),
		zap.Int("vertices", len(mesh.vertices)),
		zap.Int("faces", len(mesh.faces)))
	return s.handle(id)
}

func (s *MeshStore) handle(id int) *MeshHandle {
	return &MeshHandle{store: s, id: id, generation: s.slots[id].generation}
}

func (s *MeshStore) release(id int) {
	logger.Debug("freed mesh slot", zap.String("source", s.slots[id].source), zap.Int("slot", id))
	s.slots[id] = nil
	s.free = append(s.free, id)
}

func (s *MeshStore) slot(id, generation int) (*meshSlot, error) {
	if id < 0 || id >= len(s.slots) || s.slots[id] == nil || s.slots[id].generation != generation {
		return nil, fmt.Errorf("mesh slot %d generation %d: %w", id, generation, ErrStaleHandle)
	}
	return s.slots[id], nil
}

// MeshHandle is a counted reference to a stored mesh.
type MeshHandle struct {
	store      *MeshStore
	id         int
	generation int
	released   bool
}

func (h *MeshHandle) ID() int {
	return h.id
}

// Source returns the key the mesh was stored under.
func (h *MeshHandle) Source() (string, error) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	slot, err := h.store.slot(h.id, h.generation)
	if err != nil {
		return "", err
	}
	return slot.source, nil
}

// Mesh returns a copy of the stored mesh.
func (h *MeshHandle) Mesh() (*Mesh, error) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	if h.released {
		return nil, fmt.Errorf("mesh slot %d: %w", h.id, ErrStaleHandle)
	}
	slot, err := h.store.slot(h.id, h.generation)
	if err != nil {
		return nil, err
	}
	return slot.mesh.Clone(), nil
}

// Clone returns a new handle to the same slot.
func (h *MeshHandle) Clone() *MeshHandle {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	if slot, err := h.store.slot(h.id, h.generation); err == nil && !h.released {
		slot.usages++
		return h.store.handle(h.id)
	}
	return &MeshHandle{store: h.store, id: h.id, generation: h.generation, released: true}
}

// Release gives the handle back to the store. Releasing a handle twice has
// no effect.
func (h *MeshHandle) Release() {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	if h.released {
		return
	}
	h.released = true

	slot, err := h.store.slot(h.id, h.generation)
	if err != nil {
		logger.Error("released handle of a freed mesh slot", zap.Int("slot", h.id))
		return
	}
	slot.usages--
	if slot.usages <= 0 {
		h.store.release(h.id)
	}
}

// Equal reports whether both handles point at the same slot of the same
// store.
func (h *MeshHandle) Equal(other *MeshHandle) bool {
	if h == nil || other == nil {
		return h == other
	}
	return h.store == other.store && h.id == other.id && h.generation == other.generation
}
