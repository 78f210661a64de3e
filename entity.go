package tridim

import (
	"fmt"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/smasonuk/tridim/internal/logger"
)

// Entity is a node of the scene graph: a shared mesh placed by its own
// position, rotation, euler rotation and scale, plus the child entities it
// owns. Rotations are in degrees.
type Entity struct {
	name          string
	store         *MeshStore
	mesh          *MeshHandle
	position      Vertex
	rotation      Vertex
	eulerRotation Vertex
	scale         Vertex
	children      []*Entity
}

// NewEntity creates an entity in the default mesh store. Entities created
// with the same name share one stored mesh.
func NewEntity(name string, mesh *Mesh) *Entity {
	return NewEntityIn(DefaultMeshStore(), name, mesh)
}

func NewEntityIn(store *MeshStore, name string, mesh *Mesh) *Entity {
	return newEntity(store, name, store.Create(RawSource(name), mesh))
}

// NewEntityFromOBJ creates an entity from an OBJ file in the default store.
func NewEntityFromOBJ(name, path string) (*Entity, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	if format != FormatOBJ {
		return nil, fmt.Errorf("%s is not an OBJ file: %w", path, ErrUnsupportedFormat)
	}
	return NewEntityFromFileIn(DefaultMeshStore(), name, path)
}

// NewEntityFromFile creates an entity from any supported model file in the
// default store.
func NewEntityFromFile(name, path string) (*Entity, error) {
	return NewEntityFromFileIn(DefaultMeshStore(), name, path)
}

func NewEntityFromFileIn(store *MeshStore, name, path string) (*Entity, error) {
	handle, err := store.CreateFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not create entity %s: %w", name, err)
	}
	return newEntity(store, name, handle), nil
}

func newEntity(store *MeshStore, name string, handle *MeshHandle) *Entity {
	return &Entity{
		name:  name,
		store: store,
		mesh:  handle,
		scale: Vertex{1, 1, 1},
	}
}

func (e *Entity) Name() string {
	return e.name
}

func (e *Entity) Position() Vertex {
	return e.position
}

func (e *Entity) Rotation() Vertex {
	return e.rotation
}

func (e *Entity) EulerRotation() Vertex {
	return e.eulerRotation
}

func (e *Entity) ScaleFactor() Vertex {
	return e.scale
}

// Store returns the mesh store the entity's mesh lives in.
func (e *Entity) Store() *MeshStore {
	return e.store
}

func (e *Entity) SetPosition(position Vertex) {
	e.position = position
}

func (e *Entity) SetScale(scale Vertex) {
	e.scale = scale
}

// SetRotation sets the rotation, each axis wrapped into [0, 360).
func (e *Entity) SetRotation(rotation Vertex) {
	e.rotation = normalizeDegrees(rotation)
}

// SetEulerRotation sets the euler rotation, each axis wrapped into [0, 360).
func (e *Entity) SetEulerRotation(rotation Vertex) {
	e.eulerRotation = normalizeDegrees(rotation)
}

func normalizeDegrees(rotation Vertex) Vertex {
	for axis := 0; axis < 3; axis++ {
		r := math32.Mod(rotation[axis], 360)
		if r < 0 {
			r = math32.Mod(r+360, 360)
		}
		rotation[axis] = r
	}
	return rotation
}

func (e *Entity) Displace(offset Vertex) {
	e.position = Displace(e.position, offset)
}

// Displaced returns a displaced clone. The clone holds its own mesh handles
// and must be released.
func (e *Entity) Displaced(offset Vertex) *Entity {
	clone := e.Clone()
	clone.Displace(offset)
	return clone
}

// Rotate adds rotation to the current rotation without wrapping it.
func (e *Entity) Rotate(rotation Vertex) {
	e.rotation = e.rotation.Add(rotation)
}

func (e *Entity) Rotated(rotation Vertex) *Entity {
	clone := e.Clone()
	clone.Rotate(rotation)
	return clone
}

func (e *Entity) EulerRotate(rotation Vertex) {
	e.eulerRotation = e.eulerRotation.Add(rotation)
}

func (e *Entity) EulerRotated(rotation Vertex) *Entity {
	clone := e.Clone()
	clone.EulerRotate(rotation)
	return clone
}

// Scale multiplies the current scale per axis.
func (e *Entity) Scale(scale Vertex) {
	e.scale = Scale(e.scale, scale)
}

func (e *Entity) Scaled(scale Vertex) *Entity {
	clone := e.Clone()
	clone.Scale(scale)
	return clone
}

func (e *Entity) AddChild(child *Entity) {
	e.children = append(e.children, child)
}

func (e *Entity) AddChildren(children ...*Entity) {
	e.children = append(e.children, children...)
}

// WithChildren returns a clone of the entity with children appended.
func (e *Entity) WithChildren(children ...*Entity) *Entity {
	clone := e.Clone()
	clone.AddChildren(children...)
	return clone
}

func (e *Entity) Children() []*Entity {
	return e.children
}

func (e *Entity) Child(index int) *Entity {
	return e.children[index]
}

// ChildByName searches the entity and its descendants depth first.
func (e *Entity) ChildByName(name string) *Entity {
	stack := []*Entity{e}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current.name == name {
			return current
		}
		for i := len(current.children) - 1; i >= 0; i-- {
			stack = append(stack, current.children[i])
		}
	}
	return nil
}

// RemoveChildren drops and releases all children.
func (e *Entity) RemoveChildren() {
	for _, child := range e.children {
		child.Release()
	}
	e.children = nil
}

// RemoveChildByName removes every descendant called name and releases it.
// It returns the number of removed entities.
func (e *Entity) RemoveChildByName(name string) int {
	removed := 0
	stack := []*Entity{e}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		kept := current.children[:0]
		for _, child := range current.children {
			if child.name == name {
				child.Release()
				removed++
				continue
			}
			kept = append(kept, child)
		}
		for i := len(kept); i < len(current.children); i++ {
			current.children[i] = nil
		}
		current.children = kept
		stack = append(stack, kept...)
	}
	return removed
}

// Mesh returns a copy of the entity's own mesh, without children or
// transforms. An entity whose mesh can not be read has an empty mesh.
func (e *Entity) Mesh() *Mesh {
	if e.mesh == nil {
		return EmptyMesh()
	}
	mesh, err := e.mesh.Mesh()
	if err != nil {
		logger.Debug("entity has no readable mesh", zap.String("entity", e.name), zap.Error(err))
		return EmptyMesh()
	}
	return mesh
}

// MeshHandle returns the handle of the entity's mesh.
func (e *Entity) MeshHandle() *MeshHandle {
	return e.mesh
}

// SetMesh stores mesh as the new mesh of this entity. Other entities sharing
// the previous mesh keep it.
func (e *Entity) SetMesh(mesh *Mesh) {
	e.replaceHandle(e.store.ForceCreate(RawSource(e.name), mesh))
}

// SetOBJ switches the entity to the mesh of a model file, sharing it with
// every entity that uses the same file. Despite the name any supported
// format is accepted.
func (e *Entity) SetOBJ(path string) error {
	handle, err := e.store.CreateFromFile(path)
	if err != nil {
		return err
	}
	e.replaceHandle(handle)
	return nil
}

// ReloadFile reads the model file again and gives the entity the new mesh.
func (e *Entity) ReloadFile(path string) error {
	handle, err := e.store.ForceCreateFromFile(path)
	if err != nil {
		return err
	}
	e.replaceHandle(handle)
	return nil
}

// ShareMesh switches the entity to the mesh behind handle. The entity takes
// its own reference, the caller still releases handle.
func (e *Entity) ShareMesh(handle *MeshHandle) {
	e.store = handle.store
	e.replaceHandle(handle.Clone())
}

func (e *Entity) replaceHandle(handle *MeshHandle) {
	if e.mesh != nil {
		e.mesh.Release()
	}
	e.mesh = handle
}

// Clone deep copies the entity tree. Every node of the copy holds a new
// handle to the same stored mesh.
func (e *Entity) Clone() *Entity {
	clone := *e
	if e.mesh != nil {
		clone.mesh = e.mesh.Clone()
	}
	clone.children = make([]*Entity, len(e.children))
	for i, child := range e.children {
		clone.children[i] = child.Clone()
	}
	return &clone
}

// Release gives back the mesh handles of the entity and all descendants.
func (e *Entity) Release() {
	stack := []*Entity{e}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current.mesh != nil {
			current.mesh.Release()
		}
		stack = append(stack, current.children...)
	}
}

// applyTransform moves mesh from entity space into parent space: scale,
// rotation, euler rotation and then position. Steps with an all zero vector
// are skipped.
func (e *Entity) applyTransform(mesh *Mesh) {
	if !isZero(e.scale) {
		mesh.Scale(e.scale)
	}
	if !isZero(e.rotation) {
		mesh.Rotate(e.rotation, nil)
	}
	if !isZero(e.eulerRotation) {
		mesh.EulerRotate(e.eulerRotation, nil)
	}
	if !isZero(e.position) {
		mesh.Displace(e.position)
	}
}

// ProcessedMesh returns the mesh of the entity and all its descendants in
// the parent's space. Each child's processed mesh is combined into its
// parent's mesh, in child order, before the parent's transform applies.
func (e *Entity) ProcessedMesh() *Mesh {
	type frame struct {
		entity *Entity
		mesh   *Mesh
		next   int
	}

	stack := []*frame{{entity: e, mesh: e.Mesh()}}
	for {
		top := stack[len(stack)-1]
		if top.next < len(top.entity.children) {
			child := top.entity.children[top.next]
			top.next++
			stack = append(stack, &frame{entity: child, mesh: child.Mesh()})
			continue
		}

		top.entity.applyTransform(top.mesh)
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			return top.mesh
		}
		if len(top.mesh.vertices) > 0 {
			stack[len(stack)-1].mesh.CombineWith(top.mesh)
		}
	}
}
