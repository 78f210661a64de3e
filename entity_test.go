package tridim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntityDefaults(t *testing.T) {
	store := NewMeshStore()
	e := NewEntityIn(store, "cube", newCubeMesh(1))
	defer e.Release()

	assert.Equal(t, "cube", e.Name())
	assert.Equal(t, Vertex{}, e.Position())
	assert.Equal(t, Vertex{}, e.Rotation())
	assert.Equal(t, Vertex{}, e.EulerRotation())
	assert.Equal(t, Vertex{1, 1, 1}, e.ScaleFactor())
	assert.Same(t, store, e.Store())
	assert.Len(t, e.Mesh().Faces(), 12)
}

func TestEntitiesWithTheSameNameShareAMesh(t *testing.T) {
	store := NewMeshStore()
	a := NewEntityIn(store, "wheel", newCubeMesh(1))
	b := NewEntityIn(store, "wheel", newTriangleMesh())

	assert.True(t, a.MeshHandle().Equal(b.MeshHandle()))
	assert.Len(t, b.Mesh().Faces(), 12, "the first stored mesh wins")

	a.Release()
	b.Release()
	assert.Equal(t, 0, store.Len())
}

func TestEntityRotationSettersNormalize(t *testing.T) {
	e := NewEntityIn(NewMeshStore(), "e", EmptyMesh())
	defer e.Release()

	testCases := []struct {
		input    Vertex
		expected Vertex
	}{
		{Vertex{0, 90, 359}, Vertex{0, 90, 359}},
		{Vertex{360, 720, 450}, Vertex{0, 0, 90}},
		{Vertex{-90, -360, -450}, Vertex{270, 0, 270}},
	}
	for _, tc := range testCases {
		e.SetRotation(tc.input)
		assert.Equal(t, tc.expected, e.Rotation())
		e.SetEulerRotation(tc.input)
		assert.Equal(t, tc.expected, e.EulerRotation())
	}
}

func TestEntityRelativeTransforms(t *testing.T) {
	e := NewEntityIn(NewMeshStore(), "e", EmptyMesh())
	defer e.Release()

	e.Displace(Vertex{1, 2, 3})
	e.Displace(Vertex{1, 0, 0})
	assert.Equal(t, Vertex{2, 2, 3}, e.Position())

	e.Rotate(Vertex{0, 0, 300})
	e.Rotate(Vertex{0, 0, 100})
	assert.Equal(t, Vertex{0, 0, 400}, e.Rotation(), "relative rotation does not wrap")

	e.EulerRotate(Vertex{10, 0, 0})
	assert.Equal(t, Vertex{10, 0, 0}, e.EulerRotation())

	e.Scale(Vertex{2, 3, 4})
	e.Scale(Vertex{2, 1, 0.5})
	assert.Equal(t, Vertex{4, 3, 2}, e.ScaleFactor())
}

func TestEntityCopyReturningTransforms(t *testing.T) {
	store := NewMeshStore()
	e := NewEntityIn(store, "e", newTriangleMesh())

	displaced := e.Displaced(Vertex{5, 0, 0})
	rotated := e.Rotated(Vertex{0, 0, 90})
	eulerRotated := e.EulerRotated(Vertex{90, 0, 0})
	scaled := e.Scaled(Vertex{2, 2, 2})

	assert.Equal(t, Vertex{}, e.Position())
	assert.Equal(t, Vertex{5, 0, 0}, displaced.Position())
	assert.Equal(t, Vertex{0, 0, 90}, rotated.Rotation())
	assert.Equal(t, Vertex{90, 0, 0}, eulerRotated.EulerRotation())
	assert.Equal(t, Vertex{2, 2, 2}, scaled.ScaleFactor())
	assert.True(t, displaced.MeshHandle().Equal(e.MeshHandle()))

	for _, entity := range []*Entity{e, displaced, rotated, eulerRotated, scaled} {
		entity.Release()
	}
	assert.Equal(t, 0, store.Len())
}

func newFamily(store *MeshStore) *Entity {
	root := NewEntityIn(store, "root", newTriangleMesh())
	arm := NewEntityIn(store, "arm", newTriangleMesh())
	hand := NewEntityIn(store, "hand", newTriangleMesh())
	arm.AddChild(hand)
	root.AddChildren(arm, NewEntityIn(store, "leg", newTriangleMesh()))
	return root
}

func TestEntityChildren(t *testing.T) {
	store := NewMeshStore()
	root := newFamily(store)
	defer root.Release()

	require.Len(t, root.Children(), 2)
	assert.Equal(t, "arm", root.Child(0).Name())
	assert.Same(t, root, root.ChildByName("root"))
	assert.Equal(t, "hand", root.ChildByName("hand").Name())
	assert.Nil(t, root.ChildByName("tail"))

	withTail := root.WithChildren(NewEntityIn(store, "tail", EmptyMesh()))
	defer withTail.Release()
	assert.Len(t, withTail.Children(), 3)
	assert.Len(t, root.Children(), 2)
}

func TestEntityRemoveChildByName(t *testing.T) {
	store := NewMeshStore()
	root := newFamily(store)
	root.Child(1).AddChild(NewEntityIn(store, "hand", EmptyMesh()))

	assert.Equal(t, 2, root.RemoveChildByName("hand"))
	assert.Nil(t, root.ChildByName("hand"))
	assert.NotNil(t, root.ChildByName("arm"))

	root.RemoveChildren()
	assert.Empty(t, root.Children())

	root.Release()
	assert.Equal(t, 0, store.Len())
}

func TestEntityCloneIsDeep(t *testing.T) {
	store := NewMeshStore()
	root := newFamily(store)
	clone := root.Clone()

	clone.ChildByName("hand").SetPosition(Vertex{9, 9, 9})
	assert.Equal(t, Vertex{}, root.ChildByName("hand").Position())
	assert.True(t, clone.MeshHandle().Equal(root.MeshHandle()))

	root.Release()
	assert.Len(t, clone.ChildByName("hand").Mesh().Faces(), 1, "clone keeps the meshes alive")
	clone.Release()
	assert.Equal(t, 0, store.Len())
}

func TestEntitySetMesh(t *testing.T) {
	store := NewMeshStore()
	a := NewEntityIn(store, "shared", newCubeMesh(1))
	b := NewEntityIn(store, "shared", newCubeMesh(1))

	b.SetMesh(newTriangleMesh())
	assert.Len(t, a.Mesh().Faces(), 12)
	assert.Len(t, b.Mesh().Faces(), 1)
	assert.Equal(t, 2, store.Len())

	a.Release()
	b.Release()
	assert.Equal(t, 0, store.Len())
}

func TestEntityShareMesh(t *testing.T) {
	store := NewMeshStore()
	a := NewEntityIn(store, "a", newCubeMesh(1))
	b := NewEntityIn(store, "b", newCubeMesh(2))

	handle := store.ForceCreate(RawSource("replacement"), newTriangleMesh())
	a.ShareMesh(handle)
	b.ShareMesh(handle)
	handle.Release()

	assert.True(t, a.MeshHandle().Equal(b.MeshHandle()))
	assert.Len(t, b.Mesh().Faces(), 1)
	assert.Equal(t, 1, store.Len())

	a.Release()
	assert.Len(t, b.Mesh().Faces(), 1)
	b.Release()
	assert.Equal(t, 0, store.Len())
}

func TestEntityFromFiles(t *testing.T) {
	objPath := writeFile(t, "triangle.obj", triangleOBJ)
	store := NewMeshStore()

	e, err := NewEntityFromFileIn(store, "tri", objPath)
	require.NoError(t, err)
	assert.Len(t, e.Mesh().Faces(), 1)

	require.NoError(t, e.SetOBJ(objPath))
	assert.Equal(t, 1, store.Len())

	plyPath := writeFile(t, "quad.ply", quadPLY)
	require.NoError(t, e.SetOBJ(plyPath))
	assert.Len(t, e.Mesh().Faces(), 3)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, e.ReloadFile(plyPath))
	assert.Len(t, e.Mesh().Faces(), 3)

	err = e.SetOBJ(writeFile(t, "broken.obj", "f 1 2 3 4\n"))
	assert.ErrorIs(t, err, ErrFaceNotTriangle)
	assert.Len(t, e.Mesh().Faces(), 3, "a failed load keeps the current mesh")

	_, err = NewEntityFromOBJ("ply", plyPath)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	e.Release()
	assert.Equal(t, 0, store.Len())
}

func TestEntityWithReleasedMeshIsEmpty(t *testing.T) {
	e := NewEntityIn(NewMeshStore(), "e", newCubeMesh(1))
	e.Release()

	assert.True(t, e.Mesh().IsEmpty())
	assert.True(t, e.ProcessedMesh().IsEmpty())
}

func TestProcessedMeshTransformOrder(t *testing.T) {
	store := NewMeshStore()
	e := NewEntityIn(store, "point", NewMesh([]Vertex{{1, 0, 0}}, nil))
	defer e.Release()

	e.SetScale(Vertex{2, 2, 2})
	e.SetRotation(Vertex{0, 0, 90})
	e.SetPosition(Vertex{10, 0, 0})

	// Scaled to (2,0,0), rotated to (0,-2,0), then moved.
	assertVertex(t, Vertex{10, -2, 0}, e.ProcessedMesh().Vertices()[0])

	e.SetEulerRotation(Vertex{0, 0, 90})
	// The euler rotation turns (0,-2,0) further to (-2,0,0).
	assertVertex(t, Vertex{8, 0, 0}, e.ProcessedMesh().Vertices()[0])
}

func TestProcessedMeshSkipsZeroScale(t *testing.T) {
	e := NewEntityIn(NewMeshStore(), "point", NewMesh([]Vertex{{1, 2, 3}}, nil))
	defer e.Release()

	e.SetScale(Vertex{})
	assert.Equal(t, Vertex{1, 2, 3}, e.ProcessedMesh().Vertices()[0])
}

func TestProcessedMeshCombinesChildren(t *testing.T) {
	store := NewMeshStore()
	root := NewEntityIn(store, "root", NewMesh([]Vertex{{0, 0, 0}}, nil))
	child := NewEntityIn(store, "child", NewMesh([]Vertex{{1, 0, 0}}, nil))
	grandchild := NewEntityIn(store, "grandchild", NewMesh([]Vertex{{0, 0, 1}}, nil))
	empty := NewEntityIn(store, "empty", EmptyMesh())
	defer root.Release()

	grandchild.SetPosition(Vertex{0, 0, 1})
	child.AddChild(grandchild)
	child.SetPosition(Vertex{1, 0, 0})
	root.AddChildren(child, empty)
	root.SetPosition(Vertex{0, 5, 0})

	processed := root.ProcessedMesh()
	assert.Equal(t, []Vertex{{0, 5, 0}, {2, 5, 0}, {1, 5, 2}}, processed.Vertices())
	assert.Len(t, root.Mesh().Vertices(), 1, "processing must not change the stored mesh")
}

func TestProcessedMeshShiftsChildFaces(t *testing.T) {
	store := NewMeshStore()
	root := NewEntityIn(store, "root", newCubeMesh(1))
	root.AddChild(NewEntityIn(store, "tri", newTriangleMesh()))
	defer root.Release()

	processed := root.ProcessedMesh()
	require.Len(t, processed.Faces(), 13)
	assert.Equal(t, Face{8, 9, 10}, processed.Faces()[12])
	assert.Equal(t, FaceRange{12, 13}, processed.Materials().Materials()[1].Range)
}
