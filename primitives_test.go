package tridim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoxMesh(t *testing.T) {
	box := NewBoxMesh(Vertex{2, 4, 6})
	require.Len(t, box.Vertices(), 8)
	require.Len(t, box.Faces(), 12)

	min, max := box.Bounds()
	assert.Equal(t, Vertex{-1, -2, -3}, min)
	assert.Equal(t, Vertex{1, 2, 3}, max)

	// Both triangles of a side lie in that side's plane.
	sideAxis := [6]int{DAxis, DAxis, YAxis, YAxis, XAxis, XAxis}
	for side, axis := range sideAxis {
		for _, face := range box.Faces()[2*side : 2*side+2] {
			value := box.Vertices()[face[0]][axis]
			for _, index := range face {
				assert.Equal(t, value, box.Vertices()[index][axis], "side %d", side)
			}
		}
	}
}

func TestNewColoredBoxMesh(t *testing.T) {
	colors := [6]uint32{0xFF000001, 0xFF000002, 0xFF000003, 0xFF000004, 0xFF000005, 0xFF000006}
	box := NewColoredBoxMesh(Vertex{1, 1, 1}, colors)

	for side, color := range colors {
		for _, face := range []int{2 * side, 2*side + 1} {
			assert.Equal(t, color, box.Materials().ColorFace(face, []Vertex{{}})[0].Color)
		}
	}
	assert.Equal(t, DefaultSimpleColorMaterial().VertexColor, box.Materials().ColorVertex(0, Vertex{}).Color)
}

func TestDrawColoredBoxShowsNearSide(t *testing.T) {
	store := NewMeshStore()
	colors := [6]uint32{}
	colors[BoxNear] = 0xFF00FF00
	colors[BoxFar] = 0xFF0000FF
	box := NewEntityIn(store, "box", NewColoredBoxMesh(Vertex{40, 40, 40}, colors))
	box.SetPosition(Vertex{0, 80, 0})
	scene := NewSceneIn(store, sceneWidth, sceneHeight, nil, box)
	defer scene.Release()

	buffer := scene.Draw()
	assert.Equal(t, uint32(0xFF00FF00), buffer.At(110, 59))
	assert.Empty(t, pixelsWithColor(buffer, 0xFF0000FF), "the far side is hidden")

	box.SetRotation(Vertex{180, 0, 0})
	buffer = scene.Draw()
	assert.Equal(t, uint32(0xFF0000FF), buffer.At(110, 59))
}
