package tridim

// Box sides in the order NewColoredBoxMesh takes their colors.
const (
	BoxNear   = iota // depth -
	BoxFar           // depth +
	BoxBottom        // screen y -
	BoxTop           // screen y +
	BoxLeft          // screen x -
	BoxRight         // screen x +
)

var boxCorners = [8]Vertex{
	{-1, -1, -1}, {1, -1, -1}, {1, -1, 1}, {-1, -1, 1}, // near side (0-3)
	{-1, 1, -1}, {1, 1, -1}, {1, 1, 1}, {-1, 1, 1}, // far side (4-7)
}

// boxSides lists the corners of every side as a quad.
var boxSides = [6][4]int{
	BoxNear:   {0, 1, 2, 3},
	BoxFar:    {5, 4, 7, 6},
	BoxBottom: {4, 5, 1, 0},
	BoxTop:    {3, 2, 6, 7},
	BoxLeft:   {4, 0, 3, 7},
	BoxRight:  {1, 5, 6, 2},
}

// NewBoxMesh creates a box of the given size centered on the origin. Every
// side is made of two triangles.
func NewBoxMesh(size Vertex) *Mesh {
	half := size.Mul(0.5)
	vertices := make([]Vertex, len(boxCorners))
	for i, corner := range boxCorners {
		vertices[i] = Scale(corner, half)
	}

	faces := make([]Face, 0, 2*len(boxSides))
	for _, side := range boxSides {
		faces = append(faces, Face{side[0], side[1], side[2]}, Face{side[0], side[2], side[3]})
	}
	return NewMesh(vertices, faces)
}

// NewColoredBoxMesh creates a box whose sides are filled with one color
// each. Vertices and edges use the default colors.
func NewColoredBoxMesh(size Vertex, sideColors [6]uint32) *Mesh {
	mesh := NewBoxMesh(size)
	defaults := DefaultSimpleColorMaterial()

	splits := make([]SplitMaterial, len(sideColors))
	for side, color := range sideColors {
		splits[side] = SplitMaterial{
			Range:    FaceRange{2 * side, 2*side + 2},
			Material: NewSimpleColorMaterial(defaults.VertexColor, defaults.EdgeColor, color),
		}
	}
	return mesh.WithMaterials(splits...)
}
