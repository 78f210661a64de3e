package tridim

// ColoredVertex is a vertex paired with the ARGB color it is drawn with. It
// only exists while a scene is being rasterized.
type ColoredVertex struct {
	Vertex Vertex
	Color  uint32
}

// Material resolves the colors a face is drawn with. The face index is the
// index of the face in the mesh being drawn.
type Material interface {
	ColorVertex(face int, v Vertex) ColoredVertex
	ColorEdge(face int, vertices []Vertex) []ColoredVertex
	ColorFace(face int, vertices []Vertex) []ColoredVertex
}

func colorAll(vertices []Vertex, color uint32) []ColoredVertex {
	colored := make([]ColoredVertex, len(vertices))
	for i, v := range vertices {
		colored[i] = ColoredVertex{Vertex: v, Color: color}
	}
	return colored
}

// SimpleColorMaterial draws every face with one fixed color per role.
type SimpleColorMaterial struct {
	VertexColor uint32
	EdgeColor   uint32
	FaceColor   uint32
}

func NewSimpleColorMaterial(vertexColor, edgeColor, faceColor uint32) *SimpleColorMaterial {
	return &SimpleColorMaterial{
		VertexColor: vertexColor,
		EdgeColor:   edgeColor,
		FaceColor:   faceColor,
	}
}

// DefaultSimpleColorMaterial returns the material new meshes start with:
// red vertices, yellow edges and dark grey faces.
func DefaultSimpleColorMaterial() *SimpleColorMaterial {
	return NewSimpleColorMaterial(0xFFFF0000, 0xFFFFFF00, 0xFF333333)
}

func (m *SimpleColorMaterial) ColorVertex(_ int, v Vertex) ColoredVertex {
	return ColoredVertex{Vertex: v, Color: m.VertexColor}
}

func (m *SimpleColorMaterial) ColorEdge(_ int, vertices []Vertex) []ColoredVertex {
	return colorAll(vertices, m.EdgeColor)
}

func (m *SimpleColorMaterial) ColorFace(_ int, vertices []Vertex) []ColoredVertex {
	return colorAll(vertices, m.FaceColor)
}

// FaceRange is a half open range of face indices.
type FaceRange [2]int

func (r FaceRange) Contains(face int) bool {
	return face >= r[0] && face < r[1]
}

// Shifted returns the range moved by offset.
func (r FaceRange) Shifted(offset int) FaceRange {
	return FaceRange{r[0] + offset, r[1] + offset}
}

// SplitMaterial assigns a material to a range of faces.
type SplitMaterial struct {
	Range    FaceRange
	Material Material
}

// MultiMaterial composes materials over face ranges. Ranges may overlap;
// the first added range containing a face decides its colors. Faces not
// covered by any range are transparent.
type MultiMaterial struct {
	materials []SplitMaterial
}

func NewMultiMaterial(materials ...SplitMaterial) *MultiMaterial {
	m := &MultiMaterial{materials: make([]SplitMaterial, 0, len(materials))}
	m.materials = append(m.materials, materials...)
	return m
}

// Add appends a material for the given face range.
func (m *MultiMaterial) Add(faces FaceRange, material Material) {
	m.materials = append(m.materials, SplitMaterial{Range: faces, Material: material})
}

// Materials returns the split materials in insertion order.
func (m *MultiMaterial) Materials() []SplitMaterial {
	return m.materials
}

// Clone copies the range table. The materials themselves are shared.
func (m *MultiMaterial) Clone() *MultiMaterial {
	return NewMultiMaterial(m.materials...)
}

// MaterialForFace returns the first material whose range contains face.
func (m *MultiMaterial) MaterialForFace(face int) (Material, bool) {
	for _, split := range m.materials {
		if split.Range.Contains(face) {
			return split.Material, true
		}
	}
	return nil, false
}

func (m *MultiMaterial) ColorVertex(face int, v Vertex) ColoredVertex {
	if material, ok := m.MaterialForFace(face); ok {
		return material.ColorVertex(face, v)
	}
	return ColoredVertex{Vertex: v}
}

func (m *MultiMaterial) ColorEdge(face int, vertices []Vertex) []ColoredVertex {
	if material, ok := m.MaterialForFace(face); ok {
		return material.ColorEdge(face, vertices)
	}
	return colorAll(vertices, 0)
}

func (m *MultiMaterial) ColorFace(face int, vertices []Vertex) []ColoredVertex {
	if material, ok := m.MaterialForFace(face); ok {
		return material.ColorFace(face, vertices)
	}
	return colorAll(vertices, 0)
}
