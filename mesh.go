package tridim

// Mesh is an indexed triangle mesh with a material table mapping face ranges
// to materials.
type Mesh struct {
	vertices  []Vertex
	faces     []Face
	materials *MultiMaterial
}

// NewMesh creates a mesh from raw vertex and face data. All faces start with
// the default material.
func NewMesh(vertices []Vertex, faces []Face) *Mesh {
	return &Mesh{
		vertices: vertices,
		faces:    faces,
		materials: NewMultiMaterial(SplitMaterial{
			Range:    FaceRange{0, len(faces)},
			Material: DefaultSimpleColorMaterial(),
		}),
	}
}

func EmptyMesh() *Mesh {
	return NewMesh(nil, nil)
}

func (m *Mesh) Vertices() []Vertex {
	return m.vertices
}

func (m *Mesh) Faces() []Face {
	return m.faces
}

func (m *Mesh) Materials() *MultiMaterial {
	return m.materials
}

// IsEmpty reports whether the mesh has no geometry at all.
func (m *Mesh) IsEmpty() bool {
	return len(m.vertices) == 0 && len(m.faces) == 0
}

func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		vertices:  make([]Vertex, len(m.vertices)),
		faces:     make([]Face, len(m.faces)),
		materials: m.materials.Clone(),
	}
	copy(clone.vertices, m.vertices)
	copy(clone.faces, m.faces)
	return clone
}

// CombineWith appends addition to the mesh. The appended faces are shifted by
// the vertex count and the appended material ranges by the face count the
// mesh had before the call.
func (m *Mesh) CombineWith(addition *Mesh) {
	vertexShift := len(m.vertices)
	faceShift := len(m.faces)

	for _, split := range addition.materials.Materials() {
		m.materials.Add(split.Range.Shifted(faceShift), split.Material)
	}

	m.vertices = append(m.vertices, addition.vertices...)
	for _, face := range addition.faces {
		m.faces = append(m.faces, face.Shifted(vertexShift))
	}
}

func (m *Mesh) CombinedWith(addition *Mesh) *Mesh {
	clone := m.Clone()
	clone.CombineWith(addition)
	return clone
}

// SetMaterial replaces the material table with a single material covering
// every face.
func (m *Mesh) SetMaterial(material Material) {
	m.materials = NewMultiMaterial(SplitMaterial{Range: FaceRange{0, len(m.faces)}, Material: material})
}

func (m *Mesh) WithMaterial(material Material) *Mesh {
	return m.WithMaterials(SplitMaterial{Range: FaceRange{0, len(m.faces)}, Material: material})
}

func (m *Mesh) WithMaterials(materials ...SplitMaterial) *Mesh {
	clone := m.Clone()
	clone.materials = NewMultiMaterial(materials...)
	return clone
}

// AddMaterial appends a material for a face range. Ranges added earlier
// keep priority over it.
func (m *Mesh) AddMaterial(faces FaceRange, material Material) {
	m.materials.Add(faces, material)
}

func (m *Mesh) Displace(offset Vertex) {
	for i := range m.vertices {
		m.vertices[i] = Displace(m.vertices[i], offset)
	}
}

func (m *Mesh) Displaced(offset Vertex) *Mesh {
	clone := m.Clone()
	clone.Displace(offset)
	return clone
}

// Rotate rotates every vertex by rotation, given in degrees per axis, as one
// combined rotation.
func (m *Mesh) Rotate(rotation [3]float32, anchor *Vertex) {
	dataset := NewRotationDataset(degreesToRadians(rotation))
	for i := range m.vertices {
		m.vertices[i] = RotateUsingDataset(m.vertices[i], dataset, anchor)
	}
}

func (m *Mesh) Rotated(rotation [3]float32, anchor *Vertex) *Mesh {
	clone := m.Clone()
	clone.Rotate(rotation, anchor)
	return clone
}

// EulerRotate applies three sequential rotations, given in degrees per axis.
func (m *Mesh) EulerRotate(rotation [3]float32, anchor *Vertex) {
	radians := degreesToRadians(rotation)
	for i := range m.vertices {
		m.vertices[i] = EulerRotate(m.vertices[i], radians, anchor)
	}
}

func (m *Mesh) EulerRotated(rotation [3]float32, anchor *Vertex) *Mesh {
	clone := m.Clone()
	clone.EulerRotate(rotation, anchor)
	return clone
}

func (m *Mesh) Scale(scale Vertex) {
	for i := range m.vertices {
		m.vertices[i] = Scale(m.vertices[i], scale)
	}
}

func (m *Mesh) Scaled(scale Vertex) *Mesh {
	clone := m.Clone()
	clone.Scale(scale)
	return clone
}

// Bounds returns the corners of the axis aligned box around all vertices.
// An empty mesh has zero bounds.
func (m *Mesh) Bounds() (min, max Vertex) {
	if len(m.vertices) == 0 {
		return Vertex{}, Vertex{}
	}
	min, max = m.vertices[0], m.vertices[0]
	for _, v := range m.vertices[1:] {
		for axis := 0; axis < 3; axis++ {
			if v[axis] < min[axis] {
				min[axis] = v[axis]
			} else if v[axis] > max[axis] {
				max[axis] = v[axis]
			}
		}
	}
	return min, max
}

// Size returns the extent of the mesh along each axis.
func (m *Mesh) Size() Vertex {
	min, max := m.Bounds()
	return max.Sub(min)
}

// Centered returns a copy moved so the center of its bounding box lies on
// the origin.
func (m *Mesh) Centered() *Mesh {
	min, max := m.Bounds()
	center := min.Add(max).Mul(0.5)
	return m.Displaced(Negative(center))
}

// Equal reports whether two meshes hold the same geometry within epsilon.
// Materials are not compared.
func (m *Mesh) Equal(other *Mesh, epsilon float32) bool {
	if len(m.vertices) != len(other.vertices) || len(m.faces) != len(other.faces) {
		return false
	}
	for i, v := range m.vertices {
		if !v.ApproxEqualThreshold(other.vertices[i], epsilon) {
			return false
		}
	}
	for i, f := range m.faces {
		if f != other.faces[i] {
			return false
		}
	}
	return true
}
