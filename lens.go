package tridim

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Lens maps camera space vertices to screen space. Implementations must not
// modify the input slice.
type Lens interface {
	WarpVertices(vertices []Vertex) []Vertex
}

// OrthographicLens keeps every vertex where it is.
type OrthographicLens struct{}

func (OrthographicLens) WarpVertices(vertices []Vertex) []Vertex {
	warped := make([]Vertex, len(vertices))
	copy(warped, vertices)
	return warped
}

// PerspectiveLens projects vertices on a sphere of radius Depth around the
// camera, scaled by the field of view in degrees.
type PerspectiveLens struct {
	Depth       float32
	FieldOfView float32
}

func NewPerspectiveLens(depth, fieldOfView float32) *PerspectiveLens {
	return &PerspectiveLens{Depth: depth, FieldOfView: fieldOfView}
}

func (l *PerspectiveLens) WarpVertices(vertices []Vertex) []Vertex {
	adjustment := math32.Tan(mgl32.DegToRad(l.FieldOfView / 2))

	warped := make([]Vertex, len(vertices))
	for i, v := range vertices {
		depth := v[DAxis]
		if !(depth > 0) {
			depth = 0
		}
		distance := math32.Sqrt(v[XAxis]*v[XAxis] + depth*depth + v[YAxis]*v[YAxis])
		if distance == 0 || math32.IsNaN(distance) || math32.IsInf(distance, 0) {
			continue
		}

		warped[i][XAxis] = v[XAxis] / distance * l.Depth * adjustment
		warped[i][YAxis] = v[YAxis] / distance * l.Depth * adjustment
		// Vertices behind the camera collapse onto its plane.
		// TODO: project them with a signed divide once edge clipping no
		// longer depends on the collapsed depth.
		if v[DAxis] > 0 {
			warped[i][DAxis] = v[DAxis]
		}
	}
	return warped
}

// LensKind names a lens implementation in configuration files.
type LensKind string

const (
	LensOrthographic LensKind = "orthographic"
	LensPerspective  LensKind = "perspective"
)

// NewLens creates a lens by kind. depth and fieldOfView only apply to the
// perspective lens.
func NewLens(kind LensKind, depth, fieldOfView float32) (Lens, error) {
	switch LensKind(strings.ToLower(string(kind))) {
	case LensOrthographic, "":
		return OrthographicLens{}, nil
	case LensPerspective:
		return NewPerspectiveLens(depth, fieldOfView), nil
	}
	return nil, fmt.Errorf("unknown lens %q", kind)
}
