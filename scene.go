package tridim

import (
	"math"
	"sort"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/smasonuk/tridim/internal/logger"
)

// CameraEntityName is the name of the entity every scene uses as camera.
const CameraEntityName = "VIRTUAL_CAMERA"

const (
	// Points at or below this depth are not drawn.
	minRenderDistance = 20

	// Depth offsets towards the camera. Vertices are drawn over edges and
	// edges over faces at the same depth.
	vertexBump = 2
	edgeBump   = 1
	faceBump   = 0
)

// DrawStats describes the work done by the last Draw call.
type DrawStats struct {
	Faces         int
	SkippedFaces  int
	ColoredPoints int
	VisiblePoints int
	PixelsWritten int
}

// Scene owns a list of entities, a camera and a lens, and rasterizes them
// into a DrawBuffer of its size.
type Scene struct {
	width    int
	height   int
	entities []*Entity
	lens     Lens
	camera   *Entity
	stats    DrawStats
}

// NewScene creates a scene using the default mesh store for its camera.
func NewScene(width, height int, lens Lens, entities ...*Entity) *Scene {
	return NewSceneIn(DefaultMeshStore(), width, height, lens, entities...)
}

func NewSceneIn(store *MeshStore, width, height int, lens Lens, entities ...*Entity) *Scene {
	if lens == nil {
		lens = OrthographicLens{}
	}
	return &Scene{
		width:    width,
		height:   height,
		entities: entities,
		lens:     lens,
		camera:   NewEntityIn(store, CameraEntityName, EmptyMesh()),
	}
}

func (s *Scene) Entities() []*Entity {
	return s.entities
}

// EntityByName returns the first top level entity called name, or the first
// matching descendant of a top level entity.
func (s *Scene) EntityByName(name string) *Entity {
	for _, entity := range s.entities {
		if found := entity.ChildByName(name); found != nil {
			return found
		}
	}
	return nil
}

func (s *Scene) AddEntity(entity *Entity) {
	s.entities = append(s.entities, entity)
}

// RemoveEntityByName removes and releases every entity called name, both top
// level entities and descendants. It returns the number of removed entities.
func (s *Scene) RemoveEntityByName(name string) int {
	removed := 0
	kept := s.entities[:0]
	for _, entity := range s.entities {
		if entity.name == name {
			entity.Release()
			removed++
			continue
		}
		removed += entity.RemoveChildByName(name)
		kept = append(kept, entity)
	}
	for i := len(kept); i < len(s.entities); i++ {
		s.entities[i] = nil
	}
	s.entities = kept
	return removed
}

// Camera returns the camera entity. Only its position and rotation are used.
func (s *Scene) Camera() *Entity {
	return s.camera
}

func (s *Scene) Lens() Lens {
	return s.lens
}

func (s *Scene) SetLens(lens Lens) {
	s.lens = lens
}

func (s *Scene) Size() (width, height int) {
	return s.width, s.height
}

func (s *Scene) Resize(width, height int) {
	s.width, s.height = width, height
}

// Release releases the mesh handles of all entities and the camera.
func (s *Scene) Release() {
	for _, entity := range s.entities {
		entity.Release()
	}
	s.camera.Release()
}

func (s *Scene) LastDrawStats() DrawStats {
	return s.stats
}

// WorldMesh returns the processed meshes of all entities combined into one
// mesh in world space.
func (s *Scene) WorldMesh() *Mesh {
	world := EmptyMesh()
	for _, entity := range s.entities {
		world.CombineWith(entity.ProcessedMesh())
	}
	return world
}

// Draw renders the scene. The world is moved into camera space, warped by
// the lens and centered on the buffer. Every face is sampled into colored
// points; the points nearest to the camera claim their pixel first.
func (s *Scene) Draw() *DrawBuffer {
	sceneMesh := s.WorldMesh()
	sceneMesh.Displace(Negative(s.camera.Position()))
	sceneMesh.Rotate(Negative(s.camera.Rotation()), nil)

	vertices := s.lens.WarpVertices(sceneMesh.vertices)

	var center Vertex
	center[XAxis] = float32(s.width) * 0.5
	center[YAxis] = float32(s.height) * 0.5
	for i := range vertices {
		vertices[i] = Displace(vertices[i], center)
	}

	stats := DrawStats{Faces: len(sceneMesh.faces)}
	materials := sceneMesh.materials
	var points []ColoredVertex
	for faceIndex, face := range sceneMesh.faces {
		corners := []Vertex{vertices[face[0]], vertices[face[1]], vertices[face[2]]}

		rect := boundingRect(corners)
		if rect[0] > float32(s.width) || rect[1] > float32(s.height) || rect[2] < 0 || rect[3] < 0 || !anyInFront(corners) {
			stats.SkippedFaces++
			continue
		}

		edges := make([][]Vertex, len(corners))
		var edgePoints []Vertex
		for i := range corners {
			edges[i] = coordsInLine(corners[i], corners[(i+1)%len(corners)], 1)
			edgePoints = append(edgePoints, edges[i]...)
		}

		for _, corner := range bumped(corners, vertexBump) {
			points = append(points, materials.ColorVertex(faceIndex, corner))
		}
		points = append(points, materials.ColorEdge(faceIndex, bumped(edgePoints, edgeBump))...)
		points = append(points, materials.ColorFace(faceIndex, bumped(coordsInFace(edges, rect), faceBump))...)
	}
	stats.ColoredPoints = len(points)

	visible := points[:0]
	for _, point := range points {
		if point.Vertex[DAxis] > minRenderDistance {
			point.Vertex[XAxis] = math32.Round(point.Vertex[XAxis])
			point.Vertex[YAxis] = math32.Round(point.Vertex[YAxis])
			visible = append(visible, point)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Vertex[DAxis] < visible[j].Vertex[DAxis]
	})
	stats.VisiblePoints = len(visible)

	buffer := NewDrawBuffer(s.width, s.height)
	stats.PixelsWritten = writePoints(buffer, visible)

	s.stats = stats
	logger.Debug("drew scene",
		zap.Int("faces", stats.Faces),
		zap.Int("skipped_faces", stats.SkippedFaces),
		zap.Int("colored_points", stats.ColoredPoints),
		zap.Int("visible_points", stats.VisiblePoints),
		zap.Int("pixels", stats.PixelsWritten))
	return buffer
}

// writePoints draws sorted points into the buffer. Screen Y grows upwards
// while buffer rows grow downwards. A pixel keeps the first color written to
// it.
func writePoints(buffer *DrawBuffer, points []ColoredVertex) int {
	width, height := float32(buffer.Width), float32(buffer.Height)
	written := 0
	for _, point := range points {
		x, y := point.Vertex[XAxis], point.Vertex[YAxis]
		if x < 0 || y < 0 || x >= width || y >= height-1 {
			continue
		}
		index := (buffer.Height-(int(y)+1))*buffer.Width + int(x)
		if buffer.Data[index] == 0 {
			buffer.Data[index] = point.Color
			if point.Color != 0 {
				written++
			}
		}
	}
	return written
}

func bumped(vertices []Vertex, bump float32) []Vertex {
	out := make([]Vertex, len(vertices))
	for i, v := range vertices {
		v[DAxis] -= bump
		out[i] = v
	}
	return out
}

func anyInFront(vertices []Vertex) bool {
	for _, v := range vertices {
		if v[DAxis] > 0 {
			return true
		}
	}
	return false
}

// boundingRect returns min x, min y, max x and max y on the screen plane.
func boundingRect(vertices []Vertex) [4]float32 {
	rect := [4]float32{math.MaxFloat32, math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, v := range vertices {
		if v[XAxis] < rect[0] {
			rect[0] = v[XAxis]
		}
		if v[YAxis] < rect[1] {
			rect[1] = v[YAxis]
		}
		if v[XAxis] > rect[2] {
			rect[2] = v[XAxis]
		}
		if v[YAxis] > rect[3] {
			rect[3] = v[YAxis]
		}
	}
	return rect
}

// coordsInLine samples the line from start to end every step pixels on the
// screen plane, start included. Ends behind the camera are first moved
// along the line onto the camera plane.
func coordsInLine(start, end Vertex, step float32) []Vertex {
	distanceX := math32.Abs(end[XAxis] - start[XAxis])
	distanceY := math32.Abs(end[YAxis] - start[YAxis])
	distanceD := math32.Abs(end[DAxis] - start[DAxis])
	lineDistance := math32.Sqrt(distanceX*distanceX + distanceY*distanceY)
	if math32.IsInf(lineDistance, 1) || lineDistance == 0 {
		return nil
	}
	steps := math32.Abs(lineDistance / step)
	modification := end.Sub(start)

	if start[DAxis] < 0 {
		cutoff := 1 / distanceD * math32.Abs(start[DAxis])
		var clipped Vertex
		clipped[XAxis] = start[XAxis] + modification[XAxis]*cutoff
		clipped[YAxis] = start[YAxis] + modification[YAxis]*cutoff
		return coordsInLine(clipped, end, step)
	}
	if end[DAxis] < 0 {
		cutoff := 1 / distanceD * math32.Abs(end[DAxis])
		var clipped Vertex
		clipped[XAxis] = end[XAxis] - modification[XAxis]*cutoff
		clipped[YAxis] = end[YAxis] - modification[YAxis]*cutoff
		return coordsInLine(start, clipped, step)
	}

	modificationStep := Vertex{modification[0] / steps, modification[1] / steps, modification[2] / steps}
	count := 0
	if !math32.IsNaN(steps) {
		count = int(math32.Floor(steps))
	}

	vertices := make([]Vertex, 0, count+1)
	vertex := start
	vertices = append(vertices, vertex)
	for i := 0; i < count; i++ {
		vertex = Displace(vertex, modificationStep)
		vertices = append(vertices, vertex)
	}
	return vertices
}

// coordsInFace fills a face row by row. For every row of the bounding rect
// the leftmost and rightmost rounded edge points are joined by a line.
func coordsInFace(edges [][]Vertex, rect [4]float32) []Vertex {
	rows := 0
	if rowCount := math32.Ceil(rect[3] - rect[1] + 1); rowCount > 0 {
		rows = int(rowCount)
	}

	// Unused rows keep an infinitely long range, which coordsInLine skips.
	low := Vertex{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	high := Negative(low)
	ranges := make([][2]Vertex, rows)
	for i := range ranges {
		ranges[i] = [2]Vertex{low, high}
	}

	for _, edge := range edges {
		for _, v := range edge {
			v = Vertex{math32.Round(v[0]), math32.Round(v[1]), math32.Round(v[2])}

			row := 0
			if offset := math32.Floor(v[YAxis] - rect[1]); offset > 0 {
				if offset >= float32(rows) {
					continue
				}
				row = int(offset)
			}
			if row >= rows {
				continue
			}

			if v[XAxis] < ranges[row][0][XAxis] {
				ranges[row][0] = v
			}
			if v[XAxis] > ranges[row][1][XAxis] {
				ranges[row][1] = v
			}
		}
	}

	var vertices []Vertex
	for _, r := range ranges {
		vertices = append(vertices, coordsInLine(r[0], r[1], 1)...)
	}
	return vertices
}
