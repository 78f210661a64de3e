package tridim

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/smasonuk/tridim/internal/logger"
)

const triangleOBJ = `# a single triangle
o Triangle
v 0.0 0.0 0.0
v 1.0 0.0 0.0
v 0.0 0.0 1.0
f 1/1/1 2/2/2 3/3/3
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseOBJ(t *testing.T) {
	mesh, err := ParseOBJ(strings.NewReader(triangleOBJ))
	require.NoError(t, err)

	assert.Equal(t, []Vertex{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}}, mesh.Vertices())
	assert.Equal(t, []Face{{0, 1, 2}}, mesh.Faces())
	assert.Equal(t, FaceRange{0, 1}, mesh.Materials().Materials()[0].Range)
}

func TestParseOBJStripsCarriageReturns(t *testing.T) {
	mesh, err := ParseOBJ(strings.NewReader(strings.ReplaceAll(triangleOBJ, "\n", "\r\n")))
	require.NoError(t, err)
	assert.Len(t, mesh.Vertices(), 3)
	assert.Len(t, mesh.Faces(), 1)
}

func TestParseOBJObjectsShiftFaceReferences(t *testing.T) {
	t.Run("global numbering", func(t *testing.T) {
		source := `o First
v 0 0 0
v 1 0 0
v 0 0 1
f 1 2 3
o Second
v 5 5 5
v 6 5 5
v 5 5 6
f 4 5 6
`
		mesh, err := ParseOBJ(strings.NewReader(source))
		require.NoError(t, err)
		assert.Len(t, mesh.Vertices(), 6)
		// Faces after an object line are shifted back by the vertices before it.
		assert.Equal(t, []Face{{0, 1, 2}, {0, 1, 2}}, mesh.Faces())
	})

	t.Run("reference before the object", func(t *testing.T) {
		source := triangleOBJ + `o Second
v 5 5 5
v 6 5 5
v 5 5 6
f 1 2 3
`
		_, err := ParseOBJ(strings.NewReader(source))
		assert.ErrorIs(t, err, ErrFaceIndexOutOfRange)
	})
}

func TestParseOBJBadCoordinatesBecomeZero(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger.Set(zap.New(core))
	defer logger.Set(nil)

	source := "v 1.5 abc 2\nv 4\nv 1 1 1\nf 1 2 3\n"
	mesh, err := ParseOBJ(strings.NewReader(source))
	require.NoError(t, err)

	assert.Equal(t, []Vertex{{1.5, 0, 2}, {0, 0, 0}, {1, 1, 1}}, mesh.Vertices())
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "abc", logs.All()[0].ContextMap()["token"])
	assert.EqualValues(t, 2, logs.All()[1].ContextMap()["line"])
}

func TestParseOBJErrors(t *testing.T) {
	testCases := []struct {
		name   string
		source string
		target error
	}{
		{"quad face", "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n", ErrFaceNotTriangle},
		{"line face", "v 0 0 0\nv 1 0 0\nf 1 2\n", ErrFaceNotTriangle},
		{"index past the end", "v 0 0 0\nv 1 0 0\nf 1 2 3\n", ErrFaceIndexOutOfRange},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 0 1 2\n", ErrFaceIndexOutOfRange},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(tc.source))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.target)
		})
	}

	_, err := ParseOBJ(strings.NewReader("v 0 0 0\nf a b c\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadOBJ(t *testing.T) {
	path := writeFile(t, "triangle.obj", triangleOBJ)

	mesh, err := LoadOBJ(path)
	require.NoError(t, err)
	assert.Len(t, mesh.Faces(), 1)

	_, err = LoadOBJ(filepath.Join(t.TempDir(), "missing.obj"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadMeshFileByExtension(t *testing.T) {
	mesh, err := LoadMeshFile(writeFile(t, "TRIANGLE.OBJ", triangleOBJ))
	require.NoError(t, err)
	assert.Len(t, mesh.Vertices(), 3)

	_, err = LoadMeshFile(writeFile(t, "triangle.stl", triangleOBJ))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

const quadPLY = `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
element face 2
property list uchar int vertex_indices
property uchar red
property uchar green
property uchar blue
end_header
0 0 0
1 0 0
1 0 1
0 0 1
4 0 1 2 3 255 0 0
3 0 2 3 0 0 255
`

func TestParsePLYTriangulatesAndColors(t *testing.T) {
	mesh, err := ParsePLY(strings.NewReader(quadPLY))
	require.NoError(t, err)

	assert.Len(t, mesh.Vertices(), 4)
	assert.Equal(t, []Face{{0, 1, 2}, {0, 2, 3}, {0, 2, 3}}, mesh.Faces())

	splits := mesh.Materials().Materials()
	require.Len(t, splits, 2, "equal colors of the fan must share one range")
	assert.Equal(t, FaceRange{0, 2}, splits[0].Range)
	assert.Equal(t, uint32(0xFFFF0000), mesh.Materials().ColorFace(1, []Vertex{{}})[0].Color)
	assert.Equal(t, uint32(0xFF0000FF), mesh.Materials().ColorFace(2, []Vertex{{}})[0].Color)
}

func TestParsePLYVertexColorsAreAveraged(t *testing.T) {
	source := `ply
format ascii 1.0
element vertex 3
property float x
property float y
property float z
property uchar red
property uchar green
property uchar blue
element face 1
property list uchar int vertex_indices
end_header
0 0 0 255 0 0
1 0 0 0 255 0
0 0 1 0 0 255
3 0 1 2
`
	mesh, err := ParsePLY(strings.NewReader(source))
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFF555555), mesh.Materials().ColorFace(0, []Vertex{{}})[0].Color)
}

func TestParsePLYErrors(t *testing.T) {
	_, err := ParsePLY(strings.NewReader("ply\nformat binary_little_endian 1.0\nend_header\n"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ParsePLY(strings.NewReader(strings.Replace(quadPLY, "3 0 2 3 0 0 255", "3 0 2 9 0 0 255", 1)))
	assert.ErrorIs(t, err, ErrFaceIndexOutOfRange)

	_, err = ParsePLY(strings.NewReader(strings.TrimSuffix(quadPLY, "3 0 2 3 0 0 255\n")))
	assert.Error(t, err)
}

func TestWritePLYRoundTrip(t *testing.T) {
	mesh := newCubeMesh(1).WithMaterials(
		SplitMaterial{Range: FaceRange{0, 6}, Material: NewSimpleColorMaterial(0, 0, 0xFF102030)},
		SplitMaterial{Range: FaceRange{6, 12}, Material: NewSimpleColorMaterial(0, 0, 0xFF405060)},
	)

	var buf bytes.Buffer
	require.NoError(t, WritePLY(&buf, mesh))

	loaded, err := ParsePLY(&buf)
	require.NoError(t, err)
	assert.True(t, mesh.Equal(loaded, 1e-5))
	assert.Equal(t, uint32(0xFF102030), loaded.Materials().ColorFace(5, []Vertex{{}})[0].Color)
	assert.Equal(t, uint32(0xFF405060), loaded.Materials().ColorFace(6, []Vertex{{}})[0].Color)
}

func TestSavePLY(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.ply")
	require.NoError(t, SavePLY(path, newCubeMesh(2)))

	mesh, err := LoadMeshFile(path)
	require.NoError(t, err)
	assert.Len(t, mesh.Faces(), 12)
}

const squareDXF = `0
SECTION
2
ENTITIES
0
3DFACE
8
0
10
0.0
20
0.0
30
0.0
11
1.0
21
0.0
31
0.0
12
1.0
22
0.0
32
1.0
13
0.0
23
0.0
33
1.0
0
ENDSEC
0
EOF
`

func TestParseDXF(t *testing.T) {
	mesh, err := ParseDXF(strings.NewReader(squareDXF))
	require.NoError(t, err)

	assert.Equal(t, []Vertex{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}, mesh.Vertices())
	assert.Equal(t, []Face{{0, 1, 2}, {0, 2, 3}}, mesh.Faces())
}

func TestWriteDXFRoundTrip(t *testing.T) {
	mesh := newCubeMesh(3)

	var buf bytes.Buffer
	require.NoError(t, WriteDXF(&buf, mesh))

	loaded, err := ParseDXF(&buf)
	require.NoError(t, err)
	require.Len(t, loaded.Faces(), 12, "triangles must stay triangles")

	for i, face := range mesh.Faces() {
		for corner := 0; corner < 3; corner++ {
			assert.Equal(t, mesh.Vertices()[face[corner]], loaded.Vertices()[loaded.Faces()[i][corner]])
		}
	}
}

func TestParseDXFErrors(t *testing.T) {
	_, err := ParseDXF(strings.NewReader("0\n3DFACE\n10\nnot-a-number\n"))
	assert.Error(t, err)

	_, err = ParseDXF(strings.NewReader("0\n3DFACE\n10\n"))
	assert.Error(t, err)
}
