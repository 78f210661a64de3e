package tridim

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/smasonuk/tridim/internal/logger"
)

// Supported model file kinds. The kind doubles as the mesh store key prefix.
const (
	FormatOBJ = "OBJ"
	FormatPLY = "PLY"
	FormatDXF = "DXF"
)

// FormatForPath returns the model format implied by the file extension.
func FormatForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return FormatOBJ, nil
	case ".ply":
		return FormatPLY, nil
	case ".dxf":
		return FormatDXF, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// LoadMeshFile loads a mesh using the loader matching the file extension.
func LoadMeshFile(path string) (*Mesh, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatPLY:
		return LoadPLY(path)
	case FormatDXF:
		return LoadDXF(path)
	default:
		return LoadOBJ(path)
	}
}

func LoadOBJ(fileName string) (*Mesh, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("could not open OBJ file %s: %w", fileName, err)
	}
	defer file.Close()

	mesh, err := parseOBJ(file, fileName)
	if err != nil {
		return nil, fmt.Errorf("error parsing OBJ file %s: %w", fileName, err)
	}
	return mesh, nil
}

// ParseOBJ reads a triangulated Wavefront OBJ model. Only vertices, faces and
// object separators are used. Face references are relative to the most recent
// object, the first sub index of each reference is the vertex.
func ParseOBJ(reader io.Reader) (*Mesh, error) {
	return parseOBJ(reader, "reader")
}

func parseOBJ(reader io.Reader, source string) (*Mesh, error) {
	var vertices []Vertex
	var faces []Face
	objectOffset := 0

	scanner := bufio.NewScanner(reader)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.ReplaceAll(scanner.Text(), "\r", "")
		if strings.HasPrefix(line, "#") {
			continue
		}
		params := strings.Fields(line)
		if len(params) == 0 {
			continue
		}

		switch params[0] {
		case "o":
			objectOffset = len(vertices)

		case "v":
			vertices = append(vertices, objVertex(params, source, lineNumber))

		case "f":
			if len(params) != 4 {
				return nil, fmt.Errorf("line %d: face with %d vertices, the model must be triangulated: %w",
					lineNumber, len(params)-1, ErrFaceNotTriangle)
			}
			var face Face
			for i, ref := range params[1:] {
				index, err := strconv.Atoi(strings.Split(ref, "/")[0])
				if err != nil {
					return nil, fmt.Errorf("line %d: could not parse face reference %q: %w", lineNumber, ref, err)
				}
				face[i] = index - 1 - objectOffset
			}
			faces = append(faces, face)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from OBJ source: %w", err)
	}

	if err := checkFaces(vertices, faces); err != nil {
		return nil, err
	}
	return NewMesh(vertices, faces), nil
}

// objVertex reads the three coordinates of a vertex line. Missing or broken
// values become zero so one bad token does not discard the whole model.
func objVertex(params []string, source string, lineNumber int) Vertex {
	var v Vertex
	if len(params) <= 3 {
		logger.Warn("vertex line has too few coordinates",
			zap.String("source", source),
			zap.Int("line", lineNumber),
			zap.Int("count", len(params)-1))
		return v
	}
	for axis := 0; axis < 3; axis++ {
		value, err := strconv.ParseFloat(params[axis+1], 32)
		if err != nil {
			logger.Warn("could not parse vertex coordinate, using 0",
				zap.String("source", source),
				zap.Int("line", lineNumber),
				zap.String("token", params[axis+1]))
			continue
		}
		v[axis] = float32(value)
	}
	return v
}

func checkFaces(vertices []Vertex, faces []Face) error {
	for i, face := range faces {
		for _, index := range face {
			if index < 0 || index >= len(vertices) {
				return fmt.Errorf("face %d references vertex %d of %d: %w", i, index+1, len(vertices), ErrFaceIndexOutOfRange)
			}
		}
	}
	return nil
}

func LoadPLY(fileName string) (*Mesh, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("could not open PLY file %s: %w", fileName, err)
	}
	defer file.Close()

	mesh, err := ParsePLY(file)
	if err != nil {
		return nil, fmt.Errorf("error parsing PLY file %s: %w", fileName, err)
	}
	return mesh, nil
}

// ParsePLY reads an ASCII PLY model. Polygons are split into triangle fans.
// Face colors, or the average of the vertex colors when only vertices are
// colored, become face materials.
func ParsePLY(reader io.Reader) (*Mesh, error) {
	scanner := bufio.NewScanner(reader)

	var vertexCount, faceCount int
	var hasVertexColor, hasFaceColor bool
	var currentElement string

	headerDone := false
	for !headerDone && scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) > 1 && parts[1] != "ascii" {
				return nil, fmt.Errorf("PLY format %s: %w", parts[1], ErrUnsupportedFormat)
			}
		case "element":
			if len(parts) == 3 {
				currentElement = parts[1]
				switch parts[1] {
				case "vertex":
					vertexCount, _ = strconv.Atoi(parts[2])
				case "face":
					faceCount, _ = strconv.Atoi(parts[2])
				}
			}
		case "property":
			if len(parts) > 2 && (parts[2] == "red" || parts[2] == "diffuse_red") {
				switch currentElement {
				case "vertex":
					hasVertexColor = true
				case "face":
					hasFaceColor = true
				}
			}
		case "end_header":
			headerDone = true
		}
	}
	if !headerDone {
		return nil, fmt.Errorf("unexpected end of file while reading PLY header")
	}

	vertices := make([]Vertex, 0, vertexCount)
	vertexColors := make([]uint32, 0, vertexCount)
	for i := 0; i < vertexCount; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected end of file while reading vertices")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < 3 || (hasVertexColor && len(parts) < 6) {
			return nil, fmt.Errorf("invalid vertex data on vertex %d", i)
		}

		var v Vertex
		for axis := 0; axis < 3; axis++ {
			value, _ := strconv.ParseFloat(parts[axis], 32)
			v[axis] = float32(value)
		}
		vertices = append(vertices, v)
		if hasVertexColor {
			vertexColors = append(vertexColors, parseRGB(parts[3:6]))
		}
	}

	var faces []Face
	var faceColors []uint32
	for i := 0; i < faceCount; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected end of file while reading faces")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			return nil, fmt.Errorf("invalid face data on face %d", i)
		}
		numFaceVerts, err := strconv.Atoi(parts[0])
		if err != nil || numFaceVerts < 3 || len(parts) < numFaceVerts+1 {
			return nil, fmt.Errorf("invalid face data on face %d", i)
		}

		indices := make([]int, numFaceVerts)
		for j := range indices {
			indices[j], err = strconv.Atoi(parts[j+1])
			if err != nil {
				return nil, fmt.Errorf("invalid vertex index %q on face %d: %w", parts[j+1], i, err)
			}
			if indices[j] < 0 || indices[j] >= len(vertices) {
				return nil, fmt.Errorf("face %d references vertex %d of %d: %w", i, indices[j], len(vertices), ErrFaceIndexOutOfRange)
			}
		}

		var faceColor uint32
		switch {
		case hasFaceColor:
			if len(parts) != numFaceVerts+1+3 {
				return nil, fmt.Errorf("invalid face-color data on face %d", i)
			}
			faceColor = parseRGB(parts[numFaceVerts+1:])
		case hasVertexColor:
			colors := make([]uint32, len(indices))
			for j, index := range indices {
				colors[j] = vertexColors[index]
			}
			faceColor = averageColor(colors)
		}

		for j := 1; j+1 < len(indices); j++ {
			faces = append(faces, Face{indices[0], indices[j], indices[j+1]})
			faceColors = append(faceColors, faceColor)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from PLY source: %w", err)
	}

	mesh := NewMesh(vertices, faces)
	if hasFaceColor || hasVertexColor {
		mesh.materials = faceColorMaterials(faceColors)
	}
	return mesh, nil
}

// faceColorMaterials groups runs of equally colored faces into one material
// range each.
func faceColorMaterials(faceColors []uint32) *MultiMaterial {
	defaults := DefaultSimpleColorMaterial()
	materials := NewMultiMaterial()
	start := 0
	for i := 1; i <= len(faceColors); i++ {
		if i < len(faceColors) && faceColors[i] == faceColors[start] {
			continue
		}
		materials.Add(FaceRange{start, i}, NewSimpleColorMaterial(defaults.VertexColor, defaults.EdgeColor, faceColors[start]))
		start = i
	}
	return materials
}

func parseRGB(parts []string) uint32 {
	var rgb [3]uint64
	for i := range rgb {
		rgb[i], _ = strconv.ParseUint(parts[i], 10, 8)
	}
	return 0xFF000000 | uint32(rgb[0])<<16 | uint32(rgb[1])<<8 | uint32(rgb[2])
}

func averageColor(colors []uint32) uint32 {
	var r, g, b uint32
	for _, c := range colors {
		r += c >> 16 & 0xFF
		g += c >> 8 & 0xFF
		b += c & 0xFF
	}
	n := uint32(len(colors))
	return 0xFF000000 | (r/n)<<16 | (g/n)<<8 | b/n
}

func LoadDXF(fileName string) (*Mesh, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("could not open DXF file %s: %w", fileName, err)
	}
	defer file.Close()

	mesh, err := ParseDXF(file)
	if err != nil {
		return nil, fmt.Errorf("error parsing DXF file %s: %w", fileName, err)
	}
	return mesh, nil
}

// ParseDXF reads the 3DFACE entities of a DXF file. A face whose fourth corner
// repeats the third is a triangle, any other face becomes two triangles.
func ParseDXF(reader io.Reader) (*Mesh, error) {
	scanner := bufio.NewScanner(reader)

	var vertices []Vertex
	var faces []Face

	var corners [4]Vertex
	inFace := false
	flush := func() {
		if !inFace {
			return
		}
		base := len(vertices)
		vertices = append(vertices, corners[0], corners[1], corners[2])
		faces = append(faces, Face{base, base + 1, base + 2})
		if corners[3] != corners[2] {
			vertices = append(vertices, corners[3])
			faces = append(faces, Face{base, base + 2, base + 3})
		}
		corners = [4]Vertex{}
		inFace = false
	}

	for scanner.Scan() {
		code, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil {
			return nil, fmt.Errorf("could not parse group code '%s': %w", scanner.Text(), err)
		}
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected end of file after group code %d", code)
		}
		value := strings.TrimSpace(scanner.Text())

		if code == 0 {
			flush()
			inFace = value == "3DFACE"
			continue
		}
		if !inFace {
			continue
		}

		// Corner coordinates use codes 10-13 for x, 20-23 for y and 30-33
		// for z.
		axis, corner := code/10-1, code%10
		if axis < 0 || axis > 2 || corner > 3 {
			continue
		}
		coordinate, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return nil, fmt.Errorf("could not parse float value '%s': %w", value, err)
		}
		corners[corner][axis] = float32(coordinate)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from DXF source: %w", err)
	}
	return NewMesh(vertices, faces), nil
}

// WriteDXF writes the mesh as DXF 3DFACE entities, one per triangle.
func WriteDXF(w io.Writer, mesh *Mesh) error {
	writer := bufio.NewWriter(w)
	writePair := func(code int, value interface{}) {
		_, _ = fmt.Fprintf(writer, "%d\n%v\n", code, value)
	}

	writePair(0, "SECTION")
	writePair(2, "ENTITIES")
	for _, face := range mesh.faces {
		writePair(0, "3DFACE")
		writePair(8, "0")
		for corner := 0; corner < 4; corner++ {
			v := mesh.vertices[face[min(corner, 2)]]
			writePair(10+corner, v[0])
			writePair(20+corner, v[1])
			writePair(30+corner, v[2])
		}
	}
	writePair(0, "ENDSEC")
	writePair(0, "EOF")

	return writer.Flush()
}

// WritePLY writes the mesh as an ASCII PLY file with one color per face,
// taken from the face color of its material. Faces no material covers are
// written black.
func WritePLY(w io.Writer, mesh *Mesh) error {
	writer := bufio.NewWriter(w)

	_, _ = fmt.Fprintln(writer, "ply")
	_, _ = fmt.Fprintln(writer, "format ascii 1.0")
	_, _ = fmt.Fprintln(writer, "comment Generated by tridim with face colors")
	_, _ = fmt.Fprintf(writer, "element vertex %d\n", len(mesh.vertices))
	_, _ = fmt.Fprintln(writer, "property float x")
	_, _ = fmt.Fprintln(writer, "property float y")
	_, _ = fmt.Fprintln(writer, "property float z")
	_, _ = fmt.Fprintf(writer, "element face %d\n", len(mesh.faces))
	_, _ = fmt.Fprintln(writer, "property list uchar int vertex_indices")
	_, _ = fmt.Fprintln(writer, "property uchar red")
	_, _ = fmt.Fprintln(writer, "property uchar green")
	_, _ = fmt.Fprintln(writer, "property uchar blue")
	_, _ = fmt.Fprintln(writer, "end_header")

	for _, v := range mesh.vertices {
		_, _ = fmt.Fprintf(writer, "%f %f %f\n", v[0], v[1], v[2])
	}

	for i, face := range mesh.faces {
		var faceColor uint32
		corners := []Vertex{mesh.vertices[face[0]], mesh.vertices[face[1]], mesh.vertices[face[2]]}
		if colored := mesh.materials.ColorFace(i, corners); len(colored) > 0 {
			faceColor = colored[0].Color
		}
		_, _ = fmt.Fprintf(writer, "3 %d %d %d %d %d %d\n", face[0], face[1], face[2],
			faceColor>>16&0xFF, faceColor>>8&0xFF, faceColor&0xFF)
	}

	return writer.Flush()
}

// SavePLY writes the mesh to fileName, see WritePLY.
func SavePLY(fileName string, mesh *Mesh) error {
	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("could not create PLY file %s: %w", fileName, err)
	}
	defer file.Close()

	if err := WritePLY(file, mesh); err != nil {
		return fmt.Errorf("could not write PLY file %s: %w", fileName, err)
	}
	return nil
}
