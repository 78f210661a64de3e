package tridim

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is a position in scene space. The components have fixed roles:
// XAxis maps to the horizontal screen axis, DAxis to the distance from the
// camera and YAxis to the vertical screen axis.
type Vertex = mgl32.Vec3

const (
	XAxis = 0
	DAxis = 1
	YAxis = 2
)

const doublePi = math32.Pi * 2

// RotationDataset is the precomputed form of a three axis rotation. It is a
// quaternion: W holds the combined angle and V the virtual axis.
type RotationDataset = mgl32.Quat

// Displace returns v moved by offset.
func Displace(v, offset Vertex) Vertex {
	return Vertex{v[0] + offset[0], v[1] + offset[1], v[2] + offset[2]}
}

// Scale returns v multiplied per axis by scale.
func Scale(v, scale Vertex) Vertex {
	return Vertex{v[0] * scale[0], v[1] * scale[1], v[2] * scale[2]}
}

// Negative returns the opposite of v.
func Negative(v Vertex) Vertex {
	return Vertex{-v[0], -v[1], -v[2]}
}

// NewRotationDataset builds the dataset for a rotation given in radians per
// axis. The three angles are combined into a single rotation around one
// virtual axis, so applying it does not suffer from the axis order artifacts
// of three sequential rotations.
func NewRotationDataset(rotation [3]float32) RotationDataset {
	var sins, coss [3]float32
	for axis := 0; axis < 3; axis++ {
		r := math32.Mod(rotation[axis], doublePi) * 0.5
		sins[axis] = math32.Sin(r)
		coss[axis] = math32.Cos(r)
	}

	angle := -(coss[0]*coss[1]*coss[2] + sins[0]*sins[1]*sins[2])

	var virtualAxis Vertex
	for axis := 0; axis < 3; axis++ {
		next, after := (axis+1)%3, (axis+2)%3
		localX := sins[axis] * coss[next] * coss[after]
		localY := coss[axis] * sins[next] * sins[after]
		if axis == 1 {
			virtualAxis[axis] = localX + localY
		} else {
			virtualAxis[axis] = localX - localY
		}
	}

	return RotationDataset{W: angle, V: virtualAxis}
}

// RotateUsingDataset rotates v with a dataset created by NewRotationDataset.
// When anchor is not nil the rotation happens around it instead of the
// origin.
func RotateUsingDataset(v Vertex, dataset RotationDataset, anchor *Vertex) Vertex {
	if anchor != nil {
		v = Displace(v, Negative(*anchor))
	}

	// The first product scales the point up while doing half of the
	// rotation, the product with the negated axis scales it back down and
	// completes it.
	upScaled := dataset.Mul(mgl32.Quat{W: 0, V: v})
	downScaled := upScaled.Mul(dataset.Conjugate())
	v = downScaled.V

	if anchor != nil {
		v = Displace(v, *anchor)
	}
	return v
}

// Rotate rotates v by rotation (radians per axis) as one combined rotation.
func Rotate(v Vertex, rotation [3]float32, anchor *Vertex) Vertex {
	return RotateUsingDataset(v, NewRotationDataset(rotation), anchor)
}

// eulerPlanes lists, per rotation axis, the horizontal and vertical axis of
// the plane the rotation happens in.
var eulerPlanes = [3][2]int{{1, 2}, {0, 2}, {0, 1}}

// EulerRotate rotates v by rotation (radians per axis) as three independent
// rotations applied one after another. It is cheaper than Rotate but not
// gimbal safe, the two are not interchangeable.
func EulerRotate(v Vertex, rotation [3]float32, anchor *Vertex) Vertex {
	var anchorPosition Vertex
	if anchor != nil {
		anchorPosition = *anchor
	}
	v = Displace(v, Negative(anchorPosition))

	for axis := 0; axis < 3; axis++ {
		if rotation[axis] == 0 {
			continue
		}
		horizontal, vertical := eulerPlanes[axis][0], eulerPlanes[axis][1]
		x, y := v[horizontal], v[vertical]

		distance := math32.Sqrt(y*y + x*x)
		if distance == 0 {
			continue
		}
		current := math32.Asin(math32.Abs(x) / distance)
		if y < 0 {
			current = math32.Pi - current
		}
		if x < 0 {
			current = doublePi - current
		}

		angle := current + rotation[axis]
		v[horizontal] = math32.Sin(angle) * distance
		v[vertical] = math32.Cos(angle) * distance
	}

	return Displace(v, anchorPosition)
}

func degreesToRadians(rotation [3]float32) [3]float32 {
	return [3]float32{
		mgl32.DegToRad(rotation[0]),
		mgl32.DegToRad(rotation[1]),
		mgl32.DegToRad(rotation[2]),
	}
}

func isZero(v Vertex) bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}
