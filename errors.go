package tridim

import "errors"

var (
	// ErrFaceNotTriangle is returned when a model face does not have exactly
	// three vertex references. Models must be triangulated before loading.
	ErrFaceNotTriangle = errors.New("face is not a triangle")

	// ErrFaceIndexOutOfRange is returned when a face references a vertex the
	// model does not define.
	ErrFaceIndexOutOfRange = errors.New("face index out of range")

	// ErrStaleHandle means a mesh handle points at a slot that was already
	// freed. It indicates a reference counting bug in the caller.
	ErrStaleHandle = errors.New("mesh handle is stale")

	// ErrUnsupportedFormat is returned for model files with an unknown
	// extension.
	ErrUnsupportedFormat = errors.New("unsupported model format")
)
