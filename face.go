package tridim

// Face is a triangle referencing three vertices of its mesh by index.
type Face [3]int

// Shifted returns the face with every index moved by offset.
func (f Face) Shifted(offset int) Face {
	return Face{f[0] + offset, f[1] + offset, f[2] + offset}
}
