// pkg/core/position.go
package core

// Number is the set of scalar types positions are stored with on the wire:
// doubles for level geometry, floats for the bike and int16 for wheels and head.
type Number interface {
	~int16 | ~int32 | ~float32 | ~float64
}

// Position is an immutable (X, Y) pair.
type Position[T Number] struct {
	X T
	Y T
}

// Pos is shorthand for building a Position.
func Pos[T Number](x, y T) Position[T] {
	return Position[T]{X: x, Y: y}
}
