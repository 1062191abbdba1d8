package level

import (
	"errors"
	"fmt"
)

const (
	// SectionWidth is the edge length of a section in cells.
	SectionWidth = 16
	// SectionVolume is the number of cells in a section.
	SectionVolume = SectionWidth * SectionWidth * SectionWidth
	// DefaultLayers is the number of sections in a chunk of a 256 block tall world.
	DefaultLayers = 16
)

var (
	ErrOutOfBounds = errors.New("position out of bounds")
	ErrMalformed   = errors.New("malformed section data")
)

// Pos is a cell position. Inside a Chunk it is column relative (X and Z in 0..16,
// Y counted from the bottom of the column). Inside a Section all three axes are in 0..16.
type Pos struct {
	X, Y, Z int32
}

func NewPos(x, y, z int32) Pos {
	return Pos{X: x, Y: y, Z: z}
}

// Index returns the cell index of a section relative position.
func (p Pos) Index() int {
	return int(p.Y)<<8 | int(p.Z)<<4 | int(p.X)
}

// Layer returns the index of the section holding p.
func (p Pos) Layer() int32 {
	return p.Y >> 4
}

// LayerRel returns p relative to the section holding it.
func (p Pos) LayerRel() Pos {
	return Pos{X: p.X, Y: p.Y & 15, Z: p.Z}
}

func (p Pos) inSection() bool {
	return p.X >= 0 && p.X < SectionWidth &&
		p.Y >= 0 && p.Y < SectionWidth &&
		p.Z >= 0 && p.Z < SectionWidth
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// PosError is returned when a position is outside of a section or chunk.
type PosError struct {
	Pos Pos
	Msg string
}

func (e *PosError) Error() string {
	return fmt.Sprintf("invalid position %v: %s", e.Pos, e.Msg)
}

func (e *PosError) Unwrap() error {
	return ErrOutOfBounds
}

func (p Pos) err(msg string) error {
	return &PosError{Pos: p, Msg: msg}
}

func malformed(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, a...))
}

// Remap converts a block id from one id space to another. A nil Remap is the identity.
type Remap func(uint32) uint32

// Apply converts id.
func (f Remap) Apply(id uint32) uint32 {
	if f == nil {
		return id
	}
	return f(id)
}
