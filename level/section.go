package level

import (
	"math/bits"
	"sort"
)

// DefaultBitsPerBlock is the width of a new section's palette indices.
const DefaultBitsPerBlock = 4

// Section is a 16x16x16 cube of block ids, stored as palette indices in a BitArray.
//
// The palette is kept sorted, so air (id 0) is always at index 0. Every palette
// entry except air is referenced by at least one cell; unused entries are removed
// as soon as their last cell is overwritten. The index width only ever grows.
type Section struct {
	data *BitArray
	// Each index into palette is a palette id. The values are global ids.
	palette []uint32
	// This maps global ids to palette ids.
	reverse map[uint32]uint32
	// Number of cells holding each palette id. Always sums to SectionVolume.
	amounts []uint32
}

// NewSection returns a section filled with air.
func NewSection() *Section {
	return &Section{
		data:    NewBitArray(DefaultBitsPerBlock, SectionVolume, nil),
		palette: []uint32{0},
		reverse: map[uint32]uint32{0: 0},
		amounts: []uint32{SectionVolume},
	}
}

// SectionFromIDs builds a section from SectionVolume global ids in cell index
// order. The index width is at least minBits.
func SectionFromIDs(ids []uint32, minBits int) *Section {
	if len(ids) != SectionVolume {
		panic(indexOutOfBounds)
	}
	amounts := map[uint32]uint32{0: 0}
	for _, id := range ids {
		amounts[id]++
	}
	palette := make([]uint32, 0, len(amounts))
	for id := range amounts {
		palette = append(palette, id)
	}
	sort.Slice(palette, func(i, j int) bool { return palette[i] < palette[j] })

	width := bits.Len(uint(len(palette)))
	if width < DefaultBitsPerBlock {
		width = DefaultBitsPerBlock
	}
	if width < minBits {
		width = minBits
	}
	s := &Section{
		data:    NewBitArray(width, SectionVolume, nil),
		palette: palette,
		reverse: make(map[uint32]uint32, len(palette)),
		amounts: make([]uint32, len(palette)),
	}
	for i, id := range palette {
		s.reverse[id] = uint32(i)
		s.amounts[i] = amounts[id]
	}
	for i, id := range ids {
		s.data.Set(i, uint64(s.reverse[id]))
	}
	return s
}

// BitsPerBlock returns the width of a palette index.
func (s *Section) BitsPerBlock() int {
	return s.data.Bits()
}

// Palette returns a copy of the palette, sorted by global id.
func (s *Section) Palette() []uint32 {
	p := make([]uint32, len(s.palette))
	copy(p, s.palette)
	return p
}

// Count returns the number of cells holding the given global id.
func (s *Section) Count(id uint32) int {
	if i, ok := s.reverse[id]; ok {
		return int(s.amounts[i])
	}
	return 0
}

// NonAirBlocks returns the number of cells that are not air.
func (s *Section) NonAirBlocks() int {
	return SectionVolume - int(s.amounts[0])
}

// IsEmpty reports whether every cell is air.
func (s *Section) IsEmpty() bool {
	return s.amounts[0] == SectionVolume
}

// GetBlock returns the global id at p. The position must be within the section.
func (s *Section) GetBlock(p Pos) uint32 {
	return s.palette[s.get(p.Index())]
}

// BlockAt returns the global id of the cell with index i.
func (s *Section) BlockAt(i int) uint32 {
	return s.palette[s.get(i)]
}

// SetBlock places the block ty at p.
func (s *Section) SetBlock(p Pos, ty uint32) error {
	if !p.inSection() {
		return p.err("outside of section")
	}
	s.setBlock(p.Index(), ty)
	return nil
}

func (s *Section) setBlock(i int, ty uint32) {
	prev := s.get(i)
	id, ok := s.reverse[ty]
	if ok {
		if id == prev {
			return
		}
	} else {
		id = s.insert(ty)
		// insert shifted every palette id at or above id, prev included.
		if id <= prev {
			prev++
		}
	}
	s.set(i, id)
	s.amounts[id]++
	s.amounts[prev]--
	if s.amounts[prev] == 0 && prev != 0 {
		s.remove(prev)
	}
}

// Fill places the block ty in every cell of the box between min and max, inclusive.
func (s *Section) Fill(min, max Pos, ty uint32) error {
	if !min.inSection() {
		return min.err("outside of section")
	}
	if !max.inSection() {
		return max.err("outside of section")
	}
	if max.X < min.X || max.Y < min.Y || max.Z < min.Z {
		return max.err("max is less than min")
	}

	if min == (Pos{}) && max == (Pos{X: 15, Y: 15, Z: 15}) {
		if ty == 0 {
			*s = *NewSection()
			return nil
		}
		// Air stays in the palette, it just has no cells.
		data := make([]uint64, bitArraySize(DefaultBitsPerBlock, SectionVolume))
		for i := range data {
			data[i] = 0x1111111111111111
		}
		*s = Section{
			data:    NewBitArray(DefaultBitsPerBlock, SectionVolume, data),
			palette: []uint32{0, ty},
			reverse: map[uint32]uint32{0: 0, ty: 1},
			amounts: []uint32{0, SectionVolume},
		}
		return nil
	}

	// Take every cell in the box out of the counts first, then change the palette
	// once. The cells are parked on air so the palette shifts below skip them.
	for y := min.Y; y <= max.Y; y++ {
		for z := min.Z; z <= max.Z; z++ {
			for x := min.X; x <= max.X; x++ {
				i := Pos{X: x, Y: y, Z: z}.Index()
				s.amounts[s.get(i)]--
				s.set(i, 0)
			}
		}
	}
	for id := len(s.amounts) - 1; id > 0; id-- {
		if s.amounts[id] == 0 {
			s.remove(uint32(id))
		}
	}
	id, ok := s.reverse[ty]
	if !ok {
		id = s.insert(ty)
	}
	s.amounts[id] += uint32((max.X - min.X + 1) * (max.Y - min.Y + 1) * (max.Z - min.Z + 1))
	for y := min.Y; y <= max.Y; y++ {
		for z := min.Z; z <= max.Z; z++ {
			for x := min.X; x <= max.X; x++ {
				s.set(Pos{X: x, Y: y, Z: z}.Index(), id)
			}
		}
	}
	return nil
}

// Duplicate returns a deep copy of the section.
func (s *Section) Duplicate() *Section {
	c := &Section{
		data:    s.data.clone(),
		palette: make([]uint32, len(s.palette)),
		reverse: make(map[uint32]uint32, len(s.reverse)),
		amounts: make([]uint32, len(s.amounts)),
	}
	copy(c.palette, s.palette)
	copy(c.amounts, s.amounts)
	for k, v := range s.reverse {
		c.reverse[k] = v
	}
	return c
}

func (s *Section) get(i int) uint32 {
	return uint32(s.data.Get(i))
}

func (s *Section) set(i int, id uint32) {
	s.data.Set(i, uint64(id))
}

// insert adds ty to the palette and returns its palette id. ty must not already
// be in the palette. The amount for the new id starts at 0; the caller adds to it.
func (s *Section) insert(ty uint32) uint32 {
	// A palette never outgrows 13 bits; wider arrays only come from protos.
	if w := s.data.Bits(); w < 16 && len(s.palette)+1 >= 1<<w {
		s.data.Resize(w + 1)
	}
	id := uint32(sort.Search(len(s.palette), func(i int) bool { return s.palette[i] > ty }))

	s.palette = append(s.palette, 0)
	copy(s.palette[id+1:], s.palette[id:])
	s.palette[id] = ty

	s.amounts = append(s.amounts, 0)
	copy(s.amounts[id+1:], s.amounts[id:])
	s.amounts[id] = 0

	for k, v := range s.reverse {
		if v >= id {
			s.reverse[k] = v + 1
		}
	}
	s.reverse[ty] = id
	s.shiftAllAbove(id, 1)
	return id
}

// remove drops palette id from the palette. No cell may still reference it.
func (s *Section) remove(id uint32) {
	if id == 0 {
		panic("section: air cannot be removed from the palette")
	}
	ty := s.palette[id]
	s.palette = append(s.palette[:id], s.palette[id+1:]...)
	s.amounts = append(s.amounts[:id], s.amounts[id+1:]...)
	delete(s.reverse, ty)
	for k, v := range s.reverse {
		if v > id {
			s.reverse[k] = v - 1
		}
	}
	s.shiftAllAbove(id+1, -1)
}

// shiftAllAbove adds delta to every stored palette id that is >= threshold.
func (s *Section) shiftAllAbove(threshold uint32, delta int) {
	for i := 0; i < SectionVolume; i++ {
		if v := s.get(i); v >= threshold {
			s.set(i, uint32(int(v)+delta))
		}
	}
}
