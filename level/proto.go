package level

// maxProtoPalette is the longest palette accepted from a SectionProto.
const maxProtoPalette = 256

// SectionProto is the version independent form of a section that is handed to
// encoders and read back from decoders. Data uses the BitArray layout.
type SectionProto struct {
	BitsPerBlock int32
	Palette      []uint32
	NonAirBlocks int32
	Data         []uint64
}

// ChunkProto holds the present sections of a chunk, keyed by layer.
type ChunkProto struct {
	Layers   int32
	Sections map[int32]*SectionProto
}

// ToProto converts the section, passing every palette entry through to. The
// order of the palette is kept even if to does not preserve it.
func (s *Section) ToProto(to Remap) *SectionProto {
	palette := make([]uint32, len(s.palette))
	for i, id := range s.palette {
		palette[i] = to.Apply(id)
	}
	data := make([]uint64, len(s.data.Raw()))
	copy(data, s.data.Raw())
	return &SectionProto{
		BitsPerBlock: int32(s.data.Bits()),
		Palette:      palette,
		NonAirBlocks: int32(s.NonAirBlocks()),
		Data:         data,
	}
}

func validateProto(pb *SectionProto) error {
	if pb == nil {
		return malformed("nil section")
	}
	if pb.BitsPerBlock < 4 || pb.BitsPerBlock > 64 {
		return malformed("invalid bits per block %d", pb.BitsPerBlock)
	}
	if len(pb.Palette) == 0 {
		return malformed("empty palette")
	}
	if len(pb.Palette) > maxProtoPalette {
		return malformed("palette is too long: %d > %d", len(pb.Palette), maxProtoPalette)
	}
	if pb.BitsPerBlock < 9 && len(pb.Palette) > 1<<pb.BitsPerBlock {
		return malformed("palette of %d entries does not fit in %d bits", len(pb.Palette), pb.BitsPerBlock)
	}
	if pb.Palette[0] != 0 {
		return malformed("the first element of the palette must be 0, got %d", pb.Palette[0])
	}
	if want := SectionVolume * int(pb.BitsPerBlock) / 64; len(pb.Data) != want {
		return malformed("data length is incorrect. got %d longs, expected %d longs", len(pb.Data), want)
	}
	return nil
}

// SectionFromProto creates a section from pb, passing every palette entry
// through from. Any structural problem with pb is reported as ErrMalformed.
//
// If the converted palette is no longer sorted, contains duplicates, or lost
// air, the section is rebuilt so that it is.
func SectionFromProto(pb *SectionProto, from Remap) (*Section, error) {
	if err := validateProto(pb); err != nil {
		return nil, err
	}
	s := &Section{
		data:    NewBitArray(int(pb.BitsPerBlock), SectionVolume, pb.Data),
		palette: make([]uint32, len(pb.Palette)),
		amounts: make([]uint32, len(pb.Palette)),
		reverse: make(map[uint32]uint32, len(pb.Palette)),
	}
	for i, id := range pb.Palette {
		s.palette[i] = from.Apply(id)
	}
	for i := 0; i < SectionVolume; i++ {
		id := s.data.Get(i)
		if id >= uint64(len(s.palette)) {
			return nil, malformed("cell %d references palette id %d of %d", i, id, len(s.palette))
		}
		s.amounts[id]++
	}
	if !s.normalized() {
		ids := make([]uint32, SectionVolume)
		for i := range ids {
			ids[i] = s.BlockAt(i)
		}
		return SectionFromIDs(ids, int(pb.BitsPerBlock)), nil
	}
	for i, id := range s.palette {
		s.reverse[id] = uint32(i)
	}
	return s, nil
}

// normalized reports whether the palette is sorted, unique, starts with air and
// has no unused entries besides air.
func (s *Section) normalized() bool {
	if s.palette[0] != 0 {
		return false
	}
	for i := 1; i < len(s.palette); i++ {
		if s.palette[i] <= s.palette[i-1] || s.amounts[i] == 0 {
			return false
		}
	}
	return true
}

// ToProto converts every present section of the chunk.
func (c *Chunk) ToProto(to Remap) *ChunkProto {
	pb := &ChunkProto{
		Layers:   int32(c.layers),
		Sections: make(map[int32]*SectionProto),
	}
	for i, s := range c.sections {
		if s != nil {
			pb.Sections[int32(i)] = s.ToProto(to)
		}
	}
	return pb
}

// ChunkFromProto creates a chunk from pb. See SectionFromProto.
func ChunkFromProto(pb *ChunkProto, from Remap) (*Chunk, error) {
	if pb == nil {
		return nil, malformed("nil chunk")
	}
	c := NewChunk(int(pb.Layers))
	for layer, spb := range pb.Sections {
		if layer < 0 || int(layer) >= c.layers {
			return nil, malformed("section %d is outside of a chunk with %d layers", layer, c.layers)
		}
		s, err := SectionFromProto(spb, from)
		if err != nil {
			return nil, err
		}
		c.grow(int(layer))
		c.sections[layer] = s
	}
	return c, nil
}
