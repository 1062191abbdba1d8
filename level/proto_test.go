package level

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSection(t *testing.T) *Section {
	t.Helper()
	s := NewSection()
	for i := 0; i < 40; i++ {
		require.NoError(t, s.SetBlock(NewPos(int32(i%16), int32(i/16), 2), uint32(i*7+1)))
	}
	require.NoError(t, s.Fill(NewPos(0, 10, 0), NewPos(15, 11, 15), 3))
	return s
}

func TestSectionProtoRoundTrip(t *testing.T) {
	s := sampleSection(t)
	pb := s.ToProto(nil)
	assert.Equal(t, int32(s.BitsPerBlock()), pb.BitsPerBlock)
	assert.Equal(t, int32(s.NonAirBlocks()), pb.NonAirBlocks)
	assert.Equal(t, s.Palette(), pb.Palette)
	assert.Len(t, pb.Data, SectionVolume*int(pb.BitsPerBlock)/64)

	got, err := SectionFromProto(pb, nil)
	require.NoError(t, err)
	checkSection(t, got)
	for i := 0; i < SectionVolume; i++ {
		require.Equal(t, s.BlockAt(i), got.BlockAt(i))
	}
	assert.Equal(t, s.BitsPerBlock(), got.BitsPerBlock())
}

func TestSectionProtoRemap(t *testing.T) {
	s := sampleSection(t)
	to := func(id uint32) uint32 { return id * 2 }
	from := func(id uint32) uint32 { return id / 2 }

	pb := s.ToProto(to)
	for i, id := range s.Palette() {
		assert.Equal(t, id*2, pb.Palette[i])
	}
	got, err := SectionFromProto(pb, from)
	require.NoError(t, err)
	checkSection(t, got)
	for i := 0; i < SectionVolume; i++ {
		require.Equal(t, s.BlockAt(i), got.BlockAt(i))
	}
}

func TestSectionProtoReorderingRemap(t *testing.T) {
	s := NewSection()
	require.NoError(t, s.SetBlock(NewPos(0, 0, 0), 1))
	require.NoError(t, s.SetBlock(NewPos(1, 0, 0), 2))
	require.NoError(t, s.SetBlock(NewPos(2, 0, 0), 3))
	pb := s.ToProto(nil)

	// 1 and 2 swap places and 3 collapses into 2.
	from := func(id uint32) uint32 {
		switch id {
		case 1:
			return 20
		case 2, 3:
			return 10
		}
		return id
	}
	got, err := SectionFromProto(pb, from)
	require.NoError(t, err)
	checkSection(t, got)
	assert.Equal(t, []uint32{0, 10, 20}, got.Palette())
	assert.Equal(t, uint32(20), got.GetBlock(NewPos(0, 0, 0)))
	assert.Equal(t, uint32(10), got.GetBlock(NewPos(1, 0, 0)))
	assert.Equal(t, uint32(10), got.GetBlock(NewPos(2, 0, 0)))
	assert.Equal(t, 2, got.Count(10))
}

func TestSectionProtoUnusedEntries(t *testing.T) {
	pb := NewSection().ToProto(nil)
	pb.Palette = []uint32{0, 5, 6}
	got, err := SectionFromProto(pb, nil)
	require.NoError(t, err)
	checkSection(t, got)
	assert.Equal(t, []uint32{0}, got.Palette())
}

func TestSectionProtoMalformed(t *testing.T) {
	valid := func() *SectionProto { return NewSection().ToProto(nil) }
	cases := map[string]func(pb *SectionProto){
		"bits too small":   func(pb *SectionProto) { pb.BitsPerBlock = 3 },
		"bits too large":   func(pb *SectionProto) { pb.BitsPerBlock = 65 },
		"empty palette":    func(pb *SectionProto) { pb.Palette = nil },
		"palette too long": func(pb *SectionProto) { pb.Palette = make([]uint32, 257) },
		"palette too wide": func(pb *SectionProto) { pb.Palette = make([]uint32, 17) },
		"first not air":    func(pb *SectionProto) { pb.Palette[0] = 1 },
		"short data":       func(pb *SectionProto) { pb.Data = pb.Data[:10] },
		"data for 5 bits":  func(pb *SectionProto) { pb.BitsPerBlock = 5 },
		"dangling palette": func(pb *SectionProto) { pb.Data[0] = 0x3 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			pb := valid()
			mutate(pb)
			_, err := SectionFromProto(pb, nil)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}

	_, err := SectionFromProto(nil, nil)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestSectionProtoWideIndexOutOfPalette(t *testing.T) {
	data := NewBitArray(40, SectionVolume, nil)
	data.Set(0, 1<<32|1)
	pb := &SectionProto{
		BitsPerBlock: 40,
		Palette:      []uint32{0, 5},
		Data:         data.Raw(),
	}
	_, err := SectionFromProto(pb, nil)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestSectionProtoWideBits(t *testing.T) {
	pb := &SectionProto{
		BitsPerBlock: 64,
		Palette:      []uint32{0, 9},
		Data:         make([]uint64, SectionVolume),
	}
	pb.Data[7] = 1
	s, err := SectionFromProto(pb, nil)
	require.NoError(t, err)
	checkSection(t, s)
	assert.Equal(t, 64, s.BitsPerBlock())
	assert.Equal(t, uint32(9), s.BlockAt(7))

	require.NoError(t, s.SetBlock(NewPos(0, 0, 0), 4))
	checkSection(t, s)
	assert.Equal(t, 64, s.BitsPerBlock())
	assert.Equal(t, uint32(9), s.BlockAt(7))
}

func TestChunkProtoRoundTrip(t *testing.T) {
	c := NewChunk(16)
	require.NoError(t, c.SetBlock(NewPos(1, 2, 3), 4))
	require.NoError(t, c.Fill(NewPos(0, 64, 0), NewPos(15, 70, 15), 8))

	pb := c.ToProto(nil)
	assert.Len(t, pb.Sections, 2)
	assert.Contains(t, pb.Sections, int32(0))
	assert.Contains(t, pb.Sections, int32(4))

	got, err := ChunkFromProto(pb, nil)
	require.NoError(t, err)
	assert.Nil(t, got.Section(1))
	for y := int32(0); y < 256; y += 3 {
		want, _ := c.GetBlock(NewPos(1, y, 3))
		have, err := got.GetBlock(NewPos(1, y, 3))
		require.NoError(t, err)
		require.Equal(t, want, have, "y %d", y)
	}

	pb.Sections[16] = NewSection().ToProto(nil)
	_, err = ChunkFromProto(pb, nil)
	assert.ErrorIs(t, err, ErrMalformed)

	delete(pb.Sections, 16)
	pb.Sections[2] = nil
	_, err = ChunkFromProto(pb, nil)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ChunkFromProto(nil, nil)
	assert.ErrorIs(t, err, ErrMalformed)
}
