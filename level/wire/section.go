package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	mclevel "github.com/Tnze/go-mc/level"
	pk "github.com/Tnze/go-mc/net/packet"

	"github.com/dynamitemc/voxelstore/level"
)

const (
	sectionVolume = level.SectionVolume
	// lightBytes is the size of one nibble light array.
	lightBytes = sectionVolume / 2
	// biomeVolume is the number of 4x4x4 biome cells in a section.
	biomeVolume = 4 * 4 * 4
	// maxBiomeIndexedBits is the widest biome index sent with a palette.
	maxBiomeIndexedBits = 3
	// maxDirectBits limits the width accepted for a direct mode section.
	maxDirectBits = 32
)

func malformed(format string, a ...any) error {
	return fmt.Errorf("%w: %s", level.ErrMalformed, fmt.Sprintf(format, a...))
}

// EncodeSection writes s in the format of c, passing every block id through to.
func EncodeSection(w io.Writer, s *level.Section, c *Codec, to level.Remap) (int64, error) {
	if c.Layout == LayoutFixed {
		return encodeFixed(w, s, to)
	}
	pb := s.ToProto(to)

	var fields pk.Tuple
	if c.BlockCount {
		fields = append(fields, pk.Short(pb.NonAirBlocks))
	}
	switch {
	case c.SingleValue && singleValue(pb):
		id := pb.Palette[0]
		if pb.NonAirBlocks != 0 {
			id = pb.Palette[len(pb.Palette)-1]
		}
		fields = append(fields,
			pk.UnsignedByte(0),
			pk.VarInt(id),
			longArray(nil),
		)
	case pb.BitsPerBlock <= MaxIndexedBits:
		data, err := c.pack(int(pb.BitsPerBlock), level.NewBitArray(int(pb.BitsPerBlock), sectionVolume, pb.Data))
		if err != nil {
			return 0, err
		}
		fields = append(fields,
			pk.UnsignedByte(pb.BitsPerBlock),
			varIntArray(pb.Palette),
			longArray(data),
		)
	default:
		ids := level.NewBitArray(c.DirectBits, sectionVolume, nil)
		for i := 0; i < sectionVolume; i++ {
			id := to.Apply(s.BlockAt(i))
			if c.DirectBits < 64 && uint64(id) >= 1<<c.DirectBits {
				return 0, fmt.Errorf("block id %d does not fit in %d bits", id, c.DirectBits)
			}
			ids.Set(i, uint64(id))
		}
		data, err := c.pack(c.DirectBits, ids)
		if err != nil {
			return 0, err
		}
		fields = append(fields, pk.UnsignedByte(c.DirectBits))
		if c.DirectPalette {
			fields = append(fields, pk.VarInt(0))
		}
		fields = append(fields, longArray(data))
	}
	if c.Light == LightInSection {
		fields = append(fields, fullBright, fullBright)
	}
	if c.Biomes {
		fields = append(fields, emptyBiomes)
	}
	return fields.WriteTo(w)
}

// singleValue reports whether every cell of pb holds the same block. An all air
// section has a palette of just air; a filled one keeps air with no cells.
func singleValue(pb *level.SectionProto) bool {
	return pb.NonAirBlocks == 0 || pb.NonAirBlocks == sectionVolume && len(pb.Palette) == 2
}

// pack copies the values of src into longs in the layout of c.
func (c *Codec) pack(bits int, src *level.BitArray) ([]uint64, error) {
	switch c.Layout {
	case LayoutCompact:
		return src.Raw(), nil
	case LayoutPadded:
		dst := mclevel.NewBitStorage(bits, sectionVolume, nil)
		for i := 0; i < sectionVolume; i++ {
			dst.Set(i, int(src.Get(i)))
		}
		return dst.Raw(), nil
	}
	return nil, fmt.Errorf("layout %v does not use longs", c.Layout)
}

// unpack reads longs in the layout of c into a BitArray that is at least
// minBits wide. The length of data must already be checked.
func (c *Codec) unpack(bits, minBits int, data []uint64) *level.BitArray {
	width := bits
	if width < minBits {
		width = minBits
	}
	if c.Layout == LayoutCompact && width == bits {
		return level.NewBitArray(bits, sectionVolume, data)
	}
	dst := level.NewBitArray(width, sectionVolume, nil)
	switch c.Layout {
	case LayoutCompact:
		src := level.NewBitArray(bits, sectionVolume, data)
		for i := 0; i < sectionVolume; i++ {
			dst.Set(i, src.Get(i))
		}
	case LayoutPadded:
		src := mclevel.NewBitStorage(bits, sectionVolume, data)
		for i := 0; i < sectionVolume; i++ {
			dst.Set(i, uint64(src.Get(i)))
		}
	}
	return dst
}

func encodeFixed(w io.Writer, s *level.Section, to level.Remap) (int64, error) {
	buf := make([]byte, sectionVolume*2)
	for i := 0; i < sectionVolume; i++ {
		id := to.Apply(s.BlockAt(i))
		if id > 0xFFFF {
			return 0, fmt.Errorf("block id %d does not fit in 16 bits", id)
		}
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(id))
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// DecodeSection reads one section in the format of c, passing every block id
// through from. Structural problems are reported as level.ErrMalformed.
func DecodeSection(r io.Reader, c *Codec, from level.Remap) (*level.Section, error) {
	if c.Layout == LayoutFixed {
		return decodeFixed(r, from)
	}
	if c.BlockCount {
		// Recounted from the cells.
		var count pk.Short
		if _, err := count.ReadFrom(r); err != nil {
			return nil, err
		}
	}
	var bits pk.UnsignedByte
	if _, err := bits.ReadFrom(r); err != nil {
		return nil, err
	}

	var (
		s   *level.Section
		err error
	)
	switch {
	case bits == 0:
		if !c.SingleValue {
			return nil, malformed("%v does not support single value sections", c)
		}
		s, err = decodeSingle(r, from)
	case bits <= MaxIndexedBits:
		s, err = c.decodeIndexed(r, int(bits), from)
	case bits <= maxDirectBits:
		s, err = c.decodeDirect(r, int(bits), from)
	default:
		return nil, malformed("invalid bits per block %d", bits)
	}
	if err != nil {
		return nil, err
	}

	if c.Light == LightInSection {
		if err := skip(r, 2*lightBytes); err != nil {
			return nil, err
		}
	}
	if c.Biomes {
		if err := skipBiomes(r); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func decodeSingle(r io.Reader, from level.Remap) (*level.Section, error) {
	var id pk.VarInt
	if _, err := id.ReadFrom(r); err != nil {
		return nil, err
	}
	if id < 0 {
		return nil, malformed("negative block id %d", id)
	}
	if _, err := readLongs(r, 0); err != nil {
		return nil, err
	}
	ty := from.Apply(uint32(id))
	ids := make([]uint32, sectionVolume)
	for i := range ids {
		ids[i] = ty
	}
	return level.SectionFromIDs(ids, level.DefaultBitsPerBlock), nil
}

func (c *Codec) decodeIndexed(r io.Reader, bits int, from level.Remap) (*level.Section, error) {
	palette, err := readPalette(r, 1<<bits)
	if err != nil {
		return nil, err
	}
	data, err := readLongs(r, c.longs(bits))
	if err != nil {
		return nil, err
	}
	indices := c.unpack(bits, level.DefaultBitsPerBlock, data)
	if palette[0] != 0 {
		// Not written by us; other encoders do not keep air first.
		ids := make([]uint32, sectionVolume)
		for i := range ids {
			idx := indices.Get(i)
			if idx >= uint64(len(palette)) {
				return nil, malformed("cell %d references palette id %d of %d", i, idx, len(palette))
			}
			ids[i] = from.Apply(palette[idx])
		}
		return level.SectionFromIDs(ids, indices.Bits()), nil
	}
	return level.SectionFromProto(&level.SectionProto{
		BitsPerBlock: int32(indices.Bits()),
		Palette:      palette,
		Data:         indices.Raw(),
	}, from)
}

func (c *Codec) decodeDirect(r io.Reader, bits int, from level.Remap) (*level.Section, error) {
	if c.DirectPalette {
		var n pk.VarInt
		if _, err := n.ReadFrom(r); err != nil {
			return nil, err
		}
		if n != 0 {
			return nil, malformed("direct section has a palette of %d entries", n)
		}
	}
	data, err := readLongs(r, c.longs(bits))
	if err != nil {
		return nil, err
	}
	raw := c.unpack(bits, bits, data)
	ids := make([]uint32, sectionVolume)
	for i := range ids {
		ids[i] = from.Apply(uint32(raw.Get(i)))
	}
	return level.SectionFromIDs(ids, level.DefaultBitsPerBlock), nil
}

func decodeFixed(r io.Reader, from level.Remap) (*level.Section, error) {
	buf := make([]byte, sectionVolume*2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	ids := make([]uint32, sectionVolume)
	for i := range ids {
		ids[i] = from.Apply(uint32(binary.LittleEndian.Uint16(buf[i*2:])))
	}
	return level.SectionFromIDs(ids, level.DefaultBitsPerBlock), nil
}

// readPalette reads a VarInt prefixed palette of at most max entries.
func readPalette(r io.Reader, max int) ([]uint32, error) {
	var n pk.VarInt
	if _, err := n.ReadFrom(r); err != nil {
		return nil, err
	}
	if n < 1 || int(n) > max {
		return nil, malformed("palette of %d entries, expected 1 to %d", n, max)
	}
	palette := make([]uint32, n)
	var v pk.VarInt
	for i := range palette {
		if _, err := v.ReadFrom(r); err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, malformed("negative palette entry %d", v)
		}
		palette[i] = uint32(v)
	}
	return palette, nil
}

// readLongs reads a VarInt prefixed long array that must hold exactly want longs.
func readLongs(r io.Reader, want int) ([]uint64, error) {
	var n pk.VarInt
	if _, err := n.ReadFrom(r); err != nil {
		return nil, err
	}
	if int(n) != want {
		return nil, malformed("data length is incorrect. got %d longs, expected %d longs", n, want)
	}
	data := make([]uint64, n)
	var v pk.Long
	for i := range data {
		if _, err := v.ReadFrom(r); err != nil {
			return nil, err
		}
		data[i] = uint64(v)
	}
	return data, nil
}

func skipBiomes(r io.Reader) error {
	var bits pk.UnsignedByte
	if _, err := bits.ReadFrom(r); err != nil {
		return err
	}
	switch {
	case bits == 0:
		var id pk.VarInt
		if _, err := id.ReadFrom(r); err != nil {
			return err
		}
		_, err := readLongs(r, 0)
		return err
	case bits <= maxBiomeIndexedBits:
		if _, err := readPalette(r, 1<<bits); err != nil {
			return err
		}
	case bits > maxDirectBits:
		return malformed("invalid bits per biome %d", bits)
	}
	perLong := 64 / int(bits)
	_, err := readLongs(r, (biomeVolume+perLong-1)/perLong)
	return err
}

func skip(r io.Reader, n int64) error {
	got, err := io.CopyN(io.Discard, r, n)
	if err == io.EOF && got < n {
		return io.ErrUnexpectedEOF
	}
	return err
}

// varIntArray is a VarInt prefixed array of VarInts.
type varIntArray []uint32

func (a varIntArray) WriteTo(w io.Writer) (int64, error) {
	n, err := pk.VarInt(len(a)).WriteTo(w)
	if err != nil {
		return n, err
	}
	for _, v := range a {
		nn, err := pk.VarInt(v).WriteTo(w)
		n += nn
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// longArray is a VarInt prefixed array of big endian longs.
type longArray []uint64

func (a longArray) WriteTo(w io.Writer) (int64, error) {
	n, err := pk.VarInt(len(a)).WriteTo(w)
	if err != nil {
		return n, err
	}
	for _, v := range a {
		nn, err := pk.Long(v).WriteTo(w)
		n += nn
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// rawBytes is written as is, without a length.
type rawBytes []byte

func (b rawBytes) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b)
	return int64(n), err
}

var (
	// fullBright is one light array with every nibble at 15.
	fullBright = rawBytes(bytes.Repeat([]byte{0xFF}, lightBytes))
	// emptyBiomes is a single value biome container of biome 0.
	emptyBiomes = pk.Tuple{pk.UnsignedByte(0), pk.VarInt(0), longArray(nil)}
)
