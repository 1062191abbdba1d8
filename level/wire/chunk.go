package wire

import (
	"bytes"
	"io"

	pk "github.com/Tnze/go-mc/net/packet"

	"github.com/dynamitemc/voxelstore/level"
)

const (
	// columnBiomes is the size of the 1.8 biome array, one byte per column.
	columnBiomes = 16 * 16
	// voidBiome is written to every column of the 1.8 biome array.
	voidBiome = 127
)

// EncodeChunk writes the sections of c, bottom up, in the format of codec. The
// returned mask has a bit set for every section that was written.
//
// Only sections holding a block are written, unless the codec sends all sections.
func EncodeChunk(w io.Writer, c *level.Chunk, codec *Codec, to level.Remap) (pk.BitSet, int64, error) {
	mask := make(pk.BitSet, (c.Layers()+63)/64)
	var (
		n     int64
		count int
	)
	for i := 0; i < c.Layers(); i++ {
		s := c.Section(i)
		if s == nil || s.IsEmpty() {
			if !codec.AllSections {
				continue
			}
			if s == nil {
				s = level.NewSection()
			}
		}
		nn, err := EncodeSection(w, s, codec, to)
		n += nn
		if err != nil {
			return nil, n, err
		}
		mask.Set(i, true)
		count++
	}
	if codec.Light == LightGrouped {
		for i := 0; i < 2*count; i++ {
			nn, err := fullBright.WriteTo(w)
			n += nn
			if err != nil {
				return nil, n, err
			}
		}
	}
	if codec.Biomes && codec.Layout == LayoutFixed {
		nn, err := rawBytes(bytes.Repeat([]byte{voidBiome}, columnBiomes)).WriteTo(w)
		n += nn
		if err != nil {
			return nil, n, err
		}
	}
	return mask, n, nil
}

// DecodeChunk reads a chunk of the given height written by EncodeChunk. Sections
// are read for every bit set in mask, or for every layer if the codec sends all
// sections. Sections that only hold air are left out of the chunk.
func DecodeChunk(r io.Reader, mask pk.BitSet, layers int, codec *Codec, from level.Remap) (*level.Chunk, error) {
	c := level.NewChunk(layers)
	layers = c.Layers()
	if !codec.AllSections {
		for i := layers; i < len(mask)*64; i++ {
			if has(mask, i) {
				return nil, malformed("section %d is outside of a chunk with %d layers", i, layers)
			}
		}
	}
	var count int
	for i := 0; i < layers; i++ {
		if !codec.AllSections && !has(mask, i) {
			continue
		}
		s, err := DecodeSection(r, codec, from)
		if err != nil {
			return nil, err
		}
		count++
		if s.IsEmpty() {
			continue
		}
		if err := c.SetSection(i, s); err != nil {
			return nil, err
		}
	}
	if codec.Light == LightGrouped {
		if err := skip(r, int64(2*count*lightBytes)); err != nil {
			return nil, err
		}
	}
	if codec.Biomes && codec.Layout == LayoutFixed {
		if err := skip(r, columnBiomes); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func has(mask pk.BitSet, i int) bool {
	return i/64 < len(mask) && mask[i/64]&(1<<(i%64)) != 0
}

// ChunkData returns the encoded sections of c and their mask.
func ChunkData(c *level.Chunk, codec *Codec, to level.Remap) ([]byte, pk.BitSet, error) {
	var buf bytes.Buffer
	mask, _, err := EncodeChunk(&buf, c, codec, to)
	if err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), mask, nil
}

// PutChunkData decodes data returned by ChunkData. All of data must be used.
func PutChunkData(data []byte, mask pk.BitSet, layers int, codec *Codec, from level.Remap) (*level.Chunk, error) {
	r := bytes.NewReader(data)
	c, err := DecodeChunk(r, mask, layers, codec, from)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, malformed("%d trailing bytes after chunk data", r.Len())
	}
	return c, nil
}
