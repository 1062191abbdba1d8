package main

import (
	"fmt"

	"github.com/dynamitemc/voxelstore/level"
	"github.com/dynamitemc/voxelstore/level/wire"
)

const (
	demoBedrock = 7
	demoStone   = 1
	demoDirt    = 3
	demoGrass   = 2
	demoOres    = 300
)

// DemoChunk builds a column with flat terrain and one section of many different
// blocks, which is wide enough to be sent without a palette.
func DemoChunk(layers int) *level.Chunk {
	c := level.NewChunk(layers)
	top := int32(c.Layers())*level.SectionWidth - 1
	fill := func(y0, y1 int32, ty uint32) {
		if y0 > top {
			return
		}
		if y1 > top {
			y1 = top
		}
		if err := c.Fill(level.NewPos(0, y0, 0), level.NewPos(15, y1, 15), ty); err != nil {
			panic(err)
		}
	}
	fill(0, 0, demoBedrock)
	fill(1, 59, demoStone)
	fill(60, 63, demoDirt)
	fill(64, 64, demoGrass)

	// Ores are placed over the stone of the second section.
	if c.Layers() > 1 {
		for i := 0; i < demoOres; i++ {
			p := level.NewPos(int32(i&15), 16+int32(i>>8), int32(i>>4&15))
			if err := c.SetBlock(p, uint32(100+i)); err != nil {
				panic(err)
			}
		}
	}
	return c
}

// Check encodes the chunk for every configured version, decodes it again and
// compares every block.
func (tool *Tool) Check() error {
	for _, v := range tool.Config.Versions {
		codec, err := tool.Registry.Lookup(v.Protocol)
		if err != nil {
			tool.Logger.Warn("Skipping protocol", v.Protocol, err)
			continue
		}
		data, mask, err := wire.ChunkData(tool.Chunk, codec, v.To())
		if err != nil {
			return fmt.Errorf("encode for %v: %w", codec, err)
		}
		back, err := wire.PutChunkData(data, mask, tool.Chunk.Layers(), codec, v.From())
		if err != nil {
			return fmt.Errorf("decode for %v: %w", codec, err)
		}
		if err := sameBlocks(tool.Chunk, back); err != nil {
			return fmt.Errorf("%v: %w", codec, err)
		}
		tool.Logger.Info("Protocol", v.Protocol, "encoded as", codec.String()+":", len(data), "bytes")
		tool.Logger.Debug("Section mask", mask)
	}
	return nil
}

func sameBlocks(want, got *level.Chunk) error {
	if want.Layers() != got.Layers() {
		return fmt.Errorf("chunk has %d layers, expected %d", got.Layers(), want.Layers())
	}
	for layer := 0; layer < want.Layers(); layer++ {
		a, b := want.Section(layer), got.Section(layer)
		for i := 0; i < level.SectionVolume; i++ {
			var x, y uint32
			if a != nil {
				x = a.BlockAt(i)
			}
			if b != nil {
				y = b.BlockAt(i)
			}
			if x != y {
				return fmt.Errorf("block %d of section %d is %d, expected %d", i, layer, y, x)
			}
		}
	}
	return nil
}
