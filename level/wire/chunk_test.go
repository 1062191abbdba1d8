package wire

import (
	"testing"

	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynamitemc/voxelstore/level"
)

func demoChunk(t *testing.T) *level.Chunk {
	t.Helper()
	c := level.NewChunk(16)
	require.NoError(t, c.Fill(level.NewPos(0, 0, 0), level.NewPos(15, 3, 15), 1))
	require.NoError(t, c.Fill(level.NewPos(2, 4, 2), level.NewPos(13, 20, 13), 3))
	require.NoError(t, c.SetBlock(level.NewPos(7, 100, 7), 9))
	// Created by the write, then emptied again.
	require.NoError(t, c.SetBlock(level.NewPos(0, 200, 0), 4))
	require.NoError(t, c.SetBlock(level.NewPos(0, 200, 0), 0))
	return c
}

func requireSameChunk(t *testing.T, want, got *level.Chunk) {
	t.Helper()
	require.Equal(t, want.Layers(), got.Layers())
	for y := int32(0); y < int32(want.Layers())*16; y++ {
		for z := int32(0); z < 16; z += 5 {
			for x := int32(0); x < 16; x += 3 {
				p := level.NewPos(x, y, z)
				a, err := want.GetBlock(p)
				require.NoError(t, err)
				b, err := got.GetBlock(p)
				require.NoError(t, err)
				require.Equal(t, a, b, "%v", p)
			}
		}
	}
}

func TestChunkRoundTrip(t *testing.T) {
	c := demoChunk(t)
	for _, codec := range Codecs {
		t.Run(codec.Name, func(t *testing.T) {
			data, mask, err := ChunkData(c, codec, nil)
			require.NoError(t, err)

			if codec.AllSections {
				for i := 0; i < 16; i++ {
					assert.True(t, has(mask, i), "layer %d", i)
				}
			} else {
				for i := 0; i < 16; i++ {
					assert.Equal(t, i <= 1 || i == 6, has(mask, i), "layer %d", i)
				}
			}

			got, err := PutChunkData(data, mask, 16, codec, nil)
			require.NoError(t, err)
			requireSameChunk(t, c, got)
			assert.Nil(t, got.Section(5))
			assert.Nil(t, got.Section(12))
		})
	}
}

func TestChunkFixedLayout(t *testing.T) {
	data, mask, err := ChunkData(demoChunk(t), V1_8, nil)
	require.NoError(t, err)
	require.Len(t, mask, 1)
	assert.Equal(t, int64(1<<0|1<<1|1<<6), mask[0])

	// Blocks, block light, sky light, then one biome per column.
	assert.Len(t, data, 3*8192+2*3*2048+256)
	assert.Equal(t, byte(0xFF), data[3*8192])
	assert.Equal(t, byte(voidBiome), data[len(data)-1])
}

func TestChunkEmpty(t *testing.T) {
	data, mask, err := ChunkData(level.NewChunk(16), V1_16, nil)
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.False(t, has(mask, 0))

	data, _, err = ChunkData(level.NewChunk(24), V1_18, nil)
	require.NoError(t, err)
	assert.Len(t, data, 24*8)
}

func TestChunkMalformed(t *testing.T) {
	c := demoChunk(t)
	data, mask, err := ChunkData(c, V1_16, nil)
	require.NoError(t, err)

	_, err = PutChunkData(append(data, 0), mask, 16, V1_16, nil)
	assert.ErrorIs(t, err, level.ErrMalformed)

	wide := make(pk.BitSet, 1)
	wide.Set(20, true)
	_, err = PutChunkData(data, wide, 16, V1_16, nil)
	assert.ErrorIs(t, err, level.ErrMalformed)

	_, err = PutChunkData(data[:len(data)-1], mask, 16, V1_16, nil)
	assert.Error(t, err)
}

func TestChunkRemap(t *testing.T) {
	c := demoChunk(t)
	to := func(id uint32) uint32 {
		if id == 0 {
			return 0
		}
		return id + 1000
	}
	data, mask, err := ChunkData(c, V1_14, to)
	require.NoError(t, err)

	got, err := PutChunkData(data, mask, 16, V1_14, nil)
	require.NoError(t, err)
	v, err := got.GetBlock(level.NewPos(7, 100, 7))
	require.NoError(t, err)
	assert.Equal(t, uint32(1009), v)

	got, err = PutChunkData(data, mask, 16, V1_14, func(id uint32) uint32 {
		if id == 0 {
			return 0
		}
		return id - 1000
	})
	require.NoError(t, err)
	requireSameChunk(t, c, got)
}

func TestHas(t *testing.T) {
	mask := make(pk.BitSet, 2)
	mask.Set(3, true)
	mask.Set(63, true)
	mask.Set(64, true)
	assert.True(t, has(mask, 3))
	assert.True(t, has(mask, 63))
	assert.True(t, has(mask, 64))
	assert.False(t, has(mask, 4))
	assert.False(t, has(mask, 200))
}
