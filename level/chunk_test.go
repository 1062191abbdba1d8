package level

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkSetGet(t *testing.T) {
	c := NewChunk(0)
	require.Equal(t, DefaultLayers, c.Layers())

	v, err := c.GetBlock(NewPos(3, 100, 4))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v)
	assert.Nil(t, c.Section(6), "reads must not allocate")

	require.NoError(t, c.SetBlock(NewPos(3, 100, 4), 17))
	v, err = c.GetBlock(NewPos(3, 100, 4))
	require.NoError(t, err)
	assert.Equal(t, uint32(17), v)

	s := c.Section(6)
	require.NotNil(t, s)
	assert.Equal(t, uint32(17), s.GetBlock(NewPos(3, 4, 4)))
	for layer := 0; layer < c.Layers(); layer++ {
		if layer != 6 {
			assert.Nil(t, c.Section(layer), "layer %d", layer)
		}
	}
}

func TestChunkOutOfBounds(t *testing.T) {
	c := NewChunk(16)

	err := c.SetBlock(NewPos(0, 20*16, 0), 1)
	require.ErrorIs(t, err, ErrOutOfBounds)
	for layer := 0; layer < 21; layer++ {
		assert.Nil(t, c.Section(layer))
	}

	assert.ErrorIs(t, c.SetBlock(NewPos(0, -1, 0), 1), ErrOutOfBounds)
	assert.ErrorIs(t, c.SetBlock(NewPos(16, 0, 0), 1), ErrOutOfBounds)
	assert.ErrorIs(t, c.SetBlock(NewPos(0, 0, -3), 1), ErrOutOfBounds)

	_, err = c.GetBlock(NewPos(0, 256, 0))
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = c.GetBlock(NewPos(0, 255, 0))
	assert.NoError(t, err)

	assert.Nil(t, c.Section(0))
}

func TestChunkTallWorld(t *testing.T) {
	c := NewChunk(24)
	require.NoError(t, c.SetBlock(NewPos(0, 380, 0), 2))
	v, err := c.GetBlock(NewPos(0, 380, 0))
	require.NoError(t, err)
	assert.Equal(t, uint32(2), v)
	assert.ErrorIs(t, c.SetBlock(NewPos(0, 384, 0), 2), ErrOutOfBounds)
}

func TestChunkFillAcrossLayers(t *testing.T) {
	c := NewChunk(16)
	require.NoError(t, c.Fill(NewPos(2, 10, 3), NewPos(5, 40, 7), 9))

	for layer := 0; layer <= 2; layer++ {
		require.NotNil(t, c.Section(layer))
		checkSection(t, c.Section(layer))
	}
	assert.Nil(t, c.Section(3))
	assert.Equal(t, 4*6*5, c.Section(0).Count(9))
	assert.Equal(t, 4*16*5, c.Section(1).Count(9))
	assert.Equal(t, 4*9*5, c.Section(2).Count(9))

	for y := int32(0); y < 64; y++ {
		v, err := c.GetBlock(NewPos(3, y, 5))
		require.NoError(t, err)
		if y >= 10 && y <= 40 {
			assert.Equal(t, uint32(9), v, "y %d", y)
		} else {
			assert.Equal(t, uint32(0), v, "y %d", y)
		}
	}
}

func TestChunkFillErrors(t *testing.T) {
	c := NewChunk(16)
	assert.ErrorIs(t, c.Fill(NewPos(0, 0, 0), NewPos(15, 256, 15), 1), ErrOutOfBounds)
	assert.ErrorIs(t, c.Fill(NewPos(0, -16, 0), NewPos(15, 15, 15), 1), ErrOutOfBounds)
	assert.ErrorIs(t, c.Fill(NewPos(0, 40, 0), NewPos(15, 20, 15), 1), ErrOutOfBounds)
	assert.ErrorIs(t, c.Fill(NewPos(5, 0, 0), NewPos(4, 0, 0), 1), ErrOutOfBounds)
	for layer := 0; layer < 16; layer++ {
		assert.Nil(t, c.Section(layer))
	}
}

func TestChunkFillAirClearsLayers(t *testing.T) {
	c := NewChunk(16)
	require.NoError(t, c.Fill(NewPos(0, 0, 0), NewPos(15, 47, 15), 4))
	require.NoError(t, c.Fill(NewPos(0, 8, 0), NewPos(15, 47, 15), 0))

	require.NotNil(t, c.Section(0))
	assert.Equal(t, 16*8*16, c.Section(0).Count(4))
	assert.Nil(t, c.Section(1))
	assert.Nil(t, c.Section(2))
}

func TestChunkClearLayer(t *testing.T) {
	c := NewChunk(16)
	require.NoError(t, c.SetBlock(NewPos(1, 33, 1), 3))
	require.NoError(t, c.ClearLayer(2))
	assert.Nil(t, c.Section(2))
	v, err := c.GetBlock(NewPos(1, 33, 1))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v)

	require.NoError(t, c.ClearLayer(15))
	assert.ErrorIs(t, c.ClearLayer(16), ErrOutOfBounds)
}

func TestChunkDuplicate(t *testing.T) {
	c := NewChunk(16)
	require.NoError(t, c.SetBlock(NewPos(1, 1, 1), 3))
	d := c.Duplicate()
	require.NoError(t, d.SetBlock(NewPos(1, 1, 1), 4))
	require.NoError(t, d.SetBlock(NewPos(1, 200, 1), 4))

	v, _ := c.GetBlock(NewPos(1, 1, 1))
	assert.Equal(t, uint32(3), v)
	assert.Nil(t, c.Section(12))
	v, _ = d.GetBlock(NewPos(1, 1, 1))
	assert.Equal(t, uint32(4), v)
	assert.Equal(t, c.Layers(), d.Layers())
}

func TestPos(t *testing.T) {
	p := NewPos(3, 37, 9)
	assert.Equal(t, int32(2), p.Layer())
	assert.Equal(t, NewPos(3, 5, 9), p.LayerRel())
	assert.Equal(t, 5<<8|9<<4|3, p.LayerRel().Index())
	assert.Equal(t, int32(-1), NewPos(0, -1, 0).Layer())
	assert.Equal(t, "(3, 37, 9)", p.String())
}

func TestChunkSetSection(t *testing.T) {
	c := NewChunk(16)
	s := NewSection()
	require.NoError(t, s.SetBlock(NewPos(2, 3, 4), 8))

	require.NoError(t, c.SetSection(9, s))
	assert.Same(t, s, c.Section(9))
	v, err := c.GetBlock(NewPos(2, 9*16+3, 4))
	require.NoError(t, err)
	assert.Equal(t, uint32(8), v)

	require.NoError(t, c.SetSection(9, nil))
	assert.Nil(t, c.Section(9))
	assert.ErrorIs(t, c.SetSection(16, s), ErrOutOfBounds)
	assert.ErrorIs(t, c.SetSection(-1, s), ErrOutOfBounds)
}
