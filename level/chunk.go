package level

// Chunk is a column of sections. Sections are created on first write; a missing
// section reads as air. A Chunk is not safe for concurrent use, callers must
// serialize access to it.
type Chunk struct {
	sections []*Section
	layers   int
}

// NewChunk creates an empty chunk that is layers sections tall. A non-positive
// value selects DefaultLayers.
func NewChunk(layers int) *Chunk {
	if layers <= 0 {
		layers = DefaultLayers
	}
	return &Chunk{layers: layers}
}

// Layers returns the number of sections this chunk can hold.
func (c *Chunk) Layers() int {
	return c.layers
}

// Section returns the section at the given layer, or nil if it has not been created.
func (c *Chunk) Section(layer int) *Section {
	if layer < 0 || layer >= len(c.sections) {
		return nil
	}
	return c.sections[layer]
}

// SetSection replaces the section at layer. A nil section clears the layer.
func (c *Chunk) SetSection(layer int, s *Section) error {
	if layer < 0 || layer >= c.layers {
		return Pos{Y: int32(layer) * SectionWidth}.err("layer is outside of chunk")
	}
	if s == nil {
		c.clear(layer)
		return nil
	}
	c.grow(layer)
	c.sections[layer] = s
	return nil
}

func (c *Chunk) checkPos(p Pos) error {
	if p.X < 0 || p.X >= SectionWidth || p.Z < 0 || p.Z >= SectionWidth {
		return p.err("X or Z coordinate is outside of chunk")
	}
	if l := p.Layer(); l < 0 || int(l) >= c.layers {
		return p.err("Y coordinate is outside of chunk")
	}
	return nil
}

// section returns the section at layer, creating it if needed.
func (c *Chunk) section(layer int) *Section {
	c.grow(layer)
	if c.sections[layer] == nil {
		c.sections[layer] = NewSection()
	}
	return c.sections[layer]
}

func (c *Chunk) grow(layer int) {
	if layer >= len(c.sections) {
		grown := make([]*Section, layer+1)
		copy(grown, c.sections)
		c.sections = grown
	}
}

// SetBlock places the block ty at p. X and Z must be within 0..16, and Y must be
// within the height of the chunk.
func (c *Chunk) SetBlock(p Pos, ty uint32) error {
	if err := c.checkPos(p); err != nil {
		return err
	}
	return c.section(int(p.Layer())).SetBlock(p.LayerRel(), ty)
}

// GetBlock returns the block at p. Missing sections are air.
func (c *Chunk) GetBlock(p Pos) (uint32, error) {
	if err := c.checkPos(p); err != nil {
		return 0, err
	}
	s := c.Section(int(p.Layer()))
	if s == nil {
		return 0, nil
	}
	return s.GetBlock(p.LayerRel()), nil
}

// Fill places the block ty in every cell of the box between min and max,
// inclusive. See SetBlock for the bounds of min and max.
func (c *Chunk) Fill(min, max Pos, ty uint32) error {
	if err := c.checkPos(min); err != nil {
		return err
	}
	if err := c.checkPos(max); err != nil {
		return err
	}
	if max.X < min.X || max.Y < min.Y || max.Z < min.Z {
		return max.err("max is less than min")
	}
	for layer := int(min.Layer()); layer <= int(max.Layer()); layer++ {
		lo, hi := min, max
		if bottom := int32(layer) * SectionWidth; lo.Y < bottom {
			lo.Y = bottom
		}
		if top := int32(layer)*SectionWidth + SectionWidth - 1; hi.Y > top {
			hi.Y = top
		}
		lo, hi = lo.LayerRel(), hi.LayerRel()
		if ty == 0 && lo == (Pos{}) && hi == (Pos{X: 15, Y: 15, Z: 15}) {
			c.clear(layer)
			continue
		}
		if err := c.section(layer).Fill(lo, hi, ty); err != nil {
			return err
		}
	}
	return nil
}

// ClearLayer removes the section at layer, turning it back into air.
func (c *Chunk) ClearLayer(layer int) error {
	return c.SetSection(layer, nil)
}

func (c *Chunk) clear(layer int) {
	if layer < len(c.sections) {
		c.sections[layer] = nil
	}
}

// Duplicate returns a deep copy of the chunk.
func (c *Chunk) Duplicate() *Chunk {
	d := &Chunk{
		sections: make([]*Section, len(c.sections)),
		layers:   c.layers,
	}
	for i, s := range c.sections {
		if s != nil {
			d.sections[i] = s.Duplicate()
		}
	}
	return d
}
