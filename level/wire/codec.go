// Package wire converts sections and chunk columns to and from the byte layouts
// used by the supported protocol versions.
//
// Each version is described by a Codec. The encoder and decoder only look at the
// switches on the Codec, so supporting a new version usually means adding a new
// value here and registering it.
package wire

import (
	"fmt"

	"github.com/Tnze/go-mc/level/block"
)

// Layout is the way a section's index array is packed into longs.
type Layout int

const (
	// LayoutFixed writes one little endian uint16 per cell, no palette.
	LayoutFixed Layout = iota
	// LayoutCompact lets a value span two longs.
	LayoutCompact
	// LayoutPadded packs floor(64/bits) values per long, leaving the top bits unused.
	LayoutPadded
)

func (l Layout) String() string {
	switch l {
	case LayoutFixed:
		return "fixed"
	case LayoutCompact:
		return "compact"
	case LayoutPadded:
		return "padded"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// Light says where a codec puts the (always full bright) light arrays.
type Light int

const (
	LightNone Light = iota
	// LightInSection writes block light and sky light after every section.
	LightInSection
	// LightGrouped writes all block light, then all sky light, after the last section.
	LightGrouped
)

// MaxIndexedBits is the widest index that is sent with a palette. Anything wider
// is sent in direct mode, as raw block ids.
const MaxIndexedBits = 8

// Codec describes the section format of one protocol version.
type Codec struct {
	Name     string
	Protocol int32
	Layout   Layout

	// BlockCount prefixes each section with its number of non air blocks.
	BlockCount bool
	// SingleValue writes sections holding one block id with 0 bits and no data.
	SingleValue bool
	// DirectPalette writes an empty palette length in direct mode.
	DirectPalette bool
	// DirectBits is the width of a raw block id in direct mode.
	DirectBits int

	Light Light
	// Biomes writes placeholder biomes: an empty container after each section,
	// or a single column array after the last section for LayoutFixed.
	Biomes bool
	// AllSections sends every section of a chunk, air or not.
	AllSections bool
}

func (c *Codec) String() string {
	return fmt.Sprintf("%s (protocol %d)", c.Name, c.Protocol)
}

var (
	V1_8 = &Codec{
		Name:       "1.8",
		Protocol:   47,
		Layout:     LayoutFixed,
		DirectBits: 16,
		Light:      LightGrouped,
		Biomes:     true,
	}
	V1_12 = &Codec{
		Name:          "1.12",
		Protocol:      340,
		Layout:        LayoutCompact,
		DirectPalette: true,
		DirectBits:    13,
		Light:         LightInSection,
	}
	V1_13 = &Codec{
		Name:       "1.13",
		Protocol:   393,
		Layout:     LayoutCompact,
		DirectBits: 14,
		Light:      LightInSection,
	}
	V1_14 = &Codec{
		Name:       "1.14",
		Protocol:   477,
		Layout:     LayoutCompact,
		BlockCount: true,
		DirectBits: 14,
	}
	V1_15 = &Codec{
		Name:       "1.15",
		Protocol:   573,
		Layout:     LayoutCompact,
		BlockCount: true,
		DirectBits: 14,
	}
	V1_16 = &Codec{
		Name:       "1.16",
		Protocol:   735,
		Layout:     LayoutPadded,
		BlockCount: true,
		DirectBits: 15,
	}
	V1_18 = &Codec{
		Name:        "1.18",
		Protocol:    757,
		Layout:      LayoutPadded,
		BlockCount:  true,
		SingleValue: true,
		DirectBits:  block.BitsPerBlock,
		Biomes:      true,
		AllSections: true,
	}
)

// Codecs lists every built in codec, oldest first.
var Codecs = []*Codec{V1_8, V1_12, V1_13, V1_14, V1_15, V1_16, V1_18}

// longs returns the number of longs needed to store a section at the given width.
func (c *Codec) longs(bits int) int {
	switch c.Layout {
	case LayoutCompact:
		return (sectionVolume*bits + 63) / 64
	case LayoutPadded:
		perLong := 64 / bits
		return (sectionVolume + perLong - 1) / perLong
	}
	return 0
}
