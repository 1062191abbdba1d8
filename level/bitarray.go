package level

import (
	"fmt"
	"math"
)

const (
	indexOutOfBounds = "index out of bounds"
	valueOutOfBounds = "value out of bounds"
)

// BitArray is a []uintN packed into 64 bit words, where N is indicated by "bits".
// Unlike the 1.16+ protocol layout, values are packed back to back and a value
// may be split between two words: its low bits end the first word and its high
// bits start the next one. This is the layout used before Minecraft 1.16.
type BitArray struct {
	data []uint64
	mask uint64

	bits, length int
}

// NewBitArray creates a BitArray of length values, each bits wide.
//
// The "data" is optional for initializing. It will panic if data != nil && len(data) != bitArraySize(bits, length).
func NewBitArray(bits, length int, data []uint64) *BitArray {
	if bits < 1 || bits > 64 {
		panic(fmt.Sprintf("bit array: invalid width %d", bits))
	}
	b := &BitArray{
		mask:   math.MaxUint64 >> (64 - bits),
		bits:   bits,
		length: length,
	}
	dataLen := bitArraySize(bits, length)
	b.data = make([]uint64, dataLen)
	if data != nil {
		if len(data) != dataLen {
			panic(bitArrayLenErr{ArrLen: len(data), WantLen: dataLen})
		}
		copy(b.data, data)
	}
	return b
}

// bitArraySize calculates how many uint64 are needed for length values of the given width.
func bitArraySize(bits, length int) int {
	return (length*bits + 63) / 64
}

type bitArrayLenErr struct {
	ArrLen  int
	WantLen int
}

func (e bitArrayLenErr) Error() string {
	return fmt.Sprintf("invalid length given for bit array, got: %d but expected: %d", e.ArrLen, e.WantLen)
}

// index returns the word holding the first bit of value i, the word holding its
// last bit, and the offset of its first bit.
func (b *BitArray) index(i int) (first, last, offset int) {
	bit := i * b.bits
	first = bit / 64
	last = (bit + b.bits - 1) / 64
	offset = bit % 64
	return
}

// Get gets [i] value.
func (b *BitArray) Get(i int) uint64 {
	if i < 0 || i >= b.length {
		panic(indexOutOfBounds)
	}
	first, last, offset := b.index(i)
	v := b.data[first] >> offset
	if first != last {
		v |= b.data[last] << (64 - offset)
	}
	return v & b.mask
}

// Set sets v into [i]. All other values are left untouched.
func (b *BitArray) Set(i int, v uint64) {
	if i < 0 || i >= b.length {
		panic(indexOutOfBounds)
	}
	if v > b.mask {
		panic(valueOutOfBounds)
	}
	first, last, offset := b.index(i)
	b.data[first] = b.data[first]&^(b.mask<<offset) | v<<offset
	if first != last {
		shift := 64 - offset
		b.data[last] = b.data[last]&^(b.mask>>shift) | v>>shift
	}
}

// Resize re-encodes every value with the new width. It panics if a value does
// not fit in the new width.
func (b *BitArray) Resize(bits int) {
	if bits == b.bits {
		return
	}
	next := NewBitArray(bits, b.length, nil)
	for i := 0; i < b.length; i++ {
		next.Set(i, b.Get(i))
	}
	*b = *next
}

// Bits returns the width of a single value.
func (b *BitArray) Bits() int {
	return b.bits
}

// Len is the number of stored values.
func (b *BitArray) Len() int {
	return b.length
}

// Raw returns the underlying words. Callers must not modify them.
func (b *BitArray) Raw() []uint64 {
	return b.data
}

func (b *BitArray) clone() *BitArray {
	c := *b
	c.data = make([]uint64, len(b.data))
	copy(c.data, b.data)
	return &c
}
