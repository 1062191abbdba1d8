package wire

import (
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var ErrUnsupportedProtocol = errors.New("unsupported protocol version")

// Registry maps protocol versions to codecs. Codecs are kept in ascending
// protocol order, so a client newer than every known codec gets the newest one.
type Registry struct {
	codecs *orderedmap.OrderedMap[int32, *Codec]
}

// NewRegistry creates a registry holding the given codecs, oldest first.
func NewRegistry(codecs ...*Codec) (*Registry, error) {
	r := &Registry{codecs: orderedmap.New[int32, *Codec]()}
	for _, c := range codecs {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry holds every built in codec.
var DefaultRegistry = func() *Registry {
	r, err := NewRegistry(Codecs...)
	if err != nil {
		panic(err)
	}
	return r
}()

// Register adds c. Its protocol must be newer than every registered codec.
func (r *Registry) Register(c *Codec) error {
	if newest := r.codecs.Newest(); newest != nil && newest.Key >= c.Protocol {
		return fmt.Errorf("codec %v must be newer than %v", c, newest.Value)
	}
	if c.Layout != LayoutFixed && (c.DirectBits <= MaxIndexedBits || c.DirectBits > maxDirectBits) {
		return fmt.Errorf("codec %v: invalid direct bits %d", c, c.DirectBits)
	}
	r.codecs.Set(c.Protocol, c)
	return nil
}

// Get returns the codec registered for exactly protocol.
func (r *Registry) Get(protocol int32) (*Codec, bool) {
	return r.codecs.Get(protocol)
}

// Lookup returns the newest codec whose protocol is not newer than protocol.
func (r *Registry) Lookup(protocol int32) (*Codec, error) {
	for pair := r.codecs.Newest(); pair != nil; pair = pair.Prev() {
		if pair.Key <= protocol {
			return pair.Value, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedProtocol, protocol)
}

// Codecs returns the registered codecs, oldest first.
func (r *Registry) Codecs() []*Codec {
	codecs := make([]*Codec, 0, r.codecs.Len())
	for pair := r.codecs.Oldest(); pair != nil; pair = pair.Next() {
		codecs = append(codecs, pair.Value)
	}
	return codecs
}
