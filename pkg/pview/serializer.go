package pview

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Serializer encodes structures for the structure cache.
type Serializer interface {
	Serialize(s Structure) ([]byte, error)
	Unserialize(data []byte) (Structure, error)
}

// CBORSerializer is the default Serializer.
type CBORSerializer struct {
	em cbor.EncMode
	dm cbor.DecMode
}

// NewCBORSerializer creates a CBOR serializer with deterministic encoding.
func NewCBORSerializer() (*CBORSerializer, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("create CBOR encoder: %w", err)
	}
	dm, err := cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		MaxNestedLevels: 8,
	}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("create CBOR decoder: %w", err)
	}
	return &CBORSerializer{em: em, dm: dm}, nil
}

// Serialize implements Serializer.
func (c *CBORSerializer) Serialize(s Structure) ([]byte, error) {
	if s == nil {
		s = Structure{}
	}
	return c.em.Marshal(s)
}

// Unserialize implements Serializer.
func (c *CBORSerializer) Unserialize(data []byte) (Structure, error) {
	var s Structure
	if err := c.dm.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode CBOR: %w", err)
	}
	return s, nil
}
