package binary

import (
	"encoding/binary"
	"math"

	"github.com/ieegtools/ieegio/internal/types"
)

// SampleConverter turns raw sample words into float64 values.
//
// A converter is built once per header and used by the decode loops for
// every sample word; At performs no bounds checking, callers slice the raw
// blob to the exact span first.
type SampleConverter struct {
	typ   types.SampleType
	order binary.ByteOrder
}

// NewConverter creates a converter for the given sample representation.
func NewConverter(typ types.SampleType, order types.ByteOrder) *SampleConverter {
	return &SampleConverter{typ: typ, order: order.Order()}
}

// At decodes the sample word starting at byte offset off in raw.
//
// Integer words are sign-extended; the caller applies calibration or
// scaling afterwards.
func (c *SampleConverter) At(raw []byte, off int) float64 {
	switch c.typ {
	case types.Int16:
		return float64(int16(c.order.Uint16(raw[off:])))
	case types.Int32:
		return float64(int32(c.order.Uint32(raw[off:])))
	case types.Float32:
		return float64(math.Float32frombits(c.order.Uint32(raw[off:])))
	default:
		return math.NaN()
	}
}

// Size returns the byte width of one sample word.
func (c *SampleConverter) Size() int {
	return c.typ.Size()
}
