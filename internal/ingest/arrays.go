package ingest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"kinect-show-go/internal/types"
)

// ParseByteOrder maps a config value to a byte order. Empty means little-endian,
// which is what the recorder produces on Windows hosts.
func ParseByteOrder(value string) (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "little", "le", "little-endian":
		return binary.LittleEndian, nil
	case "big", "be", "big-endian":
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("unsupported byte order %q", value)
	}
}

func bytesToUint16(data []byte, order binary.ByteOrder) []uint16 {
	out := make([]uint16, len(data)/2)
	for i := 0; i < len(out); i++ {
		out[i] = order.Uint16(data[i*2 : i*2+2])
	}
	return out
}

func reshapeUint8(flat []uint8, shape types.Shape) (*types.Array[uint8], error) {
	if shape.Len() != len(flat) {
		return nil, errors.New("dimension mismatch")
	}
	return types.NewArray(shape, flat)
}

func reshapeUint16(flat []uint16, shape types.Shape) (*types.Array[uint16], error) {
	if shape.Len() != len(flat) {
		return nil, errors.New("dimension mismatch")
	}
	return types.NewArray(shape, flat)
}

// reinterpret turns a validated raw buffer into the typed array for spec.
// The uint8 case keeps raw as the backing buffer.
func reinterpret(raw []byte, spec types.StreamSpec, order binary.ByteOrder) (any, error) {
	switch spec.Element {
	case types.Uint8:
		return reshapeUint8(raw, spec.Shape)
	case types.Uint16:
		if len(raw)%2 != 0 {
			return nil, fmt.Errorf("odd byte length %d for uint16 stream", len(raw))
		}
		return reshapeUint16(bytesToUint16(raw, order), spec.Shape)
	default:
		return nil, fmt.Errorf("unsupported element type %v", spec.Element)
	}
}
