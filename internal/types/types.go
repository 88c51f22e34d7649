package types

import (
	"fmt"
	"strings"
)

type StreamKind int

const (
	Color StreamKind = iota
	Depth
	Index
	TrackedColor
)

// Kinds lists every stream kind in recording order.
var Kinds = []StreamKind{Color, Depth, Index, TrackedColor}

func (k StreamKind) String() string {
	switch k {
	case Color:
		return "color"
	case Depth:
		return "depth"
	case Index:
		return "index"
	case TrackedColor:
		return "tracked_color"
	default:
		return fmt.Sprintf("stream(%d)", int(k))
	}
}

// Dir is the upper-case folder the recorder writes this stream into.
func (k StreamKind) Dir() string {
	switch k {
	case Color:
		return "COLOR"
	case Depth:
		return "DEPTH"
	case Index:
		return "INDEX"
	case TrackedColor:
		return "TRACKEDCOLOR"
	default:
		return ""
	}
}

func (k StreamKind) Valid() bool {
	return k >= Color && k <= TrackedColor
}

// ParseStreamKind accepts either the folder name or the lower-case name.
func ParseStreamKind(value string) (StreamKind, error) {
	v := strings.TrimSpace(value)
	for _, kind := range Kinds {
		if strings.EqualFold(v, kind.Dir()) || strings.EqualFold(v, kind.String()) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown stream kind %q", value)
}

type ElementType int

const (
	Uint8 ElementType = iota + 1
	Uint16
)

// Width returns the element size in bytes.
func (e ElementType) Width() int {
	switch e {
	case Uint8:
		return 1
	case Uint16:
		return 2
	default:
		return 0
	}
}

func (e ElementType) String() string {
	switch e {
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	default:
		return fmt.Sprintf("element(%d)", int(e))
	}
}

// Shape is a row-major layout, outermost dimension first.
type Shape []int

// Len is the element count described by the shape.
func (s Shape) Len() int {
	if len(s) == 0 {
		return 0
	}
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return "(" + strings.Join(parts, "x") + ")"
}

func (s Shape) clone() Shape {
	return append(Shape(nil), s...)
}
