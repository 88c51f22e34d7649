package types

import (
	"fmt"
	"image/color"
)

// StreamSpec describes how one stream is laid out on disk.
type StreamSpec struct {
	Kind      StreamKind
	Element   ElementType
	Shape     Shape
	Extension string
	Title     string
}

// ByteSize is the exact size every file of this stream must have.
func (s StreamSpec) ByteSize() int {
	return s.Shape.Len() * s.Element.Width()
}

const (
	ColorWidth  = 1920
	ColorHeight = 1080
	DepthWidth  = 512
	DepthHeight = 424
	RGBA        = 4
)

var specs = [...]StreamSpec{
	Color: {
		Kind:      Color,
		Element:   Uint8,
		Shape:     Shape{ColorHeight, ColorWidth, RGBA},
		Extension: Uint8.String(),
		Title:     fmt.Sprintf("Original color %dx%d", ColorWidth, ColorHeight),
	},
	Depth: {
		Kind:      Depth,
		Element:   Uint16,
		Shape:     Shape{DepthHeight, DepthWidth},
		Extension: Uint16.String(),
		Title:     fmt.Sprintf("Depth values %dx%d", DepthWidth, DepthHeight),
	},
	Index: {
		Kind:      Index,
		Element:   Uint8,
		Shape:     Shape{DepthHeight, DepthWidth},
		Extension: Uint8.String(),
		Title:     fmt.Sprintf("Segmentation data %dx%d", DepthWidth, DepthHeight),
	},
	TrackedColor: {
		Kind:      TrackedColor,
		Element:   Uint8,
		Shape:     Shape{DepthHeight, DepthWidth, RGBA},
		Extension: Uint8.String(),
		Title:     fmt.Sprintf("Color mapped to tracked depth space %dx%d", DepthWidth, DepthHeight),
	},
}

// Spec returns the registry entry for kind. The returned Shape is a copy.
func Spec(kind StreamKind) (StreamSpec, bool) {
	if !kind.Valid() {
		return StreamSpec{}, false
	}
	s := specs[kind]
	s.Shape = s.Shape.clone()
	return s, true
}

// MustSpec is Spec for kinds known to be valid.
func MustSpec(kind StreamKind) StreamSpec {
	s, ok := Spec(kind)
	if !ok {
		panic(fmt.Sprintf("types: no stream spec for %v", kind))
	}
	return s
}

const (
	// IndexSentinel marks "no tracked body" in the raw segmentation stream.
	IndexSentinel uint8 = 255
	// IndexBackground is the category the sentinel is remapped to.
	IndexBackground uint8 = 8
	// TrackedBodies is the number of body categories (0..7).
	TrackedBodies = 8
)

// PaletteEntry pairs a segmentation category with its display color.
type PaletteEntry struct {
	Name  string     `json:"name"`
	Color color.RGBA `json:"-"`
	Hex   string     `json:"hex"`
}

// IndexPalette maps category i to entry i. Order is fixed.
var IndexPalette = []PaletteEntry{
	{Name: "red", Color: color.RGBA{0xff, 0x00, 0x00, 0xff}, Hex: "#ff0000"},
	{Name: "green", Color: color.RGBA{0x00, 0x80, 0x00, 0xff}, Hex: "#008000"},
	{Name: "blue", Color: color.RGBA{0x00, 0x00, 0xff, 0xff}, Hex: "#0000ff"},
	{Name: "cyan", Color: color.RGBA{0x00, 0xff, 0xff, 0xff}, Hex: "#00ffff"},
	{Name: "magenta", Color: color.RGBA{0xff, 0x00, 0xff, 0xff}, Hex: "#ff00ff"},
	{Name: "yellow", Color: color.RGBA{0xff, 0xff, 0x00, 0xff}, Hex: "#ffff00"},
	{Name: "orange", Color: color.RGBA{0xff, 0x77, 0x00, 0xff}, Hex: "#ff7700"},
	{Name: "white", Color: color.RGBA{0xff, 0xff, 0xff, 0xff}, Hex: "#ffffff"},
	{Name: "black", Color: color.RGBA{0x00, 0x00, 0x00, 0xff}, Hex: "#000000"},
}

// PaletteColors returns the palette as plain colors.
func PaletteColors() []color.Color {
	out := make([]color.Color, len(IndexPalette))
	for i, entry := range IndexPalette {
		out[i] = entry.Color
	}
	return out
}

// DepthRange is the sensor's reliable depth window in millimetres. It is a
// display hint; decoded depth data is never clipped to it.
type DepthRange struct {
	Min uint16 `json:"min"`
	Max uint16 `json:"max"`
}

var ReliableDepth = DepthRange{Min: 500, Max: 4500}

func (r DepthRange) Contains(v uint16) bool {
	return v >= r.Min && v <= r.Max
}
