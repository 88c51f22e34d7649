package types

// DecodedStream is one stream of one frame. Data is nil when Present is false,
// otherwise it is *Array[uint8] or *Array[uint16] depending on the stream spec.
type DecodedStream struct {
	Kind    StreamKind
	Frame   int
	Path    string
	Present bool
	Data    any
}

func (d DecodedStream) Uint8() (*Array[uint8], bool) {
	a, ok := d.Data.(*Array[uint8])
	return a, ok && d.Present
}

func (d DecodedStream) Uint16() (*Array[uint16], bool) {
	a, ok := d.Data.(*Array[uint16])
	return a, ok && d.Present
}

// Shape of the decoded data, nil when absent.
func (d DecodedStream) Shape() Shape {
	switch a := d.Data.(type) {
	case *Array[uint8]:
		return a.Shape()
	case *Array[uint16]:
		return a.Shape()
	default:
		return nil
	}
}

// RecordingFrame holds every stream decoded for one frame index.
type RecordingFrame struct {
	Frame   int
	Streams [4]DecodedStream
}

func (f RecordingFrame) Stream(kind StreamKind) DecodedStream {
	if !kind.Valid() {
		return DecodedStream{Kind: kind, Frame: f.Frame}
	}
	return f.Streams[kind]
}

func (f RecordingFrame) Present() []StreamKind {
	var out []StreamKind
	for _, kind := range Kinds {
		if f.Streams[kind].Present {
			out = append(out, kind)
		}
	}
	return out
}

func (f RecordingFrame) Missing() []StreamKind {
	var out []StreamKind
	for _, kind := range Kinds {
		if !f.Streams[kind].Present {
			out = append(out, kind)
		}
	}
	return out
}
