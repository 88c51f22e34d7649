package ingest

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"kinect-show-go/internal/types"
)

// Index lists which frames exist on disk for each stream of a recording.
type Index struct {
	Root    string
	streams [4][]int
}

// Frames returns the sorted frame indices recorded for kind.
func (ix Index) Frames(kind types.StreamKind) []int {
	if !kind.Valid() {
		return nil
	}
	return append([]int(nil), ix.streams[kind]...)
}

func (ix Index) Count(kind types.StreamKind) int {
	if !kind.Valid() {
		return 0
	}
	return len(ix.streams[kind])
}

func (ix Index) Has(kind types.StreamKind, frame int) bool {
	if !kind.Valid() {
		return false
	}
	frames := ix.streams[kind]
	i := sort.SearchInts(frames, frame)
	return i < len(frames) && frames[i] == frame
}

// AllFrames is the sorted union of frame indices across streams.
func (ix Index) AllFrames() []int {
	seen := make(map[int]struct{})
	for _, frames := range ix.streams {
		for _, f := range frames {
			seen[f] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Ints(out)
	return out
}

// Scan walks the stream directories of root. Missing stream directories are
// treated as streams with no frames.
func Scan(root string) (Index, error) {
	root = NormalizeRoot(root)
	if err := ValidateRoot(root); err != nil {
		return Index{}, err
	}
	ix := Index{Root: root}
	for _, kind := range types.Kinds {
		entries, err := os.ReadDir(filepath.Join(root, kind.Dir()))
		if isAbsent(err) {
			continue
		}
		if err != nil {
			return Index{}, err
		}
		ext := types.MustSpec(kind).Extension
		frames := make([]int, 0, len(entries))
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if frame, ok := parseFrameName(entry.Name(), ext); ok {
				frames = append(frames, frame)
			}
		}
		sort.Ints(frames)
		ix.streams[kind] = frames
	}
	logger().WithField("root", root).Debugf("scanned recording: %d frames", len(ix.AllFrames()))
	return ix, nil
}

// parseFrameName accepts only the recorder's canonical "<n>.<ext>" names.
func parseFrameName(name, ext string) (int, bool) {
	base, ok := strings.CutSuffix(name, "."+ext)
	if !ok || base == "" {
		return 0, false
	}
	n, err := strconv.Atoi(base)
	if err != nil || n < 0 || strconv.Itoa(n) != base {
		return 0, false
	}
	return n, true
}

// Sessions lists the recording directories under base. The recorder creates
// one timestamped directory per recording; a directory counts when it holds
// at least one stream folder.
func Sessions(base string) ([]string, error) {
	base = NormalizeRoot(base)
	if err := ValidateRoot(base); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(base, entry.Name())
		if hasStreamDir(dir) {
			out = append(out, dir)
		}
	}
	sort.Strings(out)
	return out, nil
}

func hasStreamDir(dir string) bool {
	for _, kind := range types.Kinds {
		info, err := os.Stat(filepath.Join(dir, kind.Dir()))
		if err == nil && info.IsDir() {
			return true
		}
	}
	return false
}
