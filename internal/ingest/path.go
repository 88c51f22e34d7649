package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"kinect-show-go/internal/types"
)

const rootSeparators = `/` + string(filepath.Separator)

// NormalizeRoot strips surrounding whitespace, stray quote characters and
// trailing separators from a user supplied recording path.
func NormalizeRoot(root string) string {
	r := strings.TrimSpace(root)
	r = strings.Trim(r, `"'`)
	r = strings.TrimSpace(r)
	trimmed := strings.TrimRight(r, rootSeparators)
	if trimmed == "" && r != "" {
		return string(filepath.Separator)
	}
	return trimmed
}

// FileName is the recorder's name for one frame of kind, e.g. "12.uint16".
func FileName(kind types.StreamKind, frame int) string {
	spec := types.MustSpec(kind)
	return strconv.Itoa(frame) + "." + spec.Extension
}

// Resolve builds root/<DIR>/<frame>.<ext>. It does no I/O.
func Resolve(root string, kind types.StreamKind, frame int) string {
	return filepath.Join(NormalizeRoot(root), kind.Dir(), FileName(kind, frame))
}

// ValidateRoot rejects empty roots and roots that are not directories.
func ValidateRoot(root string) error {
	if root == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidRecordingRoot)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecordingRoot, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidRecordingRoot, root)
	}
	return nil
}

// ParseFrameIndex parses a decimal, non-negative frame index.
func ParseFrameIndex(value string) (int, error) {
	v := strings.TrimSpace(value)
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFrameIndex, value)
	}
	return n, nil
}

func validateFrame(frame int) error {
	if frame < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidFrameIndex, frame)
	}
	return nil
}
