package types

import (
	"errors"
	"fmt"
)

// Element is the set of sample types a recording stores.
type Element interface {
	~uint8 | ~uint16
}

// Array is a flat row-major buffer viewed through a fixed shape.
type Array[T Element] struct {
	shape   Shape
	strides []int
	data    []T
}

// NewArray wraps data without copying. len(data) must equal shape.Len().
func NewArray[T Element](shape Shape, data []T) (*Array[T], error) {
	if len(shape) == 0 {
		return nil, errors.New("empty shape")
	}
	for _, d := range shape {
		if d <= 0 {
			return nil, fmt.Errorf("invalid dimension in shape %v", shape)
		}
	}
	if shape.Len() != len(data) {
		return nil, fmt.Errorf("dimension mismatch: shape %v needs %d elements, have %d", shape, shape.Len(), len(data))
	}
	strides := make([]int, len(shape))
	step := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = step
		step *= shape[i]
	}
	return &Array[T]{
		shape:   shape.clone(),
		strides: strides,
		data:    data,
	}, nil
}

func (a *Array[T]) Shape() Shape {
	return a.shape.clone()
}

func (a *Array[T]) Len() int {
	return len(a.data)
}

// Data exposes the backing buffer.
func (a *Array[T]) Data() []T {
	return a.data
}

// Offset converts a full index into a position in Data.
func (a *Array[T]) Offset(idx ...int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("types: index rank %d does not match shape %v", len(idx), a.shape))
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= a.shape[i] {
			panic(fmt.Sprintf("types: index %v out of range for shape %v", idx, a.shape))
		}
		off += v * a.strides[i]
	}
	return off
}

func (a *Array[T]) At(idx ...int) T {
	return a.data[a.Offset(idx...)]
}

// Row returns the contiguous slice holding row r (all columns and channels).
func (a *Array[T]) Row(r int) []T {
	if r < 0 || r >= a.shape[0] {
		panic(fmt.Sprintf("types: row %d out of range for shape %v", r, a.shape))
	}
	return a.data[r*a.strides[0] : (r+1)*a.strides[0]]
}
