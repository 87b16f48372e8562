package infer

import (
	"fmt"

	"github.com/gomlx/opgraph/dtypes"
	"github.com/gomlx/opgraph/ndarray"
	"github.com/gomlx/opgraph/shapes"
)

// ShapeError reports a shape conflict during attribute inference, carrying
// the endpoint index it happened at. The message wording is part of the
// runtime's diagnostic contract.
type ShapeError struct {
	// Index of the offending endpoint in the slot array.
	Index int
	// Provided is the value already recorded in the slot.
	Provided shapes.Shape
	// Inferred is the newly inferred, conflicting value.
	Inferred shapes.Shape
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("Shape inconsistent, Provided=%s, inferred shape=%s", e.Provided, e.Inferred)
}

// TypeError reports an element type conflict during attribute inference.
type TypeError struct {
	Index    int
	Provided dtypes.DType
	Inferred dtypes.DType
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("Type inconsistent, Provided=%s, inferred type=%s", e.Provided, e.Inferred)
}

// StorageError reports a storage type conflict during attribute inference.
type StorageError struct {
	Index    int
	Provided ndarray.StorageType
	Inferred ndarray.StorageType
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("Storage type inconsistent, Provided=%s, inferred storage type=%s", e.Provided, e.Inferred)
}
