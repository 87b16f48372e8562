// Package infer implements partial-information unification of per-tensor
// attributes (shape, element type, storage type) and the checked-assignment
// protocol used while walking a computation graph.
//
// Unification is one-sided: the candidate's unknowns never constrain the
// target. A target slot may be refined from unknown to known; a known value
// can never be overwritten with a conflicting one, and a conflict is a
// permanent, user-facing definition error, never retried.
package infer

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/opgraph/dtypes"
	"github.com/gomlx/opgraph/ndarray"
	"github.com/gomlx/opgraph/shapes"
	"github.com/pkg/errors"
)

// ShapeAssign unifies src into target, reporting whether they are
// compatible. Unknown dimensions (0) on either side are filled from the
// other; a rank-unknown src is always compatible and leaves target alone.
//
// On an axis conflict, axes before the conflicting one may already have been
// refined in target. Fully known targets are never modified on failure.
func ShapeAssign(target *shapes.Shape, src shapes.Shape) bool {
	if target.NDim() == 0 {
		*target = src.Clone()
		return true
	}
	if target.NDim() != src.NDim() {
		return src.NDim() == 0
	}
	for i := range *target {
		if (*target)[i] == 0 {
			(*target)[i] = src[i]
		} else if (*target)[i] != src[i] && src[i] != 0 {
			return false
		}
	}
	return true
}

// sentinelAssign unifies values whose unknown state is the -1 sentinel.
// Shared by element types and storage types.
func sentinelAssign[T ~int32](target *T, src T) bool {
	if *target == -1 {
		*target = src
		return true
	}
	if *target != src && src != -1 {
		return false
	}
	return true
}

// TypeAssign unifies src into target, reporting whether they are compatible.
func TypeAssign(target *dtypes.DType, src dtypes.DType) bool {
	return sentinelAssign(target, src)
}

// StorageTypeAssign unifies src into target, reporting whether they are
// compatible. Same rule as TypeAssign, over the storage type domain.
func StorageTypeAssign(target *ndarray.StorageType, src ndarray.StorageType) bool {
	return sentinelAssign(target, src)
}

// AssignShapeAt unifies inferred into slots[index], returning a *ShapeError
// on conflict. The error reports the slot's recorded value and the rejected
// inferred shape.
func AssignShapeAt(slots []shapes.Shape, index int, inferred shapes.Shape) error {
	if ShapeAssign(&slots[index], inferred) {
		return nil
	}
	return errors.WithStack(&ShapeError{
		Index:    index,
		Provided: slots[index].Clone(),
		Inferred: inferred.Clone(),
	})
}

// AssignTypeAt unifies inferred into slots[index], returning a *TypeError on
// conflict.
func AssignTypeAt(slots []dtypes.DType, index int, inferred dtypes.DType) error {
	if TypeAssign(&slots[index], inferred) {
		return nil
	}
	return errors.WithStack(&TypeError{
		Index:    index,
		Provided: slots[index],
		Inferred: inferred,
	})
}

// AssignStorageTypeAt unifies inferred into slots[index], returning a
// *StorageError on conflict.
func AssignStorageTypeAt(slots []ndarray.StorageType, index int, inferred ndarray.StorageType) error {
	if StorageTypeAssign(&slots[index], inferred) {
		return nil
	}
	return errors.WithStack(&StorageError{
		Index:    index,
		Provided: slots[index],
		Inferred: inferred,
	})
}

// CheckUniformType verifies that got is exactly the expected element type.
// Fatal: a kernel that requires uniform typing cannot proceed otherwise.
func CheckUniformType(got, expected dtypes.DType, arg string) {
	if got != expected {
		exceptions.Panicf("This layer requires uniform type. Expected '%s' v.s. given '%s' at '%s'",
			expected, got, arg)
	}
}
