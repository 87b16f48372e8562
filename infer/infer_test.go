package infer

import (
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/opgraph/dtypes"
	"github.com/gomlx/opgraph/ndarray"
	"github.com/gomlx/opgraph/shapes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeAssign(t *testing.T) {
	// Unknown target adopts the candidate wholesale.
	target := shapes.Shape(nil)
	require.True(t, ShapeAssign(&target, shapes.Make(2, 3, 4)))
	assert.True(t, target.Equal(shapes.Make(2, 3, 4)))

	// Unknown candidate always succeeds and never changes the target.
	target = shapes.Make(2, 3, 4)
	require.True(t, ShapeAssign(&target, nil))
	assert.True(t, target.Equal(shapes.Make(2, 3, 4)))

	// Rank mismatch fails when the candidate's rank is known.
	target = shapes.Make(2, 3)
	assert.False(t, ShapeAssign(&target, shapes.Make(2, 3, 4)))
	assert.True(t, target.Equal(shapes.Make(2, 3)))

	// Unknown axes refine from the candidate; the candidate's unknown
	// axes never pull the target's known axes back.
	target = shapes.Make(0, 3, 0)
	require.True(t, ShapeAssign(&target, shapes.Make(2, 0, 4)))
	assert.True(t, target.Equal(shapes.Make(2, 3, 4)))

	// Conflicting known axes fail, leaving a fully known target unchanged.
	target = shapes.Make(2, 3, 4)
	assert.False(t, ShapeAssign(&target, shapes.Make(2, 5, 4)))
	assert.True(t, target.Equal(shapes.Make(2, 3, 4)))
}

func TestShapeAssignIdempotent(t *testing.T) {
	candidate := shapes.Make(2, 0, 4)
	target := shapes.Make(0, 3, 0)
	require.True(t, ShapeAssign(&target, candidate))
	once := target.Clone()
	require.True(t, ShapeAssign(&target, candidate))
	assert.True(t, target.Equal(once))
}

func TestTypeAssign(t *testing.T) {
	// unify(Unknown, X) adopts X.
	target := dtypes.Unknown
	require.True(t, TypeAssign(&target, dtypes.Float32))
	assert.Equal(t, dtypes.Float32, target)

	// unify(X, Unknown) keeps X.
	require.True(t, TypeAssign(&target, dtypes.Unknown))
	assert.Equal(t, dtypes.Float32, target)

	// unify(X, X) keeps X.
	require.True(t, TypeAssign(&target, dtypes.Float32))
	assert.Equal(t, dtypes.Float32, target)

	// unify(X, Y) fails and keeps X.
	assert.False(t, TypeAssign(&target, dtypes.Float64))
	assert.Equal(t, dtypes.Float32, target)
}

func TestStorageTypeAssign(t *testing.T) {
	target := ndarray.UnknownStorage
	require.True(t, StorageTypeAssign(&target, ndarray.RowSparseStorage))
	assert.Equal(t, ndarray.RowSparseStorage, target)
	require.True(t, StorageTypeAssign(&target, ndarray.UnknownStorage))
	assert.Equal(t, ndarray.RowSparseStorage, target)
	assert.False(t, StorageTypeAssign(&target, ndarray.CSRStorage))
	assert.Equal(t, ndarray.RowSparseStorage, target)
}

func TestAssignShapeAt(t *testing.T) {
	slots := []shapes.Shape{nil, shapes.Make(0, 3, 0)}

	require.NoError(t, AssignShapeAt(slots, 1, shapes.Make(2, 3, 4)))
	assert.True(t, slots[1].Equal(shapes.Make(2, 3, 4)))

	err := AssignShapeAt(slots, 1, shapes.Make(2, 5, 4))
	require.Error(t, err)
	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, 1, shapeErr.Index)
	assert.Contains(t, err.Error(), "Provided=(2,3,4)")
	assert.Contains(t, err.Error(), "inferred shape=(2,5,4)")
	assert.Equal(t, "Shape inconsistent, Provided=(2,3,4), inferred shape=(2,5,4)", shapeErr.Error())

	// The failed assignment must not have changed the slot.
	assert.True(t, slots[1].Equal(shapes.Make(2, 3, 4)))
	// And slot 0 is untouched throughout.
	assert.Equal(t, 0, slots[0].NDim())
}

func TestAssignTypeAt(t *testing.T) {
	slots := []dtypes.DType{dtypes.Unknown, dtypes.Unknown}
	require.NoError(t, AssignTypeAt(slots, 0, dtypes.Float32))

	err := AssignTypeAt(slots, 0, dtypes.Float64)
	require.Error(t, err)
	var typeErr *TypeError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, 0, typeErr.Index)
	assert.Equal(t, "Type inconsistent, Provided=float32, inferred type=float64", typeErr.Error())
	assert.Equal(t, dtypes.Float32, slots[0])
}

func TestAssignStorageTypeAt(t *testing.T) {
	slots := []ndarray.StorageType{ndarray.DefaultStorage}
	err := AssignStorageTypeAt(slots, 0, ndarray.CSRStorage)
	require.Error(t, err)
	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, 0, storageErr.Index)
	assert.Equal(t, "Storage type inconsistent, Provided=default, inferred storage type=csr", storageErr.Error())
}

func TestCheckUniformType(t *testing.T) {
	require.NotPanics(t, func() { CheckUniformType(dtypes.Float32, dtypes.Float32, "weight") })
	err := exceptions.TryCatch[error](func() {
		CheckUniformType(dtypes.Float64, dtypes.Float32, "weight")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(),
		"This layer requires uniform type. Expected 'float32' v.s. given 'float64' at 'weight'")
}
