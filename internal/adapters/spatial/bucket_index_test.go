package spatial_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/hauler-go/internal/adapters/spatial"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
)

func TestBucketIndex_QueryRectAcrossBuckets(t *testing.T) {
	// Arrange
	idx := spatial.NewBucketIndex(4)
	idx.Insert(1, shared.Cell{X: 0, Y: 0})
	idx.Insert(2, shared.Cell{X: 5, Y: 5})
	idx.Insert(3, shared.Cell{X: -3, Y: 2})
	idx.Insert(4, shared.Cell{X: 20, Y: 20})

	// Act
	ids := idx.QueryRect(shared.Rect{Min: shared.Cell{X: -4, Y: -4}, Max: shared.Cell{X: 6, Y: 6}})

	// Assert
	assert.Equal(t, []shared.EntityID{1, 2, 3}, ids)
}

func TestBucketIndex_QueryRadiusIsEuclidean(t *testing.T) {
	// Arrange
	idx := spatial.NewBucketIndex(0)
	idx.Insert(1, shared.Cell{X: 3, Y: 0})
	idx.Insert(2, shared.Cell{X: 3, Y: 3})

	// Act
	ids := idx.QueryRadius(shared.Cell{}, 3)

	// Assert
	assert.Equal(t, []shared.EntityID{1}, ids)
}

func TestBucketIndex_MoveAndRemove(t *testing.T) {
	// Arrange
	idx := spatial.NewBucketIndex(2)
	idx.Insert(7, shared.Cell{X: 1, Y: 1})

	// Act
	idx.Move(7, shared.Cell{X: 9, Y: 9})

	// Assert
	assert.Empty(t, idx.QueryRadius(shared.Cell{X: 1, Y: 1}, 1))
	assert.Equal(t, []shared.EntityID{7}, idx.QueryRadius(shared.Cell{X: 9, Y: 9}, 0))

	idx.Remove(7)
	idx.Remove(7)
	assert.Equal(t, 0, idx.Len())
}
