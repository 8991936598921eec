package gaze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/mirada/internal/domain"
)

func TestFromNormalized(t *testing.T) {
	set := FromNormalized(map[int]Point{
		LeftIrisCenter:  {X: 0.5, Y: 0.25},
		RightIrisCenter: {X: 0, Y: 1},
	}, Dimensions{Width: 640, Height: 480})

	p, err := set.Point(LeftIrisCenter)
	require.NoError(t, err)
	assert.Equal(t, Point{X: 320, Y: 120}, p)

	p, err = set.Point(RightIrisCenter)
	require.NoError(t, err)
	assert.Equal(t, Point{X: 0, Y: 480}, p)

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, Dimensions{Width: 640, Height: 480}, set.Dimensions())
}

func TestNewLandmarkSet_CopiesInput(t *testing.T) {
	points := map[int]Point{LeftIrisCenter: {X: 10, Y: 20}}
	set := NewLandmarkSet(points, Dimensions{Width: 100, Height: 100})

	points[LeftIrisCenter] = Point{X: 99, Y: 99}
	delete(points, LeftIrisCenter)

	p, err := set.Point(LeftIrisCenter)
	require.NoError(t, err)
	assert.Equal(t, Point{X: 10, Y: 20}, p)
}

func TestLandmarkSet_Point_Missing(t *testing.T) {
	set := NewLandmarkSet(nil, Dimensions{})

	_, err := set.Point(RightEyeUpperLid)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingLandmark)
	assert.Contains(t, err.Error(), "landmark 159 not present")
}
