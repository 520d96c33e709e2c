package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InkBoard/internal/shape"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	for _, id := range []ID{Pen, Pencil, Brush, Highlighter, Marker} {
		s, err := r.Lookup(id)
		require.NoError(t, err)
		assert.Equal(t, KindInking, s.Kind, id)
		assert.NoError(t, s.Ink.Validate(), id)
	}

	pen, _ := r.Lookup(Pen)
	assert.Equal(t, shape.AllowAll, pen.Shapes)
	hl, _ := r.Lookup(Highlighter)
	assert.True(t, hl.Shapes.Has(shape.KindLine))
	assert.False(t, hl.Shapes.Has(shape.KindCircle))

	assert.Equal(t, KindEraser, r.KindOf(Eraser))
	assert.Equal(t, KindSelection, r.KindOf(Select))
	assert.Equal(t, KindNavigation, r.KindOf(Pan))
	assert.Equal(t, KindNavigation, r.KindOf("laser"))

	_, err := r.Lookup("laser")
	assert.Error(t, err)
	assert.Len(t, r.IDs(), 8)
}
