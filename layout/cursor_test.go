package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursorAdvanceClampsRemaining(t *testing.T) {
	c := NewCursor(100, 40)
	assert.Equal(t, 60.0, c.Remaining)

	c = Advance(c, 25)
	assert.Equal(t, 75.0, c.Y)
	assert.Equal(t, 35.0, c.Remaining)
	assert.True(t, c.Fits(35))
	assert.False(t, c.Fits(35.5))

	c = Advance(c, 50)
	assert.Equal(t, 25.0, c.Y, "Y keeps descending past the bottom")
	assert.Equal(t, 0.0, c.Remaining)
	assert.True(t, c.Overflowed(1))
}

func TestCursorNewPage(t *testing.T) {
	c := Advance(NewCursor(800, 42), 500)
	c = NewPage(c)
	assert.Equal(t, 1, c.Page)
	assert.Equal(t, 800.0, c.Y)
	assert.Equal(t, 758.0, c.Remaining)
	assert.Equal(t, 758.0, c.Drawable())
}

func TestCursorIsValue(t *testing.T) {
	c := NewCursor(800, 42)
	_ = Advance(c, 100)
	assert.Equal(t, 800.0, c.Y)
}

func TestCursorAt(t *testing.T) {
	c := At(NewCursor(800, 42), 30)
	assert.Equal(t, 30.0, c.Y)
	assert.Equal(t, 0.0, c.Remaining)
}
