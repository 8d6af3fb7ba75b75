package romimage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func patternImage(pages int) *Image {
	data := make([]byte, pages*PageSize)
	for p := 0; p < pages; p++ {
		for i := 0; i < PageSize; i++ {
			data[p*PageSize+i] = byte(p*256 + i)
		}
	}
	return New(data)
}

func TestPageLoad(t *testing.T) {
	img := patternImage(4)
	require.Equal(t, 4, img.Pages())

	page, ok := img.Page(2)
	require.True(t, ok)
	for i := 0; i < PageSize; i++ {
		assert.Equal(t, byte(2*256+i), page[i])
	}
}

func TestPageOutOfRange(t *testing.T) {
	img := patternImage(4)
	_, ok := img.Page(4)
	assert.False(t, ok)
	_, ok = img.Page(-1)
	assert.False(t, ok)
}

func TestPartialFinalPageZeroPadded(t *testing.T) {
	img := New(make([]byte, PageSize+10))
	require.Equal(t, 2, img.Pages())
	page, ok := img.Page(1)
	require.True(t, ok)
	assert.Equal(t, byte(0), page[PageSize-1])
}
