// Package romimage holds the master ROM image a podule pages into its 1 KiB
// ROM window, and the fixed loader blob installed once at firmware init.
package romimage

// PageSize is the width of a single page, matching window.ROMWindowSize.
const PageSize = 1024

// Image is the master ROM image the pipe engine pages from, in response to
// PAGE_L/PAGE_H requests from the external bus.
type Image struct {
	data []byte
}

// New wraps data as a ROM image. data need not be a multiple of PageSize;
// the final partial page (if any) is zero-padded on read.
func New(data []byte) *Image {
	return &Image{data: data}
}

// Pages reports how many whole-or-partial pages this image spans.
func (img *Image) Pages() int {
	if len(img.data) == 0 {
		return 0
	}
	return (len(img.data) + PageSize - 1) / PageSize
}

// Page returns the PageSize-byte contents of page n, and whether n was in
// range. A page request past the end of the image must not copy anything
// and the caller should log an error.
func (img *Image) Page(n int) (page [PageSize]byte, ok bool) {
	if n < 0 || n >= img.Pages() {
		return page, false
	}
	start := n * PageSize
	end := start + PageSize
	if end > len(img.data) {
		end = len(img.data)
	}
	copy(page[:], img.data[start:end])
	return page, true
}
