package annotation

import "sort"

// LineIndex converts byte offsets of one buffer to 1-based line and column
// numbers. Columns count bytes.
type LineIndex struct {
	starts []int // offset of the first byte of each line
	size   int
}

// NewLineIndex indexes the line starts of text.
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts, size: len(text)}
}

// Position returns the line and column of offset. Offsets outside the buffer
// are clamped to it.
func (x *LineIndex) Position(offset int) (line, column int) {
	offset = min(max(offset, 0), x.size)
	i := sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > offset }) - 1
	return i + 1, offset - x.starts[i] + 1
}

// Line returns the line of offset.
func (x *LineIndex) Line(offset int) int {
	line, _ := x.Position(offset)
	return line
}

// Lines returns the number of lines in the buffer.
func (x *LineIndex) Lines() int { return len(x.starts) }

// LineStart returns the offset of the first byte of the 1-based line.
func (x *LineIndex) LineStart(line int) int {
	line = min(max(line, 1), len(x.starts))
	return x.starts[line-1]
}
