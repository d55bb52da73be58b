package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkerSplitShortText(t *testing.T) {
	c := NewChunker(500, 100)
	chunks := c.Split("short text")
	assert.Equal(t, []string{"short text"}, chunks)
}

func TestChunkerSplitEmptyText(t *testing.T) {
	c := NewChunker(500, 100)
	assert.Nil(t, c.Split(""))
}

func TestChunkerSplitOverlap(t *testing.T) {
	c := NewChunker(500, 100)
	text := strings.Repeat("a", 1200)
	chunks := c.Split(text)

	assert.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 500) // [0,500)
	assert.Len(t, chunks[1], 500) // [400,900)
	assert.Len(t, chunks[2], 400) // [800,1200)
}

func TestChunkerSplitOverlapContent(t *testing.T) {
	c := NewChunker(10, 4)
	chunks := c.Split("abcdefghijklmnop")

	assert.Equal(t, []string{"abcdefghij", "ghijklmnop"}, chunks)
}

func TestChunkerNoTrailingOverlapOnlyChunk(t *testing.T) {
	// 窗口右端到达末尾后停止，不应再产生只含重叠内容的尾块
	c := NewChunker(10, 4)
	chunks := c.Split("abcdefghijklm")

	assert.Equal(t, []string{"abcdefghij", "ghijklm"}, chunks)
}

func TestChunkerOverlapAtLeastSizeFallsBackToSimpleSplit(t *testing.T) {
	c := NewChunker(5, 5)
	chunks := c.Split("abcdefghijk")

	assert.Equal(t, []string{"abcde", "fghij", "k"}, chunks)
}

func TestChunkerSplitCountsRunes(t *testing.T) {
	c := NewChunker(4, 0)
	chunks := c.Split("保密条款约定双方")

	assert.Equal(t, []string{"保密条款", "约定双方"}, chunks)
}
