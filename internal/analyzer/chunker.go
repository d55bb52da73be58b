// Package analyzer 实现合同文本的分块、条款识别与风险评分核心逻辑。
package analyzer

// Chunker 将长文本切分为带重叠的定长分块。
type Chunker struct {
	size    int // 每个分块的最大字符数
	overlap int // 相邻分块之间重叠的字符数
}

// NewChunker 创建一个 Chunker。overlap 大于等于 size 时退化为无重叠切分。
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split 按字符（rune）切分文本。
// 每个分块最长 size 个字符，相邻分块重叠 overlap 个字符；
// 窗口右端到达文本末尾后停止，不会产生只含重叠部分的尾块。
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	textLen := len(runes)
	if textLen == 0 {
		return nil
	}

	step := c.size - c.overlap
	if step <= 0 {
		return c.simpleSplit(runes)
	}

	var chunks []string
	start := 0
	for start < textLen {
		end := start + c.size
		if end > textLen {
			end = textLen
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == textLen {
			break
		}
		start += step
	}
	return chunks
}

// simpleSplit 无重叠地顺序切分，用于 overlap >= size 的非法参数组合。
func (c *Chunker) simpleSplit(runes []rune) []string {
	var chunks []string
	for start := 0; start < len(runes); start += c.size {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
