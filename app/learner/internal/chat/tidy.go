package chat

import "strings"

const (
	maxWords      = 500
	truncateAfter = 400
)

// Tidy 合并连续空行并去掉首尾空白；超过 500 词时在 400 词后的第一个句末截断并追加 "..."
func Tidy(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) != "" || (i > 0 && strings.TrimSpace(lines[i-1]) != "") {
			kept = append(kept, line)
		}
	}
	out := strings.TrimSpace(strings.Join(kept, "\n"))

	if len(strings.Fields(out)) <= maxWords {
		return out
	}

	var b strings.Builder
	count := 0
	for _, s := range sentences(out) {
		count += len(strings.Fields(s))
		b.WriteString(s)
		if count > truncateAfter {
			b.WriteString("...")
			break
		}
	}
	return strings.TrimSpace(b.String())
}

// sentences 按 . ! ? 切分，标点留在句尾
func sentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			out = append(out, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}
