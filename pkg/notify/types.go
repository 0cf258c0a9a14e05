package notify

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Message 平台无关的通知内容
type Message struct {
	Title  string
	Body   string
	Labels map[string]string
	At     time.Time
}

// Text 渲染为纯文本，标签按 key 排序
func (m *Message) Text() string {
	var sb strings.Builder
	if m.Title != "" {
		sb.WriteString(m.Title)
		sb.WriteString("\n")
	}
	sb.WriteString(m.Body)

	keys := make([]string, 0, len(m.Labels))
	for k := range m.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "\n%s: %s", k, m.Labels[k])
	}
	return sb.String()
}
