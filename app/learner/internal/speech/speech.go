// Package speech 发音练习：比对识别结果与目标单词
package speech

import (
	"strings"
	"sync"

	"github.com/lk2023060901/kidlingo/app/learner/internal/profile"
)

// RewardGems 每次发音正确奖励的宝石
const RewardGems = 5

// SuccessMessage 发音正确提示
const SuccessMessage = "Tuyệt vời! Bạn phát âm rất chuẩn!"

var punctuation = strings.NewReplacer(
	".", "", ",", "", "/", "", "#", "", "!", "", "$", "", "%", "", "^", "",
	"&", "", "*", "", ";", "", ":", "", "{", "", "}", "", "=", "", "-", "",
	"_", "", "`", "", "~", "", "(", "", ")", "",
)

func normalize(s string) string {
	return strings.TrimSpace(punctuation.Replace(strings.ToLower(s)))
}

// Match 忽略大小写与标点后比较
func Match(spoken, target string) bool {
	return normalize(spoken) == normalize(target)
}

// Result 一次尝试的结果
type Result struct {
	Spoken string
	Match  bool
}

// Practice 针对一个目标单词的练习
type Practice struct {
	target string
	store  *profile.Store

	mu       sync.Mutex
	attempts int
	matches  int
}

// NewPractice 创建练习，store 为 nil 时不发奖励
func NewPractice(target string, store *profile.Store) *Practice {
	return &Practice{target: target, store: store}
}

// Target 目标单词
func (p *Practice) Target() string {
	return p.target
}

// Attempt 提交一次识别结果，正确时奖励宝石
func (p *Practice) Attempt(transcript string) Result {
	ok := Match(transcript, p.target)

	p.mu.Lock()
	p.attempts++
	if ok {
		p.matches++
	}
	p.mu.Unlock()

	if ok && p.store != nil {
		p.store.Dispatch("pronunciation", profile.RewardsAdded{Gems: RewardGems})
	}
	return Result{Spoken: transcript, Match: ok}
}

// Stats 尝试次数与正确次数
func (p *Practice) Stats() (attempts, matches int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts, p.matches
}

// ErrorMessage 语音识别错误码对应的提示
func ErrorMessage(code string) string {
	switch code {
	case "not-allowed":
		return "Bạn cần cấp quyền Micro để sử dụng tính năng này."
	case "no-speech":
		return "Không nghe thấy gì cả. Bạn thử lại nhé!"
	case "network":
		return "Lỗi mạng. Vui lòng kiểm tra kết nối internet."
	case "aborted", "":
		return ""
	default:
		return "Lỗi nhận diện: " + code
	}
}
