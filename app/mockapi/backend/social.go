package backend

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/lk2023060901/kidlingo/pkg/web"
)

const (
	leaderboardSize      = 10
	defaultLessonSeconds = 300
	weakRatio            = 0.6
	defaultChatUserID    = 1
)

type scored struct {
	u     *user
	stars int
}

func (b *Backend) leaderboard(c *gin.Context) {
	period := kidapi.Period(c.DefaultQuery("period", string(kidapi.PeriodAllTime)))
	if period != kidapi.PeriodAllTime && period != kidapi.PeriodWeekly {
		web.ValidationError(c, []web.FieldDetail{{
			Loc:  []string{"query", "period"},
			Msg:  "value is not a valid enumeration member; permitted: 'all_time', 'weekly'",
			Type: "type_error.enum",
		}})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	me, ok := b.currentUser(c)
	if !ok {
		return
	}

	var rows []scored
	if period == kidapi.PeriodAllTime {
		for _, u := range b.users {
			rows = append(rows, scored{u: u, stars: u.Stars})
		}
	} else {
		// 周榜只统计近 7 天有星星入账的用户
		since := b.now().AddDate(0, 0, -7)
		weekly := make(map[int64]int)
		for _, l := range b.starLogs {
			if l.Amount > 0 && !l.At.Before(since) {
				weekly[l.UserID] += l.Amount
			}
		}
		for id, stars := range weekly {
			if u, ok := b.users[id]; ok {
				rows = append(rows, scored{u: u, stars: stars})
			}
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].stars == rows[j].stars {
			return rows[i].u.ID < rows[j].u.ID
		}
		return rows[i].stars > rows[j].stars
	})

	resp := kidapi.Leaderboard{TopUsers: []kidapi.LeaderboardEntry{}}
	for i, r := range rows {
		if i >= leaderboardSize {
			break
		}
		e := entryOf(r, i+1, me.ID)
		resp.TopUsers = append(resp.TopUsers, e)
		if e.IsCurrentUser {
			mine := e
			resp.UserRank = &mine
		}
	}
	if resp.UserRank == nil {
		myStars := 0
		for _, r := range rows {
			if r.u.ID == me.ID {
				myStars = r.stars
			}
		}
		better := 0
		for _, r := range rows {
			if r.stars > myStars {
				better++
			}
		}
		mine := entryOf(scored{u: me, stars: myStars}, better+1, me.ID)
		resp.UserRank = &mine
	}
	web.OK(c, resp)
}

func entryOf(r scored, rank int, me int64) kidapi.LeaderboardEntry {
	return kidapi.LeaderboardEntry{
		Rank:          rank,
		StudentID:     r.u.ID,
		FullName:      r.u.FullName,
		AvatarURL:     r.u.AvatarURL,
		Stars:         r.stars,
		IsCurrentUser: r.u.ID == me,
	}
}

func (b *Backend) weeklyReport(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.currentUser(c)
	if !ok {
		return
	}

	now := b.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := today.AddDate(0, 0, -6)

	daily := make(map[string]int, 7)
	resp := kidapi.WeeklyReport{LearnedWords: []string{}, WeakWords: []string{}}
	learned := make(map[string]bool)
	for lessonID, p := range b.progress[u.ID] {
		if p.UpdatedAt.Before(start) || !p.Completed {
			continue
		}
		l := b.findLesson(lessonID)
		if l == nil {
			continue
		}
		resp.LessonsCompleted++
		if l.PronunciationWord != nil && !learned[*l.PronunciationWord] {
			learned[*l.PronunciationWord] = true
			resp.LearnedWords = append(resp.LearnedWords, *l.PronunciationWord)
		}
		seconds := l.VideoSeconds
		if seconds == 0 {
			seconds = defaultLessonSeconds
		}
		minutes := seconds / 60
		daily[p.UpdatedAt.Format(time.DateOnly)] += minutes
		resp.TotalMinutes += minutes
	}

	weak := make(map[string]bool)
	for _, q := range b.quizzes[u.ID] {
		if q.CreatedAt.Before(start) || q.Total == 0 {
			continue
		}
		l := b.findLesson(q.LessonID)
		if l == nil || l.PronunciationWord == nil {
			continue
		}
		if float64(q.Score)/float64(q.Total) < weakRatio && !weak[*l.PronunciationWord] {
			weak[*l.PronunciationWord] = true
			resp.WeakWords = append(resp.WeakWords, *l.PronunciationWord)
		}
	}
	sort.Strings(resp.LearnedWords)
	sort.Strings(resp.WeakWords)

	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i).Format(time.DateOnly)
		resp.DailyChart = append(resp.DailyChart, kidapi.DailyMinutes{Date: d, Minutes: daily[d]})
	}
	web.OK(c, resp)
}

// chatReply 固定模板回复，段落之间故意留出多个空行
func chatReply(message string) string {
	return fmt.Sprintf("Chào bé! Cô nghe bé hỏi: %q.\n\n\n\nCô giải thích nhé: hãy đọc to từng từ và lặp lại ba lần.\n\n\nBé giỏi lắm!", message)
}

func (b *Backend) chat(c *gin.Context) {
	var req kidapi.ChatRequest
	if !web.BindAndValidate(c, &req) {
		return
	}
	userID := req.UserID
	if userID == 0 {
		userID = defaultChatUserID
	}
	reply := chatReply(req.Message)

	b.mu.Lock()
	now := b.now()
	b.chats[userID] = append(b.chats[userID],
		chatMessage{Role: "user", Content: req.Message, At: now},
		chatMessage{Role: "assistant", Content: reply, At: now},
	)
	b.mu.Unlock()

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	for _, chunk := range strings.SplitAfter(reply, " ") {
		if _, err := c.Writer.WriteString(chunk); err != nil {
			return
		}
		c.Writer.Flush()
	}
}

// ChatHistory 某个用户的对话条数
func (b *Backend) ChatHistory(userID int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.chats[userID])
}
