package backend

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/lk2023060901/kidlingo/pkg/web"
)

const (
	passThreshold    = 0.6
	completionGems   = 10
	completionStars  = 3
	maxBoxLevel      = 5
	reviewBatchLimit = 20
)

// boxIntervals 答对后进入的记忆盒等级对应的间隔天数
var boxIntervals = map[int]int{1: 1, 2: 3, 3: 7, 4: 15, 5: 30}

func (b *Backend) dashboardPath(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.currentUser(c)
	if !ok {
		return
	}

	completed := b.progress[u.ID]
	scores := make(map[int64]int)
	for _, q := range b.quizzes[u.ID] {
		scores[q.LessonID] = q.Score
	}

	units := append([]unit(nil), b.units...)
	sort.SliceStable(units, func(i, j int) bool { return units[i].OrderIndex < units[j].OrderIndex })

	// 全局顺序解锁：第一课总是解锁，之后每课只有前一课完成才解锁
	prevCompleted := true
	resp := kidapi.DashboardPath{Units: make([]kidapi.UnitDashboard, 0, len(units))}
	for _, un := range units {
		var lessons []*lesson
		for _, l := range b.lessons {
			if l.UnitID == un.ID {
				lessons = append(lessons, l)
			}
		}
		sort.SliceStable(lessons, func(i, j int) bool { return lessons[i].OrderIndex < lessons[j].OrderIndex })

		ud := kidapi.UnitDashboard{ID: un.ID, Title: un.Title, OrderIndex: un.OrderIndex, Lessons: []kidapi.LessonDashboard{}}
		for _, l := range lessons {
			done := false
			if p, ok := completed[l.ID]; ok {
				done = p.Completed
			}
			var score *int
			if s, ok := scores[l.ID]; ok {
				score = &s
			}
			ud.Lessons = append(ud.Lessons, kidapi.LessonDashboard{
				ID:           l.ID,
				Title:        l.Title,
				LessonType:   l.LessonType,
				ThumbnailURL: l.ThumbnailURL,
				OrderIndex:   l.OrderIndex,
				IsLocked:     !prevCompleted,
				IsCompleted:  done,
				Score:        score,
			})
			prevCompleted = done
		}
		resp.Units = append(resp.Units, ud)
	}
	web.OK(c, resp)
}

func (b *Backend) getLesson(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	l := b.findLesson(id)
	if l == nil {
		web.Error(c, http.StatusNotFound, "Lesson not found")
		return
	}
	out := l.Lesson
	if out.Questions == nil {
		out.Questions = []kidapi.Question{}
	}
	web.OK(c, out)
}

func (b *Backend) markComplete(c *gin.Context) {
	var req kidapi.ProgressUpdate
	if !web.BindAndValidate(c, &req) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	l := b.findLesson(req.LessonID)
	if l == nil {
		web.Error(c, http.StatusNotFound, "Lesson not found")
		return
	}
	now := b.now()

	if b.progress[u.ID] == nil {
		b.progress[u.ID] = make(map[int64]*lessonProgress)
	}
	p := b.progress[u.ID][l.ID]
	first := false
	if p == nil {
		p = &lessonProgress{}
		b.progress[u.ID][l.ID] = p
	}
	if !p.Completed {
		p.Completed = true
		first = true
	}
	p.UpdatedAt = now

	if req.TotalQuestions > 0 {
		b.quizzes[u.ID] = append(b.quizzes[u.ID], quizResult{LessonID: l.ID, Score: req.Score, Total: req.TotalQuestions, CreatedAt: now})
	}

	resp := kidapi.ProgressResponse{Message: "Lesson marked as complete", IsCompleted: true, UpdatedAt: now}
	if first {
		b.initWords(u.ID, l.Vocabulary, now)

		performance := 1.0
		if req.TotalQuestions > 0 {
			performance = float64(req.Score) / float64(req.TotalQuestions)
		}
		if performance >= passThreshold {
			resp.EarnedGems = completionGems
			u.Gems += completionGems
			// 只看视频 (0/0) 只给宝石，星星要靠测验
			if req.TotalQuestions > 0 {
				resp.EarnedStars = completionStars
				u.Stars += completionStars
				b.starLogs = append(b.starLogs, starLog{UserID: u.ID, Amount: completionStars, At: now})
			}
		}
	}
	web.OK(c, resp)
}

// initWords 课程单词进入第 1 个记忆盒，立即可复习
func (b *Backend) initWords(userID int64, words []string, now time.Time) {
	if b.words[userID] == nil {
		b.words[userID] = make(map[int64]*kidapi.WordProgress)
	}
	for _, w := range words {
		v := b.findVocab(w)
		if v == nil {
			continue
		}
		if _, exists := b.words[userID][v.ID]; exists {
			continue
		}
		b.nextWPID++
		b.words[userID][v.ID] = &kidapi.WordProgress{
			ID:           b.nextWPID,
			UserID:       userID,
			WordID:       v.ID,
			BoxLevel:     1,
			NextReviewAt: now,
		}
	}
}

func (b *Backend) reviewToday(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	now := b.now()

	due := make([]*kidapi.WordProgress, 0)
	for _, wp := range b.words[u.ID] {
		if !wp.NextReviewAt.After(now) {
			due = append(due, wp)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].NextReviewAt.Equal(due[j].NextReviewAt) {
			return due[i].WordID < due[j].WordID
		}
		return due[i].NextReviewAt.Before(due[j].NextReviewAt)
	})
	if len(due) > reviewBatchLimit {
		due = due[:reviewBatchLimit]
	}

	out := make([]kidapi.WordReview, 0, len(due))
	for _, wp := range due {
		v := b.findVocabByID(wp.WordID)
		if v == nil {
			continue
		}
		out = append(out, kidapi.WordReview{Word: *v, Progress: *wp})
	}
	web.OK(c, out)
}

// nextReview 答错回到第 1 盒明天复习，答对升一级 (最多 5 级)
func nextReview(level int, correct bool, now time.Time) (int, time.Time) {
	if !correct {
		return 1, now.AddDate(0, 0, 1)
	}
	next := level + 1
	if next > maxBoxLevel {
		next = maxBoxLevel
	}
	return next, now.AddDate(0, 0, boxIntervals[next])
}

func (b *Backend) submitWord(c *gin.Context) {
	var req kidapi.WordSubmit
	if !web.BindAndValidate(c, &req) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	if b.findVocabByID(req.WordID) == nil {
		web.Error(c, http.StatusNotFound, "Word not found")
		return
	}
	now := b.now()

	if b.words[u.ID] == nil {
		b.words[u.ID] = make(map[int64]*kidapi.WordProgress)
	}
	wp := b.words[u.ID][req.WordID]
	if wp == nil {
		b.nextWPID++
		wp = &kidapi.WordProgress{ID: b.nextWPID, UserID: u.ID, WordID: req.WordID, BoxLevel: 1, NextReviewAt: now}
		b.words[u.ID][req.WordID] = wp
	}
	wp.BoxLevel, wp.NextReviewAt = nextReview(wp.BoxLevel, req.IsCorrect, now)
	wp.LastReviewedAt = &now
	web.OK(c, *wp)
}
