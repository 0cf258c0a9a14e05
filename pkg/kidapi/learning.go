package kidapi

import "time"

// LessonType 课程类型
type LessonType string

const (
	LessonVocabulary LessonType = "vocabulary"
	LessonGrammar    LessonType = "grammar"
	LessonPhonics    LessonType = "phonics"
	LessonListening  LessonType = "listening"
	LessonQuiz       LessonType = "quiz"
)

// LessonDashboard 路线图上的课程卡片
type LessonDashboard struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	LessonType   LessonType `json:"lesson_type"`
	ThumbnailURL *string    `json:"thumbnail_url"`
	OrderIndex   int        `json:"order_index"`
	IsLocked     bool       `json:"is_locked"`
	IsCompleted  bool       `json:"is_completed"`
	Score        *int       `json:"score"`
}

// UnitDashboard 单元
type UnitDashboard struct {
	ID         int64             `json:"id"`
	Title      string            `json:"title"`
	OrderIndex int               `json:"order_index"`
	Lessons    []LessonDashboard `json:"lessons"`
}

// DashboardPath GET /dashboard/path
type DashboardPath struct {
	Units []UnitDashboard `json:"units"`
}

// Question 选择题
type Question struct {
	ID            int64    `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// Lesson GET /lessons/{id}
type Lesson struct {
	ID                int64      `json:"id"`
	UnitID            int64      `json:"unit_id"`
	Title             string     `json:"title"`
	LessonType        LessonType `json:"lesson_type"`
	OrderIndex        int        `json:"order_index"`
	ThumbnailURL      *string    `json:"thumbnail_url"`
	VideoURL          *string    `json:"video_url"`
	AttachmentURL     *string    `json:"attachment_url"`
	PronunciationWord *string    `json:"pronunciation_word"`
	Questions         []Question `json:"questions"`
}

// ProgressUpdate POST /progress/mark-complete，score=0,total=0 表示只看完视频
type ProgressUpdate struct {
	LessonID       int64 `json:"lesson_id" binding:"required"`
	Score          int   `json:"score" binding:"gte=0"`
	TotalQuestions int   `json:"total_questions" binding:"gte=0"`
}

// ProgressResponse 完成课程的结算结果
type ProgressResponse struct {
	Message     string    `json:"message"`
	IsCompleted bool      `json:"is_completed"`
	UpdatedAt   time.Time `json:"updated_at"`
	EarnedGems  int       `json:"earned_gems"`
	EarnedStars int       `json:"earned_stars"`
}

// Vocabulary 单词
type Vocabulary struct {
	ID              int64   `json:"id"`
	Word            string  `json:"word"`
	Meaning         string  `json:"meaning"`
	Pronunciation   *string `json:"pronunciation"`
	ExampleSentence *string `json:"example_sentence"`
	ImageURL        *string `json:"image_url"`
	AudioURL        *string `json:"audio_url"`
	LessonID        int64   `json:"lesson_id"`
}

// WordProgress 单词的记忆盒进度，由服务端计算
type WordProgress struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	WordID         int64      `json:"word_id"`
	BoxLevel       int        `json:"box_level"`
	NextReviewAt   time.Time  `json:"next_review_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
}

// WordReview GET /study/review-today 的元素
type WordReview struct {
	Word     Vocabulary   `json:"word"`
	Progress WordProgress `json:"progress"`
}

// WordSubmit POST /study/submit-word
type WordSubmit struct {
	WordID    int64 `json:"word_id" binding:"required"`
	IsCorrect bool  `json:"is_correct"`
}
