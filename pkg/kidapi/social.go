package kidapi

// Period 排行榜周期
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodAllTime Period = "all_time"
)

// LeaderboardEntry 排行榜一行
type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	StudentID     int64   `json:"student_id"`
	FullName      string  `json:"full_name"`
	AvatarURL     *string `json:"avatar_url"`
	Stars         int     `json:"stars"`
	IsCurrentUser bool    `json:"is_current_user"`
}

// Leaderboard GET /leaderboard
type Leaderboard struct {
	TopUsers []LeaderboardEntry `json:"top_users"`
	UserRank *LeaderboardEntry  `json:"user_rank"`
}

// DailyMinutes 每日学习分钟数
type DailyMinutes struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// WeeklyReport GET /reports/weekly
type WeeklyReport struct {
	TotalMinutes     int            `json:"total_minutes"`
	LessonsCompleted int            `json:"lessons_completed"`
	LearnedWords     []string       `json:"learned_words"`
	WeakWords        []string       `json:"weak_words"`
	DailyChart       []DailyMinutes `json:"daily_chart"`
}

// ChatRequest POST /chat，响应为流式 text/plain
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
	UserID  int64  `json:"user_id"`
}
