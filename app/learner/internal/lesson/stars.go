package lesson

import "github.com/lk2023060901/kidlingo/pkg/kidapi"

// Stars 路线图卡片上的星级 (0-3)
// 非测验课完成即 3 星；测验课完成得 1 星，分数 >5 再加 1，>8 再加 1
func Stars(l kidapi.LessonDashboard) int {
	if !l.IsCompleted {
		return 0
	}
	if l.LessonType != kidapi.LessonQuiz {
		return 3
	}
	score := 0
	if l.Score != nil {
		score = *l.Score
	}
	stars := 1
	if score > 5 {
		stars++
	}
	if score > 8 {
		stars++
	}
	return stars
}
