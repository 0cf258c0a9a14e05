package backend

import (
	"time"

	"github.com/lk2023060901/kidlingo/pkg/kidapi"
)

type user struct {
	ID           int64
	Email        string
	PasswordHash string
	FullName     string
	ReferralCode string
	ReferredBy   int64
	CreatedAt    time.Time

	Gems        int
	Stars       int
	DateOfBirth *time.Time
	AvatarURL   *string
}

type unit struct {
	ID         int64
	Title      string
	OrderIndex int
}

type lesson struct {
	kidapi.Lesson
	// Vocabulary 完成课程后加入记忆盒的单词
	Vocabulary []string
	// VideoSeconds 周报估算学习时长
	VideoSeconds int
}

type lessonProgress struct {
	Completed bool
	UpdatedAt time.Time
}

type quizResult struct {
	LessonID  int64
	Score     int
	Total     int
	CreatedAt time.Time
}

type starLog struct {
	UserID int64
	Amount int
	At     time.Time
}

type inventoryEntry struct {
	Equipped bool
}

type order struct {
	OrderID        string
	UserID         int64
	Amount         int
	Description    string
	ItemType       string
	ItemID         string
	Status         kidapi.OrderStatus
	CouponCode     *string
	DiscountAmount int
	GemPackID      int64
	Polls          int
	CreatedAt      time.Time
}

// DiscountType 优惠类型
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed_amount"
)

// Coupon 优惠码
type Coupon struct {
	Code          string
	DiscountType  DiscountType
	DiscountValue int
	IsActive      bool
	ExpiryDate    time.Time
	MaxUsage      int
	UsageCount    int
}

type chatMessage struct {
	Role    string
	Content string
	At      time.Time
}
