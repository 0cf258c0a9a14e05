package kidapi

import "time"

// Token 登录响应
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterRequest 注册请求，ref_code 为邀请码
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
	RefCode  string `json:"ref_code,omitempty"`
}

// User 注册响应
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	ReferralCode string    `json:"referral_code"`
	CreatedAt    time.Time `json:"created_at"`
}

// StudentProfile 学生档案
type StudentProfile struct {
	TotalGems   int     `json:"total_gems"`
	TotalStars  int     `json:"total_stars"`
	DateOfBirth *string `json:"date_of_birth"`
	AvatarURL   *string `json:"avatar_url"`
}

// UserProfile GET /users/profile
type UserProfile struct {
	ID             int64           `json:"id"`
	Email          string          `json:"email"`
	FullName       string          `json:"full_name"`
	ReferralCode   string          `json:"referral_code"`
	StudentProfile *StudentProfile `json:"student_profile"`
}

// ProfileUpdate PUT /users/profile，nil 字段不修改
type ProfileUpdate struct {
	FullName    *string `json:"full_name,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

// PasswordChange PUT /users/profile/password
type PasswordChange struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// Message 只有提示文本的响应
type Message struct {
	Message string `json:"message"`
}

// UploadResponse POST /storage/upload
type UploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}
