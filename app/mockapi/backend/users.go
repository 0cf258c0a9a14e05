package backend

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/lk2023060901/kidlingo/pkg/security"
	"github.com/lk2023060901/kidlingo/pkg/web"
)

const (
	referralBonus = 100
	maxUploadSize = 5 << 20
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

func (b *Backend) login(c *gin.Context) {
	email := c.PostForm("username")
	password := c.PostForm("password")
	if email == "" || password == "" {
		web.ValidationError(c, []web.FieldDetail{{Loc: []string{"body", "username"}, Msg: "field required", Type: "value_error.missing"}})
		return
	}

	b.mu.Lock()
	var u *user
	if id, ok := b.byEmail[strings.ToLower(email)]; ok {
		u = b.users[id]
	}
	b.mu.Unlock()

	if u == nil || security.CheckPassword(u.PasswordHash, password) != nil {
		web.Error(c, http.StatusBadRequest, "Tài khoản hoặc mật khẩu không đúng")
		return
	}

	token, _, err := b.jwt.Generate(strconv.FormatInt(u.ID, 10))
	if err != nil {
		web.Error(c, http.StatusInternalServerError, "Could not issue token")
		return
	}
	web.OK(c, kidapi.Token{AccessToken: token, TokenType: "bearer"})
}

func (b *Backend) register(c *gin.Context) {
	var req kidapi.RegisterRequest
	if !web.BindAndValidate(c, &req) {
		return
	}
	hash, err := security.HashPassword(req.Password)
	if err != nil {
		web.Error(c, http.StatusInternalServerError, "Could not hash password")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := strings.ToLower(req.Email)
	if _, exists := b.byEmail[key]; exists {
		web.Error(c, http.StatusBadRequest, "Tài khoản đã tồn tại.")
		return
	}

	b.nextUserID++
	u := &user{
		ID:           b.nextUserID,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		ReferralCode: referralCode(req.FullName),
		CreatedAt:    b.now(),
	}
	if req.RefCode != "" {
		for _, other := range b.users {
			if other.ReferralCode == req.RefCode {
				u.ReferredBy = other.ID
				u.Gems += referralBonus
				other.Gems += referralBonus
				break
			}
		}
	}
	b.users[u.ID] = u
	b.byEmail[key] = u.ID
	b.logger.Info("user registered", "user_id", u.ID, "referred_by", u.ReferredBy)

	web.OK(c, kidapi.User{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		Role:         "student",
		ReferralCode: u.ReferralCode,
		CreatedAt:    u.CreatedAt,
	})
}

// referralCode 名字前三个字母数字大写 + 6 位十六进制
func referralCode(fullName string) string {
	name := strings.ToUpper(nonAlnum.ReplaceAllString(fullName, ""))
	if len(name) > 3 {
		name = name[:3]
	}
	if name == "" {
		name = "USER"
	}
	return name + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}

func (b *Backend) profileOf(u *user) kidapi.UserProfile {
	sp := &kidapi.StudentProfile{TotalGems: u.Gems, TotalStars: u.Stars, AvatarURL: u.AvatarURL}
	if u.DateOfBirth != nil {
		sp.DateOfBirth = ptr(u.DateOfBirth.Format("2006-01-02"))
	}
	name := u.FullName
	if name == "" {
		name = "Bé yêu"
	}
	return kidapi.UserProfile{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       name,
		ReferralCode:   u.ReferralCode,
		StudentProfile: sp,
	}
}

func (b *Backend) getProfile(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	web.OK(c, b.profileOf(u))
}

func (b *Backend) updateProfile(c *gin.Context) {
	var req kidapi.ProfileUpdate
	if !web.BindAndValidate(c, &req) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.DateOfBirth != nil {
		if dob, err := time.Parse("2006-01-02", *req.DateOfBirth); err == nil {
			u.DateOfBirth = &dob
		}
	}
	if req.AvatarURL != nil {
		u.AvatarURL = ptr(*req.AvatarURL)
	}
	web.OK(c, b.profileOf(u))
}

func (b *Backend) changePassword(c *gin.Context) {
	var req kidapi.PasswordChange
	if !web.BindAndValidate(c, &req) {
		return
	}

	b.mu.Lock()
	u, ok := b.currentUser(c)
	if !ok {
		b.mu.Unlock()
		return
	}
	hash := u.PasswordHash
	b.mu.Unlock()

	if security.CheckPassword(hash, req.CurrentPassword) != nil {
		web.Error(c, http.StatusBadRequest, "Mật khẩu hiện tại không chính xác!")
		return
	}
	if req.NewPassword == req.CurrentPassword {
		web.Error(c, http.StatusBadRequest, "Mật khẩu mới không nên trùng với mật khẩu hiện tại!")
		return
	}
	newHash, err := security.HashPassword(req.NewPassword)
	if err != nil {
		web.Error(c, http.StatusInternalServerError, "Could not hash password")
		return
	}

	b.mu.Lock()
	u.PasswordHash = newHash
	b.mu.Unlock()
	web.OK(c, kidapi.Message{Message: "Đổi mật khẩu thành công!"})
}

func (b *Backend) upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		web.Error(c, http.StatusBadRequest, "No file sent")
		return
	}
	if fh.Size > maxUploadSize {
		web.Error(c, http.StatusBadRequest, "File too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		web.Error(c, http.StatusInternalServerError, "Could not read file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		web.Error(c, http.StatusInternalServerError, "Could not read file")
		return
	}

	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") && !strings.HasPrefix(ct, "video/") && ct != "application/pdf" {
		web.Error(c, http.StatusBadRequest, "Invalid file type")
		return
	}

	name := fmt.Sprintf("%s%s", uuid.NewString(), path.Ext(fh.Filename))
	b.mu.Lock()
	b.uploads[name] = data
	b.mu.Unlock()

	web.OK(c, kidapi.UploadResponse{
		URL:      strings.TrimRight(b.opts.PublicURL, "/") + APIPrefix + "/static/" + name,
		Filename: fh.Filename,
	})
}

func (b *Backend) serveUpload(c *gin.Context) {
	b.mu.Lock()
	data, ok := b.uploads[c.Param("name")]
	b.mu.Unlock()
	if !ok {
		web.Error(c, http.StatusNotFound, "Not found")
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}
