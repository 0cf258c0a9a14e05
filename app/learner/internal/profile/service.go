// Package profile 学生档案：仓库、刷新、资料修改、头像上传与邀请链接
package profile

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/app/learner/internal/api"
	"github.com/lk2023060901/kidlingo/app/learner/internal/form"
	"github.com/lk2023060901/kidlingo/pkg/config"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/lk2023060901/kidlingo/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// MaxAvatarSize 头像文件上限
const MaxAvatarSize = 5 << 20

var (
	ErrNotImage     = errors.WithHint(errors.New("profile: file is not an image"), "Vui lòng chọn file hình ảnh")
	ErrFileTooLarge = errors.WithHint(errors.New("profile: file exceeds 5MB"), "Kích thước file không được quá 5MB")
	ErrNoReferral   = errors.New("profile: referral code not loaded")
)

// Service 档案服务
type Service struct {
	client    *api.Client
	store     *Store
	validator *config.Validator
	group     singleflight.Group
	logger    logger.Logger
}

// NewService 创建档案服务
func NewService(client *api.Client, store *Store, v *config.Validator, l logger.Logger) *Service {
	return &Service{
		client:    client,
		store:     store,
		validator: v,
		logger:    logger.OrNoop(l).Named("profile"),
	}
}

// Store 档案仓库
func (s *Service) Store() *Store {
	return s.store
}

// Refresh 拉取档案并整体替换仓库状态，并发调用合并为一次请求
func (s *Service) Refresh(ctx context.Context) (State, error) {
	v, err, _ := s.group.Do("profile", func() (interface{}, error) {
		var p kidapi.UserProfile
		if err := s.client.Get(ctx, kidapi.PathProfile, &p); err != nil {
			return nil, errors.Wrap(err, "fetch profile")
		}
		return s.store.Dispatch("refresh", Loaded{Profile: &p}), nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "refresh profile failed", "error", err)
		return s.store.Snapshot(), err
	}
	return v.(State), nil
}

// UpdateForm 资料修改表单，空字段不修改
type UpdateForm struct {
	FullName    string `json:"full_name" validate:"omitempty,max=100"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	AvatarURL   string `json:"avatar_url"`
}

var updateMessages = form.Messages{
	"full_name":     "Vui lòng nhập họ tên",
	"date_of_birth": "Ngày sinh phải có dạng YYYY-MM-DD",
}

// Update 修改资料后刷新仓库
func (s *Service) Update(ctx context.Context, f UpdateForm) (State, error) {
	if err := form.Check(s.validator, f, updateMessages); err != nil {
		return s.store.Snapshot(), err
	}
	req := kidapi.ProfileUpdate{}
	if f.FullName != "" {
		req.FullName = &f.FullName
	}
	if f.DateOfBirth != "" {
		req.DateOfBirth = &f.DateOfBirth
	}
	if f.AvatarURL != "" {
		req.AvatarURL = &f.AvatarURL
	}
	if err := s.client.Put(ctx, kidapi.PathProfile, req, nil); err != nil {
		return s.store.Snapshot(), errors.Wrap(err, "update profile")
	}
	return s.Refresh(ctx)
}

// PasswordForm 修改密码表单
type PasswordForm struct {
	Current string `json:"current_password" validate:"required"`
	New     string `json:"new_password" validate:"required,min=6"`
	Confirm string `json:"confirm_password" validate:"required,eqfield=New"`
}

var passwordMessages = form.Messages{
	"current_password":          "Vui lòng nhập mật khẩu hiện tại",
	"new_password.required":     "Vui lòng nhập mật khẩu mới",
	"new_password.min":          "Mật khẩu phải có ít nhất 6 ký tự",
	"confirm_password.required": "Vui lòng xác nhận mật khẩu",
	"confirm_password.eqfield":  "Mật khẩu xác nhận không khớp",
}

// ChangePassword 修改密码，服务端的拒绝原因原样作为提示
func (s *Service) ChangePassword(ctx context.Context, f PasswordForm) error {
	if err := form.Check(s.validator, f, passwordMessages); err != nil {
		return err
	}
	req := kidapi.PasswordChange{CurrentPassword: f.Current, NewPassword: f.New}
	if err := s.client.Put(ctx, kidapi.PathProfilePassword, req, nil); err != nil {
		return errors.Wrap(err, "change password")
	}
	s.logger.InfoContext(ctx, "password changed")
	return nil
}

// UploadAvatar 上传头像图片并返回地址，不会自动修改资料
func (s *Service) UploadAvatar(ctx context.Context, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxAvatarSize+1))
	if err != nil {
		return "", errors.Wrap(err, "read avatar")
	}
	if len(data) > MaxAvatarSize {
		return "", ErrFileTooLarge
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return "", ErrNotImage
	}

	var resp kidapi.UploadResponse
	if err := s.client.PostMultipart(ctx, kidapi.PathUpload, "file", filepath.Base(filename), bytes.NewReader(data), &resp); err != nil {
		return "", errors.WithHint(errors.Wrap(err, "upload avatar"), "Không thể tải ảnh lên. Vui lòng thử lại.")
	}
	return resp.URL, nil
}

// ReferralLink 邀请注册链接
func (s *Service) ReferralLink(origin string) (string, error) {
	code := s.store.Snapshot().ReferralCode
	if code == "" {
		return "", ErrNoReferral
	}
	return strings.TrimRight(origin, "/") + "/register?ref=" + code, nil
}
