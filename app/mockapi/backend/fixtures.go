package backend

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/pkg/security"
)

// ErrEmailTaken 邮箱已注册
var ErrEmailTaken = errors.New("backend: email already registered")

// CreateUser 直接建号，跳过注册接口，返回用户 ID
func (b *Backend) CreateUser(email, password, fullName string) (int64, error) {
	hash, err := security.HashPassword(password)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	key := strings.ToLower(email)
	if _, exists := b.byEmail[key]; exists {
		return 0, errors.Wrapf(ErrEmailTaken, "email %s", email)
	}
	b.nextUserID++
	u := &user{
		ID:           b.nextUserID,
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		ReferralCode: referralCode(fullName),
		CreatedAt:    b.now(),
	}
	b.users[u.ID] = u
	b.byEmail[key] = u.ID
	return u.ID, nil
}

// IssueToken 为用户签发访问令牌
func (b *Backend) IssueToken(userID int64) (string, error) {
	token, _, err := b.jwt.Generate(strconv.FormatInt(userID, 10))
	return token, err
}

// AddStars 增加星星并记入周榜流水
func (b *Backend) AddStars(userID int64, stars int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[userID]
	if !ok {
		return errors.Newf("backend: user %d not found", userID)
	}
	u.Stars += stars
	b.starLogs = append(b.starLogs, starLog{UserID: userID, Amount: stars, At: b.now()})
	return nil
}

// OrderPolls 订单被查询状态的次数
func (b *Backend) OrderPolls(orderID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if o, ok := b.orders[orderID]; ok {
		return o.Polls
	}
	return 0
}

// SetGems 直接设置用户宝石余额
func (b *Backend) SetGems(userID int64, gems int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[userID]
	if !ok {
		return errors.Newf("backend: user %d not found", userID)
	}
	u.Gems = gems
	return nil
}

// Gems 用户当前宝石余额
func (b *Backend) Gems(userID int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u, ok := b.users[userID]; ok {
		return u.Gems
	}
	return 0
}

// UserID 按邮箱查找用户 ID
func (b *Backend) UserID(email string) (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.byEmail[strings.ToLower(email)]
	return id, ok
}
