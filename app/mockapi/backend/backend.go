// Package backend 内存版学习平台后端，实现与真实后端一致的 REST 契约，
// 供 learner 客户端的测试与本地开发使用
package backend

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/lk2023060901/kidlingo/pkg/logger"
	"github.com/lk2023060901/kidlingo/pkg/security"
	"github.com/lk2023060901/kidlingo/pkg/web"
	"github.com/lk2023060901/kidlingo/pkg/web/middleware"
)

// APIPrefix 路由前缀
const APIPrefix = "/api/v1"

// Backend 假后端，所有状态在一把锁下
type Backend struct {
	opts   Options
	jwt    *security.JWTManager
	logger logger.Logger

	mu         sync.Mutex
	nextUserID int64
	nextOrder  int64
	users      map[int64]*user
	byEmail    map[string]int64

	units    []unit
	lessons  []*lesson
	vocab    []kidapi.Vocabulary
	items    []kidapi.ShopItem
	gemPacks []kidapi.GemPack
	coupons  map[string]*Coupon

	progress  map[int64]map[int64]*lessonProgress
	quizzes   map[int64][]quizResult
	words     map[int64]map[int64]*kidapi.WordProgress
	nextWPID  int64
	inventory map[int64]map[int64]*inventoryEntry
	orders    map[string]*order
	starLogs  []starLog
	chats     map[int64][]chatMessage
	uploads   map[string][]byte
}

// New 创建假后端
func New(opts ...Option) (*Backend, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	jwt, err := security.NewJWTManager(&security.JWTConfig{SecretKey: o.JWTSecret, ExpiresIn: o.TokenTTL})
	if err != nil {
		return nil, errors.Wrap(err, "create jwt manager")
	}

	b := &Backend{
		opts:      o,
		jwt:       jwt,
		logger:    logger.OrNoop(o.Logger).Named("mockapi"),
		users:     make(map[int64]*user),
		byEmail:   make(map[string]int64),
		progress:  make(map[int64]map[int64]*lessonProgress),
		quizzes:   make(map[int64][]quizResult),
		words:     make(map[int64]map[int64]*kidapi.WordProgress),
		inventory: make(map[int64]map[int64]*inventoryEntry),
		orders:    make(map[string]*order),
		chats:     make(map[int64][]chatMessage),
		uploads:   make(map[string][]byte),
	}
	b.seed()
	return b, nil
}

func (b *Backend) now() time.Time {
	return b.opts.Clock().UTC()
}

// Register 在 r 上挂载 /api/v1 下的全部路由
func (b *Backend) Register(r gin.IRouter) {
	v1 := r.Group(APIPrefix)

	v1.POST("/auth/login", b.login)
	v1.POST("/auth/register", b.register)
	v1.POST("/payment/orders/validate-coupon", b.validateCoupon)
	v1.POST("/payment/webhook/payment-confirm", b.paymentWebhook)
	v1.POST("/chat", b.chat)
	v1.GET("/static/:name", b.serveUpload)

	authed := v1.Group("", middleware.Auth(b.jwt))
	authed.GET("/users/profile", b.getProfile)
	authed.PUT("/users/profile", b.updateProfile)
	authed.PUT("/users/profile/password", b.changePassword)
	authed.POST("/storage/upload", b.upload)

	authed.GET("/dashboard/path", b.dashboardPath)
	authed.GET("/lessons/:id", b.getLesson)
	authed.POST("/progress/mark-complete", b.markComplete)

	authed.GET("/study/review-today", b.reviewToday)
	authed.POST("/study/submit-word", b.submitWord)

	authed.GET("/shop/items", b.shopItems)
	authed.POST("/shop/buy", b.buyItem)
	authed.POST("/shop/equip/:id", b.equipItem)

	authed.GET("/payment/gem-packs", b.listGemPacks)
	authed.POST("/payment/gem-orders", b.createGemOrder)
	authed.POST("/payment/orders", b.createOrder)
	authed.GET("/payment/orders/:id", b.getOrder)

	authed.GET("/leaderboard", b.leaderboard)
	authed.GET("/reports/weekly", b.weeklyReport)
}

// Handler 独立的 gin 引擎，测试中交给 httptest
func (b *Backend) Handler() http.Handler {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Recovery(b.logger))
	b.Register(engine)
	return engine
}

// currentUser 从令牌主体解析当前用户，调用方须持有锁
func (b *Backend) currentUser(c *gin.Context) (*user, bool) {
	id, err := strconv.ParseInt(middleware.Subject(c), 10, 64)
	if err != nil {
		web.AbortWithError(c, http.StatusUnauthorized, "Could not validate credentials")
		return nil, false
	}
	u, ok := b.users[id]
	if !ok {
		web.AbortWithError(c, http.StatusNotFound, "User not found")
		return nil, false
	}
	return u, true
}

func (b *Backend) findLesson(id int64) *lesson {
	for _, l := range b.lessons {
		if l.ID == id {
			return l
		}
	}
	return nil
}

func (b *Backend) findItem(id int64) *kidapi.ShopItem {
	for i := range b.items {
		if b.items[i].ID == id {
			return &b.items[i]
		}
	}
	return nil
}

func (b *Backend) findVocab(word string) *kidapi.Vocabulary {
	for i := range b.vocab {
		if b.vocab[i].Word == word {
			return &b.vocab[i]
		}
	}
	return nil
}

func (b *Backend) findVocabByID(id int64) *kidapi.Vocabulary {
	for i := range b.vocab {
		if b.vocab[i].ID == id {
			return &b.vocab[i]
		}
	}
	return nil
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		web.ValidationError(c, []web.FieldDetail{{Loc: []string{"path", "id"}, Msg: "value is not a valid integer", Type: "type_error.integer"}})
		return 0, false
	}
	return id, true
}
