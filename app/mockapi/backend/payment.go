package backend

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/lk2023060901/kidlingo/pkg/web"
)

const gemPackItemType = "gem_pack"

var (
	orderIDPattern = regexp.MustCompile(`(DH\d+)`)

	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = errors.New("backend: order not found")
)

// checkCoupon 返回可用的优惠码，不可用时返回面向用户的原因
func (b *Backend) checkCoupon(code string) (*Coupon, string) {
	cp, ok := b.coupons[code]
	switch {
	case !ok:
		return nil, "Mã giảm giá không tồn tại."
	case !cp.IsActive:
		return nil, "Mã giảm giá không hoạt động."
	case cp.ExpiryDate.Before(b.now()):
		return nil, "Mã giảm giá đã hết hạn."
	case cp.UsageCount >= cp.MaxUsage:
		return nil, "Mã giảm giá đã hết lượt sử dụng."
	}
	return cp, ""
}

// Discount 优惠金额，不超过原价
func (cp *Coupon) Discount(amount int) int {
	var d int
	switch cp.DiscountType {
	case DiscountPercent:
		d = amount * cp.DiscountValue / 100
	case DiscountFixed:
		d = cp.DiscountValue
	}
	if d > amount {
		d = amount
	}
	return d
}

func (b *Backend) qrURL(orderID string, amount int) string {
	q := url.Values{}
	q.Set("acc", b.opts.BankAccount)
	q.Set("amount", strconv.Itoa(amount))
	q.Set("bank", b.opts.BankCode)
	q.Set("des", orderID)
	q.Set("template", "compact")
	return "https://qr.sepay.vn/img?" + q.Encode()
}

func (b *Backend) newOrderID() string {
	b.nextOrder++
	return fmt.Sprintf("DH%d", 100000+b.nextOrder)
}

func (b *Backend) orderView(o *order) kidapi.Order {
	return kidapi.Order{
		OrderID:        o.OrderID,
		Amount:         o.Amount,
		Description:    o.Description,
		Status:         o.Status,
		QRURL:          b.qrURL(o.OrderID, o.Amount),
		DiscountAmount: o.DiscountAmount,
		CouponCode:     o.CouponCode,
	}
}

func (b *Backend) validateCoupon(c *gin.Context) {
	var req kidapi.CouponValidateRequest
	if !web.BindAndValidate(c, &req) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	cp, reason := b.checkCoupon(req.CouponCode)
	if cp == nil {
		web.OK(c, kidapi.CouponValidateResponse{FinalAmount: req.OriginalAmount, Message: reason})
		return
	}
	d := cp.Discount(req.OriginalAmount)
	web.OK(c, kidapi.CouponValidateResponse{
		Valid:          true,
		DiscountAmount: d,
		FinalAmount:    req.OriginalAmount - d,
		Message:        "Áp dụng mã giảm giá thành công.",
	})
}

func (b *Backend) createOrder(c *gin.Context) {
	var req kidapi.OrderRequest
	if !web.BindAndValidate(c, &req) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.currentUser(c)
	if !ok {
		return
	}

	o := &order{
		OrderID:     b.newOrderID(),
		UserID:      u.ID,
		Amount:      req.Amount,
		Description: req.Description,
		ItemType:    req.ItemType,
		ItemID:      req.ItemID,
		Status:      kidapi.OrderPending,
		CreatedAt:   b.now(),
	}
	if o.Description == "" {
		o.Description = "Payment for " + req.ItemType
	}
	if req.CouponCode != "" {
		cp, reason := b.checkCoupon(req.CouponCode)
		if cp == nil {
			web.Error(c, http.StatusBadRequest, reason)
			return
		}
		o.DiscountAmount = cp.Discount(req.Amount)
		o.Amount -= o.DiscountAmount
		o.CouponCode = &cp.Code
	}
	b.orders[o.OrderID] = o
	b.logger.Info("order created", "order_id", o.OrderID, "user_id", u.ID, "amount", o.Amount)
	web.OK(c, b.orderView(o))
}

func (b *Backend) listGemPacks(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]kidapi.GemPack, 0, len(b.gemPacks))
	for _, p := range b.gemPacks {
		if p.IsActive {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	web.OK(c, out)
}

func (b *Backend) findGemPack(id int64) *kidapi.GemPack {
	for i := range b.gemPacks {
		if b.gemPacks[i].ID == id {
			return &b.gemPacks[i]
		}
	}
	return nil
}

func (b *Backend) createGemOrder(c *gin.Context) {
	var req kidapi.GemOrderRequest
	if !web.BindAndValidate(c, &req) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	pack := b.findGemPack(req.GemPackID)
	if pack == nil {
		web.Error(c, http.StatusNotFound, fmt.Sprintf("Gem pack %d not found", req.GemPackID))
		return
	}
	if !pack.IsActive {
		web.Error(c, http.StatusBadRequest, fmt.Sprintf("Gem pack %d is not active", req.GemPackID))
		return
	}

	o := &order{
		OrderID:     b.newOrderID(),
		UserID:      u.ID,
		Amount:      pack.PriceVND,
		Description: "Mua " + pack.Name,
		ItemType:    gemPackItemType,
		ItemID:      strconv.FormatInt(pack.ID, 10),
		GemPackID:   pack.ID,
		Status:      kidapi.OrderPending,
		CreatedAt:   b.now(),
	}
	if req.CouponCode != "" {
		cp, reason := b.checkCoupon(req.CouponCode)
		if cp == nil {
			web.Error(c, http.StatusBadRequest, reason)
			return
		}
		o.DiscountAmount = cp.Discount(pack.PriceVND)
		o.Amount -= o.DiscountAmount
		o.CouponCode = &cp.Code
	}
	b.orders[o.OrderID] = o

	web.OK(c, kidapi.GemOrder{
		OrderID:        o.OrderID,
		GemPackID:      pack.ID,
		GemAmount:      pack.GemAmount,
		TotalGems:      pack.TotalGems,
		OriginalPrice:  pack.PriceVND,
		DiscountAmount: o.DiscountAmount,
		FinalAmount:    o.Amount,
		Status:         o.Status,
		QRURL:          b.qrURL(o.OrderID, o.Amount),
		CouponCode:     o.CouponCode,
	})
}

func (b *Backend) getOrder(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	o, found := b.orders[c.Param("id")]
	if !found {
		web.Error(c, http.StatusNotFound, "Order not found")
		return
	}
	if o.UserID != u.ID {
		web.Error(c, http.StatusForbidden, "Not authorized")
		return
	}

	o.Polls++
	if b.opts.AutoPayAfter > 0 && o.Polls >= b.opts.AutoPayAfter && o.Status == kidapi.OrderPending {
		b.settle(o)
	}
	web.OK(c, b.orderView(o))
}

func (b *Backend) paymentWebhook(c *gin.Context) {
	var req kidapi.PaymentWebhook
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Error(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	m := orderIDPattern.FindStringSubmatch(req.Content)
	if m == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ignored", "reason": "No order ID found"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[m[1]]
	switch {
	case !ok:
		c.JSON(http.StatusOK, gin.H{"status": "error", "reason": "Order not found"})
	case o.Status == kidapi.OrderPaid:
		c.JSON(http.StatusOK, gin.H{"status": "ok", "reason": "Already paid"})
	case req.Paid() < o.Amount:
		c.JSON(http.StatusOK, gin.H{"status": "error", "reason": "Insufficient amount"})
	default:
		b.settle(o)
		c.JSON(http.StatusOK, gin.H{"status": "success", "order_id": o.OrderID})
	}
}

// MarkPaid 直接结算订单，相当于收到一笔足额转账
func (b *Backend) MarkPaid(orderID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[orderID]
	if !ok {
		return errors.Wrapf(ErrOrderNotFound, "order %s", orderID)
	}
	if o.Status != kidapi.OrderPaid {
		b.settle(o)
	}
	return nil
}

// settle 标记已支付、累计优惠码使用次数并发放宝石，调用方须持有锁
func (b *Backend) settle(o *order) {
	o.Status = kidapi.OrderPaid
	if o.CouponCode != nil {
		if cp, ok := b.coupons[*o.CouponCode]; ok {
			if cp.UsageCount >= cp.MaxUsage {
				b.logger.Warn("coupon exceeded max usage", "order_id", o.OrderID, "coupon", cp.Code)
			}
			cp.UsageCount++
		}
	}

	gems := b.gemsFor(o)
	if u, ok := b.users[o.UserID]; ok && gems > 0 {
		u.Gems += gems
	}
	b.logger.Info("order settled", "order_id", o.OrderID, "user_id", o.UserID, "gems", gems)
}

func (b *Backend) gemsFor(o *order) int {
	if o.ItemType != gemPackItemType {
		return 0
	}
	if o.GemPackID > 0 {
		if p := b.findGemPack(o.GemPackID); p != nil {
			return p.TotalGems
		}
	}
	if n, err := strconv.Atoi(strings.TrimPrefix(o.ItemID, "gem_")); err == nil && strings.HasPrefix(o.ItemID, "gem_") {
		return n
	}
	return o.Amount / 1000
}

// AddCoupon 新增或覆盖优惠码
func (b *Backend) AddCoupon(cp Coupon) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.coupons[cp.Code] = &cp
}
