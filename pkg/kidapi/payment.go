package kidapi

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderPending OrderStatus = "pending"
	OrderPaid    OrderStatus = "paid"
)

// OrderRequest POST /payment/orders
type OrderRequest struct {
	Amount      int    `json:"amount" binding:"required,gt=0"`
	Description string `json:"description,omitempty"`
	ItemType    string `json:"item_type,omitempty"`
	ItemID      string `json:"item_id,omitempty"`
	CouponCode  string `json:"coupon_code,omitempty"`
}

// Order 支付订单
type Order struct {
	OrderID        string      `json:"order_id"`
	Amount         int         `json:"amount"`
	Description    string      `json:"description"`
	Status         OrderStatus `json:"status"`
	QRURL          string      `json:"qr_url"`
	DiscountAmount int         `json:"discount_amount"`
	CouponCode     *string     `json:"coupon_code"`
}

// GemPack GET /payment/gem-packs
type GemPack struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	GemAmount       int     `json:"gem_amount"`
	BonusGemPercent int     `json:"bonus_gem_percent"`
	TotalGems       int     `json:"total_gems"`
	PriceVND        int     `json:"price_vnd"`
	IsActive        bool    `json:"is_active"`
	OrderIndex      int     `json:"order_index"`
}

// GemOrderRequest POST /payment/gem-orders
type GemOrderRequest struct {
	GemPackID  int64  `json:"gem_pack_id" binding:"required"`
	CouponCode string `json:"coupon_code,omitempty"`
}

// GemOrder 宝石包订单
type GemOrder struct {
	OrderID        string      `json:"order_id"`
	GemPackID      int64       `json:"gem_pack_id"`
	GemAmount      int         `json:"gem_amount"`
	TotalGems      int         `json:"total_gems"`
	OriginalPrice  int         `json:"original_price"`
	DiscountAmount int         `json:"discount_amount"`
	FinalAmount    int         `json:"final_amount"`
	Status         OrderStatus `json:"status"`
	QRURL          string      `json:"qr_url"`
	CouponCode     *string     `json:"coupon_code"`
}

// CouponValidateRequest POST /payment/orders/validate-coupon
type CouponValidateRequest struct {
	CouponCode     string `json:"coupon_code" binding:"required"`
	OriginalAmount int    `json:"original_amount" binding:"gte=0"`
}

// CouponValidateResponse 优惠码校验结果
type CouponValidateResponse struct {
	Valid          bool   `json:"valid"`
	DiscountAmount int    `json:"discount_amount"`
	FinalAmount    int    `json:"final_amount"`
	Message        string `json:"message"`
}

// PaymentWebhook 银行转账回调，content 中包含订单号
type PaymentWebhook struct {
	ID             int64  `json:"id"`
	Content        string `json:"content"`
	Amount         int    `json:"amount"`
	TransferAmount int    `json:"transferAmount"`
	ReferenceCode  string `json:"referenceCode"`
}

// Paid 实际到账金额，兼容两种字段名
func (w PaymentWebhook) Paid() int {
	if w.TransferAmount > w.Amount {
		return w.TransferAmount
	}
	return w.Amount
}
