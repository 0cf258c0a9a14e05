package payment

import (
	"fmt"

	"github.com/lk2023060901/kidlingo/pkg/kidapi"
)

// GemPackItemType 宝石订单的 item_type
const GemPackItemType = "gem_pack"

// Offer 商店内的固定宝石套餐
type Offer struct {
	Gems  int
	Price int
}

// ItemID 例如 gem_100
func (o Offer) ItemID() string {
	return fmt.Sprintf("gem_%d", o.Gems)
}

// QuickOffers 固定套餐
var QuickOffers = []Offer{
	{Gems: 100, Price: 10000},
	{Gems: 500, Price: 45000},
	{Gems: 1000, Price: 80000},
	{Gems: 2000, Price: 150000},
}

// FindOffer 按宝石数查找套餐
func FindOffer(gems int) (Offer, bool) {
	for _, o := range QuickOffers {
		if o.Gems == gems {
			return o, true
		}
	}
	return Offer{}, false
}

// Checkout 结算单：套餐加可选优惠码
type Checkout struct {
	Offer      Offer
	CouponCode string
	Discount   int
}

// ApplyCoupon 记录校验通过的优惠；无效时清空
func (c *Checkout) ApplyCoupon(code string, resp *kidapi.CouponValidateResponse) {
	if resp == nil || !resp.Valid {
		c.CouponCode = ""
		c.Discount = 0
		return
	}
	c.CouponCode = code
	c.Discount = resp.DiscountAmount
}

// FinalPrice 应付金额，不小于 0
func (c *Checkout) FinalPrice() int {
	return max(0, c.Offer.Price-c.Discount)
}

// OrderRequest 转为下单请求，只有确有优惠时才带上优惠码
func (c *Checkout) OrderRequest() kidapi.OrderRequest {
	req := kidapi.OrderRequest{
		Amount:      c.Offer.Price,
		Description: fmt.Sprintf("Mua %d Gems", c.Offer.Gems),
		ItemType:    GemPackItemType,
		ItemID:      c.Offer.ItemID(),
	}
	if c.Discount > 0 {
		req.CouponCode = c.CouponCode
	}
	return req
}
