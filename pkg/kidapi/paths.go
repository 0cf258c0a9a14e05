package kidapi

import "strconv"

// 路径均相对于 API 根地址 (例如 http://localhost:8000/api/v1)
const (
	PathLogin    = "/auth/login"
	PathRegister = "/auth/register"

	PathProfile         = "/users/profile"
	PathProfilePassword = "/users/profile/password"
	PathUpload          = "/storage/upload"

	PathDashboard    = "/dashboard/path"
	PathLessons      = "/lessons/"
	PathMarkComplete = "/progress/mark-complete"

	PathReviewToday = "/study/review-today"
	PathSubmitWord  = "/study/submit-word"

	PathShopItems = "/shop/items"
	PathShopBuy   = "/shop/buy"
	PathShopEquip = "/shop/equip/"

	PathOrders         = "/payment/orders"
	PathGemOrders      = "/payment/gem-orders"
	PathGemPacks       = "/payment/gem-packs"
	PathValidateCoupon = "/payment/orders/validate-coupon"
	PathPaymentWebhook = "/payment/webhook/payment-confirm"

	PathLeaderboard  = "/leaderboard"
	PathWeeklyReport = "/reports/weekly"
	PathChat         = "/chat"
)

// LessonPath GET /lessons/{id}
func LessonPath(id int64) string { return PathLessons + strconv.FormatInt(id, 10) }

// EquipPath POST /shop/equip/{id}
func EquipPath(id int64) string { return PathShopEquip + strconv.FormatInt(id, 10) }

// OrderPath GET /payment/orders/{id}
func OrderPath(orderID string) string { return PathOrders + "/" + orderID }
