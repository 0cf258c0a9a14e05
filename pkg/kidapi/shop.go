package kidapi

// ItemCategory 装扮分类，同一分类同时只能装备一件
type ItemCategory string

const (
	CategoryHat        ItemCategory = "hat"
	CategoryShirt      ItemCategory = "shirt"
	CategoryGlasses    ItemCategory = "glasses"
	CategoryBackground ItemCategory = "background"
	CategoryBody       ItemCategory = "body"
)

// ShopItem 商店物品
type ShopItem struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description"`
	Price       int          `json:"price"`
	Category    ItemCategory `json:"category"`
	LayerOrder  int          `json:"layer_order"`
	ImageURL    string       `json:"image_url"`
	IsOwned     bool         `json:"is_owned"`
	IsEquipped  bool         `json:"is_equipped"`
}

// BuyItemRequest POST /shop/buy
type BuyItemRequest struct {
	ItemID int64 `json:"item_id" binding:"required"`
}

// BuyItemResponse remaining_gems 为服务端确认后的余额
type BuyItemResponse struct {
	Message       string `json:"message"`
	RemainingGems int    `json:"remaining_gems"`
	ItemName      string `json:"item_name"`
}

// EquipItemResponse POST /shop/equip/{id}
type EquipItemResponse struct {
	Message          string       `json:"message"`
	EquippedItemID   int64        `json:"equipped_item_id"`
	UnequippedItemID *int64       `json:"unequipped_item_id,omitempty"`
	Category         ItemCategory `json:"category"`
}
