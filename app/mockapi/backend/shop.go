package backend

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/lk2023060901/kidlingo/pkg/web"
)

func (b *Backend) shopItems(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	inv := b.inventory[u.ID]
	out := make([]kidapi.ShopItem, 0, len(b.items))
	for _, it := range b.items {
		if e, owned := inv[it.ID]; owned {
			it.IsOwned = true
			it.IsEquipped = e.Equipped
		}
		out = append(out, it)
	}
	web.OK(c, out)
}

func (b *Backend) buyItem(c *gin.Context) {
	var req kidapi.BuyItemRequest
	if !web.BindAndValidate(c, &req) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	it := b.findItem(req.ItemID)
	if it == nil {
		web.Error(c, http.StatusNotFound, "Item not found")
		return
	}
	if _, owned := b.inventory[u.ID][it.ID]; owned {
		web.Error(c, http.StatusBadRequest, "You already own this item")
		return
	}
	if u.Gems < it.Price {
		web.Error(c, http.StatusBadRequest, "Not enough gems")
		return
	}

	u.Gems -= it.Price
	if b.inventory[u.ID] == nil {
		b.inventory[u.ID] = make(map[int64]*inventoryEntry)
	}
	b.inventory[u.ID][it.ID] = &inventoryEntry{}
	b.logger.Info("item purchased", "user_id", u.ID, "item_id", it.ID, "remaining_gems", u.Gems)

	web.OK(c, kidapi.BuyItemResponse{
		Message:       "Purchase successful!",
		RemainingGems: u.Gems,
		ItemName:      it.Name,
	})
}

func (b *Backend) equipItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	inv := b.inventory[u.ID]
	entry, owned := inv[id]
	it := b.findItem(id)
	if !owned || it == nil {
		web.Error(c, http.StatusNotFound, "Item not found in your inventory")
		return
	}

	// 同一分类只保留一件装备
	var unequipped *int64
	for otherID, e := range inv {
		if otherID == id || !e.Equipped {
			continue
		}
		if other := b.findItem(otherID); other != nil && other.Category == it.Category {
			e.Equipped = false
			oid := otherID
			unequipped = &oid
		}
	}
	entry.Equipped = true

	web.OK(c, kidapi.EquipItemResponse{
		Message:          "Equipped " + it.Name,
		EquippedItemID:   it.ID,
		UnequippedItemID: unequipped,
		Category:         it.Category,
	})
}
