// Package shop 装扮商店：目录、购买与装备
package shop

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/app/learner/internal/api"
	"github.com/lk2023060901/kidlingo/app/learner/internal/profile"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/lk2023060901/kidlingo/pkg/logger"
)

var (
	ErrItemNotFound     = errors.New("shop: item not found")
	ErrAlreadyOwned     = errors.WithHint(errors.New("shop: item already owned"), "Bé đã có món đồ này rồi!")
	ErrInsufficientGems = errors.WithHint(errors.New("shop: not enough gems"), "Bé chưa đủ đá quý rồi!")
	ErrNotOwned         = errors.WithHint(errors.New("shop: item not owned"), "Bé cần mua món đồ này trước nhé!")
)

// Catalog 商店目录快照，每次 Service.Catalog 整体替换
type Catalog struct {
	mu    sync.RWMutex
	items []kidapi.ShopItem
}

// NewCatalog 由物品列表创建目录
func NewCatalog(items []kidapi.ShopItem) *Catalog {
	return &Catalog{items: append([]kidapi.ShopItem(nil), items...)}
}

// Items 全部物品副本
func (c *Catalog) Items() []kidapi.ShopItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]kidapi.ShopItem(nil), c.items...)
}

// Find 按 ID 查找
func (c *Catalog) Find(id int64) (kidapi.ShopItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return kidapi.ShopItem{}, false
}

// ByCategory 按分类分组，组内按价格排序
func (c *Catalog) ByCategory() map[kidapi.ItemCategory][]kidapi.ShopItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[kidapi.ItemCategory][]kidapi.ShopItem)
	for _, it := range c.items {
		out[it.Category] = append(out[it.Category], it)
	}
	for _, group := range out {
		sort.SliceStable(group, func(i, j int) bool { return group[i].Price < group[j].Price })
	}
	return out
}

// Equipped 已装备的物品
func (c *Catalog) Equipped() []kidapi.ShopItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []kidapi.ShopItem
	for _, it := range c.items {
		if it.IsEquipped {
			out = append(out, it)
		}
	}
	return out
}

func (c *Catalog) markOwned(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].IsOwned = true
		}
	}
}

// markEquipped 装备 id，并卸下同分类的其他物品
func (c *Catalog) markEquipped(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var category kidapi.ItemCategory
	for _, it := range c.items {
		if it.ID == id {
			category = it.Category
		}
	}
	for i := range c.items {
		if c.items[i].Category == category {
			c.items[i].IsEquipped = c.items[i].ID == id
		}
	}
}

// Service 商店服务
type Service struct {
	client *api.Client
	store  *profile.Store
	logger logger.Logger
}

// NewService 创建商店服务
func NewService(client *api.Client, store *profile.Store, l logger.Logger) *Service {
	return &Service{
		client: client,
		store:  store,
		logger: logger.OrNoop(l).Named("shop"),
	}
}

// Catalog 拉取最新目录
func (s *Service) Catalog(ctx context.Context) (*Catalog, error) {
	var items []kidapi.ShopItem
	if err := s.client.Get(ctx, kidapi.PathShopItems, &items); err != nil {
		return nil, errors.Wrap(err, "fetch shop items")
	}
	return NewCatalog(items), nil
}

// Buy 购买物品；宝石不足时不发请求，成功后以服务端余额为准
func (s *Service) Buy(ctx context.Context, catalog *Catalog, itemID int64) (*kidapi.BuyItemResponse, error) {
	item, ok := catalog.Find(itemID)
	if !ok {
		return nil, errors.Wrapf(ErrItemNotFound, "item %d", itemID)
	}
	if item.IsOwned {
		return nil, ErrAlreadyOwned
	}
	if gems := s.store.Snapshot().Gems; gems < item.Price {
		return nil, errors.Wrapf(ErrInsufficientGems, "have %d, need %d", gems, item.Price)
	}

	var resp kidapi.BuyItemResponse
	if err := s.client.Post(ctx, kidapi.PathShopBuy, kidapi.BuyItemRequest{ItemID: itemID}, &resp); err != nil {
		return nil, errors.Wrapf(err, "buy item %d", itemID)
	}
	s.store.Dispatch("shop_buy", profile.GemsSet{Gems: resp.RemainingGems})
	catalog.markOwned(itemID)
	s.logger.InfoContext(ctx, "item purchased", "item_id", itemID, "remaining_gems", resp.RemainingGems)
	return &resp, nil
}

// Equip 装备物品
func (s *Service) Equip(ctx context.Context, catalog *Catalog, itemID int64) (*kidapi.EquipItemResponse, error) {
	item, ok := catalog.Find(itemID)
	if !ok {
		return nil, errors.Wrapf(ErrItemNotFound, "item %d", itemID)
	}
	if !item.IsOwned {
		return nil, ErrNotOwned
	}

	var resp kidapi.EquipItemResponse
	if err := s.client.Post(ctx, kidapi.EquipPath(itemID), nil, &resp); err != nil {
		return nil, errors.Wrapf(err, "equip item %d", itemID)
	}
	catalog.markEquipped(itemID)
	return &resp, nil
}

// BuyMessage 购买成功提示
func BuyMessage(resp *kidapi.BuyItemResponse) string {
	return fmt.Sprintf("Mua thành công %s! Còn lại %d 💎", resp.ItemName, resp.RemainingGems)
}
