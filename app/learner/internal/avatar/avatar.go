// Package avatar 按图层叠放已装备的装扮
package avatar

import (
	"sort"

	"github.com/lk2023060901/kidlingo/app/learner/internal/shop"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
)

// Fit 图层缩放方式
type Fit string

const (
	FitCover   Fit = "cover"
	FitContain Fit = "contain"
)

const (
	DefaultBodyURL       = "https://cdn-icons-png.flaticon.com/512/4825/4825038.png"
	DefaultBackgroundURL = "https://images.unsplash.com/photo-1579546929518-9e396f3cc809?w=400&q=80"
)

// Layer 一个图层；默认图层的 ID 为负数
type Layer struct {
	ID         int64
	Category   kidapi.ItemCategory
	ImageURL   string
	LayerOrder int
	Fit        Fit
}

// Compose 缺少身体或背景时补默认图层，再按 layer_order 稳定排序
func Compose(items []kidapi.ShopItem) []Layer {
	layers := make([]Layer, 0, len(items)+2)
	hasBody, hasBackground := false, false
	for _, it := range items {
		switch it.Category {
		case kidapi.CategoryBody:
			hasBody = true
		case kidapi.CategoryBackground:
			hasBackground = true
		}
		layers = append(layers, newLayer(it.ID, it.Category, it.ImageURL, it.LayerOrder))
	}
	if !hasBody {
		layers = append(layers, newLayer(-1, kidapi.CategoryBody, DefaultBodyURL, 1))
	}
	if !hasBackground {
		layers = append(layers, newLayer(-2, kidapi.CategoryBackground, DefaultBackgroundURL, 0))
	}

	sort.SliceStable(layers, func(i, j int) bool { return layers[i].LayerOrder < layers[j].LayerOrder })
	return layers
}

// FromCatalog 由目录中已装备的物品组成头像
func FromCatalog(c *shop.Catalog) []Layer {
	return Compose(c.Equipped())
}

func newLayer(id int64, category kidapi.ItemCategory, url string, order int) Layer {
	fit := FitContain
	if category == kidapi.CategoryBackground {
		fit = FitCover
	}
	return Layer{ID: id, Category: category, ImageURL: url, LayerOrder: order, Fit: fit}
}
