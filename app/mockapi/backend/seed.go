package backend

import (
	"time"

	"github.com/lk2023060901/kidlingo/pkg/kidapi"
)

func ptr[T any](v T) *T { return &v }

// seed 内置课程、单词、商店与宝石包
func (b *Backend) seed() {
	b.units = []unit{
		{ID: 1, Title: "Unit 1: Animals", OrderIndex: 1},
		{ID: 2, Title: "Unit 2: Colors", OrderIndex: 2},
	}

	b.lessons = []*lesson{
		{
			Lesson: kidapi.Lesson{
				ID: 1, UnitID: 1, Title: "Cat: Meet the cat", LessonType: kidapi.LessonVocabulary, OrderIndex: 1,
				VideoURL: ptr("https://cdn.kidlingo.test/video/cat.mp4"), PronunciationWord: ptr("cat"),
				Questions: []kidapi.Question{
					{ID: 1, Text: "Which one says meow?", Options: []string{"cat", "dog", "cow"}, CorrectAnswer: "cat"},
					{ID: 2, Text: "A baby cat is a ...", Options: []string{"puppy", "kitten", "calf"}, CorrectAnswer: "kitten"},
				},
			},
			Vocabulary:   []string{"cat", "kitten"},
			VideoSeconds: 240,
		},
		{
			Lesson: kidapi.Lesson{
				ID: 2, UnitID: 1, Title: "Dog: Good boy", LessonType: kidapi.LessonVocabulary, OrderIndex: 2,
				VideoURL: ptr("https://cdn.kidlingo.test/video/dog.mp4"),
				Questions: []kidapi.Question{
					{ID: 3, Text: "Which one says woof?", Options: []string{"cat", "dog", "bird"}, CorrectAnswer: "dog"},
				},
			},
			Vocabulary:   []string{"dog", "puppy"},
			VideoSeconds: 180,
		},
		{
			Lesson: kidapi.Lesson{
				ID: 3, UnitID: 1, Title: "Animal quiz", LessonType: kidapi.LessonQuiz, OrderIndex: 3,
				Questions: []kidapi.Question{
					{ID: 4, Text: "Meow?", Options: []string{"cat", "dog"}, CorrectAnswer: "cat"},
					{ID: 5, Text: "Woof?", Options: []string{"cat", "dog"}, CorrectAnswer: "dog"},
					{ID: 6, Text: "Moo?", Options: []string{"cow", "dog"}, CorrectAnswer: "cow"},
					{ID: 7, Text: "Tweet?", Options: []string{"bird", "cow"}, CorrectAnswer: "bird"},
					{ID: 8, Text: "Quack?", Options: []string{"duck", "bird"}, CorrectAnswer: "duck"},
				},
			},
		},
		{
			Lesson: kidapi.Lesson{
				ID: 4, UnitID: 2, Title: "Red: The red apple", LessonType: kidapi.LessonPhonics, OrderIndex: 1,
				VideoURL: ptr("https://cdn.kidlingo.test/video/red.mp4"), PronunciationWord: ptr("red"),
			},
			Vocabulary:   []string{"red", "apple"},
			VideoSeconds: 300,
		},
	}

	words := []struct{ word, meaning string }{
		{"cat", "con mèo"}, {"kitten", "mèo con"}, {"dog", "con chó"}, {"puppy", "chó con"},
		{"red", "màu đỏ"}, {"apple", "quả táo"},
	}
	for i, w := range words {
		lessonID := int64(0)
		for _, l := range b.lessons {
			for _, v := range l.Vocabulary {
				if v == w.word {
					lessonID = l.ID
				}
			}
		}
		b.vocab = append(b.vocab, kidapi.Vocabulary{
			ID:              int64(i + 1),
			Word:            w.word,
			Meaning:         w.meaning,
			ExampleSentence: ptr("This is a " + w.word + "."),
			LessonID:        lessonID,
		})
	}

	b.items = []kidapi.ShopItem{
		{ID: 1, Name: "Default body", Price: 0, Category: kidapi.CategoryBody, LayerOrder: 1, ImageURL: "/static/items/body.png"},
		{ID: 2, Name: "Red cap", Price: 50, Category: kidapi.CategoryHat, LayerOrder: 5, ImageURL: "/static/items/red-cap.png"},
		{ID: 3, Name: "Wizard hat", Price: 120, Category: kidapi.CategoryHat, LayerOrder: 5, ImageURL: "/static/items/wizard.png"},
		{ID: 4, Name: "Sunglasses", Price: 80, Category: kidapi.CategoryGlasses, LayerOrder: 4, ImageURL: "/static/items/sun.png"},
		{ID: 5, Name: "Space", Price: 200, Category: kidapi.CategoryBackground, LayerOrder: 0, ImageURL: "/static/items/space.png"},
		{ID: 6, Name: "Rocket shirt", Price: 60, Category: kidapi.CategoryShirt, LayerOrder: 3, ImageURL: "/static/items/rocket.png"},
	}

	b.gemPacks = []kidapi.GemPack{
		{ID: 1, Name: "Túi nhỏ", GemAmount: 100, TotalGems: 100, PriceVND: 10000, IsActive: true, OrderIndex: 1},
		{ID: 2, Name: "Túi vừa", GemAmount: 500, BonusGemPercent: 10, TotalGems: 550, PriceVND: 45000, IsActive: true, OrderIndex: 2},
		{ID: 3, Name: "Rương lớn", GemAmount: 1000, BonusGemPercent: 20, TotalGems: 1200, PriceVND: 80000, IsActive: true, OrderIndex: 3},
		{ID: 4, Name: "Kho báu", GemAmount: 2000, BonusGemPercent: 25, TotalGems: 2500, PriceVND: 150000, IsActive: false, OrderIndex: 4},
	}

	now := b.now()
	b.coupons = map[string]*Coupon{
		"KID10":   {Code: "KID10", DiscountType: DiscountPercent, DiscountValue: 10, IsActive: true, ExpiryDate: now.AddDate(1, 0, 0), MaxUsage: 100},
		"FIX5K":   {Code: "FIX5K", DiscountType: DiscountFixed, DiscountValue: 5000, IsActive: true, ExpiryDate: now.AddDate(1, 0, 0), MaxUsage: 100},
		"OLD":     {Code: "OLD", DiscountType: DiscountPercent, DiscountValue: 50, IsActive: true, ExpiryDate: now.Add(-24 * time.Hour), MaxUsage: 100},
		"OFF":     {Code: "OFF", DiscountType: DiscountPercent, DiscountValue: 50, IsActive: false, ExpiryDate: now.AddDate(1, 0, 0), MaxUsage: 100},
		"USED":    {Code: "USED", DiscountType: DiscountPercent, DiscountValue: 50, IsActive: true, ExpiryDate: now.AddDate(1, 0, 0), MaxUsage: 1, UsageCount: 1},
		"FREE100": {Code: "FREE100", DiscountType: DiscountFixed, DiscountValue: 1_000_000, IsActive: true, ExpiryDate: now.AddDate(1, 0, 0), MaxUsage: 100},
	}
}
