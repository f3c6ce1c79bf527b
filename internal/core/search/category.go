package search

import "sort"

// ingredientCategories 分類與食材關鍵字對照表，啟動後唯讀
var ingredientCategories = map[string][]string{
	"Meat": {
		"beef", "pork", "chicken", "turkey", "lamb", "duck", "bacon", "ham",
		"sausage", "venison", "fish", "salmon", "tuna", "shrimp", "crab",
		"lobster", "steak",
	},
	"Veggies": {
		"lettuce", "spinach", "carrot", "broccoli", "cauliflower", "kale",
		"tomato", "cucumber", "pepper", "zucchini", "eggplant", "asparagus",
		"onion", "garlic", "mushroom", "potato", "sweet potato",
	},
	"Bread": {"bread", "flour", "yeast", "bagel", "bun", "roll", "sourdough"},
	"Desserts": {
		"chocolate", "sugar", "cream", "butter", "honey", "vanilla", "cake",
		"cupcake", "cookie", "brownie", "pie", "pastry",
	},
	"Keto": {
		"almond flour", "coconut flour", "stevia", "avocado", "cheese",
		"cauliflower", "zucchini", "chicken",
	},
	"Breaky": {"egg", "bacon", "toast", "muffin"},
	"Drinks": {"drink"},
}

// Keywords 取得分類的關鍵字副本，未知分類回傳空列表
func Keywords(category string) []string {
	kws := ingredientCategories[category]
	out := make([]string, len(kws))
	copy(out, kws)
	return out
}

// Categories 取得所有分類名稱（已排序）
func Categories() []string {
	names := make([]string, 0, len(ingredientCategories))
	for name := range ingredientCategories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
