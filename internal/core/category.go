package core

// Category is a fixed classification tag for transactions. The catalog is
// defined here once and is immutable for the process lifetime; it is not
// user-editable. Name is the canonical (non-localized) display name used in
// exports.
type Category struct {
	ID    string
	Name  string
	Icon  string
	Color string
	Type  TransactionType

	localized map[Language]string
}

var catalog = []Category{
	{ID: "food", Name: "Food & Dining", Icon: "utensils", Color: "amber", Type: Expense,
		localized: map[Language]string{German: "Essen & Trinken", Chinese: "餐饮"}},
	{ID: "transport", Name: "Transport", Icon: "bus", Color: "sky", Type: Expense,
		localized: map[Language]string{German: "Verkehr", Chinese: "交通"}},
	{ID: "housing", Name: "Housing", Icon: "home", Color: "stone", Type: Expense,
		localized: map[Language]string{German: "Wohnen", Chinese: "住房"}},
	{ID: "shopping", Name: "Shopping", Icon: "shopping-bag", Color: "pink", Type: Expense,
		localized: map[Language]string{German: "Einkaufen", Chinese: "购物"}},
	{ID: "entertainment", Name: "Entertainment", Icon: "film", Color: "violet", Type: Expense,
		localized: map[Language]string{German: "Unterhaltung", Chinese: "娱乐"}},
	{ID: "health", Name: "Health", Icon: "heart-pulse", Color: "red", Type: Expense,
		localized: map[Language]string{German: "Gesundheit", Chinese: "医疗健康"}},
	{ID: "education", Name: "Education", Icon: "book", Color: "emerald", Type: Expense,
		localized: map[Language]string{German: "Bildung", Chinese: "教育"}},
	{ID: "travel", Name: "Travel", Icon: "plane", Color: "cyan", Type: Expense,
		localized: map[Language]string{German: "Reisen", Chinese: "旅行"}},
	{ID: "other-expense", Name: "Other", Icon: "ellipsis", Color: "gray", Type: Expense,
		localized: map[Language]string{German: "Sonstiges", Chinese: "其他"}},

	{ID: "salary", Name: "Salary", Icon: "briefcase", Color: "green", Type: Income,
		localized: map[Language]string{German: "Gehalt", Chinese: "工资"}},
	{ID: "bonus", Name: "Bonus", Icon: "gift", Color: "lime", Type: Income,
		localized: map[Language]string{German: "Bonus", Chinese: "奖金"}},
	{ID: "investment", Name: "Investment", Icon: "trending-up", Color: "teal", Type: Income,
		localized: map[Language]string{German: "Kapitalerträge", Chinese: "投资收益"}},
	{ID: "other-income", Name: "Other Income", Icon: "coins", Color: "yellow", Type: Income,
		localized: map[Language]string{German: "Sonstige Einnahmen", Chinese: "其他收入"}},
}

var catalogByID = func() map[string]Category {
	m := make(map[string]Category, len(catalog))
	for _, c := range catalog {
		m[c.ID] = c
	}
	return m
}()

// LocalizedName returns the display name for the given locale, falling back
// to the canonical name.
func (c Category) LocalizedName(lang Language) string {
	if n, ok := c.localized[lang]; ok {
		return n
	}
	return c.Name
}

// Categories returns a copy of the full catalog.
func Categories() []Category {
	out := make([]Category, len(catalog))
	copy(out, catalog)
	return out
}

// CategoriesByType returns the catalog entries of one transaction type, in
// catalog order.
func CategoriesByType(t TransactionType) []Category {
	var out []Category
	for _, c := range catalog {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// CategoryByID resolves a category id. Stored transactions may reference ids
// unknown to the catalog; callers must treat a false return as "no match"
// and degrade, never fail.
func CategoryByID(id string) (Category, bool) {
	c, ok := catalogByID[id]
	return c, ok
}
