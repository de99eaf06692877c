package carousel

// FilterAll selects every item.
const FilterAll = "all"

// Item is one slide. Items are read-only to the controller.
type Item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Category    string `json:"category"`
}

// FilterItems returns the items whose Category equals category, or a copy of
// all items for FilterAll and the empty string.
func FilterItems(items []Item, category string) []Item {
	if category == "" || category == FilterAll {
		out := make([]Item, len(items))
		copy(out, items)
		return out
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out
}
