package cart

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// BadgeLimit is the largest count the badge text shows in full
const BadgeLimit = 99

// Summary represents calculated totals over the selected items
type Summary struct {
	GoodsAmount   decimal.Decimal `json:"goods_amount"`
	SelectedCount int             `json:"selected_count"`
	AllSelected   bool            `json:"all_selected"`
}

// Aggregate sums the selected items. The result does not depend on item order.
func Aggregate(items []LineItem) Summary {
	summary := Summary{
		GoodsAmount: decimal.Zero,
		AllSelected: len(items) > 0,
	}

	for _, item := range items {
		if !item.Selected {
			summary.AllSelected = false
			continue
		}
		summary.SelectedCount += item.Quantity
		summary.GoodsAmount = summary.GoodsAmount.Add(item.Subtotal())
	}

	return summary
}

// Badge is the item count shown on the cart icon
type Badge struct {
	Count int    `json:"count"`
	Text  string `json:"text"`
}

// BadgeNotifier receives the badge after every cart mutation
type BadgeNotifier func(Badge)

// NewBadge builds the badge for a total quantity
func NewBadge(count int) Badge {
	switch {
	case count <= 0:
		return Badge{Count: 0, Text: ""}
	case count > BadgeLimit:
		return Badge{Count: count, Text: strconv.Itoa(BadgeLimit) + "+"}
	default:
		return Badge{Count: count, Text: strconv.Itoa(count)}
	}
}

// TotalQuantity is the sum of quantities over all items, selected or not
func TotalQuantity(items []LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}
