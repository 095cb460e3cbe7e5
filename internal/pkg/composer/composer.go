package composer

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Item is the flat generated-content shape produced by the generation backend
// and stored in history. Identity is the ID; items are never mutated.
type Item struct {
	ID            string    `json:"id"`
	Format        string    `json:"format"`
	VariantNumber int       `json:"variant_number"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
}

// Variant is one labeled alternative inside a group.
type Variant struct {
	ID      string `json:"id"`
	Number  int    `json:"variant_number"`
	Label   string `json:"label,omitempty"`
	Content string `json:"content"`
}

// Group is a display-ready set of variants for one format. Groups are derived
// on every call and never stored. A degenerate group holds a single item and
// renders as plain content without a selector or position label.
type Group struct {
	Format     string    `json:"format"`
	Variants   []Variant `json:"variants"`
	Degenerate bool      `json:"degenerate"`
}

// ErrorSentinelPrefix marks an item whose content is a backend generation
// failure rather than usable text. Such items never reach a composed group.
const ErrorSentinelPrefix = "[generation-error]"

// IsErrorContent reports whether the content denotes a failed generation.
func IsErrorContent(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), ErrorSentinelPrefix)
}

// formatPriority fixes the display order of format groups so the generation
// screen, history and the scheduler picker always agree. Unknown formats keep
// their first-seen order after the known ones.
var formatPriority = map[string]int{
	"linkedin":   0,
	"instagram":  1,
	"tiktok":     2,
	"twitter":    3,
	"email":      4,
	"persuasive": 5,
}

// PositionLabel names a variant by its position within the group, not by the
// stored variant number.
func PositionLabel(index int) string {
	switch index {
	case 0:
		return "Balanced"
	case 1:
		return "Bold"
	case 2:
		return "Alternative"
	default:
		return "Variant " + strconv.Itoa(index+1)
	}
}

// Compose partitions items by format, orders variants within each partition by
// variant number, labels them by position and orders the partitions by the
// fixed priority table. Error-sentinel items are dropped. Deterministic and
// order-stable for the same input; empty input yields an empty slice.
func Compose(items []Item) []Group {
	partitions := make(map[string][]Item)
	firstSeen := make(map[string]int)
	order := make([]string, 0, len(formatPriority))

	for _, item := range items {
		if IsErrorContent(item.Content) {
			continue
		}
		if _, ok := partitions[item.Format]; !ok {
			firstSeen[item.Format] = len(order)
			order = append(order, item.Format)
		}
		partitions[item.Format] = append(partitions[item.Format], item)
	}

	sort.SliceStable(order, func(i, j int) bool {
		pi, iKnown := formatPriority[order[i]]
		pj, jKnown := formatPriority[order[j]]
		switch {
		case iKnown && jKnown:
			return pi < pj
		case iKnown:
			return true
		case jKnown:
			return false
		default:
			return firstSeen[order[i]] < firstSeen[order[j]]
		}
	})

	groups := make([]Group, 0, len(order))
	for _, format := range order {
		part := partitions[format]
		sort.SliceStable(part, func(i, j int) bool {
			return part[i].VariantNumber < part[j].VariantNumber
		})

		group := Group{
			Format:     format,
			Variants:   make([]Variant, 0, len(part)),
			Degenerate: len(part) == 1,
		}
		for i, item := range part {
			v := Variant{
				ID:      item.ID,
				Number:  item.VariantNumber,
				Content: item.Content,
			}
			if !group.Degenerate {
				v.Label = PositionLabel(i)
			}
			group.Variants = append(group.Variants, v)
		}
		groups = append(groups, group)
	}

	return groups
}
