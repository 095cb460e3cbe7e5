package composer

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeEmpty(t *testing.T) {
	assert.Empty(t, Compose(nil))
	assert.Empty(t, Compose([]Item{}))
}

func TestComposeGroupsAndLabels(t *testing.T) {
	items := []Item{
		{ID: "a", Format: "linkedin", VariantNumber: 1, Content: "A"},
		{ID: "b", Format: "linkedin", VariantNumber: 2, Content: "B"},
		{ID: "c", Format: "instagram", VariantNumber: 1, Content: "C"},
	}

	groups := Compose(items)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	linkedin := groups[0]
	assert.Equal(t, "linkedin", linkedin.Format)
	assert.False(t, linkedin.Degenerate)
	assert.Equal(t, []string{"A", "B"}, contents(linkedin))
	assert.Equal(t, "Balanced", linkedin.Variants[0].Label)
	assert.Equal(t, "Bold", linkedin.Variants[1].Label)

	instagram := groups[1]
	assert.Equal(t, "instagram", instagram.Format)
	assert.True(t, instagram.Degenerate)
	assert.Equal(t, []string{"C"}, contents(instagram))
	assert.Empty(t, instagram.Variants[0].Label, "degenerate groups carry no position label")
}

func TestComposeSortsVariantsByNumber(t *testing.T) {
	items := []Item{
		{ID: "3", Format: "email", VariantNumber: 3, Content: "third"},
		{ID: "1", Format: "email", VariantNumber: 1, Content: "first"},
		{ID: "2", Format: "email", VariantNumber: 2, Content: "second"},
	}

	groups := Compose(items)
	if len(groups) != 1 {
		t.Fatalf("expected a single group, got %d", len(groups))
	}
	assert.Equal(t, []string{"first", "second", "third"}, contents(groups[0]))
	assert.Equal(t, []string{"Balanced", "Bold", "Alternative"}, labels(groups[0]))
}

func TestComposeFormatPriority(t *testing.T) {
	items := []Item{
		{ID: "1", Format: "email", VariantNumber: 1, Content: "e"},
		{ID: "2", Format: "somethingnew", VariantNumber: 1, Content: "x"},
		{ID: "3", Format: "tiktok", VariantNumber: 1, Content: "t"},
		{ID: "4", Format: "linkedin", VariantNumber: 1, Content: "l"},
		{ID: "5", Format: "othernew", VariantNumber: 1, Content: "y"},
	}

	groups := Compose(items)
	var order []string
	for _, g := range groups {
		order = append(order, g.Format)
	}
	// Known formats by priority, unknown formats in first-seen order.
	assert.Equal(t, []string{"linkedin", "tiktok", "email", "somethingnew", "othernew"}, order)
}

func TestComposeExcludesErrorSentinels(t *testing.T) {
	items := []Item{
		{ID: "1", Format: "linkedin", VariantNumber: 1, Content: "good one"},
		{ID: "2", Format: "linkedin", VariantNumber: 2, Content: ErrorSentinelPrefix + " model timeout"},
		{ID: "3", Format: "linkedin", VariantNumber: 3, Content: "good two"},
	}

	groups := Compose(items)
	if len(groups) != 1 {
		t.Fatalf("expected a single group, got %d", len(groups))
	}
	assert.Equal(t, []string{"good one", "good two"}, contents(groups[0]))
	// Labels follow position, not the stored variant number.
	assert.Equal(t, []string{"Balanced", "Bold"}, labels(groups[0]))
}

func TestComposeAllErrorItemsYieldNoGroup(t *testing.T) {
	items := []Item{
		{ID: "1", Format: "twitter", VariantNumber: 1, Content: ErrorSentinelPrefix + " a"},
		{ID: "2", Format: "twitter", VariantNumber: 2, Content: "  " + ErrorSentinelPrefix + " b"},
	}
	assert.Empty(t, Compose(items))
}

func TestComposeDeterministic(t *testing.T) {
	items := []Item{
		{ID: "1", Format: "instagram", VariantNumber: 2, Content: "B"},
		{ID: "2", Format: "instagram", VariantNumber: 1, Content: "A"},
		{ID: "3", Format: "twitter", VariantNumber: 1, Content: "T"},
	}

	first := Compose(items)
	for i := 0; i < 10; i++ {
		if !reflect.DeepEqual(first, Compose(items)) {
			t.Fatalf("compose must be deterministic across repeated calls")
		}
	}
}

func TestPositionLabelDefensiveDefault(t *testing.T) {
	assert.Equal(t, "Variant 4", PositionLabel(3))
	assert.Equal(t, "Variant 7", PositionLabel(6))
}

func contents(g Group) []string {
	out := make([]string, 0, len(g.Variants))
	for _, v := range g.Variants {
		out = append(out, v.Content)
	}
	return out
}

func labels(g Group) []string {
	out := make([]string, 0, len(g.Variants))
	for _, v := range g.Variants {
		out = append(out, v.Label)
	}
	return out
}
