package extract

import (
	"testing"
)

func TestExtract_ValidJSON(t *testing.T) {
	raw := `{
		"items": [
			{"original_name": "Mapo Tofu", "translated_name": "Mapo Tofu", "price": "¥28", "confidence": 0.95, "category": "main"},
			{"original_name": "Spring Rolls", "price": "¥12", "confidence": 0.9}
		],
		"detected_language": "zh",
		"confidence": 0.92
	}`

	dishes := Extract(raw)

	if len(dishes) != 2 {
		t.Fatalf("expected 2 dishes, got %d", len(dishes))
	}
	if dishes[0].OriginalName != "Mapo Tofu" {
		t.Errorf("expected Mapo Tofu, got %q", dishes[0].OriginalName)
	}
	if dishes[0].Price != "¥28" {
		t.Errorf("expected price ¥28, got %q", dishes[0].Price)
	}
	if dishes[0].Confidence != 0.95 {
		t.Errorf("expected confidence 0.95, got %f", dishes[0].Confidence)
	}
	if dishes[0].Category != "main" {
		t.Errorf("expected category main, got %q", dishes[0].Category)
	}
	if dishes[0].ID == "" || dishes[1].ID == "" {
		t.Error("expected synthetic ids to be assigned")
	}
	if dishes[0].ID == dishes[1].ID {
		t.Error("expected distinct ids")
	}
}

func TestExtract_FirstBalancedObjectWins(t *testing.T) {
	raw := `Here is the menu: {"items": [{"original_name": "Pad Thai", "confidence": 0.9}]} trailing garbage {"items": []}`

	dishes := Extract(raw)

	if len(dishes) != 1 {
		t.Fatalf("expected 1 dish, got %d", len(dishes))
	}
	if dishes[0].OriginalName != "Pad Thai" {
		t.Errorf("expected Pad Thai, got %q", dishes[0].OriginalName)
	}
}

func TestExtract_FencedEqualsDirect(t *testing.T) {
	inner := `{"items": [{"original_name": "Tom Yum", "price": "$9.50", "confidence": 0.9}]}`
	fenced := "```json\n" + inner + "\n```"

	direct := Extract(inner)
	unfenced := Extract(fenced)

	if len(direct) != len(unfenced) {
		t.Fatalf("expected same record count, got %d vs %d", len(direct), len(unfenced))
	}
	for i := range direct {
		if direct[i] != unfenced[i] {
			t.Errorf("record %d differs: %+v vs %+v", i, direct[i], unfenced[i])
		}
	}
}

func TestExtract_LineFallback(t *testing.T) {
	dishes := Extract("Kung Pao Chicken: $12.99\nFried Rice")

	if len(dishes) != 2 {
		t.Fatalf("expected 2 dishes, got %d", len(dishes))
	}

	if dishes[0].OriginalName != "Kung Pao Chicken" {
		t.Errorf("expected Kung Pao Chicken, got %q", dishes[0].OriginalName)
	}
	if dishes[0].Price != "$12.99" {
		t.Errorf("expected price $12.99, got %q", dishes[0].Price)
	}
	if dishes[0].Confidence != 0.8 {
		t.Errorf("expected confidence 0.8, got %f", dishes[0].Confidence)
	}

	if dishes[1].OriginalName != "Fried Rice" {
		t.Errorf("expected Fried Rice, got %q", dishes[1].OriginalName)
	}
	if dishes[1].Price != "" {
		t.Errorf("expected no price, got %q", dishes[1].Price)
	}
	if dishes[1].Confidence != 0.7 {
		t.Errorf("expected confidence 0.7, got %f", dishes[1].Confidence)
	}
}

func TestExtract_TrailingPrice(t *testing.T) {
	dishes := Extract("Beef Noodles 38元\nGreen Tea ¥15")

	if len(dishes) != 2 {
		t.Fatalf("expected 2 dishes, got %d", len(dishes))
	}
	if dishes[0].Price != "38元" {
		t.Errorf("expected 38元, got %q", dishes[0].Price)
	}
	if dishes[1].Price != "¥15" {
		t.Errorf("expected ¥15, got %q", dishes[1].Price)
	}
	if dishes[0].ImageSearchQuery != "Beef Noodles" {
		t.Errorf("expected cleaned search query, got %q", dishes[0].ImageSearchQuery)
	}
}

func TestExtract_SkipsShortLines(t *testing.T) {
	dishes := Extract("a\n\nDumplings\nx")

	if len(dishes) != 1 {
		t.Fatalf("expected 1 dish, got %d", len(dishes))
	}
	if dishes[0].OriginalName != "Dumplings" {
		t.Errorf("expected Dumplings, got %q", dishes[0].OriginalName)
	}
}

func TestExtract_ProseLineBecomesBareDish(t *testing.T) {
	dishes := Extract("I could not find any menu content in this photo.")
	if len(dishes) != 1 {
		t.Fatalf("expected 1 bare-name dish, got %d", len(dishes))
	}
	if dishes[0].Confidence != 0.7 {
		t.Errorf("expected bare-name confidence 0.7, got %v", dishes[0].Confidence)
	}
	if dishes[0].Price != "" {
		t.Errorf("expected no price, got %q", dishes[0].Price)
	}
}

func TestExtract_Empty(t *testing.T) {
	for _, raw := range []string{"", "\n\n", "a\nb"} {
		if dishes := Extract(raw); len(dishes) != 0 {
			t.Errorf("expected empty result for %q, got %d dishes", raw, len(dishes))
		}
	}
}

func TestMetadata(t *testing.T) {
	lang, conf, ok := Metadata(`{"items": [], "detected_language": "ja", "confidence": 0.87}`)
	if !ok {
		t.Fatal("expected metadata to parse")
	}
	if lang != "ja" {
		t.Errorf("expected ja, got %q", lang)
	}
	if conf != 0.87 {
		t.Errorf("expected 0.87, got %f", conf)
	}

	if _, _, ok := Metadata("no json here"); ok {
		t.Error("expected no metadata for free text")
	}
}

func TestStripPrice(t *testing.T) {
	cases := map[string]string{
		"Kung Pao Chicken $12.99": "Kung Pao Chicken",
		"担担面 18元":                 "担担面",
		"Ramen ¥800":              "Ramen",
		"Plain Dish":              "Plain Dish",
	}
	for in, want := range cases {
		if got := StripPrice(in); got != want {
			t.Errorf("StripPrice(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFilteredLineScan_DropsBoilerplate(t *testing.T) {
	raw := "Please analyze the following menu\nRespond in JSON format\nSpring Rolls"

	dishes, ok := extractFilteredLines(raw)
	if !ok {
		t.Fatal("expected filtered scan to recover a dish")
	}
	if len(dishes) != 1 {
		t.Fatalf("expected 1 dish, got %d", len(dishes))
	}
	if dishes[0].OriginalName != "Spring Rolls" {
		t.Errorf("expected Spring Rolls, got %q", dishes[0].OriginalName)
	}
	if dishes[0].Confidence != 0.7 {
		t.Errorf("expected confidence 0.7, got %f", dishes[0].Confidence)
	}
}
