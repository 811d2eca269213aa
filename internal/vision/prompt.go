package vision

import "fmt"

// BuildMenuPrompt asks the model for the strict JSON document the
// extractor's first strategy parses directly. targetLang is resolved by
// the caller's language-detection heuristic.
func BuildMenuPrompt(targetLang string) string {
	return fmt.Sprintf(`
You are a menu digitization engine.

Look at the attached photo of a restaurant menu and extract every dish.
Translate each dish name into %s.

Output STRICT JSON only:
- Output MUST start with { and end with }.
- NO markdown fences.
- NO explanations.

Required schema:
{
  "items": [
    {
      "original_name": "string",
      "translated_name": "string",
      "description": "string",
      "price": "string, keep the currency symbol",
      "confidence": 0.0,
      "category": "string",
      "image_search_query": "string, the dish name cleaned for image search"
    }
  ],
  "detected_language": "ISO language code of the menu text",
  "confidence": 0.0
}

If no dishes are readable, return {"items": [], "detected_language": "", "confidence": 0}.
`, targetLang)
}
