package extract

import (
	"encoding/json"
	"strings"

	"menureader/internal/menu"
)

// itemsDoc is the structured document the vision prompt asks for.
type itemsDoc struct {
	Items []menu.Dish `json:"items"`
}

// docMeta is the document-level metadata riding next to items.
type docMeta struct {
	DetectedLanguage string  `json:"detected_language"`
	Confidence       float64 `json:"confidence"`
}

// Metadata pulls the document-level detected language and confidence out
// of a structured response, when one is present.
func Metadata(raw string) (lang string, confidence float64, ok bool) {
	obj, found := balancedObject(raw)
	if !found {
		return "", 0, false
	}
	var meta docMeta
	if err := json.Unmarshal([]byte(obj), &meta); err != nil {
		return "", 0, false
	}
	return meta.DetectedLanguage, meta.Confidence, meta.DetectedLanguage != "" || meta.Confidence > 0
}

// balancedObject returns the minimal balanced JSON object starting at the
// first '{'. The first balanced object wins even when trailing content
// follows.
func balancedObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	end := -1

scan:
	for i := start; i < len(raw); i++ {
		c := raw[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				end = i
				break scan
			}
		}
	}

	if end == -1 {
		return "", false
	}
	return raw[start : end+1], true
}

func extractBalancedJSON(raw string) ([]menu.Dish, bool) {
	obj, ok := balancedObject(raw)
	if !ok {
		return nil, false
	}

	var doc itemsDoc
	if err := json.Unmarshal([]byte(obj), &doc); err != nil {
		return nil, false
	}
	if len(doc.Items) == 0 {
		return nil, false
	}
	return doc.Items, true
}

// extractFencedJSON strips markdown code fences and re-attempts a parse of
// the cleaned text. Cleaned text without an items key counts as a miss.
func extractFencedJSON(raw string) ([]menu.Dish, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &probe); err != nil {
		return nil, false
	}
	if _, ok := probe["items"]; !ok {
		return nil, false
	}

	var doc itemsDoc
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, false
	}
	if len(doc.Items) == 0 {
		return nil, false
	}
	return doc.Items, true
}

// extractLines applies the name/price heuristics line by line.
func extractLines(raw string) ([]menu.Dish, bool) {
	return scanLines(raw, false)
}

// extractFilteredLines is the last resort: identical line scan but prompt
// boilerplate is discarded first.
func extractFilteredLines(raw string) ([]menu.Dish, bool) {
	return scanLines(raw, true)
}

// Boilerplate markers that flag prompt echo rather than menu content.
var boilerplateMarkers = []string{"analyze", "format", "json"}

func isBoilerplate(line string) bool {
	lower := strings.ToLower(line)
	for _, m := range boilerplateMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func scanLines(raw string, filtered bool) ([]menu.Dish, bool) {
	var dishes []menu.Dish

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 2 {
			continue
		}
		if filtered && isBoilerplate(line) {
			continue
		}

		if d, ok := parseLine(line); ok {
			if filtered {
				d.Confidence = 0.7
			}
			dishes = append(dishes, d)
		}
	}

	if len(dishes) == 0 {
		return nil, false
	}
	return dishes, true
}

// parseLine tries "name: price", then "name price", else bare name.
func parseLine(line string) (menu.Dish, bool) {
	// "name: price", split on the last colon so names containing colons survive
	for _, sep := range []string{":", "："} {
		if idx := strings.LastIndex(line, sep); idx > 0 {
			name := strings.TrimSpace(line[:idx])
			price := strings.TrimSpace(line[idx+len(sep):])
			if len(name) >= 2 && onlyPrice.MatchString(price) {
				return menu.Dish{
					OriginalName: name,
					Price:        price,
					Confidence:   0.8,
				}, true
			}
		}
	}

	// "name price", a currency token trailing the line
	if loc := trailingPrice.FindStringIndex(line); loc != nil {
		name := strings.TrimSpace(line[:loc[0]])
		if len(name) >= 2 {
			return menu.Dish{
				OriginalName: name,
				Price:        strings.TrimSpace(line[loc[0]:loc[1]]),
				Confidence:   0.8,
			}, true
		}
	}

	// bare dish name
	return menu.Dish{
		OriginalName: line,
		Confidence:   0.7,
	}, true
}
