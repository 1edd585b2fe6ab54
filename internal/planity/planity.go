// internal/planity/planity.go
// Normalization of Planity pricing payloads. Planity's export format varies
// between accounts (nested categories, flat service lists, data/result
// wrappers), so the walker is deliberately tolerant.
package planity

import (
	"regexp"
	"strconv"
	"strings"
)

const DefaultCurrency = "EUR"

// ServiceEntry is one priced prestation. Price is nil for "on quote" entries.
type ServiceEntry struct {
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name"`
	Price    *float64 `json:"price"`
	Currency string   `json:"currency,omitempty"`
}

// Category groups services under a pricing section title.
type Category struct {
	ID       string         `json:"id,omitempty"`
	Title    string         `json:"title"`
	Services []ServiceEntry `json:"services"`
}

// FallbackCategories is the hardcoded price list served when the Planity
// endpoint is unconfigured or unreachable.
func FallbackCategories() []Category {
	price := func(v float64) *float64 { return &v }
	return []Category{
		{
			Title: "Cheveux",
			Services: []ServiceEntry{
				{Name: "Coupe simple", Price: price(20)},
				{Name: "Coupe simple au ciseaux", Price: price(25)},
				{Name: "Coupe simple au ciseaux + barbe", Price: price(35)},
				{Name: "Coupe court femme", Price: price(35)},
				{Name: "Coupe enfant -16 ans", Price: price(15)},
				{Name: "Supplément Coloration / Décoloration", Price: nil},
				{Name: "Coupe + barbe", Price: price(30)},
				{Name: "Dessin", Price: price(5)},
				{Name: "TRANSFORMATION", Price: price(30)},
				{Name: "TRANSFORMATION + BARBE", Price: price(40)},
			},
		},
		{
			Title: "Barbe",
			Services: []ServiceEntry{
				{Name: "Contours", Price: price(15)},
				{Name: "Taillage", Price: price(20)},
			},
		},
		{
			Title: "Shampooing & soins",
			Services: []ServiceEntry{
				{Name: "Shampooing", Price: price(5)},
				{Name: "Shampooing et soin cheveux longs", Price: price(10)},
				{Name: "Soins barbe", Price: price(15)},
				{Name: "Soins cheveux", Price: price(15)},
			},
		},
		{
			Title: "Colorations et defrisage",
			Services: []ServiceEntry{
				{Name: "Coloration noir (court, une dose)", Price: price(15)},
				{Name: "Coloration (court, une dose)", Price: price(25)},
				{Name: "Décoloration (court, une dose)", Price: price(20)},
				{Name: "Défrisage", Price: price(15)},
			},
		},
		{
			Title: "DREADLOCKS",
			Services: []ServiceEntry{
				{Name: "DEPART LOCKS - TWIST", Price: price(70)},
				{Name: "TWIST 1 (-100 LOCKS)", Price: price(60)},
				{Name: "TWIST 1 & SHAMPOO", Price: price(95)},
				{Name: "TWIST 2 (101 à 150 LOCKS)", Price: price(80)},
				{Name: "TWIST 2 & SHAMPOO", Price: price(115)},
				{Name: "DEPART LOCKS - CROCHET", Price: price(80)},
				{Name: "CROCHET 1 (-80 LOCKS)", Price: price(70)},
				{Name: "CROCHET 1 & SHAMPOO", Price: price(105)},
				{Name: "CROCHET 2 (81 à 120 LOCKS)", Price: price(110)},
				{Name: "CROCHET 2 & SHAMPOO", Price: price(145)},
			},
		},
	}
}

// Normalize extracts pricing categories from a decoded Planity payload.
// Returns an empty slice when nothing usable is found.
func Normalize(payload any) []Category {
	if payload == nil {
		return nil
	}

	if list, ok := payload.([]any); ok {
		var categories []Category
		for _, item := range list {
			if record, ok := item.(map[string]any); ok {
				if category, ok := normalizeCategory(record); ok {
					categories = append(categories, category)
				}
			}
		}
		return categories
	}

	record, ok := payload.(map[string]any)
	if !ok {
		return nil
	}

	if direct := toRecords(record["categories"]); len(direct) > 0 {
		var categories []Category
		for _, item := range direct {
			if category, ok := normalizeCategory(item); ok {
				categories = append(categories, category)
			}
		}
		if len(categories) > 0 {
			return categories
		}
	}

	if flat := categoriesFromFlatServices(record["services"]); len(flat) > 0 {
		return flat
	}

	if nested := Normalize(record["data"]); len(nested) > 0 {
		return nested
	}
	if nested := Normalize(record["result"]); len(nested) > 0 {
		return nested
	}

	return nil
}

func normalizeCategory(raw map[string]any) (Category, bool) {
	title := textOrEmpty(raw["name"], raw["label"], raw["title"])
	if title == "" {
		return Category{}, false
	}

	source := raw["services"]
	if source == nil {
		source = raw["items"]
	}
	var services []ServiceEntry
	for _, item := range toRecords(source) {
		if service, ok := normalizeService(item); ok {
			services = append(services, service)
		}
	}
	if len(services) == 0 {
		return Category{}, false
	}

	return Category{ID: idOrEmpty(raw["id"]), Title: title, Services: services}, true
}

func normalizeService(raw map[string]any) (ServiceEntry, bool) {
	name := textOrEmpty(raw["name"], raw["label"], raw["title"])
	if name == "" {
		return ServiceEntry{}, false
	}

	price := parsePrice(raw["price"])
	for _, key := range []string{"priceMin", "price_min", "fromPrice", "from_price", "amount", "value"} {
		if price != nil {
			break
		}
		price = parsePrice(raw[key])
	}

	currency := textOrEmpty(raw["currency"], nestedField(raw["price"], "currency"), nestedField(raw["pricing"], "currency"))
	if currency == "" {
		currency = DefaultCurrency
	}

	return ServiceEntry{
		ID:       idOrEmpty(raw["id"]),
		Name:     name,
		Price:    price,
		Currency: currency,
	}, true
}

// categoriesFromFlatServices groups a flat service list by its category
// labels, defaulting to a single "Prestations" section.
func categoriesFromFlatServices(value any) []Category {
	list, ok := value.([]any)
	if !ok {
		return nil
	}

	var order []string
	groups := make(map[string][]ServiceEntry)

	for _, item := range list {
		raw, ok := item.(map[string]any)
		if !ok {
			continue
		}
		service, ok := normalizeService(raw)
		if !ok {
			continue
		}

		categoryName := textOrEmpty(
			raw["categoryName"], raw["category_name"], raw["category_label"],
			nestedField(raw["category"], "name"), nestedField(raw["category"], "label"),
		)
		if categoryName == "" {
			categoryName = "Prestations"
		}

		if _, seen := groups[categoryName]; !seen {
			order = append(order, categoryName)
		}
		groups[categoryName] = append(groups[categoryName], service)
	}

	categories := make([]Category, 0, len(order))
	for _, title := range order {
		categories = append(categories, Category{Title: title, Services: groups[title]})
	}
	return categories
}

var priceSanitizer = regexp.MustCompile(`[^\d.,-]`)

// parsePrice coerces the many shapes Planity uses for prices into euros.
// Integer amounts of 1000 or more are assumed to be cents.
func parsePrice(value any) *float64 {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		out := v
		if out >= 1000 {
			out /= 100
		}
		return &out
	case string:
		sanitized := strings.ReplaceAll(priceSanitizer.ReplaceAllString(v, ""), ",", ".")
		if sanitized == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(sanitized, 64)
		if err != nil {
			return nil
		}
		return &parsed
	case map[string]any:
		for _, key := range []string{"amount", "value", "price", "min", "max"} {
			if price := parsePrice(v[key]); price != nil {
				return price
			}
		}
		return nil
	default:
		return nil
	}
}

func toRecords(value any) []map[string]any {
	switch v := value.(type) {
	case []any:
		records := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if record, ok := item.(map[string]any); ok {
				records = append(records, record)
			}
		}
		return records
	case map[string]any:
		records := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if record, ok := item.(map[string]any); ok {
				records = append(records, record)
			}
		}
		return records
	default:
		return nil
	}
}

func textOrEmpty(values ...any) string {
	for _, value := range values {
		if s, ok := value.(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func nestedField(value any, key string) any {
	if record, ok := value.(map[string]any); ok {
		return record[key]
	}
	return nil
}

func idOrEmpty(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
