package entity

// Product katalogdagi bitta plastik mahsulot
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Material    string   `json:"material"` // Kanonik kod: "PLA", "PETG", "ABS" ...
	Description string   `json:"description"`
	Links       []string `json:"links"`

	// SearchKeywords katalog yuklanganda title+material dan tayyorlanadi.
	// Fuzzy search faqat shu tokenlar bilan ishlaydi, keyin o'zgarmaydi.
	SearchKeywords []string `json:"search_keywords"`
}
