package search

import "strings"

// BuildSearchKeywords katalog yuklanishida mahsulot uchun qidiruv
// tokenlarini tayyorlaydi. Material kodining defissiz varianti ham
// qo'shiladi ("pet-g" -> "petg"), shunda kritik material tekshiruvi
// kanonik kod bo'yicha ishlaydi.
func BuildSearchKeywords(title, material string) []string {
	seen := make(map[string]struct{})
	var keywords []string

	add := func(token string) {
		if token == "" {
			return
		}
		if _, ok := seen[token]; ok {
			return
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}

	for _, t := range Tokens(title) {
		add(t)
	}
	for _, t := range Tokens(material) {
		add(t)
		add(strings.ReplaceAll(t, "-", ""))
	}
	return keywords
}
