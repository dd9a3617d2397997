package search

// criticalMaterials kanonik material kodi -> yozilish variantlari.
// Variantlar orasida tez-tez uchraydigan xatolar, kirillcha
// transliteratsiyalar va Unicode o'xshash harflar bor (masalan, lotin
// "a" o'rniga kirill "а").
var criticalMaterials = map[string][]string{
	"pla":   {"pla", "plа", "pIa", "пла"},
	"abs":   {"abs", "аbs", "abѕ", "абс"},
	"petg":  {"petg", "pet-g", "pеtg", "петг"},
	"rpetg": {"rpetg", "rpet-g", "rpеtg", "рпетг"},
	"tpu":   {"tpu", "tрu", "тпу"},
	"hips":  {"hips", "hiрs", "хипс"},
	"asa":   {"asa", "аsa", "аса"},
	"pc":    {"pc", "pс", "пк", "поликарбонат"},
	"pa":    {"pa", "pа", "па", "полиамид"},
	"pp":    {"pp", "рр", "пп", "полипропилен"},
	"nylon": {"nylon", "nуlon", "нейлон"},
	"pmma":  {"pmma", "pmmа", "пмма"},
}

// canonicalMaterial so'z biror kritik materialning varianti bo'lsa,
// kanonik kodini qaytaradi
func canonicalMaterial(word string) (string, bool) {
	for canonical, variants := range criticalMaterials {
		for _, v := range variants {
			if v == word {
				return canonical, true
			}
		}
	}
	return "", false
}

// findCriticalMatches so'rov so'zlari ichidan taniqli materiallar to'plami
func findCriticalMatches(words []string) map[string]struct{} {
	matches := make(map[string]struct{})
	for _, w := range words {
		if canonical, ok := canonicalMaterial(w); ok {
			matches[canonical] = struct{}{}
		}
	}
	return matches
}
