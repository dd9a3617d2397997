package search

import (
	"strings"

	"github.com/yourusername/plastic-advisor-bot/internal/domain/entity"
)

// Scoring parametrlari. Bular sozlanadigan qiymatlar, fizik
// konstantalar emas.
const (
	// shortTokenThreshold 4 belgidan qisqa tokenlar uchun nisbiy masofa
	// budjeti (qisqa so'zlarda false positive ko'p bo'ladi)
	shortTokenThreshold = 0.3

	// longTokenThreshold qolgan tokenlar uchun nisbiy masofa budjeti
	longTokenThreshold = 0.5

	// requiredScorePerToken qabul qilish uchun token boshiga minimal ball
	requiredScorePerToken = 0.6

	// criticalScoreBonus so'rovda aniq material nomi bo'lsa talab shunchaga
	// oshadi (foydalanuvchi aniq material so'raganda shovqinni bosish uchun)
	criticalScoreBonus = 0.5
)

// MatchByMaterials kanonik material kodlari ro'yxati bo'yicha aniq filter.
// Mahsulot materiali so'ralgan kod bilan yoki uning "-G" varianti bilan
// aynan mos kelsagina o'tadi (PET so'rovi PET-G katalog yozuvini oladi).
func MatchByMaterials(materials []string, products []entity.Product) []entity.Product {
	var res []entity.Product
	for _, product := range products {
		productMaterial := strings.ToUpper(product.Material)
		for _, m := range materials {
			if productMaterial == m || productMaterial == m+"-G" {
				res = append(res, product)
				break
			}
		}
	}
	return res
}

// MatchFuzzy erkin matnli so'rov bo'yicha ikki bosqichli scoring.
// Kritik material so'zlari faqat kanonik kod bilan aniq mos kelganda
// hisoblanadi (vazn 2), qolgan so'zlar Levenshtein masofasi adaptiv
// budjetdan oshmasa hisoblanadi (vazn 1). So'rovda topilgan har bir
// kritik material mahsulot keywordlarida ham bo'lsa yana +1.
func MatchFuzzy(query string, products []entity.Product) []entity.Product {
	queryWords := Tokens(query)
	if len(queryWords) == 0 {
		return nil
	}

	criticalMatches := findCriticalMatches(queryWords)
	required := requiredScore(queryWords, criticalMatches)

	var res []entity.Product
	for _, product := range products {
		if matchScore(queryWords, product.SearchKeywords, criticalMatches) >= required {
			res = append(res, product)
		}
	}
	return res
}

func matchScore(queryWords, keywords []string, criticalMatches map[string]struct{}) float64 {
	var score float64

	for _, qWord := range queryWords {
		if canonical, isCritical := canonicalMaterial(qWord); isCritical {
			// Kritik so'z aniq kanonik kod bilan mos kelishi shart
			if containsKeyword(keywords, canonical) {
				score += 2
			}
			continue
		}

		// Oddiy so'z - adaptiv masofa budjeti
		threshold := longTokenThreshold
		if len([]rune(qWord)) < 4 {
			threshold = shortTokenThreshold
		}
		distanceLimit := int(float64(len([]rune(qWord))) * threshold)

		for _, keyword := range keywords {
			if Levenshtein(qWord, keyword) <= distanceLimit {
				score++
				break
			}
		}
	}

	// Ikki tomonlama tasdiq: so'rovdagi kritik material mahsulotda ham bor
	for canonical := range criticalMatches {
		if containsKeyword(keywords, canonical) {
			score++
		}
	}

	return score
}

func requiredScore(queryWords []string, criticalMatches map[string]struct{}) float64 {
	return float64(len(queryWords))*requiredScorePerToken +
		float64(len(criticalMatches))*criticalScoreBonus
}

func containsKeyword(keywords []string, word string) bool {
	for _, k := range keywords {
		if k == word {
			return true
		}
	}
	return false
}
