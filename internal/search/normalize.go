package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// stopwords so'rovdan olib tashlanadigan umumiy domen so'zlari.
// Mahsulot nomini aniqlashtirmaydigan "пластик"/"нить" kabi so'zlar
// scoring'da faqat shovqin beradi.
var stopwords = map[string]struct{}{
	"пластик": {},
	"пласт":   {},
	"нить":    {},
	"филамент": {},
	"материал": {},
	"rec":     {},
}

// Normalize so'rov matnini qidiruvga tayyorlaydi: kichik harf,
// diakritikalarni olib tashlash, punktuatsiyani bo'shliqqa aylantirish
// ('+' va '-' saqlanadi), stopword'larni olib tashlash.
func Normalize(s string) string {
	return strings.Join(Tokens(s), " ")
}

// Tokens normalizatsiya qilingan so'zlar ro'yxatini qaytaradi
func Tokens(s string) []string {
	s = strings.ToLower(s)
	s = stripDiacritics(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	tokens := fields[:0]
	for _, w := range fields {
		if _, skip := stopwords[w]; skip {
			continue
		}
		tokens = append(tokens, w)
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
