package search

import (
	"regexp"
	"strings"

	"github.com/yourusername/plastic-advisor-bot/internal/domain/constants"
)

var reBracketGroup = regexp.MustCompile(`\[([^\]]+)\]`)

// ParseMaterialList AI javobidan kanonik material kodlari ro'yxatini
// ajratadi. Birinchi "[...]" guruh afzal ko'riladi; topilmasa butun javob
// vergul bo'yicha bo'linadi. Har ikki holda ham tozalash bir xil: trim,
// katta harf, bo'shlarni tashlash, ko'pi bilan 3 ta natija.
// Hech qachon xato qaytarmaydi - parse muvaffaqiyatsizligi bo'sh ro'yxat.
func ParseMaterialList(aiResponse string) []string {
	raw := aiResponse
	if m := reBracketGroup.FindStringSubmatch(aiResponse); m != nil {
		raw = m[1]
	}

	var materials []string
	for _, part := range strings.Split(raw, ",") {
		material := strings.ToUpper(strings.TrimSpace(part))
		if material == "" {
			continue
		}
		materials = append(materials, material)
		if len(materials) >= constants.MaxRecommendedMaterials {
			break
		}
	}
	return materials
}
