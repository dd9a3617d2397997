package storage

import "github.com/yourusername/plastic-advisor-bot/internal/domain/entity"

// DefaultCatalog tashqi katalog sozlanmagan holat uchun boshlang'ich
// mahsulotlar to'plami
func DefaultCatalog() []entity.Product {
	return []entity.Product{
		{
			ID:          "pla-standard",
			Title:       "REC PLA",
			Material:    "PLA",
			Description: "Универсальный пластик для прототипов и декоративных изделий. Лёгкая печать, низкая усадка.",
			Links:       []string{"https://rec3d.ru/plastik-dlya-3d-printerov/all-plastic/?material[]=38"},
		},
		{
			ID:          "abs-standard",
			Title:       "REC ABS",
			Material:    "ABS",
			Description: "Прочный пластик для функциональных деталей. Устойчив к ударам и температуре до 100°C.",
			Links:       []string{"https://rec3d.ru/plastik-dlya-3d-printerov/all-plastic/?material[]=6"},
		},
		{
			ID:          "petg-standard",
			Title:       "REC PET-G",
			Material:    "PET-G",
			Description: "Баланс прочности и простоты печати. Химическая стойкость, подходит для контакта с водой.",
			Links:       []string{"https://rec3d.ru/plastik-dlya-3d-printerov/all-plastic/?material[]=42"},
		},
		{
			ID:          "tpu-flex",
			Title:       "REC TPU",
			Material:    "TPU",
			Description: "Гибкий эластичный пластик для демпферов, чехлов и уплотнителей.",
			Links:       []string{"https://rec3d.ru/plastik-dlya-3d-printerov/all-plastic/?material[]=43"},
		},
	}
}
