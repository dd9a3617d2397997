package gemini

import (
	"fmt"
	"strings"

	"github.com/yourusername/plastic-advisor-bot/internal/domain/entity"
)

// systemInstruction yakuniy javob modeli uchun asosiy ko'rsatma
const systemInstruction = `Вы эксперт по 3D-печати и подбору пластиков для 3D-принтеров.
Помогаете клиентам магазина выбрать подходящий материал под их задачу.

Правила:
- Отвечайте на языке клиента
- Рекомендуйте только материалы и продукты из предоставленного списка
- Объясняйте выбор свойствами материала: прочность, гибкость, термостойкость, простота печати
- Если задача не связана с 3D-печатью, вежливо верните разговор к теме
- Не придумывайте характеристики, которых нет в описании продукта`

// recommendPrompt 1-bosqich uchun prompt: faqat material ro'yxati kerak
func recommendPrompt(userMessage string) string {
	return fmt.Sprintf(`Пользователь хочет: "%s".
Проанализируй задачу и верни ТОЛЬКО список подходящих типов пластиков в формате: [MATERIAL1, MATERIAL2, MATERIAL3]
Требования:
- Только названия материалов через запятую в квадратных скобках
- Не больше 3 материалов
- Без объяснений, без текста, только чистый список
- Используй стандартные названия: ABS, PLA, PETG, TPU, ASA, NYLON и т.д.`, userMessage)
}

// productDescription topilgan mahsulotlar ro'yxatini prompt uchun tayyorlaydi
func productDescription(products []entity.Product) string {
	if len(products) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n=== КОНКРЕТНЫЕ ПРОДУКТЫ ДЛЯ РЕКОМЕНДАЦИИ ===\n")
	for i, product := range products {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "ПРОДУКТ %d:\n🎯 Название: %s\n🧪 Материал: %s\n📝 Описание: %s",
			i+1, product.Title, product.Material, product.Description)
	}
	return b.String()
}

// strictProductInstructions javob faqat berilgan mahsulotlarga
// tayanishini talab qiladi
const strictProductInstructions = `
КРИТИЧЕСКИ ВАЖНЫЕ ИНСТРУКЦИИ:
1. ВАША ГЛАВНАЯ ЗАДАЧА - РЕКОМЕНДОВАТЬ КОНКРЕТНЫЕ ПРОДУКТЫ ИЗ СПИСКА ВЫШЕ
2. ОБЯЗАТЕЛЬНО упоминайте в ответе КАЖДЫЙ из найденных продуктов
3. Используйте конкретные характеристики продуктов из описания
4. Ссылайтесь на преимущества КОНКРЕТНЫХ продуктов из описания
5. НЕ добавляйте ссылки на продукты в своем ответе - они будут добавлены отдельно

СТРУКТУРА ОТВЕТА:
- Краткий анализ задачи пользователя
- Подробный обзор КАЖДОГО подходящего продукта
- Сравнение преимуществ конкретных продуктов
- Четкая рекомендация с обоснованием

НЕ ДОПУСКАЕТСЯ:
- Давать общие рекомендации без упоминания конкретных продуктов
- Игнорировать информацию о продуктах из списка
- Добавлять ссылки на продукты в текст ответа`
