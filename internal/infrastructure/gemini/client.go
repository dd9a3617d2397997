package gemini

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/yourusername/plastic-advisor-bot/internal/domain/constants"
	"github.com/yourusername/plastic-advisor-bot/internal/domain/entity"
	"github.com/yourusername/plastic-advisor-bot/internal/domain/repository"
	"github.com/yourusername/plastic-advisor-bot/internal/usage"
	"google.golang.org/api/option"
)

type geminiClient struct {
	client         *genai.Client
	recommendModel *genai.GenerativeModel
	answerModel    *genai.GenerativeModel
	tracker        *usage.Tracker
}

// NewGeminiClient yangi Gemini AI client yaratish. Ikki bosqich uchun
// ikkita model konfiguratsiyasi: material tavsiyasi past temperatura
// bilan (deterministik ro'yxat), yakuniy javob yuqoriroq bilan.
func NewGeminiClient(apiKey string, tracker *usage.Tracker) (repository.AIRepository, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	recommendModel := client.GenerativeModel(constants.GeminiModelName)
	recommendModel.SetTemperature(constants.RecommendTemperature)
	recommendModel.SetMaxOutputTokens(50)

	answerModel := client.GenerativeModel(constants.GeminiModelName)
	answerModel.SetTemperature(constants.AnswerTemperature)
	answerModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	return &geminiClient{
		client:         client,
		recommendModel: recommendModel,
		answerModel:    answerModel,
		tracker:        tracker,
	}, nil
}

// RecommendMaterials 1-bosqich: vazifa uchun material ro'yxati
func (g *geminiClient) RecommendMaterials(ctx context.Context, chatID int64, userMessage string) (string, error) {
	parts := []genai.Part{genai.Text(recommendPrompt(userMessage))}
	return g.generateWithRetry(ctx, chatID, g.recommendModel, parts)
}

// GenerateAnswer 2-bosqich: topilgan mahsulotlarga asoslangan yakuniy javob
func (g *geminiClient) GenerateAnswer(ctx context.Context, chatID int64, userMessage, materials string, products []entity.Product, history []entity.DialogMessage) (string, error) {
	var parts []genai.Part

	grounding := productDescription(products)
	if grounding != "" {
		parts = append(parts, genai.Text(grounding+"\n"+strictProductInstructions))
	}

	for _, msg := range history {
		switch msg.Role {
		case entity.RoleUser:
			parts = append(parts, genai.Text(fmt.Sprintf("Пользователь: %s", msg.Content)))
		case entity.RoleAssistant:
			parts = append(parts, genai.Text(fmt.Sprintf("Вы: %s", msg.Content)))
		}
	}

	parts = append(parts, genai.Text(fmt.Sprintf("Рекомендованные материалы: %s. Задача: %s", materials, userMessage)))

	answer, err := g.generateWithRetry(ctx, chatID, g.answerModel, parts)
	if err != nil {
		return "", err
	}
	// Markdown belgilar Telegram plain-text xabarida chiqib qolmasin
	return strings.NewReplacer("*", "", "#", "").Replace(answer), nil
}

// generateWithRetry so'rovni retry bilan yuborish
func (g *geminiClient) generateWithRetry(ctx context.Context, chatID int64, model *genai.GenerativeModel, parts []genai.Part) (string, error) {
	maxRetries := constants.MaxRetries
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		resp, err := model.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			log.Printf("❌ Gemini urinish %d/%d xato: %v", attempt, maxRetries, err)
			if !g.waitRetry(ctx, attempt, maxRetries) {
				return "", ctx.Err()
			}
			continue
		}

		g.trackUsage(chatID, resp)

		if len(resp.Candidates) == 0 {
			lastErr = fmt.Errorf("no response candidates")
			if !g.waitRetry(ctx, attempt, maxRetries) {
				return "", ctx.Err()
			}
			continue
		}

		if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
			log.Printf("🚫 Gemini javobi safety filter tomonidan bloklandi")
			return "", fmt.Errorf("response blocked by safety filter")
		}

		responseText := extractText(resp)
		if strings.TrimSpace(responseText) == "" {
			lastErr = fmt.Errorf("empty response")
			if !g.waitRetry(ctx, attempt, maxRetries) {
				return "", ctx.Err()
			}
			continue
		}

		return responseText, nil
	}

	return "", fmt.Errorf("gemini: no response after %d attempts: %w", maxRetries, lastErr)
}

// waitRetry keyingi urinishgacha kutadi; ctx bekor bo'lsa false
func (g *geminiClient) waitRetry(ctx context.Context, attempt, maxRetries int) bool {
	if attempt >= maxRetries {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(constants.RetryDelay * time.Second):
		return true
	}
}

func (g *geminiClient) trackUsage(chatID int64, resp *genai.GenerateContentResponse) {
	if g.tracker == nil || resp.UsageMetadata == nil {
		return
	}
	g.tracker.Track(chatID, resp.UsageMetadata.PromptTokenCount, resp.UsageMetadata.CandidatesTokenCount)
}

func extractText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return b.String()
}
