package ai

import (
	"context"
	"fmt"
	"log"

	"urban-pulse/internal/domain/model"
	"urban-pulse/internal/domain/repository"
)

const describePrompt = `You are a passerby reporting an urban issue. Analyze the image and describe any visible
problems related to urban infrastructure, such as potholes, damaged sidewalks, graffiti, or littering.
Briefly describe only the issue in the image; do not suggest solutions or actions to take. Limit your
description to one or two sentences. ALWAYS Assume first-person perspective. Do not narrate,
only write the description. Speak very concisely and to the point and casually. Do not use any emojis.`

const comparePromptFormat = `Compare the two following titles and descriptions of an urban issue. On a scale from 0 to 1, where 0 means not the same issue and 1 means the same issue,
score on how confident you are that these two descriptions are of the same issue. The title should be weighted much less as it is prone to human error.
Assume the location is the same area. Limit your response to a single decimal number. Do not provide any reasoning or explanation, just the number.

Title 1: %s
Description 1: %s

Title 2: %s
Description 2: %s`

// reportTextGenerator はLLMClientを使って説明文生成とレポート比較を実装する
type reportTextGenerator struct {
	client       *LLMClient
	visionModel  string
	compareModel string
}

// ReportTextGenerator は説明文生成と重複比較の両方を満たす
type ReportTextGenerator interface {
	repository.DescriptionGenerationRepository
	repository.ReportComparisonRepository
}

// NewReportTextGenerator は新しいReportTextGeneratorを作成
func NewReportTextGenerator(client *LLMClient, visionModel, compareModel string) ReportTextGenerator {
	return &reportTextGenerator{
		client:       client,
		visionModel:  visionModel,
		compareModel: compareModel,
	}
}

// GenerateDescription は画像URLから問題の説明文を生成する
func (g *reportTextGenerator) GenerateDescription(ctx context.Context, imageURL string) (string, error) {
	log.Printf("🤖 画像の説明文を生成中... (%s)", imageURL)

	content, err := g.client.Chat(ctx, g.visionModel, []ChatMessage{
		{
			Role: "user",
			Content: []ContentPart{
				{Type: "text", Text: describePrompt},
				{Type: "image_url", ImageURL: &ImageURL{URL: imageURL}},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("説明文の生成に失敗: %w", err)
	}

	log.Printf("✅ 説明文生成完了 (%d文字)", len(content))
	return content, nil
}

// CompareReports は2件のレポートの同一性スコアをモデルに問い合わせる
func (g *reportTextGenerator) CompareReports(ctx context.Context, a, b model.ReportText) (string, error) {
	prompt := fmt.Sprintf(comparePromptFormat, a.Title, a.Desc, b.Title, b.Desc)

	content, err := g.client.Chat(ctx, g.compareModel, []ChatMessage{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("レポート比較に失敗 (%s vs %s): %w", a.ID, b.ID, err)
	}
	return content, nil
}
