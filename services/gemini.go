package services

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

func geminiModel() string {
	m := os.Getenv("GEMINI_MODEL")
	if m == "" {
		m = "gemini-2.0-flash"
	}
	return m
}

func geminiImageModel() string {
	m := os.Getenv("GEMINI_IMAGE_MODEL")
	if m == "" {
		m = "gemini-2.0-flash-preview-image-generation"
	}
	return m
}

// GeminiGenerateText gọi Gemini với 1 prompt và trả text kết quả.
// Là biến để test stub được.
var GeminiGenerateText = func(prompt string) (string, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, option.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
	if err != nil {
		return "", fmt.Errorf("không thể tạo Gemini client: %v", err)
	}
	defer client.Close()

	model := client.GenerativeModel(geminiModel())
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("lỗi Gemini xử lý: %v", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini không trả kết quả hợp lệ")
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// GeminiGenerateImage gọi model sinh ảnh và trả về bytes PNG đầu tiên
var GeminiGenerateImage = func(prompt string) ([]byte, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, option.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
	if err != nil {
		return nil, fmt.Errorf("không thể tạo Gemini client: %v", err)
	}
	defer client.Close()

	model := client.GenerativeModel(geminiImageModel())
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("lỗi Gemini sinh ảnh: %v", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
				return blob.Data, nil
			}
		}
	}
	return nil, fmt.Errorf("gemini không trả ảnh nào")
}
