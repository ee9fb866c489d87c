package services

import (
	"context"
	"errors"
	"os"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
)

// Map tên ngôn ngữ đích -> language code của Google TTS
var ttsLanguageCodes = map[string]string{
	"spanish":    "es-ES",
	"english":    "en-US",
	"french":     "fr-FR",
	"german":     "de-DE",
	"italian":    "it-IT",
	"portuguese": "pt-BR",
	"japanese":   "ja-JP",
	"korean":     "ko-KR",
	"chinese":    "cmn-CN",
	"vietnamese": "vi-VN",
}

// TTSLanguageCode trả về code cho targetLanguage, fallback es-ES
func TTSLanguageCode(targetLanguage string) string {
	if code, ok := ttsLanguageCodes[strings.ToLower(targetLanguage)]; ok {
		return code
	}
	return "es-ES"
}

// SynthesizeSpeech chuyển 1 câu thành audio MP3 []byte.
// Là biến để test stub được.
var SynthesizeSpeech = func(text string, targetLanguage string) ([]byte, error) {
	if len(strings.TrimSpace(text)) == 0 {
		return nil, errors.New("text is empty")
	}

	ctx := context.Background()
	credPath := os.Getenv("GOOGLE_CREDENTIALS_JSON")
	if credPath == "" {
		return nil, errors.New("GOOGLE_CREDENTIALS_JSON environment variable is not set")
	}

	client, err := texttospeech.NewClient(ctx, option.WithCredentialsFile(credPath))
	if err != nil {
		return nil, err
	}
	defer client.Close()

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{
				Text: text,
			},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: TTSLanguageCode(targetLanguage),
			SsmlGender:   texttospeechpb.SsmlVoiceGender_FEMALE,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  1.0,
		},
	}

	resp, err := client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.AudioContent, nil
}
