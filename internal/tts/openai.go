package tts

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAISynthesizer renders narration with the OpenAI speech API.
type OpenAISynthesizer struct {
	client *openai.Client
	model  openai.SpeechModel
}

// NewOpenAISynthesizer builds a synthesizer using the tts-1 model.
func NewOpenAISynthesizer(apiKey string) (*OpenAISynthesizer, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is required for speech synthesis")
	}
	return &OpenAISynthesizer{
		client: openai.NewClient(apiKey),
		model:  openai.TTSModel1,
	}, nil
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error) {
	if text == "" {
		return nil, errors.New("empty narration text")
	}

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}
	return audio, nil
}
