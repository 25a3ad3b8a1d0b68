package assistant

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Unavailable is returned in place of an answer when no API key is set.
const Unavailable = "The AI assistant is currently unavailable. Please try again later."

var (
	ErrUpstream   = errors.New("assistant upstream failed")
	ErrEmptyReply = errors.New("assistant returned no content")
	ErrBadImage   = errors.New("image must be base64 encoded")
)

const chatInstruction = "You are TechNova's shopping and repair assistant. " +
	"Answer questions about phone accessories, cases, chargers and device repairs briefly and helpfully."

const thinkInstruction = "You are TechNova's senior repair technician. " +
	"Reason step by step about the device problem and give a diagnosis with repair options and rough costs."

type Message struct {
	Role string `json:"role" validate:"required,oneof=user model"`
	Text string `json:"text" validate:"required"`
}

type Config struct {
	APIKey        string
	BaseURL       string
	APIVersion    string
	ChatModel     string
	ThinkingModel string
	ImageModel    string
	Timeout       time.Duration
}

type Service interface {
	Chat(ctx context.Context, history []Message, prompt string) (string, error)
	Think(ctx context.Context, prompt string) (string, error)
	AnalyzeImage(ctx context.Context, imageBase64, prompt string) (string, error)
	GenerateMockup(ctx context.Context, imageBase64, phoneModel, style string) (*string, error)
}

// client talks to the Gemini API. A nil genai client means no API key was
// configured and every call answers with the unavailable fallback.
type client struct {
	cfg   Config
	genai *genai.Client
}

func NewService(ctx context.Context, cfg Config) (Service, error) {
	if cfg.APIKey == "" {
		return &client{cfg: cfg}, nil
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: cfg.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("assistant: failed to create client: %w", err)
	}

	return &client{cfg: cfg, genai: gc}, nil
}

func (c *client) enabled() bool {
	return c.genai != nil
}

func (c *client) Chat(ctx context.Context, history []Message, prompt string) (string, error) {
	if !c.enabled() {
		return Unavailable, nil
	}

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		contents = append(contents, genai.NewContentFromText(m.Text, genai.Role(m.Role)))
	}
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	resp, err := c.generate(ctx, c.cfg.ChatModel, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(chatInstruction, genai.RoleUser),
	})
	if err != nil {
		return "", err
	}
	return replyText(resp)
}

func (c *client) Think(ctx context.Context, prompt string) (string, error) {
	if !c.enabled() {
		return Unavailable, nil
	}

	resp, err := c.generate(ctx, c.cfg.ThinkingModel, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(thinkInstruction, genai.RoleUser),
	})
	if err != nil {
		return "", err
	}
	return replyText(resp)
}

func (c *client) AnalyzeImage(ctx context.Context, imageBase64, prompt string) (string, error) {
	if !c.enabled() {
		return Unavailable, nil
	}

	image, err := imagePart(imageBase64)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(prompt) == "" {
		prompt = "Describe the condition of this device and any visible damage."
	}

	resp, err := c.generate(ctx, c.cfg.ChatModel, []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{image, genai.NewPartFromText(prompt)}, genai.RoleUser),
	}, nil)
	if err != nil {
		return "", err
	}
	return replyText(resp)
}

// GenerateMockup renders the uploaded artwork onto a case for phoneModel.
// It returns nil when the assistant is disabled or the model sent no image.
func (c *client) GenerateMockup(ctx context.Context, imageBase64, phoneModel, style string) (*string, error) {
	if !c.enabled() {
		return nil, nil
	}

	image, err := imagePart(imageBase64)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf("Create a product photo of a %s phone case for the %s using this artwork. "+
		"Show the case from the back on a clean studio background.", style, phoneModel)

	resp, err := c.generate(ctx, c.cfg.ImageModel, []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{image, genai.NewPartFromText(prompt)}, genai.RoleUser),
	}, nil)
	if err != nil {
		return nil, err
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && len(p.InlineData.Data) > 0 {
				img := base64.StdEncoding.EncodeToString(p.InlineData.Data)
				return &img, nil
			}
		}
	}

	log.Warn().Str("phone_model", phoneModel).Msg("assistant: mockup response carried no image")
	return nil, nil
}

func (c *client) generate(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	started := time.Now()
	resp, err := c.genai.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			log.Error().Int("status", apiErr.Code).Str("model", model).Str("message", apiErr.Message).Msg("assistant: upstream error")
			return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, apiErr.Code, apiErr.Message)
		}
		log.Error().Err(err).Str("model", model).Msg("assistant: request failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	log.Debug().Str("model", model).Dur("took", time.Since(started)).Msg("assistant: response received")

	return resp, nil
}

// replyText joins the text parts of the first candidate that has any.
// Thought summaries are skipped.
func replyText(resp *genai.GenerateContentResponse) (string, error) {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if !p.Thought {
				b.WriteString(p.Text)
			}
		}
		if b.Len() > 0 {
			return b.String(), nil
		}
	}
	return "", ErrEmptyReply
}

// imagePart accepts raw base64 or a data URL.
func imagePart(s string) (*genai.Part, error) {
	mime, encoded, err := splitDataURL(s)
	if err != nil {
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	return genai.NewPartFromBytes(data, mime), nil
}

func splitDataURL(s string) (string, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", ErrBadImage
	}
	if !strings.HasPrefix(s, "data:") {
		return "image/png", s, nil
	}

	header, data, ok := strings.Cut(s, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return "", "", ErrBadImage
	}
	mime := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	if !strings.HasPrefix(mime, "image/") {
		return "", "", ErrBadImage
	}

	return mime, data, nil
}
