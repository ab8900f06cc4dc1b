// Package gemini wraps the Gemini API for thumbnail rendering, image editing,
// topic suggestions and virality audits.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"thumblytic-backend-go/internal/models"
)

// Messages surfaced to users when the provider answers without usable output.
var (
	ErrNoImageGenerated = errors.New("No image generated.")
	ErrImageEditFailed  = errors.New("Image edit failed.")
	ErrNoSuggestions    = errors.New("No suggestions received.")
	ErrAuditFailed      = errors.New("Audit failed.")
)

// ProviderError marks a failure that originated at the generative provider.
// Its message is the provider's message, unchanged.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string { return e.Err.Error() }
func (e *ProviderError) Unwrap() error { return e.Err }

func providerErr(op string, err error) error {
	return &ProviderError{Op: op, Err: err}
}

// contentGenerator is the subset of *genai.Models the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Options configures a Client.
type Options struct {
	APIKey     string
	TextModel  string
	ImageModel string
	Timeout    time.Duration
}

// Client talks to the Gemini API. It is safe for concurrent use.
type Client struct {
	models     contentGenerator
	textModel  string
	imageModel string
	timeout    time.Duration
}

// NewClient creates a Gemini API client.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return newClient(gc.Models, opts), nil
}

func newClient(gen contentGenerator, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Client{
		models:     gen,
		textModel:  opts.TextModel,
		imageModel: opts.ImageModel,
		timeout:    timeout,
	}
}

// GenerateThumbnail renders a thumbnail for cfg.
func (c *Client) GenerateThumbnail(ctx context.Context, cfg models.ThumbnailConfig) (Image, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.models.GenerateContent(ctx, c.imageModel, genai.Text(BuildThumbnailPrompt(cfg)), nil)
	if err != nil {
		return Image{}, providerErr("render", err)
	}
	img, ok := firstImage(resp)
	if !ok {
		return Image{}, providerErr("render", ErrNoImageGenerated)
	}
	return img, nil
}

// EditImage combines or transforms the source images according to instructions.
func (c *Client) EditImage(ctx context.Context, sources []Image, instructions string) (Image, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	parts := make([]*genai.Part, 0, len(sources)+1)
	for _, src := range sources {
		parts = append(parts, genai.NewPartFromBytes(src.Data, src.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(BuildEditPrompt(len(sources), instructions)))
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.models.GenerateContent(ctx, c.imageModel, contents, nil)
	if err != nil {
		return Image{}, providerErr("edit", err)
	}
	img, ok := firstImage(resp)
	if !ok {
		return Image{}, providerErr("edit", ErrImageEditFailed)
	}
	return img, nil
}

// Suggest asks the text model for a thumbnail strategy for topic.
func (c *Client) Suggest(ctx context.Context, topic string) (*models.Suggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.models.GenerateContent(ctx, c.textModel, genai.Text(suggestionPrompt(topic)), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(suggestionSystemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    suggestionSchema(),
	})
	if err != nil {
		return nil, providerErr("suggest", err)
	}
	text := responseText(resp)
	if text == "" {
		return nil, providerErr("suggest", ErrNoSuggestions)
	}
	var out models.Suggestion
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, providerErr("suggest", fmt.Errorf("decode suggestion: %w", err))
	}
	return &out, nil
}

// Audit asks the text model to score cfg for virality.
func (c *Client) Audit(ctx context.Context, cfg models.ThumbnailConfig) (*models.AuditResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.models.GenerateContent(ctx, c.textModel, genai.Text(auditPrompt(cfg)), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(auditSystemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    auditSchema(),
	})
	if err != nil {
		return nil, providerErr("audit", err)
	}
	text := responseText(resp)
	if text == "" {
		return nil, providerErr("audit", ErrAuditFailed)
	}
	var out models.AuditResult
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, providerErr("audit", fmt.Errorf("decode audit: %w", err))
	}
	if out.Score < 0 {
		out.Score = 0
	} else if out.Score > 100 {
		out.Score = 100
	}
	return &out, nil
}

func firstImage(resp *genai.GenerateContentResponse) (Image, bool) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Image{}, false
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mime := part.InlineData.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		return Image{Data: part.InlineData.Data, MIMEType: mime}, true
	}
	return Image{}, false
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String())
}

func stringEnum[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func suggestionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"suggestedText":    {Type: genai.TypeString, Description: "A high-CTR short text for the thumbnail (max 4 words)."},
			"suggestedStyle":   {Type: genai.TypeString, Enum: stringEnum(models.StylePresets), Description: "The visual style preset."},
			"suggestedEmotion": {Type: genai.TypeString, Enum: stringEnum(models.Emotions), Description: "The primary emotional hook."},
			"reasoning":        {Type: genai.TypeString, Description: "A short sentence explaining why this will go viral."},
		},
		Required: []string{"suggestedText", "suggestedStyle", "suggestedEmotion", "reasoning"},
	}
}

func auditSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score":   {Type: genai.TypeInteger},
			"verdict": {Type: genai.TypeString},
			"tips": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"type": {Type: genai.TypeString, Enum: []string{"success", "warning", "info"}},
						"text": {Type: genai.TypeString},
					},
					Required: []string{"type", "text"},
				},
			},
		},
		Required: []string{"score", "verdict", "tips"},
	}
}
