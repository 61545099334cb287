package genx

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/genai"
)

const (
	// DefaultGeminiModel is an interleaved text and image capable model.
	DefaultGeminiModel = "gemini-2.0-flash-exp"

	ModalityText  = "TEXT"
	ModalityImage = "IMAGE"
)

var _ Generator = (*GeminiGenerator)(nil)

// GeminiGenerator implements Generator using the Google Gemini API.
type GeminiGenerator struct {
	Client *genai.Client `json:"-"`

	// GenerateParams, when set, are applied to every request.
	GenerateParams *ModelParams `json:"generate_params,omitzero"`

	// Model should not start with "models/"
	Model string `json:"model"`

	// Modalities requested from the model. Defaults to text and image.
	Modalities []string `json:"modalities,omitempty"`
}

// NewGeminiGenerator creates a generator backed by a Gemini API client.
// An empty baseURL uses the SDK default endpoint.
func NewGeminiGenerator(ctx context.Context, apiKey, baseURL, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("genx: gemini api key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions.BaseURL = baseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("genx: gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiGenerator{Client: client, Model: model}, nil
}

func (g *GeminiGenerator) GenerateStream(ctx context.Context, model string, mctx ModelContext) (Stream, error) {
	cfg, contents, err := g.convModelContext(mctx)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = g.Model
	}
	sb := NewStreamBuilder(32)
	go func() {
		if err := geminiPull(sb, g.Client.Models.GenerateContentStream(ctx, model, contents, cfg)); err != nil {
			sb.Abort(unwrapAPIError(err))
		}
	}()
	return sb.Stream(), nil
}

func unwrapAPIError(err error) error {
	var ae *apierror.APIError
	if errors.As(err, &ae) {
		if u := ae.Unwrap(); u != nil {
			return u
		}
	}
	return err
}

// geminiPull forwards every part of the selected candidate as its own chunk,
// keeping the order the model produced them in.
func geminiPull(builder *StreamBuilder, itr iter.Seq2[*genai.GenerateContentResponse, error]) error {
	var (
		selIdx   int32
		selected bool
	)
	for chunk, err := range itr {
		if err != nil {
			return err
		}
		if len(chunk.Candidates) == 0 {
			continue
		}
		var sel *genai.Candidate
		if !selected {
			selIdx = chunk.Candidates[0].Index
			selected = true
			sel = chunk.Candidates[0]
		} else {
			for _, c := range chunk.Candidates {
				if c.Index == selIdx {
					sel = c
					break
				}
			}
			if sel == nil {
				continue
			}
		}

		if sel.Content != nil {
			for _, p := range sel.Content.Parts {
				var part Part
				switch {
				case p == nil:
					continue
				case p.InlineData != nil:
					part = &Blob{MIMEType: p.InlineData.MIMEType, Data: p.InlineData.Data}
				case p.Text != "":
					part = Text(p.Text)
				default:
					slog.Debug("genx/gemini: skip part without text or inline data")
					continue
				}
				if err := builder.Add(&MessageChunk{Role: RoleModel, Part: part}); err != nil {
					return err
				}
			}
		}

		switch sel.FinishReason {
		default:
			return builder.Unexpected(
				geminiConvUsage(chunk.UsageMetadata),
				fmt.Errorf("unexpected finish reason: %s", sel.FinishReason),
			)
		case genai.FinishReasonUnspecified, "":
			// continue
		case genai.FinishReasonStop:
			return builder.Done(geminiConvUsage(chunk.UsageMetadata))
		case genai.FinishReasonMaxTokens:
			return builder.Truncated(geminiConvUsage(chunk.UsageMetadata))
		case genai.FinishReasonSafety:
			var cats []string
			for _, sr := range sel.SafetyRatings {
				if sr != nil && sr.Blocked {
					cats = append(cats, string(sr.Category))
				}
			}
			return builder.Blocked(
				geminiConvUsage(chunk.UsageMetadata),
				"blocked by "+strings.Join(cats, ", "),
			)
		}
	}
	return errors.New("unexpected end of stream: no finish reason")
}

func geminiConvMessage(last *genai.Content, msg *Message) (*genai.Content, error) {
	var role string
	switch msg.Role {
	case RoleUser:
		role = "user"
	case RoleModel:
		role = "model"
	default:
		return nil, fmt.Errorf("unexpected role: %s", msg.Role)
	}
	var parts []*genai.Part
	for _, c := range msg.Contents {
		switch v := c.(type) {
		case Text:
			parts = append(parts, genai.NewPartFromText(string(v)))
		case *Blob:
			parts = append(parts, genai.NewPartFromBytes(v.Data, v.MIMEType))
		default:
			return nil, fmt.Errorf("unexpected part type: %T", c)
		}
	}
	if last == nil || last.Role != role {
		return &genai.Content{Role: role, Parts: parts}, nil
	}
	last.Parts = append(last.Parts, parts...)
	return nil, nil
}

func (g *GeminiGenerator) convModelContext(mctx ModelContext) (*genai.GenerateContentConfig, []*genai.Content, error) {
	cfg := genai.GenerateContentConfig{
		SafetySettings: []*genai.SafetySetting{
			{
				Category:  genai.HarmCategoryHateSpeech,
				Threshold: genai.HarmBlockThresholdOff,
			},
			{
				Category:  genai.HarmCategoryHarassment,
				Threshold: genai.HarmBlockThresholdOff,
			},
			{
				Category:  genai.HarmCategoryDangerousContent,
				Threshold: genai.HarmBlockThresholdOff,
			},
		},
		ResponseModalities: g.modalities(),
	}
	if mp := g.GenerateParams; mp != nil {
		if mp.MaxTokens > 0 {
			cfg.MaxOutputTokens = int32(mp.MaxTokens)
		}
		if mp.Temperature > 0 {
			cfg.Temperature = &mp.Temperature
		}
	}

	var (
		contents []*genai.Content
		last     *genai.Content
	)
	for msg := range mctx.Messages() {
		next, err := geminiConvMessage(last, msg)
		if err != nil {
			return nil, nil, err
		}
		if next != nil {
			contents = append(contents, next)
			last = next
		}
	}
	if len(contents) == 0 {
		return nil, nil, fmt.Errorf("no contents")
	}
	return &cfg, contents, nil
}

func (g *GeminiGenerator) modalities() []string {
	if len(g.Modalities) > 0 {
		return g.Modalities
	}
	return []string{ModalityText, ModalityImage}
}

func geminiConvUsage(usage *genai.GenerateContentResponseUsageMetadata) Usage {
	if usage == nil {
		return Usage{}
	}
	return Usage{
		PromptTokenCount:        int64(usage.PromptTokenCount),
		CachedContentTokenCount: int64(usage.CachedContentTokenCount),
		GeneratedTokenCount:     int64(usage.CandidatesTokenCount),
	}
}
