package llm

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
	"github.com/dwarvesf/crypto-bookkeeper/internal/monitoring"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/config"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
)

// GeminiModel calls Gemini through the genai SDK.
type GeminiModel struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	breaker *monitoring.Breaker
	logger  *logger.Logger
}

func NewGeminiModel(ctx context.Context, cfg config.LLMConfig, breaker *monitoring.Breaker, logger *logger.Logger) (*GeminiModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("LLM_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create genai client")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &GeminiModel{
		client:  client,
		model:   cfg.Model,
		timeout: timeout,
		breaker: breaker,
		logger:  logger,
	}, nil
}

func (g *GeminiModel) Generate(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := monitoring.Call(ctx, g.breaker, "generate", func(ctx context.Context) (string, error) {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(user), &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.1),
		})
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return "", apperror.Timeout("llm.Generate", err)
			}
			return "", apperror.UpstreamUnavailable("llm.Generate", "model call failed", err)
		}

		text := resp.Text()
		if text == "" {
			return "", apperror.UpstreamUnavailable("llm.Generate", "empty response from model", nil)
		}
		return text, nil
	})
	if err != nil {
		if _, ok := apperror.As(err); !ok {
			err = apperror.UpstreamUnavailable("llm.Generate", "model call failed", err)
		}
		g.logger.Error("[llm][Generate] model call failed", map[string]string{
			"model": g.model,
			"error": err.Error(),
		})
		return "", err
	}
	return text, nil
}
