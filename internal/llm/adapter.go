package llm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
	"github.com/dwarvesf/crypto-bookkeeper/internal/monitoring"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
)

const (
	promptSingle = "single"
	promptBulk   = "bulk"
	promptChat   = "chat"
)

type Adapter struct {
	model   IModel
	archive ResponseArchive
	metrics *monitoring.BusinessMetricsRecorder
	logger  *logger.Logger
	system  string
}

// NewAdapter wires the prompt library to model. archive and metrics may be nil.
func NewAdapter(model IModel, archive ResponseArchive, metrics *monitoring.BusinessMetricsRecorder, logger *logger.Logger) IAdapter {
	return &Adapter{
		model:   model,
		archive: archive,
		metrics: metrics,
		logger:  logger,
		system:  systemPrompt(),
	}
}

func (a *Adapter) AnalyseTransaction(ctx context.Context, in TransactionPrompt) (*Analysis, error) {
	if in.Record == nil {
		return nil, apperror.Validation("llm.AnalyseTransaction", "missing transaction")
	}
	prompt, err := singlePrompt(in)
	if err != nil {
		return nil, apperror.Internal("llm.AnalyseTransaction", err)
	}
	return a.analyse(ctx, promptSingle, prompt)
}

func (a *Adapter) AnalyseCategory(ctx context.Context, in CategoryPrompt) (*Analysis, error) {
	if len(in.Records) == 0 {
		return &Analysis{}, nil
	}
	prompt, err := bulkPrompt(in)
	if err != nil {
		return nil, apperror.Internal("llm.AnalyseCategory", err)
	}
	return a.analyse(ctx, promptBulk, prompt)
}

func (a *Adapter) analyse(ctx context.Context, promptType, prompt string) (*Analysis, error) {
	raw, err := a.generate(ctx, promptType, prompt)
	if err != nil {
		return nil, err
	}

	items, dropped, err := parseEntries(raw)
	if err != nil {
		a.metrics.RecordLLMCall(promptType, "parse_error", 0)
		a.logger.Error("[llm][analyse] unparseable response", map[string]string{
			"prompt_type": promptType,
			"error":       err.Error(),
		})
		return nil, err
	}
	if len(dropped) > 0 {
		a.logger.Warn("[llm][analyse] dropped invalid entries", map[string]string{
			"prompt_type": promptType,
			"dropped":     strings.Join(dropped, "; "),
		})
	}

	return &Analysis{Items: items, Dropped: dropped, Raw: raw}, nil
}

func (a *Adapter) Chat(ctx context.Context, in ChatPrompt) (*ChatAnalysis, error) {
	prompt, err := chatPrompt(in)
	if err != nil {
		return nil, apperror.Internal("llm.Chat", err)
	}

	raw, err := a.generate(ctx, promptChat, prompt)
	if err != nil {
		return nil, err
	}
	return parseChat(raw), nil
}

// parseChat reads the chat JSON object. A reply that is not JSON is kept as
// plain text with no entries.
func parseChat(raw string) *ChatAnalysis {
	out := &ChatAnalysis{Raw: raw}

	obj, err := decodeObject(raw)
	if err != nil || obj["response"] == nil {
		out.Response = strings.TrimSpace(raw)
		return out
	}

	out.Response = stringValue(obj["response"])
	out.Thinking = stringValue(obj["thinking"])
	if list, ok := obj["suggestions"].([]any); ok {
		for _, s := range list {
			if str := stringValue(s); str != "" {
				out.Suggestions = append(out.Suggestions, str)
			}
		}
	}

	if entries, ok := obj["journalEntries"].([]any); ok && len(entries) > 0 {
		for _, e := range entries {
			entry, ok := e.(map[string]any)
			if !ok {
				continue
			}
			canonicalKeys(entry)
			if validateEntry(entry) == "" {
				out.Items = append(out.Items, entry)
			}
		}
	}
	return out
}

func (a *Adapter) generate(ctx context.Context, promptType, prompt string) (string, error) {
	start := time.Now()
	raw, err := a.model.Generate(ctx, a.system, prompt)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	a.metrics.RecordLLMCall(promptType, status, duration)
	a.logger.Debug("[llm][generate] model call finished", map[string]string{
		"prompt_type": promptType,
		"status":      status,
		"duration_ms": strconv.FormatInt(time.Since(start).Milliseconds(), 10),
	})

	a.store(ctx, promptType, prompt, raw, err)
	if err != nil {
		if _, ok := apperror.As(err); !ok {
			err = apperror.UpstreamUnavailable("llm.generate", "model call failed", err)
		}
		return "", err
	}
	return raw, nil
}

// store archives the exchange. Archive failures are logged only.
func (a *Adapter) store(ctx context.Context, promptType, prompt, raw string, callErr error) {
	if a.archive == nil {
		return
	}

	rec := ArchiveRecord{
		PromptType: promptType,
		Prompt:     prompt,
		Response:   raw,
		CreatedAt:  time.Now(),
	}
	if callErr != nil {
		rec.Error = callErr.Error()
	}

	if err := a.archive.Save(context.WithoutCancel(ctx), rec); err != nil {
		a.logger.Warn("[llm][store] archive failed", map[string]string{
			"prompt_type": promptType,
			"error":       err.Error(),
		})
	}
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
