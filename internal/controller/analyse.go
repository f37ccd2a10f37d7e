package controller

import (
	"context"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
	"github.com/dwarvesf/crypto-bookkeeper/internal/llm"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

func (c *Controller) Analyse(ctx context.Context, req AnalyseRequest) (*AnalyseResult, error) {
	start := time.Now()
	if req.Source == "" {
		req.Source = model.EntrySourceAISingle
	}

	result, err := c.analyse(ctx, req)

	status := "success"
	if err != nil {
		status = string(apperror.KindOf(err))
	}
	c.metrics.RecordAnalysis(string(req.Source), status, time.Since(start).Seconds())
	return result, err
}

func (c *Controller) analyse(ctx context.Context, req AnalyseRequest) (*AnalyseResult, error) {
	const op = "controller.Analyse"

	hash := strings.ToLower(strings.TrimSpace(req.Hash))
	if !isTxHash(hash) {
		return nil, apperror.Validation(op, "invalid transaction hash "+req.Hash)
	}

	if existing, ok := c.recorded(ctx, req.UserID, hash); ok {
		return nil, apperror.Conflict(op, "transaction already recorded", existing)
	}

	rec, err := c.explorer.GetTransaction(ctx, hash)
	if err != nil {
		c.logger.Error("[controller][Analyse] fetch transaction", map[string]string{
			"hash":  hash,
			"error": err.Error(),
		})
		return nil, err
	}

	user := req.Address
	if user == "" {
		user = rec.From
	}
	rec.Category, rec.Direction = c.categorizer.Categorize(rec, user)

	result := &AnalyseResult{Transaction: rec}

	var entries []*model.ProposedEntry
	if rec.Status != model.TxStatusFailed {
		chart, err := c.registry.FormattedChartForLLM()
		if err != nil {
			return nil, apperror.Internal(op, err)
		}

		analysis, err := c.llm.AnalyseTransaction(ctx, llm.TransactionPrompt{
			Record:      rec,
			Description: req.Description,
			Chart:       chart,
		})
		if err != nil {
			c.recordAnalysisFailure(ctx, req.UserID, rec, req.Description)
			return nil, err
		}

		items, warnings := Flatten(analysis.Items)
		result.Warnings = append(result.Warnings, warnings...)
		result.Warnings = append(result.Warnings, analysis.Dropped...)

		converted, warnings := convertItems(items)
		result.Warnings = append(result.Warnings, warnings...)
		entries = converted
	}

	entries = completeRecordEntries(rec, entries, user)

	entries, warnings := c.resolveAccounts(entries)
	result.Warnings = append(result.Warnings, warnings...)

	c.enhance(ctx, entries)
	applyDates(entries, rec, req.ExtractedDate)
	c.metrics.RecordEntries("proposed", len(entries))
	result.Entries = entries

	if req.UserID == "" || len(entries) == 0 {
		return result, nil
	}

	persisted, err := c.PersistEntries(ctx, PersistRequest{
		UserID:        req.UserID,
		Hash:          rec.Hash,
		Description:   req.Description,
		Record:        rec,
		Entries:       entries,
		Source:        req.Source,
		ExtractedDate: req.ExtractedDate,
	})
	if err != nil {
		return nil, err
	}
	result.Saved = true
	result.Persisted = persisted
	return result, nil
}

func isTxHash(h string) bool {
	b, err := hexutil.Decode(h)
	return err == nil && len(b) == 32
}
