package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
	"github.com/dwarvesf/crypto-bookkeeper/internal/explorer"
	"github.com/dwarvesf/crypto-bookkeeper/internal/llm"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

// Chat routes a message to the single transaction path when it carries a
// hash, to the wallet path when it asks for a wallet analysis, and to a
// general prompt otherwise. AlreadySaved is set whenever this call
// persisted, or found persisted, the returned entries.
func (c *Controller) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	const op = "controller.Chat"

	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, apperror.Validation(op, "message is required")
	}
	free := llm.ExtractFreeForm(msg)

	if hash := llm.ExtractTransactionHash(msg); hash != "" {
		return c.chatTransaction(ctx, req, hash, free)
	}
	if llm.IsWalletAnalysisRequest(msg) {
		return c.chatWallet(ctx, req, llm.ExtractAddress(msg))
	}
	return c.chatGeneral(ctx, req, free)
}

func (c *Controller) chatTransaction(ctx context.Context, req ChatRequest, hash string, free *llm.FreeForm) (*ChatResponse, error) {
	result, err := c.Analyse(ctx, AnalyseRequest{
		Hash:          hash,
		Description:   req.Message,
		UserID:        req.UserID,
		ExtractedDate: free.Date,
		Source:        model.EntrySourceAIChat,
	})
	if err != nil {
		if e, ok := apperror.As(err); ok && e.Kind == apperror.KindConflict {
			existing, _ := e.Existing.([]*model.JournalEntry)
			return &ChatResponse{
				Response:       fmt.Sprintf("Transaction %s is already recorded with %d journal entries.", shortHash(hash), len(existing)),
				Suggestions:    []string{"Review the existing entries before recording this transaction again"},
				JournalEntries: fromJournalEntries(existing, hash),
				AlreadySaved:   true,
			}, nil
		}
		return nil, err
	}

	resp := &ChatResponse{
		Response:       fmt.Sprintf("Prepared %d journal entries for transaction %s.", len(result.Entries), shortHash(hash)),
		Suggestions:    result.Warnings,
		JournalEntries: result.Entries,
		AlreadySaved:   result.Saved,
	}
	if result.Saved {
		resp.Response = fmt.Sprintf("Recorded %d journal entries for transaction %s.", len(result.Entries), shortHash(hash))
	}
	if resp.Suggestions == nil {
		resp.Suggestions = []string{}
	}
	return resp, nil
}

func (c *Controller) chatWallet(ctx context.Context, req ChatRequest, address string) (*ChatResponse, error) {
	result, err := c.AnalyseWallet(ctx, WalletRequest{
		Address: address,
		Options: explorer.DefaultWalletOptions(),
		UserID:  req.UserID,
	}, nil)
	if err != nil {
		return nil, err
	}

	pr := result.ProcessingResults
	resp := &ChatResponse{
		Response: fmt.Sprintf("Analysed %d transactions of %s: %d entries, %d categories failed, %d already recorded.",
			result.Analysis.Selected, address, len(result.Entries), len(pr.Failed), len(pr.Skipped)),
		Suggestions:    []string{},
		JournalEntries: result.Entries,
		AlreadySaved:   result.Saved,
	}
	for _, f := range pr.Failed {
		resp.Suggestions = append(resp.Suggestions, fmt.Sprintf("Retry %s: %s", f.Category, f.Reason))
	}
	if result.TimedOut {
		resp.Suggestions = append(resp.Suggestions, "The analysis timed out; run it again to pick up the remaining transactions")
	}
	return resp, nil
}

func (c *Controller) chatGeneral(ctx context.Context, req ChatRequest, free *llm.FreeForm) (*ChatResponse, error) {
	const op = "controller.Chat"

	chart, err := c.registry.FormattedChartForLLM()
	if err != nil {
		return nil, apperror.Internal(op, err)
	}

	in := llm.ChatPrompt{Message: req.Message, Context: req.Context, Chart: chart}
	if !free.Empty() {
		in.FreeForm = free
	}
	answer, err := c.llm.Chat(ctx, in)
	if err != nil {
		return nil, err
	}

	items, _ := Flatten(answer.Items)
	entries, _ := convertItems(items)
	entries, warnings := c.resolveAccounts(entries)
	c.enhance(ctx, entries)
	applyDates(entries, nil, free.Date)

	suggestions := append([]string{}, answer.Suggestions...)
	suggestions = append(suggestions, warnings...)

	return &ChatResponse{
		Response:       answer.Response,
		Thinking:       answer.Thinking,
		Suggestions:    suggestions,
		JournalEntries: entries,
	}, nil
}

func fromJournalEntries(rows []*model.JournalEntry, hash string) []*model.ProposedEntry {
	out := make([]*model.ProposedEntry, 0, len(rows))
	for _, r := range rows {
		txDate := r.TransactionDate
		out = append(out, &model.ProposedEntry{
			AccountDebit:    r.AccountDebit,
			AccountCredit:   r.AccountCredit,
			Amount:          r.Amount,
			Currency:        r.Currency,
			Narrative:       r.Narrative,
			Confidence:      r.AIConfidence,
			EntryType:       r.EntryType,
			TransactionHash: hash,
			TransactionDate: &txDate,
			USDValue:        r.USDValue,
			USDRate:         r.USDRate,
			USDSource:       r.USDSource,
			USDTimestamp:    r.USDTimestamp,
		})
	}
	return out
}
