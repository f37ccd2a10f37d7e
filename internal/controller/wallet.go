package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
	"github.com/dwarvesf/crypto-bookkeeper/internal/consts"
	"github.com/dwarvesf/crypto-bookkeeper/internal/llm"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/webhook"
)

const defaultBulkTimeout = 300 * time.Second

type recordGroup struct {
	category model.Category
	records  []*model.TransactionRecord
}

func (g recordGroup) hashes() []string {
	out := make([]string, len(g.records))
	for i, r := range g.records {
		out[i] = r.Hash
	}
	return out
}

type groupResult struct {
	entries  []*model.ProposedEntry
	warnings []string
	err      error
}

func (c *Controller) AnalyseWallet(ctx context.Context, req WalletRequest, progress chan<- model.Progress) (*WalletAnalysisResult, error) {
	const op = "controller.AnalyseWallet"

	start := time.Now()
	if !common.IsHexAddress(req.Address) {
		return nil, apperror.Validation(op, "invalid wallet address "+req.Address)
	}
	address := strings.ToLower(req.Address)

	timeout := c.config.Pipeline.BulkTimeout
	if timeout <= 0 {
		timeout = defaultBulkTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	emit := func(phase model.ProgressPhase, msg string, counts map[string]int) {
		if progress == nil {
			return
		}
		select {
		case progress <- model.Progress{Phase: phase, Message: msg, Counts: counts}:
		case <-ctx.Done():
		}
	}

	runID := uuid.NewString()
	log := c.logger.With(map[string]string{"run_id": runID, "address": address})
	log.Info("[controller][AnalyseWallet] start")

	opts := req.Options
	if opts.Limit <= 0 {
		opts.Limit = 50
	}

	emit(model.PhaseFetching, "fetching wallet transactions", nil)
	wallet, err := c.explorer.GetWalletTransactions(runCtx, address, opts)
	if err != nil {
		log.Error("[controller][AnalyseWallet] fetch wallet", map[string]string{
			"error": err.Error(),
		})
		c.metrics.RecordWalletAnalysis(string(apperror.KindOf(err)), time.Since(start).Seconds())
		return nil, err
	}

	emit(model.PhaseCategorising, fmt.Sprintf("categorising %d transactions", len(wallet.Records)), nil)
	counts := c.categorizer.CategorizeAll(wallet.Records, address)

	result := &WalletAnalysisResult{
		RunID: runID,
		Analysis: WalletAnalysis{
			Address:    address,
			Summary:    wallet.Summary,
			Categories: counts,
		},
		Entries: []*model.ProposedEntry{},
		ProcessingResults: ProcessingResults{
			Successful: []GroupOutcome{},
			Failed:     []GroupFailure{},
		},
	}

	selected := c.selectRecords(runCtx, req, wallet.Records, &result.ProcessingResults)
	result.Analysis.Selected = len(selected)
	groups := groupByCategory(selected)

	emit(model.PhaseAnalysing, fmt.Sprintf("analysing %d categories", len(groups)), map[string]int{
		"groups":       len(groups),
		"transactions": len(selected),
		"skipped":      len(result.ProcessingResults.Skipped),
	})

	var outcomes []groupResult
	if len(groups) > 0 {
		chart, err := c.registry.FormattedChartForLLM()
		if err != nil {
			return nil, apperror.Internal(op, err)
		}
		outcomes = c.analyseGroups(runCtx, address, groups, chart)
	}

	result.TimedOut = errors.Is(runCtx.Err(), context.DeadlineExceeded)

	var proposed []*model.ProposedEntry
	for i, out := range outcomes {
		grp := groups[i]
		result.Warnings = append(result.Warnings, out.warnings...)
		if out.err != nil {
			result.ProcessingResults.Failed = append(result.ProcessingResults.Failed, GroupFailure{
				Category: grp.category,
				Hashes:   grp.hashes(),
				Kind:     apperror.KindOf(out.err),
				Reason:   out.err.Error(),
			})
			continue
		}
		result.ProcessingResults.Successful = append(result.ProcessingResults.Successful, GroupOutcome{
			Category: grp.category,
			Hashes:   grp.hashes(),
			Entries:  len(out.entries),
		})
		proposed = append(proposed, out.entries...)
	}

	entries, warnings := c.resolveAccounts(proposed)
	result.Warnings = append(result.Warnings, warnings...)

	emit(model.PhaseEnhancing, fmt.Sprintf("valuing %d entries", len(entries)), nil)
	// valuation and persistence still run for what was produced before a timeout
	c.enhance(context.WithoutCancel(runCtx), entries)

	records := make(map[string]*model.TransactionRecord, len(selected))
	for _, r := range selected {
		records[strings.ToLower(r.Hash)] = r
	}
	for _, e := range entries {
		applyDates([]*model.ProposedEntry{e}, records[strings.ToLower(e.TransactionHash)], nil)
	}
	result.Entries = entries
	c.metrics.RecordEntries("proposed", len(entries))

	if req.UserID != "" && len(entries) > 0 {
		emit(model.PhasePersisting, fmt.Sprintf("saving %d entries", len(entries)), nil)
		result.Saved = c.persistByHash(ctx, req.UserID, entries, records, &result.ProcessingResults)
	}

	if result.TimedOut {
		result.Warnings = append(result.Warnings, fmt.Sprintf("analysis stopped after %s; partial results returned", timeout))
	}

	pr := result.ProcessingResults
	emit(model.PhaseDone, "done", map[string]int{
		"entries":    len(result.Entries),
		"successful": len(pr.Successful),
		"failed":     len(pr.Failed),
		"skipped":    len(pr.Skipped),
	})

	if c.webhook != nil {
		c.webhook.NotifyBulkRun(context.WithoutCancel(ctx), c.config.Webhook.BulkRunURL, webhook.BulkRunSummary{
			RunID:          runID,
			UserID:         req.UserID,
			Address:        address,
			Transactions:   len(selected),
			EntriesCreated: len(result.Entries),
			Failed:         len(pr.Failed),
			Saved:          result.Saved,
			TimedOut:       result.TimedOut,
			FinishedAt:     time.Now(),
		})
	}

	status := "success"
	switch {
	case result.TimedOut:
		status = "timeout"
	case len(pr.Failed) > 0:
		status = "partial"
	}
	c.metrics.RecordWalletAnalysis(status, time.Since(start).Seconds())
	log.Info("[controller][AnalyseWallet] finished", map[string]string{
		"status":  status,
		"entries": itoa(len(result.Entries)),
	})

	return result, nil
}

// selectRecords applies the category allow-list and moves hashes the user
// already recorded into Skipped.
func (c *Controller) selectRecords(ctx context.Context, req WalletRequest, records []*model.TransactionRecord, pr *ProcessingResults) []*model.TransactionRecord {
	allowed := make(map[model.Category]bool, len(req.Categories))
	for _, cat := range req.Categories {
		allowed[cat] = true
	}

	selected := make([]*model.TransactionRecord, 0, len(records))
	for _, rec := range records {
		if len(allowed) > 0 && !allowed[rec.Category] {
			continue
		}
		if _, ok := c.recorded(ctx, req.UserID, rec.Hash); ok {
			pr.Skipped = append(pr.Skipped, rec.Hash)
			continue
		}
		selected = append(selected, rec)
	}
	return selected
}

// groupByCategory keeps categories in order of first appearance and records
// in input order within each category.
func groupByCategory(records []*model.TransactionRecord) []recordGroup {
	var (
		groups []recordGroup
		index  = map[model.Category]int{}
	)
	for _, rec := range records {
		i, ok := index[rec.Category]
		if !ok {
			i = len(groups)
			index[rec.Category] = i
			groups = append(groups, recordGroup{category: rec.Category})
		}
		groups[i].records = append(groups[i].records, rec)
	}
	return groups
}

func (c *Controller) analyseGroups(ctx context.Context, address string, groups []recordGroup, chart string) []groupResult {
	limit := c.config.Pipeline.MaxConcurrency
	if limit <= 0 || limit > consts.MaxBulkConcurrency {
		limit = consts.MaxBulkConcurrency
	}

	outcomes := make([]groupResult, len(groups))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, grp := range groups {
		g.Go(func() error {
			outcomes[i] = c.analyseGroup(ctx, address, grp, chart)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (c *Controller) analyseGroup(ctx context.Context, address string, grp recordGroup, chart string) groupResult {
	const op = "controller.analyseGroup"

	if err := ctx.Err(); err != nil {
		return groupResult{err: apperror.Timeout(op, err)}
	}

	var live []*model.TransactionRecord
	for _, rec := range grp.records {
		if rec.Status != model.TxStatusFailed {
			live = append(live, rec)
		}
	}

	var (
		res     groupResult
		buckets = map[string][]*model.ProposedEntry{}
	)
	if len(live) > 0 {
		analysis, err := c.llm.AnalyseCategory(ctx, llm.CategoryPrompt{
			Category: grp.category,
			Address:  address,
			Records:  live,
			Chart:    chart,
		})
		if err != nil {
			c.logger.Error("[controller][analyseGroup] model call failed", map[string]string{
				"category": string(grp.category),
				"error":    err.Error(),
			})
			return groupResult{err: err}
		}

		items, warnings := Flatten(analysis.Items)
		res.warnings = append(res.warnings, warnings...)
		res.warnings = append(res.warnings, analysis.Dropped...)

		converted, warnings := convertItems(items)
		res.warnings = append(res.warnings, warnings...)

		known := make(map[string]bool, len(live))
		for _, rec := range live {
			known[strings.ToLower(rec.Hash)] = true
		}
		for _, e := range converted {
			h := strings.ToLower(e.TransactionHash)
			switch {
			case known[h]:
			case h == "" && len(live) == 1:
				h = strings.ToLower(live[0].Hash)
			default:
				res.warnings = append(res.warnings, fmt.Sprintf("%s: entry for unknown transaction %q dropped", grp.category, e.TransactionHash))
				continue
			}
			buckets[h] = append(buckets[h], e)
		}
	}

	for _, rec := range grp.records {
		res.entries = append(res.entries, completeRecordEntries(rec, buckets[strings.ToLower(rec.Hash)], address)...)
	}
	return res
}

// persistByHash stores entries one transaction at a time. Already recorded
// hashes go to Skipped and write failures to Failed. It reports whether any
// transaction was stored.
func (c *Controller) persistByHash(ctx context.Context, userID string, entries []*model.ProposedEntry, records map[string]*model.TransactionRecord, pr *ProcessingResults) bool {
	var (
		order  []string
		byHash = map[string][]*model.ProposedEntry{}
	)
	for _, e := range entries {
		h := strings.ToLower(e.TransactionHash)
		if _, ok := byHash[h]; !ok {
			order = append(order, h)
		}
		byHash[h] = append(byHash[h], e)
	}

	saved := false
	for _, h := range order {
		rec := records[h]
		_, err := c.PersistEntries(ctx, PersistRequest{
			UserID:  userID,
			Hash:    h,
			Record:  rec,
			Entries: byHash[h],
			Source:  model.EntrySourceAIBulk,
		})
		switch {
		case err == nil:
			saved = true
		case apperror.Is(err, apperror.KindConflict):
			pr.Skipped = append(pr.Skipped, h)
		default:
			failure := GroupFailure{Hashes: []string{h}, Kind: apperror.KindOf(err), Reason: err.Error()}
			if rec != nil {
				failure.Category = rec.Category
			}
			pr.Failed = append(pr.Failed, failure)
		}
	}
	return saved
}
