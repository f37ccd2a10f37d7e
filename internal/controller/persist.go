package controller

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
	"github.com/dwarvesf/crypto-bookkeeper/internal/consts"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
	"github.com/dwarvesf/crypto-bookkeeper/internal/store"
)

var maxEntryAmount = decimal.RequireFromString(consts.MaxEntryAmount)

// PersistEntries writes one transaction header and its entries. A header
// that already holds entries yields a Conflict carrying them. When an entry
// insert fails the header is marked failed, the entries written so far stay
// and are returned alongside the error.
func (c *Controller) PersistEntries(ctx context.Context, req PersistRequest) (*PersistResult, error) {
	const op = "controller.PersistEntries"

	ctx = context.WithoutCancel(ctx)
	start := time.Now()

	hash := strings.ToLower(strings.TrimSpace(req.Hash))
	switch {
	case req.UserID == "":
		return nil, apperror.Validation(op, "user id is required")
	case hash == "":
		return nil, apperror.Validation(op, "transaction hash is required")
	case len(req.Entries) == 0:
		return nil, apperror.Validation(op, "no entries to persist")
	}
	if err := checkOverflow(req.Entries); err != nil {
		return nil, err
	}

	rows, err := buildRows(req)
	if err != nil {
		return nil, apperror.Internal(op, err)
	}

	db := c.db.WithContext(ctx)

	var header *model.Transaction
	err = store.DoInTx(db, func(tx *gorm.DB) error {
		existing, err := c.store.Transaction.GetByUserAndTxID(tx, req.UserID, hash)
		if err == nil {
			entries, err := c.store.JournalEntry.ListByTransactionID(tx, existing.ID)
			if err != nil {
				return errors.Wrap(err, "list existing entries")
			}
			if existing.Status == model.TransactionStatusFailed && len(entries) == 0 {
				header = existing
				header.Status = model.TransactionStatusPending
				return c.store.Transaction.UpdateStatus(tx, existing.ID, model.TransactionStatusPending)
			}
			return apperror.Conflict(op, "transaction already recorded", entries)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(err, "lookup transaction")
		}

		header, err = c.store.Transaction.Create(tx, &model.Transaction{
			UserID:         req.UserID,
			TxID:           hash,
			Description:    req.Description,
			BlockchainData: blockchainData(req.Record),
			Status:         model.TransactionStatusPending,
		})
		return err
	})
	if err != nil {
		if apperror.Is(err, apperror.KindConflict) {
			c.metrics.RecordDatabaseOperation("persist", "conflict", time.Since(start).Seconds())
			return nil, err
		}
		// a concurrent writer may have won the (user_id, txid) index
		if existing, lookupErr := c.existingEntries(db, req.UserID, hash); lookupErr == nil {
			return nil, apperror.Conflict(op, "transaction already recorded", existing)
		}

		appErr := apperror.Internal(op, err)
		c.logger.Error("[controller][PersistEntries] create transaction header", map[string]string{
			"hash":           hash,
			"user_id":        req.UserID,
			"correlation_id": appErr.CorrelationID,
			"error":          err.Error(),
		})
		c.metrics.RecordDatabaseOperation("persist", "error", time.Since(start).Seconds())
		return nil, appErr
	}

	saved := make([]*model.JournalEntry, 0, len(rows))
	for _, row := range rows {
		row.TransactionID = &header.ID
		if _, err := c.store.JournalEntry.Create(db, row); err != nil {
			appErr := apperror.Internal(op, err)
			c.recordFailure(db, header, appErr)
			c.metrics.RecordDatabaseOperation("persist", "error", time.Since(start).Seconds())
			return &PersistResult{Transaction: header, Entries: saved}, appErr
		}
		saved = append(saved, row)
	}

	if err := c.store.Transaction.UpdateStatus(db, header.ID, model.TransactionStatusProcessed); err != nil {
		c.logger.Error("[controller][PersistEntries] mark processed", map[string]string{
			"hash":  hash,
			"error": err.Error(),
		})
	} else {
		header.Status = model.TransactionStatusProcessed
	}

	c.metrics.RecordDatabaseOperation("persist", "success", time.Since(start).Seconds())
	c.metrics.RecordEntries("persisted", len(saved))
	c.logger.Info("[controller][PersistEntries] persisted", map[string]string{
		"hash":    hash,
		"user_id": req.UserID,
		"entries": itoa(len(saved)),
	})

	return &PersistResult{Transaction: header, Entries: saved}, nil
}

func (c *Controller) existingEntries(db *gorm.DB, userID, hash string) ([]*model.JournalEntry, error) {
	header, err := c.store.Transaction.GetByUserAndTxID(db, userID, hash)
	if err != nil {
		return nil, err
	}
	return c.store.JournalEntry.ListByTransactionID(db, header.ID)
}

// recorded reports whether the user already holds entries for hash.
func (c *Controller) recorded(ctx context.Context, userID, hash string) ([]*model.JournalEntry, bool) {
	if userID == "" || c.db == nil {
		return nil, false
	}
	entries, err := c.existingEntries(c.db.WithContext(ctx), userID, hash)
	if err != nil || len(entries) == 0 {
		return nil, false
	}
	return entries, true
}

func (c *Controller) recordFailure(db *gorm.DB, header *model.Transaction, cause *apperror.Error) {
	c.logger.Error("[controller][PersistEntries] entry insert failed", map[string]string{
		"hash":           header.TxID,
		"correlation_id": cause.CorrelationID,
		"error":          cause.Error(),
	})
	if err := c.store.Transaction.UpdateStatus(db, header.ID, model.TransactionStatusFailed); err != nil {
		c.logger.Error("[controller][PersistEntries] mark failed", map[string]string{
			"hash":  header.TxID,
			"error": err.Error(),
		})
		return
	}
	header.Status = model.TransactionStatusFailed
}

// recordAnalysisFailure leaves a failed header with no entries so the hash
// can be retried.
func (c *Controller) recordAnalysisFailure(ctx context.Context, userID string, rec *model.TransactionRecord, description string) {
	if userID == "" || rec == nil || c.db == nil {
		return
	}
	db := c.db.WithContext(context.WithoutCancel(ctx))
	if _, err := c.store.Transaction.GetByUserAndTxID(db, userID, rec.Hash); !errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	if _, err := c.store.Transaction.Create(db, &model.Transaction{
		UserID:         userID,
		TxID:           rec.Hash,
		Description:    description,
		BlockchainData: blockchainData(rec),
		Status:         model.TransactionStatusFailed,
	}); err != nil {
		c.logger.Error("[controller][recordAnalysisFailure] create header", map[string]string{
			"hash":  rec.Hash,
			"error": err.Error(),
		})
	}
}

func checkOverflow(entries []*model.ProposedEntry) error {
	const op = "controller.checkOverflow"
	for _, e := range entries {
		if e.Amount.Abs().GreaterThanOrEqual(maxEntryAmount) {
			return apperror.Overflow(op, "amount "+e.Amount.String()+" exceeds the storable range")
		}
		if e.USDValue != nil && e.USDValue.Abs().GreaterThanOrEqual(maxEntryAmount) {
			return apperror.Overflow(op, "usd value "+e.USDValue.String()+" exceeds the storable range")
		}
	}
	return nil
}

func buildRows(req PersistRequest) ([]*model.JournalEntry, error) {
	now := time.Now().UTC()

	var blockTime time.Time
	if req.Record != nil && !req.Record.Timestamp.IsZero() {
		blockTime = req.Record.Timestamp.UTC()
	}

	entryDate := now.Truncate(24 * time.Hour)
	if !blockTime.IsZero() {
		entryDate = blockTime.Truncate(24 * time.Hour)
	}

	source := req.Source
	if source == "" {
		source = model.EntrySourceAISingle
	}

	rows := make([]*model.JournalEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		txDate := now
		switch {
		case e.TransactionDate != nil:
			txDate = *e.TransactionDate
		case req.ExtractedDate != nil:
			txDate = *req.ExtractedDate
		case !blockTime.IsZero():
			txDate = blockTime
		}

		meta := map[string]any{}
		for k, v := range e.Metadata {
			meta[k] = v
		}
		meta["transaction_hash"] = strings.ToLower(req.Hash)
		if e.Category != "" {
			meta["category"] = e.Category
		}
		if e.RequiresAccountCreation {
			meta["requires_account_creation"] = true
		}
		raw, err := json.Marshal(meta)
		if err != nil {
			return nil, errors.Wrap(err, "marshal entry metadata")
		}

		entryType := e.EntryType
		if entryType == "" {
			entryType = model.EntryTypeMain
		}

		rows = append(rows, &model.JournalEntry{
			UserID:          req.UserID,
			AccountDebit:    e.AccountDebit,
			AccountCredit:   e.AccountCredit,
			Amount:          e.Amount,
			Currency:        e.Currency,
			EntryType:       entryType,
			EntryDate:       entryDate,
			TransactionDate: txDate,
			Narrative:       e.Narrative,
			AIConfidence:    e.Confidence,
			Source:          source,
			Metadata:        datatypes.JSON(raw),
			USDValue:        e.USDValue,
			USDRate:         e.USDRate,
			USDSource:       usdSource(e.USDSource),
			USDTimestamp:    e.USDTimestamp,
		})
	}
	return rows, nil
}

func usdSource(s model.USDSource) model.USDSource {
	if s == "" {
		return model.USDSourceNone
	}
	return s
}

func blockchainData(rec *model.TransactionRecord) datatypes.JSON {
	if rec == nil {
		return datatypes.JSON("{}")
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}
