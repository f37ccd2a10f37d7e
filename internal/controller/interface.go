package controller

import (
	"context"
	"time"

	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
	"github.com/dwarvesf/crypto-bookkeeper/internal/explorer"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

type IController interface {
	// Analyse turns one transaction hash into journal entries and persists
	// them when UserID is set. A hash already recorded for the user yields a
	// Conflict error carrying the stored entries.
	Analyse(ctx context.Context, req AnalyseRequest) (*AnalyseResult, error)

	// AnalyseWallet runs the bulk path for an address. progress may be nil;
	// it is not closed by AnalyseWallet.
	AnalyseWallet(ctx context.Context, req WalletRequest, progress chan<- model.Progress) (*WalletAnalysisResult, error)

	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// PersistEntries stores entries under one transaction header per
	// (user, hash). It is not cancelled by ctx.
	PersistEntries(ctx context.Context, req PersistRequest) (*PersistResult, error)
}

type AnalyseRequest struct {
	Hash        string
	Description string
	UserID      string
	// Address is the user's wallet; the sender is assumed when empty.
	Address       string
	ExtractedDate *time.Time
	Source        model.EntrySource
}

type AnalyseResult struct {
	Transaction *model.TransactionRecord `json:"transaction"`
	Entries     []*model.ProposedEntry   `json:"entries"`
	Warnings    []string                 `json:"warnings,omitempty"`
	Saved       bool                     `json:"saved"`
	Persisted   *PersistResult           `json:"persisted,omitempty"`
}

type WalletRequest struct {
	Address    string
	Options    explorer.WalletOptions
	UserID     string
	Categories []model.Category
}

type WalletAnalysis struct {
	Address    string                 `json:"address"`
	Summary    explorer.WalletSummary `json:"summary"`
	Categories map[model.Category]int `json:"categories"`
	Selected   int                    `json:"selected"`
}

type GroupOutcome struct {
	Category model.Category `json:"category"`
	Hashes   []string       `json:"hashes"`
	Entries  int            `json:"entries"`
}

type GroupFailure struct {
	Category model.Category `json:"category,omitempty"`
	Hashes   []string       `json:"hashes,omitempty"`
	Kind     apperror.Kind  `json:"kind"`
	Reason   string         `json:"reason"`
}

type ProcessingResults struct {
	Successful []GroupOutcome `json:"successful"`
	Failed     []GroupFailure `json:"failed"`
	// Skipped lists hashes the user has already recorded.
	Skipped []string `json:"skipped,omitempty"`
}

type WalletAnalysisResult struct {
	RunID             string                 `json:"run_id"`
	Analysis          WalletAnalysis         `json:"analysis"`
	Entries           []*model.ProposedEntry `json:"entries"`
	ProcessingResults ProcessingResults      `json:"processing_results"`
	Saved             bool                   `json:"saved"`
	TimedOut          bool                   `json:"timed_out"`
	Warnings          []string               `json:"warnings,omitempty"`
}

type ChatRequest struct {
	Message string
	Context string
	UserID  string
}

type ChatResponse struct {
	Response       string                 `json:"response"`
	Thinking       string                 `json:"thinking,omitempty"`
	Suggestions    []string               `json:"suggestions"`
	JournalEntries []*model.ProposedEntry `json:"journalEntries"`
	AlreadySaved   bool                   `json:"alreadySaved"`
}

type PersistRequest struct {
	UserID      string
	Hash        string
	Description string
	// Record is stored as blockchain_data and dates the entries.
	Record        *model.TransactionRecord
	Entries       []*model.ProposedEntry
	Source        model.EntrySource
	ExtractedDate *time.Time
}

type PersistResult struct {
	Transaction *model.Transaction    `json:"transaction,omitempty"`
	Entries     []*model.JournalEntry `json:"entries"`
}
