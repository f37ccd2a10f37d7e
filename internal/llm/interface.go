package llm

import (
	"context"

	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

// IModel is a text-in/text-out language model.
type IModel interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

type TransactionPrompt struct {
	Record      *model.TransactionRecord
	Description string
	Chart       string
}

type CategoryPrompt struct {
	Category model.Category
	Address  string
	Records  []*model.TransactionRecord
	Chart    string
}

type ChatPrompt struct {
	Message  string
	Context  string
	Chart    string
	FreeForm *FreeForm
}

// Analysis is the parsed output of one model call. Items are either flat
// entries or nested {transactionHash, category, entries[]} groups.
type Analysis struct {
	Items   []map[string]any
	Dropped []string
	Raw     string
}

type ChatAnalysis struct {
	Response    string
	Thinking    string
	Suggestions []string
	Items       []map[string]any
	Raw         string
}

type IAdapter interface {
	AnalyseTransaction(ctx context.Context, in TransactionPrompt) (*Analysis, error)
	AnalyseCategory(ctx context.Context, in CategoryPrompt) (*Analysis, error)
	Chat(ctx context.Context, in ChatPrompt) (*ChatAnalysis, error)
}
