package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
	"github.com/dwarvesf/crypto-bookkeeper/internal/controller"
	"github.com/dwarvesf/crypto-bookkeeper/internal/handler/handlertest"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
	"github.com/dwarvesf/crypto-bookkeeper/internal/types/environments"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
)

func generalReply(ctx context.Context, req controller.ChatRequest) (*controller.ChatResponse, error) {
	return &controller.ChatResponse{
		Response: "Recorded as consulting expense.",
		JournalEntries: []*model.ProposedEntry{{
			AccountDebit:  "Consulting Expense",
			AccountCredit: "Cash",
			Amount:        decimal.NewFromInt(1200),
			Currency:      "USD",
		}},
		Suggestions: []string{},
	}, nil
}

func send(ctrl *handlertest.Controller, body string, userID string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/chat", New(ctrl, logger.New(environments.Test)).Chat)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(userIDHeader, userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func responseOf(t *testing.T, w *httptest.ResponseRecorder) controller.ChatResponse {
	t.Helper()
	var env struct {
		Data controller.ChatResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Data
}

func TestChat_RequiresMessage(t *testing.T) {
	ctrl := &handlertest.Controller{}
	w := send(ctrl, `{"message":""}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, ctrl.ChatRequests)
}

func TestChat_WithoutSave(t *testing.T) {
	ctrl := &handlertest.Controller{ChatFn: generalReply}

	w := send(ctrl, `{"message":"paid 1200 USD to a consultant","context":"Q1 books"}`, "user-1")

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, ctrl.ChatRequests, 1)
	assert.Equal(t, "Q1 books", ctrl.ChatRequests[0].Context)
	assert.Equal(t, "user-1", ctrl.ChatRequests[0].UserID)
	assert.Empty(t, ctrl.PersistRequests)
	assert.False(t, responseOf(t, w).AlreadySaved)
}

func TestChat_SaveGeneralEntries(t *testing.T) {
	ctrl := &handlertest.Controller{ChatFn: generalReply}

	w := send(ctrl, `{"message":"paid 1200 USD to a consultant","save":true}`, "user-1")

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, ctrl.PersistRequests, 1)
	got := ctrl.PersistRequests[0]
	assert.True(t, strings.HasPrefix(got.Hash, "chat-"))
	assert.Equal(t, model.EntrySourceAIChat, got.Source)
	assert.Equal(t, "user-1", got.UserID)
	assert.Len(t, got.Entries, 1)
	assert.True(t, responseOf(t, w).AlreadySaved)
}

func TestChat_SaveSkipsWithoutUserOrWhenSaved(t *testing.T) {
	ctrl := &handlertest.Controller{ChatFn: generalReply}
	send(ctrl, `{"message":"paid 1200 USD","save":true}`, "")
	assert.Empty(t, ctrl.PersistRequests)

	ctrl = &handlertest.Controller{
		ChatFn: func(ctx context.Context, req controller.ChatRequest) (*controller.ChatResponse, error) {
			res, _ := generalReply(ctx, req)
			res.AlreadySaved = true
			return res, nil
		},
	}
	send(ctrl, `{"message":"paid 1200 USD","save":true}`, "user-1")
	assert.Empty(t, ctrl.PersistRequests)
}

func TestChat_SaveConflict(t *testing.T) {
	ctrl := &handlertest.Controller{
		ChatFn: generalReply,
		PersistFn: func(ctx context.Context, req controller.PersistRequest) (*controller.PersistResult, error) {
			return nil, apperror.Conflict("persist", "already recorded", nil)
		},
	}

	w := send(ctrl, `{"message":"paid 1200 USD","save":true}`, "user-1")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Recorded as consulting expense.", responseOf(t, w).Response)
}

func TestChat_SaveGroupsEntriesByTransaction(t *testing.T) {
	entry := func(hash, debit string) *model.ProposedEntry {
		return &model.ProposedEntry{
			AccountDebit:    debit,
			AccountCredit:   "Digital Assets - Ethereum",
			Amount:          decimal.NewFromInt(1),
			Currency:        "ETH",
			TransactionHash: hash,
		}
	}
	ctrl := &handlertest.Controller{
		ChatFn: func(ctx context.Context, req controller.ChatRequest) (*controller.ChatResponse, error) {
			return &controller.ChatResponse{
				Response: "Analysed 2 transactions.",
				JournalEntries: []*model.ProposedEntry{
					entry("0xaaa", "Consulting Expense"),
					entry("0xbbb", "Transaction Fees"),
					entry("0xaaa", "Transaction Fees"),
				},
				Suggestions: []string{},
			}, nil
		},
	}

	w := send(ctrl, `{"message":"analyse wallet 0x1111111111111111111111111111111111111111","save":true}`, "user-1")

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, ctrl.PersistRequests, 2)
	assert.Equal(t, "0xaaa", ctrl.PersistRequests[0].Hash)
	require.Len(t, ctrl.PersistRequests[0].Entries, 2)
	assert.Equal(t, "Consulting Expense", ctrl.PersistRequests[0].Entries[0].AccountDebit)
	assert.Equal(t, "Transaction Fees", ctrl.PersistRequests[0].Entries[1].AccountDebit)
	assert.Equal(t, "0xbbb", ctrl.PersistRequests[1].Hash)
	assert.Len(t, ctrl.PersistRequests[1].Entries, 1)
	assert.True(t, responseOf(t, w).AlreadySaved)
}
