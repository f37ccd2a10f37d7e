// Package handlertest holds fakes shared by the handler tests.
package handlertest

import (
	"context"
	"net/http/httptest"
	"sync"

	"github.com/dwarvesf/crypto-bookkeeper/internal/controller"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

// Controller records requests and answers with the configured funcs.
type Controller struct {
	mu sync.Mutex

	AnalyseFn func(ctx context.Context, req controller.AnalyseRequest) (*controller.AnalyseResult, error)
	WalletFn  func(ctx context.Context, req controller.WalletRequest, progress chan<- model.Progress) (*controller.WalletAnalysisResult, error)
	ChatFn    func(ctx context.Context, req controller.ChatRequest) (*controller.ChatResponse, error)
	PersistFn func(ctx context.Context, req controller.PersistRequest) (*controller.PersistResult, error)

	AnalyseRequests []controller.AnalyseRequest
	WalletRequests  []controller.WalletRequest
	ChatRequests    []controller.ChatRequest
	PersistRequests []controller.PersistRequest
}

func (c *Controller) Analyse(ctx context.Context, req controller.AnalyseRequest) (*controller.AnalyseResult, error) {
	c.mu.Lock()
	c.AnalyseRequests = append(c.AnalyseRequests, req)
	c.mu.Unlock()
	return c.AnalyseFn(ctx, req)
}

func (c *Controller) AnalyseWallet(ctx context.Context, req controller.WalletRequest, progress chan<- model.Progress) (*controller.WalletAnalysisResult, error) {
	c.mu.Lock()
	c.WalletRequests = append(c.WalletRequests, req)
	c.mu.Unlock()
	return c.WalletFn(ctx, req, progress)
}

func (c *Controller) Chat(ctx context.Context, req controller.ChatRequest) (*controller.ChatResponse, error) {
	c.mu.Lock()
	c.ChatRequests = append(c.ChatRequests, req)
	c.mu.Unlock()
	return c.ChatFn(ctx, req)
}

func (c *Controller) PersistEntries(ctx context.Context, req controller.PersistRequest) (*controller.PersistResult, error) {
	c.mu.Lock()
	c.PersistRequests = append(c.PersistRequests, req)
	c.mu.Unlock()
	if c.PersistFn == nil {
		return &controller.PersistResult{}, nil
	}
	return c.PersistFn(ctx, req)
}

// StreamRecorder is a ResponseRecorder that gin can stream to.
type StreamRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func NewStreamRecorder() *StreamRecorder {
	return &StreamRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}
}

func (r *StreamRecorder) CloseNotify() <-chan bool { return r.closed }
