package journal

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/dwarvesf/crypto-bookkeeper/internal/controller"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
	"github.com/dwarvesf/crypto-bookkeeper/internal/view"
)

// UserIDHeader names the caller. Requests without it are analysed but not
// saved.
const UserIDHeader = "X-User-ID"

type handler struct {
	controller controller.IController
	validate   *validator.Validate
	logger     *logger.Logger
}

func New(controller controller.IController, logger *logger.Logger) IHandler {
	return &handler{
		controller: controller,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Analyse godoc
// @Summary Analyse one transaction
// @Description Fetches a transaction, proposes journal entries and saves them for the caller
// @id analyseTransaction
// @Tags Journal
// @Accept json
// @Produce json
// @Param X-User-ID header string false "caller id; entries are saved when set"
// @Param request body AnalyseRequest true "transaction to analyse"
// @Success 200 {object} controller.AnalyseResult
// @Failure 400 {object} view.ErrorResponse
// @Failure 404 {object} view.ErrorResponse
// @Failure 409 {object} view.ErrorResponse
// @Failure 422 {object} view.ErrorResponse
// @Failure 502 {object} view.ErrorResponse
// @Router /journal/analyse [post]
func (h *handler) Analyse(c *gin.Context) {
	var req AnalyseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("[journal][Analyse][ShouldBindJSON]", map[string]string{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	res, err := h.controller.Analyse(c.Request.Context(), controller.AnalyseRequest{
		Hash:          req.Hash,
		Description:   req.Description,
		UserID:        c.GetHeader(UserIDHeader),
		Address:       req.Address,
		ExtractedDate: req.extractedDate(),
		Source:        model.EntrySourceAISingle,
	})
	if err != nil {
		h.logger.Error("[journal][Analyse]", map[string]string{
			"hash":  req.Hash,
			"error": err.Error(),
		})
		c.JSON(view.StatusCode(err), view.CreateResponse[any](nil, err, req, "can't analyse transaction"))
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse[any](res, nil, nil, ""))
}

// AnalyseWallet godoc
// @Summary Analyse a wallet
// @Description Fetches a wallet's history, analyses it per category and saves the entries for the caller.
// @Description With "Accept: text/event-stream" progress events are streamed before the final result event.
// @id analyseWallet
// @Tags Journal
// @Accept json
// @Produce json
// @Produce text/event-stream
// @Param X-User-ID header string false "caller id; entries are saved when set"
// @Param request body WalletRequest true "wallet to analyse"
// @Success 200 {object} controller.WalletAnalysisResult
// @Failure 400 {object} view.ErrorResponse
// @Failure 502 {object} view.ErrorResponse
// @Router /journal/wallet [post]
func (h *handler) AnalyseWallet(c *gin.Context) {
	var req WalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	in := controller.WalletRequest{
		Address:    req.Address,
		Options:    req.options(),
		UserID:     c.GetHeader(UserIDHeader),
		Categories: req.categories(),
	}

	if !wantsStream(c) {
		res, err := h.controller.AnalyseWallet(c.Request.Context(), in, nil)
		if err != nil {
			h.logger.Error("[journal][AnalyseWallet]", map[string]string{
				"address": req.Address,
				"error":   err.Error(),
			})
			c.JSON(view.StatusCode(err), view.CreateResponse[any](nil, err, req, "can't analyse wallet"))
			return
		}
		c.JSON(http.StatusOK, view.CreateResponse[any](res, nil, nil, ""))
		return
	}

	h.streamWallet(c, req, in)
}

type walletOutcome struct {
	result *controller.WalletAnalysisResult
	err    error
}

// streamWallet emits "progress" events while the run is going and a single
// "result" or "error" event at the end.
func (h *handler) streamWallet(c *gin.Context, req WalletRequest, in controller.WalletRequest) {
	progress := make(chan model.Progress, 16)
	done := make(chan walletOutcome, 1)

	go func() {
		res, err := h.controller.AnalyseWallet(c.Request.Context(), in, progress)
		done <- walletOutcome{result: res, err: err}
	}()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case p := <-progress:
			c.SSEvent("progress", p)
			return true
		case out := <-done:
			// every progress event was queued before the run returned
			for drained := false; !drained; {
				select {
				case p := <-progress:
					c.SSEvent("progress", p)
				default:
					drained = true
				}
			}
			if out.err != nil {
				h.logger.Error("[journal][streamWallet]", map[string]string{
					"address": req.Address,
					"error":   out.err.Error(),
				})
				c.SSEvent("error", view.CreateResponse[any](nil, out.err, req, "can't analyse wallet"))
				return false
			}
			c.SSEvent("result", view.CreateResponse[any](out.result, nil, nil, ""))
			return false
		}
	})
}

func wantsStream(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/event-stream") || c.Query("stream") == "true"
}
