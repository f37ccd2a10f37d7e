package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dwarvesf/crypto-bookkeeper/internal/controller"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
	"github.com/dwarvesf/crypto-bookkeeper/internal/view"
)

const userIDHeader = "X-User-ID"

type Request struct {
	Message string `json:"message" validate:"required"`
	Context string `json:"context"`
	// Save persists general chat entries that were not already saved by the
	// transaction path.
	Save bool `json:"save"`
}

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

// Chat godoc
// @Summary Chat with the bookkeeper
// @Description Routes a free-form message to transaction analysis, wallet analysis or a general accounting reply
// @id chat
// @Tags Chat
// @Accept json
// @Produce json
// @Param X-User-ID header string false "caller id"
// @Param request body Request true "chat message"
// @Success 200 {object} controller.ChatResponse
// @Failure 400 {object} view.ErrorResponse
// @Failure 422 {object} view.ErrorResponse
// @Failure 502 {object} view.ErrorResponse
// @Router /chat [post]
func (h *handler) Chat(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	userID := c.GetHeader(userIDHeader)
	ctx := c.Request.Context()

	res, err := h.controller.Chat(ctx, controller.ChatRequest{
		Message: req.Message,
		Context: req.Context,
		UserID:  userID,
	})
	if err != nil {
		h.logger.Error("[chat][Chat]", map[string]string{
			"error": err.Error(),
		})
		c.JSON(view.StatusCode(err), view.CreateResponse[any](nil, err, req, "can't answer message"))
		return
	}

	if req.Save && userID != "" && !res.AlreadySaved && len(res.JournalEntries) > 0 {
		for _, g := range groupByHash(res.JournalEntries) {
			if _, err := h.controller.PersistEntries(ctx, controller.PersistRequest{
				UserID:      userID,
				Hash:        g.hash,
				Description: req.Message,
				Entries:     g.entries,
				Source:      model.EntrySourceAIChat,
			}); err != nil {
				h.logger.Error("[chat][Chat][PersistEntries]", map[string]string{
					"hash":  g.hash,
					"error": err.Error(),
				})
				c.JSON(view.StatusCode(err), view.CreateResponse[any](res, err, req, "can't save entries"))
				return
			}
		}
		res.AlreadySaved = true
	}

	c.JSON(http.StatusOK, view.CreateResponse[any](res, nil, nil, ""))
}

type entryGroup struct {
	hash    string
	entries []*model.ProposedEntry
}

// groupByHash splits entries into one group per transaction hash, in first
// seen order. Entries without a hash share a generated chat hash.
func groupByHash(entries []*model.ProposedEntry) []entryGroup {
	var (
		groups []entryGroup
		index  = map[string]int{}
		chatID string
	)
	for _, e := range entries {
		hash := e.TransactionHash
		if hash == "" {
			if chatID == "" {
				chatID = "chat-" + uuid.NewString()
			}
			hash = chatID
		}
		i, ok := index[hash]
		if !ok {
			i = len(groups)
			index[hash] = i
			groups = append(groups, entryGroup{hash: hash})
		}
		groups[i].entries = append(groups[i].entries, e)
	}
	return groups
}
