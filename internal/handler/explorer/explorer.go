package explorer

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dwarvesf/crypto-bookkeeper/internal/explorer"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
	"github.com/dwarvesf/crypto-bookkeeper/internal/view"
)

type handler struct {
	explorer explorer.IExplorer
	logger   *logger.Logger
}

func New(explorer explorer.IExplorer, logger *logger.Logger) IHandler {
	return &handler{explorer: explorer, logger: logger}
}

// GetTokenTransfers godoc
// @Summary Token transfers
// @Description ERC-20, ERC-721 and ERC-1155 transfers of a transaction hash or wallet address
// @id getTokenTransfers
// @Tags Explorer
// @Produce json
// @Param target path string true "transaction hash or wallet address"
// @Success 200 {array} model.TokenTransfer
// @Failure 400 {object} view.ErrorResponse
// @Failure 502 {object} view.ErrorResponse
// @Router /explorer/token-transfers/{target} [get]
func (h *handler) GetTokenTransfers(c *gin.Context) {
	target := c.Param("target")

	transfers, err := h.explorer.GetTokenTransfers(c.Request.Context(), target)
	if err != nil {
		h.logger.Error("[explorer][GetTokenTransfers]", map[string]string{
			"target": target,
			"error":  err.Error(),
		})
		c.JSON(view.StatusCode(err), view.CreateResponse[any](nil, err, nil, "can't fetch token transfers"))
		return
	}
	c.JSON(http.StatusOK, view.CreateResponse[any](transfers, nil, nil, ""))
}
