package account

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dwarvesf/crypto-bookkeeper/internal/accountregistry"
	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
	"github.com/dwarvesf/crypto-bookkeeper/internal/view"
)

type handler struct {
	registry accountregistry.IRegistry
	logger   *logger.Logger
}

func New(registry accountregistry.IRegistry, logger *logger.Logger) IHandler {
	return &handler{registry: registry, logger: logger}
}

// GetChart godoc
// @Summary Chart of accounts
// @Description Active accounts ordered by sort order
// @id getChart
// @Tags Accounts
// @Produce json
// @Success 200 {array} model.Account
// @Failure 500 {object} view.ErrorResponse
// @Router /accounts/chart [get]
func (h *handler) GetChart(c *gin.Context) {
	chart, err := h.registry.Chart()
	if err != nil {
		h.logger.Error("[account][GetChart]", map[string]string{
			"error": err.Error(),
		})
		err = apperror.Internal("account.GetChart", err)
		c.JSON(view.StatusCode(err), view.CreateResponse[any](nil, err, nil, "can't load chart"))
		return
	}
	c.JSON(http.StatusOK, view.CreateResponse[any](chart, nil, nil, ""))
}

// Validate godoc
// @Summary Validate an account pair
// @Description Checks that a debit and credit account both resolve and differ
// @id validateAccounts
// @Tags Accounts
// @Produce json
// @Param debit query string true "debit account name or code"
// @Param credit query string true "credit account name or code"
// @Success 200 {object} accountregistry.ValidationResult
// @Failure 400 {object} view.ErrorResponse
// @Router /accounts/validate [get]
func (h *handler) Validate(c *gin.Context) {
	debit, credit := c.Query("debit"), c.Query("credit")
	if debit == "" || credit == "" {
		err := apperror.Validation("account.Validate", "debit and credit are required")
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, nil, ""))
		return
	}

	res, err := h.registry.Validate(debit, credit)
	if err != nil {
		h.logger.Error("[account][Validate]", map[string]string{
			"debit":  debit,
			"credit": credit,
			"error":  err.Error(),
		})
		err = apperror.Internal("account.Validate", err)
		c.JSON(view.StatusCode(err), view.CreateResponse[any](nil, err, nil, "can't validate accounts"))
		return
	}
	c.JSON(http.StatusOK, view.CreateResponse[any](res, nil, nil, ""))
}

// Suggest godoc
// @Summary Suggest an account
// @Description Scores the AI keyword mappings against keywords, transaction type and description
// @id suggestAccount
// @Tags Accounts
// @Produce json
// @Param keywords query string false "comma separated keywords"
// @Param type query string false "transaction type, e.g. outgoing_transfer"
// @Param description query string false "free text description"
// @Success 200 {object} accountregistry.AISuggestion
// @Failure 400 {object} view.ErrorResponse
// @Failure 404 {object} view.ErrorResponse
// @Router /accounts/suggest [get]
func (h *handler) Suggest(c *gin.Context) {
	var keywords []string
	for _, k := range strings.Split(c.Query("keywords"), ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	txType, description := c.Query("type"), c.Query("description")
	if len(keywords) == 0 && description == "" {
		err := apperror.Validation("account.Suggest", "keywords or description is required")
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, nil, ""))
		return
	}

	suggestion, err := h.registry.SuggestForAI(keywords, txType, description)
	if err != nil {
		h.logger.Error("[account][Suggest]", map[string]string{
			"keywords": strings.Join(keywords, ","),
			"type":     txType,
			"error":    err.Error(),
		})
		err = apperror.Internal("account.Suggest", err)
		c.JSON(view.StatusCode(err), view.CreateResponse[any](nil, err, nil, "can't suggest account"))
		return
	}
	if suggestion == nil {
		err := apperror.NotFound("account.Suggest", "no account matches")
		c.JSON(view.StatusCode(err), view.CreateResponse[any](nil, err, nil, ""))
		return
	}
	c.JSON(http.StatusOK, view.CreateResponse[any](suggestion, nil, nil, ""))
}
