package view

import (
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
)

type walletBody struct {
	Address   string `json:"address" validate:"required,eth_addr"`
	Direction string `json:"direction" validate:"omitempty,oneof=to from"`
}

func TestCreateResponse_Success(t *testing.T) {
	resp := CreateResponse[any](map[string]int{"n": 1}, nil, nil, "")
	assert.Empty(t, resp.Error)
	assert.Equal(t, map[string]int{"n": 1}, resp.Data)
}

func TestCreateResponse_ValidationErrorsUseJSONNames(t *testing.T) {
	body := walletBody{Direction: "sideways"}
	err := validator.New().Struct(body)
	require.Error(t, err)

	resp := CreateResponse[any](nil, err, body, "invalid request")

	assert.Equal(t, apperror.KindValidation, resp.Kind)
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, "address", resp.Errors[0].Field)
	assert.Equal(t, "is required", resp.Errors[0].Message)
	assert.Equal(t, "direction", resp.Errors[1].Field)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
}

func TestCreateResponse_AppErrors(t *testing.T) {
	internal := apperror.Internal("op", errors.New("pq: connection refused"))
	resp := CreateResponse[any](nil, errors.Wrap(internal, "persist"), nil, "")
	assert.Equal(t, apperror.KindInternal, resp.Kind)
	assert.Equal(t, "internal error", resp.Error)
	assert.Equal(t, internal.CorrelationID, resp.CorrelationID)

	conflict := apperror.Conflict("op", "already recorded", []string{"row"})
	resp = CreateResponse[any](nil, conflict, nil, "")
	assert.Equal(t, []string{"row"}, resp.Existing)
	assert.Equal(t, http.StatusConflict, StatusCode(conflict))
}
