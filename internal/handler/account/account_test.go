package account

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwarvesf/crypto-bookkeeper/internal/accountregistry"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
	"github.com/dwarvesf/crypto-bookkeeper/internal/store"
	"github.com/dwarvesf/crypto-bookkeeper/internal/store/storetest"
	"github.com/dwarvesf/crypto-bookkeeper/internal/types/environments"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := storetest.NewDB()
	require.NoError(t, err)
	require.NoError(t, storetest.SeedChart(db))

	log := logger.New(environments.Test)
	h := New(accountregistry.New(db, store.New(), log), log)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/accounts/chart", h.GetChart)
	r.GET("/accounts/validate", h.Validate)
	r.GET("/accounts/suggest", h.Suggest)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestGetChart(t *testing.T) {
	w := get(newRouter(t), "/accounts/chart")
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data []*model.Account `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.GreaterOrEqual(t, len(env.Data), 6)
	assert.Equal(t, "Cash", env.Data[0].Name)
}

func TestValidate(t *testing.T) {
	r := newRouter(t)

	validate := func(debit, credit string) accountregistry.ValidationResult {
		q := url.Values{"debit": {debit}, "credit": {credit}}
		w := get(r, "/accounts/validate?"+q.Encode())
		require.Equal(t, http.StatusOK, w.Code)
		var env struct {
			Data accountregistry.ValidationResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		return env.Data
	}

	ok := validate("Consulting Expense", "Digital Assets - Ethereum")
	assert.True(t, ok.Valid)
	require.NotNil(t, ok.Debit)
	assert.Equal(t, "6001", ok.Debit.Code)

	same := validate("Consulting Expense", "consulting expense")
	assert.False(t, same.Valid)
	assert.Contains(t, same.Errors, "debit and credit accounts must differ")

	missing := get(r, "/accounts/validate?debit=Cash")
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

func TestSuggest(t *testing.T) {
	r := newRouter(t)

	q := url.Values{
		"keywords":    {"consulting, retainer"},
		"type":        {"outgoing_transfer"},
		"description": {"payment for consulting"},
	}
	w := get(r, "/accounts/suggest?"+q.Encode())
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data accountregistry.AISuggestion `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Data.Account)
	assert.Equal(t, "6001", env.Data.Account.Code)
	assert.InDelta(t, 0.65, env.Data.Confidence, 1e-9)

	nothing := get(r, "/accounts/suggest?keywords=lunch")
	assert.Equal(t, http.StatusNotFound, nothing.Code)

	empty := get(r, "/accounts/suggest?type=outgoing_transfer")
	assert.Equal(t, http.StatusBadRequest, empty.Code)
}
