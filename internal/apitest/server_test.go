package apitest

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/productconsole/internal/domain"
	"github.com/utafrali/productconsole/pkg/jsend"
)

func do(t *testing.T, s *Server, method, path, token, body string) (*http.Response, jsend.Envelope) {
	t.Helper()
	req, err := http.NewRequest(method, s.URL()+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if resp.StatusCode == http.StatusNoContent {
		return resp, nil
	}
	var buf strings.Builder
	_, err = io.Copy(&buf, resp.Body)
	require.NoError(t, err)
	env, err := jsend.Decode([]byte(buf.String()))
	require.NoError(t, err)
	return resp, env
}

func TestServer_CreateThenList(t *testing.T) {
	s := NewServer(t)

	resp, env := do(t, s, http.MethodPost, "/products", "",
		`{"name":"Widget","sku":"WID-1","price":9.99,"stockQuantity":3}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created domain.Product
	require.NoError(t, env.(*jsend.Success).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "USD", created.Currency)
	assert.True(t, created.IsActive)

	_, env = do(t, s, http.MethodGet, "/products", "", "")
	var list []domain.Product
	require.NoError(t, env.(*jsend.Success).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestServer_CreateValidationFailure(t *testing.T) {
	s := NewServer(t)

	resp, env := do(t, s, http.MethodPost, "/products", "", `{"name":"","sku":"bad sku","price":0,"stockQuantity":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	fail, ok := env.(*jsend.Fail)
	require.True(t, ok)
	require.Len(t, fail.Data.Errors, 3)
	assert.Equal(t, "name", fail.Data.Errors[0].Field)
	assert.Equal(t, []string{"Product name is required"}, fail.Data.Errors[0].Messages)
	assert.Equal(t, "sku", fail.Data.Errors[1].Field)
	assert.Equal(t, "price", fail.Data.Errors[2].Field)
}

func TestServer_DuplicateSKU(t *testing.T) {
	s := NewServer(t)
	s.Seed(domain.Product{ID: "p1", Name: "A", SKU: "DUP", Price: 1, Currency: "USD"})

	resp, env := do(t, s, http.MethodPost, "/products", "", `{"name":"B","sku":"DUP","price":1,"stockQuantity":0}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Product with this SKU already exists", env.(*jsend.Fail).Data.Message)
}

func TestServer_UpdateAndDelete(t *testing.T) {
	s := NewServer(t)
	s.Seed(domain.Product{ID: "p1", Name: "A", SKU: "A-1", Price: 1, Currency: "USD", Images: []string{"https://x.test/a.png"}})

	_, env := do(t, s, http.MethodPatch, "/products/p1", "", `{"stockQuantity":7,"images":[]}`)
	var updated domain.Product
	require.NoError(t, env.(*jsend.Success).Decode(&updated))
	assert.Equal(t, 7, updated.StockQuantity)
	assert.Equal(t, "A", updated.Name)
	assert.Empty(t, updated.Images)

	resp, _ := do(t, s, http.MethodDelete, "/products/p1", "", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, s.Products())

	resp, env = do(t, s, http.MethodGet, "/products/p1", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Product not found", env.(*jsend.Fail).Data.Message)
}

func TestServer_RequireToken(t *testing.T) {
	s := NewServer(t)
	s.RequireToken("static-token")

	resp, env := do(t, s, http.MethodGet, "/products", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.IsType(t, &jsend.Fail{}, env)

	resp, _ = do(t, s, http.MethodGet, "/products", "static-token", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	jwtToken, err := s.IssueToken("admin@example.com", time.Hour)
	require.NoError(t, err)
	resp, _ = do(t, s, http.MethodGet, "/products", jwtToken, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	expired, err := s.IssueToken("admin@example.com", -time.Hour)
	require.NoError(t, err)
	resp, _ = do(t, s, http.MethodGet, "/products", expired, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_RespondServesCannedResponsesInOrder(t *testing.T) {
	s := NewServer(t)
	s.Respond(http.StatusInternalServerError, `{"status":"error","message":"db down","code":5001}`)
	s.Respond(http.StatusBadRequest, `{"status":"fail","data":{"message":"nope"}}`)

	resp, env := do(t, s, http.MethodGet, "/products", "", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "db down", env.(*jsend.Error).Message)

	resp, _ = do(t, s, http.MethodGet, "/products", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, s, http.MethodGet, "/products", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_RecordsRequests(t *testing.T) {
	s := NewServer(t)
	do(t, s, http.MethodPost, "/products", "tok", `{"name":"A","sku":"A","price":1,"stockQuantity":0}`)

	last, ok := s.LastRequest()
	require.True(t, ok)
	assert.Equal(t, http.MethodPost, last.Method)
	assert.Equal(t, "/products", last.Path)
	assert.Equal(t, "Bearer tok", last.Header.Get("Authorization"))
	assert.Contains(t, string(last.Body), `"sku":"A"`)
	assert.Len(t, s.Requests(), 1)
}

func TestServer_Healthz(t *testing.T) {
	s := NewServer(t)

	resp, err := http.Get(s.URL() + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
