package web_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type itemJSON struct {
	ID   int64  `json:"id"`
	Data string `json:"data"`
}

func decodeItem(t *testing.T, rec *httptest.ResponseRecorder) itemJSON {
	t.Helper()
	var it itemJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &it), rec.Body.String())
	return it
}

func TestCreateItem(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postJSON("/items", `{"data":"from json"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	created := decodeItem(t, rec)
	assert.Positive(t, created.ID)
	assert.Equal(t, "from json", created.Data)

	rec = env.postForm("/items", url.Values{"data": {"from form"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "from form", decodeItem(t, rec).Data)
}

func TestCreateItemRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing data", `{}`},
		{"blank data", `{"data":"  "}`},
		{"malformed json", `{"data":`},
		{"wrong type", `{"data":42}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.postJSON("/items", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])

			items, err := env.items.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, items)
		})
	}
}

func TestListItemsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	env.postJSON("/items", `{"data":"older"}`)
	env.postJSON("/items", `{"data":"newer"}`)

	rec := env.get("/items")
	require.Equal(t, http.StatusOK, rec.Code)

	var items []itemJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "newer", items[0].Data)
	assert.Equal(t, "older", items[1].Data)
}

func TestListItemsEmptyIsArray(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/items")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestItemLifecycle(t *testing.T) {
	env := newTestEnv(t)
	created := decodeItem(t, env.postJSON("/items", `{"data":"v1"}`))
	path := "/items/" + strconv.FormatInt(created.ID, 10)

	rec := env.get(path)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v1", decodeItem(t, rec).Data)

	rec = env.postJSON(path, `{"data":"v2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v2", decodeItem(t, rec).Data)
	assert.Equal(t, "v2", decodeItem(t, env.get(path)).Data)

	rec = env.postJSON(path, `{"data":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "v2", decodeItem(t, env.get(path)).Data)

	rec = env.do(httptest.NewRequest(http.MethodDelete, path, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusNotFound, env.get(path).Code)
}

func TestItemErrors(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusNotFound, env.get("/items/999").Code)
	assert.Equal(t, http.StatusBadRequest, env.get("/items/abc").Code)
	assert.Equal(t, http.StatusNotFound, env.postJSON("/items/999", `{"data":"x"}`).Code)
	assert.Equal(t, http.StatusNotFound, env.postJSON("/items/999", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, env.postJSON("/items/999", `not json`).Code)
	assert.Equal(t, http.StatusNotFound, env.do(httptest.NewRequest(http.MethodDelete, "/items/999", nil)).Code)
}
