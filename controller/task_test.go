package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/songquanpeng/apitest/apitest"
	"github.com/songquanpeng/apitest/common/logger"
	"github.com/songquanpeng/apitest/dto"
	"github.com/songquanpeng/apitest/middleware"
)

func newTaskServer(t *testing.T) *gin.Engine {
	t.Helper()
	SetTaskAgent(apitest.NewAgent(nil))
	t.Cleanup(func() { SetTaskAgent(nil) })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gmw.NewLoggerMiddleware(gmw.WithLogger(logger.Logger.Named("test"))), middleware.RequestId())
	r.POST("/task", RunTask)
	r.GET("/healthz", GetHealth)
	return r
}

func newPingTarget(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ping" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("pong"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func postTask(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/task", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func decodeTaskResponse(t *testing.T, w *httptest.ResponseRecorder) dto.TaskResponse {
	t.Helper()
	var resp dto.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRunTaskWithPrompt(t *testing.T) {
	r := newTaskServer(t)
	target := newPingTarget(t)

	w := postTask(r, `{"type":"api","prompt":"GET `+target.URL+`/ping"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeTaskResponse(t, w)
	require.Equal(t, dto.TaskTypeAPI, resp.Type)
	require.NotEmpty(t, resp.RequestId)
	require.Contains(t, resp.Result, "📊 Summary: 1/1 tests passed")
	require.Contains(t, resp.Result, "Method: GET "+target.URL+"/ping")
}

func TestRunTaskWithMethodAndURL(t *testing.T) {
	r := newTaskServer(t)
	target := newPingTarget(t)

	w := postTask(r, `{"type":"api","method":"delete","url":"`+target.URL+`/missing"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeTaskResponse(t, w)
	require.Contains(t, resp.Result, "📊 Summary: 0/1 tests passed")
	require.Contains(t, resp.Result, "Method: DELETE "+target.URL+"/missing")
	require.Contains(t, resp.Result, "Status code 404, expected 200")
}

func TestRunTaskNoTargetReturnsFailureLine(t *testing.T) {
	r := newTaskServer(t)

	w := postTask(r, `{"type":"api","prompt":"please test my users api"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeTaskResponse(t, w)
	require.True(t, strings.HasPrefix(resp.Result, apitest.FailurePrefix), resp.Result)
	require.NotContains(t, resp.Result, "\n")
}

func TestRunTaskRejectsBadRequests(t *testing.T) {
	r := newTaskServer(t)

	cases := map[string]string{
		"unsupported type": `{"type":"browser","prompt":"open https://x.io"}`,
		"missing type":     `{"prompt":"GET https://x.io"}`,
		"no prompt or url": `{"type":"api"}`,
		"invalid json":     `{"type":`,
	}
	for name, body := range cases {
		w := postTask(r, body)
		require.Equal(t, http.StatusBadRequest, w.Code, name)
		require.Contains(t, w.Body.String(), "apitest_error", name)
	}

	w := postTask(r, `{"type":"browser"}`)
	require.Contains(t, w.Body.String(), "unsupported task type")
}

func TestGetHealth(t *testing.T) {
	r := newTaskServer(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Version string `json:"version"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.NotEmpty(t, body.Data.Version)
}
