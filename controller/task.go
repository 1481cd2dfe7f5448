package controller

import (
	"net/http"
	"sync"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/songquanpeng/apitest/apitest"
	"github.com/songquanpeng/apitest/common"
	"github.com/songquanpeng/apitest/common/config"
	"github.com/songquanpeng/apitest/common/ctxkey"
	"github.com/songquanpeng/apitest/common/graceful"
	"github.com/songquanpeng/apitest/common/helper"
	"github.com/songquanpeng/apitest/common/logger"
	"github.com/songquanpeng/apitest/dto"
	"github.com/songquanpeng/apitest/middleware"
	"github.com/songquanpeng/apitest/relay"
	"github.com/songquanpeng/apitest/relay/meta"
)

var (
	taskAgentMu sync.RWMutex
	taskAgent   *apitest.Agent
)

// InitTaskAgent builds the agent shared by all task requests from the process configuration.
// When the completion provider cannot be set up the agent still serves tasks through the
// prompt fallback.
func InitTaskAgent() {
	completer, err := relay.GetCompleter(meta.FromConfig(""))
	if err != nil {
		logger.Logger.Warn("completion provider unavailable, plans will be parsed from prompts",
			zap.String("provider", config.LLMProvider),
			zap.Error(err))
		completer = nil
	}

	SetTaskAgent(apitest.NewAgent(completer,
		apitest.WithPlanTimeout(config.LLMTimeout),
		apitest.WithExecutorOptions(apitest.WithConcurrency(config.Concurrency)),
	))
}

// SetTaskAgent replaces the agent used by RunTask.
func SetTaskAgent(a *apitest.Agent) {
	taskAgentMu.Lock()
	defer taskAgentMu.Unlock()
	taskAgent = a
}

func getTaskAgent() *apitest.Agent {
	taskAgentMu.RLock()
	a := taskAgent
	taskAgentMu.RUnlock()
	if a != nil {
		return a
	}

	InitTaskAgent()
	taskAgentMu.RLock()
	defer taskAgentMu.RUnlock()
	return taskAgent
}

// RunTask runs one API test task and returns its report.
func RunTask(c *gin.Context) {
	if graceful.IsDraining() {
		middleware.AbortWithError(c, http.StatusServiceUnavailable, errors.New("server is shutting down"))
		return
	}

	req := new(dto.TaskRequest)
	if err := common.UnmarshalBodyReusable(c, req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.Wrap(err, "invalid task request"))
		return
	}
	c.Set(ctxkey.TaskType, req.Type)

	if req.Type != dto.TaskTypeAPI {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.Errorf("unsupported task type: %q", req.Type))
		return
	}

	prompt, err := req.TaskPrompt()
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, err)
		return
	}

	lg := gmw.GetLogger(c)
	lg.Info("api task received", zap.String("prompt", prompt))

	report := getTaskAgent().RunTask(gmw.Ctx(c), prompt)
	c.JSON(http.StatusOK, dto.TaskResponse{
		Type:      dto.TaskTypeAPI,
		Result:    report,
		RequestId: c.GetString(helper.RequestIdKey),
	})
}
