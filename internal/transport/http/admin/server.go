// Package adminhttp is the operator HTTP surface: task listings, recent
// executions and manual dispatch.
package adminhttp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stockd/internal/logger"
	"stockd/internal/store"
	"stockd/internal/store/model"
	"stockd/internal/task"
)

// Server 提供最小化的运维 HTTP 服务（任务查询 + 手动触发）。
type Server struct {
	addr   string
	router *gin.Engine
}

type ServerConfig struct {
	Addr       string
	Executions store.ExecutionRepository
	Dispatcher *task.Dispatcher
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Executions == nil || cfg.Dispatcher == nil {
		return nil, errors.New("admin http server requires executions and dispatcher")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9980"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	h := &handler{execs: cfg.Executions, dispatcher: cfg.Dispatcher}
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api := router.Group("/api")
	api.GET("/tasks", h.listTasks)
	api.GET("/executions", h.listExecutions)
	api.POST("/tasks/:kind/run", h.runTask)

	return &Server{addr: cfg.Addr, router: router}, nil
}

type handler struct {
	execs      store.ExecutionRepository
	dispatcher *task.Dispatcher
}

func (h *handler) listTasks(c *gin.Context) {
	type row struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	var out []row
	for _, k := range model.AllTaskKinds() {
		out = append(out, row{ID: int(k), Name: k.Name()})
	}
	c.JSON(http.StatusOK, gin.H{"tasks": out})
}

func (h *handler) listExecutions(c *gin.Context) {
	kind := model.ParseTaskKind(c.Query("kind"))
	if kind == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown task kind"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	list, err := h.execs.ListRecent(c.Request.Context(), kind, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"executions": list})
}

// runTask seeds one pending record and executes it in-line, so the response
// reflects the real outcome.
func (h *handler) runTask(c *gin.Context) {
	kind := model.ParseTaskKind(c.Param("kind"))
	if kind == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown task kind"})
		return
	}
	rec := model.TaskExecution{TaskID: kind, State: model.TaskStatePending}
	ctx := c.Request.Context()
	if err := h.execs.Create(ctx, &rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.dispatcher.Execute(ctx, &rec)
	c.JSON(http.StatusOK, gin.H{"execution": rec})
}

// requestLogger 记录运维操作，便于追踪手动触发。
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		client := c.ClientIP()
		c.Next()
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s",
			method, path, c.Writer.Status(), client, time.Since(start))
	}
}

// Addr 返回监听地址。
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start 启动 HTTP 服务，直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
