package api

import (
	"github.com/gin-gonic/gin"
	"github.com/wfunc/vend-machine/internal/middleware"
	"github.com/wfunc/vend-machine/internal/service"
	"go.uber.org/zap"
)

// MachineService 处理器依赖的机器服务能力
type MachineService interface {
	Drop(slotIndex int) error
	Slots() []service.SlotStatus
	SlotReportStrings() []string
	Temperature() float64
}

// Router API路由器
type Router struct {
	engine  *gin.Engine
	handler *MachineHandler
	log     *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(svc MachineService, mode string, log *zap.Logger) *Router {
	if mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建Gin引擎
	engine := gin.New()

	// 全局中间件
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.AccessLog())

	router := &Router{
		engine:  engine,
		handler: NewMachineHandler(svc, log),
		log:     log,
	}

	// 设置路由
	router.setupRoutes()

	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	r.engine.POST("/drop", r.handler.Drop)
	r.engine.GET("/health", r.handler.Health)
	r.engine.GET("/slots", r.handler.Slots)

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":     "Not found",
			"errorCode": 404,
		})
	})
}

// Run 运行服务器
func (r *Router) Run(addr string) error {
	r.log.Info("Starting API server", zap.String("address", addr))
	return r.engine.Run(addr)
}

// GetEngine 获取Gin引擎（用于测试和外层HTTP服务器）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
