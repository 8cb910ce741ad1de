package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/vend-machine/internal/errors"
	"github.com/wfunc/vend-machine/internal/service"
	"go.uber.org/zap"
)

// MachineHandler 售货机处理器
type MachineHandler struct {
	service MachineService
	logger  *zap.Logger
}

// NewMachineHandler 创建售货机处理器
func NewMachineHandler(svc MachineService, log *zap.Logger) *MachineHandler {
	return &MachineHandler{
		service: svc,
		logger:  log,
	}
}

// DropRequest 出货请求
type DropRequest struct {
	Slot int `json:"slot"`
}

// DropResponse 出货响应
type DropResponse struct {
	Message string `json:"message"`
}

// DropErrorResponse 出货错误响应
//
// 字段名与状态码是旧客户端约定，保持原样。
type DropErrorResponse struct {
	Error     string `json:"error"`
	ErrorCode int    `json:"errorCode"`
}

// HealthResponse 旧版健康检查响应（温度为华氏度）
type HealthResponse struct {
	Slots []string `json:"slots"`
	Temp  float64  `json:"temp"`
}

// SlotsResponse 货道状态响应（温度为摄氏度）
type SlotsResponse struct {
	Slots []service.SlotStatus `json:"slots"`
	Temp  float64              `json:"temp"`
}

// Drop 出货
func (h *MachineHandler) Drop(c *gin.Context) {
	var req DropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, DropErrorResponse{
			Error:     "Invalid slot ID provided",
			ErrorCode: 400,
		})
		return
	}

	if err := h.service.Drop(req.Slot); err != nil {
		code := errors.GetCode(err)
		if code == errors.ErrBadSlot {
			c.JSON(http.StatusBadRequest, DropErrorResponse{
				Error:     "Invalid slot ID provided",
				ErrorCode: 400,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, DropErrorResponse{
			Error:     dropErrorText(code),
			ErrorCode: 500,
		})
		return
	}

	c.JSON(http.StatusOK, DropResponse{
		Message: fmt.Sprintf("Dropped drink from slot %d", req.Slot),
	})
}

// dropErrorText 出货失败的对外文案（旧客户端约定的英文串）
func dropErrorText(code errors.ErrorCode) string {
	switch code {
	case errors.ErrMotorFailed:
		return "Motor didn't actuate"
	case errors.ErrMotorTimeout:
		return "Motor timed out. Is it stuck?"
	default:
		return "Drop failed"
	}
}

// Health 旧版健康检查
func (h *MachineHandler) Health(c *gin.Context) {
	temperature := h.service.Temperature()

	// 旧客户端要华氏度
	temperature = temperature*(9.0/5.0) + 32.0

	c.JSON(http.StatusOK, HealthResponse{
		Slots: h.service.SlotReportStrings(),
		Temp:  temperature,
	})
}

// Slots 货道状态
func (h *MachineHandler) Slots(c *gin.Context) {
	c.JSON(http.StatusOK, SlotsResponse{
		Slots: h.service.Slots(),
		Temp:  h.service.Temperature(),
	})
}
