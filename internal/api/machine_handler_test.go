package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/vend-machine/internal/errors"
	"github.com/wfunc/vend-machine/internal/service"
	"go.uber.org/zap"
)

// stubMachineService 可编程的机器服务桩
type stubMachineService struct {
	dropErr error
	dropped []int
	slots   []service.SlotStatus
	reports []string
	temp    float64
}

func (s *stubMachineService) Drop(slotIndex int) error {
	s.dropped = append(s.dropped, slotIndex)
	return s.dropErr
}

func (s *stubMachineService) Slots() []service.SlotStatus { return s.slots }
func (s *stubMachineService) SlotReportStrings() []string { return s.reports }
func (s *stubMachineService) Temperature() float64        { return s.temp }

// MachineHandlerTestSuite 售货机API测试套件
type MachineHandlerTestSuite struct {
	suite.Suite
	svc    *stubMachineService
	router *Router
}

func (suite *MachineHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.svc = &stubMachineService{}
	suite.router = NewRouter(suite.svc, "test", zap.NewNop())
}

// do 发一个请求并返回记录器
func (suite *MachineHandlerTestSuite) do(method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.GetEngine().ServeHTTP(w, req)
	return w
}

// 测试出货成功
func (suite *MachineHandlerTestSuite) TestDropSuccess() {
	w := suite.do(http.MethodPost, "/drop", []byte(`{"slot":2}`))

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal([]int{2}, suite.svc.dropped)
	suite.NotEmpty(w.Header().Get("X-Request-ID"))

	var resp DropResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Dropped drink from slot 2", resp.Message)
}

// 测试非法货道编号映射为客户端错误
func (suite *MachineHandlerTestSuite) TestDropBadSlot() {
	suite.svc.dropErr = errors.New(errors.ErrBadSlot)

	w := suite.do(http.MethodPost, "/drop", []byte(`{"slot":0}`))

	suite.Equal(http.StatusBadRequest, w.Code)

	var resp DropErrorResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Invalid slot ID provided", resp.Error)
	suite.Equal(400, resp.ErrorCode)
}

// 测试电机故障映射为服务端错误
func (suite *MachineHandlerTestSuite) TestDropMotorFailed() {
	suite.svc.dropErr = errors.New(errors.ErrMotorFailed)

	w := suite.do(http.MethodPost, "/drop", []byte(`{"slot":1}`))

	suite.Equal(http.StatusInternalServerError, w.Code)

	var resp DropErrorResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Motor didn't actuate", resp.Error)
	suite.Equal(500, resp.ErrorCode)
}

// 测试电机超时映射为服务端错误
func (suite *MachineHandlerTestSuite) TestDropMotorTimeout() {
	suite.svc.dropErr = errors.New(errors.ErrMotorTimeout)

	w := suite.do(http.MethodPost, "/drop", []byte(`{"slot":1}`))

	suite.Equal(http.StatusInternalServerError, w.Code)

	var resp DropErrorResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Motor timed out. Is it stuck?", resp.Error)
}

// 测试请求体不合法
func (suite *MachineHandlerTestSuite) TestDropInvalidBody() {
	w := suite.do(http.MethodPost, "/drop", []byte(`not json`))

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Empty(suite.svc.dropped, "不合法的请求不应触发出货")
}

// 测试货道状态接口
func (suite *MachineHandlerTestSuite) TestSlots() {
	suite.svc.slots = []service.SlotStatus{
		{ID: "17.5.23", Number: 0, Stocked: true},
		{ID: "10.55D2DE020800", Number: 1, Stocked: false},
	}
	suite.svc.temp = 4.25

	w := suite.do(http.MethodGet, "/slots", nil)

	suite.Equal(http.StatusOK, w.Code)

	var resp SlotsResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(suite.svc.slots, resp.Slots)
	suite.Equal(4.25, resp.Temp, "slots接口返回摄氏度")
}

// 测试旧版健康检查（华氏度）
func (suite *MachineHandlerTestSuite) TestHealth() {
	suite.svc.reports = []string{"Slot 1 (10.55D2DE020800) is stocked"}
	suite.svc.temp = 10

	w := suite.do(http.MethodGet, "/health", nil)

	suite.Equal(http.StatusOK, w.Code)

	var resp HealthResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(suite.svc.reports, resp.Slots)
	suite.Equal(50.0, resp.Temp, "旧客户端要华氏度")
}

// 测试未知路由
func (suite *MachineHandlerTestSuite) TestNotFound() {
	w := suite.do(http.MethodGet, "/nope", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func TestMachineHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(MachineHandlerTestSuite))
}
