package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dangban/dangban/internal/config"
	"github.com/dangban/dangban/pkg/model"
)

// newTestScheduleHandler 创建使用回溯后端的处理器，避免测试依赖CP-SAT
func newTestScheduleHandler() *ScheduleHandler {
	return NewScheduleHandler(config.SolverConfig{
		Backend:   "backtracking",
		TimeLimit: 2 * time.Second,
	}, 5*time.Second)
}

// simpleSolveRequest 单员工单班次的最小请求
func simpleSolveRequest() SolveRequest {
	return SolveRequest{
		Day: model.DayConfig{
			DayStart:       8,
			DayLength:      4,
			AllowedLengths: []int{4},
			MinCoverage:    1,
			MaxCoverage:    1,
		},
		Workers: []model.Worker{{Name: "Alex"}},
	}
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("序列化请求失败: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestSolveEndpoint(t *testing.T) {
	h := newTestScheduleHandler()
	rec := postJSON(t, h.Solve, "/api/v1/schedule/solve", simpleSolveRequest())

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码错误: 期望 200, 实际 %d, 响应 %s", rec.Code, rec.Body.String())
	}

	var resp SolveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Backend != "backtracking" {
		t.Errorf("后端名称错误: %s", resp.Backend)
	}
	if resp.Result == nil || !resp.Result.OK() {
		t.Fatalf("期望求解成功, 实际 %+v", resp.Result)
	}
	if resp.Result.TotalUnderstaff != 0 {
		t.Errorf("期望无缺员, 实际 %d", resp.Result.TotalUnderstaff)
	}
}

func TestSolveEndpointRejectsGet(t *testing.T) {
	h := newTestScheduleHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/solve", nil)
	rec := httptest.NewRecorder()
	h.Solve(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("状态码错误: 期望 400, 实际 %d", rec.Code)
	}
}

func TestSolveEndpointEmptyWorkers(t *testing.T) {
	h := newTestScheduleHandler()
	req := simpleSolveRequest()
	req.Workers = nil
	rec := postJSON(t, h.Solve, "/api/v1/schedule/solve", req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("状态码错误: 期望 400, 实际 %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "VALIDATION_FAILED") {
		t.Errorf("期望验证失败错误码, 响应 %s", rec.Body.String())
	}
}

func TestSolveEndpointInvalidBody(t *testing.T) {
	h := newTestScheduleHandler()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedule/solve", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Solve(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("状态码错误: 期望 400, 实际 %d", rec.Code)
	}
}

func TestExportCoverageEndpoint(t *testing.T) {
	h := newTestScheduleHandler()
	rec := postJSON(t, h.ExportCoverage, "/api/v1/schedule/coverage/export", simpleSolveRequest())

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码错误: 期望 200, 实际 %d, 响应 %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type 错误: %s", ct)
	}

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("CSV 行数错误: 期望 5(1列头+4数据), 实际 %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "block_start_hour_24h,") {
		t.Errorf("CSV 列头错误: %s", lines[0])
	}
}

func TestCoverageStatsEndpoint(t *testing.T) {
	h := newTestScheduleHandler()
	rec := postJSON(t, h.CoverageStats, "/api/v1/stats/coverage", simpleSolveRequest())

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码错误: 期望 200, 实际 %d", rec.Code)
	}

	var resp StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Coverage == nil {
		t.Fatal("期望返回覆盖报表")
	}
	if len(resp.Coverage.Rows) != 4 {
		t.Errorf("报表行数错误: 期望 4, 实际 %d", len(resp.Coverage.Rows))
	}
}

func TestFairnessStatsEndpoint(t *testing.T) {
	h := newTestScheduleHandler()
	rec := postJSON(t, h.FairnessStats, "/api/v1/stats/fairness", simpleSolveRequest())

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码错误: 期望 200, 实际 %d", rec.Code)
	}

	var resp StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Fairness == nil {
		t.Fatal("期望返回公平性指标")
	}
	if resp.Fairness.MaxHours != 4 {
		t.Errorf("最大工时错误: 期望 4, 实际 %d", resp.Fairness.MaxHours)
	}
}

func TestDatasetListEndpoint(t *testing.T) {
	h := NewDatasetHandler(newTestScheduleHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码错误: 期望 200, 实际 %d", rec.Code)
	}

	var resp DatasetListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Total != 4 {
		t.Errorf("数据集数量错误: 期望 4, 实际 %d", resp.Total)
	}

	keys := make(map[string]bool)
	for _, d := range resp.Datasets {
		keys[d.Key] = true
	}
	for _, key := range []string{"feasible", "understaff-noon", "blackout-11-13", "busier-exact-two"} {
		if !keys[key] {
			t.Errorf("缺少数据集: %s", key)
		}
	}
}

func TestDatasetGetEndpoint(t *testing.T) {
	h := NewDatasetHandler(newTestScheduleHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets/feasible", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码错误: 期望 200, 实际 %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"key":"feasible"`) {
		t.Errorf("响应缺少数据集键: %s", rec.Body.String())
	}
}

func TestDatasetGetUnknownKey(t *testing.T) {
	h := NewDatasetHandler(newTestScheduleHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets/nope", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("状态码错误: 期望 404, 实际 %d", rec.Code)
	}
}

func TestDatasetSolveEndpoint(t *testing.T) {
	h := NewDatasetHandler(newTestScheduleHandler())
	rec := postJSON(t, h.Solve, "/api/v1/datasets/solve", DatasetSolveRequest{Key: "feasible"})

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码错误: 期望 200, 实际 %d, 响应 %s", rec.Code, rec.Body.String())
	}

	var resp SolveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Result == nil || !resp.Result.OK() {
		t.Fatalf("期望求解成功, 实际 %+v", resp.Result)
	}
}

func TestDatasetSolveByQueryKey(t *testing.T) {
	h := NewDatasetHandler(newTestScheduleHandler())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets/solve?key=feasible", nil)
	rec := httptest.NewRecorder()
	h.Solve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码错误: 期望 200, 实际 %d, 响应 %s", rec.Code, rec.Body.String())
	}
}

func TestDatasetSolveUnknownKey(t *testing.T) {
	h := NewDatasetHandler(newTestScheduleHandler())
	rec := postJSON(t, h.Solve, "/api/v1/datasets/solve", DatasetSolveRequest{Key: "nope"})

	if rec.Code != http.StatusNotFound {
		t.Errorf("状态码错误: 期望 404, 实际 %d", rec.Code)
	}
}
