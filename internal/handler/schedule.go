// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dangban/dangban/internal/config"
	"github.com/dangban/dangban/internal/metrics"
	"github.com/dangban/dangban/pkg/errors"
	"github.com/dangban/dangban/pkg/export"
	"github.com/dangban/dangban/pkg/logger"
	"github.com/dangban/dangban/pkg/model"
	"github.com/dangban/dangban/pkg/stats"
)

// ScheduleHandler 排班处理器
type ScheduleHandler struct {
	solverCfg config.SolverConfig
	timeout   time.Duration
}

// NewScheduleHandler 创建排班处理器
func NewScheduleHandler(solverCfg config.SolverConfig, apiTimeout time.Duration) *ScheduleHandler {
	if apiTimeout <= 0 {
		apiTimeout = 30 * time.Second
	}
	return &ScheduleHandler{solverCfg: solverCfg, timeout: apiTimeout}
}

// SolveRequest 排班求解请求
type SolveRequest struct {
	Day                 model.DayConfig `json:"day"`
	Workers             []model.Worker  `json:"workers"`
	AllowMultipleShifts bool            `json:"allow_multiple_shifts,omitempty"`
}

// SolveResponse 排班求解响应
type SolveResponse struct {
	Result   *model.SolveResult `json:"result"`
	Backend  string             `json:"backend"`
	Duration string             `json:"duration"`
}

// decodeSolveRequest 解析并校验请求体
func decodeSolveRequest(r *http.Request) (*SolveRequest, *errors.AppError) {
	var req SolveRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	ve := &errors.ValidationErrors{}
	if len(req.Workers) == 0 {
		ve.Add("workers", "员工列表不能为空")
	}
	if req.Day.DayLength <= 0 {
		ve.Add("day.day_length", "营业时长必须为正数")
	}
	if ve.HasErrors() {
		return nil, ve.ToAppError()
	}
	return &req, nil
}

// decodeJSON 解析JSON请求体
func decodeJSON(r *http.Request, dst interface{}) *errors.AppError {
	if err := jsonDecode(r, dst); err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "请求体解析失败")
	}
	return nil
}

// solve 执行一次求解并记录指标
func (h *ScheduleHandler) solve(ctx context.Context, req *SolveRequest) (*model.SolveResult, string, time.Duration, error) {
	backend, engine := newEngine(h.solverCfg, req.AllowMultipleShifts)

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	started := time.Now()
	result, err := engine.Solve(ctx, req.Workers, req.Day)
	duration := time.Since(started)

	status := "error"
	if err == nil {
		status = string(result.Status)
	}
	metrics.RecordSolve(backend, status, duration)
	if err == nil && result.OK() {
		metrics.SetLastSolveQuality(result.TotalUnderstaff, result.FairnessSpread)
	}

	return result, backend, duration, err
}

// Solve 处理排班求解请求
// POST /api/v1/schedule/solve
func (h *ScheduleHandler) Solve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	req, appErr := decodeSolveRequest(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	result, backend, duration, err := h.solve(r.Context(), req)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SolveResponse{
		Result:   result,
		Backend:  backend,
		Duration: duration.String(),
	})
}

// ExportCoverage 求解后导出覆盖报表CSV
// POST /api/v1/schedule/coverage/export
func (h *ScheduleHandler) ExportCoverage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	req, appErr := decodeSolveRequest(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	result, _, _, err := h.solve(r.Context(), req)
	if err != nil {
		respondAppError(w, err)
		return
	}
	if !result.OK() {
		respondError(w, errors.New(errors.CodeNoFeasibleSolution, "时限内未找到可用排班，无法导出"))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="coverage_export.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := export.WriteCoverageCSV(w, result); err != nil {
		// 响应头已发出，只能记录日志
		logger.WithError(err).Msg("写出覆盖报表CSV失败")
	}
}

// StatsResponse 求解统计响应
type StatsResponse struct {
	Result   *model.SolveResult     `json:"result"`
	Coverage *stats.CoverageReport  `json:"coverage,omitempty"`
	Fairness *stats.FairnessMetrics `json:"fairness,omitempty"`
}

// CoverageStats 求解并返回逐小时覆盖报表
// POST /api/v1/stats/coverage
func (h *ScheduleHandler) CoverageStats(w http.ResponseWriter, r *http.Request) {
	h.statsEndpoint(w, r, func(resp *StatsResponse) {
		resp.Coverage = stats.BuildCoverageReport(resp.Result)
	})
}

// FairnessStats 求解并返回工时公平性指标
// POST /api/v1/stats/fairness
func (h *ScheduleHandler) FairnessStats(w http.ResponseWriter, r *http.Request) {
	h.statsEndpoint(w, r, func(resp *StatsResponse) {
		resp.Fairness = stats.AnalyzeFairness(resp.Result)
	})
}

// statsEndpoint 统计端点的公共流程：求解后填充统计字段
func (h *ScheduleHandler) statsEndpoint(w http.ResponseWriter, r *http.Request, fill func(*StatsResponse)) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	req, appErr := decodeSolveRequest(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	result, _, _, err := h.solve(r.Context(), req)
	if err != nil {
		respondAppError(w, err)
		return
	}

	resp := StatsResponse{Result: result}
	if result.OK() {
		fill(&resp)
	}
	respondJSON(w, http.StatusOK, resp)
}
