// Package handler 提供HTTP请求处理器
package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/dangban/dangban/internal/dataset"
	"github.com/dangban/dangban/pkg/errors"
)

// DatasetHandler 演示数据集处理器
type DatasetHandler struct {
	schedule *ScheduleHandler
}

// NewDatasetHandler 创建演示数据集处理器
func NewDatasetHandler(schedule *ScheduleHandler) *DatasetHandler {
	return &DatasetHandler{schedule: schedule}
}

// DatasetListResponse 数据集列表响应
type DatasetListResponse struct {
	Datasets []dataset.Dataset `json:"datasets"`
	Total    int               `json:"total"`
}

// List 返回全部演示数据集
// GET /api/v1/datasets
func (h *DatasetHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	all := dataset.All()
	respondJSON(w, http.StatusOK, DatasetListResponse{
		Datasets: all,
		Total:    len(all),
	})
}

// Get 按键返回单个演示数据集
// GET /api/v1/datasets/{key}
func (h *DatasetHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	key := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/datasets/"), "/")
	ds, ok := dataset.ByKey(key)
	if !ok {
		respondError(w, errors.NotFound("演示数据集", key))
		return
	}

	respondJSON(w, http.StatusOK, ds)
}

// DatasetSolveRequest 按键求解演示数据集的请求
type DatasetSolveRequest struct {
	Key                 string `json:"key"`
	AllowMultipleShifts bool   `json:"allow_multiple_shifts,omitempty"`
}

// Solve 按键求解演示数据集
// POST /api/v1/datasets/solve
func (h *DatasetHandler) Solve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	// 允许空请求体，此时从查询参数取键
	var req DatasetSolveRequest
	if err := jsonDecode(r, &req); err != nil && err != io.EOF {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "请求体解析失败"))
		return
	}
	if req.Key == "" {
		req.Key = r.URL.Query().Get("key")
	}

	ds, ok := dataset.ByKey(req.Key)
	if !ok {
		respondError(w, errors.NotFound("演示数据集", req.Key))
		return
	}

	result, backend, duration, err := h.schedule.solve(r.Context(), &SolveRequest{
		Day:                 ds.Day,
		Workers:             ds.Workers,
		AllowMultipleShifts: req.AllowMultipleShifts,
	})
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
