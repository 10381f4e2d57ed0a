// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dangban/dangban/internal/config"
	"github.com/dangban/dangban/pkg/errors"
	"github.com/dangban/dangban/pkg/scheduler"
	"github.com/dangban/dangban/pkg/scheduler/solver"
)

// backendFactory 根据配置选择求解后端
func backendFactory(cfg config.SolverConfig) (string, solver.Factory) {
	switch cfg.Backend {
	case "backtracking":
		if cfg.NodeLimit > 0 {
			limit := cfg.NodeLimit
			return "backtracking", func() solver.Model { return solver.NewBacktrackingWithLimit(limit) }
		}
		return "backtracking", solver.NewBacktracking
	default:
		if cfg.SearchWorkers > 0 {
			workers := int32(cfg.SearchWorkers)
			return "cpsat", func() solver.Model { return solver.NewCpSatWithWorkers(workers) }
		}
		return "cpsat", solver.NewCpSat
	}
}

// newEngine 按配置创建求解引擎
func newEngine(cfg config.SolverConfig, allowMultipleShifts bool) (string, *scheduler.Engine) {
	name, factory := backendFactory(cfg)
	engine := scheduler.NewEngine(scheduler.Options{
		Backend:             factory,
		TimeLimit:           cfg.TimeLimit,
		AllowMultipleShifts: allowMultipleShifts,
	})
	return name, engine
}

// jsonDecode 从请求体解析JSON
func jsonDecode(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
		"fields":  err.Fields,
	})
}

// respondAppError 将任意错误归一化为AppError后返回
func respondAppError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		respondError(w, appErr)
		return
	}
	respondError(w, errors.Wrap(err, errors.CodeInternal, "内部错误"))
}
