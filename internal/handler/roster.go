// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dangban/dangban/internal/repository"
	"github.com/dangban/dangban/pkg/errors"
	"github.com/dangban/dangban/pkg/model"
	"github.com/dangban/dangban/pkg/validator"
)

// RosterStore 名单存储接口
type RosterStore interface {
	Create(ctx context.Context, roster *model.Roster) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Roster, error)
	List(ctx context.Context, filter repository.ListFilter) ([]*model.Roster, int, error)
	Update(ctx context.Context, roster *model.Roster) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RosterHandler 名单管理处理器
type RosterHandler struct {
	store    RosterStore
	schedule *ScheduleHandler
}

// NewRosterHandler 创建名单管理处理器
func NewRosterHandler(store RosterStore, schedule *ScheduleHandler) *RosterHandler {
	return &RosterHandler{store: store, schedule: schedule}
}

// RosterRequest 名单创建/更新请求
type RosterRequest struct {
	Name    string          `json:"name"`
	Note    string          `json:"note,omitempty"`
	Day     model.DayConfig `json:"day"`
	Workers []model.Worker  `json:"workers"`
}

// RosterListResponse 名单列表响应
type RosterListResponse struct {
	Rosters []*model.Roster `json:"rosters"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// Collection 处理名单集合请求
// GET /api/v1/rosters 列表，POST /api/v1/rosters 创建
func (h *RosterHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET和POST方法"))
	}
}

// Item 处理单个名单请求
// GET/PUT/DELETE /api/v1/rosters/{id}，POST /api/v1/rosters/{id}/solve
func (h *RosterHandler) Item(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/rosters/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	id, err := uuid.Parse(parts[0])
	if err != nil {
		respondError(w, errors.InvalidInput("id", "名单ID必须是合法的UUID"))
		return
	}

	if len(parts) == 2 && parts[1] == "solve" {
		h.solveRoster(w, r, id)
		return
	}
	if len(parts) != 1 {
		respondError(w, errors.ErrNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET、PUT和DELETE方法"))
	}
}

// list 分页列出名单
func (h *RosterHandler) list(w http.ResponseWriter, r *http.Request) {
	filter := repository.DefaultListFilter()
	if search := r.URL.Query().Get("search"); search != "" {
		filter = filter.WithSearch(search)
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 && limit <= 100 {
		filter = filter.WithLimit(limit)
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset >= 0 {
		filter = filter.WithOffset(offset)
	}

	rosters, total, err := h.store.List(r.Context(), filter)
	if err != nil {
		respondAppError(w, err)
		return
	}
	if rosters == nil {
		rosters = []*model.Roster{}
	}

	respondJSON(w, http.StatusOK, RosterListResponse{
		Rosters: rosters,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

// create 创建名单
func (h *RosterHandler) create(w http.ResponseWriter, r *http.Request) {
	req, appErr := h.decodeRosterRequest(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	roster := model.NewRoster(req.Name, req.Day, req.Workers)
	roster.Note = req.Note
	if err := h.store.Create(r.Context(), roster); err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, roster)
}

// get 获取名单
func (h *RosterHandler) get(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	roster, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, roster)
}

// update 更新名单
func (h *RosterHandler) update(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	req, appErr := h.decodeRosterRequest(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	roster := &model.Roster{
		ID:      id,
		Name:    req.Name,
		Note:    req.Note,
		Day:     req.Day,
		Workers: req.Workers,
	}
	if err := h.store.Update(r.Context(), roster); err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, roster)
}

// delete 删除名单
func (h *RosterHandler) delete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.store.Delete(r.Context(), id); err != nil {
		respondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// solveRoster 对保存的名单执行求解
func (h *RosterHandler) solveRoster(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	roster, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}

	result, backend, duration, err := h.schedule.solve(r.Context(), &SolveRequest{
		Day:     roster.Day,
		Workers: roster.Workers,
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

// decodeRosterRequest 解析并校验名单请求体
func (h *RosterHandler) decodeRosterRequest(r *http.Request) (*RosterRequest, *errors.AppError) {
	var req RosterRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		return nil, appErr
	}

	ve := &errors.ValidationErrors{}
	if strings.TrimSpace(req.Name) == "" {
		ve.Add("name", "名单名称不能为空")
	}
	if ve.HasErrors() {
		return nil, ve.ToAppError()
	}

	if len(req.Day.AllowedLengths) == 0 {
		req.Day.AllowedLengths = model.DefaultAllowedLengths
	}
	if err := validator.ValidateRequest(req.Workers, req.Day); err != nil {
		return nil, err
	}

	return &req, nil
}
