package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/dangban/dangban/internal/repository"
	"github.com/dangban/dangban/pkg/errors"
	"github.com/dangban/dangban/pkg/model"
)

// fakeRosterStore 内存版名单存储，测试用
type fakeRosterStore struct {
	rosters map[uuid.UUID]*model.Roster
}

func newFakeRosterStore() *fakeRosterStore {
	return &fakeRosterStore{rosters: make(map[uuid.UUID]*model.Roster)}
}

func (s *fakeRosterStore) Create(_ context.Context, roster *model.Roster) error {
	if roster.ID == uuid.Nil {
		roster.ID = uuid.New()
	}
	clone := *roster
	s.rosters[roster.ID] = &clone
	return nil
}

func (s *fakeRosterStore) GetByID(_ context.Context, id uuid.UUID) (*model.Roster, error) {
	roster, ok := s.rosters[id]
	if !ok {
		return nil, errors.NotFound("名单", id.String())
	}
	clone := *roster
	return &clone, nil
}

func (s *fakeRosterStore) List(_ context.Context, filter repository.ListFilter) ([]*model.Roster, int, error) {
	var all []*model.Roster
	for _, roster := range s.rosters {
		if filter.Search != "" && !strings.Contains(roster.Name, filter.Search) {
			continue
		}
		clone := *roster
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	if filter.Offset < len(all) {
		all = all[filter.Offset:]
	} else {
		all = nil
	}
	if filter.Limit > 0 && filter.Limit < len(all) {
		all = all[:filter.Limit]
	}
	return all, total, nil
}

func (s *fakeRosterStore) Update(_ context.Context, roster *model.Roster) error {
	if _, ok := s.rosters[roster.ID]; !ok {
		return errors.NotFound("名单", roster.ID.String())
	}
	clone := *roster
	s.rosters[roster.ID] = &clone
	return nil
}

func (s *fakeRosterStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.rosters[id]; !ok {
		return errors.NotFound("名单", id.String())
	}
	delete(s.rosters, id)
	return nil
}

func newTestRosterHandler() (*RosterHandler, *fakeRosterStore) {
	store := newFakeRosterStore()
	return NewRosterHandler(store, newTestScheduleHandler()), store
}

func sampleRosterRequest() RosterRequest {
	return RosterRequest{
		Name: "早班名单",
		Note: "工作日通用",
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

func TestRosterCreate(t *testing.T) {
	h, store := newTestRosterHandler()
	rec := postJSON(t, h.Collection, "/api/v1/rosters", sampleRosterRequest())

	if rec.Code != http.StatusCreated {
		t.Fatalf("状态码错误: 期望 201, 实际 %d, 响应 %s", rec.Code, rec.Body.String())
	}

	var roster model.Roster
	if err := json.Unmarshal(rec.Body.Bytes(), &roster); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if roster.ID == uuid.Nil {
		t.Error("期望分配名单ID")
	}
	if _, ok := store.rosters[roster.ID]; !ok {
		t.Error("名单未写入存储")
	}
}

func TestRosterCreateEmptyName(t *testing.T) {
	h, _ := newTestRosterHandler()
	req := sampleRosterRequest()
	req.Name = "  "
	rec := postJSON(t, h.Collection, "/api/v1/rosters", req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("状态码错误: 期望 400, 实际 %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "VALIDATION_FAILED") {
		t.Errorf("期望验证失败错误码, 响应 %s", rec.Body.String())
	}
}

func TestRosterCreateInvalidWorker(t *testing.T) {
	h, _ := newTestRosterHandler()
	req := sampleRosterRequest()
	req.Workers = []model.Worker{{Name: "Alex", Unavailable: []int{25}}}
	rec := postJSON(t, h.Collection, "/api/v1/rosters", req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("状态码错误: 期望 400, 实际 %d, 响应 %s", rec.Code, rec.Body.String())
	}
}

func TestRosterGet(t *testing.T) {
	h, store := newTestRosterHandler()
	roster := model.NewRoster("晚班名单", sampleRosterRequest().Day, sampleRosterRequest().Workers)
	store.Create(context.Background(), roster)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rosters/"+roster.ID.String(), nil)
	rec := httptest.NewRecorder()
	h.Item(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码错误: 期望 200, 实际 %d", rec.Code)
	}

	var got model.Roster
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if got.Name != "晚班名单" {
		t.Errorf("名单名称错误: %s", got.Name)
	}
}

func TestRosterGetNotFound(t *testing.T) {
	h, _ := newTestRosterHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rosters/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	h.Item(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("状态码错误: 期望 404, 实际 %d", rec.Code)
	}
}

func TestRosterInvalidID(t *testing.T) {
	h, _ := newTestRosterHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rosters/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	h.Item(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("状态码错误: 期望 400, 实际 %d", rec.Code)
	}
}

func TestRosterList(t *testing.T) {
	h, store := newTestRosterHandler()
	day := sampleRosterRequest().Day
	workers := sampleRosterRequest().Workers
	store.Create(context.Background(), model.NewRoster("名单A", day, workers))
	store.Create(context.Background(), model.NewRoster("名单B", day, workers))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rosters", nil)
	rec := httptest.NewRecorder()
	h.Collection(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码错误: 期望 200, 实际 %d", rec.Code)
	}

	var resp RosterListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Total != 2 || len(resp.Rosters) != 2 {
		t.Errorf("列表数量错误: total=%d rosters=%d", resp.Total, len(resp.Rosters))
	}
}

func TestRosterListSearch(t *testing.T) {
	h, store := newTestRosterHandler()
	day := sampleRosterRequest().Day
	workers := sampleRosterRequest().Workers
	store.Create(context.Background(), model.NewRoster("早班", day, workers))
	store.Create(context.Background(), model.NewRoster("晚班", day, workers))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rosters?search=早", nil)
	rec := httptest.NewRecorder()
	h.Collection(rec, req)

	var resp RosterListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("搜索结果数量错误: 期望 1, 实际 %d", resp.Total)
	}
}

func TestRosterUpdate(t *testing.T) {
	h, store := newTestRosterHandler()
	roster := model.NewRoster("旧名单", sampleRosterRequest().Day, sampleRosterRequest().Workers)
	store.Create(context.Background(), roster)

	update := sampleRosterRequest()
	update.Name = "新名单"
	buf, _ := json.Marshal(update)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/rosters/"+roster.ID.String(), strings.NewReader(string(buf)))
	rec := httptest.NewRecorder()
	h.Item(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码错误: 期望 200, 实际 %d, 响应 %s", rec.Code, rec.Body.String())
	}
	if store.rosters[roster.ID].Name != "新名单" {
		t.Errorf("名单未更新: %s", store.rosters[roster.ID].Name)
	}
}

func TestRosterDelete(t *testing.T) {
	h, store := newTestRosterHandler()
	roster := model.NewRoster("临时名单", sampleRosterRequest().Day, sampleRosterRequest().Workers)
	store.Create(context.Background(), roster)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/rosters/"+roster.ID.String(), nil)
	rec := httptest.NewRecorder()
	h.Item(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("状态码错误: 期望 204, 实际 %d", rec.Code)
	}
	if _, ok := store.rosters[roster.ID]; ok {
		t.Error("名单未被删除")
	}
}

func TestRosterSolve(t *testing.T) {
	h, store := newTestRosterHandler()
	roster := model.NewRoster("求解名单", sampleRosterRequest().Day, sampleRosterRequest().Workers)
	store.Create(context.Background(), roster)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rosters/"+roster.ID.String()+"/solve", nil)
	rec := httptest.NewRecorder()
	h.Item(rec, req)

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
	if resp.Result.Assignments[0].WorkHours != 4 {
		t.Errorf("工时错误: 期望 4, 实际 %d", resp.Result.Assignments[0].WorkHours)
	}
}
