package scheduler

import (
	"context"
	"sort"
	"time"

	"github.com/dangban/dangban/pkg/errors"
	"github.com/dangban/dangban/pkg/logger"
	"github.com/dangban/dangban/pkg/model"
	"github.com/dangban/dangban/pkg/scheduler/solver"
	"github.com/dangban/dangban/pkg/validator"
)

// DefaultTimeLimit 默认求解时限
const DefaultTimeLimit = 10 * time.Second

// Options 引擎配置
type Options struct {
	// Backend 求解后端工厂，nil 时使用 CP-SAT
	Backend solver.Factory

	// TimeLimit 求解时限，零值使用 DefaultTimeLimit
	TimeLimit time.Duration

	// AllowMultipleShifts 允许同一员工承担多个班次。
	// 默认关闭，即每人至多一班
	AllowMultipleShifts bool
}

// Engine 单日排班求解引擎
type Engine struct {
	backend      solver.Factory
	timeLimit    time.Duration
	onePerWorker bool
	log          *logger.SchedulerLogger
}

// NewEngine 创建排班引擎
func NewEngine(opts Options) *Engine {
	backend := opts.Backend
	if backend == nil {
		backend = solver.NewCpSat
	}
	limit := opts.TimeLimit
	if limit <= 0 {
		limit = DefaultTimeLimit
	}
	return &Engine{
		backend:      backend,
		timeLimit:    limit,
		onePerWorker: !opts.AllowMultipleShifts,
		log:          logger.NewSchedulerLogger(),
	}
}

// Solve 对给定员工与营业日参数求解一张排班表。
//
// 输入不合法时返回错误；输入合法但时限内未找到可用解时返回
// Status 为 no_solution 的结果，不算错误。允许班长都放不进营业日
// 时按空候选集求解，所有员工未排班，缺员全部由松弛量吸收。
func (e *Engine) Solve(ctx context.Context, workers []model.Worker, cfg model.DayConfig) (*model.SolveResult, error) {
	if len(cfg.AllowedLengths) == 0 {
		cfg.AllowedLengths = model.DefaultAllowedLengths
	}
	if err := validator.ValidateRequest(workers, cfg); err != nil {
		return nil, err
	}

	candidates := BuildCandidateShifts(cfg)
	feasible := make([][]int, len(workers))
	for i, w := range workers {
		feasible[i] = FeasibleIndices(w, candidates)
	}

	e.log.StartSolve(len(workers), len(candidates), cfg.DayStart, cfg.DayEnd())
	started := time.Now()

	m := e.backend()
	handles := buildModel(m, workers, cfg, candidates, feasible, DeriveWeights(cfg), e.onePerWorker)

	sol, err := m.Solve(ctx, e.timeLimit)
	if err != nil {
		return nil, errors.SolverFailure(err)
	}
	if !sol.Status.Succeeded() {
		e.log.NoSolution(sol.Status.String(), time.Since(started))
		return model.NoSolution(), nil
	}

	result := e.extract(sol, handles, workers, cfg, candidates)
	e.log.SolveComplete(sol.Status.String(), time.Since(started), sol.Objective)
	if result.TotalUnderstaff > 0 {
		e.log.Understaffed(result.TotalUnderstaff, understaffedHours(result))
	}
	return result, nil
}

// extract 从求解取值还原排班结果
func (e *Engine) extract(
	sol *solver.Solution,
	h *modelHandles,
	workers []model.Worker,
	cfg model.DayConfig,
	candidates []model.Shift,
) *model.SolveResult {
	result := &model.SolveResult{
		Status:           model.SolveStatusOK,
		DayStart:         cfg.DayStart,
		DayEnd:           cfg.DayEnd(),
		MinCoverage:      cfg.MinCoverage,
		MaxCoverage:      cfg.MaxCoverage,
		CoverageByHour:   make(map[int]int, cfg.DayLength),
		UnderstaffByHour: make(map[int]int, cfg.DayLength),
	}

	for _, hour := range cfg.Hours() {
		result.CoverageByHour[hour] = int(sol.Value(h.coverage[hour]))
		under := int(sol.Value(h.understaff[hour]))
		result.UnderstaffByHour[hour] = under
		result.TotalUnderstaff += under
	}
	result.FairnessSpread = int(sol.Value(h.maxWork) - sol.Value(h.minWork))

	for wi, w := range workers {
		var chosen []model.Shift
		for _, av := range h.assigns[wi] {
			if sol.BoolValue(av.v) {
				chosen = append(chosen, candidates[av.shiftIdx])
			}
		}
		sort.Slice(chosen, func(i, j int) bool { return chosen[i].Start < chosen[j].Start })

		a := model.WorkerAssignment{
			Worker:      w.Name,
			WorkHours:   int(sol.Value(h.workHours[wi])),
			Unavailable: w.SortedUnavailable(),
		}
		if len(chosen) > 0 {
			first := chosen[0]
			a.Shift = &first
			a.Label = model.ClassifyShiftStart(cfg.DayStart, cfg.DayEnd(), first.Start)
			a.ExtraShifts = chosen[1:]
		}
		result.Assignments = append(result.Assignments, a)
	}

	return result
}

// understaffedHours 返回存在缺员的小时，升序
func understaffedHours(r *model.SolveResult) []int {
	var hours []int
	for h, u := range r.UnderstaffByHour {
		if u > 0 {
			hours = append(hours, h)
		}
	}
	sort.Ints(hours)
	return hours
}
