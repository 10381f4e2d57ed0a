// Package export 提供排班结果的导出功能
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/dangban/dangban/pkg/errors"
	"github.com/dangban/dangban/pkg/model"
	"github.com/dangban/dangban/pkg/stats"
)

// 覆盖报表 CSV 的列头，顺序固定
var coverageHeader = []string{
	"block_start_hour_24h",
	"block_end_hour_24h",
	"block_start_time",
	"block_end_time",
	"coverage",
	"understaff",
	"min_workers_soft",
	"max_workers_hard",
}

// WriteCoverageCSV 将覆盖报表以 CSV 写入 w，每个整点小时段一行。
// 只接受 ok 状态的结果。
func WriteCoverageCSV(w io.Writer, res *model.SolveResult) error {
	if res == nil || !res.OK() {
		return errors.New(errors.CodeInvalidInput, "没有可导出的排班结果")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(coverageHeader); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "写入 CSV 列头失败")
	}

	for _, row := range stats.BuildCoverageReport(res).Rows {
		record := []string{
			strconv.Itoa(row.StartHour),
			strconv.Itoa(row.EndHour),
			row.StartLabel,
			row.EndLabel,
			strconv.Itoa(row.Coverage),
			strconv.Itoa(row.Understaff),
			strconv.Itoa(row.MinSoft),
			strconv.Itoa(row.MaxHard),
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "写入 CSV 行失败")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "刷新 CSV 输出失败")
	}
	return nil
}
