package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/dangban/dangban/pkg/errors"
	"github.com/dangban/dangban/pkg/model"
)

func TestWriteCoverageCSV(t *testing.T) {
	res := &model.SolveResult{
		Status:      model.SolveStatusOK,
		DayStart:    8,
		DayEnd:      10,
		MinCoverage: 1,
		MaxCoverage: 2,
		CoverageByHour: map[int]int{
			8: 2, 9: 0,
		},
		UnderstaffByHour: map[int]int{
			8: 0, 9: 1,
		},
	}

	var buf bytes.Buffer
	if err := WriteCoverageCSV(&buf, res); err != nil {
		t.Fatalf("WriteCoverageCSV: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("解析 CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("记录数 = %d, want 3（列头+2行）", len(records))
	}

	header := records[0]
	want := []string{
		"block_start_hour_24h", "block_end_hour_24h",
		"block_start_time", "block_end_time",
		"coverage", "understaff", "min_workers_soft", "max_workers_hard",
	}
	for i, col := range want {
		if header[i] != col {
			t.Errorf("列 %d = %s, want %s", i, header[i], col)
		}
	}

	row := records[1]
	if row[0] != "8" || row[1] != "9" || row[2] != "8:00 AM" || row[3] != "9:00 AM" {
		t.Errorf("首行时段字段 = %v", row[:4])
	}
	if row[4] != "2" || row[5] != "0" || row[6] != "1" || row[7] != "2" {
		t.Errorf("首行数值字段 = %v", row[4:])
	}

	second := records[2]
	if second[4] != "0" || second[5] != "1" {
		t.Errorf("9 点行覆盖/缺员 = %v, want 0/1", second[4:6])
	}
}

func TestWriteCoverageCSVRejectsNoSolution(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCoverageCSV(&buf, model.NoSolution())
	if err == nil {
		t.Fatal("no_solution 结果应拒绝导出")
	}
	if !errors.Is(err, errors.CodeInvalidInput) {
		t.Errorf("错误码 = %s, want INVALID_INPUT", errors.GetCode(err))
	}
	if buf.Len() != 0 {
		t.Error("拒绝导出时不应写入任何内容")
	}
}
