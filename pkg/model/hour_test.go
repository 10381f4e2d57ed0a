package model

import "testing"

func TestFormatHour(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{0, "12:00 AM"},
		{1, "1:00 AM"},
		{8, "8:00 AM"},
		{11, "11:00 AM"},
		{12, "12:00 PM"},
		{13, "1:00 PM"},
		{23, "11:00 PM"},
		{24, "12:00 AM"}, // 跨日回绕
		{25, "1:00 AM"},
	}

	for _, c := range cases {
		if got := FormatHour(c.hour); got != c.want {
			t.Errorf("FormatHour(%d) = %q, want %q", c.hour, got, c.want)
		}
	}
}

func TestClassifyShiftStart(t *testing.T) {
	// 12小时营业日（8:00-20:00），三等分各4小时
	cases := []struct {
		shiftStart int
		want       DayPart
	}{
		{8, DayPartOpening},
		{11, DayPartOpening}, // pos=3 < 4
		{12, DayPartMid},     // pos=4，恰好进入中段
		{15, DayPartMid},
		{16, DayPartClosing}, // pos=8，恰好进入闭店段
		{19, DayPartClosing},
	}

	for _, c := range cases {
		if got := ClassifyShiftStart(8, 20, c.shiftStart); got != c.want {
			t.Errorf("ClassifyShiftStart(8, 20, %d) = %s, want %s", c.shiftStart, got, c.want)
		}
	}
}

func TestClassifyShiftStartFractionalThirds(t *testing.T) {
	// 10小时营业日，三分之一为 3.33 小时
	if got := ClassifyShiftStart(9, 19, 12); got != DayPartOpening {
		t.Errorf("pos=3.0 < 3.33 应为 Opening, got %s", got)
	}
	if got := ClassifyShiftStart(9, 19, 13); got != DayPartMid {
		t.Errorf("pos=4.0 >= 3.33 应为 Mid, got %s", got)
	}
	if got := ClassifyShiftStart(9, 19, 11); got != DayPartOpening {
		t.Errorf("pos=2 < 3.33 应为 Opening, got %s", got)
	}
}

func TestClassifyShiftStartDegenerateDay(t *testing.T) {
	// 营业日长度不为正时统一返回 Mid
	if got := ClassifyShiftStart(8, 8, 8); got != DayPartMid {
		t.Errorf("零长度营业日应返回 Mid, got %s", got)
	}
	if got := ClassifyShiftStart(10, 8, 9); got != DayPartMid {
		t.Errorf("负长度营业日应返回 Mid, got %s", got)
	}
}
