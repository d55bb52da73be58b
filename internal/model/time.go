package model

import "time"

// TimeFormat 是对外接口统一使用的时间格式。
const TimeFormat = "2006-01-02 15:04:05"

// FormatTime 按统一格式序列化时间。
func FormatTime(t time.Time) string {
	return t.Format(TimeFormat)
}
