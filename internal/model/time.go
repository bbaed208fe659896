package model

import (
	"strings"
	"time"
)

// LocalTime 以 "YYYY-MM-DD HH:MM:SS"（本地时区）格式序列化时间，供 DTO 使用。
type LocalTime time.Time

const timeFormat = "2006-01-02 15:04:05"

func (t LocalTime) String() string {
	return time.Time(t).Format(timeFormat)
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *LocalTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*t = LocalTime(time.Time{})
		return nil
	}
	parsed, err := time.ParseInLocation(timeFormat, s, time.Local)
	if err != nil {
		return err
	}
	*t = LocalTime(parsed)
	return nil
}
