package model

import (
	"fmt"
	"time"
)

// LocalTime 以 "YYYY-MM-DD HH:MM:SS" 格式、按展示时区序列化时间。
type LocalTime time.Time

const timeFormat = "2006-01-02 15:04:05"

// displayLocation 默认是日本标准时间，启动时由配置覆盖。
var displayLocation = time.FixedZone("JST", 9*60*60)

// SetDisplayLocation 设置 LocalTime 序列化时使用的时区。
func SetDisplayLocation(loc *time.Location) {
	if loc != nil {
		displayLocation = loc
	}
}

// String 返回展示时区下的格式化时间。
func (t LocalTime) String() string {
	return time.Time(t).In(displayLocation).Format(timeFormat)
}

// MarshalJSON implements the json.Marshaler interface.
func (t LocalTime) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("\"%s\"", t.String())), nil
}
