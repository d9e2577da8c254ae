package remotefs

import (
	"fmt"
	"time"

	"github.com/mpytool/there/remotefs/literal"
)

// ReadRTC reads the board's real-time clock. The board's 8-tuple uses
// ISO weekday numbering (1-7, Monday=1, discarded here since time.Time
// derives its own) and a subsecond field that counts DOWN from 255 in
// 1/256-second units (spec.md §6): microseconds = 999999*(255-subsec)/256.
func (fs *FS) ReadRTC() (time.Time, error) {
	out, err := fs.t.Exec("import pyb\nprint(pyb.RTC().datetime())\n", defaultTimeout)
	if err != nil {
		return time.Time{}, err
	}
	v, err := literal.Parse(out)
	if err != nil {
		return time.Time{}, fmt.Errorf("remotefs: parsing RTC response: %w", err)
	}
	if v.Kind != literal.KindTuple || len(v.Items) < 8 {
		return time.Time{}, fmt.Errorf("remotefs: unexpected RTC shape")
	}
	year, month, day := int(v.Items[0].Int), int(v.Items[1].Int), int(v.Items[2].Int)
	hour, minute, sec := int(v.Items[4].Int), int(v.Items[5].Int), int(v.Items[6].Int)
	subsec := int(v.Items[7].Int)
	micros := 999999 * (255 - subsec) / 256
	return time.Date(year, time.Month(month), day, hour, minute, sec, micros*1000, time.UTC), nil
}

// SetRTC writes the board's real-time clock from t, inverting the
// subsecond quantization: subsecond = 255 - (255*microseconds/999999).
// Round trip through ReadRTC is accurate to within one 1/256-second
// tick (spec.md §8, scenario S6).
func (fs *FS) SetRTC(t time.Time) error {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // time.Sunday == 0; board wants ISO 1-7, Monday=1
	}
	micros := t.Nanosecond() / 1000
	// Truncate the whole expression, not just the 255*micros/999999 term.
	subsec := (255*999999 - 255*micros) / 999999

	program := fmt.Sprintf("import pyb\npyb.RTC().datetime((%d, %d, %d, %d, %d, %d, %d, %d))\nprint(None)\n",
		t.Year(), int(t.Month()), t.Day(), weekday, t.Hour(), t.Minute(), t.Second(), subsec)
	_, err := fs.t.Exec(program, defaultTimeout)
	return err
}
