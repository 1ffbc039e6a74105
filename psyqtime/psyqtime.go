// Package psyqtime decodes and encodes the packed 32-bit date/time word
// used throughout PSY-Q LIB and OBJ files.
//
// The word carries no time zone; callers treat it as naive local time.
//
//	Low 16 bits:  year-1980 in bits 15..9, month in 8..5, day in 4..0
//	High 16 bits: hour in 15..11, minute in 10..5, seconds/2 in 4..0
package psyqtime

import (
	"fmt"
	"time"
)

// Timestamp is the broken-down form of a packed PSY-Q date/time word.
type Timestamp struct {
	Year   int // full calendar year, e.g. 1996
	Month  int // 1..12
	Day    int // 1..31
	Hour   int // 0..23
	Minute int // 0..59
	Second int // 0..58, always even (low bit is lost packing into 5 bits)
}

// Time returns t as a UTC time.Time. The original word carries no zone
// information, so UTC is used as a neutral, unambiguous representation.
func (t Timestamp) Time() time.Time {
	return time.Date(t.Year, time.Month(t.Month), t.Day, t.Hour, t.Minute, t.Second, 0, time.UTC)
}

func (t Timestamp) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second)
}

// Decode unpacks word into a Timestamp, failing if any field lies outside
// its calendar range.
func Decode(word uint32) (Timestamp, error) {
	date := word & 0xffff
	clock := word >> 16

	year := int((date>>9)&0x7f) + 1980
	month := int((date >> 5) & 0xf)
	day := int(date & 0x1f)

	hour := int((clock >> 11) & 0x1f)
	minute := int((clock >> 5) & 0x3f)
	second := int(clock&0x1f) * 2

	t := Timestamp{Year: year, Month: month, Day: day, Hour: hour, Minute: minute, Second: second}
	if err := t.validate(); err != nil {
		return Timestamp{}, err
	}
	return t, nil
}

// Encode packs t into a 32-bit word. Encode is total: out-of-range fields
// are truncated to their bit width rather than rejected.
func (t Timestamp) Encode() uint32 {
	year := uint32(t.Year-1980) & 0x7f
	month := uint32(t.Month) & 0xf
	day := uint32(t.Day) & 0x1f
	date := (year << 9) | (month << 5) | day

	hour := uint32(t.Hour) & 0x1f
	minute := uint32(t.Minute) & 0x3f
	second := uint32(t.Second/2) & 0x1f
	clock := (hour << 11) | (minute << 5) | second

	return date | (clock << 16)
}

func (t Timestamp) validate() error {
	if t.Month < 1 || t.Month > 12 {
		return fmt.Errorf("psyqtime: month %d out of range", t.Month)
	}
	if t.Day < 1 || t.Day > daysInMonth(t.Year, t.Month) {
		return fmt.Errorf("psyqtime: day %d out of range for %04d-%02d", t.Day, t.Year, t.Month)
	}
	if t.Hour < 0 || t.Hour > 23 {
		return fmt.Errorf("psyqtime: hour %d out of range", t.Hour)
	}
	if t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("psyqtime: minute %d out of range", t.Minute)
	}
	if t.Second < 0 || t.Second > 58 || t.Second%2 != 0 {
		return fmt.Errorf("psyqtime: second %d out of range", t.Second)
	}
	return nil
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeap(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
