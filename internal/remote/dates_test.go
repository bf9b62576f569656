package remote

import (
	"testing"
	"time"
)

func TestParseFolderDate(t *testing.T) {
	cases := []struct {
		name string
		want time.Time
		ok   bool
	}{
		{"2024-11-02", time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC), true},
		{"2024_11_02", time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC), true},
		{"2024_11-02", time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC), true},
		{"11_02_2024", time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC), true},
		{"11-02-2024", time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC), true},
		{"1-2-2024", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), true},
		{"2024-1-2", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), true},
		{"garbage", time.Time{}, false},
		{"recordings", time.Time{}, false},
		{"2024-13-01", time.Time{}, false},
		{"13_40_2024", time.Time{}, false},
		{"2024-11", time.Time{}, false},
		{"02-03-04", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := parseFolderDate(tc.name)
		if ok != tc.ok {
			t.Errorf("%q: ok = %v, want %v", tc.name, ok, tc.ok)
			continue
		}
		if ok && !got.Equal(tc.want) {
			t.Errorf("%q: parsed %v, want %v", tc.name, got, tc.want)
		}
	}
}
