package worker

import "testing"

func TestParseElapsed(t *testing.T) {
	cases := []struct {
		line string
		want float64
		ok   bool
	}{
		{"frame= 120 fps= 30 q=28.0 size= 512kB time=00:00:15.00 bitrate= 279.6kbits/s speed=1.2x", 15, true},
		{"time=01:02:03.500", 3723.5, true},
		{"time=00:00:00.00", 0, true},
		{"Stream mapping:", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseElapsed(c.line)
		if ok != c.ok {
			t.Errorf("ParseElapsed(%q) ok = %v, want %v", c.line, ok, c.ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("ParseElapsed(%q) = %v, want %v", c.line, got, c.want)
		}
	}
}

func TestProgressPercent(t *testing.T) {
	cases := []struct {
		elapsed  float64
		duration float64
		want     int
	}{
		{15, 30, 50},
		{29.99, 30, 99},
		{30, 30, 99},
		{45, 30, 99},
		{0, 30, 0},
		{10, 0, 0},
		{-1, 30, 0},
	}
	for _, c := range cases {
		if got := ProgressPercent(c.elapsed, c.duration); got != c.want {
			t.Errorf("ProgressPercent(%v, %v) = %d, want %d", c.elapsed, c.duration, got, c.want)
		}
	}
}

func TestScanStatusLinesSplitsCarriageReturns(t *testing.T) {
	data := []byte("time=00:00:01.00\rtime=00:00:02.00\nfinal line")
	var lines []string
	for len(data) > 0 {
		advance, token, err := scanStatusLines(data, true)
		if err != nil {
			t.Fatalf("scanStatusLines: %v", err)
		}
		if advance == 0 {
			break
		}
		lines = append(lines, string(token))
		data = data[advance:]
	}
	want := []string{"time=00:00:01.00", "time=00:00:02.00", "final line"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines %v, want %d", len(lines), lines, len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
