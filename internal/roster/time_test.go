package roster

import "testing"

func TestTimeToMinutes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "midnight", input: "00:00", want: 0},
		{name: "9am", input: "09:00", want: 540},
		{name: "noon", input: "12:00", want: 720},
		{name: "with minutes", input: "10:45", want: 645},
		{name: "11:59pm", input: "23:59", want: 1439},
		{name: "invalid short", input: "9:00", want: 0},
		{name: "empty", input: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TimeToMinutes(tt.input)
			if got != tt.want {
				t.Errorf("TimeToMinutes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMinutesToTime(t *testing.T) {
	tests := []struct {
		name  string
		input int
		want  string
	}{
		{name: "midnight", input: 0, want: "00:00"},
		{name: "9am", input: 540, want: "09:00"},
		{name: "zero-padded", input: 545, want: "09:05"},
		{name: "negative clamps to zero", input: -10, want: "00:00"},
		{name: "over 24h clamps", input: 1500, want: "23:59"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MinutesToTime(tt.input)
			if got != tt.want {
				t.Errorf("MinutesToTime(%d) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAddMinutes(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		minutes int
		want    string
	}{
		{name: "whole hour", start: "10:00", minutes: 60, want: "11:00"},
		{name: "fractional hour", start: "10:00", minutes: 75, want: "11:15"},
		{name: "quarter", start: "09:45", minutes: 15, want: "10:00"},
		{name: "zero", start: "08:30", minutes: 0, want: "08:30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddMinutes(tt.start, tt.minutes)
			if got != tt.want {
				t.Errorf("AddMinutes(%q, %d) = %q, want %q", tt.start, tt.minutes, got, tt.want)
			}
		})
	}
}

func TestTimesOverlap(t *testing.T) {
	tests := []struct {
		name                       string
		start1, end1, start2, end2 string
		want                       bool
	}{
		{name: "identical", start1: "09:00", end1: "10:00", start2: "09:00", end2: "10:00", want: true},
		{name: "partial", start1: "09:00", end1: "10:00", start2: "09:30", end2: "10:30", want: true},
		{name: "contained", start1: "09:00", end1: "10:00", start2: "09:15", end2: "09:45", want: true},
		{name: "back to back", start1: "09:00", end1: "10:00", start2: "10:00", end2: "11:00", want: false},
		{name: "disjoint", start1: "09:00", end1: "10:00", start2: "13:00", end2: "14:00", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TimesOverlap(tt.start1, tt.end1, tt.start2, tt.end2)
			if got != tt.want {
				t.Errorf("TimesOverlap(%q, %q, %q, %q) = %v, want %v",
					tt.start1, tt.end1, tt.start2, tt.end2, got, tt.want)
			}
			// Overlap is symmetric.
			if rev := TimesOverlap(tt.start2, tt.end2, tt.start1, tt.end1); rev != got {
				t.Errorf("overlap not symmetric for %s", tt.name)
			}
		})
	}
}
