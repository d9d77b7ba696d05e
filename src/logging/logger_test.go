package logging

import "testing"

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel("info") })

	cases := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{" warn ", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
	}
	for _, tc := range cases {
		SetLevel(tc.in)
		if got := GetLevel(); got != tc.want {
			t.Fatalf("SetLevel(%q): level = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSetLevelIgnoresUnknown(t *testing.T) {
	t.Cleanup(func() { SetLevel("info") })

	SetLevel("warn")
	SetLevel("verbose")
	if got := GetLevel(); got != LevelWarn {
		t.Fatalf("unknown level changed state: %v", got)
	}
}
