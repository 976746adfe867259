package xlog

import "testing"

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"notice", LevelInfo, false},
		{" warning ", LevelWarn, false},
		{"warn", LevelWarn, false},
		{"err", LevelError, false},
		{"Error", LevelError, false},
		{"", LevelInfo, true},
		{"trace", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevel_UnmarshalText(t *testing.T) {
	var l Level
	if err := l.UnmarshalText([]byte("warn")); err != nil {
		t.Fatalf("UnmarshalText() error: %v", err)
	}
	if l != LevelWarn || l.String() != "WARN" {
		t.Errorf("level = %v", l)
	}
	if err := l.UnmarshalText([]byte("loud")); err == nil {
		t.Error("UnmarshalText(loud) expected error")
	}
	if l != LevelWarn {
		t.Error("failed UnmarshalText must not modify level")
	}
}
