package types

import "testing"

func TestModeNext(t *testing.T) {
	tests := []struct {
		from, want Mode
	}{
		{ModeOff, ModeRock},
		{ModeRock, ModeCustom},
		{ModeCustom, ModeOff},
		{Mode(7), ModeOff},
	}
	for _, tt := range tests {
		if got := tt.from.Next(); got != tt.want {
			t.Errorf("%s.Next() = %s, want %s", tt.from, got, tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"rock", ModeRock, false},
		{" Custom\n", ModeCustom, false},
		{"0", ModeOff, false},
		{"5", Mode(5), false},
		{"disco", ModeOff, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseMode(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if Mode(5).Valid() {
		t.Error("Expected mode 5 to be invalid")
	}
}

func TestParseTrigger(t *testing.T) {
	tests := []struct {
		in      string
		want    Trigger
		wantErr bool
	}{
		{"snare", TriggerSnare, false},
		{"HIHAT", TriggerHiHat, false},
		{"4", TriggerSplash, false},
		{"5", 0, true},
		{"-1", 0, true},
		{"cowbell", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTrigger(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTrigger(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseTrigger(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestStatusString(t *testing.T) {
	s := Status{Mode: ModeRock, BPM: 120, Volume: 80, Sequencer: "playing-rock"}
	want := "mode=rock bpm=120 volume=80 sequencer=playing-rock"
	if s.String() != want {
		t.Errorf("got %q, want %q", s.String(), want)
	}
	if Trigger(9).String() != "trigger(9)" {
		t.Errorf("Unexpected name for invalid trigger: %s", Trigger(9))
	}
}
