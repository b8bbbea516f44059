package trace

import (
	"slices"
	"testing"
)

func TestParseDeltas(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"50", []int{50}, false},
		{"50,-20,400", []int{50, -20, 400}, false},
		{" 50, -20\t400\n", []int{50, -20, 400}, false},
		{"", nil, true},
		{",,", nil, true},
		{"50,up", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDeltas(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDeltas(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParseDeltas(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestScript(t *testing.T) {
	tests := []struct {
		name    string
		script  Script
		sweep   bool
		rounds  int
		wantErr bool
	}{
		{"deltas", Script{Deltas: []int{10}}, false, 1, false},
		{"repeated", Script{Deltas: []int{10}, Repeat: 3}, false, 3, false},
		{"sweep", Script{Sweep: 48}, true, 1, false},
		{"empty", Script{}, true, 1, true},
		{"negative repeat", Script{Deltas: []int{1}, Repeat: -1}, false, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.script.IsSweep(); got != tt.sweep {
				t.Errorf("IsSweep() = %v, want %v", got, tt.sweep)
			}
			if got := tt.script.Rounds(); got != tt.rounds {
				t.Errorf("Rounds() = %d, want %d", got, tt.rounds)
			}
			if err := tt.script.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestScriptHash(t *testing.T) {
	a := Script{Deltas: []int{1, 2}}
	if a.Hash() != (Script{Deltas: []int{1, 2}, Repeat: 1}).Hash() {
		t.Error("Repeat 0 and 1 should hash the same")
	}
	others := []Script{
		{Deltas: []int{12}},
		{Deltas: []int{2, 1}},
		{Deltas: []int{1, 2}, Repeat: 2},
		{Sweep: 12},
	}
	for _, o := range others {
		if o.Hash() == a.Hash() {
			t.Errorf("Hash(%+v) collides with Hash(%+v)", o, a)
		}
	}
	if len(a.Hash()) != 64 {
		t.Errorf("Hash() length = %d, want 64", len(a.Hash()))
	}
}
