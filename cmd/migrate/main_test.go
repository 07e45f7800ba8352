package main

import "testing"

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    command
		wantErr bool
	}{
		{"up", []string{"up"}, command{action: "up"}, false},
		{"down with steps", []string{"-steps", "1", "down"}, command{action: "down", steps: 1}, false},
		{"version", []string{"version"}, command{action: "version"}, false},
		{"missing action", []string{}, command{}, true},
		{"unknown action", []string{"sideways"}, command{}, true},
		{"negative steps", []string{"-steps", "-2", "up"}, command{}, true},
		{"extra args", []string{"up", "down"}, command{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseArgs(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseArgs(%v) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}
