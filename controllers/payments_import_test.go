package controllers

import "testing"

func TestIsBlankRow(t *testing.T) {
	tests := []struct {
		name string
		row  []string
		want bool
	}{
		{"empty slice", []string{}, true},
		{"whitespace only", []string{"  ", "\t", ""}, true},
		{"one value", []string{"", "", "50000"}, false},
		{"padded value", []string{"  rakoto01  "}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isBlankRow(tt.row); got != tt.want {
				t.Errorf("isBlankRow(%v) = %v, want %v", tt.row, got, tt.want)
			}
		})
	}
}
