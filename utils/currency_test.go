package utils

import "testing"

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   int64
	}{
		{"whole dollars", 5.00, 500},
		{"cents", 0.25, 25},
		{"rounds half up", 0.255, 26},
		{"large amount", 1234.56, 123456},
		{"zero", 0, 0},
		{"float representation of 19.99", 19.99, 1999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToMinorUnits(tt.amount); got != tt.want {
				t.Errorf("ToMinorUnits(%v) = %d, expected %d", tt.amount, got, tt.want)
			}
		})
	}
}

func TestFromMinorUnits(t *testing.T) {
	if got := FromMinorUnits(500); got != 5.00 {
		t.Errorf("FromMinorUnits(500) = %v", got)
	}
}

func TestConvertUSDToPHP(t *testing.T) {
	got := ConvertUSDToPHP(100, 56.253)
	if got != 5625.30 {
		t.Errorf("ConvertUSDToPHP(100, 56.253) = %v, expected 5625.30", got)
	}
}
