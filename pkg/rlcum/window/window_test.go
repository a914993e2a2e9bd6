package window

import "testing"

func TestInside(t *testing.T) {
	w := New(Modulus, DefaultSize)

	tests := []struct {
		name string
		x    uint16
		high uint16
		want bool
	}{
		{"at low edge", 0, 512, true},
		{"at high edge excluded", 512, 512, false},
		{"one below high", 511, 512, true},
		{"just outside below", 1023, 512, false},
		{"wrap: high near zero, x near top", 1000, 5, true},
		{"wrap: high near zero, x just below window", 493, 5, false},
		{"wrap: x equals high near zero excluded", 5, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Inside(tt.x, tt.high); got != tt.want {
				t.Errorf("Inside(%d, %d) = %v, want %v", tt.x, tt.high, got, tt.want)
			}
		})
	}
}

func TestAddWraps(t *testing.T) {
	w := New(Modulus, DefaultSize)

	if got := w.Add(1023, 1); got != 0 {
		t.Errorf("Add(1023, 1) = %d, want 0", got)
	}
	if got := w.Add(0, -1); got != 1023 {
		t.Errorf("Add(0, -1) = %d, want 1023", got)
	}
	if got := w.Add(600, 500); got != 76 {
		t.Errorf("Add(600, 500) = %d, want 76", got)
	}
}

func TestModNegative(t *testing.T) {
	w := New(Modulus, DefaultSize)
	if got := w.Mod(-1); got != 1023 {
		t.Errorf("Mod(-1) = %d, want 1023", got)
	}
	if got := w.Mod(1024); got != 0 {
		t.Errorf("Mod(1024) = %d, want 0", got)
	}
}
