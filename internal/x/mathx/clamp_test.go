package mathx

import "testing"

func TestClamp(t *testing.T) {
	if got := Clamp(120, 0, 100); got != 100 {
		t.Fatalf("Clamp(120)=%d", got)
	}
	if got := Clamp(-3, 0, 100); got != 0 {
		t.Fatalf("Clamp(-3)=%d", got)
	}
	if got := Clamp(42.5, 100, 0); got != 42.5 {
		t.Fatalf("swapped bounds: got %v", got)
	}
}
