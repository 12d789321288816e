package date

import "testing"

func TestAppend(t *testing.T) {
	h := new(History[string])
	d1, v1 := New(2025, 07, 01), "25 Jul 1"
	d2, v2 := New(2024, 07, 01), "24 Jul 1"

	// Test is about appending two values in reverse order and checking that everything is
	// as expected at every step of the way.

	if h.Len() != 0 {
		t.Errorf("History.Len() = %v want 0", h.Len())
	}

	h.Append(d1, v1)
	if h.Len() != 1 {
		t.Errorf("Append(d1, v1).Len() = %v want 1", h.Len())
	}

	h.Append(d2, v2)
	if h.Len() != 2 {
		t.Errorf("Append(d2, v2).Len() = %v want 2", h.Len())
	}

	if h.days[1] != d1 {
		t.Errorf("history[1].day = %v want %v", h.days[0], d1)
	}
	if h.days[0] != d2 {
		t.Errorf("history[0].day = %v want %v", h.days[1], d2)
	}
	if h.values[1] != v1 {
		t.Errorf("history[1].value = %v want %v", h.values[0], v1)
	}
	if h.values[0] != v2 {
		t.Errorf("history[0].value = %v want %v", h.values[1], v2)
	}
}

func TestValueAsOf(t *testing.T) {
	h := new(History[float64])
	h.Append(MustParse("2025-01-02"), 100)
	h.Append(MustParse("2025-01-06"), 110)

	tests := []struct {
		day    string
		want   float64
		wantOk bool
	}{
		{"2025-01-01", 0, false},  // before the first point
		{"2025-01-02", 100, true}, // exact match
		{"2025-01-04", 100, true}, // carried forward over the gap
		{"2025-01-06", 110, true},
		{"2025-01-10", 110, true}, // after the last point
	}
	for _, tc := range tests {
		got, ok := h.ValueAsOf(MustParse(tc.day))
		if got != tc.want || ok != tc.wantOk {
			t.Errorf("ValueAsOf(%s) = %v, %v want %v, %v", tc.day, got, ok, tc.want, tc.wantOk)
		}
	}
}

func TestFirstLatest(t *testing.T) {
	h := new(History[float64])
	if d, v := h.Latest(); !d.IsZero() || v != 0 {
		t.Errorf("empty.Latest() = %v, %v want zero values", d, v)
	}
	h.Append(MustParse("2025-03-03"), 3)
	h.Append(MustParse("2025-03-01"), 1)

	if d, v := h.First(); d != MustParse("2025-03-01") || v != 1 {
		t.Errorf("First() = %v, %v", d, v)
	}
	if d, v := h.Latest(); d != MustParse("2025-03-03") || v != 3 {
		t.Errorf("Latest() = %v, %v", d, v)
	}
}
