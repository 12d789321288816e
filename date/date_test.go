package date

import "testing"

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestSub(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2025-01-31", "2025-01-01", 30},
		{"2025-03-01", "2025-02-28", 1},   // non leap year
		{"2024-03-01", "2024-02-28", 2},   // leap year
		{"2025-01-01", "2025-01-31", -30}, // negative when a before b
		{"2025-06-15", "2025-06-15", 0},
	}
	for _, tc := range tests {
		if got := MustParse(tc.a).Sub(MustParse(tc.b)); got != tc.want {
			t.Errorf("%s.Sub(%s) = %d want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestParse(t *testing.T) {
	// the read format is permissive about leading zeros.
	d, err := Parse("2025-7-1")
	if err != nil {
		t.Fatalf("Parse(2025-7-1) error: %v", err)
	}
	if d != New(2025, 7, 1) {
		t.Errorf("Parse(2025-7-1) = %v want %v", d, New(2025, 7, 1))
	}
	if _, err := Parse("not-a-date"); err == nil {
		t.Errorf("Parse(not-a-date) expected an error")
	}
}

func TestRangeContains(t *testing.T) {
	r := Around(MustParse("2025-06-10"), 5, 5)
	tests := []struct {
		day  string
		want bool
	}{
		{"2025-06-05", true}, // from boundary included
		{"2025-06-15", true}, // to boundary included
		{"2025-06-04", false},
		{"2025-06-16", false},
		{"2025-06-10", true},
	}
	for _, tc := range tests {
		if got := r.Contains(MustParse(tc.day)); got != tc.want {
			t.Errorf("%v.Contains(%s) = %v want %v", r, tc.day, got, tc.want)
		}
	}
	if got := r.Days(); got != 10 {
		t.Errorf("%v.Days() = %d want 10", r, got)
	}
}

func TestIterate(t *testing.T) {
	a := new(History[float64])
	a.Append(MustParse("2025-01-02"), 1)
	a.Append(MustParse("2025-01-06"), 2)
	b := new(History[float64])
	b.Append(MustParse("2025-01-02"), 10)
	b.Append(MustParse("2025-01-03"), 11)

	var got []Date
	for d := range Iterate(a, b) {
		got = append(got, d)
	}
	want := []Date{MustParse("2025-01-02"), MustParse("2025-01-03"), MustParse("2025-01-06")}
	if len(got) != len(want) {
		t.Fatalf("Iterate yielded %d dates want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Iterate[%d] = %v want %v", i, got[i], want[i])
		}
	}
}
