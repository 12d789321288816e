package date

// Range represents an inclusive range of dates.
type Range struct{ From, To Date }

// NewRange returns the range [from, to].
func NewRange(from, to Date) Range { return Range{From: from, To: to} }

// Around returns the range [d-before, d+after].
func Around(d Date, before, after int) Range {
	return Range{From: d.Add(-before), To: d.Add(after)}
}

// Contains return true if date is included in the range (boundaries included).
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns the number of calendar days spanned by the range.
func (r Range) Days() int { return r.To.Sub(r.From) }

func (r Range) String() string { return r.From.String() + ".." + r.To.String() }
