package store

import (
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// Timestamps are stored as two INTEGER columns: Unix seconds in the named
// column and the nanosecond remainder in "<name>_ns". Both compare
// numerically, so ordering holds for any year.

func nsColumn(col string) string {
	return col + "_ns"
}

func unixParts(t time.Time) (sec, nsec int64) {
	return t.Unix(), int64(t.Nanosecond())
}

func fromUnix(sec, nsec int64) time.Time {
	return time.Unix(sec, nsec).UTC()
}

// atOrBefore matches rows whose timestamp in col is <= t.
func atOrBefore(col string, t time.Time) *entsql.Predicate {
	sec, nsec := unixParts(t)
	return entsql.Or(
		entsql.LT(col, sec),
		entsql.And(entsql.EQ(col, sec), entsql.LTE(nsColumn(col), nsec)),
	)
}

// atOrAfter matches rows whose timestamp in col is >= t.
func atOrAfter(col string, t time.Time) *entsql.Predicate {
	sec, nsec := unixParts(t)
	return entsql.Or(
		entsql.GT(col, sec),
		entsql.And(entsql.EQ(col, sec), entsql.GTE(nsColumn(col), nsec)),
	)
}
