package classify

// Bucket is one of the three destinations for a guests-in-house record.
type Bucket int

const (
	// BucketARR marks a record whose check-in equals the schedule date:
	// an arrival the arrivals report may not have listed yet.
	BucketARR Bucket = iota
	// BucketSkip marks a record whose check-out equals the schedule
	// date. The departures report is authoritative for departures, so
	// counting these again would double-book them.
	BucketSkip
	// BucketOD marks a record staying through the schedule date with
	// neither boundary matching.
	BucketOD
)

// ClassifyRecord applies the business rule for a single stay record
// against the schedule date. Check-in wins over check-out when a record
// somehow carries the schedule date on both ends.
func ClassifyRecord(rec StayRecord, date ScheduleDate) Bucket {
	switch {
	case rec.CheckIn == DateToken(date):
		return BucketARR
	case rec.CheckOut == DateToken(date):
		return BucketSkip
	default:
		return BucketOD
	}
}

// GIHSplit is the guests-in-house contribution to the final result.
type GIHSplit struct {
	ARR []RoomToken
	OD  []RoomToken
}

// ClassifyStayRecords buckets every record independently. A room with
// conflicting duplicate records can therefore land in both ARR and OD;
// that ambiguity is source data disagreeing with itself and is
// surfaced to the operator rather than silently resolved.
func ClassifyStayRecords(records []StayRecord, date ScheduleDate) GIHSplit {
	var split GIHSplit
	for _, rec := range records {
		switch ClassifyRecord(rec, date) {
		case BucketARR:
			split.ARR = append(split.ARR, rec.Room)
		case BucketOD:
			split.OD = append(split.OD, rec.Room)
		}
	}
	split.ARR = sortRooms(split.ARR)
	split.OD = sortRooms(split.OD)
	return split
}

// Merge combines the three per-document extractions into the final
// partition: ARR is the union of the arrivals report and the
// guests-in-house arrivals, DEP comes from the departures report alone,
// OD from guests-in-house alone. All lists come out sorted ascending by
// normalized room number.
func Merge(date ScheduleDate, arrRooms, depRooms []RoomToken, gih GIHSplit) *Result {
	return &Result{
		ScheduleDate: date,
		ARR:          sortRooms(append(append([]RoomToken{}, arrRooms...), gih.ARR...)),
		DEP:          sortRooms(depRooms),
		OD:           sortRooms(gih.OD),
	}
}
