package models

// TheftRecord is the cumulative take of one thief from one plot during the
// current planting.
type TheftRecord struct {
	VictimUID string
	Slot      int
	ThiefUID  string
	Count     int64
	StolenAt  int64
}
