package models

// User is a farm owner profile.
type User struct {
	UID      string
	Name     string
	Exp      int64
	Point    int64
	Plots    int
	Stealing string
}
