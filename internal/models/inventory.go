package models

// InventoryEntry is a positive item count owned by a user.
type InventoryEntry struct {
	UID    string
	Item   string
	Count  int64
	Locked bool
}
