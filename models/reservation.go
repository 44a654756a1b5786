package models

import "time"

// SlotReservation records that a slot has been taken. Reservations live in
// their own ledger so that regenerating a day's schedule merges them back in
// instead of overwriting booked state.
type SlotReservation struct {
	SlotID     string    `bson:"_id" json:"slotId"`
	ProviderID string    `bson:"providerId" json:"providerId"`
	Date       string    `bson:"date" json:"date"`
	Start      int       `bson:"start" json:"start"`
	End        int       `bson:"end" json:"end"`
	BookedBy   string    `bson:"bookedBy" json:"bookedBy"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}
