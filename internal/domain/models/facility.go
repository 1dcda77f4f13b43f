package models

// Pen is a physical housing unit for a group of animals.
type Pen struct {
	ID        string `bson:"_id" json:"id"`
	Name      string `bson:"name" json:"name"`
	BarnID    string `bson:"barn_id,omitempty" json:"barn_id,omitempty"`
	Capacity  int    `bson:"capacity" json:"capacity"`
	Occupancy int    `bson:"occupancy" json:"occupancy"`
}

// OverCapacity flags a pen holding more animals than it was built for. It is
// a warning, never a reason to reject a write.
func (p Pen) OverCapacity() bool {
	return p.Occupancy > p.Capacity
}

// PenStatus is a pen plus its occupancy warning, for listings.
type PenStatus struct {
	Pen
	Warning string `json:"warning,omitempty"`
}
