package models

// BedStatus tracks hostel bed occupancy.
type BedStatus string

const (
	BedStatusOccupied BedStatus = "Occupied"
	BedStatusVacant   BedStatus = "Vacant"
	BedStatusReserved BedStatus = "Reserved"
)

// HostelAllocation assigns a hostel bed, possibly to nobody when vacant.
type HostelAllocation struct {
	ID          string    `db:"id" json:"id"`
	SchoolID    string    `db:"school_id" json:"schoolId"`
	StudentID   string    `db:"student_id" json:"studentId"`
	StudentName string    `db:"student_name" json:"studentName"`
	Hostel      string    `db:"hostel" json:"hostel"`
	Room        string    `db:"room" json:"room"`
	Bed         string    `db:"bed" json:"bed"`
	Status      BedStatus `db:"status" json:"status"`
	Fee         int64     `db:"fee" json:"fee"`
	AllocatedOn Date      `db:"allocated_on" json:"allocatedOn"`
}

type HostelFilter struct {
	Search string
	Hostel string
	Status string
}
