package checkin

import "checkin/src-server/model"

// AttendeeView is what the entry point sees after typing a code.
type AttendeeView struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Code        string `json:"code"`
	Status      string `json:"status"`
	StatusLabel string `json:"statusLabel"`
}

// AttendeeRecord is the admin-facing row, addressed by id.
type AttendeeRecord struct {
	ID int64 `json:"id"`
	AttendeeView
}

// Transition is the outcome of a guarded check-in. Changed is false when the
// attendee had already passed and nothing was written.
type Transition struct {
	Attendee AttendeeView `json:"attendee"`
	Changed  bool         `json:"changed"`
}

func (v AttendeeView) FullName() string {
	return v.FirstName + " " + v.LastName
}

func (v AttendeeView) Passed() bool {
	return v.Status == statusKey(model.StatusPassed)
}

func newAttendeeView(a *model.Attendee) AttendeeView {
	return AttendeeView{
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Code:        a.Code,
		Status:      statusKey(a.StatusID),
		StatusLabel: a.StatusLabel(),
	}
}

func newAttendeeRecord(a *model.Attendee) AttendeeRecord {
	return AttendeeRecord{
		ID:           a.ID,
		AttendeeView: newAttendeeView(a),
	}
}

func statusKey(id model.StatusID) string {
	for _, s := range model.Statuses() {
		if s.ID == id {
			return s.Key
		}
	}
	return ""
}
