package domain

import "time"

type RequestType string

const (
	RequestBlood RequestType = "blood"
	RequestOrgan RequestType = "organ"
)

type UrgencyLevel string

const (
	UrgencyLow       UrgencyLevel = "low"
	UrgencyNormal    UrgencyLevel = "normal"
	UrgencyUrgent    UrgencyLevel = "urgent"
	UrgencyEmergency UrgencyLevel = "emergency"
)

// Rank orders urgency levels from low (1) to emergency (4). Unknown levels
// rank 0 and sort last.
func (u UrgencyLevel) Rank() int {
	switch u {
	case UrgencyLow:
		return 1
	case UrgencyNormal:
		return 2
	case UrgencyUrgent:
		return 3
	case UrgencyEmergency:
		return 4
	default:
		return 0
	}
}

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestMatched   RequestStatus = "matched"
	RequestCompleted RequestStatus = "completed"
	RequestRejected  RequestStatus = "rejected"
)

// RequestStatuses lists every request status in lifecycle order.
var RequestStatuses = []RequestStatus{RequestPending, RequestMatched, RequestCompleted, RequestRejected}

// Terminal reports whether no further transition is accepted from s.
func (s RequestStatus) Terminal() bool {
	return s == RequestCompleted || s == RequestRejected
}

type Request struct {
	ID               string            `json:"id"`
	PatientFirstName string            `json:"patientFirstName"`
	PatientLastName  string            `json:"patientLastName"`
	ContactEmail     string            `json:"contactEmail"`
	RequestType      RequestType       `json:"requestType"`
	PatientBloodType BloodType         `json:"patientBloodType,omitempty"`
	OrganNeeded      OrganType         `json:"organNeeded,omitempty"`
	UrgencyLevel     UrgencyLevel      `json:"urgencyLevel"`
	Status           RequestStatus     `json:"status"`
	MatchedDonorID   string            `json:"matchedDonorId,omitempty"`
	RequestDate      time.Time         `json:"requestDate"`
	Details          map[string]string `json:"details,omitempty"`
	Version          int64             `json:"version"`
}

// Need is what a request asks for. It is one of BloodNeed, OrganNeed or
// OtherNeed.
type Need interface {
	need()
}

type BloodNeed struct {
	Blood BloodType
}

type OrganNeed struct {
	Organ OrganType
}

// OtherNeed carries a request type the matching rules do not know about.
type OtherNeed struct {
	Type RequestType
}

func (BloodNeed) need() {}
func (OrganNeed) need() {}
func (OtherNeed) need() {}

func (r Request) Need() Need {
	switch r.RequestType {
	case RequestBlood:
		return BloodNeed{Blood: r.PatientBloodType}
	case RequestOrgan:
		return OrganNeed{Organ: r.OrganNeeded}
	default:
		return OtherNeed{Type: r.RequestType}
	}
}

// Active reports whether the request currently holds a donor.
func (r Request) Active() bool {
	return r.Status == RequestMatched
}
