package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUrgencyLevel_Rank(t *testing.T) {
	assert.Less(t, UrgencyLow.Rank(), UrgencyNormal.Rank())
	assert.Less(t, UrgencyNormal.Rank(), UrgencyUrgent.Rank())
	assert.Less(t, UrgencyUrgent.Rank(), UrgencyEmergency.Rank())
	assert.Equal(t, 0, UrgencyLevel("whenever").Rank())
}

func TestRequest_Need(t *testing.T) {
	assert.Equal(t, BloodNeed{Blood: BloodBPos}, Request{RequestType: RequestBlood, PatientBloodType: BloodBPos, OrganNeeded: OrganLiver}.Need())
	assert.Equal(t, OrganNeed{Organ: OrganLiver}, Request{RequestType: RequestOrgan, PatientBloodType: BloodBPos, OrganNeeded: OrganLiver}.Need())
	assert.Equal(t, OtherNeed{Type: "plasma"}, Request{RequestType: "plasma"}.Need())
}

func TestRequestStatus_Terminal(t *testing.T) {
	assert.False(t, RequestPending.Terminal())
	assert.False(t, RequestMatched.Terminal())
	assert.True(t, RequestCompleted.Terminal())
	assert.True(t, RequestRejected.Terminal())
}

func TestErrDonorUnavailable_IsIncompatible(t *testing.T) {
	assert.True(t, errors.Is(ErrDonorUnavailable, ErrIncompatibleDonor))

	err := &TransitionError{Entity: EntityRequest, ID: "r1", From: "pending", To: "matched", Err: ErrDonorUnavailable}
	assert.ErrorIs(t, err, ErrIncompatibleDonor)
	assert.ErrorIs(t, err, ErrDonorUnavailable)
	assert.Contains(t, err.Error(), "request r1: pending -> matched")
}
