package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedNext(t *testing.T) {
	assert.Equal(t, []EnrollmentStatus{EnrollmentStatusFollowUp}, AllowedNext(EnrollmentStatusLead))
	assert.Equal(t, []EnrollmentStatus{EnrollmentStatusPayment}, AllowedNext(EnrollmentStatusFollowUp))
	assert.ElementsMatch(t, []EnrollmentStatus{EnrollmentStatusAdmitted, EnrollmentStatusRejected}, AllowedNext(EnrollmentStatusPayment))
	assert.Empty(t, AllowedNext(EnrollmentStatusAdmitted))
	assert.Empty(t, AllowedNext(EnrollmentStatusRejected))
	assert.Empty(t, AllowedNext("ARCHIVED"))
}

func TestAllowedNextReturnsCopy(t *testing.T) {
	next := AllowedNext(EnrollmentStatusPayment)
	next[0] = EnrollmentStatusLead
	assert.True(t, CanTransition(EnrollmentStatusPayment, EnrollmentStatusAdmitted))
}

func TestCanTransitionNeverGoesBack(t *testing.T) {
	order := []EnrollmentStatus{EnrollmentStatusLead, EnrollmentStatusFollowUp, EnrollmentStatusPayment, EnrollmentStatusAdmitted}
	for i, from := range order {
		for j, to := range order {
			if j <= i {
				assert.False(t, CanTransition(from, to), "%s -> %s", from, to)
			}
		}
	}
	assert.False(t, CanTransition(EnrollmentStatusLead, EnrollmentStatusAdmitted))
	assert.False(t, CanTransition(EnrollmentStatusRejected, EnrollmentStatusAdmitted))
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, EnrollmentStatusAdmitted.Terminal())
	assert.True(t, EnrollmentStatusRejected.Terminal())
	assert.False(t, EnrollmentStatusPayment.Terminal())
	assert.False(t, EnrollmentStatus("UNKNOWN").Valid())
	assert.False(t, EnrollmentStatus("UNKNOWN").Terminal())
}

func TestFollowUpTypeValid(t *testing.T) {
	assert.True(t, FollowUpVisit.Valid())
	assert.False(t, FollowUpType("call").Valid())
}
