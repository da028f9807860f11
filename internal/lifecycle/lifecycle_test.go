package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"khidma/internal/models"
)

func TestActionsForTable(t *testing.T) {
	tests := []struct {
		status   string
		role     string
		expected []Action
	}{
		{models.StatusPending, models.RoleCustomer, []Action{ActionCancel}},
		{models.StatusPending, models.RoleProvider, []Action{ActionAccept, ActionReject}},
		{models.StatusAccepted, models.RoleCustomer, []Action{ActionCancel, ActionComplete}},
		{models.StatusAccepted, models.RoleProvider, nil},
		{models.StatusCompleted, models.RoleCustomer, []Action{ActionReview}},
		{models.StatusCompleted, models.RoleProvider, nil},
		{models.StatusRejected, models.RoleCustomer, nil},
		{models.StatusRejected, models.RoleProvider, nil},
		{models.StatusCancelled, models.RoleCustomer, nil},
		{models.StatusCancelled, models.RoleProvider, nil},
	}

	for _, tt := range tests {
		t.Run(tt.status+"/"+tt.role, func(t *testing.T) {
			assert.Equal(t, tt.expected, ActionsFor(tt.status, tt.role))
		})
	}
}

func TestActionsForUnknownStatus(t *testing.T) {
	assert.Nil(t, ActionsFor("confirmed", models.RoleCustomer))
	assert.Nil(t, ActionsFor("", models.RoleProvider))
	assert.Nil(t, ActionsFor("PENDING", models.RoleCustomer))
}

func TestActionsForUnknownRole(t *testing.T) {
	assert.Nil(t, ActionsFor(models.StatusPending, "admin"))
	assert.Nil(t, ActionsFor(models.StatusPending, ""))
}

func TestAllows(t *testing.T) {
	assert.True(t, Allows(models.StatusPending, models.RoleProvider, ActionAccept))
	assert.True(t, Allows(models.StatusAccepted, models.RoleCustomer, ActionComplete))
	assert.False(t, Allows(models.StatusPending, models.RoleCustomer, ActionAccept))
	assert.False(t, Allows(models.StatusCancelled, models.RoleCustomer, ActionCancel))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(models.StatusCompleted))
	assert.True(t, IsTerminal(models.StatusRejected))
	assert.True(t, IsTerminal(models.StatusCancelled))
	assert.False(t, IsTerminal(models.StatusPending))
	assert.False(t, IsTerminal(models.StatusAccepted))
	assert.False(t, IsTerminal("something_else"))
}
