package services_test

import (
	"context"
	"testing"

	"golang-civic-backend/internal/errs"
	"golang-civic-backend/internal/models"
	"golang-civic-backend/internal/policy"
	"golang-civic-backend/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAreaAdminOnly(t *testing.T) {
	areas := newMockAreaRepo()
	svc := services.NewAreaService(areas)
	ctx := context.Background()

	req := &services.AreaRequest{Name: "Gandhi Bazaar", District: "Bengaluru Urban", State: "Karnataka"}

	for _, role := range []string{models.RoleConsumer, models.RoleVendor, models.RoleAuthority} {
		_, err := svc.CreateArea(ctx, policy.Caller{UserID: uuid.New(), Role: role}, req)
		assert.True(t, errs.IsAuthorization(err), "role %s must not create areas", role)
	}

	area, err := svc.CreateArea(ctx, policy.Caller{UserID: uuid.New(), Role: models.RoleAdmin}, req)
	require.NoError(t, err)
	assert.Equal(t, "Gandhi Bazaar", area.Name)
}

func TestUpdateArea(t *testing.T) {
	areas := newMockAreaRepo()
	svc := services.NewAreaService(areas)
	ctx := context.Background()
	admin := policy.Caller{UserID: uuid.New(), Role: models.RoleAdmin}

	area, err := svc.CreateArea(ctx, admin, &services.AreaRequest{Name: "Gandhi Bazaar", District: "Bengaluru Urban", State: "Karnataka"})
	require.NoError(t, err)

	updated, err := svc.UpdateArea(ctx, admin, area.ID, &services.AreaRequest{Name: "Gandhi Bazaar Main", District: "Bengaluru Urban", State: "Karnataka", PostalCode: "560004"})
	require.NoError(t, err)
	assert.Equal(t, "Gandhi Bazaar Main", updated.Name)
	assert.Equal(t, "560004", updated.PostalCode)

	_, err = svc.UpdateArea(ctx, admin, area.ID, &services.AreaRequest{Name: "", District: "x", State: "y"})
	assert.True(t, errs.IsValidation(err))

	_, err = svc.UpdateArea(ctx, admin, uuid.New(), &services.AreaRequest{Name: "New", District: "x", State: "y"})
	assert.True(t, errs.IsNotFound(err))
}
