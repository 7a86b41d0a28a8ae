// internal/services/royalty_test.go
package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapmusicgroup/sap-backend/internal/models"
	"github.com/sapmusicgroup/sap-backend/internal/realtime"
)

func TestEarningCreatePublishesToOwner(t *testing.T) {
	db := newTestDB(t)
	pub := &recordingPublisher{}
	svc := NewEarningService(db, pub)
	admin := seedUser(t, db, "Admin", models.RoleAdmin)
	owner := seedUser(t, db, "Owner", models.RoleUser)
	stranger := seedUser(t, db, "Stranger", models.RoleUser)
	song := seedSong(t, db, owner)
	ctx := context.Background()

	req := &CreateEarningRequest{
		SongID: song.ID, Amount: 12.5, Platform: models.PlatformYouTube, Source: models.RevenueSourceSync,
	}
	_, err := svc.Create(ctx, owner, req)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(ctx, admin, &CreateEarningRequest{SongID: uuid.New(), Amount: 1, Platform: models.PlatformOther, Source: models.RevenueSourceSync})
	assert.ErrorIs(t, err, ErrSongNotFound)

	earning, err := svc.Create(ctx, admin, req)
	require.NoError(t, err)
	assert.NotEmpty(t, earning.EarningDate)

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, owner.ID, events[0].owner)
	assert.Equal(t, realtime.EventInsert, events[0].event.Type)
	assert.Equal(t, realtime.TableEarnings, events[0].event.Table)

	rows, err := svc.List(owner)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = svc.List(stranger)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSyncDealFlow(t *testing.T) {
	db := newTestDB(t)
	svc := NewSyncDealService(db)
	admin := seedUser(t, db, "Admin", models.RoleAdmin)
	owner := seedUser(t, db, "Owner", models.RoleUser)
	stranger := seedUser(t, db, "Stranger", models.RoleUser)
	song := seedSong(t, db, owner)

	req := &CreateSyncDealRequest{SongID: song.ID, DealType: "TV", Licensee: " Netflix ", Fee: 2500, ExpiryDate: "2025-12-31"}
	_, err := svc.Create(owner, req)
	assert.ErrorIs(t, err, ErrForbidden)

	deal, err := svc.Create(admin, req)
	require.NoError(t, err)
	assert.Equal(t, models.DealStatusOffered, deal.Status)
	assert.Equal(t, "Netflix", deal.Licensee)

	deals, err := svc.List(stranger)
	require.NoError(t, err)
	assert.Empty(t, deals)

	_, err = svc.UpdateStatus(stranger, deal.ID, models.DealStatusAccepted)
	assert.ErrorIs(t, err, ErrDealNotFound)
	_, err = svc.UpdateStatus(owner, deal.ID, models.DealStatusExpired)
	assert.ErrorIs(t, err, ErrForbidden)

	accepted, err := svc.UpdateStatus(owner, deal.ID, models.DealStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.DealStatusAccepted, accepted.Status)

	_, err = svc.UpdateStatus(owner, deal.ID, models.DealStatusRejected)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	expired, err := svc.UpdateStatus(admin, deal.ID, models.DealStatusExpired)
	require.NoError(t, err)
	assert.Equal(t, models.DealStatusExpired, expired.Status)
}

func TestManagedWritersAreScoped(t *testing.T) {
	db := newTestDB(t)
	svc := NewManagedWriterService(db)
	admin := seedUser(t, db, "Admin", models.RoleAdmin)
	alice := seedUser(t, db, "Alice", models.RoleUser)
	bob := seedUser(t, db, "Bob", models.RoleUser)

	for _, name := range []string{"Zed", "Amy"} {
		_, err := svc.Create(alice, &CreateManagedWriterRequest{Name: name, Society: "ASCAP"})
		require.NoError(t, err)
	}
	_, err := svc.Create(bob, &CreateManagedWriterRequest{Name: "Bo"})
	require.NoError(t, err)

	mine, err := svc.List(alice)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Amy", mine[0].Name)

	all, err := svc.List(admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
