package contacts

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/avolkov/orderflow-backend/pkg/db/models"
	pkgerrors "github.com/avolkov/orderflow-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Contact{}))

	svc, err := NewService(ServiceParams{Repo: NewRepository(conn)})
	require.NoError(t, err)
	return svc, conn
}

func TestCreateAndListScopedToUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	created, err := svc.Create(ctx, alice, CreateContactRequest{
		City:   "Moscow",
		Street: "Arbat",
		House:  "10",
		Phone:  "+7 900 000-00-01",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	_, err = svc.Create(ctx, bob, CreateContactRequest{
		City:   "Kazan",
		Street: "Bauman",
		Phone:  "+7 900 000-00-02",
	})
	require.NoError(t, err)

	aliceContacts, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, aliceContacts, 1)
	assert.Equal(t, "Arbat", aliceContacts[0].Street)

	bobContacts, err := svc.List(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobContacts, 1)
	assert.Equal(t, "Bauman", bobContacts[0].Street)
}

func TestCreateRequiresMandatoryFields(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), uuid.New(), CreateContactRequest{City: "Moscow"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestUpdateChangesOnlyProvidedFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.Create(ctx, userID, CreateContactRequest{
		City:   "Moscow",
		Street: "Arbat",
		Phone:  "+7 900 000-00-01",
	})
	require.NoError(t, err)

	newStreet := "Tverskaya"
	updated, err := svc.Update(ctx, userID, UpdateContactRequest{
		ID:     created.ID,
		Street: &newStreet,
	})
	require.NoError(t, err)
	assert.Equal(t, "Tverskaya", updated.Street)
	assert.Equal(t, "Moscow", updated.City)
	assert.Equal(t, "+7 900 000-00-01", updated.Phone)
}

func TestUpdateForeignContactNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, CreateContactRequest{
		City:   "Moscow",
		Street: "Arbat",
		Phone:  "+7 900 000-00-01",
	})
	require.NoError(t, err)

	city := "Hacked"
	_, err = svc.Update(ctx, uuid.New(), UpdateContactRequest{ID: created.ID, City: &city})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestDeleteBatchCountsOnlyOwnedRows(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	first, err := svc.Create(ctx, owner, CreateContactRequest{City: "A", Street: "S1", Phone: "1"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, owner, CreateContactRequest{City: "B", Street: "S2", Phone: "2"})
	require.NoError(t, err)
	foreign, err := svc.Create(ctx, stranger, CreateContactRequest{City: "C", Street: "S3", Phone: "3"})
	require.NoError(t, err)

	resp, err := svc.Delete(ctx, owner, DeleteContactsRequest{
		Items: []uuid.UUID{first.ID, second.ID, foreign.ID},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, resp.Deleted)

	remaining, err := svc.List(ctx, stranger)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
