package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/HostelDesk/internal/apperrors"
	"github.com/dharsanguruparan/HostelDesk/internal/auth"
	"github.com/dharsanguruparan/HostelDesk/internal/student"
)

func TestStudentStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewStudentStore()

	bala := &student.Record{Name: "bala", RollNo: "21CS002"}
	asha := &student.Record{Name: "Asha", RollNo: "21CS001"}
	require.NoError(t, store.Create(ctx, bala))
	require.NoError(t, store.Create(ctx, asha))
	assert.NotEmpty(t, asha.ID)

	err := store.Create(ctx, &student.Record{Name: "Dup", RollNo: "21CS001"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Asha", list[0].Name)

	updated := *asha
	updated.Name = "Asha K"
	updated.BloodGroup = "O+"
	require.NoError(t, store.Update(ctx, &updated))
	got, err := store.Get(ctx, asha.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha K", got.Name)
	assert.Equal(t, asha.CreatedAt, got.CreatedAt)

	updated.RollNo = "21CS002"
	assert.ErrorIs(t, store.Update(ctx, &updated), apperrors.ErrConflict)

	require.NoError(t, store.Delete(ctx, asha.ID))
	_, err = store.Get(ctx, asha.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, asha.ID), apperrors.ErrNotFound)
	assert.ErrorIs(t, store.Update(ctx, &updated), apperrors.ErrNotFound)

	require.NoError(t, store.Create(ctx, &student.Record{Name: "Reuse", RollNo: "21CS001"}), "roll number is free again")
}

func TestStudentStoreFindByRollNo(t *testing.T) {
	ctx := context.Background()
	store := NewStudentStore()
	asha := &student.Record{Name: "Asha", RollNo: "21CS001"}
	require.NoError(t, store.Create(ctx, asha))

	got, err := store.FindByRollNo(ctx, "21CS001")
	require.NoError(t, err)
	assert.Equal(t, asha.ID, got.ID)

	asha.RollNo = "21CS009"
	require.NoError(t, store.Update(ctx, asha))
	_, err = store.FindByRollNo(ctx, "21CS001")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	got, err = store.FindByRollNo(ctx, "21CS009")
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Name)
}

func TestStaffStore(t *testing.T) {
	ctx := context.Background()
	store := NewStaffStore()
	require.NoError(t, store.Create(ctx, &auth.Staff{Email: "Warden@Hostel.edu", PasswordHash: "h"}))
	assert.ErrorIs(t, store.Create(ctx, &auth.Staff{Email: "warden@hostel.edu"}), apperrors.ErrConflict)

	s, err := store.FindByEmail(ctx, "WARDEN@hostel.edu")
	require.NoError(t, err)
	assert.Equal(t, "h", s.PasswordHash)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].PasswordHash)

	_, err = store.FindByEmail(ctx, "nobody@hostel.edu")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
