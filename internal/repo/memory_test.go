package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Repository = (*PostgresUserRepository)(nil)
	_ Repository = (*MemoryRepository)(nil)
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	id, err := m.CreateUser(ctx, "ivanova", "ivanova@lab.example", "hash")
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	_, err = m.CreateUser(ctx, "ivanova", "other@lab.example", "hash")
	assert.Error(t, err)

	got, hash, err := m.GetBylogin(ctx, "ivanova")
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, "hash", hash)

	got, _, err = m.GetBylogin(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, got)

	p, err := m.UpdateProfile(ctx, id, ProfileUpdate{Login: "ivanova", CertificationLevel: "UT2", DefaultStandard: "BS-EN-10228-3"})
	require.NoError(t, err)
	assert.Equal(t, "UT2", p.CertificationLevel)

	require.NoError(t, m.UpdateAvatar(ctx, id, "/uploads/a.png"))
	p, err = m.GetProfileByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/a.png", p.AvatarURL)
	assert.Equal(t, "BS-EN-10228-3", p.DefaultStandard)

	_, err = m.GetProfileByID(ctx, 42)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(m.UpdateAvatar(ctx, 42, "x"), ErrNotFound))
}
