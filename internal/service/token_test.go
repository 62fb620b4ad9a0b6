package service_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartier55/coachbox-backend/internal/model"
	"github.com/cartier55/coachbox-backend/internal/service"
)

const (
	testAccessSecret  = "access-secret-for-tests"
	testRefreshSecret = "refresh-secret-for-tests"
)

// fakeTokenStore is an in-memory TokenStore. Delete is conditional the
// same way the MySQL implementation is: it reports whether a row was
// actually removed, which is what rotation races hinge on.
type fakeTokenStore struct {
	mu   sync.Mutex
	rows map[string]model.RefreshToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{rows: make(map[string]model.RefreshToken)}
}

func (f *fakeTokenStore) Store(_ context.Context, t model.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[t.Token] = t
	return nil
}

func (f *fakeTokenStore) Find(_ context.Context, token string) (model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[token]
	if !ok {
		return model.RefreshToken{}, sql.ErrNoRows
	}
	return row, nil
}

func (f *fakeTokenStore) Delete(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[token]; !ok {
		return false, nil
	}
	delete(f.rows, token)
	return true, nil
}

func (f *fakeTokenStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, row := range f.rows {
		if row.ExpiresAt.Before(now) {
			delete(f.rows, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeTokenStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeUserGetter struct {
	users map[string]model.User
}

func (f *fakeUserGetter) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := f.users[email]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func newTokenService(store *fakeTokenStore) *service.TokenService {
	users := &fakeUserGetter{users: map[string]model.User{
		"coach@example.com": {ID: 7, Email: "coach@example.com", Role: model.RoleCoach},
	}}
	return service.NewTokenService(store, users, testAccessSecret, testRefreshSecret, 15, 7)
}

func TestIssuePersistsRefreshRow(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTokenService(store)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, 7, "coach@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	row, err := store.Find(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), row.UserID)
	assert.Equal(t, "coach@example.com", row.UserEmail)
	assert.True(t, row.ExpiresAt.After(time.Now()))
}

func TestValidateAccess(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTokenService(store)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, 7, "coach@example.com")
	require.NoError(t, err)

	u, err := svc.ValidateAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), u.ID)

	// The refresh token is signed with the other secret and must not pass
	// as an access token.
	_, err = svc.ValidateAccess(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, service.ErrTokenInvalid)
}

func TestValidateAccessExpired(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTokenService(store)
	ctx := context.Background()

	pair, err := svc.IssueWithTTL(ctx, 7, "coach@example.com", -time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateAccess(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, service.ErrTokenExpired)
}

func TestValidateAccessUnknownUser(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTokenService(store)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, 99, "gone@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateAccess(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestRotateReplacesRow(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTokenService(store)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, 7, "coach@example.com")
	require.NoError(t, err)

	next, err := svc.Rotate(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	assert.Equal(t, uint64(7), next.UserID)

	// Old row gone, new row present.
	_, err = store.Find(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = store.Find(ctx, next.RefreshToken)
	assert.NoError(t, err)

	// A second rotation with the consumed token must fail.
	_, err = svc.Rotate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, service.ErrTokenNotFound)
}

func TestRotateExpiredRefresh(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTokenService(store)
	ctx := context.Background()

	pair, err := svc.IssueWithTTL(ctx, 7, "coach@example.com", time.Minute, -time.Minute)
	require.NoError(t, err)

	_, err = svc.Rotate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, service.ErrTokenExpired)
	// The row is left for the sweep; expiry is enforced by the signature.
	assert.Equal(t, 1, store.count())
}

func TestRotateUnknownToken(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTokenService(store)

	_, err := svc.Rotate(context.Background(), "never-issued")
	assert.ErrorIs(t, err, service.ErrTokenNotFound)
}

func TestRotateConcurrentSingleWinner(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTokenService(store)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, 7, "coach@example.com")
	require.NoError(t, err)

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Rotate(ctx, pair.RefreshToken)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, service.ErrTokenNotFound)
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent rotation should succeed")
	assert.Equal(t, 1, store.count(), "only the winner's replacement row should remain")
}

func TestRevokeIdempotent(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTokenService(store)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, 7, "coach@example.com")
	require.NoError(t, err)

	existed, err := svc.Revoke(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = svc.Revoke(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.False(t, existed)

	// Rotation after revocation must read as unknown.
	_, err = svc.Rotate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, service.ErrTokenNotFound)
}

func TestSweepExpired(t *testing.T) {
	store := newFakeTokenStore()
	svc := newTokenService(store)
	ctx := context.Background()

	_, err := svc.IssueWithTTL(ctx, 7, "coach@example.com", time.Minute, -time.Hour)
	require.NoError(t, err)
	_, err = svc.IssueWithTTL(ctx, 7, "coach@example.com", time.Minute, -time.Minute)
	require.NoError(t, err)
	live, err := svc.Issue(ctx, 7, "coach@example.com")
	require.NoError(t, err)

	n, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = store.Find(ctx, live.RefreshToken)
	assert.NoError(t, err, "unexpired rows must survive the sweep")
}
