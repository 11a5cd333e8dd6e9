package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepository struct {
	mu    sync.Mutex
	carts map[string]*memoryPersistence
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{carts: make(map[string]*memoryPersistence)}
}

func (r *memoryRepository) Open(owner Owner) Persistence {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.carts[owner.Key()]
	if !ok {
		p = &memoryPersistence{}
		r.carts[owner.Key()] = p
	}
	return p
}

func newTestService(t *testing.T, opts ...ServiceOption) (*Service, *memoryRepository) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	repo := newMemoryRepository()
	return NewService(repo, logger, opts...), repo
}

func TestOwner_Key(t *testing.T) {
	assert.Equal(t, "user:42", UserOwner(42).Key())

	guest := GuestOwner("3f1c-session")
	assert.Regexp(t, `^session:[0-9a-f]{64}$`, guest.Key())
	assert.NotContains(t, guest.Key(), "3f1c-session")
	assert.Equal(t, guest.Key(), GuestOwner("3f1c-session").Key())

	assert.ErrorIs(t, Owner{}.Validate(), ErrNoOwner)
}

func TestService_ScenarioThroughService(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	owner := GuestOwner("guest-1")

	_, err := svc.Add(ctx, owner, productA, 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, owner, productB, 1)
	require.NoError(t, err)
	view, err := svc.SetSelected(ctx, owner, productB.ID, false)
	require.NoError(t, err)

	assert.Equal(t, "79.80", view.Summary.GoodsAmount.StringFixed(2))
	assert.Equal(t, 3, view.Badge.Count)

	view, err = svc.ClearSelected(ctx, owner)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, productB.ID, view.Items[0].Product.ID)

	// a fresh load sees the persisted state
	view, err = svc.Get(ctx, owner)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 1, view.Badge.Count)
}

func TestService_BadgeHook(t *testing.T) {
	ctx := context.Background()
	var got []Badge
	svc, _ := newTestService(t, WithBadgeHook(func(owner Owner, b Badge) {
		assert.Equal(t, "user:9", owner.Key())
		got = append(got, b)
	}))
	owner := UserOwner(9)

	_, err := svc.Add(ctx, owner, productA, 120)
	require.NoError(t, err)
	_, err = svc.SetQuantity(ctx, owner, productA.ID, 3)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "99+", got[0].Text)
	assert.Equal(t, "3", got[1].Text)

	badge, err := svc.Badge(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 3, badge.Count)
}

func TestService_PersistenceFailureKeepsInMemoryCart(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()
	repo := newMemoryRepository()
	svc := NewService(repo, logger)
	owner := GuestOwner("flaky")

	persistence := repo.Open(owner).(*memoryPersistence)
	persistence.saveErr = errors.New("redis down")

	view, err := svc.Add(ctx, owner, productA, 2)
	require.ErrorIs(t, err, ErrPersistence)
	require.NotNil(t, view)
	assert.Equal(t, 2, view.Badge.Count)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	// still failing: the in-memory cart stays authoritative
	view, err = svc.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Badge.Count)

	// storage recovers: the next call writes the kept state
	persistence.saveErr = nil
	_, err = svc.Get(ctx, owner)
	require.NoError(t, err)
	require.Len(t, persistence.items, 1)
	assert.Equal(t, 2, persistence.items[0].Quantity)
}

func TestService_Merge(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	user := UserOwner(1)
	guest := GuestOwner("before-login")

	_, err := svc.Add(ctx, user, productA, 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, guest, productA, 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, guest, productB, 1)
	require.NoError(t, err)
	_, err = svc.SetSelected(ctx, guest, productB.ID, false)
	require.NoError(t, err)

	view, err := svc.Merge(ctx, user, guest)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.False(t, view.Items[1].Selected)

	assert.Empty(t, repo.carts[guest.Key()].items)

	// merging again is a no-op
	view, err = svc.Merge(ctx, user, guest)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Badge.Count)
}

func TestService_MergeSaveFailureKeepsGuestCart(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	user := UserOwner(1)
	guest := GuestOwner("before-login")

	_, err := svc.Add(ctx, user, productA, 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, guest, productA, 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, guest, productB, 1)
	require.NoError(t, err)

	userPersistence := repo.carts[user.Key()]
	userPersistence.saveErr = errors.New("db down")

	view, err := svc.Merge(ctx, user, guest)
	require.ErrorIs(t, err, ErrPersistence)
	assert.Nil(t, view)

	// durable state is untouched on both sides
	assert.Len(t, repo.carts[guest.Key()].items, 2)
	require.Len(t, userPersistence.items, 1)
	assert.Equal(t, 1, userPersistence.items[0].Quantity)

	// a fresh process sees the same carts
	restarted := NewService(repo, svc.logger)
	guestView, err := restarted.Get(ctx, guest)
	require.NoError(t, err)
	assert.Equal(t, 3, guestView.Badge.Count)

	// retrying after storage recovers merges exactly once
	userPersistence.saveErr = nil
	view, err = svc.Merge(ctx, user, guest)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, 4, view.Badge.Count)
	assert.Empty(t, repo.carts[guest.Key()].items)
}

func TestService_RemoveOrderedKeepsConcurrentChanges(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	owner := UserOwner(3)

	_, err := svc.Add(ctx, owner, productA, 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, owner, productB, 1)
	require.NoError(t, err)
	_, err = svc.SetSelected(ctx, owner, productB.ID, false)
	require.NoError(t, err)

	ordered := []OrderedLine{{ProductID: productA.ID, Quantity: 2}}

	// another request edits the cart while the order is in flight
	_, err = svc.SetQuantity(ctx, owner, productA.ID, 5)
	require.NoError(t, err)
	_, err = svc.SetSelected(ctx, owner, productB.ID, true)
	require.NoError(t, err)

	view, err := svc.RemoveOrdered(ctx, owner, ordered)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, productB.ID, view.Items[1].Product.ID)
	assert.Len(t, repo.carts[owner.Key()].items, 2)
}

func TestService_RequiresOwner(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), Owner{})
	assert.ErrorIs(t, err, ErrNoOwner)
}

func TestService_ConcurrentAddsAccumulate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	owner := UserOwner(5)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Add(ctx, owner, productA, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	view, err := svc.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 50, view.Badge.Count)
}
