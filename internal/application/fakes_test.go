package application

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/linkfolio/linkfolio/internal/domain/domainerr"
	"github.com/linkfolio/linkfolio/internal/domain/entity"
	"github.com/linkfolio/linkfolio/internal/notify"
)

// In-memory repository fakes. They enforce the same uniqueness rules the
// Postgres schema does, so the allocator's collision handling is
// exercised for real.

func timeInFuture() time.Time {
	return time.Now().Add(24 * time.Hour)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type idGen struct {
	mu sync.Mutex
	n  int
}

func (g *idGen) next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", prefix, g.n)
}

var ids idGen

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*entity.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[string]*entity.Account{}}
}

func (r *fakeAccountRepo) Create(_ context.Context, a *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == a.Email {
			return domainerr.ErrEmailInUse
		}
	}
	for _, existing := range r.accounts {
		if existing.Username == a.Username {
			return domainerr.ErrDuplicateIdentifier
		}
	}
	a.ID = ids.next("acct")
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domainerr.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAccountRepo) GetByUsername(_ context.Context, username string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domainerr.ErrNotFound
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domainerr.ErrNotFound
}

func (r *fakeAccountRepo) Update(_ context.Context, a *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[a.ID]; !ok {
		return domainerr.ErrNotFound
	}
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *fakeAccountRepo) List(_ context.Context, limit, offset int) ([]*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*entity.Account
	for _, a := range r.accounts {
		cp := *a
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeAccountRepo) SetBannedUntil(_ context.Context, id string, until *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domainerr.ErrNotFound
	}
	a.BannedUntil = until
	return nil
}

func (r *fakeAccountRepo) SetEmailConfirmed(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domainerr.ErrNotFound
	}
	a.EmailConfirmedAt = &at
	return nil
}

func (r *fakeAccountRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[id]; !ok {
		return domainerr.ErrNotFound
	}
	delete(r.accounts, id)
	return nil
}

type fakeIdentityRepo struct {
	mu         sync.Mutex
	identities map[string][]*entity.ExternalIdentity
	failDelete bool
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{identities: map[string][]*entity.ExternalIdentity{}}
}

func (r *fakeIdentityRepo) Create(_ context.Context, e *entity.ExternalIdentity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = ids.next("ext")
	r.identities[e.AccountID] = append(r.identities[e.AccountID], e)
	return nil
}

func (r *fakeIdentityRepo) ListByAccount(_ context.Context, accountID string) ([]*entity.ExternalIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.identities[accountID], nil
}

func (r *fakeIdentityRepo) DeleteByAccount(_ context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDelete {
		return fmt.Errorf("provider unavailable")
	}
	delete(r.identities, accountID)
	return nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*entity.Profile
	seq      int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[string]*entity.Profile{}}
}

func (r *fakeProfileRepo) Create(_ context.Context, p *entity.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.profiles {
		if existing.AccountID == p.AccountID {
			if p.IsDefault && existing.IsDefault {
				return domainerr.ErrDefaultProfileExists
			}
			if existing.Slug == p.Slug {
				return domainerr.ErrDuplicateIdentifier
			}
		}
	}
	p.ID = ids.next("prof")
	r.seq++
	p.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.profiles[p.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id string) (*entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, domainerr.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) GetBySlug(_ context.Context, accountID, slug string) (*entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.AccountID == accountID && p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domainerr.ErrNotFound
}

func (r *fakeProfileRepo) GetDefault(_ context.Context, accountID string) (*entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.AccountID == accountID && p.IsDefault {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domainerr.ErrNoDefaultProfile
}

func (r *fakeProfileRepo) ListByAccount(_ context.Context, accountID string) ([]*entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Profile
	for _, p := range r.profiles {
		if p.AccountID == accountID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeProfileRepo) CountByAccount(_ context.Context, accountID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.profiles {
		if p.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

func (r *fakeProfileRepo) SetDefault(_ context.Context, accountID, profileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.profiles[profileID]
	if !ok || target.AccountID != accountID {
		return domainerr.ErrNotFound
	}
	for _, p := range r.profiles {
		if p.AccountID == accountID {
			p.IsDefault = false
		}
	}
	target.IsDefault = true
	return nil
}

func (r *fakeProfileRepo) Update(_ context.Context, p *entity.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.profiles[p.ID]
	if !ok {
		return domainerr.ErrNotFound
	}
	for _, other := range r.profiles {
		if other.ID != p.ID && other.AccountID == p.AccountID && other.Slug == p.Slug {
			return domainerr.ErrDuplicateIdentifier
		}
	}
	p.CreatedAt = existing.CreatedAt
	cp := *p
	r.profiles[p.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[id]; !ok {
		return domainerr.ErrNotFound
	}
	delete(r.profiles, id)
	return nil
}

func (r *fakeProfileRepo) DeleteByAccount(_ context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.profiles {
		if p.AccountID == accountID {
			delete(r.profiles, id)
		}
	}
	return nil
}

type fakeLinkRepo struct {
	mu    sync.Mutex
	links map[string]*entity.SocialLink
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: map[string]*entity.SocialLink{}}
}

func (r *fakeLinkRepo) Create(_ context.Context, l *entity.SocialLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.OrderIndex == -1 {
		max := -1
		for _, existing := range r.links {
			if existing.ProfileID == l.ProfileID && existing.OrderIndex > max {
				max = existing.OrderIndex
			}
		}
		l.OrderIndex = max + 1
	}
	l.ID = ids.next("link")
	l.CreatedAt = time.Now()
	cp := *l
	r.links[l.ID] = &cp
	return nil
}

func (r *fakeLinkRepo) GetByID(_ context.Context, id string) (*entity.SocialLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[id]
	if !ok {
		return nil, domainerr.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLinkRepo) ListByProfile(_ context.Context, profileID string) ([]*entity.SocialLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.SocialLink
	for _, l := range r.links {
		if l.ProfileID == profileID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeLinkRepo) Update(_ context.Context, l *entity.SocialLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.links[l.ID]; !ok {
		return domainerr.ErrNotFound
	}
	cp := *l
	r.links[l.ID] = &cp
	return nil
}

func (r *fakeLinkRepo) Reorder(_ context.Context, profileID string, orderedIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, id := range orderedIDs {
		l, ok := r.links[id]
		if !ok || l.ProfileID != profileID {
			return domainerr.ErrNotFound
		}
		l.OrderIndex = i
	}
	return nil
}

func (r *fakeLinkRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.links[id]; !ok {
		return domainerr.ErrNotFound
	}
	delete(r.links, id)
	return nil
}

func (r *fakeLinkRepo) DeleteByProfile(_ context.Context, profileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, l := range r.links {
		if l.ProfileID == profileID {
			delete(r.links, id)
		}
	}
	return nil
}

func (r *fakeLinkRepo) DeleteByAccount(ctx context.Context, accountID string) error {
	// The fake keys links by profile, not account; tests delete per profile.
	return nil
}

type fakeFriendshipRepo struct {
	mu          sync.Mutex
	friendships map[string]*entity.Friendship
}

func newFakeFriendshipRepo() *fakeFriendshipRepo {
	return &fakeFriendshipRepo{friendships: map[string]*entity.Friendship{}}
}

func (r *fakeFriendshipRepo) Create(_ context.Context, f *entity.Friendship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, b := entity.CanonicalPair(f.RequesterID, f.AddresseeID)
	for _, existing := range r.friendships {
		ea, eb := entity.CanonicalPair(existing.RequesterID, existing.AddresseeID)
		if ea == a && eb == b {
			return domainerr.ErrDuplicateFriendRequest
		}
	}
	f.ID = ids.next("fr")
	f.CreatedAt = time.Now()
	cp := *f
	r.friendships[f.ID] = &cp
	return nil
}

func (r *fakeFriendshipRepo) GetByID(_ context.Context, id string) (*entity.Friendship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.friendships[id]
	if !ok {
		return nil, domainerr.ErrRelationshipNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFriendshipRepo) GetByPair(_ context.Context, a, b string) (*entity.Friendship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ca, cb := entity.CanonicalPair(a, b)
	for _, f := range r.friendships {
		fa, fb := entity.CanonicalPair(f.RequesterID, f.AddresseeID)
		if fa == ca && fb == cb {
			cp := *f
			return &cp, nil
		}
	}
	return nil, domainerr.ErrRelationshipNotFound
}

func (r *fakeFriendshipRepo) ListForAccount(_ context.Context, accountID string, status entity.FriendshipStatus) ([]*entity.Friendship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Friendship
	for _, f := range r.friendships {
		if f.Involves(accountID) && f.Status == status {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFriendshipRepo) UpdateStatus(_ context.Context, id string, status entity.FriendshipStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.friendships[id]
	if !ok {
		return domainerr.ErrRelationshipNotFound
	}
	f.Status = status
	return nil
}

func (r *fakeFriendshipRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.friendships[id]; !ok {
		return domainerr.ErrRelationshipNotFound
	}
	delete(r.friendships, id)
	return nil
}

func (r *fakeFriendshipRepo) DeleteAllForAccount(_ context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, f := range r.friendships {
		if f.Involves(accountID) {
			delete(r.friendships, id)
		}
	}
	return nil
}

// recordingPublisher captures emitted notification events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev, ok := body.(notify.Event); ok {
		p.events = append(p.events, ev)
	}
	return nil
}

func (p *recordingPublisher) kinds() []notify.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notify.Kind, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Kind)
	}
	return out
}
