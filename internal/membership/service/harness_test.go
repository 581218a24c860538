package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"orgmembership/internal/audit"
	auditrepo "orgmembership/internal/audit/repository"
	"orgmembership/internal/docstore"
	"orgmembership/internal/docstore/memstore"
	invitationdomain "orgmembership/internal/invitation/domain"
	invitationrepo "orgmembership/internal/invitation/repository"
	orgdomain "orgmembership/internal/organization/domain"
	orgrepo "orgmembership/internal/organization/repository"
	"orgmembership/internal/platform/logging"
	"orgmembership/internal/policy/engine"
	"orgmembership/internal/telemetry"
	telemetrydomain "orgmembership/internal/telemetry/domain"
	userdomain "orgmembership/internal/user/domain"
	userrepo "orgmembership/internal/user/repository"
)

var (
	errInjected = errors.New("injected failure")
	testTime    = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
)

// faults counts the remaining injected failures per "op:collection".
type faults struct {
	mu        sync.Mutex
	remaining map[string]int
}

// failNext makes the next n calls of op ("put" or "create") on collection fail.
func (f *faults) failNext(op, collection string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remaining[op+":"+collection] += n
}

func (f *faults) take(op, collection string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := op + ":" + collection
	if f.remaining[key] > 0 {
		f.remaining[key]--
		return errInjected
	}
	return nil
}

// failingStore wraps a store and fails selected writes. It does not implement
// docstore.Transactor, so the service falls back to ordered writes.
type failingStore struct {
	docstore.Store
	*faults
}

func newFailingStore(inner docstore.Store) *failingStore {
	return &failingStore{Store: inner, faults: &faults{remaining: make(map[string]int)}}
}

func (f *failingStore) Put(ctx context.Context, collection, id string, data docstore.Data, merge bool) error {
	if err := f.take("put", collection); err != nil {
		return err
	}
	return f.Store.Put(ctx, collection, id, data, merge)
}

func (f *failingStore) Create(ctx context.Context, collection string, data docstore.Data) (string, error) {
	if err := f.take("create", collection); err != nil {
		return "", err
	}
	return f.Store.Create(ctx, collection, data)
}

// txFailingStore is a transactional memstore whose transactions inject failures.
type txFailingStore struct {
	*memstore.Store
	*faults
}

func newTxFailingStore() *txFailingStore {
	return &txFailingStore{Store: memstore.New(), faults: &faults{remaining: make(map[string]int)}}
}

// RunInTx fails before the transaction starts when a "begin" fault is set.
func (s *txFailingStore) RunInTx(ctx context.Context, fn func(tx docstore.Store) error) error {
	if err := s.take("begin", ""); err != nil {
		return err
	}
	return s.Store.RunInTx(ctx, func(tx docstore.Store) error {
		return fn(&failingStore{Store: tx, faults: s.faults})
	})
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type recordingObserver struct {
	mu   sync.Mutex
	uids []string
}

func (o *recordingObserver) PrincipalChanged(ctx context.Context, uid string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.uids = append(o.uids, uid)
}

type harness struct {
	svc      *Service
	store    docstore.Store
	users    *userrepo.DocumentRepository
	orgs     *orgrepo.DocumentRepository
	invites  *invitationrepo.DocumentRepository
	audits   *auditrepo.DocumentRepository
	events   *[]*telemetrydomain.Event
	observer *recordingObserver
}

var sharedAuthorizer struct {
	once sync.Once
	a    *engine.OPAAuthorizer
	err  error
}

func authorizer(t *testing.T) engine.Authorizer {
	t.Helper()
	sharedAuthorizer.once.Do(func() {
		sharedAuthorizer.a, sharedAuthorizer.err = engine.NewOPAAuthorizer(context.Background(), "")
	})
	if sharedAuthorizer.err != nil {
		t.Fatalf("NewOPAAuthorizer: %v", sharedAuthorizer.err)
	}
	return sharedAuthorizer.a
}

func newHarness(t *testing.T, store docstore.Store, useTx bool) *harness {
	t.Helper()
	var (
		eventsMu sync.Mutex
		events   []*telemetrydomain.Event
	)
	emitter := telemetry.EmitterFunc(func(ctx context.Context, e *telemetrydomain.Event) error {
		eventsMu.Lock()
		defer eventsMu.Unlock()
		events = append(events, e)
		return nil
	})
	observer := &recordingObserver{}
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	// Audit writes and test assertions bypass injected failures.
	base := store
	switch s := store.(type) {
	case *failingStore:
		base = s.Store
	case *txFailingStore:
		base = s.Store
	}
	svc, err := NewService(store, Config{
		Authorizer:      authorizer(t),
		UseTransactions: useTx,
		Audit:           audit.NewLogger(auditrepo.NewDocumentRepository(base), logging.Discard()),
		Events:          emitter,
		Observer:        observer,
		Logger:          logging.Discard(),
		Clock:           clock.Now,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &harness{
		svc:      svc,
		store:    store,
		users:    userrepo.NewDocumentRepository(base),
		orgs:     orgrepo.NewDocumentRepository(base),
		invites:  invitationrepo.NewDocumentRepository(base),
		audits:   auditrepo.NewDocumentRepository(base),
		events:   &events,
		observer: observer,
	}
}

// modes runs fn once with transactions and once with ordered writes.
func modes(t *testing.T, fn func(t *testing.T, h *harness)) {
	t.Run("transactional", func(t *testing.T) {
		fn(t, newHarness(t, memstore.New(), true))
	})
	t.Run("ordered", func(t *testing.T) {
		fn(t, newHarness(t, memstore.New(), false))
	})
}

func (h *harness) addPrincipal(t *testing.T, id, email string) Actor {
	t.Helper()
	u := &userdomain.User{ID: id, Email: userdomain.NormalizeEmail(email), Status: userdomain.UserStatusActive}
	if err := h.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create principal %s: %v", id, err)
	}
	return Actor{ID: id, Email: u.Email}
}

func (h *harness) user(t *testing.T, id string) *userdomain.User {
	t.Helper()
	u, err := h.users.GetByID(context.Background(), id)
	if err != nil || u == nil {
		t.Fatalf("load principal %s: %v, %v", id, u, err)
	}
	return u
}

func (h *harness) org(t *testing.T, id string) *orgdomain.Org {
	t.Helper()
	o, err := h.orgs.GetOrganizationByID(context.Background(), id)
	if err != nil || o == nil {
		t.Fatalf("load organization %s: %v, %v", id, o, err)
	}
	return o
}

func (h *harness) invitation(t *testing.T, id string) *invitationdomain.Invitation {
	t.Helper()
	inv, err := h.invites.GetByID(context.Background(), id)
	if err != nil || inv == nil {
		t.Fatalf("load invitation %s: %v, %v", id, inv, err)
	}
	return inv
}

// createOrg creates an organization administered by a fresh principal.
func (h *harness) createOrg(t *testing.T, name, adminID, adminEmail string) (string, Actor) {
	t.Helper()
	admin := h.addPrincipal(t, adminID, adminEmail)
	orgID, err := h.svc.CreateOrganization(context.Background(), name, admin)
	if err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}
	return orgID, admin
}

// join invites a fresh principal into orgID and accepts on their behalf.
func (h *harness) join(t *testing.T, orgID string, admin Actor, id, email string) Actor {
	t.Helper()
	ctx := context.Background()
	inv, err := h.svc.InviteMember(ctx, email, orgID, admin)
	if err != nil {
		t.Fatalf("InviteMember(%s): %v", email, err)
	}
	member := h.addPrincipal(t, id, email)
	if err := h.svc.AcceptInvitation(ctx, inv.ID, member); err != nil {
		t.Fatalf("AcceptInvitation(%s): %v", email, err)
	}
	return member
}

// checkConsistency verifies members and principal pointers agree, the
// organization keeps an admin, and pending invitations match pendingInvites.
func (h *harness) checkConsistency(t *testing.T, orgID string, principals []string) {
	t.Helper()
	ctx := context.Background()
	org := h.org(t, orgID)
	if len(org.Members) > 0 && org.AdminCount() == 0 {
		t.Fatalf("organization %s has no admin: %+v", orgID, org.Members)
	}
	for _, m := range org.Members {
		u := h.user(t, m.UID)
		if u.OrganizationID != orgID || u.Role != m.Role {
			t.Fatalf("member %s: principal points at %q/%q, member record says %q", m.UID, u.OrganizationID, u.Role, m.Role)
		}
	}
	for _, id := range principals {
		u := h.user(t, id)
		if (u.OrganizationID == "") != (u.Role == "") {
			t.Fatalf("principal %s has organization %q with role %q", id, u.OrganizationID, u.Role)
		}
		if u.OrganizationID == orgID && org.Member(id) == nil {
			t.Fatalf("principal %s points at %s but is not a member", id, orgID)
		}
	}
	for _, email := range org.PendingInvites {
		if org.MemberByEmail(email) != nil {
			t.Fatalf("%s is both member and pending in %s", email, orgID)
		}
		invs, err := h.invites.ListPendingByEmail(ctx, email)
		if err != nil {
			t.Fatalf("ListPendingByEmail: %v", err)
		}
		if len(invs) != 1 || invs[0].OrganizationID != orgID {
			t.Fatalf("pending email %s has invitations %+v", email, invs)
		}
	}
	pending, err := h.invites.ListPendingByOrganization(ctx, orgID)
	if err != nil {
		t.Fatalf("ListPendingByOrganization: %v", err)
	}
	for _, inv := range pending {
		if !org.HasPendingInvite(inv.Email) {
			t.Fatalf("pending invitation %s for %s not listed on %s", inv.ID, inv.Email, orgID)
		}
	}
}

func (h *harness) eventTypes() []string {
	out := make([]string, 0, len(*h.events))
	for _, e := range *h.events {
		out = append(out, e.Type)
	}
	return out
}

func mustErr(t *testing.T, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func emailFor(n int) string {
	return fmt.Sprintf("user%d@x.com", n)
}
