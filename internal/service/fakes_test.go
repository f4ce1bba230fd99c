package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/and161185/lingua-auth/internal/crypto"
	"github.com/and161185/lingua-auth/internal/errs"
	"github.com/and161185/lingua-auth/internal/identity"
	"github.com/and161185/lingua-auth/internal/kv"
	"github.com/and161185/lingua-auth/internal/limiter"
	"github.com/and161185/lingua-auth/internal/model"
	"github.com/and161185/lingua-auth/internal/repository"
	"github.com/and161185/lingua-auth/internal/signer"
	"github.com/and161185/lingua-auth/internal/tokenstore"
)

const (
	audCreate = "journey_lingua:create"
	audVerify = "journey_lingua:verify"
	audReset  = "journey_lingua:reset"
)

type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.User

	createErr error
	updateErr error
	creates   int
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[int64]*model.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cpy := *u
	f.byID[u.ID] = &cpy
	f.creates++
	return nil
}

func (f *fakeUsers) Update(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[u.ID]; !ok {
		return errs.ErrUserNotExists
	}
	u.UpdatedAt = time.Now()
	cpy := *u
	f.byID[u.ID] = &cpy
	return nil
}

func (f *fakeUsers) find(match func(u *model.User) bool) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.ID == id })
}
func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return model.Deref(u.Email) == email })
}
func (f *fakeUsers) GetByPhone(_ context.Context, phone string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return model.Deref(u.Phone) == phone })
}
func (f *fakeUsers) GetByFacebookID(_ context.Context, id string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return model.Deref(u.FacebookID) == id })
}
func (f *fakeUsers) GetByGoogleID(_ context.Context, id string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return model.Deref(u.GoogleID) == id })
}
func (f *fakeUsers) GetByUserCode(_ context.Context, code string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.UserCode == code })
}

// fakeTx snapshots the user table and restores it when fn fails.
type fakeTx struct {
	users      *fakeUsers
	began      int
	rolledBack int
}

var _ repository.Transactor = (*fakeTx)(nil)

func (t *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.began++
	t.users.mu.Lock()
	snapshot := make(map[int64]*model.User, len(t.users.byID))
	for k, v := range t.users.byID {
		snapshot[k] = v
	}
	t.users.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.rolledBack++
		t.users.mu.Lock()
		t.users.byID = snapshot
		t.users.mu.Unlock()
		return err
	}
	return nil
}

// countingHasher is a cheap reversible Hasher that counts calls.
type countingHasher struct {
	hashes   int
	verifies int
}

var _ crypto.Hasher = (*countingHasher)(nil)

func (h *countingHasher) Hash(p string) (string, error) { h.hashes++; return "hashed:" + p, nil }
func (h *countingHasher) Verify(p, enc string) bool {
	h.verifies++
	return enc != "" && enc == "hashed:"+p
}

type sent struct {
	kind, to, token string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

var _ Notifier = (*fakeNotifier)(nil)

func (n *fakeNotifier) record(kind, to, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sent{kind, to, token})
	return nil
}

func (n *fakeNotifier) SendVerifyEmail(_ context.Context, to, token string) error {
	return n.record("verify-email", to, token)
}
func (n *fakeNotifier) SendVerifyPIN(_ context.Context, phone, pin string) error {
	return n.record("verify-pin", phone, pin)
}
func (n *fakeNotifier) SendResetEmail(_ context.Context, to, token string) error {
	return n.record("reset-email", to, token)
}
func (n *fakeNotifier) SendResetSMS(_ context.Context, phone, token string) error {
	return n.record("reset-sms", phone, token)
}

func (n *fakeNotifier) last(t *testing.T, kind string) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.sent) - 1; i >= 0; i-- {
		if n.sent[i].kind == kind {
			return n.sent[i].token
		}
	}
	t.Fatalf("no %s message sent", kind)
	return ""
}

func (n *fakeNotifier) count(kind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, s := range n.sent {
		if s.kind == kind {
			c++
		}
	}
	return c
}

type fakeChecker struct {
	valid bool
	err   error
}

var _ identity.Checker = fakeChecker{}

func (f fakeChecker) IsValidAccessToken(context.Context, string, string) (bool, error) {
	return f.valid, f.err
}
func (f fakeChecker) ProviderID(_ context.Context, tok string) (string, error) {
	if !f.valid {
		return "", errors.New("invalid")
	}
	return strings.TrimPrefix(tok, "tok-"), nil
}

type harness struct {
	svc      *AuthServiceImpl
	users    *fakeUsers
	tx       *fakeTx
	hasher   *countingHasher
	notifier *fakeNotifier
	store    *kv.Memory
	signer   *signer.Signer
}

type option func(d *Deps)

func newHarness(t *testing.T, opts ...option) *harness {
	t.Helper()
	users := newFakeUsers()
	store := kv.NewMemory()
	sg, err := signer.New("test-secret", "HS256")
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	// frozen clock: every token of a test is issued in the same second
	frozen := time.Now()
	sg = sg.WithClock(func() time.Time { return frozen })
	h := &harness{
		users:    users,
		tx:       &fakeTx{users: users},
		hasher:   &countingHasher{},
		notifier: &fakeNotifier{},
		store:    store,
		signer:   sg,
	}
	d := Deps{
		Users:     users,
		Tx:        h.tx,
		Hasher:    h.hasher,
		Verify:    tokenstore.NewVerifyTokens(store),
		Resets:    tokenstore.NewResetTokens(store),
		Sessions:  tokenstore.NewSessions(store, sg, audCreate, 180),
		Tokens:    sg,
		Limiter:   limiter.NewKV(store, 10, 24*time.Hour),
		Notifier:  h.notifier,
		Facebook:  fakeChecker{valid: true},
		Google:    fakeChecker{valid: true},
		Audiences: []string{audCreate, audVerify, audReset},
		Log:       zaptest.NewLogger(t),
	}
	for _, o := range opts {
		o(&d)
	}
	h.svc = NewAuthService(d)
	return h
}
