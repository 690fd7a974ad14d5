package services_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rpupo63/blog-backend/auth"
	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/services"
)

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (m *fakeMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}
	}
	return m.sent[len(m.sent)-1]
}

type memLedger struct {
	mu   sync.Mutex
	used map[string]time.Time
	err  error
}

func (l *memLedger) Consume(_ context.Context, jti string, until time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if _, ok := l.used[jti]; ok {
		return false, nil
	}
	l.used[jti] = until
	return true, nil
}

var errMailDown = errors.New("smtp: connection refused")

type fixture struct {
	db         database.Database
	tokens     *auth.TokenService
	mailer     *fakeMailer
	accounts   *services.AccountService
	posts      *services.PostService
	categories *services.CategoryService
}

func newFixture(t *testing.T, ledger auth.ResetLedger) *fixture {
	t.Helper()

	gdb, err := database.Open(database.Options{
		Type:       "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "blog.db"),
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)
	db := database.New(gdb)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	tokens, err := auth.NewTokenService("session-secret", "reset-secret")
	require.NoError(t, err)

	mailer := &fakeMailer{}
	return &fixture{
		db:         db,
		tokens:     tokens,
		mailer:     mailer,
		accounts:   services.NewAccountService(db.UserRepo(), auth.NewBcryptHasher(bcrypt.MinCost), tokens, mailer, ledger),
		posts:      services.NewPostService(db.BlogPostRepo(), db.CategoryRepo()),
		categories: services.NewCategoryService(db.CategoryRepo()),
	}
}

func (f *fixture) register(t *testing.T, name string) auth.Identity {
	t.Helper()
	user, err := f.accounts.Register(context.Background(), services.RegisterInput{
		Username: name,
		Email:    name + "@example.com",
		Password: "pw-" + name,
	})
	require.NoError(t, err)
	return auth.IdentityOf(user)
}

func (f *fixture) registerAdmin(t *testing.T, name string) auth.Identity {
	t.Helper()
	id := f.register(t, name)
	require.NoError(t, f.db.UserRepo().SetRole(context.Background(), id.UserID, models.RoleAdmin))
	id.Role = models.RoleAdmin
	return id
}

func ptr[T any](v T) *T {
	return &v
}
