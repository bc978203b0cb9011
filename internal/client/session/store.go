package session

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/ecoflow/internal/client/client"
	"github.com/dmitrijs2005/ecoflow/internal/client/models"
	"github.com/dmitrijs2005/ecoflow/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/ecoflow/internal/dbx"
	"github.com/dmitrijs2005/ecoflow/internal/logging"
)

const (
	keyToken    = "token"
	keyUsername = "username"
	keyIsAdmin  = "is_admin"
)

// Authenticator is the part of the API the store talks to.
type Authenticator interface {
	IssueToken(ctx context.Context, username, password string) (*models.TokenGrant, error)
	Register(ctx context.Context, user models.NewUser) error
}

type Store struct {
	api    Authenticator
	db     *sql.DB
	logger logging.Logger
	now    func() time.Time

	mu        sync.Mutex
	current   models.Session
	observers []func()
}

type Option func(*Store)

// WithDB persists the session in the metadata table of db.
func WithDB(db *sql.DB) Option {
	return func(s *Store) { s.db = db }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(api Authenticator, opts ...Option) *Store {
	s := &Store{
		api:    api,
		logger: logging.Discard(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// OnInvalidated registers fn to run whenever a live session is cleared by
// the server or by expiry. It is not called on explicit Logout.
func (s *Store) OnInvalidated(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Login exchanges credentials for a token. It never retries; a rejected
// password surfaces as client.ErrInvalidCredentials.
func (s *Store) Login(ctx context.Context, username, password string) (models.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.Session{}, fmt.Errorf("%w: username and password are required", client.ErrInvalidCredentials)
	}

	grant, err := s.api.IssueToken(ctx, username, password)
	if err != nil {
		return models.Session{}, err
	}

	sess := models.Session{Token: grant.Token, Username: username, IsAdmin: bool(grant.IsAdmin)}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	if err := s.persist(ctx, sess); err != nil {
		s.logger.Warn(ctx, "session not persisted", "error", err)
	}
	s.logger.Info(ctx, "logged in", "username", username, "admin", sess.IsAdmin)
	return sess, nil
}

// Register creates an account. It does not log in.
func (s *Store) Register(ctx context.Context, user models.NewUser) error {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" || user.Password == "" {
		return fmt.Errorf("%w: username and password are required", client.ErrValidation)
	}
	return s.api.Register(ctx, user)
}

// Logout clears the session unconditionally. It reports whether a session
// was active; calling it again is a no-op.
func (s *Store) Logout(ctx context.Context) bool {
	s.mu.Lock()
	had := s.current.Authenticated()
	s.current = models.Session{}
	s.mu.Unlock()

	if err := s.forget(ctx); err != nil {
		s.logger.Warn(ctx, "persisted session not cleared", "error", err)
	}
	return had
}

// Invalidate ends the session if token is still the current one. Only the
// call that actually clears the session notifies observers.
func (s *Store) Invalidate(ctx context.Context, token string) bool {
	s.mu.Lock()
	if token == "" || s.current.Token != token {
		s.mu.Unlock()
		return false
	}
	s.current = models.Session{}
	observers := append([]func(){}, s.observers...)
	s.mu.Unlock()

	if err := s.forget(ctx); err != nil {
		s.logger.Warn(ctx, "persisted session not cleared", "error", err)
	}
	s.logger.Info(ctx, "session invalidated")

	for _, fn := range observers {
		fn()
	}
	return true
}

func (s *Store) Current() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Token returns the current token, ending the session first if the token
// carries an exp claim in the past.
func (s *Store) Token() string {
	s.mu.Lock()
	token := s.current.Token
	s.mu.Unlock()

	if token == "" {
		return ""
	}
	if s.expired(token) {
		s.Invalidate(context.Background(), token)
		return ""
	}
	return token
}

// AuthHeader returns the value for the client.HeaderToken header.
func (s *Store) AuthHeader() (string, bool) {
	token := s.Token()
	return token, token != ""
}

// Restore loads a persisted session. Expired tokens are discarded.
func (s *Store) Restore(ctx context.Context) (models.Session, bool, error) {
	if s.db == nil {
		return models.Session{}, false, nil
	}

	values, err := metadata.NewSQLiteRepository(s.db).List(ctx)
	if err != nil {
		return models.Session{}, false, fmt.Errorf("load session: %w", err)
	}

	token := string(values[keyToken])
	username := string(values[keyUsername])
	if token == "" || username == "" {
		return models.Session{}, false, nil
	}
	if s.expired(token) {
		s.logger.Info(ctx, "stored session expired", "username", username)
		return models.Session{}, false, s.forget(ctx)
	}

	sess := models.Session{Token: token, Username: username, IsAdmin: string(values[keyIsAdmin]) == "1"}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	return sess, true, nil
}

func (s *Store) expired(token string) bool {
	exp, ok := TokenExpiry(token)
	return ok && !s.now().Before(exp)
}

func (s *Store) persist(ctx context.Context, sess models.Session) error {
	if s.db == nil {
		return nil
	}
	admin := "0"
	if sess.IsAdmin {
		admin = "1"
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).SetMany(ctx, map[string][]byte{
			keyToken:    []byte(sess.Token),
			keyUsername: []byte(sess.Username),
			keyIsAdmin:  []byte(admin),
		})
	})
}

func (s *Store) forget(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		for _, k := range []string{keyToken, keyUsername, keyIsAdmin} {
			if err := repo.Delete(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
}

var _ client.Credentials = (*Store)(nil)
