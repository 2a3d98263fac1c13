package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	domainauth "github.com/NordCoder/go-auth/internal/domain/auth"
	"github.com/NordCoder/go-auth/internal/domain/event"
	"github.com/NordCoder/go-auth/internal/domain/user"
	"github.com/NordCoder/go-auth/internal/obs"
)

var authOps = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "auth_operations_total",
	Help: "Auth operations by outcome.",
}, []string{"op", "result"})

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type TokenIssuer interface {
	IssueAccessToken(userID string) (string, error)
	IssueRefreshToken() (string, error)
	VerifyAccessToken(token string) (string, error)
	SubjectIgnoringExpiry(token string) (string, error)
}

type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Config struct {
	RefreshTTL    time.Duration
	RotateRefresh bool
}

type Deps struct {
	Users    user.Repo
	Sessions domainauth.SessionStore
	Hasher   PasswordHasher
	Tokens   TokenIssuer
	Tx       Transactor
	Events   event.Sink
	Logger   *zap.Logger
}

// RefreshResult carries the new access token; RefreshToken is set only when rotation is on.
type RefreshResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type Usecase struct {
	users    user.Repo
	sessions domainauth.SessionStore
	hasher   PasswordHasher
	tokens   TokenIssuer
	tx       Transactor
	events   event.Sink
	log      *zap.Logger
	cfg      Config

	dummyOnce sync.Once
	dummyHash string
}

func NewUseCase(d Deps, cfg Config) *Usecase {
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = domainauth.RefreshTokenTTL
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Events == nil {
		d.Events = event.Nop{}
	}
	if d.Tx == nil {
		d.Tx = noTx{}
	}
	return &Usecase{
		users:    d.Users,
		sessions: d.Sessions,
		hasher:   d.Hasher,
		tokens:   d.Tokens,
		tx:       d.Tx,
		events:   d.Events,
		log:      d.Logger,
		cfg:      cfg,
	}
}

type noTx struct{}

func (noTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

func (u *Usecase) Register(ctx context.Context, email, password string) (err error) {
	defer func() { record("register", err) }()

	email = user.NormalizeEmail(email)
	if email == "" || password == "" {
		return fmt.Errorf("%w: missing email or password", domainauth.ErrInvalidInput)
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, domainauth.ErrInvalidInput) {
			return fmt.Errorf("%w: %w", domainauth.ErrRegistrationFailed, err)
		}
		return err
	}

	err = u.tx.WithTx(ctx, func(ctx context.Context) error {
		nu := &user.User{Email: email, PasswordHash: hash}
		if err := u.users.Create(ctx, nu); err != nil {
			return err
		}
		return u.events.UserRegistered(ctx, nu.ID, nu.Email)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, user.ErrDuplicateEmail):
		return fmt.Errorf("%w: %w", domainauth.ErrRegistrationFailed, err)
	default:
		return u.storeFailure(ctx, "register", err)
	}
}

func (u *Usecase) Login(ctx context.Context, email, password string) (_ domainauth.TokenPair, err error) {
	defer func() { record("login", err) }()

	email = user.NormalizeEmail(email)
	if email == "" || password == "" {
		return domainauth.TokenPair{}, fmt.Errorf("%w: missing email or password", domainauth.ErrInvalidInput)
	}

	rec, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// burn the same bcrypt time as a real mismatch
			u.hasher.Verify(password, u.fallbackHash())
			return domainauth.TokenPair{}, domainauth.ErrInvalidCredentials
		}
		return domainauth.TokenPair{}, u.storeFailure(ctx, "login", err)
	}
	if !u.hasher.Verify(password, rec.PasswordHash) {
		return domainauth.TokenPair{}, domainauth.ErrInvalidCredentials
	}

	access, err := u.tokens.IssueAccessToken(rec.ID)
	if err != nil {
		return domainauth.TokenPair{}, err
	}
	refresh, err := u.tokens.IssueRefreshToken()
	if err != nil {
		return domainauth.TokenPair{}, err
	}
	if err := u.sessions.Put(ctx, rec.ID, refresh, u.cfg.RefreshTTL); err != nil {
		return domainauth.TokenPair{}, u.storeFailure(ctx, "login", err)
	}

	if err := u.events.SessionStarted(ctx, rec.ID); err != nil {
		obs.WithTrace(ctx, u.log).Warn("session.started event not recorded",
			zap.String("user_id", rec.ID), zap.Error(err))
	}
	return domainauth.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh issues a new access token for the user named by the (possibly expired) bearer token,
// provided refreshToken matches the session stored for that user.
func (u *Usecase) Refresh(ctx context.Context, bearer, refreshToken string) (_ RefreshResult, err error) {
	defer func() { record("refresh", err) }()

	if bearer == "" || refreshToken == "" {
		return RefreshResult{}, domainauth.ErrInvalidRefreshToken
	}
	userID, err := u.tokens.SubjectIgnoringExpiry(bearer)
	if err != nil || userID == "" {
		return RefreshResult{}, domainauth.ErrInvalidRefreshToken
	}

	stored, err := u.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domainauth.ErrSessionNotFound) {
			return RefreshResult{}, domainauth.ErrInvalidRefreshToken
		}
		return RefreshResult{}, u.storeFailure(ctx, "refresh", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(refreshToken)) != 1 {
		return RefreshResult{}, domainauth.ErrInvalidRefreshToken
	}

	access, err := u.tokens.IssueAccessToken(userID)
	if err != nil {
		return RefreshResult{}, err
	}
	res := RefreshResult{AccessToken: access}
	if !u.cfg.RotateRefresh {
		return res, nil
	}

	next, err := u.tokens.IssueRefreshToken()
	if err != nil {
		return RefreshResult{}, err
	}
	if err := u.sessions.Put(ctx, userID, next, u.cfg.RefreshTTL); err != nil {
		return RefreshResult{}, u.storeFailure(ctx, "refresh", err)
	}
	res.RefreshToken = next
	return res, nil
}

// Logout drops the session of the bearer's subject. An expired access token is accepted.
func (u *Usecase) Logout(ctx context.Context, bearer string) (err error) {
	defer func() { record("logout", err) }()

	userID, err := u.tokens.SubjectIgnoringExpiry(bearer)
	if bearer == "" || err != nil || userID == "" {
		return domainauth.ErrInvalidAccessToken
	}
	if err := u.sessions.Delete(ctx, userID); err != nil {
		return u.storeFailure(ctx, "logout", err)
	}
	return nil
}

func (u *Usecase) Authenticate(bearer string) (string, error) {
	if bearer == "" {
		return "", domainauth.ErrInvalidAccessToken
	}
	userID, err := u.tokens.VerifyAccessToken(bearer)
	if err != nil || userID == "" {
		return "", domainauth.ErrInvalidAccessToken
	}
	return userID, nil
}

// storeFailure turns an exhausted request deadline into ErrTimedOut and keeps everything else as is.
func (u *Usecase) storeFailure(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", domainauth.ErrTimedOut, op, err)
	}
	if !errors.Is(err, domainauth.ErrStore) {
		err = fmt.Errorf("%w: %s: %w", domainauth.ErrStore, op, err)
	}
	return err
}

func (u *Usecase) fallbackHash() string {
	u.dummyOnce.Do(func() {
		h, err := u.hasher.Hash("go-auth/absent-user")
		if err != nil {
			u.log.Error("dummy hash", zap.Error(err))
		}
		u.dummyHash = h
	})
	return u.dummyHash
}

func record(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domainauth.ErrTimedOut):
		result = "timeout"
	case errors.Is(err, domainauth.ErrStore):
		result = "store_error"
	case errors.Is(err, domainauth.ErrInvalidInput):
		result = "invalid_input"
	default:
		result = "rejected"
	}
	authOps.WithLabelValues(op, result).Inc()
}
