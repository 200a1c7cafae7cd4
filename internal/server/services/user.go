// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, session lookup and
// profile edits.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/miniblog/internal/common"
	"github.com/dmitrijs2005/miniblog/internal/dbx"
	"github.com/dmitrijs2005/miniblog/internal/logging"
	"github.com/dmitrijs2005/miniblog/internal/server/auth"
	"github.com/dmitrijs2005/miniblog/internal/server/models"
	"github.com/dmitrijs2005/miniblog/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// Client-facing messages.
const (
	MsgAllFieldsRequired   = "All fields are required."
	MsgPasswordTooShort    = "Password must be at least 6 characters."
	MsgPasswordTooLong     = "Password must be at most 72 bytes."
	MsgEmailTaken          = "An account with this email already exists."
	MsgCredentialsRequired = "Email and password are required."
	MsgInvalidCredentials  = "Invalid email or password."
	MsgUserNotFound        = "User not found."
	MsgInternal            = "Internal server error."
)

// AuthorRole is the role reported for every user in the authors listing.
const AuthorRole = "Writer"

// ProfilePatch carries a partial profile update. A nil field is left as is,
// a non-nil empty string overwrites the stored value.
type ProfilePatch struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
	Bio    *string `json:"bio"`
}

// UserService provides authentication-related operations:
// - Register: create users and open a session
// - Login: verify credentials and open a session
// - Me: resolve a session token to the current profile
// - UpdateProfile: edit the caller's own profile
type UserService struct {
	db          dbx.Handle
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	tokens      *auth.TokenCodec
	log         logging.Logger

	// dummyHash is compared against when the login email is unknown so the
	// response takes as long as a real password check.
	dummyHash string
}

// fallbackDummyHash is a well-formed cost-12 bcrypt hash that matches no
// password. It is used only if hashing the dummy password fails.
const fallbackDummyHash = "$2a$12$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// NewUserService constructs a UserService. It hashes the timing dummy up
// front so no login pays for it.
func NewUserService(db dbx.Handle, m repomanager.RepositoryManager, hasher auth.PasswordHasher,
	tokens *auth.TokenCodec, log logging.Logger) *UserService {
	ctx := context.Background()
	dummy, err := hasher.Hash(ctx, "miniblog-timing-equalizer")
	if err != nil || dummy == "" {
		log.Warn(ctx, "dummy hash failed, using fallback", "error", err)
		dummy = fallbackDummyHash
	}
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		log:         log,
		dummyHash:   dummy,
	}
}

func (s *UserService) internal(ctx context.Context, op string, err error) error {
	s.log.Error(ctx, op+" failed", "error", err)
	return common.NewError(common.ErrorInternal, MsgInternal)
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and returns it together with a fresh session
// token.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	if name == "" || email == "" || strings.TrimSpace(password) == "" {
		return nil, "", common.NewError(common.ErrorValidation, MsgAllFieldsRequired)
	}
	if utf8.RuneCountInString(password) < common.MinPasswordLength {
		return nil, "", common.NewError(common.ErrorValidation, MsgPasswordTooShort)
	}

	db, err := s.db.Get(ctx)
	if err != nil {
		return nil, "", s.internal(ctx, "open store", err)
	}
	repo := s.repomanager.Users(db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, "", common.NewError(common.ErrorConflict, MsgEmailTaken)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, "", s.internal(ctx, "lookup user", err)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, "", common.NewError(common.ErrorValidation, MsgPasswordTooLong)
		}
		return nil, "", s.internal(ctx, "hash password", err)
	}

	user, err := repo.Create(ctx, &models.User{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		// Two registrations with the same email can both pass the pre-check;
		// the unique index decides.
		if errors.Is(err, common.ErrorConflict) {
			return nil, "", common.NewError(common.ErrorConflict, MsgEmailTaken)
		}
		return nil, "", s.internal(ctx, "create user", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, "", s.internal(ctx, "issue token", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, token, nil
}

// Login checks credentials and returns the user with a fresh session token.
// Unknown email and wrong password produce the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", common.NewError(common.ErrorValidation, MsgCredentialsRequired)
	}

	db, err := s.db.Get(ctx)
	if err != nil {
		return nil, "", s.internal(ctx, "open store", err)
	}

	user, err := s.repomanager.Users(db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(ctx, password, s.dummyHash)
			return nil, "", common.NewError(common.ErrorUnauthorized, MsgInvalidCredentials)
		}
		return nil, "", s.internal(ctx, "lookup user", err)
	}

	if !s.hasher.Verify(ctx, password, user.PasswordHash) {
		return nil, "", common.NewError(common.ErrorUnauthorized, MsgInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, "", s.internal(ctx, "issue token", err)
	}
	return user, token, nil
}

// Me resolves token to the current user. A missing, invalid or expired
// token, or a user that no longer exists, yields (nil, nil).
func (s *UserService) Me(ctx context.Context, token string) (*models.User, error) {
	claims := s.tokens.Identify(token)
	if claims == nil {
		return nil, nil
	}

	db, err := s.db.Get(ctx)
	if err != nil {
		return nil, s.internal(ctx, "open store", err)
	}

	user, err := s.repomanager.Users(db).GetByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, s.internal(ctx, "lookup user", err)
	}
	return user, nil
}

// UpdateProfile applies patch to the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, claims *auth.Claims, patch ProfilePatch) (*models.User, error) {
	if claims == nil {
		return nil, common.ErrorUnauthorized
	}

	db, err := s.db.Get(ctx)
	if err != nil {
		return nil, s.internal(ctx, "open store", err)
	}
	repo := s.repomanager.Users(db)

	user, err := repo.GetByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, MsgUserNotFound)
		}
		return nil, s.internal(ctx, "lookup user", err)
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Avatar != nil {
		user.Avatar = *patch.Avatar
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}

	if err := repo.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, MsgUserNotFound)
		}
		return nil, s.internal(ctx, "update profile", err)
	}
	return user, nil
}

// ListAuthors returns the profile of every user.
func (s *UserService) ListAuthors(ctx context.Context) ([]models.PublicUser, error) {
	db, err := s.db.Get(ctx)
	if err != nil {
		return nil, s.internal(ctx, "open store", err)
	}

	list, err := s.repomanager.Users(db).List(ctx)
	if err != nil {
		return nil, s.internal(ctx, "list users", err)
	}

	result := make([]models.PublicUser, 0, len(list))
	for _, u := range list {
		p := u.Profile()
		p.Role = AuthorRole
		result = append(result, p)
	}
	return result, nil
}
