// Package session persists the login flag and the signed-up profile.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/authshell/authshell/internal/kv"
)

// Keys written by the Store.
const (
	KeyLoggedIn     = "isLoggedIn"
	KeyName         = "name"
	KeyEmail        = "email"
	KeyPassword     = "password"
	KeyMobileNumber = "mobileNumber"
)

// Password storage modes.
const (
	PasswordPlain  = "plain"
	PasswordBcrypt = "bcrypt"
)

// bcryptMaxInput is the longest input bcrypt accepts.
const bcryptMaxInput = 72

// ErrUnknownPasswordMode is returned by NewStore for an unsupported mode.
var ErrUnknownPasswordMode = errors.New("unknown password storage mode")

// Profile is the user data stored after a successful sign-up.
type Profile struct {
	Name         string
	Email        string
	Password     string
	MobileNumber string
}

// Store reads and writes session state through a kv.Store.
type Store struct {
	kv           kv.Store
	passwordMode string
}

// NewStore wraps backend. passwordMode selects how SaveProfile stores the
// password: PasswordPlain writes it verbatim, PasswordBcrypt writes a hash.
func NewStore(backend kv.Store, passwordMode string) (*Store, error) {
	switch passwordMode {
	case "":
		passwordMode = PasswordPlain
	case PasswordPlain, PasswordBcrypt:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPasswordMode, passwordMode)
	}
	return &Store{kv: backend, passwordMode: passwordMode}, nil
}

// SetLoggedIn persists the session flag.
func (s *Store) SetLoggedIn(ctx context.Context, loggedIn bool) error {
	value := "false"
	if loggedIn {
		value = "true"
	}
	if err := s.kv.Set(ctx, map[string]string{KeyLoggedIn: value}); err != nil {
		return fmt.Errorf("persist session flag: %w", err)
	}
	return nil
}

// IsLoggedIn reports whether the persisted flag is "true". A missing flag
// reads as false.
func (s *Store) IsLoggedIn(ctx context.Context) (bool, error) {
	v, _, err := s.kv.Get(ctx, KeyLoggedIn)
	if err != nil {
		return false, fmt.Errorf("read session flag: %w", err)
	}
	return v == "true", nil
}

// SaveProfile writes every profile field in one Set call.
func (s *Store) SaveProfile(ctx context.Context, p Profile) error {
	password := p.Password
	if s.passwordMode == PasswordBcrypt {
		hash, err := bcrypt.GenerateFromPassword(bcryptInput(p.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		password = string(hash)
	}

	err := s.kv.Set(ctx, map[string]string{
		KeyName:         p.Name,
		KeyEmail:        p.Email,
		KeyPassword:     password,
		KeyMobileNumber: p.MobileNumber,
	})
	if err != nil {
		return fmt.Errorf("persist profile: %w", err)
	}
	return nil
}

// Profile returns the stored profile. ok is false when no profile field is
// stored at all.
func (s *Store) Profile(ctx context.Context) (Profile, bool, error) {
	var (
		p     Profile
		found bool
	)
	fields := []struct {
		key string
		dst *string
	}{
		{KeyName, &p.Name},
		{KeyEmail, &p.Email},
		{KeyPassword, &p.Password},
		{KeyMobileNumber, &p.MobileNumber},
	}
	for _, f := range fields {
		v, ok, err := s.kv.Get(ctx, f.key)
		if err != nil {
			return Profile{}, false, fmt.Errorf("read profile %s: %w", f.key, err)
		}
		if ok {
			*f.dst = v
			found = true
		}
	}
	return p, found, nil
}

// bcryptInput returns the bytes hashed for password. Passwords longer than
// bcrypt accepts are reduced to their hex SHA-256 digest first, so every
// password can be stored and verified the same way.
func bcryptInput(password string) []byte {
	if len(password) <= bcryptMaxInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(hex.EncodeToString(sum[:]))
}

// Clear removes the flag and every profile field.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Ping checks the backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}
