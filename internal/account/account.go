// Package account is the local credential store: a user list and the signed-in identity,
// both kept in the key-value store. It is a convenience for greeting and attribution,
// not an authentication boundary.
package account

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"sync"
	"time"
	"unicode/utf16"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/kv"
	"storefront/internal/logging"
)

// MinPasswordLength is the shortest password Signup accepts, counted in UTF-16
// code units as the browser storefront counts them.
const MinPasswordLength = 6

var (
	ErrMissingFields      = errors.New("please fill all fields")
	ErrPasswordTooShort   = errors.New("password must be 6+ characters")
	ErrPasswordMismatch   = errors.New("passwords don't match")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is a stored account. CreatedAt is Unix milliseconds.
type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	CreatedAt    int64  `json:"createdAt"`
}

// CurrentUser is the public part of the signed-in user.
type CurrentUser struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Store manages users_v1 and current_user.
type Store struct {
	mu   sync.Mutex
	kv   kv.Store
	cost int
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithBcryptCost overrides the hashing cost (tests use bcrypt.MinCost).
func WithBcryptCost(cost int) Option {
	return func(s *Store) { s.cost = cost }
}

// WithClock overrides the time source for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an account store over kv.
func NewStore(store kv.Store, opts ...Option) *Store {
	s := &Store{kv: store, cost: bcrypt.DefaultCost, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Users returns the stored accounts. Unreadable data reads as no accounts.
func (s *Store) Users() []User {
	var users []User
	if _, err := kv.GetJSON(s.kv, kv.KeyUsers, &users); err != nil {
		logging.Get(logging.CategoryAccount).Warn("Ignoring unreadable user list: %v", err)
		return nil
	}
	return users
}

func (s *Store) saveUsers(users []User) error {
	if err := kv.SetJSON(s.kv, kv.KeyUsers, users); err != nil {
		return errors.Wrap(err, "failed to save users")
	}
	return nil
}

func (s *Store) setCurrent(u User) error {
	cur := CurrentUser{ID: u.ID, Name: u.Name, Email: u.Email}
	if err := kv.SetJSON(s.kv, kv.KeyCurrentUser, cur); err != nil {
		return errors.Wrap(err, "failed to save current user")
	}
	return nil
}

// Signup creates an account and signs it in.
func (s *Store) Signup(name, email, password, confirm string) (CurrentUser, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	switch {
	case name == "" || email == "" || password == "":
		return CurrentUser{}, ErrMissingFields
	case passwordLength(password) < MinPasswordLength:
		return CurrentUser{}, ErrPasswordTooShort
	case password != confirm:
		return CurrentUser{}, ErrPasswordMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.Users()
	nextID := 1
	for _, u := range users {
		if u.Email == email {
			return CurrentUser{}, ErrEmailTaken
		}
		if u.ID >= nextID {
			nextID = u.ID + 1
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return CurrentUser{}, errors.Wrap(err, "failed to hash password")
	}

	user := User{
		ID:           nextID,
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UnixMilli(),
	}
	if err := s.saveUsers(append(users, user)); err != nil {
		return CurrentUser{}, err
	}
	if err := s.setCurrent(user); err != nil {
		return CurrentUser{}, err
	}

	logging.Account("Signed up user %d", user.ID)
	return CurrentUser{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}

// Login signs in the account matching email and password.
// Accounts imported from the browser storefront carry a SHA-256 hex hash; those are
// rehashed with bcrypt on their first successful login.
func (s *Store) Login(email, password string) (CurrentUser, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return CurrentUser{}, ErrMissingFields
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.Users()
	for i, u := range users {
		if u.Email != email {
			continue
		}
		ok, legacy := verify(u.PasswordHash, password)
		if !ok {
			break
		}
		if legacy {
			if hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost); err == nil {
				users[i].PasswordHash = string(hash)
				if err := s.saveUsers(users); err != nil {
					logging.Get(logging.CategoryAccount).Warn("Could not upgrade legacy hash for user %d: %v", u.ID, err)
				} else {
					logging.Account("Upgraded legacy password hash for user %d", u.ID)
				}
			}
		}
		if err := s.setCurrent(u); err != nil {
			return CurrentUser{}, err
		}
		logging.Account("User %d logged in", u.ID)
		return CurrentUser{ID: u.ID, Name: u.Name, Email: u.Email}, nil
	}

	logging.AccountDebug("Login rejected for %s", email)
	return CurrentUser{}, ErrInvalidCredentials
}

// verify reports whether password matches hash, and whether hash is one of the
// browser storefront's legacy formats (SHA-256 hex, or base64 where WebCrypto was missing).
func verify(hash, password string) (ok, legacy bool) {
	if strings.HasPrefix(hash, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, false
	}
	if subtle.ConstantTimeCompare([]byte(strings.ToLower(hash)), []byte(LegacyHash(password))) == 1 {
		return true, true
	}
	if b64, ok := Base64Hash(password); ok {
		return subtle.ConstantTimeCompare([]byte(hash), []byte(b64)) == 1, true
	}
	return false, true
}

// Base64Hash is the browser's fallback encoding: base64 over the password's
// Latin-1 bytes. Passwords outside Latin-1 have no such encoding.
func Base64Hash(password string) (string, bool) {
	b := make([]byte, 0, len(password))
	for _, r := range password {
		if r > 0xFF {
			return "", false
		}
		b = append(b, byte(r))
	}
	return base64.StdEncoding.EncodeToString(b), true
}

func passwordLength(password string) int {
	n := 0
	for _, r := range password {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

// LegacyHash is the SHA-256 hex digest the browser storefront stores.
func LegacyHash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Import adds accounts whose email is not yet known and returns how many were added.
// Imported ids that collide with a local id are renumbered.
func (s *Store) Import(incoming []User) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.Users()
	emails := make(map[string]bool, len(users))
	ids := make(map[int]bool, len(users))
	maxID := 0
	for _, u := range users {
		emails[u.Email] = true
		ids[u.ID] = true
		maxID = max(maxID, u.ID)
	}

	added := 0
	for _, u := range incoming {
		u.Email = normalizeEmail(u.Email)
		if u.Email == "" || u.PasswordHash == "" || emails[u.Email] {
			continue
		}
		if u.ID <= 0 || ids[u.ID] {
			u.ID = maxID + 1
		}
		maxID = max(maxID, u.ID)
		emails[u.Email] = true
		ids[u.ID] = true
		users = append(users, u)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := s.saveUsers(users); err != nil {
		return 0, err
	}
	logging.Account("Imported %d accounts", added)
	return added, nil
}

// Adopt signs in the stored account with cur's email when nobody is signed in.
// It reports whether the identity was adopted.
func (s *Store) Adopt(cur CurrentUser) (bool, error) {
	if _, ok := s.Current(); ok {
		return false, nil
	}
	email := normalizeEmail(cur.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.Users() {
		if u.Email == email {
			if err := s.setCurrent(u); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// Logout forgets the signed-in identity. Accounts are kept.
func (s *Store) Logout() error {
	if err := s.kv.Delete(kv.KeyCurrentUser); err != nil {
		return errors.Wrap(err, "failed to clear current user")
	}
	logging.Account("Logged out")
	return nil
}

// Current returns the signed-in identity, if any.
func (s *Store) Current() (CurrentUser, bool) {
	var cur CurrentUser
	ok, err := kv.GetJSON(s.kv, kv.KeyCurrentUser, &cur)
	if err != nil {
		logging.Get(logging.CategoryAccount).Warn("Ignoring unreadable current user: %v", err)
		return CurrentUser{}, false
	}
	if !ok || cur.Name == "" {
		return CurrentUser{}, false
	}
	return cur, true
}

// Greeting returns "Hi, <first name>" for the signed-in user.
func (s *Store) Greeting() (string, bool) {
	cur, ok := s.Current()
	if !ok {
		return "", false
	}
	return Greeting(cur.Name), true
}

// Greeting formats the header greeting for a full name.
func Greeting(name string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(name), " ")
	return "Hi, " + first
}
