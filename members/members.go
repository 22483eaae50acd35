package members

import (
	"strings"
	"time"
	"unicode"

	clubErrors "github.com/jrsteele09/tennis-club/internal/errors"
	"github.com/jrsteele09/tennis-club/session"
	"golang.org/x/crypto/bcrypt"
)

// RoleType is a club role carried into the session identity.
type RoleType string

const (
	RoleMember    RoleType = "member"
	RoleEditor    RoleType = "blog_editor" // Writes club news
	RoleClubAdmin RoleType = "club_admin"  // Manages members and rankings
)

type Member struct {
	ID           string     `json:"id,omitempty"`
	Email        string     `json:"email,omitempty"`
	PasswordHash string     `json:"-"` // never serialize
	FirstName    string     `json:"first_name,omitempty"`
	LastName     string     `json:"last_name,omitempty"`
	Roles        []RoleType `json:"roles,omitempty"`
	DateJoined   time.Time  `json:"date_joined,omitempty"`
	LastLogin    time.Time  `json:"last_login,omitempty"`
	Blocked      bool       `json:"blocked,omitempty"` // Blocked members cannot sign in
}

// Name is the display name used on club pages.
func (m *Member) Name() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// Identity converts the member to the session identity.
func (m *Member) Identity() session.UserIdentity {
	roles := make([]string, 0, len(m.Roles))
	for _, r := range m.Roles {
		roles = append(roles, string(r))
	}
	return session.UserIdentity{
		ID:    m.ID,
		Email: m.Email,
		Name:  m.Name(),
		Roles: roles,
	}
}

// PasswordHashCost is the bcrypt cost used by HashPassword. Tests lower it to
// bcrypt.MinCost.
var PasswordHashCost = bcrypt.DefaultCost

const minPasswordLength = 8

// ValidatePasswordStrength rejects passwords shorter than eight characters or
// missing an upper case letter, a lower case letter or a digit.
func ValidatePasswordStrength(password string) error {
	if len(password) < minPasswordLength {
		return clubErrors.Wrapf(clubErrors.ErrInvalidRequest, "password must be at least %d characters long", minPasswordLength)
	}

	var upper, lower, digit bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsLower(c):
			lower = true
		case unicode.IsDigit(c):
			digit = true
		}
	}

	var missing []string
	if !upper {
		missing = append(missing, "an upper case letter")
	}
	if !lower {
		missing = append(missing, "a lower case letter")
	}
	if !digit {
		missing = append(missing, "a digit")
	}
	if len(missing) > 0 {
		return clubErrors.Wrapf(clubErrors.ErrInvalidRequest, "password needs %s", strings.Join(missing, ", "))
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	return string(hash), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Authenticate looks up email and checks password. Unknown members and wrong
// passwords both return ErrInvalidCredentials.
func Authenticate(repo Repo, email, password string) (*Member, error) {
	m, err := repo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, clubErrors.ErrInvalidCredentials
	}
	if !CheckPasswordHash(password, m.PasswordHash) {
		return nil, clubErrors.ErrInvalidCredentials
	}
	if m.Blocked {
		return nil, clubErrors.ErrUserBlocked
	}
	return m, nil
}
