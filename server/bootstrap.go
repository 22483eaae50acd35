package server

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/tennis-club/members"
	"github.com/rs/zerolog/log"
)

const DefaultClubAdminUsername = "admin"

// BootstrapClubAdmin makes sure the club has an administrator, named
// admin@<base URL host>. A supplied password must pass ValidatePasswordStrength.
// When password is empty a random one is generated and returned; nothing is
// returned if the admin already exists.
func BootstrapClubAdmin(repo members.Repo, baseURL, password string) (generatedPassword string, err error) {
	adminEmail := generateEmailFromBaseURL(DefaultClubAdminUsername, baseURL)

	if existing, err := repo.GetByEmail(adminEmail); err == nil && existing != nil {
		log.Info().Str("email", existing.Email).Msg("club admin already exists")
		return "", nil
	}

	if password != "" {
		if err := members.ValidatePasswordStrength(password); err != nil {
			return "", fmt.Errorf("[BootstrapClubAdmin] CLUB_ADMIN_PASSWORD rejected: %w", err)
		}
	} else {
		passwordBytes := make([]byte, 16)
		if _, err := rand.Read(passwordBytes); err != nil {
			return "", fmt.Errorf("[BootstrapClubAdmin] failed to generate password: %w", err)
		}
		password = base64.URLEncoding.EncodeToString(passwordBytes)
		generatedPassword = password
	}

	passwordHash, err := members.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("[BootstrapClubAdmin] failed to hash password: %w", err)
	}

	admin := &members.Member{
		Email:        adminEmail,
		PasswordHash: passwordHash,
		FirstName:    "Club",
		LastName:     "Administrator",
		Roles:        []members.RoleType{members.RoleMember, members.RoleEditor, members.RoleClubAdmin},
		DateJoined:   time.Now(),
	}
	if err := repo.Upsert(admin); err != nil {
		return "", fmt.Errorf("[BootstrapClubAdmin] failed to create club admin: %w", err)
	}

	log.Info().Str("email", admin.Email).Msg("created club admin")
	return generatedPassword, nil
}

// generateEmailFromBaseURL creates an email address from a username and base URL
// Example: ("admin", "https://club.example.com/path") -> "admin@club.example.com"
func generateEmailFromBaseURL(user, baseURL string) string {
	domain := strings.ReplaceAll(strings.ReplaceAll(baseURL, "https://", ""), "http://", "")
	domain = strings.SplitN(domain, "/", 2)[0]
	domain = strings.SplitN(domain, ":", 2)[0] // Remove port if present
	return fmt.Sprintf("%s@%s", user, domain)
}
