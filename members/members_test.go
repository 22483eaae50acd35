package members_test

import (
	"os"
	"testing"

	clubErrors "github.com/jrsteele09/tennis-club/internal/errors"
	"github.com/jrsteele09/tennis-club/members"
	fakememberrepo "github.com/jrsteele09/tennis-club/members/repofake"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	members.PasswordHashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

const testPassword = "Baseline1"

func setupRepo(t *testing.T) *fakememberrepo.FakeMemberRepo {
	t.Helper()

	hash, err := members.HashPassword(testPassword)
	require.NoError(t, err)

	repo := fakememberrepo.NewFakeMemberRepo()
	require.NoError(t, repo.Upsert(&members.Member{
		ID:           "member-1",
		Email:        "Steffi@Club.test",
		PasswordHash: hash,
		FirstName:    "Steffi",
		LastName:     "Graf",
		Roles:        []members.RoleType{members.RoleMember, members.RoleEditor},
	}))
	require.NoError(t, repo.Upsert(&members.Member{
		ID:           "member-2",
		Email:        "blocked@club.test",
		PasswordHash: hash,
		Blocked:      true,
	}))
	return repo
}

func TestAuthenticate(t *testing.T) {
	repo := setupRepo(t)

	t.Run("valid", func(t *testing.T) {
		m, err := members.Authenticate(repo, " steffi@club.test ", testPassword)
		require.NoError(t, err)
		require.Equal(t, "member-1", m.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := members.Authenticate(repo, "steffi@club.test", "wrong")
		require.ErrorIs(t, err, clubErrors.ErrInvalidCredentials)
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := members.Authenticate(repo, "nobody@club.test", testPassword)
		require.ErrorIs(t, err, clubErrors.ErrInvalidCredentials)
	})

	t.Run("blocked", func(t *testing.T) {
		_, err := members.Authenticate(repo, "blocked@club.test", testPassword)
		require.ErrorIs(t, err, clubErrors.ErrUserBlocked)
	})
}

func TestMember_Identity(t *testing.T) {
	repo := setupRepo(t)
	m, err := repo.GetByID("member-1")
	require.NoError(t, err)

	identity := m.Identity()
	require.Equal(t, "member-1", identity.ID)
	require.Equal(t, "steffi@club.test", identity.Email)
	require.Equal(t, "Steffi Graf", identity.Name)
	require.Equal(t, []string{"member", "blog_editor"}, identity.Roles)
	require.True(t, identity.HasRole(string(members.RoleEditor)))
	require.False(t, identity.HasRole(string(members.RoleClubAdmin)))
}

func TestValidatePasswordStrength(t *testing.T) {
	require.NoError(t, members.ValidatePasswordStrength("Baseline1"))

	tests := map[string]string{
		"Short1":        "at least 8 characters",
		"alllowercase1": "an upper case letter",
		"ALLUPPERCASE1": "a lower case letter",
		"NoNumbersHere": "a digit",
		"nonumbers":     "an upper case letter, a digit",
	}
	for password, msg := range tests {
		t.Run(password, func(t *testing.T) {
			err := members.ValidatePasswordStrength(password)
			require.ErrorIs(t, err, clubErrors.ErrInvalidRequest)
			require.ErrorContains(t, err, msg)
		})
	}
}

func TestHashPassword_UsesConfiguredCost(t *testing.T) {
	hash, err := members.HashPassword(testPassword)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.MinCost, cost)
	require.True(t, members.CheckPasswordHash(testPassword, hash))
	require.False(t, members.CheckPasswordHash("Baseline2", hash))
}

func TestFakeRepo(t *testing.T) {
	repo := setupRepo(t)

	require.NoError(t, repo.SetLastLogin("steffi@club.test"))
	m, err := repo.GetByEmail("steffi@club.test")
	require.NoError(t, err)
	require.False(t, m.LastLogin.IsZero())

	require.NoError(t, repo.Delete("steffi@club.test"))
	_, err = repo.GetByID("member-1")
	require.ErrorIs(t, err, clubErrors.ErrUserNotFound)
	require.ErrorIs(t, repo.Delete("steffi@club.test"), clubErrors.ErrUserNotFound)
}

func TestFakeRepo_UpsertChangesEmail(t *testing.T) {
	repo := setupRepo(t)

	m, err := repo.GetByID("member-1")
	require.NoError(t, err)
	renamed := *m
	renamed.Email = "Steffi.Graf@Club.test"
	require.NoError(t, repo.Upsert(&renamed))

	_, err = repo.GetByEmail("steffi@club.test")
	require.ErrorIs(t, err, clubErrors.ErrUserNotFound)

	got, err := repo.GetByEmail("steffi.graf@club.test")
	require.NoError(t, err)
	require.Equal(t, "member-1", got.ID)

	_, err = members.Authenticate(repo, "steffi@club.test", testPassword)
	require.ErrorIs(t, err, clubErrors.ErrInvalidCredentials)

	// Editing a fetched member in place does not touch the stored record.
	got.Email = "elsewhere@club.test"
	_, err = repo.GetByEmail("elsewhere@club.test")
	require.ErrorIs(t, err, clubErrors.ErrUserNotFound)
	require.NoError(t, repo.Upsert(got))
	_, err = repo.GetByEmail("steffi.graf@club.test")
	require.ErrorIs(t, err, clubErrors.ErrUserNotFound)
}
