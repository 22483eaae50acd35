package fakememberrepo

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	clubErrors "github.com/jrsteele09/tennis-club/internal/errors"
	"github.com/jrsteele09/tennis-club/members"
)

var _ members.Repo = (*FakeMemberRepo)(nil)

type FakeMemberRepo struct {
	members  map[string]*members.Member
	emailIds map[string]string // email to member id
	lock     sync.RWMutex
}

func NewFakeMemberRepo() *FakeMemberRepo {
	return &FakeMemberRepo{
		members:  make(map[string]*members.Member),
		emailIds: make(map[string]string),
	}
}

func (mr *FakeMemberRepo) Upsert(member *members.Member) error {
	mr.lock.Lock()
	defer mr.lock.Unlock()

	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	member.Email = strings.ToLower(member.Email)
	if previous, ok := mr.members[member.ID]; ok && previous.Email != member.Email {
		delete(mr.emailIds, previous.Email)
	}
	stored := *member
	mr.members[member.ID] = &stored
	mr.emailIds[member.Email] = member.ID
	return nil
}

func (mr *FakeMemberRepo) Delete(email string) error {
	mr.lock.Lock()
	defer mr.lock.Unlock()

	memberID, ok := mr.emailIds[email]
	if !ok {
		return clubErrors.ErrUserNotFound
	}
	delete(mr.emailIds, email)
	delete(mr.members, memberID)
	return nil
}

func (mr *FakeMemberRepo) GetByEmail(email string) (*members.Member, error) {
	mr.lock.RLock()
	defer mr.lock.RUnlock()

	id, ok := mr.emailIds[email]
	if !ok {
		return nil, clubErrors.ErrUserNotFound
	}
	m := *mr.members[id]
	return &m, nil
}

func (mr *FakeMemberRepo) GetByID(id string) (*members.Member, error) {
	mr.lock.RLock()
	defer mr.lock.RUnlock()

	stored, ok := mr.members[id]
	if !ok {
		return nil, clubErrors.ErrUserNotFound
	}
	m := *stored
	return &m, nil
}

func (mr *FakeMemberRepo) SetLastLogin(email string) error {
	mr.lock.Lock()
	defer mr.lock.Unlock()

	id, ok := mr.emailIds[email]
	if !ok {
		return clubErrors.ErrUserNotFound
	}
	mr.members[id].LastLogin = time.Now()
	return nil
}
