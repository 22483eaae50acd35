package members

type Repo interface {
	Upsert(member *Member) error
	Delete(email string) error
	GetByEmail(email string) (*Member, error)
	GetByID(id string) (*Member, error)
	SetLastLogin(email string) error
}
