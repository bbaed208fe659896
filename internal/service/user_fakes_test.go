package service

import (
	"context"
	"time"
	"vidhub-go/internal/model"

	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users []*model.User
}

func (r *fakeUserRepo) Create(user *model.User) error {
	user.ID = uint(len(r.users) + 1)
	user.CreatedAt = time.Now()
	r.users = append(r.users, user)
	return nil
}

func (r *fakeUserRepo) find(match func(*model.User) bool) (*model.User, error) {
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByEmail(email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) FindByUsername(username string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) FindByID(userID uint) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID == userID })
}

func (r *fakeUserRepo) Update(user *model.User) error {
	for i, u := range r.users {
		if u.ID == user.ID {
			r.users[i] = user
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindWithPagination(offset, limit int) ([]model.User, int64, error) {
	out := make([]model.User, 0)
	for i := offset; i < len(r.users) && i < offset+limit; i++ {
		out = append(out, *r.users[i])
	}
	return out, int64(len(r.users)), nil
}

func (r *fakeUserRepo) SetDeleted(userID uint, deleted bool) error {
	for _, u := range r.users {
		if u.ID == userID {
			u.IsDeleted = deleted
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeTokenRepo struct {
	revoked map[string]time.Duration
}

func (r *fakeTokenRepo) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if r.revoked == nil {
		r.revoked = map[string]time.Duration{}
	}
	r.revoked[token] = ttl
	return nil
}

func (r *fakeTokenRepo) IsRevoked(_ context.Context, token string) (bool, error) {
	_, ok := r.revoked[token]
	return ok, nil
}

type fakeGroupRepo struct {
	groups  []*model.Group
	members map[uint][]uint
	findErr error
}

func (r *fakeGroupRepo) Create(group *model.Group) error {
	group.ID = uint(len(r.groups) + 1)
	r.groups = append(r.groups, group)
	return nil
}

func (r *fakeGroupRepo) FindAll() ([]model.Group, error) {
	out := make([]model.Group, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, *g)
	}
	return out, nil
}

func (r *fakeGroupRepo) FindByID(groupID uint) (*model.Group, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, g := range r.groups {
		if g.ID == groupID {
			return g, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeGroupRepo) AddMember(groupID, userID uint) error {
	if r.members == nil {
		r.members = map[uint][]uint{}
	}
	r.members[groupID] = append(r.members[groupID], userID)
	return nil
}

func (r *fakeGroupRepo) IsMember(groupID, userID uint) (bool, error) {
	for _, id := range r.members[groupID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}
