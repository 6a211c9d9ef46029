package service

import "github.com/listhub/listhub/internal/model"

// UserIndex maps user ids to the users fetched for one enrichment.
// It is built per request and never shared.
type UserIndex map[int64]model.User

// BuildUserIndex indexes users by id. Ids are unique upstream; if one repeats,
// the later entry wins.
func BuildUserIndex(users []model.User) UserIndex {
	idx := make(UserIndex, len(users))
	for _, u := range users {
		idx[u.ID] = u
	}
	return idx
}

// Lookup returns the user with the given id.
func (idx UserIndex) Lookup(id int64) (model.User, bool) {
	u, ok := idx[id]
	return u, ok
}
