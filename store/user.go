package store

// User is the object representing a user account. The core only needs user
// enumeration for batch aggregation; account management lives elsewhere.
type User struct {
	ID        int32
	Username  string
	Nickname  string
	CreatedTs int64
}

// FindUser is the find condition for user.
type FindUser struct {
	ID       *int32
	Username *string
	Limit    *int
}
