package user

// User is one users row as scanned by sqlx.
type User struct {
	ID       int64  `db:"id"`
	Name     string `db:"name"`
	Email    string `db:"email"`
	IDNumber string `db:"id_number"`
}
