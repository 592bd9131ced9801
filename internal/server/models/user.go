package models

// User is a row of the users table.
type User struct {
	ID      int64   `db:"id" json:"id"`
	Name    string  `db:"name" json:"name"`
	Email   string  `db:"email" json:"email"`
	Age     *int64  `db:"age" json:"age"`
	Address *string `db:"address" json:"address"`
}

// UserInput carries the mutable fields accepted by create and update.
// Optional fields left nil are stored as NULL.
type UserInput struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Age     *int64  `json:"age"`
	Address *string `json:"address"`
}
