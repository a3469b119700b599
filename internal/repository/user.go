package repository

import (
	"context"

	"github.com/google/uuid"
)

const insertUser = `
INSERT INTO users (email, name, password, role)
VALUES ($1, $2, $3, $4)
RETURNING id, email, name, password, role, created_at, updated_at
`

type InsertUserParams struct {
	Email    string
	Name     string
	Password string
	Role     string
}

func (q *Queries) InsertUser(c context.Context, arg InsertUserParams) (User, error) {
	row := q.db.QueryRow(c, insertUser, arg.Email, arg.Name, arg.Password, arg.Role)
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Password,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

const findUserByEmail = `
SELECT id, email, name, password, role, created_at, updated_at
FROM users
WHERE email = $1
`

func (q *Queries) FindUserByEmail(c context.Context, email string) (User, error) {
	row := q.db.QueryRow(c, findUserByEmail, email)
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Password,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

const findUserById = `
SELECT id, email, name, password, role, created_at, updated_at
FROM users
WHERE id = $1
`

func (q *Queries) FindUserById(c context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(c, findUserById, id)
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Password,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

const findUsersByRole = `
SELECT id, email, name, password, role, created_at, updated_at
FROM users
WHERE role = $1
ORDER BY created_at DESC
`

func (q *Queries) FindUsersByRole(c context.Context, role string) ([]User, error) {
	rows, err := q.db.Query(c, findUsersByRole, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID,
			&u.Email,
			&u.Name,
			&u.Password,
			&u.Role,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const countUsersByRole = `
SELECT count(*) FROM users WHERE role = $1
`

func (q *Queries) CountUsersByRole(c context.Context, role string) (int64, error) {
	row := q.db.QueryRow(c, countUsersByRole, role)
	var count int64
	err := row.Scan(&count)
	return count, err
}
