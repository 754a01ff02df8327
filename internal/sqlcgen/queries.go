package sqlcgen

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX matches the minimal interface needed from pgxpool.Pool or pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

const createUser = `-- name: CreateUser :one
INSERT INTO usuario (usuario, contrasenia, nombre)
VALUES ($1, $2, $3)
RETURNING id, usuario, nombre, contrasenia
`

type CreateUserParams struct {
	Usuario     string
	Contrasenia string
	Nombre      string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser, arg.Usuario, arg.Contrasenia, arg.Nombre)
	var i User
	err := row.Scan(&i.ID, &i.Usuario, &i.Nombre, &i.Contrasenia)
	return i, err
}

const getUser = `-- name: GetUser :one
SELECT id, usuario, nombre, contrasenia
FROM usuario
WHERE id = $1
`

func (q *Queries) GetUser(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRow(ctx, getUser, id)
	var i User
	err := row.Scan(&i.ID, &i.Usuario, &i.Nombre, &i.Contrasenia)
	return i, err
}

const getUserByUsername = `-- name: GetUserByUsername :one
SELECT id, usuario, nombre, contrasenia
FROM usuario
WHERE usuario = $1
`

func (q *Queries) GetUserByUsername(ctx context.Context, usuario string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByUsername, usuario)
	var i User
	err := row.Scan(&i.ID, &i.Usuario, &i.Nombre, &i.Contrasenia)
	return i, err
}

const listUsers = `-- name: ListUsers :many
SELECT id, usuario, nombre, contrasenia
FROM usuario
ORDER BY id ASC
`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.Query(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []User
	for rows.Next() {
		var i User
		if err := rows.Scan(&i.ID, &i.Usuario, &i.Nombre, &i.Contrasenia); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createProject = `-- name: CreateProject :one
INSERT INTO proyecto (nombre, contrato, contratante, contratista, encargado, id_usuario)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, nombre, contrato, contratante, contratista, encargado, id_usuario
`

type CreateProjectParams struct {
	Nombre      string
	Contrato    *string
	Contratante *string
	Contratista *string
	Encargado   *string
	IDUsuario   int64
}

func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error) {
	row := q.db.QueryRow(ctx, createProject, arg.Nombre, arg.Contrato, arg.Contratante, arg.Contratista, arg.Encargado, arg.IDUsuario)
	return scanProject(row)
}

const getProject = `-- name: GetProject :one
SELECT id, nombre, contrato, contratante, contratista, encargado, id_usuario
FROM proyecto
WHERE id = $1
`

func (q *Queries) GetProject(ctx context.Context, id int64) (Project, error) {
	return scanProject(q.db.QueryRow(ctx, getProject, id))
}

const listProjectsByUser = `-- name: ListProjectsByUser :many
SELECT id, nombre, contrato, contratante, contratista, encargado, id_usuario
FROM proyecto
WHERE id_usuario = $1
ORDER BY id ASC
`

func (q *Queries) ListProjectsByUser(ctx context.Context, userID int64) ([]Project, error) {
	rows, err := q.db.Query(ctx, listProjectsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Project
	for rows.Next() {
		i, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateProject = `-- name: UpdateProject :one
UPDATE proyecto
SET nombre = COALESCE($2, nombre),
    contrato = COALESCE($3, contrato),
    contratante = COALESCE($4, contratante),
    contratista = COALESCE($5, contratista),
    encargado = COALESCE($6, encargado)
WHERE id = $1
RETURNING id, nombre, contrato, contratante, contratista, encargado, id_usuario
`

type UpdateProjectParams struct {
	ID          int64
	Nombre      *string
	Contrato    *string
	Contratante *string
	Contratista *string
	Encargado   *string
}

func (q *Queries) UpdateProject(ctx context.Context, arg UpdateProjectParams) (Project, error) {
	row := q.db.QueryRow(ctx, updateProject, arg.ID, arg.Nombre, arg.Contrato, arg.Contratante, arg.Contratista, arg.Encargado)
	return scanProject(row)
}

const deleteProject = `-- name: DeleteProject :one
DELETE FROM proyecto
WHERE id = $1
RETURNING id
`

// DeleteProject removes the project; structures and their pipes go with it.
func (q *Queries) DeleteProject(ctx context.Context, id int64) error {
	var deleted int64
	return q.db.QueryRow(ctx, deleteProject, id).Scan(&deleted)
}

const getProjectOwner = `-- name: GetProjectOwner :one
SELECT id_usuario FROM proyecto WHERE id = $1
`

func (q *Queries) GetProjectOwner(ctx context.Context, id int64) (int64, error) {
	var owner int64
	err := q.db.QueryRow(ctx, getProjectOwner, id).Scan(&owner)
	return owner, err
}

func scanProject(row pgx.Row) (Project, error) {
	var i Project
	err := row.Scan(&i.ID, &i.Nombre, &i.Contrato, &i.Contratante, &i.Contratista, &i.Encargado, &i.IDUsuario)
	return i, err
}
