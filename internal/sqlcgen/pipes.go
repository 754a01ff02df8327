package sqlcgen

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const pipeColumns = `id, geometria, diametro, material, flujo, estado, sedimento,
       cota_clave_inicio, cota_batea_inicio, profundidad_clave_inicio, profundidad_batea_inicio,
       cota_clave_destino, cota_batea_destino, profundidad_clave_destino, profundidad_batea_destino,
       grados, observaciones, id_estructura_inicio, id_estructura_destino`

const createPipe = `-- name: CreatePipe :one
INSERT INTO tuberia (
  id, geometria, diametro, material, flujo, estado, sedimento,
  cota_clave_inicio, cota_batea_inicio, profundidad_clave_inicio, profundidad_batea_inicio,
  cota_clave_destino, cota_batea_destino, profundidad_clave_destino, profundidad_batea_destino,
  grados, observaciones, id_estructura_inicio, id_estructura_destino
)
VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, false), $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
RETURNING ` + pipeColumns + `
`

func (q *Queries) CreatePipe(ctx context.Context, arg Pipe) (Pipe, error) {
	row := q.db.QueryRow(ctx, createPipe,
		arg.ID, arg.Geometria, arg.Diametro, arg.Material, arg.Flujo, arg.Estado, arg.Sedimento,
		arg.CotaClaveInicio, arg.CotaBateaInicio, arg.ProfundidadClaveInicio, arg.ProfundidadBateaInicio,
		arg.CotaClaveDestino, arg.CotaBateaDestino, arg.ProfundidadClaveDestino, arg.ProfundidadBateaDestino,
		arg.Grados, arg.Observaciones, arg.IDEstructuraInicio, arg.IDEstructuraDestino,
	)
	return scanPipe(row)
}

const getPipe = `-- name: GetPipe :one
SELECT ` + pipeColumns + `
FROM tuberia
WHERE id = $1
`

func (q *Queries) GetPipe(ctx context.Context, id string) (Pipe, error) {
	return scanPipe(q.db.QueryRow(ctx, getPipe, id))
}

const listPipesByStructure = `-- name: ListPipesByStructure :many
SELECT ` + pipeColumns + `
FROM tuberia
WHERE id_estructura_inicio = $1 OR id_estructura_destino = $1
ORDER BY id ASC
`

func (q *Queries) ListPipesByStructure(ctx context.Context, structureID string) ([]Pipe, error) {
	rows, err := q.db.Query(ctx, listPipesByStructure, structureID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Pipe
	for rows.Next() {
		i, err := scanPipe(rows)
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

const updatePipe = `-- name: UpdatePipe :one
UPDATE tuberia
SET diametro = COALESCE($2, diametro),
    material = COALESCE($3, material),
    flujo = COALESCE($4, flujo),
    estado = COALESCE($5, estado),
    sedimento = COALESCE($6, sedimento),
    cota_clave_inicio = COALESCE($7, cota_clave_inicio),
    cota_batea_inicio = COALESCE($8, cota_batea_inicio),
    profundidad_clave_inicio = COALESCE($9, profundidad_clave_inicio),
    profundidad_batea_inicio = COALESCE($10, profundidad_batea_inicio),
    cota_clave_destino = COALESCE($11, cota_clave_destino),
    cota_batea_destino = COALESCE($12, cota_batea_destino),
    profundidad_clave_destino = COALESCE($13, profundidad_clave_destino),
    profundidad_batea_destino = COALESCE($14, profundidad_batea_destino),
    grados = COALESCE($15, grados),
    observaciones = COALESCE($16, observaciones)
WHERE id = $1
RETURNING ` + pipeColumns + `
`

// UpdatePipeParams covers the descriptive columns only; geometry and the two
// endpoint references are fixed at creation.
type UpdatePipeParams struct {
	ID        string
	Diametro  *float64
	Material  *string
	Flujo     *bool
	Estado    *string
	Sedimento *bool

	CotaClaveInicio        *float64
	CotaBateaInicio        *float64
	ProfundidadClaveInicio *float64
	ProfundidadBateaInicio *float64

	CotaClaveDestino        *float64
	CotaBateaDestino        *float64
	ProfundidadClaveDestino *float64
	ProfundidadBateaDestino *float64

	Grados        *float64
	Observaciones *string
}

func (q *Queries) UpdatePipe(ctx context.Context, arg UpdatePipeParams) (Pipe, error) {
	row := q.db.QueryRow(ctx, updatePipe,
		arg.ID, arg.Diametro, arg.Material, arg.Flujo, arg.Estado, arg.Sedimento,
		arg.CotaClaveInicio, arg.CotaBateaInicio, arg.ProfundidadClaveInicio, arg.ProfundidadBateaInicio,
		arg.CotaClaveDestino, arg.CotaBateaDestino, arg.ProfundidadClaveDestino, arg.ProfundidadBateaDestino,
		arg.Grados, arg.Observaciones,
	)
	return scanPipe(row)
}

const deletePipe = `-- name: DeletePipe :one
DELETE FROM tuberia
WHERE id = $1
RETURNING id
`

func (q *Queries) DeletePipe(ctx context.Context, id string) error {
	var deleted string
	return q.db.QueryRow(ctx, deletePipe, id).Scan(&deleted)
}

const getPipeOwner = `-- name: GetPipeOwner :one
SELECT p.id_usuario
FROM tuberia t
JOIN estructura_hidraulica e ON e.id = t.id_estructura_inicio
JOIN proyecto p ON p.id = e.id_proyecto
WHERE t.id = $1
`

// GetPipeOwner resolves ownership through the start structure's project.
func (q *Queries) GetPipeOwner(ctx context.Context, id string) (int64, error) {
	var owner int64
	err := q.db.QueryRow(ctx, getPipeOwner, id).Scan(&owner)
	return owner, err
}

const listPipeIDsWithPrefix = `-- name: ListPipeIDsWithPrefix :many
SELECT id FROM tuberia WHERE id ILIKE $1 || '%'
`

func (q *Queries) ListPipeIDsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	return q.listIDs(ctx, listPipeIDsWithPrefix, prefix)
}

func scanPipe(row pgx.Row) (Pipe, error) {
	var i Pipe
	err := row.Scan(
		&i.ID, &i.Geometria, &i.Diametro, &i.Material, &i.Flujo, &i.Estado, &i.Sedimento,
		&i.CotaClaveInicio, &i.CotaBateaInicio, &i.ProfundidadClaveInicio, &i.ProfundidadBateaInicio,
		&i.CotaClaveDestino, &i.CotaBateaDestino, &i.ProfundidadClaveDestino, &i.ProfundidadBateaDestino,
		&i.Grados, &i.Observaciones, &i.IDEstructuraInicio, &i.IDEstructuraDestino,
	)
	return i, err
}
