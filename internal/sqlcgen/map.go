package sqlcgen

import "context"

const listStructureGeometries = `-- name: ListStructureGeometries :many
SELECT id, tipo, geometria
FROM estructura_hidraulica
WHERE id_proyecto = $1
ORDER BY id ASC
`

func (q *Queries) ListStructureGeometries(ctx context.Context, projectID int64) ([]StructureGeometry, error) {
	rows, err := q.db.Query(ctx, listStructureGeometries, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []StructureGeometry
	for rows.Next() {
		var i StructureGeometry
		if err := rows.Scan(&i.ID, &i.Tipo, &i.Geometria); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listPipeGeometries = `-- name: ListPipeGeometries :many
SELECT t.id, t.id_estructura_inicio, t.id_estructura_destino, t.geometria
FROM tuberia t
JOIN estructura_hidraulica e ON e.id = t.id_estructura_inicio
WHERE e.id_proyecto = $1
ORDER BY t.id ASC
`

// ListPipeGeometries returns pipes whose start structure is in the project.
func (q *Queries) ListPipeGeometries(ctx context.Context, projectID int64) ([]PipeGeometry, error) {
	rows, err := q.db.Query(ctx, listPipeGeometries, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []PipeGeometry
	for rows.Next() {
		var i PipeGeometry
		if err := rows.Scan(&i.ID, &i.IDEstructuraInicio, &i.IDEstructuraDestino, &i.Geometria); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
