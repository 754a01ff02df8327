package sqlcgen

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const structureColumns = `id, tipo, geometria,
       fecha_inspeccion::text, hora_inspeccion::text, clima_inspeccion, tipo_via, tipo_sistema, material,
       cono_reduccion, altura_cono, profundidad_pozo, diametro_camara,
       sedimentacion, cobertura_tuberia_salida, deposito_predomina, flujo_represado, nivel_cubre_cotasalida,
       cota_estructura, condiciones_investiga, observaciones,
       tipo_sumidero, ancho_sumidero, largo_sumidero, altura_sumidero,
       ancho_rejilla, largo_rejilla, altura_rejilla, material_rejilla, material_sumidero,
       id_proyecto`

const createStructure = `-- name: CreateStructure :one
INSERT INTO estructura_hidraulica (
  id, tipo, geometria,
  fecha_inspeccion, hora_inspeccion, clima_inspeccion, tipo_via, tipo_sistema, material,
  cono_reduccion, altura_cono, profundidad_pozo, diametro_camara,
  sedimentacion, cobertura_tuberia_salida, deposito_predomina, flujo_represado, nivel_cubre_cotasalida,
  cota_estructura, condiciones_investiga, observaciones,
  tipo_sumidero, ancho_sumidero, largo_sumidero, altura_sumidero,
  ancho_rejilla, largo_rejilla, altura_rejilla, material_rejilla, material_sumidero,
  id_proyecto
)
VALUES (
  $1, $2, $3,
  $4::text::date, $5::text::time, $6, $7, $8, $9,
  $10, $11, $12, $13,
  $14, $15, $16, $17, $18,
  $19, $20, $21,
  $22, $23, $24, $25,
  $26, $27, $28, $29, $30,
  $31
)
RETURNING ` + structureColumns + `
`

// CreateStructure inserts a structure. A duplicate id surfaces as a
// unique_violation.
func (q *Queries) CreateStructure(ctx context.Context, arg Structure) (Structure, error) {
	row := q.db.QueryRow(ctx, createStructure,
		arg.ID, arg.Tipo, arg.Geometria,
		arg.FechaInspeccion, arg.HoraInspeccion, arg.ClimaInspeccion, arg.TipoVia, arg.TipoSistema, arg.Material,
		arg.ConoReduccion, arg.AlturaCono, arg.ProfundidadPozo, arg.DiametroCamara,
		arg.Sedimentacion, arg.CoberturaTuberiaSalida, arg.DepositoPredomina, arg.FlujoRepresado, arg.NivelCubreCotasalida,
		arg.CotaEstructura, arg.CondicionesInvestiga, arg.Observaciones,
		arg.TipoSumidero, arg.AnchoSumidero, arg.LargoSumidero, arg.AlturaSumidero,
		arg.AnchoRejilla, arg.LargoRejilla, arg.AlturaRejilla, arg.MaterialRejilla, arg.MaterialSumidero,
		arg.IDProyecto,
	)
	return scanStructure(row)
}

const getStructure = `-- name: GetStructure :one
SELECT ` + structureColumns + `
FROM estructura_hidraulica
WHERE id = $1
`

func (q *Queries) GetStructure(ctx context.Context, id string) (Structure, error) {
	return scanStructure(q.db.QueryRow(ctx, getStructure, id))
}

const listStructuresByProject = `-- name: ListStructuresByProject :many
SELECT ` + structureColumns + `
FROM estructura_hidraulica
WHERE id_proyecto = $1
ORDER BY id ASC
`

func (q *Queries) ListStructuresByProject(ctx context.Context, projectID int64) ([]Structure, error) {
	rows, err := q.db.Query(ctx, listStructuresByProject, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Structure
	for rows.Next() {
		i, err := scanStructure(rows)
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

const updateStructure = `-- name: UpdateStructure :one
UPDATE estructura_hidraulica
SET tipo = COALESCE($2, tipo),
    geometria = COALESCE($3, geometria),
    fecha_inspeccion = COALESCE($4::text::date, fecha_inspeccion),
    hora_inspeccion = COALESCE($5::text::time, hora_inspeccion),
    clima_inspeccion = COALESCE($6, clima_inspeccion),
    tipo_via = COALESCE($7, tipo_via),
    tipo_sistema = COALESCE($8, tipo_sistema),
    material = COALESCE($9, material),
    cono_reduccion = COALESCE($10, cono_reduccion),
    altura_cono = COALESCE($11, altura_cono),
    profundidad_pozo = COALESCE($12, profundidad_pozo),
    diametro_camara = COALESCE($13, diametro_camara),
    sedimentacion = COALESCE($14, sedimentacion),
    cobertura_tuberia_salida = COALESCE($15, cobertura_tuberia_salida),
    deposito_predomina = COALESCE($16, deposito_predomina),
    flujo_represado = COALESCE($17, flujo_represado),
    nivel_cubre_cotasalida = COALESCE($18, nivel_cubre_cotasalida),
    cota_estructura = COALESCE($19, cota_estructura),
    condiciones_investiga = COALESCE($20, condiciones_investiga),
    observaciones = COALESCE($21, observaciones),
    tipo_sumidero = COALESCE($22, tipo_sumidero),
    ancho_sumidero = COALESCE($23, ancho_sumidero),
    largo_sumidero = COALESCE($24, largo_sumidero),
    altura_sumidero = COALESCE($25, altura_sumidero),
    ancho_rejilla = COALESCE($26, ancho_rejilla),
    largo_rejilla = COALESCE($27, largo_rejilla),
    altura_rejilla = COALESCE($28, altura_rejilla),
    material_rejilla = COALESCE($29, material_rejilla),
    material_sumidero = COALESCE($30, material_sumidero),
    id_proyecto = COALESCE($31, id_proyecto)
WHERE id = $1
RETURNING ` + structureColumns + `
`

// UpdateStructureParams leaves a column untouched when its field is nil. The
// identifier is never rewritten.
type UpdateStructureParams struct {
	ID        string
	Tipo      *string
	Geometria *string
	StructureAttrs
	IDProyecto *int64
}

func (q *Queries) UpdateStructure(ctx context.Context, arg UpdateStructureParams) (Structure, error) {
	row := q.db.QueryRow(ctx, updateStructure,
		arg.ID, arg.Tipo, arg.Geometria,
		arg.FechaInspeccion, arg.HoraInspeccion, arg.ClimaInspeccion, arg.TipoVia, arg.TipoSistema, arg.Material,
		arg.ConoReduccion, arg.AlturaCono, arg.ProfundidadPozo, arg.DiametroCamara,
		arg.Sedimentacion, arg.CoberturaTuberiaSalida, arg.DepositoPredomina, arg.FlujoRepresado, arg.NivelCubreCotasalida,
		arg.CotaEstructura, arg.CondicionesInvestiga, arg.Observaciones,
		arg.TipoSumidero, arg.AnchoSumidero, arg.LargoSumidero, arg.AlturaSumidero,
		arg.AnchoRejilla, arg.LargoRejilla, arg.AlturaRejilla, arg.MaterialRejilla, arg.MaterialSumidero,
		arg.IDProyecto,
	)
	return scanStructure(row)
}

const deleteStructure = `-- name: DeleteStructure :one
DELETE FROM estructura_hidraulica
WHERE id = $1
RETURNING id
`

// DeleteStructure removes the structure and every pipe that starts or ends at it.
func (q *Queries) DeleteStructure(ctx context.Context, id string) error {
	var deleted string
	return q.db.QueryRow(ctx, deleteStructure, id).Scan(&deleted)
}

const getStructureOwner = `-- name: GetStructureOwner :one
SELECT p.id_usuario
FROM estructura_hidraulica e
JOIN proyecto p ON p.id = e.id_proyecto
WHERE e.id = $1
`

func (q *Queries) GetStructureOwner(ctx context.Context, id string) (int64, error) {
	var owner int64
	err := q.db.QueryRow(ctx, getStructureOwner, id).Scan(&owner)
	return owner, err
}

const getStructureEndpoint = `-- name: GetStructureEndpoint :one
SELECT id, geometria, cota_estructura, id_proyecto
FROM estructura_hidraulica
WHERE id = $1
`

func (q *Queries) GetStructureEndpoint(ctx context.Context, id string) (StructureEndpoint, error) {
	var i StructureEndpoint
	err := q.db.QueryRow(ctx, getStructureEndpoint, id).Scan(&i.ID, &i.Geometria, &i.CotaEstructura, &i.IDProyecto)
	return i, err
}

const listStructureIDsWithPrefix = `-- name: ListStructureIDsWithPrefix :many
SELECT id FROM estructura_hidraulica WHERE id ILIKE $1 || '%'
`

func (q *Queries) ListStructureIDsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	return q.listIDs(ctx, listStructureIDsWithPrefix, prefix)
}

func (q *Queries) listIDs(ctx context.Context, sql, prefix string) ([]string, error) {
	rows, err := q.db.Query(ctx, sql, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanStructure(row pgx.Row) (Structure, error) {
	var i Structure
	err := row.Scan(
		&i.ID, &i.Tipo, &i.Geometria,
		&i.FechaInspeccion, &i.HoraInspeccion, &i.ClimaInspeccion, &i.TipoVia, &i.TipoSistema, &i.Material,
		&i.ConoReduccion, &i.AlturaCono, &i.ProfundidadPozo, &i.DiametroCamara,
		&i.Sedimentacion, &i.CoberturaTuberiaSalida, &i.DepositoPredomina, &i.FlujoRepresado, &i.NivelCubreCotasalida,
		&i.CotaEstructura, &i.CondicionesInvestiga, &i.Observaciones,
		&i.TipoSumidero, &i.AnchoSumidero, &i.LargoSumidero, &i.AlturaSumidero,
		&i.AnchoRejilla, &i.LargoRejilla, &i.AlturaRejilla, &i.MaterialRejilla, &i.MaterialSumidero,
		&i.IDProyecto,
	)
	return i, err
}
