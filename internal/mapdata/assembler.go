// Package mapdata reshapes a project's stored geometries into the coordinate
// arrays the map client renders.
package mapdata

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"inspectpozo/core-go/internal/geometry"
	"inspectpozo/core-go/internal/metrics"
	"inspectpozo/core-go/internal/sqlcgen"
)

// Source reads the raw geometry text for everything in a project. Pipes are
// attributed to the project of their start structure.
type Source interface {
	ListStructureGeometries(ctx context.Context, projectID int64) ([]sqlcgen.StructureGeometry, error)
	ListPipeGeometries(ctx context.Context, projectID int64) ([]sqlcgen.PipeGeometry, error)
}

type Payload struct {
	Structures []Structure `json:"structures"`
	Pipes      []Pipe      `json:"pipes"`
}

type Structure struct {
	ID   string  `json:"id"`
	Kind string  `json:"tipo"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type Pipe struct {
	ID      string       `json:"id"`
	StartID string       `json:"id_estructura_inicio"`
	EndID   string       `json:"id_estructura_destino"`
	Coords  [][2]float64 `json:"coords"` // [lon, lat] in storage order
	Length  float64      `json:"length_m"`
}

type Assembler struct {
	log     zerolog.Logger
	src     Source
	metrics *metrics.Metrics
}

func NewAssembler(log zerolog.Logger, src Source, m *metrics.Metrics) *Assembler {
	return &Assembler{log: log, src: src, metrics: m}
}

// Build returns a full snapshot of the project. Features whose geometry cannot
// be rendered are left out rather than failing the call.
func (a *Assembler) Build(ctx context.Context, projectID int64) (Payload, error) {
	var (
		structRows []sqlcgen.StructureGeometry
		pipeRows   []sqlcgen.PipeGeometry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := a.src.ListStructureGeometries(gctx, projectID)
		if err != nil {
			return fmt.Errorf("list structure geometries: %w", err)
		}
		structRows = rows
		return nil
	})
	g.Go(func() error {
		rows, err := a.src.ListPipeGeometries(gctx, projectID)
		if err != nil {
			return fmt.Errorf("list pipe geometries: %w", err)
		}
		pipeRows = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return Payload{}, err
	}

	out := Payload{
		Structures: make([]Structure, 0, len(structRows)),
		Pipes:      make([]Pipe, 0, len(pipeRows)),
	}

	skippedStructures := 0
	for _, row := range structRows {
		if row.Geometria == nil {
			skippedStructures++
			continue
		}
		p, err := geometry.ParsePoint(*row.Geometria)
		if err != nil {
			skippedStructures++
			a.log.Debug().Err(err).Int64("project_id", projectID).Str("structure_id", row.ID).Msg("structure geometry skipped")
			continue
		}
		out.Structures = append(out.Structures, Structure{
			ID:   row.ID,
			Kind: row.Tipo,
			Lat:  p.Lat(),
			Lon:  p.Lon(),
		})
	}

	skippedPipes := 0
	for _, row := range pipeRows {
		line := geometry.ParseLineString(row.Geometria)
		if len(line) == 0 {
			skippedPipes++
			a.log.Debug().Int64("project_id", projectID).Str("pipe_id", row.ID).Msg("pipe geometry skipped")
			continue
		}
		out.Pipes = append(out.Pipes, Pipe{
			ID:      row.ID,
			StartID: row.IDEstructuraInicio,
			EndID:   row.IDEstructuraDestino,
			Coords:  line.Coords(),
			Length:  line.LengthMeters(),
		})
	}

	a.metrics.AddMapFeaturesSkipped("structure", skippedStructures)
	a.metrics.AddMapFeaturesSkipped("pipe", skippedPipes)

	return out, nil
}
