package sqlcgen

type User struct {
	ID          int64
	Usuario     string
	Nombre      string
	Contrasenia string // bcrypt hash
}

type Project struct {
	ID          int64
	Nombre      string
	Contrato    *string
	Contratante *string
	Contratista *string
	Encargado   *string
	IDUsuario   int64
}

// Structure is a row of estructura_hidraulica.
type Structure struct {
	ID        string
	Tipo      string
	Geometria *string
	StructureAttrs
	IDProyecto int64
}

// StructureAttrs are the inspection columns of a structure. Dates and times
// travel as their Postgres text form (YYYY-MM-DD, HH:MM:SS).
type StructureAttrs struct {
	FechaInspeccion *string
	HoraInspeccion  *string
	ClimaInspeccion *string
	TipoVia         *string
	TipoSistema     *string
	Material        *string

	ConoReduccion   *bool
	AlturaCono      *float64
	ProfundidadPozo *float64
	DiametroCamara  *float64

	Sedimentacion          *bool
	CoberturaTuberiaSalida *bool
	DepositoPredomina      *string
	FlujoRepresado         *bool
	NivelCubreCotasalida   *bool
	CotaEstructura         *float64
	CondicionesInvestiga   *string
	Observaciones          *string

	TipoSumidero     *string
	AnchoSumidero    *float64
	LargoSumidero    *float64
	AlturaSumidero   *float64
	AnchoRejilla     *float64
	LargoRejilla     *float64
	AlturaRejilla    *float64
	MaterialRejilla  *string
	MaterialSumidero *string
}

type Pipe struct {
	ID        string
	Geometria string

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

	IDEstructuraInicio  string
	IDEstructuraDestino string
}

// StructureEndpoint is what pipe creation needs to know about each end.
type StructureEndpoint struct {
	ID             string
	Geometria      *string
	CotaEstructura *float64
	IDProyecto     int64
}

type StructureGeometry struct {
	ID        string
	Tipo      string
	Geometria *string
}

type PipeGeometry struct {
	ID                  string
	IDEstructuraInicio  string
	IDEstructuraDestino string
	Geometria           string
}
