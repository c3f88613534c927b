package postgres

// Config holds PostgreSQL connection settings.
type Config struct {
	URL string
	// Schemas limits routine listing; empty means every non-system schema.
	Schemas []string
}

// RoutineKind distinguishes functions from procedures (pg_proc.prokind).
type RoutineKind string

const (
	KindFunction  RoutineKind = "f"
	KindProcedure RoutineKind = "p"
)

// RoutineInfo describes a user-defined function or procedure from pg_proc.
type RoutineInfo struct {
	Schema   string      `json:"schema"`
	Name     string      `json:"name"`
	Kind     RoutineKind `json:"kind"`
	Language string      `json:"language"`
	Args     string      `json:"args"` // pg_get_function_identity_arguments
}

// QualifiedName returns schema.name.
func (r RoutineInfo) QualifiedName() string {
	return r.Schema + "." + r.Name
}
