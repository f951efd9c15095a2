package model

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type UploadResponse struct {
	PhotoPath string `json:"photoPath"`
}

type VisualizationResult struct {
	SQLQuery            string           `json:"sqlQuery"`
	ChartType           string           `json:"chartType"`
	XAxis               string           `json:"xAxis"`
	YAxis               string           `json:"yAxis"`
	Data                []map[string]any `json:"data"`
	MetabaseQuestionURL string           `json:"metabaseQuestionUrl,omitempty"`
	MetabaseEmbedURL    string           `json:"metabaseEmbedUrl,omitempty"`
}

// SchemaTable mirrors the JSON shape produced by the catalog introspection
// query: one entry per table in the requested schema.
type SchemaTable struct {
	Schema      string             `json:"schema"`
	Table       string             `json:"table"`
	Columns     []SchemaColumn     `json:"columns"`
	PrimaryKey  []string           `json:"primary_key"`
	ForeignKeys []SchemaForeignKey `json:"foreign_keys"`
}

type SchemaColumn struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

type SchemaForeignKey struct {
	Name       string          `json:"name"`
	Columns    []string        `json:"columns"`
	References SchemaReference `json:"references"`
}

type SchemaReference struct {
	Schema  string   `json:"schema"`
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
}
