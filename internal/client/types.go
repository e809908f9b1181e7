package client

// Wire contracts of the backend API. They are decoded as-is; the client does not
// validate or transform them. Fields the backend adds later are ignored.

// FileUploadResponse is returned by POST /upload once a file became a table.
type FileUploadResponse struct {
	TableName string           `json:"table_name"`
	RowCount  int              `json:"row_count"`
	Columns   []string         `json:"columns"`
	Preview   []map[string]any `json:"preview"`
	Error     string           `json:"error,omitempty"`
}

// QueryRequest carries a natural language question.
type QueryRequest struct {
	Query       string `json:"query"`
	LLMProvider string `json:"llm_provider,omitempty"`
}

// QueryResponse holds the generated SQL and its result set.
type QueryResponse struct {
	SQL             string           `json:"sql"`
	Results         []map[string]any `json:"results"`
	Columns         []string         `json:"columns"`
	RowCount        int              `json:"row_count"`
	ExecutionTimeMs float64          `json:"execution_time_ms"`
	Error           string           `json:"error,omitempty"`
}

// TableSchema describes one table of the backend database.
type TableSchema struct {
	Columns  map[string]string `json:"columns"`
	RowCount int               `json:"row_count"`
}

// DatabaseSchemaResponse maps table names to their schema.
type DatabaseSchemaResponse struct {
	Tables map[string]TableSchema `json:"tables"`
	Error  string                 `json:"error,omitempty"`
}

// InsightsRequest selects what the backend should analyse.
type InsightsRequest struct {
	TableName  string `json:"table_name,omitempty"`
	ColumnName string `json:"column_name,omitempty"`
	Query      string `json:"query,omitempty"`
}

// InsightsResponse lists generated observations.
type InsightsResponse struct {
	Insights []string `json:"insights"`
	Error    string   `json:"error,omitempty"`
}

// HealthCheckResponse reports backend readiness.
type HealthCheckResponse struct {
	Status       string `json:"status"`
	Database     string `json:"database"`
	TablesLoaded int    `json:"tables_loaded,omitempty"`
}

// RandomQueryResponse holds a sample question for the loaded data.
type RandomQueryResponse struct {
	Query string `json:"query"`
	Error string `json:"error,omitempty"`
}
