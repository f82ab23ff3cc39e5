// pkg/registry/schema.go
package registry

type ToolRegistry struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"`
	Tools       []Tool `json:"tools"`
}

// Tool describes one tool. Name doubles as the job type of its worker.
type Tool struct {
	Name        string                 `json:"name"`
	SubAgent    string                 `json:"subAgent"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	ErrorCodes  []string               `json:"errorCodes"`
	Tags        []string               `json:"tags"`
}
