// internal/workers/prompt/get-prompt/models.go
package getprompt

type Input struct {
	Name string `json:"name"`
}

type Output struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}
