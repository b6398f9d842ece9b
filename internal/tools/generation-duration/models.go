// internal/tools/generation-duration/models.go
package generationduration

type Input struct {
	Query string `json:"query"`
}

type Params struct {
	City string `json:"city"`
}
