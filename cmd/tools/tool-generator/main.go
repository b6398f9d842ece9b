// cmd/tools/tool-generator/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"pv-query-router/internal/common/validation"
	"pv-query-router/pkg/registry"
)

// ToolData holds data for templates
type ToolData struct {
	Name          string
	Dir           string
	PackageName   string
	Description   string
	FailurePrefix string
	Path          string
	Params        []string
}

// dirFromName maps query_power_generation_duration to power-generation-duration.
func dirFromName(name string) string {
	return strings.ReplaceAll(strings.TrimPrefix(name, "query_"), "_", "-")
}

// upperFirst makes the first character uppercase
func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// fieldName maps snake_case to an exported Go name.
func fieldName(param string) string {
	parts := strings.Split(param, "_")
	for i, p := range parts {
		parts[i] = upperFirst(p)
	}
	return strings.Join(parts, "")
}

// generateParamFields generates the Params struct fields, one string field per
// query parameter.
func generateParamFields(params []string) string {
	fields := make([]string, 0, len(params))
	for _, p := range params {
		fields = append(fields, fmt.Sprintf("\t%s string `json:\"%s,omitempty\"`", fieldName(p), p))
	}
	return strings.Join(fields, "\n")
}

const configTemplate = `// internal/tools/{{ .Dir }}/config.go
package {{ .PackageName }}

import "pv-query-router/internal/tools"

const Path = "{{ .Path }}"

type Config struct {
	tools.Config
	Path string
}

func LoadConfig(base tools.Config) *Config {
	return &Config{
		Config: base,
		Path:   Path,
	}
}
`

const modelsTemplate = `// internal/tools/{{ .Dir }}/models.go
package {{ .PackageName }}

type Input struct {
	Query string ` + "`json:\"query\"`" + `
}

type Params struct {
{{ paramFields .Params }}
}

// Empty reports whether no parameter was found.
func (p Params) Empty() bool {
	return {{ range $i, $p := .Params }}{{ if $i }} && {{ end }}p.{{ fieldName $p }} == ""{{ end }}
}
`

const extractorTemplate = `// internal/tools/{{ .Dir }}/extractor.go
package {{ .PackageName }}

import "regexp"

// TODO: replace the placeholder city pattern with one per parameter.
var patterns = map[string]*regexp.Regexp{
{{- range .Params }}
	"{{ . }}": regexp.MustCompile(` + "`([^的在查询\\s]+市)`" + `),
{{- end }}
}

// Extract parses the query parameters from query.
func Extract(query string) Params {
	find := func(key string) string {
		if m := patterns[key].FindStringSubmatch(query); m != nil {
			return m[1]
		}
		return ""
	}
	return Params{
{{- range .Params }}
		{{ fieldName . }}: find("{{ . }}"),
{{- end }}
	}
}
`

const mockTemplate = `// internal/tools/{{ .Dir }}/mock.go
package {{ .PackageName }}

import (
	"fmt"
	"net/url"
)

func mockResponse(path string, _ url.Values) (interface{}, error) {
	if path != Path {
		return nil, fmt.Errorf("no mock for %s", path)
	}
	return map[string]interface{}{
		"code":    0,
		"message": "查询成功",
		"data":    "mock",
	}, nil
}
`

const handlerTemplate = `// internal/tools/{{ .Dir }}/handler.go
package {{ .PackageName }}

import (
	"context"
	"net/url"

	apperrors "pv-query-router/internal/common/errors"
	httpc "pv-query-router/internal/common/http"
	"pv-query-router/internal/common/logger"
	"pv-query-router/internal/models"
	"pv-query-router/internal/tools"
)

const (
	Name          = models.ToolName("{{ .Name }}")
	FailurePrefix = "{{ .FailurePrefix }}"
	Description   = "{{ .Description }}"
)

type Handler struct {
	config  *Config
	backend httpc.Backend
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	headers := map[string]string{"Authorization": config.APIToken}
	return NewHandlerWithBackend(config, tools.NewBackend(config.Config, headers, mockResponse, log), log)
}

func NewHandlerWithBackend(config *Config, backend httpc.Backend, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{
		"tool": string(Name),
	})
	return &Handler{
		config:  config,
		backend: backend,
		errors:  apperrors.NewErrorHandler(log),
		logger:  log,
	}
}

func (h *Handler) Name() models.ToolName { return Name }
func (h *Handler) Description() string   { return Description }
func (h *Handler) FailurePrefix() string { return FailurePrefix }

func (h *Handler) Query(ctx context.Context, query string) *models.ToolResult {
	return h.Execute(ctx, &Input{Query: query})
}

func (h *Handler) Run(ctx context.Context, query string) string {
	return h.Query(ctx, query).Message
}

func (h *Handler) Execute(ctx context.Context, input *Input) *models.ToolResult {
	message, env, err := h.execute(ctx, input)
	if err != nil {
		return tools.Failed(Name, FailurePrefix, err, env, h.errors)
	}
	return tools.Succeeded(Name, message, env)
}

func (h *Handler) execute(ctx context.Context, input *Input) (string, *httpc.Envelope, error) {
	params := Extract(input.Query)
	if params.Empty() {
		return "", nil, apperrors.NewExtractionFailedError("params", "无法从查询中识别出查询条件。")
	}

	q := url.Values{}
{{- range .Params }}
	q.Set("{{ . }}", params.{{ fieldName . }})
{{- end }}

	env, err := h.backend.Get(ctx, h.config.Path, q)
	if err != nil {
		return "", nil, err
	}
	if err := env.Err(h.config.Path); err != nil {
		return "", env, err
	}

	raw, ok := env.Field("data")
	if !ok {
		return "", env, apperrors.NewFormatFailedError("响应中缺少data字段")
	}
	return "查询成功：" + tools.Text(raw), env, nil
}
`

const testTemplate = `// internal/tools/{{ .Dir }}/handler_test.go
package {{ .PackageName }}

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"pv-query-router/internal/common/logger"
	"pv-query-router/internal/tools"
)

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(tools.Config{UseMock: true}), logger.NewTestLogger(t))
}

func TestExecute_NoParams(t *testing.T) {
	message := createTestHandler(t).Run(context.Background(), "你好")
	assert.True(t, tools.IsFailure(message, FailurePrefix), message)
}
`

func main() {
	name := flag.String("name", "", "Tool name (e.g., query_grid_connection)")
	outputDir := flag.String("output", "./internal/tools/", "Output directory for the generated tool package")
	catalogPath := flag.String("catalog", "", "Optional catalog file to take description and failure prefix from")
	description := flag.String("description", "", "Description shown to the reasoning model")
	prefix := flag.String("prefix", "", "Failure prefix (e.g., 并网查询失败)")
	path := flag.String("path", "", "Remote API path (e.g., hub/grid/query/)")
	params := flag.String("params", "city", "Comma-separated query parameter names")
	flag.Parse()

	if *name == "" || *path == "" {
		fmt.Println("Usage: tool-generator --name <tool_name> --path <api path> [--params a,b] [--prefix <text>] [--description <text>] [--catalog <file>]")
		fmt.Println("\nExample:")
		fmt.Println("  go run cmd/tools/tool-generator/main.go --name query_grid_connection --path hub/grid/query/ --params city --prefix 并网查询失败")
		os.Exit(1)
	}
	if err := validation.ValidateToolName(*name); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	data := ToolData{
		Name:          *name,
		Dir:           dirFromName(*name),
		Description:   *description,
		FailurePrefix: *prefix,
		Path:          *path,
	}
	data.PackageName = strings.ReplaceAll(data.Dir, "-", "")
	for _, p := range strings.Split(*params, ",") {
		if p = strings.TrimSpace(p); p != "" {
			data.Params = append(data.Params, p)
		}
	}
	if len(data.Params) == 0 {
		fmt.Println("Error: at least one parameter is required.")
		os.Exit(1)
	}

	if *catalogPath != "" {
		catalog, err := registry.LoadCatalog(*catalogPath)
		if err != nil {
			fmt.Printf("Error loading catalog from %s: %v\n", *catalogPath, err)
			os.Exit(1)
		}
		if entry, ok := catalog.Find(*name); ok {
			if data.Description == "" {
				data.Description = entry.Description
			}
			if data.FailurePrefix == "" {
				data.FailurePrefix = entry.FailurePrefix
			}
		}
	}
	if data.FailurePrefix == "" {
		fmt.Println("Error: a failure prefix is required (flag or catalog entry).")
		os.Exit(1)
	}

	toolDir := filepath.Join(*outputDir, data.Dir)
	if err := os.MkdirAll(toolDir, 0755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	funcMap := template.FuncMap{
		"paramFields": generateParamFields,
		"fieldName":   fieldName,
	}

	templates := map[string]string{
		"config.go":       configTemplate,
		"models.go":       modelsTemplate,
		"extractor.go":    extractorTemplate,
		"mock.go":         mockTemplate,
		"handler.go":      handlerTemplate,
		"handler_test.go": testTemplate,
	}

	for filename, tmplContent := range templates {
		tmpl, err := template.New(filename).Funcs(funcMap).Parse(tmplContent)
		if err != nil {
			fmt.Printf("Error parsing template %s: %v\n", filename, err)
			os.Exit(1)
		}

		filePath := filepath.Join(toolDir, filename)
		if _, err := os.Stat(filePath); err == nil {
			fmt.Printf("Skipping %s: file exists\n", filePath)
			continue
		}

		file, err := os.Create(filePath)
		if err != nil {
			fmt.Printf("Error creating file %s: %v\n", filePath, err)
			os.Exit(1)
		}
		err = tmpl.Execute(file, data)
		file.Close()
		if err != nil {
			fmt.Printf("Error executing template %s: %v\n", filename, err)
			os.Exit(1)
		}
		fmt.Printf("Generated %s\n", filePath)
	}

	fmt.Printf("\nTool package %s generated in %s\n", data.PackageName, toolDir)
	fmt.Println("Next: register it in internal/tools/toolset and add its endpoint to toolset.Endpoints.")
}
