// cmd/tools/catalog-check/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"pv-query-router/internal/common/config"
	"pv-query-router/internal/common/logger"
	"pv-query-router/internal/tools/toolset"
	"pv-query-router/pkg/registry"
)

var catalogPath string

func main() {
	generateCmd := flag.NewFlagSet("generate", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	statusCmd := flag.NewFlagSet("status", flag.ExitOnError)

	version := generateCmd.String("version", "1.0.0", "Catalog version")
	nameStatus := statusCmd.String("name", "", "Tool name (e.g., query_policies)")
	valueStatus := statusCmd.String("value", "", "New status (active, disabled)")

	for _, fs := range []*flag.FlagSet{generateCmd, validateCmd, listCmd, statusCmd} {
		fs.StringVar(&catalogPath, "path", "configs/tool-catalog.json", "Path to catalog file")
	}

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		generateCmd.Parse(os.Args[2:])
		if err := generateCatalog(*version); err != nil {
			fmt.Printf("Error generating catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Catalog written to %s\n", catalogPath)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		catalog, err := registry.LoadCatalog(catalogPath)
		if err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Catalog validation passed. Found %d tools.\n", len(catalog.Tools))

	case "list":
		listCmd.Parse(os.Args[2:])
		catalog, err := registry.LoadCatalog(catalogPath)
		if err != nil {
			fmt.Printf("Error loading catalog: %v\n", err)
			os.Exit(1)
		}
		for _, t := range catalog.Tools {
			fmt.Printf("%-34s %-9s %-36s %s\n", t.Name, t.Status, t.Endpoint, t.FailurePrefix)
		}

	case "status":
		statusCmd.Parse(os.Args[2:])
		if *nameStatus == "" || *valueStatus == "" {
			fmt.Println("Error: name and value are required for status.")
			statusCmd.Usage()
			os.Exit(1)
		}
		if err := setStatus(*nameStatus, *valueStatus); err != nil {
			fmt.Printf("Error updating tool: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Set status of %s to %s\n", *nameStatus, *valueStatus)

	case "help":
		fallthrough
	default:
		help()
	}
}

// generateCatalog describes the built-in tools. Mock backends are used so no
// credentials are needed.
func generateCatalog(version string) error {
	cfg := &config.Config{
		Tools: config.ToolsConfig{
			UseMock: true,
			BaseURL: config.DefaultBaseURL,
			Knowledge: config.KnowledgeConfig{
				Source:   config.KnowledgeSourceAPI,
				MaxPages: 1,
				PageSize: 20,
			},
		},
	}
	r, err := toolset.NewRegistry(cfg, nil, nil, logger.NewNoOpLogger())
	if err != nil {
		return err
	}
	return registry.SaveCatalog(toolset.Catalog(r, version), catalogPath)
}

func setStatus(name, status string) error {
	if status != registry.StatusActive && status != registry.StatusDisabled {
		return fmt.Errorf("status must be %q or %q", registry.StatusActive, registry.StatusDisabled)
	}

	catalog, err := registry.LoadCatalog(catalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	entry, ok := catalog.Find(name)
	if !ok {
		return fmt.Errorf("tool %s not found", name)
	}
	entry.Status = status
	catalog.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return registry.SaveCatalog(catalog, catalogPath)
}

func help() {
	fmt.Print(`
Usage: catalog-check <command> [flags]

Commands:
  generate  Write the catalog of the built-in tools
  validate  Validate a catalog file against the catalog schema
  list      List the tools of a catalog file
  status    Set the status of one tool; the router server skips disabled
            tools when tools.catalog_path points at the catalog file
  help      Show this help message

Examples:
  catalog-check generate -path configs/tool-catalog.json
  catalog-check validate -path configs/tool-catalog.json
  catalog-check status -name query_policies -value disabled

Use 'catalog-check <command> -h' for more information about a command.
`, "\n")
}
