// cmd/tools/seed/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"

	"music-store-agent/internal/common/config"
	"music-store-agent/internal/common/database"
	"music-store-agent/internal/common/embedding"
	"music-store-agent/internal/common/logger"
	"music-store-agent/internal/concerts"
	"music-store-agent/internal/prompts"
	"music-store-agent/pkg/registry"
	"music-store-agent/seed"
)

func main() {
	promptsCmd := flag.NewFlagSet("prompts", flag.ExitOnError)
	concertsCmd := flag.NewFlagSet("concerts", flag.ExitOnError)
	catalogCmd := flag.NewFlagSet("catalog", flag.ExitOnError)
	registryCmd := flag.NewFlagSet("registry", flag.ExitOnError)

	// Prompts command flags
	promptsConfig := promptsCmd.String("config", "", "Config file (defaults to configs/config.yaml)")
	promptsPath := promptsCmd.String("path", "", "Prompt defaults JSON (defaults to the embedded set)")
	promptsForce := promptsCmd.Bool("force", false, "Overwrite prompts that already exist")

	// Concerts command flags
	concertsConfig := concertsCmd.String("config", "", "Config file (defaults to configs/config.yaml)")
	concertsPath := concertsCmd.String("path", "", "Concert dataset JSON (defaults to the embedded set)")
	concertsForce := concertsCmd.Bool("force", false, "Drop and rebuild an existing index")

	// Catalog command flags
	catalogConfig := catalogCmd.String("config", "", "Config file (defaults to configs/config.yaml)")
	catalogScript := catalogCmd.String("script", "", "SQL script to run (overrides database.sql.script_path)")

	// Registry command flags
	registryPath := registryCmd.String("path", "", "Tool registry JSON (defaults to the embedded registry)")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	log := logger.NewStructured("info", "console")
	ctx := context.Background()

	switch os.Args[1] {
	case "prompts":
		promptsCmd.Parse(os.Args[2:])
		cfg := mustLoadConfig(*promptsConfig)
		rdb := mustRedis(ctx, cfg)
		defer rdb.Close()

		written, err := seedPrompts(ctx, rdb.Client, *promptsPath, *promptsForce, log)
		if err != nil {
			fmt.Printf("Error seeding prompts: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d prompts\n", written)

	case "concerts":
		concertsCmd.Parse(os.Args[2:])
		cfg := mustLoadConfig(*concertsConfig)
		rdb := mustRedis(ctx, cfg)
		defer rdb.Close()

		var esClient *database.ElasticsearchClient
		if cfg.Search.Backend == config.SearchBackendElasticsearch {
			var err error
			if esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch); err != nil {
				fmt.Printf("Error connecting to elasticsearch: %v\n", err)
				os.Exit(1)
			}
		}

		embedder, err := embedding.NewOpenAIEmbedder(cfg.Embedding, nil)
		if err != nil {
			fmt.Printf("Error creating embedder: %v\n", err)
			os.Exit(1)
		}

		index, err := concerts.NewIndex(cfg.Search, rdb.Client, esRawClient(esClient))
		if err != nil {
			fmt.Printf("Error creating index: %v\n", err)
			os.Exit(1)
		}

		loaded, err := seedConcerts(ctx, index, embedder, *concertsPath, *concertsForce, log)
		if err != nil {
			fmt.Printf("Error seeding concerts: %v\n", err)
			os.Exit(1)
		}
		if loaded == 0 {
			fmt.Printf("Index %s already exists, use -force to rebuild it\n", index.Name())
			return
		}
		fmt.Printf("Loaded %d concerts into %s\n", loaded, index.Name())

	case "catalog":
		catalogCmd.Parse(os.Args[2:])
		cfg := mustLoadConfig(*catalogConfig)
		if err := seedCatalog(ctx, cfg.Database.SQL, *catalogScript); err != nil {
			fmt.Printf("Error loading catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Catalog script executed.")

	case "registry":
		registryCmd.Parse(os.Args[2:])
		reg, err := validateRegistry(*registryPath)
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		for _, t := range reg.Tools {
			fmt.Printf("  %-40s %s\n", t.Name, t.SubAgent)
		}
		fmt.Printf("Registry validation passed. Found %d tools.\n", len(reg.Tools))

	case "help":
		fallthrough
	default:
		help()
	}
}

func mustLoadConfig(path string) *config.Config {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func mustRedis(ctx context.Context, cfg *config.Config) *database.RedisClient {
	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err == nil {
		err = rdb.Ping(ctx)
	}
	if err != nil {
		fmt.Printf("Error connecting to redis: %v\n", err)
		os.Exit(1)
	}
	return rdb
}

func esRawClient(c *database.ElasticsearchClient) *elasticsearch.Client {
	if c == nil {
		return nil
	}
	return c.Client
}

// seedPrompts writes the prompt defaults and returns how many keys were written.
func seedPrompts(ctx context.Context, client redis.Cmdable, path string, force bool, log logger.Logger) (int, error) {
	defaults, err := prompts.ReadDefaults(path, seed.Prompts)
	if err != nil {
		return 0, err
	}
	return prompts.NewStore(client, log).Seed(ctx, defaults, force)
}

func seedConcerts(ctx context.Context, index concerts.Index, embedder embedding.Embedder, path string, force bool, log logger.Logger) (int, error) {
	dataset, err := concerts.ReadConcerts(path, seed.Concerts)
	if err != nil {
		return 0, err
	}
	return concerts.NewSeeder(index, embedder, log).Seed(ctx, dataset, force)
}

// seedCatalog runs the catalog script against the configured database. An
// in-memory sqlite database only lives as long as this process, so for sqlite
// this is a dry run of the startup load.
func seedCatalog(ctx context.Context, cfg config.SQLConfig, script string) error {
	client, err := database.NewSQL(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, config.GetDuration(cfg.ScriptTimeout)+10*time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	if script == "" && cfg.Driver == config.DriverSQLite {
		return client.Seed(ctx, cfg)
	}
	if script == "" {
		script = cfg.ScriptPath
	}
	if script == "" {
		return fmt.Errorf("%s needs -script or database.sql.script_path", cfg.Driver)
	}

	data, err := os.ReadFile(script)
	if err != nil {
		return fmt.Errorf("read sql script %s: %w", script, err)
	}
	return client.LoadScript(ctx, data)
}

// validateRegistry parses the registry and compiles every input schema.
func validateRegistry(path string) (*registry.ToolRegistry, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	if len(reg.Tools) == 0 {
		return nil, fmt.Errorf("registry contains no tools")
	}

	for _, tool := range reg.Tools {
		if tool.SubAgent == "" {
			return nil, fmt.Errorf("tool %s missing required field: SubAgent", tool.Name)
		}
		if tool.Description == "" {
			return nil, fmt.Errorf("tool %s missing required field: Description", tool.Name)
		}
	}

	if _, err := reg.Schemas(); err != nil {
		return nil, err
	}
	return reg, nil
}

func help() {
	fmt.Print(`
Usage: seed <command> [flags]

Commands:
  prompts   Write the default prompts to the key-value store
  concerts  Build the concert index and load the concert dataset
  catalog   Run the catalog SQL script against the configured database
  registry  Validate the tool registry
  help      Show this help message

Examples:
  seed prompts -force
  seed concerts -path data/concerts.json -force
  seed catalog -config configs/config.postgres.yaml -script Chinook_PostgreSql.sql
  seed registry -path pkg/registry/tools.json

Use 'seed <command> -h' for more information about a command.
`)
}
