package main

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/crmkit/datagrid"
	"github.com/crmkit/datagrid/database/recordsource"
)

type Config struct {
	Application struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
		Lang    string `yaml:"lang"`
	} `yaml:"application"`

	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Database string `yaml:"database"`
		Schema   string `yaml:"schema"`
		MaxConns int    `yaml:"max_connections"`
		TTL      string `yaml:"snapshot_ttl"`
	} `yaml:"database"`

	Catalog struct {
		Path string `yaml:"path"`
	} `yaml:"catalog"`
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load() // .env is optional outside development

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, err
	}

	// Expand env vars in YAML
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Name}}</title></head>
<body>
  <h1>{{.Name}} <small>{{.Version}}</small></h1>
  <p>Grid endpoint: <a href="/api/grid">/api/grid</a></p>
  <p>CSV export: <a href="/api/grid?format=csv">/api/grid?format=csv</a></p>
</body>
</html>`))

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ttl := 5 * time.Minute
	if cfg.Database.TTL != "" {
		if d, err := time.ParseDuration(cfg.Database.TTL); err == nil {
			ttl = d
		}
	}
	maxConns := cfg.Database.MaxConns
	if maxConns <= 0 {
		maxConns = 10
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable search_path=%s,public",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User,
		cfg.Database.Password, cfg.Database.Database, cfg.Database.Schema)

	src, err := recordsource.Open(connStr, maxConns, ttl, logger)
	if err != nil {
		logger.Error("failed to open record source", "error", err)
		os.Exit(1)
	}
	defer src.Close()

	catData, err := os.ReadFile(cfg.Catalog.Path)
	if err != nil {
		logger.Error("failed to read catalog", "path", cfg.Catalog.Path, "error", err)
		os.Exit(1)
	}

	lang := cfg.Application.Lang
	if lang == "" {
		lang = "en"
	}

	table, cols, _, err := datagrid.ColumnsFromCatalog(catData, lang)
	if err != nil {
		logger.Error("failed to build columns from catalog", "error", err)
		os.Exit(1)
	}

	fields := make([]string, len(cols))
	for i, c := range cols {
		fields[i] = c.Key
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	snap, err := src.Snapshot(ctx, table, fields)
	cancel()
	if err != nil {
		logger.Error("failed to load snapshot", "table", table, "error", err)
		os.Exit(1)
	}

	grid, err := datagrid.GridFromCatalog(catData, lang, snap.Records)
	if err != nil {
		logger.Error("failed to build grid", "error", err)
		os.Exit(1)
	}
	handler := datagrid.NewHandler(grid, cfg.Application.Name)
	handler.Log = logger

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		indexTmpl.Execute(w, map[string]string{
			"Name":    cfg.Application.Name,
			"Version": cfg.Application.Version,
		})
	})
	mux.Handle("/api/grid", handler)

	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}
	logger.Info("listening", "port", port, "table", table, "rows", len(snap.Records))
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
