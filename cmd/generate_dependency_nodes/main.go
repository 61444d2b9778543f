package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/athapong/depnode/pkg/annotation"
	"github.com/athapong/depnode/pkg/config"
	"github.com/athapong/depnode/pkg/depnode"
	"github.com/athapong/depnode/pkg/pipeline"
	"github.com/athapong/depnode/pkg/processors"
	"github.com/athapong/depnode/pkg/storage"
	"github.com/athapong/depnode/pkg/visualizer"
	"github.com/google/uuid"
	"github.com/gosuri/uiprogress"
	"github.com/sirupsen/logrus"
)

var (
	inputPath       = flag.String("input", "", "Input file or directory of documents")
	format          = flag.String("format", "", "Input format (annotated, spacy, text, html, pdf); empty picks one per file extension")
	outputDir       = flag.String("output", "", "Directory for annotated output documents")
	visualize       = flag.Bool("visualize", false, "Generate a dependency tree visualization per document")
	visualizeOutput = flag.String("viz-output", "visualizations", "Output directory for the visualizations")
	sqlitePath      = flag.String("sqlite", "", "SQLite database receiving the annotated documents")
	configPath      = flag.String("config", "", "Path to a YAML config file")
	envFile         = flag.String("env", ".env", "Path to environment file")
	logLevel        = flag.String("log-level", "", "Logging level (debug, info, warn, error)")
	showProgress    = flag.Bool("progress", true, "Show a progress bar")
)

func main() {
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg)

	// Configure logging
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatalf("Invalid log level: %v", err)
	}
	logger.SetLevel(level)

	if *inputPath == "" {
		logger.Fatal("Input file or directory must be specified")
	}

	files, err := readInputFiles(*inputPath)
	if err != nil {
		logger.Fatalf("Failed to read input: %v", err)
	}
	if len(files) == 0 {
		logger.Fatal("No input files found")
	}

	ctx := context.Background()
	logger.Infof("Loading %d input files...", len(files))

	documents := make([]*annotation.Document, 0, len(files))
	for _, file := range files {
		doc, err := loadDocument(ctx, file, cfg.Pipeline.Format)
		if err != nil {
			logger.Errorf("Failed to load file %s: %v", file, err)
			continue
		}
		documents = append(documents, doc)
	}
	if len(documents) == 0 {
		logger.Fatal("No documents could be loaded")
	}

	generator := depnode.NewGenerator(cfg.GeneratorOptions(logger)...)
	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithBatchSize(cfg.Pipeline.BatchSize),
	}

	if cfg.Storage.Neo4j.URI != "" {
		neo4jSink, err := storage.NewNeo4jSink(cfg.Storage.Neo4j.URI, cfg.Storage.Neo4j.Username, cfg.Storage.Neo4j.Password, "")
		if err != nil {
			logger.Fatalf("Failed to connect to Neo4j: %v", err)
		}
		defer neo4jSink.Close()

		logger.Infof("Dependency nodes will be written to Neo4j at %s", cfg.Storage.Neo4j.URI)
		opts = append(opts, pipeline.WithSinkFactory(func(doc *annotation.Document) (depnode.Sink, error) {
			return neo4jSink.ForDocument(doc.ID), nil
		}))
	}

	if *showProgress {
		uiprogress.Start()
		bar := uiprogress.AddBar(len(documents))
		bar.AppendCompleted()
		bar.PrependElapsed()
		opts = append(opts, pipeline.WithProgress(func(*annotation.Document) {
			bar.Incr()
		}))
	}

	results, err := pipeline.New(generator, opts...).BatchProcess(ctx, documents)
	if *showProgress {
		uiprogress.Stop()
	}
	if err != nil {
		logger.Errorf("Failed to process documents: %v", err)
	}

	docStore := storage.NewJSONDocumentStore(cfg.Storage.OutputDir)

	var sqliteStore *storage.SQLiteStore
	if cfg.Storage.SQLitePath != "" {
		sqliteStore, err = storage.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			logger.Fatalf("Failed to open SQLite store: %v", err)
		}
		defer sqliteStore.Close()
	}

	totalNodes := 0
	for i, doc := range documents {
		result := results[i]
		if result == nil {
			continue
		}
		totalNodes += result.NodesEmitted

		if err := docStore.Store(ctx, doc); err != nil {
			logger.Errorf("Failed to store document %s: %v", doc.ID, err)
		}
		if sqliteStore != nil {
			if err := sqliteStore.WriteDocument(ctx, doc); err != nil {
				logger.Errorf("Failed to write document %s to SQLite: %v", doc.ID, err)
			}
		}

		// Visualize the trees if requested
		if *visualize {
			out := filepath.Join(*visualizeOutput, doc.ID+".html")
			viz := visualizer.NewD3Visualizer(out)
			if err := viz.Visualize(doc, result.Nodes); err != nil {
				logger.Errorf("Failed to visualize document %s: %v", doc.ID, err)
			} else {
				logger.Infof("Visualization saved to %s", out)
			}
		}
	}

	logger.Infof("Generated %d dependency nodes across %d documents", totalNodes, len(documents))
	logger.Infof("Annotated documents saved to %s", cfg.Storage.OutputDir)
}

// applyFlags lets explicitly set flags win over the config file and environment
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Pipeline.Format = *format
		case "output":
			cfg.Storage.OutputDir = *outputDir
		case "sqlite":
			cfg.Storage.SQLitePath = *sqlitePath
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
}

// loadDocument reads one input file into an annotated document
func loadDocument(ctx context.Context, path, format string) (*annotation.Document, error) {
	if format == "" {
		format = processors.FormatForPath(path)
	}

	processor, err := processors.ForFormat(format)
	if err != nil {
		return nil, err
	}
	if processor == nil {
		return storage.ReadDocument(path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := processor.Process(ctx, content, map[string]interface{}{
		"id":       uuid.New().String(),
		"filename": filepath.Base(path),
		"filepath": path,
	})
	if err != nil {
		return nil, err
	}
	if doc.Name == "" {
		doc.Name = filepath.Base(path)
	}
	return doc, nil
}

// readInputFiles returns path itself, or every supported file below it when it is a directory
func readInputFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	supportedExtensions := map[string]bool{
		".txt": true, ".md": true, ".json": true, ".html": true, ".htm": true, ".pdf": true,
	}

	var files []string
	err = filepath.Walk(path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			ext := strings.ToLower(filepath.Ext(path))
			if supportedExtensions[ext] {
				files = append(files, path)
			}
		}
		return nil
	})

	return files, err
}
