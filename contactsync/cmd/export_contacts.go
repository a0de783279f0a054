package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/natserract/forcekit/contactsync/services"
	"github.com/natserract/forcekit/pkg/config"
	"github.com/natserract/forcekit/pkg/entity"
	"github.com/natserract/forcekit/pkg/force"
	"go.uber.org/zap"
)

const defaultFname = "contacts.json"

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	session, err := force.NewSessionWithLogger(cfg, logger)
	if err != nil {
		logger.Error("Failed to create session", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to create session: %v\n", err)
		os.Exit(1)
	}
	if err := session.Login(ctx); err != nil {
		logger.Error("Failed to log in", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to log in: %v\n", err)
		os.Exit(1)
	}

	// Optional extra filter from the command line, e.g. "Email != null"
	where := ""
	if len(os.Args) > 1 {
		where = os.Args[1]
	}

	contacts := entity.DefineWithLogger(session, "Contact", services.ContactFields, where, logger)

	records, err := contacts.Query(ctx)
	if err != nil {
		logger.Error("Failed to query contacts", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to query contacts: %v\n", err)
		os.Exit(1)
	}
	logger.Info("Fetched contacts", zap.Int("count", len(records)))

	// Stable output order by last name, then ID
	sort.Slice(records, func(i, j int) bool {
		li, lj := records[i].GetString("LastName"), records[j].GetString("LastName")
		if li != lj {
			return li < lj
		}
		return records[i].ID() < records[j].ID()
	})

	out := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		fields := rec.Fields()
		delete(fields, "attributes")
		out = append(out, fields)
	}

	if err := os.MkdirAll("exports", 0755); err != nil {
		logger.Error("Failed to create exports dir", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to create exports dir: %v\n", err)
		os.Exit(1)
	}
	path := "exports/" + defaultFname
	payload, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		logger.Error("Failed to marshal JSON", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to marshal JSON: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(path, payload, 0644); err != nil {
		logger.Error("Failed to write export file", zap.String("path", path), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
		os.Exit(1)
	}

	logger.Info("Export written", zap.String("path", path), zap.Int("count", len(out)))
	fmt.Printf("Exported %d contacts to %s\n", len(out), path)
}
