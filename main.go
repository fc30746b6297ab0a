package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/omnidal-io/omnidal/pkg/config"
	"github.com/omnidal-io/omnidal/pkg/dal"
	"github.com/omnidal-io/omnidal/pkg/dal/sqlexec"
	"github.com/omnidal-io/omnidal/pkg/logging"
	"github.com/omnidal-io/omnidal/pkg/schema"
)

// omnidal reads the schema of every configured connection and optionally
// exports the normalized model as XML. It doubles as a smoke test for a
// deployment's connection configuration.
func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	connection := flag.String("connection", "", "limit the run to one named connection")
	exportPath := flag.String("export", "", "write the normalized schema as XML to this file ('-' for stdout)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	sqlLog, err := logging.NewSQLLogger(cfg.ShowSQLEnabled(), cfg.SQLLogPath, logger)
	if err != nil {
		logger.Fatal("sql logger", zap.Error(err))
	}
	defer sqlLog.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runtime := dal.NewRuntime(sqlexec.Open, logger, sqlLog)
	defer runtime.Close() //nolint:errcheck

	for _, conn := range cfg.Connections {
		runtime.Register(dal.Registration{
			Name:             conn.Name,
			ConnectionString: conn.ConnectionString,
			Provider:         conn.Provider,
			DialectName:      conn.Dialect,
			DisableCache:     conn.DisableCache,
		})
	}

	names := runtime.Registered()
	if *connection != "" {
		names = []string{*connection}
	}
	if len(names) == 0 {
		logger.Fatal("no connections configured")
	}

	var all []*schema.Table
	for _, name := range names {
		c, err := runtime.GetOrCreate(ctx, name)
		if err != nil {
			logger.Fatal("connect", zap.String("connection", name), zap.Error(err))
		}
		tables, err := c.Tables(ctx)
		if err != nil {
			logger.Fatal("schema read", zap.String("connection", name), zap.Error(err))
		}
		logger.Info("schema read",
			zap.String("connection", name),
			zap.String("dialect", c.Dialect().Name()),
			zap.Int("tables", len(tables)))
		all = append(all, tables...)
	}

	if *exportPath == "" {
		return
	}
	out := os.Stdout
	if *exportPath != "-" {
		f, err := os.Create(*exportPath)
		if err != nil {
			logger.Fatal("export", zap.Error(err))
		}
		defer f.Close() //nolint:errcheck
		out = f
	}
	if err := schema.ExportXML(out, all); err != nil {
		logger.Fatal("export", zap.Error(err))
	}
}
