package main

import (
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"

	"github.com/romangod6/sitemapper/config"
	"github.com/romangod6/sitemapper/internal/utils"
)

// CLI flags structure
type CLI struct {
	ConfigFile string `help:"Path to configuration file (default: ./config.yaml or ./config/config.yaml)" name:"config" type:"path"`
	LogLevel   string `help:"Override the configured log level" placeholder:"LEVEL"`

	Extract ExtractCmd `cmd:"" help:"Extract the URLs listed in a sitemap."`
	Audit   AuditCmd   `cmd:"" help:"Audit a single page for common SEO problems."`
	Serve   ServeCmd   `cmd:"" help:"Run the HTTP API."`
}

// Globals is handed to every command's Run method.
type Globals struct {
	Config *config.Config
	Logger *log.Logger
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("sitemapper"),
		kong.Description("Extract URLs from XML sitemaps and audit pages."),
		kong.UsageOnError(),
	)

	cfg, err := config.LoadConfig(cli.ConfigFile)
	if err != nil {
		log.Fatal("Failed to load config", "err", err)
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}

	command := strings.Fields(ctx.Command())[0]
	runLog, err := utils.NewRunLogger(os.Stderr, cfg.Log.Dir, command, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to set up logging", "err", err)
	}
	defer runLog.Close()

	if runLog.Path != "" {
		runLog.LogInfo("Writing run log to %s", runLog.Path)
	}
	runLog.LogDebug("Running %s", command)
	if err := ctx.Run(&Globals{Config: cfg, Logger: runLog.Logger}); err != nil {
		runLog.LogError("%s failed: %v", command, err)
		runLog.Close()
		os.Exit(1)
	}
}
