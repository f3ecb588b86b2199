package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/quill/internal/command"
	"github.com/hpungsan/quill/internal/config"
	"github.com/hpungsan/quill/internal/mcp"
	"github.com/hpungsan/quill/internal/repo"
	"github.com/hpungsan/quill/internal/store"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"exec": true, "repl": true, "status": true,
	"export": true, "import": true, "reset": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
              _ _ _
   __ _ _   _(_) | |
  / _` + "`" + ` | | | | | | |
 | (_| | |_| | | | |
  \__, |\__,_|_|_|_|
     |_|

  Command-driven thesis drafting engine

  Usage: quill <command> [options]
         quill repl
         quill --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before store init (no store needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil, nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".quill")

	docStore, err := store.OpenSQLite(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize document store: %v\n", err)
		os.Exit(1)
	}
	defer docStore.Close()

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	docStore.ConfigurePool(cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)

	doc := repo.NewDocument(docStore, cfg)
	interp := command.NewInterpreter(command.NewDefaultRegistry(doc, Version))

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(doc, interp, cfg)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'quill --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(interp, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
