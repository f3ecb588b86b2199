package main

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/quill/internal/command"
	"github.com/hpungsan/quill/internal/config"
	"github.com/hpungsan/quill/internal/errors"
	"github.com/hpungsan/quill/internal/repo"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(doc *repo.Document, interp *command.Interpreter, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "quill",
		Usage:   "Command-driven thesis drafting engine",
		Version: Version,
		Commands: []*cli.Command{
			execCmd(interp),
			replCmd(interp),
			statusCmd(doc),
			exportCmd(doc, cfg),
			importCmd(doc),
			resetCmd(doc),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// execCmd runs a single interpreter command line.
func execCmd(interp *command.Interpreter) *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     `Execute one thesis command (e.g. quill exec add-chapter Introduction)`,
		ArgsUsage: "<command> [args...]",
		Action: func(c *cli.Context) error {
			line := strings.Join(c.Args().Slice(), " ")
			result := interp.Execute(c.Context, line)
			if err := outputJSON(result); err != nil {
				return err
			}
			if !result.Success {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

// replCmd runs an interactive command loop on stdin.
func replCmd(interp *command.Interpreter) *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "Interactive thesis command loop",
		Action: func(c *cli.Context) error {
			fmt.Println(`quill — type "help" for commands, "exit" to leave.`)
			scanner := bufio.NewScanner(os.Stdin)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for {
				fmt.Print("quill> ")
				if !scanner.Scan() {
					fmt.Println()
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "exit" || line == "quit" {
					return nil
				}
				if line == "" {
					continue
				}
				result := interp.Execute(c.Context, line)
				printResult(result)
			}
		},
	}
}

// statusCmd shows progress counts and the derived status label.
func statusCmd(doc *repo.Document) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show thesis progress and status",
		Action: func(c *cli.Context) error {
			progress, err := doc.ComputeProgress(c.Context)
			if err != nil {
				return outputError(err)
			}
			status, err := doc.ComputeStatus(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{
				"progress": progress,
				"status":   status,
			})
		},
	}
}

// exportCmd writes the full document snapshot to a JSON file.
func exportCmd(doc *repo.Document, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the thesis document to a JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.quill/exports/thesis-<timestamp>.json)"},
		},
		Action: func(c *cli.Context) error {
			snapshot, err := doc.ExportAll(c.Context)
			if err != nil {
				return outputError(err)
			}

			exportPath := c.String("path")
			if exportPath == "" {
				exportPath, err = defaultExportPath(cfg, time.Now())
				if err != nil {
					return outputError(err)
				}
			}

			if err := writeFileAtomic(exportPath, []byte(snapshot)); err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{
				"path":        exportPath,
				"exported_at": time.Now().Unix(),
			})
		},
	}
}

// importCmd loads a snapshot file through the document facade.
func importCmd(doc *repo.Document) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import a thesis document from a JSON snapshot file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
		},
		Action: func(c *cli.Context) error {
			data, err := os.ReadFile(c.String("path"))
			if err != nil {
				return outputError(errors.NewInternal(fmt.Errorf("failed to read import file: %w", err)))
			}
			if err := doc.ImportAll(c.Context, string(data)); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{
				"imported": true,
				"path":     c.String("path"),
			})
		},
	}
}

// resetCmd clears the whole document back to its absent state.
func resetCmd(doc *repo.Document) *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Clear metadata, chapters, sections, and references",
		Action: func(c *cli.Context) error {
			if err := doc.Reset(c.Context); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"reset": true})
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if qErr, ok := err.(*errors.QuillError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", qErr.Code, qErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// printResult renders an interpreter result for the REPL.
func printResult(result *command.Result) {
	prefix := "ok"
	if !result.Success {
		prefix = "error"
	}
	fmt.Printf("%s: %s\n", prefix, result.Message)
	if result.Data != nil {
		raw, err := json.MarshalIndent(result.Data, "", "  ")
		if err == nil {
			fmt.Println(string(raw))
		}
	}
}

// defaultExportPath generates the default export path.
// Format: ~/.quill/exports/thesis-<timestamp>.json
func defaultExportPath(cfg *config.Config, now time.Time) (string, error) {
	dir := cfg.ExportDir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
		}
		dir = filepath.Join(homeDir, ".quill", "exports")
	}
	filename := fmt.Sprintf("thesis-%s.json", now.Format("2006-01-02T150405"))
	return filepath.Join(dir, filename), nil
}

// writeFileAtomic writes to a temp file in the destination directory and
// renames it into place, so a failed export never truncates an existing file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to write export file: %w", err))
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}
	return nil
}
