// Copyright 2026 Promptkeep Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/promptkeep/promptkeep"
	"github.com/promptkeep/promptkeep/core"
	badgerstore "github.com/promptkeep/promptkeep/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "promptkeep",
		Usage: "Local prompt library with quota-aware storage",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:     "db",
				Aliases:  []string{"d"},
				Usage:    "Path to the library database directory",
				Required: true,
			},
			&cli.Int64Flag{
				Name:  "quota",
				Usage: "Total storage capacity in bytes",
				Value: badgerstore.DefaultQuotaBytes,
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Store a new prompt",
				Action: addCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "title",
						Usage: "Prompt title",
					},
					&cli.StringFlag{
						Name:     "content",
						Usage:    "Prompt text",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Category name",
						Value: core.DefaultCategoryName,
					},
				},
			},
			{
				Name:   "list",
				Usage:  "List stored prompts",
				Action: listCommand,
			},
			{
				Name:   "categories",
				Usage:  "List categories",
				Action: categoriesCommand,
			},
			{
				Name:   "usage",
				Usage:  "Show storage usage and warnings",
				Action: usageCommand,
			},
			{
				Name:   "export",
				Usage:  "Export the full library as JSON",
				Action: exportCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output file (stdout if omitted)",
					},
				},
			},
			{
				Name:   "import",
				Usage:  "Replace the library with a JSON export",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Exported JSON file to import",
						Required: true,
					},
				},
			},
			{
				Name:   "clear",
				Usage:  "Delete all stored data",
				Action: clearCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openManager(c *cli.Context) (*promptkeep.Manager, error) {
	store, err := badgerstore.NewStore(c.String("db"), badgerstore.WithQuota(c.Int64("quota")))
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}
	return promptkeep.New(store), nil
}

func addCommand(c *cli.Context) error {
	m, err := openManager(c)
	if err != nil {
		return err
	}
	defer m.Close()

	prompt, err := m.SavePrompt(c.Context, core.PromptDraft{
		Title:    c.String("title"),
		Content:  c.String("content"),
		Category: c.String("category"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("saved prompt %s\n", prompt.ID)
	return nil
}

func listCommand(c *cli.Context) error {
	m, err := openManager(c)
	if err != nil {
		return err
	}
	defer m.Close()

	prompts, err := m.GetPrompts(c.Context)
	if err != nil {
		return err
	}
	if len(prompts) == 0 {
		fmt.Println("no prompts stored")
		return nil
	}
	for _, p := range prompts {
		title := p.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%s  %-30s  %-20s  used %d\n", p.ID, title, p.Category, p.UsageCount)
	}
	return nil
}

func categoriesCommand(c *cli.Context) error {
	m, err := openManager(c)
	if err != nil {
		return err
	}
	defer m.Close()

	categories, err := m.GetCategories(c.Context)
	if err != nil {
		return err
	}
	for _, cat := range categories {
		if cat.Color != "" {
			fmt.Printf("%s  %s (%s)\n", cat.ID, cat.Name, cat.Color)
		} else {
			fmt.Printf("%s  %s\n", cat.ID, cat.Name)
		}
	}
	return nil
}

func usageCommand(c *cli.Context) error {
	m, err := openManager(c)
	if err != nil {
		return err
	}
	defer m.Close()

	usage, err := m.GetStorageUsageWithWarnings(c.Context)
	if err != nil {
		return err
	}
	fmt.Printf("%d of %d bytes used (%.1f%%, %s)\n", usage.Used, usage.Total, usage.Percent, usage.Level)
	if usage.Warning != "" {
		fmt.Println(usage.Warning)
	}
	return nil
}

func exportCommand(c *cli.Context) error {
	m, err := openManager(c)
	if err != nil {
		return err
	}
	defer m.Close()

	data, err := m.ExportData(c.Context)
	if err != nil {
		return err
	}
	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, []byte(data), 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Printf("exported to %s\n", out)
		return nil
	}
	fmt.Println(data)
	return nil
}

func importCommand(c *cli.Context) error {
	m, err := openManager(c)
	if err != nil {
		return err
	}
	defer m.Close()

	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}
	if err := m.ImportData(c.Context, string(data)); err != nil {
		return err
	}
	fmt.Println("import complete")
	return nil
}

func clearCommand(c *cli.Context) error {
	m, err := openManager(c)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.ClearAllData(c.Context); err != nil {
		return err
	}
	fmt.Println("all data cleared")
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
