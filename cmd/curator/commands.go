package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/antoinelucasfra/curator/internal/backfill"
	"github.com/antoinelucasfra/curator/internal/catalog"
	"github.com/antoinelucasfra/curator/internal/config"
	"github.com/antoinelucasfra/curator/internal/describe"
	"github.com/antoinelucasfra/curator/internal/export"
	"github.com/antoinelucasfra/curator/internal/history"
	"github.com/antoinelucasfra/curator/internal/inbox"
	"github.com/antoinelucasfra/curator/internal/ingest"
)

// recordRun journals a run in the history store. Journal failures are
// reported but never fail the command; the catalog write already happened.
func recordRun(cfg config.Config, run history.Run, lines []history.RunLine) {
	store, err := history.Open(cfg.Storage.DataDir)
	if err != nil {
		printWarning("could not open run history: %v", err)
		return
	}
	defer store.Close()

	if err := store.SaveRun(run, lines); err != nil {
		printWarning("could not record run: %v", err)
	}
}

// --- sync ---

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Ingest inbox lines into the catalog",
	Long: `Ingest inbox lines into the catalog.

Each inbox line has the form:
  URL - Title - Type - Language - Category

Valid new links are enriched with a fetched description and appended to the
catalog in one write. Duplicates are dropped from the inbox; malformed lines
stay in the inbox for manual fixing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		catalogPath, _ := cmd.Flags().GetString("catalog")
		inboxPath, _ := cmd.Flags().GetString("inbox")
		reportPath, _ := cmd.Flags().GetString("report")
		if catalogPath == "" {
			catalogPath = cfg.Catalog.Path
		}
		if inboxPath == "" {
			inboxPath = cfg.Inbox.Path
		}

		syncer := ingest.NewSyncer(
			catalogPath,
			inbox.NewFileSource(inboxPath),
			describe.NewResolver(newFetcher(cfg)),
			cfg.Fetch.Concurrency,
		)

		start := time.Now()
		report, runErr := syncer.Run(cmd.Context())

		run := history.Run{
			ID:         uuid.NewString(),
			Kind:       "sync",
			StartedAt:  start,
			DurationMs: time.Since(start).Milliseconds(),
			Added:      report.Added(),
			Duplicates: report.Duplicates(),
			Kept:       report.Kept(),
		}
		if runErr != nil {
			run.Error = runErr.Error()
		}
		lines := make([]history.RunLine, len(report.Results))
		for i, res := range report.Results {
			lines[i] = history.RunLine{
				Line:    res.Line,
				Outcome: string(res.Outcome),
				Link:    res.Link,
				Reason:  res.Reason,
			}
		}
		recordRun(cfg, run, lines)

		if runErr != nil {
			return runErr
		}

		if reportPath != "" {
			if err := os.WriteFile(reportPath, []byte(report.Markdown()), 0o644); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
		}

		printSuccess("Added %d, duplicates %d, kept %d", report.Added(), report.Duplicates(), report.Kept())
		for _, res := range report.Results {
			if res.Outcome == ingest.OutcomeKept {
				printWarning("kept: %s (%s)", res.Line, res.Reason)
			}
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().String("catalog", "", "catalog file path (default from config)")
	syncCmd.Flags().String("inbox", "", "inbox file path (default from config)")
	syncCmd.Flags().String("report", "", "write a Markdown run summary to this path")
}

// --- backfill ---

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Refresh missing or template-generated descriptions",
	Long: `Refresh missing or template-generated descriptions.

Only records with an empty description or one matching a known template
phrase are touched; human-authored descriptions are left alone unless
--force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		catalogPath, _ := cmd.Flags().GetString("catalog")
		if catalogPath == "" {
			catalogPath = cfg.Catalog.Path
		}
		force, _ := cmd.Flags().GetBool("force")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		limit, _ := cmd.Flags().GetInt("limit")
		urls, _ := cmd.Flags().GetStringSlice("urls")

		bf := backfill.NewBackfiller(
			catalogPath,
			describe.NewResolver(newFetcher(cfg)),
			cfg.Fetch.Concurrency,
		)

		start := time.Now()
		result, runErr := bf.Run(cmd.Context(), backfill.Options{
			Force:  force,
			DryRun: dryRun,
			Limit:  limit,
			URLs:   urls,
		})

		if !dryRun {
			run := history.Run{
				ID:         uuid.NewString(),
				Kind:       "backfill",
				StartedAt:  start,
				DurationMs: time.Since(start).Milliseconds(),
				Updated:    len(result.Changes),
			}
			if runErr != nil {
				run.Error = runErr.Error()
			}
			recordRun(cfg, run, nil)
		}
		if runErr != nil {
			return runErr
		}

		for _, c := range result.Changes {
			printStep("%s", c.Link)
			printStatus("description", "%s", c.New)
		}
		verb := "updated"
		if dryRun {
			verb = "would update"
		}
		printSuccess("Examined %d, %s %d, nothing found for %d", result.Examined, verb, len(result.Changes), result.Skipped)
		return nil
	},
}

func init() {
	backfillCmd.Flags().String("catalog", "", "catalog file path (default from config)")
	backfillCmd.Flags().Bool("force", false, "refresh every record, including human-authored descriptions")
	backfillCmd.Flags().Bool("dry-run", false, "resolve and report without rewriting the catalog")
	backfillCmd.Flags().Int("limit", 0, "maximum number of records to process (0 = all)")
	backfillCmd.Flags().StringSlice("urls", nil, "restrict to records with these links")
}

// --- check ---

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the catalog file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		catalogPath, _ := cmd.Flags().GetString("catalog")
		if catalogPath == "" {
			catalogPath = cfg.Catalog.Path
		}
		fixDupes, _ := cmd.Flags().GetBool("fix-dupes")

		records, err := catalog.ParseFile(catalogPath)
		if err != nil {
			return err
		}

		issues := backfill.Check(records)
		for _, iss := range issues {
			printWarning("%s", iss)
		}

		if fixDupes {
			fixed, dropped := backfill.FixDupes(records)
			if dropped > 0 {
				if err := catalog.WriteFile(catalogPath, fixed); err != nil {
					return err
				}
				printSuccess("Removed %d duplicate record(s)", dropped)
				issues = backfill.Check(fixed)
			}
		}

		if len(issues) > 0 {
			return fmt.Errorf("%d issue(s) found", len(issues))
		}
		printSuccess("Catalog is clean (%d records)", len(records))
		return nil
	},
}

func init() {
	checkCmd.Flags().String("catalog", "", "catalog file path (default from config)")
	checkCmd.Flags().Bool("fix-dupes", false, "remove later duplicate links, keeping the first occurrence")
}

// --- add ---

var addCmd = &cobra.Command{
	Use:   "add <url> [url ...]",
	Short: "Add bare URLs directly to the catalog",
	Long: `Add bare URLs directly to the catalog.

Each URL is fetched once: the title comes from the page metadata, the type,
language, and category from domain and path heuristics, and the description
from the usual metadata-then-body fallback chain.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		catalogPath, _ := cmd.Flags().GetString("catalog")
		if catalogPath == "" {
			catalogPath = cfg.Catalog.Path
		}

		adder := ingest.NewAdder(catalogPath, newFetcher(cfg))
		outcomes, err := adder.Run(cmd.Context(), args)
		if err != nil {
			return err
		}

		added := 0
		for _, o := range outcomes {
			switch o.Status {
			case ingest.AddStatusAdded:
				added++
				printStep("%s", o.URL)
				printStatus("title", "%s", o.Record.Title)
				printStatus("type", "%s / %s / %s", o.Record.Type, o.Record.Language, o.Record.Category)
			case ingest.AddStatusDuplicate:
				printWarning("duplicate: %s", o.URL)
			case ingest.AddStatusInvalid:
				printError("invalid URL: %s", o.URL)
			}
		}
		printSuccess("Added %d of %d URL(s)", added, len(outcomes))
		return nil
	},
}

func init() {
	addCmd.Flags().String("catalog", "", "catalog file path (default from config)")
}

// --- export ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog as CSV or NDJSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		catalogPath, _ := cmd.Flags().GetString("catalog")
		if catalogPath == "" {
			catalogPath = cfg.Catalog.Path
		}
		formatStr, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		format, err := export.ParseFormat(formatStr)
		if err != nil {
			return err
		}

		records, err := catalog.ParseFile(catalogPath)
		if err != nil {
			return err
		}

		writer := os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			writer = f
		}

		if err := export.Write(writer, format, records); err != nil {
			return err
		}
		if output != "" {
			printSuccess("Exported %d record(s) to %s", len(records), output)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("catalog", "", "catalog file path (default from config)")
	exportCmd.Flags().String("format", "csv", "export format: csv or ndjson")
	exportCmd.Flags().String("output", "", "output file path (default: stdout)")
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent sync and backfill runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := history.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening run history: %w", err)
		}
		defer store.Close()

		runs, err := store.RecentRuns(limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		for _, r := range runs {
			summary := fmt.Sprintf("added %d, duplicates %d, kept %d", r.Added, r.Duplicates, r.Kept)
			if r.Kind == "backfill" {
				summary = fmt.Sprintf("updated %d", r.Updated)
			}
			if r.Error != "" {
				summary += "  " + colorize(colorRed, "error: "+r.Error)
			}
			fmt.Printf("%s  %s  %-8s  %s\n",
				colorize(colorCyan, r.ID[:8]),
				r.StartedAt.Format(time.RFC3339),
				r.Kind,
				summary,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.SetKey(key, value); err != nil {
			return err
		}
		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
