package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"devops-trace/internal/audit"
	"devops-trace/internal/azdo"
	"devops-trace/internal/config"
	"devops-trace/internal/db"
	"devops-trace/internal/logging"
	"devops-trace/internal/models"
	"devops-trace/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "devops-trace",
	Short: "Work item to pull request traceability auditor",
	Long: `devops-trace walks a set of seed work items through their hierarchy,
collects the pull requests linked to each, classifies commit diffs, and
writes per-repository summary artifacts.`,
	Run: func(cmd *cobra.Command, args []string) {
		seedPath, _ := cmd.Flags().GetString("config")
		onlyCompleted, _ := cmd.Flags().GetBool("only-completed")

		if err := runAudit(seedPath, onlyCompleted); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var reposCmd = &cobra.Command{
	Use:   "repos <project>",
	Short: "List the git repositories of a project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := listRepos(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past audit runs",
	Run: func(cmd *cobra.Command, args []string) {
		if err := listRuns(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().StringP("config", "c", "", "Seed config file (defaults to the single JSON file in the configs dir)")
	rootCmd.Flags().Bool("only-completed", false, "Audit only work items in a completed state")

	rootCmd.AddCommand(reposCmd)
	rootCmd.AddCommand(runsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAudit(seedPath string, onlyCompleted bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.LogsDir)
	if err != nil {
		return err
	}
	defer closer.Close()

	creds, err := azdo.LoadCredentials(cfg.Organization)
	if err != nil {
		return err
	}

	if seedPath == "" {
		seedPath, err = pickSeedFile(cfg.ConfigsDir)
		if err != nil {
			return err
		}
	}

	seed, err := config.LoadSeed(seedPath)
	if err != nil {
		return err
	}
	if onlyCompleted {
		seed.OnlyCompleted = true
	}

	database, err := db.OpenAndMigrate()
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	client := azdo.New(azdo.Config{
		Organization: creds.Organization,
		PAT:          creds.PAT,
		Timeout:      time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	runner := audit.NewRunner(client, seed, cfg.ResultsDir, logger)

	if err := runner.Run(ctx); err != nil {
		return fmt.Errorf("audit run: %w", err)
	}

	paths, err := runner.SaveArtifacts()
	if err != nil {
		return fmt.Errorf("save artifacts: %w", err)
	}

	res, err := runner.Results()
	if err != nil {
		return err
	}

	runRepo := store.NewRunRepo(database)
	if _, err := runRepo.Create(&models.Run{
		StartedAt:        started,
		FinishedAt:       time.Now(),
		WorkItemCount:    len(res.WorkItemIDs),
		PullRequestCount: len(res.Records),
		SummaryFile:      paths.Summary,
		DetailsFile:      paths.Details,
		DiffFile:         paths.DiffStats,
	}); err != nil {
		logger.Error("failed to record run", "error", err)
	}

	fmt.Printf("Work items: %d\n", len(res.WorkItemIDs))
	fmt.Printf("Pull requests: %d\n", len(res.Records))
	fmt.Printf("Summary: %s\n", paths.Summary)
	fmt.Printf("PR details: %s\n", paths.Details)
	fmt.Printf("Diff stats: %s\n", paths.DiffStats)

	return nil
}

// pickSeedFile resolves the seed config non-interactively: use the single
// JSON file in the configs dir, or fail asking for --config.
func pickSeedFile(dir string) (string, error) {
	files, err := config.ListSeedFiles(dir)
	if err != nil {
		return "", fmt.Errorf("list seed configs in %s: %w", dir, err)
	}

	switch len(files) {
	case 0:
		return "", fmt.Errorf("no seed config files in %s (place a JSON file there or pass --config)", dir)
	case 1:
		return files[0], nil
	default:
		return "", fmt.Errorf("multiple seed config files in %s, pass one with --config", dir)
	}
}

func listRepos(project string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	creds, err := azdo.LoadCredentials(cfg.Organization)
	if err != nil {
		return err
	}

	client := azdo.New(azdo.Config{
		Organization: creds.Organization,
		PAT:          creds.PAT,
		Timeout:      time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
	}, nil)

	repos, err := client.ListRepositories(context.Background(), project)
	if err != nil {
		return err
	}

	for _, repo := range repos {
		fmt.Printf("%s\t%s\t%s\n", repo.Name, repo.DefaultBranch, repo.RemoteURL)
	}
	fmt.Printf("%d repositories\n", len(repos))

	return nil
}

func listRuns() error {
	database, err := db.OpenAndMigrate()
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	runs, err := store.NewRunRepo(database).GetAll()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	for _, run := range runs {
		fmt.Printf("%s  %s  items=%d prs=%d  %s\n",
			run.ID[:8],
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.WorkItemCount,
			run.PullRequestCount,
			run.SummaryFile)
	}

	return nil
}
