// cmd/vcs/main.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"vcs/internal/digest"
	"vcs/internal/logging"
	"vcs/internal/repository"
	"vcs/shared/types"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logger   = logging.Nop()
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           "vcs",
	Short:         "A minimal content-addressed version control system",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.NewLogger(logLevel)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger = l.WithRunID()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	var initCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize a new repository in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}

			if err := repository.Initialize(dir); err != nil {
				return fmt.Errorf("initializing repository: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized empty VCS repository in %s/\n", repository.DirName)
			return nil
		},
	}

	var addCmd = &cobra.Command{
		Use:   "add <file> | .",
		Short: "Snapshot a file, or stage and commit every file with '.'",
		Long: `With a filename, stores a snapshot of that file without touching the index.
With '.', replaces the index with every regular file at the repository root
and commits it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			out := cmd.OutOrStdout()
			if args[0] != "." {
				d, err := repo.StageSingleFile(args[0])
				if err != nil {
					return fmt.Errorf("adding %s: %w", args[0], err)
				}
				printAdded(out, args[0], d)
				return nil
			}

			result, err := repo.StageAllAndCommit(repo.Root)
			if result == nil {
				return fmt.Errorf("adding files: %w", err)
			}
			for _, e := range result.Staged.Entries {
				printAdded(out, e.Name, e.Digest)
			}
			for _, f := range result.Staged.Failures {
				printFailure(cmd.ErrOrStderr(), f.Name, f.Err)
			}
			return reportCommit(out, result.Commit, err)
		},
	}

	var commitCmd = &cobra.Command{
		Use:   "commit",
		Short: "Commit the current index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			c, err := repo.Commit()
			return reportCommit(cmd.OutOrStdout(), c, err)
		},
	}

	var statusCmd = &cobra.Command{
		Use:   "status",
		Short: "List the files staged for the next commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			entries, err := repo.Stager.Staged()
			if repository.IsNoStagedChanges(err) {
				fmt.Fprintln(cmd.OutOrStdout(), "No files staged for commit")
				return nil
			}
			if err != nil {
				return err
			}
			printStaged(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	var historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Show every commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			commits, err := repo.ListHistory()
			if err != nil {
				return fmt.Errorf("reading history: %w", err)
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(commits)
			}
			printHistory(cmd.OutOrStdout(), commits)
			return nil
		},
	}
	historyCmd.Flags().Bool("json", false, "print commits as JSON")

	var catCmd = &cobra.Command{
		Use:   "cat <digest>",
		Short: "Print the stored content of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			d, err := digest.Parse(args[0])
			if err != nil {
				return err
			}
			rc, err := repo.CatObject(d)
			if err != nil {
				return err
			}
			defer rc.Close()

			_, err = io.Copy(cmd.OutOrStdout(), rc)
			return err
		},
	}

	var statCmd = &cobra.Command{
		Use:   "stat <digest>",
		Short: "Show where an object is stored and what is known about it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			d, err := digest.Parse(args[0])
			if err != nil {
				return err
			}
			info, err := repo.StatObject(d)
			if err != nil {
				return err
			}
			printObjectInfo(cmd.OutOrStdout(), info)
			return nil
		},
	}

	var verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Rehash every stored object and report corruption",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			report, err := repo.Verify()
			if err != nil {
				return fmt.Errorf("verifying repository: %w", err)
			}
			printVerifyReport(cmd.OutOrStdout(), report)
			if !report.OK() {
				return fmt.Errorf("%d corrupt, %d missing objects", len(report.Corrupt), len(report.Missing))
			}
			return nil
		},
	}

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
}

// openRepo finds the repository enclosing the working directory.
func openRepo() (*repository.Repository, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}

	root, err := repository.FindRoot(cwd)
	if err != nil {
		return nil, err
	}

	repo, err := repository.New(root, logger.Logger)
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}
	logger.Debug("Opened repository", zap.String("root", root))
	return repo, nil
}

// reportCommit prints the outcome of a commit. Nothing to commit is not a failure.
func reportCommit(w io.Writer, c *shared.Commit, err error) error {
	if repository.IsNoStagedChanges(err) {
		fmt.Fprintln(w, "No files staged for commit")
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating commit: %w", err)
	}
	fmt.Fprintf(w, "Created commit %s\n", c.ID)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
