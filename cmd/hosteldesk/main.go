package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/HostelDesk/internal/app"
	"github.com/dharsanguruparan/HostelDesk/internal/config"
	"github.com/dharsanguruparan/HostelDesk/internal/logger"
)

var configFile string

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "hosteldesk: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hosteldesk",
		Short: "HostelDesk admin CLI",
		Long: `HostelDesk CLI prepares the database and buckets, manages staff accounts,
searches student records, and launches the binaries during development.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", os.Getenv("HOSTELDESK_CONFIG"), "YAML config file")
	cmd.AddCommand(
		newMigrateCmd(),
		newStaffCmd(),
		newStudentsCmd(),
		newRunCmd(),
	)
	return cmd
}

// withApp loads the configuration, wires the services and hands them to fn.
func withApp(ctx context.Context, fn func(*app.App) error) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if level == "info" {
		level = "warn"
	}
	log := logger.Configure(logger.Config{Level: level, Pretty: true, Output: os.Stderr})
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("memory store selected, changes are lost when the command exits")
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema and storage buckets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				fmt.Fprintf(cmd.OutOrStdout(), "schema ready (store=%s)\n", a.Config.Store)
				return nil
			})
		},
	}
}

func newStaffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage staff accounts",
	}
	cmd.AddCommand(newStaffAddCmd(), newStaffListCmd())
	return cmd
}

func newStaffAddCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "add <email>",
		Short: "Create a staff account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("HOSTELDESK_STAFF_PASSWORD")
			}
			if password == "" {
				return errors.New("a password is required (--password or HOSTELDESK_STAFF_PASSWORD)")
			}
			return withApp(cmd.Context(), func(a *app.App) error {
				account, err := a.AddStaff(cmd.Context(), args[0], password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", account.Email, account.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password for the new account")
	return cmd
}

func newStaffListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List staff accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				staff, err := a.Staff.List(cmd.Context())
				if err != nil {
					return err
				}
				w := table(cmd.OutOrStdout())
				fmt.Fprintln(w, "ID\tEMAIL\tCREATED")
				for _, s := range staff {
					fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Email, s.CreatedAt.Format("2006-01-02"))
				}
				return w.Flush()
			})
		},
	}
}

func newStudentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "students",
		Short: "Inspect student records",
	}
	cmd.AddCommand(newStudentsListCmd())
	return cmd
}

func newStudentsListCmd() *cobra.Command {
	var search, key string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List students, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				views, err := a.Records.List(cmd.Context(), key, search)
				if err != nil {
					return err
				}
				w := table(cmd.OutOrStdout())
				fmt.Fprintln(w, "ID\tROLL NO\tNAME\tCLASS")
				for _, v := range views {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.ID, v.RollNo, v.Name, v.ClassBranchSection)
				}
				fmt.Fprintf(w, "\n%d student(s)\n", len(views))
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive substring to match")
	cmd.Flags().StringVarP(&key, "key", "k", "", "Field to search (defaults to name)")
	return cmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the HostelDesk binaries with go run",
	}
	cmd.AddCommand(
		newServiceRunner("server", "./cmd/server"),
		newServiceRunner("worker", "./cmd/worker"),
	)
	return cmd
}

func newServiceRunner(name, path string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("go run %s", path),
		RunE: func(cmd *cobra.Command, args []string) error {
			goArgs := append([]string{"run", path}, args...)
			return runCommand(cmd.Context(), "go", goArgs...)
		},
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	execCmd := exec.CommandContext(ctx, name, args...)
	execCmd.Stdout = os.Stdout
	execCmd.Stderr = os.Stderr
	execCmd.Stdin = os.Stdin
	return execCmd.Run()
}

func table(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

