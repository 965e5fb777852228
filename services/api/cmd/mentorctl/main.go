package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	gos3 "mentorbill/pkg/s3"
	"mentorbill/services/api"
	"mentorbill/services/mentoring"
	"mentorbill/services/statements"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mentorctl",
		Short:         "Operational tooling for mentorship session billing",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newBillsCommand())
	cmd.AddCommand(newSessionsCommand())
	cmd.AddCommand(newCatalogCommand())
	return cmd
}

// toolkit bundles everything a subcommand may need against the database.
type toolkit struct {
	cfg       api.Config
	repo      *api.Repo
	generator *mentoring.CycleGenerator
	reaper    *mentoring.Reaper
	log       zerolog.Logger
}

func connect(ctx context.Context) (*toolkit, error) {
	_ = godotenv.Load()

	cfg, err := api.Load(ctx)
	if err != nil {
		return nil, err
	}

	orm, err := api.ConnectORM(cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	repo, err := api.NewRepo(orm)
	if err != nil {
		return nil, err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	generator, err := mentoring.NewCycleGenerator(repo, logger)
	if err != nil {
		return nil, err
	}
	reaper, err := mentoring.NewReaper(repo, logger)
	if err != nil {
		return nil, err
	}

	return &toolkit{cfg: cfg, repo: repo, generator: generator, reaper: reaper, log: logger}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newBillsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bills",
		Short: "Billing cycle operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newBillsGenerateCommand())
	cmd.AddCommand(newBillsReleaseCommand())
	cmd.AddCommand(newBillsStatementCommand())
	cmd.AddCommand(newBillsShowCommand())
	return cmd
}

func newBillsShowCommand() *cobra.Command {
	var billFlag string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a bill statement as text",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			billID, err := uuid.Parse(billFlag)
			if err != nil {
				return fmt.Errorf("invalid bill id: %w", err)
			}

			tk, err := connect(ctx)
			if err != nil {
				return err
			}

			bill, err := tk.repo.BillByID(ctx, billID)
			if err != nil {
				return fmt.Errorf("bill %s: %w", billID, err)
			}
			mentor, err := tk.repo.MentorByID(ctx, bill.MentorID)
			if err != nil {
				return err
			}
			sessions, err := tk.repo.SessionsForBill(ctx, bill.ID)
			if err != nil {
				return err
			}

			out, err := statements.RenderSummary(bill, mentor, sessions)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&billFlag, "bill", "", "Bill id to print")
	_ = cmd.MarkFlagRequired("bill")
	return cmd
}

func newBillsGenerateCommand() *cobra.Command {
	var (
		mentorFlag string
		reset      bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate billing cycles for a mentor up to the current month",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			mentorID, err := uuid.Parse(mentorFlag)
			if err != nil {
				return fmt.Errorf("invalid mentor id: %w", err)
			}

			tk, err := connect(ctx)
			if err != nil {
				return err
			}

			mentor, err := tk.repo.MentorByID(ctx, mentorID)
			if err != nil {
				return fmt.Errorf("mentor %s: %w", mentorID, err)
			}

			bills, err := tk.generator.GenerateBills(ctx, mentor, reset)
			if err != nil {
				return err
			}

			for _, bill := range bills {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s .. %s\t%.2f min\t%.2f\n",
					bill.ID, bill.StartedAt.Format("2006-01-02"), bill.EndedAt.Format("2006-01-02"),
					bill.TotalMinutes, bill.TotalPrice)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d bill(s) generated\n", len(bills))
			return nil
		},
	}

	cmd.Flags().StringVar(&mentorFlag, "mentor", "", "Mentor id to bill")
	cmd.Flags().BoolVar(&reset, "reset", false, "Discard human overrides and re-account every session")
	_ = cmd.MarkFlagRequired("mentor")
	return cmd
}

func newBillsReleaseCommand() *cobra.Command {
	var billFlag string

	cmd := &cobra.Command{
		Use:   "release",
		Short: "Release a bill, detaching its sessions for re-billing",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			billID, err := uuid.Parse(billFlag)
			if err != nil {
				return fmt.Errorf("invalid bill id: %w", err)
			}

			tk, err := connect(ctx)
			if err != nil {
				return err
			}

			bill, err := tk.repo.BillByID(ctx, billID)
			if err != nil {
				return fmt.Errorf("bill %s: %w", billID, err)
			}
			if err := tk.generator.ReleaseBill(ctx, bill); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "bill %s released\n", bill.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&billFlag, "bill", "", "Bill id to release")
	_ = cmd.MarkFlagRequired("bill")
	return cmd
}

func newBillsStatementCommand() *cobra.Command {
	var billFlag string

	cmd := &cobra.Command{
		Use:   "statement",
		Short: "Export a bill statement to the archive bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			billID, err := uuid.Parse(billFlag)
			if err != nil {
				return fmt.Errorf("invalid bill id: %w", err)
			}

			tk, err := connect(ctx)
			if err != nil {
				return err
			}
			if tk.cfg.StatementsBucket == "" {
				return fmt.Errorf("STATEMENTS_BUCKET is not configured")
			}

			s3Client, err := gos3.NewClientFromEnv()
			if err != nil {
				return fmt.Errorf("s3 client: %w", err)
			}

			exporter := statements.NewExporter(tk.repo, s3Client, tk.cfg.StatementsBucket, tk.log)
			key, err := exporter.Export(ctx, billID)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s\n", key)
			return nil
		},
	}

	cmd.Flags().StringVar(&billFlag, "bill", "", "Bill id to export")
	_ = cmd.MarkFlagRequired("bill")
	return cmd
}

func newSessionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Session maintenance operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newSessionsReapCommand())
	return cmd
}

func newSessionsReapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reap",
		Short: "Close sessions whose scheduled end is two hours past",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			tk, err := connect(ctx)
			if err != nil {
				return err
			}

			closed, err := tk.reaper.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d session(s) closed\n", closed)
			return nil
		},
	}
}

func newCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Service catalog operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newCatalogImportCommand())
	return cmd
}

func newCatalogImportCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import service definitions from a YAML catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			tk, err := connect(ctx)
			if err != nil {
				return err
			}

			n, err := statements.ImportCatalog(ctx, file, tk.repo)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d service(s) imported\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to the catalog YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
