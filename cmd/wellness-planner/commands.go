package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"wellness-planner/internal/access"
	"wellness-planner/internal/app"
	"wellness-planner/internal/config"
	"wellness-planner/internal/planner"
	"wellness-planner/internal/render"

	"github.com/spf13/cobra"
)

func generateCmd() *cobra.Command {
	var (
		date  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and store the plan for a date (today by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if date == "" {
					res, err := a.Resolver.Resolve(ctx, planner.Request{ForceRefresh: force})
					if err != nil {
						return err
					}
					fmt.Printf("Plan for %s (%s, persisted: %v)\n", res.Plan.Date, res.Source, res.Persisted)
					return printPlan(res.Plan)
				}

				plan, err := a.Resolver.GenerateFor(ctx, date, force)
				if err != nil {
					if errors.Is(err, planner.ErrPlanExists) {
						return fmt.Errorf("plan already exists for %s, use --force to overwrite", date)
					}
					return err
				}
				fmt.Printf("Plan generated and saved for %s\n", plan.Date)
				return printPlan(plan)
			})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Plan date (YYYY-MM-DD)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Regenerate even if a plan exists")
	return cmd
}

func showCmd() *cobra.Command {
	var (
		date   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the plan for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Resolver.Resolve(ctx, planner.Request{Date: date})
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(res.Plan)
				}
				return printPlan(res.Plan)
			})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Plan date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON")
	return cmd
}

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored plans, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				plans, err := a.Resolver.Recent(ctx, limit)
				if err != nil {
					return err
				}
				if len(plans) == 0 {
					fmt.Println("No stored plans.")
					return nil
				}
				for _, p := range plans {
					fmt.Printf("%s  %-28s %5d kcal  \"%s\"\n",
						p.Date, render.DisplayDate(p.Date), p.Meals.TotalCalories(), p.Quote.Text)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 14, "Maximum number of plans to list (0 for all)")
	return cmd
}

func deliverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deliver",
		Short: "Run the daily job: resolve today's plan and email it to all recipients",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				report, err := a.RunDailyJob(ctx)
				if err != nil {
					return err
				}
				fmt.Println(report.Summary())
				for _, f := range report.Failures {
					fmt.Printf("  failed: %s (%s)\n", f.Recipient, f.Error)
				}
				return nil
			})
		},
	}
}

func cleanupCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete stored plans older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if days <= 0 {
					days = a.Config.RetentionDays
				}
				n, cutoff, err := a.Resolver.Purge(ctx, days)
				if err != nil {
					return err
				}
				fmt.Printf("Successfully removed %d plans dated before %s.\n", n, cutoff)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Keep plans for the last N days (default RETENTION_DAYS)")
	return cmd
}

func metricsCleanupCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "metrics-cleanup",
		Short: "Remove old metric records",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be a positive integer, got %d", days)
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if a.Metrics == nil {
					return fmt.Errorf("metrics are not recorded in %s mode", a.Resolver.Mode())
				}
				affected, err := a.Metrics.Cleanup(days)
				if err != nil {
					return fmt.Errorf("cleanup failed: %w", err)
				}
				fmt.Printf("Successfully removed %d old metric records.\n", affected)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "Keep records for the last N days")
	return cmd
}

func premiumTokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "premium-token",
		Short: "Mint a signed premium pass for the dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewFromEnv()
			if err != nil {
				return err
			}
			pass, err := access.MintPremiumPass(cfg.PremiumSigningSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Println(pass)
			fmt.Fprintf(os.Stderr, "Dashboard link: /?is_premium=%s\n", pass)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Who the pass is for")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "How long the pass stays valid")
	return cmd
}

func printPlan(plan *planner.Plan) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n=== %s ===\n", render.DisplayDate(plan.Date))
	fmt.Fprintf(&b, "\n\"%s\"\n  - %s\n", plan.Quote.Text, plan.Quote.Author)

	b.WriteString("\n=== WORKOUT ===\n")
	for i, ex := range plan.Workout {
		fmt.Fprintf(&b, "%d. %-22s %s\n", i+1, ex.Name, ex.Duration)
	}

	b.WriteString("\n=== MEALS ===\n")
	for _, m := range []struct {
		slot string
		meal planner.Meal
	}{
		{"Breakfast", plan.Meals.Breakfast},
		{"Lunch", plan.Meals.Lunch},
		{"Dinner", plan.Meals.Dinner},
	} {
		fmt.Fprintf(&b, "%-10s %s (%d kcal)\n", m.slot+":", m.meal.Name, m.meal.Calories)
	}
	fmt.Fprintf(&b, "\nTotal: %d kcal\n", plan.Meals.TotalCalories())

	_, err := os.Stdout.WriteString(b.String())
	return err
}
