package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/config"
	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/domain"
	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/orchestrator"
	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/pricelabs"
	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/pricing"
	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/storage"
	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/storage/postgres"
	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/storage/sqlite"
)

var (
	outputJSON bool
	increase   bool
	decrease   bool
	dryRun     bool
	adjustAll  bool
	listingIDs []string
	historyN   int
)

var rootCmd = &cobra.Command{
	Use:   "pricelabs-adjust",
	Short: "Bulk price adjustment tool for PriceLabs listings",
	Long: `A CLI tool for applying bulk percentage price adjustments to the
override calendars of short-term-rental listings managed through PriceLabs.

Listings are processed in paced chunks to respect the remote rate limits,
and every run produces a consolidated report of applied, simulated,
skipped and failed listings.`,
}

var listingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "List active listings",
	Long:  `Display all active listings known to the pricing service.`,
	RunE:  runListings,
}

var adjustCmd = &cobra.Command{
	Use:   "adjust",
	Short: "Adjust listing prices",
	Long: `Apply the configured percentage adjustment to the override calendars
of the selected listings. Use --dry-run to preview the changes without
writing them to the pricing service.

Note that live runs compound: applying a 5% increase twice raises prices
by 10.25%, not 10%.`,
	RunE: runAdjust,
}

var historyCmd = &cobra.Command{
	Use:   "history [report-id]",
	Short: "Show past adjustment runs",
	Long:  `Display past batch reports, or the full outcome list of one report.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")

	adjustCmd.Flags().BoolVar(&increase, "increase", false, "increase prices by the configured percentage")
	adjustCmd.Flags().BoolVar(&decrease, "decrease", false, "decrease prices by the configured percentage")
	adjustCmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview changes without applying them")
	adjustCmd.Flags().BoolVar(&adjustAll, "all", false, "adjust all active listings")
	adjustCmd.Flags().StringSliceVar(&listingIDs, "listing-id", nil, "listing ID to adjust (repeatable)")

	historyCmd.Flags().IntVar(&historyN, "limit", 20, "number of reports to show")

	rootCmd.AddCommand(listingsCmd)
	rootCmd.AddCommand(adjustCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func getStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageType {
	case "postgres":
		return postgres.NewPostgresStorage(cfg.PostgresURL)
	default:
		return sqlite.NewSQLiteStorage(cfg.SQLitePath)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runListings(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := pricelabs.NewHTTPClient(cfg.BaseURL, cfg.APIKey, cfg.RetryDelay)
	listings, err := client.GetListings(context.Background())
	if err != nil {
		return fmt.Errorf("failed to fetch listings: %w", err)
	}

	active := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if pricing.IsEligible(l) {
			active = append(active, l)
		}
	}

	if outputJSON {
		return printJSON(active)
	}

	fmt.Printf("\nActive listings: %d (of %d total)\n\n", len(active), len(listings))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "PMS", "Currency", "Min Stay"})
	for _, l := range active {
		table.Append([]string{l.ID, l.Name, l.PMS, l.Currency, fmt.Sprintf("%d", l.MinStay)})
	}
	table.Render()

	return nil
}

func runAdjust(cmd *cobra.Command, args []string) error {
	if increase == decrease {
		return fmt.Errorf("specify exactly one of --increase or --decrease")
	}
	if adjustAll == (len(listingIDs) > 0) {
		return fmt.Errorf("specify exactly one of --all or --listing-id")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	client := pricelabs.NewHTTPClient(cfg.BaseURL, cfg.APIKey, cfg.RetryDelay)
	ctx := context.Background()

	ids := listingIDs
	if adjustAll {
		listings, err := client.GetListings(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch listings: %w", err)
		}
		for _, l := range listings {
			if pricing.IsEligible(l) {
				ids = append(ids, l.ID)
			}
		}
		if len(ids) == 0 {
			return fmt.Errorf("no active listings found")
		}
	}

	direction := domain.DirectionIncrease
	if decrease {
		direction = domain.DirectionDecrease
	}
	directive := domain.AdjustmentDirective{
		Direction:  direction,
		Percentage: cfg.AdjustmentPercentage,
		DryRun:     dryRun,
	}

	mode := "live"
	if dryRun {
		mode = "dry-run"
	}
	fmt.Printf("Adjusting %d listings: %s by %.1f%% (%s)\n", len(ids), direction, directive.Percentage*100, mode)

	orch := orchestrator.New(client, cfg.ChunkSize, cfg.ChunkDelay)
	report, err := orch.Run(ctx, ids, directive)
	if err != nil {
		return fmt.Errorf("batch run failed: %w", err)
	}

	if err := store.SaveReport(ctx, &report); err != nil {
		fmt.Printf("Warning: failed to save report: %v\n", err)
	}

	if outputJSON {
		return printJSON(report)
	}

	printReport(&report)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	ctx := context.Background()

	if len(args) == 1 {
		report, err := store.GetReport(ctx, args[0])
		if err != nil {
			return err
		}
		if outputJSON {
			return printJSON(report)
		}
		printReport(report)
		return nil
	}

	reports, err := store.ListReports(ctx, historyN)
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(reports)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Started", "Direction", "Mode", "Total", "Success", "Error", "Skipped"})
	for _, r := range reports {
		mode := "live"
		if r.DryRun {
			mode = "dry-run"
		}
		table.Append([]string{
			r.ID,
			r.StartedAt.Format("2006-01-02 15:04"),
			string(r.Direction),
			mode,
			fmt.Sprintf("%d", r.TotalListings),
			fmt.Sprintf("%d", r.SuccessCount),
			fmt.Sprintf("%d", r.ErrorCount),
			fmt.Sprintf("%d", r.SkippedCount),
		})
	}
	table.Render()

	return nil
}

func printReport(report *domain.BatchReport) {
	mode := "live"
	if report.DryRun {
		mode = "dry-run"
	}
	fmt.Printf("\nBatch %s (%s %s)\n", report.ID, report.Direction, mode)
	fmt.Printf("Listings: %d total, %d success, %d error, %d skipped\n\n",
		report.TotalListings, report.SuccessCount, report.ErrorCount, report.SkippedCount)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Listing", "Name", "Status", "Changes", "Error"})
	for _, o := range report.Outcomes {
		status := string(o.Status)
		if o.Simulated {
			status = "simulated"
		}
		table.Append([]string{
			o.ListingID,
			o.Name,
			status,
			fmt.Sprintf("%d", o.ChangeCount),
			o.ErrorMessage,
		})
	}
	table.Render()

	if report.DryRun {
		fmt.Println("\nSample changes:")
		for _, o := range report.Outcomes {
			if len(o.SampleChanges) == 0 {
				continue
			}
			fmt.Printf("  %s:\n", o.Name)
			for _, ch := range o.SampleChanges {
				fmt.Printf("    %s: %.2f -> %.2f %s\n", ch.Date, ch.OldPrice, ch.NewPrice, ch.Currency)
			}
		}
	}
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
