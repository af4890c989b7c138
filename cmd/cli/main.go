package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/tsubasa0119/repo-insights/internal/aggregator"
	"github.com/tsubasa0119/repo-insights/internal/config"
	"github.com/tsubasa0119/repo-insights/internal/domain"
	"github.com/tsubasa0119/repo-insights/internal/export"
	"github.com/tsubasa0119/repo-insights/internal/fetcher"
	"github.com/tsubasa0119/repo-insights/internal/metrics"
	"github.com/tsubasa0119/repo-insights/internal/render"
)

var (
	outputJSON   bool
	exportFormat string
	exportOut    string
)

var rootCmd = &cobra.Command{
	Use:   "repo-insights",
	Short: "Repository analytics and health scoring tool",
	Long: `A CLI tool for analyzing GitHub repositories.

It aggregates repository metadata, contributors, commits, issues, weekly
commit activity, and language byte counts into an analytics snapshot,
derives summary metrics, and scores repository health.`,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [owner/repo]",
	Short: "Analyze a repository",
	Long:  `Fetch and aggregate the analytics of a repository, then print its derived metrics and health report.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var compareCmd = &cobra.Command{
	Use:   "compare [owner/repo] [owner/repo]",
	Short: "Compare two repositories",
	Long:  `Analyze two repositories concurrently and print a side-by-side metric table.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

var exportCmd = &cobra.Command{
	Use:   "export [owner/repo]",
	Short: "Export repository analytics to a file",
	Long:  `Analyze a repository and write the result as a JSON document or a static HTML chart page.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "export format (json or html)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default <owner>-<repo>.<format>)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newAggregator() (*aggregator.Aggregator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	upstream := fetcher.NewGitHub(cfg.GitHubToken, cfg.FetchTimeout)
	return aggregator.New(fetcher.NewCached(upstream, cfg.CacheTTL)), nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ref, err := domain.ParseRef(args[0])
	if err != nil {
		return err
	}

	agg, err := newAggregator()
	if err != nil {
		return err
	}

	snapshot, err := agg.Analyze(context.Background(), ref)
	if err != nil {
		return fmt.Errorf("failed to analyze %s: %w", ref, err)
	}

	if outputJSON {
		return export.Build(snapshot).WriteJSON(os.Stdout)
	}

	printAnalysis(snapshot)
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	refA, err := domain.ParseRef(args[0])
	if err != nil {
		return err
	}
	refB, err := domain.ParseRef(args[1])
	if err != nil {
		return err
	}

	agg, err := newAggregator()
	if err != nil {
		return err
	}

	snapA, snapB, err := agg.AnalyzePair(context.Background(), refA, refB)
	if err != nil {
		return fmt.Errorf("failed to compare: %w", err)
	}

	fmt.Printf("\nComparison: %s vs %s\n\n", refA, refB)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", refA.String(), refB.String()})
	for _, row := range metrics.Compare(snapA, snapB) {
		table.Append([]string{row.Metric, strconv.Itoa(row.ValueA), strconv.Itoa(row.ValueB)})
	}
	table.Render()

	reportA := metrics.Score(snapA)
	reportB := metrics.Score(snapB)
	fmt.Printf("\nHealth: %s %s  |  %s %s\n",
		refA, gradeColor(reportA.Grade).Sprintf("%d (%s)", reportA.Score, reportA.Grade),
		refB, gradeColor(reportB.Grade).Sprintf("%d (%s)", reportB.Score, reportB.Grade))

	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ref, err := domain.ParseRef(args[0])
	if err != nil {
		return err
	}
	if exportFormat != "json" && exportFormat != "html" {
		return fmt.Errorf("unsupported format %q: must be json or html", exportFormat)
	}

	agg, err := newAggregator()
	if err != nil {
		return err
	}

	snapshot, err := agg.Analyze(context.Background(), ref)
	if err != nil {
		return fmt.Errorf("failed to analyze %s: %w", ref, err)
	}

	out := exportOut
	if out == "" {
		out = fmt.Sprintf("%s-%s.%s", ref.Owner, ref.Repo, exportFormat)
	}
	file, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer file.Close()

	switch exportFormat {
	case "html":
		summary := metrics.Compute(snapshot)
		report := metrics.Score(snapshot)
		if err := render.Page(snapshot, summary, report, file); err != nil {
			return fmt.Errorf("failed to render chart page: %w", err)
		}
	default:
		if err := export.Build(snapshot).WriteJSON(file); err != nil {
			return fmt.Errorf("failed to write document: %w", err)
		}
	}

	fmt.Printf("Exported %s to %s\n", ref, out)
	return nil
}

func printAnalysis(snapshot *domain.Snapshot) {
	summary := metrics.Compute(snapshot)
	report := metrics.Score(snapshot)
	repo := snapshot.Repository

	fmt.Printf("\nRepository: %s\n", repo.FullName)
	if repo.Description != "" {
		fmt.Println(repo.Description)
	}
	fmt.Println()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Stars", strconv.Itoa(repo.Stars)})
	table.Append([]string{"Forks", strconv.Itoa(repo.Forks)})
	table.Append([]string{"Watchers", strconv.Itoa(repo.Watchers)})
	table.Append([]string{"Open Issues", strconv.Itoa(repo.OpenIssues)})
	table.Append([]string{"Contributors", strconv.Itoa(len(snapshot.Contributors))})
	if repo.Language != "" {
		table.Append([]string{"Primary Language", repo.Language})
	}
	if repo.License != "" {
		table.Append([]string{"License", repo.License})
	}
	table.Render()

	if len(summary.Languages) > 0 {
		fmt.Println("\nLanguages:")
		langTable := tablewriter.NewWriter(os.Stdout)
		langTable.SetHeader([]string{"Language", "Share"})
		for _, share := range summary.Languages {
			langTable.Append([]string{share.Name, fmt.Sprintf("%.1f%%", share.Percent)})
		}
		langTable.Render()
	}

	if len(summary.Activity) > 0 {
		fmt.Println("\nCommit activity:")
		actTable := tablewriter.NewWriter(os.Stdout)
		actTable.SetHeader([]string{"Week", "Date", "Commits"})
		for _, point := range summary.Activity {
			actTable.Append([]string{point.Label, point.Date, strconv.Itoa(point.Commits)})
		}
		actTable.Render()
	}

	fmt.Printf("\nIssues: %d open / %d closed (%d total)\n",
		summary.Issues.Open, summary.Issues.Closed, summary.Issues.Total)

	if len(summary.Labels) > 0 {
		fmt.Println("\nTop labels:")
		for _, label := range summary.Labels {
			fmt.Printf("  %-24s %d\n", label.Name, label.Count)
		}
	}

	fmt.Printf("\nHealth score: %s\n", gradeColor(report.Grade).Sprintf("%d (%s)", report.Score, report.Grade))
	healthTable := tablewriter.NewWriter(os.Stdout)
	healthTable.SetHeader([]string{"Sub-score", "Value"})
	healthTable.Append([]string{"Activity", strconv.Itoa(report.Metrics.Activity)})
	healthTable.Append([]string{"Maintenance", strconv.Itoa(report.Metrics.Maintenance)})
	healthTable.Append([]string{"Community", strconv.Itoa(report.Metrics.Community)})
	healthTable.Append([]string{"Documentation", strconv.Itoa(report.Metrics.Documentation)})
	healthTable.Append([]string{"Stability", strconv.Itoa(report.Metrics.Stability)})
	healthTable.Render()

	if len(report.Recommendations) > 0 {
		fmt.Println("\nRecommendations:")
		for _, rec := range report.Recommendations {
			fmt.Printf("  - %s\n", rec)
		}
	}
}

func gradeColor(grade string) *color.Color {
	switch grade {
	case "A+", "A":
		return color.New(color.FgGreen, color.Bold)
	case "B":
		return color.New(color.FgHiGreen)
	case "C":
		return color.New(color.FgYellow)
	case "D":
		return color.New(color.FgHiYellow)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}
