package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sitegauge/sitegauge/internal/analyzer"
	"github.com/sitegauge/sitegauge/internal/report"
)

var (
	analyzeTimeoutSecs int
	analyzeOutput      string
	analyzeSkipTLS     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Run a full SEO and security analysis against one URL",
	Long: `Fetch a single page and produce a unified report:
- On-page SEO signals (keywords, headings, images, links, meta tags)
- Security response headers
- Exposed admin interfaces and sensitive files (fixed 21-probe catalogue)
- External TLS grade (long-polled; use --skip-tls to avoid the wait)

Individual checks fail soft; only an unreachable page aborts the analysis.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout := analyzeTimeoutSecs
		if !cmd.Flags().Changed("timeout") {
			timeout = viper.GetInt("analyze.timeout_secs")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()

		engine := analyzer.New(analyzer.Options{
			SkipTLS: analyzeSkipTLS,
			Logger:  logger,
		})

		fmt.Printf("%s %s\n", colorInfo("Analyzing:"), args[0])
		result := engine.Analyze(ctx, args[0])

		if result.Error != "" {
			fmt.Println(colorError(result.Error))
			return writeReport(result)
		}

		printSummary(result)
		return writeReport(result)
	},
}

func printSummary(r *report.Analysis) {
	if s := r.SEO; s != nil {
		fmt.Println(colorInfo("SEO"))
		fmt.Printf("  Title: %q (%d chars)\n", s.Title.Content, s.Title.Length)
		fmt.Printf("  Keywords: %v\n", s.Keywords)
		fmt.Printf("  Headings: %d h1, %d h2\n", s.Headings.H1.Count, s.Headings.H2.Count)
		fmt.Printf("  Images missing alt: %d of %d (%d%%)\n", s.Images.MissingAlt, s.Images.Total, s.Images.MissingAltPercent)
		fmt.Printf("  Links: %d total, %s%% internal\n", s.Links.Total, s.Links.InternalRatio)
		if s.Technical.RobotsTxt.Exists {
			fmt.Printf("  robots.txt: %d Disallow directives\n", s.Technical.RobotsTxt.DisallowCount)
		} else {
			fmt.Printf("  robots.txt: %s\n", colorWarn("not found"))
		}
	}

	if sec := r.Security; sec != nil {
		fmt.Println(colorInfo("Security"))
		if v := sec.Vulnerabilities; v != nil {
			fmt.Printf("  Admin interfaces found: %d\n", len(v.AdminInterfaces))
			fmt.Printf("  Sensitive files exposed: %d\n", len(v.SensitiveFiles))
			fmt.Printf("  Directory indexing: %s\n", formatFinding(v.DirectoryIndexing))
		}
		if sec.TLS != nil {
			for _, ep := range sec.TLS.Endpoints {
				grade := ep.Grade
				if grade == "" {
					grade = "-"
				}
				fmt.Printf("  TLS %s: grade %s\n", ep.IPAddress, colorSuccess(grade))
			}
		} else {
			fmt.Printf("  TLS grade: %s\n", colorWarn("unavailable"))
		}
	}
}

func writeReport(r *report.Analysis) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if analyzeOutput == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(analyzeOutput, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Printf("%s %s\n", colorSuccess("Report written:"), analyzeOutput)
	return nil
}

func init() {
	analyzeCmd.Flags().IntVarP(&analyzeTimeoutSecs, "timeout", "t", 360, "overall analysis timeout in seconds")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "write the JSON report to a file instead of stdout")
	analyzeCmd.Flags().BoolVar(&analyzeSkipTLS, "skip-tls", false, "skip the external TLS grading poll")
}
