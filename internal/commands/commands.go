package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"github.com/drewfead/kpcheck/internal/core"
	"github.com/drewfead/kpcheck/internal/fixtures"
	"github.com/drewfead/kpcheck/internal/kinopoisk"
	"github.com/drewfead/kpcheck/internal/scraping"
	"github.com/drewfead/kpcheck/internal/suite"
)

var (
	cpuProfileFlag = &cli.PathFlag{
		Name:  "cpu-profile",
		Usage: "Write a pprof CPU profile of the run to this file",
	}

	memProfileFlag = &cli.PathFlag{
		Name:  "mem-profile",
		Usage: "Write a pprof heap profile to this file when the run ends",
	}

	verbosityFlag = &cli.StringFlag{
		Name:  "verbosity",
		Usage: "Set the verbosity of the logger",
		Value: "info",
	}

	outputFormatFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Set the output format (json, text)",
		Value:   "json",
	}

	baseURLFlag = &cli.StringFlag{
		Name:    "base-url",
		Usage:   "Site to check",
		Value:   kinopoisk.DefaultBaseURL,
		EnvVars: []string{"KPCHECK_BASE_URL"},
	}

	userAgentFlag = &cli.StringFlag{
		Name:  "user-agent",
		Usage: "User-Agent sent with every request",
		Value: scraping.DefaultUserAgent,
	}

	timeoutFlag = &cli.DurationFlag{
		Name:  "timeout",
		Usage: "Per-request timeout",
		Value: scraping.DefaultTimeout,
	}

	fixturesFlag = &cli.PathFlag{
		Name:    "fixtures",
		Aliases: []string{"f"},
		Usage:   "YAML file with expectations to use instead of the built-in ones",
	}

	onlyFlag = &cli.StringSliceFlag{
		Name:  "only",
		Usage: "Run only scenarios matching these glob patterns, e.g. 'search/*' or 'film/**'",
	}

	kindFlag = &cli.StringFlag{
		Name:  "kind",
		Usage: "Entity kind to resolve (person, film, series)",
		Value: string(core.Film),
	}
)

// setup installs the global logger and starts any requested profiles. The
// returned steps undo it and must run even when setup fails part way.
func setup(c *cli.Context) ([]func(), error) {
	var steps []func()

	level, err := zap.ParseAtomicLevel(c.String(verbosityFlag.Name))
	if err != nil {
		return steps, fmt.Errorf("parse verbosity: %w", err)
	}
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.Level = level
	logger, err := zapCfg.Build()
	if err != nil {
		return steps, fmt.Errorf("build logger: %w", err)
	}
	restore := zap.ReplaceGlobals(logger)
	steps = append(steps, func() {
		_ = logger.Sync()
		restore()
	})

	undoProcs, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		zap.L().Debug(fmt.Sprintf(format, args...))
	}))
	if err == nil {
		steps = append(steps, undoProcs)
	}

	if path := c.Path(cpuProfileFlag.Name); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return steps, fmt.Errorf("create cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return steps, fmt.Errorf("start cpu profile: %w", err)
		}
		steps = append(steps, func() {
			pprof.StopCPUProfile()
			if err := f.Close(); err != nil {
				zap.L().Error("Failed to close cpu profile", zap.String("path", path), zap.Error(err))
			}
		})
	}

	if path := c.Path(memProfileFlag.Name); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return steps, fmt.Errorf("create heap profile: %w", err)
		}
		steps = append(steps, func() {
			defer f.Close()
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				zap.L().Error("Failed to write heap profile", zap.String("path", path), zap.Error(err))
			}
		})
	}

	return steps, nil
}

func cleanup(ctx *cli.Context, steps ...func()) {
	for i := len(steps) - 1; i >= 0; i-- {
		steps[i]()
	}
}

func newSession(c *cli.Context) func() *scraping.Session {
	ua := c.String(userAgentFlag.Name)
	timeout := c.Duration(timeoutFlag.Name)
	return func() *scraping.Session {
		return scraping.NewSession(scraping.WithUserAgent(ua), scraping.WithTimeout(timeout))
	}
}

func expectations(c *cli.Context) (fixtures.Expectations, error) {
	path := c.Path(fixturesFlag.Name)
	if path == "" {
		return fixtures.Default(), nil
	}
	return fixtures.Load(path)
}

func results(c *cli.Context, w io.Writer, report suite.Report) error {
	switch c.String(outputFormatFlag.Name) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(report)
	case "text":
		for _, res := range report.Results {
			line := fmt.Sprintf("%-4s  %s", strings.ToUpper(string(res.Status)), res.Name)
			if res.Detail != "" {
				line += "  (" + res.Detail + ")"
			}
			if res.Error != "" {
				line += "\n      " + res.Error
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "\n%d passed, %d failed, %d skipped (run %s)\n",
			report.Count(suite.Pass), report.Failed(), report.Count(suite.Skip), report.RunID)
		return err
	default:
		return fmt.Errorf("unsupported output format %s", c.String(outputFormatFlag.Name))
	}
}

var Checks = []*cli.Command{
	{
		Name:     "check",
		Usage:    "Run the acceptance checks against the site",
		Category: "checks",
		Flags: []cli.Flag{
			verbosityFlag,
			cpuProfileFlag,
			memProfileFlag,
			outputFormatFlag,
			baseURLFlag,
			userAgentFlag,
			timeoutFlag,
			fixturesFlag,
			onlyFlag,
		},
		Action: func(c *cli.Context) error {
			cleanupSteps, err := setup(c)
			defer cleanup(c, cleanupSteps...)
			if err != nil {
				return err
			}

			x, err := expectations(c)
			if err != nil {
				return err
			}

			runner := &suite.Runner{
				Scraper:      &kinopoisk.Scraper{BaseURL: c.String(baseURLFlag.Name)},
				Expectations: x,
				NewSession:   newSession(c),
				Only:         c.StringSlice(onlyFlag.Name),
			}
			report, err := runner.Run(c.Context)
			if err != nil {
				return err
			}
			if err := results(c, c.App.Writer, report); err != nil {
				return err
			}
			if n := report.Failed(); n > 0 {
				return fmt.Errorf("%d of %d scenarios failed", n, len(report.Results))
			}
			return nil
		},
	},
	{
		Name:      "search",
		Usage:     "Print the top search result for a query",
		Category:  "lookup",
		ArgsUsage: "[search term]",
		Flags: []cli.Flag{
			verbosityFlag,
			baseURLFlag,
			userAgentFlag,
			timeoutFlag,
		},
		Action: func(c *cli.Context) error {
			cleanupSteps, err := setup(c)
			defer cleanup(c, cleanupSteps...)
			if err != nil {
				return err
			}

			query := strings.Join(c.Args().Slice(), " ")
			if query == "" {
				return errors.New("a search term is required")
			}
			sc := &kinopoisk.Scraper{BaseURL: c.String(baseURLFlag.Name)}
			page, err := sc.Search(c.Context, newSession(c)(), query)
			if err != nil {
				return err
			}
			text, err := page.TopResultText()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, text)
			return err
		},
	},
	{
		Name:      "resolve",
		Usage:     "Resolve a name to its detail page URL",
		Category:  "lookup",
		ArgsUsage: "[name]",
		Flags: []cli.Flag{
			verbosityFlag,
			baseURLFlag,
			userAgentFlag,
			timeoutFlag,
			kindFlag,
		},
		Action: func(c *cli.Context) error {
			cleanupSteps, err := setup(c)
			defer cleanup(c, cleanupSteps...)
			if err != nil {
				return err
			}

			name := strings.Join(c.Args().Slice(), " ")
			if name == "" {
				return errors.New("a name is required")
			}
			sc := &kinopoisk.Scraper{BaseURL: c.String(baseURLFlag.Name)}
			u, err := sc.Resolve(c.Context, newSession(c)(), name, name, core.Kind(c.String(kindFlag.Name)))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, u)
			return err
		},
	},
}

// NewApp builds the kpcheck CLI.
func NewApp() *cli.App {
	return &cli.App{
		Name:     "kpcheck",
		Usage:    "Acceptance checks for the Kinopoisk movie database website",
		Commands: Checks,
	}
}
