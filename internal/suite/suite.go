package suite

import (
	"context"
	"fmt"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/drewfead/kpcheck/internal/core"
	"github.com/drewfead/kpcheck/internal/fixtures"
	"github.com/drewfead/kpcheck/internal/kinopoisk"
	"github.com/drewfead/kpcheck/internal/scraping"
)

type Status string

const (
	Pass Status = "pass"
	Fail Status = "fail"
	Skip Status = "skip"
)

type Result struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Detail   string        `json:"detail,omitempty"`
	Duration time.Duration `json:"duration"`
}

type Report struct {
	RunID     uuid.UUID `json:"runId"`
	BaseURL   string    `json:"baseUrl"`
	StartedAt time.Time `json:"startedAt"`
	Results   []Result  `json:"results"`
}

func (r Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

func (r Report) Failed() int {
	return r.Count(Fail)
}

// Runner executes the checks described by Expectations against one site.
type Runner struct {
	Scraper      *kinopoisk.Scraper
	Expectations fixtures.Expectations
	// NewSession is called once per scenario.
	NewSession func() *scraping.Session
	// Only limits the run to scenarios matching any of these glob patterns.
	// Resolve steps needed by a selected scenario always run.
	Only []string
}

type scenario struct {
	name  string
	needs []string
	run   func(ctx context.Context, s *scraping.Session, env *env) (string, error)
}

// env holds what the setup phase resolved, keyed by resolve step name.
type env struct {
	actors map[string]core.Actor
	titles map[string]core.Title
}

func (r *Runner) Run(ctx context.Context) (Report, error) {
	filter, err := compile(r.Only)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		RunID:     uuid.New(),
		BaseURL:   r.Scraper.Base(),
		StartedAt: time.Now(),
	}
	logger := zap.L().With(zap.String("run", report.RunID.String()))

	checks := r.checks()
	var selected []scenario
	needed := map[string]bool{}
	for _, sc := range checks {
		if !filter(sc.name) {
			continue
		}
		selected = append(selected, sc)
		for _, n := range sc.needs {
			needed[n] = true
		}
	}

	e := &env{actors: map[string]core.Actor{}, titles: map[string]core.Title{}}
	var setup []scenario
	for _, sc := range r.resolvers() {
		if needed[sc.name] || filter(sc.name) {
			setup = append(setup, sc)
		}
	}

	// site checks first, then the setup phase, then checks on resolved entities
	var site, dependent []scenario
	for _, sc := range selected {
		if len(sc.needs) == 0 {
			site = append(site, sc)
		} else {
			dependent = append(dependent, sc)
		}
	}

	for _, phase := range [][]scenario{site, setup, dependent} {
		for _, sc := range phase {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			res := r.runOne(ctx, sc, e)
			logger.Info("scenario",
				zap.String("name", res.Name),
				zap.String("status", string(res.Status)),
				zap.String("error", res.Error),
				zap.Duration("duration", res.Duration),
			)
			report.Results = append(report.Results, res)
		}
	}

	return report, nil
}

func (r *Runner) runOne(ctx context.Context, sc scenario, e *env) Result {
	start := time.Now()
	ctx, span := otel.Tracer("suite").Start(ctx, sc.name)
	defer span.End()

	res := Result{Name: sc.name}
	for _, n := range sc.needs {
		if !e.resolved(n) {
			res.Status = Skip
			res.Error = fmt.Sprintf("%s did not resolve", n)
			res.Duration = time.Since(start)
			span.SetAttributes(attribute.String("status", string(Skip)))
			return res
		}
	}

	detail, err := sc.run(ctx, r.session(), e)
	res.Duration = time.Since(start)
	if err != nil {
		res.Status = Fail
		res.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		res.Status = Pass
		res.Detail = detail
	}
	span.SetAttributes(attribute.String("status", string(res.Status)))
	return res
}

func (r *Runner) session() *scraping.Session {
	if r.NewSession != nil {
		return r.NewSession()
	}
	return scraping.NewSession()
}

func (e *env) resolved(name string) bool {
	if a, ok := e.actors[name]; ok {
		return a.Resolved()
	}
	if t, ok := e.titles[name]; ok {
		return t.Resolved()
	}
	return false
}

func compile(patterns []string) (func(string) bool, error) {
	if len(patterns) == 0 {
		return func(string) bool { return true }, nil
	}
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("bad scenario pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return func(name string) bool {
		for _, g := range globs {
			if g.Match(name) {
				return true
			}
		}
		return false
	}, nil
}
