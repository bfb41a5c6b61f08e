package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rpggio/gantry/internal/app"
	"github.com/rpggio/gantry/internal/render"
	"github.com/rpggio/gantry/internal/timeline"
	"github.com/rpggio/gantry/internal/tui"
)

// chartFlags are shared by the chart and tui commands.
type chartFlags struct {
	date   string
	weeks  int
	format string
}

func (f *chartFlags) bind(cmd *cobra.Command, withFormat bool) {
	cmd.Flags().StringVar(&f.date, "date", "", "Any day in the first week shown, YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&f.weeks, "weeks", 0, "Number of weeks (default from config)")
	if withFormat {
		cmd.Flags().StringVarP(&f.format, "format", "o", "table", "Output format: table, json or yaml")
	}
}

func (f *chartFlags) reference() (timeline.Date, error) {
	if f.date == "" {
		return timeline.Date{}, nil
	}
	return timeline.ParseDate(f.date)
}

func (f *chartFlags) validate() error {
	if f.weeks < 0 {
		return errors.New("--weeks must not be negative")
	}
	if f.weeks > timeline.MaxWeeks {
		return fmt.Errorf("--weeks must be at most %d", timeline.MaxWeeks)
	}
	return nil
}

// chartKind is what a chart command draws.
type chartKind struct {
	title string
	fetch func(ctx context.Context, a *app.App, actorID string, ref timeline.Date, weeks int) (any, error)
}

func teamChart() chartKind {
	return chartKind{
		title: "Team capacity",
		fetch: func(ctx context.Context, a *app.App, actorID string, ref timeline.Date, weeks int) (any, error) {
			return a.Charts.TeamCapacity(ctx, actorID, ref, weeks)
		},
	}
}

func projectsChart() chartKind {
	return chartKind{
		title: "Projects",
		fetch: func(ctx context.Context, a *app.App, actorID string, ref timeline.Date, weeks int) (any, error) {
			return a.Charts.ProjectTimeline(ctx, actorID, ref, weeks)
		},
	}
}

func projectChart(projectID string) chartKind {
	return chartKind{
		title: "Project",
		fetch: func(ctx context.Context, a *app.App, actorID string, ref timeline.Date, weeks int) (any, error) {
			return a.Charts.ProjectChart(ctx, actorID, projectID, ref, weeks)
		},
	}
}

func newChartCmd(e *env) *cobra.Command {
	var flags chartFlags

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Print a chart for the --as person",
		Long: `Print a chart for the --as person.

Examples:
  gantry chart team --as alice@example.com
  gantry chart projects --weeks 8
  gantry chart project <project-id> --date 2025-01-06 -o yaml`,
	}

	run := func(kind chartKind) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(flags.format)
			if err != nil {
				return err
			}
			if err := flags.validate(); err != nil {
				return err
			}
			ref, err := flags.reference()
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			a, closeApp, err := openApp(ctx, e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer closeApp()

			p, err := resolvePerson(ctx, a.People, e.as)
			if err != nil {
				return err
			}
			chart, err := kind.fetch(ctx, a, p.ID, ref, flags.weeks)
			if err != nil {
				return err
			}
			return render.Write(cmd.OutOrStdout(), format, chart)
		}
	}

	team := &cobra.Command{
		Use:   "team",
		Short: "Weekly capacity of everyone in your projects",
		Args:  cobra.NoArgs,
		RunE:  run(teamChart()),
	}
	projects := &cobra.Command{
		Use:   "projects",
		Short: "Timeline of every project you can see",
		Args:  cobra.NoArgs,
		RunE:  run(projectsChart()),
	}
	project := &cobra.Command{
		Use:   "project <project-id>",
		Short: "Gantt chart and member load of one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(projectChart(args[0]))(cmd, args)
		},
	}
	for _, c := range []*cobra.Command{team, projects, project} {
		flags.bind(c, true)
	}

	cmd.AddCommand(team, projects, project)
	return cmd
}

func newTUICmd(e *env) *cobra.Command {
	var flags chartFlags

	cmd := &cobra.Command{
		Use:   "tui [project-id]",
		Short: "Page through team capacity (or one project) week by week",
		Long: `Page through a chart interactively.

Keys: ←/h previous week, →/l next week, t today, r refresh, q quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("tui needs an interactive terminal; use 'gantry chart' instead")
			}
			if err := flags.validate(); err != nil {
				return err
			}
			ref, err := flags.reference()
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			a, closeApp, err := openApp(ctx, e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer closeApp()

			p, err := resolvePerson(ctx, a.People, e.as)
			if err != nil {
				return err
			}

			kind := teamChart()
			if len(args) == 1 {
				kind = projectChart(args[0])
			}
			weeks := flags.weeks
			if weeks == 0 {
				weeks = fitWeeks(e.cfg.Chart.Weeks)
			}

			source := func(ctx context.Context, ref timeline.Date, weeks int) (string, error) {
				chart, err := kind.fetch(ctx, a, p.ID, ref, weeks)
				if err != nil {
					return "", err
				}
				return render.Table(chart)
			}
			title := fmt.Sprintf("gantry: %s", kind.title)
			return tui.Run(tui.NewModel(title, source, ref, weeks))
		},
	}
	flags.bind(cmd, false)
	return cmd
}

// fitWeeks caps the week count so the table fits the terminal width.
func fitWeeks(want int) int {
	const (
		nameColumn = 24
		weekColumn = 9
	)
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= nameColumn+weekColumn {
		return want
	}
	return max(1, min(want, (width-nameColumn)/weekColumn))
}
