package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"estate_matcher/matching"
	"estate_matcher/models"
	"estate_matcher/storage"
	"estate_matcher/tui"
)

var matchPropertyCmd = &cli.Command{
	Name:  "match-property",
	Usage: "Rank active clients for one property and store the results",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "id", Required: true, Usage: "property id"},
	},
	Action: func(c *cli.Context) error {
		id, err := uuid.Parse(c.String("id"))
		if err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		pg, err := e.postgres(c.Context)
		if err != nil {
			return err
		}
		report, err := e.matchService(pg).FindMatchesForProperty(c.Context, id, e.cfg.MatchOptions())
		if err != nil {
			return err
		}
		return writeJSON(c.App.Writer, report)
	},
}

var matchClientCmd = &cli.Command{
	Name:  "match-client",
	Usage: "Rank offerable properties for one client and store the results",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "id", Required: true, Usage: "client id"},
	},
	Action: func(c *cli.Context) error {
		id, err := uuid.Parse(c.String("id"))
		if err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		pg, err := e.postgres(c.Context)
		if err != nil {
			return err
		}
		report, err := e.matchService(pg).FindMatchesForClient(c.Context, id, e.cfg.MatchOptions())
		if err != nil {
			return err
		}
		return writeJSON(c.App.Writer, report)
	},
}

// scoreOutput explains one pair, including pairs that did not match
type scoreOutput struct {
	Matched           bool                  `json:"matched"`
	Breakdown         models.ScoreBreakdown `json:"breakdown"`
	Total             float64               `json:"total_score"`
	Quality           models.Quality        `json:"quality"`
	Weakest           models.Dimension      `json:"weakest"`
	Strongest         models.Dimension      `json:"strongest"`
	BudgetFlexibility int                   `json:"budget_flexibility"`
}

var scoreCmd = &cli.Command{
	Name:  "score",
	Usage: "Score a property/client pair from JSON files without touching any database",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "property", Required: true, Usage: "property bundle JSON file"},
		&cli.StringFlag{Name: "client", Required: true, Usage: "client bundle JSON file"},
		&cli.Float64Flag{Name: "min-score", Value: matching.DefaultMinScore, Usage: "minimum total score"},
		&cli.BoolFlag{Name: "strict", Usage: "apply the hard pre-filter"},
	},
	Action: func(c *cli.Context) error {
		var p models.Property
		if err := readJSON(c.String("property"), &p); err != nil {
			return err
		}
		var cl models.Client
		if err := readJSON(c.String("client"), &cl); err != nil {
			return err
		}

		opts := matching.DefaultOptions()
		opts.MinScore = c.Float64("min-score")
		opts.StrictMode = c.Bool("strict")

		engine := matching.NewEngine()
		result, err := engine.CalculateMatch(&p, &cl, opts)
		if err != nil {
			return err
		}

		// unmatched pairs still get an explanation
		explained := result
		if explained == nil {
			explained = models.NewMatchResult(p.ID, cl.ID, engine.Breakdown(&p, &cl), time.Now().UTC())
		}
		return writeJSON(c.App.Writer, scoreOutput{
			Matched:           result != nil,
			Breakdown:         explained.Breakdown,
			Total:             explained.TotalScore,
			Quality:           explained.Quality(),
			Weakest:           explained.WeakestDimension(),
			Strongest:         explained.StrongestDimension(),
			BudgetFlexibility: matching.BudgetFlexibility(cl.Budget),
		})
	},
}

var enqueueCmd = &cli.Command{
	Name:  "enqueue",
	Usage: "Queue a command for the running daemon",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "command", Required: true, Usage: "rematch_all, rematch_property, rematch_client, pause or resume"},
		&cli.StringFlag{Name: "target", Usage: "property or client id for targeted rematches"},
	},
	Action: func(c *cli.Context) error {
		cmd, err := models.ParseCommandType(c.String("command"))
		if err != nil {
			return err
		}
		var params *models.CommandParams
		switch cmd {
		case models.CmdRematchProperty, models.CmdRematchClient:
			target := c.String("target")
			if _, err := uuid.Parse(target); err != nil {
				return fmt.Errorf("%s needs --target <uuid>", cmd)
			}
			params = &models.CommandParams{TargetID: target}
		}

		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		journal, err := e.journal()
		if err != nil {
			return err
		}
		id, err := journal.EnqueueCommand(cmd, params)
		if err != nil {
			return fmt.Errorf("enqueue: %w", err)
		}
		fmt.Fprintf(c.App.Writer, "queued %s as command %d\n", cmd, id)
		return nil
	},
}

var runsCmd = &cli.Command{
	Name:  "runs",
	Usage: "List recent match runs from the journal",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "limit", Value: 10},
		&cli.Int64Flag{Name: "logs", Usage: "print the log lines of this run instead"},
	},
	Action: func(c *cli.Context) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		journal, err := e.journal()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
		defer tw.Flush()

		if runID := c.Int64("logs"); runID > 0 {
			logs, err := journal.LogsForRun(runID)
			if err != nil {
				return err
			}
			for _, l := range logs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.Timestamp.Format("2006-01-02 15:04:05"), l.Level, l.Source, l.Message)
			}
			return nil
		}

		runs, err := journal.RecentRuns(c.Int("limit"))
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tSTARTED\tTRIGGER\tSTATUS\tPROPERTIES\tMATCHES\tAVG\tERRORS\tREPORT")
		for _, r := range runs {
			report := ""
			if r.ReportKey != "" {
				report = storage.PublicURL(e.cfg.S3, r.ReportKey)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%.2f\t%d\t%s\n",
				r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.Trigger, r.Status,
				r.PropertiesScanned, r.MatchesFound, r.AverageScore, r.ErrorsCount, report)
		}
		return nil
	},
}

var topCmd = &cli.Command{
	Name:  "top",
	Usage: "Show the best stored matches of a client",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "client", Required: true, Usage: "client id"},
		&cli.IntFlag{Name: "limit", Value: 10},
	},
	Action: func(c *cli.Context) error {
		id, err := uuid.Parse(c.String("client"))
		if err != nil {
			return fmt.Errorf("invalid client id: %w", err)
		}
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		pg, err := e.postgres(c.Context)
		if err != nil {
			return err
		}
		matches, err := pg.TopMatchesForClient(c.Context, id, c.Int("limit"))
		if err != nil {
			return fmt.Errorf("top matches: %w", err)
		}
		printMatches(c.App.Writer, matches)
		return nil
	},
}

func printMatches(w io.Writer, matches []*models.MatchResult) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "no stored matches")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPROPERTY\tSCORE\tQUALITY\tWEAKEST\tMATCHED")
	for i, m := range matches {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%s\t%s\t%s\n",
			i+1, m.PropertyID, m.TotalScore, m.Quality(), m.WeakestDimension(), m.MatchedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()
}

var importCmd = &cli.Command{
	Name:  "import",
	Usage: "Load property and client bundles from JSON files into Postgres",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "properties", Usage: "JSON array of property bundles"},
		&cli.StringFlag{Name: "clients", Usage: "JSON array of client bundles"},
	},
	Action: func(c *cli.Context) error {
		var props []*models.Property
		var clients []*models.Client
		if path := c.String("properties"); path != "" {
			if err := readJSON(path, &props); err != nil {
				return err
			}
		}
		if path := c.String("clients"); path != "" {
			if err := readJSON(path, &clients); err != nil {
				return err
			}
		}
		if len(props) == 0 && len(clients) == 0 {
			return errors.New("nothing to import: pass --properties and/or --clients")
		}

		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		pg, err := e.postgres(c.Context)
		if err != nil {
			return err
		}
		if err := pg.EnsureSchema(c.Context); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		if err := importCatalog(c.Context, pg, props, clients); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "imported %d properties and %d clients\n", len(props), len(clients))
		return nil
	},
}

type catalogWriter interface {
	UpsertProperty(ctx context.Context, p *models.Property) error
	UpsertClient(ctx context.Context, c *models.Client) error
}

// importCatalog validates every bundle before writing any of them.
func importCatalog(ctx context.Context, w catalogWriter, props []*models.Property, clients []*models.Client) error {
	for i, p := range props {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("property %d: %w", i, err)
		}
	}
	for i, c := range clients {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("client %d: %w", i, err)
		}
	}

	for _, p := range props {
		if err := w.UpsertProperty(ctx, p); err != nil {
			return fmt.Errorf("upsert property %s: %w", p.ID, err)
		}
	}
	for _, c := range clients {
		if err := w.UpsertClient(ctx, c); err != nil {
			return fmt.Errorf("upsert client %s: %w", c.ID, err)
		}
	}
	return nil
}

var consoleCmd = &cli.Command{
	Name:  "console",
	Usage: "Open the terminal console over the match journal",
	Action: func(c *cli.Context) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		journal, err := e.journal()
		if err != nil {
			return err
		}
		return tui.Run(journal)
	},
}

var migrateCmd = &cli.Command{
	Name:  "migrate",
	Usage: "Create the catalog tables in Postgres if they are missing",
	Action: func(c *cli.Context) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		pg, err := e.postgres(c.Context)
		if err != nil {
			return err
		}
		return pg.EnsureSchema(c.Context)
	},
}

func readJSON(path string, dst any) error {
	if path == "" {
		return errors.New("missing file name")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
