package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	scoreboardsvc "github.com/bryanwahyu/esr-tracker/src/app/scoreboard"
	"github.com/bryanwahyu/esr-tracker/src/app/tracker"
	"github.com/bryanwahyu/esr-tracker/src/domain/match"
	"github.com/bryanwahyu/esr-tracker/src/domain/scoreboard"
	"github.com/bryanwahyu/esr-tracker/src/domain/shared"
	"github.com/bryanwahyu/esr-tracker/src/infra/xlsxexport"
)

func table(w io.Writer, header string, rows func(tw *tabwriter.Writer)) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	return tw.Flush()
}

func teamCommand() *cli.Command {
	return &cli.Command{
		Name:  "team",
		Usage: "manage teams",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "add a team",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "score", Usage: "starting score"},
				},
				Action: action(func(c *cli.Context, e *env) error {
					name, err := argument(c, 0, "NAME")
					if err != nil {
						return err
					}
					t, err := e.store.AddTeam(c.Context, tracker.AddTeamCommand{
						Name:         shared.TeamName(name),
						InitialScore: c.Int("score"),
					})
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Added team %s (score %d)\n", t.Name, t.Score)
					return nil
				}),
			},
			{
				Name:      "remove",
				Usage:     "remove a team; its matches are kept",
				ArgsUsage: "NAME",
				Action: action(func(c *cli.Context, e *env) error {
					name, err := argument(c, 0, "NAME")
					if err != nil {
						return err
					}
					if err := e.store.RemoveTeam(c.Context, tracker.RemoveTeamCommand{Name: shared.TeamName(name)}); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Removed team %s\n", name)
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "list teams in insertion order",
				Action: action(func(c *cli.Context, e *env) error {
					return table(c.App.Writer, "TEAM\tSCORE", func(tw *tabwriter.Writer) {
						for _, t := range e.store.Teams() {
							fmt.Fprintf(tw, "%s\t%d\n", t.Name, t.Score)
						}
					})
				}),
			},
		},
	}
}

func gameCommand() *cli.Command {
	return &cli.Command{
		Name:  "game",
		Usage: "manage games",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "add a game",
				ArgsUsage: "TITLE",
				Action: action(func(c *cli.Context, e *env) error {
					title, err := argument(c, 0, "TITLE")
					if err != nil {
						return err
					}
					g, err := e.store.AddGame(c.Context, tracker.AddGameCommand{Title: shared.GameTitle(title)})
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Added game %s\n", g.Title)
					return nil
				}),
			},
			{
				Name:      "remove",
				Usage:     "remove a game; its matches are kept",
				ArgsUsage: "TITLE",
				Action: action(func(c *cli.Context, e *env) error {
					title, err := argument(c, 0, "TITLE")
					if err != nil {
						return err
					}
					if err := e.store.RemoveGame(c.Context, tracker.RemoveGameCommand{Title: shared.GameTitle(title)}); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Removed game %s\n", title)
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "list games in insertion order",
				Action: action(func(c *cli.Context, e *env) error {
					return table(c.App.Writer, "GAME", func(tw *tabwriter.Writer) {
						for _, g := range e.store.Games() {
							fmt.Fprintln(tw, g.Title)
						}
					})
				}),
			},
		},
	}
}

func matchCommand() *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "record and list match results",
		Subcommands: []*cli.Command{
			{
				Name:  "record",
				Usage: "record a result and credit the winner",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Usage: "match date (YYYY-MM-DD), defaults to today"},
					&cli.StringFlag{Name: "game", Usage: "game title, defaults to the first game"},
					&cli.StringFlag{Name: "team1", Usage: "first team, defaults to the first team"},
					&cli.StringFlag{Name: "team2", Usage: "second team, defaults to the second team"},
					&cli.StringFlag{Name: "winner", Usage: "winning team", Required: true},
				},
				Action: action(recordMatch),
			},
			{
				Name:  "list",
				Usage: "list matches in the order they were recorded",
				Action: action(func(c *cli.Context, e *env) error {
					return printMatches(c.App.Writer, e.store.Matches())
				}),
			},
		},
	}
}

func recordMatch(c *cli.Context, e *env) error {
	cmd := tracker.RecordMatchCommand{
		Date:   strings.TrimSpace(c.String("date")),
		Game:   shared.GameTitle(strings.TrimSpace(c.String("game"))),
		Team1:  shared.TeamName(strings.TrimSpace(c.String("team1"))),
		Team2:  shared.TeamName(strings.TrimSpace(c.String("team2"))),
		Winner: shared.TeamName(strings.TrimSpace(c.String("winner"))),
	}
	if cmd.Date == "" {
		cmd.Date = e.now().Format(match.DateLayout)
	}
	if cmd.Game == "" {
		if games := e.store.Games(); len(games) > 0 {
			cmd.Game = games[0].Title
		}
	}
	teams := e.store.Teams()
	if cmd.Team1 == "" && len(teams) > 0 {
		cmd.Team1 = teams[0].Name
	}
	if cmd.Team2 == "" && len(teams) > 1 {
		cmd.Team2 = teams[1].Name
	}

	res, err := e.store.RecordMatch(c.Context, cmd)
	if err != nil {
		return err
	}
	m := res.Match
	fmt.Fprintf(c.App.Writer, "Recorded %s: %s vs %s in %s, winner %s\n", m.Date, m.Team1, m.Team2, m.Game, m.Winner)
	if res.Credited == "" {
		fmt.Fprintf(c.App.Writer, "No team credited: %s is not on the roster or did not play\n", m.Winner)
	}
	return nil
}

func printMatches(w io.Writer, matches []match.Match) error {
	return table(w, "DATE\tGAME\tTEAM 1\tTEAM 2\tWINNER", func(tw *tabwriter.Writer) {
		for _, m := range matches {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.Date, m.Game, m.Team1, m.Team2, m.Winner)
		}
	})
}

func printStandings(w io.Writer, scoreLabel string, standings []scoreboard.Standing) error {
	return table(w, "RANK\tTEAM\t"+scoreLabel, func(tw *tabwriter.Writer) {
		for i, s := range standings {
			fmt.Fprintf(tw, "%d\t%s\t%d\n", i+1, s.Team, s.Score)
		}
	})
}

func scoreboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "scoreboard",
		Usage: "show rankings and recent results",
		Subcommands: []*cli.Command{
			{
				Name:  "recent",
				Usage: "most recent matches, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "n", Usage: "number of matches (defaults to the configured limit)"},
				},
				Action: action(func(c *cli.Context, e *env) error {
					matches, err := e.board.RecentMatches(c.Context, scoreboardsvc.RecentQuery{Limit: c.Int("n")})
					if err != nil {
						return err
					}
					return printMatches(c.App.Writer, matches)
				}),
			},
			{
				Name:  "overall",
				Usage: "teams ranked by score",
				Action: action(func(c *cli.Context, e *env) error {
					standings, err := e.board.OverallStandings(c.Context)
					if err != nil {
						return err
					}
					return printStandings(c.App.Writer, "SCORE", standings)
				}),
			},
			{
				Name:  "games",
				Usage: "games with at least one recorded match",
				Action: action(func(c *cli.Context, e *env) error {
					titles, err := e.board.PlayedGames(c.Context)
					if err != nil {
						return err
					}
					for _, t := range titles {
						fmt.Fprintln(c.App.Writer, t)
					}
					return nil
				}),
			},
			{
				Name:      "game",
				Usage:     "wins per team within one game",
				ArgsUsage: "[TITLE]",
				Action: action(func(c *cli.Context, e *env) error {
					title := shared.GameTitle(strings.TrimSpace(c.Args().First()))
					if title == "" {
						titles, err := e.board.PlayedGames(c.Context)
						if err != nil {
							return err
						}
						if len(titles) == 0 {
							return errors.New("no matches recorded yet")
						}
						title = titles[0]
					}
					standings, err := e.board.GameStandings(c.Context, scoreboardsvc.GameQuery{Title: title})
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%s\n", title)
					return printStandings(c.App.Writer, "WINS", standings)
				}),
			},
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write every scoreboard to an XLSX workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: `output path or "-" for stdout`, Value: "scoreboard.xlsx"},
		},
		Action: action(func(c *cli.Context, e *env) error {
			report, err := e.board.BuildReport(c.Context)
			if err != nil {
				return err
			}
			out := c.String("out")
			if out == "-" {
				return xlsxexport.Export(c.App.Writer, report)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := xlsxexport.Export(f, report); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Wrote %s\n", out)
			return nil
		}),
	}
}
