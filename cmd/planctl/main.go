// planctl is a terminal client for tripmate rooms: it joins a trip's
// collaboration room, inspects and edits day itineraries, and records
// shared expenses.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tripmate/tripmate-go/internal/itinerary"
	"github.com/tripmate/tripmate-go/internal/model"
)

func main() {
	cmd := rootCommand()
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "planctl.toml",
	}
}

func tripFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:     "trip",
		Usage:    "Trip id",
		Required: true,
	}
}

func dayFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:  "day",
		Usage: "Day index (1-based)",
		Value: 1,
	}
}

func newRunner(cmd *cli.Command) (*Runner, error) {
	return NewRunner(cmd.String("config"))
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:  "planctl",
		Usage: "Collaborative trip itinerary client",
		Commands: []*cli.Command{
			daysCommand(),
			listCommand(),
			addCommand(),
			deleteCommand(),
			moveCommand(),
			expenseCommand(),
		},
	}
}

func daysCommand() *cli.Command {
	return &cli.Command{
		Name:  "days",
		Usage: "Show the valid day indices of a trip's date range",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{Name: "trip", Usage: "Trip id (fetches the range from the server)"},
			&cli.StringFlag{Name: "start", Usage: "Start date YYYY-MM-DD"},
			&cli.StringFlag{Name: "end", Usage: "End date YYYY-MM-DD"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r, err := newRunner(cmd)
			if err != nil {
				return err
			}

			start, end := cmd.String("start"), cmd.String("end")
			if tripID := cmd.Int("trip"); tripID != 0 {
				trip, err := r.fetchTrip(ctx, int64(tripID))
				if err != nil {
					return err
				}
				start, end = trip.StartDate, trip.EndDate
				r.writePlainln("%s: %s to %s", trip.Name, start, end)
			}

			days := itinerary.ComputeDaysFromStrings(start, end)
			if len(days) == 0 {
				r.writePlainln("no days")
				return nil
			}
			labels := make([]string, len(days))
			for i, d := range days {
				labels[i] = fmt.Sprintf("%d", d)
			}
			r.writePlainln("days: %s", strings.Join(labels, " "))
			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Show one day's waypoints",
		Flags: []cli.Flag{configFlag(), tripFlag(), dayFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r, err := newRunner(cmd)
			if err != nil {
				return err
			}
			tripID, day := int64(cmd.Int("trip")), cmd.Int("day")

			cache, err := r.openCache()
			if err != nil {
				return err
			}
			defer cache.Close()

			// Show the last snapshot while the room answers.
			if snapshot, ok, err := cache.Get(ctx, tripID, day); err == nil && ok {
				r.writePlainln("cached:")
				r.printWaypoints(snapshot)
			}

			store := itinerary.NewStore()
			sync, err := r.joinItinerary(ctx, tripID, store)
			if err != nil {
				return err
			}
			defer sync.Close()

			seq, err := sync.RequestDay(ctx, day)
			if err != nil {
				return err
			}
			if err := cache.Put(ctx, tripID, day, seq); err != nil {
				r.logger.Warn("failed to snapshot day", "day", day, "error", err)
			}

			r.writePlainln("day %d:", day)
			r.printWaypoints(seq)
			return nil
		},
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Append a place to a day's itinerary",
		Flags: []cli.Flag{
			configFlag(), tripFlag(), dayFlag(),
			&cli.StringFlag{Name: "name", Usage: "Place name"},
			&cli.StringFlag{Name: "location", Usage: "Place address", Required: true},
			&cli.StringFlag{Name: "time", Usage: "Planned stay duration"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r, err := newRunner(cmd)
			if err != nil {
				return err
			}
			tripID, day := int64(cmd.Int("trip")), cmd.Int("day")

			store := itinerary.NewStore()
			sync, err := r.joinItinerary(ctx, tripID, store)
			if err != nil {
				return err
			}
			defer sync.Close()

			seq, err := sync.RequestDay(ctx, day)
			if err != nil {
				return err
			}

			seq, intent := itinerary.AddPlace(seq, tripID, day, itinerary.Place{
				Name:     cmd.String("name"),
				Location: cmd.String("location"),
				TripTime: cmd.String("time"),
			})
			store.SetDay(tripID, day, seq)

			saved, err := sync.CreateWaypoint(ctx, intent)
			if err != nil {
				return err
			}
			r.writePlainln("added %s as #%d on day %d (id %s)", saved.PlaceLocation, saved.Order, day, saved.ID)
			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:  "delete",
		Usage: "Remove a waypoint from a day's itinerary",
		Flags: []cli.Flag{
			configFlag(), tripFlag(), dayFlag(),
			&cli.StringFlag{Name: "id", Usage: "Waypoint id", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r, err := newRunner(cmd)
			if err != nil {
				return err
			}
			tripID, day := int64(cmd.Int("trip")), cmd.Int("day")

			store := itinerary.NewStore()
			sync, err := r.joinItinerary(ctx, tripID, store)
			if err != nil {
				return err
			}
			defer sync.Close()

			seq, err := sync.RequestDay(ctx, day)
			if err != nil {
				return err
			}

			seq, intent, ok := itinerary.DeletePlace(seq, day, cmd.String("id"))
			if !ok {
				return fmt.Errorf("no waypoint %s on day %d", cmd.String("id"), day)
			}
			store.SetDay(tripID, day, seq)

			// Fire-and-forget; the local list already reflects the removal.
			if err := sync.DeleteWaypoint(intent); err != nil {
				return err
			}
			r.writePlainln("deleted %s from day %d", intent.WaypointID, day)
			return nil
		},
	}
}

func moveCommand() *cli.Command {
	return &cli.Command{
		Name:  "move",
		Usage: "Reorder a day's itinerary and persist the new order",
		Flags: []cli.Flag{
			configFlag(), tripFlag(), dayFlag(),
			&cli.IntFlag{Name: "from", Usage: "Current position (0-based)", Required: true},
			&cli.IntFlag{Name: "to", Usage: "Target position (0-based)", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r, err := newRunner(cmd)
			if err != nil {
				return err
			}
			tripID, day := int64(cmd.Int("trip")), cmd.Int("day")

			store := itinerary.NewStore()
			sync, err := r.joinItinerary(ctx, tripID, store)
			if err != nil {
				return err
			}
			defer sync.Close()

			seq, err := sync.RequestDay(ctx, day)
			if err != nil {
				return err
			}

			seq = itinerary.Reorder(seq, cmd.Int("from"), cmd.Int("to"))
			failed, err := sync.PersistDay(ctx, day, seq)
			if len(failed) > 0 {
				r.writePlainln("failed to persist: %s", strings.Join(failed, ", "))
			}
			if err != nil {
				return err
			}

			r.writePlainln("day %d:", day)
			r.printWaypoints(store.GetDay(tripID, day))
			return nil
		},
	}
}

func expenseCommand() *cli.Command {
	return &cli.Command{
		Name:  "expense",
		Usage: "Record and inspect shared expenses",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Record a shared cost",
				Flags: []cli.Flag{
					configFlag(), tripFlag(), dayFlag(),
					&cli.IntFlag{Name: "price", Usage: "Amount", Required: true},
					&cli.StringFlag{Name: "category", Usage: "Expense category", Required: true},
					&cli.StringFlag{Name: "description", Usage: "What the money went to", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					r, err := newRunner(cmd)
					if err != nil {
						return err
					}
					client, err := r.joinExpenses(ctx, int64(cmd.Int("trip")))
					if err != nil {
						return err
					}
					defer client.Close()

					expense, err := client.CreateExpense(ctx, model.CreateExpenseRequest{
						Price:       int64(cmd.Int("price")),
						Category:    cmd.String("category"),
						Description: cmd.String("description"),
						Day:         cmd.Int("day"),
					})
					if err != nil {
						return err
					}
					r.writePlainln("recorded %d for %s (day %d, id %s)", expense.Price, expense.Category, expense.Day, expense.ID)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List expenses, optionally for one day",
				Flags: []cli.Flag{
					configFlag(), tripFlag(),
					&cli.IntFlag{Name: "day", Usage: "Day index (0 = whole trip)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					r, err := newRunner(cmd)
					if err != nil {
						return err
					}
					client, err := r.joinExpenses(ctx, int64(cmd.Int("trip")))
					if err != nil {
						return err
					}
					defer client.Close()

					var expenses []model.Expense
					if day := cmd.Int("day"); day > 0 {
						expenses, err = client.FilterByDay(ctx, day)
					} else {
						expenses, err = client.AllExpenses(ctx)
					}
					if err != nil {
						return err
					}

					if len(expenses) == 0 {
						r.writePlainln("no expenses")
						return nil
					}
					var sum int64
					for _, e := range expenses {
						r.writePlainln("day %d  %-12s %8d  %s", e.Day, e.Category, e.Price, e.Description)
						sum += e.Price
					}
					r.writePlainln("sum: %d", sum)
					return nil
				},
			},
			{
				Name:  "total",
				Usage: "Show the trip-wide expense total",
				Flags: []cli.Flag{configFlag(), tripFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					r, err := newRunner(cmd)
					if err != nil {
						return err
					}
					client, err := r.joinExpenses(ctx, int64(cmd.Int("trip")))
					if err != nil {
						return err
					}
					defer client.Close()

					total, err := client.TotalExpense(ctx)
					if err != nil {
						return err
					}
					r.writePlainln("total: %d", total)
					return nil
				},
			},
		},
	}
}
