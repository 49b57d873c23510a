/*
main.go - Headless policy runner

PURPOSE:
  Plays a session without a client using engine.DefaultPolicy and prints
  one line per committed event plus a summary. Useful for tuning catalog
  probabilities and amounts.

COMMAND-LINE FLAGS:
  -days       Days to play (default: 30)
  -seed       Engine seed (default: 1)
  -catalog    Scenario folder; empty uses the built-in catalog
  -segment    Profile segment (default: early_career)
  -mood       Profile mood (default: optimistic)
  -pay-type   weekly | biweekly | semimonthly | monthly
  -pay        Pay amount (default: 2200)
  -balance    Starting balance (default: 1500)
  -json       Print rows as JSON instead of a table
  -export     Write the catalog as JSON to this path and exit

EXAMPLES:
  ./simulate -days 90 -seed 7 -segment retiree -mood cautious
  ./simulate -export scenarios/default.json

SEE ALSO:
  - engine/policy.go: Run and DefaultPolicy
  - catalog/schema.go: Export format
*/
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/warp/scenario-engine/catalog"
	"github.com/warp/scenario-engine/config"
	"github.com/warp/scenario-engine/engine"
	"github.com/warp/scenario-engine/hud"
	"github.com/warp/scenario-engine/profile"
)

func main() {
	def := profile.Default()

	days := flag.Int("days", 30, "days to play")
	seed := flag.Int64("seed", 1, "engine seed")
	catalogDir := flag.String("catalog", "", "scenario folder (empty = built-in)")
	segment := flag.String("segment", string(def.Segment), "profile segment")
	mood := flag.String("mood", string(def.Mood), "profile mood")
	payType := flag.String("pay-type", string(def.PayCycle.Type), "pay cycle type")
	pay := flag.Float64("pay", def.PayCycle.Amount, "pay amount")
	balance := flag.Float64("balance", def.StartingBalance, "starting balance")
	asJSON := flag.Bool("json", false, "print rows as JSON")
	export := flag.String("export", "", "write the catalog as JSON and exit")
	flag.Parse()

	cat, err := catalog.Load(*catalogDir)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	if *export != "" {
		data, err := catalog.Marshal(cat.Scenarios())
		if err != nil {
			log.Fatalf("Failed to encode catalog: %v", err)
		}
		if err := os.WriteFile(*export, data, 0o644); err != nil {
			log.Fatalf("Failed to write %s: %v", *export, err)
		}
		log.Printf("Wrote %d scenarios to %s", cat.Len(), *export)
		return
	}

	p := def
	p.Segment = profile.SegmentKey(*segment)
	p.Mood = profile.MoodKey(*mood)
	p.PayCycle.Type = profile.PayType(*payType)
	p.PayCycle.Amount = *pay
	p.StartingBalance = *balance

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	e := engine.New(cat, cfg.Engine.Options(*seed)...)
	rows, err := engine.Run(e, p, *days, engine.DefaultPolicy)
	if err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			log.Fatalf("Failed to encode rows: %v", err)
		}
		return
	}

	status := hud.New(engine.Money(p.StartingBalance))
	for _, day := range engine.Days(e.History(0)) {
		status.Apply(day)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tEVENT\tTYPE\tCHOICE\tAMOUNT\tBALANCE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.Day, r.Name, r.Category, r.Choice, hud.FormatMoney(r.Amount), hud.FormatMoney(r.BalanceAfter))
	}
	tw.Flush()

	snap := status.Snapshot(e.Day())
	fmt.Printf("\n%d days, %d events, final balance %s\n", *days, len(rows), hud.FormatMoney(e.Balance()))
	fmt.Printf("checking %s  savings %s  investments %s  health %.1f  trophies %d/%d\n",
		hud.FormatMoney(snap.Accounts.Checking), hud.FormatMoney(snap.Accounts.Savings), hud.FormatMoney(snap.Accounts.Investments),
		snap.Health, snap.Trophies.Earned, snap.Trophies.Total)
	for _, plan := range e.Plans() {
		fmt.Printf("plan %q: %s of %s, due day %d\n",
			plan.Name, hud.FormatMoney(plan.Contributed), hud.FormatMoney(plan.Total), plan.DueDay)
	}
}
