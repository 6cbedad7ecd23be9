package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/logiops360/logiops-cli/internal/anomaly"
	"github.com/logiops360/logiops-cli/internal/delay"
	"github.com/logiops360/logiops-cli/internal/kpi"
	"github.com/logiops360/logiops-cli/internal/model"
	"github.com/logiops360/logiops-cli/pkg/logiops"
)

var jsonOut bool

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// -- delay --

var delayCmd = &cobra.Command{
	Use:   "delay",
	Short: "Delay-risk card",
}

var delayListCmd = &cobra.Command{
	Use:   "list",
	Short: "List shipments by delay risk",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()
		if err := requireSession(env); err != nil {
			return err
		}

		risk, _ := cmd.Flags().GetString("risk")
		more, _ := cmd.Flags().GetInt("more")
		f, err := delay.ParseFilter(risk)
		if err != nil {
			return err
		}

		a := env.Board.Delay
		if err := a.Load(ctx); err != nil {
			return eris.Wrap(err, "delay list")
		}
		for range more {
			if err := a.Expand(ctx); err != nil {
				return eris.Wrap(err, "delay list expand")
			}
		}
		if err := a.SetFilter(f); err != nil {
			return err
		}

		v := a.View()
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), v)
		}
		formatDelayView(cmd.OutOrStdout(), v)
		return nil
	},
}

var delayShowCmd = &cobra.Command{
	Use:   "show <shipment-id>",
	Short: "Show one shipment's delay detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()
		if err := requireSession(env); err != nil {
			return err
		}

		d, err := env.Board.Delay.Detail(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "delay show")
		}
		v := delay.NewDetailView(d)
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), v)
		}
		formatDelayDetail(cmd.OutOrStdout(), v)
		return nil
	},
}

// formatDelayView writes the risk counts and visible tiles to out.
func formatDelayView(out io.Writer, v delay.View) {
	fmt.Fprintf(out, "Filtre: %s    Chargés: %d (page %d)    Visibles: %d    En retard: %d\n",
		v.Filter.Label(), v.Loaded, v.PageSize, v.Summary.Total, v.Summary.Late)
	if v.Error != "" {
		fmt.Fprintf(out, "Erreur: %s\n", v.Error)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, r := range logiops.Risks {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", r.Label(), v.Counts[r])
	}
	_ = w.Flush()
	fmt.Fprintln(out)

	if len(v.Tiles) == 0 {
		fmt.Fprintln(out, "Aucune expédition.")
		return
	}
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SHIPMENT\tLANE\tCARRIER\tRISK\tDELAY\tSHIP_TIME")
	for _, t := range v.Tiles {
		_, _ = fmt.Fprintf(w, "%s\t%s → %s\t%s\t%s\t%s\t%s\n",
			t.ShipmentID, t.Origin, t.DestinationZone, t.Carrier, t.RiskLabel, t.DelayText, t.ShipTime)
	}
	_ = w.Flush()
}

func formatDelayDetail(out io.Writer, v delay.DetailView) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Shipment:\t%s\n", v.ShipmentID)
	_, _ = fmt.Fprintf(w, "Lane:\t%s → %s\n", v.Origin, v.DestinationZone)
	_, _ = fmt.Fprintf(w, "Carrier:\t%s\n", v.Carrier)
	_, _ = fmt.Fprintf(w, "Risk:\t%s\n", v.RiskLabel)
	_, _ = fmt.Fprintf(w, "ETA:\t%s\n", hours(v.EtaPredH))
	_, _ = fmt.Fprintf(w, "SLA:\t%s\n", hours(v.SLAHours))
	_, _ = fmt.Fprintf(w, "Delay:\t%s (%s)\n", v.DelayText, v.Status)
	_ = w.Flush()
}

func hours(h *float64) string {
	if h == nil {
		return "—"
	}
	return strconv.FormatFloat(*h, 'f', 2, 64) + " h"
}

// -- anomaly --

var anomalyCmd = &cobra.Command{
	Use:   "anomaly",
	Short: "Phase-anomaly card",
}

var anomalyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List shipments with anomalous phases",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()
		if err := requireSession(env); err != nil {
			return err
		}

		sevFlag, _ := cmd.Flags().GetString("severity")
		countFlag, _ := cmd.Flags().GetString("count")
		more, _ := cmd.Flags().GetInt("more")
		sev, err := anomaly.ParseSeverity(sevFlag)
		if err != nil {
			return err
		}
		bucket, err := anomaly.ParseBucket(countFlag)
		if err != nil {
			return err
		}

		a := env.Board.Anomaly
		if err := a.Load(ctx); err != nil {
			return eris.Wrap(err, "anomaly list")
		}
		for range more {
			if err := a.Expand(ctx); err != nil {
				return eris.Wrap(err, "anomaly list expand")
			}
		}
		if err := a.SetSeverity(sev); err != nil {
			return err
		}
		if err := a.SetCountBucket(bucket); err != nil {
			return err
		}

		v := a.View()
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), v)
		}
		formatAnomalyView(cmd.OutOrStdout(), v)
		return nil
	},
}

var anomalyShowCmd = &cobra.Command{
	Use:   "show <shipment-id>",
	Short: "Show a shipment's phases against P90",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()
		if err := requireSession(env); err != nil {
			return err
		}

		if err := env.Board.Anomaly.Load(ctx); err != nil {
			return eris.Wrap(err, "anomaly show")
		}
		d, err := env.Board.Anomaly.DetailFor(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "anomaly show")
		}
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), d)
		}
		email, _ := cmd.Flags().GetBool("email")
		formatAnomalyDetail(cmd.OutOrStdout(), d, email)
		return nil
	},
}

// formatAnomalyView writes the severity counts, histogram, and groups.
func formatAnomalyView(out io.Writer, v anomaly.View) {
	sevLabel := "Toutes"
	if v.Severity != anomaly.SeverityAll {
		sevLabel = logiops.Severity(v.Severity).Label()
	}
	fmt.Fprintf(out, "Sévérité: %s    Phases: %s    Chargées: %d (page %d)\n",
		sevLabel, v.Bucket, v.Loaded, v.PageSize)
	if v.Error != "" {
		fmt.Fprintf(out, "Erreur: %s\n", v.Error)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, s := range logiops.Severities {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", s.Label(), v.SeverityCounts[s])
	}
	if sh := v.Summary.Shipments; sh != nil {
		for _, b := range model.Buckets {
			_, _ = fmt.Fprintf(w, "%s phase(s)\t%d\n", b, sh.ByCount[b])
		}
	}
	_ = w.Flush()
	fmt.Fprintln(out)

	if len(v.Groups) == 0 {
		fmt.Fprintln(out, "Aucune anomalie.")
		return
	}
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SHIPMENT\tTITLE\tCARRIER\tSEVERITY\tMAX_RETARD_H")
	for _, g := range v.Groups {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\n",
			g.ShipmentID, g.Title(), g.Sample.Carrier, g.Sample.Severity.Label(), g.MaxRetardH)
	}
	_ = w.Flush()
}

func formatAnomalyDetail(out io.Writer, d *anomaly.Detail, withEmail bool) {
	fmt.Fprintf(out, "Shipment %s • %s • %s → %s\n", d.ShipmentID, d.Carrier, d.Origin, d.DestinationZone)
	fmt.Fprintf(out, "%d phase(s) au-delà du P90\n\n", d.AnomalousCount)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "\tEVENT\tPHASE\tDURATION_H\tP50_H\tP90_H\tANOMALY")
	for _, p := range d.Phases {
		mark := ""
		if p.Selected {
			mark = ">"
		}
		flag := ""
		if p.Anomalous {
			flag = "oui"
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			mark, p.EventID, p.Phase, fixed2(p.DurationH), fixed2(p.P50DurationH), fixed2(p.P90DurationH), flag)
	}
	_ = w.Flush()

	if withEmail {
		fmt.Fprintf(out, "\nObjet: %s\n\n%s\n\n%s\n", d.Email.Subject, d.Email.Body, d.Email.MailtoURL())
	}
}

func fixed2(v *float64) string {
	if v == nil {
		return "—"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

// -- kpi --

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Show the KPI tiles",
	Long:  "Loads the delay and anomaly lists so their summaries reach the KPI tiles, then fetches the in-progress counter.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx, "cli")
		if err != nil {
			return err
		}
		defer env.Close()
		if err := requireSession(env); err != nil {
			return err
		}

		v, err := env.Board.Load(ctx, string(model.ProfileSupervisor))
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), v.KPI)
		}
		formatTiles(cmd.OutOrStdout(), v.KPI.Tiles)
		return nil
	},
}

func formatTiles(out io.Writer, tiles []kpi.Tile) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, t := range tiles {
		alert := ""
		if t.Alert {
			alert = "!"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", t.Title, t.Value, alert)
	}
	_ = w.Flush()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print JSON instead of tables")

	delayListCmd.Flags().String("risk", "all", "risk filter (all, en_temps, limite, retard, retard_critique)")
	delayListCmd.Flags().Int("more", 0, "number of extra pages to load")
	delayCmd.AddCommand(delayListCmd, delayShowCmd)

	anomalyListCmd.Flags().String("severity", "all", "severity filter (all, haute, moyenne, basse)")
	anomalyListCmd.Flags().String("count", "all", "phase-count bucket (all, 1, 2, 3, 4, 5+)")
	anomalyListCmd.Flags().Int("more", 0, "number of extra pages to load")
	anomalyShowCmd.Flags().Bool("email", false, "print the carrier contact draft")
	anomalyCmd.AddCommand(anomalyListCmd, anomalyShowCmd)

	rootCmd.AddCommand(delayCmd, anomalyCmd, kpiCmd)
}
