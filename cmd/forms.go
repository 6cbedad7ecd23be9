package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/logiops360/logiops-cli/internal/dashboard"
	"github.com/logiops360/logiops-cli/internal/predict"
	"github.com/logiops360/logiops-cli/pkg/logiops"
)

var (
	etaForm     = predict.DefaultETAForm()
	carrierForm = predict.DefaultCarrierForm()
)

// -- eta --

var etaCmd = &cobra.Command{
	Use:   "eta",
	Short: "ETA prediction form",
}

var etaOptionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the values known to the ETA model",
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

		opts, err := env.Board.ETA.Options(ctx, env.Board.Token())
		if err != nil {
			return eris.Wrap(err, "eta options")
		}
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), opts)
		}
		formatETAOptions(cmd.OutOrStdout(), opts)
		return nil
	},
}

var etaShowCmd = &cobra.Command{
	Use:   "show <shipment-id>",
	Short: "Predict the ETA of a known shipment",
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

		res, err := env.Board.ETA.ByID(ctx, env.Board.Token(), args[0])
		if err != nil {
			return eris.Wrap(err, "eta show")
		}
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), res)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ETA %s\n", res.ShipmentID, hours(res.EtaHours))
		return nil
	},
}

var etaPredictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the ETA of a hypothetical shipment",
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

		eta, err := env.Board.ETA.WhatIf(ctx, env.Board.Token(), etaForm)
		if err != nil {
			return eris.Wrap(err, "eta predict")
		}
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), map[string]*float64{"eta_hours": eta})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s → %s via %s (%s): ETA %s\n",
			etaForm.Origin, etaForm.DestinationZone, etaForm.Carrier, etaForm.ServiceLevel, hours(eta))
		return nil
	},
}

func formatETAOptions(out io.Writer, o *predict.ETAOptions) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Origins:\t%s\n", strings.Join(o.Distincts.Origin, ", "))
	_, _ = fmt.Fprintf(w, "Destinations:\t%s\n", strings.Join(o.Distincts.DestinationZone, ", "))
	_, _ = fmt.Fprintf(w, "Carriers:\t%s\n", strings.Join(o.Distincts.Carrier, ", "))
	_, _ = fmt.Fprintf(w, "Service levels:\t%s\n", strings.Join(o.Distincts.ServiceLevel, ", "))
	_, _ = fmt.Fprintf(w, "Shipments:\t%d (newest %s)\n", len(o.ShipmentIDs), o.Selected)
	_, _ = fmt.Fprintf(w, "Form:\t%s → %s via %s (%s)\n", o.Form.Origin, o.Form.DestinationZone, o.Form.Carrier, o.Form.ServiceLevel)
	_ = w.Flush()
}

// -- carrier --

var carrierCmd = &cobra.Command{
	Use:   "carrier",
	Short: "Carrier recommendation form",
}

var carrierOptionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the lane values known to the recommender",
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

		opts, err := env.Board.Carrier.Options(ctx, env.Board.Token())
		if err != nil {
			return eris.Wrap(err, "carrier options")
		}
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), opts)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(w, "Origins:\t%s\n", strings.Join(opts.Distincts.Origin, ", "))
		_, _ = fmt.Fprintf(w, "Destinations:\t%s\n", strings.Join(opts.Distincts.DestinationZone, ", "))
		_, _ = fmt.Fprintf(w, "Service levels:\t%s\n", strings.Join(opts.Distincts.ServiceLevel, ", "))
		return w.Flush()
	},
}

var carrierRecommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Score carriers for a lane",
	Long:  "Scores carriers for a lane. Lane fields left empty take the first value the recommender knows.",
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
		token := env.Board.Token()

		req := carrierForm
		if req.Origin == "" || req.DestinationZone == "" || req.ServiceLevel == "" {
			opts, err := env.Board.Carrier.Options(ctx, token)
			if err != nil {
				return eris.Wrap(err, "carrier options")
			}
			req = fillLane(req, opts.Form)
		}

		rec, err := env.Board.Carrier.Recommend(ctx, token, req)
		if err != nil {
			return eris.Wrap(err, "carrier recommend")
		}
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), rec)
		}
		formatRecommendation(cmd.OutOrStdout(), rec)
		return nil
	},
}

// fillLane copies the lane fields missing from req out of defaults.
func fillLane(req, defaults logiops.RecommendRequest) logiops.RecommendRequest {
	if req.Origin == "" {
		req.Origin = defaults.Origin
	}
	if req.DestinationZone == "" {
		req.DestinationZone = defaults.DestinationZone
	}
	if req.ServiceLevel == "" {
		req.ServiceLevel = defaults.ServiceLevel
	}
	return req
}

func formatRecommendation(out io.Writer, rec *predict.Recommendation) {
	if rec.Best == nil {
		msg := rec.Message
		if msg == "" {
			msg = "Aucun transporteur recommandé."
		}
		fmt.Fprintln(out, msg)
		return
	}
	fmt.Fprintf(out, "Recommandé: %s (%s)\n%s\n", rec.Best.Carrier, rec.Best.ServiceLevel, rec.Summary)
	if len(rec.TopK) == 0 {
		return
	}
	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CARRIER\tSERVICE\tMETRICS")
	for _, c := range rec.TopK {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", c.Carrier, c.ServiceLevel, predict.Describe(c))
	}
	_ = w.Flush()
}

// -- dashboard --

var dashboardCmd = &cobra.Command{
	Use:   "dashboard [profile]",
	Short: "Render a profile's dashboard",
	Long:  "Loads every card of a profile's view. The profile defaults to the signed-in user's.",
	Args:  cobra.MaximumNArgs(1),
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

		profile := ""
		if len(args) == 1 {
			profile = args[0]
		} else if s, err := env.Sessions.Current(ctx); err == nil {
			profile = string(s.User.TypeProfil)
		}

		v, err := env.Board.Load(ctx, profile)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), v)
		}
		formatDashboard(cmd.OutOrStdout(), v)
		return nil
	},
}

func formatDashboard(out io.Writer, v *dashboard.View) {
	fmt.Fprintf(out, "== %s ==\n\n", v.Label)
	for _, c := range v.Cards {
		if msg, ok := v.Errors[c]; ok {
			fmt.Fprintf(out, "[%s] erreur: %s\n\n", c, msg)
			continue
		}
		switch c {
		case dashboard.CardKPI:
			formatTiles(out, v.KPI.Tiles)
		case dashboard.CardDelay:
			formatDelayView(out, *v.Delay)
		case dashboard.CardAnomaly:
			formatAnomalyView(out, *v.Anomaly)
		case dashboard.CardETA:
			formatETAOptions(out, v.ETA)
		case dashboard.CardCarrier:
			fmt.Fprintf(out, "Transporteurs: %d origines, %d destinations\n",
				len(v.Carrier.Distincts.Origin), len(v.Carrier.Distincts.DestinationZone))
		}
		fmt.Fprintln(out)
	}
}

func init() {
	f := etaPredictCmd.Flags()
	f.StringVar(&etaForm.Origin, "origin", etaForm.Origin, "origin site")
	f.StringVar(&etaForm.DestinationZone, "destination", etaForm.DestinationZone, "destination zone")
	f.StringVar(&etaForm.Carrier, "carrier", etaForm.Carrier, "carrier")
	f.StringVar(&etaForm.ServiceLevel, "service", etaForm.ServiceLevel, "service level")
	f.IntVar(&etaForm.ShipDow, "dow", etaForm.ShipDow, "ship day of week (0-6)")
	f.IntVar(&etaForm.ShipHour, "hour", etaForm.ShipHour, "ship hour (0-23)")
	f.Float64Var(&etaForm.DistanceKm, "distance-km", etaForm.DistanceKm, "distance in km")
	f.Float64Var(&etaForm.WeightKg, "weight-kg", etaForm.WeightKg, "weight in kg")
	f.Float64Var(&etaForm.VolumeM3, "volume-m3", etaForm.VolumeM3, "volume in m³")
	f.IntVar(&etaForm.TotalUnits, "units", etaForm.TotalUnits, "total units")
	f.IntVar(&etaForm.NLines, "lines", etaForm.NLines, "order lines")
	etaCmd.AddCommand(etaOptionsCmd, etaShowCmd, etaPredictCmd)

	f = carrierRecommendCmd.Flags()
	f.StringVar(&carrierForm.Origin, "origin", carrierForm.Origin, "origin site")
	f.StringVar(&carrierForm.DestinationZone, "destination", carrierForm.DestinationZone, "destination zone")
	f.StringVar(&carrierForm.ServiceLevel, "service", carrierForm.ServiceLevel, "service level")
	f.IntVar(&carrierForm.ShipDow, "dow", carrierForm.ShipDow, "ship day of week (0-6)")
	f.IntVar(&carrierForm.ShipHour, "hour", carrierForm.ShipHour, "ship hour (0-23)")
	f.Float64Var(&carrierForm.DistanceKm, "distance-km", carrierForm.DistanceKm, "distance in km")
	f.Float64Var(&carrierForm.WeightKg, "weight-kg", carrierForm.WeightKg, "weight in kg")
	f.Float64Var(&carrierForm.VolumeM3, "volume-m3", carrierForm.VolumeM3, "volume in m³")
	f.IntVar(&carrierForm.TotalUnits, "units", carrierForm.TotalUnits, "total units")
	f.IntVar(&carrierForm.NLines, "lines", carrierForm.NLines, "order lines")
	f.IntVar(&carrierForm.TopK, "topk", carrierForm.TopK, "number of ranked alternatives")
	carrierCmd.AddCommand(carrierOptionsCmd, carrierRecommendCmd)

	rootCmd.AddCommand(etaCmd, carrierCmd, dashboardCmd)
}
