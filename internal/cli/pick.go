package cli

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/hongfeij/weather-spotify-alarm/internal/config"
	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
	"github.com/hongfeij/weather-spotify-alarm/internal/core/services"
)

const pickTimeout = 2 * time.Minute

type pickFlags struct {
	condition   string
	location    string
	temperature float64
	weekday     string
	at          string
	play        bool
	device      string
}

// wakeRequest maps flags to a request; temperature is only set when the
// flag was given.
func (f pickFlags) wakeRequest(tempSet bool) services.WakeRequest {
	req := services.WakeRequest{
		WeatherRequest: domain.WeatherRequest{
			Location:  f.location,
			Condition: f.condition,
			Weekday:   f.weekday,
			Time:      f.at,
		},
		Play:   f.play,
		Device: f.device,
	}
	if tempSet {
		t := f.temperature
		req.Temperature = &t
	}
	return req
}

func newPickCmd() *cobra.Command {
	var f pickFlags

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Pick one wake-up track and print it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logCfg := cfg.Log
			logCfg.Stderr = true

			ctx, cancel := context.WithTimeout(cmd.Context(), pickTimeout)
			defer cancel()

			a, err := newApp(ctx, cfg, logCfg)
			if err != nil {
				return err
			}
			defer a.close()

			resp := a.alarm.Wake(ctx, f.wakeRequest(cmd.Flags().Changed("temperature")))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.condition, "condition", "", "weather condition, e.g. \"light rain\"")
	flags.StringVar(&f.location, "location", "", "location label (informational)")
	flags.Float64Var(&f.temperature, "temperature", 0, "temperature in Celsius")
	flags.StringVar(&f.weekday, "weekday", "", "weekday, e.g. Sat")
	flags.StringVar(&f.at, "time", "", "local time, e.g. 07:30")
	flags.BoolVar(&f.play, "play", false, "start playback when a player is configured")
	flags.StringVar(&f.device, "device", "", "preferred playback device name")
	return cmd
}
