package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/akeren/participant-console/config"
	"github.com/akeren/participant-console/domain/participant"
	"github.com/akeren/participant-console/internal/log"
	"github.com/akeren/participant-console/pkg/constants"
	"github.com/akeren/participant-console/pkg/restclient"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	apiURLKey  = "api-url"
	timeoutKey = "timeout"
	verboseKey = "verbose"
)

var (
	red   = color.New(color.FgRed).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
)

// session is what every subcommand works against: the console state mounted
// from one fresh list fetch.
type session struct {
	ctx     context.Context
	service participant.ParticipantService
}

type cli struct {
	cfgFile string
	config  *viper.Viper
}

func createRootCmd() *cobra.Command {
	app := &cli{config: viper.New()}

	cmd := &cobra.Command{
		Use:   "participants",
		Short: "Manage event participants through the participant API",
		Long: `participants runs one console action per invocation against the
participant API: it loads the current list, performs the action and prints
the resulting status banner and participant table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.initConfig(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&app.cfgFile, "config", "", "config file (yaml) with api-url and timeout")
	cmd.PersistentFlags().String(apiURLKey, constants.DefaultParticipantAPIURL, "base URL of the participant API")
	cmd.PersistentFlags().Duration(timeoutKey, 10*time.Second, "per-request timeout")
	cmd.PersistentFlags().BoolP(verboseKey, "v", false, "log outbound requests to stderr")

	cmd.AddCommand(
		createListCmd(app),
		createGetCmd(app),
		createAddCmd(app),
		createUpdateCmd(app),
		createDeleteCmd(app),
	)

	return cmd
}

// initConfig layers flags over env vars over the optional config file.
func (app *cli) initConfig(cmd *cobra.Command) error {
	if app.cfgFile != "" {
		app.config.SetConfigFile(app.cfgFile)
		if err := app.config.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", app.cfgFile, err)
		}
	}

	_ = app.config.BindEnv(apiURLKey, config.ParticipantAPIURLKey)
	_ = app.config.BindEnv(timeoutKey, config.ParticipantAPITimeoutKey)

	return app.config.BindPFlags(cmd.Flags())
}

func (app *cli) logger(cmd *cobra.Command) *log.Logger {
	var w io.Writer = io.Discard
	if app.config.GetBool(verboseKey) {
		w = cmd.ErrOrStderr()
	}
	return log.NewLoggerWithWriter(w, slog.LevelInfo)
}

// mount builds the console and performs the initial refresh. A failed refresh
// is not fatal; the banner reports it like the console would.
func (app *cli) mount(cmd *cobra.Command) (*session, error) {
	logger := app.logger(cmd)

	client, err := restclient.New(&restclient.Config{
		BaseURL: app.config.GetString(apiURLKey),
		Timeout: app.config.GetDuration(timeoutKey),
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx := log.ContextWithCorrelationID(parent, log.GenerateCorrelationID())

	service := participant.NewParticipantService(logger, participant.NewParticipantRepository(client))
	_ = service.Refresh(ctx)

	return &session{ctx: ctx, service: service}, nil
}
