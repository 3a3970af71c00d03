// Package cli wires configuration, logging and the entry store into the
// lw command tree. The bare command opens the interactive UI.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/lw/internal/config"
	"github.com/idilsaglam/lw/internal/logger"
	"github.com/idilsaglam/lw/internal/store/jsonstore"
	"github.com/idilsaglam/lw/internal/tui"
	"github.com/idilsaglam/lw/internal/tui/popup"
	"github.com/idilsaglam/lw/internal/ui"
)

// env is what every subcommand gets after PersistentPreRunE.
type env struct {
	cfg    config.Config
	log    zerolog.Logger
	closer io.Closer
}

func (e *env) openStore() (*jsonstore.Store, error) {
	s, err := jsonstore.Load(e.cfg.File, jsonstore.WithLogger(e.log))
	if err != nil {
		if errors.Is(err, jsonstore.ErrCorruptState) {
			e.log.Error().Err(err).Str("path", e.cfg.File).Msg("refusing to open corrupt entry file")
			return nil, fmt.Errorf("%w\nlw will not overwrite it; fix or move %s and try again", err, e.cfg.File)
		}
		return nil, fmt.Errorf("load: %w", err)
	}
	return s, nil
}

// New builds the root command.
func New() *cobra.Command {
	e := &env{log: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:           config.AppName,
		Short:         "Log your work from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.New()
			if err != nil {
				return err
			}
			if err := config.BindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			e.cfg = cfg
			ui.SetTheme(cfg.Theme)

			l, closer, err := logger.New(cfg.LogLevel, cfg.LogFile)
			if err != nil {
				// Logging is optional; the journal is not.
				ui.Fail(cmd.ErrOrStderr(), "log: "+err.Error())
				l, closer = zerolog.Nop(), io.NopCloser(nil)
			}
			e.log, e.closer = l, closer
			e.log.Debug().Str("file", cfg.File).Str("config", cfg.ConfigFile).Str("command", cmd.Name()).Msg("start")
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if e.closer != nil {
				return e.closer.Close()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := e.openStore()
			if err != nil {
				return err
			}
			return tui.Run(s, tui.Options{
				Editor: popup.Options{AllowEmpty: e.cfg.AllowEmpty},
				Logger: &e.log,
			})
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("file", "", "entry file (default <config dir>/lw/entries.json)")
	pf.String("theme", "", "color theme: classic, neon or mono")
	pf.String("log-level", "", "log level: debug, info, warn, error or disabled")
	pf.String("log-file", "", "log file (default <config dir>/lw/lw.log)")

	addAdd(cmd, e)
	addList(cmd, e)
	addRemove(cmd, e)
	addVersion(cmd)
	return cmd
}
