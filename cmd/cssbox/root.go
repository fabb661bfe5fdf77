package main

import (
	"github.com/benoitkugler/cssbox/config"
	"github.com/benoitkugler/cssbox/logger"
	"github.com/benoitkugler/cssbox/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// app is the state shared by the commands.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	root := &cobra.Command{
		Use:           "cssbox",
		Short:         "cssbox lays out HTML documents styled with CSS 2.1",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return logger.Init(logger.Options{
				Level:      cfg.Log.Level,
				Format:     cfg.Log.Format,
				File:       cfg.Log.File,
				MaxSizeMB:  cfg.Log.MaxSizeMB,
				MaxBackups: cfg.Log.MaxBackups,
			})
		},
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./cssbox.yaml)")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.String("log-file", "", "also write the logs to this rotated file")
	a.bindFlags(flags, map[string]string{
		"log-level": "log.level",
		"log-file":  "log.file",
	})

	root.AddCommand(newRenderCmd(a), newBatchCmd(a), newVersionCmd())
	return root
}

// bindFlags binds the flags of `fs` to the config keys of `keys`,
// so that a flag, when given, overrides the config file and the environment.
func (a *app) bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if err := a.v.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(err) // unknown flag name
		}
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version.VersionString)
		},
	}
}
