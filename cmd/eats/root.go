package main

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/eats/internal/app"
	"github.com/vladislavdragonenkov/eats/internal/cli"
	"github.com/vladislavdragonenkov/eats/internal/version"
)

// globalFlags — флаги, общие для всех команд. Заданный флаг
// перекрывает значения из файла конфигурации и окружения.
type globalFlags struct {
	configPath  string
	dataDir     string
	dishesFile  string
	ordersFile  string
	storage     string
	logLevel    string
	metricsAddr string
}

// runner хранит состояние одного запуска команды.
type runner struct {
	in     io.Reader
	out    io.Writer
	lookup app.EnvLookup
	flags  globalFlags

	app *app.App
}

func newRootCmd(in io.Reader, out io.Writer, lookup app.EnvLookup) *cobra.Command {
	r := &runner{in: in, out: out, lookup: lookup}

	root := &cobra.Command{
		Use:   "eats",
		Short: "Delicious Eats - restaurant menu and ordering tool",
		Long: `Delicious Eats keeps a dish catalog and customer orders in plain text files.

Run without a subcommand for the interactive welcome prompt, or use
"eats admin" / "eats customer" to open a menu directly. The dishes,
orders and report commands work non-interactively for scripting.`,
		Version:           version.String(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: r.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.session(cmd).RunWelcome(r.app.Config.CheckAdmin)
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&r.flags.configPath, "config", "", "Path to an INI config file")
	flags.StringVar(&r.flags.dataDir, "data-dir", "", "Directory holding the data files")
	flags.StringVar(&r.flags.dishesFile, "dishes-file", "", "Dishes file name or path")
	flags.StringVar(&r.flags.ordersFile, "orders-file", "", "Orders file name or path")
	flags.StringVar(&r.flags.storage, "storage", "", "Storage driver (file|memory)")
	flags.StringVar(&r.flags.logLevel, "log-level", "", "Log level (debug|info|warning|error)")
	flags.StringVar(&r.flags.metricsAddr, "metrics-addr", "", "Serve /metrics and /healthz on this address")

	root.AddCommand(
		&cobra.Command{
			Use:   "admin",
			Short: "Log in and open the admin menu",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return r.session(cmd).RunAdmin(r.app.Config.CheckAdmin)
			},
		},
		&cobra.Command{
			Use:   "customer",
			Short: "Open the customer menu",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return r.session(cmd).RunCustomer()
			},
		},
		&cobra.Command{
			Use:   "report",
			Short: "Print the sales report",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				report, err := r.app.Orders.SalesReport()
				if err != nil {
					return err
				}
				r.printer().Report(report)
				return nil
			},
		},
		&cobra.Command{
			Use:   "serve",
			Short: "Serve metrics and health endpoints until interrupted",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return r.app.Serve(cmd.Context())
			},
		},
		newDishesCmd(r),
		newOrdersCmd(r),
	)

	return root
}

// setup собирает конфигурацию и приложение перед любой командой.
func (r *runner) setup(cmd *cobra.Command, _ []string) error {
	cfg, warnings, err := app.Load(r.flags.configPath, r.lookup)
	if err != nil {
		return err
	}
	r.applyFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	logger := log.WithField("component", "eats")
	for _, warning := range warnings {
		logger.WithError(warning).Warn("ignoring invalid environment value")
	}
	if cfg.AdminPassword == app.DefaultConfig().AdminPassword {
		logger.Warn("admin password is the built-in default, set EATS_ADMIN_PASSWORD")
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	if _, err := application.StartMetricsServer(cmd.Context()); err != nil {
		return fmt.Errorf("start metrics server: %w", err)
	}

	logger.WithFields(log.Fields{
		"storage": cfg.StorageDriver,
		"dishes":  cfg.DishesPath(),
		"orders":  cfg.OrdersPath(),
	}).Debug("application ready")

	r.app = application
	return nil
}

func (r *runner) applyFlags(cmd *cobra.Command, cfg *app.Config) {
	set := func(name, value string, target *string) {
		if cmd.Flags().Changed(name) {
			*target = value
		}
	}
	set("data-dir", r.flags.dataDir, &cfg.DataDir)
	set("dishes-file", r.flags.dishesFile, &cfg.DishesFile)
	set("orders-file", r.flags.ordersFile, &cfg.OrdersFile)
	if cmd.Flags().Changed("storage") {
		cfg.StorageDriver = app.NormalizeDriver(r.flags.storage)
	}
	set("log-level", r.flags.logLevel, &cfg.LogLevel)
	set("metrics-addr", r.flags.metricsAddr, &cfg.MetricsAddr)
}

func (r *runner) session(cmd *cobra.Command) *cli.Session {
	return cli.NewSession(cmd.InOrStdin(), cmd.OutOrStdout(), r.app.Catalog, r.app.Orders,
		cli.WithLogger(log.WithField("component", "cli")))
}

func (r *runner) printer() *cli.Printer {
	return cli.NewPrinter(r.out)
}
