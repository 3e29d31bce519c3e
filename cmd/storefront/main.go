// Command storefront drives the storefront client stores from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"craft-storefront/internal/app"
	"craft-storefront/internal/config"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const usage = `usage: storefront [flags] <command> [args]

commands:
  register <name> <email> <password>
  login <email> <password>
  logout
  whoami
  products [category] [page]
  featured
  product <id>
  categories
  search <query...>
  cart
  add <productId> <size> [qty]
  set-qty <itemId> <qty>
  remove <itemId>
  clear
  checkout <cod|card|upi|netbanking>
  orders [page]
  order <id>
  cancel <id>
  invoice <id>

flags:
`

func main() {
	configPath := flag.String("config", ".", "directory holding app.env")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("could not read .env")
	}
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	log := logrus.NewEntry(logger).WithField("component", "cli")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.Options{
		Navigator: app.NavigatorFunc(func() {
			fmt.Fprintln(os.Stderr, "Your session has expired. Run `storefront login <email> <password>` to sign in again.")
		}),
		Logger: logrus.NewEntry(logger),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to start")
	}
	defer a.Close()

	if err := a.Start(ctx); err != nil {
		log.WithError(err).Fatal("failed to restore session")
	}

	runner := &cli{app: a, out: os.Stdout}
	if err := runner.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(os.Stderr, ue)
			flag.Usage()
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type usageError string

func (e usageError) Error() string { return string(e) }

func needArgs(args []string, n int, form string) error {
	if len(args) < n {
		return usageError("usage: storefront " + form)
	}
	return nil
}

func intArg(args []string, i, def int) (int, error) {
	if len(args) <= i {
		return def, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, usageError(fmt.Sprintf("not a number: %q", args[i]))
	}
	return n, nil
}

func joinArgs(args []string) string { return strings.Join(args, " ") }
