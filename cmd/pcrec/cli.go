package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/pribylovaa/pc-recommender/internal/app"
	"github.com/pribylovaa/pc-recommender/internal/config"
	"github.com/pribylovaa/pc-recommender/internal/session"
	pkglog "github.com/pribylovaa/pc-recommender/pkg/log"
)

var (
	errLoginRequired = errors.New("login required: run `pcrec login <username or email>`")
	errAdminRequired = errors.New("admin rights required")
)

// cli — состояние одного запуска.
type cli struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	configPath  string
	metricsAddr string

	app        *app.App
	metricsSrv *http.Server
}

func newCLI(in io.Reader, out, errOut io.Writer) *cli {
	return &cli{in: bufio.NewReader(in), out: out, errOut: errOut}
}

func (c *cli) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pcrec",
		Short:         "PC Recommender command line client",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// справка работает без конфигурации.
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			return c.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config file")
	cmd.PersistentFlags().StringVar(&c.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while the command runs")

	cmd.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.recommendCmd(),
		c.savedCmd(),
		c.adminCmd(),
	)

	return cmd
}

// setup: config -> logger -> app (-> сервер метрик).
// Контекст команды получает логгер с полем command.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	log := app.SetupLogger(cfg.Env, c.errOut)
	slog.SetDefault(log)

	ctx, log := pkglog.With(pkglog.Into(cmd.Context(), log), slog.String("command", cmd.CommandPath()))
	cmd.SetContext(ctx)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := app.New(ctx, cfg, app.Deps{
		Logger:    log,
		Navigator: &navigator{out: c.errOut},
		Prompter:  &prompter{in: c.in, out: c.out},
		Registry:  reg,
	})
	if err != nil {
		return err
	}
	c.app = a

	addr := c.metricsAddr
	if addr == "" {
		addr = cfg.Metrics.Addr()
	}
	if addr != "" {
		return c.serveMetrics(addr, reg, log)
	}

	return nil
}

func (c *cli) serveMetrics(addr string, reg *prometheus.Registry, log *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	c.metricsSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := c.metricsSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics_serve_failed", slog.String("err", err.Error()))
		}
	}()

	log.Debug("metrics_listen_start", slog.String("addr", ln.Addr().String()))

	return nil
}

func (c *cli) close() {
	if c.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = c.metricsSrv.Shutdown(ctx)
	}

	if c.app != nil {
		c.app.Close()
	}
}

// session загружает сессию и проверяет доступ к разделу path.
func (c *cli) session(ctx context.Context, path string, req session.Requirement) (*session.Session, error) {
	s := c.app.Session

	if err := s.Bootstrap(ctx); err != nil {
		return nil, err
	}

	d, err := s.Require(ctx, path, req)
	if err != nil {
		return nil, err
	}

	switch d {
	case session.DecisionAllow:
		return s, nil
	case session.DecisionRedirectHome:
		return nil, errAdminRequired
	default:
		return nil, errLoginRequired
	}
}

// readLine читает строку ввода; "" на EOF.
func (c *cli) readLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(c.out, prompt)
	}

	return readLine(c.in)
}
