package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xxxsen/fuzzyac/internal/config"
	"github.com/xxxsen/fuzzyac/internal/dictionary"
	"github.com/xxxsen/fuzzyac/internal/dnsfilter"
	"github.com/xxxsen/fuzzyac/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP search API and the optional DNS filter",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logkit, err := loadConfig()
	if err != nil {
		return err
	}
	defer logkit.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	set, watched, err := buildDictionaries(ctx, cfg.Dictionaries)
	if err != nil {
		logkit.Error("build dictionaries failed", zap.Error(err))
		return err
	}
	logkit.Info("dictionaries loaded", zap.Strings("names", set.Names()), zap.Int("watched", len(watched)))
	if cfg.Pprof.Enable {
		startPprofServer(ctx, cfg.Pprof.Bind, logkit)
	}

	eg, ctx := errgroup.WithContext(ctx)
	if len(watched) > 0 {
		w, err := dictionary.NewWatcher(0, watched...)
		if err != nil {
			return err
		}
		defer w.Close()
		eg.Go(func() error {
			return w.Run(ctx)
		})
	}
	httpServer, err := server.New(server.WithBind(cfg.HTTP.Bind), server.WithDictionarySet(set))
	if err != nil {
		return err
	}
	eg.Go(func() error {
		return httpServer.Start(ctx)
	})
	if cfg.DNS.Bind != "" {
		dnsServer, err := buildDNSServer(cfg.DNS, set)
		if err != nil {
			return err
		}
		eg.Go(func() error {
			return dnsServer.Start(ctx)
		})
	}
	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, syscall.EINTR) {
		logkit.Error("server error", zap.Error(err))
		return err
	}
	logkit.Info("shutdown complete")
	return nil
}

func buildDNSServer(c config.DNSConfig, set *dictionary.Set) (*dnsfilter.Server, error) {
	dict, ok := set.Get(c.Dictionary)
	if !ok {
		return nil, fmt.Errorf("dns dictionary:%s not found", c.Dictionary)
	}
	filter, err := dnsfilter.NewFilter(dict, c.CacheSize)
	if err != nil {
		return nil, err
	}
	up, err := dnsfilter.MakeUpstream(c.Upstream)
	if err != nil {
		return nil, err
	}
	opts := []dnsfilter.Option{
		dnsfilter.WithBind(c.Bind),
		dnsfilter.WithFilter(filter),
		dnsfilter.WithUpstream(up),
	}
	if c.Rcode != 0 {
		opts = append(opts, dnsfilter.WithRcode(c.Rcode))
	}
	if c.Timeout > 0 {
		opts = append(opts, dnsfilter.WithTimeout(time.Duration(c.Timeout)*time.Millisecond))
	}
	return dnsfilter.New(opts...)
}
