package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/voxcue/internal/batch"
	"github.com/dgnsrekt/voxcue/internal/cache"
	"github.com/dgnsrekt/voxcue/internal/caption"
	"github.com/dgnsrekt/voxcue/internal/metrics"
	"github.com/dgnsrekt/voxcue/internal/probe"
	"github.com/dgnsrekt/voxcue/internal/synth"
	"github.com/dgnsrekt/voxcue/internal/voices"
	"github.com/dgnsrekt/voxcue/utils"
	"github.com/spf13/viper"
)

// secrets are read from the environment only, never from the config file.
type secrets struct {
	APIKey string `env:"VOXCUE_API_KEY"`
	Token  string `env:"VOXCUE_TOKEN"`
}

// app holds the components of one run.
type app struct {
	engine       *synth.Engine
	orchestrator *batch.Orchestrator
	cache        *cache.Tiered
}

// Close releases the artifact cache.
func (a *app) Close() {
	if a.cache == nil {
		return
	}
	if err := a.cache.Close(); err != nil {
		log.Warn("Unable to save cache index", "error", err)
	}
}

func newApp() (*app, error) {
	s, err := env.ParseAs[secrets]()
	if err != nil {
		return nil, fmt.Errorf("error parsing environment: %v", err)
	}

	a := &app{}
	var store cache.Store
	if viper.GetBool("cache.enabled") {
		disk, err := cache.NewDiskCache(cache.Config{
			Dir:              utils.ExpandPath(viper.GetString("cache.dir")),
			Capacity:         viper.GetInt64("cache.max_size") * 1024 * 1024,
			CompressionLevel: viper.GetInt("cache.compression"),
		})
		if err != nil {
			log.Warn("Artifact cache disabled", "error", err)
		} else {
			a.cache = cache.NewTiered(cache.NewMemoryCache(viper.GetInt64("cache.memory_size")*1024*1024), disk)
			store = a.cache
		}
	}

	a.engine, err = newEngine(s, store)
	if err != nil {
		a.Close()
		return nil, err
	}

	pipeline, err := newPipeline()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.orchestrator, err = batch.New(batch.Config{
		Synthesizer: a.engine,
		Prober: probe.FFProbe{
			Binary: viper.GetString("probe.ffprobe"),
		},
		Pipeline: pipeline,
		Options: batch.Options{
			OutputDir: outputDir,
			Whole:     whole,
			Lines:     perLine,
			Captions:  captions,
			Request:   requestTemplate(),
		},
		Logger: log.Default(),
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func newEngine(s secrets, store cache.Store) (*synth.Engine, error) {
	timeout := viper.GetDuration("synth.timeout")

	var (
		transports []synth.Transport
		refresher  synth.Refresher
	)
	if endpoint := viper.GetString("synth.endpoint"); endpoint != "" {
		tokenURL := viper.GetString("synth.token_url")
		tokens := synth.NewTokenSource(tokenURL, s.APIKey, s.Token)
		t, err := synth.NewHTTPTransport(synth.HTTPConfig{
			Endpoint:          endpoint,
			OutputFormat:      viper.GetString("synth.output_format"),
			Timeout:           timeout,
			RequestsPerMinute: viper.GetInt("synth.requests_per_minute"),
			Tokens:            tokens,
		})
		if err != nil {
			return nil, err
		}
		transports = append(transports, t)
		if tokenURL != "" {
			refresher = tokens
		}
	}
	if binary := viper.GetString("synth.cli"); binary != "" {
		transports = append(transports, synth.NewCLITransport(synth.CLIConfig{
			Binary:  utils.ExpandPath(binary),
			Timeout: timeout,
		}))
	}

	return synth.NewEngine(synth.Config{
		Transports: transports,
		Refresher:  refresher,
		Gate:       synth.NewRefreshGate(viper.GetDuration("synth.refresh_cooldown")),
		RetryDelay: viper.GetDuration("synth.retry_delay"),
		Cache:      store,
		Logger:     log.Default(),
	})
}

func newPipeline() (*caption.Pipeline, error) {
	rule, err := caption.ParseRule(viper.GetString("caption.rule"))
	if err != nil {
		return nil, err
	}
	mode, err := caption.ParsePunctuationMode(viper.GetString("caption.punctuation"))
	if err != nil {
		return nil, err
	}

	opts := []caption.SegmenterOption{caption.WithLogger(log.Default())}
	if command := viper.GetString("linguistic.command"); command != "" {
		splitter, err := caption.NewCommandSplitter(command, 30*time.Second)
		if err != nil {
			return nil, err
		}
		opts = append(opts, caption.WithSplitter(splitter))
	} else if rule == caption.RuleLinguistic {
		log.Warn("Linguistic rule selected without linguistic.command, smart rule will be used")
	}

	return &caption.Pipeline{
		Segmenter:   caption.NewSegmenter(rule, opts...),
		MaxChars:    viper.GetInt("caption.max_chars"),
		Punctuation: mode,
		Table:       caption.NewPunctuationTable(),
		Allocator: caption.Allocator{
			GroupSize: viper.GetInt("caption.group_size"),
			MinCue:    viper.GetDuration("caption.min_cue"),
		},
	}, nil
}

func requestTemplate() synth.Request {
	req := synth.Request{
		Rate:   viper.GetString("synth.rate"),
		Pitch:  viper.GetString("synth.pitch"),
		Volume: viper.GetString("synth.volume"),
	}
	style, role := viper.GetString("synth.style"), viper.GetString("synth.role")
	if style != "" || role != "" {
		req.Emotion = &synth.Emotion{
			Style:  style,
			Degree: viper.GetFloat64("synth.style_degree"),
			Role:   role,
		}
	}
	return req
}

type credentialRefresher interface {
	RefreshCredentials(ctx context.Context, force bool) (bool, error)
}

// forceRefresh renews transport credentials before a run, ignoring the
// refresh cooldown.
func forceRefresh(ctx context.Context, r credentialRefresher) error {
	refreshed, err := r.RefreshCredentials(ctx, true)
	if err != nil {
		return err
	}
	if !refreshed {
		log.Warn("No credential refresher configured, set synth.token_url to enable it")
		return nil
	}
	log.Info("Credentials refreshed")
	return nil
}

// loadCatalog returns the remote voice list when one is configured and
// reachable, and the built-in list otherwise.
func loadCatalog(ctx context.Context) voices.Catalog {
	url := viper.GetString("voice_list_url")
	if url == "" {
		return voices.Builtin()
	}
	c, err := voices.Fetch(ctx, url)
	if err != nil || len(c) == 0 {
		log.Warn("Using built-in voice list", "url", url, "error", err)
		return voices.Builtin()
	}
	return c
}

// startMetricsServer serves Prometheus metrics on addr until ctx is done or
// the returned function is called. An empty addr disables it.
func startMetricsServer(ctx context.Context, addr string) func() {
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", "error", err)
		}
	}()

	stop := func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	return stop
}
