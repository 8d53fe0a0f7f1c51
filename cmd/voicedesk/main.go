// voicedesk - AI receptionist that books appointments over a voice call.
// Serves the Retell custom-LLM websocket protocol and schedules via Cal.com.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kiempfang/voicedesk/internal/config"
	"github.com/kiempfang/voicedesk/internal/log"
	"github.com/kiempfang/voicedesk/pkg/agent"
	"github.com/kiempfang/voicedesk/pkg/calcom"
	"github.com/kiempfang/voicedesk/pkg/inference"
	"github.com/kiempfang/voicedesk/pkg/server"
	"github.com/kiempfang/voicedesk/pkg/session"
)

func main() {
	buffered := flag.Bool("buffered-first-pass", false, "collect the first model pass non-streaming for cleaner tool decisions")
	flag.Parse()

	// Running without a .env file is fine in production.
	envErr := godotenv.Load()

	cfg := config.FromEnv()
	log.Init(cfg.LogLevel)
	if envErr != nil {
		log.Debug("no .env file loaded", "error", envErr)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.CalAPIKey == "" {
		log.Warn("CAL_API_KEY not set; scheduling calls will fail")
	}
	if cfg.CalEventTypeID == 0 {
		log.Warn("CAL_EVENT_TYPE_ID not set; booking calls will fail")
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		log.Error("provider setup failed", "error", err)
		os.Exit(1)
	}
	defer provider.Close()

	cal := calcom.NewClient(cfg.CalAPIKey,
		calcom.WithBaseURL(cfg.CalBaseURL),
		calcom.WithClientLogger(log.L()),
	)
	executor, err := calcom.NewExecutor(cal,
		calcom.WithOperatorEmail(cfg.OperatorEmail),
		calcom.WithCountryPrefix(cfg.CountryPrefix),
		calcom.WithExecutorLogger(log.L()),
	)
	if err != nil {
		log.Error("executor setup failed", "error", err)
		os.Exit(1)
	}

	opts := []agent.Option{
		agent.WithPersona(agent.DefaultPersona(cfg.CalEventTypeID)),
		agent.WithLogger(log.L()),
	}
	if *buffered {
		opts = append(opts, agent.WithBufferedFirstPass())
	}
	orch := agent.New(provider, executor, opts...)

	srv := server.New(server.Config{
		Port:         cfg.Port,
		Orchestrator: orch,
		Sessions:     session.NewRegistry(),
		Logger:       log.L(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		srv.Shutdown()
	}()

	if err := srv.Listen(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// buildProvider picks the model endpoint from the configured credentials:
// the direct endpoint when its key is present, the routed one otherwise,
// and a fallback chain when both are configured.
func buildProvider(cfg config.Config) (inference.Provider, error) {
	var providers []inference.Provider

	if cfg.GroqKey != "" {
		direct, err := inference.NewClient(
			inference.WithBaseURL(config.GroqBaseURL),
			inference.WithAPIKey(cfg.GroqKey),
			inference.WithModel(cfg.Model),
			inference.WithStreamTimeout(2*time.Minute),
			inference.WithLogger(log.L()),
		)
		if err != nil {
			return nil, err
		}
		providers = append(providers, direct)
		log.Info("using direct endpoint", "model", cfg.Model)
	}

	if cfg.OpenRouterKey != "" {
		routed, err := inference.NewClient(
			inference.WithBaseURL(config.OpenRouterBaseURL),
			inference.WithAPIKey(cfg.OpenRouterKey),
			inference.WithModel(cfg.Model),
			inference.WithHeader("HTTP-Referer", "https://github.com/kiempfang/voicedesk"),
			inference.WithHeader("X-Title", "voicedesk"),
			inference.WithStreamTimeout(2*time.Minute),
			inference.WithLogger(log.L()),
		)
		if err != nil {
			return nil, err
		}
		providers = append(providers, routed)
		log.Info("using routed endpoint", "model", cfg.Model)
	}

	if len(providers) == 1 {
		return providers[0], nil
	}
	return inference.NewChainWithLogger(log.L(), providers...)
}
