// Payment verifier checks claimed payments against Gmail inbox evidence,
// exposed over HTTP and the Model Context Protocol.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/payment-verifier/internal/auth"
	"github.com/hal9000y/payment-verifier/internal/config"
	"github.com/hal9000y/payment-verifier/internal/gservice"
	"github.com/hal9000y/payment-verifier/internal/mail"
	"github.com/hal9000y/payment-verifier/internal/ocr"
	"github.com/hal9000y/payment-verifier/internal/retry"
	"github.com/hal9000y/payment-verifier/internal/server"
	"github.com/hal9000y/payment-verifier/internal/tool"
	"github.com/hal9000y/payment-verifier/internal/verify"
	"github.com/hal9000y/payment-verifier/internal/watch"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML config file")
	httpAddr := flag.String("http-addr", "", "HTTP server listen addr, overrides config")
	oauthTokenFile := flag.String("oauth-token-file", "./data/payment-verifier-token.json", "Path to cache google oauth token, empty to avoid storing")
	oauthURLParam := flag.String("oauth-url", "", "OAuth URL")
	envFileParam := flag.String("env-file", "", "Path to env file")
	enableStdio := flag.Bool("stdio", false, "Enable stdio transport for MCP (disables stdout logging)")

	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Errorf("config.Load failed: %w", err))
	}

	if *httpAddr != "" {
		cfg.Server.Addr = *httpAddr
	}

	logger, err := buildLogger(cfg.Logging, *enableStdio)
	if err != nil {
		panic(fmt.Errorf("buildLogger failed: %w", err))
	}
	defer func() { _ = logger.Sync() }()

	ln := mustListen(cfg.Server.Addr)
	oauthCfg := mustCreateOauthCfg(ln.Addr().String(), envFileParam, oauthURLParam)

	if oauthTokenFile == nil {
		panic("-oauth-token-file must be provided")
	}
	tok, err := auth.NewToken(oauthCfg, *oauthTokenFile, logger)
	if err != nil {
		panic(fmt.Errorf("auth.NewToken failed: %w", err))
	}

	defer func() {
		logger.Info("persisting token if exists")
		if err := tok.Persist(); err != nil {
			logger.Error("tok.Persist failed", zap.Error(err))
		}
	}()

	inbox := mail.NewLoader(gservice.NewGmail(oauthCfg, tok))

	policy := retry.NewPolicy(3, time.Second, 8*time.Second)
	verifier := verify.NewVerifier(
		inbox,
		verify.Matcher{TolerancePct: cfg.Verification.AmountTolerancePct},
		verify.NewWindow(cfg.Verification.TimeWindowHours),
		cfg.Gmail.WatchQuery,
		cfg.Gmail.MaxResults,
		policy,
		logger,
	)
	extractor := verify.NewExtractor(ocr.NewEngine(logger), cfg.OCR.Language, logger)
	composer := verify.NewComposer(verifier, inbox, logger)

	httpSrv := server.New(verifier, tok, auth.NewHTTPHandler(tok, logger), logger, cfg.AppName)

	verifierT := tool.NewServer(verifier)
	mcpHTTP := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server { return verifierT }, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpHTTP)
	mux.Handle("/", httpSrv.Handler())

	srv := &http.Server{
		Handler: mux,
	}

	shutdown := make(chan os.Signal, 1)

	signal.Notify(shutdown, syscall.SIGTERM, syscall.SIGINT)

	if _, err := tok.OAuthToken(); errors.Is(err, auth.ErrTokenNotSet) {
		openBrowser(oauthCfg.RedirectURL, logger)
	}

	stopHTTP, errHTTPCh := serveHTTP(srv, ln, logger)
	defer stopHTTP()

	var errStdioCh <-chan error
	if *enableStdio {
		var stopStdio func()
		stopStdio, errStdioCh = serveStdio(verifierT, logger)
		defer stopStdio()
	}

	if cfg.Scheduler.Enabled {
		watcher := watch.NewWatcher(
			inbox,
			extractor,
			composer,
			cfg.Gmail.WatchQuery,
			time.Duration(cfg.Scheduler.IntervalMinutes)*time.Minute,
			logger,
		)

		watchCtx, watchCancel := context.WithCancel(context.Background())
		defer watchCancel()

		go watcher.Run(watchCtx)
	}

	select {
	case err := <-errHTTPCh:
		logger.Error("http server error", zap.Error(err))
	case err := <-errStdioCh:
		logger.Error("stdio transport error", zap.Error(err))
	case <-shutdown:
		logger.Info("shutdown signal received")
	}
}

func serveStdio(srv *mcp.Server, logger *zap.Logger) (func(), <-chan error) {
	errStdioCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer close(errStdioCh)
		logger.Info("starting stdio transport")

		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			errStdioCh <- fmt.Errorf("srv.Run failed: %w", err)
		}
	}()

	return func() {
		cancel()

		<-errStdioCh
		logger.Info("stdio transport stopped")
	}, errStdioCh
}

func serveHTTP(srv *http.Server, ln net.Listener, logger *zap.Logger) (func(), <-chan error) {
	errHTTPCh := make(chan error, 1)
	go func() {
		defer close(errHTTPCh)

		logger.Info("starting http server", zap.String("addr", ln.Addr().String()))

		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("srv.Serve failed: %w", err)
			logger.Error("http server failed", zap.Error(err))
			errHTTPCh <- err
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("srv.Shutdown failed", zap.Error(err))
		}

		<-errHTTPCh
		logger.Info("http server stopped")
	}, errHTTPCh
}

func mustListen(httpAddr string) net.Listener {
	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		panic(fmt.Errorf("net.Listen failed: %w", err))
	}

	return ln
}

func mustCreateOauthCfg(lnAddr string, envFileParam, oauthURLParam *string) *oauth2.Config {
	if envFileParam != nil && *envFileParam != "" {
		if err := godotenv.Load(*envFileParam); err != nil {
			panic(fmt.Errorf("godotenv.Load failed: %w", err))
		}
	}

	oauthClientID := os.Getenv("OAUTH_GOOGLE_CLIENT_ID")
	oauthClientSec := os.Getenv("OAUTH_GOOGLE_CLIENT_SECRET")

	if oauthClientID == "" || oauthClientSec == "" {
		panic("Env variables OAUTH_GOOGLE_CLIENT_ID and OAUTH_GOOGLE_CLIENT_SECRET must be set")
	}

	oauthURL := fmt.Sprintf("http://%s/oauth", lnAddr)
	if oauthURLParam != nil && *oauthURLParam != "" {
		oauthURL = *oauthURLParam
	}

	return &oauth2.Config{
		ClientID:     oauthClientID,
		ClientSecret: oauthClientSec,
		RedirectURL:  oauthURL,
		Scopes:       []string{gmail.GmailReadonlyScope, gmail.GmailSendScope},
		Endpoint:     google.Endpoint,
	}
}

func buildLogger(cfg config.LoggingConfig, stdio bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("zapcore.ParseLevel failed: %w", err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	switch {
	case cfg.File != "":
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
	case stdio:
		// Stdout belongs to the MCP transport.
		return zap.NewNop(), nil
	default:
		zapCfg.OutputPaths = []string{"stdout"}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("zapCfg.Build failed: %w", err)
	}

	return logger, nil
}

func openBrowser(url string, logger *zap.Logger) {
	url = fmt.Sprintf("%s?redirect=1", url)
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}

	if err != nil {
		logger.Warn("could not open browser automatically, copy the link manually",
			zap.String("url", url), zap.Error(err))
	}
}
