package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ggshop/orders-service/internal/config"
	"ggshop/orders-service/internal/httpapi"
	"ggshop/orders-service/internal/messaging"
	"ggshop/orders-service/internal/order"
	"ggshop/orders-service/internal/storage"
	"ggshop/orders-service/internal/websocket"

	"github.com/google/uuid"
)

type App struct {
	cfg       config.Config
	logger    *slog.Logger
	store     *storage.Store
	orderSvc  *order.Service
	wsHub     *websocket.Hub
	publisher messaging.Publisher
	httpSrv   *http.Server
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	store, err := storage.New(cfg.OrdersFile, logger)
	if err != nil {
		return nil, err
	}

	var publisher messaging.Publisher = messaging.NopPublisher{}
	if cfg.RabbitURL != "" {
		publisher, err = messaging.NewRabbitPublisher(cfg.RabbitURL, cfg.OrdersExchange)
		if err != nil {
			return nil, err
		}
	}

	wsHub := websocket.NewHub()
	orderSvc := order.NewService(store, wsHub, publisher, logger)

	api := httpapi.NewServer(orderSvc, store, httpapi.Config{
		AdminToken:  cfg.AdminToken,
		RequireAuth: cfg.RequireAuth,
		InstanceID:  uuid.NewString(),
	}, logger)

	wsHandler := websocket.NewHandler(wsHub, api.Authorized, logger)
	api.HandleFunc("GET /api/orders/ws", wsHandler.ServeWS)

	if cfg.StaticDir != "" {
		api.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api,
	}

	return &App{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		orderSvc:  orderSvc,
		wsHub:     wsHub,
		publisher: publisher,
		httpSrv:   httpSrv,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)

	go a.wsHub.Run(ctx)

	go func() {
		a.logger.Info("orders http server listening", "addr", a.cfg.HTTPAddr, "orders_file", a.store.Path())
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (a *App) Close(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.ShutdownGracePeriod)
	defer cancel()
	_ = a.httpSrv.Shutdown(shutdownCtx)
	_ = a.publisher.Close()
}

func Run() error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := New(cfg, logger)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer app.Close(ctx)

	return app.Run(ctx)
}
