package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/typemnm/Mornoningo/api/swagger"
	"github.com/typemnm/Mornoningo/internal/event"
	"github.com/typemnm/Mornoningo/internal/handler"
	"github.com/typemnm/Mornoningo/internal/middleware"
	"github.com/typemnm/Mornoningo/internal/service"
	"github.com/typemnm/Mornoningo/pkg/config"
	"github.com/typemnm/Mornoningo/pkg/jobs"
	"github.com/typemnm/Mornoningo/pkg/logger"
	corsmiddleware "github.com/typemnm/Mornoningo/pkg/middleware/cors"
	reqidmiddleware "github.com/typemnm/Mornoningo/pkg/middleware/requestid"
	"github.com/typemnm/Mornoningo/pkg/storage"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		return serve(ctx, a)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, a *app) error {
	cfg := a.cfg
	logr := a.logger

	uploads, err := storage.NewUploadStore(cfg.Uploads.Dir, cfg.Uploads.MaxFileSizeBytes, cfg.Uploads.AllowedExtensions)
	if err != nil {
		return fmt.Errorf("init upload store: %w", err)
	}

	ids := service.NewUUIDGenerator()
	scheduler := service.NewReviewScheduler(ids)
	selector := service.NewSourceSelector(remoteSource(cfg, uploads, logr), service.NewLocalQuestionSource(nil))
	quiz := service.NewQuizService(a.study, selector, scheduler, a.metrics, ids, nil, logr)

	queue := jobs.NewQueue("generation", service.NewGenerationHandler(quiz), jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.BufferSize,
		MaxRetries: cfg.Jobs.MaxRetries,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()

	documents := service.NewDocumentService(a.study, scheduler, uploads, queue, ids, nil, logr)
	if n := documents.ResumePending(ctx); n > 0 {
		logr.Info("resumed pending generation", zap.Int("documents", n))
	}

	if cfg.Events.AMQPURL != "" {
		forwarder, err := event.NewForwarder(cfg.Events.AMQPURL, cfg.Events.Exchange, logr)
		if err != nil {
			logr.Warn("event forwarding disabled", zap.Error(err))
		} else {
			defer forwarder.Close() //nolint:errcheck
			events, cancel := a.bus.Subscribe()
			defer cancel()
			go forwarder.Run(ctx, events)
		}
	}

	reviews := service.NewReviewService(a.study)
	router := newRouter(cfg, logr, routes{
		documents: handler.NewDocumentHandler(documents, reviews),
		reviews:   handler.NewReviewHandler(reviews),
		quiz:      handler.NewQuizHandler(quiz),
		dashboard: handler.NewDashboardHandler(service.NewDashboardService(a.study)),
		exports:   handler.NewExportHandler(service.NewExportService(a.study, logr)),
		events:    handler.NewEventsHandler(a.bus, 0),
		metrics:   handler.NewMetricsHandler(a.metrics),
	}, a.metrics)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "stateBackend", cfg.State.Backend, "remoteGenerator", selector.RemoteConfigured())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func remoteSource(cfg *config.Config, uploads *storage.UploadStore, logr *zap.Logger) service.QuestionSource {
	if !cfg.Generator.Enabled() {
		return nil
	}
	extractor := service.ChainExtractor{service.NewPlainTextExtractor(uploads, cfg.Uploads.MaxFileSizeBytes)}
	if cfg.Generator.ExtractorURL != "" {
		extractor = append(extractor, service.NewHTTPTextExtractor(cfg.Generator.ExtractorURL, cfg.Generator.Timeout, uploads, cfg.Uploads.MaxFileSizeBytes))
	}
	return service.NewRemoteQuestionSource(service.NewOpenAIClient(cfg.Generator), extractor, service.RemoteSourceConfig{
		Model:          cfg.Generator.Model,
		NumQuestions:   cfg.Generator.NumQuestions,
		MaxSourceChars: cfg.Generator.MaxSourceChars,
		Timeout:        cfg.Generator.Timeout,
	}, logr)
}

type routes struct {
	documents *handler.DocumentHandler
	reviews   *handler.ReviewHandler
	quiz      *handler.QuizHandler
	dashboard *handler.DashboardHandler
	exports   *handler.ExportHandler
	events    *handler.EventsHandler
	metrics   *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, h routes, metrics *service.MetricsService) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metrics != nil {
		r.Use(middleware.Metrics(metrics))
	}

	r.GET("/health", h.metrics.Health)
	r.GET("/metrics", h.metrics.Prometheus)
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/" + strings.Trim(cfg.APIPrefix, "/"))
	api.GET("/metrics/summary", h.metrics.Snapshot)
	api.GET("/events", h.events.Stream)

	docs := api.Group("/documents")
	docs.GET("", h.documents.List)
	docs.POST("", h.documents.Upload)
	docs.POST("/text", h.documents.CreateText)
	docs.GET("/:id", h.documents.Get)
	docs.DELETE("/:id", h.documents.Delete)

	reviews := api.Group("/reviews")
	reviews.GET("/due", h.reviews.Due)
	reviews.GET("/recommendations", h.reviews.Recommendations)

	quiz := api.Group("/quiz")
	quiz.GET("", h.quiz.Current)
	quiz.DELETE("", h.quiz.Abandon)
	quiz.POST("/prepare", h.quiz.Prepare)
	quiz.POST("/regenerate", h.quiz.Regenerate)
	quiz.POST("/random", h.quiz.Random)
	quiz.POST("/open", h.quiz.Open)
	quiz.POST("/answer", h.quiz.Answer)
	quiz.POST("/abandon", h.quiz.Abandon)

	api.GET("/home", h.dashboard.Home)
	api.GET("/profile", h.dashboard.Profile)
	api.GET("/ranking", h.dashboard.Ranking)
	api.GET("/exports/:kind", h.exports.Download)

	return r
}
