package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/ohmnow/finsight/backend/internal/auth"
	"github.com/ohmnow/finsight/backend/internal/config"
	"github.com/ohmnow/finsight/backend/internal/logging"
	"github.com/ohmnow/finsight/backend/internal/service"
	"github.com/ohmnow/finsight/backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(logging.Config{
		Level: logging.ParseLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})

	ctx := context.Background()

	var storeImpl store.Store
	if cfg.UseMemoryStore {
		logger.Info("using in-memory store for local development")
		storeImpl = store.NewMemoryStore()
	} else {
		if cfg.ProjectID == "" {
			logger.Error("GOOGLE_CLOUD_PROJECT is required when the Firestore store is selected")
			os.Exit(1)
		}
		firestoreClient, err := firestore.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			logger.Error("failed to create Firestore client", "error", err)
			os.Exit(1)
		}
		defer firestoreClient.Close()
		storeImpl = store.NewFirestoreStore(firestoreClient)
	}

	insightsService := service.NewInsightsService(storeImpl, logger)

	mux := http.NewServeMux()
	insightsService.Register(mux)

	// Identity: static bearer token in production, fixed dev identity when
	// running against the memory store without a token.
	var identity func(http.Handler) http.Handler
	switch {
	case cfg.APIToken != "":
		identity = auth.Middleware(cfg.APIToken)
	case cfg.UseMemoryStore:
		logger.Info("using local development identity")
		identity = auth.LocalDevMiddleware()
	default:
		logger.Error("API_TOKEN is required when the Firestore store is selected")
		os.Exit(1)
	}

	root := http.NewServeMux()
	root.Handle("/v1/", identity(mux))
	root.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:1234",
			"http://127.0.0.1:1234",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"User-Agent",
			"X-User-Id",
		},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: h2c.NewHandler(c.Handler(root), &http2.Server{}),
	}

	logger.Info("starting server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
