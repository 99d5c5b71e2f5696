package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"ScanMaster/internal/auth"
	"ScanMaster/internal/calc/blockspec"
	"ScanMaster/internal/calc/premium/autoplan"
	"ScanMaster/internal/calc/premium/batch"
	"ScanMaster/internal/calc/premium/importer"
	"ScanMaster/internal/calc/premium/recommend"
	"ScanMaster/internal/calc/report"
	"ScanMaster/internal/calc/ringblock"
	"ScanMaster/internal/calc/shearwave"
	"ScanMaster/internal/config"
	"ScanMaster/internal/logging"
	"ScanMaster/internal/profile"
	"ScanMaster/internal/repo"
	"ScanMaster/internal/standards"
)

var wg sync.WaitGroup

func CORS(origin string, mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, cfg config.Config, userRepo repo.Repository, log *zap.Logger) {
	policy := cfg.Policy()

	authEnv := &auth.Authenv{JWTkey: []byte(cfg.TokenKey), Repo: userRepo, Log: log, Insecure: !cfg.TLS()}
	profileH := &profile.ProfileHandler{Repo: userRepo, Log: log, UploadDir: "./static/uploads"}

	limiter := auth.NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")
	api.HandleFunc("/logout", authEnv.LogoutHandler).Methods("POST")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	secureApi.HandleFunc("/profile", profileH.GetProfile).Methods("GET")
	secureApi.HandleFunc("/profile", profileH.UpdateProfile).Methods("PATCH", "PUT")
	secureApi.HandleFunc("/profile/{id:[0-9]+}", profileH.GetProfile).Methods("GET")
	secureApi.HandleFunc("/upload-avatar", profileH.UploadAvatar).Methods("POST")

	standardsH := &standards.Handler{}
	ringH := &ringblock.Handler{Policy: policy, Log: log}
	specH := &blockspec.Handler{Log: log}
	shearH := &shearwave.Handler{Log: log}
	reportH := &report.Handler{Policy: policy, Log: log}
	recommendH := &recommend.Handler{Policy: policy, Log: log}
	planH := &autoplan.Handler{Policy: policy, Log: log}
	batchH := &batch.Handler{Policy: policy, Workers: cfg.BatchWorkers, Log: log}
	importH := &importer.Handler{Batch: batchH, Log: log}

	secureApi.HandleFunc("/tools/standards", standardsH.Standards).Methods("GET")
	secureApi.HandleFunc("/tools/standards/{name}", standardsH.Standard).Methods("GET")
	secureApi.HandleFunc("/tools/materials", standardsH.Materials).Methods("GET")

	secureApi.HandleFunc("/tools/ring-block/templates", ringH.Templates).Methods("GET")
	secureApi.HandleFunc("/tools/ring-block/resolve", ringH.Resolve).Methods("POST")
	secureApi.HandleFunc("/tools/block-spec/calc", specH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/shear-wave/select", shearH.Select).Methods("POST")
	secureApi.HandleFunc("/tools/tube-reference/select", shearH.Tube).Methods("POST")
	secureApi.HandleFunc("/tools/tube-reference/sizes", shearH.Tubes).Methods("GET")
	secureApi.HandleFunc("/tools/report/pdf", reportH.Generate).Methods("POST")

	secureApi.HandleFunc("/tools/recommend/template", recommendH.Template).Methods("POST")
	secureApi.HandleFunc("/tools/autoplan", planH.Plan).Methods("POST")
	secureApi.HandleFunc("/tools/batch/plan", batchH.Plan).Methods("POST")
	secureApi.HandleFunc("/tools/import/parts", importH.Parts).Methods("POST")
	secureApi.HandleFunc("/tools/import/template", importH.Template).Methods("GET")

	mux.PathPrefix("/uploads/").
		Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir("./static/uploads/"))))
}

// openRepo uses PostgreSQL when a database URL is configured and an
// in-memory store otherwise.
func openRepo(ctx context.Context, cfg config.Config, log *zap.Logger) (repo.Repository, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("no database url, inspector accounts are kept in memory")
		return repo.NewMemory(), func() {}, nil
	}
	db, err := auth.InitDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	pg := repo.NewPostgresUserDB(db)
	if err := pg.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return pg, func() { db.Close() }, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logging.Must(false).Fatal("load config", zap.Error(err))
	}
	log := logging.Must(cfg.Verbose)
	defer log.Sync()

	if cfg.TokenKey == "" {
		log.Fatal("SCANMASTER_TOKEN_KEY is not set")
	}

	userRepo, closeRepo, err := openRepo(ctx, cfg, log)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer closeRepo()

	mux := mux.NewRouter()
	HandleList(mux, cfg, userRepo, log)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           CORS(cfg.AllowOrigin, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("starting server", zap.String("addr", cfg.Addr), zap.Bool("tls", cfg.TLS()))
		var err error
		if cfg.TLS() {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, closing active connections")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	wg.Wait()
	log.Info("server stopped")
}
