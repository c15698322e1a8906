package httpapi

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"sync"
	"time"

	"kospi-treasure/internal/application/auth"
	"kospi-treasure/internal/application/treasure"
	"kospi-treasure/internal/domain/metrics"
	"kospi-treasure/internal/infra/memory"
	authinfra "kospi-treasure/internal/infrastructure/auth"
	"kospi-treasure/internal/infrastructure/config"
	"kospi-treasure/internal/infrastructure/fixture"
	"kospi-treasure/internal/infrastructure/notify"
	"kospi-treasure/internal/infrastructure/persistence/postgres"
	"kospi-treasure/internal/interface/http/handler"

	"github.com/gin-gonic/gin"
)

const (
	errCodeBadRequest         = "BAD_REQUEST"
	errCodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	errCodeUnauthorized       = "AUTH_UNAUTHORIZED"
	errCodeForbidden          = "AUTH_FORBIDDEN"
	errCodeNotFound           = "NOT_FOUND"
	errCodeUnavailable        = "SERVICE_UNAVAILABLE"
	errCodeRateLimited        = "RATE_LIMITED"
	errCodeInternal           = "INTERNAL_ERROR"
)

// Server 組合尋寶 API 的各個用例與儲存層。
type Server struct {
	engine *gin.Engine
	db     *sql.DB
	store  *memory.Store

	companies  treasure.CompanyRepository
	industries treasure.IndustryRepository
	sink       fixture.Sink
	loader     *fixture.Loader

	calc      *treasure.Engine
	huntUC    *treasure.HuntUseCase
	compareUC *treasure.CompareUseCase
	digestUC  *treasure.DigestUseCase

	loginUC  *auth.LoginUseCase
	authz    *auth.Authorizer
	authRepo auth.UserRepository
	tokenSvc *authinfra.JWTIssuer

	tgClient *notify.TelegramClient
	tgConfig config.TelegramConfig

	allowedOrigins []string
	loginRate      float64
	loginBurst     int

	reloadMu   sync.Mutex
	lastReload *reloadStatus
	stopJobs   context.CancelFunc
}

type reloadStatus struct {
	At         time.Time `json:"at"`
	Companies  int       `json:"companies"`
	Industries int       `json:"industries"`
	Derived    bool      `json:"derived"`
	Skipped    int       `json:"skipped"`
}

// NewServer 建立 HTTP 服務；db 為 nil 時改用記憶體儲存並於啟動時載入資料檔。
func NewServer(cfg config.Config, db *sql.DB) *Server {
	store := memory.NewStore()
	s := &Server{
		engine:         gin.New(),
		db:             db,
		store:          store,
		companies:      store,
		industries:     store,
		sink:           store,
		authRepo:       store,
		tgConfig:       cfg.Notifier.Telegram,
		allowedOrigins: cfg.HTTP.AllowedOrigins,
		loginRate:      cfg.Auth.LoginRate,
		loginBurst:     cfg.Auth.LoginBurst,
	}

	if db != nil {
		repo := postgres.NewRepo(db)
		authRepo := postgres.NewAuthRepo(db)
		s.companies, s.industries, s.sink = repo, repo, repo
		s.authRepo = authRepo

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := authRepo.SeedDefaults(ctx, seedPassword(cfg)); err != nil {
			log.Printf("[Auth] seed default users failed: %v", err)
		}
		cancel()
	} else if err := store.SeedUsers(seedPassword(cfg)); err != nil {
		log.Printf("[Auth] seed default users failed: %v", err)
	}

	s.calc = newCalculator(cfg.Treasure)
	s.huntUC = treasure.NewHuntUseCase(s.companies, s.calc)
	s.compareUC = treasure.NewCompareUseCase(s.companies, s.industries, s.calc)
	s.digestUC = treasure.NewDigestUseCase(s.huntUC)
	s.loader = fixture.NewLoader(cfg.Fixtures.Companies, cfg.Fixtures.Industries, s.calc)

	s.tokenSvc = authinfra.NewJWTIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	s.loginUC = auth.NewLoginUseCase(s.authRepo, authinfra.BcryptHasher{}, s.tokenSvc)
	s.authz = auth.NewAuthorizer(s.authRepo)

	if db == nil || cfg.Fixtures.ReloadOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := s.reloadFixtures(ctx); err != nil {
			log.Printf("[Fixture] initial load failed: %v", err)
		}
		cancel()
	}

	if cfg.Notifier.Telegram.Enabled {
		tg := cfg.Notifier.Telegram
		s.tgClient = notify.NewTelegramClient(tg.Token, tg.ChatID, "KOSPI 보물찾기", tg.BaseURL)
		if s.tgClient.Configured() {
			ctx, cancel := context.WithCancel(context.Background())
			s.stopJobs = cancel
			if err := s.startDigestJob(ctx); err != nil {
				log.Printf("[Telegram] digest job not started: %v", err)
			}
		} else {
			log.Printf("[Telegram] enabled but token/chat_id missing, job not started")
		}
	}

	s.registerRoutes()
	return s
}

func seedPassword(cfg config.Config) string {
	if cfg.Auth.SeedPassword != "" {
		return cfg.Auth.SeedPassword
	}
	return "password123"
}

// newCalculator 依設定建立計算引擎；無法辨識的門檻指標會被略過。
func newCalculator(cfg config.TreasureConfig) *treasure.Engine {
	opts := []treasure.Option{treasure.WithZeroAsMissing(cfg.ZeroMissing())}
	if len(cfg.Years) > 0 {
		opts = append(opts, treasure.WithYears(cfg.Years))
	}
	for key, v := range cfg.Thresholds {
		m, ok := metrics.ParseMetric(key)
		if !ok {
			log.Printf("[Treasure] unknown threshold metric=%s ignored", key)
			continue
		}
		opts = append(opts, treasure.WithThreshold(m, v))
	}
	return treasure.NewEngine(opts...)
}

// Handler 回傳 http.Handler 供 http.Server 或測試使用。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Store 回傳記憶體儲存層；使用 Postgres 時此儲存層不會被讀取。
func (s *Server) Store() *memory.Store {
	return s.store
}

// Close 停止背景排程。
func (s *Server) Close() {
	if s.stopJobs != nil {
		s.stopJobs()
	}
}

func (s *Server) registerRoutes() {
	r := s.engine
	r.Use(gin.Recovery(), requestID(), s.ginLogger(), corsMiddleware(s.allowedOrigins))

	r.GET("/", gin.WrapH(handler.Index("KOSPI 보물찾기 API")))
	r.GET("/health", s.handleHealth)
	r.GET("/companies/names", s.handleCompanyNames)
	r.GET("/industry/:name", s.handleIndustry)

	api := r.Group("/api")
	api.GET("/ping", s.handlePing)
	api.GET("/health", s.handleHealth)

	api.POST("/auth/login", loginLimiter(s.loginRate, s.loginBurst), s.handleLogin)
	api.GET("/auth/me", s.requireAuth(auth.PermTreasureRead), s.handleMe)

	api.GET("/treasure", s.handleTreasure)
	api.GET("/treasure/search", s.handleTreasureSearch)
	api.GET("/treasure/industries", s.handleTreasureIndustries)
	api.GET("/treasure/export", s.handleTreasureExport)

	api.GET("/companies", s.handleCompanyList)
	api.GET("/companies/:name", s.handleCompany)
	api.GET("/companies/:name/compare", s.handleCompanyCompare)

	api.GET("/industries", s.handleIndustries)
	api.GET("/industries/:name", s.handleIndustry)
	api.GET("/industries/:name/compare", s.handleIndustryCompare)

	admin := api.Group("/admin")
	admin.POST("/fixtures/reload", s.requireAuth(auth.PermFixturesReload), s.handleFixturesReload)
	admin.GET("/fixtures/status", s.requireAuth(auth.PermFixturesReload), s.handleFixturesStatus)
	admin.GET("/digest", s.requireAuth(auth.PermTreasureRead), s.handleDigestPreview)
	admin.POST("/digest/send", s.requireAuth(auth.PermDigestSend), s.handleDigestSend)
}
