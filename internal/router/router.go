package router

import (
	"time"

	"github.com/AmericableSA/Sistema-sub000/internal/config"
	"github.com/AmericableSA/Sistema-sub000/internal/handler"
	"github.com/AmericableSA/Sistema-sub000/internal/infra"
	"github.com/AmericableSA/Sistema-sub000/internal/middleware"
	"github.com/AmericableSA/Sistema-sub000/internal/repository"
	"github.com/AmericableSA/Sistema-sub000/internal/service"
	"github.com/AmericableSA/Sistema-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, directorio *infra.DirectorioClientes, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	transaccionRepo := repository.NewTransaccionRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	locks := service.NewCajaLocks()
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	cotizadorSvc := service.NewCotizadorService(directorio, cfg)
	cajaSvc := service.NewCajaService(cajaRepo, locks, cfg, dispatcher)
	transaccionSvc := service.NewTransaccionService(transaccionRepo, cajaRepo, cajaSvc, cotizadorSvc, locks, cfg)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	transaccionH := handler.NewTransaccionHandler(transaccionSvc)
	cotizacionH := handler.NewCotizacionHandler(cotizadorSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, directorio))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	operadores := middleware.RequireRole("cajero", "cobrador", "supervisor", "administrador")
	v1 := r.Group("/v1", jwtMW)
	{
		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", operadores, cajaH.Abrir)
			caja.POST("/cerrar", operadores, cajaH.Cerrar)
			caja.POST("/movimiento", operadores, cajaH.RegistrarMovimiento)
			caja.GET("/activa", operadores, cajaH.GetActiva)
			caja.GET("/:id/reporte", operadores, cajaH.Reporte)
			caja.GET("/historial", middleware.RequireRole("supervisor", "administrador"), cajaH.Historial)
		}

		v1.POST("/transacciones", operadores, transaccionH.Registrar)
		v1.GET("/transacciones", operadores, transaccionH.Historial)
		v1.GET("/transacciones/:id", operadores, transaccionH.Get)
		// Cancellation is a supervised act; cashiers cannot undo their own
		// commits.
		v1.DELETE("/transacciones/:id", middleware.RequireRole("supervisor", "administrador"), transaccionH.Anular)

		v1.POST("/cotizaciones", operadores, cotizacionH.Cotizar)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
