// Package api - отладочный HTTP-сервер клиента боя: состояние пулов,
// счётчики симуляции и сохранённые снимки рассинхронизаций.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/annel0/battlescape/internal/entity"
	"github.com/annel0/battlescape/internal/logging"
	"github.com/annel0/battlescape/internal/middleware"
	"github.com/annel0/battlescape/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// SnapshotSource отдаёт последний опубликованный циклом снимок пулов
type SnapshotSource interface {
	Current() (entity.Snapshot, bool)
}

// SnapshotReader читает сохранённые снимки
type SnapshotReader interface {
	List(session string) ([]storage.SnapshotInfo, error)
	Load(key string) (entity.Snapshot, error)
}

// Config содержит конфигурацию отладочного сервера
type Config struct {
	Addr       string
	Source     SnapshotSource
	Store      SnapshotReader // может быть nil
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Logger     *logging.Logger
}

// GenericResponse - общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// DebugServer - отладочный HTTP API
type DebugServer struct {
	router  *gin.Engine
	cfg     Config
	metrics *ProcessMetrics
	server  *http.Server
	log     *logging.Logger
}

// NewDebugServer создаёт сервер и регистрирует маршруты
func NewDebugServer(cfg Config) (*DebugServer, error) {
	if cfg.Addr == "" {
		cfg.Addr = ":8089"
	}
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	log := cfg.Logger
	if log == nil {
		log = logging.GetDebugLogger()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.NewRequestLogger(log).Handler())
	router.Use(otelgin.Middleware("battlescape-debug"))

	promMw, err := middleware.NewPrometheusMiddleware("battlescape_debug", cfg.Registerer)
	if err != nil {
		return nil, err
	}
	router.Use(promMw.Handler())
	middleware.RegisterMetricsEndpoint(router, cfg.Gatherer)

	ds := &DebugServer{
		router:  router,
		cfg:     cfg,
		metrics: NewProcessMetrics(),
		log:     log,
	}
	ds.setupRoutes()
	return ds, nil
}

// Handler возвращает http.Handler сервера
func (ds *DebugServer) Handler() http.Handler { return ds.router }

func (ds *DebugServer) setupRoutes() {
	ds.router.GET("/health", ds.handleHealth)

	debug := ds.router.Group("/debug")
	{
		debug.GET("/le", ds.handleEntities)
		debug.GET("/lm", ds.handleModels)
		debug.GET("/stats", ds.handleStats)
		debug.GET("/snapshots", ds.handleSnapshots)
		debug.GET("/snapshots/:key", ds.handleSnapshot)
	}
}

func (ds *DebugServer) current(c *gin.Context) (entity.Snapshot, bool) {
	if ds.cfg.Source != nil {
		if snap, ok := ds.cfg.Source.Current(); ok {
			return snap, true
		}
	}
	c.JSON(http.StatusServiceUnavailable, GenericResponse{Message: "симуляция ещё не запущена"})
	return entity.Snapshot{}, false
}

func (ds *DebugServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// handleEntities - список LE; ?inuse=1 оставляет только занятые слоты
func (ds *DebugServer) handleEntities(c *gin.Context) {
	snap, ok := ds.current(c)
	if !ok {
		return
	}
	rows := snap.Entities
	if c.Query("inuse") == "1" {
		rows = make([]entity.DebugRow, 0, len(snap.Entities))
		for _, r := range snap.Entities {
			if r.InUse {
				rows = append(rows, r)
			}
		}
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "локальные сущности", Data: gin.H{
		"frame":    snap.Frame,
		"time":     snap.Time,
		"entities": rows,
	}})
}

func (ds *DebugServer) handleModels(c *gin.Context) {
	snap, ok := ds.current(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "локальные модели", Data: gin.H{
		"frame":  snap.Frame,
		"models": snap.Models,
	}})
}

func (ds *DebugServer) handleStats(c *gin.Context) {
	snap, ok := ds.current(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "статистика", Data: gin.H{
		"session":     snap.Session,
		"frame":       snap.Frame,
		"world_level": snap.WorldLevel,
		"simulation":  snap.Stats,
		"process":     ds.metrics.Snapshot(),
	}})
}

func (ds *DebugServer) handleSnapshots(c *gin.Context) {
	if ds.cfg.Store == nil {
		c.JSON(http.StatusNotFound, GenericResponse{Message: "хранилище снимков не подключено"})
		return
	}
	list, err := ds.cfg.Store.List(c.Query("session"))
	if err != nil {
		ds.log.Error("список снимков: %v", err)
		c.JSON(http.StatusInternalServerError, GenericResponse{Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "снимки", Data: list})
}

func (ds *DebugServer) handleSnapshot(c *gin.Context) {
	if ds.cfg.Store == nil {
		c.JSON(http.StatusNotFound, GenericResponse{Message: "хранилище снимков не подключено"})
		return
	}
	key := c.Param("key")
	if !strings.HasPrefix(key, "snapshot:") {
		c.JSON(http.StatusBadRequest, GenericResponse{Message: "неверный ключ снимка"})
		return
	}
	snap, err := ds.cfg.Store.Load(key)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, GenericResponse{Message: "снимок не найден"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, GenericResponse{Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "снимок", Data: snap})
}

// Start запускает сервер и блокируется до его остановки
func (ds *DebugServer) Start() error {
	ds.server = &http.Server{
		Addr:              ds.cfg.Addr,
		Handler:           ds.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	ds.log.Info("отладочный API на %s", ds.cfg.Addr)
	if err := ds.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop останавливает сервер
func (ds *DebugServer) Stop(ctx context.Context) error {
	if ds.server == nil {
		return nil
	}
	return ds.server.Shutdown(ctx)
}
