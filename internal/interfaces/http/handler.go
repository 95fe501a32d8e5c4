// @title           Order Flow Analytics API
// @version         1.0
// @description     Rolling order-flow analytics for a single market pair: candles, volume profile, cumulative delta, large trades and depth.

// @host      localhost:8080
// @BasePath  /api/v1

package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	appinterfaces "orderflow/internal/application/interfaces"
	appmarketdata "orderflow/internal/application/service/marketdata"
	domainmarketdata "orderflow/internal/domain/entity/marketdata"
	"orderflow/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	orderflowBasePath = "/api/v1/orderflow"
	defaultTradeLimit = 200
)

var errNoDepth = errors.New("no order book data yet")

type Handler struct {
	router   *gin.Engine
	service  *appmarketdata.Service
	stream   http.Handler
	cache    *redis.Client
	cacheTTL time.Duration
}

var _ appinterfaces.HTTPHandler = (*Handler)(nil)

// NewHandler wires the API. stream serves /ws when non-nil and cache
// enables response caching of GET endpoints when non-nil.
func NewHandler(service *appmarketdata.Service, stream http.Handler, cache *redis.Client, cacheTTL time.Duration) *Handler {
	router := gin.New()
	router.Use(gin.Recovery(), requestMetrics())

	h := &Handler{
		router:   router,
		service:  service,
		stream:   stream,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
	h.registerRoutes()
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	h.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	h.router.GET("/healthz", h.health)
	if h.stream != nil {
		h.router.GET("/ws", gin.WrapH(h.stream))
	}

	of := h.router.Group(orderflowBasePath)
	if h.cache != nil && h.cacheTTL > 0 {
		of.Use(h.cacheMiddleware())
	}
	{
		of.GET("/dashboard", h.getDashboard)
		of.GET("/metrics", h.getMetrics)
		of.GET("/trades", h.getTrades)
		of.GET("/orderbooks", h.getOrderBooks)
		of.GET("/depth", h.getDepth)
		of.GET("/status", h.getStatus)
		of.POST("/refresh", h.refresh)
		of.PUT("/refresh/interval", h.setInterval)
	}
}

type dashboardQuery struct {
	Window  int    `form:"window" binding:"omitempty,min=1,max=240"`
	MinSize string `form:"min_size" binding:"omitempty,numeric"`
	Bucket  int    `form:"bucket" binding:"omitempty,min=1,max=60"`
	Levels  int    `form:"levels" binding:"omitempty,min=1,max=500"`
}

func (q dashboardQuery) params(defaults domainmarketdata.DashboardParams) (domainmarketdata.DashboardParams, error) {
	params := defaults
	if q.Window > 0 {
		params.WindowMinutes = q.Window
	}
	if q.Bucket > 0 {
		params.BucketMinutes = q.Bucket
	}
	if q.Levels > 0 {
		params.ProfileLevels = q.Levels
	}
	if q.MinSize != "" {
		size, err := decimal.NewFromString(q.MinSize)
		if err != nil {
			return params, fmt.Errorf("min_size: %w", err)
		}
		params.MinTradeSize = size
	}
	return params, params.Validate()
}

type intervalPayload struct {
	Seconds int `json:"seconds" binding:"required"`
}

type statusResponse struct {
	Symbol          string                           `json:"symbol"`
	RefreshInterval string                           `json:"refresh_interval"`
	LastCycle       domainmarketdata.CycleResult     `json:"last_cycle"`
	LastUpdate      *time.Time                       `json:"last_update,omitempty"`
	Defaults        domainmarketdata.DashboardParams `json:"defaults"`
}

// health reports liveness
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /healthz [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// getDashboard builds every view for the requested filters
// @Summary      Get dashboard
// @Description  Candles, volume profile, cumulative delta, large trades, depth and summary for one time window
// @Tags         orderflow
// @Produce      json
// @Param        window    query     int     false  "Time window in minutes"
// @Param        min_size  query     string  false  "Minimum size of a large trade"
// @Param        bucket    query     int     false  "Candle bucket in minutes"
// @Param        levels    query     int     false  "Volume profile levels"
// @Success      200       {object}  domainmarketdata.Dashboard
// @Failure      400       {object}  map[string]string
// @Router       /orderflow/dashboard [get]
func (h *Handler) getDashboard(c *gin.Context) {
	var query dashboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	params, err := query.params(h.service.DefaultParams())
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	dashboard, err := h.service.Dashboard(c.Request.Context(), params)
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// getMetrics returns the window metrics, 204 when the window is empty
// @Summary      Get window metrics
// @Tags         orderflow
// @Produce      json
// @Param        window  query     int  false  "Time window in minutes"
// @Success      200     {object}  domainmarketdata.Metrics
// @Success      204     {string}  string  "window holds no trades"
// @Failure      400     {object}  map[string]string
// @Router       /orderflow/metrics [get]
func (h *Handler) getMetrics(c *gin.Context) {
	window := h.service.DefaultParams().WindowMinutes
	if raw := c.Query("window"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, fmt.Errorf("window: %w", err))
			return
		}
		window = parsed
	}
	m, ok, err := h.service.Metrics(window)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, m)
}

// getTrades returns the newest stored trades
// @Summary      Get stored trades
// @Tags         orderflow
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of trades"
// @Success      200    {array}   domainmarketdata.Trade
// @Failure      400    {object}  map[string]string
// @Router       /orderflow/trades [get]
func (h *Handler) getTrades(c *gin.Context) {
	limit := defaultTradeLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, fmt.Errorf("limit: %w", err))
			return
		}
		limit = parsed
	}
	trades, err := h.service.Trades(limit)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, trades)
}

// getOrderBooks returns the snapshot history, oldest first
// @Summary      Get order-book history
// @Tags         orderflow
// @Produce      json
// @Success      200  {array}  domainmarketdata.OrderBookSnapshot
// @Router       /orderflow/orderbooks [get]
func (h *Handler) getOrderBooks(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.OrderBooks())
}

// getDepth returns depth curves of the latest snapshot
// @Summary      Get depth curves
// @Tags         orderflow
// @Produce      json
// @Success      200  {object}  domainmarketdata.Depth
// @Failure      404  {object}  map[string]string
// @Router       /orderflow/depth [get]
func (h *Handler) getDepth(c *gin.Context) {
	depth, ok := h.service.Depth()
	if !ok {
		writeError(c, http.StatusNotFound, errNoDepth)
		return
	}
	c.JSON(http.StatusOK, depth)
}

// getStatus reports scheduler state and the last cycle
// @Summary      Get ingestion status
// @Tags         orderflow
// @Produce      json
// @Success      200  {object}  statusResponse
// @Router       /orderflow/status [get]
func (h *Handler) getStatus(c *gin.Context) {
	last, lastUpdate := h.service.LastCycle()
	resp := statusResponse{
		Symbol:          h.service.Symbol(),
		RefreshInterval: h.service.Interval().String(),
		LastCycle:       last,
		Defaults:        h.service.DefaultParams(),
	}
	if !lastUpdate.IsZero() {
		resp.LastUpdate = &lastUpdate
	}
	c.JSON(http.StatusOK, resp)
}

// refresh runs an ingestion cycle now
// @Summary      Refresh now
// @Description  Runs one ingestion cycle and returns its result; with async=true only schedules it
// @Tags         orderflow
// @Produce      json
// @Param        async  query     bool  false  "Schedule without waiting"
// @Success      200    {object}  domainmarketdata.CycleResult
// @Success      202    {object}  map[string]string
// @Failure      502    {object}  domainmarketdata.CycleResult
// @Router       /orderflow/refresh [post]
func (h *Handler) refresh(c *gin.Context) {
	if async, _ := strconv.ParseBool(c.Query("async")); async {
		h.service.Trigger()
		c.JSON(http.StatusAccepted, gin.H{"status": "scheduled"})
		return
	}
	result := h.service.Refresh(c.Request.Context())
	if !result.Succeeded() {
		c.JSON(http.StatusBadGateway, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// setInterval changes the refresh cadence
// @Summary      Set refresh interval
// @Tags         orderflow
// @Accept       json
// @Produce      json
// @Param        interval  body      intervalPayload  true  "Interval in seconds (10-300)"
// @Success      200       {object}  map[string]string
// @Failure      400       {object}  map[string]string
// @Router       /orderflow/refresh/interval [put]
func (h *Handler) setInterval(c *gin.Context) {
	var payload intervalPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	if err := h.service.SetInterval(time.Duration(payload.Seconds) * time.Second); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refresh_interval": h.service.Interval().String()})
}

func writeError(c *gin.Context, status int, err error) {
	if err == nil {
		status = http.StatusInternalServerError
		err = errors.New("unknown error")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// cacheMiddleware caches GET responses in Redis.
func (h *Handler) cacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.cache == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := h.cacheKey(c)
		ctx := c.Request.Context()

		if cached, err := h.cache.Get(ctx, key).Result(); err == nil {
			c.Data(http.StatusOK, "application/json", []byte(cached))
			c.Abort()
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: c.Writer,
			status:         http.StatusOK,
			body:           &bytes.Buffer{},
		}
		c.Writer = recorder

		c.Next()

		if recorder.status == http.StatusOK && recorder.body.Len() > 0 {
			_ = h.cache.Set(ctx, key, recorder.body.Bytes(), h.cacheTTL).Err()
		}
	}
}

type responseRecorder struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if len(data) > 0 {
		r.body.Write(data)
	}
	return r.ResponseWriter.Write(data)
}

func (h *Handler) cacheKey(c *gin.Context) string {
	return fmt.Sprintf("orderflow:cache:%s:%s?%s", c.Request.Method, c.FullPath(), c.Request.URL.RawQuery)
}
