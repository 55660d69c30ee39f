package core

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type FetchDataRequest struct {
	Symbols []string `json:"symbols"`
}

func GetHttpServer(sc *ServiceContext) *http.Server {
	engine := gin.Default()

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     sc.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.GET("/api/ping", ping)
	engine.POST("/api/fetch-data", func(c *gin.Context) { fetchData(c, sc) })
	engine.GET("/api/fetch-status/:task_id", func(c *gin.Context) { fetchStatus(c, sc) })
	engine.GET("/api/fetch-logs/:task_id", func(c *gin.Context) { fetchLogs(c, sc) })
	engine.GET("/api/tasks", func(c *gin.Context) { allTasks(c, sc) })
	engine.GET("/api/stocks", func(c *gin.Context) { listStocks(c, sc) })
	engine.GET("/api/stocks/:symbol", func(c *gin.Context) { stockDetail(c, sc) })
	engine.GET("/api/stocks/:symbol/stats", func(c *gin.Context) { stockStats(c, sc) })
	engine.DELETE("/api/stocks/:symbol", func(c *gin.Context) { deleteStock(c, sc) })

	server := &http.Server{
		Addr:           sc.Config.Addr,
		Handler:        engine,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return server
}

func ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// fetchData kicks off a batch fetch and answers 202 with the task id; the
// batch itself runs in the background and is observed via fetch-status.
func fetchData(c *gin.Context, sc *ServiceContext) {
	var req FetchDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Symbols) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no symbols given"})
		return
	}

	taskId := sc.RunBatch(req.Symbols)

	c.JSON(http.StatusAccepted, gin.H{
		"message": "fetch started",
		"task_id": taskId,
		"symbols": req.Symbols,
	})
}

func fetchStatus(c *gin.Context, sc *ServiceContext) {
	taskId := c.Param("task_id")

	status := sc.Tracker.Status(taskId)
	if status == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown task"})
		return
	}

	c.JSON(http.StatusOK, status)
}

func fetchLogs(c *gin.Context, sc *ServiceContext) {
	taskId := c.Param("task_id")

	logs, err := sc.Store.GetFetchLogsByTask(sc.Context, taskId)
	if err != nil {
		log.Printf("error listing fetch logs for %s: %v", taskId, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"task_id": taskId, "logs": logs})
}

func allTasks(c *gin.Context, sc *ServiceContext) {
	c.JSON(http.StatusOK, sc.Tracker.AllTasks())
}

func listStocks(c *gin.Context, sc *ServiceContext) {
	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", sc.Config.DefaultPerPage)
	if perPage > sc.Config.MaxPerPage {
		perPage = sc.Config.MaxPerPage
	}

	result, err := sc.Store.ListStocksPaginated(sc.Context, page, perPage)
	if err != nil {
		log.Printf("error listing stocks: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stocks":     result.Items,
		"pagination": result.Pagination,
	})
}

func stockDetail(c *gin.Context, sc *ServiceContext) {
	symbol := c.Param("symbol")

	rec, err := sc.Store.GetStockBySymbol(sc.Context, symbol)
	if err != nil {
		log.Printf("error getting stock %s: %v", symbol, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "symbol not found"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

func stockStats(c *gin.Context, sc *ServiceContext) {
	symbol := c.Param("symbol")

	rec, err := sc.Store.GetStockBySymbol(sc.Context, symbol)
	if err != nil {
		log.Printf("error getting stock %s: %v", symbol, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "symbol not found"})
		return
	}

	summary, err := ComputePriceSummary(rec)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no history stored for symbol"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func deleteStock(c *gin.Context, sc *ServiceContext) {
	symbol := c.Param("symbol")

	found, err := sc.Store.DeleteStock(sc.Context, symbol)
	if err != nil {
		log.Printf("error deleting stock %s: %v", symbol, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "symbol not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted", "symbol": symbol})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
