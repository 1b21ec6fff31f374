package monitor

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"research-tracker-api/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// maxLogBytes caps how much of the log file /logs returns.
const maxLogBytes = 256 << 10

var logFilePath = config.LogFilePath

// RegisterMonitorRoutes mounts the ops endpoints outside /api.
func RegisterMonitorRoutes(router *gin.Engine) {
	router.GET("/monitor/health", Health)
	RegisterLogsRoute(router)
}

// Health reports database and cache reachability.
func Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok", "redis": "disabled"}
	healthy := true

	if config.DB == nil {
		checks["database"] = "not initialized"
		healthy = false
	} else if sqlDB, err := config.DB.DB(); err != nil {
		checks["database"] = err.Error()
		healthy = false
	} else if err := sqlDB.PingContext(ctx); err != nil {
		checks["database"] = err.Error()
		healthy = false
	}

	if config.Redis != nil {
		if err := config.Redis.Ping(ctx).Err(); err != nil {
			// cache is optional; report but stay healthy
			checks["redis"] = err.Error()
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"success": healthy, "checks": checks, "time": time.Now().UTC()})
}

// RegisterLogsRoute serves the tail of the backend log. The token is checked
// against the bcrypt hash in LOGS_TOKEN_HASH; without a hash the route is off.
func RegisterLogsRoute(router *gin.Engine) {
	router.GET("/logs", func(c *gin.Context) {
		hash := config.AppConfig.LogsTokenHash
		token := c.Query("token")
		if hash == "" || token == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}

		logData, err := readTail(logFilePath(), maxLogBytes)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Unable to read log"})
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", logData)
	})
}

func readTail(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() > limit {
		if _, err := f.Seek(info.Size()-limit, io.SeekStart); err != nil {
			return nil, err
		}
	}
	return io.ReadAll(f)
}
