package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orgoj/asynclog/internal/logger"
)

// LoggerInfo describes one named logger in status responses.
type LoggerInfo struct {
	Name  string       `json:"name"`
	Key   string       `json:"key"`
	State string       `json:"state"`
	Stats logger.Stats `json:"stats"`
}

// LoggersHandlerDeps holds the dependencies of the logger status handlers.
type LoggersHandlerDeps struct {
	LoggerManager *logger.Manager
}

func describe(name string, l logger.Logger) LoggerInfo {
	return LoggerInfo{
		Name:  name,
		Key:   l.Key(),
		State: l.State().String(),
		Stats: l.Stats(),
	}
}

// NewListLoggersHandler lists the registered loggers in registration order.
// The optional "match" query parameter filters names with a glob pattern.
func NewListLoggersHandler(deps LoggersHandlerDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		names := deps.LoggerManager.GetLoggerNames()
		if pattern := c.Query("match"); pattern != "" {
			matched, err := deps.LoggerManager.MatchLoggerNames(pattern)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			names = matched
		}

		infos := make([]LoggerInfo, 0, len(names))
		for _, name := range names {
			l, err := deps.LoggerManager.GetLogger(name)
			if err != nil {
				// Manager was closed between listing and lookup
				continue
			}
			infos = append(infos, describe(name, l))
		}
		c.JSON(http.StatusOK, gin.H{"loggers": infos})
	}
}

// NewGetLoggerHandler returns the status of a single logger.
func NewGetLoggerHandler(deps LoggersHandlerDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		l, err := deps.LoggerManager.GetLogger(name)
		if errors.Is(err, logger.ErrLoggerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, describe(name, l))
	}
}
