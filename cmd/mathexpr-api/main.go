// Command mathexpr-api serves expression evaluation over HTTP.
package main

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/zephyrtronium/mathexpr/internal/api"
	"github.com/zephyrtronium/mathexpr/internal/memo"
)

func main() {
	// Start webserver
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     conf.GinConfig.AllowOrigins,
		AllowMethods:     []string{"POST", "GET"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length"},
		ExposeHeaders:    []string{"Content-Type", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Add handlers
	router.GET("/", api.HealthCheckHandle)
	root := router.Group("/")
	apiModule := api.NewHTTPHandler(
		conf.Eval.Prec,
		conf.Eval.MaxLength,
		memo.New(conf.Eval.MemoSize),
	)
	apiModule.AddRoutes(root)

	slog.Info("Starting mathexpr API on port "+conf.GinConfig.Port,
		slog.Uint64("prec", uint64(conf.Eval.Prec)),
		slog.Int("memoSize", conf.Eval.MemoSize),
	)
	err := router.Run(":" + conf.GinConfig.Port)
	if err != nil {
		slog.Error("Exited mathexpr API", slog.String("error", err.Error()))
		return
	}
}
