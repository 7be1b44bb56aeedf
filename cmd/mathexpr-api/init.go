package main

import (
	"github.com/gin-gonic/gin"

	"github.com/zephyrtronium/mathexpr/internal/config"
	"github.com/zephyrtronium/mathexpr/internal/logging"
)

var conf config.Config

func init() {
	var err error
	conf, err = config.FromEnv()
	if err != nil {
		panic(err)
	}

	logging.InitLogger(conf.Logging)

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
}
