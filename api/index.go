package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"mini-shop/bootstrap"
	"mini-shop/config"
	"mini-shop/models"
	"mini-shop/utils"

	"github.com/gin-gonic/gin"
)

var (
	app     *bootstrap.App
	initErr error
	once    sync.Once
)

func initApp() {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)

		cfg, err := config.LoadConfig()
		if err != nil {
			initErr = err
			return
		}

		logger, err := utils.NewLogger("production", cfg.LogLevel)
		if err != nil {
			initErr = err
			return
		}

		app, initErr = bootstrap.Build(context.Background(), cfg, logger)
	})
}

// Handler is the serverless entry point.
func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	if initErr != nil {
		log.Printf("init failed: %v", initErr)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{Success: false, Message: "Service unavailable"})
		return
	}
	app.Router.ServeHTTP(w, r)
}
