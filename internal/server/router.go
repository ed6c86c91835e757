package server

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/amishk599/uxcelerator/internal/model"
	"github.com/amishk599/uxcelerator/internal/requestid"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Provider    string
	CORSOrigins []string
	Recommender model.Recommender
	Logger      *slog.Logger
}

// SetGinMode switches gin to release mode in production.
func SetGinMode(env string) {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(dep.CORSOrigins)))
	r.Use(RequestIDMiddleware(dep.Logger))

	NewHealthHandler(dep.ServiceName, dep.Version, dep.Provider).RegisterRoutes(r)
	NewRecommendHandler(dep.Recommender, dep.Logger).RegisterRoutes(r)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", requestid.Header},
		ExposeHeaders: []string{requestid.Header},
		MaxAge:        12 * time.Hour,
		// The front end is a browser extension.
		AllowBrowserExtensions: true,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
