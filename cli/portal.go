package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	firebase "firebase.google.com/go/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/khobor/portal/auth"
	"github.com/khobor/portal/cms"
	"github.com/khobor/portal/content"
	"github.com/khobor/portal/gateway"
)

var portalConfig cms.PortalConfig
var logrusLogger = logrus.New()
var database *gorm.DB
var redisClient *redis.Client
var firebaseApp *firebase.App
var cmsClient *cms.Client
var jwtAuth gateway.JWTAuth
var authService auth.Service
var contentCache *content.Cache
var contentService content.Service
var logSampling gateway.LogSamplingConfig

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go warmContentCache(ctx)

	logrusLogger.Fatal(GetMainEngine().Listen(portalConfig.Port))
}

// warmContentCache pre-fills the listing cache so the first reader request
// doesn't pay the CMS round trip.
func warmContentCache(ctx context.Context) {
	if contentCache == nil {
		return
	}
	if err := contentCache.Refetch(ctx); err != nil {
		logrusLogger.Printf("content cache warmup failed: %v", err)
	}
}
