package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"

	"github.com/khobor/portal/auth"
	"github.com/khobor/portal/cms"
	"github.com/khobor/portal/content"
	"github.com/khobor/portal/gateway"
	"github.com/khobor/portal/store"
)

const defaultConfigPath = "/etc/portal/config.yaml"
const defaultSecretsPath = "/etc/portal/secrets.yaml"

func isTestRun() bool {
	return strings.HasSuffix(os.Args[0], ".test")
}

func firstExistingPath(paths ...string) string {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// loadConfig reads config.yaml and overlays secrets.yaml on top of it.
func loadConfig(cfg *cms.PortalConfig) error {
	configPath := firstExistingPath(defaultConfigPath, "./config.yaml", "../config.yaml")
	if configPath == "" {
		if isTestRun() {
			return nil
		}
		return errors.New("config.yaml not found")
	}
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(configData, cfg); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}
	logrusLogger.Printf("Loaded config from %s", configPath)

	secretsPath := firstExistingPath(defaultSecretsPath, "./secrets.yaml", "../secrets.yaml")
	if secretsPath != "" {
		secretsData, err := os.ReadFile(secretsPath)
		if err != nil {
			return fmt.Errorf("read secrets: %w", err)
		}
		if err := yaml.Unmarshal(secretsData, cfg); err != nil {
			return fmt.Errorf("parse secrets yaml: %w", err)
		}
		logrusLogger.Printf("Loaded secrets from %s", secretsPath)
	}
	return nil
}

func getFirebase(cfg cms.PortalConfig) (*firebase.App, error) {
	if cfg.FirebaseCredentialsFile == "" {
		return nil, errors.New("firebase credentials file not configured")
	}
	opt := option.WithCredentialsFile(cfg.FirebaseCredentialsFile)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing app: %v", err)
	}
	return app, nil
}

func init() {
	if err := loadConfig(&portalConfig); err != nil {
		logrusLogger.Fatalf("error loading config: %v", err)
	}
	portalConfig.Defaults()
	configureLogger(portalConfig)

	dbpath := portalConfig.DatabasePath
	if isTestRun() {
		if tmp, err := os.CreateTemp("", "portal-test-*.db"); err == nil {
			dbpath = tmp.Name()
			_ = tmp.Close()
		}
	}

	var err error
	database, err = store.Open(dbpath, portalConfig.Debug)
	if err != nil {
		logrusLogger.Fatalf("error in connecting to db: %v", err)
	}
	if err := store.Migrate(database); err != nil {
		logrusLogger.Fatalf("error in migrations: %v", err)
	}

	if portalConfig.RedisHost != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     portalConfig.RedisHost,
			Password: portalConfig.RedisPassword,
		})
	} else {
		logrusLogger.Warn("redis disabled (no redis_host configured)")
	}

	firebaseApp, err = getFirebase(portalConfig)
	if err != nil {
		logrusLogger.Printf("firebase unavailable: %v", err)
	}

	cmsClient = cms.NewClient(portalConfig, logrusLogger)

	jwtAuth = gateway.JWTAuth{PortalConfig: portalConfig}
	jwtAuth.Init()

	authService = auth.Service{
		Redis:        redisClient,
		Db:           database,
		PortalConfig: portalConfig,
		Logger:       logrusLogger,
		FirebaseApp:  firebaseApp,
		Auth:         &jwtAuth,
		CMS:          cmsClient,
	}

	contentCache = content.NewCache(cmsClient, redisClient, logrusLogger,
		time.Duration(portalConfig.CacheTTLSeconds)*time.Second)
	contentService = content.Service{Cache: contentCache, Logger: logrusLogger}
}
