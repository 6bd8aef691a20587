package app

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"barback-go/internal/db"
)

type Config struct {
	Addr    string
	BaseURL string

	DBPath string

	JWTSecret []byte
	TokenTTL  time.Duration

	BootstrapAdminUsername string
	BootstrapAdminEmail    string
	BootstrapAdminPassword string

	// Optional: redis-backed cocktail list cache.
	RedisAddr string

	// Optional: web push. All three must be set for push to be on.
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string
}

type App struct {
	cfg   Config
	store *db.Store
	log   *slog.Logger
	hub   *EventHub
	cache *MenuCache
	push  *Pusher
}

func New(cfg Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "/data/barback.db"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 14 * 24 * time.Hour
	}

	// Load secret from env (hex) if not given
	if len(cfg.JWTSecret) == 0 {
		if hk := strings.TrimSpace(os.Getenv("JWT_SECRET_HEX")); hk != "" {
			b, err := hex.DecodeString(hk)
			if err != nil {
				return nil, fmt.Errorf("JWT_SECRET_HEX invalid hex: %w", err)
			}
			cfg.JWTSecret = b
		}
	}
	if len(cfg.JWTSecret) < 32 {
		cfg.JWTSecret = make([]byte, 32)
		_, _ = rand.Read(cfg.JWTSecret)
		logger.Warn("JWT_SECRET_HEX not set (or too short) - generating ephemeral signing key; sessions will reset on restart")
	}

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Migrate(store.DB); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	a := &App{
		cfg:   cfg,
		store: store,
		log:   logger,
		hub:   NewEventHub(logger),
	}

	if cfg.RedisAddr != "" {
		a.cache = NewMenuCache(cfg.RedisAddr, logger)
		logger.Info("menu cache enabled", "addr", cfg.RedisAddr)
	}
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" && cfg.VAPIDSubscriber != "" {
		a.push = NewPusher(store, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber, logger)
		logger.Info("web push enabled")
	}

	// Bootstrap admin if none exists (only once).
	hasAdmin, err := store.Q.HasAnyAdmin()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if !hasAdmin {
		username := strings.TrimSpace(cfg.BootstrapAdminUsername)
		email := strings.TrimSpace(cfg.BootstrapAdminEmail)
		pass := strings.TrimSpace(cfg.BootstrapAdminPassword)

		if username != "" && email != "" && pass != "" {
			hash, err := HashPassword(pass)
			if err != nil {
				_ = store.Close()
				return nil, err
			}
			_, err = store.Q.CreateUser(db.CreateUserParams{
				Username:     username,
				Email:        NormalizeEmail(email),
				PasswordHash: hash,
				Role:         RoleAdmin,
			})
			if err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("bootstrap admin: %w", err)
			}
			a.log.Info("bootstrapped admin user", "email", NormalizeEmail(email))
		}
	}

	// Seed catalog ONLY if empty (never touches users).
	empty, err := isCatalogEmpty(store.DB)
	if err != nil {
		a.log.Warn("catalog empty check failed", "err", err)
	} else if empty {
		if err := db.SeedCatalog(store.DB); err != nil {
			a.log.Warn("catalog seed failed", "err", err)
		} else {
			a.log.Info("catalog seeded")
		}
	}

	if counts, err := store.Q.DebugCounts(); err == nil {
		a.log.Info("store ready", "counts", counts)
	}

	return a, nil
}

func isCatalogEmpty(dbh *sql.DB) (bool, error) {
	var ic int
	if err := dbh.QueryRow(`SELECT COUNT(1) FROM ingredients;`).Scan(&ic); err != nil {
		return false, err
	}
	var cc int
	if err := dbh.QueryRow(`SELECT COUNT(1) FROM cocktails;`).Scan(&cc); err != nil {
		return false, err
	}
	return ic == 0 && cc == 0, nil
}

func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

func (a *App) Store() *db.Store    { return a.store }
func (a *App) Log() *slog.Logger   { return a.log }
func (a *App) Events() *EventHub   { return a.hub }
func (a *App) Cache() *MenuCache   { return a.cache }
func (a *App) Push() *Pusher       { return a.push }
func (a *App) Config() Config      { return a.cfg }
