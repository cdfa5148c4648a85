package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cutroom/cutroom-agent/internal/api"
	"github.com/cutroom/cutroom-agent/internal/cloud"
	"github.com/cutroom/cutroom-agent/internal/config"
	"github.com/cutroom/cutroom-agent/internal/db"
	"github.com/cutroom/cutroom-agent/internal/logging"
	"github.com/cutroom/cutroom-agent/internal/media"
	"github.com/cutroom/cutroom-agent/internal/pipeline"
	"github.com/cutroom/cutroom-agent/internal/playback"
	"github.com/cutroom/cutroom-agent/internal/store"
	"github.com/cutroom/cutroom-agent/internal/timeline"
	"github.com/cutroom/cutroom-agent/internal/ui"
)

const backupInterval = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.ThumbnailsDir(), 0755); err != nil {
		return fmt.Errorf("failed to create thumbnails dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting cutroom agent", "version", config.Version, "data_dir", cfg.DataDir())

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := media.NewRepository(database.Conn())

	deviceID, err := ensureDeviceID(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure device ID: %w", err)
	}

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║                    CUTROOM AGENT v0.1.0                   ║")
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Printf("║  Device ID:  %-45s ║\n", deviceID[:16]+"...")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	var ffmpeg pipeline.FFmpeg
	pipeCfg := pipeline.DefaultConfig(logger)
	pipeCfg.FFmpegPath = cfg.FFmpegPath()
	pipeCfg.FFprobePath = cfg.FFprobePath()
	if sub, err := pipeline.NewSubprocessFFmpeg(pipeCfg); err != nil {
		logger.Warn("ffmpeg unavailable, media probing disabled", "error", err)
		ffmpeg = pipeline.NewStubFFmpeg(logger)
	} else {
		ffmpeg = sub
	}

	doctor := pipeline.NewCachedDoctor(
		pipeline.NewToolDoctor(cfg.FFmpegPath(), cfg.FFprobePath(), cfg.DoctorTimeout(), logger),
		logger,
	)
	initCtx, initCancel := context.WithTimeout(context.Background(), cfg.DoctorTimeout())
	if caps, err := doctor.Refresh(initCtx); err != nil {
		logger.Warn("initial doctor probe failed", "error", err)
	} else {
		logger.Info("tool capabilities detected", "ffmpeg", caps.HasFFmpeg, "ffprobe", caps.HasFFprobe)
	}
	initCancel()

	mediaSvc := media.NewService(repo, ffmpeg, cfg.ThumbnailsDir(), logger)

	policy, err := timeline.ParsePolicy(cfg.OverlapPolicy())
	if err != nil {
		return fmt.Errorf("invalid overlap policy: %w", err)
	}

	session := timeline.NewSession()
	engine := timeline.NewEngine(session, mediaSvc, policy, logger)
	engine.SetThumbnailer(mediaSvc)

	projectStore, err := store.New(cfg.ProjectsDir(), database.Conn(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize project store: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if p, err := projectStore.LoadLatest(ctx); err != nil {
		logger.Warn("could not restore last project", "error", err)
	} else if p != nil {
		session.SetProject(p)
		logger.Info("restored last project", "project_id", p.ID, "name", p.Name)
	}

	autosaver := store.NewAutosaver(projectStore, session, cfg.AutosaveInterval(), logger)
	go autosaver.Start(ctx)

	var cloudClient cloud.Client
	if cfg.BackupURL() != "" {
		httpClient := cloud.NewHTTPClient(cfg.BackupURL(), authToken, logger)
		httpClient.SetDeviceID(deviceID)
		cloudClient = httpClient
		logger.Info("cloud backup enabled", "base_url", cfg.BackupURL())
	} else {
		cloudClient = cloud.NewStubClient(logger)
	}
	cloudClient.RegisterDevice(deviceID)
	go runBackupLoop(ctx, cloudClient, session, logger)

	playbackSvc := playback.NewServer(logger)

	apiServer := api.NewServer(api.ServerConfig{
		Port:           cfg.Port(),
		Engine:         engine,
		Session:        session,
		MediaService:   mediaSvc,
		Repository:     repo,
		Store:          projectStore,
		Autosaver:      autosaver,
		PlaybackServer: playbackSvc,
		Doctor:         doctor,
		Logger:         logger,
		StartTime:      startTime,
		DeviceID:       deviceID,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			close(quitCh)
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Session:   session,
			Autosaver: autosaver,
			Logger:    logger,
			OnSaveNow: func() error {
				return autosaver.SaveNow(context.Background())
			},
			OnQuit: func() {
				close(quitCh)
			},
		})
		go tray.Run()
		go func() {
			ticker := time.NewTicker(5 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					tray.RefreshProject()
				}
			}
		}()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// runBackupLoop periodically ships a snapshot of the active project to the
// cloud backup service. Failures are logged and retried next tick.
func runBackupLoop(ctx context.Context, client cloud.Client, session *timeline.Session, logger *slog.Logger) {
	ticker := time.NewTicker(backupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p := session.Project()
			if p == nil {
				continue
			}
			snapshot, err := json.Marshal(p)
			if err != nil {
				logger.Error("cannot marshal project for backup", "error", err)
				continue
			}
			err = client.UploadSnapshot(ctx, cloud.SnapshotPayload{
				ProjectID:     p.ID,
				ProjectName:   p.Name,
				SchemaVersion: p.SchemaVersion,
				Snapshot:      snapshot,
				SavedAt:       time.Now(),
			})
			if err != nil {
				logger.Warn("cloud backup failed", "project_id", p.ID, "error", err)
			}
		}
	}
}

func ensureDeviceID(repo media.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, "device_id")
	if err == nil && existing != "" {
		return existing, nil
	}

	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return "", err
	}
	deviceID := hex.EncodeToString(idBytes)

	if err := repo.SetConfig(ctx, "device_id", deviceID); err != nil {
		return "", err
	}

	return deviceID, nil
}

func ensureAuthToken(repo media.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, "auth_token")
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, "auth_token", token); err != nil {
		return "", err
	}

	return token, nil
}
