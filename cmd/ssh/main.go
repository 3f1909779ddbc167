package main

import (
	"context"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"slices"
	"syscall"
	"time"

	"product-scout/internal/config"
	"product-scout/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	gossh "golang.org/x/crypto/ssh"
)

const refreshInterval = 5 * time.Second

var (
	loadEnvFunc       = godotenv.Load
	loadConfigFunc    = config.Load
	newWishServerFunc = wish.NewServer
	setupSignalNotify = ossignal.Notify
	waitForSignalFunc = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	if len(cfg.SSHAllowedFingerprints) == 0 {
		log.Println("Warning: SSH_ALLOWED_FINGERPRINTS not set, every key will be rejected")
	}

	api := tui.NewAPIClient(cfg.DashboardAPIURL)
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(allowFingerprints(cfg.SSHAllowedFingerprints)),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				model := tui.NewDashboard(api, s.User(), refreshInterval)
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)

				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	if srv != nil {
		go func() {
			log.Printf("SSH dashboard listening on %s (api %s)", addr, cfg.DashboardAPIURL)
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("SSH server stopped: %v", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down SSH server...")

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("SSH server shutdown error: %v", err)
		}
	}

	log.Println("SSH server exited")
}

// allowFingerprints accepts keys whose SHA256 fingerprint is listed.
func allowFingerprints(allowed []string) ssh.PublicKeyHandler {
	return func(ctx ssh.Context, key ssh.PublicKey) bool {
		fingerprint := gossh.FingerprintSHA256(key)
		if !slices.Contains(allowed, fingerprint) {
			log.Printf("SSH auth denied: fingerprint=%s", fingerprint)
			return false
		}
		log.Printf("SSH auth accepted: fingerprint=%s", fingerprint)
		return true
	}
}
