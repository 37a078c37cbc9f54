// @title Quote Server API
// @version 1.0
// @description API системы котирования страховых квот: стохастические движки рисков, staging проспектов и пайплайн промоции в целевую схему.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@example.com

// @license.name Internal Use Only
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:9090
// @BasePath /api
// @schemes http https

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quoteserver/internal/config"
	"quoteserver/server"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════")
	log.Println("🚀 Запуск Quote Server...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	log.Printf("Staging база данных: %s", cfg.StagingDatabasePath)
	log.Printf("Целевая база данных: %s", cfg.PromotionDatabasePath)

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Ошибка создания сервера: %v", err)
	}

	// Graceful shutdown по SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Ошибка сервера: %v", err)
		}
	case sig := <-quit:
		log.Printf("Получен сигнал %v, останавливаем сервер...", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Ошибка остановки сервера: %v", err)
	}
}
