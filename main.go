package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/locvowork/employee_records/internal/bootstrap"
	"github.com/locvowork/employee_records/internal/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		logger.ErrorLog(ctx, "Failed to initialize application", err)
		os.Exit(1)
	}

	go func() {
		if err := app.Run(); err != nil {
			logger.ErrorLog(ctx, "Server stopped unexpectedly", err)
			stop()
		}
	}()
	logger.InfoLog(ctx, "Listening on :%s", app.Config.AppPort)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.ErrorLog(shutdownCtx, "Failed to shut down cleanly", err)
	}
}
