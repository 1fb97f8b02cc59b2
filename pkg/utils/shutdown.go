package utils

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SetupGracefulShutdownWithContext возвращает контекст, который отменяется
// по SIGINT/SIGTERM, и функцию очистки для defer.
//
//	ctx, shutdown := utils.SetupGracefulShutdownWithContext()
//	defer shutdown()
//
// shutdown отменяет контекст, снимает обработчик сигналов и закрывает лог.
// Повторный вызов безопасен.
func SetupGracefulShutdownWithContext() (context.Context, func()) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	go func() {
		<-ctx.Done()
		Info("Shutting down gracefully", "cause", context.Cause(ctx))
	}()

	return ctx, func() {
		stop()
		Close()
	}
}
