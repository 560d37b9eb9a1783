package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/ruralfund-backend/internal/logger"
)

// SafeGo запускает горутину; panic логируется вместе со стеком и не роняет процесс.
func SafeGo(name string, fn func()) {
	go func() {
		defer recoverPanic(name)
		fn()
	}()
}

// SafeGoWithContext то же, что SafeGo, но передаёт ctx в fn.
func SafeGoWithContext(ctx context.Context, name string, fn func(context.Context)) {
	go func() {
		defer recoverPanic(name)
		fn(ctx)
	}()
}

func recoverPanic(name string) {
	if r := recover(); r != nil {
		logger.Entry(logrus.Fields{
			"goroutine": name,
			"panic":     r,
			"stack":     string(debug.Stack()),
		}).Error("goroutine: panic перехвачен")
	}
}
