package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/meinhoongagan/nhs-staffing/logger"
	"github.com/meinhoongagan/nhs-staffing/metrics"
)

// RequestLogger logs every request and records its latency.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// Let fiber's error handler set the status before it is logged.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		// fiber reuses the request buffers; label values must outlive the request.
		method := fiberutils.CopyString(c.Method())
		status := c.Response().StatusCode()
		elapsed := time.Since(start)
		route := fiberutils.CopyString(c.Route().Path)

		metrics.APILatency.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
		logger.WithModule("http").Info("request",
			zap.String("method", method),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("ip", c.IP()),
		)
		return nil
	}
}
