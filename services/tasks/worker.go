package tasks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"medibook/config"
)

// QueueRedisOpt builds the asynq Redis connection from app config. The queue
// lives in its own Redis DB so flushing the cache never drops pending tasks.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitReminderWorker runs the async reminder worker in background.
func InitReminderWorker(logger *zap.Logger) {
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAppointmentReminder, handleReminderTask(logger))

	go func() {
		logger.Sugar().Info("reminder worker: starting")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				logger.Sugar().Errorf("reminder worker: attempt %d/%d failed: %v", attempts, maxAttempts, err)
				if attempts == maxAttempts {
					logger.Sugar().Fatal("reminder worker: max retry attempts reached")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleReminderTask(logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Sugar().Errorf("reminder worker: invalid payload: %v", err)
			return err
		}

		logger.Info("appointment reminder due",
			zap.String("bookingID", p.BookingID),
			zap.String("providerID", p.ProviderID),
			zap.String("patient", p.PatientName),
			zap.String("date", p.Date),
			zap.String("startTime", p.StartTime),
		)
		return nil
	}
}
