package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"flat2study/config"
	"flat2study/services/booking"
	"flat2study/services/tasks"

	"github.com/hibiken/asynq"
)

// InitExpiryWorker runs the async worker in background. It processes the
// delayed expiry tasks enqueued when payment authorizations are created.
func InitExpiryWorker(workflow booking.PaymentWorkflowService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeExpireAuthorization, handleExpiryTask(workflow))

	// Start async worker with retry logic.
	go func() {
		log.Println("[ExpiryWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ExpiryWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ExpiryWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleExpiryTask(workflow booking.PaymentWorkflowService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.ExpiryPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ExpiryWorker] invalid payload: %v", err)
			return err
		}

		// Returning an error makes asynq retry; a booking the landlord already
		// answered resolves to nil inside ExpireAuthorization.
		return workflow.ExpireAuthorization(ctx, p.BookingID)
	}
}
