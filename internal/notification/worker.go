package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"field-metrics-backend/internal/model"
)

// AlertSender defines the interface for sending a web push notification.
type AlertSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real AlertSender backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans data-quality alerts out to subscribed analysts. Jobs are
// upload-record IDs whose quarantine ratio crossed the alert threshold.
type WorkerPool struct {
	size    int
	jobs    chan int64
	db      *gorm.DB
	webpush *webpush.Options
	sender  AlertSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan int64, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// SetSender swaps the delivery implementation; tests use this to capture
// payloads without hitting a push service.
func (wp *WorkerPool) SetSender(s AlertSender) {
	wp.sender = s
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Alert worker %d started", id)
	for {
		select {
		case uploadID := <-wp.jobs:
			log.Printf("Alert worker %d processing upload %d", id, uploadID)
			wp.sendAlertsForUpload(ctx, uploadID)
		case <-ctx.Done():
			log.Printf("Alert worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a job to the worker pool.
func (wp *WorkerPool) Dispatch(uploadID int64) {
	wp.jobs <- uploadID
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan int64 {
	return wp.jobs
}

// sendAlertsForUpload loads the audit record and pushes a quality warning
// to every subscriber.
func (wp *WorkerPool) sendAlertsForUpload(ctx context.Context, uploadID int64) {
	var record model.UploadRecord
	if err := wp.db.WithContext(ctx).First(&record, uploadID).Error; err != nil {
		log.Printf("Error fetching upload record %d: %v", uploadID, err)
		return
	}

	var subscriptions []model.PushSubscription
	if err := wp.db.WithContext(ctx).Find(&subscriptions).Error; err != nil {
		log.Printf("Error fetching subscriptions for upload %d: %v", uploadID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	log.Printf("Sending %d data-quality alerts for upload %d", len(subscriptions), uploadID)
	message := fmt.Sprintf("Data quality warning: %q had %d of %d rows quarantined (%.0f%%)",
		record.Source, record.QuarantinedCount, record.RowCount, record.QuarantineRatio()*100)
	for _, sub := range subscriptions {
		wp.sendAlert(ctx, sub, []byte(message))
	}
}

func (wp *WorkerPool) sendAlert(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending alert to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Push services answer 410 for subscriptions that no longer exist.
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
