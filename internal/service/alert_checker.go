package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"salonms-backend/internal/domain"
	"salonms-backend/internal/notify"
	"salonms-backend/internal/repository"
)

var (
	alertChecksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_alert_checks_total",
		Help: "Number of inventory alert check passes.",
	})
	alertsEmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_alerts_emitted_total",
		Help: "Alerts created, by type.",
	}, []string{"type"})
	alertsSuppressedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_alerts_suppressed_total",
		Help: "Alert emissions suppressed by deduplication, by reason.",
	}, []string{"reason"})
)

type InventoryStore interface {
	ListActive(ctx context.Context) ([]domain.InventoryItem, error)
}

type AlertStore interface {
	LatestByEntity(ctx context.Context, typ domain.AlertType) (map[int64]domain.Alert, error)
	Create(ctx context.Context, in repository.CreateAlertInput) (*domain.Alert, error)
}

type NotificationStore interface {
	Create(ctx context.Context, in repository.CreateNotificationInput) (*domain.Notification, error)
}

type AlertPublisher interface {
	Publish(ev notify.Event)
}

type AlertMailer interface {
	Enabled() bool
	Send(subject, body string) error
}

// AlertChecker watches inventory for low stock and approaching expiry. It
// runs on a timer and on change-feed signals; both paths go through the same
// idempotent check, so overlapping runs are tolerated by the dedup rule
// rather than prevented by locking.
type AlertChecker struct {
	Inventory     InventoryStore
	Alerts        AlertStore
	Notifications NotificationStore
	Publisher     AlertPublisher
	Mailer        AlertMailer
	Logger        *slog.Logger

	CheckInterval time.Duration
	Debounce      time.Duration
	Cooldown      time.Duration // minimum age of the previous alert before re-alerting
	AlertTTL      time.Duration // how long an emitted alert stays visible
	ExpiryWindow  time.Duration // how far ahead expiry dates are flagged

	Now func() time.Time // defaults to time.Now
}

// Run blocks until ctx is cancelled. events carries change-feed signals,
// which are debounced so a burst of writes triggers one check.
func (c *AlertChecker) Run(ctx context.Context, events <-chan struct{}) {
	ticker := time.NewTicker(c.CheckInterval)
	defer ticker.Stop()

	var (
		debounce  *time.Timer
		debounceC <-chan time.Time
	)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	c.Check(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Check(ctx)
		case _, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(c.Debounce)
				debounceC = debounce.C
			} else {
				if !debounce.Stop() && debounceC != nil {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(c.Debounce)
				debounceC = debounce.C
			}
		case <-debounceC:
			debounceC = nil
			c.Check(ctx)
		}
	}
}

// Check runs one pass. Failures are logged and the pass is abandoned; the
// next timer tick or change event retries naturally.
func (c *AlertChecker) Check(ctx context.Context) {
	alertChecksTotal.Inc()

	items, err := c.Inventory.ListActive(ctx)
	if err != nil {
		c.Logger.Error("inventory check: list items failed", "err", err)
		return
	}

	now := c.now()
	for _, typ := range []domain.AlertType{domain.AlertLowStock, domain.AlertExpiringSoon} {
		latest, err := c.Alerts.LatestByEntity(ctx, typ)
		if err != nil {
			c.Logger.Error("inventory check: load latest alerts failed", "type", typ, "err", err)
			return
		}
		for _, it := range items {
			candidate, ok := c.evaluate(it, typ, now)
			if !ok {
				continue
			}
			if prev, exists := latest[it.ID]; exists && !c.shouldEmit(prev, now) {
				continue
			}
			c.emit(ctx, candidate)
		}
	}
}

// evaluate applies the alert condition client-side and builds the candidate
// alert for an item.
func (c *AlertChecker) evaluate(it domain.InventoryItem, typ domain.AlertType, now time.Time) (repository.CreateAlertInput, bool) {
	switch typ {
	case domain.AlertLowStock:
		if it.CurrentStock > it.MinStockLevel {
			return repository.CreateAlertInput{}, false
		}
		severity := domain.SeverityWarning
		title := fmt.Sprintf("Low stock: %s", it.Name)
		message := fmt.Sprintf("%s is down to %d %s (minimum %d)", it.Name, it.CurrentStock, it.Unit, it.MinStockLevel)
		if it.CurrentStock == 0 {
			severity = domain.SeverityCritical
			message = fmt.Sprintf("%s is out of stock (minimum %d %s)", it.Name, it.MinStockLevel, it.Unit)
		}
		return repository.CreateAlertInput{
			Type:      typ,
			Severity:  severity,
			EntityID:  it.ID,
			Title:     title,
			Message:   message,
			ExpiresAt: now.Add(c.AlertTTL),
		}, true

	case domain.AlertExpiringSoon:
		if it.ExpiryDate == nil || it.ExpiryDate.After(now.Add(c.ExpiryWindow)) {
			return repository.CreateAlertInput{}, false
		}
		severity := domain.SeverityWarning
		title := fmt.Sprintf("Expiring soon: %s", it.Name)
		var message string
		if it.ExpiryDate.Before(now) {
			severity = domain.SeverityCritical
			message = fmt.Sprintf("%s expired on %s", it.Name, it.ExpiryDate.Format("2006-01-02"))
		} else {
			days := int(it.ExpiryDate.Sub(now).Hours() / 24)
			message = fmt.Sprintf("%s expires in %d days (%s)", it.Name, days, it.ExpiryDate.Format("2006-01-02"))
		}
		return repository.CreateAlertInput{
			Type:      typ,
			Severity:  severity,
			EntityID:  it.ID,
			Title:     title,
			Message:   message,
			ExpiresAt: now.Add(c.AlertTTL),
		}, true
	}
	return repository.CreateAlertInput{}, false
}

// shouldEmit is the dedup rule: suppress while an unread alert is pending,
// or while the previous alert is younger than the cooldown.
func (c *AlertChecker) shouldEmit(prev domain.Alert, now time.Time) bool {
	if !prev.IsRead {
		alertsSuppressedTotal.WithLabelValues("unread").Inc()
		return false
	}
	if now.Sub(prev.CreatedAt) < c.Cooldown {
		alertsSuppressedTotal.WithLabelValues("cooldown").Inc()
		return false
	}
	return true
}

func (c *AlertChecker) emit(ctx context.Context, in repository.CreateAlertInput) {
	alert, err := c.Alerts.Create(ctx, in)
	if err != nil {
		c.Logger.Error("inventory check: create alert failed", "type", in.Type, "entity", in.EntityID, "err", err)
		return
	}
	alertsEmittedTotal.WithLabelValues(string(in.Type)).Inc()
	c.Logger.Info("inventory alert emitted", "type", alert.Type, "severity", alert.Severity, "entity", alert.EntityID)

	ntype := domain.NotificationWarning
	if alert.Severity == domain.SeverityCritical {
		ntype = domain.NotificationError
	}
	if _, err := c.Notifications.Create(ctx, repository.CreateNotificationInput{
		Title:   alert.Title,
		Message: alert.Message,
		Type:    ntype,
		Created: alert.CreatedAt,
	}); err != nil {
		c.Logger.Error("inventory check: create notification failed", "err", err)
	}

	if c.Publisher != nil {
		c.Publisher.Publish(notify.Event{
			Type:      string(alert.Type),
			Title:     alert.Title,
			Message:   alert.Message,
			Severity:  string(alert.Severity),
			EntityID:  alert.EntityID,
			CreatedAt: alert.CreatedAt,
		})
	}

	if alert.Severity == domain.SeverityCritical && c.Mailer != nil && c.Mailer.Enabled() {
		if err := c.Mailer.Send(alert.Title, alert.Message); err != nil {
			c.Logger.Error("inventory check: alert email failed", "err", err)
		}
	}
}

func (c *AlertChecker) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
