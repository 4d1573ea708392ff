package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"salonms-backend/internal/domain"
	"salonms-backend/internal/notify"
	"salonms-backend/internal/repository"
)

type fakeInventoryStore struct {
	items []domain.InventoryItem
}

func (f *fakeInventoryStore) ListActive(_ context.Context) ([]domain.InventoryItem, error) {
	return f.items, nil
}

type fakeAlertStore struct {
	latest  map[domain.AlertType]map[int64]domain.Alert
	created []domain.Alert
	nextID  int64
}

func (f *fakeAlertStore) LatestByEntity(_ context.Context, typ domain.AlertType) (map[int64]domain.Alert, error) {
	if f.latest == nil {
		return map[int64]domain.Alert{}, nil
	}
	m, ok := f.latest[typ]
	if !ok {
		return map[int64]domain.Alert{}, nil
	}
	return m, nil
}

func (f *fakeAlertStore) Create(_ context.Context, in repository.CreateAlertInput) (*domain.Alert, error) {
	f.nextID++
	a := domain.Alert{
		ID:        f.nextID,
		Type:      in.Type,
		Severity:  in.Severity,
		EntityID:  in.EntityID,
		Title:     in.Title,
		Message:   in.Message,
		CreatedAt: time.Now(),
		ExpiresAt: in.ExpiresAt,
	}
	f.created = append(f.created, a)
	return &a, nil
}

type fakeNotificationStore struct {
	created []repository.CreateNotificationInput
}

func (f *fakeNotificationStore) Create(_ context.Context, in repository.CreateNotificationInput) (*domain.Notification, error) {
	f.created = append(f.created, in)
	return &domain.Notification{Title: in.Title, Message: in.Message, Type: in.Type}, nil
}

type fakePublisher struct {
	events []notify.Event
}

func (f *fakePublisher) Publish(ev notify.Event) { f.events = append(f.events, ev) }

type fakeMailer struct {
	enabled  bool
	subjects []string
}

func (f *fakeMailer) Enabled() bool { return f.enabled }

func (f *fakeMailer) Send(subject, _ string) error {
	f.subjects = append(f.subjects, subject)
	return nil
}

func newTestChecker(inv *fakeInventoryStore, alerts *fakeAlertStore, now time.Time) (*AlertChecker, *fakeNotificationStore, *fakePublisher, *fakeMailer) {
	notifications := &fakeNotificationStore{}
	pub := &fakePublisher{}
	mailer := &fakeMailer{enabled: true}
	c := &AlertChecker{
		Inventory:     inv,
		Alerts:        alerts,
		Notifications: notifications,
		Publisher:     pub,
		Mailer:        mailer,
		Logger:        testLogger(),
		Cooldown:      5 * 24 * time.Hour,
		AlertTTL:      7 * 24 * time.Hour,
		ExpiryWindow:  30 * 24 * time.Hour,
		Now:           func() time.Time { return now },
	}
	return c, notifications, pub, mailer
}

func alertsOfType(alerts []domain.Alert, typ domain.AlertType) []domain.Alert {
	var out []domain.Alert
	for _, a := range alerts {
		if a.Type == typ {
			out = append(out, a)
		}
	}
	return out
}

func TestCheckLowStock(t *testing.T) {
	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	inv := &fakeInventoryStore{items: []domain.InventoryItem{
		{ID: 1, Name: "Shampoo", Unit: "bottle", CurrentStock: 2, MinStockLevel: 5},
		{ID: 2, Name: "Razor blades", Unit: "pack", CurrentStock: 0, MinStockLevel: 3},
		{ID: 3, Name: "Towels", Unit: "pcs", CurrentStock: 40, MinStockLevel: 10},
	}}
	alerts := &fakeAlertStore{}
	c, notifications, pub, _ := newTestChecker(inv, alerts, now)

	c.Check(context.Background())

	low := alertsOfType(alerts.created, domain.AlertLowStock)
	if len(low) != 2 {
		t.Fatalf("low-stock alerts = %d, want 2", len(low))
	}
	bySeverity := map[int64]domain.AlertSeverity{}
	for _, a := range low {
		bySeverity[a.EntityID] = a.Severity
	}
	if bySeverity[1] != domain.SeverityWarning {
		t.Fatalf("item 1 severity = %s, want warning", bySeverity[1])
	}
	if bySeverity[2] != domain.SeverityCritical {
		t.Fatalf("out-of-stock item severity = %s, want critical", bySeverity[2])
	}
	if len(notifications.created) != 2 || len(pub.events) != 2 {
		t.Fatalf("notifications = %d, published events = %d, want 2 each", len(notifications.created), len(pub.events))
	}
}

func TestCheckExpiry(t *testing.T) {
	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	soon := now.AddDate(0, 0, 10)
	past := now.AddDate(0, 0, -2)
	far := now.AddDate(0, 0, 90)
	inv := &fakeInventoryStore{items: []domain.InventoryItem{
		{ID: 1, Name: "Hair dye", CurrentStock: 20, MinStockLevel: 2, ExpiryDate: &soon},
		{ID: 2, Name: "Conditioner", CurrentStock: 20, MinStockLevel: 2, ExpiryDate: &past},
		{ID: 3, Name: "Wax", CurrentStock: 20, MinStockLevel: 2, ExpiryDate: &far},
		{ID: 4, Name: "Scissors", CurrentStock: 20, MinStockLevel: 2},
	}}
	alerts := &fakeAlertStore{}
	c, _, _, mailer := newTestChecker(inv, alerts, now)

	c.Check(context.Background())

	exp := alertsOfType(alerts.created, domain.AlertExpiringSoon)
	if len(exp) != 2 {
		t.Fatalf("expiry alerts = %d, want 2", len(exp))
	}
	bySeverity := map[int64]domain.AlertSeverity{}
	for _, a := range exp {
		bySeverity[a.EntityID] = a.Severity
	}
	if bySeverity[1] != domain.SeverityWarning {
		t.Fatalf("expiring item severity = %s, want warning", bySeverity[1])
	}
	if bySeverity[2] != domain.SeverityCritical {
		t.Fatalf("expired item severity = %s, want critical", bySeverity[2])
	}
	// Only the critical alert goes out by email.
	if len(mailer.subjects) != 1 {
		t.Fatalf("emails sent = %d, want 1", len(mailer.subjects))
	}
}

func TestCheckSuppressesWhileUnread(t *testing.T) {
	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	inv := &fakeInventoryStore{items: []domain.InventoryItem{
		{ID: 1, Name: "Shampoo", Unit: "bottle", CurrentStock: 1, MinStockLevel: 5},
	}}
	alerts := &fakeAlertStore{latest: map[domain.AlertType]map[int64]domain.Alert{
		domain.AlertLowStock: {
			1: {ID: 9, Type: domain.AlertLowStock, EntityID: 1, IsRead: false, CreatedAt: now.AddDate(0, 0, -10)},
		},
	}}
	c, notifications, _, _ := newTestChecker(inv, alerts, now)

	c.Check(context.Background())

	if len(alerts.created) != 0 {
		t.Fatalf("alerts created = %d, want 0 while previous alert is unread", len(alerts.created))
	}
	if len(notifications.created) != 0 {
		t.Fatalf("notifications created = %d, want 0", len(notifications.created))
	}
}

func TestCheckSuppressesWithinCooldown(t *testing.T) {
	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	inv := &fakeInventoryStore{items: []domain.InventoryItem{
		{ID: 1, Name: "Shampoo", Unit: "bottle", CurrentStock: 1, MinStockLevel: 5},
	}}
	alerts := &fakeAlertStore{latest: map[domain.AlertType]map[int64]domain.Alert{
		domain.AlertLowStock: {
			1: {ID: 9, Type: domain.AlertLowStock, EntityID: 1, IsRead: true, CreatedAt: now.Add(-24 * time.Hour)},
		},
	}}
	c, _, _, _ := newTestChecker(inv, alerts, now)

	c.Check(context.Background())

	if len(alerts.created) != 0 {
		t.Fatalf("alerts created = %d, want 0 within cooldown", len(alerts.created))
	}
}

func TestCheckReAlertsAfterCooldown(t *testing.T) {
	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	inv := &fakeInventoryStore{items: []domain.InventoryItem{
		{ID: 1, Name: "Shampoo", Unit: "bottle", CurrentStock: 1, MinStockLevel: 5},
	}}
	alerts := &fakeAlertStore{latest: map[domain.AlertType]map[int64]domain.Alert{
		domain.AlertLowStock: {
			1: {ID: 9, Type: domain.AlertLowStock, EntityID: 1, IsRead: true, CreatedAt: now.AddDate(0, 0, -6)},
		},
	}}
	c, _, _, _ := newTestChecker(inv, alerts, now)

	c.Check(context.Background())

	if len(alerts.created) != 1 {
		t.Fatalf("alerts created = %d, want 1 after cooldown passed", len(alerts.created))
	}
}

func TestCheckIdempotentAcrossRuns(t *testing.T) {
	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	inv := &fakeInventoryStore{items: []domain.InventoryItem{
		{ID: 1, Name: "Shampoo", Unit: "bottle", CurrentStock: 1, MinStockLevel: 5},
	}}
	alerts := &fakeAlertStore{}
	c, _, _, _ := newTestChecker(inv, alerts, now)

	c.Check(context.Background())
	if len(alerts.created) != 1 {
		t.Fatalf("first run created %d alerts, want 1", len(alerts.created))
	}

	// Make the fresh alert visible to the next run; it must suppress.
	alerts.latest = map[domain.AlertType]map[int64]domain.Alert{
		domain.AlertLowStock: {1: alerts.created[0]},
	}
	c.Check(context.Background())
	if len(alerts.created) != 1 {
		t.Fatalf("second run created %d alerts total, want 1", len(alerts.created))
	}
}

type countingInventoryStore struct {
	mu     sync.Mutex
	passes int
}

func (f *countingInventoryStore) ListActive(_ context.Context) ([]domain.InventoryItem, error) {
	f.mu.Lock()
	f.passes++
	f.mu.Unlock()
	return nil, nil
}

func (f *countingInventoryStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.passes
}

func waitForPasses(t *testing.T, inv *countingInventoryStore, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if inv.count() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("checker ran %d passes, want %d", inv.count(), want)
}

// A burst of change-feed events must collapse into a single debounced check,
// and Run must return promptly on context cancellation.
func TestRunCoalescesEventBursts(t *testing.T) {
	inv := &countingInventoryStore{}
	c := &AlertChecker{
		Inventory:     inv,
		Alerts:        &fakeAlertStore{},
		Notifications: &fakeNotificationStore{},
		Logger:        testLogger(),
		CheckInterval: time.Hour, // ticker stays silent for the test
		Debounce:      50 * time.Millisecond,
		Cooldown:      5 * 24 * time.Hour,
		AlertTTL:      7 * 24 * time.Hour,
		ExpiryWindow:  30 * 24 * time.Hour,
	}

	events := make(chan struct{}, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		c.Run(ctx, events)
		close(done)
	}()

	// Run does one pass on startup.
	waitForPasses(t, inv, 1)

	for i := 0; i < 5; i++ {
		events <- struct{}{}
	}
	waitForPasses(t, inv, 2)

	// Let a stray second debounce fire if one is pending.
	time.Sleep(150 * time.Millisecond)
	if got := inv.count(); got != 2 {
		t.Fatalf("burst of 5 events caused %d passes, want 1 (plus the startup pass)", got-1)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestRunChecksOnTick(t *testing.T) {
	inv := &countingInventoryStore{}
	c := &AlertChecker{
		Inventory:     inv,
		Alerts:        &fakeAlertStore{},
		Notifications: &fakeNotificationStore{},
		Logger:        testLogger(),
		CheckInterval: 20 * time.Millisecond,
		Debounce:      time.Hour,
		Cooldown:      5 * 24 * time.Hour,
		AlertTTL:      7 * 24 * time.Hour,
		ExpiryWindow:  30 * 24 * time.Hour,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		c.Run(ctx, make(chan struct{}))
		close(done)
	}()

	// Startup pass plus at least two ticks.
	waitForPasses(t, inv, 3)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
