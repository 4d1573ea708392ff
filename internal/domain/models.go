package domain

import "time"

// Enumerations
const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleStaff   UserRole = "staff"

	PaymentFixed      PaymentType = "fixed"
	PaymentCommission PaymentType = "commission"

	AlertLowStock     AlertType = "low_stock"
	AlertExpiringSoon AlertType = "expiring_soon"

	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"

	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

type UserRole string
type PaymentType string
type AlertType string
type AlertSeverity string
type NotificationType string

type User struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	Role         UserRole
	IsGoogle     bool
	PasswordHash *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

type Product struct {
	ID          int64
	Name        string
	Category    string
	Price       Money
	Description string
	CreatedBy   *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// Worker is a salon staff member whose earnings are tracked. Commission-paid
// workers earn a percentage of every service; fixed-salary workers only
// accumulate a service count.
type Worker struct {
	ID                   int64
	Name                 string
	Phone                string
	Email                string
	PaymentType          PaymentType
	CommissionRate       float64 // percent of service price
	TotalEarnings        int64   // minor currency units
	CurrentMonthEarnings int64
	ServicesPerformed    int64
	Active               bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
	DeletedAt            *time.Time
}

// ServiceRecord is an append-only row describing one completed service. The
// worker counters are derived from these rows and can be rebuilt from them.
type ServiceRecord struct {
	ID             int64
	WorkerID       int64
	ProductID      *int64
	ServiceName    string
	ServicePrice   int64
	CommissionPaid int64
	PerformedAt    time.Time
}

type InventoryItem struct {
	ID            int64
	Name          string
	Category      string
	Unit          string
	CurrentStock  int
	MinStockLevel int
	ExpiryDate    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// Alert is emitted by the inventory checker when an item is low on stock or
// close to its expiry date.
type Alert struct {
	ID        int64
	Type      AlertType
	Severity  AlertSeverity
	EntityID  int64 // inventory item id
	Title     string
	Message   string
	IsRead    bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Notification is a row in the in-app notification center. A nil UserID means
// the notification is visible to every user.
type Notification struct {
	ID        int64
	UserID    *int64
	Title     string
	Message   string
	Type      NotificationType
	CreatedAt time.Time
	ReadAt    *time.Time
	DeletedAt *time.Time
}
