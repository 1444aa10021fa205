// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/bookshelfhq/bookshelf/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (register, login).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off"
	Auth string
	// Admin controls logging for admin action events (book/user CRUD,
	// lending decisions, completions, deletions). Same values as Auth.
	Admin string
}

// Logger records audit events to MongoDB (via audit.Store) and to structured
// logs (via zap), gated by configuration. A nil *Logger is a no-op so tests
// can skip auditing entirely.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

// clientIP extracts the caller address, preferring reverse-proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.BookID != nil {
		fields = append(fields, zap.String("book_id", event.BookID.Hex()))
	}
	if event.TransactionID != nil {
		fields = append(fields, zap.String("transaction_id", event.TransactionID.Hex()))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event according to its category's config setting.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}
	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if setting == "all" || setting == "db" {
		if err := l.store.Insert(ctx, event); err != nil {
			l.zapLog.Error("audit event insert failed",
				zap.String("event_type", event.EventType), zap.Error(err))
		}
	}
}

// LoginSuccess records a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	if l == nil {
		return
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		IP:        clientIP(r),
		Success:   true,
	})
}

// LoginFailed records a failed login attempt with its reason event type.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, eventType, email string) {
	if l == nil {
		return
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: eventType,
		IP:        clientIP(r),
		Success:   false,
		Details:   map[string]string{"email": email},
	})
}

// UserRegistered records a new account registration.
func (l *Logger) UserRegistered(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	if l == nil {
		return
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventUserRegistered,
		UserID:    &userID,
		IP:        clientIP(r),
		Success:   true,
	})
}

// AdminAction records a successful admin action against a target.
func (l *Logger) AdminAction(ctx context.Context, r *http.Request, eventType string, actorID primitive.ObjectID, target Target) {
	if l == nil {
		return
	}
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAdmin,
		EventType:     eventType,
		ActorID:       &actorID,
		UserID:        target.UserID,
		BookID:        target.BookID,
		TransactionID: target.TransactionID,
		IP:            clientIP(r),
		Success:       true,
		Details:       target.Details,
	})
}

// Target names the records an admin action touched.
type Target struct {
	UserID        *primitive.ObjectID
	BookID        *primitive.ObjectID
	TransactionID *primitive.ObjectID
	Details       map[string]string
}
