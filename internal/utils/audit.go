package utils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ngprojetos/inscricao-eventos/internal/config"
	"github.com/ngprojetos/inscricao-eventos/internal/logging"
	"github.com/ngprojetos/inscricao-eventos/internal/observability"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// AuditLog represents an audit log entry
type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"`
	Action    string             `bson:"action" json:"action"`
	Resource  string             `bson:"resource" json:"resource"`
	Outcome   string             `bson:"outcome" json:"outcome"`
	IPAddress string             `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	RequestID string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Metadata  map[string]string  `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// Audit constants
const (
	AuditActionSubmit = "SUBMIT"
	AuditActionShare  = "SHARE"
	AuditActionReturn = "RETURN"
	AuditActionExport = "EXPORT"

	AuditResourceRegistration = "registration"
	AuditResourceCompletion   = "completion"
	AuditResourceShareEmail   = "share_email"
	AuditResourceWhatsApp     = "share_whatsapp"
	AuditResourceFlow         = "flow"
	AuditResourceDashboard    = "dashboard"

	AuditOutcomeSuccess = "success"
	AuditOutcomeFailure = "failure"
)

// AuditContext contains request information attached to every audit entry
type AuditContext struct {
	SessionID string
	IPAddress string
	UserAgent string
	RequestID string
}

type auditContextKey struct{}

// WithAuditContext stores the audit context in ctx
func WithAuditContext(ctx context.Context, auditCtx AuditContext) context.Context {
	return context.WithValue(ctx, auditContextKey{}, auditCtx)
}

// AuditContextFrom returns the audit context stored in ctx, if any
func AuditContextFrom(ctx context.Context) AuditContext {
	auditCtx, _ := ctx.Value(auditContextKey{}).(AuditContext)
	return auditCtx
}

// GetAuditContextFromGin extracts audit context from Gin context
func GetAuditContextFromGin(c *gin.Context, sessionID string) AuditContext {
	requestID := c.GetString("request_id")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-ID")
	}

	return AuditContext{
		SessionID: sessionID,
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		RequestID: requestID,
	}
}

// AuditSink persists batches of audit entries
type AuditSink interface {
	InsertAuditLogs(ctx context.Context, logs []AuditLog) (int64, error)
}

// MongoAuditSink writes audit entries to a MongoDB collection
type MongoAuditSink struct {
	Collection *mongo.Collection
}

// InsertAuditLogs bulk-inserts the batch, unordered
func (s MongoAuditSink) InsertAuditLogs(ctx context.Context, logs []AuditLog) (int64, error) {
	operations := make([]mongo.WriteModel, 0, len(logs))
	for _, log := range logs {
		operations = append(operations, mongo.NewInsertOneModel().SetDocument(log))
	}

	result, err := s.Collection.BulkWrite(ctx, operations, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, err
	}
	return result.InsertedCount, nil
}

// AuditWorker manages asynchronous audit logging
type AuditWorker struct {
	sink      AuditSink
	auditChan chan AuditLog
	workers   int
	batchSize int
	interval  time.Duration
	wg        sync.WaitGroup
	stopOnce  sync.Once
}

var (
	auditWorker *AuditWorker
	auditOnce   sync.Once
)

// NewAuditWorker creates and starts a worker pool writing to sink
func NewAuditWorker(sink AuditSink, workers, bufferSize int) *AuditWorker {
	if workers < 1 {
		workers = 1
	}
	if bufferSize < 1 {
		bufferSize = 1
	}

	aw := &AuditWorker{
		sink:      sink,
		auditChan: make(chan AuditLog, bufferSize),
		workers:   workers,
		batchSize: 100,
		interval:  100 * time.Millisecond,
	}
	aw.start()
	return aw
}

// InitAuditWorker starts the global audit worker when the trail is enabled
func InitAuditWorker(workers int, bufferSize int) {
	if !config.AppConfig.AuditEnabled() || config.MongoDB == nil {
		return
	}
	auditOnce.Do(func() {
		sink := MongoAuditSink{Collection: config.MongoDB.Collection(config.AppConfig.AuditLogsCollection)}
		auditWorker = NewAuditWorker(sink, workers, bufferSize)
	})
}

// GetAuditWorker returns the global audit worker instance
func GetAuditWorker() *AuditWorker {
	return auditWorker
}

func (aw *AuditWorker) start() {
	aw.wg.Add(aw.workers)
	for i := 0; i < aw.workers; i++ {
		go func() {
			defer aw.wg.Done()
			aw.processAuditLogs()
		}()
	}

	logging.Logger.Info("audit worker started",
		zap.Int("workers", aw.workers),
		zap.Int("buffer_size", cap(aw.auditChan)))
}

// processAuditLogs drains the channel in batches until it is closed
func (aw *AuditWorker) processAuditLogs() {
	ticker := time.NewTicker(aw.interval)
	defer ticker.Stop()

	batch := make([]AuditLog, 0, aw.batchSize)
	for {
		select {
		case auditLog, ok := <-aw.auditChan:
			if !ok {
				aw.flushBatch(batch)
				return
			}
			batch = append(batch, auditLog)
			if len(batch) >= aw.batchSize {
				aw.flushBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				aw.flushBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (aw *AuditWorker) flushBatch(batch []AuditLog) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	inserted, err := aw.sink.InsertAuditLogs(ctx, batch)
	if err != nil {
		observability.AuditLogs.WithLabelValues("failed").Add(float64(len(batch)))
		logging.Logger.Error("failed to insert audit log batch",
			zap.Error(err),
			zap.Int("batch_size", len(batch)))
		return
	}

	observability.AuditLogs.WithLabelValues("inserted").Add(float64(inserted))
	logging.Logger.Debug("audit log batch inserted",
		zap.Int64("inserted", inserted),
		zap.Int("batch_size", len(batch)))
}

// Enqueue queues an entry without blocking. It reports false when the buffer is full.
func (aw *AuditWorker) Enqueue(auditLog AuditLog) bool {
	select {
	case aw.auditChan <- auditLog:
		observability.AuditLogs.WithLabelValues("queued").Inc()
		return true
	default:
		return false
	}
}

// Stop flushes pending entries and waits for the workers to exit
func (aw *AuditWorker) Stop() {
	if aw == nil {
		return
	}
	aw.stopOnce.Do(func() {
		close(aw.auditChan)
		aw.wg.Wait()
	})
}

// GetAuditWorkerStats returns current audit worker statistics
func (aw *AuditWorker) GetAuditWorkerStats() map[string]interface{} {
	if aw == nil {
		return map[string]interface{}{
			"status": "not_initialized",
		}
	}

	return map[string]interface{}{
		"status":           "running",
		"workers":          aw.workers,
		"buffer_capacity":  cap(aw.auditChan),
		"buffer_usage":     len(aw.auditChan),
		"buffer_available": cap(aw.auditChan) - len(aw.auditChan),
	}
}

// HealthCheck fails while the audit queue has no room left, which pushes
// writes onto the request path
func (aw *AuditWorker) HealthCheck(context.Context) error {
	stats := aw.GetAuditWorkerStats()
	if stats["status"] != "running" {
		return fmt.Errorf("audit worker %v", stats["status"])
	}
	if available, _ := stats["buffer_available"].(int); available == 0 {
		return fmt.Errorf("audit buffer full: %v queued", stats["buffer_usage"])
	}
	return nil
}

// NewAuditLog builds an entry from the request context with masked metadata
func NewAuditLog(ctx context.Context, action, resource, outcome string, metadata map[string]string) AuditLog {
	auditCtx := AuditContextFrom(ctx)
	return AuditLog{
		SessionID: auditCtx.SessionID,
		Action:    action,
		Resource:  resource,
		Outcome:   outcome,
		IPAddress: auditCtx.IPAddress,
		UserAgent: auditCtx.UserAgent,
		RequestID: auditCtx.RequestID,
		Timestamp: time.Now().UTC(),
		Metadata:  SanitizeAuditMetadata(metadata),
	}
}

// LogAuditEvent records a flow event on the audit trail asynchronously.
// It is a no-op when the trail is disabled.
func LogAuditEvent(ctx context.Context, action, resource, outcome string, metadata map[string]string) error {
	if !config.AppConfig.AuditEnabled() {
		return nil
	}

	auditLog := NewAuditLog(ctx, action, resource, outcome, metadata)

	if auditWorker == nil {
		return logAuditEventSync(auditLog)
	}
	if auditWorker.Enqueue(auditLog) {
		return nil
	}

	logging.Logger.Warn("audit channel full, falling back to synchronous logging",
		zap.String("action", action),
		zap.String("resource", resource))
	return logAuditEventSync(auditLog)
}

// logAuditEventSync writes a single entry directly (fallback method)
func logAuditEventSync(auditLog AuditLog) error {
	if config.MongoDB == nil {
		observability.AuditLogs.WithLabelValues("dropped").Inc()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := config.MongoDB.Collection(config.AppConfig.AuditLogsCollection).InsertOne(ctx, auditLog)
	if err != nil {
		observability.AuditLogs.WithLabelValues("failed").Inc()
		logging.Logger.Error("failed to insert audit log",
			zap.String("action", auditLog.Action),
			zap.Error(err))
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	observability.AuditLogs.WithLabelValues("inserted").Inc()
	return nil
}

// SanitizeAuditMetadata masks personal data before it reaches the trail
func SanitizeAuditMetadata(metadata map[string]string) map[string]string {
	if len(metadata) == 0 {
		return nil
	}

	sanitized := make(map[string]string, len(metadata))
	for k, v := range metadata {
		switch k {
		case "email", "registration_email", "instit_email":
			sanitized[k] = observability.MaskEmail(v)
		case "cpf":
			sanitized[k] = observability.MaskCPF(DigitsOnly(v))
		case "phone", "whats", "instit_tel", "name", "nome":
			sanitized[k] = "[REDACTED]"
		default:
			sanitized[k] = v
		}
	}
	return sanitized
}

// AuditRecorder adapts LogAuditEvent to the flow's auditor interface
type AuditRecorder struct{}

// Record logs the event, reporting failures on the application log only
func (AuditRecorder) Record(ctx context.Context, action, resource, outcome string, metadata map[string]string) {
	if err := LogAuditEvent(ctx, action, resource, outcome, metadata); err != nil {
		logging.Logger.Warn("audit event not recorded", zap.Error(err))
	}
}
