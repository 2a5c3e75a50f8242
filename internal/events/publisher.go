package events

import (
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"
)

const (
	subjectCompleted = "report.generation.completed"
	subjectFailed    = "report.generation.failed"
)

// ReportEvent describes a report-generation lifecycle transition.
type ReportEvent struct {
	PartnershipID string    `json:"partnership_id"`
	ReportID      string    `json:"report_id,omitempty"`
	State         string    `json:"state"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher emits report lifecycle events to NATS for downstream consumers
// (notification senders, analytics). Publishing is fire-and-forget: a failed
// publish is logged, never fails the report.
type Publisher struct {
	conn   *nats.Conn
	logger *log.Logger
}

// Connect dials NATS and returns a publisher.
func Connect(url string, logger *log.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, logger: logger}, nil
}

// Close drains the underlying connection.
func (p *Publisher) Close() {
	p.conn.Close()
}

// ReportCompleted publishes a completion event.
func (p *Publisher) ReportCompleted(partnershipID, reportID string) {
	p.publish(subjectCompleted, ReportEvent{
		PartnershipID: partnershipID,
		ReportID:      reportID,
		State:         "completed",
		Timestamp:     time.Now().UTC(),
	})
}

// ReportFailed publishes a failure event with the error category.
func (p *Publisher) ReportFailed(partnershipID, category, message string) {
	p.publish(subjectFailed, ReportEvent{
		PartnershipID: partnershipID,
		State:         "failed",
		Error:         category + ": " + message,
		Timestamp:     time.Now().UTC(),
	})
}

func (p *Publisher) publish(subject string, event ReportEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("marshal report event", "subject", subject, "error", err)
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Error("publish report event", "subject", subject, "error", err)
	}
}
