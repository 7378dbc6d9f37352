package notify

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nicholas-fedor/shoutrrr"

	"blumn/internal/events"
	"blumn/internal/settings"
)

// Sender abstracts message dispatch so the dispatcher can be tested
// without hitting real services.
type Sender interface {
	Send(shoutrrrURL, message string) error
}

// ShoutrrrSender dispatches via the Shoutrrr library.
type ShoutrrrSender struct{}

func (ShoutrrrSender) Send(url, message string) error {
	return shoutrrr.Send(url, message)
}

// serviceConfig is the Shoutrrr URL extracted from a service's config_json.
type serviceConfig struct {
	ShoutrrrURL string `json:"shoutrrr_url"`
}

// Dispatcher subscribes to the event bus, applies each service's severity
// flags and the global alert cooldown, and dispatches via Shoutrrr.
type Dispatcher struct {
	db     *sql.DB
	bus    *events.Bus
	sender Sender

	// cooldowns tracks the last dispatch per (service, plant, care kind)
	// so a chronically overdue plant does not spam every check cycle.
	mu        sync.Mutex
	cooldowns map[string]time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher wired to the given bus and database.
func NewDispatcher(db *sql.DB, bus *events.Bus, sender Sender) *Dispatcher {
	if sender == nil {
		sender = ShoutrrrSender{}
	}
	return &Dispatcher{
		db:        db,
		bus:       bus,
		sender:    sender,
		cooldowns: make(map[string]time.Time),
		stopCh:    make(chan struct{}),
	}
}

// Start subscribes to all events and begins dispatching.
func (d *Dispatcher) Start() {
	ch := make(chan events.Event, 256)

	d.bus.Subscribe(func(e events.Event) {
		select {
		case ch <- e:
		default:
			log.Printf("notify: event queue full, dropping %s event", e.Type)
		}
	})

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case e := <-ch:
				d.handle(e)
			case <-d.stopCh:
				// Drain remaining events
				for {
					select {
					case e := <-ch:
						d.handle(e)
					default:
						return
					}
				}
			}
		}
	}()
}

// Stop signals the dispatcher goroutine to finish and waits for it.
func (d *Dispatcher) Stop() {
	close(d.stopCh)
	d.wg.Wait()
}

// handle processes a single event against all enabled services.
func (d *Dispatcher) handle(e events.Event) {
	if !settings.GetBool(d.db, "alerts", "enabled", true) {
		return
	}

	services, err := ListEnabledServices(d.db)
	if err != nil {
		log.Printf("notify: list services: %v", err)
		return
	}

	for _, svc := range services {
		if !severityAllowed(svc, e.Severity) {
			continue
		}
		if d.inCooldown(svc.ID, e) {
			continue
		}
		d.dispatch(svc, e)
	}
}

// severityAllowed checks the service's severity flags.
func severityAllowed(svc Service, sev events.Severity) bool {
	switch sev {
	case events.SeverityWarning:
		return svc.NotifyOnOverdue
	case events.SeverityInfo:
		return svc.NotifyOnActivity
	default:
		return false
	}
}

// inCooldown suppresses repeated overdue alerts for the same plant and
// care kind within the configured window. Activity events pass through.
func (d *Dispatcher) inCooldown(serviceID int64, e events.Event) bool {
	if e.Type != events.CareOverdue && e.Type != events.CareDue {
		return false
	}

	hours := settings.GetInt(d.db, "alerts", "cooldown_hours", 24)
	if hours <= 0 {
		return false
	}

	key := fmt.Sprintf("%d:%s:%s", serviceID, e.PlantID, e.CareKind)
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.cooldowns[key]; ok && now.Sub(last) < time.Duration(hours)*time.Hour {
		return true
	}
	d.cooldowns[key] = now
	return false
}

// dispatch sends the notification and records the result.
func (d *Dispatcher) dispatch(svc Service, e events.Event) {
	var cfg serviceConfig
	if err := json.Unmarshal([]byte(svc.ConfigJSON), &cfg); err != nil {
		log.Printf("notify: bad config for service %d (%s): %v", svc.ID, svc.Name, err)
		return
	}
	if cfg.ShoutrrrURL == "" {
		log.Printf("notify: service %d (%s) has no shoutrrr_url", svc.ID, svc.Name)
		return
	}

	msg := formatMessage(e)
	err := d.sender.Send(cfg.ShoutrrrURL, msg)

	rec := &Record{
		ServiceID: svc.ID,
		EventType: string(e.Type),
		PlantName: e.PlantName,
		CareKind:  e.CareKind,
		Message:   msg,
	}

	if err != nil {
		rec.Status = "failed"
		rec.ErrorMessage = err.Error()
		log.Printf("notify: send to %s failed: %v", svc.Name, err)
	} else {
		rec.Status = "sent"
		rec.SentAt = time.Now().UTC()
	}

	if _, dbErr := RecordNotification(d.db, rec); dbErr != nil {
		log.Printf("notify: record history: %v", dbErr)
	}
}

// formatMessage builds a human-readable notification string.
func formatMessage(e events.Event) string {
	severity := e.Severity.String()
	if e.PlantName != "" {
		return fmt.Sprintf("[%s] [%s] %s", severity, e.PlantName, e.Message)
	}
	return fmt.Sprintf("[%s] %s", severity, e.Message)
}
