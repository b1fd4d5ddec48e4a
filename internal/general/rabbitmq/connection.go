package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fleetdesk/internal/general/config"
	"fleetdesk/internal/general/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	dialTimeout       = 30 * time.Second
	heartbeatInterval = 10 * time.Second
	maxReconnectWait  = 30 * time.Second
)

// Client keeps one AMQP connection alive for the coordinator and redeclares
// the notification topology after every reconnect.
type Client struct {
	url    string
	logger *logger.Logger
	logCtx context.Context // survives caller cancellation so reconnects keep logging

	mu      sync.RWMutex
	conn    *amqp.Connection
	pubChan *amqp.Channel

	pubMu       sync.Mutex
	pubConfirms chan amqp.Confirmation

	closed    chan struct{}
	reconnect chan struct{}
}

// Connect dials the broker once and starts the reconnect watcher. Later
// connection drops are handled in the background.
func Connect(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Client, error) {
	client := &Client{
		url:       fmt.Sprintf("amqp://%s:%s@%s:%d/", cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port),
		logger:    log,
		logCtx:    context.WithoutCancel(ctx),
		closed:    make(chan struct{}),
		reconnect: make(chan struct{}, 1),
	}

	if err := client.connectOnce(); err != nil {
		return nil, err
	}
	go client.watch()

	log.Info(client.logCtx, "rabbitmq_connected", "Connected to RabbitMQ", map[string]any{
		"host": cfg.RabbitMQ.Host,
		"port": cfg.RabbitMQ.Port,
	})
	return client, nil
}

// Close stops the watcher and releases the connection.
func (client *Client) Close() {
	select {
	case <-client.closed:
	default:
		close(client.closed)
	}

	client.mu.Lock()
	if client.pubChan != nil {
		_ = client.pubChan.Close()
		client.pubChan = nil
	}
	if client.conn != nil {
		_ = client.conn.Close()
		client.conn = nil
	}
	client.mu.Unlock()

	// waiters blocked on a confirm must not hang forever
	client.pubMu.Lock()
	if client.pubConfirms != nil {
		close(client.pubConfirms)
		client.pubConfirms = nil
	}
	client.pubMu.Unlock()
}

// connectOnce dials, declares the topology and installs a confirmed publish
// channel. On any error the partial resources are torn down again.
func (client *Client) connectOnce() error {
	conn, err := amqp.DialConfig(client.url, amqp.Config{
		Heartbeat: heartbeatInterval,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		client.logger.Error(client.logCtx, "rabbitmq_dial_failed", "Failed to dial RabbitMQ", err, nil)
		return fmt.Errorf("rabbitmq: dial: %w", err)
	}
	defer func() {
		if err != nil && conn != nil {
			_ = conn.Close()
		}
	}()

	ch, err := conn.Channel()
	if err != nil {
		client.logger.Error(client.logCtx, "rabbitmq_channel_failed", "Failed to open publish channel", err, nil)
		return fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	defer func() {
		if err != nil && ch != nil {
			_ = ch.Close()
		}
	}()

	if err = declareTopology(ch); err != nil {
		client.logger.Error(client.logCtx, "rabbitmq_topology_failed", "Failed to declare topology", err, nil)
		return fmt.Errorf("rabbitmq: declare topology: %w", err)
	}

	if err = ch.Confirm(false); err != nil {
		client.logger.Error(client.logCtx, "rabbitmq_confirms_failed", "Failed to enable publisher confirms", err, nil)
		return fmt.Errorf("rabbitmq: enable confirms: %w", err)
	}

	client.pubMu.Lock()
	oldConfirms := client.pubConfirms
	client.pubConfirms = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	client.pubMu.Unlock()
	if oldConfirms != nil {
		close(oldConfirms)
	}

	// notifications publish with mandatory=true; an unroutable one is only
	// worth a log line, never a failed business operation
	returns := ch.NotifyReturn(make(chan amqp.Return, 1))
	go func() {
		for r := range returns {
			client.logger.Error(client.logCtx, "rabbitmq_unroutable",
				"Notification was returned as unroutable",
				fmt.Errorf("code=%d text=%s", r.ReplyCode, r.ReplyText),
				map[string]any{
					"exchange":    r.Exchange,
					"routing_key": r.RoutingKey,
				},
			)
		}
	}()

	client.mu.Lock()
	if client.pubChan != nil && !client.pubChan.IsClosed() {
		_ = client.pubChan.Close()
	}
	client.conn = conn
	client.pubChan = ch
	client.mu.Unlock()

	// either side closing means the publish path is gone
	go func(conn *amqp.Connection, ch *amqp.Channel) {
		connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
		chClosed := ch.NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-client.closed:
			return
		case <-connClosed:
		case <-chClosed:
		}

		select {
		case client.reconnect <- struct{}{}:
		default: // a reconnect is already pending
		}
	}(conn, ch)

	return nil
}

// watch redials with doubling backoff until Close.
func (client *Client) watch() {
	backoff := time.Second
	for {
		select {
		case <-client.closed:
			return
		case <-client.reconnect:
			for {
				select {
				case <-client.closed:
					return
				default:
				}

				if err := client.connectOnce(); err == nil {
					backoff = time.Second
					client.logger.Info(client.logCtx, "rabbitmq_reconnected", "Reconnected to RabbitMQ", nil)
					break
				} else {
					client.logger.Error(client.logCtx, "rabbitmq_reconnect_failed", "Reconnect attempt failed", err, map[string]any{
						"retry_in": backoff.String(),
					})
				}

				time.Sleep(backoff)
				if backoff < maxReconnectWait {
					backoff *= 2
					if backoff > maxReconnectWait {
						backoff = maxReconnectWait
					}
				}
			}
		}
	}
}
