package reassembly

import (
	"context"
	"fmt"
	"sync"

	"smsgate/internal/logger"
	"smsgate/pkg/sms"
)

// InboundHandler consumes fully reassembled inbound messages.
type InboundHandler interface {
	HandleMessage(ctx context.Context, msg sms.Message) error
}

// HandlerRegistry maps stable keys to statically known handlers, resolved
// at startup. Every registered handler sees every inbound message; a
// handler error does not stop the others.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]InboundHandler
	logger   logger.Logger
}

func NewHandlerRegistry(log logger.Logger) *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[string]InboundHandler),
		logger:   log,
	}
}

func (r *HandlerRegistry) Register(key string, h InboundHandler) error {
	if key == "" {
		return fmt.Errorf("handler key cannot be empty")
	}
	if h == nil {
		return fmt.Errorf("handler for %q is nil", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[key]; exists {
		return fmt.Errorf("handler %q already registered", key)
	}
	r.handlers[key] = h
	return nil
}

func (r *HandlerRegistry) Unregister(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, key)
}

// Dispatch fans the message out to all registered handlers.
func (r *HandlerRegistry) Dispatch(ctx context.Context, msg sms.Message) {
	r.mu.RLock()
	handlers := make(map[string]InboundHandler, len(r.handlers))
	for k, h := range r.handlers {
		handlers[k] = h
	}
	r.mu.RUnlock()

	for key, h := range handlers {
		if err := h.HandleMessage(ctx, msg); err != nil {
			r.logger.ErrorwCtx(ctx, "Inbound handler failed",
				"handler", key,
				"message_id", msg.ID,
				"error", err,
			)
		}
	}
}
