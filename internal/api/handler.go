package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smsgate/internal/dispatch"
	"smsgate/internal/journal"
	"smsgate/internal/logger"
	"smsgate/internal/reassembly"
	"smsgate/pkg/errors"
	"smsgate/pkg/health"
	"smsgate/pkg/sms"
)

type BaseHandler struct {
	Logger logger.Logger
}

func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	status := errors.ToHTTPStatus(err)
	response := errors.ToErrorResponse(err)

	c.JSON(status, response)
}

type Handler struct {
	BaseHandler
	dispatcher  *dispatch.Dispatcher
	journal     journal.Repository
	reassembler *reassembly.Reassembler
	registry    *reassembly.HandlerRegistry
	checkers    *health.CheckerRegistry
}

func NewHandler(
	dispatcher *dispatch.Dispatcher,
	repo journal.Repository,
	reassembler *reassembly.Reassembler,
	registry *reassembly.HandlerRegistry,
	checkers *health.CheckerRegistry,
	log logger.Logger,
) *Handler {
	return &Handler{
		BaseHandler: BaseHandler{Logger: log},
		dispatcher:  dispatcher,
		journal:     repo,
		reassembler: reassembler,
		registry:    registry,
		checkers:    checkers,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine, sendMiddleware ...gin.HandlerFunc) {
	v1 := router.Group("/v1")
	{
		messages := v1.Group("/messages")
		{
			messages.POST("", append(sendMiddleware, h.SendMessage)...)
			messages.GET("/:id", h.GetMessage)
		}

		inbound := v1.Group("/inbound")
		{
			inbound.POST("/parts", h.OfferInboundPart)
		}
	}

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// SendMessage accepts a message, hands it to the transport and returns
// immediately. Aggregate outcomes arrive later through the journal and the
// event stream; the response only confirms submission.
func (h *Handler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	msg := sms.NewMessage(sms.NewPeer(req.Destination), req.Text)

	var onSent, onDelivered dispatch.Listener
	var tracked []string
	if req.TrackSent {
		onSent = h.outcomeLogger("sent")
		tracked = append(tracked, "sent")
	}
	if req.TrackDelivered {
		onDelivered = h.outcomeLogger("delivered")
		tracked = append(tracked, "delivered")
	}

	parts, err := h.dispatcher.Send(c.Request.Context(), msg, onSent, onDelivered)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, SendMessageResponse{
		MessageID: msg.ID,
		Parts:     parts,
		Tracked:   tracked,
	})
}

func (h *Handler) outcomeLogger(channel string) dispatch.Listener {
	return func(msg sms.Message, outcome dispatch.Outcome) {
		h.Logger.Infow("Message outcome",
			"message_id", msg.ID,
			"channel", channel,
			"outcome", outcome.String(),
		)
	}
}

// GetMessage looks the message up in the delivery journal.
func (h *Handler) GetMessage(c *gin.Context) {
	if h.journal == nil {
		h.HandleError(c, errors.ErrServiceUnavailable.WithDetail("message", "delivery journal is not configured"))
		return
	}

	entry, err := h.journal.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := MessageStatusResponse{
		MessageID:   entry.MessageID,
		Destination: entry.Destination,
		Parts:       entry.Parts,
		Status:      entry.Status,
		SubmittedAt: entry.SubmittedAt,
	}
	if entry.SentOutcome.Valid {
		resp.SentOutcome = &entry.SentOutcome.String
	}
	if entry.DeliveredOutcome.Valid {
		resp.DeliveredOutcome = &entry.DeliveredOutcome.String
	}
	if entry.FinalizedAt.Valid {
		resp.FinalizedAt = &entry.FinalizedAt.Time
	}

	c.JSON(http.StatusOK, resp)
}

// OfferInboundPart feeds one inbound part to the reassembler. The part that
// completes a message triggers the registered inbound handlers before the
// response is written.
func (h *Handler) OfferInboundPart(c *gin.Context) {
	if h.reassembler == nil {
		h.HandleError(c, errors.ErrServiceUnavailable.WithDetail("message", "inbound reassembly is not configured"))
		return
	}

	var req InboundPartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	part := reassembly.Part{
		Origin: req.Origin,
		Ref:    req.Ref,
		Index:  req.Index,
		Total:  req.Total,
		Text:   req.Text,
	}

	msg, complete, err := h.reassembler.Offer(c.Request.Context(), part)
	if err != nil {
		h.HandleError(c, errors.ErrValidation.WithCause(err))
		return
	}

	if !complete {
		c.JSON(http.StatusAccepted, InboundPartResponse{Complete: false})
		return
	}

	if h.registry != nil {
		h.registry.Dispatch(c.Request.Context(), msg)
	}

	c.JSON(http.StatusOK, InboundPartResponse{Complete: true, MessageID: msg.ID})
}

func (h *Handler) Health(c *gin.Context) {
	result := h.checkers.Check(c.Request.Context())

	status := http.StatusOK
	if result.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, result)
}
