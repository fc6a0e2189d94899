package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"sparkathon/middleware"
	"sparkathon/models"
	"sparkathon/services/scheduling"
	"sparkathon/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SchedulingHandler exposes scheduling sessions to signed-in users.
type SchedulingHandler struct {
	Manager   *scheduling.Manager
	Heartbeat time.Duration
}

func NewSchedulingHandler(m *scheduling.Manager) *SchedulingHandler {
	return &SchedulingHandler{Manager: m, Heartbeat: 25 * time.Second}
}

// snapshotResponse is a session snapshot decorated for display.
type snapshotResponse struct {
	State        models.SchedulingState `json:"state"`
	SlotViews    []models.SlotView      `json:"slotViews"`
	CanSubmit    bool                   `json:"canSubmit"`
	Notification *models.Notification   `json:"notification,omitempty"`
}

func newSnapshot(s models.SchedulingState, n *models.Notification) snapshotResponse {
	return snapshotResponse{
		State:        s,
		SlotViews:    s.SlotViews(),
		CanSubmit:    s.CanSubmit(),
		Notification: n,
	}
}

type detailsRequest struct {
	CustomerName string `json:"customerName"`
	Address      string `json:"address"`
}

type selectSlotRequest struct {
	SlotID string `json:"slotId" binding:"required"`
}

func ownerID(c *gin.Context) string {
	if user, ok := middleware.CurrentUser(c); ok {
		return user.UID
	}
	return ""
}

// session resolves the :id session of the caller, writing a 404 when absent.
func (h *SchedulingHandler) session(c *gin.Context) (*scheduling.Session, bool) {
	sess, err := h.Manager.Get(ownerID(c), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "Scheduling session not found", "")
		return nil, false
	}
	return sess, true
}

// CreateSessionHandler mounts a scheduling view and starts loading
// recommendations. The delivery details body is optional.
func (h *SchedulingHandler) CreateSessionHandler(c *gin.Context) {
	var req detailsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	sess, err := h.Manager.Create(ownerID(c), req.CustomerName, req.Address)
	if err != nil {
		getLogger(c).Error("failed to create scheduling session", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to create scheduling session", err.Error())
		return
	}
	c.JSON(http.StatusCreated, newSnapshot(sess.Snapshot(), nil))
}

func (h *SchedulingHandler) GetSessionHandler(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSnapshot(sess.Snapshot(), nil))
}

func (h *SchedulingHandler) UpdateDetailsHandler(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req detailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	state, err := sess.UpdateDetails(req.CustomerName, req.Address)
	if err != nil {
		h.writeError(c, state, err)
		return
	}
	c.JSON(http.StatusOK, newSnapshot(state, nil))
}

func (h *SchedulingHandler) SelectSlotHandler(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req selectSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	state, err := sess.SelectSlot(req.SlotID)
	if err != nil {
		h.writeError(c, state, err)
		return
	}
	c.JSON(http.StatusOK, newSnapshot(state, nil))
}

// SubmitHandler schedules the selected slot. The outcome arrives on the
// session's event stream.
func (h *SchedulingHandler) SubmitHandler(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	state, err := sess.Submit()
	if err != nil {
		h.writeError(c, state, err)
		return
	}
	c.JSON(http.StatusAccepted, newSnapshot(state, nil))
}

// RetryHandler reloads recommendations after a failed load.
func (h *SchedulingHandler) RetryHandler(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Retry(); err != nil {
		h.writeError(c, sess.Snapshot(), err)
		return
	}
	c.JSON(http.StatusAccepted, newSnapshot(sess.Snapshot(), nil))
}

// CloseSessionHandler unmounts the view, cancelling any pending work.
func (h *SchedulingHandler) CloseSessionHandler(c *gin.Context) {
	if err := h.Manager.Close(ownerID(c), c.Param("id")); err != nil {
		utils.JSONError(c, http.StatusNotFound, "Scheduling session not found", "")
		return
	}
	c.Status(http.StatusNoContent)
}

// SessionEventsHandler streams snapshots and notifications as server-sent events.
func (h *SchedulingHandler) SessionEventsHandler(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	events, unsubscribe := sess.Subscribe(16)
	defer unsubscribe()

	heartbeat := h.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	streamHeaders(c)
	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			writeEvent(c, "ping", gin.H{"at": time.Now()})
		case ev, ok := <-events:
			if !ok {
				writeEvent(c, "closed", gin.H{"sessionId": sess.ID()})
				return
			}
			writeEvent(c, "state", newSnapshot(ev.State, ev.Notification))
		}
	}
}

// InsightsHandler returns the Smart Insights cards.
func (h *SchedulingHandler) InsightsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"insights": models.Insights()})
}

// writeError maps session errors to HTTP statuses. Validation failures carry
// the notification shown to the user.
func (h *SchedulingHandler) writeError(c *gin.Context, state models.SchedulingState, err error) {
	var (
		status int
		msg    string
	)
	switch {
	case errors.Is(err, scheduling.ErrNoSlotSelected):
		status, msg = http.StatusUnprocessableEntity, models.MsgSelectWindow
	case errors.Is(err, scheduling.ErrUnknownSlot):
		status, msg = http.StatusUnprocessableEntity, "Unknown delivery window"
	case errors.Is(err, scheduling.ErrAlreadyScheduled):
		status, msg = http.StatusConflict, models.MsgAlreadyScheduled
	case errors.Is(err, scheduling.ErrSlotsNotLoaded),
		errors.Is(err, scheduling.ErrSubmissionInFlight),
		errors.Is(err, scheduling.ErrInvalidTransition):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, scheduling.ErrSessionClosed), errors.Is(err, scheduling.ErrSessionNotFound):
		utils.JSONError(c, http.StatusNotFound, "Scheduling session not found", "")
		return
	default:
		getLogger(c).Error("scheduling operation failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Scheduling failed", err.Error())
		return
	}

	getLogger(c).Debug("scheduling request rejected", zap.Int("status", status), zap.Error(err))
	resp := newSnapshot(state, &models.Notification{
		Kind:    models.NotificationError,
		Message: msg,
		At:      time.Now(),
	})
	c.AbortWithStatusJSON(status, resp)
}
