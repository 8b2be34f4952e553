package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roackb2/snowdream/internal/pkg/agents/memory"
	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
	"github.com/roackb2/snowdream/internal/pkg/control_plane"
)

// StateView is what the dashboard reads.
type StateView interface {
	Checkpoint(ctx context.Context) (schema.Checkpoint, error)
	Roles() ([]memory.Entry, error)
	Trackings() []control_plane.RoleTracking
	Memory(name string) ([]schema.Message, error)
}

type StateResponse struct {
	Checkpoint schema.Checkpoint            `json:"checkpoint"`
	Roles      []memory.Entry               `json:"roles"`
	Trackings  []control_plane.RoleTracking `json:"trackings"`
}

type StateController struct {
	view StateView
}

func NewStateController(view StateView) *StateController {
	return &StateController{view: view}
}

func (sc *StateController) GetState(c *gin.Context) {
	cp, err := sc.view.Checkpoint(c.Request.Context())
	if err != nil {
		slog.Error("StateController: failed to load checkpoint", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	entries, err := sc.view.Roles()
	if err != nil {
		slog.Error("StateController: failed to list roles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, StateResponse{Checkpoint: cp, Roles: entries, Trackings: sc.view.Trackings()})
}

func (sc *StateController) GetRoleMemory(c *gin.Context) {
	name := c.Param("name")
	msgs, err := sc.view.Memory(name)
	if errors.Is(err, control_plane.ErrUnknownRole) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		slog.Error("StateController: failed to read memory", "role", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if msgs == nil {
		msgs = []schema.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"role": name, "messages": msgs})
}
