package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulseworks/pulsebot/src/data"
	"github.com/pulseworks/pulsebot/src/scheduler"
)

// Missions exposes mission CRUD and lifecycle control. Thin I/O only: all
// engagement logic lives in the engine.
type Missions struct {
	Store     *data.Store
	Scheduler *scheduler.Scheduler
}

func (h *Missions) List(c *gin.Context) {
	missions, err := h.Store.ListMissions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, missions)
}

func (h *Missions) Get(c *gin.Context) {
	mission, err := h.Store.GetMission(c.Request.Context(), c.Param("id"))
	if err != nil {
		if data.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "mission not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, mission)
}

func (h *Missions) Create(c *gin.Context) {
	var mission data.Mission
	if err := c.ShouldBindJSON(&mission); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mission.Active = false
	if err := h.Store.CreateMission(c.Request.Context(), &mission); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, mission)
}

func (h *Missions) Update(c *gin.Context) {
	mission, err := h.Store.GetMission(c.Request.Context(), c.Param("id"))
	if err != nil {
		if data.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "mission not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := c.ShouldBindJSON(mission); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Store.UpdateMission(c.Request.Context(), mission); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, mission)
}

func (h *Missions) Delete(c *gin.Context) {
	id := c.Param("id")
	// Tear down any live trigger before removing the row.
	if err := h.Scheduler.StopMission(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.Store.DeleteMission(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Missions) Start(c *gin.Context) {
	err := h.Scheduler.StartMission(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "scheduled"})
	case errors.Is(err, scheduler.ErrAlreadyScheduled):
		c.JSON(http.StatusConflict, gin.H{"error": "mission already scheduled"})
	case data.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "mission not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Missions) Stop(c *gin.Context) {
	if err := h.Scheduler.StopMission(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

func (h *Missions) Runs(c *gin.Context) {
	runs, err := h.Store.RecentRuns(c.Request.Context(), c.Param("id"), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (h *Missions) Actions(c *gin.Context) {
	actions, err := h.Store.RecentActions(c.Request.Context(), c.Param("id"), 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, actions)
}
