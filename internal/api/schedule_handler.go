package api

import (
	"net/http"
	"strings"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/alexanderramin/fundplan/internal/service"
	"github.com/gin-gonic/gin"
)

type activityHandler struct {
	activities service.ActivityService
}

func (h *activityHandler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:activity", h.show)
	rg.PATCH("/:activity", h.update)
	rg.PUT("/:activity/state", h.setState)
	rg.DELETE("/:activity", h.delete)
}

func (h *activityHandler) activity(c *gin.Context) (*domain.Activity, error) {
	id := c.Param("activity")
	a, err := h.activities.GetByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if a.ProjectID != currentProject(c).ID {
		return nil, notFound("activity", id)
	}
	return a, nil
}

func (h *activityHandler) list(c *gin.Context) {
	acts, err := h.activities.ListByProject(c.Request.Context(), currentProject(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "activities": newActivityViews(acts)})
}

// respond reloads the activity so the answer carries the resolved dates.
func (h *activityHandler) respond(c *gin.Context, status int, id string) {
	a, err := h.activities.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(status, gin.H{"ok": true, "activity": newActivityView(a)})
}

func (h *activityHandler) create(c *gin.Context) {
	var in activityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	a := &domain.Activity{ProjectID: currentProject(c).ID}
	in.apply(a)
	if err := h.activities.Create(c.Request.Context(), a); err != nil {
		fail(c, err)
		return
	}
	h.respond(c, http.StatusCreated, a.ID)
}

func (h *activityHandler) show(c *gin.Context) {
	a, err := h.activity(c)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "activity": newActivityView(a)})
}

func (h *activityHandler) update(c *gin.Context) {
	var in activityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	a, err := h.activity(c)
	if err != nil {
		fail(c, err)
		return
	}
	in.apply(a)
	if err := h.activities.Update(c.Request.Context(), a); err != nil {
		fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, a.ID)
}

func (h *activityHandler) setState(c *gin.Context) {
	var in stateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	a, err := h.activity(c)
	if err != nil {
		fail(c, err)
		return
	}
	state := domain.ActivityState(strings.TrimSpace(in.State))
	if err := h.activities.SetState(c.Request.Context(), a.ID, state); err != nil {
		fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, a.ID)
}

func (h *activityHandler) delete(c *gin.Context) {
	a, err := h.activity(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.activities.Delete(c.Request.Context(), a.ID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type acquisitionHandler struct {
	acquisitions service.AcquisitionService
}

func (h *acquisitionHandler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:acquisition", h.show)
	rg.PATCH("/:acquisition", h.update)
	rg.PUT("/:acquisition/state", h.setState)
	rg.DELETE("/:acquisition", h.delete)
}

func (h *acquisitionHandler) acquisition(c *gin.Context) (*domain.Acquisition, error) {
	id := c.Param("acquisition")
	a, err := h.acquisitions.GetByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if a.ProjectID != currentProject(c).ID {
		return nil, notFound("acquisition", id)
	}
	return a, nil
}

func (h *acquisitionHandler) respond(c *gin.Context, status int, id string) {
	a, err := h.acquisitions.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(status, gin.H{"ok": true, "acquisition": newAcquisitionView(a)})
}

func (h *acquisitionHandler) list(c *gin.Context) {
	acqs, err := h.acquisitions.ListByProject(c.Request.Context(), currentProject(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "acquisitions": newAcquisitionViews(acqs)})
}

func (h *acquisitionHandler) create(c *gin.Context) {
	var in acquisitionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	a := &domain.Acquisition{ProjectID: currentProject(c).ID}
	in.apply(a)
	if err := h.acquisitions.Create(c.Request.Context(), a); err != nil {
		fail(c, err)
		return
	}
	h.respond(c, http.StatusCreated, a.ID)
}

func (h *acquisitionHandler) show(c *gin.Context) {
	a, err := h.acquisition(c)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "acquisition": newAcquisitionView(a)})
}

func (h *acquisitionHandler) update(c *gin.Context) {
	var in acquisitionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	a, err := h.acquisition(c)
	if err != nil {
		fail(c, err)
		return
	}
	in.apply(a)
	if err := h.acquisitions.Update(c.Request.Context(), a); err != nil {
		fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, a.ID)
}

func (h *acquisitionHandler) setState(c *gin.Context) {
	var in stateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	a, err := h.acquisition(c)
	if err != nil {
		fail(c, err)
		return
	}
	state := domain.AcquisitionState(strings.TrimSpace(in.State))
	if err := h.acquisitions.SetState(c.Request.Context(), a.ID, state); err != nil {
		fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, a.ID)
}

func (h *acquisitionHandler) delete(c *gin.Context) {
	a, err := h.acquisition(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.acquisitions.Delete(c.Request.Context(), a.ID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
