package api

import (
	"net/http"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/alexanderramin/fundplan/internal/service"
	"github.com/gin-gonic/gin"
)

type templateHandler struct {
	templates service.TemplateService
}

func (h *templateHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/seed", h.seed)

	rg.GET("/activities", h.listActivities)
	rg.POST("/activities", h.createActivity)
	rg.PATCH("/activities/:template", h.updateActivity)
	rg.DELETE("/activities/:template", h.deleteActivity)

	rg.GET("/acquisitions", h.listAcquisitions)
	rg.POST("/acquisitions", h.createAcquisition)
	rg.PATCH("/acquisitions/:template", h.updateAcquisition)
	rg.DELETE("/acquisitions/:template", h.deleteAcquisition)
}

type seedView struct {
	Created int    `json:"created"`
	Notice  string `json:"notice,omitempty"`
}

// seed installs the default templates of both kinds. Each kind is skipped
// when templates of that kind already exist.
func (h *templateHandler) seed(c *gin.Context) {
	ctx := c.Request.Context()
	acts, err := h.templates.SeedActivityTemplates(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	acqs, err := h.templates.SeedAcquisitionTemplates(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"activities":   seedView{Created: acts.Created, Notice: acts.Notice.String()},
		"acquisitions": seedView{Created: acqs.Created, Notice: acqs.Notice.String()},
	})
}

func (h *templateHandler) listActivities(c *gin.Context) {
	items, err := h.templates.ListActivityTemplates(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]activityTemplateView, 0, len(items))
	for _, t := range items {
		out = append(out, newActivityTemplateView(t))
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "templates": out})
}

func (h *templateHandler) activityTemplate(c *gin.Context) (*domain.ActivityTemplate, error) {
	id := c.Param("template")
	items, err := h.templates.ListActivityTemplates(c.Request.Context())
	if err != nil {
		return nil, err
	}
	for _, t := range items {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, notFound("activity template", id)
}

func (h *templateHandler) createActivity(c *gin.Context) {
	var in activityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	t := &domain.ActivityTemplate{}
	in.applyTemplate(t)
	if err := h.templates.CreateActivityTemplate(c.Request.Context(), t); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "template": newActivityTemplateView(t)})
}

func (h *templateHandler) updateActivity(c *gin.Context) {
	var in activityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.activityTemplate(c)
	if err != nil {
		fail(c, err)
		return
	}
	in.applyTemplate(t)
	if err := h.templates.UpdateActivityTemplate(c.Request.Context(), t); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "template": newActivityTemplateView(t)})
}

func (h *templateHandler) deleteActivity(c *gin.Context) {
	t, err := h.activityTemplate(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.templates.DeleteActivityTemplate(c.Request.Context(), t.ID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *templateHandler) listAcquisitions(c *gin.Context) {
	items, err := h.templates.ListAcquisitionTemplates(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]acquisitionTemplateView, 0, len(items))
	for _, t := range items {
		out = append(out, newAcquisitionTemplateView(t))
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "templates": out})
}

func (h *templateHandler) acquisitionTemplate(c *gin.Context) (*domain.AcquisitionTemplate, error) {
	id := c.Param("template")
	items, err := h.templates.ListAcquisitionTemplates(c.Request.Context())
	if err != nil {
		return nil, err
	}
	for _, t := range items {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, notFound("acquisition template", id)
}

func (h *templateHandler) createAcquisition(c *gin.Context) {
	var in acquisitionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	t := &domain.AcquisitionTemplate{}
	in.applyTemplate(t)
	if err := h.templates.CreateAcquisitionTemplate(c.Request.Context(), t); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "template": newAcquisitionTemplateView(t)})
}

func (h *templateHandler) updateAcquisition(c *gin.Context) {
	var in acquisitionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.acquisitionTemplate(c)
	if err != nil {
		fail(c, err)
		return
	}
	in.applyTemplate(t)
	if err := h.templates.UpdateAcquisitionTemplate(c.Request.Context(), t); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "template": newAcquisitionTemplateView(t)})
}

func (h *templateHandler) deleteAcquisition(c *gin.Context) {
	t, err := h.acquisitionTemplate(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.templates.DeleteAcquisitionTemplate(c.Request.Context(), t.ID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
