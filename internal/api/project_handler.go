package api

import (
	"net/http"
	"strings"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/alexanderramin/fundplan/internal/service"
	"github.com/gin-gonic/gin"
)

const projectKey = "project"

// loadProject resolves :id, by ID or code, and stores the project on the
// context for the nested handlers.
func loadProject(projects service.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := projects.Find(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			c.Abort()
			return
		}
		c.Set(projectKey, p)
		c.Next()
	}
}

func currentProject(c *gin.Context) *domain.Project {
	return c.MustGet(projectKey).(*domain.Project)
}

type projectHandler struct {
	projects service.ProjectService
}

func (h *projectHandler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
}

// RegisterOne attaches the routes of a single project. rg must carry
// loadProject.
func (h *projectHandler) RegisterOne(rg *gin.RouterGroup) {
	rg.GET("", h.show)
	rg.PATCH("", h.update)
	rg.DELETE("", h.delete)
	rg.GET("/totals", h.totals)
	rg.POST("/aport", h.aport)
	rg.POST("/activities/generate", h.generateActivities)
	rg.POST("/acquisitions/generate", h.generateAcquisitions)
}

func (h *projectHandler) list(c *gin.Context) {
	var (
		items []*domain.Project
		err   error
	)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		items, err = h.projects.Search(c.Request.Context(), q)
	} else {
		items, err = h.projects.List(c.Request.Context())
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": newProjectViews(items)})
}

func (h *projectHandler) create(c *gin.Context) {
	var in projectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	p := &domain.Project{}
	if err := in.apply(p); err != nil {
		fail(c, err)
		return
	}
	res, err := h.projects.Create(c.Request.Context(), p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": newProjectView(p), "activities": newGenerateView(res)})
}

func (h *projectHandler) show(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": newProjectView(currentProject(c))})
}

func (h *projectHandler) update(c *gin.Context) {
	var in projectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	p := currentProject(c)
	if err := in.apply(p); err != nil {
		fail(c, err)
		return
	}
	if err := h.projects.Update(c.Request.Context(), p); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": newProjectView(p)})
}

func (h *projectHandler) delete(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), currentProject(c).ID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *projectHandler) totals(c *gin.Context) {
	t, err := h.projects.Totals(c.Request.Context(), currentProject(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "totals": newTotalsView(t)})
}

// aport distributes the co-financing amount. The body is optional; an
// amount in it overrides the stored one.
func (h *projectHandler) aport(c *gin.Context) {
	var in aportInput
	if err := bindOptionalJSON(c, &in); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.projects.DistributeCofinancing(c.Request.Context(), currentProject(c).ID, in.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "distribution": newDistributionView(d)})
}

func (h *projectHandler) generateActivities(c *gin.Context) {
	res, err := h.projects.GenerateActivities(c.Request.Context(), currentProject(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "result": newGenerateView(res)})
}

// generateAcquisitions replaces the project's acquisitions with a fresh
// expansion of the acquisition templates.
func (h *projectHandler) generateAcquisitions(c *gin.Context) {
	res, err := h.projects.GenerateAcquisitions(c.Request.Context(), currentProject(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "result": newGenerateView(res)})
}
