package api

import (
	"net/http"
	"strings"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/alexanderramin/fundplan/internal/service"
	"github.com/gin-gonic/gin"
)

type reimbursementHandler struct {
	reimbursements service.ReimbursementService
}

func (h *reimbursementHandler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.POST("/:reimbursement/advance", h.advance)
	rg.DELETE("/:reimbursement", h.delete)
}

func (h *reimbursementHandler) reimbursement(c *gin.Context) (*domain.Reimbursement, error) {
	id := c.Param("reimbursement")
	items, err := h.reimbursements.ListByProject(c.Request.Context(), currentProject(c).ID)
	if err != nil {
		return nil, err
	}
	for _, r := range items {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, notFound("reimbursement", id)
}

func (h *reimbursementHandler) list(c *gin.Context) {
	items, err := h.reimbursements.ListByProject(c.Request.Context(), currentProject(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]reimbursementView, 0, len(items))
	for _, r := range items {
		out = append(out, newReimbursementView(r))
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "reimbursements": out})
}

func (h *reimbursementHandler) create(c *gin.Context) {
	var in reimbursementInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	d, err := domain.ParseDate(strings.TrimSpace(in.Date))
	if err != nil {
		fail(c, domain.NewValidationError("invalid date %q (expected YYYY-MM-DD)", in.Date))
		return
	}
	r := &domain.Reimbursement{ProjectID: currentProject(c).ID, Date: d, Amount: in.Amount}
	if err := h.reimbursements.Create(c.Request.Context(), r); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "reimbursement": newReimbursementView(r)})
}

func (h *reimbursementHandler) advance(c *gin.Context) {
	r, err := h.reimbursement(c)
	if err != nil {
		fail(c, err)
		return
	}
	updated, err := h.reimbursements.Advance(c.Request.Context(), r.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "reimbursement": newReimbursementView(updated)})
}

func (h *reimbursementHandler) delete(c *gin.Context) {
	r, err := h.reimbursement(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.reimbursements.Delete(c.Request.Context(), r.ID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type purchaseHandler struct {
	purchases service.PurchaseService
}

func (h *purchaseHandler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.PATCH("/:purchase", h.update)
	rg.DELETE("/:purchase", h.delete)
}

func (h *purchaseHandler) purchase(c *gin.Context) (*domain.Purchase, error) {
	id := c.Param("purchase")
	items, err := h.purchases.ListByProject(c.Request.Context(), currentProject(c).ID)
	if err != nil {
		return nil, err
	}
	for _, p := range items {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, notFound("purchase", id)
}

func (h *purchaseHandler) list(c *gin.Context) {
	items, err := h.purchases.ListByProject(c.Request.Context(), currentProject(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]purchaseView, 0, len(items))
	for _, p := range items {
		out = append(out, newPurchaseView(p))
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "purchases": out})
}

func (h *purchaseHandler) create(c *gin.Context) {
	var in purchaseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	p := &domain.Purchase{ProjectID: currentProject(c).ID}
	if err := in.apply(p); err != nil {
		fail(c, err)
		return
	}
	if err := h.purchases.Create(c.Request.Context(), p); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "purchase": newPurchaseView(p)})
}

func (h *purchaseHandler) update(c *gin.Context) {
	var in purchaseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.purchase(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := in.apply(p); err != nil {
		fail(c, err)
		return
	}
	if err := h.purchases.Update(c.Request.Context(), p); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "purchase": newPurchaseView(p)})
}

func (h *purchaseHandler) delete(c *gin.Context) {
	p, err := h.purchase(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.purchases.Delete(c.Request.Context(), p.ID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
