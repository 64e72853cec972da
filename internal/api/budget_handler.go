package api

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/alexanderramin/fundplan/internal/importer"
	"github.com/alexanderramin/fundplan/internal/service"
	"github.com/gin-gonic/gin"
)

var contentTypes = map[importer.Format]string{
	importer.FormatCSV:  "text/csv; charset=utf-8",
	importer.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

type budgetHandler struct {
	budget service.BudgetService
}

func (h *budgetHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/budget-lines", h.list)
	rg.POST("/budget-lines", h.create)
	rg.GET("/budget-lines/:line", h.show)
	rg.PATCH("/budget-lines/:line", h.update)
	rg.DELETE("/budget-lines/:line", h.delete)
	rg.POST("/budget-import", h.importSheet)
	rg.GET("/budget-export", h.export)
}

func (h *budgetHandler) line(c *gin.Context) (*domain.BudgetLine, error) {
	id := c.Param("line")
	l, err := h.budget.GetByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if l.ProjectID != currentProject(c).ID {
		return nil, notFound("budget line", id)
	}
	return l, nil
}

func (h *budgetHandler) list(c *gin.Context) {
	lines, err := h.budget.ListByProject(c.Request.Context(), currentProject(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "lines": newLineViews(lines)})
}

func (h *budgetHandler) create(c *gin.Context) {
	var in lineInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	l := &domain.BudgetLine{ProjectID: currentProject(c).ID}
	in.apply(l)
	if err := h.budget.Create(c.Request.Context(), l); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "line": newLineView(l)})
}

func (h *budgetHandler) show(c *gin.Context) {
	l, err := h.line(c)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "line": newLineView(l)})
}

func (h *budgetHandler) update(c *gin.Context) {
	var in lineInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	l, err := h.line(c)
	if err != nil {
		fail(c, err)
		return
	}
	in.apply(l)
	if err := h.budget.Update(c.Request.Context(), l); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "line": newLineView(l)})
}

func (h *budgetHandler) delete(c *gin.Context) {
	l, err := h.line(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.budget.Delete(c.Request.Context(), l.ID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// importSheet reads a multipart "file" field. The format comes from the
// "format" field or the file extension; "overwrite=true" replaces
// existing lines.
func (h *budgetHandler) importSheet(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return
	}
	var format importer.Format
	if f := strings.TrimSpace(c.PostForm("format")); f != "" {
		format, err = importer.ParseFormat(f)
	} else {
		format, err = importer.FormatFromPath(fh.Filename)
	}
	if err != nil {
		badRequest(c, err)
		return
	}
	overwrite := false
	if v := c.PostForm("overwrite"); v != "" {
		if overwrite, err = strconv.ParseBool(v); err != nil {
			badRequest(c, err)
			return
		}
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()
	lines, err := importer.Read(f, format)
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.budget.ImportLines(c.Request.Context(), currentProject(c).ID, lines, overwrite)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"created":  res.Created,
		"replaced": res.Replaced,
		"totals":   newTotalsView(res.Totals),
	})
}

// export answers with the sheet as an attachment. ?format= picks csv or
// xlsx, defaulting to xlsx.
func (h *budgetHandler) export(c *gin.Context) {
	format, err := importer.ParseFormat(c.DefaultQuery("format", string(importer.FormatXLSX)))
	if err != nil {
		badRequest(c, err)
		return
	}
	p := currentProject(c)
	var buf bytes.Buffer
	n, err := h.budget.Export(c.Request.Context(), p.ID, &buf, format)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+importer.DefaultExportName(p.Code, format)+`"`)
	c.Header("X-Line-Count", strconv.Itoa(n))
	c.Data(http.StatusOK, contentTypes[format], buf.Bytes())
}
