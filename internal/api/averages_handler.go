package api

import (
	"net/http"

	"hypoavg/internal"
	"hypoavg/internal/aggregate"
	"hypoavg/internal/observation"

	"github.com/gin-gonic/gin"
)

// AveragesHandler serves the published average.json documents
type AveragesHandler struct {
	root   string
	logger *internal.Logger
}

// NewAveragesHandler creates a handler reading from the data root
func NewAveragesHandler(root string, logger *internal.Logger) *AveragesHandler {
	return &AveragesHandler{root: root, logger: logger}
}

// HandleList lists hypotheses with a published rollup and their published variants
func (h *AveragesHandler) HandleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		published, err := aggregate.CollectPublished(h.root)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}

		type entry struct {
			Hypothesis string   `json:"hypothesis"`
			Href       string   `json:"href"`
			Count      int      `json:"count"`
			Variants   []string `json:"variants"`
		}
		out := make([]entry, 0, len(published))
		for _, p := range published {
			e := entry{Hypothesis: p.Name, Href: "/api/averages/" + p.Name, Count: p.Rollup.Count, Variants: []string{}}
			for _, v := range p.Variants {
				e.Variants = append(e.Variants, v.Name)
			}
			out = append(out, e)
		}
		c.JSON(http.StatusOK, gin.H{"hypotheses": out})
	}
}

// HandleHypothesis returns the rollup of one hypothesis
func (h *AveragesHandler) HandleHypothesis() gin.HandlerFunc {
	return func(c *gin.Context) {
		hypothesis := c.Param("hypothesis")
		if err := observation.ValidateSegment("hypothesis", hypothesis); err != nil {
			respondError(c, h.logger, err)
			return
		}
		h.serve(c, aggregate.HypothesisAveragePath(h.root, hypothesis))
	}
}

// HandleVariant returns the average of one variant
func (h *AveragesHandler) HandleVariant() gin.HandlerFunc {
	return func(c *gin.Context) {
		hypothesis, variant := c.Param("hypothesis"), c.Param("variant")
		if err := observation.ValidateSegment("hypothesis", hypothesis); err != nil {
			respondError(c, h.logger, err)
			return
		}
		if err := observation.ValidateSegment("variant", variant); err != nil {
			respondError(c, h.logger, err)
			return
		}
		h.serve(c, aggregate.VariantAveragePath(h.root, hypothesis, variant))
	}
}

func (h *AveragesHandler) serve(c *gin.Context, path string) {
	doc, err := aggregate.ReadDocument(path)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
