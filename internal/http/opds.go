package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dengxuezhao/kompanion/internal/bookshelf"
	"github.com/dengxuezhao/kompanion/internal/opds"
)

type OPDSController struct {
	shelf *bookshelf.Shelf
}

func NewOPDSController(shelf *bookshelf.Shelf) *OPDSController {
	return &OPDSController{shelf: shelf}
}

// Catalog renders one page of the library as an OPDS acquisition feed,
// sorted by title so shelves look the same on every device.
func (controller *OPDSController) Catalog(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	result, err := controller.shelf.List(c.Request.Context(), "title", "asc", page, 0)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "failed to list books"})
		return
	}

	feed := opds.BuildCatalog("/opds", result, time.Now())
	body, err := feed.XML()
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "failed to render catalog"})
		return
	}
	c.Data(http.StatusOK, opds.NavigationMime, body)
}

func (controller *OPDSController) Download(c *gin.Context) {
	serveBookFile(c, controller.shelf, c.Param("id"))
}

func (controller *OPDSController) Cover(c *gin.Context) {
	serveBookCover(c, controller.shelf, c.Param("id"))
}
