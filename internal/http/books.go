package http

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dengxuezhao/kompanion/internal/bookshelf"
	"github.com/dengxuezhao/kompanion/internal/database/books"
)

type BooksController struct {
	shelf  *bookshelf.Shelf
	logger *zap.Logger
}

func NewBooksController(shelf *bookshelf.Shelf, logger *zap.Logger) *BooksController {
	return &BooksController{
		shelf:  shelf,
		logger: logger,
	}
}

// Upload ingests one multipart file under the "file" field. Re-uploading a
// known file is a 409, a filename without a usable extension a 400.
func (controller *BooksController) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}

	tmp, err := os.CreateTemp("", "kompanion-upload-*")
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "failed to stage upload"})
		return
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveUploadedFile(fileHeader, tmpPath); err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "failed to stage upload"})
		return
	}

	book, err := controller.shelf.Store(c.Request.Context(), tmpPath, fileHeader.Filename)
	if err != nil {
		switch {
		case errors.Is(err, books.ErrDuplicate):
			c.IndentedJSON(http.StatusConflict, gin.H{"error": "book already in library"})
		case errors.Is(err, bookshelf.ErrUnknownFormat):
			c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "unrecognized book format"})
		default:
			controller.logger.Error("book upload failed",
				zap.String("filename", fileHeader.Filename),
				zap.Error(err))
			c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "failed to store book"})
		}
		return
	}

	c.IndentedJSON(http.StatusCreated, book)
}

func (controller *BooksController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))
	sortBy := c.DefaultQuery("sort_by", "created_at")
	sortOrder := c.DefaultQuery("sort_order", "desc")

	result, err := controller.shelf.List(c.Request.Context(), sortBy, sortOrder, page, pageSize)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, result)
}

func (controller *BooksController) Get(c *gin.Context) {
	book, err := controller.shelf.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, books.ErrNotFound) {
			c.IndentedJSON(http.StatusNotFound, gin.H{"error": "book not found"})
			return
		}
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, book)
}

func (controller *BooksController) Update(c *gin.Context) {
	var upd bookshelf.MetadataUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	book, err := controller.shelf.UpdateMetadata(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		if errors.Is(err, books.ErrNotFound) {
			c.IndentedJSON(http.StatusNotFound, gin.H{"error": "book not found"})
			return
		}
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, book)
}

func (controller *BooksController) Delete(c *gin.Context) {
	err := controller.shelf.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, books.ErrNotFound) {
			c.IndentedJSON(http.StatusNotFound, gin.H{"error": "book not found"})
			return
		}
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (controller *BooksController) Download(c *gin.Context) {
	serveBookFile(c, controller.shelf, c.Param("id"))
}

func (controller *BooksController) Cover(c *gin.Context) {
	serveBookCover(c, controller.shelf, c.Param("id"))
}

// serveBookFile and serveBookCover are shared with the OPDS controller,
// which exposes the same content under its own routes.
func serveBookFile(c *gin.Context, shelf *bookshelf.Shelf, id string) {
	book, path, err := shelf.Download(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, books.ErrNotFound) {
			c.IndentedJSON(http.StatusNotFound, gin.H{"error": "book not found"})
			return
		}
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "failed to read book file"})
		return
	}

	mime := book.MimeType()
	if mime == "" {
		mime = "application/octet-stream"
	}
	c.Header("Content-Type", mime)
	c.FileAttachment(path, book.Filename())
}

func serveBookCover(c *gin.Context, shelf *bookshelf.Shelf, id string) {
	path, err := shelf.Cover(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, books.ErrNotFound):
			c.IndentedJSON(http.StatusNotFound, gin.H{"error": "book not found"})
		case errors.Is(err, bookshelf.ErrNoCover):
			c.IndentedJSON(http.StatusNotFound, gin.H{"error": "book has no cover"})
		default:
			c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "failed to read cover"})
		}
		return
	}
	c.Header("Content-Type", "image/jpeg")
	c.File(path)
}
