package handler

import (
	"net/http"

	"chatlab/internal/services"
	"chatlab/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// UploadHandler accepts multipart file uploads and stores them in S3. The
// returned URL goes into a later send-message frame as fileUrl.
type UploadHandler struct {
	service *services.UploadService
}

func NewUploadHandler(service *services.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

func (h *UploadHandler) Upload(c *gin.Context) {
	if _, ok := services.UserIDFromContext(c.Request.Context()); !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("file is required", "INVALID_REQUEST"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid file", "INVALID_REQUEST"))
		return
	}
	defer file.Close()

	fileURL, fileName, err := h.service.UploadFile(
		c.Request.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.UploadResponse{
		FileURL:  fileURL,
		FileName: fileName,
	}))
}
