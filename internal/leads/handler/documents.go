package handler

import (
	"net/http"

	"kronus_crm_backend/internal/adapters/storage"
	"kronus_crm_backend/internal/leads/repository"
	"kronus_crm_backend/internal/leads/transport"
	"kronus_crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadDocument accepts a multipart upload, streams it into object storage
// and records the document against the lead. The stored URL is the object key;
// downloads go through the presigned-URL endpoint.
func (h *Handler) UploadDocument(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, ok := leadID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "file is required", nil)
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.store.ValidateContentType(contentType); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err := h.store.ValidateFileSize(fileHeader.Size); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "failed to read uploaded file", nil)
		return
	}
	defer file.Close()

	folder := "leads/" + id.String()
	fileKey, err := h.store.UploadFile(c.Request.Context(), folder, fileHeader.Filename, contentType, file, fileHeader.Size)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to store file", nil)
		return
	}

	docType := repository.DocumentTypeOther
	if storage.IsImageContentType(contentType) {
		docType = repository.DocumentTypeImage
	}

	resp, err := h.svc.AddDocument(c.Request.Context(), caller, id, transport.NewDocument{
		Name: fileHeader.Filename,
		URL:  fileKey,
		Type: docType,
		Size: fileHeader.Size,
	})
	if err != nil {
		// The object is already in the bucket; remove it so failed metadata
		// writes don't leak orphans.
		_ = h.store.DeleteObject(c.Request.Context(), fileKey)
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, resp)
}

// DownloadDocument returns a short-lived presigned URL for the document.
func (h *Handler) DownloadDocument(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, ok := leadID(c)
	if !ok {
		return
	}
	docID, err := uuid.Parse(c.Param("documentId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid document id", nil)
		return
	}

	doc, svcErr := h.svc.GetDocument(c.Request.Context(), caller, id, docID)
	if httpkit.HandleError(c, svcErr) {
		return
	}

	presigned, err := h.store.GenerateDownloadURL(c.Request.Context(), doc.URL)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to generate download url", nil)
		return
	}

	httpkit.OK(c, presigned)
}

// DeleteDocument removes the document record and its stored object.
func (h *Handler) DeleteDocument(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, ok := leadID(c)
	if !ok {
		return
	}
	docID, err := uuid.Parse(c.Param("documentId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid document id", nil)
		return
	}

	doc, svcErr := h.svc.RemoveDocument(c.Request.Context(), caller, id, docID)
	if httpkit.HandleError(c, svcErr) {
		return
	}

	// Best-effort object cleanup; the metadata row is already gone.
	_ = h.store.DeleteObject(c.Request.Context(), doc.URL)

	httpkit.OK(c, gin.H{"message": "document deleted"})
}
