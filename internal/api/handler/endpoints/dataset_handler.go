package endpoints

import (
	"errors"
	"net/http"

	"elexon"
	"elexon/internal/api/handler/mapper"
	"elexon/internal/api/handler/middleware"
	"elexon/internal/api/handler/request"
	"elexon/internal/api/handler/response"
	"elexon/internal/api/service"
	"elexon/internal/bmrs"
	"elexon/internal/errs"
	"elexon/pkg"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type datasetHandler struct {
	datasetService  *service.DatasetService
	downloadService *service.DownloadService
	datasetMapper   mapper.DatasetMapper
	config          elexon.AppConfig
	logger          zerolog.Logger
}

func newDatasetHandler(catalog *service.DatasetService, downloads *service.DownloadService, cfg elexon.AppConfig) *datasetHandler {
	return &datasetHandler{
		datasetService:  catalog,
		downloadService: downloads,
		datasetMapper:   mapper.NewDatasetMapper(),
		config:          cfg,
		logger:          elexon.Logger,
	}
}

func DatasetHandler(router gin.IRouter, catalog *service.DatasetService, downloads *service.DownloadService, cfg elexon.AppConfig) {
	h := newDatasetHandler(catalog, downloads, cfg)

	routes := router.Group("/api/v1/datasets")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.GET("", h.getAll)
		routes.GET("/:alias", h.getByAlias)
		routes.GET("/:alias/help", h.help)
		routes.POST("/:alias/download", h.download)
	}
}

func (h *datasetHandler) getAll(c *gin.Context) {
	datasets := h.datasetService.FindAll(c.Query("category"))
	c.JSON(http.StatusOK, response.DatasetList{
		Data:       h.datasetMapper.ToDatasetSummaries(datasets),
		Total:      len(datasets),
		Categories: h.datasetService.Categories(),
	})
}

func (h *datasetHandler) getByAlias(c *gin.Context) {
	dataset, err := h.datasetService.FindByAlias(c.Param("alias"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.datasetMapper.ToDatasetWithDetails(dataset))
}

func (h *datasetHandler) help(c *gin.Context) {
	alias := c.Param("alias")
	text, err := h.datasetService.Help(alias)
	if err != nil {
		c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, response.DatasetHelp{Alias: alias, Help: text})
}

func (h *datasetHandler) download(c *gin.Context) {
	alias := c.Param("alias")

	var req request.DownloadDataset
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse download request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	dr, err := h.datasetMapper.ToDownloadRequest(alias, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	result, err := h.downloadService.Download(c.Request.Context(), dr)
	if err != nil {
		status := statusFor(err)
		h.logger.Error().Err(err).
			Str("alias", alias).
			Str("subject", pkg.GetSubject(c)).
			Int("status", status).
			Msg("Download failed")
		c.JSON(status, response.APIError{Message: err.Error(), Data: errorDetail(err)})
		return
	}

	c.JSON(http.StatusOK, h.datasetMapper.ToDownloadResult(result))
}

// statusFor maps a download error onto the gateway status code.
func statusFor(err error) int {
	switch errs.Classify(err) {
	case errs.ClassInvalid:
		return http.StatusBadRequest
	case errs.ClassNotFound:
		return http.StatusNotFound
	case errs.ClassTransient, errs.ClassUpstream:
		return http.StatusBadGateway
	case errs.ClassShape:
		return http.StatusUnprocessableEntity
	case errs.ClassCanceled:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errorDetail exposes the error class and, for upstream failures, the status
// and parsed body the API answered with.
func errorDetail(err error) gin.H {
	detail := gin.H{"class": errs.Classify(err).String()}
	var httpErr *bmrs.HTTPError
	if errors.As(err, &httpErr) {
		detail["upstreamStatus"] = httpErr.StatusCode
		detail["upstreamDetail"] = httpErr.Detail
	}
	return detail
}
