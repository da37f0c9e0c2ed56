/*
Package server provides an HTTP service that makes predictions with a forest.

It serves the following routes:

	GET  /healthz     reports the service is up
	GET  /covariates  lists the covariates samples are expected to have
	POST /predict     predicts the samples in the body

Samples are JSON objects with the raw value of every covariate by name.
Covariates a sample does not include are missing values.
*/
package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pbanos/grove"
	"github.com/pbanos/grove/covariate"
	"github.com/pbanos/grove/dataset"
)

// PredictRequest is the body of a request to predict samples
type PredictRequest struct {
	Samples []map[string]string `json:"samples" binding:"required"`
}

// PredictResponse is the body of the response to a PredictRequest
type PredictResponse[P any] struct {
	Predictions []P `json:"predictions"`
}

// CovariatesResponse is the body of the response listing covariates
type CovariatesResponse struct {
	Covariates []covariate.Settings `json:"covariates"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type server[R, P any] struct {
	forest  *grove.Forest[R, P]
	byName  map[string]covariate.Covariate
	workers int
	logger  *zap.Logger
}

/*
New takes a forest, the number of goroutines to predict the samples of a
request with (as many as CPUs if not positive) and a logger, and returns an
http.Handler serving predictions with the forest.
*/
func New[R, P any](forest *grove.Forest[R, P], workers int, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &server[R, P]{
		forest:  forest,
		byName:  covariate.ByName(forest.Covariates),
		workers: workers,
		logger:  logger,
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))
	engine.GET("/healthz", s.healthz)
	engine.GET("/covariates", s.covariates)
	engine.POST("/predict", s.predict)
	return engine
}

func (s *server[R, P]) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "trees": len(s.forest.Trees)})
}

func (s *server[R, P]) covariates(c *gin.Context) {
	settings := make([]covariate.Settings, len(s.forest.Covariates))
	for i, cov := range s.forest.Covariates {
		settings[i] = covariate.SettingsOf(cov)
	}
	c.JSON(http.StatusOK, CovariatesResponse{settings})
}

func (s *server[R, P]) predict(c *gin.Context) {
	var request PredictRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{err.Error()})
		return
	}
	samples := make([]covariate.Sample, len(request.Samples))
	for i, raw := range request.Samples {
		sample, err := s.sample(i, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{err.Error()})
			return
		}
		samples[i] = sample
	}
	predictions, err := s.forest.PredictAll(c.Request.Context(), samples, s.workers)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, covariate.ErrMissingValue) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, errorResponse{err.Error()})
		return
	}
	c.JSON(http.StatusOK, PredictResponse[P]{predictions})
}

func (s *server[R, P]) sample(id int, raw map[string]string) (covariate.Sample, error) {
	for name := range raw {
		if _, ok := s.byName[name]; !ok {
			return nil, fmt.Errorf("sample %d: %w %s", id, covariate.ErrUnknownCovariate, name)
		}
	}
	values := make([]covariate.Value, len(s.forest.Covariates))
	for i, cov := range s.forest.Covariates {
		v, err := cov.CreateValue(raw[cov.Name()])
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", id, err)
		}
		values[i] = v
	}
	return dataset.NewRow(id, struct{}{}, values), nil
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
