package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"radartools/internal/errors"
	"radartools/models"
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleThreshold(c *gin.Context) {
	pulses := 0
	if raw := c.Query("pulses"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(c, errors.InvalidInput("pulses must be an integer"))
			return
		}
		pulses = n
	}
	pfa, err := strconv.ParseFloat(c.Query("pfa"), 64)
	if err != nil {
		s.writeError(c, errors.InvalidInput("pfa is required and must be a number"))
		return
	}
	// Pfa 0 has an infinite threshold, which JSON cannot carry
	if pfa <= 0 {
		s.writeError(c, errors.InvalidInput("pfa must be greater than 0"))
		return
	}

	res, err := s.detection.Threshold(c.Request.Context(), pulses, pfa)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleEvaluate(c *gin.Context) {
	var req models.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	eval, err := s.detection.Evaluate(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, eval)
}

func (s *Server) handleSweep(c *gin.Context) {
	var req models.CurveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	result, err := s.sweeps.Curves(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleRequiredSNR(c *gin.Context) {
	var req models.RequiredSNRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	table, err := s.sweeps.RequiredSNR(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (s *Server) handleSelfCheck(c *gin.Context) {
	report, err := s.selfCheck.Run(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) writeError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch {
	case code == errors.CodeInvalidInput || code == errors.CodeDomainError:
		status = http.StatusBadRequest
	case code == errors.CodeNoConvergence:
		status = http.StatusUnprocessableEntity
	case stderrors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusGatewayTimeout, "TIMEOUT"
	case stderrors.Is(err, context.Canceled):
		status, code = http.StatusServiceUnavailable, "CANCELLED"
	default:
		code = errors.CodeInternalError
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		s.logger.Debug("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, errorResponse{Code: code, Message: err.Error()})
}
