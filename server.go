package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/snehendu098/ghost/galasigner/pkg/canonical"
	"github.com/snehendu098/ghost/galasigner/pkg/galachain"
	"github.com/snehendu098/ghost/galasigner/pkg/log"
	"github.com/snehendu098/ghost/galasigner/pkg/sign"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "requestId"

	errMsgInvalidBody = "Body must be { payload: object }"
	keyErrorHint      = "Set env " + privateKeyEnv + " to 0x..64 hex chars."
)

// PublicKeyResolver looks up the registered public key of a wallet address.
type PublicKeyResolver interface {
	GetPublicKey(ctx context.Context, address string) (string, error)
}

type signRequest struct {
	Payload map[string]any `json:"payload" validate:"required"`
}

type pubkeyQuery struct {
	Address string `form:"address" validate:"required,gala_address"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server is the HTTP front of the signing service.
type Server struct {
	router    *gin.Engine
	service   *sign.Service
	resolver  PublicKeyResolver
	validate  *validator.Validate
	metrics   *Metrics
	logger    log.Logger
	tracer    trace.Tracer
	bodyLimit int64
}

// NewServer wires the routes. A bodyLimit of zero or less means 1 MiB.
func NewServer(service *sign.Service, resolver PublicKeyResolver, metrics *Metrics, logger log.Logger, bodyLimit int64) *Server {
	if bodyLimit <= 0 {
		bodyLimit = 1 << 20
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("gala_address", validateGalaAddress); err != nil {
		panic(fmt.Sprintf("failed to register gala_address validation: %v", err))
	}

	s := &Server{
		router:    gin.New(),
		service:   service,
		resolver:  resolver,
		validate:  validate,
		metrics:   metrics,
		logger:    logger.WithName("http"),
		tracer:    otel.Tracer("github.com/snehendu098/ghost/galasigner"),
		bodyLimit: bodyLimit,
	}

	s.router.Use(gin.Recovery(), s.requestIDMiddleware(), s.tracingMiddleware(), s.loggingMiddleware(), s.metricsMiddleware())
	s.router.POST("/sign", s.handleSign)
	s.router.GET("/pubkey", s.handlePublicKey)
	s.router.GET("/health", s.handleHealth)

	return s
}

// Handler returns the routes behind a permissive CORS policy, so pages served
// from file:// or any other origin can call the signer.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{requestIDHeader},
	}).Handler(s.router)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleSign(c *gin.Context) {
	logger := log.FromContext(c.Request.Context())

	var req signRequest
	if status, err := s.decodeSignRequest(c, &req); err != nil {
		s.metrics.SignRequests.WithLabelValues(outcomeInvalidRequest).Inc()
		logger.Debug("rejected sign request", "error", err)
		s.fail(c, status, err, errMsgFor(status, err))
		return
	}

	start := time.Now()
	result, err := s.service.SignObject(req.Payload)
	s.metrics.SignDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		outcome, message := describeSignError(err)
		s.metrics.SignRequests.WithLabelValues(outcome).Inc()
		logger.Warn("signing failed", "outcome", outcome, "error", err)
		s.fail(c, http.StatusBadRequest, err, message)
		return
	}

	s.metrics.SignRequests.WithLabelValues(outcomeSuccess).Inc()
	logger.Debug("payload signed", "digest", result.Digest.String())
	c.JSON(http.StatusOK, result)
}

func (s *Server) decodeSignRequest(c *gin.Context, req *signRequest) (int, error) {
	decoder := json.NewDecoder(http.MaxBytesReader(c.Writer, c.Request.Body, s.bodyLimit))
	decoder.UseNumber()
	if err := decoder.Decode(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return http.StatusRequestEntityTooLarge, err
		}
		return http.StatusBadRequest, err
	}
	if err := s.validate.Struct(req); err != nil {
		return http.StatusBadRequest, err
	}
	return http.StatusOK, nil
}

func (s *Server) handlePublicKey(c *gin.Context) {
	ctx := c.Request.Context()
	logger := log.FromContext(ctx)

	var query pubkeyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		s.metrics.PublicKeyLookups.WithLabelValues(outcomeInvalidRequest).Inc()
		s.fail(c, http.StatusBadRequest, err, galachain.ErrInvalidAddress.Error())
		return
	}
	if err := s.validate.Struct(&query); err != nil {
		s.metrics.PublicKeyLookups.WithLabelValues(outcomeInvalidRequest).Inc()
		s.fail(c, http.StatusBadRequest, err, galachain.ErrInvalidAddress.Error())
		return
	}

	start := time.Now()
	publicKey, err := s.resolver.GetPublicKey(ctx, query.Address)
	s.metrics.PublicKeyLookupDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.PublicKeyLookups.WithLabelValues(outcomeError).Inc()
		logger.Warn("public key lookup failed", "address", query.Address, "error", err)
		s.fail(c, http.StatusBadRequest, err, err.Error())
		return
	}

	s.metrics.PublicKeyLookups.WithLabelValues(outcomeSuccess).Inc()
	c.JSON(http.StatusOK, gin.H{"publicKey": publicKey})
}

func (s *Server) fail(c *gin.Context, status int, err error, message string) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{Error: message})
}

func errMsgFor(status int, err error) string {
	if status == http.StatusRequestEntityTooLarge {
		return err.Error()
	}
	return errMsgInvalidBody
}

// describeSignError maps a SignObject failure to a metrics outcome and the
// message returned to the client.
func describeSignError(err error) (string, string) {
	var keyErr *sign.KeyError
	if errors.As(err, &keyErr) {
		return outcomeKeyError, keyErr.Error() + ". " + keyErrorHint
	}
	var encErr *canonical.EncodingError
	if errors.As(err, &encErr) {
		return outcomeEncodingError, encErr.Error()
	}
	return outcomeError, err.Error()
}

func validateGalaAddress(fl validator.FieldLevel) bool {
	_, err := galachain.NormalizeAddress(fl.Field().String())
	return err == nil
}

func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.New().String()
		}
		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

func (s *Server) tracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := s.tracer.Start(c.Request.Context(), c.Request.Method+" "+route(c),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", route(c)),
				attribute.String("request.id", c.GetString(requestIDKey)),
			))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if len(c.Errors) > 0 {
			span.SetStatus(codes.Error, c.Errors.Last().Error())
		}
	}
}

// loggingMiddleware stores a request-scoped logger on the request context
// and logs one line per request.
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		logger := s.logger.WithKV(requestIDKey, c.GetString(requestIDKey))
		c.Request = c.Request.WithContext(log.SetContextLogger(c.Request.Context(), logger))

		c.Next()

		keysAndValues := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"clientIp", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			keysAndValues = append(keysAndValues, "errors", c.Errors.String())
		}

		lg := log.FromContext(c.Request.Context())
		switch status := c.Writer.Status(); {
		case status >= 500:
			lg.Error("HTTP request", keysAndValues...)
		case status >= 400:
			lg.Warn("HTTP request", keysAndValues...)
		default:
			lg.Info("HTTP request", keysAndValues...)
		}
	}
}

func (s *Server) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		r := route(c)
		s.metrics.HTTPRequests.WithLabelValues(c.Request.Method, r, strconv.Itoa(c.Writer.Status())).Inc()
		s.metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, r).Observe(time.Since(start).Seconds())
	}
}

// route keeps metric labels bounded: unmatched paths share one label.
func route(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return "unmatched"
}
