// Package telemetry wires Elastic APM into the HTTP server.
package telemetry

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.elastic.co/apm/module/apmgin/v2"
	"go.elastic.co/apm/v2"
)

// NewTracer creates an APM tracer. Agent settings such as the server URL
// come from the standard ELASTIC_APM_* environment variables.
func NewTracer(serviceName, serviceVersion string) (*apm.Tracer, error) {
	tracer, err := apm.NewTracerOptions(apm.TracerOptions{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("create APM tracer: %w", err)
	}
	return tracer, nil
}

// Middleware returns the gin middleware reporting transactions to tracer
func Middleware(engine *gin.Engine, tracer *apm.Tracer) gin.HandlerFunc {
	return apmgin.Middleware(engine, apmgin.WithTracer(tracer))
}
