package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/rs/xid"

	"github.com/rezonia/facturx-fusion/internal/logging"
)

// HeaderRequestID carries the request id in both directions
const HeaderRequestID = "X-Request-ID"

const (
	ctxKeyRequestID = "request_id"
	RFC3339Millis   = "2006-01-02T15:04:05.000Z07:00"
)

// requestID propagates the client's request id or generates one
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = xid.New().String()
		}
		c.Set(ctxKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}

// bodyLimit caps the request body. Declared oversize bodies are rejected
// before any handler runs.
func bodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: fmt.Sprintf("request body exceeds %s", humanize.IBytes(uint64(limit))),
				Code:  ErrCodeTooLarge,
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

func logFormatter(param gin.LogFormatterParams) string {
	if param.Latency > time.Minute {
		param.Latency = param.Latency.Truncate(time.Second)
	}

	var reqID string
	if v, ok := param.Keys[ctxKeyRequestID].(string); ok {
		reqID = v
	}

	return fmt.Sprintf("{\"timestamp\":\"%v\", \"request_id\": %s, \"status_code\": %d, \"latency\": \"%v\", \"latency_raw\": %d, \"response_size\": \"%s\", \"response_size_raw\": %d, \"client_ip\": %s, \"method\": \"%s\", \"path\": %s, \"error\": %s}\n",
		param.TimeStamp.Format(RFC3339Millis),
		strconv.Quote(reqID),
		param.StatusCode,
		param.Latency,
		param.Latency,
		humanize.Bytes(uint64(max(param.BodySize, 0))),
		param.BodySize,
		strconv.Quote(param.ClientIP),
		param.Method,
		strconv.Quote(param.Path),
		strconv.Quote(param.ErrorMessage),
	)
}
