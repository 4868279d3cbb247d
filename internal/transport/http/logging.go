package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

const (
	requestBodyLogKey = "log.request_body"
	maxLoggedBody     = 2048
	redacted          = "[redacted]"
	binaryBody        = "[binary]"
)

var secretKeys = []string{"password", "token", "secret", "identity_number"}

// accessLog emits one structured entry per request. requestBodyDump must be
// registered after it so the body summary is on the context when it logs.
func accessLog(log logrus.FieldLogger) echo.MiddlewareFunc {
	log = log.WithField("component", "http")
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			userID := "anonymous"
			if user, ok := CurrentUser(c); ok {
				userID = user.ID.String()
			}
			fields := logrus.Fields{
				"user_uuid":  userID,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
			}
			if body := c.Get(requestBodyLogKey); body != nil {
				fields["request_body"] = body
			}
			entry := log.WithFields(fields)
			if v.Error != nil {
				entry.WithField("error", v.Error.Error()).Warn("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	})
}

func requestBodyDump() echo.MiddlewareFunc {
	return middleware.BodyDumpWithConfig(middleware.BodyDumpConfig{
		Skipper: func(c echo.Context) bool {
			return strings.Contains(c.Request().URL.Path, "/swagger/")
		},
		Handler: func(c echo.Context, reqBody, _ []byte) {
			if summary := summarizeBody(reqBody, c.Request().Header.Get(echo.HeaderContentType)); summary != nil {
				c.Set(requestBodyLogKey, summary)
			}
		},
	})
}

// summarizeBody turns a request body into something safe to log: secrets
// are redacted, files are replaced by a marker and long text is clipped.
func summarizeBody(body []byte, contentType string) any {
	if len(body) == 0 {
		return nil
	}
	mediaType, params, _ := mime.ParseMediaType(contentType)
	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		return summarizeMultipart(body, params["boundary"])
	case mediaType == echo.MIMEApplicationForm:
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return binaryBody
		}
		out := make(map[string]any, len(values))
		for key, vals := range values {
			out[key] = redactValue(key, strings.Join(vals, ","))
		}
		return out
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err == nil {
		return redactJSON(decoded, "")
	}
	if looksBinary(body) {
		return binaryBody
	}
	return clip(string(body))
}

func summarizeMultipart(body []byte, boundary string) any {
	if boundary == "" {
		return binaryBody
	}
	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	out := map[string]any{}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return binaryBody
		}
		name := part.FormName()
		if name == "" {
			_ = part.Close()
			continue
		}
		if part.FileName() != "" {
			out[name] = binaryBody
		} else {
			data, err := io.ReadAll(io.LimitReader(part, maxLoggedBody+1))
			if err != nil {
				out[name] = binaryBody
			} else {
				out[name] = redactValue(name, string(data))
			}
		}
		_ = part.Close()
	}
	return out
}

func redactJSON(value any, key string) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			if isSecretKey(k) {
				out[k] = redacted
				continue
			}
			out[k] = redactJSON(item, k)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = redactJSON(item, key)
		}
		return out
	case string:
		return redactValue(key, v)
	default:
		return v
	}
}

func redactValue(key, value string) string {
	if isSecretKey(key) {
		return redacted
	}
	if looksBinary([]byte(value)) {
		return binaryBody
	}
	return clip(value)
}

func isSecretKey(key string) bool {
	key = strings.ToLower(key)
	for _, secret := range secretKeys {
		if strings.Contains(key, secret) {
			return true
		}
	}
	return false
}

func looksBinary(data []byte) bool {
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			return true
		}
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return true
		}
		data = data[size:]
	}
	return false
}

func clip(value string) string {
	if len(value) <= maxLoggedBody {
		return value
	}
	cut := value[:maxLoggedBody]
	for !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut + "...(truncated)"
}
