package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/larderhq/larder-backend/api/responses"
	pkgerrors "github.com/larderhq/larder-backend/pkg/errors"
	"github.com/larderhq/larder-backend/pkg/logger"
	pkgredis "github.com/larderhq/larder-backend/pkg/redis"
)

const (
	stockMutationTTL = 24 * time.Hour
	saleMutationTTL  = 7 * 24 * time.Hour
)

type idempotencyRule struct {
	method string
	match  func(pattern string) bool
	ttl    time.Duration
}

// Stock mutations are guarded so a retried POST cannot double-apply a
// delivery or waste batch. Sales keep their records longer because they feed
// the financial summary.
var idempotencyRules = []idempotencyRule{
	{http.MethodPost, matchExact("/api/v1/stock/delivery"), stockMutationTTL},
	{http.MethodPost, matchExact("/api/v1/stock/waste"), stockMutationTTL},
	{http.MethodPost, matchPrefixSuffix("/api/v1/menu/", "/sell"), saleMutationTTL},
}

func matchExact(path string) func(string) bool {
	return func(pattern string) bool { return pattern == path }
}

func matchPrefixSuffix(prefix, suffix string) func(string) bool {
	return func(pattern string) bool {
		return strings.HasPrefix(pattern, prefix) && strings.HasSuffix(pattern, suffix)
	}
}

// storedResponse is what gets persisted under the idempotency key: the
// response to replay plus a hash of the request body that produced it.
type storedResponse struct {
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency deduplicates the guarded mutation routes by Idempotency-Key.
// An exact retry replays the stored response; reusing a key with a different
// body is rejected with a conflict.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, guarded := guardTTL(r)
			if !guarded || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
			if idemKey == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			sum := sha256.Sum256(body)
			reqHash := base64.StdEncoding.EncodeToString(sum[:])
			key := store.IdempotencyKey(r.Method+"|"+r.URL.Path, idemKey)

			prior, err := store.Get(r.Context(), key)
			switch {
			case err != nil && !errors.Is(err, redis.Nil):
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			case prior != "":
				replayOrReject(r, w, logg, prior, reqHash)
				return
			}

			capture := &captureWriter{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			record := storedResponse{
				Status:      capture.statusOr(http.StatusOK),
				Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
				RequestHash: reqHash,
			}
			if ct := capture.Header().Get("Content-Type"); ct != "" {
				record.Headers = map[string]string{"Content-Type": ct}
			}

			payload, err := json.Marshal(record)
			if err != nil {
				if logg != nil {
					logg.Error(r.Context(), "marshal idempotency record", err)
				}
				return
			}
			if _, err := store.SetNX(r.Context(), key, string(payload), ttl); err != nil && logg != nil {
				logg.Error(r.Context(), "persist idempotency record", err)
			}
		})
	}
}

// guardTTL reports whether the request matches a guarded rule, and with
// which record TTL. Rules match on the request path: as middleware this runs
// before chi resolves the route, so the route pattern is not available yet.
func guardTTL(r *http.Request) (time.Duration, bool) {
	for _, rule := range idempotencyRules {
		if rule.method == r.Method && rule.match(r.URL.Path) {
			return rule.ttl, true
		}
	}
	return 0, false
}

func replayOrReject(r *http.Request, w http.ResponseWriter, logg *logger.Logger, prior, reqHash string) {
	var record storedResponse
	if err := json.Unmarshal([]byte(prior), &record); err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	if record.RequestHash != reqHash {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return
	}
	if ct := record.Headers["Content-Type"]; ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

// captureWriter tees the response so it can be stored for replay.
type captureWriter struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *captureWriter) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *captureWriter) statusOr(fallback int) int {
	if c.status == 0 {
		return fallback
	}
	return c.status
}
