package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"mime"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/caronte/pkg/slogx"
	"golang.org/x/time/rate"
)

// Limit is a token bucket profile: Requests per Window, with Burst
// requests available at once.
type Limit struct {
	Name     string
	Requests int
	Window   time.Duration
	Burst    int
}

var (
	// StrictLimit guards credential endpoints (login, 2FA requests,
	// password recovery) against guessing.
	StrictLimit = Limit{Name: "strict", Requests: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit is for single use links and logout.
	ModerateLimit = Limit{Name: "moderate", Requests: 20, Window: time.Minute, Burst: 20}

	// LenientLimit is for requests made with a valid session.
	LenientLimit = Limit{Name: "lenient", Requests: 100, Window: time.Minute, Burst: 100}

	// PublicLimit is for static, unauthenticated content.
	PublicLimit = Limit{Name: "public", Requests: 1000, Window: time.Minute, Burst: 1000}
)

func init() {
	StrictLimit = StrictLimit.FromEnv()
	ModerateLimit = ModerateLimit.FromEnv()
	LenientLimit = LenientLimit.FromEnv()
	PublicLimit = PublicLimit.FromEnv()
}

// FromEnv applies RATELIMIT_<NAME>_REQUESTS, RATELIMIT_<NAME>_WINDOW (a
// duration, or seconds) and RATELIMIT_<NAME>_BURST. Invalid values are
// ignored.
func (l Limit) FromEnv() Limit {
	prefix := "RATELIMIT_" + strings.ToUpper(l.Name) + "_"

	if n, ok := positiveEnv(prefix + "REQUESTS"); ok {
		l.Requests = n
	}
	if n, ok := positiveEnv(prefix + "BURST"); ok {
		l.Burst = n
	}
	if v := os.Getenv(prefix + "WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			l.Window = d
		} else if n, ok := positiveEnv(prefix + "WINDOW"); ok {
			l.Window = time.Duration(n) * time.Second
		}
	}
	return l
}

func positiveEnv(key string) (int, bool) {
	n, err := strconv.Atoi(os.Getenv(key))
	return n, err == nil && n > 0
}

// every is the interval at which the bucket refills one token.
func (l Limit) every() rate.Limit {
	if l.Requests <= 0 || l.Window <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(l.Requests) / l.Window.Seconds())
}

// KeyFunc groups requests that share a bucket. An empty key is not limited.
type KeyFunc func(*http.Request) string

// ClientIP is the first X-Forwarded-For hop, X-Real-IP, or the remote
// address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// UserKey is the uri_user attached by ValidateSession.
func UserKey(r *http.Request) string {
	return userIDFromCtx(r.Context())
}

// CredentialKey reads field from a form or JSON body, lower cased. A JSON
// body is restored so the handler can still decode it.
func CredentialKey(field string) KeyFunc {
	return func(r *http.Request) string {
		mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mt != "application/json" {
			if err := r.ParseForm(); err != nil {
				return ""
			}
			return normalizeCredential(r.FormValue(field))
		}

		if r.Body == nil {
			return ""
		}
		data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(data))
		if err != nil {
			return ""
		}

		var body map[string]any
		if json.Unmarshal(data, &body) != nil {
			return ""
		}
		s, _ := body[field].(string)
		return normalizeCredential(s)
	}
}

func normalizeCredential(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// JoinKeys concatenates the non-empty keys of fns with ":".
func JoinKeys(fns ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(fns))
		for _, fn := range fns {
			if k := fn(r); k != "" {
				parts = append(parts, k)
			}
		}
		return strings.Join(parts, ":")
	}
}

// buckets holds one limiter per key. Buckets idle for longer than a full
// window are dropped on the next sweep.
type buckets struct {
	limit Limit
	now   func() time.Time

	mu        sync.Mutex
	byKey     map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newBuckets(l Limit) *buckets {
	return &buckets{limit: l, now: time.Now, byKey: make(map[string]*bucket)}
}

// allow takes a token for key. When none is left it returns how long until
// one is.
func (b *buckets) allow(key string) (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.sweep(now)

	bk, ok := b.byKey[key]
	if !ok {
		bk = &bucket{lim: rate.NewLimiter(b.limit.every(), b.limit.Burst)}
		b.byKey[key] = bk
	}
	bk.lastSeen = now

	if bk.lim.AllowN(now, 1) {
		return true, 0
	}

	missing := 1 - bk.lim.TokensAt(now)
	wait := time.Duration(missing / float64(bk.lim.Limit()) * float64(time.Second))
	return false, wait
}

func (b *buckets) sweep(now time.Time) {
	idle := max(b.limit.Window, time.Minute)
	if now.Sub(b.lastSweep) < idle {
		return
	}
	b.lastSweep = now
	for k, bk := range b.byKey {
		if now.Sub(bk.lastSeen) >= idle {
			delete(b.byKey, k)
		}
	}
}

// RateLimit answers 429 with Retry-After once a key has used its bucket.
func RateLimit(l Limit, key KeyFunc) Middleware {
	b := newBuckets(l)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			ok, wait := b.allow(l.Name + ":" + k)
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := max(int(math.Ceil(wait.Seconds())), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.Requests))
			w.Header().Set("X-RateLimit-Window", l.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"limit", l.Name,
				"path", r.URL.Path,
				"retry_after", retryAfter,
			)
			WriteError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		})
	}
}

// RateLimitByIP limits each client address.
func RateLimitByIP(l Limit) Middleware {
	return RateLimit(l, ClientIP)
}

// RateLimitByUser limits each validated user per address. Without a user
// it limits the address alone.
func RateLimitByUser(l Limit) Middleware {
	return RateLimit(l, JoinKeys(UserKey, ClientIP))
}

// RateLimitByIPAndCredential limits each address and credential pair.
func RateLimitByIPAndCredential(l Limit, field string) Middleware {
	return RateLimit(l, JoinKeys(ClientIP, CredentialKey(field)))
}
