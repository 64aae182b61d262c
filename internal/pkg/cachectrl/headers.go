package cachectrl

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// MaxAge lets clients reuse a response computed at t for ttl. The Expires header is derived
// from t, so a response served from cache late in its lifetime expires accordingly.
func MaxAge(ctx *fiber.Ctx, t time.Time, ttl time.Duration) {
	remaining := time.Until(t.Add(ttl))
	if remaining <= 0 {
		NoStore(ctx)
		return
	}

	ctx.Set(fiber.HeaderCacheControl, "private, max-age="+strconv.Itoa(int(remaining.Seconds())))
	ctx.Set(fiber.HeaderExpires, t.Add(ttl).UTC().Format(time.RFC1123))
	ctx.Response().Header.SetLastModified(t)
}

// NoStore marks a response as not cacheable at all.
func NoStore(ctx *fiber.Ctx) {
	ctx.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
	ctx.Set(fiber.HeaderPragma, "no-cache")
	ctx.Set(fiber.HeaderExpires, "0")
}
