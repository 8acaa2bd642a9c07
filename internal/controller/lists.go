package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-bills/internal/cache"
)

// serveList answers from the cache when it can. Concurrent misses for the
// same owner share one store read, unless a mutation landed in between.
// The loaded list is cached only if no invalidation happened while it was
// being read.
func (h *Handlers) serveList(c *gin.Context, kind, ownerID, failMsg string, load func(context.Context) (any, error)) {
	ctx := c.Request.Context()
	if b, ok := h.Cache.Get(ctx, kind, ownerID); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", b)
		return
	}
	key := cache.Key(kind, ownerID)
	flight := fmt.Sprintf("%s#%d", key, h.generation(key))
	v, err, _ := h.lists.Do(flight, func() (interface{}, error) {
		fctx := context.WithoutCancel(ctx)
		gen, cacheable := h.Cache.Version(fctx, kind, ownerID)
		list, err := load(fctx)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(list)
		if err != nil {
			return nil, err
		}
		if cacheable {
			h.Cache.Set(fctx, kind, ownerID, gen, b)
		}
		return b, nil
	})
	if err != nil {
		if ctx.Err() != nil && isContextErr(err) {
			return
		}
		internalError(c, failMsg, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", v.([]byte))
}
