package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-lms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// middleware/idempotency.go

func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")

		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		cacheKey := fmt.Sprintf("idemp:%s:%s", c.FullPath(), idempKey)
		lockKey := cacheKey + ":lock" // Key khusus untuk locking

		// 1. CEK CACHE
		// Replay memakai envelope yang sama dengan response asli.
		val, err := rdb.Get(c.Request.Context(), cacheKey).Result()
		if err == nil {
			var cachedRes any
			if unmarshalErr := json.Unmarshal([]byte(val), &cachedRes); unmarshalErr == nil {
				c.AbortWithStatusJSON(http.StatusOK, response.ApiEnvelope{
					Ok:   true,
					Data: cachedRes,
				})
				return
			}
			// Entry cache rusak, biarkan request diproses ulang.
		}

		// 2. ATOMIC LOCK (SetNX)
		// Mencoba membuat key 'lock'. Jika sudah ada, berarti request lain sedang jalan.
		// Set expiry pendek (30 detik) agar jika server crash, lock otomatis hilang.
		isNew, _ := rdb.SetNX(c.Request.Context(), lockKey, "locked", 30*time.Second).Result()

		if !isNew {
			// Request ganda terdeteksi saat proses masih berlangsung!
			c.AbortWithStatusJSON(http.StatusConflict, response.ApiEnvelope{
				Ok: false,
				Error: &response.ErrorBody{
					Code:    "PROCESSING",
					Message: "Permintaan Anda sedang diproses, mohon tunggu sebentar.",
				},
			})
			return
		}

		// Tambahkan lockKey ke context agar bisa dihapus oleh Handler setelah selesai
		c.Set("idempotency_cache_key", cacheKey)
		c.Set("idempotency_lock_key", lockKey)

		c.Next()
	}
}
