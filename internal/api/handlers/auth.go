package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/fantasyarena/backend/internal/config"
	"github.com/fantasyarena/backend/internal/models"
)

// Register creates a player account and signs the user in immediately.
func Register(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username, email and password are required"})
			return
		}

		req.Username = strings.TrimSpace(req.Username)
		if len(req.Username) < 3 || len(req.Username) > 30 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be between 3 and 30 characters"})
			return
		}
		if len(req.Password) < 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), cfg.BcryptCost)
		if err != nil {
			log.Printf("[AUTH] bcrypt failure: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
			return
		}

		var userID int
		err = db.QueryRow(`
			INSERT INTO users (username, email, password_hash)
			VALUES ($1, $2, $3)
			RETURNING id
		`, req.Username, strings.ToLower(req.Email), string(hash)).Scan(&userID)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Username or email is already taken"})
				return
			}
			log.Printf("[AUTH] failed to create user %s: %v", req.Username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
			return
		}

		token, err := issueToken(cfg, userID, req.Username, false)
		if err != nil {
			log.Printf("[AUTH] failed to sign token for user %d: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
			return
		}

		log.Printf("[AUTH] registered user %s (id=%d)", req.Username, userID)
		c.JSON(http.StatusCreated, gin.H{
			"token": token,
			"user": gin.H{
				"id":       userID,
				"username": req.Username,
				"is_admin": false,
			},
		})
	}
}

// Login authenticates by username and password. Attempts are rate limited
// per username through a short lived Redis key.
func Login(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
			return
		}

		rateKey := fmt.Sprintf("login_rate:%s", strings.ToLower(req.Username))
		ok, err := rdb.SetNX(context.Background(), rateKey, 1,
			time.Duration(cfg.LoginRateLimitSeconds)*time.Second).Result()
		if err != nil {
			log.Printf("[AUTH] rate limit check failed: %v", err)
		} else if !ok {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many login attempts. Please wait a moment."})
			return
		}

		var user models.User
		err = db.Get(&user, `SELECT * FROM users WHERE username = $1`, req.Username)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}

		token, err := issueToken(cfg, user.ID, user.Username, user.IsAdmin)
		if err != nil {
			log.Printf("[AUTH] failed to sign token for user %d: %v", user.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
			return
		}

		log.Printf("[AUTH] user %s logged in", user.Username)
		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user": gin.H{
				"id":       user.ID,
				"username": user.Username,
				"is_admin": user.IsAdmin,
			},
		})
	}
}

// Logout places the presented token on a Redis denylist until it would
// have expired on its own.
func Logout(rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
			return
		}

		ttl := time.Duration(cfg.SessionTimeoutMin) * time.Minute
		if err := rdb.Set(context.Background(), denylistKey(token), 1, ttl).Err(); err != nil {
			log.Printf("[AUTH] failed to denylist token: %v", err)
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// CurrentUser returns the authenticated user's profile and balances.
func CurrentUser(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt("user_id")

		var user models.User
		err := db.Get(&user, `SELECT * FROM users WHERE id = $1`, userID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":               user.ID,
			"username":         user.Username,
			"email":            user.Email,
			"deposit_balance":  user.DepositBalance,
			"winnings_balance": user.WinningsBalance,
			"is_admin":         user.IsAdmin,
			"ban_status":       user.BanStatus,
			"created_at":       user.CreatedAt.Format(time.RFC3339),
		})
	}
}

// AuthMiddleware validates the bearer token, rejects denylisted tokens and
// stores the caller's identity on the request context.
func AuthMiddleware(rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		exists, err := rdb.Exists(context.Background(), denylistKey(tokenStr)).Result()
		if err == nil && exists > 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired. Please log in again."})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		userID, ok := claims["user_id"].(float64)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", int(userID))
		c.Set("username", fmt.Sprintf("%v", claims["username"]))
		if isAdmin, ok := claims["is_admin"].(bool); ok {
			c.Set("is_admin", isAdmin)
		}
		c.Next()
	}
}

// AdminMiddleware re-checks the admin flag against the database so that a
// revoked admin cannot ride out an old token.
func AdminMiddleware(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt("user_id")

		var isAdmin bool
		err := db.Get(&isAdmin, `SELECT is_admin FROM users WHERE id = $1`, userID)
		if err != nil || !isAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CheckBanStatus blocks banned users. Temporary bans whose expiry has
// passed are lifted in place and the request continues.
func CheckBanStatus(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt("user_id")

		var user models.User
		err := db.Get(&user, `SELECT * FROM users WHERE id = $1`, userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			c.Abort()
			return
		}

		switch user.BanStatus {
		case models.BanStatusTempBanned:
			if user.BanExpiry.Valid && user.BanExpiry.Time.Before(time.Now()) {
				_, err := db.Exec(`
					UPDATE users
					SET ban_status = 'active', ban_expiry = NULL, ban_reason = NULL,
					    banned_at = NULL, banned_by = NULL
					WHERE id = $1
				`, userID)
				if err != nil {
					log.Printf("[AUTH] failed to lift expired ban for user %d: %v", userID, err)
				} else {
					log.Printf("[AUTH] expired ban lifted for user %d", userID)
				}
				c.Next()
				return
			}
			msg := "Your account is temporarily suspended"
			if user.BanExpiry.Valid {
				msg = fmt.Sprintf("Your account is suspended until %s",
					user.BanExpiry.Time.Format("Jan 2, 2006 15:04"))
			}
			c.JSON(http.StatusForbidden, gin.H{"error": msg})
			c.Abort()
		case models.BanStatusBanned:
			c.JSON(http.StatusForbidden, gin.H{"error": "Your account has been banned"})
			c.Abort()
		default:
			c.Next()
		}
	}
}

func issueToken(cfg *config.Config, userID int, username string, isAdmin bool) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"is_admin": isAdmin,
		"exp":      time.Now().Add(time.Duration(cfg.SessionTimeoutMin) * time.Minute).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// extractToken reads the bearer token from the Authorization header, falling
// back to the token query parameter for websocket upgrades.
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

func denylistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "token_denylist:" + hex.EncodeToString(sum[:])
}
