package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/kanjo/services/account-service/internal/application/auth"
	"github.com/baechuer/kanjo/services/account-service/internal/domain"
	"github.com/baechuer/kanjo/services/account-service/internal/logger"
)

// CachedUserRepo decorates an auth.UserRepo with a Redis cache for GetByID,
// the lookup every authenticated request performs.
//   - Read path: Redis -> DB fallback -> guarded Redis set
//   - Write path: DB -> bump generation + DEL
//
// Cached entries never hold the password hash or the verification token.
// Redis failures never fail the request; the DB stays the source of truth.
type CachedUserRepo struct {
	inner   auth.UserRepo
	rdb     *goredis.Client
	ttl     time.Duration
	keyPref string
}

func NewCachedUserRepo(inner auth.UserRepo, client *Client, ttl time.Duration) *CachedUserRepo {
	var rdb *goredis.Client
	if client != nil {
		rdb = client.rdb
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedUserRepo{
		inner:   inner,
		rdb:     rdb,
		ttl:     ttl,
		keyPref: "user:",
	}
}

func (c *CachedUserRepo) key(userID string) string {
	return c.keyPref + userID
}

// genKey counts writes to a user. A fill only lands if no write happened
// between reading the generation and writing the entry.
func (c *CachedUserRepo) genKey(userID string) string {
	return c.keyPref + "gen:" + userID
}

type cachedUser struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Role              string     `json:"role"`
	EmailVerified     bool       `json:"ev"`
	PasswordChangedAt *time.Time `json:"pca,omitempty"`
	CreatedAt         time.Time  `json:"ca"`
	UpdatedAt         time.Time  `json:"ua"`
}

func toCached(u domain.User) cachedUser {
	return cachedUser{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              u.Role,
		EmailVerified:     u.EmailVerified,
		PasswordChangedAt: u.PasswordChangedAt,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func (cu cachedUser) toDomain() domain.User {
	return domain.User{
		ID:                cu.ID,
		Name:              cu.Name,
		Email:             cu.Email,
		Role:              cu.Role,
		EmailVerified:     cu.EmailVerified,
		PasswordChangedAt: cu.PasswordChangedAt,
		CreatedAt:         cu.CreatedAt,
		UpdatedAt:         cu.UpdatedAt,
	}
}

// KEYS[1] entry, KEYS[2] generation; ARGV[1] generation seen before the
// store read ("" if none), ARGV[2] payload, ARGV[3] ttl in ms.
const guardedFillLua = `
local cur = redis.call("GET", KEYS[2])
if not cur then cur = "" end
if cur ~= ARGV[1] then
  return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`

var guardedFillScript = goredis.NewScript(guardedFillLua)

func (c *CachedUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	// 1) Try Redis
	gen, fill := "", false
	if c.rdb != nil {
		b, err := c.rdb.Get(ctx, c.key(id)).Bytes()
		switch {
		case err == nil:
			var cu cachedUser
			if jerr := json.Unmarshal(b, &cu); jerr == nil {
				return cu.toDomain(), nil
			}
		case err != goredis.Nil:
			logger.WithCtx(ctx).Warn().Err(err).Msg("user cache read failed")
		}

		gen, err = c.rdb.Get(ctx, c.genKey(id)).Result()
		switch {
		case err == nil:
			fill = true
		case err == goredis.Nil:
			gen, fill = "", true
		}
	}

	// 2) DB source of truth
	u, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	// 3) Best-effort cache fill, dropped if a write raced the read
	if fill {
		if b, jerr := json.Marshal(toCached(u)); jerr == nil {
			err := guardedFillScript.Run(ctx, c.rdb,
				[]string{c.key(id), c.genKey(id)},
				gen, b, c.ttl.Milliseconds(),
			).Err()
			if err != nil {
				logger.WithCtx(ctx).Warn().Err(err).Msg("user cache fill failed")
			}
		}
	}
	return u, nil
}

func (c *CachedUserRepo) invalidate(ctx context.Context, userID string) {
	if c.rdb == nil || userID == "" {
		return
	}
	_, err := c.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Incr(ctx, c.genKey(userID))
		p.PExpire(ctx, c.genKey(userID), 2*c.ttl)
		p.Del(ctx, c.key(userID))
		return nil
	})
	if err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Str("user_id", userID).Msg("user cache invalidate failed")
	}
}

func (c *CachedUserRepo) UpdateProfile(ctx context.Context, userID string, change auth.ProfileChange) (domain.User, error) {
	u, err := c.inner.UpdateProfile(ctx, userID, change)
	c.invalidate(ctx, userID)
	return u, err
}

func (c *CachedUserRepo) SetVerification(ctx context.Context, userID string, pv auth.PendingVerification) error {
	err := c.inner.SetVerification(ctx, userID, pv)
	c.invalidate(ctx, userID)
	return err
}

func (c *CachedUserRepo) RedeemVerification(ctx context.Context, tokenHash string, now time.Time) (domain.User, error) {
	u, err := c.inner.RedeemVerification(ctx, tokenHash, now)
	if err == nil {
		c.invalidate(ctx, u.ID)
	}
	return u, err
}

func (c *CachedUserRepo) UpdatePassword(ctx context.Context, userID, newHash string, changedAt time.Time) error {
	err := c.inner.UpdatePassword(ctx, userID, newHash, changedAt)
	c.invalidate(ctx, userID)
	return err
}

func (c *CachedUserRepo) Delete(ctx context.Context, userID string) error {
	err := c.inner.Delete(ctx, userID)
	c.invalidate(ctx, userID)
	return err
}

// Uncached delegates.

func (c *CachedUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return c.inner.GetByEmail(ctx, email)
}

func (c *CachedUserRepo) GetPasswordHash(ctx context.Context, userID string) (string, error) {
	return c.inner.GetPasswordHash(ctx, userID)
}

func (c *CachedUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	return c.inner.Create(ctx, u)
}
