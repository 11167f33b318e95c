// Package roles resolves an account id to its canonical role, with an
// offline fallback from the local session cache and a least-privilege
// default when neither source answers.
package roles

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"worksync/api/internal/cache"
	"worksync/api/internal/faults"
	"worksync/api/internal/models"
)

// CacheKeyPrefix prefixes the per-account role cache entries
// ("user_data_<uid>"). The session controller clears them on sign-out.
const CacheKeyPrefix = "user_data_"

// ProfileReader does a point read of an identity record.
type ProfileReader interface {
	GetByID(ctx context.Context, uid string) (models.User, error)
}

// Resolution is the role triple a session is built from.
type Resolution struct {
	Role        models.Role `json:"role"`
	DisplayName string      `json:"displayName"`
	Department  string      `json:"department,omitempty"`
}

type Resolver struct {
	profiles ProfileReader
	cache    cache.Store
	log      zerolog.Logger
}

func NewResolver(profiles ProfileReader, cacheStore cache.Store, log zerolog.Logger) *Resolver {
	return &Resolver{
		profiles: profiles,
		cache:    cacheStore,
		log:      log,
	}
}

// Resolve fetches the identity record for uid and maps its raw role string
// to a canonical role. A connectivity failure falls back to the cached
// triple from a previous resolution. Every other failure resolves to
// Employee: an unreachable or malformed record must never grant elevated
// privilege, so the resolver degrades instead of erroring.
func (r *Resolver) Resolve(ctx context.Context, uid string) Resolution {
	user, err := r.profiles.GetByID(ctx, uid)
	if err == nil {
		res := Resolution{
			Role:        models.ParseRole(user.Role),
			DisplayName: user.DisplayName,
		}
		if user.Department != nil {
			res.Department = *user.Department
		}
		r.cacheResolution(ctx, uid, res)
		return res
	}

	if faults.Classify(err) == faults.NetworkUnavailable {
		if res, ok := r.cachedResolution(ctx, uid); ok {
			r.log.Debug().Str("uid", uid).Msg("role resolved from cache while offline")
			return res
		}
	}

	r.log.Warn().Err(err).Str("uid", uid).Msg("role lookup failed, defaulting to employee")
	return Resolution{Role: models.RoleEmployee}
}

func (r *Resolver) cacheResolution(ctx context.Context, uid string, res Resolution) {
	encoded, err := json.Marshal(res)
	if err != nil {
		r.log.Warn().Err(err).Str("uid", uid).Msg("encode role cache entry failed")
		return
	}
	r.cache.Set(ctx, CacheKeyPrefix+uid, string(encoded))
}

func (r *Resolver) cachedResolution(ctx context.Context, uid string) (Resolution, bool) {
	raw, ok := r.cache.Get(ctx, CacheKeyPrefix+uid)
	if !ok {
		return Resolution{}, false
	}

	var res Resolution
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		r.log.Warn().Err(err).Str("uid", uid).Msg("decode role cache entry failed")
		return Resolution{}, false
	}

	// Re-parse so a tampered or legacy entry cannot smuggle in an
	// unrecognized role value.
	res.Role = models.ParseRole(string(res.Role))
	return res, true
}
