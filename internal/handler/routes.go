package handler

import (
	"net/http"

	"github.com/msomdec/recipe-community/internal/service"
)

// Services bundles the application services the routes depend on.
type Services struct {
	Auth     *service.AuthService
	Posts    *service.PostService
	Feed     *service.FeedService
	Social   *service.SocialService
	Profiles *service.ProfileService
	Recipes  *service.RecipeService
	Photos   *service.PhotoService
	Events   EventSource
}

// Options tunes route registration. Nil limiters disable rate limiting and a
// nil Metrics handler leaves /metrics unregistered.
type Options struct {
	CookieSecure bool
	HealthChecks map[string]HealthCheck
	AuthLimiter  *service.TokenBucket
	WriteLimiter *service.TokenBucket
	Metrics      http.Handler
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, svc Services, opts Options) {
	authH := NewAuthHandler(svc.Auth, svc.Photos, opts.CookieSecure)
	postH := NewPostHandler(svc.Posts, svc.Feed, svc.Photos)
	socialH := NewSocialHandler(svc.Social, svc.Photos)
	profileH := NewProfileHandler(svc.Profiles, svc.Photos)
	recipeH := NewRecipeHandler(svc.Recipes, svc.Photos)
	photoH := NewPhotoHandler(svc.Photos)
	streamH := NewStreamHandler(svc.Feed, svc.Events, svc.Photos)

	limit := func(l *service.TokenBucket, h http.Handler) http.Handler {
		if l == nil {
			return h
		}
		return RateLimit(l, h)
	}
	// Public routes with optional auth (viewer-aware).
	optional := func(h http.HandlerFunc) http.Handler {
		return OptionalAuth(svc.Auth, h)
	}
	// Signed-in reads.
	protected := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(svc.Auth, h)
	}
	// Signed-in writes, rate limited per user.
	write := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(svc.Auth, limit(opts.WriteLimiter, h))
	}

	mux.Handle("GET /healthz", HealthHandler(opts.HealthChecks))
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}

	// Auth
	mux.Handle("POST /api/auth/register", limit(opts.AuthLimiter, http.HandlerFunc(authH.HandleRegister)))
	mux.Handle("POST /api/auth/login", limit(opts.AuthLimiter, http.HandlerFunc(authH.HandleLogin)))
	mux.HandleFunc("POST /api/auth/logout", authH.HandleLogout)
	mux.Handle("GET /api/auth/me", protected(authH.HandleMe))

	// Feed and posts
	mux.Handle("GET /api/posts", optional(postH.HandleList))
	mux.Handle("POST /api/posts", write(postH.HandleCreate))
	mux.Handle("GET /api/posts/{id}", optional(postH.HandleGet))
	mux.Handle("PUT /api/posts/{id}", write(postH.HandleUpdate))
	mux.Handle("DELETE /api/posts/{id}", write(postH.HandleDelete))
	mux.Handle("POST /api/posts/{id}/photo", write(postH.HandleAttachPhoto))
	mux.Handle("DELETE /api/posts/{id}/photo", write(postH.HandleRemovePhoto))
	mux.Handle("POST /api/posts/{id}/like", write(postH.HandleToggleLike))
	mux.Handle("POST /api/posts/{id}/comments", write(postH.HandleAddComment))
	mux.Handle("DELETE /api/comments/{id}", write(postH.HandleDeleteComment))
	mux.Handle("GET /api/feed/stream", optional(streamH.HandleStream))

	// Social graph
	mux.Handle("GET /api/suggestions", protected(socialH.HandleSuggestions))
	mux.Handle("POST /api/users/{id}/follow", write(socialH.HandleFollow))
	mux.Handle("DELETE /api/users/{id}/follow", write(socialH.HandleUnfollow))
	mux.HandleFunc("GET /api/users/{id}/followers", socialH.HandleFollowers)
	mux.HandleFunc("GET /api/users/{id}/following", socialH.HandleFollowing)

	// Profiles
	mux.Handle("GET /api/users/{id}", optional(profileH.HandleGet))
	mux.HandleFunc("GET /api/users/{id}/recipes", profileH.HandleRecipes)
	mux.HandleFunc("GET /api/users/{id}/favorites", profileH.HandleFavorites)
	mux.Handle("PUT /api/me", write(profileH.HandleUpdateMe))
	mux.Handle("POST /api/me/photo", write(profileH.HandleUploadPhoto))

	// Recipes
	mux.Handle("POST /api/recipes", write(recipeH.HandleCreate))
	mux.HandleFunc("GET /api/recipes/{id}", recipeH.HandleGet)
	mux.Handle("PUT /api/recipes/{id}", write(recipeH.HandleUpdate))
	mux.Handle("DELETE /api/recipes/{id}", write(recipeH.HandleDelete))
	mux.Handle("POST /api/recipes/{id}/photo", write(recipeH.HandleAttachPhoto))
	mux.Handle("POST /api/recipes/{id}/favorite", write(recipeH.HandleToggleFavorite))

	// Photos
	mux.HandleFunc("GET /photos/{key}", photoH.HandleServe)
}
