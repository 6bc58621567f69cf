// Package auth provides registration, login and ownership checks.
//
// Passwords are stored as bcrypt hashes (Hasher). A successful login issues a
// stateless HS256 session token (TokenIssuer) carrying the user's id and
// email. Tokens are never persisted server-side, so there is no logout or
// revocation; a token stays valid until it expires.
//
// # Configuration
//
//	JWT_SECRET=<hex>       # Signing key; a random key is generated per process if empty
//	JWT_TOKEN_TTL=24h      # Token lifetime
//	AUTH_BCRYPT_COST=10    # bcrypt cost factor
//
// # Usage
//
// Wire the collaborators explicitly in the entrypoint:
//
//	issuer, _ := auth.NewTokenIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
//	authService := auth.NewService(users.NewRepository(db), auth.NewHasher(cfg.Auth.BcryptCost), issuer)
//	requireAuth := auth.NewMiddleware(issuer).Handler()
//
// Extract the caller in handlers behind requireAuth:
//
//	userID := auth.GetUserID(c)
//
// Ownership of a resource is a pure comparison:
//
//	if err := auth.RequireOwner(todo.UserID, userID); err != nil { ... } // ErrNotOwner
package auth
