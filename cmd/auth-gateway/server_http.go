package main

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	authcore "github.com/NordCoder/go-auth/internal/auth"
	config "github.com/NordCoder/go-auth/internal/config/auth-gateway"
	"github.com/NordCoder/go-auth/internal/services/api-gateway/auth"
)

func buildHTTPServer(cfg *config.Config, logger *zap.Logger, st *stores) (*http.Server, error) {
	tokens, err := authcore.NewTokenIssuer(authcore.TokenConfig{
		Secret:    []byte(cfg.Auth.JWTSecret),
		AccessTTL: cfg.Auth.AccessTTL,
	})
	if err != nil {
		return nil, err
	}

	uc := auth.NewUseCase(auth.Deps{
		Users:    st.users,
		Sessions: st.sessions,
		Hasher:   authcore.NewBcryptHasher(cfg.Auth.BcryptCost),
		Tokens:   tokens,
		Tx:       st.tx,
		Events:   st.events,
		Logger:   logger,
	}, auth.Config{
		RefreshTTL:    cfg.Auth.RefreshTTL,
		RotateRefresh: cfg.Auth.RotateRefresh,
	})

	h := auth.NewHandler(uc, auth.CookieOpts{
		Name:   cfg.Auth.CookieName,
		Path:   cfg.Auth.CookiePath,
		Domain: cfg.Auth.CookieDomain,
		Secure: cfg.Auth.CookieSecure,
		MaxAge: cfg.Auth.RefreshTTL,
	}, logger)

	router := auth.NewRouter(h, auth.RouterOpts{
		AllowedOrigin:  cfg.CORS.AllowedOrigin,
		RequestTimeout: cfg.Server.RequestTimeout,
		Logger:         logger,
	})

	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}, nil
}

func serveHTTP(srv *http.Server, logger *zap.Logger) error {
	logger.Info("http listening", zap.String("addr", srv.Addr))
	return srv.ListenAndServe()
}
