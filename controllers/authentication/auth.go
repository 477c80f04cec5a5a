// Package authentication resolves principals and serves the
// register/login/logout/profile endpoints. Principals arrive either
// as a Bearer token or as a session cookie set at login.
package authentication

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"tangle-backend/apperrors"
	"tangle-backend/controllers/respond"
	"tangle-backend/models/users"
	"tangle-backend/storage"
)

const sessionName = "tangle-session"

// Claims are the JWT claims carried by access tokens.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Service issues and validates credentials. It refuses to construct
// without its secrets: missing auth configuration must stop the
// server, not degrade into a pass-through.
type Service struct {
	store      storage.Store
	jwtSecret  []byte
	tokenTTL   time.Duration
	sessions   *sessions.CookieStore
}

// New creates the authentication service.
func New(store storage.Store, jwtSecret, sessionKey string, tokenTTL time.Duration) (*Service, error) {
	if jwtSecret == "" {
		return nil, fmt.Errorf("jwt secret must not be empty")
	}
	if sessionKey == "" {
		return nil, fmt.Errorf("session key must not be empty")
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{
		store:     store,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		sessions:  sessions.NewCookieStore([]byte(sessionKey)),
	}, nil
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a user account and returns it with a fresh token.
func (s *Service) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, apperrors.Validation("invalid request method"))
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, apperrors.Validation("invalid input"))
		return
	}
	if req.Email == "" || req.Password == "" {
		respond.Error(w, apperrors.Validation("email and password are required"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}

	user := &users.User{
		Email:    req.Email,
		Password: string(hashed),
		FullName: req.FullName,
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			respond.Error(w, apperrors.Conflict("email already registered"))
			return
		}
		respond.Error(w, apperrors.Storage(err))
		return
	}

	token, err := s.generateToken(user)
	if err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}

	respond.JSON(w, http.StatusCreated, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// Login checks credentials, sets the session cookie and returns a
// token.
func (s *Service) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, apperrors.Validation("invalid request method"))
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, apperrors.Validation("invalid input"))
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		respond.Error(w, apperrors.Unauthenticated("invalid email or password"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		respond.Error(w, apperrors.Unauthenticated("invalid email or password"))
		return
	}

	token, err := s.generateToken(user)
	if err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}

	session, _ := s.sessions.Get(r, sessionName)
	session.Values["user_id"] = user.ID
	session.Options.MaxAge = int(s.tokenTTL / time.Second)
	session.Options.HttpOnly = true
	if err := session.Save(r, w); err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// Logout clears the session cookie. Bearer tokens simply age out.
func (s *Service) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, apperrors.Validation("invalid request method"))
		return
	}
	session, _ := s.sessions.Get(r, sessionName)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		respond.Error(w, apperrors.Storage(err))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Profile returns the authenticated user.
func (s *Service) Profile(w http.ResponseWriter, r *http.Request) {
	claims, err := s.Principal(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, apperrors.Unauthenticated("unknown user"))
			return
		}
		respond.Error(w, apperrors.Storage(err))
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

// Principal resolves the request's principal from the Authorization
// header, falling back to the session cookie. Other handlers call
// this before any membership check.
func (s *Service) Principal(r *http.Request) (*Claims, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		return s.validateToken(tokenString)
	}

	session, err := s.sessions.Get(r, sessionName)
	if err == nil {
		if userID, ok := session.Values["user_id"].(string); ok && userID != "" {
			return &Claims{UserID: userID}, nil
		}
	}

	return nil, apperrors.Unauthenticated("authentication required")
}

func (s *Service) generateToken(user *users.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *Service) validateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.Unauthenticated("invalid or expired token").Wrap(err)
	}
	return claims, nil
}
