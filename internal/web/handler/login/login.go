package login

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/catalog-admin/catalog-admin/internal/auth"
	"github.com/catalog-admin/catalog-admin/internal/config"
	"github.com/catalog-admin/catalog-admin/internal/db/models"
	"github.com/catalog-admin/catalog-admin/internal/web/handler"
	"github.com/catalog-admin/catalog-admin/internal/web/session"
)

const (
	// Path is the path of the login endpoint.
	Path = handler.APIPath + "/login"
	// RegisterPath is the path of the self registration endpoint.
	RegisterPath = handler.APIPath + "/register"
)

// Request is the login body. Login accepts a username or an email.
type Request struct {
	Login    string `json:"login" validate:"required_without=Email,max=255"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
	Password string `json:"password" validate:"required,max=255"`
}

// RegisterRequest is the self registration body.
type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,max=200"`
	Username             string `json:"username" validate:"required,max=100"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8,max=255"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// Response is returned by a successful login or registration.
type Response struct {
	User      handler.Profile `json:"user"`
	Token     string          `json:"token"`
	ExpiresIn int             `json:"expires_in"`
	Message   string          `json:"message"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	acl       *auth.Service
	local     *auth.LocalProvider
	sessions  *session.Manager
	validator *validator.Validate
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.cfg = deps.Cfg
	s.acl = deps.ACL
	s.local = auth.NewLocalProvider(deps.ACL)
	s.sessions = deps.Sessions
	s.validator = deps.Validator

	app.Post(Path, s.Post)
	app.Post(RegisterPath, s.Register)

	return nil
}

// Post handles the login request.
func (s *Service) Post(c fiber.Ctx) error {
	var req Request
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return handler.Error(c, err)
	}

	login := req.Login
	if login == "" {
		login = req.Email
	}

	user, err := s.local.Authenticate(c.Context(), login, req.Password)
	if err != nil {
		log.Info().Err(err).Str("login", login).Msg("login failed")
		return handler.Error(c, err)
	}

	return s.startSession(c, fiber.StatusOK, user, "Logged in")
}

// Register creates an active account without a role and logs it in.
func (s *Service) Register(c fiber.Ctx) error {
	var req RegisterRequest
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return handler.Error(c, err)
	}

	hash, err := models.HashPassword(req.Password)
	if err != nil {
		return handler.Error(c, err)
	}

	user := &models.User{
		Active:   true,
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Password: hash,
	}

	if err := s.acl.CreateUser(c.Context(), user); err != nil {
		return handler.Error(c, err)
	}

	log.Info().Uint64("user_id", user.ID).Str("username", user.Username).Msg("user registered")

	return s.startSession(c, fiber.StatusCreated, user, "Registered")
}

func (s *Service) startSession(c fiber.Ctx, status int, user *models.User, msg string) error {
	subject, err := s.acl.Subject(c.Context(), user.ID)
	if err != nil {
		return handler.Error(c, err)
	}

	token, err := s.sessions.Create(user.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to create session")
		return handler.Error(c, err)
	}

	ttl := s.sessions.TTL()

	c.Cookie(&fiber.Cookie{
		Name:     s.cfg.Webserver.Session.CookieName,
		Value:    token,
		MaxAge:   int(ttl.Seconds()),
		Secure:   s.cfg.Webserver.Session.Secure && !s.cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Status(status).JSON(Response{
		User:      handler.NewProfile(user, subject),
		Token:     token,
		ExpiresIn: int(ttl.Seconds()),
		Message:   msg,
	})
}
